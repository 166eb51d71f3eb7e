// Package review implements the rule-based issue detection engine: it
// classifies changed files, selects the applicable rule set from a
// strictness/language matrix, scans file content for pattern matches, and
// folds the results into a deterministic, serializable report.
package review

import (
	"maps"
	"slices"
	"time"
)

// Category groups detection rules and reported issues.
type Category string

const (
	CategorySecurity     Category = "security"
	CategoryPerformance  Category = "performance"
	CategoryCodeQuality  Category = "code_quality"
	CategoryTestCoverage Category = "test_coverage"
)

// AllCategories lists every category in report order.
var AllCategories = []Category{
	CategorySecurity,
	CategoryPerformance,
	CategoryCodeQuality,
	CategoryTestCoverage,
}

// Valid reports whether c is a recognized category.
func (c Category) Valid() bool {
	return slices.Contains(AllCategories, c)
}

// Severity ranks an issue from critical down to low.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// AllSeverities lists every severity from most to least severe.
var AllSeverities = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
}

// Valid reports whether s is a recognized severity.
func (s Severity) Valid() bool {
	return slices.Contains(AllSeverities, s)
}

// Action is the configured consequence of finding issues at a given severity.
type Action string

const (
	ActionBlock  Action = "block"
	ActionWarn   Action = "warn"
	ActionReport Action = "report"
)

// Verdict is the overall outcome of a review, derived from the issue
// thresholds and the severity counts of the final result.
type Verdict string

const (
	VerdictPass   Verdict = "pass"
	VerdictReport Verdict = "report"
	VerdictWarn   Verdict = "warn"
	VerdictBlock  Verdict = "block"
)

// Config controls a single review run. A Config is built once by merging
// caller overrides on top of DefaultConfig and is never mutated afterwards.
type Config struct {
	// StrictnessLevel selects how many rule tiers are active, on a 1-5
	// scale. Tier 0 rules are always on, tier 1 activates at level 3 and
	// tier 2 at level 4. Levels 1-2 and 5 do not map to further tiers.
	StrictnessLevel int

	// FocusAreas limits scanning to the listed categories.
	FocusAreas []Category

	// SkipPatterns are additional filename patterns to exclude from
	// scanning. They extend the built-in skip list, never replace it.
	SkipPatterns []string

	// CustomRules are caller-supplied rules. A custom rule sharing an ID
	// with a built-in rule replaces it.
	CustomRules []Rule

	// LanguageRules adds rules that apply only to files of one language.
	LanguageRules map[string][]Rule

	// IssueThresholds maps a severity to the action its presence triggers.
	IssueThresholds map[Severity]Action

	// MaxConcurrentFetches caps in-flight content fetches against the
	// collaborator.
	MaxConcurrentFetches int

	// FetchRetryDelay is the backoff before the single retry of a failed
	// content fetch.
	FetchRetryDelay time.Duration

	// ContinueOnFetchError records a failed file as skipped-with-error
	// instead of aborting the whole review.
	ContinueOnFetchError bool
}

// DefaultConfig returns the documented defaults: strictness 3, all four
// categories in focus, and critical/high issues blocking.
func DefaultConfig() Config {
	return Config{
		StrictnessLevel: 3,
		FocusAreas:      slices.Clone(AllCategories),
		IssueThresholds: map[Severity]Action{
			SeverityCritical: ActionBlock,
			SeverityHigh:     ActionBlock,
			SeverityMedium:   ActionWarn,
			SeverityLow:      ActionReport,
		},
		MaxConcurrentFetches: 4,
		FetchRetryDelay:      500 * time.Millisecond,
	}
}

// Merge returns a new Config with the non-zero fields of overrides applied on
// top of base. Neither argument is modified; slices and maps are copied so
// the result shares no mutable state with its inputs.
func Merge(base, overrides Config) Config {
	out := base
	out.FocusAreas = slices.Clone(base.FocusAreas)
	out.SkipPatterns = slices.Clone(base.SkipPatterns)
	out.CustomRules = slices.Clone(base.CustomRules)
	out.LanguageRules = cloneRuleMap(base.LanguageRules)
	out.IssueThresholds = maps.Clone(base.IssueThresholds)

	if overrides.StrictnessLevel != 0 {
		out.StrictnessLevel = overrides.StrictnessLevel
	}
	if len(overrides.FocusAreas) > 0 {
		out.FocusAreas = slices.Clone(overrides.FocusAreas)
	}
	if len(overrides.SkipPatterns) > 0 {
		out.SkipPatterns = append(out.SkipPatterns, overrides.SkipPatterns...)
	}
	if len(overrides.CustomRules) > 0 {
		out.CustomRules = append(out.CustomRules, overrides.CustomRules...)
	}
	if len(overrides.LanguageRules) > 0 {
		if out.LanguageRules == nil {
			out.LanguageRules = make(map[string][]Rule, len(overrides.LanguageRules))
		}
		for lang, rules := range overrides.LanguageRules {
			out.LanguageRules[lang] = append(slices.Clone(out.LanguageRules[lang]), rules...)
		}
	}
	if len(overrides.IssueThresholds) > 0 {
		if out.IssueThresholds == nil {
			out.IssueThresholds = make(map[Severity]Action, len(overrides.IssueThresholds))
		}
		maps.Copy(out.IssueThresholds, overrides.IssueThresholds)
	}
	if overrides.MaxConcurrentFetches != 0 {
		out.MaxConcurrentFetches = overrides.MaxConcurrentFetches
	}
	if overrides.FetchRetryDelay != 0 {
		out.FetchRetryDelay = overrides.FetchRetryDelay
	}
	if overrides.ContinueOnFetchError {
		out.ContinueOnFetchError = true
	}
	return out
}

func cloneRuleMap(in map[string][]Rule) map[string][]Rule {
	if in == nil {
		return nil
	}
	out := make(map[string][]Rule, len(in))
	for lang, rules := range in {
		out[lang] = slices.Clone(rules)
	}
	return out
}

// VerdictFor derives the overall verdict from per-severity issue counts. The
// strongest configured action among severities with at least one issue wins;
// no issues, or no matching thresholds, yield a pass.
func (c Config) VerdictFor(severityCounts map[Severity]int) Verdict {
	verdict := VerdictPass
	for severity, count := range severityCounts {
		if count == 0 {
			continue
		}
		switch c.IssueThresholds[severity] {
		case ActionBlock:
			return VerdictBlock
		case ActionWarn:
			if verdict != VerdictBlock {
				verdict = VerdictWarn
			}
		case ActionReport:
			if verdict == VerdictPass {
				verdict = VerdictReport
			}
		}
	}
	return verdict
}

func (c Config) validate() error {
	if c.StrictnessLevel < 1 || c.StrictnessLevel > 5 {
		return &ConfigError{Field: "strictness_level", Reason: "must be between 1 and 5"}
	}
	for _, area := range c.FocusAreas {
		if !area.Valid() {
			return &ConfigError{Field: "focus_areas", Reason: "unknown category " + string(area)}
		}
	}
	for severity, action := range c.IssueThresholds {
		if !severity.Valid() {
			return &ConfigError{Field: "issue_thresholds", Reason: "unknown severity " + string(severity)}
		}
		switch action {
		case ActionBlock, ActionWarn, ActionReport:
		default:
			return &ConfigError{Field: "issue_thresholds", Reason: "unknown action " + string(action)}
		}
	}
	return nil
}
