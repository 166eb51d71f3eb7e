package review

import (
	"fmt"
	"regexp"
	"sync"
)

// CompiledRule pairs a rule with its compiled pattern.
type CompiledRule struct {
	Rule
	re *regexp.Regexp
}

type ruleSetKey struct {
	category Category
	language string
}

// Registry builds the effective, immutable rule sets for one configuration.
// Rule sets are deterministic for a given (category, language) pair and are
// cached; the cache is safe for concurrent readers.
type Registry struct {
	cfg Config

	mu    sync.RWMutex
	cache map[ruleSetKey][]CompiledRule

	// compiled is keyed by the config field path of the rule, not its ID:
	// a language rule and a custom rule may share an ID with different
	// patterns.
	compiled map[string]*regexp.Regexp
}

func customRuleKey(i int) string { return fmt.Sprintf("custom_rules[%d]", i) }

func languageRuleKey(lang string, i int) string {
	return fmt.Sprintf("language_rules[%s][%d]", lang, i)
}

// NewRegistry validates the configuration and every custom and language rule
// it carries, compiling all patterns up front. Validation failures surface as
// a ConfigError before any scanning can begin.
func NewRegistry(cfg Config) (*Registry, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	r := &Registry{
		cfg:      cfg,
		cache:    make(map[ruleSetKey][]CompiledRule),
		compiled: make(map[string]*regexp.Regexp),
	}

	for i, rule := range cfg.CustomRules {
		if err := r.compileRule(customRuleKey(i), rule); err != nil {
			return nil, err
		}
	}
	for lang, rules := range cfg.LanguageRules {
		for i, rule := range rules {
			if err := r.compileRule(languageRuleKey(lang, i), rule); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

func (r *Registry) compileRule(field string, rule Rule) error {
	if rule.ID == "" {
		return &ConfigError{Field: field, Reason: "rule has no id"}
	}
	if !rule.Category.Valid() {
		return &ConfigError{Field: field, Reason: fmt.Sprintf("rule %s has unknown category %q", rule.ID, rule.Category)}
	}
	if rule.Severity != "" && !rule.Severity.Valid() {
		return &ConfigError{Field: field, Reason: fmt.Sprintf("rule %s has unknown severity %q", rule.ID, rule.Severity)}
	}
	re, err := regexp.Compile(rule.Pattern)
	if err != nil {
		return &ConfigError{Field: field, Reason: fmt.Sprintf("rule %s has invalid pattern: %v", rule.ID, err)}
	}
	r.compiled[field] = re
	return nil
}

// RuleSet returns the effective rules for a category and language.
//
// The set starts from the category's tier-0 rules, unions in tier-1 at
// strictness >= 3 and tier-2 at >= 4, then the built-in language rules, then
// the configured language rules, then custom rules whose language and
// strictness constraints are met. Rule identity is by ID: a later rule with
// an existing ID replaces the earlier one in place, keeping order stable.
func (r *Registry) RuleSet(category Category, language string) []CompiledRule {
	key := ruleSetKey{category: category, language: language}

	r.mu.RLock()
	if set, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		return set
	}
	r.mu.RUnlock()

	set := r.buildRuleSet(category, language)

	r.mu.Lock()
	r.cache[key] = set
	r.mu.Unlock()
	return set
}

func (r *Registry) buildRuleSet(category Category, language string) []CompiledRule {
	var set []CompiledRule
	index := make(map[string]int)

	add := func(rule Rule, re *regexp.Regexp) {
		compiled := CompiledRule{Rule: rule, re: re}
		if i, ok := index[rule.ID]; ok {
			set[i] = compiled
			return
		}
		index[rule.ID] = len(set)
		set = append(set, compiled)
	}

	tiers := builtinTiers[category]
	activeTiers := 1
	if r.cfg.StrictnessLevel >= 3 {
		activeTiers = 2
	}
	if r.cfg.StrictnessLevel >= 4 {
		activeTiers = 3
	}
	for tier := 0; tier < activeTiers; tier++ {
		for _, rule := range tiers[tier] {
			add(rule, builtinPattern(rule))
		}
	}
	for _, rule := range builtinLanguageRules[category][language] {
		add(rule, builtinPattern(rule))
	}

	for i, rule := range r.cfg.LanguageRules[language] {
		if rule.Category == category && rule.MinStrictness <= r.cfg.StrictnessLevel {
			add(rule, r.compiled[languageRuleKey(language, i)])
		}
	}
	for i, rule := range r.cfg.CustomRules {
		if rule.Category == category && rule.AppliesTo(language, r.cfg.StrictnessLevel) {
			add(rule, r.compiled[customRuleKey(i)])
		}
	}
	return set
}

var (
	builtinOnce     sync.Once
	builtinCompiled map[string]*regexp.Regexp
)

// builtinPattern returns the compiled pattern of a built-in rule. Built-in
// patterns are compiled lazily once and must be valid.
func builtinPattern(rule Rule) *regexp.Regexp {
	builtinOnce.Do(func() {
		builtinCompiled = make(map[string]*regexp.Regexp)
		for _, tiers := range builtinTiers {
			for _, tier := range tiers {
				for _, r := range tier {
					builtinCompiled[r.ID] = regexp.MustCompile(r.Pattern)
				}
			}
		}
		for _, langs := range builtinLanguageRules {
			for _, rules := range langs {
				for _, r := range rules {
					builtinCompiled[r.ID] = regexp.MustCompile(r.Pattern)
				}
			}
		}
	})
	return builtinCompiled[rule.ID]
}
