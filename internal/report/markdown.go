// Package report renders review results for GitHub comments and terminals.
package report

import (
	"fmt"
	"strings"

	"github.com/patrol-ci/patrol/internal/review"
)

// categoryTitles maps engine categories to their display names.
var categoryTitles = map[review.Category]string{
	review.CategorySecurity:     "Security",
	review.CategoryPerformance:  "Performance",
	review.CategoryCodeQuality:  "Code Quality",
	review.CategoryTestCoverage: "Test Coverage",
}

// CategoryTitle returns the display name of a category.
func CategoryTitle(c review.Category) string {
	if title, ok := categoryTitles[c]; ok {
		return title
	}
	return string(c)
}

// SeverityTitle returns the capitalized display name of a severity.
func SeverityTitle(s review.Severity) string {
	switch s {
	case review.SeverityCritical:
		return "Critical"
	case review.SeverityHigh:
		return "High"
	case review.SeverityMedium:
		return "Medium"
	case review.SeverityLow:
		return "Low"
	}
	return string(s)
}

// SeverityEmoji returns an emoji for the given severity level.
func SeverityEmoji(s review.Severity) string {
	switch s {
	case review.SeverityCritical:
		return "🔴"
	case review.SeverityHigh:
		return "🟠"
	case review.SeverityMedium:
		return "🟡"
	case review.SeverityLow:
		return "🟢"
	default:
		return "⚪"
	}
}

// severityAlert returns the GitHub alert type for a severity.
func severityAlert(s review.Severity) string {
	switch s {
	case review.SeverityCritical:
		return "CAUTION"
	case review.SeverityHigh:
		return "WARNING"
	case review.SeverityMedium:
		return "IMPORTANT"
	default:
		return "NOTE"
	}
}

// VerdictEmoji returns an icon for the overall review verdict.
func VerdictEmoji(v review.Verdict) string {
	switch v {
	case review.VerdictPass:
		return "✅"
	case review.VerdictReport:
		return "📝"
	case review.VerdictWarn:
		return "⚠️"
	case review.VerdictBlock:
		return "🚫"
	default:
		return "📝"
	}
}

// InlineComment renders a single issue as the body of a line-anchored PR
// review comment: severity header, the finding wrapped in a GitHub alert,
// then the recommendation and supporting material.
func InlineComment(issue review.Issue) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s %s | %s\n\n", SeverityEmoji(issue.Severity), SeverityTitle(issue.Severity), CategoryTitle(issue.Category))
	fmt.Fprintf(&sb, "> [!%s]\n> %s\n\n", severityAlert(issue.Severity), issue.Message)
	fmt.Fprintf(&sb, "**Recommendation**: %s\n", issue.Recommendation)

	if issue.Example != "" {
		fmt.Fprintf(&sb, "\n```\n%s\n```\n", issue.Example)
	}
	if issue.Reference != "" {
		fmt.Fprintf(&sb, "\n📚 %s\n", issue.Reference)
	}
	return sb.String()
}

// Summary renders the top-level review summary posted as the PR review body.
// offDiff holds issues whose line is outside the diff and therefore cannot be
// anchored inline; they are listed here instead of being dropped.
func Summary(result *review.Result, offDiff []review.Issue) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s Patrol Verdict: %s\n\n", VerdictEmoji(result.Verdict), strings.ToUpper(string(result.Verdict)))

	total := 0
	for _, count := range result.Statistics.IssueCountsByCategory {
		total += count
	}
	if total == 0 {
		sb.WriteString("No issues found in the changed files.\n\n")
	} else {
		fmt.Fprintf(&sb, "Found %d issue(s) across %d file(s).\n\n", total, result.Statistics.FilesAnalyzed)
	}

	sb.WriteString("#### 📊 Statistics\n\n")
	sb.WriteString("| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(&sb, "| Files analyzed | %d |\n", result.Statistics.FilesAnalyzed)
	fmt.Fprintf(&sb, "| Lines added | %d |\n", result.Statistics.LinesAdded)
	fmt.Fprintf(&sb, "| Lines removed | %d |\n", result.Statistics.LinesRemoved)

	if total > 0 {
		sb.WriteString("\n#### Severity\n\n| Severity | Count |\n|----------|-------|\n")
		for _, severity := range review.AllSeverities {
			if count := result.Statistics.SeverityCounts[severity]; count > 0 {
				fmt.Fprintf(&sb, "| %s %s | %d |\n", SeverityEmoji(severity), SeverityTitle(severity), count)
			}
		}

		sb.WriteString("\n#### Categories\n\n| Category | Count |\n|----------|-------|\n")
		for _, category := range review.AllCategories {
			if count := result.Statistics.IssueCountsByCategory[category]; count > 0 {
				fmt.Fprintf(&sb, "| %s | %d |\n", CategoryTitle(category), count)
			}
		}
	}

	if len(offDiff) > 0 {
		sb.WriteString("\n#### Findings outside the diff\n\n")
		for _, issue := range offDiff {
			fmt.Fprintf(&sb, "- %s `%s:%d` %s\n", SeverityEmoji(issue.Severity), issue.File, issue.Line, issue.Message)
		}
	}

	if len(result.Skipped) > 0 {
		fmt.Fprintf(&sb, "\n<details>\n<summary>Skipped files (%d)</summary>\n\n", len(result.Skipped))
		for _, skip := range result.Skipped {
			fmt.Fprintf(&sb, "- `%s` (%s)\n", skip.File, skip.Reason)
		}
		sb.WriteString("\n</details>\n")
	}

	return sb.String()
}

// Markdown renders the full report as a standalone markdown document, with
// every issue listed under its category. Shared by the CLI and the stored
// report endpoint.
func Markdown(result *review.Result) string {
	var sb strings.Builder
	sb.WriteString(Summary(result, nil))

	for _, category := range review.AllCategories {
		issues := result.IssuesByCategory[category]
		if len(issues) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n## %s (%d)\n\n", CategoryTitle(category), len(issues))
		for _, issue := range issues {
			fmt.Fprintf(&sb, "- %s **%s** `%s:%d` %s\n", SeverityEmoji(issue.Severity), SeverityTitle(issue.Severity), issue.File, issue.Line, issue.Message)
			if issue.Recommendation != "" {
				fmt.Fprintf(&sb, "  - %s\n", issue.Recommendation)
			}
		}
	}
	return sb.String()
}
