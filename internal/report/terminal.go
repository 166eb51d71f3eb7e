package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/patrol-ci/patrol/internal/review"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
	fileStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RenderMarkdown renders a markdown report for the terminal using glamour.
// It falls back to the raw markdown when the renderer cannot be built, for
// example on a dumb terminal.
func RenderMarkdown(md string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

// WriteTerminal prints the full result to w with colored severity badges and
// a glamour-rendered summary.
func WriteTerminal(w io.Writer, result *review.Result) {
	fmt.Fprint(w, RenderMarkdown(Summary(result, nil)))

	total := 0
	for _, category := range review.AllCategories {
		total += len(result.IssuesByCategory[category])
	}
	if total == 0 {
		color.New(color.FgGreen).Fprintln(w, "✅ No issues found!")
		return
	}

	for _, category := range review.AllCategories {
		issues := result.IssuesByCategory[category]
		if len(issues) == 0 {
			continue
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s (%d)", CategoryTitle(category), len(issues))))
		fmt.Fprintln(w, dimStyle.Render(strings.Repeat("─", 60)))

		for _, issue := range issues {
			fmt.Fprintln(w)
			writeSeverityBadge(w, issue.Severity)
			fmt.Fprintf(w, " %s", fileStyle.Render(issue.File))
			fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf(":%d", issue.Line)))
			fmt.Fprintf(w, "   %s\n", issue.Message)
			if issue.Recommendation != "" {
				fmt.Fprintf(w, "   %s\n", dimStyle.Render(issue.Recommendation))
			}
		}
	}
	fmt.Fprintln(w)
}

func writeSeverityBadge(w io.Writer, severity review.Severity) {
	label := " " + SeverityTitle(severity) + " "
	switch severity {
	case review.SeverityCritical:
		color.New(color.BgRed, color.FgWhite, color.Bold).Fprint(w, label)
	case review.SeverityHigh:
		color.New(color.BgHiRed, color.FgWhite).Fprint(w, label)
	case review.SeverityMedium:
		color.New(color.BgYellow, color.FgBlack).Fprint(w, label)
	case review.SeverityLow:
		color.New(color.BgGreen, color.FgWhite).Fprint(w, label)
	default:
		color.New(color.BgWhite, color.FgBlack).Fprint(w, label)
	}
}
