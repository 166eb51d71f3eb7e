package review

// Issue is one reported finding, tagged with its origin file and the
// reporting metadata of the rule that produced it.
type Issue struct {
	File           string   `json:"file"`
	Line           int      `json:"line"`
	Severity       Severity `json:"severity"`
	Category       Category `json:"category"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
	Example        string   `json:"example,omitempty"`
	Reference      string   `json:"reference,omitempty"`
}

// SkipReason says why a file produced no issues.
type SkipReason string

const (
	SkipPattern  SkipReason = "pattern"
	SkipRemoved  SkipReason = "removed"
	SkipEmpty    SkipReason = "empty"
	SkipNotFound SkipReason = "not_found"
	SkipError    SkipReason = "error"
)

// SkippedFile records a file that was counted in the statistics but not
// scanned, so that no skip is silently dropped from the result.
type SkippedFile struct {
	File   string     `json:"file"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}

// Statistics are the aggregate counters of a review. FilesAnalyzed and the
// line counters cover every input file, including skipped ones: they are
// diff-size statistics about the whole review request, not about the scanned
// subset.
type Statistics struct {
	FilesAnalyzed         int              `json:"filesAnalyzed"`
	LinesAdded            int              `json:"linesAdded"`
	LinesRemoved          int              `json:"linesRemoved"`
	IssueCountsByCategory map[Category]int `json:"issueCountsByCategory"`
	SeverityCounts        map[Severity]int `json:"severityCounts"`
}

// Result is the final, serializable review report.
type Result struct {
	IssuesByCategory map[Category][]Issue `json:"issuesByCategory"`
	Statistics       Statistics           `json:"statistics"`
	Skipped          []SkippedFile        `json:"skippedFiles,omitempty"`
	Verdict          Verdict              `json:"verdict"`
}

// FileScan is the per-file outcome fed into aggregation: either the raw
// matches of a scanned file or the reason it was skipped.
type FileScan struct {
	Meta    FileMeta
	Matches []Match
	Skip    *SkippedFile
}

// Aggregate folds per-file scan outcomes into a Result. It guarantees that
// issueCountsByCategory[c] equals len(issuesByCategory[c]) for every
// category and that the severity counts sum to the same total.
func Aggregate(files []FileScan, cfg Config) *Result {
	result := &Result{
		IssuesByCategory: make(map[Category][]Issue, len(AllCategories)),
		Statistics: Statistics{
			IssueCountsByCategory: make(map[Category]int, len(AllCategories)),
			SeverityCounts:        make(map[Severity]int, len(AllSeverities)),
		},
	}
	for _, c := range AllCategories {
		result.IssuesByCategory[c] = []Issue{}
		result.Statistics.IssueCountsByCategory[c] = 0
	}
	for _, s := range AllSeverities {
		result.Statistics.SeverityCounts[s] = 0
	}

	for _, file := range files {
		result.Statistics.FilesAnalyzed++
		result.Statistics.LinesAdded += file.Meta.Additions
		result.Statistics.LinesRemoved += file.Meta.Deletions

		if file.Skip != nil {
			result.Skipped = append(result.Skipped, *file.Skip)
			continue
		}
		for _, match := range file.Matches {
			issue := issueFromMatch(file.Meta.Filename, match)
			result.IssuesByCategory[issue.Category] = append(result.IssuesByCategory[issue.Category], issue)
		}
	}

	for category, issues := range result.IssuesByCategory {
		result.Statistics.IssueCountsByCategory[category] = len(issues)
		for _, issue := range issues {
			severity := issue.Severity
			if !severity.Valid() {
				// Validated rules always carry a severity; a
				// malformed one must not crash aggregation.
				severity = SeverityMedium
			}
			result.Statistics.SeverityCounts[severity]++
		}
	}

	result.Verdict = cfg.VerdictFor(result.Statistics.SeverityCounts)
	return result
}

// issueFromMatch converts a raw match into an Issue, personalizing the
// message and recommendation when the rule captured an identifier.
func issueFromMatch(filename string, match Match) Issue {
	message := match.Rule.Message
	recommendation := match.Rule.Recommendation
	if match.Ident != "" {
		message = match.Ident + ": " + message
		recommendation = recommendation + " for " + match.Ident
	}
	return Issue{
		File:           filename,
		Line:           match.Line,
		Severity:       match.Rule.Severity,
		Category:       match.Rule.Category,
		Message:        message,
		Recommendation: recommendation,
		Example:        match.Rule.Example,
		Reference:      match.Rule.Reference,
	}
}
