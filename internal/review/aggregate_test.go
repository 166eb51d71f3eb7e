package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateCountInvariants(t *testing.T) {
	cfg := DefaultConfig()
	files := []FileScan{
		{
			Meta: FileMeta{Filename: "a.py", Status: FileModified, Additions: 10, Deletions: 2},
			Matches: []Match{
				{Rule: Rule{ID: "sec.x", Category: CategorySecurity, Severity: SeverityCritical, Message: "m"}, Line: 1},
				{Rule: Rule{ID: "perf.x", Category: CategoryPerformance, Severity: SeverityMedium, Message: "m"}, Line: 3},
			},
		},
		{
			Meta: FileMeta{Filename: "b.js", Status: FileAdded, Additions: 5, Deletions: 0},
			Matches: []Match{
				{Rule: Rule{ID: "qual.x", Category: CategoryCodeQuality, Severity: SeverityLow, Message: "m"}, Line: 7},
			},
		},
		{
			Meta: FileMeta{Filename: "c.png", Status: FileModified, Additions: 0, Deletions: 1},
			Skip: &SkippedFile{File: "c.png", Reason: SkipPattern},
		},
	}

	result := Aggregate(files, cfg)

	// Every input file counts toward the statistics, skipped or not.
	assert.Equal(t, 3, result.Statistics.FilesAnalyzed)
	assert.Equal(t, 15, result.Statistics.LinesAdded)
	assert.Equal(t, 3, result.Statistics.LinesRemoved)

	var categoryTotal, severityTotal int
	for category, issues := range result.IssuesByCategory {
		assert.Equal(t, len(issues), result.Statistics.IssueCountsByCategory[category])
		categoryTotal += len(issues)
	}
	for _, count := range result.Statistics.SeverityCounts {
		severityTotal += count
	}
	assert.Equal(t, categoryTotal, severityTotal)
	assert.Equal(t, 3, categoryTotal)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, SkipPattern, result.Skipped[0].Reason)
}

func TestAggregateEmptyInput(t *testing.T) {
	result := Aggregate(nil, DefaultConfig())

	assert.Equal(t, 0, result.Statistics.FilesAnalyzed)
	assert.Equal(t, VerdictPass, result.Verdict)
	for _, category := range AllCategories {
		assert.NotNil(t, result.IssuesByCategory[category], "category lists are always present")
		assert.Equal(t, 0, result.Statistics.IssueCountsByCategory[category])
	}
	for _, severity := range AllSeverities {
		assert.Equal(t, 0, result.Statistics.SeverityCounts[severity])
	}
}

func TestAggregateMalformedSeverityDefaultsToMedium(t *testing.T) {
	files := []FileScan{{
		Meta: FileMeta{Filename: "a.py"},
		Matches: []Match{
			{Rule: Rule{ID: "odd", Category: CategorySecurity, Message: "m"}, Line: 1},
		},
	}}

	result := Aggregate(files, DefaultConfig())
	assert.Equal(t, 1, result.Statistics.SeverityCounts[SeverityMedium])
}

func TestAggregatePersonalizesMessages(t *testing.T) {
	files := []FileScan{{
		Meta: FileMeta{Filename: "util.py"},
		Matches: []Match{{
			Rule: Rule{
				ID:             "test.py-untested-function",
				Category:       CategoryTestCoverage,
				Severity:       SeverityMedium,
				Message:        "Function lacks docstring and possibly tests",
				Recommendation: "Add docstring and ensure function is tested",
			},
			Line:  2,
			Ident: "parse_row",
		}},
	}}

	result := Aggregate(files, DefaultConfig())
	issues := result.IssuesByCategory[CategoryTestCoverage]
	require.Len(t, issues, 1)
	assert.Equal(t, "parse_row: Function lacks docstring and possibly tests", issues[0].Message)
	assert.Equal(t, "Add docstring and ensure function is tested for parse_row", issues[0].Recommendation)
}

func TestAggregateVerdictFollowsThresholds(t *testing.T) {
	files := []FileScan{{
		Meta: FileMeta{Filename: "a.py"},
		Matches: []Match{
			{Rule: Rule{ID: "x", Category: CategorySecurity, Severity: SeverityCritical, Message: "m"}, Line: 1},
		},
	}}

	result := Aggregate(files, DefaultConfig())
	assert.Equal(t, VerdictBlock, result.Verdict)

	relaxed := Merge(DefaultConfig(), Config{
		IssueThresholds: map[Severity]Action{SeverityCritical: ActionWarn, SeverityHigh: ActionWarn},
	})
	result = Aggregate(files, relaxed)
	assert.Equal(t, VerdictWarn, result.Verdict)
}
