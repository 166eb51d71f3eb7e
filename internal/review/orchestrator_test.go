package review

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is an in-memory collaborator for orchestrator tests.
type fakeSource struct {
	files    []FileMeta
	contents map[string]string
	notFound map[string]bool

	// failuresLeft[path] fetches fail before one succeeds.
	mu           sync.Mutex
	failuresLeft map[string]int
	fetched      []string
	headCalls    int
}

func (s *fakeSource) ListChangedFiles(_ context.Context, _ int) ([]FileMeta, error) {
	return s.files, nil
}

func (s *fakeSource) ResolveHeadRef(_ context.Context, _ int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headCalls++
	return "abc1234", nil
}

func (s *fakeSource) FetchFileContent(_ context.Context, path, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetched = append(s.fetched, path)

	if s.failuresLeft[path] > 0 {
		s.failuresLeft[path]--
		return "", fmt.Errorf("upstream unavailable")
	}
	if s.notFound[path] {
		return "", ErrContentNotFound
	}
	return s.contents[path], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOrchestrator(t *testing.T, src Source, cfg Config) *Orchestrator {
	t.Helper()
	cfg.FetchRetryDelay = 0
	orch, err := NewOrchestrator(src, cfg, testLogger())
	require.NoError(t, err)
	return orch
}

func TestReviewSecurityScenario(t *testing.T) {
	src := &fakeSource{
		files:    []FileMeta{{Filename: "settings.py", Status: FileModified, Additions: 1}},
		contents: map[string]string{"settings.py": `password = "abc123"` + "\n"},
	}
	orch := newTestOrchestrator(t, src, DefaultConfig())

	result, err := orch.Review(context.Background(), 1)
	require.NoError(t, err)

	issues := result.IssuesByCategory[CategorySecurity]
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityCritical, issues[0].Severity)
	assert.Equal(t, 1, issues[0].Line)
	assert.Equal(t, "settings.py", issues[0].File)
}

func TestReviewStrictnessGatesTierOneRules(t *testing.T) {
	// Nested loops (tier 0) and a path traversal marker (tier 1) in the
	// same file: at strictness 2 only the tier-0 rule may fire.
	content := "path = '../secrets'\nfor i in items:\n    for j in items:\n        pass\n"
	src := &fakeSource{
		files:    []FileMeta{{Filename: "job.py", Status: FileModified}},
		contents: map[string]string{"job.py": content},
	}

	cfg := DefaultConfig()
	cfg.StrictnessLevel = 2
	orch := newTestOrchestrator(t, src, cfg)

	result, err := orch.Review(context.Background(), 1)
	require.NoError(t, err)

	var perfIDs, secIssues []string
	for _, issue := range result.IssuesByCategory[CategoryPerformance] {
		perfIDs = append(perfIDs, issue.Message)
	}
	for _, issue := range result.IssuesByCategory[CategorySecurity] {
		secIssues = append(secIssues, issue.Message)
	}
	assert.NotEmpty(t, perfIDs, "tier-0 nested-loop rule fires at strictness 2")
	assert.Empty(t, secIssues, "tier-1 path-traversal rule must not fire at strictness 2")
}

func TestReviewRemovedFileIsCountedButNeverFetched(t *testing.T) {
	src := &fakeSource{
		files: []FileMeta{
			{Filename: "gone.py", Status: FileRemoved, Additions: 0, Deletions: 40},
		},
	}
	orch := newTestOrchestrator(t, src, DefaultConfig())

	result, err := orch.Review(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Statistics.FilesAnalyzed)
	assert.Equal(t, 40, result.Statistics.LinesRemoved)
	assert.Empty(t, src.fetched, "removed files must not trigger a content fetch")
	assert.Equal(t, 0, src.headCalls, "no head resolution when nothing is fetched")
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, SkipRemoved, result.Skipped[0].Reason)
}

func TestReviewSkipPatternContributesZeroIssues(t *testing.T) {
	src := &fakeSource{
		files: []FileMeta{
			{Filename: "dist/bundle.js", Status: FileModified, Additions: 100},
			{Filename: "gen/out.py", Status: FileModified, Additions: 3},
		},
		contents: map[string]string{
			"dist/bundle.js": "eval(payload)",
			"gen/out.py":     `password = "abc123"`,
		},
	}
	cfg := Merge(DefaultConfig(), Config{SkipPatterns: []string{`^gen/`}})
	orch := newTestOrchestrator(t, src, cfg)

	result, err := orch.Review(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Statistics.FilesAnalyzed)
	assert.Equal(t, 103, result.Statistics.LinesAdded)
	for _, category := range AllCategories {
		assert.Empty(t, result.IssuesByCategory[category])
	}
	assert.Empty(t, src.fetched)
}

func TestReviewNotFoundContentIsNotAnError(t *testing.T) {
	src := &fakeSource{
		files:    []FileMeta{{Filename: "moved.py", Status: FileRenamed, Additions: 1}},
		notFound: map[string]bool{"moved.py": true},
	}
	orch := newTestOrchestrator(t, src, DefaultConfig())

	result, err := orch.Review(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Statistics.FilesAnalyzed)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, SkipNotFound, result.Skipped[0].Reason)
}

func TestReviewRetriesFetchOnce(t *testing.T) {
	src := &fakeSource{
		files:        []FileMeta{{Filename: "app.py", Status: FileModified}},
		contents:     map[string]string{"app.py": "x = 1\n"},
		failuresLeft: map[string]int{"app.py": 1},
	}
	orch := newTestOrchestrator(t, src, DefaultConfig())

	result, err := orch.Review(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Statistics.FilesAnalyzed)
	assert.Len(t, src.fetched, 2, "one failure, one successful retry")
}

func TestReviewPersistentFetchFailureAbortsReview(t *testing.T) {
	src := &fakeSource{
		files:        []FileMeta{{Filename: "app.py", Status: FileModified}},
		failuresLeft: map[string]int{"app.py": 5},
	}
	orch := newTestOrchestrator(t, src, DefaultConfig())

	result, err := orch.Review(context.Background(), 1)
	require.Error(t, err)
	assert.Nil(t, result, "a fatal fetch error yields no partial result")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "app.py", fetchErr.Path)
}

func TestReviewContinueOnFetchErrorRecordsSkip(t *testing.T) {
	src := &fakeSource{
		files: []FileMeta{
			{Filename: "broken.py", Status: FileModified, Additions: 2},
			{Filename: "fine.py", Status: FileModified, Additions: 1},
		},
		contents:     map[string]string{"fine.py": `secret = "s3cr3t"` + "\n"},
		failuresLeft: map[string]int{"broken.py": 5},
	}
	cfg := Merge(DefaultConfig(), Config{ContinueOnFetchError: true})
	orch := newTestOrchestrator(t, src, cfg)

	result, err := orch.Review(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Statistics.FilesAnalyzed)
	assert.NotEmpty(t, result.IssuesByCategory[CategorySecurity], "healthy files still scan")
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, SkipError, result.Skipped[0].Reason)
}

func TestReviewMalformedCustomRuleFailsBeforeAnyFetch(t *testing.T) {
	src := &fakeSource{
		files:    []FileMeta{{Filename: "app.py", Status: FileModified}},
		contents: map[string]string{"app.py": "x = 1\n"},
	}
	cfg := Merge(DefaultConfig(), Config{
		CustomRules: []Rule{{ID: "broken", Category: CategorySecurity, Pattern: `([`, Severity: SeverityLow}},
	})

	_, err := NewOrchestrator(src, cfg, testLogger())
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Empty(t, src.fetched)
}

func TestReviewCancellationDiscardsPartialResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{
		files:    []FileMeta{{Filename: "app.py", Status: FileModified}},
		contents: map[string]string{"app.py": "x = 1\n"},
	}
	orch := newTestOrchestrator(t, src, DefaultConfig())

	result, err := orch.Review(ctx, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

// cancelAwareSource fails fetches once the context is cancelled, the way a
// real HTTP client does.
type cancelAwareSource struct {
	fakeSource
}

func (s *cancelAwareSource) FetchFileContent(ctx context.Context, path, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.fakeSource.FetchFileContent(ctx, path, ref)
}

func TestReviewCancellationWinsOverContinueOnFetchError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &cancelAwareSource{fakeSource{
		files:    []FileMeta{{Filename: "app.py", Status: FileModified}},
		contents: map[string]string{"app.py": "x = 1\n"},
	}}
	cfg := Merge(DefaultConfig(), Config{ContinueOnFetchError: true})
	orch := newTestOrchestrator(t, src, cfg)

	result, err := orch.Review(ctx, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result, "cancellation must not degrade into a skipped file")
}

func TestReviewIsDeterministic(t *testing.T) {
	files := []FileMeta{
		{Filename: "a.py", Status: FileModified, Additions: 3},
		{Filename: "b.js", Status: FileAdded, Additions: 7},
		{Filename: "c.py", Status: FileModified, Additions: 2},
		{Filename: "d.png", Status: FileModified, Additions: 1},
	}
	contents := map[string]string{
		"a.py": "for i in xs:\n    for j in ys:\n        pass\n",
		"b.js": "eval(input)\nconsole.log('hi')\n",
		"c.py": `token = "tkn"` + "\nprint(x)\n",
	}

	run := func() []byte {
		src := &fakeSource{files: files, contents: contents}
		orch := newTestOrchestrator(t, src, DefaultConfig())
		result, err := orch.Review(context.Background(), 42)
		require.NoError(t, err)
		data, err := json.Marshal(result)
		require.NoError(t, err)
		return data
	}

	assert.Equal(t, string(run()), string(run()), "two runs over unchanged inputs must serialize identically")
}
