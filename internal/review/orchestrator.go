package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Orchestrator drives the review pipeline across all files of a review
// request. Per-file analysis has no cross-file dependency, so files are
// scanned concurrently with a bounded number of in-flight content fetches;
// results are merged in input order to keep the report deterministic.
type Orchestrator struct {
	src        Source
	cfg        Config
	registry   *Registry
	classifier *Classifier
	logger     *slog.Logger
}

// NewOrchestrator builds the registry and classifier for cfg. A malformed
// configuration surfaces here as a ConfigError, before any file is touched.
func NewOrchestrator(src Source, cfg Config, logger *slog.Logger) (*Orchestrator, error) {
	registry, err := NewRegistry(cfg)
	if err != nil {
		return nil, err
	}
	classifier, err := NewClassifier(cfg)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		src:        src,
		cfg:        cfg,
		registry:   registry,
		classifier: classifier,
		logger:     logger,
	}, nil
}

// Review analyzes every changed file of the review request and returns the
// aggregated report. Removed and skip-listed files are counted in the
// statistics but never fetched. A cancelled context aborts in-flight fetches
// and discards partial results.
func (o *Orchestrator) Review(ctx context.Context, prID int) (*Result, error) {
	files, err := o.src.ListChangedFiles(ctx, prID)
	if err != nil {
		return nil, &FetchError{Err: fmt.Errorf("list changed files: %w", err)}
	}

	outcomes := make([]FileScan, len(files))

	var headRef string
	if o.needsContent(files) {
		headRef, err = o.src.ResolveHeadRef(ctx, prID)
		if err != nil {
			return nil, &FetchError{Err: fmt.Errorf("resolve head ref: %w", err)}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, o.concurrency())

	for i, file := range files {
		if skip := o.preScanSkip(file); skip != nil {
			outcomes[i] = FileScan{Meta: file, Skip: skip}
			continue
		}

		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			content, err := o.fetchWithRetry(gctx, file.Filename, headRef)
			switch {
			case errors.Is(err, ErrContentNotFound):
				outcomes[i] = FileScan{Meta: file, Skip: &SkippedFile{File: file.Filename, Reason: SkipNotFound}}
				return nil
			case err != nil:
				// Cancellation is fatal and never downgraded to a
				// per-file skip.
				if gctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				if o.cfg.ContinueOnFetchError {
					o.logger.Warn("skipping file after fetch failure", "file", file.Filename, "error", err)
					outcomes[i] = FileScan{Meta: file, Skip: &SkippedFile{File: file.Filename, Reason: SkipError, Detail: err.Error()}}
					return nil
				}
				return &FetchError{Path: file.Filename, Err: err}
			}
			if content == "" {
				outcomes[i] = FileScan{Meta: file, Skip: &SkippedFile{File: file.Filename, Reason: SkipEmpty}}
				return nil
			}

			outcomes[i] = o.scanFile(file, content)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A review cancelled mid-flight must not surface partial results, even
	// when every started fetch happened to finish.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Aggregate(outcomes, o.cfg), nil
}

// preScanSkip decides, without any I/O, whether a file is excluded from
// content scanning.
func (o *Orchestrator) preScanSkip(file FileMeta) *SkippedFile {
	if file.Status == FileRemoved {
		return &SkippedFile{File: file.Filename, Reason: SkipRemoved}
	}
	if o.classifier.ShouldSkip(file.Filename) {
		return &SkippedFile{File: file.Filename, Reason: SkipPattern}
	}
	return nil
}

// needsContent reports whether at least one file will be fetched.
func (o *Orchestrator) needsContent(files []FileMeta) bool {
	for _, file := range files {
		if o.preScanSkip(file) == nil {
			return true
		}
	}
	return false
}

func (o *Orchestrator) concurrency() int {
	if o.cfg.MaxConcurrentFetches > 0 {
		return o.cfg.MaxConcurrentFetches
	}
	return 1
}

// fetchWithRetry fetches file content, retrying once with backoff on
// transient failures. Not-found and cancellation are returned immediately.
func (o *Orchestrator) fetchWithRetry(ctx context.Context, path, ref string) (string, error) {
	content, err := o.src.FetchFileContent(ctx, path, ref)
	if err == nil || errors.Is(err, ErrContentNotFound) || ctx.Err() != nil {
		return content, err
	}

	o.logger.Warn("retrying content fetch", "file", path, "error", err)
	select {
	case <-time.After(o.cfg.FetchRetryDelay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return o.src.FetchFileContent(ctx, path, ref)
}

// scanFile runs every in-focus rule set against the content. A panic while
// applying a rule is recovered and recorded as a skipped-with-error outcome
// so one pathological file cannot abort the whole review.
func (o *Orchestrator) scanFile(file FileMeta, content string) (scan FileScan) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("recovered panic while scanning file", "file", file.Filename, "panic", r)
			scan = FileScan{
				Meta: file,
				Skip: &SkippedFile{File: file.Filename, Reason: SkipError, Detail: fmt.Sprintf("scan panic: %v", r)},
			}
		}
	}()

	classification := Classify(file.Filename)

	var matches []Match
	for _, category := range o.cfg.FocusAreas {
		if category == CategoryTestCoverage && IsTestFile(file.Filename) {
			continue
		}
		rules := o.registry.RuleSet(category, classification.Language)
		matches = append(matches, Scan(content, rules)...)
	}
	return FileScan{Meta: file, Matches: matches}
}
