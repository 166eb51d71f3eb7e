// Package jobs defines background tasks such as automated code reviews.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/patrol-ci/patrol/internal/config"
	"github.com/patrol-ci/patrol/internal/core"
	"github.com/patrol-ci/patrol/internal/github"
	"github.com/patrol-ci/patrol/internal/review"
	"github.com/patrol-ci/patrol/internal/storage"
)

// ReviewJob runs the rule-based review pipeline for a pull request and
// publishes the outcome back to GitHub.
type ReviewJob struct {
	cfg    *config.Config
	store  storage.Store
	logger *slog.Logger
}

// NewReviewJob creates a new ReviewJob.
func NewReviewJob(cfg *config.Config, store storage.Store, logger *slog.Logger) core.Job {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if store == nil {
		panic("store cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ReviewJob{cfg: cfg, store: store, logger: logger}
}

// Run executes the code review job for a given event.
func (j *ReviewJob) Run(ctx context.Context, event *core.ReviewEvent) error {
	if err := j.validateInputs(ctx, event); err != nil {
		j.logger.Error("input validation failed", "error", err)
		return fmt.Errorf("input validation failed: %w", err)
	}

	j.logger.Info("starting review job", "repo", event.RepoFullName, "pr", event.PRNumber)

	ghClient, err := github.CreateInstallationClient(ctx, j.cfg, event.InstallationID, j.logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	pr, err := ghClient.GetPullRequest(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		return fmt.Errorf("failed to get PR details: %w", err)
	}
	if pr.GetHead() == nil || pr.GetHead().GetSHA() == "" {
		return fmt.Errorf("PR %d has no valid head SHA", event.PRNumber)
	}
	event.HeadSHA = pr.GetHead().GetSHA()

	statusUpdater := github.NewStatusUpdater(ghClient)
	checkRunID, err := statusUpdater.InProgress(ctx, event, "Patrol Review", "Rule analysis in progress...")
	if err != nil {
		return fmt.Errorf("failed to set in-progress status: %w", err)
	}

	reviewCfg, err := j.loadRepoConfig(ctx, ghClient, event)
	if err != nil {
		j.updateStatusOnError(ctx, statusUpdater, event, checkRunID, "Invalid "+config.RepoConfigFile)
		return fmt.Errorf("failed to load repo config: %w", err)
	}

	src := github.NewPRSource(ghClient, event.RepoOwner, event.RepoName)
	orchestrator, err := review.NewOrchestrator(src, reviewCfg, j.logger)
	if err != nil {
		// A ConfigError here means a malformed rule in .patrol.yml; tell
		// the author instead of failing silently.
		var cfgErr *review.ConfigError
		if errors.As(err, &cfgErr) {
			j.updateStatusOnError(ctx, statusUpdater, event, checkRunID, "Invalid review configuration: "+cfgErr.Error())
		} else {
			j.updateStatusOnError(ctx, statusUpdater, event, checkRunID, "Failed to prepare review")
		}
		return fmt.Errorf("failed to build orchestrator: %w", err)
	}

	result, err := orchestrator.Review(ctx, event.PRNumber)
	if err != nil {
		j.updateStatusOnError(ctx, statusUpdater, event, checkRunID, "Review failed")
		return fmt.Errorf("review failed: %w", err)
	}

	if err := j.persistResult(ctx, event, result); err != nil {
		// Losing history should not block the review comment.
		j.logger.Error("failed to persist review result", "repo", event.RepoFullName, "pr", event.PRNumber, "error", err)
	}

	patches, err := j.collectPatches(ctx, ghClient, event)
	if err != nil {
		j.logger.Warn("failed to collect patches, posting summary-only review", "error", err)
	}

	if err := statusUpdater.PostReview(ctx, event, result, patches); err != nil {
		j.updateStatusOnError(ctx, statusUpdater, event, checkRunID, "Failed to post review")
		return fmt.Errorf("failed to post review: %w", err)
	}

	conclusion := github.ConclusionForVerdict(result.Verdict)
	title := fmt.Sprintf("Review complete: %s", result.Verdict)
	summary := fmt.Sprintf("%d file(s) analyzed, verdict %s", result.Statistics.FilesAnalyzed, result.Verdict)
	if err := statusUpdater.Completed(ctx, event, checkRunID, conclusion, title, summary); err != nil {
		return fmt.Errorf("failed to update completion status: %w", err)
	}

	j.logger.Info("review job completed", "repo", event.RepoFullName, "pr", event.PRNumber, "verdict", result.Verdict)
	return nil
}

// loadRepoConfig fetches .patrol.yml from the PR head and merges it over the
// engine defaults. A missing file is not an error.
func (j *ReviewJob) loadRepoConfig(ctx context.Context, client github.Client, event *core.ReviewEvent) (review.Config, error) {
	content, err := client.GetFileContent(ctx, event.RepoOwner, event.RepoName, config.RepoConfigFile, event.HeadSHA)
	if err != nil {
		if errors.Is(err, review.ErrContentNotFound) {
			return review.DefaultConfig(), nil
		}
		return review.Config{}, err
	}
	return config.ParseRepoConfig([]byte(content))
}

func (j *ReviewJob) collectPatches(ctx context.Context, client github.Client, event *core.ReviewEvent) (map[string]string, error) {
	files, err := client.ListChangedFiles(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		return nil, err
	}
	patches := make(map[string]string, len(files))
	for _, f := range files {
		patches[f.Filename] = f.Patch
	}
	return patches, nil
}

func (j *ReviewJob) persistResult(ctx context.Context, event *core.ReviewEvent, result *review.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	return j.store.SaveReview(ctx, &core.ReviewRecord{
		RepoFullName:  event.RepoFullName,
		PRNumber:      event.PRNumber,
		HeadSHA:       event.HeadSHA,
		Verdict:       string(result.Verdict),
		CriticalCount: result.Statistics.SeverityCounts[review.SeverityCritical],
		HighCount:     result.Statistics.SeverityCounts[review.SeverityHigh],
		MediumCount:   result.Statistics.SeverityCounts[review.SeverityMedium],
		LowCount:      result.Statistics.SeverityCounts[review.SeverityLow],
		Report:        payload,
	})
}

// validateInputs ensures the event contains all required fields.
func (j *ReviewJob) validateInputs(ctx context.Context, event *core.ReviewEvent) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.RepoOwner == "" {
		return fmt.Errorf("repository owner cannot be empty")
	}
	if event.RepoName == "" {
		return fmt.Errorf("repository name cannot be empty")
	}
	if event.RepoFullName == "" {
		return fmt.Errorf("repository full name cannot be empty")
	}
	if event.PRNumber <= 0 {
		return fmt.Errorf("pull request number must be positive, got: %d", event.PRNumber)
	}
	if event.InstallationID <= 0 {
		return fmt.Errorf("installation ID must be positive, got: %d", event.InstallationID)
	}
	return nil
}

// updateStatusOnError sends a failure status to GitHub Check Runs.
func (j *ReviewJob) updateStatusOnError(ctx context.Context, statusUpdater github.StatusUpdater, event *core.ReviewEvent, checkRunID int64, message string) {
	if err := statusUpdater.Completed(ctx, event, checkRunID, "failure", "Review Failed", message); err != nil {
		j.logger.Error("failed to update failure status", "error", err)
	}
}
