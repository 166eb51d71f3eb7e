// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v73/github"

	"github.com/patrol-ci/patrol/internal/core"
	"github.com/patrol-ci/patrol/internal/report"
	"github.com/patrol-ci/patrol/internal/review"
)

// StatusUpdater defines the contract for updating the status of a GitHub
// Check Run and posting review results on pull requests.
type StatusUpdater interface {
	InProgress(ctx context.Context, event *core.ReviewEvent, title, summary string) (int64, error)
	Completed(ctx context.Context, event *core.ReviewEvent, checkRunID int64, conclusion, title, summary string) error
	PostReview(ctx context.Context, event *core.ReviewEvent, result *review.Result, patches map[string]string) error
	PostSimpleComment(ctx context.Context, event *core.ReviewEvent, body string) error
}

type statusUpdater struct {
	client Client
}

// NewStatusUpdater creates and returns a new instance of a statusUpdater.
func NewStatusUpdater(client Client) StatusUpdater {
	return &statusUpdater{client: client}
}

// PostSimpleComment posts a single, general comment on the pull request.
func (s *statusUpdater) PostSimpleComment(ctx context.Context, event *core.ReviewEvent, body string) error {
	return s.client.CreateComment(ctx, event.RepoOwner, event.RepoName, event.PRNumber, body)
}

// InProgress creates a new GitHub Check Run with an "in_progress" status.
func (s *statusUpdater) InProgress(ctx context.Context, event *core.ReviewEvent, title, summary string) (int64, error) {
	opts := github.CreateCheckRunOptions{
		Name:    "Patrol Review",
		HeadSHA: event.HeadSHA,
		Status:  github.Ptr("in_progress"),
		Output: &github.CheckRunOutput{
			Title:   &title,
			Summary: &summary,
		},
	}
	checkRun, err := s.client.CreateCheckRun(ctx, event.RepoOwner, event.RepoName, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to create check run: %w", err)
	}
	return checkRun.GetID(), nil
}

// Completed updates an existing GitHub Check Run to a "completed" status.
func (s *statusUpdater) Completed(ctx context.Context, event *core.ReviewEvent, checkRunID int64, conclusion, title, summary string) error {
	now := time.Now()
	opts := github.UpdateCheckRunOptions{
		Status:      github.Ptr("completed"),
		Conclusion:  &conclusion,
		CompletedAt: &github.Timestamp{Time: now},
		Output: &github.CheckRunOutput{
			Title:   &title,
			Summary: &summary,
		},
	}
	_, err := s.client.UpdateCheckRun(ctx, event.RepoOwner, event.RepoName, checkRunID, opts)
	return err
}

// PostReview posts a pull request review: issues whose line falls inside the
// diff become inline comments, the rest are listed in the summary body so
// nothing is silently dropped. patches maps filename to the unified diff
// patch of that file, as returned by the changed-files listing.
func (s *statusUpdater) PostReview(ctx context.Context, event *core.ReviewEvent, result *review.Result, patches map[string]string) error {
	validLines := make(map[string]map[int]struct{}, len(patches))
	for file, patch := range patches {
		if patch == "" {
			continue
		}
		validLines[file] = ParseValidLinesFromPatch(patch, nil)
	}

	var comments []DraftReviewComment
	var offDiff []review.Issue
	for _, category := range review.AllCategories {
		for _, issue := range result.IssuesByCategory[category] {
			lines, ok := validLines[issue.File]
			if !ok {
				offDiff = append(offDiff, issue)
				continue
			}
			if _, ok := lines[issue.Line]; !ok {
				offDiff = append(offDiff, issue)
				continue
			}
			comments = append(comments, DraftReviewComment{
				Path: issue.File,
				Line: issue.Line,
				Body: report.InlineComment(issue),
			})
		}
	}

	summary := report.Summary(result, offDiff)
	return s.client.CreateReview(ctx, event.RepoOwner, event.RepoName, event.PRNumber, summary, comments)
}

// ConclusionForVerdict maps a review verdict to a check-run conclusion.
func ConclusionForVerdict(v review.Verdict) string {
	switch v {
	case review.VerdictBlock:
		return "failure"
	case review.VerdictWarn:
		return "neutral"
	default:
		return "success"
	}
}
