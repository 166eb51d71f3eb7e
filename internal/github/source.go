package github

import (
	"context"

	"github.com/patrol-ci/patrol/internal/review"
)

// PRSource adapts the GitHub client to the review engine's Source contract
// for a single repository. The pull request number flows through the engine,
// so one PRSource serves every PR of its repository.
type PRSource struct {
	client Client
	owner  string
	repo   string
}

var _ review.Source = (*PRSource)(nil)

// NewPRSource returns a Source backed by the GitHub REST API.
func NewPRSource(client Client, owner, repo string) *PRSource {
	return &PRSource{client: client, owner: owner, repo: repo}
}

// ListChangedFiles returns the metadata of every file changed in the pull request.
func (s *PRSource) ListChangedFiles(ctx context.Context, prID int) ([]review.FileMeta, error) {
	return s.client.ListChangedFiles(ctx, s.owner, s.repo, prID)
}

// ResolveHeadRef returns the head commit SHA of the pull request.
func (s *PRSource) ResolveHeadRef(ctx context.Context, prID int) (string, error) {
	pr, err := s.client.GetPullRequest(ctx, s.owner, s.repo, prID)
	if err != nil {
		return "", err
	}
	return pr.GetHead().GetSHA(), nil
}

// FetchFileContent returns the decoded content of path at ref.
func (s *PRSource) FetchFileContent(ctx context.Context, path, ref string) (string, error) {
	return s.client.GetFileContent(ctx, s.owner, s.repo, path, ref)
}
