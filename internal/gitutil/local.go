// Package gitutil provides a review Source backed by a local Git worktree.
package gitutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/patrol-ci/patrol/internal/review"
)

// LocalSource serves changed files from a local repository by diffing HEAD
// against a base revision. It lets the CLI review work before it is pushed.
type LocalSource struct {
	repo    *git.Repository
	path    string
	baseRef string
	logger  *slog.Logger
}

var _ review.Source = (*LocalSource)(nil)

// NewLocalSource opens the repository at path. baseRef is any revision the
// repository can resolve (a branch, tag, or SHA); the diff covers everything
// HEAD changed relative to it.
func NewLocalSource(path, baseRef string, logger *slog.Logger) (*LocalSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}
	return &LocalSource{repo: repo, path: path, baseRef: baseRef, logger: logger}, nil
}

// ListChangedFiles diffs the base revision against HEAD and returns one
// FileMeta per changed path, with additions and deletions taken from the
// patch statistics. The pr identifier is unused for a local diff.
func (s *LocalSource) ListChangedFiles(ctx context.Context, _ int) ([]review.FileMeta, error) {
	baseTree, err := s.treeAt(s.baseRef)
	if err != nil {
		return nil, err
	}
	headTree, err := s.treeAt("HEAD")
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTreeWithOptions(ctx, baseTree, headTree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s..HEAD: %w", s.baseRef, err)
	}

	var files []review.FileMeta
	for _, change := range changes {
		action, err := change.Action()
		if err != nil {
			s.logger.Error("failed to get action for change, skipping", "error", err)
			continue
		}

		meta := review.FileMeta{}
		switch action {
		case merkletrie.Insert:
			meta.Filename = change.To.Name
			meta.Status = review.FileAdded
		case merkletrie.Modify:
			meta.Filename = change.To.Name
			meta.Status = review.FileModified
			if change.From.Name != "" && change.From.Name != change.To.Name {
				meta.Status = review.FileRenamed
			}
		case merkletrie.Delete:
			meta.Filename = change.From.Name
			meta.Status = review.FileRemoved
		default:
			continue
		}

		if patch, err := change.PatchContext(ctx); err == nil {
			for _, stat := range patch.Stats() {
				meta.Additions += stat.Addition
				meta.Deletions += stat.Deletion
			}
		}

		files = append(files, meta)
	}
	return files, nil
}

// ResolveHeadRef returns the SHA of the current HEAD commit.
func (s *LocalSource) ResolveHeadRef(_ context.Context, _ int) (string, error) {
	head, err := s.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// FetchFileContent reads a file from the worktree. The ref argument is
// ignored: a local review always inspects the working copy, which is what
// the developer is about to push.
func (s *LocalSource) FetchFileContent(_ context.Context, path, _ string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.path, filepath.FromSlash(path)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", review.ErrContentNotFound
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func (s *LocalSource) treeAt(rev string) (*object.Tree, error) {
	hash, err := s.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision %q: %w", rev, err)
	}
	commit, err := s.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree for commit %s: %w", hash, err)
	}
	return tree, nil
}
