// Package storage persists review reports.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	// import db drivers
	_ "github.com/lib/pq"

	"github.com/patrol-ci/patrol/internal/core"
)

// ErrNoReview is returned when a pull request has no stored review yet.
var ErrNoReview = errors.New("no review found")

// Store defines the interface for all database operations.
type Store interface {
	SaveReview(ctx context.Context, record *core.ReviewRecord) error
	GetLatestReviewForPR(ctx context.Context, repoFullName string, prNumber int) (*core.ReviewRecord, error)
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a new Store
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

// SaveReview inserts a new review record into the database.
func (s *postgresStore) SaveReview(ctx context.Context, record *core.ReviewRecord) error {
	query := `
		INSERT INTO reviews (repo_full_name, pr_number, head_sha, verdict,
			critical_count, high_count, medium_count, low_count, report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.db.ExecContext(ctx, query,
		record.RepoFullName, record.PRNumber, record.HeadSHA, record.Verdict,
		record.CriticalCount, record.HighCount, record.MediumCount, record.LowCount,
		record.Report, time.Now())
	return err
}

// GetLatestReviewForPR retrieves the most recent review for a given pull request.
func (s *postgresStore) GetLatestReviewForPR(ctx context.Context, repoFullName string, prNumber int) (*core.ReviewRecord, error) {
	query := `
		SELECT id, repo_full_name, pr_number, head_sha, verdict,
			critical_count, high_count, medium_count, low_count, report, created_at
		FROM reviews
		WHERE repo_full_name = $1 AND pr_number = $2
		ORDER BY created_at DESC
		LIMIT 1`

	var record core.ReviewRecord
	if err := s.db.GetContext(ctx, &record, query, repoFullName, prNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w for PR %s#%d", ErrNoReview, repoFullName, prNumber)
		}
		return nil, err
	}
	return &record, nil
}
