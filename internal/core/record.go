package core

import "time"

// ReviewRecord is a single stored review report.
type ReviewRecord struct {
	ID            int64     `db:"id"`
	RepoFullName  string    `db:"repo_full_name"`
	PRNumber      int       `db:"pr_number"`
	HeadSHA       string    `db:"head_sha"`
	Verdict       string    `db:"verdict"`
	CriticalCount int       `db:"critical_count"`
	HighCount     int       `db:"high_count"`
	MediumCount   int       `db:"medium_count"`
	LowCount      int       `db:"low_count"`
	Report        []byte    `db:"report"`
	CreatedAt     time.Time `db:"created_at"`
}
