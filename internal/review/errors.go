package review

import (
	"errors"
	"fmt"
)

// ErrContentNotFound is returned by a Source when a file does not exist at
// the requested ref. The orchestrator treats it as empty content rather than
// a failure.
var ErrContentNotFound = errors.New("content not found")

// ConfigError reports an invalid configuration value or a malformed custom
// rule. It is always raised before any file content is fetched or scanned.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid review configuration: %s: %s", e.Field, e.Reason)
}

// FetchError wraps a collaborator failure that aborts the whole review.
// A not-found condition is never a FetchError.
type FetchError struct {
	Path string
	Err  error
}

func (e *FetchError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to fetch review data: %v", e.Err)
	}
	return fmt.Sprintf("failed to fetch content for %q: %v", e.Path, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
