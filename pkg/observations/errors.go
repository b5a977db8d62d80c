package observations

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
)

// QueryError indicates malformed or unsupported search criteria, such as a
// filter referencing a column the index does not have. It is surfaced
// immediately and never retried.
type QueryError struct {
	Column string
	Reason string
}

func (e *QueryError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("query error: column %q: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("query error: %s", e.Reason)
}

// NewQueryError creates a QueryError for the given column.
func NewQueryError(column, reason string) *QueryError {
	return &QueryError{Column: column, Reason: reason}
}

// NotFoundError indicates no metadata exists for a sequence id when an
// eager lookup was requested. Lazily constructed accessors with empty meta
// do not produce this error.
type NotFoundError struct {
	SequenceID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no observation found for sequence id %q", e.SequenceID)
}

// DownloadError aggregates the per-object failures of one download batch.
// It is raised only after a best-effort attempt at every enumerated object;
// completed files are kept.
type DownloadError struct {
	// Failed maps each failed object key to its underlying cause.
	Failed map[string]error
}

// FailedKeys returns the failed object keys, sorted.
func (e *DownloadError) FailedKeys() []string {
	keys := make([]string, 0, len(e.Failed))
	for key := range e.Failed {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (e *DownloadError) Error() string {
	var merr *multierror.Error
	for _, key := range e.FailedKeys() {
		merr = multierror.Append(merr, fmt.Errorf("%s: %w", key, e.Failed[key]))
	}
	return fmt.Sprintf("failed to download %d object(s): %v", len(e.Failed), merr)
}

// Unwrap exposes the underlying causes as a multierror so callers can use
// errors.Is/As against individual failures.
func (e *DownloadError) Unwrap() error {
	var merr *multierror.Error
	for _, key := range e.FailedKeys() {
		merr = multierror.Append(merr, e.Failed[key])
	}
	return merr
}

// NewDownloadError builds a DownloadError, or returns nil if there were no
// failures.
func NewDownloadError(failed map[string]error) error {
	if len(failed) == 0 {
		return nil
	}
	return &DownloadError{Failed: failed}
}
