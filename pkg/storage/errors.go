package storage

import (
	"errors"
	"fmt"
)

// Common storage errors.
var (
	// ErrNotFound indicates the requested object was not found.
	ErrNotFound = errors.New("storage: object not found")

	// ErrAccessDenied indicates access was denied.
	ErrAccessDenied = errors.New("storage: access denied")

	// ErrInvalidKey indicates an invalid object key was provided.
	ErrInvalidKey = errors.New("storage: invalid key")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("storage: invalid configuration")

	// ErrTimeout indicates the operation timed out.
	ErrTimeout = errors.New("storage: operation timed out")
)

// Error represents a storage error with operation context.
type Error struct {
	Op       string // Operation that failed
	Key      string // Object key involved in the operation
	Provider string // Storage provider type
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s: %s failed for %s: %v", e.Provider, e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage %s: %s failed: %v", e.Provider, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target error.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new storage error.
func NewError(op string, key string, provider string, err error) error {
	return &Error{
		Op:       op,
		Key:      key,
		Provider: provider,
		Err:      err,
	}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAccessDenied checks if an error is an access denied error.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// RetryableError wraps a transient fault to mark it safe to retry.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var retryable *RetryableError
	return errors.As(err, &retryable)
}

// NewRetryableError creates a new retryable error.
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
