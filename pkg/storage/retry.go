package storage

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// RetryConfig controls the retry behavior for single-object operations.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool

	// RetryableError decides whether an error is worth retrying. Errors
	// it rejects fail immediately.
	RetryableError func(error) bool
}

// DefaultRetryConfig returns the retry configuration used when none is
// supplied: three retries with exponential backoff and jitter, retrying only
// errors classified transient by the provider.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       10 * time.Second,
		Multiplier:     2.0,
		Jitter:         true,
		RetryableError: IsRetryable,
	}
}

// RetryOperation executes an operation with exponential backoff retry logic.
// Non-retryable errors are returned immediately.
func RetryOperation(ctx context.Context, config RetryConfig, operation func() error) error {
	retryable := config.RetryableError
	if retryable == nil {
		retryable = IsRetryable
	}

	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err

		if !retryable(err) {
			return fmt.Errorf("non-retryable error: %w", err)
		}

		if attempt == config.MaxRetries {
			break
		}

		delay := calculateDelay(attempt, config)

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("operation failed after %d retries: %w", config.MaxRetries, lastErr)
}

func calculateDelay(attempt int, config RetryConfig) time.Duration {
	delay := float64(config.InitialDelay) * math.Pow(config.Multiplier, float64(attempt))

	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}

	if config.Jitter {
		// Between 0% and 25% of the delay.
		jitter := rand.Float64() * 0.25 * delay
		delay += jitter
	}

	return time.Duration(delay)
}

// RetryWithBackoff retries an operation with the default configuration.
func RetryWithBackoff(ctx context.Context, operation func() error) error {
	return RetryOperation(ctx, DefaultRetryConfig(), operation)
}
