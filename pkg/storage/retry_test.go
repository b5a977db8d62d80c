package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryOperation(t *testing.T) {
	tests := []struct {
		name          string
		succeedOn     int // call number that succeeds; 0 means never
		maxRetries    int
		retryable     bool
		wantErr       bool
		expectedCalls int
	}{
		{
			name:          "success on first attempt",
			succeedOn:     1,
			maxRetries:    3,
			retryable:     true,
			expectedCalls: 1,
		},
		{
			name:          "success after retries",
			succeedOn:     3,
			maxRetries:    3,
			retryable:     true,
			expectedCalls: 3,
		},
		{
			name:          "failure after max retries",
			succeedOn:     0,
			maxRetries:    3,
			retryable:     true,
			wantErr:       true,
			expectedCalls: 4, // initial + 3 retries
		},
		{
			name:          "non-retryable error stops immediately",
			succeedOn:     0,
			maxRetries:    3,
			retryable:     false,
			wantErr:       true,
			expectedCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			callCount := 0
			operation := func() error {
				callCount++
				if tt.succeedOn > 0 && callCount >= tt.succeedOn {
					return nil
				}
				if tt.retryable {
					return NewRetryableError(errors.New("transient"))
				}
				return errors.New("permanent")
			}

			config := RetryConfig{
				MaxRetries:     tt.maxRetries,
				InitialDelay:   time.Millisecond,
				MaxDelay:       5 * time.Millisecond,
				Multiplier:     2.0,
				RetryableError: IsRetryable,
			}

			err := RetryOperation(context.Background(), config, operation)
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if callCount != tt.expectedCalls {
				t.Errorf("expected %d calls, got %d", tt.expectedCalls, callCount)
			}
		})
	}
}

func TestRetryOperationCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	operation := func() error {
		calls++
		if calls == 1 {
			cancel()
		}
		return NewRetryableError(errors.New("transient"))
	}

	config := DefaultRetryConfig()
	config.InitialDelay = 50 * time.Millisecond

	err := RetryOperation(ctx, config, operation)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single call before cancellation, got %d", calls)
	}
}

func TestCalculateDelay(t *testing.T) {
	config := RetryConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}

	if got := calculateDelay(0, config); got != 100*time.Millisecond {
		t.Errorf("attempt 0: expected 100ms, got %v", got)
	}
	if got := calculateDelay(1, config); got != 200*time.Millisecond {
		t.Errorf("attempt 1: expected 200ms, got %v", got)
	}
	// Capped at MaxDelay.
	if got := calculateDelay(10, config); got != time.Second {
		t.Errorf("attempt 10: expected cap at 1s, got %v", got)
	}

	config.Jitter = true
	got := calculateDelay(0, config)
	if got < 100*time.Millisecond || got > 125*time.Millisecond {
		t.Errorf("jittered delay out of range: %v", got)
	}
}

func TestRetryOperationNilPredicateDefaults(t *testing.T) {
	config := RetryConfig{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   1.5,
	}

	calls := 0
	err := RetryOperation(context.Background(), config, func() error {
		calls++
		if calls == 1 {
			return NewRetryableError(errors.New("transient"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("want 2 calls, got %d", calls)
	}

	calls = 0
	err = RetryOperation(context.Background(), config, func() error {
		calls++
		return errors.New("permanent")
	})
	if err == nil {
		t.Fatal("want error for permanent failure")
	}
	if calls != 1 {
		t.Fatalf("permanent failure must not be retried, got %d calls", calls)
	}
}
