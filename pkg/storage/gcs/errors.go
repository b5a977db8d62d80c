package gcs

import (
	"context"
	"errors"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/panoptes/panoptes-data-go/pkg/storage"
)

// errStopPagination signals Pages to stop early once MaxResults is reached.
var errStopPagination = errors.New("stop pagination")

// classifyError maps transport and API errors onto the storage error
// taxonomy. Not-found and permission failures are permanent; 5xx, 408, 429,
// and network timeouts are marked retryable.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusNotFound:
			return storage.ErrNotFound
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return storage.ErrAccessDenied
		case apiErr.Code == http.StatusRequestTimeout || apiErr.Code == http.StatusTooManyRequests:
			return storage.NewRetryableError(err)
		case apiErr.Code >= 500:
			return storage.NewRetryableError(err)
		default:
			return err
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return storage.NewRetryableError(storage.ErrTimeout)
	}

	// Connection resets and other transport-level faults.
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return storage.NewRetryableError(err)
	}

	return err
}
