package storage

import (
	"context"
	"errors"

	"github.com/ruteri/sites-portal-backend/interfaces"
)

var (
	// ErrServerError marks a 5xx response from a blob source. It is retried.
	ErrServerError = errors.New("blob source server error")

	// ErrClientError marks a 4xx response other than 404. It is not retried.
	ErrClientError = errors.New("blob source rejected the request")
)

// Retryable reports whether a failed fetch may succeed when attempted again.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, interfaces.ErrNotFound),
		errors.Is(err, ErrClientError),
		errors.Is(err, interfaces.ErrBadInput),
		errors.Is(err, context.Canceled):
		return false
	default:
		return true
	}
}

// fetchOutcome labels a fetch result for metrics.
func fetchOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, interfaces.ErrNotFound):
		return "not_found"
	case errors.Is(err, interfaces.ErrIntegrityMismatch):
		return "integrity_mismatch"
	case errors.Is(err, ErrServerError):
		return "server_error"
	case errors.Is(err, ErrClientError):
		return "client_error"
	case errors.Is(err, interfaces.ErrUpstreamUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
