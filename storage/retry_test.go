package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/sites-portal-backend/interfaces"
)

// scriptedFetch returns the scripted errors in order, then succeeds.
func scriptedFetch(script []error) (func(context.Context) (string, error), *int) {
	calls := 0
	return func(context.Context) (string, error) {
		calls++
		if calls <= len(script) && script[calls-1] != nil {
			return "", script[calls-1]
		}
		return "ok", nil
	}, &calls
}

func TestFetchWithRetry_RecoversFromServerErrors(t *testing.T) {
	fetch, calls := scriptedFetch([]error{
		fmt.Errorf("%w: 500", ErrServerError),
		fmt.Errorf("%w: 500", ErrServerError),
	})

	result, err := FetchWithRetry(context.Background(), 2, time.Millisecond, testLogger, fetch)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, *calls)
}

func TestFetchWithRetry_ReturnsLastError(t *testing.T) {
	first := fmt.Errorf("%w: attempt 1", ErrServerError)
	second := fmt.Errorf("%w: attempt 2", interfaces.ErrUpstreamUnavailable)
	last := errors.New("attempt 3: connection reset")
	fetch, calls := scriptedFetch([]error{first, second, last, nil})

	_, err := FetchWithRetry(context.Background(), 2, time.Millisecond, testLogger, fetch)
	assert.Equal(t, last, err)
	assert.Equal(t, 3, *calls)
}

func TestFetchWithRetry_PermanentErrors(t *testing.T) {
	for _, permanent := range []error{
		fmt.Errorf("%w: blob", interfaces.ErrNotFound),
		fmt.Errorf("%w: 403", ErrClientError),
	} {
		fetch, calls := scriptedFetch([]error{permanent})

		_, err := FetchWithRetry(context.Background(), 5, time.Millisecond, testLogger, fetch)
		assert.Equal(t, permanent, err)
		assert.Equal(t, 1, *calls)
	}
}

func TestFetchWithRetry_ZeroAndNegativeRetries(t *testing.T) {
	failure := fmt.Errorf("%w: 500", ErrServerError)

	fetch, calls := scriptedFetch([]error{failure})
	start := time.Now()
	_, err := FetchWithRetry(context.Background(), 0, time.Hour, testLogger, fetch)
	assert.Equal(t, failure, err)
	assert.Equal(t, 1, *calls)
	assert.Less(t, time.Since(start), time.Minute)

	fetch, calls = scriptedFetch([]error{failure})
	_, err = FetchWithRetry(context.Background(), -1, time.Hour, testLogger, fetch)
	assert.Equal(t, failure, err)
	assert.Equal(t, 1, *calls)
}

func TestFetchWithRetry_ContextCancelStopsWaiting(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	fetch, calls := scriptedFetch([]error{ErrServerError, ErrServerError, ErrServerError})
	start := time.Now()
	_, err := FetchWithRetry(ctx, 2, time.Hour, testLogger, fetch)
	assert.Error(t, err)
	assert.Equal(t, 1, *calls)
	assert.Less(t, time.Since(start), time.Minute)
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(ErrServerError))
	assert.True(t, Retryable(interfaces.ErrUpstreamUnavailable))
	assert.True(t, Retryable(interfaces.ErrIntegrityMismatch))
	assert.True(t, Retryable(errors.New("dial tcp: connection refused")))
	assert.False(t, Retryable(interfaces.ErrNotFound))
	assert.False(t, Retryable(ErrClientError))
	assert.False(t, Retryable(context.Canceled))
	assert.False(t, Retryable(nil))
}
