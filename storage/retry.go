package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 2

	// DefaultRetryDelay is the fixed wait between attempts.
	DefaultRetryDelay = time.Second
)

// FetchWithRetry calls fetch until it succeeds, fails with a non-retryable
// error or maxRetries retries have been spent, waiting delay between attempts.
// The error of the final attempt is returned.
//
// maxRetries of zero performs exactly one attempt. A negative maxRetries is a
// configuration mistake: it is logged and a single attempt is made.
func FetchWithRetry[T any](ctx context.Context, maxRetries int, delay time.Duration, log *slog.Logger, fetch func(ctx context.Context) (T, error)) (T, error) {
	if maxRetries < 0 {
		log.Warn("Invalid retry count, making a single attempt", slog.Int("maxRetries", maxRetries))
		return fetch(ctx)
	}

	var (
		result  T
		attempt int
	)

	operation := func() error {
		attempt++
		value, err := fetch(ctx)
		if err == nil {
			result = value
			return nil
		}

		if !Retryable(err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}

		if attempt <= maxRetries {
			log.Debug("Fetch failed, retrying",
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
				"err", err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(maxRetries)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
