package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure as transient. The registry HTTP layer
// wraps 5xx responses and transport errors with it so [Retry] can tell
// a flaky archive host apart from a definitive answer like a 404.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry executes fn up to attempts times with exponential backoff. Only
// errors wrapped in [RetryableError] are retried; anything else is
// returned immediately. The delay doubles after each failed attempt.
// Returns the last error if all attempts fail, or ctx.Err() if cancelled.
//
// Registry discovery never goes through here — a failing backend hands
// off to the next one in the failover chain instead of being retried in
// place. Archive downloads do: the archive host sits outside that chain,
// so a bounded second attempt is the only recourse.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := 0; i < attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// RetryWithBackoff runs [Retry] with the download defaults: 3 attempts
// starting at 1 second, doubling each retry.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
