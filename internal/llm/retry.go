package llm

import (
	"context"
	"time"
)

// BackoffFunc returns how long to wait after the given failed attempt (1-based).
type BackoffFunc func(attempt int) time.Duration

// LinearBackoff waits attempt × base between attempts.
func LinearBackoff(base time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * base
	}
}

// RunWithRetry calls fn up to attempts times, sleeping between failures.
// It returns nil on the first success and the last error otherwise. A
// cancelled context stops the loop early.
func RunWithRetry(ctx context.Context, attempts int, backoff BackoffFunc, fn func(ctx context.Context, attempt int) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		var wait time.Duration
		if backoff != nil {
			wait = backoff(attempt)
		}
		if wait <= 0 {
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}
	return lastErr
}
