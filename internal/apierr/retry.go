package apierr

import (
	"context"
	"fmt"
	"time"
)

// Backoff controls how translation calls are retried.
//
// The zero value makes a single attempt. Retry n (1-based) waits
// Base*2^(n-1), capped at Max.
type Backoff struct {
	Retries int
	Base    time.Duration
	Max     time.Duration

	// Retry decides whether an error is worth another attempt.
	// Nil uses Retryable.
	Retry func(error) bool

	// OnRetry, if set, is called before each wait with the 1-based retry
	// number, the upcoming delay, and the error that triggered it.
	OnRetry func(retry int, delay time.Duration, err error)
}

// Delay returns the wait before retry n (1-based).
func (b Backoff) Delay(n int) time.Duration {
	base := b.Base
	if base <= 0 {
		base = time.Millisecond
	}
	limit := b.Max
	if limit < base {
		limit = base
	}
	d := base
	for i := 1; i < n && d < limit; i++ {
		d *= 2
	}
	return min(d, limit)
}

// Do calls fn until it succeeds, returns an error Retry rejects, or the
// retries run out. A canceled ctx stops it before the next attempt.
// With no retries configured, the error of the single attempt is returned
// unwrapped.
func Do[T any](ctx context.Context, b Backoff, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	retry := b.Retry
	if retry == nil {
		retry = Retryable
	}
	retries := max(b.Retries, 0)

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			delay := b.Delay(attempt)
			if b.OnRetry != nil {
				b.OnRetry(attempt, delay, lastErr)
			}
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retry(err) {
			return zero, err
		}
	}

	if retries == 0 {
		return zero, lastErr
	}
	return zero, fmt.Errorf("giving up after %d attempts: %w", retries+1, lastErr)
}
