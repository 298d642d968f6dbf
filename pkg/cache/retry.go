package cache

import (
	"context"
	"errors"
	"time"
)

// DefaultBackoff is the retry policy used by [RedisCache] unless
// [WithRedisBackoff] overrides it.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 50 * time.Millisecond}

// Backoff retries an operation whose failures are marked [Retryable]. The
// wait between attempts starts at Delay and doubles after each failure.
type Backoff struct {
	Attempts int
	Delay    time.Duration
}

// Do runs fn until it succeeds, fails with an error that is not retryable,
// runs out of attempts or ctx ends. At least one attempt is always made.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	wait := b.Delay
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !IsRetryable(err) || attempt >= b.Attempts {
			return err
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		wait *= 2
	}
}

type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Retryable marks err as transient so that [Backoff.Do] tries again.
// Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// IsRetryable reports whether err, or an error it wraps, was marked with
// [Retryable].
func IsRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}
