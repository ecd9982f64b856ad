package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound reports a key with no entry.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable reports a remote backend that cannot be reached.
	ErrUnavailable = errors.New("cache unavailable")
)

// RetryableError marks a transient failure, such as a dropped Redis
// connection, that RetryWithBackoff may try again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. It returns nil for a nil err.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err was marked with Retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

const retryAttempts = 3

// retryDelay is the pause before the second attempt; it doubles after that.
var retryDelay = 200 * time.Millisecond

// RetryWithBackoff calls fn until it succeeds, fails permanently, or has run
// retryAttempts times.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := retryDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt == retryAttempts {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
