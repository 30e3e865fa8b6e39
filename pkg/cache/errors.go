package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNetwork marks a remote backend that could not be reached or
	// answered with a connection level failure.
	ErrNetwork = errors.New("cache backend unreachable")

	// ErrCorrupt marks a stored material entry that no longer decodes.
	ErrCorrupt = errors.New("corrupt cache entry")
)

// transient flags a backend failure worth another attempt, such as a
// dropped Redis connection. Misses and decode failures are never transient.
type transient struct{ err error }

func (t *transient) Error() string { return t.err.Error() }
func (t *transient) Unwrap() error { return t.err }

// Retryable marks err as transient for [RetryWithBackoff]. A nil err stays
// nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &transient{err: err}
}

// IsRetryable reports whether err, or anything it wraps, was marked by
// [Retryable].
func IsRetryable(err error) bool {
	var t *transient
	return errors.As(err, &t)
}

// retryBaseDelay is the pause after the first failed attempt.
var retryBaseDelay = 200 * time.Millisecond

// retryAttempts bounds the calls RetryWithBackoff makes.
const retryAttempts = 3

// RetryWithBackoff calls fn until it succeeds, fails permanently or runs
// out of attempts, doubling the pause between calls. The last error is
// returned; cancelling ctx during a pause returns ctx.Err().
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := retryBaseDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt == retryAttempts {
			return err
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
