package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

const defaultDelay = 100 * time.Millisecond

type Backoff func(attempt int) time.Duration

type ShouldRetry func(error) bool

type RetryConfig struct {
	MaxAttempts int
	// AttemptTimeout bounds every single attempt. Zero means no bound
	// beyond the parent context.
	AttemptTimeout time.Duration
	Backoff        Backoff
	ShouldRetry    ShouldRetry
}

// AttemptsError is returned once every attempt has failed.
type AttemptsError struct {
	Attempts int
	Err      error
}

func (e *AttemptsError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *AttemptsError) Unwrap() error {
	return e.Err
}

// Attempts extracts the number of attempts from err, if it carries one.
func Attempts(err error) (int, bool) {
	var ae *AttemptsError
	if errors.As(err, &ae) {
		return ae.Attempts, true
	}
	return 0, false
}

func (s *RetryConfig) normalize() {
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = 1
	}

	if s.Backoff == nil {
		s.Backoff = defaultBackoff()
	}

	if s.ShouldRetry == nil {
		s.ShouldRetry = alwaysRetry
	}
}

func defaultBackoff() Backoff {
	return JitterBackoff(defaultDelay)
}

func alwaysRetry(error) bool {
	return true
}

// ExponentialBackoff waits unit * 2^attempt.
func ExponentialBackoff(unit time.Duration) Backoff {
	return func(attempt int) time.Duration {
		return (1 << attempt) * unit
	}
}

// JitterBackoff is ExponentialBackoff plus up to half of it at random.
func JitterBackoff(delay time.Duration) Backoff {
	exp := ExponentialBackoff(delay)
	return func(attempt int) time.Duration {
		base := exp(attempt)
		if half := int64(base / 2); half > 0 {
			return base + time.Duration(rand.Int64N(half)+1)
		}
		return base
	}
}

// DoWithResult calls fn until it succeeds, ShouldRetry rejects its error or
// MaxAttempts is reached. There is no wait after the last attempt.
func DoWithResult[T any](
	ctx context.Context, c RetryConfig, fn func(context.Context) (T, error),
) (T, error) {
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	c.normalize()
	timer := time.NewTimer(0)
	<-timer.C
	defer timer.Stop()

	var err error
	for attempt := 1; attempt <= c.MaxAttempts; attempt++ {
		var result T
		result, err = runAttempt(ctx, c.AttemptTimeout, fn)
		if err == nil {
			return result, nil
		}
		if !c.ShouldRetry(err) {
			return zero, err
		}
		if attempt == c.MaxAttempts {
			break
		}

		timer.Reset(c.Backoff(attempt))
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("%w: %w", ctx.Err(), &AttemptsError{attempt, err})
		case <-timer.C:
		}
	}

	return zero, &AttemptsError{Attempts: c.MaxAttempts, Err: err}
}

func runAttempt[T any](
	ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error),
) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx)
}
