package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/game-storefront/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func noWait(int) time.Duration { return 0 }

func TestDoWithResult(t *testing.T) {
	t.Run("FirstAttemptSucceeds", func(t *testing.T) {
		calls := 0
		v, err := retry.DoWithResult(t.Context(), retry.RetryConfig{MaxAttempts: 5, Backoff: noWait},
			func(context.Context) (int, error) {
				calls++
				return 42, nil
			})
		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.Equal(t, 1, calls)
	})

	t.Run("SucceedsAfterFailures", func(t *testing.T) {
		calls := 0
		v, err := retry.DoWithResult(t.Context(), retry.RetryConfig{MaxAttempts: 5, Backoff: noWait},
			func(context.Context) (string, error) {
				calls++
				if calls < 3 {
					return "", errBoom
				}
				return "ok", nil
			})
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
		assert.Equal(t, 3, calls)
	})

	t.Run("ExhaustsAttempts", func(t *testing.T) {
		calls := 0
		_, err := retry.DoWithResult(t.Context(), retry.RetryConfig{MaxAttempts: 5, Backoff: noWait},
			func(context.Context) (int, error) {
				calls++
				return 0, errBoom
			})
		require.Error(t, err)
		assert.Equal(t, 5, calls)
		assert.ErrorIs(t, err, errBoom)
		n, ok := retry.Attempts(err)
		require.True(t, ok)
		assert.Equal(t, 5, n)
		assert.Contains(t, err.Error(), "5 attempts")
	})

	t.Run("NotRetryable", func(t *testing.T) {
		calls := 0
		_, err := retry.DoWithResult(t.Context(), retry.RetryConfig{
			MaxAttempts: 5,
			Backoff:     noWait,
			ShouldRetry: func(error) bool { return false },
		}, func(context.Context) (int, error) {
			calls++
			return 0, errBoom
		})
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, 1, calls)
		_, ok := retry.Attempts(err)
		assert.False(t, ok)
	})

	t.Run("AttemptTimeout", func(t *testing.T) {
		calls := 0
		_, err := retry.DoWithResult(t.Context(), retry.RetryConfig{
			MaxAttempts:    2,
			AttemptTimeout: 10 * time.Millisecond,
			Backoff:        noWait,
		}, func(ctx context.Context) (int, error) {
			calls++
			<-ctx.Done()
			return 0, ctx.Err()
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 2, calls)
	})

	t.Run("CanceledWhileWaiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		_, err := retry.DoWithResult(ctx, retry.RetryConfig{
			MaxAttempts: 5,
			Backoff:     func(int) time.Duration { return time.Hour },
		}, func(context.Context) (int, error) {
			cancel()
			return 0, errBoom
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, err, errBoom)
	})
}

func TestExponentialBackoff(t *testing.T) {
	b := retry.ExponentialBackoff(time.Second)
	assert.Equal(t, 2*time.Second, b(1))
	assert.Equal(t, 4*time.Second, b(2))
	assert.Equal(t, 16*time.Second, b(4))
}

func TestJitterBackoff(t *testing.T) {
	b := retry.JitterBackoff(100 * time.Millisecond)
	for range 20 {
		d := b(1)
		assert.GreaterOrEqual(t, d, 200*time.Millisecond)
		assert.LessOrEqual(t, d, 300*time.Millisecond)
	}
}
