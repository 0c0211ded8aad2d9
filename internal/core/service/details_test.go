package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/niksmo/game-storefront/internal/core/service"
	"github.com/niksmo/game-storefront/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDetails(t *testing.T) {
	cfg := service.DetailsConfig{
		MaxAttempts:    5,
		AttemptTimeout: time.Second,
		BackoffUnit:    time.Millisecond,
	}
	errBoom := errors.New("boom")

	t.Run("FirstAttemptSucceeds", func(t *testing.T) {
		src := &MockSource{}
		want := game(7, "Zelda", "Adventure", "Switch", "2017-03-03")
		src.On("FetchGame", mock.Anything, 7).Return(want, nil).Once()

		got, err := service.NewDetails(src, cfg).FetchDetail(t.Context(), 7)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		src.AssertExpectations(t)
	})

	t.Run("SucceedsAfterRetries", func(t *testing.T) {
		src := &MockSource{}
		want := game(7, "Zelda", "Adventure", "Switch", "2017-03-03")
		src.On("FetchGame", mock.Anything, 7).Return(domain.Game{}, errBoom).Twice()
		src.On("FetchGame", mock.Anything, 7).Return(want, nil).Once()

		got, err := service.NewDetails(src, cfg).FetchDetail(t.Context(), 7)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		src.AssertNumberOfCalls(t, "FetchGame", 3)
	})

	t.Run("GivesUpAfterFiveAttempts", func(t *testing.T) {
		src := &MockSource{}
		src.On("FetchGame", mock.Anything, 7).Return(domain.Game{}, errBoom)

		_, err := service.NewDetails(src, cfg).FetchDetail(t.Context(), 7)
		require.Error(t, err)
		assert.ErrorIs(t, err, errBoom)
		assert.Contains(t, err.Error(), "5 attempts")

		n, ok := retry.Attempts(err)
		require.True(t, ok)
		assert.Equal(t, 5, n)
		src.AssertNumberOfCalls(t, "FetchGame", 5)
	})

	t.Run("NotFoundIsRetriedToo", func(t *testing.T) {
		src := &MockSource{}
		src.On("FetchGame", mock.Anything, 7).
			Return(domain.Game{}, &domain.HTTPStatusError{StatusCode: 404})

		_, err := service.NewDetails(src, cfg).FetchDetail(t.Context(), 7)
		require.ErrorIs(t, err, domain.ErrHTTP)
		src.AssertNumberOfCalls(t, "FetchGame", 5)
	})

	t.Run("CanceledWhileWaiting", func(t *testing.T) {
		src := &MockSource{}
		src.On("FetchGame", mock.Anything, 7).Return(domain.Game{}, errBoom)

		ctx, cancel := context.WithTimeout(t.Context(), 30*time.Millisecond)
		defer cancel()

		d := service.NewDetails(src, service.DetailsConfig{BackoffUnit: time.Hour})
		_, err := d.FetchDetail(ctx, 7)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		src.AssertNumberOfCalls(t, "FetchGame", 1)
	})

	t.Run("ConcurrentLookupsShareAttempts", func(t *testing.T) {
		release := make(chan struct{})
		src := &MockSource{}
		want := game(7, "Zelda", "Adventure", "Switch", "2017-03-03")
		src.On("FetchGame", mock.Anything, 7).
			Run(func(mock.Arguments) { <-release }).Return(want, nil)

		d := service.NewDetails(src, cfg)

		var wg sync.WaitGroup
		results := make([]domain.Game, 4)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], _ = d.FetchDetail(t.Context(), 7)
			}()
		}
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		for _, g := range results {
			assert.Equal(t, want, g)
		}
		calls := len(src.Calls)
		assert.GreaterOrEqual(t, calls, 1)
		assert.Less(t, calls, len(results))
	})

	t.Run("CanceledCallerLeavesSharedLookupRunning", func(t *testing.T) {
		want := game(7, "Zelda", "Adventure", "Switch", "2017-03-03")
		started := make(chan struct{})
		release := make(chan struct{})
		var once sync.Once
		src := &fakeSource{gameFn: func(ctx context.Context, _ int) (domain.Game, error) {
			once.Do(func() { close(started) })
			select {
			case <-release:
				return want, nil
			case <-ctx.Done():
				return domain.Game{}, ctx.Err()
			}
		}}
		d := service.NewDetails(src, cfg)

		firstCtx, cancelFirst := context.WithCancel(t.Context())
		firstErr := make(chan error, 1)
		go func() {
			_, err := d.FetchDetail(firstCtx, 7)
			firstErr <- err
		}()
		<-started

		var second domain.Game
		secondErr := make(chan error, 1)
		go func() {
			g, err := d.FetchDetail(t.Context(), 7)
			second = g
			secondErr <- err
		}()
		time.Sleep(20 * time.Millisecond)

		cancelFirst()
		require.ErrorIs(t, <-firstErr, context.Canceled)

		close(release)
		require.NoError(t, <-secondErr)
		assert.Equal(t, want, second)
	})
}
