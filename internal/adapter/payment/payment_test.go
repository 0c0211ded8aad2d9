package payment_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/game-storefront/internal/adapter/payment"
	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func snapshot() domain.CartSnapshot {
	state := domain.CartState{Items: []domain.CartItem{
		{ID: 1, Title: "Warframe", UnitPrice: 10, Quantity: 2},
	}}
	return state.Snapshot(time.Now())
}

func TestSimulated(t *testing.T) {
	t.Run("CreatesSession", func(t *testing.T) {
		g, err := payment.NewSimulated("https://pay.example/session")
		require.NoError(t, err)

		redirect, err := g.CreateCheckout(t.Context(), snapshot())
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(redirect, "https://pay.example/session/"))

		id := strings.TrimPrefix(redirect, "https://pay.example/session/")
		_, err = uuid.Parse(id)
		require.NoError(t, err)

		s, err := g.Session(id)
		require.NoError(t, err)
		assert.Equal(t, "20.00", s.Amount.StringFixed(2))
		assert.InDelta(t, 20.0, s.Snapshot.Total, 1e-9)
	})

	t.Run("UniqueSessions", func(t *testing.T) {
		g, err := payment.NewSimulated("")
		require.NoError(t, err)
		a, err := g.CreateCheckout(t.Context(), snapshot())
		require.NoError(t, err)
		b, err := g.CreateCheckout(t.Context(), snapshot())
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("EmptySnapshot", func(t *testing.T) {
		g, err := payment.NewSimulated("")
		require.NoError(t, err)
		_, err = g.CreateCheckout(t.Context(), domain.CartSnapshot{})
		require.ErrorIs(t, err, payment.ErrInvalidSnapshot)
	})

	t.Run("CentAccurateAmount", func(t *testing.T) {
		g, err := payment.NewSimulated("")
		require.NoError(t, err)
		state := domain.CartState{Items: []domain.CartItem{
			{ID: 1, Title: "a", UnitPrice: 0.1, Quantity: 3},
			{ID: 2, Title: "b", UnitPrice: 29.99, Quantity: 1},
		}}
		redirect, err := g.CreateCheckout(t.Context(), state.Snapshot(time.Now()))
		require.NoError(t, err)

		s, err := g.Session(redirect[strings.LastIndex(redirect, "/")+1:])
		require.NoError(t, err)
		assert.Equal(t, "30.29", s.Amount.StringFixed(2))
	})

	t.Run("SubCentPrices", func(t *testing.T) {
		g, err := payment.NewSimulated("")
		require.NoError(t, err)
		state := domain.CartState{Items: []domain.CartItem{
			{ID: 1, Title: "a", UnitPrice: 4.159, Quantity: 5},
		}}
		redirect, err := g.CreateCheckout(t.Context(), state.Snapshot(time.Now()))
		require.NoError(t, err)

		s, err := g.Session(redirect[strings.LastIndex(redirect, "/")+1:])
		require.NoError(t, err)
		assert.Equal(t, "20.80", s.Amount.StringFixed(2))
	})
}

func TestSimulatedAcceptsEveryValidCart(t *testing.T) {
	g, err := payment.NewSimulated("")
	require.NoError(t, err)

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(rt, "nItems")
		items := make([]domain.CartItem, n)
		for i := range items {
			millis := rapid.IntRange(0, 100_000).Draw(rt, "millis")
			items[i] = domain.CartItem{
				ID:        i + 1,
				Title:     "x",
				UnitPrice: float64(millis) / 1000,
				Quantity:  rapid.IntRange(1, 50).Draw(rt, "quantity"),
			}
		}
		state := domain.CartState{Items: items}
		_, err := g.CreateCheckout(context.Background(), state.Snapshot(time.Now()))
		require.NoError(rt, err)
	})
}

func TestSimulatedFailures(t *testing.T) {
	t.Run("TotalMismatch", func(t *testing.T) {
		g, err := payment.NewSimulated("")
		require.NoError(t, err)
		s := snapshot()
		s.Total = 1
		_, err = g.CreateCheckout(t.Context(), s)
		require.ErrorIs(t, err, payment.ErrInvalidSnapshot)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		g, err := payment.NewSimulated("")
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err = g.CreateCheckout(ctx, snapshot())
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("UnknownSession", func(t *testing.T) {
		g, err := payment.NewSimulated("")
		require.NoError(t, err)
		_, err = g.Session(uuid.NewString())
		require.ErrorIs(t, err, payment.ErrUnknownSession)
		_, err = g.Session("nope")
		require.ErrorIs(t, err, payment.ErrUnknownSession)
	})

	t.Run("RelativeBaseURL", func(t *testing.T) {
		_, err := payment.NewSimulated("/session")
		require.Error(t, err)
	})
}
