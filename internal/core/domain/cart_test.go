package domain_test

import (
	"testing"
	"time"

	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce(t *testing.T) {
	x := domain.Game{ID: 7, Title: "X", Price: ptr(10.0)}

	t.Run("AddSetRemove", func(t *testing.T) {
		s := domain.Reduce(domain.CartState{}, domain.AddItem{Game: x})
		s = domain.Reduce(s, domain.SetQuantity{ID: 7, Quantity: 3})
		assert.InDelta(t, 30.0, s.Total(), 1e-9)
		assert.Equal(t, 3, s.Count())

		s = domain.Reduce(s, domain.RemoveItem{ID: 7})
		assert.Empty(t, s.Items)
		assert.Zero(t, s.Total())
	})

	t.Run("DefaultPrice", func(t *testing.T) {
		s := domain.Reduce(domain.CartState{}, domain.AddItem{Game: domain.Game{ID: 1, Title: "free"}})
		assert.Equal(t, domain.DefaultPrice, s.Items[0].UnitPrice)
	})

	t.Run("SetQuantityFloor", func(t *testing.T) {
		s := domain.Reduce(domain.CartState{}, domain.AddItem{Game: x})
		for _, n := range []int{0, -4} {
			assert.Equal(t, 1, domain.Reduce(s, domain.SetQuantity{ID: 7, Quantity: n}).Items[0].Quantity)
		}
	})

	t.Run("SetQuantityUnknownID", func(t *testing.T) {
		s := domain.Reduce(domain.CartState{}, domain.AddItem{Game: x})
		assert.Equal(t, s, domain.Reduce(s, domain.SetQuantity{ID: 8, Quantity: 5}))
	})

	t.Run("VisibilityIndependentOfContents", func(t *testing.T) {
		s := domain.Reduce(domain.CartState{}, domain.AddItem{Game: x})
		s = domain.Reduce(s, domain.ToggleVisibility{})
		assert.True(t, s.Open)
		s = domain.Reduce(s, domain.ClearCart{})
		assert.True(t, s.Open)
		assert.Empty(t, s.Items)
		s = domain.Reduce(s, domain.CloseCart{})
		assert.False(t, s.Open)
	})

	t.Run("InputUntouched", func(t *testing.T) {
		s := domain.Reduce(domain.CartState{}, domain.AddItem{Game: x})
		_ = domain.Reduce(s, domain.AddItem{Game: x})
		assert.Equal(t, 1, s.Items[0].Quantity)
	})

	t.Run("Snapshot", func(t *testing.T) {
		s := domain.Reduce(domain.CartState{}, domain.AddItem{Game: x})
		s = domain.Reduce(s, domain.AddItem{Game: x})
		now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		snap := s.Snapshot(now)
		require.Len(t, snap.Items, 1)
		assert.InDelta(t, 20.0, snap.Items[0].Subtotal, 1e-9)
		assert.InDelta(t, 20.0, snap.Total, 1e-9)
		assert.Equal(t, "USD", snap.Currency)
		assert.Equal(t, now, snap.CapturedAt)
	})

	t.Run("SnapshotRoundsLinesToCents", func(t *testing.T) {
		s := domain.CartState{Items: []domain.CartItem{
			{ID: 1, Title: "a", UnitPrice: 4.159, Quantity: 5},
			{ID: 2, Title: "b", UnitPrice: 0.1, Quantity: 3},
		}}

		snap := s.Snapshot(time.Now())
		assert.Equal(t, 20.8, snap.Items[0].Subtotal)
		assert.Equal(t, 0.3, snap.Items[1].Subtotal)
		assert.Equal(t, 21.1, snap.Total)
		assert.Equal(t, "20.80", domain.LineAmount(4.159, 5).StringFixed(2))
	})
}

func TestNormalizeCartItems(t *testing.T) {
	got := domain.NormalizeCartItems([]domain.CartItem{
		{ID: 1, UnitPrice: 5, Quantity: 1},
		{ID: 1, UnitPrice: 5, Quantity: 4},
		{ID: 2, UnitPrice: 5, Quantity: 0},
		{ID: 3, UnitPrice: -1, Quantity: 1},
		{ID: 4, UnitPrice: 0, Quantity: 2},
	})
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 4, got[1].ID)
}
