package service_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/niksmo/game-storefront/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCart(t *testing.T) {
	zelda := game(1, "Zelda", "Adventure", "Switch", "2017-03-03")
	mario := game(2, "Mario", "Platformer", "Switch", "1985-09-13")
	mario.Price = ptr(10.0)

	t.Run("AddTwiceIncrementsQuantity", func(t *testing.T) {
		kv := newMemKV()
		c := service.NewCart(t.Context(), service.NewPersistence(kv))

		c.Dispatch(t.Context(), domain.AddItem{Game: zelda})
		s := c.Dispatch(t.Context(), domain.AddItem{Game: zelda})

		require.Len(t, s.Items, 1)
		assert.Equal(t, 2, s.Items[0].Quantity)
		assert.Equal(t, domain.DefaultPrice, s.Items[0].UnitPrice)
		assert.InDelta(t, 2*domain.DefaultPrice, s.Total(), 1e-9)
	})

	t.Run("AddSetRemove", func(t *testing.T) {
		kv := newMemKV()
		c := service.NewCart(t.Context(), service.NewPersistence(kv))

		c.Dispatch(t.Context(), domain.AddItem{Game: mario})
		s := c.Dispatch(t.Context(), domain.SetQuantity{ID: mario.ID, Quantity: 3})
		assert.InDelta(t, 30.0, s.Total(), 1e-9)

		s = c.Dispatch(t.Context(), domain.RemoveItem{ID: mario.ID})
		assert.Empty(t, s.Items)
		assert.Zero(t, s.Total())

		raw, ok := kv.raw(service.CartKey)
		require.True(t, ok)
		assert.JSONEq(t, `[]`, string(raw))
	})

	t.Run("WritesThrough", func(t *testing.T) {
		kv := newMemKV()
		c := service.NewCart(t.Context(), service.NewPersistence(kv))
		c.Dispatch(t.Context(), domain.AddItem{Game: mario})

		raw, ok := kv.raw(service.CartKey)
		require.True(t, ok)
		var items []domain.CartItem
		require.NoError(t, json.Unmarshal(raw, &items))
		assert.Equal(t, c.State().Items, items)

		restored := service.NewCart(t.Context(), service.NewPersistence(kv))
		assert.Equal(t, c.State().Items, restored.State().Items)
	})

	t.Run("VisibilityIsNotPersisted", func(t *testing.T) {
		kv := newMemKV()
		c := service.NewCart(t.Context(), service.NewPersistence(kv))

		s := c.Dispatch(t.Context(), domain.ToggleVisibility{})
		assert.True(t, s.Open)
		assert.Zero(t, kv.puts)

		s = c.Dispatch(t.Context(), domain.CloseCart{})
		assert.False(t, s.Open)
		assert.Zero(t, kv.puts)
	})

	t.Run("CorruptStoredCart", func(t *testing.T) {
		kv := newMemKV()
		kv.data[service.CartKey] = []byte("{not json")

		c := service.NewCart(t.Context(), service.NewPersistence(kv))
		assert.Empty(t, c.State().Items)
		_, ok := kv.raw(service.CartKey)
		assert.False(t, ok)
	})

	t.Run("InvalidStoredItemsDropped", func(t *testing.T) {
		kv := newMemKV()
		kv.data[service.CartKey] = []byte(
			`[{"id":1,"title":"a","price":5,"quantity":2},` +
				`{"id":2,"title":"b","price":5,"quantity":0},` +
				`{"id":1,"title":"dup","price":5,"quantity":1}]`)

		c := service.NewCart(t.Context(), service.NewPersistence(kv))
		require.Len(t, c.State().Items, 1)
		assert.Equal(t, "a", c.State().Items[0].Title)
	})

	t.Run("WriteFailureKeepsState", func(t *testing.T) {
		kv := newMemKV()
		kv.putErr = errors.New("disk full")
		c := service.NewCart(t.Context(), service.NewPersistence(kv))

		s := c.Dispatch(t.Context(), domain.AddItem{Game: zelda})
		assert.Len(t, s.Items, 1)
	})

	t.Run("StateIsACopy", func(t *testing.T) {
		c := service.NewCart(t.Context(), service.NewPersistence(newMemKV()))
		s := c.Dispatch(t.Context(), domain.AddItem{Game: zelda})
		s.Items[0].Quantity = 99
		assert.Equal(t, 1, c.State().Items[0].Quantity)
	})
}

func TestCartInvariants(t *testing.T) {
	ids := []int{1, 2, 3, 4}

	rapid.Check(t, func(rt *rapid.T) {
		c := service.NewCart(t.Context(), service.NewPersistence(newMemKV()))

		n := rapid.IntRange(1, 40).Draw(rt, "n")
		for range n {
			id := rapid.SampledFrom(ids).Draw(rt, "id")
			var action domain.CartAction
			switch rapid.IntRange(0, 5).Draw(rt, "kind") {
			case 0, 1:
				g := domain.Game{ID: id, Title: "g"}
				if rapid.Bool().Draw(rt, "priced") {
					g.Price = ptr(rapid.Float64Range(0, 100).Draw(rt, "price"))
				}
				action = domain.AddItem{Game: g}
			case 2:
				action = domain.SetQuantity{ID: id, Quantity: rapid.IntRange(-3, 10).Draw(rt, "qty")}
			case 3:
				action = domain.RemoveItem{ID: id}
			case 4:
				action = domain.ToggleVisibility{}
			default:
				action = domain.ClearCart{}
			}
			c.Dispatch(t.Context(), action)
		}

		s := c.State()
		var sum float64
		seen := make(map[int]bool)
		for _, it := range s.Items {
			if seen[it.ID] {
				rt.Fatalf("duplicate id %d", it.ID)
			}
			seen[it.ID] = true
			if it.Quantity < 1 {
				rt.Fatalf("quantity %d < 1", it.Quantity)
			}
			sum += it.UnitPrice * float64(it.Quantity)
		}
		if math.Abs(sum-s.Total()) > 1e-9 {
			rt.Fatalf("total %v != %v", s.Total(), sum)
		}
	})
}
