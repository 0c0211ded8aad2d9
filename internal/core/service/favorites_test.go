package service_test

import (
	"testing"

	"github.com/niksmo/game-storefront/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavorites(t *testing.T) {
	zelda := game(1, "Zelda", "Adventure", "Switch", "2017-03-03")
	mario := game(2, "Mario", "Platformer", "Switch", "1985-09-13")

	t.Run("PerIdentity", func(t *testing.T) {
		kv := newMemKV()
		f := service.NewFavorites(service.NewPersistence(kv))

		f.SwitchIdentity(t.Context(), "Alice@Example.com ")
		assert.Equal(t, "alice@example.com", f.Identity())
		assert.True(t, f.Toggle(t.Context(), mario))
		assert.True(t, f.Toggle(t.Context(), zelda))
		assert.Equal(t, []int{1, 2}, f.IDs())

		raw, ok := kv.raw(service.FavoritesKey("alice@example.com"))
		require.True(t, ok)
		assert.JSONEq(t, `[1,2]`, string(raw))

		f.SwitchIdentity(t.Context(), "bob@example.com")
		assert.Empty(t, f.IDs())
		f.Toggle(t.Context(), mario)

		f.SwitchIdentity(t.Context(), "alice@example.com")
		assert.Equal(t, []int{1, 2}, f.IDs())
	})

	t.Run("ToggleRemoves", func(t *testing.T) {
		f := service.NewFavorites(service.NewPersistence(newMemKV()))
		f.SwitchIdentity(t.Context(), "alice@example.com")

		assert.True(t, f.Toggle(t.Context(), zelda))
		assert.True(t, f.Contains(zelda.ID))
		assert.False(t, f.Toggle(t.Context(), zelda))
		assert.False(t, f.Contains(zelda.ID))
		assert.Empty(t, f.IDs())
	})

	t.Run("AnonymousNotPersisted", func(t *testing.T) {
		kv := newMemKV()
		f := service.NewFavorites(service.NewPersistence(kv))

		assert.True(t, f.Toggle(t.Context(), zelda))
		assert.Equal(t, []int{1}, f.IDs())
		assert.Zero(t, kv.puts)

		f.SwitchIdentity(t.Context(), "alice@example.com")
		assert.Empty(t, f.IDs())
	})

	t.Run("SignOutClears", func(t *testing.T) {
		f := service.NewFavorites(service.NewPersistence(newMemKV()))
		f.SwitchIdentity(t.Context(), "alice@example.com")
		f.Toggle(t.Context(), zelda)

		f.SwitchIdentity(t.Context(), "")
		assert.Empty(t, f.Identity())
		assert.Empty(t, f.IDs())
	})

	t.Run("CorruptRecordDiscarded", func(t *testing.T) {
		kv := newMemKV()
		kv.data[service.FavoritesKey("alice@example.com")] = []byte(`"oops"`)
		f := service.NewFavorites(service.NewPersistence(kv))

		f.SwitchIdentity(t.Context(), "alice@example.com")
		assert.Empty(t, f.IDs())
	})
}
