package service

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/niksmo/game-storefront/internal/core/port"
)

const favoritesKeyPrefix = "favorites:"

var _ port.FavoritesToggler = (*Favorites)(nil)

// FavoritesKey returns the record key of identity's favorites.
func FavoritesKey(identity string) string {
	return favoritesKeyPrefix + identity
}

// Favorites is the favorite set of the active identity. Without an identity
// the set is transient and never written.
type Favorites struct {
	store Persistence

	mu       sync.Mutex
	identity string
	ids      map[int]struct{}
}

func NewFavorites(store Persistence) *Favorites {
	return &Favorites{store: store, ids: make(map[int]struct{})}
}

// SwitchIdentity replaces the whole set with the one stored for identity.
// An empty identity signs out.
func (f *Favorites) SwitchIdentity(ctx context.Context, identity string) {
	const op = "Favorites.SwitchIdentity"
	log := slog.With("op", op)

	identity = strings.ToLower(strings.TrimSpace(identity))

	f.mu.Lock()
	defer f.mu.Unlock()

	f.identity = identity
	f.ids = make(map[int]struct{})
	if identity == "" {
		return
	}

	var ids []int
	found, err := f.store.Read(ctx, FavoritesKey(identity), &ids)
	if err != nil {
		log.Warn("stored favorites discarded", "err", err)
		return
	}
	if found {
		for _, id := range ids {
			f.ids[id] = struct{}{}
		}
	}
}

func (f *Favorites) Identity() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.identity
}

// Toggle removes g if present, adds it otherwise, and reports whether it
// was added.
func (f *Favorites) Toggle(ctx context.Context, g domain.Game) bool {
	const op = "Favorites.Toggle"
	log := slog.With("op", op)

	f.mu.Lock()
	defer f.mu.Unlock()

	_, present := f.ids[g.ID]
	if present {
		delete(f.ids, g.ID)
	} else {
		f.ids[g.ID] = struct{}{}
	}

	if f.identity != "" {
		if err := f.store.Write(ctx, FavoritesKey(f.identity), f.sortedIDs()); err != nil {
			log.Error("failed to persist favorites", "err", err)
		}
	}
	return !present
}

func (f *Favorites) Contains(id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.ids[id]
	return ok
}

// IDs returns the favorite ids in ascending order.
func (f *Favorites) IDs() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sortedIDs()
}

func (f *Favorites) sortedIDs() []int {
	return slices.Sorted(maps.Keys(f.ids))
}
