package service

import (
	"sync"

	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/niksmo/game-storefront/internal/core/port"
)

var _ port.CollectionsProvider = (*Collections)(nil)

// Collections derives the offers and must-have views. Synthesized discounts
// and ratings are computed once per catalog generation.
type Collections struct {
	pageSize int

	mu       sync.Mutex
	gen      uint64
	valid    bool
	derived  []domain.Game
	offers   []domain.Game
	mustHave []domain.Game
}

func NewCollections(pageSize int) *Collections {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	return &Collections{pageSize: pageSize}
}

// Derived returns the catalog with discount and rating filled in.
func (c *Collections) Derived(snap domain.CatalogSnapshot) []domain.Game {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refresh(snap)
	return c.derived
}

func (c *Collections) Offers(snap domain.CatalogSnapshot, page int) domain.Page[domain.Game] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refresh(snap)
	return domain.Paginate(c.offers, c.pageSize, max(1, page))
}

func (c *Collections) MustHave(snap domain.CatalogSnapshot, page int) domain.Page[domain.Game] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refresh(snap)
	return domain.Paginate(c.mustHave, c.pageSize, max(1, page))
}

func (c *Collections) refresh(snap domain.CatalogSnapshot) {
	if c.valid && c.gen == snap.Generation {
		return
	}
	c.derived = domain.WithRating(domain.WithDiscount(snap.Games, snap.Generation), snap.Generation)
	c.offers = domain.Offers(c.derived)
	c.mustHave = domain.MustHave(c.derived)
	c.gen = snap.Generation
	c.valid = true
}
