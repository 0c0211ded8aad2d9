package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/niksmo/game-storefront/internal/core/port"
)

type Deps struct {
	Source   port.CatalogSource
	Fallback port.FallbackSource
	Cache    port.CatalogCache
	Store    port.KVStore
	Gateway  port.PaymentGateway
}

type Config struct {
	Catalog  CatalogConfig
	Details  DetailsConfig
	PageSize int
}

// Service groups the storefront state owners. Each of them is the sole
// mutator of its own state.
type Service struct {
	Catalog     *Catalog
	Details     *Details
	Browser     *Browser
	Collections *Collections
	Cart        *Cart
	Favorites   *Favorites
	Checkout    *Checkout

	wg sync.WaitGroup
}

func New(ctx context.Context, d Deps, cfg Config) *Service {
	store := NewPersistence(d.Store)
	cart := NewCart(ctx, store)

	return &Service{
		Catalog:     NewCatalog(d.Source, d.Fallback, d.Cache, cfg.Catalog),
		Details:     NewDetails(d.Source, cfg.Details),
		Browser:     NewBrowser(cfg.PageSize),
		Collections: NewCollections(cfg.PageSize),
		Cart:        cart,
		Favorites:   NewFavorites(store),
		Checkout:    NewCheckout(cart, d.Gateway),
	}
}

// Run starts the initial catalog load in a separate goroutine.
func (s *Service) Run(ctx context.Context) {
	const op = "Service.Run"
	log := slog.With("op", op)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		snap, err := s.Catalog.Load(ctx)
		if err != nil && !errors.Is(err, domain.ErrSuperseded) {
			log.Error("initial catalog load failed", "err", err)
			return
		}
		log.Info("initial catalog loaded",
			"nGames", len(snap.Games), "status", snap.Status)
	}()
}

// Close waits for the initial load to return.
func (s *Service) Close() {
	s.wg.Wait()
}
