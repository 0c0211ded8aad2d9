package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/niksmo/game-storefront/internal/core/port"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultRequestTimeout = 15 * time.Second
	DefaultFallbackDelay  = 5 * time.Second
)

const instrumentationName = "github.com/niksmo/game-storefront/internal/core/service"

var _ port.CatalogLoader = (*Catalog)(nil)

type CatalogConfig struct {
	// RequestTimeout bounds the primary request.
	RequestTimeout time.Duration
	// FallbackDelay is how long the primary may stay unresolved before the
	// fallback starts loading. It is always shorter than RequestTimeout.
	FallbackDelay time.Duration
	Query         port.CatalogQuery
	// MeterProvider receives the cycle counter. Nil means the global one.
	MeterProvider metric.MeterProvider
}

func (c *CatalogConfig) normalize() {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.FallbackDelay <= 0 || c.FallbackDelay >= c.RequestTimeout {
		c.FallbackDelay = min(DefaultFallbackDelay, c.RequestTimeout/3)
	}
	if c.MeterProvider == nil {
		c.MeterProvider = otel.GetMeterProvider()
	}
}

// Catalog owns the raw catalog. Every Load, Refetch or ForceFallback call
// produces a whole new snapshot; only the most recently started call may
// commit one.
type Catalog struct {
	primary   port.CatalogSource
	fallbacks []port.FallbackSource
	cache     port.CatalogCache
	cfg       CatalogConfig
	tracer    trace.Tracer
	cycles    metric.Int64Counter
	now       func() time.Time

	gen atomic.Uint64

	mu       sync.RWMutex
	loading  bool
	snapshot domain.CatalogSnapshot
}

// NewCatalog builds the acquisition service. cache may be nil; when set it
// is consulted before the bundled fallback and refreshed after every
// successful primary load.
func NewCatalog(
	primary port.CatalogSource,
	bundled port.FallbackSource,
	cache port.CatalogCache,
	cfg CatalogConfig,
) *Catalog {
	cfg.normalize()

	var fallbacks []port.FallbackSource
	if cache != nil {
		fallbacks = append(fallbacks, cache)
	}
	if bundled != nil {
		fallbacks = append(fallbacks, bundled)
	}

	cycles, err := cfg.MeterProvider.Meter(instrumentationName).Int64Counter(
		"storefront.catalog.cycles",
		metric.WithDescription("Committed catalog acquisition cycles by outcome"),
	)
	if err != nil {
		slog.Warn("failed to create catalog cycles counter", "err", err)
	}

	return &Catalog{
		primary:   primary,
		fallbacks: fallbacks,
		cache:     cache,
		cfg:       cfg,
		tracer:    otel.Tracer(instrumentationName),
		cycles:    cycles,
		now:       time.Now,
		snapshot:  domain.CatalogSnapshot{Games: []domain.Game{}, Status: domain.StatusIdle},
	}
}

func (s *Catalog) Snapshot() domain.CatalogSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Catalog) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Catalog) Load(ctx context.Context) (domain.CatalogSnapshot, error) {
	return s.acquire(ctx, "Catalog.Load")
}

func (s *Catalog) Refetch(ctx context.Context) (domain.CatalogSnapshot, error) {
	return s.acquire(ctx, "Catalog.Refetch")
}

// ForceFallback skips the primary source entirely.
func (s *Catalog) ForceFallback(ctx context.Context) (domain.CatalogSnapshot, error) {
	const op = "Catalog.ForceFallback"

	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	gen := s.begin()
	games, err := s.loadFallback(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return s.commitUnavailable(op, gen, err)
	}
	return s.commit(op, gen, games, true)
}

type fetchResult struct {
	games []domain.Game
	err   error
}

func (s *Catalog) acquire(ctx context.Context, op string) (domain.CatalogSnapshot, error) {
	log := slog.With("op", op)

	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	gen := s.begin()
	span.SetAttributes(attribute.Int64("catalog.generation", int64(gen)))

	primaryCtx, cancelPrimary := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancelPrimary()

	primaryCh := make(chan fetchResult, 1)
	go func() {
		games, err := s.primary.FetchCatalog(primaryCtx, s.cfg.Query)
		primaryCh <- fetchResult{games, err}
	}()

	race := time.NewTimer(s.cfg.FallbackDelay)
	defer race.Stop()

	var (
		fallbackCh               chan fetchResult
		primaryErr, fallbackErr  error
		primaryDone, fallbackRun bool
	)
	startFallback := func() {
		if fallbackRun {
			return
		}
		fallbackRun = true
		fallbackCh = make(chan fetchResult, 1)
		go func() {
			games, err := s.loadFallback(ctx)
			fallbackCh <- fetchResult{games, err}
		}()
	}

	for {
		select {
		case r := <-primaryCh:
			primaryCh, primaryDone = nil, true
			if r.err == nil {
				span.SetAttributes(attribute.Bool("catalog.fallback", false))
				snap, err := s.commit(op, gen, r.games, false)
				if err == nil {
					s.storeCache(ctx, r.games)
				}
				return snap, err
			}
			if ctx.Err() != nil {
				s.abandon(gen)
				return s.Snapshot(), fmt.Errorf("%s: %w", op, ctx.Err())
			}
			primaryErr = r.err
			log.Warn("primary source failed", "err", r.err)
			if fallbackRun && fallbackCh == nil {
				return s.failBoth(op, span, gen, primaryErr, fallbackErr)
			}
			startFallback()

		case r := <-fallbackCh:
			fallbackCh = nil
			if r.err == nil {
				// Terminal for this call: a late primary result is discarded.
				cancelPrimary()
				span.SetAttributes(attribute.Bool("catalog.fallback", true))
				return s.commit(op, gen, r.games, true)
			}
			fallbackErr = r.err
			log.Warn("fallback failed", "err", r.err)
			if primaryDone {
				return s.failBoth(op, span, gen, primaryErr, fallbackErr)
			}

		case <-race.C:
			log.Info("primary source is slow, loading fallback", "after", s.cfg.FallbackDelay)
			startFallback()

		case <-ctx.Done():
			s.abandon(gen)
			return s.Snapshot(), fmt.Errorf("%s: %w", op, ctx.Err())
		}
	}
}

func (s *Catalog) failBoth(
	op string, span trace.Span, gen uint64, primaryErr, fallbackErr error,
) (domain.CatalogSnapshot, error) {
	err := errors.Join(primaryErr, fallbackErr)
	span.SetStatus(codes.Error, err.Error())
	return s.commitUnavailable(op, gen, err)
}

// loadFallback tries every fallback layer in order.
func (s *Catalog) loadFallback(ctx context.Context) ([]domain.Game, error) {
	const op = "Catalog.loadFallback"
	log := slog.With("op", op)

	if len(s.fallbacks) == 0 {
		return nil, fmt.Errorf("%s: no fallback configured", op)
	}

	var errs []error
	for _, src := range s.fallbacks {
		games, err := src.LoadFallback(ctx)
		if err == nil && len(games) > 0 {
			return games, nil
		}
		if err == nil {
			err = errors.New("empty fallback layer")
		}
		log.Debug("fallback layer skipped", "err", err)
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("%s: %w", op, errors.Join(errs...))
}

func (s *Catalog) storeCache(ctx context.Context, games []domain.Game) {
	const op = "Catalog.storeCache"

	if s.cache == nil {
		return
	}
	if err := s.cache.StoreCatalog(ctx, games); err != nil {
		slog.Warn("failed to store catalog cache", "op", op, "err", err)
	}
}

func (s *Catalog) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	return s.gen.Add(1)
}

func (s *Catalog) abandon(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.gen.Load() {
		s.loading = false
	}
}

func (s *Catalog) commit(
	op string, gen uint64, games []domain.Game, usingFallback bool,
) (domain.CatalogSnapshot, error) {
	log := slog.With("op", op)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen.Load() {
		log.Info("result discarded", "generation", gen, "latest", s.gen.Load())
		return s.snapshot, fmt.Errorf("%s: %w", op, domain.ErrSuperseded)
	}

	snap := domain.CatalogSnapshot{
		Games:         games,
		UsingFallback: usingFallback,
		Generation:    gen,
		Status:        domain.StatusOK,
		LoadedAt:      s.now(),
	}
	if usingFallback {
		snap.Status = domain.StatusOffline
		snap.Message = domain.MessageOffline
	}

	s.snapshot = snap
	s.loading = false
	s.countCycle(snap.Status)
	log.Info("catalog committed",
		"generation", gen, "nGames", len(games), "usingFallback", usingFallback)
	return snap, nil
}

func (s *Catalog) commitUnavailable(
	op string, gen uint64, cause error,
) (domain.CatalogSnapshot, error) {
	log := slog.With("op", op)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen.Load() {
		return s.snapshot, fmt.Errorf("%s: %w", op, domain.ErrSuperseded)
	}

	s.snapshot = domain.CatalogSnapshot{
		Games:         []domain.Game{},
		UsingFallback: true,
		Generation:    gen,
		Status:        domain.StatusUnavailable,
		Message:       domain.MessageUnavailable,
		LoadedAt:      s.now(),
	}
	s.loading = false
	s.countCycle(domain.StatusUnavailable)
	log.Error("catalog unavailable", "generation", gen, "err", cause)
	return s.snapshot, fmt.Errorf("%s: %w: %w", op, domain.ErrCatalogUnavailable, cause)
}

func (s *Catalog) countCycle(status domain.CatalogStatus) {
	if s.cycles == nil {
		return
	}
	s.cycles.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("status", string(status))))
}
