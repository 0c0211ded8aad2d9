package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/niksmo/game-storefront/internal/core/port"
	"github.com/niksmo/game-storefront/pkg/schema"
)

// CatalogCacheKey is the record holding the last catalog received from the
// remote source.
const CatalogCacheKey = "catalog:fallback-cache"

var _ port.CatalogCache = (*CatalogCache)(nil)

// CatalogCache stores the last-known catalog avro encoded in a KVStore.
type CatalogCache struct {
	kv    port.KVStore
	serde schema.Serde
	now   func() time.Time
}

func NewCatalogCache(kv port.KVStore) CatalogCache {
	return CatalogCache{kv: kv, serde: schema.NewCatalogSerdeV1(), now: time.Now}
}

func (c CatalogCache) StoreCatalog(ctx context.Context, games []domain.Game) error {
	const op = "CatalogCache.StoreCatalog"

	v := schema.CatalogV1{
		SavedAt: c.now().UTC(),
		Games:   make([]schema.GameV1, len(games)),
	}
	for i, g := range games {
		v.Games[i] = toGameV1(g)
	}

	data, err := c.serde.Encode(v)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.kv.Put(ctx, CatalogCacheKey, data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// LoadFallback returns the cached catalog. An unreadable record is removed
// and reported as domain.ErrPersistenceCorrupt.
func (c CatalogCache) LoadFallback(ctx context.Context) ([]domain.Game, error) {
	const op = "CatalogCache.LoadFallback"
	log := slog.With("op", op)

	data, err := c.kv.Get(ctx, CatalogCacheKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var v schema.CatalogV1
	if err := c.serde.Decode(data, &v); err != nil {
		if delErr := c.kv.Delete(ctx, CatalogCacheKey); delErr != nil {
			log.Warn("failed to drop corrupt record", "err", delErr)
		}
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrPersistenceCorrupt, err)
	}

	games := make([]domain.Game, 0, len(v.Games))
	for _, rec := range v.Games {
		g := fromGameV1(rec)
		if err := domain.ValidateGame(g); err != nil {
			log.Warn("cached game dropped", "id", g.ID, "err", err)
			continue
		}
		games = append(games, g)
	}
	if len(games) == 0 && len(v.Games) > 0 {
		return nil, fmt.Errorf("%s: all %d cached records invalid: %w",
			op, len(v.Games), domain.ErrSchemaInvalid)
	}
	log.Debug("cached catalog loaded", "nGames", len(games), "savedAt", v.SavedAt)
	return games, nil
}

func toGameV1(g domain.Game) schema.GameV1 {
	return schema.GameV1{
		ID:               int64(g.ID),
		Title:            g.Title,
		Thumbnail:        g.Thumbnail,
		ShortDescription: g.ShortDescription,
		GameURL:          g.GameURL,
		Genre:            g.Genre,
		Platform:         g.Platform,
		Publisher:        g.Publisher,
		Developer:        g.Developer,
		ReleaseDate:      g.ReleaseDate,
		Price:            g.Price,
		Discount:         g.Discount,
		Rating:           g.Rating,
	}
}

func fromGameV1(g schema.GameV1) domain.Game {
	return domain.Game{
		ID:               int(g.ID),
		Title:            g.Title,
		Thumbnail:        g.Thumbnail,
		ShortDescription: g.ShortDescription,
		GameURL:          g.GameURL,
		Genre:            g.Genre,
		Platform:         g.Platform,
		Publisher:        g.Publisher,
		Developer:        g.Developer,
		ReleaseDate:      g.ReleaseDate,
		Price:            g.Price,
		Discount:         g.Discount,
		Rating:           g.Rating,
	}
}
