package port

import (
	"context"

	"github.com/niksmo/game-storefront/internal/core/domain"
)

// CatalogSource is the remote catalog.
type CatalogSource interface {
	FetchCatalog(context.Context, CatalogQuery) ([]domain.Game, error)
	FetchGame(ctx context.Context, id int) (domain.Game, error)
}

// CatalogQuery mirrors the query parameters the source understands.
type CatalogQuery struct {
	Platform string
	Category string
	SortBy   string
}

// FallbackSource provides catalog data when the remote source fails.
type FallbackSource interface {
	LoadFallback(context.Context) ([]domain.Game, error)
}

// CatalogCache keeps the last catalog received from the remote source.
type CatalogCache interface {
	FallbackSource
	StoreCatalog(context.Context, []domain.Game) error
}

type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type PaymentGateway interface {
	CreateCheckout(context.Context, domain.CartSnapshot) (redirectURL string, err error)
}

type (
	CatalogLoader interface {
		Load(context.Context) (domain.CatalogSnapshot, error)
		Refetch(context.Context) (domain.CatalogSnapshot, error)
		ForceFallback(context.Context) (domain.CatalogSnapshot, error)
		Snapshot() domain.CatalogSnapshot
		Loading() bool
	}

	DetailFetcher interface {
		FetchDetail(ctx context.Context, id int) (domain.Game, error)
	}

	CatalogBrowser interface {
		Browse(domain.CatalogSnapshot, domain.Criteria, int) domain.Page[domain.Game]
	}

	CollectionsProvider interface {
		Offers(domain.CatalogSnapshot, int) domain.Page[domain.Game]
		MustHave(domain.CatalogSnapshot, int) domain.Page[domain.Game]
	}

	CartDispatcher interface {
		Dispatch(context.Context, domain.CartAction) domain.CartState
		State() domain.CartState
	}

	FavoritesToggler interface {
		SwitchIdentity(ctx context.Context, identity string)
		Identity() string
		Toggle(context.Context, domain.Game) bool
		Contains(id int) bool
		IDs() []int
	}

	CheckoutStarter interface {
		Checkout(context.Context) (string, error)
	}
)
