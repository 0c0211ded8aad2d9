package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/niksmo/game-storefront/internal/core/port"
)

// CartKey is the record holding the cart items.
const CartKey = "cart"

var _ port.CartDispatcher = (*Cart)(nil)

// Cart is the only owner of the cart state. Consumers dispatch actions and
// read copies.
type Cart struct {
	store Persistence

	mu    sync.Mutex
	state domain.CartState
}

// NewCart restores the cart from the store. Absent or unreadable data gives
// an empty cart.
func NewCart(ctx context.Context, store Persistence) *Cart {
	const op = "NewCart"
	log := slog.With("op", op)

	c := &Cart{store: store}

	var items []domain.CartItem
	found, err := store.Read(ctx, CartKey, &items)
	switch {
	case err != nil:
		log.Warn("stored cart discarded", "err", err)
	case found:
		c.state.Items = domain.NormalizeCartItems(items)
		log.Info("cart restored", "nItems", len(c.state.Items))
	}
	return c
}

// Dispatch applies action and, when the contents may have changed, writes
// the items through before returning. Write failures are logged only.
func (c *Cart) Dispatch(ctx context.Context, action domain.CartAction) domain.CartState {
	const op = "Cart.Dispatch"
	log := slog.With("op", op)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = domain.Reduce(c.state, action)

	if action != nil && action.MutatesContents() {
		items := c.state.Items
		if items == nil {
			items = []domain.CartItem{}
		}
		if err := c.store.Write(ctx, CartKey, items); err != nil {
			log.Error("failed to persist cart", "err", err)
		}
	}
	return c.copyState()
}

func (c *Cart) State() domain.CartState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyState()
}

func (c *Cart) copyState() domain.CartState {
	return domain.CartState{Items: slices.Clone(c.state.Items), Open: c.state.Open}
}
