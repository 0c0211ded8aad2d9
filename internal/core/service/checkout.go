package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/niksmo/game-storefront/internal/core/port"
)

var _ port.CheckoutStarter = (*Checkout)(nil)

// Checkout hands a snapshot of the cart to the payment gateway. The cart is
// left as is; clearing it is up to the caller once payment is confirmed.
type Checkout struct {
	cart    port.CartDispatcher
	gateway port.PaymentGateway
	now     func() time.Time
}

func NewCheckout(cart port.CartDispatcher, gateway port.PaymentGateway) *Checkout {
	return &Checkout{cart: cart, gateway: gateway, now: time.Now}
}

func (s *Checkout) Checkout(ctx context.Context) (string, error) {
	const op = "Checkout.Checkout"
	log := slog.With("op", op)

	state := s.cart.State()
	if len(state.Items) == 0 {
		return "", fmt.Errorf("%s: %w", op, domain.ErrEmptyCart)
	}

	snap := state.Snapshot(s.now().UTC())
	redirect, err := s.gateway.CreateCheckout(ctx, snap)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("checkout started", "nItems", len(snap.Items), "total", snap.Total)
	return redirect, nil
}
