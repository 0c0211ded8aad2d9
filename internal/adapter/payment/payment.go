// Package payment is a local stand-in for the payment provider. It accepts
// a cart snapshot and hands back a checkout session URL without charging.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/niksmo/game-storefront/internal/core/port"
	"github.com/shopspring/decimal"
)

const DefaultCheckoutBaseURL = "https://checkout.example.com/session"

var (
	ErrInvalidSnapshot = errors.New("invalid cart snapshot")
	ErrUnknownSession  = errors.New("unknown checkout session")
)

var _ port.PaymentGateway = (*Simulated)(nil)

// Session is an opened checkout. Amount is the cart total in the
// snapshot's currency, rounded to cents.
type Session struct {
	ID       uuid.UUID
	Snapshot domain.CartSnapshot
	Amount   decimal.Decimal
}

type Simulated struct {
	baseURL *url.URL

	mu       sync.Mutex
	sessions map[uuid.UUID]Session
}

func NewSimulated(baseURL string) (*Simulated, error) {
	const op = "payment.NewSimulated"

	if baseURL == "" {
		baseURL = DefaultCheckoutBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("%s: base URL must be absolute: %q", op, baseURL)
	}
	return &Simulated{baseURL: u, sessions: make(map[uuid.UUID]Session)}, nil
}

// CreateCheckout validates the snapshot, opens a session and returns its
// redirect URL.
func (g *Simulated) CreateCheckout(ctx context.Context, s domain.CartSnapshot) (string, error) {
	const op = "Simulated.CreateCheckout"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	amount, err := validate(s)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id := uuid.New()
	g.mu.Lock()
	g.sessions[id] = Session{ID: id, Snapshot: s, Amount: amount}
	g.mu.Unlock()

	log.Info("checkout session created",
		"session", id, "amount", amount.StringFixed(2), "currency", s.Currency)
	return g.baseURL.JoinPath(id.String()).String(), nil
}

func (g *Simulated) Session(id string) (Session, error) {
	const op = "Simulated.Session"

	sid, err := uuid.Parse(id)
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, ErrUnknownSession)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[sid]
	if !ok {
		return Session{}, fmt.Errorf("%s: %w", op, ErrUnknownSession)
	}
	return s, nil
}

// validate checks the items and returns the amount to charge. The snapshot
// total must equal the sum of its line amounts to the cent.
func validate(s domain.CartSnapshot) (decimal.Decimal, error) {
	if len(s.Items) == 0 {
		return decimal.Zero, fmt.Errorf("%w: no items", ErrInvalidSnapshot)
	}

	sum := decimal.Zero
	for _, it := range s.Items {
		if it.Title == "" || it.Quantity < 1 || it.UnitPrice < 0 {
			return decimal.Zero, fmt.Errorf("%w: item %d", ErrInvalidSnapshot, it.ID)
		}
		sum = sum.Add(domain.LineAmount(it.UnitPrice, it.Quantity))
	}

	amount := sum
	if !amount.Equal(decimal.NewFromFloat(s.Total).Round(2)) {
		return decimal.Zero, fmt.Errorf("%w: total %v does not match items %s",
			ErrInvalidSnapshot, s.Total, amount.StringFixed(2))
	}
	return amount, nil
}
