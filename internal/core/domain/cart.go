package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

type (
	CartItem struct {
		ID        int     `json:"id"`
		Title     string  `json:"title"`
		Thumbnail string  `json:"thumbnail,omitempty"`
		UnitPrice float64 `json:"price"`
		Quantity  int     `json:"quantity"`
	}

	CartState struct {
		Items []CartItem
		Open  bool
	}
)

// Total is the sum of unit price times quantity.
func (s CartState) Total() float64 {
	var total float64
	for _, it := range s.Items {
		total += it.UnitPrice * float64(it.Quantity)
	}
	return total
}

// Count is the total quantity across all items.
func (s CartState) Count() int {
	var n int
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

func (s CartState) index(id int) int {
	return slices.IndexFunc(s.Items, func(it CartItem) bool { return it.ID == id })
}

func (s CartState) clone() CartState {
	return CartState{Items: slices.Clone(s.Items), Open: s.Open}
}

// CartAction is a transition of the cart state machine.
type CartAction interface {
	// MutatesContents reports whether the action can change the items and
	// therefore needs to be written through to the store.
	MutatesContents() bool
	apply(CartState) CartState
}

type (
	AddItem struct {
		Game Game
	}
	SetQuantity struct {
		ID       int
		Quantity int
	}
	RemoveItem struct {
		ID int
	}
	ClearCart        struct{}
	ToggleVisibility struct{}
	CloseCart        struct{}
)

// Reduce returns the state after action. s is left untouched.
func Reduce(s CartState, action CartAction) CartState {
	if action == nil {
		return s.clone()
	}
	return action.apply(s.clone())
}

func (a AddItem) MutatesContents() bool { return true }

func (a AddItem) apply(s CartState) CartState {
	if i := s.index(a.Game.ID); i >= 0 {
		s.Items[i].Quantity++
		return s
	}
	s.Items = append(s.Items, CartItem{
		ID:        a.Game.ID,
		Title:     a.Game.Title,
		Thumbnail: a.Game.Thumbnail,
		UnitPrice: a.Game.EffectivePrice(),
		Quantity:  1,
	})
	return s
}

func (a SetQuantity) MutatesContents() bool { return true }

// Unknown ids are ignored and quantities below one are raised to one.
// Removal only happens through RemoveItem.
func (a SetQuantity) apply(s CartState) CartState {
	i := s.index(a.ID)
	if i < 0 {
		return s
	}
	s.Items[i].Quantity = max(1, a.Quantity)
	return s
}

func (a RemoveItem) MutatesContents() bool { return true }

func (a RemoveItem) apply(s CartState) CartState {
	s.Items = slices.DeleteFunc(s.Items, func(it CartItem) bool { return it.ID == a.ID })
	return s
}

func (ClearCart) MutatesContents() bool { return true }

func (ClearCart) apply(s CartState) CartState {
	s.Items = nil
	return s
}

func (ToggleVisibility) MutatesContents() bool { return false }

func (ToggleVisibility) apply(s CartState) CartState {
	s.Open = !s.Open
	return s
}

func (CloseCart) MutatesContents() bool { return false }

func (CloseCart) apply(s CartState) CartState {
	s.Open = false
	return s
}

// NormalizeCartItems drops entries that break the cart invariants, as can
// happen with hand-edited or stale stored data. The first entry of a
// duplicated id wins.
func NormalizeCartItems(items []CartItem) []CartItem {
	out := make([]CartItem, 0, len(items))
	seen := make(map[int]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ID]; ok || it.Quantity < 1 || it.UnitPrice < 0 {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}

type (
	CartSnapshotItem struct {
		ID        int
		Title     string
		UnitPrice float64
		Quantity  int
		Subtotal  float64
	}

	// CartSnapshot is what the payment gateway receives at checkout.
	CartSnapshot struct {
		Items      []CartSnapshotItem
		Total      float64
		Currency   string
		CapturedAt time.Time
	}
)

// LineAmount is unit price times quantity rounded to cents. Snapshot totals
// are sums of line amounts, so a gateway recomputing them gets the same
// value.
func LineAmount(unitPrice float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// Snapshot captures the cart for checkout with cent-exact amounts.
func (s CartState) Snapshot(now time.Time) CartSnapshot {
	items := make([]CartSnapshotItem, len(s.Items))
	total := decimal.Zero
	for i, it := range s.Items {
		line := LineAmount(it.UnitPrice, it.Quantity)
		total = total.Add(line)
		items[i] = CartSnapshotItem{
			ID:        it.ID,
			Title:     it.Title,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  line.InexactFloat64(),
		}
	}
	return CartSnapshot{
		Items:      items,
		Total:      total.InexactFloat64(),
		Currency:   "USD",
		CapturedAt: now,
	}
}
