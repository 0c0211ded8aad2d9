package domain

import "time"

// DefaultPrice is used wherever a game carries no price of its own.
const DefaultPrice = 29.99

type (
	Game struct {
		ID               int
		Title            string
		Thumbnail        string
		ShortDescription string
		GameURL          string
		Genre            string
		Platform         string
		Publisher        string
		Developer        string
		ReleaseDate      string
		Price            *float64
		Discount         *int
		Rating           *float64
	}

	CatalogStatus string

	// CatalogSnapshot is an immutable view of the catalog produced by one
	// acquisition cycle. Games is replaced wholesale on every cycle.
	CatalogSnapshot struct {
		Games         []Game
		UsingFallback bool
		Generation    uint64
		Status        CatalogStatus
		Message       string
		LoadedAt      time.Time
	}
)

const (
	StatusIdle        CatalogStatus = "idle"
	StatusOK          CatalogStatus = "ok"
	StatusOffline     CatalogStatus = "offline"
	StatusUnavailable CatalogStatus = "unavailable"
)

const (
	MessageOffline     = "offline data in use"
	MessageUnavailable = "data unavailable"
)

// EffectivePrice returns the game price or DefaultPrice when absent.
func (g Game) EffectivePrice() float64 {
	if g.Price == nil {
		return DefaultPrice
	}
	return *g.Price
}

// DiscountedPrice applies the discount, if any, to the effective price.
func (g Game) DiscountedPrice() float64 {
	p := g.EffectivePrice()
	if g.Discount == nil || *g.Discount <= 0 {
		return p
	}
	return p * float64(100-*g.Discount) / 100
}

func (g Game) discountValue() int {
	if g.Discount == nil {
		return 0
	}
	return *g.Discount
}

func (g Game) ratingValue() float64 {
	if g.Rating == nil {
		return 0
	}
	return *g.Rating
}

func (g Game) priceValue() float64 {
	if g.Price == nil {
		return 0
	}
	return *g.Price
}

// Find returns the game with the given id.
func (s CatalogSnapshot) Find(id int) (Game, bool) {
	for _, g := range s.Games {
		if g.ID == id {
			return g, true
		}
	}
	return Game{}, false
}
