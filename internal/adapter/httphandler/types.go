package httphandler

import (
	"time"

	"github.com/niksmo/game-storefront/internal/core/domain"
)

type (
	Game struct {
		ID               int      `json:"id"`
		Title            string   `json:"title"`
		Thumbnail        string   `json:"thumbnail"`
		ShortDescription string   `json:"short_description,omitempty"`
		GameURL          string   `json:"game_url,omitempty"`
		Genre            string   `json:"genre"`
		Platform         string   `json:"platform"`
		Publisher        string   `json:"publisher"`
		Developer        string   `json:"developer,omitempty"`
		ReleaseDate      string   `json:"release_date"`
		Price            float64  `json:"price"`
		FinalPrice       float64  `json:"final_price"`
		Discount         *int     `json:"discount,omitempty"`
		Rating           *float64 `json:"rating,omitempty"`
		Favorite         bool     `json:"favorite"`
	}

	GamesPage struct {
		Items      []Game        `json:"items"`
		Page       int           `json:"page"`
		TotalPages int           `json:"total_pages"`
		HasNext    bool          `json:"has_next"`
		HasPrev    bool          `json:"has_prev"`
		Catalog    CatalogStatus `json:"catalog"`
	}

	CatalogStatus struct {
		Status        string    `json:"status"`
		Message       string    `json:"message,omitempty"`
		UsingFallback bool      `json:"using_fallback"`
		Loading       bool      `json:"loading"`
		Generation    uint64    `json:"generation"`
		NGames        int       `json:"n_games"`
		LoadedAt      time.Time `json:"loaded_at,omitzero"`
	}
)

type (
	CartItem struct {
		ID        int     `json:"id"`
		Title     string  `json:"title"`
		Thumbnail string  `json:"thumbnail,omitempty"`
		UnitPrice float64 `json:"unit_price"`
		Quantity  int     `json:"quantity"`
		Subtotal  float64 `json:"subtotal"`
	}

	Cart struct {
		Items []CartItem `json:"items"`
		Count int        `json:"count"`
		Total float64    `json:"total"`
		Open  bool       `json:"open"`
	}

	AddItemRequest struct {
		ID int `json:"id"`
	}

	SetQuantityRequest struct {
		Quantity int `json:"quantity"`
	}

	CheckoutResponse struct {
		RedirectURL string `json:"redirect_url"`
	}
)

type (
	SessionRequest struct {
		Identity string `json:"identity"`
	}

	Favorites struct {
		Identity string `json:"identity,omitempty"`
		IDs      []int  `json:"ids"`
		Games    []Game `json:"games"`
	}

	FavoriteToggled struct {
		ID       int  `json:"id"`
		Favorite bool `json:"favorite"`
	}
)

func toCatalogStatus(snap domain.CatalogSnapshot, loading bool) CatalogStatus {
	return CatalogStatus{
		Status:        string(snap.Status),
		Message:       snap.Message,
		UsingFallback: snap.UsingFallback,
		Loading:       loading,
		Generation:    snap.Generation,
		NGames:        len(snap.Games),
		LoadedAt:      snap.LoadedAt,
	}
}

func toCart(s domain.CartState) Cart {
	items := make([]CartItem, len(s.Items))
	for i, it := range s.Items {
		items[i] = CartItem{
			ID:        it.ID,
			Title:     it.Title,
			Thumbnail: it.Thumbnail,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  it.UnitPrice * float64(it.Quantity),
		}
	}
	return Cart{Items: items, Count: s.Count(), Total: s.Total(), Open: s.Open}
}
