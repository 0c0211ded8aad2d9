package httphandler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/niksmo/game-storefront/internal/adapter/feedback"
	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/niksmo/game-storefront/internal/core/port"
)

// GET    v1/cart (200 OK)
// POST   v1/cart/items JSON {"id" int} (200 OK, 400 Bad request, 404 Not found)
// PUT    v1/cart/items/{id} JSON {"quantity" int} (200 OK, 400 Bad request)
// DELETE v1/cart/items/{id}, v1/cart (200 OK)
// POST   v1/cart/toggle, v1/cart/close (200 OK)
// POST   v1/cart/checkout (200 OK, 409 Conflict, 502 Bad gateway)

type CartHandler struct {
	catalog  port.CatalogLoader
	cart     port.CartDispatcher
	checkout port.CheckoutStarter
	feedback FeedbackJournal
	images   ImageRewriter
}

func RegisterCart(
	mux *http.ServeMux,
	catalog port.CatalogLoader,
	cart port.CartDispatcher,
	checkout port.CheckoutStarter,
	fb FeedbackJournal,
	images ImageRewriter,
) {
	h := CartHandler{catalog, cart, checkout, fb, images}
	mux.HandleFunc("GET /v1/cart", h.GetCart)
	mux.HandleFunc("POST /v1/cart/items", h.PostItem)
	mux.HandleFunc("PUT /v1/cart/items/{id}", h.PutItem)
	mux.HandleFunc("DELETE /v1/cart/items/{id}", h.DeleteItem)
	mux.HandleFunc("DELETE /v1/cart", h.DeleteCart)
	mux.HandleFunc("POST /v1/cart/toggle", h.PostToggle)
	mux.HandleFunc("POST /v1/cart/close", h.PostClose)
	mux.HandleFunc("POST /v1/cart/checkout", h.PostCheckout)
}

func (h CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.GetCart"
	h.respond(w, h.cart.State(), slog.With("op", op))
}

func (h CartHandler) PostItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PostItem"
	log := slog.With("op", op)

	var req AddItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	g, ok := h.catalog.Snapshot().Find(req.ID)
	if !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	s := h.cart.Dispatch(r.Context(), domain.AddItem{Game: g})
	h.feedback.Push(feedback.LevelSuccess, fmt.Sprintf("%s added to cart", g.Title))
	h.respond(w, s, log)
}

func (h CartHandler) PutItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PutItem"
	log := slog.With("op", op)

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req SetQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	s := h.cart.Dispatch(r.Context(), domain.SetQuantity{ID: id, Quantity: req.Quantity})
	h.feedback.Push(feedback.LevelInfo, "cart updated")
	h.respond(w, s, log)
}

func (h CartHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.DeleteItem"
	log := slog.With("op", op)

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s := h.cart.Dispatch(r.Context(), domain.RemoveItem{ID: id})
	h.feedback.Push(feedback.LevelInfo, "item removed from cart")
	h.respond(w, s, log)
}

func (h CartHandler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.DeleteCart"

	s := h.cart.Dispatch(r.Context(), domain.ClearCart{})
	h.feedback.Push(feedback.LevelInfo, "cart cleared")
	h.respond(w, s, slog.With("op", op))
}

func (h CartHandler) PostToggle(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PostToggle"
	h.respond(w, h.cart.Dispatch(r.Context(), domain.ToggleVisibility{}), slog.With("op", op))
}

func (h CartHandler) PostClose(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PostClose"
	h.respond(w, h.cart.Dispatch(r.Context(), domain.CloseCart{}), slog.With("op", op))
}

func (h CartHandler) PostCheckout(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PostCheckout"
	log := slog.With("op", op)

	redirect, err := h.checkout.Checkout(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCart) {
			http.Error(w, "cart is empty", http.StatusConflict)
			return
		}
		h.feedback.Push(feedback.LevelError, "checkout failed, please try again")
		http.Error(w, "checkout failed", http.StatusBadGateway)
		log.Error("checkout failed", "err", err)
		return
	}
	writeJSON(w, http.StatusOK, CheckoutResponse{RedirectURL: redirect}, log)
}

func (h CartHandler) respond(w http.ResponseWriter, s domain.CartState, log *slog.Logger) {
	c := toCart(s)
	for i := range c.Items {
		c.Items[i].Thumbnail = h.images.Rewrite(c.Items[i].Thumbnail)
	}
	writeJSON(w, http.StatusOK, c, log)
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
