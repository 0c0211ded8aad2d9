package httphandler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/niksmo/game-storefront/internal/adapter/feedback"
	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/niksmo/game-storefront/internal/core/port"
)

// PUT    v1/session JSON {"identity" string} (200 OK, 400 Bad request)
// DELETE v1/session (200 OK)
// GET    v1/favorites (200 OK)
// POST   v1/favorites/{id} (200 OK, 404 Not found)
// GET    v1/feedback (200 OK)

type FavoritesHandler struct {
	catalog   port.CatalogLoader
	favorites port.FavoritesToggler
	feedback  FeedbackJournal
	present   presenter
}

func RegisterFavorites(
	mux *http.ServeMux,
	catalog port.CatalogLoader,
	favorites port.FavoritesToggler,
	fb FeedbackJournal,
	images ImageRewriter,
) {
	h := FavoritesHandler{catalog, favorites, fb, presenter{images, favorites}}
	mux.HandleFunc("PUT /v1/session", h.PutSession)
	mux.HandleFunc("DELETE /v1/session", h.DeleteSession)
	mux.HandleFunc("GET /v1/favorites", h.GetFavorites)
	mux.HandleFunc("POST /v1/favorites/{id}", h.PostFavorite)
}

// PutSession switches the active identity. Credentials are checked by an
// upstream auth service; only the identity key reaches this handler.
func (h FavoritesHandler) PutSession(w http.ResponseWriter, r *http.Request) {
	const op = "FavoritesHandler.PutSession"
	log := slog.With("op", op)

	var req SessionRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Identity == "" {
		http.Error(w, "invalid session data", http.StatusBadRequest)
		return
	}

	h.favorites.SwitchIdentity(r.Context(), req.Identity)
	log.Info("identity switched")
	h.respond(w, log)
}

func (h FavoritesHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	const op = "FavoritesHandler.DeleteSession"

	h.favorites.SwitchIdentity(r.Context(), "")
	h.respond(w, slog.With("op", op))
}

func (h FavoritesHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	const op = "FavoritesHandler.GetFavorites"
	h.respond(w, slog.With("op", op))
}

func (h FavoritesHandler) PostFavorite(w http.ResponseWriter, r *http.Request) {
	const op = "FavoritesHandler.PostFavorite"
	log := slog.With("op", op)

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	g, found := h.catalog.Snapshot().Find(id)
	if !found {
		// Unknown games can still be removed.
		if !h.favorites.Contains(id) {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		g = domain.Game{ID: id}
	}

	added := h.favorites.Toggle(r.Context(), g)
	if added {
		h.feedback.Push(feedback.LevelSuccess, fmt.Sprintf("%s added to favorites", g.Title))
	} else {
		h.feedback.Push(feedback.LevelInfo, "removed from favorites")
	}
	writeJSON(w, http.StatusOK, FavoriteToggled{ID: id, Favorite: added}, log)
}

func (h FavoritesHandler) respond(w http.ResponseWriter, log *slog.Logger) {
	ids := h.favorites.IDs()
	if ids == nil {
		ids = []int{}
	}
	snap := h.catalog.Snapshot()

	games := make([]domain.Game, 0, len(ids))
	for _, id := range ids {
		if g, ok := snap.Find(id); ok {
			games = append(games, g)
		}
	}
	writeJSON(w, http.StatusOK, Favorites{
		Identity: h.favorites.Identity(),
		IDs:      ids,
		Games:    h.present.games(games),
	}, log)
}

type FeedbackHandler struct {
	feedback FeedbackJournal
}

func RegisterFeedback(mux *http.ServeMux, fb FeedbackJournal) {
	h := FeedbackHandler{fb}
	mux.HandleFunc("GET /v1/feedback", h.GetFeedback)
}

func (h FeedbackHandler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	const op = "FeedbackHandler.GetFeedback"
	writeJSON(w, http.StatusOK, h.feedback.Drain(), slog.With("op", op))
}
