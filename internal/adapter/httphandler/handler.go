package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/niksmo/game-storefront/internal/adapter/feedback"
	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/niksmo/game-storefront/internal/core/port"
)

// GET  v1/games?search=&platform=&genre=&sort=&page= (200 OK, 400 Bad request)
// GET  v1/games/{id} (200 OK, 404 Not found, 502 Bad gateway)
// GET  v1/offers?page=, v1/must-have?page= (200 OK)
// GET  v1/catalog/status (200 OK)
// POST v1/catalog/refetch, v1/catalog/fallback (202 Accepted)

type (
	ImageRewriter interface {
		Rewrite(string) string
	}

	FeedbackJournal interface {
		Push(feedback.Level, string)
		Drain() []feedback.Message
	}
)

// presenter turns domain games into response items.
type presenter struct {
	images    ImageRewriter
	favorites port.FavoritesToggler
}

func (p presenter) game(g domain.Game) Game {
	return Game{
		ID:               g.ID,
		Title:            g.Title,
		Thumbnail:        p.images.Rewrite(g.Thumbnail),
		ShortDescription: g.ShortDescription,
		GameURL:          g.GameURL,
		Genre:            g.Genre,
		Platform:         g.Platform,
		Publisher:        g.Publisher,
		Developer:        g.Developer,
		ReleaseDate:      g.ReleaseDate,
		Price:            g.EffectivePrice(),
		FinalPrice:       g.DiscountedPrice(),
		Discount:         g.Discount,
		Rating:           g.Rating,
		Favorite:         p.favorites.Contains(g.ID),
	}
}

func (p presenter) games(gs []domain.Game) []Game {
	out := make([]Game, len(gs))
	for i, g := range gs {
		out[i] = p.game(g)
	}
	return out
}

func (p presenter) page(pg domain.Page[domain.Game], status CatalogStatus) GamesPage {
	return GamesPage{
		Items:      p.games(pg.Items),
		Page:       pg.Current,
		TotalPages: pg.TotalPages,
		HasNext:    pg.HasNext,
		HasPrev:    pg.HasPrev,
		Catalog:    status,
	}
}

type CatalogHandler struct {
	catalog     port.CatalogLoader
	details     port.DetailFetcher
	browser     port.CatalogBrowser
	collections port.CollectionsProvider
	present     presenter
}

func RegisterCatalog(
	mux *http.ServeMux,
	catalog port.CatalogLoader,
	details port.DetailFetcher,
	browser port.CatalogBrowser,
	collections port.CollectionsProvider,
	favorites port.FavoritesToggler,
	images ImageRewriter,
) {
	h := CatalogHandler{
		catalog:     catalog,
		details:     details,
		browser:     browser,
		collections: collections,
		present:     presenter{images, favorites},
	}
	mux.HandleFunc("GET /v1/games", h.GetGames)
	mux.HandleFunc("GET /v1/games/{id}", h.GetGame)
	mux.HandleFunc("GET /v1/offers", h.GetOffers)
	mux.HandleFunc("GET /v1/must-have", h.GetMustHave)
	mux.HandleFunc("GET /v1/catalog/status", h.GetStatus)
	mux.HandleFunc("POST /v1/catalog/refetch", h.PostRefetch)
	mux.HandleFunc("POST /v1/catalog/fallback", h.PostFallback)
}

func (h CatalogHandler) GetGames(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetGames"
	log := slog.With("op", op)

	q := r.URL.Query()
	page, err := pageParam(r)
	if err != nil {
		http.Error(w, "invalid page", http.StatusBadRequest)
		log.Warn("invalid page param", "err", err)
		return
	}

	criteria := domain.Criteria{
		Search:   q.Get("search"),
		Platform: q.Get("platform"),
		Genre:    q.Get("genre"),
		Sort:     domain.ParseSortKey(q.Get("sort")),
	}

	snap := h.catalog.Snapshot()
	pg := h.browser.Browse(snap, criteria, page)
	writeJSON(w, http.StatusOK, h.present.page(pg, h.status(snap)), log)
}

func (h CatalogHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetGame"
	log := slog.With("op", op)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}

	g, err := h.details.FetchDetail(r.Context(), id)
	if err != nil {
		var statusErr *domain.HTTPStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		if g, ok := h.catalog.Snapshot().Find(id); ok {
			log.Warn("detail lookup failed, serving catalog entry", "id", id, "err", err)
			writeJSON(w, http.StatusOK, h.present.game(g), log)
			return
		}
		http.Error(w, "failed to load game details", http.StatusBadGateway)
		log.Error("detail lookup failed", "id", id, "err", err)
		return
	}
	writeJSON(w, http.StatusOK, h.present.game(g), log)
}

func (h CatalogHandler) GetOffers(w http.ResponseWriter, r *http.Request) {
	h.collection(w, r, "CatalogHandler.GetOffers", h.collections.Offers)
}

func (h CatalogHandler) GetMustHave(w http.ResponseWriter, r *http.Request) {
	h.collection(w, r, "CatalogHandler.GetMustHave", h.collections.MustHave)
}

func (h CatalogHandler) collection(
	w http.ResponseWriter, r *http.Request, op string,
	pageFn func(domain.CatalogSnapshot, int) domain.Page[domain.Game],
) {
	log := slog.With("op", op)

	page, err := pageParam(r)
	if err != nil {
		http.Error(w, "invalid page", http.StatusBadRequest)
		return
	}
	snap := h.catalog.Snapshot()
	writeJSON(w, http.StatusOK, h.present.page(pageFn(snap, page), h.status(snap)), log)
}

func (h CatalogHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetStatus"
	writeJSON(w, http.StatusOK, h.status(h.catalog.Snapshot()), slog.With("op", op))
}

// PostRefetch starts a new acquisition cycle. The result is observed
// through the status endpoint.
func (h CatalogHandler) PostRefetch(w http.ResponseWriter, r *http.Request) {
	h.startCycle(w, r, "CatalogHandler.PostRefetch", h.catalog.Refetch)
}

func (h CatalogHandler) PostFallback(w http.ResponseWriter, r *http.Request) {
	h.startCycle(w, r, "CatalogHandler.PostFallback", h.catalog.ForceFallback)
}

func (h CatalogHandler) startCycle(
	w http.ResponseWriter, r *http.Request, op string,
	cycle func(context.Context) (domain.CatalogSnapshot, error),
) {
	log := slog.With("op", op)

	// The cycle outlives the request.
	ctx := context.WithoutCancel(r.Context())
	go func() {
		if _, err := cycle(ctx); err != nil && !errors.Is(err, domain.ErrSuperseded) {
			log.Warn("catalog cycle failed", "err", err)
		}
	}()

	status := h.status(h.catalog.Snapshot())
	status.Loading = true
	writeJSON(w, http.StatusAccepted, status, log)
}

func (h CatalogHandler) status(snap domain.CatalogSnapshot) CatalogStatus {
	return toCatalogStatus(snap, h.catalog.Loading())
}

// pageParam returns 0 when the param is absent, meaning the current page.
func pageParam(r *http.Request) (int, error) {
	v := r.URL.Query().Get("page")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, errors.New("page must be positive")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
