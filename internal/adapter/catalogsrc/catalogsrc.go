// Package catalogsrc is the HTTP client of the remote game catalog.
package catalogsrc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/niksmo/game-storefront/internal/core/port"
	"golang.org/x/time/rate"
)

const (
	gamesMethod = "games"
	gameMethod  = "game"

	maxBodySize = 16 << 20
)

var _ port.CatalogSource = (*Client)(nil)

type Client struct {
	baseURL *url.URL
	client  *http.Client
	limiter *rate.Limiter
}

type Opt func(*Client)

// HTTPClientOpt replaces the default http.Client.
func HTTPClientOpt(c *http.Client) Opt {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

// RateLimitOpt bounds outgoing requests per second. Zero or less disables
// the limit.
func RateLimitOpt(perSecond float64) Opt {
	return func(cl *Client) {
		if perSecond <= 0 {
			cl.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		cl.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

func New(baseURL string, opts ...Opt) (*Client, error) {
	const op = "catalogsrc.New"

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: base url %q is not absolute", op, baseURL)
	}

	cl := &Client{
		baseURL: u,
		client:  &http.Client{},
		limiter: rate.NewLimiter(rate.Inf, 0),
	}
	for _, o := range opts {
		o(cl)
	}
	return cl, nil
}

// FetchCatalog returns the valid records of the catalog. Invalid records are
// dropped; a payload that is not a list, or has no valid record at all, is
// domain.ErrSchemaInvalid.
func (c *Client) FetchCatalog(ctx context.Context, q port.CatalogQuery) ([]domain.Game, error) {
	const op = "Client.FetchCatalog"
	log := slog.With("op", op)

	params := url.Values{}
	if q.Platform != "" {
		params.Set("platform", q.Platform)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.SortBy != "" {
		params.Set("sort-by", q.SortBy)
	}

	data, err := c.doRequest(ctx, gamesMethod, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	games, dropped, err := domain.DecodeGames(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(games) == 0 && dropped > 0 {
		return nil, fmt.Errorf("%s: all %d records invalid: %w", op, dropped, domain.ErrSchemaInvalid)
	}
	if dropped > 0 {
		log.Warn("invalid records dropped", "nDropped", dropped, "nValid", len(games))
	}
	return games, nil
}

// FetchGame returns one game. Any schema problem fails the whole response.
func (c *Client) FetchGame(ctx context.Context, id int) (domain.Game, error) {
	const op = "Client.FetchGame"

	params := url.Values{}
	params.Set("id", strconv.Itoa(id))

	data, err := c.doRequest(ctx, gameMethod, params)
	if err != nil {
		return domain.Game{}, fmt.Errorf("%s: %w", op, err)
	}

	g, err := domain.DecodeGame(data)
	if err != nil {
		return domain.Game{}, fmt.Errorf("%s: %w", op, err)
	}
	if g.ID != id {
		return domain.Game{}, fmt.Errorf("%s: got id %d, want %d: %w", op, g.ID, id, domain.ErrSchemaInvalid)
	}
	return g, nil
}

func (c *Client) doRequest(ctx context.Context, method string, q url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, classify(ctx, err)
	}

	u := c.baseURL.JoinPath(method)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &domain.HTTPStatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, classify(ctx, err)
	}
	return body, nil
}

// classify marks aborts caused by the request deadline as timeouts.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrAcquisitionTimeout, err)
	}
	return err
}
