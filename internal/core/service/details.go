package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/niksmo/game-storefront/internal/core/port"
	"github.com/niksmo/game-storefront/pkg/retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultDetailAttempts       = 5
	DefaultDetailAttemptTimeout = 10 * time.Second
	DefaultDetailBackoffUnit    = time.Second
)

var _ port.DetailFetcher = (*Details)(nil)

type DetailsConfig struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
	// BackoffUnit is multiplied by 2^attempt between attempts.
	BackoffUnit time.Duration
}

func (c *DetailsConfig) normalize() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultDetailAttempts
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = DefaultDetailAttemptTimeout
	}
	if c.BackoffUnit <= 0 {
		c.BackoffUnit = DefaultDetailBackoffUnit
	}
}

// budget is the longest a full sequence of attempts can take.
func (c DetailsConfig) budget() time.Duration {
	total := time.Duration(c.MaxAttempts) * c.AttemptTimeout
	for k := 1; k < c.MaxAttempts; k++ {
		total += c.BackoffUnit << k
	}
	return total
}

// Details looks up single games with bounded retries.
type Details struct {
	source port.CatalogSource
	cfg    DetailsConfig
	group  singleflight.Group
	tracer trace.Tracer
}

func NewDetails(source port.CatalogSource, cfg DetailsConfig) *Details {
	cfg.normalize()
	return &Details{
		source: source,
		cfg:    cfg,
		tracer: otel.Tracer(instrumentationName),
	}
}

// FetchDetail retries every kind of failure. After the last attempt the
// returned error is a *retry.AttemptsError naming the attempt count.
// Concurrent lookups of the same id share one sequence of attempts, which
// is bounded by its own budget: a caller that gives up leaves it running
// for the others.
func (s *Details) FetchDetail(ctx context.Context, id int) (domain.Game, error) {
	const op = "Details.FetchDetail"
	log := slog.With("op", op, "id", id)

	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.Int("game.id", id))

	if err := ctx.Err(); err != nil {
		return domain.Game{}, fmt.Errorf("%s: %w", op, err)
	}

	flight := s.group.DoChan(strconv.Itoa(id), func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.budget())
		defer cancel()

		return retry.DoWithResult(flightCtx, retry.RetryConfig{
			MaxAttempts:    s.cfg.MaxAttempts,
			AttemptTimeout: s.cfg.AttemptTimeout,
			Backoff:        retry.ExponentialBackoff(s.cfg.BackoffUnit),
		}, func(ctx context.Context) (domain.Game, error) {
			g, err := s.source.FetchGame(ctx, id)
			if err != nil {
				log.Warn("attempt failed", "err", err)
			}
			return g, err
		})
	})

	select {
	case <-ctx.Done():
		span.SetStatus(codes.Error, ctx.Err().Error())
		return domain.Game{}, fmt.Errorf("%s: %w", op, ctx.Err())
	case res := <-flight:
		if res.Err != nil {
			span.SetStatus(codes.Error, res.Err.Error())
			return domain.Game{}, fmt.Errorf("%s: %w", op, res.Err)
		}
		if res.Shared {
			log.Debug("result shared with a concurrent lookup")
		}
		return res.Val.(domain.Game), nil
	}
}
