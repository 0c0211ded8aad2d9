package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/niksmo/game-storefront/config"
	"github.com/niksmo/game-storefront/internal/adapter"
	"github.com/niksmo/game-storefront/internal/adapter/catalogsrc"
	"github.com/niksmo/game-storefront/internal/adapter/fallback"
	"github.com/niksmo/game-storefront/internal/adapter/feedback"
	"github.com/niksmo/game-storefront/internal/adapter/httphandler"
	"github.com/niksmo/game-storefront/internal/adapter/imageproxy"
	"github.com/niksmo/game-storefront/internal/adapter/payment"
	"github.com/niksmo/game-storefront/internal/adapter/storage"
	"github.com/niksmo/game-storefront/internal/core/port"
	"github.com/niksmo/game-storefront/internal/core/service"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type outbound struct {
	db       storage.SQLDB
	store    port.KVStore
	cache    storage.CatalogCache
	source   *catalogsrc.Client
	fallback fallback.Dataset
	gateway  *payment.Simulated
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	tracer     *sdktrace.TracerProvider
	meter      *sdkmetric.MeterProvider
	outbound   outbound
	service    *service.Service
	feedback   *feedback.Journal
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initTracing()
	app.initMetrics()
	app.initOutboundAdapters()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initTracing() {
	const op = "App.initTracing"

	endpoint := app.cfg.Tracing.OTLPEndpoint
	if endpoint == "" {
		return
	}
	tp, err := newTracerProvider(app.ctx, endpoint, app.cfg.Tracing.SampleRatio)
	if err != nil {
		app.fallDown(op, err)
	}
	app.tracer = tp
}

func (app *App) initMetrics() {
	const op = "App.initMetrics"

	endpoint := app.cfg.Metrics.OTLPEndpoint
	if endpoint == "" {
		return
	}
	mp, err := newMeterProvider(app.ctx, endpoint, app.cfg.Metrics.ExportInterval)
	if err != nil {
		app.fallDown(op, err)
	}
	app.meter = mp
}

func (app *App) initOutboundAdapters() {
	const op = "App.initOutboundAdapters"

	db, err := storage.NewSQLDB(app.ctx, app.cfg.StoragePath)
	if err != nil {
		app.fallDown(op, err)
	}
	if err := db.Migrate(storage.NewMigrationLogger(false)); err != nil {
		app.fallDown(op, err)
	}
	store := storage.NewSQLiteKV(db)

	source, err := catalogsrc.New(
		app.cfg.Catalog.SourceURL,
		catalogsrc.RateLimitOpt(app.cfg.Catalog.RateLimit),
		catalogsrc.HTTPClientOpt(app.sourceHTTPClient()),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	gateway, err := payment.NewSimulated(app.cfg.Payment.CheckoutBaseURL)
	if err != nil {
		app.fallDown(op, err)
	}

	app.outbound = outbound{
		db:       db,
		store:    store,
		cache:    storage.NewCatalogCache(store),
		source:   source,
		fallback: fallback.New(app.cfg.Catalog.FallbackFile),
		gateway:  gateway,
	}
}

// sourceHTTPClient returns nil, meaning the default client, unless a CA
// file is configured for the catalog source.
func (app *App) sourceHTTPClient() *http.Client {
	const op = "App.sourceHTTPClient"

	c := app.cfg.Catalog
	if c.CAFile == "" {
		return nil
	}
	tlsCfg, err := adapter.MakeTLSConfig(c.CAFile, c.CertFile, c.KeyFile)
	if err != nil {
		app.fallDown(op, err)
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsCfg
	return &http.Client{Transport: transport}
}

func (app *App) initCoreService() {
	c := app.cfg
	app.service = service.New(app.ctx, service.Deps{
		Source:   app.outbound.source,
		Fallback: app.outbound.fallback,
		Cache:    app.outbound.cache,
		Store:    app.outbound.store,
		Gateway:  app.outbound.gateway,
	}, service.Config{
		Catalog: service.CatalogConfig{
			RequestTimeout: c.Catalog.RequestTimeout,
			FallbackDelay:  c.Catalog.FallbackDelay,
			Query: port.CatalogQuery{
				Platform: c.Catalog.Platform,
				Category: c.Catalog.Category,
				SortBy:   c.Catalog.SortBy,
			},
		},
		Details: service.DetailsConfig{
			MaxAttempts:    c.Detail.MaxAttempts,
			AttemptTimeout: c.Detail.AttemptTimeout,
			BackoffUnit:    c.Detail.BackoffUnit,
		},
		PageSize: c.Pagination.PageSize,
	})
}

func (app *App) initInboundAdapters() {
	s := app.service
	images := imageproxy.New(app.cfg.ImageProxy.Endpoint, app.cfg.ImageProxy.InternalHosts...)
	app.feedback = feedback.New(feedback.DefaultCapacity)

	mux := http.NewServeMux()
	httphandler.RegisterCatalog(mux, s.Catalog, s.Details, s.Browser, s.Collections, s.Favorites, images)
	httphandler.RegisterCart(mux, s.Catalog, s.Cart, s.Checkout, app.feedback, images)
	httphandler.RegisterFavorites(mux, s.Catalog, s.Favorites, app.feedback, images)
	httphandler.RegisterFeedback(mux, app.feedback)

	handler := httphandler.LogRequests(httphandler.AllowJSON(mux))
	app.httpServer = httphandler.NewHTTPServer(
		app.cfg.HTTPServerAddr, handler, app.cfg.HTTPHandlerTimeout,
	)
}

func (app *App) Run(stopFn context.CancelFunc) {
	app.service.Run(app.ctx)
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	const op = "App.Close"
	log := slog.With("op", op)

	log.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.service.Close()
	app.outbound.db.Close()
	if app.tracer != nil {
		if err := app.tracer.Shutdown(ctx); err != nil {
			log.Error("failed to flush traces", "err", err)
		}
	}
	if app.meter != nil {
		if err := app.meter.Shutdown(ctx); err != nil {
			log.Error("failed to flush metrics", "err", err)
		}
	}

	log.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
