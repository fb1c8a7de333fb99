package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vetty/storefront/internal/backend"
	"github.com/vetty/storefront/internal/catalog"
	"github.com/vetty/storefront/internal/config"
	"github.com/vetty/storefront/internal/event"
	httphandler "github.com/vetty/storefront/internal/handler/http"
	"github.com/vetty/storefront/internal/repository"
	"github.com/vetty/storefront/internal/repository/memory"
	redisrepo "github.com/vetty/storefront/internal/repository/redis"
	"github.com/vetty/storefront/internal/service"
	"github.com/vetty/storefront/pkg/health"
	"github.com/vetty/storefront/pkg/httpclient"
	"github.com/vetty/storefront/pkg/kafka"
	"github.com/vetty/storefront/pkg/middleware"
	"github.com/vetty/storefront/pkg/tracing"
)

// App wires the storefront together and owns its lifecycle.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	server          *http.Server
	redisClient     *redis.Client
	producer        *kafka.Producer
	catalogStore    *catalog.Store
	tracingShutdown func(context.Context) error
}

// New builds the application from configuration. Dependencies are wired but
// nothing is started; call Run.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	// An empty REDIS_ADDR switches to the in-memory cart store for local
	// development; carts then do not survive a restart.
	var cartRepo repository.CartRepository
	var redisPing func(context.Context) error
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, using in-memory cart store")
		cartRepo = memory.NewCartRepository()
	} else {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.redisClient = redisClient

		repo := redisrepo.NewCartRepository(redisClient, cfg.CartTTL)
		cartRepo = repo
		redisPing = repo.Ping
	}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(kafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	}
	a.producer = producer
	events := event.NewPublisher(producer, logger)

	backendClient := backend.NewClient(
		cfg.BackendURL,
		httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("backend"),
			logger,
		),
		logger,
	)

	catalogStore := catalog.NewStore(backendClient, logger)
	a.catalogStore = catalogStore

	carts := service.NewCartService(cartRepo, catalogStore, events, logger, cfg.CartTTL)
	checkout := service.NewCheckoutService(cartRepo, catalogStore, backendClient, events, logger)
	bookings := service.NewBookingService(catalogStore, backendClient, events, logger)

	healthHandler := health.NewHandler()
	if redisPing != nil {
		healthHandler.Register("redis", redisPing)
	}
	healthHandler.Register("catalog", func(ctx context.Context) error {
		if !catalogStore.Ready() {
			return fmt.Errorf("catalog has not completed an initial load")
		}
		return nil
	})
	if producer != nil {
		healthHandler.Register("kafka", producer.Ping)
	}

	router := httphandler.NewRouter(httphandler.RouterDeps{
		Catalog:  httphandler.NewCatalogHandler(catalogStore, logger),
		Cart:     httphandler.NewCartHandler(carts, logger),
		Checkout: httphandler.NewCheckoutHandler(checkout, logger),
		Booking:  httphandler.NewBookingHandler(bookings, logger),
		Health:   healthHandler,
		Logger:   logger,
		CORS:     middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins},
	})

	a.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return a, nil
}

// Run starts the application and blocks until ctx is cancelled, then shuts
// down gracefully.
func (a *App) Run(ctx context.Context) error {
	shutdownTracing, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    a.cfg.ServiceName,
		ServiceVersion: "1.0.0",
		Environment:    a.cfg.Environment,
		OTLPEndpoint:   a.cfg.OTLPEndpoint,
		SampleRate:     a.cfg.TracingSampleRate,
		Enabled:        a.cfg.TracingEnabled,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	a.tracingShutdown = shutdownTracing

	// Load the catalog before accepting traffic. A failed initial load is
	// logged and retried by the refresh loop; readiness stays down until a
	// load succeeds.
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := a.catalogStore.LoadAll(loadCtx); err != nil {
		a.logger.Warn("initial catalog load incomplete",
			slog.String("error", err.Error()))
	}
	cancel()

	if a.cfg.CatalogRefreshInterval > 0 {
		go a.refreshCatalog(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	return a.shutdown()
}

// refreshCatalog reloads every kind on a fixed interval until ctx ends.
func (a *App) refreshCatalog(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.CatalogRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			loadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := a.catalogStore.LoadAll(loadCtx); err != nil {
				a.logger.Warn("catalog refresh failed",
					slog.String("error", err.Error()))
			}
			cancel()
		}
	}
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	var firstErr error

	if err := a.server.Shutdown(ctx); err != nil {
		firstErr = fmt.Errorf("http shutdown: %w", err)
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("kafka close: %w", err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("redis close: %w", err)
		}
	}

	if a.tracingShutdown != nil {
		if err := a.tracingShutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("tracing shutdown: %w", err)
		}
	}

	return firstErr
}
