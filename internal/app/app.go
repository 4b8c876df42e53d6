package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/feature/cart"
	"github.com/utafrali/storefront/internal/feature/catalog"
	"github.com/utafrali/storefront/internal/feature/detail"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/remote"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/postgres"
	redisrepo "github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/internal/watch"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

const serviceName = "storefront"

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	health         *health.Handler
	screens        handler.Screens
	stopScreens    context.CancelFunc
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// dependencies are the connections the component graph is built on.
type dependencies struct {
	db      database.DBTX
	rdb     *redis.Client // nil unless the cart lives in Redis
	catalog httpclient.Doer
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		_ = tracerShutdown(context.Background())
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, serviceName); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, postgres.Migrations(), logger); err != nil {
		pool.Close()
		_ = tracerShutdown(context.Background())
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), logger)
	}

	// Initialize Redis when it holds the cart.
	var rdb *redis.Client
	if cfg.CartStore == config.CartStoreRedis {
		rdb, err = database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			pool.Close()
			_ = tracerShutdown(context.Background())
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
	}

	catalogClient := newCatalogDoer(cfg, logger)

	a := newApp(cfg, logger, dependencies{db: pool, rdb: rdb, catalog: catalogClient})
	a.pool = pool
	a.tracerShutdown = tracerShutdown

	return a, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// registerHealthChecks wires readiness: the cache database and the Redis cart
// are critical, the catalog breaker only degrades readiness since screens
// still serve cached data while it is open.
func registerHealthChecks(h *health.Handler, deps dependencies) {
	if db, ok := deps.db.(pinger); ok {
		h.RegisterCritical("postgres", db.Ping)
	}
	if deps.rdb != nil {
		h.RegisterCritical("redis", func(ctx context.Context) error {
			return deps.rdb.Ping(ctx).Err()
		})
	}
	if breaker, ok := deps.catalog.(*httpclient.CircuitBreakerClient); ok {
		h.RegisterNonCritical("catalog", func(context.Context) error {
			if breaker.State() == gobreaker.StateOpen {
				return errors.New("circuit breaker open")
			}
			return nil
		})
	}
}

// newCatalogDoer builds the HTTP client for the remote catalog, behind a
// circuit breaker when enabled.
func newCatalogDoer(cfg *config.Config, logger *slog.Logger) httpclient.Doer {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.RemoteTimeout()
	httpCfg.MaxRetries = cfg.RemoteMaxRetries
	client := httpclient.New(httpCfg)

	if !cfg.RemoteCircuitBreaker {
		return client
	}
	return httpclient.NewCircuitBreakerClient(client, httpclient.DefaultCircuitBreakerConfig("catalog"), logger)
}

// newApp builds the component graph on top of deps.
func newApp(cfg *config.Config, logger *slog.Logger, deps dependencies) *App {
	hub := watch.NewHub()

	var cartStore repository.CartStore
	if deps.rdb != nil {
		cartStore = redisrepo.NewCartStore(deps.rdb, hub, logger)
	} else {
		cartStore = postgres.NewCartDAO(deps.db, hub, logger)
	}

	// Build the dependency graph.
	local := repository.NewLocalDataSource(postgres.NewProductDAO(deps.db), logger)
	catalogClient := remote.NewClient(cfg.CatalogBaseURL, deps.catalog, logger)
	products := repository.NewProductRepository(local, catalogClient, logger)
	cartRepo := repository.NewCartRepository(cartStore, logger)

	screenCtx, stopScreens := context.WithCancel(context.Background())
	screens := handler.Screens{
		Catalog: catalog.NewController(screenCtx, products, logger),
		Detail:  detail.NewController(screenCtx, products, cartRepo, logger),
		Cart:    cart.NewController(screenCtx, cartRepo, logger),
	}

	healthHandler := health.NewHandler()
	registerHealthChecks(healthHandler, deps)

	router := handler.NewRouter(screens, healthHandler, handler.RouterConfig{
		CORS:           middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins},
		RequestTimeout: 30 * time.Second,
	}, logger)

	// No WriteTimeout: the state and effect streams stay open.
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		rdb:            deps.rdb,
		health:         healthHandler,
		screens:        screens,
		stopScreens:    stopScreens,
		httpServer:     httpServer,
		tracerShutdown: func(context.Context) error { return nil },
	}
}

// Handler returns the HTTP handler serving the storefront.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("cart_store", a.cfg.CartStore),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline. Open event
	// streams end once the screens below are closed.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a.httpServer.RegisterOnShutdown(a.closeScreens)
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}
	a.closeScreens()

	// Close Redis client.
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	// Close PostgreSQL pool.
	if a.pool != nil {
		a.pool.Close()
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}

// closeScreens stops every screen store. Safe to call more than once.
func (a *App) closeScreens() {
	a.stopScreens()
	a.screens.Catalog.Close()
	a.screens.Detail.Close()
	a.screens.Cart.Close()
}
