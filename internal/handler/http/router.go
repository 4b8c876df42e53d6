// Package http serves the storefront screens over a local JSON and
// Server-Sent Events API.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/feature/cart"
	"github.com/utafrali/storefront/internal/feature/catalog"
	"github.com/utafrali/storefront/internal/feature/detail"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

const serviceName = "storefront"

// Screens are the controllers served by the router.
type Screens struct {
	Catalog *catalog.Controller
	Detail  *detail.Controller
	Cart    *cart.Controller
}

// RouterConfig holds the surface settings.
type RouterConfig struct {
	CORS           middleware.CORSConfig
	RequestTimeout time.Duration
}

// NewRouter creates a chi router with every screen route registered.
func NewRouter(
	screens Screens,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware. Compression and timeouts would break the event
	// streams, so they are only applied to the snapshot and inbox routes.
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	short := chi.Chain(chimw.Compress(5), chimw.Timeout(cfg.RequestTimeout))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", NewScreenHandler("catalog", screens.Catalog.Store, catalog.Events, logger).Routes(short))
		r.Route("/detail", NewScreenHandler("detail", screens.Detail.Store, detail.Events, logger).Routes(short))
		r.Route("/cart", NewScreenHandler("cart", screens.Cart.Store, cart.Events, logger).Routes(short))
	})

	return r
}
