package catalogstub

import (
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
)

// Options tune the stub's behaviour.
type Options struct {
	// FailureRate is the share of requests answered with 503, from 0 to 1.
	FailureRate float64
	// Latency is added before every response.
	Latency time.Duration
}

// Server serves a fixed product list.
type Server struct {
	products []domain.Product
	byID     map[string]domain.Product
	opts     Options
	logger   *slog.Logger
	fail     func() bool
}

// NewServer creates a stub serving products.
func NewServer(products []domain.Product, opts Options, logger *slog.Logger) *Server {
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &Server{
		products: products,
		byID:     byID,
		opts:     opts,
		logger:   logger,
		fail:     func() bool { return rand.Float64() < opts.FailureRate },
	}
}

// Router returns the stub's HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.RequestLogging(s.logger))
	r.Use(s.chaos)

	r.Get("/products", s.ListProducts)
	r.Get("/products/{id}", s.GetProduct)
	return r
}

// ListProducts handles GET /products
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.products)
}

// GetProduct handles GET /products/{id}
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := s.byID[id]
	if !ok {
		httputil.WriteError(w, r, apperrors.NotFound("product", id), s.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

// chaos injects latency and failures.
func (s *Server) chaos(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Latency > 0 {
			select {
			case <-time.After(s.opts.Latency):
			case <-r.Context().Done():
				return
			}
		}
		if s.opts.FailureRate > 0 && s.fail() {
			httputil.WriteError(w, r, apperrors.Unavailable("catalog temporarily unavailable", nil), s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}
