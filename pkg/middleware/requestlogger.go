package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/storefront/pkg/logger"
)

const apiPrefix = "/api/v1/"

// RequestLogger stores a request-scoped logger in the context, enriched with
// correlation_id, screen, trace_id and span_id. Mount it after RequestLogging
// and Tracing so those values are already present.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if screen := screenFromPath(r.URL.Path); screen != "" {
				ctx = logger.WithScreen(ctx, screen)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// screenFromPath returns "cart" for "/api/v1/cart/state" and "" for paths
// outside the API.
func screenFromPath(path string) string {
	rest, ok := strings.CutPrefix(path, apiPrefix)
	if !ok {
		return ""
	}
	screen, _, _ := strings.Cut(rest, "/")
	return screen
}
