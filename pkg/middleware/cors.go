package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

// CORSConfig lets a browser UI on another origin read screen state, post
// events and hold EventSource streams open.
type CORSConfig struct {
	// AllowedOrigins lists exact origins. "*" allows any origin.
	AllowedOrigins []string

	// MaxAge is how long browsers may cache a preflight. Defaults to an hour.
	MaxAge time.Duration
}

// The storefront API only reads state and posts events. EventSource sends
// Last-Event-ID when it reconnects.
var (
	corsMethods = strings.Join([]string{http.MethodGet, http.MethodPost}, ", ")
	corsHeaders = strings.Join([]string{"Accept", "Content-Type", "Last-Event-ID", CorrelationIDHeader}, ", ")
)

// CORS answers preflights and tags responses for allowed origins. Credentials
// are never allowed: screens carry no per-user session, and EventSource
// without credentials works against a wildcard origin.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	maxAgeSeconds := strconv.Itoa(int(maxAge / time.Second))
	wildcard := slices.Contains(cfg.AllowedOrigins, "*")

	allowed := func(origin string) bool {
		return wildcard || slices.Contains(cfg.AllowedOrigins, origin)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""

			h := w.Header()
			if !wildcard {
				h.Add("Vary", "Origin")
			}
			if origin != "" && allowed(origin) {
				if wildcard {
					h.Set("Access-Control-Allow-Origin", "*")
				} else {
					h.Set("Access-Control-Allow-Origin", origin)
				}
				h.Set("Access-Control-Expose-Headers", CorrelationIDHeader)
				if preflight {
					h.Set("Access-Control-Allow-Methods", corsMethods)
					h.Set("Access-Control-Allow-Headers", corsHeaders)
					h.Set("Access-Control-Max-Age", maxAgeSeconds)
				}
			}

			if preflight {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
