package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/feature"
	"github.com/utafrali/storefront/internal/mvi"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// defaultKeepAlive is how often idle streams get a ping frame.
const defaultKeepAlive = 15 * time.Second

// ScreenHandler exposes one screen store over HTTP: a state snapshot, state
// and effect streams, and an event inbox.
type ScreenHandler[S, E any, SE feature.Effect] struct {
	name      string
	store     *mvi.Store[S, E, SE]
	events    feature.Events[E]
	logger    *slog.Logger
	keepAlive time.Duration
}

// NewScreenHandler creates a handler for store. events decodes the bodies
// posted to the inbox.
func NewScreenHandler[S, E any, SE feature.Effect](name string, store *mvi.Store[S, E, SE], events feature.Events[E], logger *slog.Logger) *ScreenHandler[S, E, SE] {
	return &ScreenHandler[S, E, SE]{
		name:      name,
		store:     store,
		events:    events,
		logger:    logger.With(slog.String("screen", name)),
		keepAlive: defaultKeepAlive,
	}
}

// Routes registers the screen endpoints. short wraps the request/response
// routes only; the streams are long-lived.
func (h *ScreenHandler[S, E, SE]) Routes(short chi.Middlewares) func(chi.Router) {
	return func(r chi.Router) {
		r.With(short...).Get("/state", h.GetState)
		r.With(short...).With(ContentTypeJSON).Post("/events", h.PostEvent)
		r.Get("/state/stream", h.StreamState)
		r.Get("/effects/stream", h.StreamEffects)
	}
}

// --- Response DTOs ---

type eventAccepted struct {
	Type    string `json:"type"`
	Pending int    `json:"pending"`
}

// --- Handlers ---

// GetState handles GET /api/v1/{screen}/state
func (h *ScreenHandler[S, E, SE]) GetState(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.store.State())
}

// PostEvent handles POST /api/v1/{screen}/events
func (h *ScreenHandler[S, E, SE]) PostEvent(w http.ResponseWriter, r *http.Request) {
	body, err := httputil.ReadBody(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	event, err := h.events.Decode(body)
	if err != nil {
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			httputil.WriteValidationError(w, err)
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.store.Submit(event); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusAccepted, eventAccepted{
		Type:    eventType(event),
		Pending: h.store.Pending(),
	})
}

// StreamState handles GET /api/v1/{screen}/state/stream. The current state
// is sent first; later states are conflated.
func (h *ScreenHandler[S, E, SE]) StreamState(w http.ResponseWriter, r *http.Request) {
	sse, err := httputil.NewSSEWriter(w)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	ctx := r.Context()
	states := h.store.Subscribe(ctx)
	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-states:
			if !ok {
				return
			}
			if err := sse.Send("state", st); err != nil {
				h.logger.DebugContext(ctx, "state stream closed", slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			if err := sse.Ping(); err != nil {
				return
			}
		}
	}
}

// StreamEffects handles GET /api/v1/{screen}/effects/stream. Each effect goes
// to exactly one connected reader, named by its kind.
func (h *ScreenHandler[S, E, SE]) StreamEffects(w http.ResponseWriter, r *http.Request) {
	sse, err := httputil.NewSSEWriter(w)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	ctx := r.Context()
	effects := h.store.SideEffects()
	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case eff, ok := <-effects:
			if !ok {
				return
			}
			if err := sse.Send(eff.Kind(), eff); err != nil {
				// The effect is lost with the connection.
				h.logger.WarnContext(ctx, "effect not delivered",
					slog.String("kind", eff.Kind()),
					slog.String("error", err.Error()),
				)
				return
			}
		case <-ticker.C:
			if err := sse.Ping(); err != nil {
				return
			}
		}
	}
}
