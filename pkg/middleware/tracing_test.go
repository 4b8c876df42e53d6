package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

const inboundTraceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

// setupTestTracer installs an in-memory exporter as the global provider for
// the duration of the test.
func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

// tracingScreenRouter serves the screen routes behind Tracing. The event handler
// starts a client span from the request context the way an outbound catalog
// call does.
func tracingScreenRouter(status int) http.Handler {
	r := chi.NewRouter()
	r.Use(Tracing("storefront"))
	r.Get("/api/v1/{screen}/state", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
	r.Post("/api/v1/{screen}/events", func(w http.ResponseWriter, r *http.Request) {
		_, span := otel.Tracer("catalog-client").Start(r.Context(), "catalog.FetchProducts",
			trace.WithSpanKind(trace.SpanKindClient))
		span.End()
		w.WriteHeader(http.StatusAccepted)
	})
	return r
}

func spanNamed(t *testing.T, spans tracetest.SpanStubs, name string) tracetest.SpanStub {
	t.Helper()
	for _, s := range spans {
		if s.Name == name {
			return s
		}
	}
	require.FailNow(t, "span not found", name)
	return tracetest.SpanStub{}
}

func attr(s tracetest.SpanStub, key string) (attribute.Value, bool) {
	for _, kv := range s.Attributes {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_NamesSpanByScreenRoute(t *testing.T) {
	exporter := setupTestTracer(t)

	rec := httptest.NewRecorder()
	tracingScreenRouter(http.StatusOK).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart/state", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	span := spanNamed(t, exporter.GetSpans(), "GET /api/v1/{screen}/state")
	assert.Equal(t, trace.SpanKindServer, span.SpanKind)

	route, ok := attr(span, "http.route")
	require.True(t, ok)
	assert.Equal(t, "/api/v1/{screen}/state", route.AsString())
	code, ok := attr(span, "http.status_code")
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusOK), code.AsInt64())
	assert.Equal(t, codes.Unset, span.Status.Code)
}

func TestTracing_StatusCodes(t *testing.T) {
	tests := []struct {
		status int
		want   codes.Code
	}{
		{http.StatusGone, codes.Unset},
		{http.StatusInternalServerError, codes.Error},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			exporter := setupTestTracer(t)

			rec := httptest.NewRecorder()
			tracingScreenRouter(tt.status).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/detail/state", nil))

			span := spanNamed(t, exporter.GetSpans(), "GET /api/v1/{screen}/state")
			code, _ := attr(span, "http.status_code")
			assert.Equal(t, int64(tt.status), code.AsInt64())
			assert.Equal(t, tt.want, span.Status.Code)
		})
	}
}

func TestTracing_ClientSpanJoinsInboundTrace(t *testing.T) {
	exporter := setupTestTracer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/events", nil)
	req.Header.Set("traceparent", inboundTraceparent)
	rec := httptest.NewRecorder()
	tracingScreenRouter(http.StatusOK).ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	spans := exporter.GetSpans()
	server := spanNamed(t, spans, "POST /api/v1/{screen}/events")
	client := spanNamed(t, spans, "catalog.FetchProducts")

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", server.SpanContext.TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", server.Parent.SpanID().String())
	assert.Equal(t, server.SpanContext.TraceID(), client.SpanContext.TraceID())
	assert.Equal(t, server.SpanContext.SpanID(), client.Parent.SpanID())
	assert.Equal(t, trace.SpanKindClient, client.SpanKind)

	// The response carries the server span so the UI can correlate it.
	assert.Contains(t, rec.Header().Get("traceparent"), server.SpanContext.SpanID().String())
}

func TestMiddlewareChain_PreservesFlusher(t *testing.T) {
	setupTestTracer(t)
	var buf bytes.Buffer
	l := newTestLogger(&buf)

	r := chi.NewRouter()
	r.Use(Recovery(l), RequestLogging(l), Tracing("storefront"), RequestLogger(l), PrometheusMetrics("storefront"))
	r.Get("/api/v1/{screen}/state/stream", func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		if !assert.True(t, ok, "stream handler lost http.Flusher") {
			return
		}
		_, _ = w.Write([]byte("data: {}\n\n"))
		f.Flush()
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/state/stream", nil))
	assert.True(t, rec.Flushed)
}
