package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
)

var sampleProducts = []domain.Product{
	{ID: "product-001", Name: "Wireless Headphones", Description: "Noise cancelling", Price: 99.99, Category: "Electronics", Stock: 50},
	{ID: "product-002", Name: "USB-C Cable", Description: "1m braided", Price: 12.99, Category: "Accessories", Stock: 200},
	{ID: "product-003", Name: "Phone Stand", Description: "Aluminium", Price: 19.99, Category: "Accessories", Stock: 75},
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := httpclient.DefaultConfig()
	cfg.Timeout = 2 * time.Second
	return NewClient(srv.URL+"/", httpclient.New(cfg), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetchProducts_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/products", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sampleProducts)
	})

	before := testutil.ToFloat64(requestsTotal.WithLabelValues("FetchProducts", "success"))

	got, err := client.FetchProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleProducts, got)
	assert.Equal(t, before+1, testutil.ToFloat64(requestsTotal.WithLabelValues("FetchProducts", "success")))
}

func TestFetchProducts_WireFieldNames(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"p1","name":"Lamp","description":"","price":5.5,"imageUrl":"https://cdn/x.png","category":"Home","stock":3}]`)
	})

	got, err := client.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://cdn/x.png", got[0].ImageURL)
	assert.Equal(t, 3, got[0].Stock)
}

func TestFetchProducts_EmptyArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `null`)
	})

	got, err := client.FetchProducts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFetchProducts_NonSuccessStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "maintenance")
	})

	_, err := client.FetchProducts(context.Background())
	require.Error(t, err)

	var remoteErr *RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusServiceUnavailable, remoteErr.StatusCode)
	assert.Equal(t, "FetchProducts: HTTP 503", err.Error())
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

func TestFetchProducts_InvalidPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"p1","name":"Lamp","price":1},{"id":"","name":"Ghost","price":-1}]`)
	})

	_, err := client.FetchProducts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid payload")
	assert.Contains(t, err.Error(), "item 1")
}

func TestFetchProducts_MalformedJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"not":"an array"`)
	})

	_, err := client.FetchProducts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FetchProducts")
}

func TestFetchProduct_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/product-002", r.URL.Path)
		_ = json.NewEncoder(w).Encode(sampleProducts[1])
	})

	got, err := client.FetchProduct(context.Background(), "product-002")
	require.NoError(t, err)
	assert.Equal(t, sampleProducts[1], got)
}

func TestFetchProduct_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.FetchProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFetchProduct_EscapesID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/a%2Fb", r.URL.EscapedPath())
		http.NotFound(w, r)
	})

	_, _ = client.FetchProduct(context.Background(), "a/b")
}

func TestFetchProducts_DoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.FetchProducts(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchProducts_ThroughCircuitBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cb := httpclient.DefaultCircuitBreakerConfig("catalog-test")
	cb.MinRequests = 2
	doer := httpclient.NewCircuitBreakerClient(httpclient.New(httpclient.DefaultConfig()), cb, logger)
	client := NewClient(srv.URL, doer, logger)

	for i := 0; i < 2; i++ {
		_, err := client.FetchProducts(context.Background())
		var remoteErr *RemoteError
		require.True(t, errors.As(err, &remoteErr))
	}

	_, err := client.FetchProducts(context.Background())
	assert.ErrorIs(t, err, httpclient.ErrCircuitOpen)
	assert.Equal(t, "circuit_open", outcomeOf(err))
}

func TestFetch_RecordsSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, _ = client.FetchProduct(context.Background(), "x")

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "catalog.FetchProduct", spans[0].Name)
	assert.Equal(t, "Error", spans[0].Status.Code.String())
}
