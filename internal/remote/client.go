// Package remote is the HTTP client for the product catalog API.
package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/tracing"
	"github.com/utafrali/storefront/pkg/validator"
)

const tracerName = "github.com/utafrali/storefront/internal/remote"

// RemoteError reports a catalog response with a non-2xx status. The status
// code alone decides failure; 404 matches apperrors.ErrNotFound.
type RemoteError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: HTTP %d", e.Operation, e.StatusCode)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Client fetches products from the catalog. It does not retry on its own;
// retries and circuit breaking belong to the Doer it is built on.
type Client struct {
	baseURL string
	doer    httpclient.Doer
	logger  *slog.Logger
}

var _ repository.RemoteDataSource = (*Client)(nil)

// NewClient creates a catalog client for baseURL, e.g. "https://api.example.com".
func NewClient(baseURL string, doer httpclient.Doer, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		logger:  logger,
	}
}

// FetchProducts calls GET {base}/products.
func (c *Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := c.fetch(ctx, "FetchProducts", c.baseURL+"/products", &products, func() error {
		return validator.ValidateEach(products)
	})
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// FetchProduct calls GET {base}/products/{id}.
func (c *Client) FetchProduct(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := c.fetch(ctx, "FetchProduct", c.baseURL+"/products/"+url.PathEscape(id), &p, func() error {
		return validator.Validate(p)
	})
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (c *Client) fetch(ctx context.Context, operation, endpoint string, dst any, validate func() error) (err error) {
	start := time.Now()
	ctx, span := tracing.Tracer(tracerName).Start(ctx, "catalog."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", "GET"),
			attribute.String("http.url", endpoint),
		),
	)
	defer func() {
		outcome := outcomeOf(err)
		requestsTotal.WithLabelValues(operation, outcome).Inc()
		requestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		tracing.EndSpan(span, err)
	}()

	if err = httpclient.GetJSON(ctx, c.doer, endpoint, dst); err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			span.SetAttributes(attribute.Int("http.status_code", statusErr.StatusCode))
			c.logger.WarnContext(ctx, "catalog returned error status",
				slog.String("operation", operation),
				slog.Int("status", statusErr.StatusCode),
				slog.String("body", statusErr.Body),
			)
			return &RemoteError{Operation: operation, StatusCode: statusErr.StatusCode, Err: statusErr}
		}
		return fmt.Errorf("%s: %w", operation, err)
	}

	if err = validate(); err != nil {
		return fmt.Errorf("%s: invalid payload: %w", operation, err)
	}
	return nil
}

func outcomeOf(err error) string {
	var remoteErr *RemoteError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &remoteErr):
		return "status_error"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, httpclient.ErrCircuitOpen):
		return "circuit_open"
	default:
		return "error"
	}
}
