package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// LocalDataSource reads and writes the product cache. Cache failures never
// reach the caller: reads degrade to empty or absent and writes are logged.
type LocalDataSource struct {
	store  ProductStore
	logger *slog.Logger
}

// NewLocalDataSource wraps store.
func NewLocalDataSource(store ProductStore, logger *slog.Logger) *LocalDataSource {
	return &LocalDataSource{store: store, logger: logger}
}

// Products returns the cached products, or nil if the cache cannot be read.
func (l *LocalDataSource) Products(ctx context.Context) []domain.Product {
	products, err := l.store.ListProducts(ctx)
	if err != nil {
		l.logger.WarnContext(ctx, "failed to read cached products",
			slog.String("error", err.Error()),
		)
		return nil
	}
	return products
}

// Product returns the cached product and whether it was found.
func (l *LocalDataSource) Product(ctx context.Context, id string) (domain.Product, bool) {
	p, err := l.store.GetProduct(ctx, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			l.logger.WarnContext(ctx, "failed to read cached product",
				slog.String("product_id", id),
				slog.String("error", err.Error()),
			)
		}
		return domain.Product{}, false
	}
	return p, true
}

// SaveProducts writes products through to the cache.
func (l *LocalDataSource) SaveProducts(ctx context.Context, products []domain.Product) {
	if err := l.store.UpsertProducts(ctx, products); err != nil {
		l.logger.WarnContext(ctx, "failed to cache products",
			slog.Int("count", len(products)),
			slog.String("error", err.Error()),
		)
	}
}

// SaveProduct writes one product through to the cache.
func (l *LocalDataSource) SaveProduct(ctx context.Context, p domain.Product) {
	if err := l.store.UpsertProduct(ctx, p); err != nil {
		l.logger.WarnContext(ctx, "failed to cache product",
			slog.String("product_id", p.ID),
			slog.String("error", err.Error()),
		)
	}
}
