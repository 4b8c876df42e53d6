// Package repository combines the local cache and the remote catalog into the
// streams the feature controllers consume.
package repository

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// ProductStore is the local product cache.
type ProductStore interface {
	// ListProducts returns every cached product ordered by id.
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// GetProduct returns the cached product or an error wrapping
	// apperrors.ErrNotFound.
	GetProduct(ctx context.Context, id string) (domain.Product, error)

	// UpsertProduct inserts or replaces a product keyed by id.
	UpsertProduct(ctx context.Context, p domain.Product) error

	// UpsertProducts replaces the given products in one transaction.
	UpsertProducts(ctx context.Context, products []domain.Product) error
}

// CartStore persists cart rows keyed by product id.
type CartStore interface {
	ListCartItems(ctx context.Context) ([]domain.CartItem, error)

	// GetCartItem returns an error wrapping apperrors.ErrNotFound when absent.
	GetCartItem(ctx context.Context, productID string) (domain.CartItem, error)

	// UpsertCartItem inserts the row or replaces the one with the same
	// product id.
	UpsertCartItem(ctx context.Context, item domain.CartItem) error

	// UpdateCartItemQuantity rewrites the quantity of an existing row. It is a
	// no-op when the row is absent.
	UpdateCartItemQuantity(ctx context.Context, productID string, quantity int) error

	// DeleteCartItem is a no-op when the row is absent.
	DeleteCartItem(ctx context.Context, productID string) error

	ClearCart(ctx context.Context) error

	// WatchCartItems emits the current rows, then the rows after every
	// change, until ctx ends.
	WatchCartItems(ctx context.Context) <-chan []domain.CartItem
}

// RemoteDataSource fetches products from the remote catalog.
type RemoteDataSource interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
	FetchProduct(ctx context.Context, id string) (domain.Product, error)
}

// ProductRepository exposes the product catalog as offline-first streams.
// Each channel carries Loading first and is closed after the last result.
type ProductRepository interface {
	Products(ctx context.Context) <-chan domain.Result[[]domain.Product]
	Product(ctx context.Context, id string) <-chan domain.Result[domain.Product]
}

// CartRepository manages the shopping cart.
type CartRepository interface {
	// Items emits the full cart now and after every change.
	Items(ctx context.Context) <-chan []domain.CartItem

	// AddToCart inserts or replaces the product's row with a clamped quantity.
	AddToCart(ctx context.Context, product domain.Product, quantity int) error

	UpdateQuantity(ctx context.Context, productID string, quantity int) error
	Remove(ctx context.Context, productID string) error
	Clear(ctx context.Context) error

	// Count returns the sum of quantities.
	Count(ctx context.Context) (int, error)

	// Total returns the sum of price times quantity.
	Total(ctx context.Context) (float64, error)
}
