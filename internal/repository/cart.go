package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
)

// Cart implements CartRepository over a CartStore. Writes are last-write-wins.
type Cart struct {
	store  CartStore
	logger *slog.Logger
}

var _ CartRepository = (*Cart)(nil)

// NewCartRepository creates a cart repository backed by store.
func NewCartRepository(store CartStore, logger *slog.Logger) *Cart {
	return &Cart{store: store, logger: logger}
}

// Items streams the cart contents.
func (c *Cart) Items(ctx context.Context) <-chan []domain.CartItem {
	return c.store.WatchCartItems(ctx)
}

// AddToCart stores product with quantity clamped into [1, 999], replacing any
// existing row for the same product.
func (c *Cart) AddToCart(ctx context.Context, product domain.Product, quantity int) error {
	item := domain.NewCartItem(product, quantity)
	if err := c.store.UpsertCartItem(ctx, item); err != nil {
		return fmt.Errorf("add %s to cart: %w", product.ID, err)
	}
	c.logger.DebugContext(ctx, "item added to cart",
		slog.String("product_id", item.ProductID),
		slog.Int("quantity", item.Quantity),
	)
	return nil
}

// UpdateQuantity sets the clamped quantity on an existing row.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if err := c.store.UpdateCartItemQuantity(ctx, productID, domain.ClampQuantity(quantity)); err != nil {
		return fmt.Errorf("update quantity of %s: %w", productID, err)
	}
	return nil
}

// Remove deletes the row for productID, if any.
func (c *Cart) Remove(ctx context.Context, productID string) error {
	if err := c.store.DeleteCartItem(ctx, productID); err != nil {
		return fmt.Errorf("remove %s from cart: %w", productID, err)
	}
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) error {
	if err := c.store.ClearCart(ctx); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Count returns the number of units in the cart.
func (c *Cart) Count(ctx context.Context) (int, error) {
	items, err := c.store.ListCartItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("count cart items: %w", err)
	}
	return domain.CartCount(items), nil
}

// Total returns the cart total.
func (c *Cart) Total(ctx context.Context) (float64, error) {
	items, err := c.store.ListCartItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("total cart items: %w", err)
	}
	return domain.CartTotal(items), nil
}
