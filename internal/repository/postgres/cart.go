package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/watch"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const (
	selectCartItems = `
		SELECT product_id, product_name, quantity, price, image_url
		FROM cart_items
		ORDER BY created_at, product_id`

	selectCartItem = `
		SELECT product_id, product_name, quantity, price, image_url
		FROM cart_items
		WHERE product_id = $1`

	upsertCartItem = `
		INSERT INTO cart_items (product_id, product_name, quantity, price, image_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (product_id) DO UPDATE
		SET product_name = EXCLUDED.product_name, quantity = EXCLUDED.quantity,
		    price = EXCLUDED.price, image_url = EXCLUDED.image_url, updated_at = EXCLUDED.updated_at`

	updateCartItemQuantity = `
		UPDATE cart_items SET quantity = $1, updated_at = NOW()
		WHERE product_id = $2`

	deleteCartItem = `DELETE FROM cart_items WHERE product_id = $1`

	clearCart = `DELETE FROM cart_items`
)

// CartDAO implements repository.CartStore using PostgreSQL. Writes publish on
// the hub so WatchCartItems subscribers re-read the table.
type CartDAO struct {
	db     database.DBTX
	hub    *watch.Hub
	logger *slog.Logger
}

var _ repository.CartStore = (*CartDAO)(nil)

// NewCartDAO creates a cart DAO on db.
func NewCartDAO(db database.DBTX, hub *watch.Hub, logger *slog.Logger) *CartDAO {
	return &CartDAO{db: db, hub: hub, logger: logger}
}

// ListCartItems returns all cart rows, oldest first.
func (d *CartDAO) ListCartItems(ctx context.Context) (items []domain.CartItem, err error) {
	ctx, end := database.TraceQuery(ctx, "ListCartItems", selectCartItems)
	defer func() { end(err) }()

	rows, err := d.db.Query(ctx, selectCartItems)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	items = []domain.CartItem{}
	for rows.Next() {
		var e CartItemEntity
		if err := rows.Scan(&e.ProductID, &e.ProductName, &e.Quantity, &e.Price, &e.ImageURL); err != nil {
			return nil, fmt.Errorf("scan cart item row: %w", err)
		}
		items = append(items, e.ToDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart item rows: %w", err)
	}

	return items, nil
}

// GetCartItem returns the row for productID.
func (d *CartDAO) GetCartItem(ctx context.Context, productID string) (item domain.CartItem, err error) {
	ctx, end := database.TraceQuery(ctx, "GetCartItem", selectCartItem)
	defer func() {
		if errors.Is(err, apperrors.ErrNotFound) {
			end(nil)
			return
		}
		end(err)
	}()

	var e CartItemEntity
	err = d.db.QueryRow(ctx, selectCartItem, productID).
		Scan(&e.ProductID, &e.ProductName, &e.Quantity, &e.Price, &e.ImageURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CartItem{}, apperrors.NotFound("cart item", productID)
		}
		return domain.CartItem{}, fmt.Errorf("get cart item: %w", err)
	}

	return e.ToDomain(), nil
}

// UpsertCartItem inserts item or replaces the row with the same product id.
func (d *CartDAO) UpsertCartItem(ctx context.Context, item domain.CartItem) error {
	e := CartItemEntityFromDomain(item)
	if _, err := d.exec(ctx, "UpsertCartItem", upsertCartItem,
		e.ProductID, e.ProductName, e.Quantity, e.Price, e.ImageURL,
	); err != nil {
		return fmt.Errorf("upsert cart item %s: %w", item.ProductID, err)
	}
	d.hub.Notify()
	return nil
}

// UpdateCartItemQuantity rewrites the quantity of an existing row.
func (d *CartDAO) UpdateCartItemQuantity(ctx context.Context, productID string, quantity int) error {
	n, err := d.exec(ctx, "UpdateCartItemQuantity", updateCartItemQuantity, quantity, productID)
	if err != nil {
		return fmt.Errorf("update cart item %s: %w", productID, err)
	}
	if n > 0 {
		d.hub.Notify()
	}
	return nil
}

// DeleteCartItem removes the row for productID, if any.
func (d *CartDAO) DeleteCartItem(ctx context.Context, productID string) error {
	n, err := d.exec(ctx, "DeleteCartItem", deleteCartItem, productID)
	if err != nil {
		return fmt.Errorf("delete cart item %s: %w", productID, err)
	}
	if n > 0 {
		d.hub.Notify()
	}
	return nil
}

// ClearCart removes every row.
func (d *CartDAO) ClearCart(ctx context.Context) error {
	if _, err := d.exec(ctx, "ClearCart", clearCart); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	d.hub.Notify()
	return nil
}

// WatchCartItems streams the cart rows now and after every write.
func (d *CartDAO) WatchCartItems(ctx context.Context) <-chan []domain.CartItem {
	return watch.Watch(ctx, d.hub, d.ListCartItems, func(err error) {
		d.logger.WarnContext(ctx, "failed to reload cart items",
			slog.String("error", err.Error()),
		)
	})
}

func (d *CartDAO) exec(ctx context.Context, operation, query string, args ...any) (int64, error) {
	ctx, end := database.TraceQuery(ctx, operation, query)
	tag, err := d.db.Exec(ctx, query, args...)
	end(err)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
