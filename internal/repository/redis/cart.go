// Package redis is an alternate cart store that keeps the cart in a single
// Redis hash, one field per product.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/watch"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// CartKey is the hash holding every cart row.
const CartKey = "cart:items"

// row is the JSON value stored per hash field.
type row struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	// CreatedAt is set when the product first enters the cart and decides
	// the listing order.
	CreatedAt int64 `json:"createdAt"`
}

func rowFromDomain(item domain.CartItem, createdAt int64) row {
	return row{
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Quantity:    item.Quantity,
		Price:       item.Price,
		ImageURL:    item.ImageURL,
		CreatedAt:   createdAt,
	}
}

func (r row) toDomain() domain.CartItem {
	return domain.CartItem{
		ProductID:   r.ProductID,
		ProductName: r.ProductName,
		Quantity:    r.Quantity,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
	}
}

// hashGetter is satisfied by *redis.Client and *redis.Tx.
type hashGetter interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
}

// CartStore implements repository.CartStore using a Redis hash.
type CartStore struct {
	client *redis.Client
	hub    *watch.Hub
	logger *slog.Logger
	now    func() time.Time
}

var _ repository.CartStore = (*CartStore)(nil)

// NewCartStore creates a Redis-backed cart store.
func NewCartStore(client *redis.Client, hub *watch.Hub, logger *slog.Logger) *CartStore {
	return &CartStore{
		client: client,
		hub:    hub,
		logger: logger,
		now:    time.Now,
	}
}

// ListCartItems returns all rows in the order they were first added.
func (s *CartStore) ListCartItems(ctx context.Context) (items []domain.CartItem, err error) {
	ctx, end := database.TraceCommand(ctx, "ListCartItems", "HGETALL "+CartKey)
	defer func() { end(err) }()

	fields, err := s.client.HGetAll(ctx, CartKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall cart: %w", err)
	}

	rows := make([]row, 0, len(fields))
	for field, raw := range fields {
		var r row
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("unmarshal cart item %s: %w", field, err)
		}
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt != rows[j].CreatedAt {
			return rows[i].CreatedAt < rows[j].CreatedAt
		}
		return rows[i].ProductID < rows[j].ProductID
	})

	items = make([]domain.CartItem, len(rows))
	for i, r := range rows {
		items[i] = r.toDomain()
	}
	return items, nil
}

// GetCartItem returns the row for productID.
func (s *CartStore) GetCartItem(ctx context.Context, productID string) (domain.CartItem, error) {
	r, err := s.get(ctx, s.client, productID)
	if err != nil {
		return domain.CartItem{}, err
	}
	return r.toDomain(), nil
}

// UpsertCartItem writes item, replacing any row with the same product id. A
// replaced row keeps its place in the cart.
func (s *CartStore) UpsertCartItem(ctx context.Context, item domain.CartItem) (err error) {
	ctx, end := database.TraceCommand(ctx, "UpsertCartItem", "HSET "+CartKey)
	defer func() { end(err) }()

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		createdAt := s.now().UnixNano()
		existing, err := s.get(ctx, tx, item.ProductID)
		switch {
		case err == nil:
			createdAt = existing.CreatedAt
		case !errors.Is(err, apperrors.ErrNotFound):
			return err
		}

		data, err := json.Marshal(rowFromDomain(item, createdAt))
		if err != nil {
			return fmt.Errorf("marshal cart item: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, CartKey, item.ProductID, data)
			return nil
		})
		return err
	}, CartKey)
	if err != nil {
		return fmt.Errorf("redis upsert cart item %s: %w", item.ProductID, err)
	}

	s.hub.Notify()
	return nil
}

// UpdateCartItemQuantity rewrites the quantity of an existing row under
// WATCH so a concurrent delete is not resurrected.
func (s *CartStore) UpdateCartItemQuantity(ctx context.Context, productID string, quantity int) (err error) {
	ctx, end := database.TraceCommand(ctx, "UpdateCartItemQuantity", "HSET "+CartKey)
	defer func() { end(err) }()

	updated := false
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		r, err := s.get(ctx, tx, productID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil
			}
			return err
		}

		r.Quantity = quantity
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal cart item: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, CartKey, productID, data)
			return nil
		})
		updated = err == nil
		return err
	}, CartKey)
	if err != nil {
		return fmt.Errorf("redis update cart item %s: %w", productID, err)
	}

	if updated {
		s.hub.Notify()
	}
	return nil
}

// DeleteCartItem removes the row for productID, if any.
func (s *CartStore) DeleteCartItem(ctx context.Context, productID string) (err error) {
	ctx, end := database.TraceCommand(ctx, "DeleteCartItem", "HDEL "+CartKey)
	defer func() { end(err) }()

	n, err := s.client.HDel(ctx, CartKey, productID).Result()
	if err != nil {
		return fmt.Errorf("redis hdel cart item %s: %w", productID, err)
	}
	if n > 0 {
		s.hub.Notify()
	}
	return nil
}

// ClearCart deletes the whole hash.
func (s *CartStore) ClearCart(ctx context.Context) (err error) {
	ctx, end := database.TraceCommand(ctx, "ClearCart", "DEL "+CartKey)
	defer func() { end(err) }()

	if err = s.client.Del(ctx, CartKey).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	s.hub.Notify()
	return nil
}

// WatchCartItems streams the cart now and after every write.
func (s *CartStore) WatchCartItems(ctx context.Context) <-chan []domain.CartItem {
	return watch.Watch(ctx, s.hub, s.ListCartItems, func(err error) {
		s.logger.WarnContext(ctx, "failed to reload cart items",
			slog.String("error", err.Error()),
		)
	})
}

func (s *CartStore) get(ctx context.Context, c hashGetter, productID string) (row, error) {
	raw, err := c.HGet(ctx, CartKey, productID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return row{}, apperrors.NotFound("cart item", productID)
		}
		return row{}, fmt.Errorf("redis hget cart item %s: %w", productID, err)
	}

	var r row
	if err := json.Unmarshal(raw, &r); err != nil {
		return row{}, fmt.Errorf("unmarshal cart item %s: %w", productID, err)
	}
	return r, nil
}
