// Package domain holds the storefront's value types: catalog products, cart
// lines and the Result wrapper that repositories stream.
package domain

// Product is a catalog entry. It is never mutated after it is fetched or read
// from the cache.
type Product struct {
	ID          string  `json:"id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	ImageURL    string  `json:"imageUrl"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock" validate:"gte=0"`
}
