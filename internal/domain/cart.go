package domain

import "github.com/shopspring/decimal"

// Quantity bounds for a cart line.
const (
	MinQuantity = 1
	MaxQuantity = 999
)

// CartItem is one line of the cart, keyed by product id.
type CartItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
}

// ClampQuantity constrains q into [MinQuantity, MaxQuantity].
func ClampQuantity(q int) int {
	switch {
	case q < MinQuantity:
		return MinQuantity
	case q > MaxQuantity:
		return MaxQuantity
	default:
		return q
	}
}

// NewCartItem builds a cart line for p with a clamped quantity.
func NewCartItem(p Product, quantity int) CartItem {
	return CartItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    ClampQuantity(quantity),
		Price:       p.Price,
		ImageURL:    p.ImageURL,
	}
}

// Subtotal returns price times quantity.
func (c CartItem) Subtotal() float64 {
	return c.subtotal().InexactFloat64()
}

func (c CartItem) subtotal() decimal.Decimal {
	return decimal.NewFromFloat(c.Price).Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// CartTotal sums the subtotals of items in decimal so that repeated cents do
// not accumulate float error.
func CartTotal(items []CartItem) float64 {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.subtotal())
	}
	return total.InexactFloat64()
}

// CartCount returns the number of units across all lines.
func CartCount(items []CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
