package postgres

import "github.com/utafrali/storefront/internal/domain"

// ProductEntity is a row of the products table.
type ProductEntity struct {
	ID          string
	Name        string
	Description string
	Price       float64
	ImageURL    string
	Category    string
	Stock       int
}

// ToDomain converts the row to a domain.Product.
func (e ProductEntity) ToDomain() domain.Product {
	return domain.Product{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Price:       e.Price,
		ImageURL:    e.ImageURL,
		Category:    e.Category,
		Stock:       e.Stock,
	}
}

// ProductEntityFromDomain converts p to a row.
func ProductEntityFromDomain(p domain.Product) ProductEntity {
	return ProductEntity{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		Stock:       p.Stock,
	}
}

// CartItemEntity is a row of the cart_items table.
type CartItemEntity struct {
	ProductID   string
	ProductName string
	Quantity    int
	Price       float64
	ImageURL    string
}

// ToDomain converts the row to a domain.CartItem.
func (e CartItemEntity) ToDomain() domain.CartItem {
	return domain.CartItem{
		ProductID:   e.ProductID,
		ProductName: e.ProductName,
		Quantity:    e.Quantity,
		Price:       e.Price,
		ImageURL:    e.ImageURL,
	}
}

// CartItemEntityFromDomain converts item to a row.
func CartItemEntityFromDomain(item domain.CartItem) CartItemEntity {
	return CartItemEntity{
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Quantity:    item.Quantity,
		Price:       item.Price,
		ImageURL:    item.ImageURL,
	}
}
