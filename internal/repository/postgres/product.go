package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const (
	selectProducts = `
		SELECT id, name, description, price, image_url, category, stock
		FROM products
		ORDER BY id`

	selectProductByID = `
		SELECT id, name, description, price, image_url, category, stock
		FROM products
		WHERE id = $1`

	upsertProduct = `
		INSERT INTO products (id, name, description, price, image_url, category, stock, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, description = EXCLUDED.description, price = EXCLUDED.price,
		    image_url = EXCLUDED.image_url, category = EXCLUDED.category, stock = EXCLUDED.stock,
		    updated_at = EXCLUDED.updated_at`
)

// ProductDAO implements repository.ProductStore using PostgreSQL.
type ProductDAO struct {
	db database.DBTX
}

var _ repository.ProductStore = (*ProductDAO)(nil)

// NewProductDAO creates a product DAO on db.
func NewProductDAO(db database.DBTX) *ProductDAO {
	return &ProductDAO{db: db}
}

// ListProducts returns every cached product.
func (d *ProductDAO) ListProducts(ctx context.Context) (products []domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, "ListProducts", selectProducts)
	defer func() { end(err) }()

	rows, err := d.db.Query(ctx, selectProducts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products = []domain.Product{}
	for rows.Next() {
		var e ProductEntity
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.Price, &e.ImageURL, &e.Category, &e.Stock); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, e.ToDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// GetProduct returns the cached product with the given id.
func (d *ProductDAO) GetProduct(ctx context.Context, id string) (p domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, "GetProduct", selectProductByID)
	defer func() {
		if errors.Is(err, apperrors.ErrNotFound) {
			end(nil)
			return
		}
		end(err)
	}()

	var e ProductEntity
	err = d.db.QueryRow(ctx, selectProductByID, id).
		Scan(&e.ID, &e.Name, &e.Description, &e.Price, &e.ImageURL, &e.Category, &e.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, apperrors.NotFound("product", id)
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}

	return e.ToDomain(), nil
}

// UpsertProduct inserts p or replaces the row with the same id.
func (d *ProductDAO) UpsertProduct(ctx context.Context, p domain.Product) (err error) {
	ctx, end := database.TraceQuery(ctx, "UpsertProduct", upsertProduct)
	defer func() { end(err) }()

	if _, err = d.db.Exec(ctx, upsertProduct, productArgs(p)...); err != nil {
		return fmt.Errorf("upsert product %s: %w", p.ID, err)
	}
	return nil
}

// UpsertProducts writes products in a single transaction.
func (d *ProductDAO) UpsertProducts(ctx context.Context, products []domain.Product) (err error) {
	if len(products) == 0 {
		return nil
	}

	ctx, end := database.TraceQuery(ctx, "UpsertProducts", upsertProduct)
	defer func() { end(err) }()

	tx, err := d.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, p := range products {
		if _, err = tx.Exec(ctx, upsertProduct, productArgs(p)...); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit products: %w", err)
	}
	return nil
}

func productArgs(p domain.Product) []any {
	e := ProductEntityFromDomain(p)
	return []any{e.ID, e.Name, e.Description, e.Price, e.ImageURL, e.Category, e.Stock}
}
