package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/storefront-availability-api/internal/models"
)

// ProductRepository reads products and their availability rules.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository constructs the repository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindByID returns a product. sql.ErrNoRows is returned unwrapped.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	const query = `SELECT id, store_id, name, created_at, updated_at FROM products WHERE id = $1`
	var product models.Product
	if err := r.db.GetContext(ctx, &product, query, id); err != nil {
		return nil, err
	}
	return &product, nil
}

// ListAvailability returns the availability rules of a product. A product with
// no rows has no availability restrictions recorded and is never available.
func (r *ProductRepository) ListAvailability(ctx context.Context, productID string) ([]models.ProductAvailability, error) {
	const query = `SELECT id, product_id, days_of_week, start_time, end_time, timezone, recurrence_rule, special_dates
		FROM product_availability
		WHERE product_id = $1
		ORDER BY id`
	rules := []models.ProductAvailability{}
	if err := r.db.SelectContext(ctx, &rules, query, productID); err != nil {
		return nil, fmt.Errorf("list product availability: %w", err)
	}
	return rules, nil
}
