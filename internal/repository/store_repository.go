package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/storefront-availability-api/internal/models"
)

// StoreRepository reads stores and their weekly operating hours.
type StoreRepository struct {
	db *sqlx.DB
}

// NewStoreRepository constructs the repository.
func NewStoreRepository(db *sqlx.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

// FindByID returns an active store. sql.ErrNoRows is returned unwrapped.
func (r *StoreRepository) FindByID(ctx context.Context, id string) (*models.Store, error) {
	const query = `SELECT id, name, timezone, active, created_at, updated_at FROM stores WHERE id = $1 AND active = TRUE`
	var store models.Store
	if err := r.db.GetContext(ctx, &store, query, id); err != nil {
		return nil, err
	}
	return &store, nil
}

// ListOperatingHours returns every weekly window of a store ordered by day and
// open time. Disabled windows are included; the engine skips them.
func (r *StoreRepository) ListOperatingHours(ctx context.Context, storeID string) ([]models.StoreOperatingHour, error) {
	const query = `SELECT id, store_id, day_of_week, open_time, close_time, is_open, closes_next_day, dst_aware
		FROM store_operating_hours
		WHERE store_id = $1
		ORDER BY day_of_week, open_time`
	hours := []models.StoreOperatingHour{}
	if err := r.db.SelectContext(ctx, &hours, query, storeID); err != nil {
		return nil, fmt.Errorf("list operating hours: %w", err)
	}
	return hours, nil
}

// Ping checks database connectivity.
func (r *StoreRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
