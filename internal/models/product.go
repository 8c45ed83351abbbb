package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Product is a sellable item whose availability may be restricted to windows.
type Product struct {
	ID        string    `db:"id" json:"id"`
	StoreID   *string   `db:"store_id" json:"store_id,omitempty"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ProductAvailability is one availability rule row. DaysOfWeek holds a JSON
// array of 0=Sunday weekday numbers; SpecialDates a JSON object of ISO dates to
// booleans.
type ProductAvailability struct {
	ID             string         `db:"id" json:"id"`
	ProductID      string         `db:"product_id" json:"product_id"`
	DaysOfWeek     types.JSONText `db:"days_of_week" json:"days_of_week"`
	StartTime      string         `db:"start_time" json:"start_time"`
	EndTime        string         `db:"end_time" json:"end_time"`
	Timezone       *string        `db:"timezone" json:"timezone,omitempty"`
	RecurrenceRule *string        `db:"recurrence_rule" json:"recurrence_rule,omitempty"`
	SpecialDates   types.JSONText `db:"special_dates" json:"special_dates"`
}

// ProductSchedule is the snapshot cached per product.
type ProductSchedule struct {
	Product Product               `json:"product"`
	Rules   []ProductAvailability `json:"rules"`
}
