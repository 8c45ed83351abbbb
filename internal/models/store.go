package models

import "time"

// Store is a physical or virtual storefront with a home timezone.
type Store struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Timezone  string    `db:"timezone" json:"timezone"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StoreOperatingHour is one weekly opening window as stored. Times are local
// "HH:MM" strings in the store timezone. DSTAware NULL means corrected.
type StoreOperatingHour struct {
	ID            string `db:"id" json:"id"`
	StoreID       string `db:"store_id" json:"store_id"`
	DayOfWeek     int    `db:"day_of_week" json:"day_of_week"`
	OpenTime      string `db:"open_time" json:"open_time"`
	CloseTime     string `db:"close_time" json:"close_time"`
	IsOpen        bool   `db:"is_open" json:"is_open"`
	ClosesNextDay bool   `db:"closes_next_day" json:"closes_next_day"`
	DSTAware      *bool  `db:"dst_aware" json:"dst_aware,omitempty"`
}

// StoreSchedule is the snapshot cached per store and fed to the engine.
type StoreSchedule struct {
	Store Store                `json:"store"`
	Hours []StoreOperatingHour `json:"hours"`
}
