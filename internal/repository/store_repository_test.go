package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduleMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStoreRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newScheduleMock(t)
	defer cleanup()
	repo := NewStoreRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "timezone", "active", "created_at", "updated_at"}).
		AddRow("store-1", "Downtown", "America/New_York", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, timezone, active, created_at, updated_at FROM stores WHERE id = $1 AND active = TRUE")).
		WithArgs("store-1").
		WillReturnRows(rows)

	store, err := repo.FindByID(context.Background(), "store-1")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", store.Timezone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newScheduleMock(t)
	defer cleanup()
	repo := NewStoreRepository(db)

	mock.ExpectQuery("FROM stores WHERE id").WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "ghost")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestStoreRepositoryListOperatingHours(t *testing.T) {
	db, mock, cleanup := newScheduleMock(t)
	defer cleanup()
	repo := NewStoreRepository(db)

	rows := sqlmock.NewRows([]string{"id", "store_id", "day_of_week", "open_time", "close_time", "is_open", "closes_next_day", "dst_aware"}).
		AddRow("h-1", "store-1", 1, "09:00", "17:00", true, false, nil).
		AddRow("h-2", "store-1", 5, "22:00", "02:00", true, true, false)
	mock.ExpectQuery("SELECT id, store_id, day_of_week, open_time, close_time, is_open, closes_next_day, dst_aware\\s+FROM store_operating_hours").
		WithArgs("store-1").
		WillReturnRows(rows)

	hours, err := repo.ListOperatingHours(context.Background(), "store-1")
	require.NoError(t, err)
	require.Len(t, hours, 2)
	assert.Nil(t, hours[0].DSTAware)
	require.NotNil(t, hours[1].DSTAware)
	assert.False(t, *hours[1].DSTAware)
	assert.True(t, hours[1].ClosesNextDay)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreRepositoryListOperatingHoursError(t *testing.T) {
	db, mock, cleanup := newScheduleMock(t)
	defer cleanup()
	repo := NewStoreRepository(db)

	mock.ExpectQuery("FROM store_operating_hours").WithArgs("store-1").WillReturnError(errors.New("boom"))

	_, err := repo.ListOperatingHours(context.Background(), "store-1")
	assert.Error(t, err)
}
