package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mechanix/shop-reports/internal/platform/errors"
	"github.com/mechanix/shop-reports/internal/platform/observability/logging"
)

func newMockRepo(t *testing.T) (*OrderRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "postgres")
	repo := NewOrderRepository(sqlxDB, logging.NewNoOpLogger()).(*OrderRepository)
	return repo, mock
}

func TestFetchOrders(t *testing.T) {
	repo, mock := newMockRepo(t)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT so\.mechanic_id`).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"mechanic_id", "hours_spent", "service_name", "date_finished"}).
			AddRow("m1", "2", "oil", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)).
			AddRow("m2", "3.5", "tire", time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)))

	rows, err := repo.FetchOrders(context.Background(), 2024, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "m1", rows[0].MechanicID)
	assert.Equal(t, "2", rows[0].HoursSpent)
	assert.Equal(t, "oil", rows[0].ServiceName)
	assert.Equal(t, "3.5", rows[1].HoursSpent)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchOrdersEmptyMonth(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT so\.mechanic_id`).
		WillReturnRows(sqlmock.NewRows([]string{"mechanic_id", "hours_spent", "service_name", "date_finished"}))

	rows, err := repo.FetchOrders(context.Background(), 2024, 6)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFetchOrdersQueryFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT so\.mechanic_id`).
		WillReturnError(assert.AnError)

	_, err := repo.FetchOrders(context.Background(), 2024, 1)
	require.Error(t, err)
	assert.True(t, errors.IsInternal(err))
}

func TestAvailableMonths(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT DISTINCT`).
		WillReturnRows(sqlmock.NewRows([]string{"year", "month"}).
			AddRow(2024, 2).
			AddRow(2024, 1).
			AddRow(2023, 12))

	months, err := repo.AvailableMonths(context.Background())
	require.NoError(t, err)
	require.Len(t, months, 3)
	assert.Equal(t, 2024, months[0].Year)
	assert.Equal(t, 2, months[0].Month)
	assert.Equal(t, 2023, months[2].Year)
}

func TestMonthRange(t *testing.T) {
	start, end := monthRange(2024, 12)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), end)
}
