package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mechanix/shop-reports/internal/domain"
	"github.com/mechanix/shop-reports/internal/platform/errors"
	"github.com/mechanix/shop-reports/internal/platform/observability/logging"
	"github.com/mechanix/shop-reports/internal/repository/interfaces"
)

// OrderRepository implements interfaces.OrderRepository over Postgres.
type OrderRepository struct {
	db     *sqlx.DB
	logger logging.Logger
}

// NewOrderRepository creates a new PostgreSQL order repository
func NewOrderRepository(db *sqlx.DB, logger logging.Logger) interfaces.OrderRepository {
	return &OrderRepository{
		db:     db,
		logger: logger,
	}
}

const fetchOrdersQuery = `
	SELECT so.mechanic_id,
	       so.hours_spent::text AS hours_spent,
	       sd.name AS service_name,
	       so.date_finished
	FROM service_orders so
	JOIN service_definitions sd ON sd.id = so.service_id
	WHERE so.date_finished >= $1
	  AND so.date_finished < $2`

const availableMonthsQuery = `
	SELECT DISTINCT EXTRACT(YEAR FROM date_finished AT TIME ZONE 'UTC')::int AS year,
	                EXTRACT(MONTH FROM date_finished AT TIME ZONE 'UTC')::int AS month
	FROM service_orders
	ORDER BY year DESC, month DESC`

// FetchOrders returns the raw order rows finished inside the given month.
// The range is half-open UTC: [start of month, start of next month).
func (r *OrderRepository) FetchOrders(ctx context.Context, year, month int) ([]domain.OrderRow, error) {
	start, end := monthRange(year, month)

	var rows []domain.OrderRow
	if err := r.db.SelectContext(ctx, &rows, fetchOrdersQuery, start, end); err != nil {
		r.logger.Error(ctx, "Failed to fetch service orders", err, map[string]interface{}{
			"year":  year,
			"month": month,
		})
		return nil, errors.Wrap(err, "failed to fetch service orders")
	}

	return rows, nil
}

// AvailableMonths lists the distinct months with finished orders, newest first.
func (r *OrderRepository) AvailableMonths(ctx context.Context) ([]domain.AvailableMonth, error) {
	var months []domain.AvailableMonth
	if err := r.db.SelectContext(ctx, &months, availableMonthsQuery); err != nil {
		r.logger.Error(ctx, "Failed to list available months", err)
		return nil, errors.Wrap(err, "failed to list available months")
	}

	return months, nil
}

func monthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
