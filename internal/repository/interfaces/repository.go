package interfaces

import (
	"context"

	"github.com/mechanix/shop-reports/internal/domain"
)

// OrderRepository reads finished service orders from the transactional store.
type OrderRepository interface {
	// FetchOrders returns the raw order rows finished inside the given
	// calendar month. The caller is responsible for validating the period.
	FetchOrders(ctx context.Context, year, month int) ([]domain.OrderRow, error)

	// AvailableMonths lists the distinct (year, month) pairs that have at
	// least one finished order, newest first.
	AvailableMonths(ctx context.Context) ([]domain.AvailableMonth, error)
}

// ReportRepository persists aggregated monthly reports.
type ReportRepository interface {
	// Save upserts the report under its derived id, replacing any prior
	// value for the same period.
	Save(ctx context.Context, report *domain.MonthlyReport) error

	// Get returns the stored report for the period, or a not-found error
	// when no report exists.
	Get(ctx context.Context, year, month int) (*domain.MonthlyReport, error)
}
