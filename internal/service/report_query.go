package service

import (
	"context"

	"github.com/mechanix/shop-reports/internal/cache"
	"github.com/mechanix/shop-reports/internal/domain"
	"github.com/mechanix/shop-reports/internal/platform/observability/logging"
	"github.com/mechanix/shop-reports/internal/repository/interfaces"
)

// ReportQueryService serves report reads through the cache. On a miss the
// source of record is consulted and the cache repopulated before returning.
type ReportQueryService struct {
	orders  interfaces.OrderRepository
	reports interfaces.ReportRepository
	cache   *cache.ReportCache
	logger  logging.Logger
}

// NewReportQueryService creates the read-side report service
func NewReportQueryService(orders interfaces.OrderRepository, reports interfaces.ReportRepository, reportCache *cache.ReportCache, logger logging.Logger) *ReportQueryService {
	return &ReportQueryService{
		orders:  orders,
		reports: reports,
		cache:   reportCache,
		logger:  logger,
	}
}

// GetMonthlyReport returns the report for the period, cache first. Returns
// a not-found error when no report has been generated for the period.
func (s *ReportQueryService) GetMonthlyReport(ctx context.Context, year, month int) (*domain.MonthlyReport, error) {
	if cached := s.cache.GetReport(ctx, year, month); cached != nil {
		return cached, nil
	}

	report, err := s.reports.Get(ctx, year, month)
	if err != nil {
		return nil, err
	}

	s.cache.SetReport(ctx, report)
	return report, nil
}

// GetAvailableMonths lists the months with finished orders, cache first.
func (s *ReportQueryService) GetAvailableMonths(ctx context.Context) ([]domain.AvailableMonth, error) {
	if cached := s.cache.GetMonths(ctx); cached != nil {
		return cached, nil
	}

	months, err := s.orders.AvailableMonths(ctx)
	if err != nil {
		return nil, err
	}
	if months == nil {
		months = []domain.AvailableMonth{}
	}

	s.cache.SetMonths(ctx, months)
	return months, nil
}
