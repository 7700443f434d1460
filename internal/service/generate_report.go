package service

import (
	"context"

	"github.com/mechanix/shop-reports/internal/platform/observability/logging"
	"github.com/mechanix/shop-reports/internal/repository/interfaces"
)

// GenerateReportService runs the aggregator-side pipeline: fetch raw
// order rows, aggregate them, persist the resulting report. Any stage
// failure propagates to the caller and nothing is saved.
type GenerateReportService struct {
	orders  interfaces.OrderRepository
	reports interfaces.ReportRepository
	logger  logging.Logger
}

// NewGenerateReportService creates the aggregation pipeline service
func NewGenerateReportService(orders interfaces.OrderRepository, reports interfaces.ReportRepository, logger logging.Logger) *GenerateReportService {
	return &GenerateReportService{
		orders:  orders,
		reports: reports,
		logger:  logger,
	}
}

// Execute generates and persists the report for one period. The period is
// assumed to have passed filter validation upstream.
func (s *GenerateReportService) Execute(ctx context.Context, year, month int) error {
	rows, err := s.orders.FetchOrders(ctx, year, month)
	if err != nil {
		return err
	}

	report, err := Aggregate(year, month, rows)
	if err != nil {
		return err
	}

	if err := s.reports.Save(ctx, report); err != nil {
		return err
	}

	s.logger.Info(ctx, "Monthly report generated", map[string]interface{}{
		"year":      year,
		"month":     month,
		"orders":    len(rows),
		"mechanics": len(report.MechanicPerformance),
	})
	return nil
}
