package service

import (
	"context"

	"github.com/mechanix/shop-reports/internal/domain"
	"github.com/mechanix/shop-reports/internal/platform/observability/logging"
)

// ReportRequestPublisher sends a generation request to the broker.
type ReportRequestPublisher interface {
	PublishGenerateRequest(ctx context.Context, filters domain.ReportFilters) error
}

// ReportRequestService triggers report generation by publishing a request
// message. Fire and forget: the aggregator picks it up asynchronously.
type ReportRequestService struct {
	publisher ReportRequestPublisher
	logger    logging.Logger
}

// NewReportRequestService creates the request-side report service
func NewReportRequestService(publisher ReportRequestPublisher, logger logging.Logger) *ReportRequestService {
	return &ReportRequestService{
		publisher: publisher,
		logger:    logger,
	}
}

// RequestGeneration publishes a generation request for the period. Filters
// are expected to be validated at the HTTP boundary.
func (s *ReportRequestService) RequestGeneration(ctx context.Context, filters domain.ReportFilters) error {
	if err := s.publisher.PublishGenerateRequest(ctx, filters); err != nil {
		return err
	}

	s.logger.Info(ctx, "Report generation requested", map[string]interface{}{
		"year":  filters.Year,
		"month": filters.Month,
	})
	return nil
}
