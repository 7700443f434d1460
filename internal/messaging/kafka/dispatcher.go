package kafka

import (
	"context"
	"encoding/json"

	"github.com/mechanix/shop-reports/internal/domain"
	"github.com/mechanix/shop-reports/internal/platform/observability/logging"
	"github.com/mechanix/shop-reports/internal/platform/observability/metrics"
)

// DispatchStatus is the outcome of handling one generation request.
type DispatchStatus int

const (
	// Processed means the report was generated and the message can be acked.
	Processed DispatchStatus = iota
	// Rejected means the message must not be acked; the broker redelivers
	// it according to its own policy.
	Rejected
)

// DispatchResult carries the dispatch outcome and, for rejections, the reason.
type DispatchResult struct {
	Status DispatchStatus
	Reason string
}

func processed() DispatchResult {
	return DispatchResult{Status: Processed}
}

func rejected(reason string) DispatchResult {
	return DispatchResult{Status: Rejected, Reason: reason}
}

// ReportGenerator runs the aggregation pipeline for one period.
type ReportGenerator interface {
	Execute(ctx context.Context, year, month int) error
}

// Dispatcher turns a raw broker payload into an ack/nack decision:
// parse, validate, generate. The transport adapter maps the result onto
// offset commits, which keeps the decision testable without a broker.
type Dispatcher struct {
	generator ReportGenerator
	logger    logging.Logger
	metrics   metrics.Metrics
}

// NewDispatcher creates a new report request dispatcher
func NewDispatcher(generator ReportGenerator, logger logging.Logger, m metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		generator: generator,
		logger:    logger,
		metrics:   m,
	}
}

// Dispatch handles one generation request payload.
func (d *Dispatcher) Dispatch(ctx context.Context, payload []byte) DispatchResult {
	var request generateRequestMessage
	if err := json.Unmarshal(payload, &request); err != nil {
		d.logger.Error(ctx, "Failed to parse generation request", err, map[string]interface{}{
			"payload": string(payload),
		})
		return rejected("unparseable payload")
	}

	filters := domain.ReportFilters{Year: request.Year, Month: request.Month}
	if err := filters.Validate(); err != nil {
		d.logger.Warn(ctx, "Rejected invalid generation request", map[string]interface{}{
			"year":  request.Year,
			"month": request.Month,
			"error": err.Error(),
		})
		return rejected(err.Error())
	}

	if err := d.generator.Execute(ctx, request.Year, request.Month); err != nil {
		d.logger.Error(ctx, "Report generation failed", err, map[string]interface{}{
			"year":  request.Year,
			"month": request.Month,
		})
		return rejected(err.Error())
	}

	d.metrics.IncrementCounter("report_requests_processed_total", map[string]string{
		"topic": GenerateRequestsTopic,
	})
	return processed()
}
