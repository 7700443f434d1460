package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mechanix/shop-reports/internal/platform/observability/logging"
)

// Checker reports the health of one dependency.
type Checker func(ctx context.Context) error

// HealthChecks bundles the dependency probes behind the health endpoint.
type HealthChecks struct {
	Redis       Checker
	Database    Checker
	ReportStore Checker
	Broker      Checker
	// Aggregator reports whether the consumer group is visible to the
	// broker. A weak signal: it indicates topology, not a live process.
	Aggregator func(ctx context.Context) (bool, error)
}

// healthStatus is the health endpoint response body.
type healthStatus struct {
	Redis       bool `json:"redis"`
	Database    bool `json:"database"`
	ReportStore bool `json:"reportStore"`
	Broker      bool `json:"broker"`
	Aggregator  bool `json:"aggregator"`
}

func (s healthStatus) healthy() bool {
	return s.Redis && s.Database && s.ReportStore && s.Broker && s.Aggregator
}

// HealthHandler serves the health endpoints.
type HealthHandler struct {
	checks HealthChecks
	logger logging.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checks HealthChecks, logger logging.Logger) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		logger: logger,
	}
}

// HealthCheck handles GET /health_check. Returns 200 when every
// dependency responds, 503 otherwise, with per-component detail.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := healthStatus{
		Redis:       h.probe(ctx, "redis", h.checks.Redis),
		Database:    h.probe(ctx, "database", h.checks.Database),
		ReportStore: h.probe(ctx, "report_store", h.checks.ReportStore),
		Broker:      h.probe(ctx, "broker", h.checks.Broker),
	}

	if h.checks.Aggregator != nil {
		active, err := h.checks.Aggregator(ctx)
		if err != nil {
			h.logger.Warn(ctx, "Aggregator health probe failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		status.Aggregator = err == nil && active
	}

	code := http.StatusOK
	if !status.healthy() {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}

// Liveness handles GET /live. Process-up probe only.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"msg":"ok health_check"}`))
}

func (h *HealthHandler) probe(ctx context.Context, name string, check Checker) bool {
	if check == nil {
		return false
	}
	if err := check(ctx); err != nil {
		h.logger.Warn(ctx, "Health probe failed", map[string]interface{}{
			"component": name,
			"error":     err.Error(),
		})
		return false
	}
	return true
}
