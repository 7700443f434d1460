package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mechanix/shop-reports/internal/domain"
	"github.com/mechanix/shop-reports/internal/platform/errors"
	"github.com/mechanix/shop-reports/internal/platform/observability/logging"
	"github.com/mechanix/shop-reports/internal/platform/observability/tracing"
	"github.com/mechanix/shop-reports/internal/service"
)

// ReportHandler handles HTTP requests for reports
type ReportHandler struct {
	queryService   *service.ReportQueryService
	requestService *service.ReportRequestService
	logger         logging.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(queryService *service.ReportQueryService, requestService *service.ReportRequestService, logger logging.Logger) *ReportHandler {
	return &ReportHandler{
		queryService:   queryService,
		requestService: requestService,
		logger:         logger,
	}
}

// GetAvailableMonths handles GET /api/reports/available-months
func (h *ReportHandler) GetAvailableMonths(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	months, err := h.queryService.GetAvailableMonths(ctx)
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, months)
}

// GenerateReport handles POST /api/reports/generate
func (h *ReportHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Errors: []string{"invalid JSON payload"},
		})
		return
	}

	filters := domain.ReportFilters{Year: req.Year, Month: req.Month}
	if problems := filters.Problems(); len(problems) > 0 {
		h.respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{Errors: problems})
		return
	}

	tracing.AddSpanAttributes(ctx,
		tracing.ReportYearKey.Int(filters.Year),
		tracing.ReportMonthKey.Int(filters.Month),
	)

	if err := h.requestService.RequestGeneration(ctx, filters); err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	h.respondWithJSON(w, http.StatusAccepted, GenerateReportResponse{
		Message: "report generation requested",
		Year:    filters.Year,
		Month:   filters.Month,
	})
}

// GetMonthlyReport handles GET /api/reports/monthly/{year}/{month}
func (h *ReportHandler) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, yearErr := strconv.Atoi(chi.URLParam(r, "year"))
	month, monthErr := strconv.Atoi(chi.URLParam(r, "month"))
	if yearErr != nil || monthErr != nil {
		h.respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Errors: []string{"year and month must be integers"},
		})
		return
	}

	filters := domain.ReportFilters{Year: year, Month: month}
	if problems := filters.Problems(); len(problems) > 0 {
		h.respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{Errors: problems})
		return
	}

	tracing.AddSpanAttributes(ctx,
		tracing.ReportYearKey.Int(year),
		tracing.ReportMonthKey.Int(month),
	)

	report, err := h.queryService.GetMonthlyReport(ctx, year, month)
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error(context.Background(), "Failed to marshal JSON response", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(response)
}

// handleServiceError maps service errors onto HTTP statuses. Backend
// failures return a generic body and are logged at most once.
func (h *ReportHandler) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.IsNotFound(err):
		h.respondWithJSON(w, http.StatusNotFound, ErrorResponse{Error: "report not found"})
	case errors.IsValidation(err):
		h.respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Errors: []string{err.Error()},
		})
	default:
		if !errors.IsLogged(err) {
			h.logger.Error(ctx, "Request failed with backend error", err)
			errors.MarkLogged(err)
		}
		h.respondWithJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
	}
}
