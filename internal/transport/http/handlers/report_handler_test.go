package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mechanix/shop-reports/internal/cache"
	"github.com/mechanix/shop-reports/internal/domain"
	"github.com/mechanix/shop-reports/internal/platform/errors"
	"github.com/mechanix/shop-reports/internal/platform/observability/logging"
	"github.com/mechanix/shop-reports/internal/platform/observability/metrics"
	"github.com/mechanix/shop-reports/internal/service"
)

type stubOrderRepo struct {
	months    []domain.AvailableMonth
	monthsErr error
}

func (s *stubOrderRepo) FetchOrders(ctx context.Context, year, month int) ([]domain.OrderRow, error) {
	return nil, nil
}

func (s *stubOrderRepo) AvailableMonths(ctx context.Context) ([]domain.AvailableMonth, error) {
	if s.monthsErr != nil {
		return nil, s.monthsErr
	}
	return s.months, nil
}

type stubReportRepo struct {
	stored *domain.MonthlyReport
	getErr error
}

func (s *stubReportRepo) Save(ctx context.Context, report *domain.MonthlyReport) error {
	return nil
}

func (s *stubReportRepo) Get(ctx context.Context, year, month int) (*domain.MonthlyReport, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.stored == nil {
		return nil, errors.NewNotFound("report not found for requested period")
	}
	return s.stored, nil
}

type stubPublisher struct {
	err   error
	calls int
}

func (s *stubPublisher) PublishGenerateRequest(ctx context.Context, filters domain.ReportFilters) error {
	s.calls++
	return s.err
}

type brokenKV struct{}

func (brokenKV) Get(ctx context.Context, key string) (string, error) {
	return "", errors.NewInternal("cache unavailable")
}

func (brokenKV) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return errors.NewInternal("cache unavailable")
}

func newTestRouter(orders *stubOrderRepo, reports *stubReportRepo, publisher *stubPublisher) *chi.Mux {
	logger := logging.NewNoOpLogger()
	reportCache := cache.NewReportCache(brokenKV{}, time.Minute, logger, metrics.NewNoOpMetrics())
	queryService := service.NewReportQueryService(orders, reports, reportCache, logger)
	requestService := service.NewReportRequestService(publisher, logger)
	handler := NewReportHandler(queryService, requestService, logger)

	router := chi.NewRouter()
	router.Get("/api/reports/available-months", handler.GetAvailableMonths)
	router.Post("/api/reports/generate", handler.GenerateReport)
	router.Get("/api/reports/monthly/{year}/{month}", handler.GetMonthlyReport)
	return router
}

func storedReport() *domain.MonthlyReport {
	return &domain.MonthlyReport{
		Year:  2024,
		Month: 5,
		MechanicPerformance: map[string]domain.MechanicPerformance{
			"m1": {TotalOrders: 1, AverageHoursPerOrder: 2, ServicesBreakdown: map[string]int{"oil": 1}},
		},
		WeeklyThroughput: map[string]int{"2024-19": 1},
	}
}

func TestGenerateReportAccepted(t *testing.T) {
	publisher := &stubPublisher{}
	router := newTestRouter(&stubOrderRepo{}, &stubReportRepo{}, publisher)

	req := httptest.NewRequest(http.MethodPost, "/api/reports/generate", strings.NewReader(`{"year":2024,"month":5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, publisher.calls)
}

func TestGenerateReportInvalidMonth(t *testing.T) {
	publisher := &stubPublisher{}
	router := newTestRouter(&stubOrderRepo{}, &stubReportRepo{}, publisher)

	req := httptest.NewRequest(http.MethodPost, "/api/reports/generate", strings.NewReader(`{"year":2024,"month":13}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, publisher.calls)

	var body ValidationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Errors)
}

func TestGenerateReportBadJSON(t *testing.T) {
	publisher := &stubPublisher{}
	router := newTestRouter(&stubOrderRepo{}, &stubReportRepo{}, publisher)

	req := httptest.NewRequest(http.MethodPost, "/api/reports/generate", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, publisher.calls)
}

func TestGenerateReportPublishFailure(t *testing.T) {
	publisher := &stubPublisher{err: errors.NewInternal("broker unavailable")}
	router := newTestRouter(&stubOrderRepo{}, &stubReportRepo{}, publisher)

	req := httptest.NewRequest(http.MethodPost, "/api/reports/generate", strings.NewReader(`{"year":2024,"month":5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal Server Error", body.Error)
}

func TestGetMonthlyReportFound(t *testing.T) {
	reports := &stubReportRepo{stored: storedReport()}
	router := newTestRouter(&stubOrderRepo{}, reports, &stubPublisher{})

	req := httptest.NewRequest(http.MethodGet, "/api/reports/monthly/2024/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body domain.MonthlyReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, *reports.stored, body)
}

func TestGetMonthlyReportNotFound(t *testing.T) {
	router := newTestRouter(&stubOrderRepo{}, &stubReportRepo{}, &stubPublisher{})

	req := httptest.NewRequest(http.MethodGet, "/api/reports/monthly/2024/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMonthlyReportInvalidParams(t *testing.T) {
	router := newTestRouter(&stubOrderRepo{}, &stubReportRepo{}, &stubPublisher{})

	req := httptest.NewRequest(http.MethodGet, "/api/reports/monthly/2024/next", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/reports/monthly/2024/13", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMonthlyReportCacheFailureFallsBack(t *testing.T) {
	// The KV behind the cache always errors; the store still answers.
	reports := &stubReportRepo{stored: storedReport()}
	router := newTestRouter(&stubOrderRepo{}, reports, &stubPublisher{})

	req := httptest.NewRequest(http.MethodGet, "/api/reports/monthly/2024/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetAvailableMonths(t *testing.T) {
	orders := &stubOrderRepo{months: []domain.AvailableMonth{{Year: 2024, Month: 2}, {Year: 2024, Month: 1}}}
	router := newTestRouter(orders, &stubReportRepo{}, &stubPublisher{})

	req := httptest.NewRequest(http.MethodGet, "/api/reports/available-months", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body []domain.AvailableMonth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, orders.months, body)
}

func TestGetAvailableMonthsBackendFailure(t *testing.T) {
	orders := &stubOrderRepo{monthsErr: errors.NewInternal("query failed")}
	router := newTestRouter(orders, &stubReportRepo{}, &stubPublisher{})

	req := httptest.NewRequest(http.MethodGet, "/api/reports/available-months", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal Server Error", body.Error)
}
