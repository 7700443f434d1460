package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mechanix/shop-reports/internal/domain"
	"github.com/mechanix/shop-reports/internal/platform/errors"
	"github.com/mechanix/shop-reports/internal/platform/observability/logging"
	"github.com/mechanix/shop-reports/internal/platform/observability/metrics"
)

type stubKV struct {
	values  map[string]string
	getErr  error
	setErr  error
	lastTTL time.Duration
}

func newStubKV() *stubKV {
	return &stubKV{values: map[string]string{}}
}

func (s *stubKV) Get(ctx context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	value, ok := s.values[key]
	if !ok {
		return "", errors.NewNotFound("key not found")
	}
	return value, nil
}

func (s *stubKV) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	s.lastTTL = expiration
	return nil
}

func newTestCache(kv KV) *ReportCache {
	return NewReportCache(kv, 5*time.Minute, logging.NewNoOpLogger(), metrics.NewNoOpMetrics())
}

func validReport() *domain.MonthlyReport {
	return &domain.MonthlyReport{
		Year:  2024,
		Month: 5,
		MechanicPerformance: map[string]domain.MechanicPerformance{
			"m1": {TotalOrders: 1, AverageHoursPerOrder: 2, ServicesBreakdown: map[string]int{"oil": 1}},
		},
		WeeklyThroughput: map[string]int{"2024-19": 1},
	}
}

func TestMonthlyKey(t *testing.T) {
	assert.Equal(t, "monthly:2024-5", MonthlyKey(2024, 5))
	assert.Equal(t, "monthly:2024-12", MonthlyKey(2024, 12))
}

func TestReportRoundTrip(t *testing.T) {
	kv := newStubKV()
	c := newTestCache(kv)
	ctx := context.Background()

	report := validReport()
	c.SetReport(ctx, report)
	assert.Equal(t, 5*time.Minute, kv.lastTTL)

	cached := c.GetReport(ctx, 2024, 5)
	require.NotNil(t, cached)
	assert.Equal(t, report, cached)
}

func TestGetReportMiss(t *testing.T) {
	c := newTestCache(newStubKV())

	assert.Nil(t, c.GetReport(context.Background(), 2024, 5))
}

func TestGetReportFailOpenOnError(t *testing.T) {
	kv := newStubKV()
	kv.getErr = errors.NewInternal("connection refused")
	c := newTestCache(kv)

	assert.Nil(t, c.GetReport(context.Background(), 2024, 5))
}

func TestGetReportCorruptPayloadIsMiss(t *testing.T) {
	kv := newStubKV()
	kv.values[MonthlyKey(2024, 5)] = "{not json"
	c := newTestCache(kv)

	assert.Nil(t, c.GetReport(context.Background(), 2024, 5))
}

func TestGetReportInvalidShapeIsMiss(t *testing.T) {
	kv := newStubKV()
	data, err := json.Marshal(domain.MonthlyReport{Year: 2024, Month: 13})
	require.NoError(t, err)
	kv.values[MonthlyKey(2024, 5)] = string(data)
	c := newTestCache(kv)

	assert.Nil(t, c.GetReport(context.Background(), 2024, 5))
}

func TestSetReportWriteFailureIsSwallowed(t *testing.T) {
	kv := newStubKV()
	kv.setErr = errors.NewInternal("connection refused")
	c := newTestCache(kv)

	c.SetReport(context.Background(), validReport())
}

func TestMonthsRoundTrip(t *testing.T) {
	kv := newStubKV()
	c := newTestCache(kv)
	ctx := context.Background()

	months := []domain.AvailableMonth{{Year: 2024, Month: 2}, {Year: 2024, Month: 1}}
	c.SetMonths(ctx, months)

	cached := c.GetMonths(ctx)
	require.NotNil(t, cached)
	assert.Equal(t, months, cached)
}

func TestGetMonthsFailOpenOnError(t *testing.T) {
	kv := newStubKV()
	kv.getErr = errors.NewInternal("timeout")
	c := newTestCache(kv)

	assert.Nil(t, c.GetMonths(context.Background()))
}
