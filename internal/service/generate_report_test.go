package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mechanix/shop-reports/internal/domain"
	"github.com/mechanix/shop-reports/internal/platform/errors"
	"github.com/mechanix/shop-reports/internal/platform/observability/logging"
)

type stubOrderRepo struct {
	rows      []domain.OrderRow
	months    []domain.AvailableMonth
	fetchErr  error
	monthsErr error
	calls     int
}

func (s *stubOrderRepo) FetchOrders(ctx context.Context, year, month int) ([]domain.OrderRow, error) {
	s.calls++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.rows, nil
}

func (s *stubOrderRepo) AvailableMonths(ctx context.Context) ([]domain.AvailableMonth, error) {
	if s.monthsErr != nil {
		return nil, s.monthsErr
	}
	return s.months, nil
}

type stubReportRepo struct {
	saved   *domain.MonthlyReport
	stored  *domain.MonthlyReport
	saveErr error
	getErr  error
}

func (s *stubReportRepo) Save(ctx context.Context, report *domain.MonthlyReport) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = report
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

func TestGenerateReportExecute(t *testing.T) {
	orders := &stubOrderRepo{rows: []domain.OrderRow{
		{MechanicID: "m1", HoursSpent: "2", ServiceName: "oil", DateFinished: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}}
	reports := &stubReportRepo{}
	svc := NewGenerateReportService(orders, reports, logging.NewNoOpLogger())

	err := svc.Execute(context.Background(), 2024, 1)
	require.NoError(t, err)
	require.NotNil(t, reports.saved)
	assert.Equal(t, 2024, reports.saved.Year)
	assert.Equal(t, 1, reports.saved.MechanicPerformance["m1"].TotalOrders)
}

func TestGenerateReportFetchFailureSkipsSave(t *testing.T) {
	orders := &stubOrderRepo{fetchErr: errors.NewInternal("query failed")}
	reports := &stubReportRepo{}
	svc := NewGenerateReportService(orders, reports, logging.NewNoOpLogger())

	err := svc.Execute(context.Background(), 2024, 1)
	require.Error(t, err)
	assert.Nil(t, reports.saved)
}

func TestGenerateReportAggregationFailureSkipsSave(t *testing.T) {
	orders := &stubOrderRepo{rows: []domain.OrderRow{
		{MechanicID: "m1", HoursSpent: "bogus", ServiceName: "oil", DateFinished: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}}
	reports := &stubReportRepo{}
	svc := NewGenerateReportService(orders, reports, logging.NewNoOpLogger())

	err := svc.Execute(context.Background(), 2024, 1)
	require.Error(t, err)
	assert.Nil(t, reports.saved)
}

func TestGenerateReportSaveFailurePropagates(t *testing.T) {
	orders := &stubOrderRepo{}
	reports := &stubReportRepo{saveErr: errors.NewInternal("store unavailable")}
	svc := NewGenerateReportService(orders, reports, logging.NewNoOpLogger())

	err := svc.Execute(context.Background(), 2024, 1)
	require.Error(t, err)
	assert.True(t, errors.IsInternal(err))
}
