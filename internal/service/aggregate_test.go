package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mechanix/shop-reports/internal/domain"
	"github.com/mechanix/shop-reports/internal/platform/errors"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 10, 0, 0, 0, time.UTC)
}

func TestAggregate(t *testing.T) {
	rows := []domain.OrderRow{
		{MechanicID: "m1", HoursSpent: "2", ServiceName: "oil", DateFinished: day(2024, time.January, 2)},
		{MechanicID: "m1", HoursSpent: "4", ServiceName: "tire", DateFinished: day(2024, time.January, 3)},
		{MechanicID: "m2", HoursSpent: "3", ServiceName: "oil", DateFinished: day(2024, time.January, 8)},
	}

	report, err := Aggregate(2024, 1, rows)
	require.NoError(t, err)

	assert.Equal(t, 2024, report.Year)
	assert.Equal(t, 1, report.Month)

	m1 := report.MechanicPerformance["m1"]
	assert.Equal(t, 2, m1.TotalOrders)
	assert.Equal(t, 3.0, m1.AverageHoursPerOrder)
	assert.Equal(t, map[string]int{"oil": 1, "tire": 1}, m1.ServicesBreakdown)

	m2 := report.MechanicPerformance["m2"]
	assert.Equal(t, 1, m2.TotalOrders)
	assert.Equal(t, 3.0, m2.AverageHoursPerOrder)
	assert.Equal(t, map[string]int{"oil": 1}, m2.ServicesBreakdown)

	assert.Equal(t, map[string]int{"2024-01": 2, "2024-02": 1}, report.WeeklyThroughput)
}

func TestAggregateEmptyRows(t *testing.T) {
	report, err := Aggregate(2024, 6, nil)
	require.NoError(t, err)

	assert.Empty(t, report.MechanicPerformance)
	assert.Empty(t, report.WeeklyThroughput)
}

func TestAggregateFractionalHours(t *testing.T) {
	rows := []domain.OrderRow{
		{MechanicID: "m1", HoursSpent: "1.5", ServiceName: "brakes", DateFinished: day(2024, time.March, 5)},
		{MechanicID: "m1", HoursSpent: "2.5", ServiceName: "brakes", DateFinished: day(2024, time.March, 6)},
	}

	report, err := Aggregate(2024, 3, rows)
	require.NoError(t, err)
	assert.Equal(t, 2.0, report.MechanicPerformance["m1"].AverageHoursPerOrder)
}

func TestAggregateNonNumericHours(t *testing.T) {
	rows := []domain.OrderRow{
		{MechanicID: "m1", HoursSpent: "lots", ServiceName: "oil", DateFinished: day(2024, time.January, 2)},
	}

	_, err := Aggregate(2024, 1, rows)
	require.Error(t, err)
	assert.True(t, errors.IsInternal(err))
}

func TestAggregateOrderIndependent(t *testing.T) {
	rows := []domain.OrderRow{
		{MechanicID: "m1", HoursSpent: "2", ServiceName: "oil", DateFinished: day(2024, time.January, 2)},
		{MechanicID: "m2", HoursSpent: "3", ServiceName: "tire", DateFinished: day(2024, time.January, 9)},
		{MechanicID: "m1", HoursSpent: "4", ServiceName: "oil", DateFinished: day(2024, time.January, 16)},
	}
	reversed := []domain.OrderRow{rows[2], rows[1], rows[0]}

	first, err := Aggregate(2024, 1, rows)
	require.NoError(t, err)
	second, err := Aggregate(2024, 1, reversed)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAggregateBreakdownSumsToTotalOrders(t *testing.T) {
	rows := []domain.OrderRow{
		{MechanicID: "m1", HoursSpent: "1", ServiceName: "oil", DateFinished: day(2024, time.May, 1)},
		{MechanicID: "m1", HoursSpent: "2", ServiceName: "tire", DateFinished: day(2024, time.May, 2)},
		{MechanicID: "m1", HoursSpent: "3", ServiceName: "oil", DateFinished: day(2024, time.May, 3)},
	}

	report, err := Aggregate(2024, 5, rows)
	require.NoError(t, err)

	perf := report.MechanicPerformance["m1"]
	sum := 0
	for _, count := range perf.ServicesBreakdown {
		sum += count
	}
	assert.Equal(t, perf.TotalOrders, sum)
}
