package service

import (
	"fmt"
	"strconv"

	"github.com/mechanix/shop-reports/internal/domain"
	"github.com/mechanix/shop-reports/internal/platform/errors"
)

// mechanicTotals is the running state per mechanic while folding rows.
type mechanicTotals struct {
	totalOrders       int
	totalHours        float64
	servicesBreakdown map[string]int
}

// Aggregate folds raw order rows into a monthly report. Pure: row order
// does not affect the result, and the same rows always produce the same
// report. Hour values are coerced from their text form and a non-numeric
// value fails the whole aggregation.
func Aggregate(year, month int, rows []domain.OrderRow) (*domain.MonthlyReport, error) {
	mechanics := make(map[string]*mechanicTotals)
	weeklyThroughput := make(map[string]int)

	for _, row := range rows {
		hours, err := strconv.ParseFloat(row.HoursSpent, 64)
		if err != nil {
			return nil, errors.NewInternal(fmt.Sprintf("non-numeric hours_spent %q for mechanic %s", row.HoursSpent, row.MechanicID))
		}

		totals, ok := mechanics[row.MechanicID]
		if !ok {
			totals = &mechanicTotals{servicesBreakdown: make(map[string]int)}
			mechanics[row.MechanicID] = totals
		}
		totals.totalOrders++
		totals.totalHours += hours
		totals.servicesBreakdown[row.ServiceName]++

		weeklyThroughput[domain.ISOWeekKey(row.DateFinished)]++
	}

	performance := make(map[string]domain.MechanicPerformance, len(mechanics))
	for mechanicID, totals := range mechanics {
		average := 0.0
		if totals.totalOrders > 0 {
			average = totals.totalHours / float64(totals.totalOrders)
		}
		performance[mechanicID] = domain.MechanicPerformance{
			TotalOrders:          totals.totalOrders,
			AverageHoursPerOrder: average,
			ServicesBreakdown:    totals.servicesBreakdown,
		}
	}

	report := &domain.MonthlyReport{
		Year:                year,
		Month:               month,
		MechanicPerformance: performance,
		WeeklyThroughput:    weeklyThroughput,
	}

	if err := report.Validate(); err != nil {
		return nil, err
	}
	return report, nil
}
