package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/mechanix/shop-reports/internal/platform/errors"
)

const (
	MinReportYear = 1980
	MaxReportYear = 2100
)

// ReportFilters identifies one reporting period. It doubles as the
// generate-request payload and as the report identity key.
type ReportFilters struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Problems returns a human-readable description per violated constraint,
// empty when the filters are well formed.
func (f ReportFilters) Problems() []string {
	var problems []string
	if f.Year < MinReportYear || f.Year > MaxReportYear {
		problems = append(problems, fmt.Sprintf("year must be between %d and %d, got %d", MinReportYear, MaxReportYear, f.Year))
	}
	if f.Month < 1 || f.Month > 12 {
		problems = append(problems, fmt.Sprintf("month must be between 1 and 12, got %d", f.Month))
	}
	return problems
}

// Validate checks the period constraints
func (f ReportFilters) Validate() error {
	if problems := f.Problems(); len(problems) > 0 {
		return errors.NewValidation(strings.Join(problems, "; "))
	}
	return nil
}

// MechanicPerformance aggregates one mechanic's orders for a month.
type MechanicPerformance struct {
	TotalOrders          int            `json:"totalOrders" bson:"total_orders"`
	AverageHoursPerOrder float64        `json:"averageHoursPerOrder" bson:"average_hours_per_order"`
	ServicesBreakdown    map[string]int `json:"servicesBreakdown" bson:"services_breakdown"`
}

// MonthlyReport is the aggregation result for one (year, month) period.
// Mechanics with no finished orders in the period are absent from the map.
type MonthlyReport struct {
	Year                int                            `json:"year" bson:"year"`
	Month               int                            `json:"month" bson:"month"`
	MechanicPerformance map[string]MechanicPerformance `json:"mechanicPerformance" bson:"mechanic_performance"`
	WeeklyThroughput    map[string]int                 `json:"weeklyThroughput" bson:"weekly_throughput"`
}

// Validate checks the report invariants. A violation here means an
// upstream aggregation bug rather than bad user input.
func (r MonthlyReport) Validate() error {
	if err := (ReportFilters{Year: r.Year, Month: r.Month}).Validate(); err != nil {
		return err
	}
	for mechanicID, perf := range r.MechanicPerformance {
		if perf.TotalOrders < 0 {
			return errors.NewValidation(fmt.Sprintf("mechanic %s has negative total orders", mechanicID))
		}
		if perf.AverageHoursPerOrder < 0 {
			return errors.NewValidation(fmt.Sprintf("mechanic %s has negative average hours", mechanicID))
		}
		for service, count := range perf.ServicesBreakdown {
			if count < 0 {
				return errors.NewValidation(fmt.Sprintf("mechanic %s has negative count for service %s", mechanicID, service))
			}
		}
	}
	for week, count := range r.WeeklyThroughput {
		if count < 0 {
			return errors.NewValidation(fmt.Sprintf("negative throughput for week %s", week))
		}
	}
	return nil
}

// ReportID returns the storage and identity key for this report period.
func (r MonthlyReport) ReportID() string {
	return BuildReportID(r.Year, r.Month)
}

// BuildReportID derives the persisted report key, e.g. "report-2024-03".
func BuildReportID(year, month int) string {
	return fmt.Sprintf("report-%d-%02d", year, month)
}

// ISOWeekKey buckets a timestamp into its ISO-8601 week, evaluated in UTC.
// The key format is "IYYY-IW", e.g. "2024-01"; dates near a year boundary
// may land in the adjacent week-numbering year.
func ISOWeekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-%02d", year, week)
}

// AvailableMonth is one (year, month) pair that has finished orders.
type AvailableMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}
