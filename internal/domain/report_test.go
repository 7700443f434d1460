package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mechanix/shop-reports/internal/platform/errors"
)

func TestBuildReportID(t *testing.T) {
	assert.Equal(t, "report-2024-03", BuildReportID(2024, 3))
	assert.Equal(t, "report-2024-12", BuildReportID(2024, 12))
	assert.Equal(t, "report-1999-01", BuildReportID(1999, 1))
}

func TestReportFiltersValidate(t *testing.T) {
	tests := []struct {
		name    string
		filters ReportFilters
		wantErr bool
	}{
		{"valid", ReportFilters{Year: 2024, Month: 5}, false},
		{"min year", ReportFilters{Year: 1980, Month: 1}, false},
		{"max year", ReportFilters{Year: 2100, Month: 12}, false},
		{"year too small", ReportFilters{Year: 1979, Month: 5}, true},
		{"year too large", ReportFilters{Year: 2101, Month: 5}, true},
		{"month zero", ReportFilters{Year: 2024, Month: 0}, true},
		{"month thirteen", ReportFilters{Year: 2024, Month: 13}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filters.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReportFiltersProblems(t *testing.T) {
	problems := ReportFilters{Year: 1900, Month: 13}.Problems()
	assert.Len(t, problems, 2)

	assert.Empty(t, ReportFilters{Year: 2024, Month: 6}.Problems())
}

func TestISOWeekKey(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"mid january", time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC), "2024-01"},
		{"second iso week", time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), "2024-02"},
		{"end of december in next iso year", time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), "2025-01"},
		{"start of january in prior iso year", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), "2020-53"},
		{"non utc input evaluated in utc", time.Date(2024, 1, 8, 0, 30, 0, 0, time.FixedZone("plus two", 2*3600)), "2024-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ISOWeekKey(tt.date))
		})
	}
}

func TestMonthlyReportValidate(t *testing.T) {
	valid := MonthlyReport{
		Year:  2024,
		Month: 1,
		MechanicPerformance: map[string]MechanicPerformance{
			"m1": {TotalOrders: 2, AverageHoursPerOrder: 3, ServicesBreakdown: map[string]int{"oil": 2}},
		},
		WeeklyThroughput: map[string]int{"2024-01": 2},
	}
	assert.NoError(t, valid.Validate())

	badMonth := valid
	badMonth.Month = 13
	assert.Error(t, badMonth.Validate())

	negativeCount := MonthlyReport{
		Year:  2024,
		Month: 1,
		MechanicPerformance: map[string]MechanicPerformance{
			"m1": {TotalOrders: -1},
		},
	}
	assert.Error(t, negativeCount.Validate())

	negativeWeek := MonthlyReport{
		Year:             2024,
		Month:            1,
		WeeklyThroughput: map[string]int{"2024-01": -1},
	}
	assert.Error(t, negativeWeek.Validate())
}
