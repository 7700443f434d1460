package domain

import "time"

// OrderRow is one finished service order as read from the transactional
// store. HoursSpent arrives as a string because the column is NUMERIC and
// drivers report it as text; the aggregator coerces it.
type OrderRow struct {
	MechanicID   string    `json:"mechanicId" db:"mechanic_id"`
	HoursSpent   string    `json:"hoursSpent" db:"hours_spent"`
	ServiceName  string    `json:"serviceName" db:"service_name"`
	DateFinished time.Time `json:"dateFinished" db:"date_finished"`
}
