package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "Present"
	AttendanceStatusAbsent  AttendanceStatus = "Absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// AttendanceRecord represents a single daily attendance row. CheckIn and
// CheckOut are wall-clock HH:MM:SS strings; Date carries the calendar day.
// At most one row exists per (employee, date).
type AttendanceRecord struct {
	ID         string           `db:"id" json:"id"`
	EmployeeID string           `db:"employee_id" json:"employee_id"`
	Date       time.Time        `db:"date" json:"date"`
	Status     AttendanceStatus `db:"status" json:"status"`
	CheckIn    *string          `db:"check_in" json:"check_in,omitempty"`
	CheckOut   *string          `db:"check_out" json:"check_out,omitempty"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceFilter scopes history listing queries.
type AttendanceFilter struct {
	EmployeeID string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}

// AttendanceTally aggregates ledger counts used by the rating computation.
type AttendanceTally struct {
	Present int `db:"present"`
	Total   int `db:"total"`
}
