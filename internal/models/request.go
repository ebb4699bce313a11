package models

import "time"

// RequestStatus represents the lifecycle state of an employee request.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "Pending"
	RequestStatusApproved RequestStatus = "Approved"
	RequestStatusDeclined RequestStatus = "Declined"
)

// Valid returns true when the status is a supported value.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusDeclined:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status admits no further transition.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusApproved || s == RequestStatusDeclined
}

// EmployeeRequest represents a request filed by an employee. Transitions are
// one way: Pending to Approved or Declined, decided by an admin.
type EmployeeRequest struct {
	ID          string        `db:"id" json:"id"`
	EmployeeID  string        `db:"employee_id" json:"employee_id"`
	RequestType string        `db:"request_type" json:"request_type"`
	Message     string        `db:"message" json:"message"`
	Status      RequestStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// EmployeeRequestDetail extends the request row with employee metadata for
// the admin listing.
type EmployeeRequestDetail struct {
	EmployeeRequest
	EmployeeCode string `db:"employee_code" json:"employee_code"`
	EmployeeName string `db:"employee_name" json:"employee_name"`
}
