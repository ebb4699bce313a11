package models

import "time"

// Employee represents a staff member stored in the employees table. The code
// is the numeric badge identifier employees log in with; it is distinct from
// the surrogate id.
type Employee struct {
	ID             string     `db:"id" json:"id"`
	Code           string     `db:"code" json:"code"`
	FullName       string     `db:"full_name" json:"full_name"`
	Gender         *string    `db:"gender" json:"gender,omitempty"`
	Address        *string    `db:"address" json:"address,omitempty"`
	MobileNumber   *string    `db:"mobile_number" json:"mobile_number,omitempty"`
	DateOfBirth    *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Email          *string    `db:"email" json:"email,omitempty"`
	Photo          *string    `db:"photo" json:"photo,omitempty"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	RecoveryPhrase string     `db:"recovery_phrase" json:"-"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// EmployeeFilter captures filtering criteria for listing employees.
type EmployeeFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
