package models

import "time"

// Notification represents a persisted board message. A nil EmployeeID means
// the message is a broadcast visible to every employee. Rows are immutable
// once created.
type Notification struct {
	ID         string    `db:"id" json:"id"`
	Message    string    `db:"message" json:"message"`
	EmployeeID *string   `db:"employee_id" json:"employee_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Broadcast reports whether the notification targets every employee.
func (n Notification) Broadcast() bool {
	return n.EmployeeID == nil
}
