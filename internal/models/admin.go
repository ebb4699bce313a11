package models

import "time"

// Admin represents an administrator account. Admins are provisioned out of
// band by the create-admin command; the API only lets an admin edit its own
// username and password.
type Admin struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
