package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role distinguishes the two principals the API serves.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
)

// JWTClaims is the access token payload. SubjectID is the admin or employee
// surrogate id; EmployeeCode is set only for employee tokens.
type JWTClaims struct {
	SubjectID    string `json:"sub_id"`
	Role         Role   `json:"role"`
	EmployeeCode string `json:"employee_code,omitempty"`
	jwt.RegisteredClaims
}

// RefreshToken is a stored refresh token for either principal type.
type RefreshToken struct {
	ID          string     `db:"id" json:"id"`
	SubjectType Role       `db:"subject_type" json:"subject_type"`
	SubjectID   string     `db:"subject_id" json:"subject_id"`
	Token       string     `db:"token" json:"token"`
	ExpiresAt   time.Time  `db:"expires_at" json:"expires_at"`
	Revoked     bool       `db:"revoked" json:"revoked"`
	RevokedAt   *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// PasswordResetToken is a single-use token issued by the forgot-password flow.
type PasswordResetToken struct {
	ID         string    `db:"id" json:"id"`
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	Token      string    `db:"token" json:"token"`
	ExpiresAt  time.Time `db:"expires_at" json:"expires_at"`
	Used       bool      `db:"used" json:"used"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// TokenPair is the issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}
