package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/attendly/attendance-api/internal/models"
)

// TokenRepository stores refresh tokens and password reset tokens.
type TokenRepository struct {
	db *sqlx.DB
}

// NewTokenRepository constructs the repository.
func NewTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// CreateRefreshToken persists a refresh token entry.
func (r *TokenRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO refresh_tokens (id, subject_type, subject_id, token, expires_at, revoked, revoked_at, created_at)
VALUES (:id, :subject_type, :subject_id, :token, :expires_at, :revoked, :revoked_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken returns a refresh token by token string.
func (r *TokenRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, subject_type, subject_id, token, expires_at, revoked, revoked_at, created_at
FROM refresh_tokens WHERE token = $1 LIMIT 1`
	var rt models.RefreshToken
	if err := r.db.GetContext(ctx, &rt, query, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &rt, nil
}

// RevokeRefreshToken marks a token as revoked.
func (r *TokenRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeSubjectRefreshTokens revokes all active refresh tokens for a subject.
func (r *TokenRepository) RevokeSubjectRefreshTokens(ctx context.Context, subjectType models.Role, subjectID string) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $3 WHERE subject_type = $1 AND subject_id = $2 AND revoked = FALSE`
	if _, err := r.db.ExecContext(ctx, query, subjectType, subjectID, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke subject refresh tokens: %w", err)
	}
	return nil
}

// CreatePasswordResetToken persists a reset token for an employee.
func (r *TokenRepository) CreatePasswordResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO password_reset_tokens (id, employee_id, token, expires_at, used, created_at)
VALUES (:id, :employee_id, :token, :expires_at, :used, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create password reset token: %w", err)
	}
	return nil
}

// ConsumePasswordResetToken marks an unused, unexpired token as used and
// returns it. sql.ErrNoRows means unknown, expired or already consumed.
func (r *TokenRepository) ConsumePasswordResetToken(ctx context.Context, token string, now time.Time) (*models.PasswordResetToken, error) {
	const query = `UPDATE password_reset_tokens SET used = TRUE
WHERE token = $1 AND used = FALSE AND expires_at > $2
RETURNING id, employee_id, token, expires_at, used, created_at`
	var prt models.PasswordResetToken
	if err := r.db.GetContext(ctx, &prt, query, token, now); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("consume password reset token: %w", err)
	}
	return &prt, nil
}
