package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/attendly/attendance-api/internal/models"
)

// NotificationRepository handles persistence for board notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification. Rows are never updated afterwards.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (id, message, employee_id, created_at)
VALUES (:id, :message, :employee_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListAll returns every notification newest first, for the admin board view.
func (r *NotificationRepository) ListAll(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT id, message, employee_id, created_at FROM notifications ORDER BY created_at DESC LIMIT %d`, limit)
	var rows []models.Notification
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return rows, nil
}

// Inbox returns broadcasts plus notifications targeted at the employee,
// merged newest first.
func (r *NotificationRepository) Inbox(ctx context.Context, employeeID string) ([]models.Notification, error) {
	const query = `SELECT id, message, employee_id, created_at FROM notifications
WHERE employee_id = $1 OR employee_id IS NULL
ORDER BY created_at DESC`
	var rows []models.Notification
	if err := r.db.SelectContext(ctx, &rows, query, employeeID); err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	return rows, nil
}
