package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/attendly/attendance-api/internal/models"
	appErrors "github.com/attendly/attendance-api/pkg/errors"
)

type notificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListAll(ctx context.Context, limit int) ([]models.Notification, error)
	Inbox(ctx context.Context, employeeID string) ([]models.Notification, error)
}

type employeeFinder interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
}

// NotificationService handles the board's notification side: admins write,
// employees read their inbox.
type NotificationService struct {
	repo      notificationRepository
	employees employeeFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(repo notificationRepository, employees employeeFinder, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, employees: employees, validator: validate, logger: logger}
}

// CreateNotificationRequest describes the publish payload. A nil EmployeeID
// means broadcast.
type CreateNotificationRequest struct {
	Message    string  `json:"message" validate:"required"`
	EmployeeID *string `json:"employee_id"`
}

// Publish stores a broadcast or targeted notification.
func (s *NotificationService) Publish(ctx context.Context, req CreateNotificationRequest) (*models.Notification, error) {
	req.Message = strings.TrimSpace(req.Message)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "message is required")
	}
	if req.EmployeeID != nil {
		if _, err := s.employees.FindByID(ctx, *req.EmployeeID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "target employee not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load target employee")
		}
	}
	notification := &models.Notification{Message: req.Message, EmployeeID: req.EmployeeID}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notification")
	}
	s.logger.Info("notification published",
		zap.String("notification_id", notification.ID),
		zap.Bool("broadcast", notification.Broadcast()))
	return notification, nil
}

// ListAll returns the admin board view, newest first.
func (s *NotificationService) ListAll(ctx context.Context, limit int) ([]models.Notification, error) {
	rows, err := s.repo.ListAll(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return rows, nil
}

// Inbox returns the union of broadcasts and notifications targeted at the
// employee, newest first.
func (s *NotificationService) Inbox(ctx context.Context, employeeID string) ([]models.Notification, error) {
	rows, err := s.repo.Inbox(ctx, employeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list inbox")
	}
	return rows, nil
}
