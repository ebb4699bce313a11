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

type requestRepository interface {
	Create(ctx context.Context, request *models.EmployeeRequest) error
	FindByID(ctx context.Context, id string) (*models.EmployeeRequest, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]models.EmployeeRequest, error)
	ListAll(ctx context.Context) ([]models.EmployeeRequestDetail, error)
	Resolve(ctx context.Context, id string, status models.RequestStatus) (*models.EmployeeRequest, error)
}

// RequestService handles the board's request side: employees file, admins
// decide.
type RequestService struct {
	repo      requestRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRequestService constructs the service.
func NewRequestService(repo requestRepository, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{repo: repo, validator: validate, logger: logger}
}

// SubmitRequestPayload describes the employee submission.
type SubmitRequestPayload struct {
	RequestType string `json:"request_type" validate:"required"`
	Message     string `json:"message" validate:"required"`
}

// Submit files a new request in Pending state. Empty type or message is a
// validation error and creates no row.
func (s *RequestService) Submit(ctx context.Context, employeeID string, payload SubmitRequestPayload) (*models.EmployeeRequest, error) {
	payload.RequestType = strings.TrimSpace(payload.RequestType)
	payload.Message = strings.TrimSpace(payload.Message)
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "request type and message are required")
	}
	request := &models.EmployeeRequest{
		EmployeeID:  employeeID,
		RequestType: payload.RequestType,
		Message:     payload.Message,
		Status:      models.RequestStatusPending,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request")
	}
	s.logger.Info("request submitted",
		zap.String("request_id", request.ID),
		zap.String("employee_id", employeeID),
		zap.String("request_type", request.RequestType))
	return request, nil
}

// Resolve applies the admin decision. Decisions other than Approved or
// Declined are rejected; a request can be resolved exactly once.
func (s *RequestService) Resolve(ctx context.Context, id string, decision string) (*models.EmployeeRequest, error) {
	status := models.RequestStatus(decision)
	if !status.Terminal() {
		return nil, appErrors.ErrInvalidDecision
	}
	stored, err := s.repo.Resolve(ctx, id, status)
	if err == nil {
		s.logger.Info("request resolved",
			zap.String("request_id", id),
			zap.String("status", string(status)))
		return stored, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve request")
	}

	// Nothing matched the Pending predicate: unknown id or already decided.
	if _, lookupErr := s.repo.FindByID(ctx, id); lookupErr != nil {
		if errors.Is(lookupErr, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(lookupErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return nil, appErrors.ErrAlreadyResolved
}

// ListByEmployee returns the employee's own requests newest first.
func (s *RequestService) ListByEmployee(ctx context.Context, employeeID string) ([]models.EmployeeRequest, error) {
	rows, err := s.repo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return rows, nil
}

// ListAll returns every request with employee identity for the admin view.
func (s *RequestService) ListAll(ctx context.Context) ([]models.EmployeeRequestDetail, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return rows, nil
}
