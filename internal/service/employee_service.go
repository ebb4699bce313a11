package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/attendly/attendance-api/internal/models"
	appErrors "github.com/attendly/attendance-api/pkg/errors"
)

type employeeRepository interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	FindByCode(ctx context.Context, code string) (*models.Employee, error)
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error)
	Create(ctx context.Context, emp *models.Employee) error
	Update(ctx context.Context, emp *models.Employee) error
	UpdatePhoto(ctx context.Context, id, filename string) error
	Delete(ctx context.Context, id string) error
}

type photoStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
}

// EmployeeService manages employee records and profile self-service.
type EmployeeService struct {
	repo      employeeRepository
	photos    photoStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEmployeeService constructs the service.
func NewEmployeeService(repo employeeRepository, photos photoStore, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, photos: photos, validator: validate, logger: logger}
}

// CreateEmployeeRequest describes the admin create payload. The badge code
// and mobile number must be numeric, mirroring the paper badge format.
type CreateEmployeeRequest struct {
	Code         string  `json:"code" validate:"required,numeric"`
	FullName     string  `json:"full_name" validate:"required"`
	Gender       *string `json:"gender"`
	Address      *string `json:"address"`
	MobileNumber *string `json:"mobile_number" validate:"omitempty,numeric"`
	DateOfBirth  *string `json:"date_of_birth"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Password     string  `json:"password" validate:"required,min=6"`
}

// UpdateEmployeeRequest describes profile mutation. Code changes are only
// honoured for admin callers; Password and RecoveryPhrase rotate when set.
type UpdateEmployeeRequest struct {
	Code           *string `json:"code" validate:"omitempty,numeric"`
	FullName       string  `json:"full_name" validate:"required"`
	Gender         *string `json:"gender"`
	Address        *string `json:"address"`
	MobileNumber   *string `json:"mobile_number" validate:"omitempty,numeric"`
	DateOfBirth    *string `json:"date_of_birth"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Password       *string `json:"password" validate:"omitempty,min=6"`
	RotateRecovery bool    `json:"rotate_recovery_phrase"`
}

// CreatedEmployee is the create response; the recovery phrase is disclosed
// exactly once, here.
type CreatedEmployee struct {
	models.Employee
	RecoveryPhrase string `json:"recovery_phrase"`
}

// List returns employees with pagination.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}

// Get returns a single employee by id.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	emp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return emp, nil
}

// Create registers a new employee with a freshly generated recovery phrase.
func (s *EmployeeService) Create(ctx context.Context, req CreateEmployeeRequest) (*CreatedEmployee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}
	dob, err := parseBirthDate(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByCode(ctx, req.Code); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "employee code already in use")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check employee code")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	phrase, err := generateRecoveryPhrase()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate recovery phrase")
	}

	emp := &models.Employee{
		Code:           req.Code,
		FullName:       req.FullName,
		Gender:         req.Gender,
		Address:        req.Address,
		MobileNumber:   req.MobileNumber,
		DateOfBirth:    dob,
		Email:          req.Email,
		PasswordHash:   string(hash),
		RecoveryPhrase: phrase,
	}
	if err := s.repo.Create(ctx, emp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}
	s.logger.Info("employee created", zap.String("employee_id", emp.ID), zap.String("code", emp.Code))
	return &CreatedEmployee{Employee: *emp, RecoveryPhrase: phrase}, nil
}

// Update mutates profile fields. allowCode gates badge code changes so the
// self-service endpoint cannot rewrite its own identity.
func (s *EmployeeService) Update(ctx context.Context, id string, req UpdateEmployeeRequest, allowCode bool) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}
	dob, err := parseBirthDate(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	emp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}

	if allowCode && req.Code != nil && *req.Code != emp.Code {
		if _, err := s.repo.FindByCode(ctx, *req.Code); err == nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "employee code already in use")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check employee code")
		}
		emp.Code = *req.Code
	}

	emp.FullName = req.FullName
	emp.Gender = req.Gender
	emp.Address = req.Address
	emp.MobileNumber = req.MobileNumber
	emp.DateOfBirth = dob
	emp.Email = req.Email

	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		emp.PasswordHash = string(hash)
	}
	if req.RotateRecovery {
		phrase, err := generateRecoveryPhrase()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate recovery phrase")
		}
		emp.RecoveryPhrase = phrase
	}

	if err := s.repo.Update(ctx, emp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}
	return emp, nil
}

// Delete removes an employee and, transactionally, everything it owns.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete employee")
	}
	s.logger.Info("employee deleted", zap.String("employee_id", id))
	return nil
}

// AttachPhoto stores an uploaded photo and records its sanitised filename.
func (s *EmployeeService) AttachPhoto(ctx context.Context, id, filename string, r io.Reader) (*models.Employee, error) {
	emp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	stored, err := s.photos.SaveStream(filename, r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "could not store photo")
	}
	if err := s.repo.UpdatePhoto(ctx, id, stored); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record photo")
	}
	emp.Photo = &stored
	return emp, nil
}

func parseBirthDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date of birth, expected YYYY-MM-DD")
	}
	return &parsed, nil
}

const phraseAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateRecoveryPhrase() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = phraseAlphabet[int(b)%len(phraseAlphabet)]
	}
	return string(buf), nil
}
