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

// RequestRepository handles persistence for employee requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestColumns = `id, employee_id, request_type, message, status, created_at, updated_at`

// Create inserts a new request in Pending state.
func (r *RequestRepository) Create(ctx context.Context, request *models.EmployeeRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now
	if request.Status == "" {
		request.Status = models.RequestStatusPending
	}
	const query = `INSERT INTO employee_requests (id, employee_id, request_type, message, status, created_at, updated_at)
VALUES (:id, :employee_id, :request_type, :message, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

// FindByID returns a request by identifier.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*models.EmployeeRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM employee_requests WHERE id = $1 LIMIT 1`
	var request models.EmployeeRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find request by id: %w", err)
	}
	return &request, nil
}

// ListByEmployee returns an employee's own requests newest first.
func (r *RequestRepository) ListByEmployee(ctx context.Context, employeeID string) ([]models.EmployeeRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM employee_requests WHERE employee_id = $1 ORDER BY created_at DESC`
	var rows []models.EmployeeRequest
	if err := r.db.SelectContext(ctx, &rows, query, employeeID); err != nil {
		return nil, fmt.Errorf("list requests by employee: %w", err)
	}
	return rows, nil
}

// ListAll returns every request joined with employee identity, newest first.
// The inner join drops rows whose employee has been removed mid-flight.
func (r *RequestRepository) ListAll(ctx context.Context) ([]models.EmployeeRequestDetail, error) {
	const query = `SELECT er.id, er.employee_id, er.request_type, er.message, er.status, er.created_at, er.updated_at,
e.code AS employee_code, e.full_name AS employee_name
FROM employee_requests er
JOIN employees e ON e.id = er.employee_id
ORDER BY er.created_at DESC`
	var rows []models.EmployeeRequestDetail
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return rows, nil
}

// Resolve transitions a Pending request to the given terminal status. The
// status predicate makes the transition atomic; sql.ErrNoRows means the row
// is missing or already resolved and the caller decides which.
func (r *RequestRepository) Resolve(ctx context.Context, id string, status models.RequestStatus) (*models.EmployeeRequest, error) {
	query := `UPDATE employee_requests SET status = $2, updated_at = $3
WHERE id = $1 AND status = $4
RETURNING ` + requestColumns
	var stored models.EmployeeRequest
	if err := r.db.GetContext(ctx, &stored, query, id, status, time.Now().UTC(), models.RequestStatusPending); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("resolve request: %w", err)
	}
	return &stored, nil
}
