package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/attendly/attendance-api/internal/models"
)

// EmployeeRepository provides database access for employee records.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository creates a new instance of EmployeeRepository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = `id, code, full_name, gender, address, mobile_number, date_of_birth, email, photo, password_hash, recovery_phrase, created_at, updated_at`

// FindByID returns an employee by surrogate id.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1 LIMIT 1`
	var emp models.Employee
	if err := r.db.GetContext(ctx, &emp, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find employee by id: %w", err)
	}
	return &emp, nil
}

// FindByCode returns an employee by badge code.
func (r *EmployeeRepository) FindByCode(ctx context.Context, code string) (*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE code = $1 LIMIT 1`
	var emp models.Employee
	if err := r.db.GetContext(ctx, &emp, query, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find employee by code: %w", err)
	}
	return &emp, nil
}

// List returns employees based on filters with total count.
func (r *EmployeeRepository) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	baseQuery := `FROM employees WHERE 1=1`
	var args []interface{}

	if filter.Search != "" {
		baseQuery += fmt.Sprintf(" AND (LOWER(full_name) LIKE $%d OR code LIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"code":       true,
		"full_name":  true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "code"
	}
	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", employeeColumns, baseQuery, sortBy, sortOrder, pageSize, offset)
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	return employees, total, nil
}

// Create inserts a new employee row.
func (r *EmployeeRepository) Create(ctx context.Context, emp *models.Employee) error {
	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if emp.CreatedAt.IsZero() {
		emp.CreatedAt = now
	}
	emp.UpdatedAt = now

	const query = `INSERT INTO employees (id, code, full_name, gender, address, mobile_number, date_of_birth, email, photo, password_hash, recovery_phrase, created_at, updated_at)
VALUES (:id, :code, :full_name, :gender, :address, :mobile_number, :date_of_birth, :email, :photo, :password_hash, :recovery_phrase, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, emp); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// Update updates mutable profile fields of an employee.
func (r *EmployeeRepository) Update(ctx context.Context, emp *models.Employee) error {
	emp.UpdatedAt = time.Now().UTC()
	const query = `UPDATE employees SET code = :code, full_name = :full_name, gender = :gender, address = :address,
mobile_number = :mobile_number, date_of_birth = :date_of_birth, email = :email,
password_hash = :password_hash, recovery_phrase = :recovery_phrase, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, emp); err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return nil
}

// UpdatePhoto stores the sanitised photo filename on the employee row.
func (r *EmployeeRepository) UpdatePhoto(ctx context.Context, id, filename string) error {
	const query = `UPDATE employees SET photo = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, filename, time.Now().UTC()); err != nil {
		return fmt.Errorf("update employee photo: %w", err)
	}
	return nil
}

// Delete removes an employee and all dependent rows in one transaction. The
// cascade is explicit rather than left to FK defaults: attendance, requests,
// targeted notifications and tokens disappear with the employee.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin employee delete: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	statements := []string{
		`DELETE FROM attendance_records WHERE employee_id = $1`,
		`DELETE FROM employee_requests WHERE employee_id = $1`,
		`DELETE FROM notifications WHERE employee_id = $1`,
		`DELETE FROM password_reset_tokens WHERE employee_id = $1`,
		`DELETE FROM refresh_tokens WHERE subject_type = 'EMPLOYEE' AND subject_id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("cascade employee delete: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete employee rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit employee delete: %w", err)
	}
	committed = true
	return nil
}
