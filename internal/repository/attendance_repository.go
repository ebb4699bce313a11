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

// AttendanceRepository handles persistence for daily attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `id, employee_id, date, status, check_in, check_out, created_at, updated_at`

// CreateCheckIn inserts the day's record for an employee. The unique
// constraint on (employee_id, date) serialises concurrent attempts; the loser
// sees sql.ErrNoRows because DO NOTHING suppresses the RETURNING row.
func (r *AttendanceRepository) CreateCheckIn(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	query := `INSERT INTO attendance_records (id, employee_id, date, status, check_in, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (employee_id, date) DO NOTHING
RETURNING ` + attendanceColumns
	var stored models.AttendanceRecord
	if err := r.db.GetContext(ctx, &stored, query, record.ID, record.EmployeeID, record.Date, record.Status, record.CheckIn, record.CreatedAt, record.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("create check-in: %w", err)
	}
	return &stored, nil
}

// SetCheckOut stamps the check-out time on today's record. The predicate on
// check_out IS NULL makes the read-then-write a single atomic statement; a
// missing row means either no check-in or an earlier check-out, which the
// caller disambiguates via FindByEmployeeAndDate.
func (r *AttendanceRepository) SetCheckOut(ctx context.Context, employeeID string, day time.Time, checkOut string) (*models.AttendanceRecord, error) {
	query := `UPDATE attendance_records SET check_out = $3, updated_at = $4
WHERE employee_id = $1 AND date = $2 AND check_out IS NULL
RETURNING ` + attendanceColumns
	var stored models.AttendanceRecord
	if err := r.db.GetContext(ctx, &stored, query, employeeID, day, checkOut, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("set check-out: %w", err)
	}
	return &stored, nil
}

// FindByEmployeeAndDate returns the record for the given day, if any.
func (r *AttendanceRepository) FindByEmployeeAndDate(ctx context.Context, employeeID string, day time.Time) (*models.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE employee_id = $1 AND date = $2 LIMIT 1`
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, employeeID, day); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find attendance by day: %w", err)
	}
	return &record, nil
}

// History returns an employee's records newest date first, with total count.
func (r *AttendanceRepository) History(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	where := []string{"employee_id = $1"}
	args := []interface{}{filter.EmployeeID}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM attendance_records WHERE %s ORDER BY date DESC LIMIT %d OFFSET %d`,
		attendanceColumns, whereClause, size, offset)
	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance history: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM attendance_records WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance history: %w", err)
	}
	return rows, total, nil
}

// Tally aggregates present and total counts for an employee's whole ledger.
func (r *AttendanceRepository) Tally(ctx context.Context, employeeID string) (*models.AttendanceTally, error) {
	query := `SELECT COUNT(*) FILTER (WHERE status = $2) AS present, COUNT(*) AS total
FROM attendance_records WHERE employee_id = $1`
	var tally models.AttendanceTally
	if err := r.db.GetContext(ctx, &tally, query, employeeID, models.AttendanceStatusPresent); err != nil {
		return nil, fmt.Errorf("attendance tally: %w", err)
	}
	return &tally, nil
}
