package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/attendly/attendance-api/internal/models"
)

// DashboardRepository aggregates counts for the admin dashboard.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// DashboardCounts carry the headline numbers the admin landing page shows.
type DashboardCounts struct {
	Employees       int `db:"employees" json:"employees"`
	PresentToday    int `db:"present_today" json:"present_today"`
	CheckedOutToday int `db:"checked_out_today" json:"checked_out_today"`
	PendingRequests int `db:"pending_requests" json:"pending_requests"`
}

// Counts gathers the dashboard aggregates for the given calendar day.
func (r *DashboardRepository) Counts(ctx context.Context, day time.Time) (*DashboardCounts, error) {
	query := `SELECT
(SELECT COUNT(*) FROM employees) AS employees,
(SELECT COUNT(*) FROM attendance_records WHERE date = $1 AND status = $2) AS present_today,
(SELECT COUNT(*) FROM attendance_records WHERE date = $1 AND check_out IS NOT NULL) AS checked_out_today,
(SELECT COUNT(*) FROM employee_requests WHERE status = $3) AS pending_requests`
	var counts DashboardCounts
	if err := r.db.GetContext(ctx, &counts, query, day, models.AttendanceStatusPresent, models.RequestStatusPending); err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	return &counts, nil
}
