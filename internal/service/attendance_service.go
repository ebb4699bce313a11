package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/attendly/attendance-api/internal/models"
	appErrors "github.com/attendly/attendance-api/pkg/errors"
)

type attendanceRepository interface {
	CreateCheckIn(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
	SetCheckOut(ctx context.Context, employeeID string, day time.Time, checkOut string) (*models.AttendanceRecord, error)
	FindByEmployeeAndDate(ctx context.Context, employeeID string, day time.Time) (*models.AttendanceRecord, error)
	History(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
}

// AttendanceService owns the daily check-in/check-out state machine.
type AttendanceService struct {
	repo   attendanceRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewAttendanceService constructs the service.
func NewAttendanceService(repo attendanceRepository, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, logger: logger, now: time.Now}
}

const clockFormat = "15:04:05"

// today reduces the wall clock to the server's local calendar day plus the
// HH:MM:SS stamp the ledger stores.
func (s *AttendanceService) today() (time.Time, string) {
	now := s.now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return day, now.Format(clockFormat)
}

// CheckIn records the first check-in of the day for an employee. A second
// attempt on the same day loses the unique-constraint race and is rejected
// with ALREADY_CHECKED_IN; no duplicate row is ever created.
func (s *AttendanceService) CheckIn(ctx context.Context, employeeID string) (*models.AttendanceRecord, error) {
	day, clock := s.today()
	record := &models.AttendanceRecord{
		EmployeeID: employeeID,
		Date:       day,
		Status:     models.AttendanceStatusPresent,
		CheckIn:    &clock,
	}
	stored, err := s.repo.CreateCheckIn(ctx, record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrAlreadyCheckedIn
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record check-in")
	}
	s.logger.Info("employee checked in",
		zap.String("employee_id", employeeID),
		zap.String("check_in", clock))
	return stored, nil
}

// CheckOut stamps the check-out time onto today's record. It fails with
// NOT_CHECKED_IN when no record exists for the day and ALREADY_CHECKED_OUT
// when the record already carries a check-out time.
func (s *AttendanceService) CheckOut(ctx context.Context, employeeID string) (*models.AttendanceRecord, error) {
	day, clock := s.today()
	stored, err := s.repo.SetCheckOut(ctx, employeeID, day, clock)
	if err == nil {
		s.logger.Info("employee checked out",
			zap.String("employee_id", employeeID),
			zap.String("check_out", clock))
		return stored, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record check-out")
	}

	// The conditional update matched nothing: either no check-in happened
	// today or the check-out is already set.
	if _, lookupErr := s.repo.FindByEmployeeAndDate(ctx, employeeID, day); lookupErr != nil {
		if errors.Is(lookupErr, sql.ErrNoRows) {
			return nil, appErrors.ErrNotCheckedIn
		}
		return nil, appErrors.Wrap(lookupErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}
	return nil, appErrors.ErrAlreadyCheckedOut
}

// History lists an employee's attendance newest date first.
func (s *AttendanceService) History(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	rows, total, err := s.repo.History(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance history")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}
