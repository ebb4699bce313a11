package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendance-api/internal/models"
	appErrors "github.com/attendly/attendance-api/pkg/errors"
)

type attendanceRepoStub struct {
	records map[string]*models.AttendanceRecord // keyed by employeeID|date

	createErr error
	findErr   error
	history   []models.AttendanceRecord
	total     int
	histErr   error
}

func newAttendanceRepoStub() *attendanceRepoStub {
	return &attendanceRepoStub{records: map[string]*models.AttendanceRecord{}}
}

func recordKey(employeeID string, day time.Time) string {
	return employeeID + "|" + day.Format("2006-01-02")
}

func (s *attendanceRepoStub) CreateCheckIn(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	key := recordKey(record.EmployeeID, record.Date)
	if _, exists := s.records[key]; exists {
		return nil, sql.ErrNoRows
	}
	stored := *record
	stored.ID = "rec-" + key
	s.records[key] = &stored
	return &stored, nil
}

func (s *attendanceRepoStub) SetCheckOut(ctx context.Context, employeeID string, day time.Time, checkOut string) (*models.AttendanceRecord, error) {
	rec, ok := s.records[recordKey(employeeID, day)]
	if !ok || rec.CheckOut != nil {
		return nil, sql.ErrNoRows
	}
	rec.CheckOut = &checkOut
	return rec, nil
}

func (s *attendanceRepoStub) FindByEmployeeAndDate(ctx context.Context, employeeID string, day time.Time) (*models.AttendanceRecord, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	rec, ok := s.records[recordKey(employeeID, day)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rec, nil
}

func (s *attendanceRepoStub) History(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	if s.histErr != nil {
		return nil, 0, s.histErr
	}
	return s.history, s.total, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCheckInStampsDayAndClock(t *testing.T) {
	repo := newAttendanceRepoStub()
	svc := NewAttendanceService(repo, nil)
	svc.now = fixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	rec, err := svc.CheckIn(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusPresent, rec.Status)
	require.NotNil(t, rec.CheckIn)
	assert.Equal(t, "09:00:00", *rec.CheckIn)
	assert.Nil(t, rec.CheckOut)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), rec.Date)
}

func TestCheckInTwiceSameDayRejected(t *testing.T) {
	repo := newAttendanceRepoStub()
	svc := NewAttendanceService(repo, nil)
	svc.now = fixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	_, err := svc.CheckIn(context.Background(), "1001")
	require.NoError(t, err)

	svc.now = fixedClock(time.Date(2025, 3, 10, 11, 30, 0, 0, time.UTC))
	_, err = svc.CheckIn(context.Background(), "1001")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrAlreadyCheckedIn.Code, appErr.Code)
	assert.Len(t, repo.records, 1)
}

func TestCheckInNextDayAllowed(t *testing.T) {
	repo := newAttendanceRepoStub()
	svc := NewAttendanceService(repo, nil)
	svc.now = fixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	_, err := svc.CheckIn(context.Background(), "1001")
	require.NoError(t, err)

	svc.now = fixedClock(time.Date(2025, 3, 11, 8, 45, 0, 0, time.UTC))
	rec, err := svc.CheckIn(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, "08:45:00", *rec.CheckIn)
}

func TestCheckOutCompletesTheDay(t *testing.T) {
	repo := newAttendanceRepoStub()
	svc := NewAttendanceService(repo, nil)
	svc.now = fixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	_, err := svc.CheckIn(context.Background(), "1001")
	require.NoError(t, err)

	svc.now = fixedClock(time.Date(2025, 3, 10, 17, 30, 0, 0, time.UTC))
	rec, err := svc.CheckOut(context.Background(), "1001")
	require.NoError(t, err)
	require.NotNil(t, rec.CheckIn)
	require.NotNil(t, rec.CheckOut)
	assert.Equal(t, "09:00:00", *rec.CheckIn)
	assert.Equal(t, "17:30:00", *rec.CheckOut)
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	repo := newAttendanceRepoStub()
	svc := NewAttendanceService(repo, nil)
	svc.now = fixedClock(time.Date(2025, 3, 10, 17, 30, 0, 0, time.UTC))

	_, err := svc.CheckOut(context.Background(), "1001")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotCheckedIn.Code, appErr.Code)
}

func TestCheckOutTwiceRejected(t *testing.T) {
	repo := newAttendanceRepoStub()
	svc := NewAttendanceService(repo, nil)
	svc.now = fixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	_, err := svc.CheckIn(context.Background(), "1001")
	require.NoError(t, err)
	svc.now = fixedClock(time.Date(2025, 3, 10, 17, 30, 0, 0, time.UTC))
	_, err = svc.CheckOut(context.Background(), "1001")
	require.NoError(t, err)

	svc.now = fixedClock(time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC))
	_, err = svc.CheckOut(context.Background(), "1001")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrAlreadyCheckedOut.Code, appErr.Code)
}

func TestHistoryDefaultsPagination(t *testing.T) {
	repo := newAttendanceRepoStub()
	repo.history = []models.AttendanceRecord{{ID: "r1"}, {ID: "r2"}}
	repo.total = 2
	svc := NewAttendanceService(repo, nil)

	rows, pagination, err := svc.History(context.Background(), models.AttendanceFilter{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	require.NotNil(t, pagination)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 50, pagination.PageSize)
	assert.Equal(t, 2, pagination.TotalCount)
}
