package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendance-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func attendanceRows(record models.AttendanceRecord) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "employee_id", "date", "status", "check_in", "check_out", "created_at", "updated_at"}).
		AddRow(record.ID, record.EmployeeID, record.Date, string(record.Status), record.CheckIn, record.CheckOut, record.CreatedAt, record.UpdatedAt)
}

func TestCreateCheckIn(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	checkIn := "09:00:00"
	now := time.Now()
	mock.ExpectQuery("INSERT INTO attendance_records").
		WillReturnRows(attendanceRows(models.AttendanceRecord{
			ID:         "rec-1",
			EmployeeID: "emp-1",
			Date:       day,
			Status:     models.AttendanceStatusPresent,
			CheckIn:    &checkIn,
			CreatedAt:  now,
			UpdatedAt:  now,
		}))

	stored, err := repo.CreateCheckIn(context.Background(), &models.AttendanceRecord{
		EmployeeID: "emp-1",
		Date:       day,
		Status:     models.AttendanceStatusPresent,
		CheckIn:    &checkIn,
	})
	require.NoError(t, err)
	assert.Equal(t, "emp-1", stored.EmployeeID)
	assert.Equal(t, models.AttendanceStatusPresent, stored.Status)
	require.NotNil(t, stored.CheckIn)
	assert.Equal(t, "09:00:00", *stored.CheckIn)
	assert.Nil(t, stored.CheckOut)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCheckInConflictReturnsNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	// ON CONFLICT DO NOTHING yields an empty RETURNING set for the loser.
	empty := sqlmock.NewRows([]string{"id", "employee_id", "date", "status", "check_in", "check_out", "created_at", "updated_at"})
	mock.ExpectQuery("INSERT INTO attendance_records").WillReturnRows(empty)

	checkIn := "09:00:01"
	_, err := repo.CreateCheckIn(context.Background(), &models.AttendanceRecord{
		EmployeeID: "emp-1",
		Date:       time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Status:     models.AttendanceStatusPresent,
		CheckIn:    &checkIn,
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetCheckOut(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	checkIn := "09:00:00"
	checkOut := "17:30:00"
	now := time.Now()
	mock.ExpectQuery("UPDATE attendance_records SET check_out").
		WillReturnRows(attendanceRows(models.AttendanceRecord{
			ID:         "rec-1",
			EmployeeID: "emp-1",
			Date:       day,
			Status:     models.AttendanceStatusPresent,
			CheckIn:    &checkIn,
			CheckOut:   &checkOut,
			CreatedAt:  now,
			UpdatedAt:  now,
		}))

	stored, err := repo.SetCheckOut(context.Background(), "emp-1", day, "17:30:00")
	require.NoError(t, err)
	require.NotNil(t, stored.CheckOut)
	assert.Equal(t, "17:30:00", *stored.CheckOut)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetCheckOutNoPendingRowReturnsNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("UPDATE attendance_records SET check_out").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.SetCheckOut(context.Background(), "emp-1", time.Now(), "17:30:00")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryOrdersNewestFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "employee_id", "date", "status", "check_in", "check_out", "created_at", "updated_at"}).
		AddRow("rec-2", "emp-1", time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), "Present", nil, nil, now, now).
		AddRow("rec-1", "emp-1", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), "Present", nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, employee_id, date, status, check_in, check_out, created_at, updated_at FROM attendance_records WHERE employee_id = $1 ORDER BY date DESC LIMIT 50 OFFSET 0")).
		WithArgs("emp-1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM attendance_records WHERE employee_id = $1")).
		WithArgs("emp-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	records, total, err := repo.History(context.Background(), models.AttendanceFilter{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 2, total)
	assert.True(t, records[0].Date.After(records[1].Date))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTally(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("emp-1", string(models.AttendanceStatusPresent)).
		WillReturnRows(sqlmock.NewRows([]string{"present", "total"}).AddRow(2, 4))

	tally, err := repo.Tally(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 2, tally.Present)
	assert.Equal(t, 4, tally.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
