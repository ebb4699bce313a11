package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendance-api/internal/models"
)

func employeeMockRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "code", "full_name", "gender", "address", "mobile_number", "date_of_birth", "email", "photo", "password_hash", "recovery_phrase", "created_at", "updated_at"}).
		AddRow("emp-1", "1001", "Jordan Smith", nil, nil, nil, nil, nil, nil, "hash", "a1b2c3d4", now, now)
}

func TestFindEmployeeByCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, full_name, gender, address, mobile_number, date_of_birth, email, photo, password_hash, recovery_phrase, created_at, updated_at FROM employees WHERE code = $1 LIMIT 1")).
		WithArgs("1001").
		WillReturnRows(employeeMockRows(time.Now()))

	emp, err := repo.FindByCode(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, "1001", emp.Code)
	assert.Equal(t, "Jordan Smith", emp.FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindEmployeeByCodeMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery("SELECT .+ FROM employees WHERE code").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByCode(context.Background(), "9999")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCreateEmployee(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectExec("INSERT INTO employees").WillReturnResult(sqlmock.NewResult(1, 1))

	emp := &models.Employee{Code: "1001", FullName: "Jordan Smith", PasswordHash: "hash", RecoveryPhrase: "a1b2c3d4"}
	require.NoError(t, repo.Create(context.Background(), emp))
	assert.NotEmpty(t, emp.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEmployeeCascades(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM attendance_records").WithArgs("emp-1").WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("DELETE FROM employee_requests").WithArgs("emp-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM notifications").WithArgs("emp-1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM password_reset_tokens").WithArgs("emp-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM refresh_tokens").WithArgs("emp-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM employees").WithArgs("emp-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "emp-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEmployeeMissingRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM attendance_records").WithArgs("emp-404").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM employee_requests").WithArgs("emp-404").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM notifications").WithArgs("emp-404").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM password_reset_tokens").WithArgs("emp-404").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM refresh_tokens").WithArgs("emp-404").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM employees").WithArgs("emp-404").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "emp-404")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
