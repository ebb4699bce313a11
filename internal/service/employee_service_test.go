package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/attendly/attendance-api/internal/models"
	appErrors "github.com/attendly/attendance-api/pkg/errors"
)

type employeeRepoStub struct {
	byID   map[string]*models.Employee
	byCode map[string]*models.Employee

	created *models.Employee
	updated *models.Employee
	photoID string
	photo   string
	deleted []string
}

func newEmployeeRepoStub() *employeeRepoStub {
	return &employeeRepoStub{byID: map[string]*models.Employee{}, byCode: map[string]*models.Employee{}}
}

func (s *employeeRepoStub) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	if emp, ok := s.byID[id]; ok {
		return emp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *employeeRepoStub) FindByCode(ctx context.Context, code string) (*models.Employee, error) {
	if emp, ok := s.byCode[code]; ok {
		return emp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *employeeRepoStub) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	rows := make([]models.Employee, 0, len(s.byID))
	for _, emp := range s.byID {
		rows = append(rows, *emp)
	}
	return rows, len(rows), nil
}

func (s *employeeRepoStub) Create(ctx context.Context, emp *models.Employee) error {
	emp.ID = "emp-new"
	s.created = emp
	s.byID[emp.ID] = emp
	s.byCode[emp.Code] = emp
	return nil
}

func (s *employeeRepoStub) Update(ctx context.Context, emp *models.Employee) error {
	s.updated = emp
	return nil
}

func (s *employeeRepoStub) UpdatePhoto(ctx context.Context, id, filename string) error {
	s.photoID = id
	s.photo = filename
	return nil
}

func (s *employeeRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.byID[id]; !ok {
		return sql.ErrNoRows
	}
	s.deleted = append(s.deleted, id)
	delete(s.byID, id)
	return nil
}

type photoStoreStub struct {
	saved map[string][]byte
	err   error
}

func (s *photoStoreStub) SaveStream(filename string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	data, _ := io.ReadAll(r)
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	s.saved[filename] = data
	return filename, nil
}

func strPtr(v string) *string { return &v }

func TestCreateEmployeeGeneratesRecoveryPhrase(t *testing.T) {
	repo := newEmployeeRepoStub()
	svc := NewEmployeeService(repo, &photoStoreStub{}, nil, nil)

	created, err := svc.Create(context.Background(), CreateEmployeeRequest{
		Code:     "1001",
		FullName: "Jordan Smith",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Len(t, created.RecoveryPhrase, 8)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret123")))
	assert.NotEqual(t, "secret123", created.PasswordHash)
}

func TestCreateEmployeeRejectsNonNumericCode(t *testing.T) {
	svc := NewEmployeeService(newEmployeeRepoStub(), &photoStoreStub{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateEmployeeRequest{
		Code:     "EMP-1001",
		FullName: "Jordan Smith",
		Password: "secret123",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCreateEmployeeDuplicateCode(t *testing.T) {
	repo := newEmployeeRepoStub()
	repo.byCode["1001"] = &models.Employee{ID: "emp-1", Code: "1001"}
	svc := NewEmployeeService(repo, &photoStoreStub{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateEmployeeRequest{
		Code:     "1001",
		FullName: "Jordan Smith",
		Password: "secret123",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Nil(t, repo.created)
}

func TestCreateEmployeeRejectsBadBirthDate(t *testing.T) {
	svc := NewEmployeeService(newEmployeeRepoStub(), &photoStoreStub{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateEmployeeRequest{
		Code:        "1001",
		FullName:    "Jordan Smith",
		Password:    "secret123",
		DateOfBirth: strPtr("31-12-1990"),
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestUpdateEmployeeSelfCannotChangeCode(t *testing.T) {
	repo := newEmployeeRepoStub()
	repo.byID["emp-1"] = &models.Employee{ID: "emp-1", Code: "1001", FullName: "Jordan Smith"}
	svc := NewEmployeeService(repo, &photoStoreStub{}, nil, nil)

	updated, err := svc.Update(context.Background(), "emp-1", UpdateEmployeeRequest{
		Code:     strPtr("2002"),
		FullName: "Jordan A. Smith",
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "1001", updated.Code)
	assert.Equal(t, "Jordan A. Smith", updated.FullName)
}

func TestUpdateEmployeeAdminChangesCode(t *testing.T) {
	repo := newEmployeeRepoStub()
	repo.byID["emp-1"] = &models.Employee{ID: "emp-1", Code: "1001", FullName: "Jordan Smith"}
	svc := NewEmployeeService(repo, &photoStoreStub{}, nil, nil)

	updated, err := svc.Update(context.Background(), "emp-1", UpdateEmployeeRequest{
		Code:     strPtr("2002"),
		FullName: "Jordan Smith",
	}, true)
	require.NoError(t, err)
	assert.Equal(t, "2002", updated.Code)
}

func TestDeleteEmployeeMissing(t *testing.T) {
	svc := NewEmployeeService(newEmployeeRepoStub(), &photoStoreStub{}, nil, nil)

	err := svc.Delete(context.Background(), "emp-missing")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestAttachPhotoStoresAndRecords(t *testing.T) {
	repo := newEmployeeRepoStub()
	repo.byID["emp-1"] = &models.Employee{ID: "emp-1", Code: "1001"}
	store := &photoStoreStub{}
	svc := NewEmployeeService(repo, store, nil, nil)

	emp, err := svc.AttachPhoto(context.Background(), "emp-1", "portrait.jpg", bytes.NewReader([]byte("jpeg-bytes")))
	require.NoError(t, err)
	require.NotNil(t, emp.Photo)
	assert.Equal(t, "portrait.jpg", *emp.Photo)
	assert.Equal(t, "emp-1", repo.photoID)
	assert.Equal(t, []byte("jpeg-bytes"), store.saved["portrait.jpg"])
}
