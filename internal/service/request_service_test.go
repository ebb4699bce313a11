package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendance-api/internal/models"
	appErrors "github.com/attendly/attendance-api/pkg/errors"
)

type requestRepoStub struct {
	created   *models.EmployeeRequest
	createErr error

	byID    *models.EmployeeRequest
	findErr error

	resolved   *models.EmployeeRequest
	resolveErr error

	listMine []models.EmployeeRequest
	listAll  []models.EmployeeRequestDetail
}

func (s *requestRepoStub) Create(ctx context.Context, request *models.EmployeeRequest) error {
	if s.createErr != nil {
		return s.createErr
	}
	request.ID = "req-1"
	s.created = request
	return nil
}

func (s *requestRepoStub) FindByID(ctx context.Context, id string) (*models.EmployeeRequest, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.byID == nil {
		return nil, sql.ErrNoRows
	}
	return s.byID, nil
}

func (s *requestRepoStub) ListByEmployee(ctx context.Context, employeeID string) ([]models.EmployeeRequest, error) {
	return s.listMine, nil
}

func (s *requestRepoStub) ListAll(ctx context.Context) ([]models.EmployeeRequestDetail, error) {
	return s.listAll, nil
}

func (s *requestRepoStub) Resolve(ctx context.Context, id string, status models.RequestStatus) (*models.EmployeeRequest, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return s.resolved, nil
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	repo := &requestRepoStub{}
	svc := NewRequestService(repo, nil, nil)

	req, err := svc.Submit(context.Background(), "emp-1", SubmitRequestPayload{
		RequestType: "Leave",
		Message:     "  Family matter  ",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, req.Status)
	assert.Equal(t, "Family matter", req.Message)
	assert.Equal(t, "emp-1", req.EmployeeID)
}

func TestSubmitRejectsEmptyMessage(t *testing.T) {
	repo := &requestRepoStub{}
	svc := NewRequestService(repo, nil, nil)

	_, err := svc.Submit(context.Background(), "emp-1", SubmitRequestPayload{
		RequestType: "Leave",
		Message:     "   ",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Nil(t, repo.created)
}

func TestResolveApprovesPendingRequest(t *testing.T) {
	repo := &requestRepoStub{resolved: &models.EmployeeRequest{ID: "req-1", Status: models.RequestStatusApproved}}
	svc := NewRequestService(repo, nil, nil)

	req, err := svc.Resolve(context.Background(), "req-1", "Approved")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, req.Status)
}

func TestResolveRejectsUnknownDecision(t *testing.T) {
	svc := NewRequestService(&requestRepoStub{}, nil, nil)

	for _, decision := range []string{"Maybe", "pending", "approved", ""} {
		_, err := svc.Resolve(context.Background(), "req-1", decision)
		require.Error(t, err, decision)
		var appErr *appErrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrInvalidDecision.Code, appErr.Code)
	}
}

func TestResolveMissingRequest(t *testing.T) {
	repo := &requestRepoStub{resolveErr: sql.ErrNoRows}
	svc := NewRequestService(repo, nil, nil)

	_, err := svc.Resolve(context.Background(), "req-missing", "Declined")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestResolveAlreadyDecidedRequest(t *testing.T) {
	repo := &requestRepoStub{
		resolveErr: sql.ErrNoRows,
		byID:       &models.EmployeeRequest{ID: "req-1", Status: models.RequestStatusApproved},
	}
	svc := NewRequestService(repo, nil, nil)

	_, err := svc.Resolve(context.Background(), "req-1", "Declined")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrAlreadyResolved.Code, appErr.Code)
}
