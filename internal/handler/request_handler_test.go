package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendance-api/internal/middleware"
	"github.com/attendly/attendance-api/internal/models"
	"github.com/attendly/attendance-api/internal/service"
)

type responseEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

type fakeRequestRepo struct {
	created *models.EmployeeRequest
	byID    *models.EmployeeRequest
}

func (f *fakeRequestRepo) Create(ctx context.Context, request *models.EmployeeRequest) error {
	request.ID = "req-1"
	f.created = request
	return nil
}

func (f *fakeRequestRepo) FindByID(ctx context.Context, id string) (*models.EmployeeRequest, error) {
	if f.byID == nil {
		return nil, sql.ErrNoRows
	}
	return f.byID, nil
}

func (f *fakeRequestRepo) ListByEmployee(ctx context.Context, employeeID string) ([]models.EmployeeRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) ListAll(ctx context.Context) ([]models.EmployeeRequestDetail, error) {
	return nil, nil
}

func (f *fakeRequestRepo) Resolve(ctx context.Context, id string, status models.RequestStatus) (*models.EmployeeRequest, error) {
	return nil, sql.ErrNoRows
}

func employeeContext(rec *httptest.ResponseRecorder, method, target string, body []byte) *gin.Context {
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{SubjectID: "emp-1", Role: models.RoleEmployee, EmployeeCode: "1001"})
	return c
}

func TestRequestHandlerSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeRequestRepo{}
	handler := NewRequestHandler(service.NewRequestService(repo, nil, nil), nil)

	body, _ := json.Marshal(map[string]string{"request_type": "Leave", "message": "Family matter"})
	rec := httptest.NewRecorder()
	c := employeeContext(rec, http.MethodPost, "/requests", body)

	handler.Submit(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, repo.created)
	assert.Equal(t, "emp-1", repo.created.EmployeeID)
	assert.Equal(t, models.RequestStatusPending, repo.created.Status)
}

func TestRequestHandlerSubmitRequiresBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRequestHandler(service.NewRequestService(&fakeRequestRepo{}, nil, nil), nil)

	rec := httptest.NewRecorder()
	c := employeeContext(rec, http.MethodPost, "/requests", []byte(`{}`))

	handler.Submit(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestHandlerResolveAlreadyDecided(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeRequestRepo{byID: &models.EmployeeRequest{ID: "req-1", Status: models.RequestStatusApproved}}
	handler := NewRequestHandler(service.NewRequestService(repo, nil, nil), nil)

	body, _ := json.Marshal(map[string]string{"decision": "Declined"})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/requests/req-1/resolve", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}

	handler.Resolve(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "ALREADY_RESOLVED", envelope.Error["code"])
}
