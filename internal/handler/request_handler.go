package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attendly/attendance-api/internal/service"
	appErrors "github.com/attendly/attendance-api/pkg/errors"
	"github.com/attendly/attendance-api/pkg/response"
)

// RequestHandler exposes the employee request board endpoints.
type RequestHandler struct {
	requests  *service.RequestService
	dashboard *service.DashboardService
}

// NewRequestHandler constructs RequestHandler.
func NewRequestHandler(requests *service.RequestService, dashboard *service.DashboardService) *RequestHandler {
	return &RequestHandler{requests: requests, dashboard: dashboard}
}

type resolveRequest struct {
	Decision string `json:"decision" binding:"required"`
}

// Submit godoc
// @Summary File a new request for the caller
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body service.SubmitRequestPayload true "Request payload"
// @Security BearerAuth
// @Success 201 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Submit(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload service.SubmitRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.requests.Submit(c.Request.Context(), claims.SubjectID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.dashboard != nil {
		h.dashboard.Invalidate(c.Request.Context())
	}
	response.Created(c, request)
}

// Mine godoc
// @Summary List the caller's own requests
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /requests/mine [get]
func (h *RequestHandler) Mine(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	rows, err := h.requests.ListByEmployee(c.Request.Context(), claims.SubjectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// List godoc
// @Summary List every request with employee identity
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	rows, err := h.requests.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Resolve godoc
// @Summary Approve or decline a pending request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body resolveRequest true "Decision"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/resolve [post]
func (h *RequestHandler) Resolve(c *gin.Context) {
	var payload resolveRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.requests.Resolve(c.Request.Context(), c.Param("id"), payload.Decision)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.dashboard != nil {
		h.dashboard.Invalidate(c.Request.Context())
	}
	response.JSON(c, http.StatusOK, request, nil)
}
