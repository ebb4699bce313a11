package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/attendly/attendance-api/internal/models"
	"github.com/attendly/attendance-api/internal/service"
	appErrors "github.com/attendly/attendance-api/pkg/errors"
	"github.com/attendly/attendance-api/pkg/response"
)

// AttendanceHandler exposes check-in/check-out, history, rating and export
// endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	rating     *service.RatingService
	exports    *service.ExportService
	dashboard  *service.DashboardService
	metrics    *service.MetricsService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService, rating *service.RatingService, exports *service.ExportService, dashboard *service.DashboardService, metrics *service.MetricsService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, rating: rating, exports: exports, dashboard: dashboard, metrics: metrics}
}

// CheckIn godoc
// @Summary Record today's check-in for the caller
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Success 201 {object} response.Envelope
// @Router /attendance/check-in [post]
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	record, err := h.attendance.CheckIn(c.Request.Context(), claims.SubjectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordCheckIn()
	if h.dashboard != nil {
		h.dashboard.Invalidate(c.Request.Context())
	}
	response.Created(c, record)
}

// CheckOut godoc
// @Summary Record today's check-out for the caller
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /attendance/check-out [post]
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	record, err := h.attendance.CheckOut(c.Request.Context(), claims.SubjectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordCheckOut()
	if h.dashboard != nil {
		h.dashboard.Invalidate(c.Request.Context())
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// History godoc
// @Summary List an employee's attendance ledger newest first
// @Tags Attendance
// @Produce json
// @Param id path string true "Employee ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/attendance [get]
func (h *AttendanceHandler) History(c *gin.Context) {
	filter := models.AttendanceFilter{EmployeeID: c.Param("id")}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}

	records, pagination, err := h.attendance.History(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Rating godoc
// @Summary Compute an employee's presence rating
// @Tags Attendance
// @Produce json
// @Param id path string true "Employee ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/rating [get]
func (h *AttendanceHandler) Rating(c *gin.Context) {
	result, err := h.rating.Rating(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Download an employee's attendance history as CSV or PDF
// @Tags Attendance
// @Produce octet-stream
// @Param id path string true "Employee ID"
// @Param format query string false "csv or pdf" default(csv)
// @Security BearerAuth
// @Success 200
// @Router /employees/{id}/attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.exports.History(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
