package router

import (
	"github.com/gin-gonic/gin"

	"github.com/attendly/attendance-api/internal/handler"
	"github.com/attendly/attendance-api/internal/middleware"
	"github.com/attendly/attendance-api/internal/models"
	"github.com/attendly/attendance-api/internal/service"
)

// Dependencies bundles everything the route table needs.
type Dependencies struct {
	Auth          *service.AuthService
	AuthHandler   *handler.AuthHandler
	Employees     *handler.EmployeeHandler
	Attendance    *handler.AttendanceHandler
	Notifications *handler.NotificationHandler
	Requests      *handler.RequestHandler
	Dashboard     *handler.DashboardHandler
}

// Register mounts the API routes under the given prefix.
func Register(r *gin.Engine, prefix string, deps Dependencies) {
	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/admin/login", deps.AuthHandler.AdminLogin)
		auth.POST("/employee/login", deps.AuthHandler.EmployeeLogin)
		auth.POST("/refresh", deps.AuthHandler.Refresh)
		auth.POST("/forgot-password", deps.AuthHandler.ForgotPassword)
		auth.POST("/reset-password", deps.AuthHandler.ResetPassword)
		auth.POST("/logout", middleware.JWT(deps.Auth), deps.AuthHandler.Logout)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(deps.Auth))

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	adminOrSelf := middleware.AllowSelf(models.RoleAdmin)
	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleEmployee)

	authed.PUT("/admins/me", adminOnly, deps.AuthHandler.UpdateProfile)

	employees := authed.Group("/employees")
	{
		employees.GET("", adminOnly, deps.Employees.List)
		employees.POST("", adminOnly, deps.Employees.Create)
		employees.GET("/me", anyRole, deps.Employees.Me)
		employees.GET("/:id", adminOrSelf, deps.Employees.Get)
		employees.PUT("/:id", adminOrSelf, deps.Employees.Update)
		employees.DELETE("/:id", adminOnly, deps.Employees.Delete)
		employees.POST("/:id/photo", adminOrSelf, deps.Employees.UploadPhoto)

		employees.GET("/:id/attendance", adminOrSelf, deps.Attendance.History)
		employees.GET("/:id/attendance/export", adminOrSelf, deps.Attendance.Export)
		employees.GET("/:id/rating", adminOrSelf, deps.Attendance.Rating)
	}

	attendance := authed.Group("/attendance")
	{
		attendance.POST("/check-in", middleware.RequireRoles(models.RoleEmployee), deps.Attendance.CheckIn)
		attendance.POST("/check-out", middleware.RequireRoles(models.RoleEmployee), deps.Attendance.CheckOut)
	}

	notifications := authed.Group("/notifications")
	{
		notifications.POST("", adminOnly, deps.Notifications.Create)
		notifications.GET("", adminOnly, deps.Notifications.List)
		notifications.GET("/inbox", middleware.RequireRoles(models.RoleEmployee), deps.Notifications.Inbox)
	}

	requests := authed.Group("/requests")
	{
		requests.POST("", middleware.RequireRoles(models.RoleEmployee), deps.Requests.Submit)
		requests.GET("/mine", middleware.RequireRoles(models.RoleEmployee), deps.Requests.Mine)
		requests.GET("", adminOnly, deps.Requests.List)
		requests.POST("/:id/resolve", adminOnly, deps.Requests.Resolve)
	}

	authed.GET("/dashboard", adminOnly, deps.Dashboard.Summary)
}
