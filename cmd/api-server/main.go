package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/attendly/attendance-api/api/swagger"
	"github.com/attendly/attendance-api/internal/handler"
	"github.com/attendly/attendance-api/internal/middleware"
	"github.com/attendly/attendance-api/internal/repository"
	"github.com/attendly/attendance-api/internal/router"
	"github.com/attendly/attendance-api/internal/service"
	"github.com/attendly/attendance-api/pkg/cache"
	"github.com/attendly/attendance-api/pkg/config"
	"github.com/attendly/attendance-api/pkg/database"
	"github.com/attendly/attendance-api/pkg/logger"
	corsmiddleware "github.com/attendly/attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/attendly/attendance-api/pkg/middleware/requestid"
	"github.com/attendly/attendance-api/pkg/storage"
)

// @title Attendance API
// @version 1.0.0
// @description Employee attendance, notifications and requests service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard cache disabled", "error", err)
		redisClient = nil
	}

	photoStore, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	employeeRepo := repository.NewEmployeeRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	var cacheService *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheService = service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)
	} else {
		cacheService = service.NewCacheService(nil, metrics, cfg.Dashboard.CacheTTL, logr, false)
	}

	authService := service.NewAuthService(adminRepo, employeeRepo, tokenRepo, cfg.JWT, cfg.Reset.TokenTTL, validate, logr)
	employeeService := service.NewEmployeeService(employeeRepo, photoStore, validate, logr)
	attendanceService := service.NewAttendanceService(attendanceRepo, logr)
	ratingService := service.NewRatingService(attendanceRepo)
	notificationService := service.NewNotificationService(notificationRepo, employeeRepo, validate, logr)
	requestService := service.NewRequestService(requestRepo, validate, logr)
	dashboardService := service.NewDashboardService(dashboardRepo, cacheService, cfg.Dashboard.CacheTTL, logr)
	exportService := service.NewExportService(attendanceRepo, employeeRepo, nil, nil, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.Register(r, cfg.APIPrefix, router.Dependencies{
		Auth:          authService,
		AuthHandler:   handler.NewAuthHandler(authService),
		Employees:     handler.NewEmployeeHandler(employeeService, cfg.Uploads.MaxFileSizeBytes),
		Attendance:    handler.NewAttendanceHandler(attendanceService, ratingService, exportService, dashboardService, metrics),
		Notifications: handler.NewNotificationHandler(notificationService),
		Requests:      handler.NewRequestHandler(requestService, dashboardService),
		Dashboard:     handler.NewDashboardHandler(dashboardService),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
