package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chandra197/tpo-attendance-api/internal/handler"
	"github.com/chandra197/tpo-attendance-api/internal/middleware"
	"github.com/chandra197/tpo-attendance-api/internal/repository"
	"github.com/chandra197/tpo-attendance-api/internal/service"
	"github.com/chandra197/tpo-attendance-api/pkg/cache"
	"github.com/chandra197/tpo-attendance-api/pkg/config"
	"github.com/chandra197/tpo-attendance-api/pkg/database"
	"github.com/chandra197/tpo-attendance-api/pkg/logger"
	corsmiddleware "github.com/chandra197/tpo-attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/chandra197/tpo-attendance-api/pkg/middleware/requestid"
)

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

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)

	batchRepo := repository.NewBatchRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	timeslotRepo := repository.NewTimeSlotRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	batchSvc := service.NewBatchService(batchRepo, cacheSvc, cfg.Cache.TTL, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, cacheSvc, cfg.Cache.TTL, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, timeslotRepo, db, cacheSvc, validate, logr)
	sessionSvc := service.NewSessionService(sessionRepo, scheduleRepo, timeslotRepo, semesterRepo, db, metricsSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, sessionRepo, studentRepo, db, metricsSvc, validate, logr)

	batchHandler := handler.NewBatchHandler(batchSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/sections", batchHandler.ListSections)

		api.GET("/students/search", studentHandler.Search)
		api.GET("/students/roster/:year/:branch/:section", studentHandler.Roster)

		api.POST("/schedules", scheduleHandler.Create)
		api.GET("/schedules", scheduleHandler.ListByBranch)

		api.POST("/semester-dates", sessionHandler.SaveSemesterWindow)
		api.GET("/sessions", sessionHandler.List)
		api.GET("/sessions/unmarked", sessionHandler.ListUnmarked)

		api.GET("/attendance/:sessionId", attendanceHandler.Get)
		api.POST("/attendance", attendanceHandler.Submit)
		api.PUT("/attendance", attendanceHandler.Update)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
