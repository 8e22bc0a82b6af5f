package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/timetable-api/api/swagger"
	"github.com/noah-isme/timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/cache"
	"github.com/noah-isme/timetable-api/pkg/config"
	"github.com/noah-isme/timetable-api/pkg/database"
	"github.com/noah-isme/timetable-api/pkg/jobs"
	"github.com/noah-isme/timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 1.0.0
// @description Role-scoped schedules, conflict detection and faculty availability for a college timetable.
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.SlotCatalogEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("slot cache disabled, redis unavailable", "error", err)
		} else {
			defer client.Close()
			cacheRepo = repository.NewCacheRepository(client, "timetable")
		}
	}
	var cacheSvc *service.CacheService
	if cacheRepo != nil {
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Cache.SlotCatalogTTL, logr, true)
	}

	validate := validator.New()
	scheduleCfg := service.ScheduleConfig{DefaultPeriod: models.Period{
		AcademicYear: cfg.Timetable.CurrentAcademicYear,
		Semester:     cfg.Timetable.CurrentSemester,
	}}

	timetableRepo := repository.NewTimetableRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)

	scheduleSvc := service.NewScheduleService(timetableRepo, facultyRepo, studentRepo, enrollmentRepo, scheduleCfg, metrics, validate, logr)
	conflictSvc := service.NewConflictService(timetableRepo, scheduleCfg, metrics, logr)
	availabilitySvc := service.NewAvailabilityService(subjectRepo, facultyRepo, logr)
	timeSlotSvc := service.NewTimeSlotService(timeSlotRepo, cacheSvc, scheduleCfg, validate, logr)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret)

	deps := service.TimetableDeps{
		Store:       timetableRepo,
		Enrollments: enrollmentRepo,
		Subjects:    subjectRepo,
		Faculty:     facultyRepo,
		Classrooms:  classroomRepo,
		Slots:       timeSlotRepo,
		Tx:          database.NewTxManager(db),
		Metrics:     metrics,
	}
	if cfg.Timetable.ConflictMonitorEnabled {
		monitor := service.NewConflictMonitor(conflictSvc, jobs.QueueConfig{
			Workers:    cfg.Timetable.ConflictMonitorWorkers,
			MaxRetries: 2,
			RetryDelay: 5 * time.Second,
			Logger:     logr,
		})
		monitor.Start(ctx)
		defer monitor.Stop()
		deps.Monitor = monitor
	}
	timetableSvc := service.NewTimetableService(deps, validate, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metrics != nil {
		r.Use(internalmiddleware.Metrics(metrics, "/metrics", "/health", "/ready"))
	}

	metricsHandler := handler.NewMetricsHandler(metrics, db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metrics != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction && cfg.Docs.Enabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), routeHandlers{
		schedule:     handler.NewScheduleHandler(scheduleSvc, conflictSvc, timeSlotSvc, logr),
		availability: handler.NewAvailabilityHandler(availabilitySvc, logr),
		timetable:    handler.NewTimetableHandler(timetableSvc, logr),
		timeSlot:     handler.NewTimeSlotHandler(timeSlotSvc, logr),
	}, tokenSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

type routeHandlers struct {
	schedule     *handler.ScheduleHandler
	availability *handler.AvailabilityHandler
	timetable    *handler.TimetableHandler
	timeSlot     *handler.TimeSlotHandler
}

func registerRoutes(api *gin.RouterGroup, h routeHandlers, tokens internalmiddleware.TokenValidator) {
	admin := internalmiddleware.RBAC(models.RoleAdmin)
	staff := internalmiddleware.RBAC(models.RoleAdmin, models.RoleFaculty)
	anyone := internalmiddleware.AnyRole()

	api.Use(internalmiddleware.JWT(tokens))

	schedule := api.Group("/schedule")
	schedule.GET("", anyone, h.schedule.List)
	schedule.GET("/weekly", anyone, h.schedule.Weekly)
	schedule.GET("/daily", anyone, h.schedule.Daily)
	schedule.GET("/stats", anyone, h.schedule.Stats)
	schedule.GET("/search", anyone, h.schedule.Search)
	schedule.GET("/conflicts", admin, h.schedule.Conflicts)
	schedule.GET("/available-slots", admin, h.schedule.AvailableSlots)

	api.GET("/subjects/:id/available-faculty", admin, h.availability.AvailableFaculty)

	timetables := api.Group("/timetables")
	timetables.GET("/:id", staff, h.timetable.Get)
	timetables.GET("/:id/roster", staff, h.timetable.Roster)
	timetables.POST("", admin, h.timetable.Create)
	timetables.PUT("/:id", admin, h.timetable.Update)
	timetables.DELETE("/:id", admin, h.timetable.Delete)

	timeSlots := api.Group("/timeslots")
	timeSlots.GET("", anyone, h.timeSlot.List)
	timeSlots.GET("/:id", admin, h.timeSlot.Get)
}
