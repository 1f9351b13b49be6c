package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-records/api/swagger"
	"github.com/noah-isme/sma-records/internal/handler"
	"github.com/noah-isme/sma-records/internal/middleware"
	"github.com/noah-isme/sma-records/internal/models"
	"github.com/noah-isme/sma-records/internal/repository"
	"github.com/noah-isme/sma-records/internal/service"
	"github.com/noah-isme/sma-records/pkg/cache"
	"github.com/noah-isme/sma-records/pkg/config"
	"github.com/noah-isme/sma-records/pkg/database"
	"github.com/noah-isme/sma-records/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-records/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-records/pkg/middleware/requestid"
	"github.com/noah-isme/sma-records/pkg/storage"
)

// @title SMA Records API
// @version 1.0.0
// @description Academic records: accounts, courses, class sections, enrollment, coursework, attendance and announcements
// @BasePath /
// @schemes http

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		logr.Fatal("failed to open record store", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	gateway := repository.NewGateway(db, cfg.Database, repository.SeedOptions{
		AdminPassword: cfg.Auth.SeedAdminPassword,
		BcryptCost:    cfg.Auth.BcryptCost,
	}, logr)
	prepareStore(ctx, gateway, logr)

	metrics := service.NewMetricsService()
	validate := service.NewValidator()

	users := repository.NewUserRepository(db)
	courses := repository.NewCourseRepository(db)
	semesters := repository.NewSemesterRepository(db)
	classrooms := repository.NewClassroomRepository(db)
	timeSlots := repository.NewTimeSlotRepository(db)
	sections := repository.NewClassSectionRepository(db)
	schedule := repository.NewScheduleRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	submissions := repository.NewSubmissionRepository(db)
	attendance := repository.NewAttendanceRepository(db)
	announcements := repository.NewAnnouncementRepository(db)

	files, err := storage.NewLocalStorage(cfg.Storage.Dir)
	if err != nil {
		logr.Fatal("failed to prepare attachment storage", zap.Error(err))
	}

	authSvc := service.NewAuthService(users, metrics, logr, service.AuthConfig{
		OfflineFallback: cfg.Auth.OfflineFallback,
		SessionSecret:   cfg.Session.Secret,
		SessionTTL:      cfg.Session.TTL,
		Issuer:          cfg.Session.Issuer,
	})
	authSvc.Subscribe(func(event service.SessionEvent, account *models.Account) {
		logr.Info("session changed",
			zap.String("event", string(event)),
			zap.String("username", account.Username),
			zap.String("role", string(account.Role)),
			zap.Bool("offline", account.Offline),
		)
	})

	userSvc := service.NewUserService(users, validate, logr, cfg.Auth.BcryptCost)
	catalogSvc := service.NewCatalogService(courses, semesters, classrooms, timeSlots, gateway, validate, logr)
	sectionSvc := service.NewSectionService(service.SectionDeps{
		Sections:   sections,
		Schedule:   schedule,
		Courses:    courses,
		Semesters:  semesters,
		Users:      users,
		Classrooms: classrooms,
		TimeSlots:  timeSlots,
	}, gateway, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollments, sections, users, gateway, metrics, logr)
	assignmentSvc := service.NewAssignmentService(assignments, submissions, enrollments, files, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendance, sections, enrollments, gateway, validate, logr)
	boardCache, closeCache := announcementCache(ctx, cfg, logr)
	defer closeCache()
	cacheSvc := service.NewCacheService(boardCache, metrics, cfg.Cache.AnnouncementTTL, logr, cfg.Cache.Enabled)
	announcementSvc := service.NewAnnouncementService(announcements, cacheSvc, validate, logr)
	exportSvc := service.NewExportService(enrollments, sections, users, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics"))

	handler.RegisterRoutes(r, cfg.APIPrefix, authSvc, handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc, userSvc),
		Users:         handler.NewUserHandler(userSvc),
		Catalog:       handler.NewCatalogHandler(catalogSvc),
		Sections:      handler.NewSectionHandler(sectionSvc),
		Enrollments:   handler.NewEnrollmentHandler(enrollmentSvc, exportSvc),
		Assignments:   handler.NewAssignmentHandler(assignmentSvc),
		Attendance:    handler.NewAttendanceHandler(attendanceSvc),
		Announcements: handler.NewAnnouncementHandler(announcementSvc, enrollmentSvc, sectionSvc),
		Metrics:       handler.NewMetricsHandler(metrics.Handler(), gateway),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	authSvc.Logout()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// prepareStore provisions and seeds the store. An unreachable store is reported once and
// the server keeps running so offline logins still work.
func prepareStore(ctx context.Context, gateway *repository.Gateway, logr *zap.Logger) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := gateway.Ping(pingCtx); err != nil {
		logr.Warn("record store unreachable; only offline accounts can log in", zap.Error(err))
		return
	}
	if err := gateway.Provision(ctx); err != nil {
		logr.Error("schema provisioning failed", zap.Error(err))
		return
	}
	gateway.Seed(ctx)
}

func announcementCache(ctx context.Context, cfg *config.Config, logr *zap.Logger) (service.CacheRepository, func()) {
	if !cfg.Cache.Enabled {
		return nil, func() {}
	}
	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("announcement cache disabled", zap.Error(err))
		return nil, func() {}
	}
	repo := repository.NewCacheRepository(client, "records:", logr)
	return repo, func() {
		if err := repo.Close(); err != nil {
			logr.Warn("closing announcement cache", zap.Error(err))
		}
	}
}
