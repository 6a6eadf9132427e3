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
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/booking-api/internal/handler"
	"github.com/noah-isme/booking-api/internal/middleware"
	"github.com/noah-isme/booking-api/internal/repository"
	"github.com/noah-isme/booking-api/internal/service"
	"github.com/noah-isme/booking-api/pkg/cache"
	"github.com/noah-isme/booking-api/pkg/config"
	"github.com/noah-isme/booking-api/pkg/database"
	"github.com/noah-isme/booking-api/pkg/events"
	"github.com/noah-isme/booking-api/pkg/export"
	"github.com/noah-isme/booking-api/pkg/jobs"
	"github.com/noah-isme/booking-api/pkg/logger"
	"github.com/noah-isme/booking-api/pkg/mailer"
)

// @title Booking API
// @version 1.0.0
// @description Slot availability and reservations for appointment-based businesses
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

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("database unavailable", zap.Error(err), zap.String("driver", cfg.Database.Driver))
	}
	defer db.Close()

	app := buildApp(ctx, cfg, db, logr)
	defer app.close()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, app, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

type app struct {
	auth         *handler.AuthHandler
	businesses   *handler.BusinessHandler
	schedules    *handler.ScheduleHandler
	employees    *handler.EmployeeHandler
	availability *handler.AvailabilityHandler
	appointments *handler.AppointmentHandler
	owners       *handler.OwnerHandler
	reviews      *handler.ReviewHandler
	ops          *handler.MetricsHandler

	authService *service.AuthService
	metrics     *service.MetricsService
	limiter     *middleware.RateLimiter

	queue     *jobs.Queue
	publisher events.Publisher
	closers   []func() error
}

func (a *app) close() {
	a.queue.Stop()
	for _, fn := range a.closers {
		_ = fn()
	}
}

func buildApp(ctx context.Context, cfg *config.Config, db *sqlx.DB, logr *zap.Logger) *app {
	validate := validator.New()
	metrics := service.NewMetricsService()
	loc := cfg.Booking.Location()

	users := repository.NewUserRepository(db)
	businessRepo := repository.NewBusinessRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	ownerRequestRepo := repository.NewOwnerRequestRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	a := &app{metrics: metrics}

	var cacheRepo service.CacheRepository
	if cfg.ScheduleCache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("schedule cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(client, "booking")
			a.closers = append(a.closers, client.Close)
		}
	}
	scheduleCache := service.NewScheduleCache(cacheRepo, metrics, cfg.ScheduleCache.TTL, logr)

	var sender mailer.Sender = mailer.NewLogSender(logr)
	if cfg.SMTP.Host != "" {
		sender = mailer.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From)
	}

	a.publisher = events.NewLogPublisher(logr)
	if len(cfg.Kafka.Brokers) > 0 {
		a.publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	a.closers = append(a.closers, a.publisher.Close)

	a.authService = service.NewAuthService(users, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	}).WithOwnerRequests(ownerRequestRepo)
	ownerSvc := service.NewOwnerService(ownerRequestRepo, users, validate, logr)
	businessSvc := service.NewBusinessService(businessRepo, scheduleRepo, users, validate, logr, cfg.Booking.DefaultTimezone)
	reviewSvc := service.NewReviewService(reviewRepo, appointmentRepo, businessRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, businessRepo, scheduleCache, logr)
	employeeSvc := service.NewEmployeeService(employeeRepo, businessRepo, scheduleSvc, validate, logr)
	availabilitySvc := service.NewAvailabilityService(businessRepo, scheduleSvc, employeeRepo, appointmentRepo, loc, logr)
	documentSvc := service.NewDocumentService(businessRepo, export.NewQRSigner(cfg.QR.SigningSecret, 256), export.NewPDFExporter(), loc)

	notifier := service.NewNotificationService(appointmentRepo, users, documentSvc, sender, a.publisher, metrics, logr)
	a.queue = jobs.NewQueue("notifications", notifier.Handle, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
		OnGiveUp:   notifier.GiveUp,
	})
	a.queue.Start(context.WithoutCancel(ctx))
	metrics.TrackQueueDepth("notifications", a.queue.Len)

	bookingSvc := service.NewBookingService(appointmentRepo, businessRepo, scheduleSvc, employeeRepo, a.queue, metrics, validate, logr, service.BookingConfig{
		Location:              loc,
		RejectPast:            cfg.Booking.RejectPast,
		AllowPastCancellation: cfg.Booking.AllowPastCancellation,
	})

	a.auth = handler.NewAuthHandler(a.authService)
	a.businesses = handler.NewBusinessHandler(businessSvc)
	a.schedules = handler.NewScheduleHandler(scheduleSvc)
	a.employees = handler.NewEmployeeHandler(employeeSvc)
	a.availability = handler.NewAvailabilityHandler(availabilitySvc)
	a.appointments = handler.NewAppointmentHandler(bookingSvc, documentSvc)
	a.owners = handler.NewOwnerHandler(ownerSvc)
	a.reviews = handler.NewReviewHandler(reviewSvc)
	a.ops = handler.NewMetricsHandler(metrics, db)
	a.limiter = middleware.NewRateLimiter(cfg.Booking.RateLimitPerMinute, cfg.Booking.RateLimitBurst)
	return a
}
