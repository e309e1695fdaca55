package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/meridian-edu/meridian-edu/internal/announcements"
	"github.com/meridian-edu/meridian-edu/internal/app"
	"github.com/meridian-edu/meridian-edu/internal/attendance"
	"github.com/meridian-edu/meridian-edu/internal/auth"
	"github.com/meridian-edu/meridian-edu/internal/certificates"
	"github.com/meridian-edu/meridian-edu/internal/classes"
	"github.com/meridian-edu/meridian-edu/internal/facilities"
	"github.com/meridian-edu/meridian-edu/internal/gallery"
	"github.com/meridian-edu/meridian-edu/internal/identity"
	"github.com/meridian-edu/meridian-edu/internal/listcache"
	"github.com/meridian-edu/meridian-edu/internal/observability"
	"github.com/meridian-edu/meridian-edu/internal/payments"
	"github.com/meridian-edu/meridian-edu/internal/payroll"
	"github.com/meridian-edu/meridian-edu/internal/provisioning"
	"github.com/meridian-edu/meridian-edu/internal/shared"
	"github.com/meridian-edu/meridian-edu/internal/storage"
	"github.com/meridian-edu/meridian-edu/jobs"
	"github.com/meridian-edu/meridian-edu/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "meridian_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)
	cache := listcache.New(redisClient, cfg.ListCacheTTL)

	identityService := identity.NewService(identity.NewRepository(dbpool))
	actors := identity.Middleware{Service: identityService, Logger: logger}

	blobs, err := storage.NewFileStore(cfg.MediaDir, cfg.MediaURLBase)
	if err != nil {
		logger.Error("init blob store", slog.Any("error", err))
		os.Exit(1)
	}

	authService := auth.NewService(auth.NewRepository(dbpool))
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager, actors)

	announcementsService := announcements.NewService(announcements.NewRepository(dbpool), cache, auditLogger)
	announcementsHandler := announcements.NewHandler(logger, announcementsService, actors)

	classesService := classes.NewService(classes.NewRepository(dbpool), cache, auditLogger)
	classesHandler := classes.NewHandler(logger, classesService, actors)

	attendanceService := attendance.NewService(attendance.NewRepository(dbpool), cache, auditLogger)
	attendanceHandler := attendance.NewHandler(logger, attendanceService, actors)

	payrollService := payroll.NewService(payroll.NewRepository(dbpool), cache, auditLogger)
	payrollHandler := payroll.NewHandler(logger, payrollService, actors)

	paymentsService := payments.NewService(payments.NewRepository(dbpool), cache, auditLogger)
	paymentsHandler := payments.NewHandler(logger, paymentsService, actors)

	galleryService := gallery.NewService(gallery.NewRepository(dbpool), blobs, cache, auditLogger)
	galleryHandler := gallery.NewHandler(logger, galleryService, actors)

	facilitiesService := facilities.NewService(facilities.NewRepository(dbpool), cache, auditLogger)
	facilitiesHandler := facilities.NewHandler(logger, facilitiesService, actors)

	pdfClient := report.NewClient(cfg.GotenbergURL)
	certificatesService := certificates.NewService(certificates.NewRepository(dbpool), pdfClient, auditLogger)
	certificatesHandler := certificates.NewHandler(logger, certificatesService, actors)

	tokenIssuer := provisioning.NewTokenIssuer([]byte(cfg.ProvisionTokenSecret), cfg.ProvisionTokenIssuer)
	provisioningService := provisioning.NewService(provisioning.NewRepository(dbpool), auditLogger)
	provisioningHandler := provisioning.NewHandler(logger, provisioningService, actors, tokenIssuer)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		SessionManager:       sessionManager,
		CSRFManager:          csrfManager,
		AuthHandler:          authHandler,
		AnnouncementsHandler: announcementsHandler,
		ClassesHandler:       classesHandler,
		AttendanceHandler:    attendanceHandler,
		PayrollHandler:       payrollHandler,
		PaymentsHandler:      paymentsHandler,
		GalleryHandler:       galleryHandler,
		FacilitiesHandler:    facilitiesHandler,
		CertificatesHandler:  certificatesHandler,
		ProvisioningHandler:  provisioningHandler,
		JobHandler:           jobHandler,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
