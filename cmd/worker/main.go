package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/meridian-edu/meridian-edu/internal/app"
	"github.com/meridian-edu/meridian-edu/internal/gallery"
	"github.com/meridian-edu/meridian-edu/internal/storage"
	"github.com/meridian-edu/meridian-edu/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	blobs, err := storage.NewFileStore(cfg.MediaDir, cfg.MediaURLBase)
	if err != nil {
		logger.Error("init blob store", slog.Any("error", err))
		os.Exit(1)
	}

	orphanJob := jobs.NewOrphanScanJob(blobs, gallery.NewRepository(pool), logger)
	warmupJob := jobs.NewAttendanceWarmupJob(pool, redisClient, logger)

	orphanTask, err := jobs.NewOrphanScanTask(jobs.OrphanScanPayload{Bucket: gallery.Bucket, MinAgeHours: 24})
	if err != nil {
		logger.Error("build orphan task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewAttendanceWarmupTask(jobs.AttendanceWarmupPayload{Days: 30})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskOrphanScan, Handler: orphanJob.Handle},
			{Type: jobs.TaskAttendanceWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "30 2 * * *", Task: orphanTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 3 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
