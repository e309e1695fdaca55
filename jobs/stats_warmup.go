package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/meridian-edu/meridian-edu/internal/stats"
)

const warmupTTL = 24 * time.Hour

// AttendanceWarmupJob precomputes per-class attendance rates so the
// dashboard stat cards do not aggregate on every page load.
type AttendanceWarmupJob struct {
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	Logger *slog.Logger
}

// NewAttendanceWarmupJob wires dependencies for the warmup handler.
func NewAttendanceWarmupJob(pool *pgxpool.Pool, client *redis.Client, logger *slog.Logger) *AttendanceWarmupJob {
	return &AttendanceWarmupJob{Pool: pool, Redis: client, Logger: logger}
}

type classAttendance struct {
	ClassID int64   `json:"class_id"`
	Present int     `json:"present"`
	Total   int     `json:"total"`
	Rate    float64 `json:"rate"`
}

// Handle processes attendance warmup tasks.
func (j *AttendanceWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("attendance warmup: handler not configured")
	}
	var payload AttendanceWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Days <= 0 {
		payload.Days = 30
	}

	rows, err := j.Pool.Query(ctx,
		`SELECT class_id,
		        COUNT(*) FILTER (WHERE present) AS present,
		        COUNT(*) AS total
		 FROM attendance_records
		 WHERE date >= CURRENT_DATE - $1::int
		 GROUP BY class_id`, payload.Days)
	if err != nil {
		return err
	}
	defer rows.Close()

	warmed := 0
	for rows.Next() {
		var entry classAttendance
		if err := rows.Scan(&entry.ClassID, &entry.Present, &entry.Total); err != nil {
			return err
		}
		entry.Rate = stats.AttendanceRate(entry.Present, entry.Total)

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		key := fmt.Sprintf("stats:attendance:%d", entry.ClassID)
		if err := j.Redis.Set(ctx, key, data, warmupTTL).Err(); err != nil {
			return err
		}
		warmed++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	j.Logger.Info("attendance warmup finished",
		slog.Int("days", payload.Days), slog.Int("classes", warmed))
	return nil
}
