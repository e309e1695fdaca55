package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOrphanScan reclaims uploaded blobs whose row insert never landed.
	TaskOrphanScan = "storage:orphan_scan"
	// TaskAttendanceWarmup precomputes per-class attendance rates.
	TaskAttendanceWarmup = "stats:attendance_warmup"
)

// OrphanScanPayload selects the bucket to scan and the minimum blob age.
// Young blobs are skipped so in-flight uploads are never collected.
type OrphanScanPayload struct {
	Bucket      string `json:"bucket"`
	MinAgeHours int    `json:"min_age_hours"`
}

// NewOrphanScanTask constructs an orphan scan task.
func NewOrphanScanTask(payload OrphanScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrphanScan, data), nil
}

// AttendanceWarmupPayload selects the window the warmup aggregates over.
type AttendanceWarmupPayload struct {
	Days int `json:"days"`
}

// NewAttendanceWarmupTask constructs an attendance warmup task.
func NewAttendanceWarmupTask(payload AttendanceWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAttendanceWarmup, data), nil
}
