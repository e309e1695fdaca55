package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-edu/meridian-edu/internal/gallery"
	"github.com/meridian-edu/meridian-edu/internal/storage"
)

// ReferencedObjects reports which object names are still referenced by
// database rows.
type ReferencedObjects interface {
	ObjectNames(ctx context.Context) (map[string]struct{}, error)
}

// OrphanScanJob removes blobs that no database row references. Uploads and
// row inserts are sequential on the request path, so a failed insert can
// strand a blob; this job is the offline mitigation.
type OrphanScanJob struct {
	Blobs   *storage.FileStore
	Gallery ReferencedObjects
	Logger  *slog.Logger
	clock   func() time.Time
}

// NewOrphanScanJob wires dependencies for the scan handler.
func NewOrphanScanJob(blobs *storage.FileStore, galleryRepo ReferencedObjects, logger *slog.Logger) *OrphanScanJob {
	return &OrphanScanJob{
		Blobs:   blobs,
		Gallery: galleryRepo,
		Logger:  logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes orphan scan tasks.
func (j *OrphanScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("orphan scan: handler not configured")
	}
	var payload OrphanScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Bucket == "" {
		payload.Bucket = gallery.Bucket
	}
	if payload.MinAgeHours <= 0 {
		payload.MinAgeHours = 24
	}

	cutoff := j.clock().Add(-time.Duration(payload.MinAgeHours) * time.Hour)
	candidates, err := j.Blobs.List(ctx, payload.Bucket, cutoff)
	if err != nil {
		return err
	}
	referenced, err := j.Gallery.ObjectNames(ctx)
	if err != nil {
		return err
	}

	removed := 0
	for _, name := range candidates {
		if _, ok := referenced[name]; ok {
			continue
		}
		if err := j.Blobs.Remove(ctx, payload.Bucket, name); err != nil {
			j.Logger.Warn("orphan scan remove",
				slog.String("object", name), slog.Any("error", err))
			continue
		}
		removed++
	}

	j.Logger.Info("orphan scan finished",
		slog.String("bucket", payload.Bucket),
		slog.Int("candidates", len(candidates)),
		slog.Int("removed", removed))
	return nil
}
