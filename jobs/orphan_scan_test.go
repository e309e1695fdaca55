package jobs

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-edu/meridian-edu/internal/storage"
)

type staticReferences map[string]struct{}

func (s staticReferences) ObjectNames(ctx context.Context) (map[string]struct{}, error) {
	return s, nil
}

func TestOrphanScanRemovesUnreferencedOldBlobs(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir, "/media")
	require.NoError(t, err)

	writeBlob := func(name string) string {
		path := filepath.Join(dir, "gallery", name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("img"), 0o644))
		old := time.Now().Add(-48 * time.Hour)
		require.NoError(t, os.Chtimes(path, old, old))
		return path
	}
	referencedPath := writeBlob("referenced.jpg")
	orphanPath := writeBlob("orphan.jpg")

	// Fresh blobs are skipped even when unreferenced.
	freshPath := filepath.Join(dir, "gallery", "fresh.jpg")
	require.NoError(t, os.WriteFile(freshPath, []byte("img"), 0o644))

	job := NewOrphanScanJob(store, staticReferences{"referenced.jpg": {}}, slog.New(slog.NewTextHandler(os.Stderr, nil)))

	task, err := NewOrphanScanTask(OrphanScanPayload{Bucket: "gallery", MinAgeHours: 24})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	assert.FileExists(t, referencedPath)
	assert.FileExists(t, freshPath)
	assert.NoFileExists(t, orphanPath)
}

func TestOrphanScanBadPayloadSkipsRetry(t *testing.T) {
	job := NewOrphanScanJob(nil, staticReferences{}, slog.New(slog.NewTextHandler(os.Stderr, nil)))

	err := job.Handle(context.Background(), asynq.NewTask(TaskOrphanScan, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
