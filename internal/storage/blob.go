// Package storage implements the blob store used for gallery images,
// avatars and certificate logos. Uploads are a two-step side effect: the
// binary lands here first, then the caller inserts a row carrying the
// public URL. A failed row write does not remove the blob; the worker's
// orphan scan is the offline mitigation.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Store abstracts blob persistence.
type Store interface {
	Upload(ctx context.Context, bucket, name string, r io.Reader) (string, error)
	PublicURL(bucket, name string) string
	Remove(ctx context.Context, bucket, name string) error
}

// FileStore keeps blobs on the local filesystem under root, served under
// urlBase (e.g. /media).
type FileStore struct {
	root    string
	urlBase string
}

// NewFileStore constructs a FileStore rooted at dir.
func NewFileStore(dir, urlBase string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage: root dir required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &FileStore{root: dir, urlBase: strings.TrimRight(urlBase, "/")}, nil
}

// ObjectName derives a collision-free, time-sortable object name keeping
// the original extension.
func ObjectName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return ulid.Make().String() + ext
}

// Upload stores the blob and returns its object name.
func (s *FileStore) Upload(ctx context.Context, bucket, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !validComponent(bucket) || !validComponent(name) {
		return "", fmt.Errorf("storage: invalid object path %q/%q", bucket, name)
	}
	dir := filepath.Join(s.root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: create bucket: %w", err)
	}
	dest := filepath.Join(dir, name)
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: create object: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dest)
		return "", fmt.Errorf("storage: write object: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("storage: close object: %w", err)
	}
	return name, nil
}

// PublicURL returns the URL a row should store for the object.
func (s *FileStore) PublicURL(bucket, name string) string {
	return s.urlBase + "/" + path.Join(bucket, name)
}

// Remove deletes an object. Used only by the orphan scan, never on the
// request path.
func (s *FileStore) Remove(ctx context.Context, bucket, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validComponent(bucket) || !validComponent(name) {
		return fmt.Errorf("storage: invalid object path %q/%q", bucket, name)
	}
	return os.Remove(filepath.Join(s.root, bucket, name))
}

// List returns object names in a bucket older than cutoff.
func (s *FileStore) List(ctx context.Context, bucket string, cutoff time.Time) ([]string, error) {
	if !validComponent(bucket) {
		return nil, fmt.Errorf("storage: invalid bucket %q", bucket)
	}
	entries, err := os.ReadDir(filepath.Join(s.root, bucket))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func validComponent(c string) bool {
	return c != "" && !strings.ContainsAny(c, "/\\") && c != "." && c != ".."
}
