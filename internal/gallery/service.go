package gallery

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/meridian-edu/meridian-edu/internal/identity"
	"github.com/meridian-edu/meridian-edu/internal/listcache"
	"github.com/meridian-edu/meridian-edu/internal/platform/httpx"
	"github.com/meridian-edu/meridian-edu/internal/scope"
	"github.com/meridian-edu/meridian-edu/internal/shared"
	"github.com/meridian-edu/meridian-edu/internal/storage"
)

// RepositoryPort defines data access methods for gallery items.
type RepositoryPort interface {
	List(ctx context.Context, limit, offset int) ([]Item, error)
	Insert(ctx context.Context, item Item) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// Service implements the admin-only gallery: image upload and listing.
type Service struct {
	repo  RepositoryPort
	blobs storage.Store
	cache *listcache.Cache
	audit *shared.AuditLogger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, blobs storage.Store, cache *listcache.Cache, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, blobs: blobs, cache: cache, audit: audit}
}

// List returns gallery items. Non-admin actors get 403, never a filtered
// list.
func (s *Service) List(ctx context.Context, actor identity.Actor, limit, offset int) ([]Item, error) {
	if !scope.ViewAllowed(scope.ResourceGallery, actor) {
		return nil, fmt.Errorf("%w: gallery is admin only", httpx.ErrForbidden)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	pred := scope.ForResource(scope.ResourceGallery, actor)
	key, err := s.cache.Key(ctx, scope.ResourceGallery, pred,
		strconv.Itoa(limit), strconv.Itoa(offset))
	if err != nil {
		return s.repo.List(ctx, limit, offset)
	}
	var out []Item
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.repo.List(ctx, limit, offset)
	})
	return out, err
}

// Upload stores the image blob, then inserts the row carrying its public
// URL. The two steps are sequential: a failed insert after a successful
// upload leaves the blob behind and returns the insert error unmodified.
// The worker's orphan scan reclaims such blobs offline.
func (s *Service) Upload(ctx context.Context, actor identity.Actor, title, filename string, r io.Reader) (Item, error) {
	if !scope.ViewAllowed(scope.ResourceGallery, actor) {
		return Item{}, fmt.Errorf("%w: gallery is admin only", httpx.ErrForbidden)
	}
	if strings.TrimSpace(title) == "" {
		return Item{}, fmt.Errorf("%w: title is required", httpx.ErrValidation)
	}
	if filename == "" {
		return Item{}, fmt.Errorf("%w: an image file is required", httpx.ErrValidation)
	}

	name, err := s.blobs.Upload(ctx, Bucket, storage.ObjectName(filename), r)
	if err != nil {
		return Item{}, err
	}

	item := Item{
		Title:      strings.TrimSpace(title),
		ObjectName: name,
		URL:        s.blobs.PublicURL(Bucket, name),
		UploadedBy: actor.ID,
	}
	id, err := s.repo.Insert(ctx, item)
	if err != nil {
		return Item{}, err
	}
	item.ID = id

	_ = s.cache.Bump(ctx, scope.ResourceGallery)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "gallery.upload",
		Entity:   "gallery_items",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     map[string]any{"object": name},
	})
	return item, nil
}

// Delete removes a gallery row. The blob stays until the orphan scan
// collects it.
func (s *Service) Delete(ctx context.Context, actor identity.Actor, id int64) error {
	if !scope.ViewAllowed(scope.ResourceGallery, actor) {
		return fmt.Errorf("%w: gallery is admin only", httpx.ErrForbidden)
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: gallery item %d", httpx.ErrNotFound, id)
	}

	_ = s.cache.Bump(ctx, scope.ResourceGallery)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "gallery.delete",
		Entity:   "gallery_items",
		EntityID: strconv.FormatInt(id, 10),
	})
	return nil
}
