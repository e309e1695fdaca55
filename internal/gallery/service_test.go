package gallery

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-edu/meridian-edu/internal/identity"
	"github.com/meridian-edu/meridian-edu/internal/platform/httpx"
	_ "github.com/meridian-edu/meridian-edu/testing"
)

type mockRepository struct {
	items       []Item
	insertError error
	nextID      int64
}

func (m *mockRepository) List(ctx context.Context, limit, offset int) ([]Item, error) {
	return m.items, nil
}

func (m *mockRepository) Insert(ctx context.Context, item Item) (int64, error) {
	if m.insertError != nil {
		return 0, m.insertError
	}
	m.nextID++
	item.ID = m.nextID
	m.items = append(m.items, item)
	return item.ID, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) (int64, error) {
	for i, item := range m.items {
		if item.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// mockStore records uploads without touching the filesystem.
type mockStore struct {
	uploaded []string
	removed  []string
}

func (m *mockStore) Upload(ctx context.Context, bucket, name string, r io.Reader) (string, error) {
	m.uploaded = append(m.uploaded, name)
	return name, nil
}

func (m *mockStore) PublicURL(bucket, name string) string {
	return "/media/" + bucket + "/" + name
}

func (m *mockStore) Remove(ctx context.Context, bucket, name string) error {
	m.removed = append(m.removed, name)
	return nil
}

func adminActor() identity.Actor {
	return identity.Actor{ID: 1, Roles: []identity.Role{identity.RoleAdmin}}
}

func TestUploadByAdmin(t *testing.T) {
	repo := &mockRepository{}
	blobs := &mockStore{}
	svc := NewService(repo, blobs, nil, nil)

	item, err := svc.Upload(context.Background(), adminActor(), "open day", "photo.jpg", strings.NewReader("jpeg"))
	require.NoError(t, err)
	assert.NotEmpty(t, item.ObjectName)
	assert.True(t, strings.HasSuffix(item.ObjectName, ".jpg"))
	assert.Equal(t, "/media/gallery/"+item.ObjectName, item.URL)
	require.Len(t, blobs.uploaded, 1)
}

func TestViewDeniedForNonAdmins(t *testing.T) {
	repo := &mockRepository{items: []Item{{ID: 1, Title: "x"}}}
	svc := NewService(repo, &mockStore{}, nil, nil)

	for _, role := range []identity.Role{identity.RoleSecretary, identity.RoleTrainer, identity.RoleFinance, identity.RoleStudent, identity.RoleIT} {
		actor := identity.Actor{ID: 9, Roles: []identity.Role{role}}

		_, err := svc.List(context.Background(), actor, 0, 0)
		require.ErrorIs(t, err, httpx.ErrForbidden, "role %s must get 403, not an empty list", role)

		_, err = svc.Upload(context.Background(), actor, "t", "f.jpg", strings.NewReader("x"))
		require.ErrorIs(t, err, httpx.ErrForbidden, "role %s", role)
	}
}

func TestUploadInsertFailureLeavesBlobBehind(t *testing.T) {
	// The blob upload and the row insert are sequential. A failed insert
	// does NOT remove the already-uploaded blob; the error is surfaced
	// unmodified and the orphan scan reclaims the blob later.
	repo := &mockRepository{insertError: errors.New("permission denied for table gallery_items")}
	blobs := &mockStore{}
	svc := NewService(repo, blobs, nil, nil)

	_, err := svc.Upload(context.Background(), adminActor(), "open day", "photo.jpg", strings.NewReader("jpeg"))
	require.Error(t, err)
	assert.Equal(t, "permission denied for table gallery_items", err.Error())
	assert.Len(t, blobs.uploaded, 1)
	assert.Empty(t, blobs.removed, "no cleanup happens on the request path")
}

func TestUploadValidation(t *testing.T) {
	repo := &mockRepository{}
	blobs := &mockStore{}
	svc := NewService(repo, blobs, nil, nil)

	_, err := svc.Upload(context.Background(), adminActor(), "  ", "photo.jpg", strings.NewReader("x"))
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Upload(context.Background(), adminActor(), "title", "", strings.NewReader("x"))
	require.ErrorIs(t, err, httpx.ErrValidation)

	assert.Empty(t, blobs.uploaded, "validation failures must not upload")
}

func TestDeleteKeepsBlob(t *testing.T) {
	repo := &mockRepository{}
	blobs := &mockStore{}
	svc := NewService(repo, blobs, nil, nil)

	item, err := svc.Upload(context.Background(), adminActor(), "open day", "photo.jpg", strings.NewReader("jpeg"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), adminActor(), item.ID))
	assert.Empty(t, blobs.removed)

	err = svc.Delete(context.Background(), adminActor(), item.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
