package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/meridian-edu/meridian-edu/testing"
)

func TestUploadAndPublicURL(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "/media/")
	require.NoError(t, err)

	name := ObjectName("logo.PNG")
	assert.True(t, strings.HasSuffix(name, ".png"))

	stored, err := store.Upload(context.Background(), "gallery", name, strings.NewReader("binary"))
	require.NoError(t, err)
	assert.Equal(t, name, stored)
	assert.Equal(t, "/media/gallery/"+name, store.PublicURL("gallery", name))

	data, err := os.ReadFile(filepath.Join(store.root, "gallery", name))
	require.NoError(t, err)
	assert.Equal(t, "binary", string(data))
}

func TestUploadRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "/media")
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "../etc", "x", strings.NewReader(""))
	assert.Error(t, err)
	_, err = store.Upload(context.Background(), "gallery", "../../x", strings.NewReader(""))
	assert.Error(t, err)
}

func TestListReturnsOldObjects(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "/media")
	require.NoError(t, err)

	name, err := store.Upload(context.Background(), "gallery", ObjectName("a.jpg"), strings.NewReader("x"))
	require.NoError(t, err)

	old, err := store.List(context.Background(), "gallery", time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{name}, old)

	none, err := store.List(context.Background(), "gallery", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Empty(t, none)

	missing, err := store.List(context.Background(), "empty-bucket", time.Now())
	require.NoError(t, err)
	assert.Empty(t, missing)
}
