package local

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panoptes/panoptes-data-go/pkg/storage"
)

func newTestStore(t *testing.T, objects map[string]string) *Store {
	t.Helper()

	fs := afero.NewMemMapFs()
	for key, content := range objects {
		require.NoError(t, afero.WriteFile(fs, key, []byte(content), 0o644))
	}

	store := NewWithFs(fs, nil)
	// Write download targets in-memory as well.
	store.targetFs = afero.NewMemMapFs()
	return store
}

func TestListByPrefix(t *testing.T) {
	store := newTestStore(t, map[string]string{
		"PAN012/14d3bd/20200110T065813/20200110T070013.fits.fz": "a",
		"PAN012/14d3bd/20200110T065813/20200110T070213.fits.fz": "b",
		"PAN008/aabbcc/20200201T010203/20200201T010503.fits.fz": "c",
	})

	objects, err := store.List(context.Background(), "PAN012/14d3bd/20200110T065813")
	require.NoError(t, err)
	require.Len(t, objects, 2)

	// Keys come back sorted, so enumeration order is stable.
	assert.Equal(t, "PAN012/14d3bd/20200110T065813/20200110T070013.fits.fz", objects[0].Key)
	assert.Equal(t, "PAN012/14d3bd/20200110T065813/20200110T070213.fits.fz", objects[1].Key)
}

func TestListNoMatches(t *testing.T) {
	store := newTestStore(t, map[string]string{"PAN012/a": "x"})

	objects, err := store.List(context.Background(), "PAN099")
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestListMaxResults(t *testing.T) {
	store := newTestStore(t, map[string]string{
		"seq/a": "1", "seq/b": "2", "seq/c": "3",
	})

	objects, err := store.List(context.Background(), "seq/", storage.WithMaxResults(2))
	require.NoError(t, err)
	assert.Len(t, objects, 2)
}

func TestGet(t *testing.T) {
	store := newTestStore(t, map[string]string{"seq/a.fits": "payload"})

	reader, err := store.Get(context.Background(), "seq/a.fits")
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestGetNotFound(t *testing.T) {
	store := newTestStore(t, nil)

	_, err := store.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, storage.IsNotFound(err))
}

func TestDownload(t *testing.T) {
	store := newTestStore(t, map[string]string{"seq/a.fits": "payload"})

	target := filepath.Join("out", "a.fits")
	require.NoError(t, store.Download(context.Background(), "seq/a.fits", target))

	data, err := afero.ReadFile(store.targetFs, target)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestDownloadSkipExisting(t *testing.T) {
	store := newTestStore(t, map[string]string{"seq/a.fits": "new content"})

	target := filepath.Join("out", "a.fits")
	require.NoError(t, afero.WriteFile(store.targetFs, target, []byte("old content"), 0o644))

	require.NoError(t, store.Download(context.Background(), "seq/a.fits", target))
	data, _ := afero.ReadFile(store.targetFs, target)
	assert.Equal(t, "old content", string(data), "existing file must be left untouched")

	require.NoError(t, store.Download(context.Background(), "seq/a.fits", target, storage.WithOverwrite(true)))
	data, _ = afero.ReadFile(store.targetFs, target)
	assert.Equal(t, "new content", string(data))
}

func TestExistsAndStat(t *testing.T) {
	store := newTestStore(t, map[string]string{"seq/a.fits": "12345"})

	ok, err := store.Exists(context.Background(), "seq/a.fits")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(context.Background(), "seq/b.fits")
	require.NoError(t, err)
	assert.False(t, ok)

	meta, err := store.Stat(context.Background(), "seq/a.fits")
	require.NoError(t, err)
	assert.Equal(t, int64(5), meta.Size)

	_, err = store.Stat(context.Background(), "seq/b.fits")
	assert.True(t, storage.IsNotFound(err))
}

func TestNewRequiresRoot(t *testing.T) {
	_, err := New(storage.Config{Provider: storage.ProviderLocal}, nil)
	require.Error(t, err)
}

func TestFactoryRegistration(t *testing.T) {
	store, err := storage.New(context.Background(), storage.Config{
		Provider: storage.ProviderLocal,
		Root:     t.TempDir(),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, storage.ProviderLocal, store.Provider())
}
