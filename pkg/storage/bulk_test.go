package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory ObjectStore with failure injection and a fetch
// counter, used to exercise the bulk download machinery.
type fakeStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failures   map[string]int // remaining transient failures per key
	permanent  map[string]error
	fetchCount map[string]int
}

func newFakeStore(objects map[string][]byte) *fakeStore {
	return &fakeStore{
		objects:    objects,
		failures:   make(map[string]int),
		permanent:  make(map[string]error),
		fetchCount: make(map[string]int),
	}
}

func (f *fakeStore) Provider() Provider { return Provider("fake") }

func (f *fakeStore) List(ctx context.Context, prefix string, opts ...ListOption) ([]ObjectInfo, error) {
	return nil, nil
}

func (f *fakeStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetchCount[key]++
	if err, ok := f.permanent[key]; ok {
		return nil, NewError("get", key, "fake", err)
	}
	if f.failures[key] > 0 {
		f.failures[key]--
		return nil, NewError("get", key, "fake", NewRetryableError(io.ErrUnexpectedEOF))
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, NewError("get", key, "fake", ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStore) Download(ctx context.Context, key string, target string, opts ...DownloadOption) error {
	reader, err := f.Get(ctx, key)
	if err != nil {
		return err
	}
	defer reader.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	return os.WriteFile(target, data, 0o644)
}

func (f *fakeStore) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStore) Stat(ctx context.Context, key string) (*Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, NewError("stat", key, "fake", ErrNotFound)
	}
	return &Metadata{Key: key, Size: int64(len(data))}, nil
}

func (f *fakeStore) fetches(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCount[key]
}

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxRetries:     2,
		InitialDelay:   time.Millisecond,
		MaxDelay:       5 * time.Millisecond,
		Multiplier:     1.5,
		RetryableError: IsRetryable,
	}
}

func testItems(dir string, keys ...string) []BulkItem {
	items := make([]BulkItem, len(keys))
	for i, key := range keys {
		items[i] = BulkItem{Key: key, Target: filepath.Join(dir, filepath.Base(key))}
	}
	return items
}

func TestBulkDownloadAll(t *testing.T) {
	store := newFakeStore(map[string][]byte{
		"SEQ123/a.fits.fz": []byte("aaa"),
		"SEQ123/b.fits.fz": []byte("bbb"),
		"SEQ123/c.fits.fz": []byte("ccc"),
	})

	dir := t.TempDir()
	items := testItems(dir, "SEQ123/a.fits.fz", "SEQ123/b.fits.fz", "SEQ123/c.fits.fz")

	results := BulkDownload(context.Background(), store, items, WithRetryConfig(fastRetry()))
	require.Len(t, results, 3)

	for i, result := range results {
		assert.NoError(t, result.Err)
		assert.Equal(t, items[i].Key, result.Key, "results must keep input order")
		assert.FileExists(t, result.TargetPath)
	}
}

func TestBulkDownloadSkipsExisting(t *testing.T) {
	store := newFakeStore(map[string][]byte{"SEQ123/a.fits.fz": []byte("aaa")})

	dir := t.TempDir()
	items := testItems(dir, "SEQ123/a.fits.fz")

	first := BulkDownload(context.Background(), store, items, WithRetryConfig(fastRetry()))
	require.NoError(t, first[0].Err)
	assert.Equal(t, 1, store.fetches("SEQ123/a.fits.fz"))

	second := BulkDownload(context.Background(), store, items, WithRetryConfig(fastRetry()))
	require.NoError(t, second[0].Err)
	assert.True(t, second[0].Skipped)
	assert.Equal(t, 1, store.fetches("SEQ123/a.fits.fz"), "existing file must not be re-fetched")
}

func TestBulkDownloadOverwrite(t *testing.T) {
	store := newFakeStore(map[string][]byte{"SEQ123/a.fits.fz": []byte("aaa")})

	dir := t.TempDir()
	items := testItems(dir, "SEQ123/a.fits.fz")

	BulkDownload(context.Background(), store, items, WithRetryConfig(fastRetry()))
	BulkDownload(context.Background(), store, items,
		WithRetryConfig(fastRetry()),
		WithBulkDownloadOptions(DownloadOptions{Overwrite: true}),
	)

	assert.Equal(t, 2, store.fetches("SEQ123/a.fits.fz"))
}

func TestBulkDownloadTransientFailureRecovers(t *testing.T) {
	store := newFakeStore(map[string][]byte{"SEQ123/a.fits.fz": []byte("aaa")})
	store.failures["SEQ123/a.fits.fz"] = 1

	dir := t.TempDir()
	items := testItems(dir, "SEQ123/a.fits.fz")

	results := BulkDownload(context.Background(), store, items, WithRetryConfig(fastRetry()))
	require.NoError(t, results[0].Err)
	assert.Equal(t, 2, results[0].RetryAttempts)
	assert.FileExists(t, results[0].TargetPath)
}

func TestBulkDownloadPermanentFailureDoesNotAbortBatch(t *testing.T) {
	store := newFakeStore(map[string][]byte{
		"SEQ123/a.fits.fz": []byte("aaa"),
		"SEQ123/c.fits.fz": []byte("ccc"),
	})
	store.permanent["SEQ123/b.fits.fz"] = ErrNotFound

	dir := t.TempDir()
	items := testItems(dir, "SEQ123/a.fits.fz", "SEQ123/b.fits.fz", "SEQ123/c.fits.fz")

	results := BulkDownload(context.Background(), store, items, WithRetryConfig(fastRetry()))
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.True(t, IsNotFound(results[1].Err))
	assert.NoError(t, results[2].Err)

	// The not-found key fails without retries.
	assert.Equal(t, 1, store.fetches("SEQ123/b.fits.fz"))

	assert.FileExists(t, results[0].TargetPath)
	assert.NoFileExists(t, results[1].TargetPath)
	assert.FileExists(t, results[2].TargetPath)
}

func TestBulkDownloadCancellation(t *testing.T) {
	objects := make(map[string][]byte)
	var keys []string
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		key := "SEQ123/" + name + ".fits.fz"
		objects[key] = []byte(name)
		keys = append(keys, key)
	}
	store := newFakeStore(objects)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	results := BulkDownload(ctx, store, testItems(dir, keys...),
		WithRetryConfig(fastRetry()), WithConcurrency(1))
	require.Len(t, results, len(keys))

	for _, result := range results {
		assert.ErrorIs(t, result.Err, context.Canceled)
	}
}

func TestBulkDownloadProgressCallback(t *testing.T) {
	store := newFakeStore(map[string][]byte{
		"SEQ123/a.fits.fz": []byte("aaa"),
		"SEQ123/b.fits.fz": []byte("bbb"),
	})

	dir := t.TempDir()
	var calls int
	BulkDownload(context.Background(), store, testItems(dir, "SEQ123/a.fits.fz", "SEQ123/b.fits.fz"),
		WithRetryConfig(fastRetry()),
		WithProgressCallback(func(completed, total int, result *BulkResult) {
			calls++
			assert.Equal(t, 2, total)
			assert.NotNil(t, result)
		}),
	)
	assert.Equal(t, 2, calls)
}

func TestBulkDownloadEmpty(t *testing.T) {
	store := newFakeStore(nil)
	assert.Nil(t, BulkDownload(context.Background(), store, nil))
}

func TestBulkDownloadSkipExistingOnTargetFs(t *testing.T) {
	store := newFakeStore(map[string][]byte{"SEQ123/a.fits.fz": []byte("aaa")})

	// The target already exists on the filesystem the store writes to,
	// even though no such path exists on the OS filesystem.
	memFs := afero.NewMemMapFs()
	target := filepath.Join("out", "a.fits.fz")
	require.NoError(t, afero.WriteFile(memFs, target, []byte("aaa"), 0o644))

	results := BulkDownload(context.Background(), store,
		[]BulkItem{{Key: "SEQ123/a.fits.fz", Target: target}},
		WithRetryConfig(fastRetry()),
		WithTargetFs(memFs),
	)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.True(t, results[0].Skipped)
	assert.Equal(t, 0, store.fetches("SEQ123/a.fits.fz"), "file on the target fs must not be re-fetched")
}
