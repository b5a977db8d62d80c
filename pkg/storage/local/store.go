// Package local implements an ObjectStore over a directory tree. It backs
// test fixtures and offline mirrors of the image bucket.
package local

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/panoptes/panoptes-data-go/pkg/logging"
	"github.com/panoptes/panoptes-data-go/pkg/storage"
)

const providerName = string(storage.ProviderLocal)

// Store is a directory-backed object store. Keys are slash-separated paths
// relative to the root.
type Store struct {
	fs       afero.Fs
	targetFs afero.Fs
	logger   logging.Interface
}

var _ storage.ObjectStore = (*Store)(nil)

// New creates a local store rooted at config.Root.
func New(config storage.Config, logger logging.Interface) (*Store, error) {
	if config.Root == "" {
		return nil, storage.NewError("init", "", providerName, storage.ErrInvalidConfig)
	}

	base := afero.NewBasePathFs(afero.NewOsFs(), config.Root)
	return NewWithFs(base, logger), nil
}

// NewWithFs creates a local store over an arbitrary afero filesystem. Tests
// use this with an in-memory fs.
func NewWithFs(fs afero.Fs, logger logging.Interface) *Store {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Store{
		fs:       fs,
		targetFs: afero.NewOsFs(),
		logger:   logger,
	}
}

// Provider returns the backend type.
func (s *Store) Provider() storage.Provider {
	return storage.ProviderLocal
}

// List returns every file under the prefix, sorted by key so enumeration
// order is stable.
func (s *Store) List(ctx context.Context, prefix string, opts ...storage.ListOption) ([]storage.ObjectInfo, error) {
	options := storage.BuildListOptions(opts...)

	var objects []storage.ObjectInfo
	err := afero.Walk(s.fs, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if info.IsDir() {
			return nil
		}

		key := strings.TrimPrefix(filepath.ToSlash(p), "/")
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		objects = append(objects, storage.ObjectInfo{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, storage.NewError("list", prefix, providerName, err)
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })

	if options.MaxResults > 0 && len(objects) > options.MaxResults {
		objects = objects[:options.MaxResults]
	}
	return objects, nil
}

// Get opens the named object for reading.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.fs.Open(key)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.NewError("get", key, providerName, storage.ErrNotFound)
		}
		return nil, storage.NewError("get", key, providerName, err)
	}
	return f, nil
}

// Download copies the named object to the local target path.
func (s *Store) Download(ctx context.Context, key string, target string, opts ...storage.DownloadOption) error {
	options := storage.BuildDownloadOptions(opts...)

	if options.SkipExisting && !options.Overwrite {
		if ok, _ := afero.Exists(s.targetFs, target); ok {
			return nil
		}
	}

	reader, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	if err := s.targetFs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return storage.NewError("download", key, providerName, err)
	}

	out, err := s.targetFs.Create(target)
	if err != nil {
		return storage.NewError("download", key, providerName, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, reader); err != nil {
		return storage.NewError("download", key, providerName, err)
	}
	return nil
}

// Exists reports whether the named object exists.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	ok, err := afero.Exists(s.fs, key)
	if err != nil {
		return false, storage.NewError("exists", key, providerName, err)
	}
	return ok, nil
}

// Stat returns metadata for the named object.
func (s *Store) Stat(ctx context.Context, key string) (*storage.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := s.fs.Stat(key)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.NewError("stat", key, providerName, storage.ErrNotFound)
		}
		return nil, storage.NewError("stat", key, providerName, err)
	}

	return &storage.Metadata{
		Key:          path.Clean(key),
		Size:         info.Size(),
		LastModified: info.ModTime(),
	}, nil
}
