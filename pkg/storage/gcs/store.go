// Package gcs implements an ObjectStore over a public Google Cloud Storage
// bucket using the JSON API. The PANOPTES image buckets are world-readable,
// so the client runs unauthenticated.
package gcs

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"google.golang.org/api/option"
	gstorage "google.golang.org/api/storage/v1"

	"github.com/panoptes/panoptes-data-go/pkg/logging"
	"github.com/panoptes/panoptes-data-go/pkg/storage"
)

const providerName = string(storage.ProviderGCS)

// Store is an object store over one GCS bucket.
type Store struct {
	bucket   string
	objects  *gstorage.ObjectsService
	targetFs afero.Fs
	logger   logging.Interface
}

var _ storage.ObjectStore = (*Store)(nil)

// New creates a GCS store for the configured bucket.
func New(ctx context.Context, config storage.Config, logger logging.Interface) (*Store, error) {
	if config.Bucket == "" {
		return nil, storage.NewError("init", "", providerName, storage.ErrInvalidConfig)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	opts := []option.ClientOption{option.WithoutAuthentication()}
	if config.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(config.Endpoint))
	}

	svc, err := gstorage.NewService(ctx, opts...)
	if err != nil {
		return nil, storage.NewError("init", "", providerName, err)
	}

	logger.WithField("provider", providerName).
		WithField("bucket", config.Bucket).
		Debug("GCS store initialized")

	return &Store{
		bucket:   config.Bucket,
		objects:  svc.Objects,
		targetFs: afero.NewOsFs(),
		logger:   logger,
	}, nil
}

// Provider returns the backend type.
func (s *Store) Provider() storage.Provider {
	return storage.ProviderGCS
}

// List enumerates the bucket's objects under the prefix, following the
// API's pagination. GCS lists objects in lexicographic key order, which
// keeps repeated enumerations stable.
func (s *Store) List(ctx context.Context, prefix string, opts ...storage.ListOption) ([]storage.ObjectInfo, error) {
	options := storage.BuildListOptions(opts...)

	var objects []storage.ObjectInfo
	call := s.objects.List(s.bucket).Prefix(prefix).Context(ctx)
	err := call.Pages(ctx, func(page *gstorage.Objects) error {
		for _, obj := range page.Items {
			objects = append(objects, toObjectInfo(obj))
			if options.MaxResults > 0 && len(objects) >= options.MaxResults {
				return errStopPagination
			}
		}
		return nil
	})
	if err != nil && err != errStopPagination {
		return nil, storage.NewError("list", prefix, providerName, classifyError(err))
	}

	return objects, nil
}

// Get opens the named object for reading.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.objects.Get(s.bucket, key).Context(ctx).Download()
	if err != nil {
		return nil, storage.NewError("get", key, providerName, classifyError(err))
	}
	return resp.Body, nil
}

// Download copies the named object to the local target path, creating
// parent directories as needed.
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
		// A torn write must not satisfy a later skip-existing check.
		_ = out.Close()
		_ = s.targetFs.Remove(target)
		return storage.NewError("download", key, providerName, classifyError(err))
	}
	return nil
}

// Exists reports whether the named object exists.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Stat(ctx, key)
	if err != nil {
		if storage.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Stat returns metadata for the named object.
func (s *Store) Stat(ctx context.Context, key string) (*storage.Metadata, error) {
	obj, err := s.objects.Get(s.bucket, key).Context(ctx).Do()
	if err != nil {
		return nil, storage.NewError("stat", key, providerName, classifyError(err))
	}

	return &storage.Metadata{
		Key:          obj.Name,
		Size:         int64(obj.Size),
		ContentType:  obj.ContentType,
		ETag:         obj.Etag,
		LastModified: parseUpdated(obj.Updated),
		MD5:          obj.Md5Hash,
	}, nil
}

func toObjectInfo(obj *gstorage.Object) storage.ObjectInfo {
	return storage.ObjectInfo{
		Key:          obj.Name,
		Size:         int64(obj.Size),
		LastModified: parseUpdated(obj.Updated),
		ETag:         obj.Etag,
		ContentType:  obj.ContentType,
	}
}

func parseUpdated(updated string) time.Time {
	t, err := time.Parse(time.RFC3339, updated)
	if err != nil {
		return time.Time{}
	}
	return t
}
