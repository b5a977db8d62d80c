package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
)

// Provider identifies an object store backend.
type Provider string

const (
	// ProviderGCS is a public Google Cloud Storage bucket.
	ProviderGCS Provider = "gcs"
	// ProviderLocal is a directory on the local filesystem, used for
	// fixtures and offline work.
	ProviderLocal Provider = "local"
)

// ObjectStore is the narrow contract this module needs from a remote object
// store: enumerate keys by prefix and fetch single objects.
type ObjectStore interface {
	// Provider returns the backend type.
	Provider() Provider

	// List returns the objects whose keys start with prefix, in the
	// store's enumeration order.
	List(ctx context.Context, prefix string, opts ...ListOption) ([]ObjectInfo, error)

	// Get opens the named object for reading.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Download copies the named object to the local target path, creating
	// parent directories as needed.
	Download(ctx context.Context, key string, target string, opts ...DownloadOption) error

	// Exists reports whether the named object exists.
	Exists(ctx context.Context, key string) (bool, error)

	// Stat returns metadata for the named object.
	Stat(ctx context.Context, key string) (*Metadata, error)
}

// ObjectInfo describes one listed object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
	ContentType  string
}

// Metadata contains detailed metadata about a single object.
type Metadata struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
	MD5          string
}

// Config selects and configures an object store backend. Backend-specific
// requirements (a bucket for gcs, a root directory for local) are checked
// by the provider itself.
type Config struct {
	Provider Provider `mapstructure:"provider" validate:"required"`

	// Bucket is the GCS bucket name. Required for the gcs provider.
	Bucket string `mapstructure:"bucket"`

	// Root is the base directory for the local provider.
	Root string `mapstructure:"root"`

	// Endpoint overrides the service endpoint, for testing against a
	// fake server.
	Endpoint string `mapstructure:"endpoint"`
}

// Validate checks the configuration against its struct tags.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
