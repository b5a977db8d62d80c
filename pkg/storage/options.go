package storage

import "github.com/spf13/afero"

// DownloadOption configures download operations.
type DownloadOption func(*DownloadOptions)

// ListOption configures list operations.
type ListOption func(*ListOptions)

// BulkOption configures bulk operations.
type BulkOption func(*BulkOptions)

// DownloadOptions contains configuration for download operations.
type DownloadOptions struct {
	// SkipExisting leaves files that already exist at the target path
	// untouched instead of fetching them again.
	SkipExisting bool

	// Overwrite re-fetches objects even when a local copy exists. Takes
	// precedence over SkipExisting.
	Overwrite bool
}

// ListOptions contains configuration for list operations.
type ListOptions struct {
	MaxResults int
}

// BulkOptions contains configuration for bulk download operations.
type BulkOptions struct {
	Concurrency int
	Retry       RetryConfig
	Download    DownloadOptions

	// TargetFs is the filesystem holding the download targets. The
	// skip-existing check runs against it, so it must match where the
	// store writes.
	TargetFs afero.Fs

	// ProgressCallback is invoked after each item completes, with the
	// number of completed items, the total, and the item result.
	ProgressCallback func(completed, total int, result *BulkResult)
}

// DefaultDownloadOptions returns default download options.
func DefaultDownloadOptions() DownloadOptions {
	return DownloadOptions{
		SkipExisting: true,
	}
}

// DefaultListOptions returns default list options.
func DefaultListOptions() ListOptions {
	return ListOptions{
		MaxResults: 1000,
	}
}

// DefaultBulkOptions returns default bulk options.
func DefaultBulkOptions() BulkOptions {
	return BulkOptions{
		Concurrency: 4,
		Retry:       DefaultRetryConfig(),
		Download:    DefaultDownloadOptions(),
		TargetFs:    afero.NewOsFs(),
	}
}

// WithSkipExisting skips objects that already exist locally.
func WithSkipExisting(skip bool) DownloadOption {
	return func(o *DownloadOptions) {
		o.SkipExisting = skip
	}
}

// WithOverwrite re-fetches objects even when a local copy exists.
func WithOverwrite(overwrite bool) DownloadOption {
	return func(o *DownloadOptions) {
		o.Overwrite = overwrite
	}
}

// WithMaxResults caps the number of listed objects.
func WithMaxResults(max int) ListOption {
	return func(o *ListOptions) {
		o.MaxResults = max
	}
}

// WithConcurrency sets the worker count for bulk downloads.
func WithConcurrency(n int) BulkOption {
	return func(o *BulkOptions) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}

// WithRetryConfig sets the per-object retry policy for bulk downloads.
func WithRetryConfig(cfg RetryConfig) BulkOption {
	return func(o *BulkOptions) {
		o.Retry = cfg
	}
}

// WithBulkDownloadOptions sets the per-object download options for bulk
// downloads.
func WithBulkDownloadOptions(d DownloadOptions) BulkOption {
	return func(o *BulkOptions) {
		o.Download = d
	}
}

// WithTargetFs sets the filesystem the skip-existing check runs against.
func WithTargetFs(fs afero.Fs) BulkOption {
	return func(o *BulkOptions) {
		if fs != nil {
			o.TargetFs = fs
		}
	}
}

// WithProgressCallback sets the per-item completion callback.
func WithProgressCallback(cb func(completed, total int, result *BulkResult)) BulkOption {
	return func(o *BulkOptions) {
		o.ProgressCallback = cb
	}
}

// BuildDownloadOptions applies download options over the defaults.
func BuildDownloadOptions(opts ...DownloadOption) DownloadOptions {
	options := DefaultDownloadOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// BuildListOptions applies list options over the defaults.
func BuildListOptions(opts ...ListOption) ListOptions {
	options := DefaultListOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// BuildBulkOptions applies bulk options over the defaults.
func BuildBulkOptions(opts ...BulkOption) BulkOptions {
	options := DefaultBulkOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
