package observations

import (
	"context"
	"path"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/panoptes/panoptes-data-go/pkg/logging"
	"github.com/panoptes/panoptes-data-go/pkg/storage"
)

// Accessor is a handle bound to exactly one observation sequence. It wraps
// the sequence's metadata row, when one is available, and fetches the
// sequence's image files from the object store.
type Accessor struct {
	sequenceID SequenceID
	record     *Record
	meta       map[string]string

	store  storage.ObjectStore
	logger logging.Interface
}

// NewAccessor creates an accessor with eager metadata from a previously
// retrieved record.
func NewAccessor(record *Record, store storage.ObjectStore, logger logging.Interface) (*Accessor, error) {
	if record == nil {
		return nil, errors.New("nil record")
	}

	seqID, err := record.ParsedSequenceID()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Accessor{
		sequenceID: seqID,
		record:     record,
		meta:       record.Meta(),
		store:      store,
		logger:     logger,
	}, nil
}

// NewAccessorFromSequenceID creates an accessor from a bare sequence id.
// Its meta is an empty (non-nil) map, signaling "metadata not yet fetched"
// as distinct from "fetched and confirmed empty".
func NewAccessorFromSequenceID(sequenceID string, store storage.ObjectStore, logger logging.Interface) (*Accessor, error) {
	seqID, err := ParseSequenceID(sequenceID)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Accessor{
		sequenceID: seqID,
		meta:       map[string]string{},
		store:      store,
		logger:     logger,
	}, nil
}

// SequenceID returns the canonical sequence id string.
func (a *Accessor) SequenceID() string {
	return a.sequenceID.String()
}

// Record returns the wrapped metadata record, or nil when the accessor was
// constructed from a bare sequence id.
func (a *Accessor) Record() *Record {
	return a.record
}

// Meta returns the metadata mapping. It is never nil; it is empty when no
// index lookup was performed.
func (a *Accessor) Meta() map[string]string {
	return a.meta
}

// DownloadImagesOption configures DownloadImages.
type DownloadImagesOption func(*downloadImagesOptions)

type downloadImagesOptions struct {
	overwrite   bool
	concurrency int
	progress    func(completed, total int, key string)
}

// WithOverwrite re-fetches files that already exist in the destination.
func WithOverwrite(overwrite bool) DownloadImagesOption {
	return func(o *downloadImagesOptions) {
		o.overwrite = overwrite
	}
}

// WithConcurrency bounds the number of parallel object fetches.
func WithConcurrency(n int) DownloadImagesOption {
	return func(o *downloadImagesOptions) {
		o.concurrency = n
	}
}

// WithProgress reports each completed object.
func WithProgress(progress func(completed, total int, key string)) DownloadImagesOption {
	return func(o *downloadImagesOptions) {
		o.progress = progress
	}
}

// DownloadImages fetches every object under this sequence's prefix into
// destDir, creating it as needed. Files already present are skipped unless
// overwrite is requested.
//
// The returned paths are the files written or already present, in the
// store's enumeration order. Failures do not abort the batch: every object
// is attempted (with per-object retries), completed files are kept, and a
// single *DownloadError naming the failed keys is returned at the end.
// Downloading never mutates the accessor's meta.
func (a *Accessor) DownloadImages(ctx context.Context, destDir string, opts ...DownloadImagesOption) ([]string, error) {
	options := &downloadImagesOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if destDir == "" {
		destDir = a.sequenceID.String()
	}

	prefix := a.sequenceID.Prefix()
	objects, err := a.store.List(ctx, prefix)
	if err != nil {
		return nil, errors.Wrapf(err, "listing images for %s", a.sequenceID)
	}

	a.logger.WithField("sequence_id", a.sequenceID.String()).
		WithField("num_objects", len(objects)).
		Info("Downloading observation images")

	if len(objects) == 0 {
		return []string{}, nil
	}

	items := make([]storage.BulkItem, len(objects))
	for i, obj := range objects {
		items[i] = storage.BulkItem{
			Key:    obj.Key,
			Target: filepath.Join(destDir, path.Base(obj.Key)),
		}
	}

	bulkOpts := []storage.BulkOption{
		storage.WithBulkDownloadOptions(storage.DownloadOptions{
			SkipExisting: !options.overwrite,
			Overwrite:    options.overwrite,
		}),
	}
	if options.concurrency > 0 {
		bulkOpts = append(bulkOpts, storage.WithConcurrency(options.concurrency))
	}
	if options.progress != nil {
		bulkOpts = append(bulkOpts, storage.WithProgressCallback(
			func(completed, total int, result *storage.BulkResult) {
				options.progress(completed, total, result.Key)
			}))
	}

	results := storage.BulkDownload(ctx, a.store, items, bulkOpts...)

	paths := make([]string, 0, len(results))
	failed := make(map[string]error)
	for _, result := range results {
		if result.Err != nil {
			a.logger.WithField("key", result.Key).
				WithError(result.Err).
				Warn("Image download failed")
			failed[result.Key] = result.Err
			continue
		}
		paths = append(paths, result.TargetPath)
	}

	return paths, NewDownloadError(failed)
}
