package gcs

import (
	"context"

	"github.com/panoptes/panoptes-data-go/pkg/logging"
	"github.com/panoptes/panoptes-data-go/pkg/storage"
)

func init() {
	storage.MustRegister(storage.ProviderGCS, func(ctx context.Context, config storage.Config, logger logging.Interface) (storage.ObjectStore, error) {
		return New(ctx, config, logger)
	})
}
