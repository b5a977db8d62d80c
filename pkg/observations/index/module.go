package index

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/panoptes/panoptes-data-go/pkg/logging"
	"github.com/panoptes/panoptes-data-go/pkg/storage"
)

// ConfigKey is the root configuration key (in Viper) for this module.
var ConfigKey = "index"

const (
	// DefaultBucket holds the public observations index.
	DefaultBucket = "panoptes-exp.appspot.com"

	// DefaultKey is the object key of the index CSV inside the bucket.
	DefaultKey = "observations.csv"
)

// Config locates the observations index. The index lives in its own
// bucket, separate from the image store.
type Config struct {
	Storage storage.Config `mapstructure:",squash"`
	Key     string         `mapstructure:"key"`
}

// SetDefaults registers the public PANOPTES index location on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(ConfigKey+".provider", string(storage.ProviderGCS))
	v.SetDefault(ConfigKey+".bucket", DefaultBucket)
	v.SetDefault(ConfigKey+".key", DefaultKey)
}

// NewConfigFromViper reads the index configuration from the "index" key.
func NewConfigFromViper(v *viper.Viper) (Config, error) {
	config := Config{}
	if err := v.UnmarshalKey(ConfigKey, &config); err != nil {
		return config, fmt.Errorf("error reading index configuration: %w", err)
	}
	if config.Key == "" {
		config.Key = DefaultKey
	}
	return config, nil
}

// ProvideProvider is the fx provider for the observations index. The
// index store is built from its own configuration section so that the
// index bucket and the image bucket can differ.
func ProvideProvider(v *viper.Viper, logger logging.Interface) (Provider, error) {
	config, err := NewConfigFromViper(v)
	if err != nil {
		return nil, err
	}

	store, err := storage.New(context.Background(), config.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create index store: %w", err)
	}

	logger.WithField("bucket", config.Storage.Bucket).
		WithField("key", config.Key).
		Debug("Observations index initialized")

	return NewCSVProvider(store, config.Key, logger), nil
}

// Module provides the configured index Provider to the application.
var Module fx.Option = fx.Provide(ProvideProvider)
