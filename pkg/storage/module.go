package storage

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/panoptes/panoptes-data-go/pkg/logging"
)

// ConfigKey is the root configuration key (in Viper) for this module.
var ConfigKey = "storage"

// NewConfigFromViper reads the storage configuration from the "storage" key.
func NewConfigFromViper(v *viper.Viper) (Config, error) {
	config := Config{}
	if err := v.UnmarshalKey(ConfigKey, &config); err != nil {
		return config, fmt.Errorf("error reading storage configuration: %w", err)
	}
	return config, nil
}

// ProvideObjectStore is the fx provider for the object store selected by the
// viper configuration.
func ProvideObjectStore(v *viper.Viper, logger logging.Interface) (ObjectStore, error) {
	config, err := NewConfigFromViper(v)
	if err != nil {
		return nil, err
	}

	store, err := New(context.Background(), config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage provider %s: %w", config.Provider, err)
	}

	logger.WithField("provider", config.Provider).
		WithField("bucket", config.Bucket).
		Info("Object store initialized")

	return store, nil
}

// Module provides the configured ObjectStore to the application.
var Module fx.Option = fx.Provide(ProvideObjectStore)
