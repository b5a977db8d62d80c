package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/panoptes/panoptes-data-go/pkg/logging"
)

// CreateFunc constructs an ObjectStore for one provider.
type CreateFunc func(ctx context.Context, config Config, logger logging.Interface) (ObjectStore, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[Provider]CreateFunc)
)

// Register makes a provider available to New. Called from the provider
// package's init.
func Register(provider Provider, create CreateFunc) error {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[provider]; exists {
		return fmt.Errorf("storage provider already registered: %s", provider)
	}
	registry[provider] = create
	return nil
}

// MustRegister is like Register but panics on a duplicate registration.
func MustRegister(provider Provider, create CreateFunc) {
	if err := Register(provider, create); err != nil {
		panic(err)
	}
}

// SupportedProviders returns the registered provider names.
func SupportedProviders() []Provider {
	registryMu.RLock()
	defer registryMu.RUnlock()

	providers := make([]Provider, 0, len(registry))
	for p := range registry {
		providers = append(providers, p)
	}
	return providers
}

// New creates an object store from the given configuration.
func New(ctx context.Context, config Config, logger logging.Interface) (ObjectStore, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	registryMu.RLock()
	create, exists := registry[config.Provider]
	registryMu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: unsupported storage provider %q", ErrInvalidConfig, config.Provider)
	}

	return create(ctx, config, logger)
}
