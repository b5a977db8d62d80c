// Package index loads and searches the observations metadata index: the
// table describing every known observation sequence.
package index

import (
	"context"

	"github.com/panoptes/panoptes-data-go/pkg/observations"
)

// Provider supplies a snapshot of the metadata index. The index is owned
// upstream and treated as read-only; it is loaded once per process
// invocation.
type Provider interface {
	Load(ctx context.Context) ([]observations.Record, error)
}

// MemoryProvider serves a fixed set of records. Tests and offline tooling
// use it in place of the remote index.
type MemoryProvider struct {
	Records []observations.Record
}

// NewMemoryProvider creates a provider over the given records.
func NewMemoryProvider(records []observations.Record) *MemoryProvider {
	return &MemoryProvider{Records: records}
}

// Load returns the records as given.
func (p *MemoryProvider) Load(ctx context.Context) ([]observations.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.Records, nil
}

// FindBySequenceID eagerly looks up one record. A missing sequence id is a
// *NotFoundError, unlike the lazy accessor-construction path.
func FindBySequenceID(ctx context.Context, provider Provider, sequenceID string) (*observations.Record, error) {
	records, err := provider.Load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].SequenceID == sequenceID {
			record := records[i]
			return &record, nil
		}
	}

	return nil, &observations.NotFoundError{SequenceID: sequenceID}
}
