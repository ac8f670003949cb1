package enrich

import (
	"context"

	"metadata-enricher/internal/convert"
	"metadata-enricher/internal/record"
)

// MetadataStore reads and persists the typed attributes of entities.
type MetadataStore interface {
	ReadRecord(ctx context.Context, ref string) (*record.Record, error)
	WriteRecord(ctx context.Context, ref string, rec *record.Record, overwrite bool) error
	TypeRegistryFor(ctx context.Context, ref string) (convert.Registry, error)
	Rename(ctx context.Context, ref, newName string) error
}

// RemoteFetcher retrieves documents from lookup services.
type RemoteFetcher interface {
	FetchJSON(ctx context.Context, url string) (*record.Record, error)
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}
