package driven

import (
	"context"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
)

// ManifestStore persists the ingestion manifest: one entry per source
// recording the content hash it was last ingested with. The manifest
// backs the dedup check - re-ingesting an unchanged source is a no-op
// unless forced.
type ManifestStore interface {
	// Get returns the manifest entry for a source, or
	// domain.ErrNotFound if the source has never been ingested.
	Get(ctx context.Context, sourceID string) (*domain.ManifestEntry, error)

	// Put inserts or replaces the entry for its source ID.
	Put(ctx context.Context, entry domain.ManifestEntry) error

	// Delete removes the entry for a source.
	Delete(ctx context.Context, sourceID string) error

	// List returns all manifest entries ordered by path.
	List(ctx context.Context) ([]domain.ManifestEntry, error)
}

// ChunkStore persists chunk texts so retrieval can hydrate vector hits
// back into readable context.
type ChunkStore interface {
	// SaveChunks replaces the stored chunks for a source.
	SaveChunks(ctx context.Context, sourceID string, chunks []domain.Chunk) error

	// ChunksByIDs returns the chunks for the given IDs. Missing IDs
	// are skipped, not errors; callers detect gaps by length.
	ChunksByIDs(ctx context.Context, ids []string) ([]domain.Chunk, error)

	// DeleteBySource removes all chunks belonging to a source.
	DeleteBySource(ctx context.Context, sourceID string) error
}
