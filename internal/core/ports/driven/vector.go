package driven

import (
	"context"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
)

// VectorIndex persists chunk embeddings and answers similarity queries.
// It is the sole persistence boundary for vectors: the pipeline writes
// EmbeddingRecords and never inspects the on-disk layout.
type VectorIndex interface {
	// Upsert inserts or overwrites the record for its chunk ID.
	// Idempotent: re-upserting the same chunk ID replaces the vector
	// and metadata.
	Upsert(ctx context.Context, record domain.EmbeddingRecord) error

	// Exists reports whether a vector is stored for the chunk ID.
	Exists(ctx context.Context, chunkID string) (bool, error)

	// Search returns the k most similar chunks to the query vector,
	// ordered by descending similarity, ties broken by chunk ID
	// ascending. Fewer than k hits are returned when the index is
	// smaller than k.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// DeleteBySource removes all vectors belonging to a source.
	// Used to evict stale chunks before a forced re-ingestion.
	DeleteBySource(ctx context.Context, sourceID string) error

	// Count returns the number of stored vectors.
	Count(ctx context.Context) (int, error)

	// Meta returns the embedding model pinned to this index, or
	// domain.ErrNotFound if the index has never been written.
	Meta(ctx context.Context) (*domain.IndexMeta, error)

	// SetMeta pins the embedding model for this index.
	SetMeta(ctx context.Context, meta domain.IndexMeta) error

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
