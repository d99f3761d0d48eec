package driven

import "github.com/custodia-labs/lectern-cli/internal/core/domain"

// Chunker splits a document's raw text into overlapping chunks.
// Implementations must be deterministic: identical (source, text,
// settings) must reproduce identical chunk IDs across runs, because
// dedup and stale-chunk eviction key on those IDs.
type Chunker interface {
	// Chunk splits the document into ordered chunks. Empty text
	// yields no chunks; text shorter than the chunk size yields
	// exactly one chunk spanning the whole text.
	Chunk(doc *domain.Document) []domain.Chunk

	// Size returns the configured chunk length in characters.
	Size() int

	// Overlap returns the configured overlap between consecutive chunks.
	Overlap() int
}
