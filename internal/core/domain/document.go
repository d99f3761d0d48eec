package domain

// Document represents the raw text of a single source file.
// It is created by a loader at ingestion time, never mutated, and
// discarded once its chunks have been derived and persisted.
type Document struct {
	// SourceID is the stable identity of the source, derived from
	// the resolved absolute path.
	SourceID string

	// Path is the resolved absolute path the document was loaded from.
	Path string

	// RawText is the full extracted text content.
	RawText string

	// Format is the detected file format ("txt", "md", "html", "docx").
	Format string

	// ContentHash is the SHA-256 hex digest of the raw file bytes,
	// used for duplicate detection across ingestion runs. Hashing the
	// bytes rather than RawText keeps dedup independent of how a
	// format's text extraction evolves.
	ContentHash string
}

// Chunk is a contiguous, bounded-length slice of a document's text.
// It is the unit of retrieval: chunks are embedded, indexed, and
// returned as grounding context for answers.
type Chunk struct {
	// ID is derived deterministically from (SourceID, StartOffset),
	// so re-chunking unchanged text with unchanged settings yields
	// identical IDs.
	ID string

	// SourceID links back to the originating document.
	SourceID string

	// Text is the chunk's content.
	Text string

	// StartOffset and EndOffset delimit the chunk within the source
	// text as byte offsets: [StartOffset, EndOffset).
	StartOffset int
	EndOffset   int

	// Index is the ordinal position of the chunk within its document.
	Index int

	// ContentHash is the content hash of the originating document at
	// the time the chunk was produced.
	ContentHash string
}

// Excerpt returns up to maxLen bytes of the chunk text, with an
// ellipsis when truncated. Used for citation listings.
func (c Chunk) Excerpt(maxLen int) string {
	if maxLen <= 0 || len(c.Text) <= maxLen {
		return c.Text
	}
	return c.Text[:maxLen] + "..."
}

// VectorMetadata is the per-chunk metadata stored alongside a vector.
type VectorMetadata struct {
	// SourceID is the originating document's identity.
	SourceID string

	// Format is the originating document's format.
	Format string

	// ChunkIndex is the chunk's ordinal position in its document.
	ChunkIndex int
}

// EmbeddingRecord pairs a chunk with its embedding vector.
// Records are owned exclusively by the vector index; the pipeline
// writes them but never reads raw vectors back.
type EmbeddingRecord struct {
	// ChunkID identifies the embedded chunk.
	ChunkID string

	// Vector is the embedding, with dimensionality fixed by the
	// embedding model pinned to the index.
	Vector []float32

	// Metadata carries the retrievable chunk attributes.
	Metadata VectorMetadata
}
