package domain

import "time"

// ManifestEntry records the last ingested state of one source file.
// The manifest backs the dedup check: re-ingesting a source whose
// content hash is unchanged is a no-op unless forced.
type ManifestEntry struct {
	// SourceID is the stable source identity.
	SourceID string

	// Path is the resolved absolute path at last ingestion.
	Path string

	// ContentHash is the content hash at last ingestion.
	ContentHash string

	// Format is the detected file format.
	Format string

	// ChunkCount is how many chunks the source produced.
	ChunkCount int

	// Size is the file size in bytes at last ingestion.
	Size int64

	// ModTime is the file modification time at last ingestion.
	ModTime time.Time

	// IngestedAt is when the source was last ingested.
	IngestedAt time.Time
}

// IndexMeta pins the embedding model an index was built with.
// Retrieval against an index built with a different model is a
// configuration error, detected before any network call.
type IndexMeta struct {
	// EmbeddingModel is the model name used at ingestion.
	EmbeddingModel string

	// Dimensions is the vector dimensionality of that model.
	Dimensions int

	// CreatedAt is when the index was first written.
	CreatedAt time.Time
}
