// Package domain defines the core business entities for lectern.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: Raw text loaded from a source file
//   - Chunk: A retrievable slice of a document
//   - EmbeddingRecord: A chunk's vector as stored in the index
//   - ScoredChunk / AnswerResult: Retrieval and generation outputs
//   - IngestionReport: The outcome of one ingestion run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
