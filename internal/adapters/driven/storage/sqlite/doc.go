// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - ManifestStore: Per-source ingestion state persistence
//   - ChunkStore: Chunk text persistence for retrieval hydration
//   - VectorIndex: Embedding persistence and similarity search
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Similarity Search
//
// Vectors are stored as little-endian float32 blobs and searched by an
// exact scan: every stored vector is scored with cosine similarity
// against the query vector and ranked in memory.
//
// # Data Location
//
// By default, the database is stored at ~/.lectern/data/lectern.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
