package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driven"
)

// vectorIndex implements driven.VectorIndex over the embeddings table.
// Vectors are stored as little-endian float32 blobs.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Upsert stores or replaces the embedding for a chunk.
func (s *vectorIndex) Upsert(ctx context.Context, record domain.EmbeddingRecord) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO embeddings (chunk_id, vector, source_id, format, chunk_index)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			vector = excluded.vector,
			source_id = excluded.source_id,
			format = excluded.format,
			chunk_index = excluded.chunk_index
	`, record.ChunkID, float32SliceToBytes(record.Vector),
		record.Metadata.SourceID, record.Metadata.Format, record.Metadata.ChunkIndex)

	if err != nil {
		return fmt.Errorf("saving embedding: %w", err)
	}
	return nil
}

// Exists reports whether a vector is stored for the chunk ID.
func (s *vectorIndex) Exists(ctx context.Context, chunkID string) (bool, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM embeddings WHERE chunk_id = ?", chunkID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking embedding: %w", err)
	}
	return count > 0, nil
}

// Search scores every stored vector against the query with cosine
// similarity and ranks in memory. Ordering matches the in-memory
// index: descending similarity, ties broken by chunk ID ascending.
func (s *vectorIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := s.store.db.QueryContext(ctx, "SELECT chunk_id, vector FROM embeddings")
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunkID string
		var blob []byte
		if err := rows.Scan(&chunkID, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:    chunkID,
			Similarity: domain.CosineSimilarity(query, bytesToFloat32Slice(blob)),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// DeleteBySource removes all vectors belonging to a source.
func (s *vectorIndex) DeleteBySource(ctx context.Context, sourceID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM embeddings WHERE source_id = ?", sourceID)
	if err != nil {
		return fmt.Errorf("deleting embeddings: %w", err)
	}
	return nil
}

// Count returns the number of stored vectors.
func (s *vectorIndex) Count(ctx context.Context) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting embeddings: %w", err)
	}
	return count, nil
}

// Meta returns the embedding model pinned to this index.
func (s *vectorIndex) Meta(ctx context.Context) (*domain.IndexMeta, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT embedding_model, dimensions, created_at
		FROM index_meta WHERE id = 1
	`)

	var meta domain.IndexMeta
	var createdAt sql.NullTime
	if err := row.Scan(&meta.EmbeddingModel, &meta.Dimensions, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning index metadata: %w", err)
	}

	if createdAt.Valid {
		meta.CreatedAt = createdAt.Time
	}

	return &meta, nil
}

// SetMeta pins the embedding model for this index. The table holds a
// single row.
func (s *vectorIndex) SetMeta(ctx context.Context, meta domain.IndexMeta) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO index_meta (id, embedding_model, dimensions, created_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			embedding_model = excluded.embedding_model,
			dimensions = excluded.dimensions,
			created_at = excluded.created_at
	`, meta.EmbeddingModel, meta.Dimensions, meta.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving index metadata: %w", err)
	}
	return nil
}

// Close is a no-op; the owning Store closes the shared connection.
func (s *vectorIndex) Close() error {
	return nil
}
