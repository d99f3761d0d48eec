package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory implementation of driven.VectorIndex
// using exact cosine similarity over all stored vectors.
type VectorIndex struct {
	mu      sync.RWMutex
	records map[string]domain.EmbeddingRecord
	meta    *domain.IndexMeta
}

// NewVectorIndex creates a new in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		records: make(map[string]domain.EmbeddingRecord),
	}
}

// Upsert inserts or overwrites the record for its chunk ID.
func (v *VectorIndex) Upsert(_ context.Context, record domain.EmbeddingRecord) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	vector := make([]float32, len(record.Vector))
	copy(vector, record.Vector)
	record.Vector = vector
	v.records[record.ChunkID] = record
	return nil
}

// Exists reports whether a vector is stored for the chunk ID.
func (v *VectorIndex) Exists(_ context.Context, chunkID string) (bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.records[chunkID]
	return ok, nil
}

// Search returns the k most similar chunks to the query vector,
// ordered by descending similarity, ties broken by chunk ID ascending.
func (v *VectorIndex) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(v.records))
	for id, record := range v.records {
		hits = append(hits, driven.VectorHit{
			ChunkID:    id,
			Similarity: domain.CosineSimilarity(query, record.Vector),
		})
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
func (v *VectorIndex) DeleteBySource(_ context.Context, sourceID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for id, record := range v.records {
		if record.Metadata.SourceID == sourceID {
			delete(v.records, id)
		}
	}
	return nil
}

// Count returns the number of stored vectors.
func (v *VectorIndex) Count(_ context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.records), nil
}

// Meta returns the pinned embedding model, or domain.ErrNotFound if
// the index has never been written.
func (v *VectorIndex) Meta(_ context.Context) (*domain.IndexMeta, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.meta == nil {
		return nil, domain.ErrNotFound
	}
	meta := *v.meta
	return &meta, nil
}

// SetMeta pins the embedding model for this index.
func (v *VectorIndex) SetMeta(_ context.Context, meta domain.IndexMeta) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.meta = &meta
	return nil
}

// Close releases resources (no-op for memory index).
func (v *VectorIndex) Close() error {
	return nil
}
