package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
type ChunkStore struct {
	mu       sync.RWMutex
	bySource map[string][]domain.Chunk
	byID     map[string]domain.Chunk
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		bySource: make(map[string][]domain.Chunk),
		byID:     make(map[string]domain.Chunk),
	}
}

// SaveChunks replaces the stored chunks for a source.
func (s *ChunkStore) SaveChunks(_ context.Context, sourceID string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chunk := range s.bySource[sourceID] {
		delete(s.byID, chunk.ID)
	}

	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	s.bySource[sourceID] = stored
	for _, chunk := range stored {
		s.byID[chunk.ID] = chunk
	}
	return nil
}

// ChunksByIDs retrieves the chunks for the given IDs.
// Missing IDs are skipped, not errors.
func (s *ChunkStore) ChunksByIDs(_ context.Context, ids []string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := make([]domain.Chunk, 0, len(ids))
	for _, id := range ids {
		if chunk, ok := s.byID[id]; ok {
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

// DeleteBySource removes all chunks belonging to a source.
func (s *ChunkStore) DeleteBySource(_ context.Context, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chunk := range s.bySource[sourceID] {
		delete(s.byID, chunk.ID)
	}
	delete(s.bySource, sourceID)
	return nil
}
