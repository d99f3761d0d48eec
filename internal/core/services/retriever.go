package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lectern-cli/internal/logger"
)

// Retriever turns a query into a ranked list of chunks from the
// vector index.
type Retriever struct {
	embedder   driven.EmbeddingService
	index      driven.VectorIndex
	chunkStore driven.ChunkStore

	retryDelay time.Duration
}

// NewRetriever creates a new retriever.
func NewRetriever(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	chunkStore driven.ChunkStore,
) *Retriever {
	return &Retriever{
		embedder:   embedder,
		index:      index,
		chunkStore: chunkStore,
	}
}

// SetRetryDelay overrides the base backoff delay for provider retries.
func (r *Retriever) SetRetryDelay(d time.Duration) {
	r.retryDelay = d
}

// Retrieve embeds the query and returns up to topK chunks ordered by
// descending similarity, ties broken by chunk ID. A topK larger than
// the index is clamped; a non-positive topK or an empty query is a
// validation error. The embedding model pinned to the index is
// checked against the configured model before any network call.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]domain.ScoredChunk, error) {
	logger.Section("Retrieval")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrValidation)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrValidation, topK)
	}
	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if r.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	// A model mismatch would compare vectors from incompatible
	// embedding spaces and silently return garbage, so it is
	// rejected here, before the query is embedded.
	meta, err := r.index.Meta(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Debug("Index has never been written, returning no chunks")
		return []domain.ScoredChunk{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index metadata: %w", err)
	}
	if meta.EmbeddingModel != r.embedder.ModelName() {
		return nil, fmt.Errorf(
			"%w: index was built with embedding model %q but %q is configured",
			domain.ErrConfig, meta.EmbeddingModel, r.embedder.ModelName(),
		)
	}

	logger.Debug("Query: %q (top_k=%d)", query, topK)

	var vector []float32
	err = withRetry(ctx, r.retryDelay, "query embedding", func() error {
		var embedErr error
		vector, embedErr = r.embedder.Embed(ctx, query)
		return embedErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}

	hits, err := r.index.Search(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	logger.Debug("Search returned %d hits", len(hits))

	return r.hydrate(ctx, hits)
}

// hydrate resolves vector hits back into chunks with text, keeping
// the hit order. Hits whose chunk text has been deleted are dropped.
func (r *Retriever) hydrate(ctx context.Context, hits []driven.VectorHit) ([]domain.ScoredChunk, error) {
	if len(hits) == 0 {
		return []domain.ScoredChunk{}, nil
	}

	ids := make([]string, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ChunkID
	}

	chunks, err := r.chunkStore.ChunksByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate chunks: %w", err)
	}

	byID := make(map[string]domain.Chunk, len(chunks))
	for _, chunk := range chunks {
		byID[chunk.ID] = chunk
	}

	results := make([]domain.ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		chunk, ok := byID[hit.ChunkID]
		if !ok {
			logger.Debug("Dropping hit %s: chunk text missing", hit.ChunkID)
			continue
		}
		results = append(results, domain.ScoredChunk{
			Chunk:      chunk,
			Similarity: hit.Similarity,
		})
	}
	return results, nil
}
