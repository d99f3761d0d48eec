package services

import (
	"context"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driving"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService answers questions by retrieving grounding context and
// generating an answer from it. Each query is stateless and
// independent of every other query.
type QueryService struct {
	retriever *Retriever
	generator *Generator
	topK      int
}

// NewQueryService composes retrieval and generation. topK is the
// default retrieval depth used when the caller does not override it;
// non-positive values fall back to domain.DefaultTopK.
func NewQueryService(retriever *Retriever, generator *Generator, topK int) *QueryService {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &QueryService{
		retriever: retriever,
		generator: generator,
		topK:      topK,
	}
}

// Query runs the retrieval-generation path for one question.
// opts.TopK zero means the configured default; a negative value is
// rejected by the retriever as a validation error.
func (s *QueryService) Query(
	ctx context.Context, question string, opts driving.QueryOptions,
) (*domain.AnswerResult, error) {
	topK := opts.TopK
	if topK == 0 {
		topK = s.topK
	}

	retrieved, err := s.retriever.Retrieve(ctx, question, topK)
	if err != nil {
		return nil, err
	}

	return s.generator.Generate(ctx, question, retrieved)
}
