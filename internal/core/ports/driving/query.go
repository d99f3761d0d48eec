package driving

import (
	"context"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
)

// QueryService answers natural-language questions from the index.
type QueryService interface {
	// Query embeds the question, retrieves the top-k most similar
	// chunks, and generates a grounded answer with citations.
	// Fails with domain.ErrValidation on an empty question and
	// domain.ErrConfig on an embedding-model mismatch against the
	// index, before any network call.
	Query(ctx context.Context, question string, opts QueryOptions) (*domain.AnswerResult, error)
}

// QueryOptions configures a single query.
type QueryOptions struct {
	// TopK overrides the configured number of retrieved chunks.
	// Zero means the configured default.
	TopK int
}
