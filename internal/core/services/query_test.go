package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driving"
)

// queryHarness wires a retriever over seeded stores to a generator
// with a recording LLM, the full question-to-answer path.
type queryHarness struct {
	service   *QueryService
	retrieval *retrieverHarness
	llm       *generatorMockLLM
}

func newQueryHarness(t *testing.T, topK int) *queryHarness {
	t.Helper()
	h := &queryHarness{
		retrieval: newRetrieverHarness(t),
		llm:       &generatorMockLLM{answer: "Grounded answer."},
	}
	h.service = NewQueryService(
		h.retrieval.retriever,
		NewGenerator(h.llm, domain.DefaultContextChars, 0.3),
		topK,
	)
	return h
}

func TestNewQueryService_DefaultTopK(t *testing.T) {
	h := newQueryHarness(t, 0)
	assert.Equal(t, domain.DefaultTopK, h.service.topK)

	h = newQueryHarness(t, 7)
	assert.Equal(t, 7, h.service.topK)
}

func TestQueryService_Query_EndToEnd(t *testing.T) {
	h := newQueryHarness(t, 2)
	seedRetrieverIndex(t, h.retrieval)

	result, err := h.service.Query(context.Background(), "what is close?", driving.QueryOptions{})

	require.NoError(t, err)
	assert.Equal(t, "Grounded answer.", result.Answer)

	// TopK zero falls back to the configured default of 2.
	require.Len(t, result.Sources, 2)
	assert.Equal(t, "text of chunk-close", result.Sources[0].Excerpt)
	assert.Equal(t, "text of chunk-near", result.Sources[1].Excerpt)
	assert.Contains(t, h.llm.lastOpts.System, "Source 1:\ntext of chunk-close")
	assert.Equal(t, "Question: what is close?", h.llm.lastPrompt)
}

func TestQueryService_Query_TopKOverride(t *testing.T) {
	h := newQueryHarness(t, 3)
	seedRetrieverIndex(t, h.retrieval)

	result, err := h.service.Query(context.Background(), "question", driving.QueryOptions{TopK: 1})

	require.NoError(t, err)
	assert.Len(t, result.Sources, 1)
}

func TestQueryService_Query_NegativeTopK(t *testing.T) {
	h := newQueryHarness(t, 3)
	seedRetrieverIndex(t, h.retrieval)

	_, err := h.service.Query(context.Background(), "question", driving.QueryOptions{TopK: -1})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestQueryService_Query_EmptyIndex(t *testing.T) {
	h := newQueryHarness(t, 3)

	result, err := h.service.Query(context.Background(), "question", driving.QueryOptions{})

	require.NoError(t, err)
	assert.Equal(t, noContextAnswer, result.Answer)
	assert.Empty(t, result.Sources)
	assert.Equal(t, 0, h.llm.callCount())
}

func TestQueryService_Query_EmptyQuestion(t *testing.T) {
	h := newQueryHarness(t, 3)
	seedRetrieverIndex(t, h.retrieval)

	_, err := h.service.Query(context.Background(), "  ", driving.QueryOptions{})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, h.llm.callCount())
}
