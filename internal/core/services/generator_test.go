package services

import (
	"context"
	"fmt"
	"strings"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driven"
)

// --- Mock implementations for generation testing ---
// Note: These are prefixed with "generator" to avoid conflicts with
// mocks in other service test files.

// generatorMockLLM records the last prompt and options it was called
// with. It can fail the first `failures` calls transiently or return
// a fixed permanent error on every call.
type generatorMockLLM struct {
	mu         stdsync.Mutex
	answer     string
	err        error
	failures   int
	calls      int
	lastPrompt string
	lastOpts   driven.GenerateOptions
}

func (l *generatorMockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	l.lastPrompt = prompt
	l.lastOpts = opts
	if l.err != nil {
		return "", l.err
	}
	if l.calls <= l.failures {
		return "", fmt.Errorf("%w: HTTP 529", domain.ErrTransient)
	}
	return l.answer, nil
}

func (l *generatorMockLLM) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func (l *generatorMockLLM) ModelName() string            { return "mock-llm" }
func (l *generatorMockLLM) Ping(_ context.Context) error { return nil }
func (l *generatorMockLLM) Close() error                 { return nil }

// generatorMockPromptStore serves prompts from a fixed map.
type generatorMockPromptStore struct {
	prompts map[string]string
}

func (s *generatorMockPromptStore) Load(name string) (string, error) {
	prompt, ok := s.prompts[name]
	if !ok {
		return "", fmt.Errorf("prompt %s: %w", name, domain.ErrNotFound)
	}
	return prompt, nil
}

func (s *generatorMockPromptStore) Reload() {}

func generatorChunk(id, text string, similarity float64) domain.ScoredChunk {
	return domain.ScoredChunk{
		Chunk:      domain.Chunk{ID: id, SourceID: "src-" + id, Text: text},
		Similarity: similarity,
	}
}

// --- Tests ---

func TestNewGenerator_Defaults(t *testing.T) {
	generator := NewGenerator(&generatorMockLLM{}, 0, 0.3)
	assert.Equal(t, domain.DefaultContextChars, generator.contextChars)
}

func TestGenerator_Generate_GroundedAnswer(t *testing.T) {
	llm := &generatorMockLLM{answer: "  The answer.  "}
	generator := NewGenerator(llm, 4000, 0.3)
	retrieved := []domain.ScoredChunk{
		generatorChunk("a", "alpha context", 0.9),
		generatorChunk("b", "beta context", 0.8),
	}

	result, err := generator.Generate(context.Background(), "why?", retrieved)

	require.NoError(t, err)
	assert.Equal(t, "The answer.", result.Answer)

	// The question travels as the user prompt; the retrieval context
	// travels inside the system instruction.
	assert.Equal(t, "Question: why?", llm.lastPrompt)
	assert.Contains(t, llm.lastOpts.System, "Source 1:\nalpha context")
	assert.Contains(t, llm.lastOpts.System, "Source 2:\nbeta context")
	assert.Contains(t, llm.lastOpts.System, "Base your answer strictly")
	assert.InDelta(t, 0.3, llm.lastOpts.Temperature, 1e-9)

	require.Len(t, result.Sources, 2)
	assert.Equal(t, "src-a", result.Sources[0].SourceID)
	assert.Equal(t, "alpha context", result.Sources[0].Excerpt)
	assert.InDelta(t, 0.9, result.Sources[0].Similarity, 1e-9)
	assert.Equal(t, "src-b", result.Sources[1].SourceID)
}

func TestGenerator_Generate_NoContext(t *testing.T) {
	llm := &generatorMockLLM{answer: "should not be used"}
	generator := NewGenerator(llm, 4000, 0.3)

	result, err := generator.Generate(context.Background(), "why?", nil)

	require.NoError(t, err)
	assert.Equal(t, noContextAnswer, result.Answer)
	assert.NotNil(t, result.Sources)
	assert.Empty(t, result.Sources)
	// The model is never consulted without grounding context.
	assert.Equal(t, 0, llm.callCount())
}

func TestGenerator_Generate_EmptyQuery(t *testing.T) {
	llm := &generatorMockLLM{}
	generator := NewGenerator(llm, 4000, 0.3)

	for _, query := range []string{"", "  \t"} {
		_, err := generator.Generate(context.Background(), query, nil)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	assert.Equal(t, 0, llm.callCount())
}

func TestGenerator_Generate_NilLLM(t *testing.T) {
	generator := NewGenerator(nil, 4000, 0.3)

	_, err := generator.Generate(context.Background(), "why?", nil)

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestGenerator_Generate_TrimsContextToBudget(t *testing.T) {
	llm := &generatorMockLLM{answer: "ok"}
	generator := NewGenerator(llm, 30, 0.3)
	retrieved := []domain.ScoredChunk{
		generatorChunk("a", strings.Repeat("a", 20), 0.9),
		generatorChunk("b", strings.Repeat("b", 20), 0.8),
	}

	result, err := generator.Generate(context.Background(), "why?", retrieved)

	require.NoError(t, err)
	// Only the best chunk fits; the tail chunk is dropped whole and
	// never cited.
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "src-a", result.Sources[0].SourceID)
	assert.Contains(t, llm.lastOpts.System, "Source 1:")
	assert.NotContains(t, llm.lastOpts.System, "Source 2:")
	assert.NotContains(t, llm.lastOpts.System, "bbbb")
}

func TestGenerator_Generate_OversizedChunkStillSent(t *testing.T) {
	llm := &generatorMockLLM{answer: "ok"}
	generator := NewGenerator(llm, 10, 0.3)
	oversized := strings.Repeat("x", 50)
	retrieved := []domain.ScoredChunk{generatorChunk("a", oversized, 0.9)}

	result, err := generator.Generate(context.Background(), "why?", retrieved)

	require.NoError(t, err)
	require.Len(t, result.Sources, 1)
	assert.Contains(t, llm.lastOpts.System, oversized)
}

func TestGenerator_Generate_RetriesTransient(t *testing.T) {
	llm := &generatorMockLLM{answer: "eventually", failures: 2}
	generator := NewGenerator(llm, 4000, 0.3)
	generator.SetRetryDelay(time.Millisecond)

	result, err := generator.Generate(context.Background(), "why?",
		[]domain.ScoredChunk{generatorChunk("a", "context", 0.9)})

	require.NoError(t, err)
	assert.Equal(t, "eventually", result.Answer)
	assert.Equal(t, 3, llm.callCount())
}

func TestGenerator_Generate_Exhausted(t *testing.T) {
	llm := &generatorMockLLM{failures: 1000}
	generator := NewGenerator(llm, 4000, 0.3)
	generator.SetRetryDelay(time.Millisecond)

	_, err := generator.Generate(context.Background(), "why?",
		[]domain.ScoredChunk{generatorChunk("a", "context", 0.9)})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.Equal(t, maxAttempts, llm.callCount())
}

func TestGenerator_Generate_AuthErrorNotRetried(t *testing.T) {
	llm := &generatorMockLLM{err: fmt.Errorf("%w: bad key", domain.ErrAuthInvalid)}
	generator := NewGenerator(llm, 4000, 0.3)
	generator.SetRetryDelay(time.Millisecond)

	_, err := generator.Generate(context.Background(), "why?",
		[]domain.ScoredChunk{generatorChunk("a", "context", 0.9)})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
	assert.Equal(t, 1, llm.callCount())
}

func TestGenerator_Generate_CustomPrompt(t *testing.T) {
	llm := &generatorMockLLM{answer: "ok"}
	generator := NewGenerator(llm, 4000, 0.3)
	generator.SetPromptStore(&generatorMockPromptStore{prompts: map[string]string{
		driven.PromptAnswerSystem: "Custom instructions.\nContext:\n%s",
	}})

	_, err := generator.Generate(context.Background(), "why?",
		[]domain.ScoredChunk{generatorChunk("a", "alpha context", 0.9)})

	require.NoError(t, err)
	assert.Equal(t, "Custom instructions.\nContext:\nSource 1:\nalpha context", llm.lastOpts.System)
}

func TestGenerator_UsePrompt_SelectsTemplate(t *testing.T) {
	llm := &generatorMockLLM{answer: "ok"}
	generator := NewGenerator(llm, 4000, 0.3)
	generator.SetPromptStore(&generatorMockPromptStore{prompts: map[string]string{
		driven.PromptAnswerSystem: "Answer template.\n%s",
		driven.PromptChatSystem:   "Chat template.\n%s",
	}})
	generator.UsePrompt(driven.PromptChatSystem)

	_, err := generator.Generate(context.Background(), "why?",
		[]domain.ScoredChunk{generatorChunk("a", "alpha context", 0.9)})

	require.NoError(t, err)
	assert.Equal(t, "Chat template.\nSource 1:\nalpha context", llm.lastOpts.System)
}

func TestGenerator_Generate_PromptStoreFallback(t *testing.T) {
	llm := &generatorMockLLM{answer: "ok"}
	generator := NewGenerator(llm, 4000, 0.3)
	generator.SetPromptStore(&generatorMockPromptStore{prompts: map[string]string{}})

	_, err := generator.Generate(context.Background(), "why?",
		[]domain.ScoredChunk{generatorChunk("a", "alpha context", 0.9)})

	require.NoError(t, err)
	// A missing custom prompt falls back to the built-in default.
	assert.Contains(t, llm.lastOpts.System, "Base your answer strictly")
}
