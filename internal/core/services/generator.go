package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lectern-cli/internal/logger"
)

// Ensure Generator accepts custom prompts.
var _ driven.PromptStoreAware = (*Generator)(nil)

// defaultAnswerPrompt grounds the model in the retrieved context.
// The %s placeholder receives the formatted context blocks.
const defaultAnswerPrompt = `You are a helpful expert assistant. Use the provided context to answer questions accurately and comprehensively.

Instructions:
- Base your answer strictly on the provided context
- If the answer isn't in the context, say "I don't have enough information to answer that question"
- Provide clear, well-structured explanations
- Include relevant details and examples when available
- Be concise but thorough

Context:
%s`

// noContextAnswer is returned when retrieval produced no grounding
// context. Absence of context is a reportable state, not an error,
// and the model is not called for it.
const noContextAnswer = "I don't have any indexed content relevant to this question. " +
	"Ingest documents first, or try rephrasing the question."

// excerptLen bounds the excerpt shown per cited source.
const excerptLen = 200

// Generator turns (query, retrieved chunks) into a grounded answer
// with a citation list.
type Generator struct {
	llm     driven.LLMService
	prompts driven.PromptStore

	promptName   string
	contextChars int
	temperature  float64
	retryDelay   time.Duration
}

// NewGenerator creates a generator. contextChars bounds the
// concatenated grounding context; non-positive values fall back to
// domain.DefaultContextChars.
func NewGenerator(llm driven.LLMService, contextChars int, temperature float64) *Generator {
	if contextChars <= 0 {
		contextChars = domain.DefaultContextChars
	}
	return &Generator{
		llm:          llm,
		contextChars: contextChars,
		temperature:  temperature,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// Without one the built-in default prompt is used.
func (g *Generator) SetPromptStore(store driven.PromptStore) {
	g.prompts = store
}

// SetRetryDelay overrides the base backoff delay for provider retries.
func (g *Generator) SetRetryDelay(d time.Duration) {
	g.retryDelay = d
}

// UsePrompt selects which template the prompt store is asked for,
// e.g. driven.PromptChatSystem for chat sessions. Empty means the
// answer prompt.
func (g *Generator) UsePrompt(name string) {
	g.promptName = name
}

// Generate produces a grounded answer from the retrieved chunks.
// Sources cite the chunks that were sent as context, in retrieval
// order. Transient model failures are retried with backoff;
// exhaustion surfaces as domain.ErrGeneration with no fallback
// answer.
func (g *Generator) Generate(
	ctx context.Context, query string, retrieved []domain.ScoredChunk,
) (*domain.AnswerResult, error) {
	if g.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrValidation)
	}

	logger.Section("Generation")

	if len(retrieved) == 0 {
		logger.Debug("No grounding context retrieved, skipping the model")
		return &domain.AnswerResult{
			Answer:  noContextAnswer,
			Sources: []domain.SourceRef{},
		}, nil
	}

	kept := g.fitContext(retrieved)
	logger.Debug("Context: %d of %d chunks within %d character budget",
		len(kept), len(retrieved), g.contextChars)

	system := fmt.Sprintf(g.systemPrompt(), g.formatContext(kept))

	var answer string
	err := withRetry(ctx, g.retryDelay, "generation", func() error {
		var genErr error
		answer, genErr = g.llm.Generate(ctx, "Question: "+query, driven.GenerateOptions{
			System:      system,
			Temperature: g.temperature,
		})
		return genErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	return &domain.AnswerResult{
		Answer:  strings.TrimSpace(answer),
		Sources: g.sources(kept),
	}, nil
}

// fitContext keeps whole chunks from the front of the retrieval
// order until the character budget is reached; the rest are dropped
// from the tail, lowest-scoring first. Chunks are never truncated
// mid-text.
func (g *Generator) fitContext(retrieved []domain.ScoredChunk) []domain.ScoredChunk {
	kept := make([]domain.ScoredChunk, 0, len(retrieved))
	used := 0
	for _, sc := range retrieved {
		cost := len(sc.Chunk.Text)
		if used+cost > g.contextChars {
			if len(kept) == 0 {
				// A single chunk larger than the whole budget is
				// still sent whole.
				kept = append(kept, sc)
			}
			break
		}
		kept = append(kept, sc)
		used += cost
	}
	return kept
}

// formatContext renders the kept chunks as numbered source blocks.
func (g *Generator) formatContext(kept []domain.ScoredChunk) string {
	blocks := make([]string, len(kept))
	for i, sc := range kept {
		blocks[i] = fmt.Sprintf("Source %d:\n%s", i+1, sc.Chunk.Text)
	}
	return strings.Join(blocks, "\n\n")
}

// systemPrompt returns the selected prompt template, preferring the
// prompt store when one is configured.
func (g *Generator) systemPrompt() string {
	name := g.promptName
	if name == "" {
		name = driven.PromptAnswerSystem
	}
	if g.prompts != nil {
		if prompt, err := g.prompts.Load(name); err == nil && prompt != "" {
			return prompt
		}
	}
	return defaultAnswerPrompt
}

// sources builds the citation list for the chunks used as context.
func (g *Generator) sources(kept []domain.ScoredChunk) []domain.SourceRef {
	refs := make([]domain.SourceRef, len(kept))
	for i, sc := range kept {
		refs[i] = domain.SourceRef{
			SourceID:   sc.Chunk.SourceID,
			Excerpt:    sc.Chunk.Excerpt(excerptLen),
			Similarity: sc.Similarity,
		}
	}
	return refs
}
