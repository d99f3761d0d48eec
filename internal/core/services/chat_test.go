package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driving"
)

// stubQueryService records questions and returns a canned result.
type stubQueryService struct {
	mu        sync.Mutex
	questions []string
	result    *domain.AnswerResult
	err       error
}

func (s *stubQueryService) Query(
	_ context.Context, question string, _ driving.QueryOptions,
) (*domain.AnswerResult, error) {
	s.mu.Lock()
	s.questions = append(s.questions, question)
	s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newChatHarness(answer string) (*ChatService, *stubQueryService) {
	stub := &stubQueryService{
		result: &domain.AnswerResult{
			Answer: answer,
			Sources: []domain.SourceRef{
				{SourceID: "doc.md", Excerpt: "excerpt", Similarity: 0.9},
			},
		},
	}
	return NewChatService(stub), stub
}

func TestChatService_Ask_RecordsTurn(t *testing.T) {
	chat, stub := newChatHarness("First answer.")

	result, err := chat.Ask(context.Background(), "what is lectern?")

	require.NoError(t, err)
	assert.Equal(t, "First answer.", result.Answer)
	assert.Equal(t, []string{"what is lectern?"}, stub.questions)

	history := chat.History()
	require.Len(t, history, 1)
	assert.Equal(t, "what is lectern?", history[0].Question)
	assert.Equal(t, "First answer.", history[0].Answer.Answer)
	require.Len(t, history[0].Answer.Sources, 1)
	assert.Equal(t, "doc.md", history[0].Answer.Sources[0].SourceID)
}

func TestChatService_Ask_TurnsAccumulateInOrder(t *testing.T) {
	chat, _ := newChatHarness("answer")

	for _, q := range []string{"first", "second", "third"} {
		_, err := chat.Ask(context.Background(), q)
		require.NoError(t, err)
	}

	history := chat.History()
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Question)
	assert.Equal(t, "second", history[1].Question)
	assert.Equal(t, "third", history[2].Question)
}

func TestChatService_Ask_FailedTurnNotRecorded(t *testing.T) {
	chat, stub := newChatHarness("answer")

	_, err := chat.Ask(context.Background(), "good question")
	require.NoError(t, err)

	stub.err = errors.New("model down")
	_, err = chat.Ask(context.Background(), "doomed question")
	require.Error(t, err)

	history := chat.History()
	require.Len(t, history, 1)
	assert.Equal(t, "good question", history[0].Question)
}

func TestChatService_History_ReturnsCopy(t *testing.T) {
	chat, _ := newChatHarness("answer")

	_, err := chat.Ask(context.Background(), "question")
	require.NoError(t, err)

	history := chat.History()
	history[0].Question = "mutated"

	assert.Equal(t, "question", chat.History()[0].Question)
}

func TestChatService_Reset_ClearsTranscript(t *testing.T) {
	chat, _ := newChatHarness("answer")

	_, err := chat.Ask(context.Background(), "question")
	require.NoError(t, err)
	require.Len(t, chat.History(), 1)

	chat.Reset()

	assert.Empty(t, chat.History())

	// The session keeps working after a reset.
	_, err = chat.Ask(context.Background(), "fresh question")
	require.NoError(t, err)
	assert.Len(t, chat.History(), 1)
}

func TestChatService_ConcurrentAsks(t *testing.T) {
	chat, _ := newChatHarness("answer")

	const turns = 20
	var wg sync.WaitGroup
	wg.Add(turns)
	for i := 0; i < turns; i++ {
		go func() {
			defer wg.Done()
			_, _ = chat.Ask(context.Background(), "question")
		}()
	}
	wg.Wait()

	assert.Len(t, chat.History(), turns)
}
