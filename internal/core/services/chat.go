package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driving"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ChatService answers a conversation one grounded turn at a time.
// It delegates each question to the query path unchanged, so chat
// answers carry the same citations a one-shot query would, and keeps
// a transcript for the session.
type ChatService struct {
	query driving.QueryService

	mu    sync.Mutex
	turns []domain.ChatTurn
}

// NewChatService wraps a query service in a session transcript.
func NewChatService(query driving.QueryService) *ChatService {
	return &ChatService{query: query}
}

// Ask answers one turn and appends it to the transcript. A failed
// turn returns the query error and leaves the transcript untouched.
func (s *ChatService) Ask(ctx context.Context, question string) (*domain.AnswerResult, error) {
	result, err := s.query.Query(ctx, question, driving.QueryOptions{})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.turns = append(s.turns, domain.ChatTurn{Question: question, Answer: *result})
	s.mu.Unlock()

	return result, nil
}

// History returns a copy of the transcript, oldest turn first.
func (s *ChatService) History() []domain.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := make([]domain.ChatTurn, len(s.turns))
	copy(turns, s.turns)
	return turns
}

// Reset discards the transcript.
func (s *ChatService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = nil
}
