package driving

import (
	"context"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
)

// ChatService holds a conversation over the indexed collection.
// Every turn is retrieved and answered independently; the transcript
// records the session but never grounds it.
type ChatService interface {
	// Ask answers one turn and appends it to the transcript.
	// A failed turn is not recorded.
	Ask(ctx context.Context, question string) (*domain.AnswerResult, error)

	// History returns the transcript so far, oldest turn first.
	History() []domain.ChatTurn

	// Reset discards the transcript and starts a fresh session.
	Reset()
}
