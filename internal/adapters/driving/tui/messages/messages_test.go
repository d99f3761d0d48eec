package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
)

// TestQuestionSubmitted tests the QuestionSubmitted message type
func TestQuestionSubmitted(t *testing.T) {
	t.Run("with valid question", func(t *testing.T) {
		msg := QuestionSubmitted{Question: "what is a lectern"}
		assert.Equal(t, "what is a lectern", msg.Question)
	})

	t.Run("with empty question", func(t *testing.T) {
		msg := QuestionSubmitted{Question: ""}
		assert.Equal(t, "", msg.Question)
	})
}

// TestAnswerReceived tests the AnswerReceived message type
func TestAnswerReceived(t *testing.T) {
	t.Run("with answer and sources", func(t *testing.T) {
		result := &domain.AnswerResult{
			Answer: "Grounded answer.",
			Sources: []domain.SourceRef{
				{SourceID: "guide.md", Excerpt: "some text", Similarity: 0.9},
			},
		}
		msg := AnswerReceived{Question: "where from", Result: result, Err: nil}

		assert.Equal(t, "where from", msg.Question)
		require.NotNil(t, msg.Result)
		assert.Equal(t, "Grounded answer.", msg.Result.Answer)
		require.Len(t, msg.Result.Sources, 1)
		assert.Equal(t, "guide.md", msg.Result.Sources[0].SourceID)
		assert.NoError(t, msg.Err)
	})

	t.Run("with error", func(t *testing.T) {
		err := errors.New("generation failed")
		msg := AnswerReceived{Question: "anything", Result: nil, Err: err}

		assert.Nil(t, msg.Result)
		assert.Error(t, msg.Err)
		assert.Equal(t, "generation failed", msg.Err.Error())
	})
}

// TestSessionCleared tests the SessionCleared message type
func TestSessionCleared(t *testing.T) {
	msg := SessionCleared{}
	// SessionCleared is an empty struct, just verify it can be created
	assert.NotNil(t, msg)
}

// TestErrorOccurred tests the ErrorOccurred message type
func TestErrorOccurred(t *testing.T) {
	t.Run("with standard error", func(t *testing.T) {
		err := errors.New("something went wrong")
		msg := ErrorOccurred{Err: err}

		assert.Error(t, msg.Err)
		assert.Equal(t, "something went wrong", msg.Err.Error())
	})

	t.Run("with nil error", func(t *testing.T) {
		msg := ErrorOccurred{Err: nil}
		assert.Nil(t, msg.Err)
	})
}

// TestQuit tests the Quit message type
func TestQuit(t *testing.T) {
	msg := Quit{}
	// Quit is an empty struct, just verify it can be created
	assert.NotNil(t, msg)
}
