package domain

// ChatTurn is one question and its grounded answer in a chat session.
// The transcript is display state only: turns never feed back into
// retrieval, so a poor answer cannot contaminate later grounding.
type ChatTurn struct {
	// Question is the user's question, as asked.
	Question string

	// Answer is the grounded answer produced for this turn.
	Answer AnswerResult
}
