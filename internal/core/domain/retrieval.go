package domain

import "math"

// ScoredChunk pairs a retrieved chunk with its similarity score.
// A retrieval result is an ordered slice of ScoredChunk: descending
// by similarity, ties broken by chunk ID ascending so that results
// are deterministic.
type ScoredChunk struct {
	// Chunk is the retrieved chunk, hydrated with its text.
	Chunk Chunk

	// Similarity is the cosine similarity against the query vector.
	Similarity float64
}

// SourceRef cites one retrieved chunk in an answer.
type SourceRef struct {
	// SourceID identifies the document the evidence came from.
	SourceID string

	// Excerpt is a short extract of the cited chunk.
	Excerpt string

	// Similarity is the retrieval score of the cited chunk.
	Similarity float64
}

// AnswerResult is a grounded answer with its evidence trail.
// Sources appear in the same order as the retrieval result that
// produced the context, so answers remain traceable to chunks.
// An AnswerResult is immutable once produced.
type AnswerResult struct {
	// Answer is the generated answer text.
	Answer string

	// Sources cites the chunks used as grounding context.
	Sources []SourceRef
}

// CosineSimilarity computes the cosine of the angle between two
// vectors. Mismatched dimensions or zero-length vectors score 0.
// Every vector index implementation scores with this function, so
// rankings are identical across backends.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
