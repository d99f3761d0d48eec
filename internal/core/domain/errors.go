package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrConfig indicates invalid configuration: bad chunk or
	// retrieval parameters, or an embedding-model mismatch against
	// the index. Fatal, surfaced immediately, never retried.
	ErrConfig = errors.New("invalid configuration")

	// ErrValidation indicates malformed caller input, such as a
	// non-positive top-k or an empty query. Surfaced, never retried.
	ErrValidation = errors.New("invalid input")

	// ErrLoad indicates a file could not be read or parsed.
	// Per-file: recorded in the ingestion report, batch continues.
	ErrLoad = errors.New("document load failed")

	// ErrUnsupportedFormat indicates a file extension no loader
	// handles. Per-file, isolated like ErrLoad.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrEmbedding indicates the embedding provider failed after
	// retries were exhausted.
	ErrEmbedding = errors.New("embedding failed")

	// ErrGeneration indicates the language model failed after
	// retries were exhausted.
	ErrGeneration = errors.New("generation failed")

	// ErrTransient marks a provider failure worth retrying:
	// rate limits, timeouts, 5xx responses. Wrapped by adapters,
	// consumed by the retry loop.
	ErrTransient = errors.New("transient provider error")

	// ErrAuthInvalid indicates the provider rejected the configured
	// credentials. Permanent, never retried.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Querying and chat are disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Ingestion and retrieval are disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not
	// configured or could not be opened.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)
