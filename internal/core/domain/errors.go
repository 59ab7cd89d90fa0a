package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyDocument indicates an upload produced no extractable text.
	// The upload is reported as a processing failure, never silently
	// accepted.
	ErrEmptyDocument = errors.New("empty document")

	// ErrUnsupportedFormat indicates a filename extension no normaliser
	// handles.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrEmbeddingService indicates the embedding service failed for a
	// chunk. Recoverable per chunk: retried with backoff, then the chunk
	// is excluded and the failure surfaces in the ingest summary.
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrVectorIndex indicates an index read or write failure. Fatal to
	// the triggering operation; must not corrupt other documents' data.
	ErrVectorIndex = errors.New("vector index error")

	// ErrDimensionMismatch indicates a vector whose dimensionality does
	// not match the index. Such vectors are never written.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrGenerationFailed indicates the language model call failed.
	// Surfaced as a distinct user-visible failure, never presented as a
	// grounded answer and never confused with "no relevant content".
	ErrGenerationFailed = errors.New("answer generation failed")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Semantic search is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
