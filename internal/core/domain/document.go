package domain

import "time"

// Document represents an uploaded document with its extracted text.
// Documents are immutable once stored; re-ingesting the same filename
// replaces the document and all derived index entries.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Filename is the original upload filename.
	Filename string

	// Content is the full extracted text before chunking.
	Content string

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// Chunk represents a retrievable unit within a document.
// Concatenating a document's chunks in Position order reconstructs the
// document text (windowed chunks may overlap, so the result can be a
// superset).
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Position is the ordinal position within the document.
	Position int

	// Content is the text content of this chunk. Never empty or
	// whitespace-only.
	Content string

	// Topic is the structural topic label ("Topic 3-2"), empty when the
	// chunk came from windowed splitting.
	Topic string

	// Page is the 1-based page number of the chunk start, 0 when unknown.
	Page int

	// Line is the 1-based line number of the chunk start, 0 when unknown.
	Line int

	// StartOffset and EndOffset are the character offsets of this chunk
	// within the parent document content.
	StartOffset int
	EndOffset   int

	// Embedding is the vector representation for semantic search.
	Embedding []float32
}

// IndexEntry is the persisted (vector, text, metadata) record for one
// chunk. Entries are created on ingestion, never mutated in place, and
// removed when the owning document is deleted.
type IndexEntry struct {
	// Chunk carries the chunk text, metadata and embedding.
	Chunk Chunk

	// Filename is the owning document's filename, denormalised so that
	// retrieval results can cite a source without a second lookup.
	Filename string
}

// RetrievalResult is an ephemeral per-query hit. It is never persisted.
type RetrievalResult struct {
	// Entry is the matched index entry.
	Entry IndexEntry

	// Score is the similarity score in [0, 1]. Exact topic lookups are
	// assigned the maximal score.
	Score float64

	// Rank is the 1-based position in the result list.
	Rank int
}
