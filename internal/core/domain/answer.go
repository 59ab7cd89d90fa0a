package domain

// Source is a verifiable attribution for part of an answer.
type Source struct {
	// Filename is the owning document's filename.
	Filename string `json:"filename"`

	// ChunkID identifies the cited chunk.
	ChunkID string `json:"chunk_id"`

	// Score is the relevance score as a percentage (0-100).
	Score float64 `json:"score"`

	// Preview is a truncated excerpt of the chunk text.
	Preview string `json:"preview"`

	// Page and Line locate the chunk within the document, 0 when unknown.
	Page int `json:"page,omitempty"`
	Line int `json:"line,omitempty"`

	// Topic is the structural topic label, empty for windowed chunks.
	Topic string `json:"topic,omitempty"`

	// DocURL is an optional resolvable URL for the owning document.
	DocURL string `json:"doc_url,omitempty"`
}

// Answer is the result of asking a question.
type Answer struct {
	// Text is the language model's response, returned verbatim.
	Text string `json:"answer"`

	// Sources lists the attributions for the retrieved context, ranked
	// by relevance. Empty when no relevant content was found.
	Sources []Source `json:"sources"`

	// NoRelevantContent is true when every candidate fell below the
	// similarity floor. This is a valid answer state, not an error.
	NoRelevantContent bool `json:"no_relevant_content,omitempty"`
}
