package domain

// TopicEntry is one row in the topic catalog: the browsable metadata of
// a single index entry.
type TopicEntry struct {
	// ChunkID identifies the underlying chunk.
	ChunkID string `json:"chunk_id"`

	// Filename is the owning document's filename.
	Filename string `json:"filename"`

	// Topic is the structural topic label, empty for windowed chunks.
	Topic string `json:"topic,omitempty"`

	// Page and Line locate the chunk within the document, 0 when unknown.
	Page int `json:"page,omitempty"`
	Line int `json:"line,omitempty"`

	// Preview is the chunk text truncated to a fixed length.
	Preview string `json:"preview"`
}

// TopicPage is a stable, deterministic page of the topic catalog,
// ordered by insertion order.
type TopicPage struct {
	Topics []TopicEntry `json:"topics"`

	// Total is the number of index entries across all pages.
	Total int `json:"total"`

	// Page and Limit echo the request.
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// HasMore is true while offset+limit < Total.
	HasMore bool `json:"has_more"`
}
