package driving

import "context"

// IngestService turns uploaded documents into index entries.
type IngestService interface {
	// IngestDocument chunks, embeds and indexes already-extracted text.
	// Fails with domain.ErrEmptyDocument when the text is empty.
	// Re-ingesting a filename replaces the previous chunk set.
	IngestDocument(ctx context.Context, filename, text string) (*IngestResult, error)

	// IngestFile extracts text from raw file content first. Fails with
	// domain.ErrUnsupportedFormat for unrecognised extensions.
	IngestFile(ctx context.Context, filename string, content []byte) (*IngestResult, error)
}

// IngestResult summarises one ingestion, including partial failures.
type IngestResult struct {
	// DocumentID is the id of the stored document.
	DocumentID string `json:"document_id"`

	// ChunksIndexed is the number of chunks embedded and written.
	ChunksIndexed int `json:"chunks_indexed"`

	// ChunksFailed is the number of chunks excluded after retries.
	ChunksFailed int `json:"chunks_failed"`

	// Warnings describes each excluded chunk. Never silently dropped.
	Warnings []string `json:"warnings,omitempty"`
}
