package driving

import (
	"context"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// DocumentService manages stored documents.
type DocumentService interface {
	// List returns all documents in insertion order.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetContent returns the concatenation of the document's indexed
	// chunks in position order.
	GetContent(ctx context.Context, documentID string) (string, error)

	// Delete removes the document and all derived index entries.
	Delete(ctx context.Context, documentID string) error
}
