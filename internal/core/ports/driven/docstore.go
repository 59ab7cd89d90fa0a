package driven

import (
	"context"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// DocumentStore persists document metadata and raw extracted text.
// Backed by SQLite.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// FindByFilename retrieves a document by its upload filename.
	// Returns domain.ErrNotFound when no document has that filename.
	FindByFilename(ctx context.Context, filename string) (*domain.Document, error)

	// ListDocuments returns all documents in insertion order.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document.
	DeleteDocument(ctx context.Context, id string) error
}
