package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages stored documents.
type DocumentService struct {
	docStore    driven.DocumentStore
	vectorIndex driven.VectorIndex
	locks       *keyedMutex
}

// NewDocumentService creates a new document service.
func NewDocumentService(docStore driven.DocumentStore, vectorIndex driven.VectorIndex) *DocumentService {
	return &DocumentService{
		docStore:    docStore,
		vectorIndex: vectorIndex,
		locks:       newKeyedMutex(),
	}
}

// List returns all documents in insertion order.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	return s.docStore.GetDocument(ctx, documentID)
}

// GetContent reconstructs the indexed text from the document's chunks
// in position order. Overlapping windowed chunks are deduplicated using
// their offsets so shared text appears once.
func (s *DocumentService) GetContent(ctx context.Context, documentID string) (string, error) {
	if documentID == "" {
		return "", fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	// Confirm the document exists so a missing id is ErrNotFound rather
	// than empty content.
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return "", err
	}

	entries, err := s.vectorIndex.FindByDocument(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("%w: entries for %s: %v", domain.ErrVectorIndex, documentID, err)
	}

	var b strings.Builder
	covered := 0
	for _, entry := range entries {
		chunk := entry.Chunk
		if chunk.EndOffset <= covered {
			continue
		}
		skip := 0
		if chunk.StartOffset < covered {
			skip = covered - chunk.StartOffset
		}
		if skip < len(chunk.Content) {
			b.WriteString(chunk.Content[skip:])
		}
		covered = chunk.EndOffset
	}
	return b.String(), nil
}

// Delete removes the document and all derived index entries. The index
// is cleared first so a partial failure never leaves orphaned vectors
// pointing at a missing document.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	if documentID == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	s.locks.Lock(documentID)
	defer s.locks.Unlock(documentID)

	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return err
	}

	if err := s.vectorIndex.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("%w: deleting entries: %v", domain.ErrVectorIndex, err)
	}
	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	logger.Info("Deleted document %s", documentID)
	return nil
}
