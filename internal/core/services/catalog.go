package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driving"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// Catalog paging limits.
const (
	DefaultCatalogLimit = 20
	MaxCatalogLimit     = 100
)

// CatalogService provides paginated browsing of indexed chunk metadata.
type CatalogService struct {
	vectorIndex driven.VectorIndex
	previewLen  int
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(vectorIndex driven.VectorIndex) *CatalogService {
	return &CatalogService{
		vectorIndex: vectorIndex,
		previewLen:  DefaultPreviewLength,
	}
}

// ListTopics returns one stable page of chunk metadata in insertion
// order. Page numbering is 1-based; limits are clamped to MaxCatalogLimit.
func (s *CatalogService) ListTopics(ctx context.Context, page, limit int) (*domain.TopicPage, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be >= 1", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultCatalogLimit
	}
	if limit > MaxCatalogLimit {
		limit = MaxCatalogLimit
	}

	total, err := s.vectorIndex.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: count: %v", domain.ErrVectorIndex, err)
	}

	offset := (page - 1) * limit
	entries, err := s.vectorIndex.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", domain.ErrVectorIndex, err)
	}

	topics := make([]domain.TopicEntry, len(entries))
	for i, entry := range entries {
		chunk := entry.Chunk
		topics[i] = domain.TopicEntry{
			ChunkID:  chunk.ID,
			Filename: entry.Filename,
			Topic:    chunk.Topic,
			Page:     chunk.Page,
			Line:     chunk.Line,
			Preview:  truncate(chunk.Content, s.previewLen),
		}
	}

	return &domain.TopicPage{
		Topics:  topics,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: offset+limit < total,
	}, nil
}
