package driving

import (
	"context"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// CatalogService provides paginated browsing of indexed chunk metadata,
// independent of any query.
type CatalogService interface {
	// ListTopics returns one stable page of chunk metadata in insertion
	// order. Page numbering is 1-based.
	ListTopics(ctx context.Context, page, limit int) (*domain.TopicPage, error)
}
