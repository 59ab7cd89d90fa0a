package driven

import (
	"context"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// VectorIndex is the persistent store of index entries supporting both
// semantic nearest-neighbour queries and catalog browsing.
//
// Writes are atomic per document batch: a reader never observes a
// half-written batch for a single document, and every entry returned by
// Query or List belongs to a non-deleted document.
type VectorIndex interface {
	// Upsert replaces all entries for the given document with the batch,
	// atomically. An entry whose embedding dimensionality differs from
	// the index is rejected with domain.ErrDimensionMismatch and nothing
	// is written.
	Upsert(ctx context.Context, documentID string, entries []domain.IndexEntry) error

	// DeleteDocument removes every entry belonging to the document.
	// Deletions are visible to all subsequent reads.
	DeleteDocument(ctx context.Context, documentID string) error

	// Query returns up to k entries ranked by cosine similarity, highest
	// first, ties broken by document id then chunk position.
	Query(ctx context.Context, embedding []float32, k int) ([]VectorHit, error)

	// FindByTopic returns entries whose topic label matches exactly
	// (case-insensitive), ordered by document id then chunk position.
	FindByTopic(ctx context.Context, label string) ([]domain.IndexEntry, error)

	// FindByDocument returns the document's entries in position order.
	FindByDocument(ctx context.Context, documentID string) ([]domain.IndexEntry, error)

	// List returns entries in stable insertion order for catalog paging.
	List(ctx context.Context, offset, limit int) ([]domain.IndexEntry, error)

	// Count returns the total number of entries.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Entry is the matched index entry.
	Entry domain.IndexEntry

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
