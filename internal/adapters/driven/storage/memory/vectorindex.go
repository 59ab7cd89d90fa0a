package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory implementation of driven.VectorIndex
// using a brute-force cosine scan.
type VectorIndex struct {
	mu         sync.RWMutex
	entries    []domain.IndexEntry
	dimensions int
}

// NewVectorIndex creates a new in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{}
}

// Upsert replaces all entries for the document with the batch.
func (v *VectorIndex) Upsert(_ context.Context, documentID string, entries []domain.IndexEntry) error {
	if documentID == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if len(entries) > 0 {
		dims := len(entries[0].Chunk.Embedding)
		for _, entry := range entries {
			if len(entry.Chunk.Embedding) != dims {
				return fmt.Errorf("%w: mixed embedding sizes in batch", domain.ErrDimensionMismatch)
			}
		}
		if v.dimensions == 0 {
			v.dimensions = dims
		} else if dims != v.dimensions {
			return fmt.Errorf("%w: index holds %d-dimensional vectors, got %d",
				domain.ErrDimensionMismatch, v.dimensions, dims)
		}
	}

	kept := v.entries[:0]
	for _, entry := range v.entries {
		if entry.Chunk.DocumentID != documentID {
			kept = append(kept, entry)
		}
	}
	v.entries = append(kept, entries...)
	return nil
}

// DeleteDocument removes every entry belonging to the document.
func (v *VectorIndex) DeleteDocument(_ context.Context, documentID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	kept := v.entries[:0]
	for _, entry := range v.entries {
		if entry.Chunk.DocumentID != documentID {
			kept = append(kept, entry)
		}
	}
	v.entries = kept
	return nil
}

// Query returns up to k entries ranked by cosine similarity.
func (v *VectorIndex) Query(_ context.Context, embedding []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", domain.ErrInvalidInput)
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.dimensions != 0 && len(embedding) != v.dimensions {
		return nil, fmt.Errorf("%w: index holds %d-dimensional vectors, got %d",
			domain.ErrDimensionMismatch, v.dimensions, len(embedding))
	}

	hits := make([]driven.VectorHit, 0, len(v.entries))
	for _, entry := range v.entries {
		hits = append(hits, driven.VectorHit{
			Entry:      entry,
			Similarity: cosineSimilarity(embedding, entry.Chunk.Embedding),
		})
	}

	// Equal scores fall back to document id then chunk position.
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		a, b := hits[i].Entry.Chunk, hits[j].Entry.Chunk
		if a.DocumentID != b.DocumentID {
			return a.DocumentID < b.DocumentID
		}
		return a.Position < b.Position
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// FindByTopic returns entries matching the topic label, case-insensitive.
func (v *VectorIndex) FindByTopic(_ context.Context, label string) ([]domain.IndexEntry, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var matched []domain.IndexEntry
	for _, entry := range v.entries {
		if strings.EqualFold(entry.Chunk.Topic, label) {
			matched = append(matched, entry)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i].Chunk, matched[j].Chunk
		if a.DocumentID != b.DocumentID {
			return a.DocumentID < b.DocumentID
		}
		return a.Position < b.Position
	})
	return matched, nil
}

// FindByDocument returns the document's entries in position order.
func (v *VectorIndex) FindByDocument(_ context.Context, documentID string) ([]domain.IndexEntry, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var matched []domain.IndexEntry
	for _, entry := range v.entries {
		if entry.Chunk.DocumentID == documentID {
			matched = append(matched, entry)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Chunk.Position < matched[j].Chunk.Position
	})
	return matched, nil
}

// List returns entries in insertion order.
func (v *VectorIndex) List(_ context.Context, offset, limit int) ([]domain.IndexEntry, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: negative offset or limit", domain.ErrInvalidInput)
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if offset >= len(v.entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(v.entries) {
		end = len(v.entries)
	}
	page := make([]domain.IndexEntry, end-offset)
	copy(page, v.entries[offset:end])
	return page, nil
}

// Count returns the total number of entries.
func (v *VectorIndex) Count(_ context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries), nil
}

// Close releases resources.
func (v *VectorIndex) Close() error {
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
