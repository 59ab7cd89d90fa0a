package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

func seedCatalog(t *testing.T, index *memory.VectorIndex, n int) {
	t.Helper()
	entries := make([]domain.IndexEntry, n)
	for i := 0; i < n; i++ {
		entries[i] = domain.IndexEntry{
			Chunk: domain.Chunk{
				ID:         fmt.Sprintf("c%d", i),
				DocumentID: "d1",
				Position:   i,
				Content:    fmt.Sprintf("section %d body", i),
				Topic:      fmt.Sprintf("Topic 1-%d", i+1),
				Embedding:  []float32{1},
			},
			Filename: "doc.txt",
		}
	}
	require.NoError(t, index.Upsert(context.Background(), "d1", entries))
}

func TestListTopicsFirstPage(t *testing.T) {
	index := memory.NewVectorIndex()
	seedCatalog(t, index, 5)
	svc := NewCatalogService(index)

	page, err := svc.ListTopics(context.Background(), 1, 2)
	require.NoError(t, err)

	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.Limit)
	assert.True(t, page.HasMore)
	require.Len(t, page.Topics, 2)
	assert.Equal(t, "c0", page.Topics[0].ChunkID)
	assert.Equal(t, "Topic 1-1", page.Topics[0].Topic)
	assert.Equal(t, "doc.txt", page.Topics[0].Filename)
	assert.Equal(t, "section 0 body", page.Topics[0].Preview)
}

func TestListTopicsLastPageHasMoreFalse(t *testing.T) {
	index := memory.NewVectorIndex()
	seedCatalog(t, index, 5)
	svc := NewCatalogService(index)

	page, err := svc.ListTopics(context.Background(), 3, 2)
	require.NoError(t, err)

	require.Len(t, page.Topics, 1)
	assert.Equal(t, "c4", page.Topics[0].ChunkID)
	assert.False(t, page.HasMore)
}

func TestListTopicsBeyondEnd(t *testing.T) {
	index := memory.NewVectorIndex()
	seedCatalog(t, index, 3)
	svc := NewCatalogService(index)

	page, err := svc.ListTopics(context.Background(), 10, 2)
	require.NoError(t, err)

	assert.Empty(t, page.Topics)
	assert.Equal(t, 3, page.Total)
	assert.False(t, page.HasMore)
}

func TestListTopicsInvalidPage(t *testing.T) {
	svc := NewCatalogService(memory.NewVectorIndex())

	_, err := svc.ListTopics(context.Background(), 0, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListTopicsClampsLimit(t *testing.T) {
	index := memory.NewVectorIndex()
	seedCatalog(t, index, 3)
	svc := NewCatalogService(index)

	page, err := svc.ListTopics(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalogLimit, page.Limit)

	page, err = svc.ListTopics(context.Background(), 1, 9999)
	require.NoError(t, err)
	assert.Equal(t, MaxCatalogLimit, page.Limit)
}
