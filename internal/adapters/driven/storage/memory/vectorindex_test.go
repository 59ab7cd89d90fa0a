package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

func entry(chunkID, docID string, position int, topic string, embedding []float32) domain.IndexEntry {
	return domain.IndexEntry{
		Chunk: domain.Chunk{
			ID:         chunkID,
			DocumentID: docID,
			Position:   position,
			Content:    "content of " + chunkID,
			Topic:      topic,
			Embedding:  embedding,
		},
		Filename: docID + ".txt",
	}
}

func TestQueryRanksBySimilarity(t *testing.T) {
	index := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, "d1", []domain.IndexEntry{
		entry("c1", "d1", 0, "", []float32{1, 0}),
		entry("c2", "d1", 1, "", []float32{0.7, 0.7}),
		entry("c3", "d1", 2, "", []float32{0, 1}),
	}))

	hits, err := index.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "c1", hits[0].Entry.Chunk.ID)
	assert.Equal(t, "c2", hits[1].Entry.Chunk.ID)
}

func TestQueryTieBreakIsDeterministic(t *testing.T) {
	index := NewVectorIndex()
	ctx := context.Background()

	// Identical embeddings produce identical scores.
	require.NoError(t, index.Upsert(ctx, "db", []domain.IndexEntry{
		entry("c3", "db", 1, "", []float32{1, 0}),
		entry("c2", "db", 0, "", []float32{1, 0}),
	}))
	require.NoError(t, index.Upsert(ctx, "da", []domain.IndexEntry{
		entry("c1", "da", 0, "", []float32{1, 0}),
	}))

	hits, err := index.Query(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "c1", hits[0].Entry.Chunk.ID)
	assert.Equal(t, "c2", hits[1].Entry.Chunk.ID)
	assert.Equal(t, "c3", hits[2].Entry.Chunk.ID)
}

func TestUpsertRejectsDimensionMismatch(t *testing.T) {
	index := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, "d1", []domain.IndexEntry{
		entry("c1", "d1", 0, "", []float32{1, 0, 0}),
	}))

	err := index.Upsert(ctx, "d2", []domain.IndexEntry{
		entry("c2", "d2", 0, "", []float32{1, 0}),
	})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFindByTopicIgnoresCase(t *testing.T) {
	index := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, "d1", []domain.IndexEntry{
		entry("c1", "d1", 0, "Topic 2-1", []float32{1}),
		entry("c2", "d1", 1, "Topic 2-2", []float32{1}),
	}))

	matched, err := index.FindByTopic(ctx, "TOPIC 2-1")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "c1", matched[0].Chunk.ID)
}

func TestListPreservesInsertionOrder(t *testing.T) {
	index := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, "d1", []domain.IndexEntry{
		entry("c1", "d1", 0, "", []float32{1}),
		entry("c2", "d1", 1, "", []float32{1}),
		entry("c3", "d1", 2, "", []float32{1}),
	}))

	page, err := index.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "c2", page[0].Chunk.ID)
	assert.Equal(t, "c3", page[1].Chunk.ID)

	empty, err := index.List(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeleteDocumentRemovesAllEntries(t *testing.T) {
	index := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, "d1", []domain.IndexEntry{
		entry("c1", "d1", 0, "", []float32{1}),
	}))
	require.NoError(t, index.Upsert(ctx, "d2", []domain.IndexEntry{
		entry("c2", "d2", 0, "", []float32{1}),
	}))

	require.NoError(t, index.DeleteDocument(ctx, "d1"))

	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	hits, err := index.Query(ctx, []float32{1}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c2", hits[0].Entry.Chunk.ID)
}
