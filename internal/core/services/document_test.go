package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

func newDocumentFixture(t *testing.T) (*DocumentService, *memory.DocumentStore, *memory.VectorIndex) {
	t.Helper()
	docs := memory.NewDocumentStore()
	index := memory.NewVectorIndex()
	return NewDocumentService(docs, index), docs, index
}

func TestDocumentListAndGet(t *testing.T) {
	svc, docs, _ := newDocumentFixture(t)
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, &domain.Document{ID: "d1", Filename: "a.txt", Content: "x"}))
	require.NoError(t, docs.SaveDocument(ctx, &domain.Document{ID: "d2", Filename: "b.txt", Content: "y"}))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a.txt", all[0].Filename)

	doc, err := svc.Get(ctx, "d2")
	require.NoError(t, err)
	assert.Equal(t, "b.txt", doc.Filename)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetContentReconstructsOverlappingChunks(t *testing.T) {
	svc, docs, index := newDocumentFixture(t)
	ctx := context.Background()

	full := "0123456789abcdefghij"
	require.NoError(t, docs.SaveDocument(ctx, &domain.Document{ID: "d1", Filename: "w.txt", Content: full}))
	require.NoError(t, index.Upsert(ctx, "d1", []domain.IndexEntry{
		{Chunk: domain.Chunk{ID: "c1", DocumentID: "d1", Position: 0,
			Content: full[0:12], StartOffset: 0, EndOffset: 12, Embedding: []float32{1}}, Filename: "w.txt"},
		{Chunk: domain.Chunk{ID: "c2", DocumentID: "d1", Position: 1,
			Content: full[8:20], StartOffset: 8, EndOffset: 20, Embedding: []float32{1}}, Filename: "w.txt"},
	}))

	content, err := svc.GetContent(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, full, content)
}

func TestGetContentMissingDocument(t *testing.T) {
	svc, _, _ := newDocumentFixture(t)

	_, err := svc.GetContent(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteRemovesDocumentAndEntries(t *testing.T) {
	svc, docs, index := newDocumentFixture(t)
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, &domain.Document{ID: "d1", Filename: "a.txt", Content: "x"}))
	require.NoError(t, index.Upsert(ctx, "d1", []domain.IndexEntry{
		{Chunk: domain.Chunk{ID: "c1", DocumentID: "d1", Content: "x", Embedding: []float32{1}}, Filename: "a.txt"},
	}))

	require.NoError(t, svc.Delete(ctx, "d1"))

	_, err := docs.GetDocument(ctx, "d1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteMissingDocument(t *testing.T) {
	svc, _, _ := newDocumentFixture(t)

	err := svc.Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
