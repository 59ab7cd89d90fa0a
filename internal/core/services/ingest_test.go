package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/normalisers"
	"github.com/custodia-labs/docchat-cli/internal/normalisers/plaintext"
	"github.com/custodia-labs/docchat-cli/internal/postprocessors"
	"github.com/custodia-labs/docchat-cli/internal/postprocessors/chunker"
)

func newIngestFixture(t *testing.T, embedder *mockEmbeddingService, opts ...IngestOption) (*IngestService, *memory.DocumentStore, *memory.VectorIndex) {
	t.Helper()

	registry := normalisers.NewRegistry()
	registry.Register(plaintext.New())

	docs := memory.NewDocumentStore()
	index := memory.NewVectorIndex()

	base := []IngestOption{WithRetryBase(time.Millisecond)}
	svc := NewIngestService(docs, index, embedder, registry,
		postprocessors.NewPipeline(chunker.New()), append(base, opts...)...)
	return svc, docs, index
}

func TestIngestDocumentIndexesChunks(t *testing.T) {
	embedder := &mockEmbeddingService{embedding: []float32{1, 0, 0}}
	svc, docs, index := newIngestFixture(t, embedder)
	ctx := context.Background()

	text := "Topic 1-1\nFirst section.\nTopic 1-2\nSecond section.\n"
	result, err := svc.IngestDocument(ctx, "guide.txt", text)
	require.NoError(t, err)

	assert.Equal(t, 2, result.ChunksIndexed)
	assert.Zero(t, result.ChunksFailed)
	assert.Empty(t, result.Warnings)
	assert.NotEmpty(t, result.DocumentID)

	doc, err := docs.GetDocument(ctx, result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "guide.txt", doc.Filename)

	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	entries, err := index.FindByTopic(ctx, "Topic 1-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "guide.txt", entries[0].Filename)
	assert.Equal(t, []float32{1, 0, 0}, entries[0].Chunk.Embedding)
}

func TestIngestDocumentEmptyText(t *testing.T) {
	svc, _, _ := newIngestFixture(t, &mockEmbeddingService{embedding: []float32{1}})

	_, err := svc.IngestDocument(context.Background(), "empty.txt", "  \n\t ")
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestIngestFileUnsupportedExtension(t *testing.T) {
	svc, _, _ := newIngestFixture(t, &mockEmbeddingService{embedding: []float32{1}})

	_, err := svc.IngestFile(context.Background(), "image.png", []byte{0xFF})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestReingestReplacesChunksAndKeepsID(t *testing.T) {
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	svc, _, index := newIngestFixture(t, embedder)
	ctx := context.Background()

	first, err := svc.IngestDocument(ctx, "notes.txt", "Topic 1-1\nold body\nTopic 1-2\nmore\n")
	require.NoError(t, err)
	assert.Equal(t, 2, first.ChunksIndexed)

	second, err := svc.IngestDocument(ctx, "notes.txt", "Topic 9-9\nnew body\n")
	require.NoError(t, err)
	assert.Equal(t, first.DocumentID, second.DocumentID)
	assert.Equal(t, 1, second.ChunksIndexed)

	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stale, err := index.FindByTopic(ctx, "Topic 1-1")
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestIngestRetriesTransientEmbeddingFailure(t *testing.T) {
	boom := errors.New("rate limited")
	embedder := &mockEmbeddingService{
		embedFn: func(call int, _ string) ([]float32, error) {
			if call == 1 {
				return nil, boom
			}
			return []float32{1, 0}, nil
		},
	}
	svc, _, _ := newIngestFixture(t, embedder, WithWorkers(1), WithMaxAttempts(3))

	result, err := svc.IngestDocument(context.Background(), "a.txt", "short document body")
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChunksIndexed)
	assert.Zero(t, result.ChunksFailed)
	assert.Equal(t, 2, embedder.callCount())
}

func TestIngestExcludesChunkAfterRetriesExhausted(t *testing.T) {
	boom := errors.New("backend down")
	embedder := &mockEmbeddingService{
		embedFn: func(_ int, text string) ([]float32, error) {
			if text == "Topic 1-2\nbad section\n" {
				return nil, boom
			}
			return []float32{1, 0}, nil
		},
	}
	svc, _, index := newIngestFixture(t, embedder, WithWorkers(1), WithMaxAttempts(2))
	ctx := context.Background()

	text := "Topic 1-1\ngood section\nTopic 1-2\nbad section\n"
	result, err := svc.IngestDocument(ctx, "partial.txt", text)
	require.NoError(t, err)

	assert.Equal(t, 1, result.ChunksIndexed)
	assert.Equal(t, 1, result.ChunksFailed)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "excluded after 2 attempts")

	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIngestFailsWhenAllChunksFail(t *testing.T) {
	embedder := &mockEmbeddingService{
		embedFn: func(_ int, _ string) ([]float32, error) {
			return nil, fmt.Errorf("no embeddings today")
		},
	}
	svc, _, index := newIngestFixture(t, embedder, WithMaxAttempts(2))
	ctx := context.Background()

	_, err := svc.IngestDocument(ctx, "doomed.txt", "some body text")
	assert.ErrorIs(t, err, domain.ErrEmbeddingService)

	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIngestConcurrentSameFilename(t *testing.T) {
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	svc, docs, _ := newIngestFixture(t, embedder)
	ctx := context.Background()

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func(i int) {
			_, err := svc.IngestDocument(ctx, "same.txt", fmt.Sprintf("version %d body text", i))
			done <- err
		}(i)
	}
	for i := 0; i < 2; i++ {
		require.NoError(t, <-done)
	}

	all, err := docs.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
