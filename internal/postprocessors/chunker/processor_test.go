package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

func testDoc(content string) *domain.Document {
	return &domain.Document{ID: "doc-1", Filename: "test.txt", Content: content}
}

func TestTopicSplitting(t *testing.T) {
	content := "Topic 1-1: Introduction\nFirst section body.\nTopic 1-2: Details\nSecond section body.\n"
	p := New()

	chunks, err := p.Process(context.Background(), testDoc(content), nil)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "Topic 1-1", chunks[0].Topic)
	assert.Equal(t, "Topic 1-2", chunks[1].Topic)
	assert.Equal(t, 0, chunks[0].Position)
	assert.Equal(t, 1, chunks[1].Position)
	assert.Contains(t, chunks[0].Content, "First section body.")
	assert.Contains(t, chunks[1].Content, "Second section body.")

	// Spans are contiguous: concatenation reproduces the document.
	assert.Equal(t, content, chunks[0].Content+chunks[1].Content)
}

func TestTopicSplittingKeepsPreamble(t *testing.T) {
	content := "Cover page text.\nTopic 2-1\nBody.\n"
	p := New()

	chunks, err := p.Process(context.Background(), testDoc(content), nil)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Empty(t, chunks[0].Topic)
	assert.Equal(t, "Cover page text.\n", chunks[0].Content)
	assert.Equal(t, "Topic 2-1", chunks[1].Topic)
	assert.Equal(t, content, chunks[0].Content+chunks[1].Content)
}

func TestTopicPageAndLineMetadata(t *testing.T) {
	// Three pages separated by form feeds, markers on pages 1 and 2.
	content := "Topic 1-1\nalpha\nbeta\f\nTopic 1-2\ngamma\f\nclosing notes\n"
	p := New()

	chunks, err := p.Process(context.Background(), testDoc(content), nil)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 1, chunks[0].Line)
	assert.Equal(t, 2, chunks[1].Page)
	assert.Equal(t, 4, chunks[1].Line)
}

func TestLineCountPageHeuristic(t *testing.T) {
	// No form feeds: pages come from the line count.
	var b strings.Builder
	for i := 0; i < 12; i++ {
		b.WriteString("filler line\n")
	}
	b.WriteString("Topic 4-1\nbody\n")
	p := New(WithPageLines(10))

	chunks, err := p.Process(context.Background(), testDoc(b.String()), nil)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 2, chunks[1].Page) // line 13 with 10 lines per page
	assert.Equal(t, 13, chunks[1].Line)
}

func TestWindowedFallback(t *testing.T) {
	content := strings.Repeat("abcdefghij", 30) // 300 chars, no markers
	p := New(WithChunkSize(100), WithOverlap(20))

	chunks, err := p.Process(context.Background(), testDoc(content), nil)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i, chunk := range chunks {
		assert.Empty(t, chunk.Topic)
		assert.Equal(t, i, chunk.Position)
		assert.NotEmpty(t, strings.TrimSpace(chunk.Content))
		assert.Equal(t, content[chunk.StartOffset:chunk.EndOffset], chunk.Content)
	}

	// Consecutive windows overlap so no text is lost between boundaries.
	for i := 1; i < len(chunks); i++ {
		assert.LessOrEqual(t, chunks[i].StartOffset, chunks[i-1].EndOffset)
	}

	// Offset-aware reconstruction reproduces the document exactly.
	var rebuilt strings.Builder
	covered := 0
	for _, chunk := range chunks {
		if chunk.EndOffset <= covered {
			continue
		}
		skip := covered - chunk.StartOffset
		rebuilt.WriteString(chunk.Content[skip:])
		covered = chunk.EndOffset
	}
	assert.Equal(t, content, rebuilt.String())
}

func TestShortDocumentSingleChunk(t *testing.T) {
	p := New(WithChunkSize(500), WithOverlap(50))

	chunks, err := p.Process(context.Background(), testDoc("tiny note"), nil)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "tiny note", chunks[0].Content)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 1, chunks[0].Line)
}

func TestEmptyContentYieldsNoChunks(t *testing.T) {
	p := New()

	chunks, err := p.Process(context.Background(), testDoc("   \n\t\n"), nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestOverlapClampedToChunkSize(t *testing.T) {
	p := New(WithChunkSize(100), WithOverlap(150))

	chunks, err := p.Process(context.Background(), testDoc(strings.Repeat("x", 250)), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, chunks) // no infinite loop, overlap was clamped
}
