package postprocessors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

func TestPipelineRunsProcessorsInOrder(t *testing.T) {
	registry := NewRegistry()
	RegisterDefaults(registry)
	require.True(t, registry.Has("chunker"))

	processor, err := registry.Build("chunker", map[string]any{
		"chunk_size": int64(100), // TOML parses integers as int64
		"overlap":    int64(10),
	})
	require.NoError(t, err)

	pipeline := NewPipeline(processor)
	assert.Equal(t, 1, pipeline.Len())

	doc := &domain.Document{ID: "d1", Content: "Topic 1-1\nsome body text\n"}
	chunks, err := pipeline.Process(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Topic 1-1", chunks[0].Topic)
}

func TestPipelineNilDocument(t *testing.T) {
	pipeline := NewPipeline()
	_, err := pipeline.Process(context.Background(), nil)
	assert.Error(t, err)
}

func TestRegistryUnknownProcessor(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Build("stemmer", nil)
	assert.Error(t, err)
}
