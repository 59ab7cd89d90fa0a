package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultChunkSize, cfg.Chunking.Size)
	assert.Equal(t, DefaultTopK, cfg.Retrieval.TopK)
	assert.Equal(t, DefaultSimilarityFloor, cfg.Retrieval.SimilarityFloor)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.NotEmpty(t, cfg.DataDir)
}

func TestLoadParsesFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	dir := t.TempDir()

	content := `
data_dir = "/tmp/docchat-test"

[chunking]
size = 400
overlap = 40

[retrieval]
top_k = 5
similarity_floor = 0.5

[embedding]
provider = "ollama"
model = "nomic-embed-text"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/docchat-test", cfg.DataDir)
	assert.Equal(t, 400, cfg.Chunking.Size)
	assert.Equal(t, 40, cfg.Chunking.Overlap)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 0.5, cfg.Retrieval.SimilarityFloor)
	assert.Equal(t, "ollama", cfg.Embedding.Provider)
}

func TestLoadAppliesEnvKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "sk-from-env", cfg.Embedding.APIKey)
	assert.Equal(t, "sk-from-env", cfg.LLM.APIKey)
}

func TestLoadEnvDoesNotOverrideFileKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	dir := t.TempDir()

	content := `
[llm]
provider = "openai"
model = "gpt-4o-mini"
api_key = "sk-from-file"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-file", cfg.LLM.APIKey)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	dir := t.TempDir()

	cfg := Default()
	cfg.Chunking.Size = 999
	require.NoError(t, Save(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 999, loaded.Chunking.Size)
}

func TestSettingsConversion(t *testing.T) {
	cfg := Default()
	cfg.Embedding.APIKey = "sk-x"

	es := cfg.EmbeddingSettings()
	assert.Equal(t, "text-embedding-3-small", es.Model)
	assert.True(t, es.IsConfigured())

	ls := cfg.LLMSettings()
	assert.Equal(t, "gpt-4o-mini", ls.Model)
}
