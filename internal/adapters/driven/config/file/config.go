// Package file provides file-based configuration using TOML.
// Configuration lives in a single config.toml inside the docchat
// directory; missing files fall back to defaults.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// Default configuration values.
const (
	DefaultChunkSize       = 800
	DefaultChunkOverlap    = 120
	DefaultPageLines       = 50
	DefaultTopK            = 3
	DefaultSimilarityFloor = 0.25
	DefaultWorkers         = 4
	DefaultMaxAttempts     = 3
	DefaultHTTPAddr        = ":8080"
)

// Config is the full application configuration.
type Config struct {
	// DataDir is where the SQLite database lives.
	DataDir string `toml:"data_dir"`

	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Ingest    IngestConfig    `toml:"ingest"`
	Embedding AIConfig        `toml:"embedding"`
	LLM       AIConfig        `toml:"llm"`
	HTTP      HTTPConfig      `toml:"http"`
}

// ChunkingConfig controls document splitting.
type ChunkingConfig struct {
	Size      int `toml:"size"`
	Overlap   int `toml:"overlap"`
	PageLines int `toml:"page_lines"`
}

// RetrievalConfig controls semantic search.
type RetrievalConfig struct {
	TopK            int     `toml:"top_k"`
	SimilarityFloor float64 `toml:"similarity_floor"`
}

// IngestConfig controls the embedding worker pool.
type IngestConfig struct {
	Workers           int     `toml:"workers"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	MaxAttempts       int     `toml:"max_attempts"`
}

// AIConfig configures an embedding or LLM backend.
type AIConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
	APIKey   string `toml:"api_key"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			Size:      DefaultChunkSize,
			Overlap:   DefaultChunkOverlap,
			PageLines: DefaultPageLines,
		},
		Retrieval: RetrievalConfig{
			TopK:            DefaultTopK,
			SimilarityFloor: DefaultSimilarityFloor,
		},
		Ingest: IngestConfig{
			Workers:     DefaultWorkers,
			MaxAttempts: DefaultMaxAttempts,
		},
		Embedding: AIConfig{
			Provider: string(domain.AIProviderOpenAI),
			Model:    "text-embedding-3-small",
		},
		LLM: AIConfig{
			Provider: string(domain.AIProviderOpenAI),
			Model:    "gpt-4o-mini",
		},
		HTTP: HTTPConfig{
			Addr: DefaultHTTPAddr,
		},
	}
}

// Load reads configuration from configDir/config.toml, applying
// defaults for missing values and environment overrides on top.
// If configDir is empty, defaults to ~/.docchat.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".docchat")
	}

	cfg := Default()
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(configDir, "data")
	}

	path := filepath.Join(configDir, "config.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	applyEnv(cfg)
	return cfg, nil
}

// Save writes the configuration to configDir/config.toml.
func Save(configDir string, cfg *Config) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// applyEnv overlays environment variables on the loaded config.
// OPENAI_API_KEY fills any openai backend missing a key.
func applyEnv(cfg *Config) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return
	}
	if cfg.Embedding.Provider == string(domain.AIProviderOpenAI) && cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = key
	}
	if cfg.LLM.Provider == string(domain.AIProviderOpenAI) && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = key
	}
}

// EmbeddingSettings converts the embedding section to domain settings.
func (c *Config) EmbeddingSettings() *domain.EmbeddingSettings {
	return &domain.EmbeddingSettings{
		Provider: domain.AIProvider(c.Embedding.Provider),
		Model:    c.Embedding.Model,
		APIKey:   c.Embedding.APIKey,
		BaseURL:  c.Embedding.BaseURL,
	}
}

// LLMSettings converts the llm section to domain settings.
func (c *Config) LLMSettings() *domain.LLMSettings {
	return &domain.LLMSettings{
		Provider: domain.AIProvider(c.LLM.Provider),
		Model:    c.LLM.Model,
		APIKey:   c.LLM.APIKey,
		BaseURL:  c.LLM.BaseURL,
	}
}
