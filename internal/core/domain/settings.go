package domain

// AIProvider identifies an embedding or LLM backend.
type AIProvider string

const (
	// AIProviderOpenAI is the hosted OpenAI API (or a compatible endpoint).
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderOllama is a local Ollama server.
	AIProviderOllama AIProvider = "ollama"
)

// EmbeddingSettings configures the embedding service. Consumed read-only
// at startup; the core never mutates it.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string
	APIKey   string
	BaseURL  string
}

// IsConfigured reports whether enough is set to build a service.
func (s EmbeddingSettings) IsConfigured() bool {
	return s.Provider != ""
}

// LLMSettings configures the language model service.
type LLMSettings struct {
	Provider AIProvider
	Model    string
	APIKey   string
	BaseURL  string
}

// IsConfigured reports whether enough is set to build a service.
func (s LLMSettings) IsConfigured() bool {
	return s.Provider != ""
}

// EmbeddingDimensions maps known embedding models to their vector sizes.
// Unknown models fall back to adapter defaults.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		"nomic-embed-text":       768,
		"all-minilm":             384,
	}
}
