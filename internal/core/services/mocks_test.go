package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// The embed function defaults to a fixed vector; failures can be
// scripted per call.
type mockEmbeddingService struct {
	mu        sync.Mutex
	embedding []float32
	dims      int
	calls     int
	embedFn   func(call int, text string) ([]float32, error)
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	fn := m.embedFn
	m.mu.Unlock()

	if fn != nil {
		return fn(call, text)
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = embedding
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return len(m.embedding)
}

func (m *mockEmbeddingService) ModelName() string            { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                 { return nil }

func (m *mockEmbeddingService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response string
	err      error
	messages []driven.ChatMessage
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.messages = []driven.ChatMessage{{Role: "user", Content: prompt}}
	return m.response, nil
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.messages = messages
	return m.response, nil
}

func (m *mockLLMService) ModelName() string            { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error                 { return nil }
