package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// Retrieval defaults.
const (
	DefaultTopK            = 3
	DefaultSimilarityFloor = 0.25
	DefaultPreviewLength   = 160
)

// noContentAnswer is returned when retrieval finds nothing relevant.
const noContentAnswer = "I could not find anything relevant to your question in the uploaded documents."

// systemPrompt constrains the model to the retrieved excerpts.
const systemPrompt = `You are an assistant that answers questions about uploaded documents.
Answer using ONLY the provided document excerpts. If the excerpts do not
contain enough information to answer, say so plainly. Do not use outside
knowledge and do not invent details. When the excerpts are relevant,
mention which source they came from.`

// AskService answers questions from indexed content.
type AskService struct {
	vectorIndex driven.VectorIndex
	embedder    driven.EmbeddingService
	llm         driven.LLMService

	topK       int
	floor      float64
	previewLen int
	docURLBase string
}

// AskOption configures an AskService.
type AskOption func(*AskService)

// WithTopK sets how many candidates semantic search returns.
func WithTopK(k int) AskOption {
	return func(s *AskService) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithSimilarityFloor sets the minimum similarity for a candidate to be
// used. Candidates below the floor are discarded.
func WithSimilarityFloor(floor float64) AskOption {
	return func(s *AskService) {
		if floor >= 0 {
			s.floor = floor
		}
	}
}

// WithDocURLBase sets the prefix for source document URLs. Empty leaves
// DocURL unset.
func WithDocURLBase(base string) AskOption {
	return func(s *AskService) {
		s.docURLBase = base
	}
}

// NewAskService creates a new ask service.
func NewAskService(
	vectorIndex driven.VectorIndex,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	opts ...AskOption,
) *AskService {
	s := &AskService{
		vectorIndex: vectorIndex,
		embedder:    embedder,
		llm:         llm,
		topK:        DefaultTopK,
		floor:       DefaultSimilarityFloor,
		previewLen:  DefaultPreviewLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Retrieve runs only the retrieval stage. Questions naming a topic
// marker take the exact-lookup path; everything else is semantic
// search. An exact lookup with no matches falls back to semantic
// search rather than returning empty.
func (s *AskService) Retrieve(ctx context.Context, question string) ([]domain.RetrievalResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	if ref, ok := domain.ParseTopicQuery(question); ok {
		logger.Debug("Exact topic lookup: %s", ref.Label())
		entries, err := s.vectorIndex.FindByTopic(ctx, ref.Label())
		if err != nil {
			return nil, fmt.Errorf("%w: topic lookup: %v", domain.ErrVectorIndex, err)
		}
		if len(entries) > 0 {
			results := make([]domain.RetrievalResult, len(entries))
			for i, entry := range entries {
				results[i] = domain.RetrievalResult{
					Entry: entry,
					Score: 1.0,
					Rank:  i + 1,
				}
			}
			return results, nil
		}
		logger.Debug("No entries for %s, falling back to semantic search", ref.Label())
	}

	return s.semanticSearch(ctx, question)
}

// Ask retrieves relevant chunks and synthesises a grounded answer.
func (s *AskService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	logger.Section("Ask")

	results, err := s.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		logger.Info("No relevant content for question")
		return &domain.Answer{
			Text:              noContentAnswer,
			Sources:           []domain.Source{},
			NoRelevantContent: true,
		}, nil
	}

	messages := []driven.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: s.buildUserPrompt(question, results)},
	}

	logger.Debug("Synthesising answer from %d sources with %s", len(results), s.llm.ModelName())
	text, err := s.llm.Chat(ctx, messages, driven.ChatOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	return &domain.Answer{
		Text:    text,
		Sources: s.buildSources(results),
	}, nil
}

// semanticSearch embeds the question and ranks index entries by cosine
// similarity, discarding candidates below the floor.
func (s *AskService) semanticSearch(ctx context.Context, question string) ([]domain.RetrievalResult, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	embedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	hits, err := s.vectorIndex.Query(ctx, embedding, s.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", domain.ErrVectorIndex, err)
	}

	var results []domain.RetrievalResult
	for _, hit := range hits {
		if hit.Similarity < s.floor {
			continue
		}
		results = append(results, domain.RetrievalResult{
			Entry: hit.Entry,
			Score: hit.Similarity,
			Rank:  len(results) + 1,
		})
	}
	logger.Debug("Semantic search: %d hits, %d above floor %.2f", len(hits), len(results), s.floor)
	return results, nil
}

// buildUserPrompt assembles the grounded prompt from the retrieved
// excerpts and the question.
func (s *AskService) buildUserPrompt(question string, results []domain.RetrievalResult) string {
	var b strings.Builder
	b.WriteString("Document excerpts:\n\n")
	for _, result := range results {
		chunk := result.Entry.Chunk
		b.WriteString(fmt.Sprintf("[Source %d: %s", result.Rank, result.Entry.Filename))
		if chunk.Topic != "" {
			b.WriteString(", " + chunk.Topic)
		}
		b.WriteString("]\n")
		b.WriteString(chunk.Content)
		b.WriteString("\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}

// buildSources converts retrieval results to user-facing citations.
// Scores are surfaced as percentages.
func (s *AskService) buildSources(results []domain.RetrievalResult) []domain.Source {
	sources := make([]domain.Source, len(results))
	for i, result := range results {
		chunk := result.Entry.Chunk
		source := domain.Source{
			Filename: result.Entry.Filename,
			ChunkID:  chunk.ID,
			Score:    result.Score * 100,
			Preview:  truncate(chunk.Content, s.previewLen),
			Page:     chunk.Page,
			Line:     chunk.Line,
			Topic:    chunk.Topic,
		}
		if s.docURLBase != "" {
			source.DocURL = s.docURLBase + chunk.DocumentID
		}
		sources[i] = source
	}
	return sources
}

// truncate shortens text to at most n runes, appending an ellipsis when
// anything was cut.
func truncate(text string, n int) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:n])) + "..."
}
