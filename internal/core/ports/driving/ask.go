package driving

import (
	"context"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// AskService answers natural-language questions from indexed content.
type AskService interface {
	// Ask retrieves relevant chunks and synthesises a grounded answer
	// with cited sources. When nothing relevant is found it returns an
	// explicit empty-sources answer rather than erroring.
	Ask(ctx context.Context, question string) (*domain.Answer, error)

	// Retrieve runs only the retrieval stage, returning ranked chunks.
	Retrieve(ctx context.Context, question string) ([]domain.RetrievalResult, error)
}
