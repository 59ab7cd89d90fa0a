package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// Ingestion defaults.
const (
	DefaultIngestWorkers = 4
	DefaultMaxAttempts   = 3
	DefaultRetryBase     = 250 * time.Millisecond
)

// IngestService turns uploaded documents into index entries.
type IngestService struct {
	docStore    driven.DocumentStore
	vectorIndex driven.VectorIndex
	embedder    driven.EmbeddingService
	normalisers driven.NormaliserRegistry
	pipeline    driven.PostProcessorPipeline
	locks       *keyedMutex

	workers     int
	maxAttempts int
	retryBase   time.Duration
	limiter     *rate.Limiter
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithWorkers sets the embedding worker pool size.
func WithWorkers(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithMaxAttempts sets how many times a failing chunk embedding is tried
// before the chunk is excluded.
func WithMaxAttempts(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithRetryBase sets the base delay for exponential backoff between
// embedding attempts.
func WithRetryBase(d time.Duration) IngestOption {
	return func(s *IngestService) {
		if d > 0 {
			s.retryBase = d
		}
	}
}

// WithRateLimit caps embedding requests per second across all workers.
// Zero disables limiting.
func WithRateLimit(rps float64, burst int) IngestOption {
	return func(s *IngestService) {
		if rps > 0 {
			if burst < 1 {
				burst = 1
			}
			s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	docStore driven.DocumentStore,
	vectorIndex driven.VectorIndex,
	embedder driven.EmbeddingService,
	normalisers driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		docStore:    docStore,
		vectorIndex: vectorIndex,
		embedder:    embedder,
		normalisers: normalisers,
		pipeline:    pipeline,
		locks:       newKeyedMutex(),
		workers:     DefaultIngestWorkers,
		maxAttempts: DefaultMaxAttempts,
		retryBase:   DefaultRetryBase,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestFile extracts text from raw file content and ingests it.
func (s *IngestService) IngestFile(ctx context.Context, filename string, content []byte) (*driving.IngestResult, error) {
	text, err := s.normalisers.Normalise(ctx, filename, content)
	if err != nil {
		return nil, fmt.Errorf("normalising %s: %w", filename, err)
	}
	return s.IngestDocument(ctx, filename, text)
}

// IngestDocument chunks, embeds and indexes already-extracted text.
// Re-ingesting a filename replaces the previous document and chunk set
// under the same document id.
func (s *IngestService) IngestDocument(ctx context.Context, filename, text string) (*driving.IngestResult, error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyDocument, filename)
	}

	logger.Section("Ingest")
	logger.Debug("Ingesting %s (%d chars)", filename, len(text))

	// One writer per filename at a time; different files proceed in
	// parallel.
	s.locks.Lock(filename)
	defer s.locks.Unlock(filename)

	doc := &domain.Document{
		ID:        uuid.NewString(),
		Filename:  filename,
		Content:   text,
		CreatedAt: time.Now().UTC(),
	}

	// Re-ingestion keeps the existing document id so references stay
	// stable.
	if existing, err := s.docStore.FindByFilename(ctx, filename); err == nil {
		doc.ID = existing.ID
		logger.Debug("Replacing existing document %s", doc.ID)
	}

	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("chunking %s: %w", filename, err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s produced no chunks", domain.ErrEmptyDocument, filename)
	}
	logger.Debug("Produced %d chunks", len(chunks))

	embedded, warnings := s.embedChunks(ctx, chunks)
	if len(embedded) == 0 {
		return nil, fmt.Errorf("%w: all %d chunks failed for %s",
			domain.ErrEmbeddingService, len(chunks), filename)
	}

	entries := make([]domain.IndexEntry, 0, len(embedded))
	for _, chunk := range embedded {
		entries = append(entries, domain.IndexEntry{
			Chunk:    chunk,
			Filename: filename,
		})
	}

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}
	if err := s.vectorIndex.Upsert(ctx, doc.ID, entries); err != nil {
		return nil, fmt.Errorf("%w: upserting %s: %v", domain.ErrVectorIndex, filename, err)
	}

	logger.Info("Indexed %s: %d chunks, %d failed", filename, len(entries), len(warnings))

	return &driving.IngestResult{
		DocumentID:    doc.ID,
		ChunksIndexed: len(entries),
		ChunksFailed:  len(warnings),
		Warnings:      warnings,
	}, nil
}

// embedChunks runs the embedding worker pool over the chunk set.
// Failed chunks are retried with exponential backoff and excluded
// after the final attempt; every exclusion produces a warning.
func (s *IngestService) embedChunks(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, []string) {
	type outcome struct {
		index int
		chunk domain.Chunk
		err   error
	}

	sem := make(chan struct{}, s.workers)
	results := make(chan outcome, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk domain.Chunk) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			embedding, err := s.embedWithRetry(ctx, chunk.Content)
			if err == nil {
				chunk.Embedding = embedding
			}
			results <- outcome{index: i, chunk: chunk, err: err}
		}(i, chunk)
	}
	wg.Wait()
	close(results)

	var embedded []domain.Chunk
	var warnings []string
	failed := make(map[int]error)
	for out := range results {
		if out.err != nil {
			failed[out.index] = out.err
			continue
		}
		embedded = append(embedded, out.chunk)
	}

	// Deterministic ordering for both the index batch and the warnings.
	sort.Slice(embedded, func(i, j int) bool {
		return embedded[i].Position < embedded[j].Position
	})
	failedIndexes := make([]int, 0, len(failed))
	for i := range failed {
		failedIndexes = append(failedIndexes, i)
	}
	sort.Ints(failedIndexes)
	for _, i := range failedIndexes {
		warnings = append(warnings, fmt.Sprintf("chunk %d excluded after %d attempts: %v",
			chunks[i].Position, s.maxAttempts, failed[i]))
	}

	return embedded, warnings
}

// embedWithRetry embeds one text with bounded retries and exponential
// backoff.
func (s *IngestService) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		embedding, err := s.embedder.Embed(ctx, text)
		if err == nil {
			return embedding, nil
		}
		lastErr = err
		logger.Debug("Embedding attempt %d/%d failed: %v", attempt, s.maxAttempts, err)

		if attempt < s.maxAttempts {
			delay := s.retryBase * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingService, lastErr)
}
