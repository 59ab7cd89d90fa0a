// Package chunker splits document content into retrievable chunks.
//
// Documents with line-anchored topic markers ("Topic 1-2: Title") are
// split at the markers, each span tagged with its topic label and the
// page/line where it starts. Documents without markers fall back to
// fixed-size windows with overlap so context survives the boundaries.
package chunker

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per windowed chunk.
const DefaultChunkSize = 800

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 120

// DefaultPageLines is the lines-per-page heuristic used when the text
// carries no form feeds.
const DefaultPageLines = 50

// Processor splits document content into chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
	pageLines int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the windowed chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between windows in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithPageLines sets the lines-per-page heuristic.
func WithPageLines(lines int) Option {
	return func(p *Processor) {
		if lines > 0 {
			p.pageLines = lines
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		pageLines: DefaultPageLines,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	content := doc.Content
	if strings.TrimSpace(content) == "" {
		// Empty content produces no chunks; the ingest service reports
		// the upload as a processing failure.
		return nil, nil
	}

	loc := newLocator(content, p.pageLines)

	if markers := domain.FindTopicMarkers(content); len(markers) > 0 {
		return p.topicChunks(doc, content, markers, loc), nil
	}
	return p.windowChunks(doc, content, loc), nil
}

// topicChunks splits at topic markers. Each span runs from one marker
// (inclusive) to the next (exclusive) or to end of text. Text before
// the first marker is kept as an untagged preamble so nothing is lost.
func (p *Processor) topicChunks(
	doc *domain.Document, content string, markers []domain.TopicMarker, loc *locator,
) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(markers)+1)
	position := 0

	if first := markers[0].Offset; first > 0 && strings.TrimSpace(content[:first]) != "" {
		chunks = append(chunks, p.newChunk(doc, content[:first], position, 0, first, "", loc))
		position++
	}

	for i, marker := range markers {
		end := len(content)
		if i+1 < len(markers) {
			end = markers[i+1].Offset
		}
		span := content[marker.Offset:end]
		if strings.TrimSpace(span) == "" {
			continue
		}
		chunks = append(chunks, p.newChunk(doc, span, position, marker.Offset, end, marker.Label(), loc))
		position++
	}

	return chunks
}

// windowChunks splits into fixed-size windows with overlap. Whitespace-only
// windows are dropped; a document shorter than one window yields exactly
// one chunk. Windowed chunks carry no topic label.
func (p *Processor) windowChunks(doc *domain.Document, content string, loc *locator) []domain.Chunk {
	contentLen := len(content)
	step := p.chunkSize - p.overlap

	estimated := contentLen/step + 1
	chunks := make([]domain.Chunk, 0, estimated)
	position := 0

	for start := 0; start < contentLen; start += step {
		end := start + p.chunkSize
		if end > contentLen {
			end = contentLen
		}

		window := content[start:end]
		if strings.TrimSpace(window) != "" {
			chunks = append(chunks, p.newChunk(doc, window, position, start, end, "", loc))
			position++
		}

		if end == contentLen {
			break
		}
	}

	return chunks
}

func (p *Processor) newChunk(
	doc *domain.Document, text string, position, start, end int, topic string, loc *locator,
) domain.Chunk {
	return domain.Chunk{
		ID:          uuid.New().String(),
		DocumentID:  doc.ID,
		Position:    position,
		Content:     text,
		Topic:       topic,
		Page:        loc.pageAt(start),
		Line:        loc.lineAt(start),
		StartOffset: start,
		EndOffset:   end,
	}
}

// locator maps character offsets to 1-based line and page numbers.
// Pages follow form feeds when present, otherwise a fixed line count.
type locator struct {
	lineStarts []int
	pageFeeds  []int
	pageLines  int
}

func newLocator(content string, pageLines int) *locator {
	loc := &locator{
		lineStarts: []int{0},
		pageLines:  pageLines,
	}
	for i, r := range content {
		switch r {
		case '\n':
			loc.lineStarts = append(loc.lineStarts, i+1)
		case '\f':
			loc.pageFeeds = append(loc.pageFeeds, i)
		}
	}
	return loc
}

// lineAt returns the 1-based line number containing the offset.
func (l *locator) lineAt(offset int) int {
	return sort.SearchInts(l.lineStarts, offset+1)
}

// pageAt returns the 1-based page number containing the offset.
func (l *locator) pageAt(offset int) int {
	if len(l.pageFeeds) > 0 {
		return sort.SearchInts(l.pageFeeds, offset) + 1
	}
	return (l.lineAt(offset)-1)/l.pageLines + 1
}
