package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/services"
	"github.com/custodia-labs/docchat-cli/internal/normalisers"
	"github.com/custodia-labs/docchat-cli/internal/normalisers/plaintext"
	"github.com/custodia-labs/docchat-cli/internal/postprocessors"
	"github.com/custodia-labs/docchat-cli/internal/postprocessors/chunker"
)

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (f fixedEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (fixedEmbedder) Dimensions() int              { return 2 }
func (fixedEmbedder) ModelName() string            { return "fixed" }
func (fixedEmbedder) Ping(_ context.Context) error { return nil }
func (fixedEmbedder) Close() error                 { return nil }

func newWatcherFixture(t *testing.T) (*Watcher, *memory.DocumentStore) {
	t.Helper()

	registry := normalisers.NewRegistry()
	registry.Register(plaintext.New())

	docs := memory.NewDocumentStore()
	index := memory.NewVectorIndex()
	ingest := services.NewIngestService(docs, index, fixedEmbedder{}, registry,
		postprocessors.NewPipeline(chunker.New()))
	documents := services.NewDocumentService(docs, index)

	return NewWatcher(ingest, documents, registry.SupportedExtensions()), docs
}

func TestHandleFsEventClassification(t *testing.T) {
	watcher, _ := newWatcherFixture(t)
	dir := t.TempDir()

	existing := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(existing, []byte("body"), 0644))

	tests := []struct {
		name     string
		path     string
		op       fsnotify.Op
		expected changeType
	}{
		{"create text file", existing, fsnotify.Create, changeUpsert},
		{"write text file", existing, fsnotify.Write, changeUpsert},
		{"remove text file", filepath.Join(dir, "gone.txt"), fsnotify.Remove, changeDelete},
		{"rename text file", filepath.Join(dir, "gone.txt"), fsnotify.Rename, changeDelete},
		{"chmod ignored", existing, fsnotify.Chmod, changeNone},
		{"unsupported extension", filepath.Join(dir, "pic.png"), fsnotify.Create, changeNone},
		{"hidden file", filepath.Join(dir, ".secret.txt"), fsnotify.Create, changeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := watcher.handleFsEvent(fsnotify.Event{Name: tt.path, Op: tt.op})
			assert.Equal(t, tt.expected, c.typ)
		})
	}
}

func TestScanIngestsExistingFiles(t *testing.T) {
	watcher, docs := newWatcherFixture(t)
	dir := t.TempDir()
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha content"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("beta content"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.png"), []byte{0xFF}, 0644))

	require.NoError(t, watcher.scan(ctx, dir))

	all, err := docs.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestApplyDeleteRemovesDocument(t *testing.T) {
	watcher, docs := newWatcherFixture(t)
	dir := t.TempDir()
	ctx := context.Background()

	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha content"), 0644))
	require.NoError(t, watcher.scan(ctx, dir))

	watcher.apply(ctx, change{typ: changeDelete, path: path})

	all, err := docs.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestWatchRejectsMissingDirectory(t *testing.T) {
	watcher, _ := newWatcherFixture(t)

	err := watcher.Watch(context.Background(), "/does/not/exist")
	assert.Error(t, err)
}

func TestWatchRejectsFilePath(t *testing.T) {
	watcher, _ := newWatcherFixture(t)
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	err := watcher.Watch(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
