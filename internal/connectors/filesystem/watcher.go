// Package filesystem watches a directory and keeps the index in sync
// with the files in it.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// changeType classifies a filesystem event.
type changeType int

const (
	changeNone changeType = iota
	changeUpsert
	changeDelete
)

// change is one actionable filesystem event.
type change struct {
	typ  changeType
	path string
}

// Watcher ingests files from a directory and reacts to changes.
type Watcher struct {
	ingest     driving.IngestService
	documents  driving.DocumentService
	extensions map[string]bool
}

// NewWatcher creates a watcher. Only files whose extension appears in
// extensions are handled; everything else is ignored.
func NewWatcher(ingest driving.IngestService, documents driving.DocumentService, extensions []string) *Watcher {
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}
	return &Watcher{
		ingest:     ingest,
		documents:  documents,
		extensions: exts,
	}
}

// Watch ingests every matching file already in dir, then blocks
// processing events until the context is cancelled.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	if err := w.scan(ctx, dir); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("adding %s to watcher: %w", dir, err)
	}
	logger.Info("Watching %s", dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.apply(ctx, w.handleFsEvent(event))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// scan ingests all matching files currently in the directory.
func (w *Watcher) scan(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !w.wants(path) {
			continue
		}
		w.ingestFile(ctx, path)
	}
	return nil
}

// handleFsEvent classifies one event. Directories, hidden files and
// unhandled extensions produce no change.
func (w *Watcher) handleFsEvent(event fsnotify.Event) change {
	if isHidden(event.Name) || !w.wants(event.Name) {
		return change{typ: changeNone}
	}

	switch {
	case event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return change{typ: changeNone}
		}
		return change{typ: changeUpsert, path: event.Name}

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		return change{typ: changeDelete, path: event.Name}

	default:
		return change{typ: changeNone}
	}
}

// apply executes a change against the services.
func (w *Watcher) apply(ctx context.Context, c change) {
	switch c.typ {
	case changeUpsert:
		w.ingestFile(ctx, c.path)
	case changeDelete:
		w.removeFile(ctx, c.path)
	}
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Reading %s: %v", path, err)
		return
	}

	filename := filepath.Base(path)
	result, err := w.ingest.IngestFile(ctx, filename, content)
	if err != nil {
		logger.Warn("Ingesting %s: %v", filename, err)
		return
	}
	logger.Info("Ingested %s: %d chunks", filename, result.ChunksIndexed)
	for _, warning := range result.Warnings {
		logger.Warn("%s: %s", filename, warning)
	}
}

func (w *Watcher) removeFile(ctx context.Context, path string) {
	filename := filepath.Base(path)

	docs, err := w.documents.List(ctx)
	if err != nil {
		logger.Warn("Listing documents: %v", err)
		return
	}
	for _, doc := range docs {
		if doc.Filename != filename {
			continue
		}
		if err := w.documents.Delete(ctx, doc.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Deleting %s: %v", filename, err)
			return
		}
		logger.Info("Removed %s from index", filename)
		return
	}
}

// wants reports whether the file extension is handled.
func (w *Watcher) wants(path string) bool {
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

// isHidden reports whether any path element starts with a dot.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
