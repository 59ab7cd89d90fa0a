package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
)

// dimensionsKey is the index_meta row recording the embedding size.
const dimensionsKey = "dimensions"

// Store is a unified SQLite-based storage providing the document store
// and vector index interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docchat/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docchat", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "docchat.db")

	// WAL mode for better concurrency between readers and the writer.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// VectorIndex returns a VectorIndex interface backed by this store.
func (s *Store) VectorIndex() driven.VectorIndex {
	return &vectorIndex{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, content, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			content = excluded.content,
			created_at = excluded.created_at
	`, doc.ID, doc.Filename, doc.Content, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, filename, content, created_at
		FROM documents WHERE id = ?
	`, id)
	return scanDocument(row)
}

// FindByFilename retrieves a document by its upload filename.
func (s *documentStore) FindByFilename(ctx context.Context, filename string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, filename, content, created_at
		FROM documents WHERE filename = ?
	`, filename)
	return scanDocument(row)
}

// ListDocuments returns all documents in insertion order.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, filename, content, created_at
		FROM documents ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.Content, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	err := row.Scan(&doc.ID, &doc.Filename, &doc.Content, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return &doc, nil
}

// ==================== Vector Index ====================

// vectorIndex implements driven.VectorIndex.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Upsert replaces all entries for the document atomically. The first
// batch ever written fixes the index dimensionality; later batches with
// a different embedding size are rejected.
func (v *vectorIndex) Upsert(ctx context.Context, documentID string, entries []domain.IndexEntry) error {
	if documentID == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if len(entries) > 0 {
		dims, err := v.indexDimensions(ctx, tx)
		if err != nil {
			return err
		}
		batchDims := len(entries[0].Chunk.Embedding)
		for _, entry := range entries {
			if len(entry.Chunk.Embedding) != batchDims {
				return fmt.Errorf("%w: mixed embedding sizes in batch", domain.ErrDimensionMismatch)
			}
		}
		if dims == 0 {
			if err := v.setIndexDimensions(ctx, tx, batchDims); err != nil {
				return err
			}
		} else if batchDims != dims {
			return fmt.Errorf("%w: index holds %d-dimensional vectors, got %d",
				domain.ErrDimensionMismatch, dims, batchDims)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM index_entries WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("clearing old entries: %w", err)
	}

	for _, entry := range entries {
		chunk := entry.Chunk
		_, err := tx.ExecContext(ctx, `
			INSERT INTO index_entries
				(chunk_id, document_id, position, content, topic, page, line,
				 start_offset, end_offset, filename, embedding)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, chunk.ID, chunk.DocumentID, chunk.Position, chunk.Content, chunk.Topic,
			chunk.Page, chunk.Line, chunk.StartOffset, chunk.EndOffset,
			entry.Filename, float32SliceToBytes(chunk.Embedding))
		if err != nil {
			return fmt.Errorf("inserting entry %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}
	return nil
}

// DeleteDocument removes every entry belonging to the document.
func (v *vectorIndex) DeleteDocument(ctx context.Context, documentID string) error {
	_, err := v.store.db.ExecContext(ctx,
		"DELETE FROM index_entries WHERE document_id = ?", documentID)
	if err != nil {
		return fmt.Errorf("deleting entries: %w", err)
	}
	return nil
}

// Query scans all entries and ranks them by cosine similarity. Rows are
// read in (document_id, position) order so equal scores keep a stable
// tie-break.
func (v *vectorIndex) Query(ctx context.Context, embedding []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", domain.ErrInvalidInput)
	}

	dims, err := v.indexDimensions(ctx, nil)
	if err != nil {
		return nil, err
	}
	if dims != 0 && len(embedding) != dims {
		return nil, fmt.Errorf("%w: index holds %d-dimensional vectors, got %d",
			domain.ErrDimensionMismatch, dims, len(embedding))
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT chunk_id, document_id, position, content, topic, page, line,
		       start_offset, end_offset, filename, embedding
		FROM index_entries
		ORDER BY document_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		hits = append(hits, driven.VectorHit{
			Entry:      entry,
			Similarity: cosineSimilarity(embedding, entry.Chunk.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	// Stable sort preserves the (document_id, position) read order for
	// equal scores.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// FindByTopic returns entries matching the topic label, case-insensitive.
func (v *vectorIndex) FindByTopic(ctx context.Context, label string) ([]domain.IndexEntry, error) {
	rows, err := v.store.db.QueryContext(ctx, `
		SELECT chunk_id, document_id, position, content, topic, page, line,
		       start_offset, end_offset, filename, embedding
		FROM index_entries
		WHERE topic = ? COLLATE NOCASE
		ORDER BY document_id, position
	`, label)
	if err != nil {
		return nil, fmt.Errorf("querying by topic: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// FindByDocument returns the document's entries in position order.
func (v *vectorIndex) FindByDocument(ctx context.Context, documentID string) ([]domain.IndexEntry, error) {
	rows, err := v.store.db.QueryContext(ctx, `
		SELECT chunk_id, document_id, position, content, topic, page, line,
		       start_offset, end_offset, filename, embedding
		FROM index_entries
		WHERE document_id = ?
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying by document: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// List returns entries in insertion order for catalog paging.
func (v *vectorIndex) List(ctx context.Context, offset, limit int) ([]domain.IndexEntry, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: negative offset or limit", domain.ErrInvalidInput)
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT chunk_id, document_id, position, content, topic, page, line,
		       start_offset, end_offset, filename, embedding
		FROM index_entries
		ORDER BY rowid
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// Count returns the total number of entries.
func (v *vectorIndex) Count(ctx context.Context) (int, error) {
	var count int
	row := v.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM index_entries")
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return count, nil
}

// Close is a no-op; the owning Store closes the database.
func (v *vectorIndex) Close() error {
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// indexDimensions reads the recorded embedding size, 0 when unset.
func (v *vectorIndex) indexDimensions(ctx context.Context, q querier) (int, error) {
	if q == nil {
		q = v.store.db
	}
	var value string
	row := q.QueryRowContext(ctx, "SELECT value FROM index_meta WHERE key = ?", dimensionsKey)
	err := row.Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading index dimensions: %w", err)
	}
	dims, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parsing index dimensions: %w", err)
	}
	return dims, nil
}

// setIndexDimensions records the embedding size on first write.
func (v *vectorIndex) setIndexDimensions(ctx context.Context, tx *sql.Tx, dims int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO index_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, dimensionsKey, strconv.Itoa(dims))
	if err != nil {
		return fmt.Errorf("recording index dimensions: %w", err)
	}
	return nil
}

func scanEntry(rows *sql.Rows) (domain.IndexEntry, error) {
	var entry domain.IndexEntry
	var blob []byte
	chunk := &entry.Chunk
	err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Position, &chunk.Content,
		&chunk.Topic, &chunk.Page, &chunk.Line, &chunk.StartOffset, &chunk.EndOffset,
		&entry.Filename, &blob)
	if err != nil {
		return domain.IndexEntry{}, fmt.Errorf("scanning entry: %w", err)
	}
	chunk.Embedding = bytesToFloat32Slice(blob)
	return entry, nil
}

func collectEntries(rows *sql.Rows) ([]domain.IndexEntry, error) {
	var entries []domain.IndexEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// float32SliceToBytes serialises a vector as little-endian float32s.
func float32SliceToBytes(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// bytesToFloat32Slice deserialises a little-endian float32 vector.
func bytesToFloat32Slice(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}

// cosineSimilarity computes the cosine similarity between two vectors.
// Returns 0 for zero-magnitude vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
