package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/nickcecere/vecdoc/internal/vector"
)

func init() {
	// Register sqlite-vec extension
	sqlite_vec.Auto()
}

// SQLiteStore implements the Store interface using SQLite and sqlite-vec.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	schema *schemaManager

	dimensions    int
	metric        DistanceMetric
	schemaVersion int
	now           func() time.Time
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithDistanceMetric sets the metric used when the documents table is created.
func WithDistanceMetric(metric DistanceMetric) Option {
	return func(s *SQLiteStore) {
		s.metric = metric
	}
}

// WithSchemaVersion sets the requested schema version. A value above the
// stored version drops and recreates the documents table.
func WithSchemaVersion(version int) Option {
	return func(s *SQLiteStore) {
		s.schemaVersion = version
	}
}

// WithClock overrides the clock used for document timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		s.now = now
	}
}

// NewSQLiteStore opens (or creates) the store at dbPath and brings its schema to READY.
func NewSQLiteStore(dbPath string, dimensions int, opts ...Option) (*SQLiteStore, error) {
	const op = "open"

	s := &SQLiteStore{
		dimensions:    dimensions,
		metric:        MetricL2,
		schemaVersion: currentSchemaVersion,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.dimensions <= 0 {
		return nil, newError(op, ErrSchemaInit, fmt.Errorf("dimensions must be positive, got %d", s.dimensions))
	}
	if _, err := ParseDistanceMetric(string(s.metric)); err != nil {
		return nil, newError(op, ErrSchemaInit, err)
	}
	if s.schemaVersion <= 0 {
		return nil, newError(op, ErrSchemaInit, fmt.Errorf("schema version must be positive, got %d", s.schemaVersion))
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, newError(op, ErrSchemaInit, fmt.Errorf("failed to create database directory: %w", err))
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, newError(op, ErrSchemaInit, fmt.Errorf("failed to open database: %w", err))
	}

	// One connection for the store's lifetime serializes writers.
	db.SetMaxOpenConns(1)

	s.db = db
	s.schema = newSchemaManager(db, s.dimensions, s.metric, s.schemaVersion)

	if err := s.schema.ensure(); err != nil {
		db.Close()
		return nil, newError(op, ErrSchemaInit, err)
	}
	s.metric = s.schema.metric

	log.Debug("Opened SQLite store", "path", dbPath, "dimensions", s.dimensions, "metric", s.metric)

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schema.state != SchemaReady {
		return nil
	}
	s.schema.state = SchemaUninitialized
	return s.db.Close()
}

// Dimensions returns the embedding length every document must have.
func (s *SQLiteStore) Dimensions() int {
	return s.dimensions
}

// Insert stores a document and returns its new id.
func (s *SQLiteStore) Insert(content string, embedding []float32) (*DocumentRef, error) {
	const op = "insert"

	if err := vector.Validate(embedding, s.dimensions); err != nil {
		return nil, newError(op, ErrValidation, err)
	}
	literal := vector.Encode(embedding)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schema.state != SchemaReady {
		return nil, newError(op, ErrNotReady, nil)
	}

	createdAt := s.now().UnixMilli()
	result, err := s.db.Exec(`
		INSERT INTO vec_documents (embedding, content, timestamp)
		VALUES (?, ?, ?)
	`, literal, content, createdAt)
	if err != nil {
		return nil, newError(op, ErrInsertFailed, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, newError(op, ErrInsertFailed, fmt.Errorf("failed to get document ID: %w", err))
	}

	log.Debug("Inserted document", "id", id, "length", len(content))

	return &DocumentRef{ID: id, CreatedAt: createdAt}, nil
}

// ListPage returns up to limit documents with id below cursor, newest first.
// A cursor <= 0 starts from the most recent document.
func (s *SQLiteStore) ListPage(cursor int64, limit int) (*Page, error) {
	const op = "list"

	if limit <= 0 || limit > MaxPageSize {
		return nil, newError(op, ErrValidation, fmt.Errorf("limit must be between 1 and %d, got %d", MaxPageSize, limit))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.schema.state != SchemaReady {
		return nil, newError(op, ErrNotReady, nil)
	}

	// Fetch one extra row: its presence proves another page exists.
	var (
		rows *sql.Rows
		err  error
	)
	if cursor > 0 {
		rows, err = s.db.Query(`
			SELECT id, content, timestamp FROM vec_documents
			WHERE id < ?
			ORDER BY id DESC
			LIMIT ?
		`, cursor, limit+1)
	} else {
		rows, err = s.db.Query(`
			SELECT id, content, timestamp FROM vec_documents
			ORDER BY id DESC
			LIMIT ?
		`, limit+1)
	}
	if err != nil {
		return nil, newError(op, ErrReadFailed, err)
	}
	defer rows.Close()

	page := &Page{
		Documents:  make([]Document, 0, limit),
		NextCursor: NoCursor,
	}
	for rows.Next() {
		if len(page.Documents) == limit {
			page.HasMore = true
			break
		}

		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Content, &doc.CreatedAt); err != nil {
			return nil, newError(op, ErrReadFailed, fmt.Errorf("failed to scan document: %w", err))
		}
		page.Documents = append(page.Documents, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(op, ErrReadFailed, err)
	}

	if page.HasMore {
		page.NextCursor = page.Documents[len(page.Documents)-1].ID
	}

	log.Debug("Listed page", "cursor", cursor, "limit", limit, "count", len(page.Documents), "hasMore", page.HasMore)

	return page, nil
}

// Search returns the k documents nearest to query, ordered by ascending distance.
func (s *SQLiteStore) Search(query []float32, k int) ([]SearchHit, error) {
	const op = "search"

	if err := vector.Validate(query, s.dimensions); err != nil {
		return nil, newError(op, ErrValidation, err)
	}
	if k <= 0 || k > MaxSearchK {
		return nil, newError(op, ErrValidation, fmt.Errorf("k must be between 1 and %d, got %d", MaxSearchK, k))
	}
	literal := vector.Encode(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.schema.state != SchemaReady {
		return nil, newError(op, ErrNotReady, nil)
	}

	// Perform vector search using sqlite-vec
	rows, err := s.db.Query(`
		SELECT id, content, timestamp, distance
		FROM vec_documents
		WHERE embedding MATCH ?
			AND k = ?
		ORDER BY distance ASC
	`, literal, k)
	if err != nil {
		return nil, newError(op, ErrReadFailed, err)
	}
	defer rows.Close()

	hits := make([]SearchHit, 0, k)
	for rows.Next() {
		var (
			hit      SearchHit
			distance float64
		)
		if err := rows.Scan(&hit.ID, &hit.Content, &hit.CreatedAt, &distance); err != nil {
			return nil, newError(op, ErrReadFailed, fmt.Errorf("failed to scan search result: %w", err))
		}
		hit.Distance = float32(distance)
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(op, ErrReadFailed, err)
	}

	log.Debug("Search complete", "k", k, "results", len(hits))

	return hits, nil
}

// Count returns the number of stored documents.
func (s *SQLiteStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.count()
}

func (s *SQLiteStore) count() (int, error) {
	const op = "count"

	if s.schema.state != SchemaReady {
		return 0, newError(op, ErrNotReady, nil)
	}

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM vec_documents").Scan(&n); err != nil {
		return 0, newError(op, ErrReadFailed, err)
	}
	return n, nil
}

// Stats returns the document count along with schema and library versions.
func (s *SQLiteStore) Stats() (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := s.count()
	if err != nil {
		return nil, err
	}

	return &Stats{
		Documents:      n,
		Dimensions:     s.dimensions,
		DistanceMetric: s.metric,
		SchemaVersion:  s.schemaVersion,
		SQLiteVersion:  s.schema.sqliteVersion,
		VecVersion:     s.schema.vecVersion,
	}, nil
}

// Ensure SQLiteStore satisfies the Store interface.
var _ Store = (*SQLiteStore)(nil)
