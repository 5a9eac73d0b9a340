package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// TrackerStore persists file records, lexical documents, and symbols
// in a single SQLite database. It is opened for the duration of one
// build or query operation and closed afterwards.
type TrackerStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
}

// NewTrackerStore opens (or creates) the tracker database.
// If path is empty, an in-memory database is used for testing.
func NewTrackerStore(path string) (*TrackerStore, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open tracker database: %w", err)
	}

	// Single writer keeps SQLite lock contention away.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	s := &TrackerStore{db: db, path: path}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize tracker schema: %w", err)
	}
	return s, nil
}

// initSchema creates the tracker tables.
func (s *TrackerStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS files (
		path         TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL,
		mtime_ns     INTEGER NOT NULL,
		size         INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS documents (
		path    TEXT PRIMARY KEY,
		content TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS symbols (
		id         TEXT PRIMARY KEY,
		path       TEXT NOT NULL,
		name       TEXT NOT NULL,
		kind       TEXT NOT NULL,
		start_line INTEGER NOT NULL,
		end_line   INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_symbols_path ON symbols(path);
	CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// HashContent computes the content hash used for FileRecords and chunks.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// SymbolID derives the stable pointer id for a symbol.
func SymbolID(path, name string, startLine int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%d", path, name, startLine)))
	return hex.EncodeToString(sum[:])[:16]
}

// GetFile returns the stored record for a path, or nil when absent.
func (s *TrackerStore) GetFile(ctx context.Context, path string) (*FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("tracker store is closed")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT path, content_hash, mtime_ns, size FROM files WHERE path = ?`, path)
	return scanFileRecord(row)
}

// AllFiles returns every stored file record keyed by path.
func (s *TrackerStore) AllFiles(ctx context.Context) (map[string]*FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("tracker store is closed")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT path, content_hash, mtime_ns, size FROM files`)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	records := make(map[string]*FileRecord)
	for rows.Next() {
		var rec FileRecord
		var mtimeNS int64
		if err := rows.Scan(&rec.Path, &rec.ContentHash, &mtimeNS, &rec.Size); err != nil {
			return nil, fmt.Errorf("scan file record: %w", err)
		}
		rec.ModTime = time.Unix(0, mtimeNS)
		records[rec.Path] = &rec
	}
	return records, rows.Err()
}

// SaveFile writes or replaces a file record.
func (s *TrackerStore) SaveFile(ctx context.Context, rec *FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("tracker store is closed")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO files (path, content_hash, mtime_ns, size) VALUES (?, ?, ?, ?)`,
		rec.Path, rec.ContentHash, rec.ModTime.UnixNano(), rec.Size)
	if err != nil {
		return fmt.Errorf("save file record %s: %w", rec.Path, err)
	}
	return nil
}

// DeleteFile removes a file record with its document and symbols.
func (s *TrackerStore) DeleteFile(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("tracker store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM files WHERE path = ?`,
		`DELETE FROM documents WHERE path = ?`,
		`DELETE FROM symbols WHERE path = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, path); err != nil {
			return fmt.Errorf("delete %s: %w", path, err)
		}
	}
	return tx.Commit()
}

// SaveDocument writes or replaces the stored text for a path.
func (s *TrackerStore) SaveDocument(ctx context.Context, path, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("tracker store is closed")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (path, content) VALUES (?, ?)`, path, content)
	if err != nil {
		return fmt.Errorf("save document %s: %w", path, err)
	}
	return nil
}

// GetDocument returns the stored text for a path ("" when absent).
func (s *TrackerStore) GetDocument(ctx context.Context, path string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", fmt.Errorf("tracker store is closed")
	}

	var content string
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM documents WHERE path = ?`, path).Scan(&content)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get document %s: %w", path, err)
	}
	return content, nil
}

// AllDocuments returns every stored document keyed by path.
// This is the corpus for chunking and for the scan fallback backend.
func (s *TrackerStore) AllDocuments(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("tracker store is closed")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT path, content FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := make(map[string]string)
	for rows.Next() {
		var path, content string
		if err := rows.Scan(&path, &content); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs[path] = content
	}
	return docs, rows.Err()
}

// ReplaceSymbols deletes all symbols for a path and inserts the new set.
// Never partially merged: the old rows are gone before the first insert.
func (s *TrackerStore) ReplaceSymbols(ctx context.Context, path string, symbols []*SymbolRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("tracker store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin symbol transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM symbols WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete symbols for %s: %w", path, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO symbols (id, path, name, kind, start_line, end_line) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare symbol insert: %w", err)
	}
	defer stmt.Close()

	for _, sym := range symbols {
		if _, err := stmt.ExecContext(ctx,
			sym.ID, sym.Path, sym.Name, string(sym.Kind), sym.StartLine, sym.EndLine); err != nil {
			return fmt.Errorf("insert symbol %s: %w", sym.Name, err)
		}
	}
	return tx.Commit()
}

// SearchSymbols finds symbols whose name matches the query exactly or
// as a case-insensitive substring. Exact matches come first, then by
// name and path for determinism.
func (s *TrackerStore) SearchSymbols(ctx context.Context, query string, limit int) ([]*SymbolRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("tracker store is closed")
	}
	if strings.TrimSpace(query) == "" {
		return []*SymbolRecord{}, nil
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, name, kind, start_line, end_line
		FROM symbols
		WHERE name LIKE ? ESCAPE '\'
		ORDER BY (LOWER(name) = LOWER(?)) DESC, name, path
		LIMIT ?`,
		pattern, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search symbols: %w", err)
	}
	defer rows.Close()

	var results []*SymbolRecord
	for rows.Next() {
		var sym SymbolRecord
		var kind string
		if err := rows.Scan(&sym.ID, &sym.Path, &sym.Name, &kind, &sym.StartLine, &sym.EndLine); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		sym.Kind = SymbolKind(kind)
		results = append(results, &sym)
	}
	return results, rows.Err()
}

// Stats returns counts for status reporting.
func (s *TrackerStore) Stats(ctx context.Context) (*IndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("tracker store is closed")
	}

	stats := &IndexStats{}
	queries := []struct {
		sql  string
		dest *int
	}{
		{`SELECT COUNT(*) FROM files`, &stats.FileCount},
		{`SELECT COUNT(*) FROM documents`, &stats.DocumentCount},
		{`SELECT COUNT(*) FROM symbols`, &stats.SymbolCount},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.sql).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("query stats: %w", err)
		}
	}
	return stats, nil
}

// Close closes the database, checkpointing the WAL first.
func (s *TrackerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.db != nil {
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		return s.db.Close()
	}
	return nil
}

// scanFileRecord scans a single file row, mapping no-rows to nil.
func scanFileRecord(row *sql.Row) (*FileRecord, error) {
	var rec FileRecord
	var mtimeNS int64
	err := row.Scan(&rec.Path, &rec.ContentHash, &mtimeNS, &rec.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan file record: %w", err)
	}
	rec.ModTime = time.Unix(0, mtimeNS)
	return &rec, nil
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}
