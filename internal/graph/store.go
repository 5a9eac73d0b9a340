// Package graph maintains the file-level import graph: extraction of
// import edges, persistence, and reverse-reachability queries used by
// test impact selection.
package graph

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// EdgeTypeImport is the only edge type currently extracted.
const EdgeTypeImport = "import"

// Edge is a directed dependency: Src imports Dst.
type Edge struct {
	Src  string
	Dst  string
	Type string
}

// Store persists import edges and per-file build hashes in graph.db.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

// NewStore opens (or creates) the graph database. Empty path means
// in-memory, for tests.
func NewStore(path string) (*Store, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create graph directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open graph database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS graph_files (
		path         TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS edges (
		src  TEXT NOT NULL,
		dst  TEXT NOT NULL,
		type TEXT NOT NULL,
		UNIQUE(src, dst, type)
	);
	CREATE INDEX IF NOT EXISTS idx_edges_src ON edges(src);
	CREATE INDEX IF NOT EXISTS idx_edges_dst ON edges(dst);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize graph schema: %w", err)
	}

	return &Store{db: db}, nil
}

// FileHash returns the content hash recorded at the last edge build
// for path, or "" when the file has never been built.
func (s *Store) FileHash(ctx context.Context, path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", fmt.Errorf("graph store is closed")
	}

	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT content_hash FROM graph_files WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get graph file hash: %w", err)
	}
	return hash, nil
}

// ReplaceEdges atomically rewrites the outgoing edges of src: the old
// edges are deleted before the new set is inserted, and the file's
// hash is recorded in the same transaction. Returns the number of
// edges inserted.
func (s *Store) ReplaceEdges(ctx context.Context, src, contentHash string, dsts []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, fmt.Errorf("graph store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin edge transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM edges WHERE src = ? AND type = ?`, src, EdgeTypeImport); err != nil {
		return 0, fmt.Errorf("delete edges for %s: %w", src, err)
	}

	added := 0
	for _, dst := range dsts {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO edges (src, dst, type) VALUES (?, ?, ?)`,
			src, dst, EdgeTypeImport)
		if err != nil {
			return 0, fmt.Errorf("insert edge %s -> %s: %w", src, dst, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO graph_files (path, content_hash) VALUES (?, ?)`,
		src, contentHash); err != nil {
		return 0, fmt.Errorf("record graph file %s: %w", src, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// RemoveFile drops a deleted file's edges and hash record. Edges
// pointing at the file stay: they still describe the importers.
func (s *Store) RemoveFile(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("graph store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM edges WHERE src = ?`, path); err != nil {
		return fmt.Errorf("delete edges for %s: %w", path, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM graph_files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete graph file %s: %w", path, err)
	}
	return tx.Commit()
}

// AllEdges loads every persisted edge.
func (s *Store) AllEdges(ctx context.Context) ([]Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("graph store is closed")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT src, dst, type FROM edges`)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.Src, &e.Dst, &e.Type); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// EdgeCount returns the number of persisted edges.
func (s *Store) EdgeCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, fmt.Errorf("graph store is closed")
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM edges`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count edges: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
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
