// Package store provides the persistence layer for the index: file
// records and documents in SQLite, plus the lexical full-text index.
package store

import (
	"context"
	"time"
)

// FileRecord tracks a file's content identity for incremental builds.
// The (ModTime, Size) pair is a cheap pre-check before re-hashing.
type FileRecord struct {
	Path        string    // Repo-relative, unique key
	ContentHash string    // SHA256 of content
	ModTime     time.Time // Last modification time
	Size        int64     // File size in bytes
}

// Unchanged reports whether the stored record matches the observed
// (mtime, size) pair, allowing the scan to skip re-hashing.
func (r *FileRecord) Unchanged(modTime time.Time, size int64) bool {
	return r != nil && r.Size == size && r.ModTime.Equal(modTime)
}

// SymbolKind classifies an extracted code symbol.
type SymbolKind string

const (
	SymbolKindFunction SymbolKind = "function"
	SymbolKindMethod   SymbolKind = "method"
	SymbolKindType     SymbolKind = "type"
	SymbolKindClass    SymbolKind = "class"
)

// SymbolRecord is a named declaration extracted from a source file.
// Symbols are the pointer targets of the symbol retrieval source.
type SymbolRecord struct {
	ID        string // Stable pointer id: sha256(path:name:start)[:16]
	Path      string // Repo-relative file path
	Name      string
	Kind      SymbolKind
	StartLine int // 1-indexed
	EndLine   int // Inclusive
}

// Document is a file-level document for the lexical index.
type Document struct {
	Path    string // Repo-relative path, document key
	Content string
}

// LexicalResult is a single lexical search result.
type LexicalResult struct {
	Path    string
	Score   float64
	Snippet string
}

// LexicalIndex provides keyword search over file contents.
// Re-indexing a path replaces its prior document.
type LexicalIndex interface {
	// Index adds or replaces documents in the index.
	Index(ctx context.Context, docs []*Document) error

	// Search returns documents matching the query, best first.
	Search(ctx context.Context, query string, limit int) ([]*LexicalResult, error)

	// Delete removes documents by path.
	Delete(ctx context.Context, paths []string) error

	// DocCount returns the number of indexed documents.
	DocCount() (int, error)

	// Close releases resources.
	Close() error
}

// IndexStats summarizes the persisted index for status reporting.
type IndexStats struct {
	FileCount     int
	DocumentCount int
	SymbolCount   int
}
