package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// scanSnippetWindow is the number of characters of context extracted
// around the first match in the fallback backend.
const scanSnippetWindow = 160

// ScanIndex is the lexical fallback backend: a linear case-insensitive
// substring scan over the documents stored in the tracker. No relevance
// model, every hit scores zero, and results are ordered by path so the
// same inputs always produce the same candidate set.
type ScanIndex struct {
	mu      sync.RWMutex
	tracker *TrackerStore
	closed  bool
}

// NewScanIndex creates a scan backend over the given tracker store.
func NewScanIndex(tracker *TrackerStore) *ScanIndex {
	return &ScanIndex{tracker: tracker}
}

// Index is a no-op: the scan backend searches the tracker's document
// table directly, which the build pipeline keeps current.
func (s *ScanIndex) Index(ctx context.Context, docs []*Document) error {
	return nil
}

// Search scans every stored document for any query token.
func (s *ScanIndex) Search(ctx context.Context, query string, limit int) ([]*LexicalResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("lexical index is closed")
	}

	tokens := TokenizeCode(query)
	if len(tokens) == 0 {
		return []*LexicalResult{}, nil
	}

	docs, err := s.tracker.AllDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load documents for scan: %w", err)
	}

	paths := make([]string, 0, len(docs))
	for path := range docs {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var results []*LexicalResult
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		snippet := snippetFor(docs[path], tokens)
		if snippet == "" {
			continue
		}
		results = append(results, &LexicalResult{
			Path:    path,
			Score:   0,
			Snippet: snippet,
		})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// Delete is a no-op: document removal happens in the tracker.
func (s *ScanIndex) Delete(ctx context.Context, paths []string) error {
	return nil
}

// DocCount reports the tracker's document count.
func (s *ScanIndex) DocCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, fmt.Errorf("lexical index is closed")
	}
	stats, err := s.tracker.Stats(context.Background())
	if err != nil {
		return 0, err
	}
	return stats.DocumentCount, nil
}

// Close marks the backend closed. The tracker is owned elsewhere.
func (s *ScanIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ LexicalIndex = (*ScanIndex)(nil)

// snippetFor extracts the context window around the first query token
// present in content, or "" when none matches. Both lexical backends
// use it so their snippets look the same.
func snippetFor(content string, tokens []string) string {
	lower := strings.ToLower(content)
	for _, token := range tokens {
		if idx := strings.Index(lower, token); idx >= 0 {
			return extractWindow(content, idx)
		}
	}
	return ""
}

// extractWindow returns a fixed-size slice of content centered on pos,
// expanded to whole lines where possible.
func extractWindow(content string, pos int) string {
	start := pos - scanSnippetWindow/2
	if start < 0 {
		start = 0
	}
	end := start + scanSnippetWindow
	if end > len(content) {
		end = len(content)
	}
	if nl := strings.LastIndex(content[start:pos], "\n"); nl >= 0 {
		start += nl + 1
	}
	if nl := strings.Index(content[pos:end], "\n"); nl >= 0 {
		end = pos + nl
	}
	return strings.TrimSpace(content[start:end])
}
