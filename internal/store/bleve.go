package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"
	bquery "github.com/blevesearch/bleve/v2/search/query"
)

const (
	// codeTokenizerName identifies the identifier-splitting tokenizer.
	codeTokenizerName = "scout_code_tokenizer"

	// codeAnalyzerName identifies the full code analyzer chain.
	codeAnalyzerName = "scout_code_analyzer"
)

func init() {
	_ = registry.RegisterTokenizer(codeTokenizerName, newCodeTokenizer)
}

// BleveIndex is the full-text lexical backend built on Bleve's BM25
// scoring with a code-aware analyzer.
type BleveIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	closed bool
}

type bleveDoc struct {
	Content string `json:"content"`
}

// NewBleveIndex opens or creates a lexical index at path. An empty
// path creates an in-memory index for testing. A corrupt on-disk
// index is cleared and recreated rather than failing the build.
func NewBleveIndex(path string) (*BleveIndex, error) {
	indexMapping, err := buildIndexMapping()
	if err != nil {
		return nil, fmt.Errorf("build index mapping: %w", err)
	}

	var idx bleve.Index
	if path == "" {
		idx, err = bleve.NewMemOnly(indexMapping)
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create lexical index directory: %w", err)
		}

		if probeErr := probeIndexMeta(path); probeErr != nil {
			slog.Warn("lexical_index_corrupted",
				slog.String("path", path),
				slog.String("error", probeErr.Error()))
			if rmErr := os.RemoveAll(path); rmErr != nil {
				return nil, fmt.Errorf("clear corrupt lexical index: %w", rmErr)
			}
		}

		idx, err = bleve.Open(path)
		if err == bleve.ErrorIndexPathDoesNotExist {
			idx, err = bleve.New(path, indexMapping)
		} else if err != nil && isCorruptionError(err) {
			slog.Warn("lexical_index_open_failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
			if rmErr := os.RemoveAll(path); rmErr != nil {
				return nil, fmt.Errorf("clear corrupt lexical index: %w (open error: %v)", rmErr, err)
			}
			idx, err = bleve.New(path, indexMapping)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open lexical index: %w", err)
	}

	return &BleveIndex{index: idx, path: path}, nil
}

// probeIndexMeta checks the Bleve metadata file before opening so a
// half-written index from an interrupted build gets rebuilt cleanly.
func probeIndexMeta(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	metaPath := filepath.Join(path, "index_meta.json")
	info, err := os.Stat(metaPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("index_meta.json missing")
	}
	if err != nil {
		return fmt.Errorf("stat index_meta.json: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("index_meta.json is empty")
	}
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return fmt.Errorf("read index_meta.json: %w", err)
	}
	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("index_meta.json unparseable: %w", err)
	}
	return nil
}

func isCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	if err == bleve.ErrorIndexMetaCorrupt {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "unexpected end of JSON") ||
		strings.Contains(msg, "error parsing mapping JSON") ||
		strings.Contains(msg, "failed to load segment") ||
		strings.Contains(msg, "error opening bolt")
}

func buildIndexMapping() (*mapping.IndexMappingImpl, error) {
	indexMapping := bleve.NewIndexMapping()
	err := indexMapping.AddCustomAnalyzer(codeAnalyzerName, map[string]any{
		"type":          custom.Name,
		"tokenizer":     codeTokenizerName,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("add code analyzer: %w", err)
	}
	indexMapping.DefaultAnalyzer = codeAnalyzerName
	return indexMapping, nil
}

// Index adds or replaces documents keyed by repo-relative path.
func (b *BleveIndex) Index(ctx context.Context, docs []*Document) error {
	if len(docs) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("lexical index is closed")
	}

	batch := b.index.NewBatch()
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := batch.Index(doc.Path, bleveDoc{Content: doc.Content}); err != nil {
			return fmt.Errorf("index document %s: %w", doc.Path, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("execute index batch: %w", err)
	}
	return nil
}

// Search returns the best-scoring documents for the query. Empty or
// whitespace-only queries return no results without error.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int) ([]*LexicalResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, fmt.Errorf("lexical index is closed")
	}
	if strings.TrimSpace(query) == "" {
		return []*LexicalResult{}, nil
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetField("content")
	// Every query token must appear: a query derived from one
	// identifier ("oldName") must not match documents that only share
	// a fragment of it ("newName").
	matchQuery.SetOperator(bquery.MatchQueryOperatorAnd)

	req := bleve.NewSearchRequest(matchQuery)
	req.Size = limit
	req.Fields = []string{"content"}

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	tokens := TokenizeCode(query)
	results := make([]*LexicalResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		snippet := ""
		if content, ok := hit.Fields["content"].(string); ok {
			snippet = snippetFor(content, tokens)
		}
		results = append(results, &LexicalResult{
			Path:    hit.ID,
			Score:   hit.Score,
			Snippet: snippet,
		})
	}
	return results, nil
}

// Delete removes documents by path.
func (b *BleveIndex) Delete(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("lexical index is closed")
	}

	batch := b.index.NewBatch()
	for _, path := range paths {
		batch.Delete(path)
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	return nil
}

// DocCount returns the number of indexed documents.
func (b *BleveIndex) DocCount() (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0, fmt.Errorf("lexical index is closed")
	}
	n, err := b.index.DocCount()
	if err != nil {
		return 0, fmt.Errorf("document count: %w", err)
	}
	return int(n), nil
}

// Close closes the underlying Bleve index.
func (b *BleveIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.index != nil {
		return b.index.Close()
	}
	return nil
}

var _ LexicalIndex = (*BleveIndex)(nil)

func newCodeTokenizer(config map[string]any, cache *registry.Cache) (analysis.Tokenizer, error) {
	return &codeTokenizer{}, nil
}

// codeTokenizer feeds TokenizeCode output into Bleve's analysis chain.
type codeTokenizer struct{}

func (t *codeTokenizer) Tokenize(input []byte) analysis.TokenStream {
	text := string(input)
	tokens := TokenizeCode(text)

	stream := make(analysis.TokenStream, 0, len(tokens))
	offset := 0
	for pos, token := range tokens {
		start := strings.Index(strings.ToLower(text[offset:]), token)
		if start < 0 {
			start = offset
		} else {
			start += offset
		}
		end := start + len(token)
		stream = append(stream, &analysis.Token{
			Term:     []byte(token),
			Start:    start,
			End:      end,
			Position: pos + 1,
			Type:     analysis.AlphaNumeric,
		})
		if end <= len(text) {
			offset = end
		}
	}
	return stream
}
