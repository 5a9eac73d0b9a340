package search

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"scout/internal/chunk"
	"scout/internal/embed"
	scouterrors "scout/internal/errors"
	"scout/internal/store"
	"scout/internal/vector"
)

// symbolBaseScore anchors symbol hits above zero-scored fallback
// lexical hits; rerank bonuses separate exact matches from the rest.
const symbolBaseScore = 1.0

// Engine fuses the three retrieval sources over one repository's
// persisted stores.
type Engine struct {
	tracker    *store.TrackerStore
	lexical    store.LexicalIndex
	vectors    *vector.Index
	embedder   embed.Embedder // nil disables the dense source
	annPath    string
	annEnabled bool
	grounder   *Grounder
}

// Options wires an Engine.
type Options struct {
	Tracker      *store.TrackerStore
	Lexical      store.LexicalIndex
	Vectors      *vector.Index
	Embedder     embed.Embedder
	ANNPath      string
	ANNEnabled   bool
	ContextLines int
}

// NewEngine creates a search engine over the given stores.
func NewEngine(opts Options) *Engine {
	return &Engine{
		tracker:    opts.Tracker,
		lexical:    opts.Lexical,
		vectors:    opts.Vectors,
		embedder:   opts.Embedder,
		annPath:    opts.ANNPath,
		annEnabled: opts.ANNEnabled,
		grounder:   NewGrounder(opts.Tracker, opts.ContextLines),
	}
}

// Search runs the three retrieval passes concurrently, merges and
// grounds the hits, reranks, and truncates to limit. A query with no
// recognizable tokens is rejected rather than matching everything.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]*Hit, error) {
	tokens := store.TokenizeCode(query)
	if len(tokens) == 0 {
		return nil, scouterrors.New(scouterrors.ErrCodeQueryEmpty,
			"query contains no searchable tokens", nil)
	}
	if limit <= 0 {
		limit = 10
	}

	// Each source gets room beyond the final limit so fusion has
	// candidates to merge.
	sourceCap := 2 * limit

	var symbolHits, lexicalHits, denseHits []*Hit
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hits, err := e.searchSymbols(gctx, query, sourceCap)
		if err != nil {
			return err
		}
		symbolHits = hits
		return nil
	})
	g.Go(func() error {
		hits, err := e.searchLexical(gctx, query, sourceCap)
		if err != nil {
			return err
		}
		lexicalHits = hits
		return nil
	})
	g.Go(func() error {
		// The dense source fails soft: embedding errors degrade the
		// engine to symbol+lexical instead of failing the query.
		denseHits = e.searchDense(gctx, query, sourceCap)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := merge(symbolHits, lexicalHits, denseHits)
	for _, hit := range merged {
		e.grounder.Ground(ctx, hit, tokens)
	}

	rerank(merged, query, tokens)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

func (e *Engine) searchSymbols(ctx context.Context, query string, limit int) ([]*Hit, error) {
	symbols, err := e.tracker.SearchSymbols(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	hits := make([]*Hit, 0, len(symbols))
	for i, sym := range symbols {
		hits = append(hits, &Hit{
			Path:      sym.Path,
			Score:     symbolBaseScore - 0.01*float64(i),
			Kind:      KindSymbol,
			Sources:   []string{SourceSymbol},
			PointerID: sym.ID,
			Symbol:    sym.Name,
			StartLine: sym.StartLine,
			EndLine:   sym.EndLine,
		})
	}
	return hits, nil
}

func (e *Engine) searchLexical(ctx context.Context, query string, limit int) ([]*Hit, error) {
	results, err := e.lexical.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	hits := make([]*Hit, 0, len(results))
	for _, res := range results {
		hits = append(hits, &Hit{
			Path:    res.Path,
			Score:   res.Score,
			Kind:    KindFile,
			Sources: []string{SourceLexical},
			Snippet: res.Snippet,
		})
	}
	return hits, nil
}

func (e *Engine) searchDense(ctx context.Context, query string, limit int) []*Hit {
	if e.embedder == nil || e.vectors == nil || e.vectors.Len() == 0 {
		return nil
	}

	queryVec, err := e.embedder.EmbedQuery(ctx, query)
	if err != nil {
		slog.Warn("dense_source_degraded",
			slog.String("error", err.Error()))
		return nil
	}

	var results []vector.Result
	if e.annEnabled {
		if annResults, ok := vector.TryRetrieve(e.vectors, e.annPath, queryVec, limit); ok {
			results = annResults
		}
	}
	if results == nil {
		results = vector.Scan(e.vectors, queryVec, limit)
	}

	// Chunk hits collapse to their source file; the best chunk wins.
	best := make(map[string]float64)
	var order []string
	for _, res := range results {
		path := chunk.SourceOf(res.ChunkID)
		if score, seen := best[path]; !seen || res.Score > score {
			if !seen {
				order = append(order, path)
			}
			best[path] = res.Score
		}
	}

	hits := make([]*Hit, 0, len(order))
	for _, path := range order {
		hits = append(hits, &Hit{
			Path:    path,
			Score:   best[path],
			Kind:    KindFile,
			Sources: []string{SourceDense},
		})
	}
	return hits
}

// merge fuses hits across sources. Hits are keyed by pointer id when
// present, else by path; merging keeps the maximum score, the union
// of sources, and prefers a non-empty snippet.
func merge(groups ...[]*Hit) []*Hit {
	byKey := make(map[string]*Hit)
	var order []*Hit

	for _, group := range groups {
		for _, hit := range group {
			key := hit.mergeKey()
			existing, ok := byKey[key]
			if !ok {
				byKey[key] = hit
				order = append(order, hit)
				continue
			}
			if hit.Score > existing.Score {
				existing.Score = hit.Score
			}
			existing.Sources = unionSources(existing.Sources, hit.Sources)
			if existing.Snippet == "" && hit.Snippet != "" {
				existing.Snippet = hit.Snippet
			}
		}
	}
	return order
}

func unionSources(a, b []string) []string {
	seen := make(map[string]struct{}, len(a))
	for _, s := range a {
		seen[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			a = append(a, s)
		}
	}
	return a
}
