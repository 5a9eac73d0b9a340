package index

import (
	"context"

	"scout/internal/config"
	"scout/internal/embed"
	"scout/internal/graph"
	"scout/internal/impact"
	"scout/internal/scanner"
	"scout/internal/search"
	"scout/internal/store"
	"scout/internal/vector"
)

// Session holds the open stores for one repository. Opened for the
// duration of a build or query and closed afterwards.
type Session struct {
	Cfg      *config.Config
	RepoRoot string
	DataDir  string

	Tracker  *store.TrackerStore
	Lexical  store.LexicalIndex
	Graph    *graph.Store
	Vectors  *vector.Index
	Embedder embed.Embedder // nil when provider is "none"
}

// Open loads the persisted stores for repoRoot.
func Open(cfg *config.Config, repoRoot string) (*Session, error) {
	dataDir := config.DataDir(repoRoot)

	tracker, err := store.NewTrackerStore(trackerPath(dataDir))
	if err != nil {
		return nil, err
	}

	lexical, err := store.NewLexicalIndex(cfg, lexicalPath(dataDir), tracker)
	if err != nil {
		_ = tracker.Close()
		return nil, err
	}

	graphStore, err := graph.NewStore(graphPath(dataDir))
	if err != nil {
		_ = lexical.Close()
		_ = tracker.Close()
		return nil, err
	}

	embedder, err := embed.NewEmbedder(cfg)
	if err != nil {
		_ = graphStore.Close()
		_ = lexical.Close()
		_ = tracker.Close()
		return nil, err
	}

	var vectors *vector.Index
	if embedder != nil {
		vectors, err = vector.LoadIndex(vectorsPath(dataDir),
			embedder.ModelName(), embedder.ModelName(), cfg.ANN.Backend)
		if err != nil {
			_ = embedder.Close()
			_ = graphStore.Close()
			_ = lexical.Close()
			_ = tracker.Close()
			return nil, err
		}
	}

	return &Session{
		Cfg:      cfg,
		RepoRoot: repoRoot,
		DataDir:  dataDir,
		Tracker:  tracker,
		Lexical:  lexical,
		Graph:    graphStore,
		Vectors:  vectors,
		Embedder: embedder,
	}, nil
}

// Close releases every store. Safe to call once.
func (s *Session) Close() error {
	var firstErr error
	if s.Embedder != nil {
		if err := s.Embedder.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, closer := range []interface{ Close() error }{s.Graph, s.Lexical, s.Tracker} {
		if closer == nil {
			continue
		}
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Search runs hybrid retrieval over the open stores.
func (s *Session) Search(ctx context.Context, query string, limit int) ([]*search.Hit, error) {
	if limit <= 0 {
		limit = s.Cfg.Search.Limit
	}
	engine := search.NewEngine(search.Options{
		Tracker:      s.Tracker,
		Lexical:      s.Lexical,
		Vectors:      s.Vectors,
		Embedder:     s.Embedder,
		ANNPath:      annPath(s.DataDir),
		ANNEnabled:   s.Cfg.ANN.Backend == config.ANNBackendHNSW,
		ContextLines: s.Cfg.Search.ContextLines,
	})
	return engine.Search(ctx, query, limit)
}

// Impacted computes the reverse-reachable files for a change set.
func (s *Session) Impacted(ctx context.Context, changed []string, depth int) ([]string, error) {
	if depth <= 0 {
		depth = s.Cfg.Graph.ImpactDepth
	}
	return graph.Impacted(ctx, s.Graph, changed, depth, s.loadSourceFiles)
}

// SelectTests ranks candidate tests for a change set.
func (s *Session) SelectTests(ctx context.Context, changed []string, maxTests int) (impact.TestSelection, error) {
	if maxTests <= 0 {
		maxTests = s.Cfg.Graph.MaxTests
	}

	impacted, err := s.Impacted(ctx, changed, s.Cfg.Graph.ImpactDepth)
	if err != nil {
		return impact.TestSelection{}, err
	}

	records, err := s.Tracker.AllFiles(ctx)
	if err != nil {
		return impact.TestSelection{}, err
	}
	allFiles := make([]string, 0, len(records))
	for path := range records {
		allFiles = append(allFiles, path)
	}

	return impact.Select(allFiles, impacted, maxTests), nil
}

// Status summarizes the persisted index state.
func (s *Session) Status(ctx context.Context) (*Status, error) {
	stats, err := s.Tracker.Stats(ctx)
	if err != nil {
		return nil, err
	}
	edges, err := s.Graph.EdgeCount(ctx)
	if err != nil {
		return nil, err
	}

	status := &Status{
		Files:     stats.FileCount,
		Documents: stats.DocumentCount,
		Symbols:   stats.SymbolCount,
		Edges:     edges,
	}
	if s.Vectors != nil {
		status.Vectors = s.Vectors.Len()
		status.Provider = s.Vectors.Provider
	}
	return status, nil
}

// Status is the index summary surfaced by the status command.
type Status struct {
	Files     int    `json:"files"`
	Documents int    `json:"documents"`
	Symbols   int    `json:"symbols"`
	Edges     int    `json:"edges"`
	Vectors   int    `json:"vectors"`
	Provider  string `json:"provider,omitempty"`
}

// loadSourceFiles feeds the graph fallback path from stored documents.
func (s *Session) loadSourceFiles(ctx context.Context) ([]graph.SourceFile, error) {
	docs, err := s.Tracker.AllDocuments(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.Tracker.AllFiles(ctx)
	if err != nil {
		return nil, err
	}

	files := make([]graph.SourceFile, 0, len(docs))
	for path, content := range docs {
		hash := ""
		if rec, ok := records[path]; ok {
			hash = rec.ContentHash
		}
		files = append(files, graph.SourceFile{
			Path:        path,
			ContentHash: hash,
			Content:     content,
			Language:    scanner.DetectLanguage(path),
		})
	}
	return files, nil
}
