package index

import (
	"context"
	"log/slog"
	"os"

	"scout/internal/chunk"
	"scout/internal/config"
	scouterrors "scout/internal/errors"
	"scout/internal/graph"
	"scout/internal/scanner"
	"scout/internal/store"
	"scout/internal/vector"
)

// BuildStats summarizes one build run.
type BuildStats struct {
	FilesIndexed   int `json:"files_indexed"`
	FilesUnchanged int `json:"files_unchanged"`
	FilesSkipped   int `json:"files_skipped"`
	FilesDeleted   int `json:"files_deleted"`

	GraphFilesUpdated int `json:"graph_files_updated"`
	EdgesAdded        int `json:"edges_added"`

	ChunksEmbedded int  `json:"chunks_embedded"`
	ChunksSkipped  int  `json:"chunks_skipped"`
	ChunksPruned   int  `json:"chunks_pruned"`
	ANNBuilt       bool `json:"ann_built"`
}

// Build runs the full incremental pipeline: scan, hash-gate, update
// the lexical index and symbols, rebuild changed graph edges, refresh
// the dense vectors, and rebuild the ANN cache when its fingerprint
// went stale. Re-running with no edits touches nothing.
func (s *Session) Build(ctx context.Context) (*BuildStats, error) {
	lock, err := acquireBuildLock(s.DataDir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	stats := &BuildStats{}
	if err := s.buildFiles(ctx, stats); err != nil {
		return stats, err
	}
	if err := s.buildGraph(ctx, stats); err != nil {
		return stats, err
	}
	if err := s.buildVectors(ctx, stats); err != nil {
		return stats, err
	}

	slog.Info("build_complete",
		slog.Int("files_indexed", stats.FilesIndexed),
		slog.Int("files_unchanged", stats.FilesUnchanged),
		slog.Int("files_deleted", stats.FilesDeleted),
		slog.Int("edges_added", stats.EdgesAdded),
		slog.Int("chunks_embedded", stats.ChunksEmbedded))
	return stats, nil
}

// buildFiles walks the tree and refreshes tracker, documents, symbols,
// and the lexical index for changed files.
func (s *Session) buildFiles(ctx context.Context, stats *BuildStats) error {
	sc, err := scanner.New()
	if err != nil {
		return err
	}

	results, err := sc.Scan(ctx, &scanner.ScanOptions{
		RootDir:         s.RepoRoot,
		MaxFileSize:     s.Cfg.Index.MaxFileSize,
		IncludePatterns: s.Cfg.Paths.Include,
		ExcludePatterns: s.Cfg.Paths.Exclude,
	})
	if err != nil {
		return err
	}

	extractor := chunk.NewSymbolExtractor()
	defer extractor.Close()

	seen := make(map[string]struct{})
	for res := range results {
		if res.Error != nil {
			// Unreadable files are skipped, never fatal to the scan.
			stats.FilesSkipped++
			continue
		}
		file := res.File
		seen[file.Path] = struct{}{}

		stored, err := s.Tracker.GetFile(ctx, file.Path)
		if err != nil {
			return err
		}
		if stored.Unchanged(file.ModTime, file.Size) {
			stats.FilesUnchanged++
			continue
		}

		content, err := os.ReadFile(file.AbsPath)
		if err != nil {
			stats.FilesSkipped++
			continue
		}
		hash := store.HashContent(content)

		if stored != nil && stored.ContentHash == hash {
			// Touched but identical: refresh the (mtime, size) pair so
			// the next scan skips the hash.
			stats.FilesUnchanged++
			if err := s.Tracker.SaveFile(ctx, &store.FileRecord{
				Path: file.Path, ContentHash: hash, ModTime: file.ModTime, Size: file.Size,
			}); err != nil {
				return err
			}
			continue
		}

		if err := s.indexFile(ctx, extractor, file, string(content), hash); err != nil {
			return scouterrors.Wrap(scouterrors.ErrCodeIndexFailed, err)
		}
		stats.FilesIndexed++
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.removeDeleted(ctx, seen, stats)
}

func (s *Session) indexFile(ctx context.Context, extractor *chunk.SymbolExtractor, file *scanner.FileInfo, content, hash string) error {
	if err := s.Tracker.SaveDocument(ctx, file.Path, content); err != nil {
		return err
	}
	if err := s.Lexical.Index(ctx, []*store.Document{{Path: file.Path, Content: content}}); err != nil {
		return err
	}

	if chunk.SupportedLanguage(file.Language) {
		symbols, err := extractor.Extract(ctx, file.Path, content, file.Language)
		if err != nil {
			// Parse failures degrade to file-level retrieval only.
			slog.Warn("symbol_extraction_failed",
				slog.String("path", file.Path),
				slog.String("error", err.Error()))
		} else if err := s.Tracker.ReplaceSymbols(ctx, file.Path, symbols); err != nil {
			return err
		}
	}

	return s.Tracker.SaveFile(ctx, &store.FileRecord{
		Path:        file.Path,
		ContentHash: hash,
		ModTime:     file.ModTime,
		Size:        file.Size,
	})
}

// removeDeleted drops records for files no longer present in the tree.
func (s *Session) removeDeleted(ctx context.Context, seen map[string]struct{}, stats *BuildStats) error {
	records, err := s.Tracker.AllFiles(ctx)
	if err != nil {
		return err
	}
	for path := range records {
		if _, ok := seen[path]; ok {
			continue
		}
		if err := s.Tracker.DeleteFile(ctx, path); err != nil {
			return err
		}
		if err := s.Lexical.Delete(ctx, []string{path}); err != nil {
			return err
		}
		if err := s.Graph.RemoveFile(ctx, path); err != nil {
			return err
		}
		stats.FilesDeleted++
	}
	return nil
}

// buildGraph rebuilds import edges for files whose hash changed.
func (s *Session) buildGraph(ctx context.Context, stats *BuildStats) error {
	files, err := s.loadSourceFiles(ctx)
	if err != nil {
		return err
	}
	result, err := graph.Build(ctx, s.Graph, files)
	if err != nil {
		return scouterrors.Wrap(scouterrors.ErrCodeGraphFailed, err)
	}
	stats.GraphFilesUpdated = result.UpdatedFiles
	stats.EdgesAdded = result.EdgesAdded
	return nil
}

// buildVectors refreshes the dense index and the ANN cache. The dense
// layer fails soft: an unavailable provider logs a warning and leaves
// the engine lexical-only instead of failing the build.
func (s *Session) buildVectors(ctx context.Context, stats *BuildStats) error {
	if s.Embedder == nil || s.Vectors == nil {
		return nil
	}
	if !s.Embedder.Available(ctx) {
		slog.Warn("embedder_unavailable",
			slog.String("provider", s.Embedder.ModelName()),
			slog.String("code", scouterrors.ErrCodeEmbedderUnavailable))
		return nil
	}

	docs, err := s.Tracker.AllDocuments(ctx)
	if err != nil {
		return err
	}
	chunks := make(map[string]string)
	for path, content := range docs {
		for _, c := range chunk.Split(path, content, s.Cfg.Index.ChunkWindow) {
			chunks[c.ID] = c.Content
		}
	}

	vstats, err := s.Vectors.BuildOrUpdate(ctx, s.Embedder, chunks)
	if err != nil {
		slog.Warn("dense_index_degraded",
			slog.String("code", scouterrors.ErrCodeEmbeddingFailed),
			slog.String("error", err.Error()))
		return nil
	}
	stats.ChunksEmbedded = vstats.Embedded
	stats.ChunksSkipped = vstats.Skipped
	stats.ChunksPruned = vstats.Pruned

	if err := s.Vectors.Save(vectorsPath(s.DataDir)); err != nil {
		return err
	}

	if s.Cfg.ANN.Backend == config.ANNBackendHNSW {
		built, err := s.rebuildANNIfStale()
		if err != nil {
			return err
		}
		stats.ANNBuilt = built
	}
	return nil
}

// rebuildANNIfStale rebuilds the ANN artifact only when the persisted
// fingerprint no longer matches the live index. Reports whether a
// rebuild actually ran.
func (s *Session) rebuildANNIfStale() (bool, error) {
	path := annPath(s.DataDir)
	if vector.CacheValid(s.Vectors, path) {
		return false, nil
	}
	if err := vector.BuildCache(s.Vectors, path); err != nil {
		return false, err
	}
	return true, nil
}
