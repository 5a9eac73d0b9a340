package graph

import (
	"context"
	"log/slog"
)

// SourceFile is the builder's view of a repository file.
type SourceFile struct {
	Path        string
	ContentHash string
	Content     string
	Language    string
}

// BuildResult summarizes one graph build pass.
type BuildResult struct {
	UpdatedFiles int
	EdgesAdded   int
}

// Build refreshes the persisted import edges. Only files whose content
// hash differs from the hash recorded at the last build are
// re-extracted: their old outgoing edges are deleted and the freshly
// resolved set inserted. Unresolvable imports are dropped silently.
func Build(ctx context.Context, store *Store, files []SourceFile) (BuildResult, error) {
	var result BuildResult

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	resolver := NewResolver(paths)

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		stored, err := store.FileHash(ctx, f.Path)
		if err != nil {
			return result, err
		}
		if stored == f.ContentHash {
			continue
		}

		targets := resolver.Extract(f.Path, f.Content, f.Language)
		added, err := store.ReplaceEdges(ctx, f.Path, f.ContentHash, targets)
		if err != nil {
			return result, err
		}
		result.UpdatedFiles++
		result.EdgesAdded += added
	}

	slog.Debug("graph_build_complete",
		slog.Int("updated_files", result.UpdatedFiles),
		slog.Int("edges_added", result.EdgesAdded))
	return result, nil
}

// Impacted computes the reverse-reachable set from changed within
// depth hops. When the persisted graph is empty, it falls back to an
// on-the-fly extraction scoped to the files supplied by loadFiles,
// rather than failing. The result is sorted.
func Impacted(ctx context.Context, store *Store, changed []string, depth int, loadFiles func(context.Context) ([]SourceFile, error)) ([]string, error) {
	count, err := store.EdgeCount(ctx)
	if err != nil {
		return nil, err
	}

	var g *Graph
	if count > 0 {
		g, err = Load(ctx, store)
		if err != nil {
			return nil, err
		}
	} else {
		slog.Debug("graph_absent_scoped_rebuild", slog.Int("changed", len(changed)))
		files, err := loadFiles(ctx)
		if err != nil {
			return nil, err
		}
		g = buildEphemeral(files)
	}

	return g.ImpactedSorted(changed, depth), nil
}

// buildEphemeral extracts edges in memory without touching the store.
func buildEphemeral(files []SourceFile) *Graph {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	resolver := NewResolver(paths)

	var edges []Edge
	for _, f := range files {
		for _, dst := range resolver.Extract(f.Path, f.Content, f.Language) {
			edges = append(edges, Edge{Src: f.Path, Dst: dst, Type: EdgeTypeImport})
		}
	}
	return NewGraph(edges)
}
