package graph

import (
	"context"
	"sort"
)

// Graph is an immutable in-memory view of the import graph, built once
// per query from persisted edges. Node ids are dense ints so adjacency
// fits in flat slices; the reverse index is derived from the forward
// edges at construction time.
type Graph struct {
	ids     map[string]int32
	paths   []string
	reverse [][]int32 // reverse[dst] = nodes importing dst
}

// NewGraph builds the in-memory graph from an edge list.
func NewGraph(edges []Edge) *Graph {
	g := &Graph{ids: make(map[string]int32)}

	intern := func(path string) int32 {
		if id, ok := g.ids[path]; ok {
			return id
		}
		id := int32(len(g.paths))
		g.ids[path] = id
		g.paths = append(g.paths, path)
		g.reverse = append(g.reverse, nil)
		return id
	}

	for _, e := range edges {
		src := intern(e.Src)
		dst := intern(e.Dst)
		g.reverse[dst] = append(g.reverse[dst], src)
	}
	return g
}

// Load reads the persisted edges from store into a Graph.
func Load(ctx context.Context, store *Store) (*Graph, error) {
	edges, err := store.AllEdges(ctx)
	if err != nil {
		return nil, err
	}
	return NewGraph(edges), nil
}

// Impacted returns the reverse-reachable set from the changed files:
// every file that transitively imports one of them within depth hops,
// plus the seeds themselves. Seeds unknown to the graph are still
// included in the result.
func (g *Graph) Impacted(changed []string, depth int) map[string]struct{} {
	impacted := make(map[string]struct{}, len(changed))
	visited := make(map[int32]struct{})

	var frontier []int32
	for _, path := range changed {
		impacted[path] = struct{}{}
		if id, ok := g.ids[path]; ok {
			visited[id] = struct{}{}
			frontier = append(frontier, id)
		}
	}

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []int32
		for _, id := range frontier {
			for _, importer := range g.reverse[id] {
				if _, seen := visited[importer]; seen {
					continue
				}
				visited[importer] = struct{}{}
				impacted[g.paths[importer]] = struct{}{}
				next = append(next, importer)
			}
		}
		frontier = next
	}
	return impacted
}

// ImpactedSorted is Impacted with deterministic ordering for display.
func (g *Graph) ImpactedSorted(changed []string, depth int) []string {
	set := g.Impacted(changed, depth)
	paths := make([]string, 0, len(set))
	for path := range set {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// NodeCount returns the number of distinct files in the graph.
func (g *Graph) NodeCount() int {
	return len(g.paths)
}
