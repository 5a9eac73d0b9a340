package search

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"scout/internal/store"
)

// groundCacheSize bounds the per-engine document cache. Grounding
// reads the same files repeatedly across the three sources.
const groundCacheSize = 128

// Grounder attaches a line-range snippet to every file-level hit.
type Grounder struct {
	tracker      *store.TrackerStore
	cache        *lru.Cache[string, string]
	contextLines int
}

// NewGrounder creates a grounder with the given context half-width.
func NewGrounder(tracker *store.TrackerStore, contextLines int) *Grounder {
	cache, _ := lru.New[string, string](groundCacheSize)
	return &Grounder{tracker: tracker, cache: cache, contextLines: contextLines}
}

// Ground locates the first line containing any query token and
// extracts a context window around it. Without a token match the
// window defaults to the file head. Symbol hits that already carry a
// line range keep it; only the snippet is filled in.
func (g *Grounder) Ground(ctx context.Context, hit *Hit, tokens []string) {
	content, err := g.load(ctx, hit.Path)
	if err != nil || content == "" {
		return
	}
	lines := strings.Split(content, "\n")

	if hit.StartLine > 0 && hit.EndLine >= hit.StartLine {
		hit.Snippet = joinWindow(lines, hit.StartLine, hit.EndLine)
		return
	}

	match := firstMatchingLine(lines, tokens)
	start := 1
	end := 1 + 2*g.contextLines
	if match > 0 {
		start = match - g.contextLines
		end = match + g.contextLines
	}
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}

	hit.StartLine = start
	hit.EndLine = end
	hit.Snippet = joinWindow(lines, start, end)
}

func (g *Grounder) load(ctx context.Context, path string) (string, error) {
	if content, ok := g.cache.Get(path); ok {
		return content, nil
	}
	content, err := g.tracker.GetDocument(ctx, path)
	if err != nil {
		return "", err
	}
	g.cache.Add(path, content)
	return content, nil
}

// firstMatchingLine returns the 1-indexed first line containing any
// token, or 0 when nothing matches.
func firstMatchingLine(lines []string, tokens []string) int {
	if len(tokens) == 0 {
		return 0
	}
	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, token := range tokens {
			if strings.Contains(lower, token) {
				return i + 1
			}
		}
	}
	return 0
}

// joinWindow extracts 1-indexed inclusive lines [start, end].
func joinWindow(lines []string, start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}
