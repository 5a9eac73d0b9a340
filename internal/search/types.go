// Package search implements hybrid retrieval: symbol, lexical, and
// dense passes fused into one ranked, grounded result list.
package search

// Retrieval source names recorded on each hit.
const (
	SourceSymbol  = "symbol"
	SourceLexical = "lexical"
	SourceDense   = "dense"
)

// Hit kinds.
const (
	KindFile   = "file"
	KindSymbol = "symbol"
)

// Hit is one fused search result. StartLine/EndLine bound the
// grounded snippet; PointerID is set for symbol-backed hits.
type Hit struct {
	Path      string   `json:"path"`
	Score     float64  `json:"score"`
	Kind      string   `json:"kind"`
	Sources   []string `json:"sources"`
	PointerID string   `json:"pointer_id,omitempty"`
	Symbol    string   `json:"symbol,omitempty"`
	StartLine int      `json:"start_line,omitempty"`
	EndLine   int      `json:"end_line,omitempty"`
	Snippet   string   `json:"snippet,omitempty"`
}

// mergeKey identifies a hit during fusion: pointer id when present,
// else path.
func (h *Hit) mergeKey() string {
	if h.PointerID != "" {
		return h.PointerID
	}
	return h.Path
}
