// Package chunk splits documents into bounded windows for embedding
// and extracts code symbols via tree-sitter.
package chunk

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultWindow bounds chunk content length so embedding and
// comparison costs stay predictable.
const DefaultWindow = 900

// Chunk is a bounded slice of a document.
type Chunk struct {
	ID      string // "<path>#<window index>"
	Source  string // Repo-relative path of the origin document
	Content string
	Meta    map[string]string
}

// ID encodes the source path so dense hits map back to files.
func ChunkID(source string, window int) string {
	return fmt.Sprintf("%s#%d", source, window)
}

// SourceOf recovers the origin path from a chunk id.
func SourceOf(chunkID string) string {
	if idx := strings.LastIndex(chunkID, "#"); idx >= 0 {
		return chunkID[:idx]
	}
	return chunkID
}

// Split windows content into chunks of at most window characters,
// preferring line boundaries so windows do not cut identifiers in
// half. Deterministic: the same content always yields the same
// chunks with the same ids.
func Split(source, content string, window int) []Chunk {
	if window <= 0 {
		window = DefaultWindow
	}
	if strings.TrimSpace(content) == "" {
		return nil
	}

	var chunks []Chunk
	rest := content
	idx := 0
	for len(rest) > 0 {
		size := window
		if size > len(rest) {
			size = len(rest)
		} else if nl := strings.LastIndex(rest[:size], "\n"); nl > window/2 {
			// Cut at the last line break in the window, unless it
			// would leave the chunk mostly empty.
			size = nl + 1
		}
		// Never cut a multibyte rune at the window edge.
		for size < len(rest) && !utf8.RuneStart(rest[size]) {
			size--
		}
		if size == 0 {
			_, size = utf8.DecodeRuneInString(rest)
		}

		piece := rest[:size]
		if strings.TrimSpace(piece) != "" {
			chunks = append(chunks, Chunk{
				ID:      ChunkID(source, idx),
				Source:  source,
				Content: piece,
				Meta:    map[string]string{"source": source},
			})
			idx++
		}
		rest = rest[size:]
	}
	return chunks
}
