// Package embed provides the pluggable embedding adapters behind the
// dense vector index.
package embed

import (
	"context"
	"math"
)

// StaticDimensions is the vector width of the offline hashing scheme.
const StaticDimensions = 256

// Embedder turns text into dense vectors. Implementations must be
// deterministic for identical input within one provider/model pair,
// since stored vectors are reused across runs.
type Embedder interface {
	// EmbedTexts embeds a batch of chunk contents.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the vector width.
	Dimensions() int

	// ModelName identifies the provider/model for cache validity.
	ModelName() string

	// Available reports whether the provider can serve requests.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}

// Normalize scales v to unit length so cosine similarity reduces to a
// dot product. Zero vectors are returned unchanged.
func Normalize(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}

	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = float32(float64(val) / magnitude)
	}
	return out
}
