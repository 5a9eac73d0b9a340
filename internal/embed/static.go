package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"
)

// Feature weights for the hashed vector. Tokens carry most of the
// signal; character trigrams add tolerance for partial identifiers.
const (
	staticTokenWeight = 0.7
	staticNgramWeight = 0.3
	staticNgramSize   = 3
)

// StaticEmbedder is the offline hashing provider: deterministic,
// dependency-free vectors with reduced semantic quality. Tokens and
// character n-grams are hashed into fixed buckets and the result is
// L2-normalized.
type StaticEmbedder struct {
	mu     sync.RWMutex
	closed bool
}

// NewStaticEmbedder creates the offline hashing provider.
func NewStaticEmbedder() *StaticEmbedder {
	return &StaticEmbedder{}
}

var _ Embedder = (*StaticEmbedder)(nil)

// EmbedTexts embeds a batch of chunk contents.
func (e *StaticEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, fmt.Errorf("embedder is closed")
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = e.embedOne(text)
	}
	return vectors, nil
}

// EmbedQuery embeds a query with the same scheme as chunk contents.
func (e *StaticEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *StaticEmbedder) embedOne(text string) []float32 {
	vector := make([]float32, StaticDimensions)
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return vector
	}

	for _, token := range hashTokens(trimmed) {
		vector[bucketOf(token)] += staticTokenWeight
	}
	for _, ngram := range charNgrams(trimmed, staticNgramSize) {
		vector[bucketOf(ngram)] += staticNgramWeight
	}
	return Normalize(vector)
}

// Dimensions returns the vector width.
func (e *StaticEmbedder) Dimensions() int { return StaticDimensions }

// ModelName identifies this provider in persisted index metadata.
func (e *StaticEmbedder) ModelName() string { return "static-fnv" }

// Available is always true: the static provider has no dependencies.
func (e *StaticEmbedder) Available(_ context.Context) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.closed
}

// Close releases resources.
func (e *StaticEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// hashTokens lowercases and splits text into identifier-aware tokens.
func hashTokens(text string) []string {
	var tokens []string
	var current []rune

	flush := func() {
		if len(current) == 0 {
			return
		}
		word := string(current)
		current = current[:0]
		for _, part := range splitHashWord(word) {
			lower := strings.ToLower(part)
			if len(lower) >= 2 {
				tokens = append(tokens, lower)
			}
		}
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current = append(current, r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// splitHashWord splits camelCase boundaries within a word.
func splitHashWord(word string) []string {
	runes := []rune(word)
	var parts []string
	start := 0
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) && unicode.IsLower(runes[i-1]) {
			parts = append(parts, string(runes[start:i]))
			start = i
		}
	}
	return append(parts, string(runes[start:]))
}

// charNgrams extracts sliding lowercase alphanumeric windows.
func charNgrams(text string, n int) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	flat := b.String()
	if len(flat) < n {
		return nil
	}

	ngrams := make([]string, 0, len(flat)-n+1)
	for i := 0; i+n <= len(flat); i++ {
		ngrams = append(ngrams, flat[i:i+n])
	}
	return ngrams
}

// bucketOf maps a feature string to a vector index via FNV-64.
func bucketOf(s string) int {
	h := fnv.New64()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64() % uint64(StaticDimensions))
}
