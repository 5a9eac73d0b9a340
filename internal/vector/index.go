// Package vector maintains the dense vector index: hash-gated
// incremental embedding, JSON persistence, brute-force cosine scan,
// and the fingerprint-gated ANN cache.
package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"scout/internal/embed"
	"scout/internal/store"
)

// indexVersion guards the persisted JSON layout.
const indexVersion = 1

// Index maps chunk ids to embedding vectors plus the content hashes
// that gate re-embedding. Vectors are stored L2-normalized.
type Index struct {
	Version  int                  `json:"version"`
	Provider string               `json:"provider"`
	Model    string               `json:"model"`
	Dim      int                  `json:"dim"`
	Backend  string               `json:"backend"`
	Vectors  map[string][]float32 `json:"vectors"`
	Hashes   map[string]string    `json:"hashes"`
}

// NewIndex creates an empty index for the given provider identity.
func NewIndex(provider, model, backend string) *Index {
	return &Index{
		Version:  indexVersion,
		Provider: provider,
		Model:    model,
		Backend:  backend,
		Vectors:  make(map[string][]float32),
		Hashes:   make(map[string]string),
	}
}

// BuildStats summarizes one build_or_update pass.
type BuildStats struct {
	Embedded int
	Skipped  int
	Pruned   int
}

// BuildOrUpdate brings the index in line with the live chunk set.
// Chunks whose stored hash matches their current content are skipped;
// only the changed subset goes through the embedder. Vectors for
// chunk ids no longer present are pruned on the same pass.
func (idx *Index) BuildOrUpdate(ctx context.Context, embedder embed.Embedder, chunks map[string]string) (BuildStats, error) {
	var stats BuildStats

	var staleIDs []string
	var staleTexts []string
	for id, content := range chunks {
		hash := store.HashContent([]byte(content))
		if stored, ok := idx.Hashes[id]; ok && stored == hash {
			stats.Skipped++
			continue
		}
		staleIDs = append(staleIDs, id)
		staleTexts = append(staleTexts, content)
	}

	if len(staleIDs) > 0 {
		vectors, err := embedder.EmbedTexts(ctx, staleTexts)
		if err != nil {
			return stats, fmt.Errorf("embed %d chunks: %w", len(staleIDs), err)
		}
		if len(vectors) != len(staleIDs) {
			return stats, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(staleIDs))
		}
		for i, id := range staleIDs {
			vec := embed.Normalize(vectors[i])
			idx.Vectors[id] = vec
			idx.Hashes[id] = store.HashContent([]byte(staleTexts[i]))
			if idx.Dim == 0 {
				idx.Dim = len(vec)
			}
		}
		stats.Embedded = len(staleIDs)
	}

	for id := range idx.Hashes {
		if _, live := chunks[id]; !live {
			delete(idx.Vectors, id)
			delete(idx.Hashes, id)
			stats.Pruned++
		}
	}

	slog.Debug("vector_index_updated",
		slog.Int("embedded", stats.Embedded),
		slog.Int("skipped", stats.Skipped),
		slog.Int("pruned", stats.Pruned))
	return stats, nil
}

// Fingerprint returns the content fingerprint of the live index.
func (idx *Index) Fingerprint() string {
	return Fingerprint(idx.Hashes)
}

// Len returns the number of stored vectors.
func (idx *Index) Len() int {
	return len(idx.Vectors)
}

// Save writes the index as JSON, atomically via temp file + rename.
func (idx *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create vector index directory: %w", err)
	}

	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("marshal vector index: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write vector index: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename vector index: %w", err)
	}
	return nil
}

// LoadIndex reads a persisted index. A missing file returns a fresh
// empty index for the given identity; a mismatched provider or model
// discards the stored vectors, forcing a full re-embed.
func LoadIndex(path, provider, model, backend string) (*Index, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewIndex(provider, model, backend), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read vector index: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		slog.Warn("vector_index_unparseable",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return NewIndex(provider, model, backend), nil
	}

	if idx.Version != indexVersion || idx.Provider != provider || idx.Model != model {
		slog.Info("vector_index_identity_changed",
			slog.String("stored_provider", idx.Provider),
			slog.String("stored_model", idx.Model))
		return NewIndex(provider, model, backend), nil
	}
	idx.Backend = backend

	if idx.Vectors == nil {
		idx.Vectors = make(map[string][]float32)
	}
	if idx.Hashes == nil {
		idx.Hashes = make(map[string]string)
	}
	return &idx, nil
}
