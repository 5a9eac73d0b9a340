package vector

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scout/internal/embed"
)

func newTestIndex(t *testing.T) (*Index, embed.Embedder) {
	t.Helper()
	embedder := embed.NewStaticEmbedder()
	t.Cleanup(func() { _ = embedder.Close() })
	return NewIndex(embedder.ModelName(), embedder.ModelName(), "hnsw"), embedder
}

func TestIndex_BuildOrUpdate(t *testing.T) {
	idx, embedder := newTestIndex(t)
	ctx := context.Background()

	chunks := map[string]string{
		"a.go#0": "func openDatabase() {}",
		"a.go#1": "func closeDatabase() {}",
	}
	stats, err := idx.BuildOrUpdate(ctx, embedder, chunks)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Embedded)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, embed.StaticDimensions, idx.Dim)
}

func TestIndex_SkipsUnchangedChunks(t *testing.T) {
	idx, embedder := newTestIndex(t)
	ctx := context.Background()

	chunks := map[string]string{"a.go#0": "unchanged content"}
	_, err := idx.BuildOrUpdate(ctx, embedder, chunks)
	require.NoError(t, err)

	stats, err := idx.BuildOrUpdate(ctx, embedder, chunks)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Embedded)
	assert.Equal(t, 1, stats.Skipped)
}

func TestIndex_ReembedsOnContentChange(t *testing.T) {
	idx, embedder := newTestIndex(t)
	ctx := context.Background()

	_, err := idx.BuildOrUpdate(ctx, embedder, map[string]string{"a.go#0": "before"})
	require.NoError(t, err)
	before := idx.Vectors["a.go#0"]

	stats, err := idx.BuildOrUpdate(ctx, embedder, map[string]string{"a.go#0": "after edit"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Embedded)
	assert.NotEqual(t, before, idx.Vectors["a.go#0"])
}

func TestIndex_PrunesRemovedChunks(t *testing.T) {
	idx, embedder := newTestIndex(t)
	ctx := context.Background()

	_, err := idx.BuildOrUpdate(ctx, embedder, map[string]string{
		"keep.go#0": "kept",
		"gone.go#0": "removed later",
	})
	require.NoError(t, err)

	stats, err := idx.BuildOrUpdate(ctx, embedder, map[string]string{"keep.go#0": "kept"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pruned)
	assert.Equal(t, 1, idx.Len())
	assert.NotContains(t, idx.Hashes, "gone.go#0")
}

func TestIndex_SaveAndLoad(t *testing.T) {
	idx, embedder := newTestIndex(t)
	ctx := context.Background()

	_, err := idx.BuildOrUpdate(ctx, embedder, map[string]string{"a.go#0": "persisted content"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "kb", "vectors.json")
	require.NoError(t, idx.Save(path))

	loaded, err := LoadIndex(path, idx.Provider, idx.Model, idx.Backend)
	require.NoError(t, err)
	assert.Equal(t, idx.Hashes, loaded.Hashes)
	assert.Equal(t, idx.Fingerprint(), loaded.Fingerprint())
	assert.Len(t, loaded.Vectors["a.go#0"], embed.StaticDimensions)
}

func TestLoadIndex_MissingFileReturnsEmpty(t *testing.T) {
	idx, err := LoadIndex(filepath.Join(t.TempDir(), "absent.json"), "p", "m", "hnsw")
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
}

func TestLoadIndex_ModelChangeDiscardsVectors(t *testing.T) {
	idx, embedder := newTestIndex(t)
	ctx := context.Background()
	_, err := idx.BuildOrUpdate(ctx, embedder, map[string]string{"a.go#0": "content"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "vectors.json")
	require.NoError(t, idx.Save(path))

	loaded, err := LoadIndex(path, "other-provider", "other-model", "hnsw")
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len(), "provider change forces full re-embed")
}
