package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainFiles() []SourceFile {
	return []SourceFile{
		{Path: "a.py", ContentHash: "ha", Content: "import b\n", Language: "python"},
		{Path: "b.py", ContentHash: "hb", Content: "import c\n", Language: "python"},
		{Path: "c.py", ContentHash: "hc", Content: "print('leaf')\n", Language: "python"},
	}
}

func TestBuild_ExtractsAndPersistsEdges(t *testing.T) {
	s := newTestGraphStore(t)
	ctx := context.Background()

	result, err := Build(ctx, s, chainFiles())
	require.NoError(t, err)
	assert.Equal(t, 3, result.UpdatedFiles)
	assert.Equal(t, 2, result.EdgesAdded)

	edges, err := s.AllEdges(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Edge{
		{Src: "a.py", Dst: "b.py", Type: EdgeTypeImport},
		{Src: "b.py", Dst: "c.py", Type: EdgeTypeImport},
	}, edges)
}

func TestBuild_SkipsUnchangedFiles(t *testing.T) {
	s := newTestGraphStore(t)
	ctx := context.Background()

	_, err := Build(ctx, s, chainFiles())
	require.NoError(t, err)

	// Second pass with identical hashes touches nothing.
	result, err := Build(ctx, s, chainFiles())
	require.NoError(t, err)
	assert.Equal(t, 0, result.UpdatedFiles)
	assert.Equal(t, 0, result.EdgesAdded)
}

func TestBuild_RebuildsOnlyChangedFile(t *testing.T) {
	s := newTestGraphStore(t)
	ctx := context.Background()

	files := chainFiles()
	_, err := Build(ctx, s, files)
	require.NoError(t, err)

	// a.py drops its import of b.py.
	files[0].Content = "print('standalone')\n"
	files[0].ContentHash = "ha2"

	result, err := Build(ctx, s, files)
	require.NoError(t, err)
	assert.Equal(t, 1, result.UpdatedFiles)

	edges, err := s.AllEdges(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Edge{
		{Src: "b.py", Dst: "c.py", Type: EdgeTypeImport},
	}, edges)
}

func TestImpacted_FromPersistedGraph(t *testing.T) {
	s := newTestGraphStore(t)
	ctx := context.Background()

	_, err := Build(ctx, s, chainFiles())
	require.NoError(t, err)

	got, err := Impacted(ctx, s, []string{"c.py"}, 2, func(context.Context) ([]SourceFile, error) {
		t.Fatal("loader must not be called when the graph is persisted")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "b.py", "c.py"}, got)
}

func TestImpacted_FallsBackWhenGraphAbsent(t *testing.T) {
	s := newTestGraphStore(t)
	ctx := context.Background()

	got, err := Impacted(ctx, s, []string{"c.py"}, 2, func(context.Context) ([]SourceFile, error) {
		return chainFiles(), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "b.py", "c.py"}, got)
}
