package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScanIndex(t *testing.T) (*ScanIndex, *TrackerStore) {
	t.Helper()
	tracker := newTestTracker(t)
	idx := NewScanIndex(tracker)
	t.Cleanup(func() { _ = idx.Close() })
	return idx, tracker
}

func TestScanIndex_SubstringMatch(t *testing.T) {
	idx, tracker := newTestScanIndex(t)
	ctx := context.Background()

	require.NoError(t, tracker.SaveDocument(ctx, "b.go", "func unrelated() {}"))
	require.NoError(t, tracker.SaveDocument(ctx, "a.go", "func HandleRequest(w http.ResponseWriter) {}"))

	results, err := idx.Search(ctx, "handleRequest", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a.go", results[0].Path)
	assert.Equal(t, 0.0, results[0].Score, "fallback backend assigns a fixed zero score")
	assert.Contains(t, results[0].Snippet, "HandleRequest")
}

func TestScanIndex_DeterministicOrdering(t *testing.T) {
	idx, tracker := newTestScanIndex(t)
	ctx := context.Background()

	for _, path := range []string{"z.go", "m.go", "a.go"} {
		require.NoError(t, tracker.SaveDocument(ctx, path, "shared keyword marker"))
	}

	first, err := idx.Search(ctx, "marker", 10)
	require.NoError(t, err)
	second, err := idx.Search(ctx, "marker", 10)
	require.NoError(t, err)

	require.Len(t, first, 3)
	assert.Equal(t, first, second, "identical inputs must yield identical candidate sets")
	assert.Equal(t, "a.go", first[0].Path)
	assert.Equal(t, "z.go", first[2].Path)
}

func TestScanIndex_RespectsLimit(t *testing.T) {
	idx, tracker := newTestScanIndex(t)
	ctx := context.Background()

	for _, path := range []string{"a.go", "b.go", "c.go"} {
		require.NoError(t, tracker.SaveDocument(ctx, path, "common token"))
	}

	results, err := idx.Search(ctx, "common", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestScanIndex_EmptyQuery(t *testing.T) {
	idx, _ := newTestScanIndex(t)

	results, err := idx.Search(context.Background(), "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestExtractWindow_WholeLines(t *testing.T) {
	content := "line one\nline two with needle inside\nline three\n"
	pos := 18 // inside "needle" line

	snippet := extractWindow(content, pos)
	assert.Equal(t, "line two with needle inside", snippet)
}
