package impact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTestFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"internal/store/tracker_test.go", true},
		{"tests/test_engine.py", true},
		{"pkg/engine_test.py", true},
		{"src/app.test.ts", true},
		{"src/app.spec.js", true},
		{"tests/helpers.py", true},
		{"src/__tests__/render.tsx", true},
		{"internal/store/tracker.go", false},
		{"tests/fixtures/data.json", false},
		{"docs/testing.md", false},
		{"protest.py", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsTestFile(tt.path), tt.path)
	}
}

func TestSelect_SameParentOutranksSameTopDir(t *testing.T) {
	allFiles := []string{
		"internal/store/tracker.go",
		"internal/store/tracker_test.go",
		"internal/graph/builder_test.go",
		"cmd/app/main.go",
	}
	impacted := []string{"internal/store/tracker.go"}

	sel := Select(allFiles, impacted, 10)
	require.NotEmpty(t, sel.SelectedTests)
	assert.Equal(t, "internal/store/tracker_test.go", sel.SelectedTests[0])
	assert.False(t, sel.Fallback)
}

func TestSelect_StemOverlapBreaksDirectoryTies(t *testing.T) {
	allFiles := []string{
		"pkg/parser.go",
		"pkg/parser_test.go",
		"pkg/render_test.go",
	}
	sel := Select(allFiles, []string{"pkg/parser.go"}, 10)

	require.Len(t, sel.SelectedTests, 2)
	assert.Equal(t, "pkg/parser_test.go", sel.SelectedTests[0])
}

func TestSelect_E2EFilesPenalized(t *testing.T) {
	allFiles := []string{
		"app/server.go",
		"app/server_test.go",
		"app/e2e_server_test.go",
	}
	sel := Select(allFiles, []string{"app/server.go"}, 10)

	require.NotEmpty(t, sel.SelectedTests)
	assert.Equal(t, "app/server_test.go", sel.SelectedTests[0])
}

func TestSelect_PositiveScoresOnly(t *testing.T) {
	allFiles := []string{
		"frontend/widget.test.ts",
		"backend/api.go",
		"backend/api_test.go",
	}
	sel := Select(allFiles, []string{"backend/api.go"}, 10)

	assert.Equal(t, []string{"backend/api_test.go"}, sel.SelectedTests,
		"tests with zero proximity are not selected")
}

func TestSelect_FallbackPrefixWhenNothingScores(t *testing.T) {
	// Changed file shares no directory or name with any test.
	allFiles := []string{
		"scripts/migrate.sh",
		"web/ui.test.ts",
		"web/api.test.ts",
		"web/z_late.test.ts",
	}
	sel := Select(allFiles, []string{"scripts/migrate.sh"}, 10)

	require.True(t, sel.Fallback)
	assert.Equal(t, []string{"web/api.test.ts", "web/ui.test.ts", "web/z_late.test.ts"}, sel.SelectedTests,
		"deterministic sorted prefix, never empty when tests exist")
}

func TestSelect_FallbackRespectsMaxTests(t *testing.T) {
	allFiles := []string{"a/x.test.ts", "a/y.test.ts", "a/z.test.ts", "lone.md"}
	sel := Select(allFiles, []string{"lone.md"}, 1)

	assert.Len(t, sel.SelectedTests, 1)
	assert.True(t, sel.Fallback)
}

func TestSelect_NoTestsAtAll(t *testing.T) {
	sel := Select([]string{"main.go", "util.go"}, []string{"main.go"}, 5)
	assert.Empty(t, sel.SelectedTests)
	assert.False(t, sel.Fallback)
}

func TestSelect_TruncatesToMaxTests(t *testing.T) {
	allFiles := []string{
		"pkg/a.go",
		"pkg/a_test.go",
		"pkg/b_test.go",
		"pkg/c_test.go",
	}
	sel := Select(allFiles, []string{"pkg/a.go"}, 2)
	assert.Len(t, sel.SelectedTests, 2)
}

func TestSelect_Deterministic(t *testing.T) {
	allFiles := []string{"m/a_test.go", "m/b_test.go", "m/code.go"}
	first := Select(allFiles, []string{"m/code.go"}, 10)
	second := Select(allFiles, []string{"m/code.go"}, 10)
	assert.Equal(t, first, second)
}

func TestSelect_ImpactedFilesSorted(t *testing.T) {
	sel := Select([]string{"a_test.go"}, []string{"z.go", "a.go", "m.go"}, 5)
	assert.Equal(t, []string{"a.go", "m.go", "z.go"}, sel.ImpactedFiles)
}
