// Package impact selects the tests most likely to cover a change,
// ranked by directory and naming proximity to the impacted file set.
package impact

import (
	"path"
	"sort"
	"strings"
)

// Proximity weights. Same-parent tests score on top of the top-level
// directory bonus; end-to-end suites are pushed down because they are
// slow and rarely the tightest check for a localized change.
const (
	bonusSameTopDir = 2
	bonusSameParent = 3
	bonusStemMatch  = 1
	penaltyE2E      = -2

	// fallbackPrefixSize bounds the deterministic prefix returned when
	// no test scores positively.
	fallbackPrefixSize = 3
)

// TestSelection is the outcome of one selection pass.
type TestSelection struct {
	SelectedTests []string `json:"selected_tests"`
	ImpactedFiles []string `json:"impacted_files"`
	Fallback      bool     `json:"fallback"`
}

// IsTestFile reports whether a path matches the fixed test naming
// conventions the selector discovers by.
func IsTestFile(filePath string) bool {
	base := path.Base(filePath)
	switch {
	case strings.HasSuffix(base, "_test.go"),
		strings.HasPrefix(base, "test_") && strings.HasSuffix(base, ".py"),
		strings.HasSuffix(base, "_test.py"):
		return true
	}
	for _, suffix := range []string{".test.js", ".test.ts", ".test.jsx", ".test.tsx", ".spec.js", ".spec.ts"} {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	// Source files under a dedicated test directory count too.
	if isSourceFile(base) {
		for _, part := range strings.Split(path.Dir(filePath), "/") {
			if part == "test" || part == "tests" || part == "__tests__" {
				return true
			}
		}
	}
	return false
}

func isSourceFile(base string) bool {
	switch path.Ext(base) {
	case ".go", ".py", ".js", ".jsx", ".ts", ".tsx":
		return true
	}
	return false
}

// Select scores every discovered test against the impacted set and
// returns the best maxTests. Only strictly positive scores are
// eligible; when nothing scores positively the selector falls back to
// a small deterministic prefix of all tests, so a repo with tests
// never yields an empty selection.
func Select(allFiles, impactedFiles []string, maxTests int) TestSelection {
	if maxTests <= 0 {
		maxTests = 20
	}

	tests := make([]string, 0)
	for _, f := range allFiles {
		if IsTestFile(f) {
			tests = append(tests, f)
		}
	}
	sort.Strings(tests)

	impacted := make([]string, len(impactedFiles))
	copy(impacted, impactedFiles)
	sort.Strings(impacted)

	selection := TestSelection{ImpactedFiles: impacted}
	if len(tests) == 0 {
		selection.SelectedTests = []string{}
		return selection
	}

	type scored struct {
		path  string
		score int
	}
	var candidates []scored
	for _, test := range tests {
		if score := scoreTest(test, impacted); score > 0 {
			candidates = append(candidates, scored{path: test, score: score})
		}
	}

	if len(candidates) == 0 {
		n := fallbackPrefixSize
		if n > maxTests {
			n = maxTests
		}
		if n > len(tests) {
			n = len(tests)
		}
		selection.SelectedTests = tests[:n]
		selection.Fallback = true
		return selection
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].path < candidates[j].path
	})
	if len(candidates) > maxTests {
		candidates = candidates[:maxTests]
	}

	selected := make([]string, len(candidates))
	for i, c := range candidates {
		selected[i] = c.path
	}
	selection.SelectedTests = selected
	return selection
}

// scoreTest accumulates proximity bonuses against every impacted file.
func scoreTest(test string, impacted []string) int {
	score := 0
	testTop := topDir(test)
	testParent := path.Dir(test)
	testStem := stemOf(test)

	for _, imp := range impacted {
		if topDir(imp) == testTop {
			score += bonusSameTopDir
		}
		if path.Dir(imp) == testParent {
			score += bonusSameParent
		}
		if stemsOverlap(testStem, stemOf(imp)) {
			score += bonusStemMatch
		}
	}

	if isE2EName(test) {
		score += penaltyE2E
	}
	return score
}

func topDir(p string) string {
	if idx := strings.IndexByte(p, '/'); idx >= 0 {
		return p[:idx]
	}
	return "."
}

// stemOf strips the extension and test naming markers from a filename.
func stemOf(p string) string {
	base := path.Base(p)
	if idx := strings.IndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}
	base = strings.TrimSuffix(base, "_test")
	base = strings.TrimPrefix(base, "test_")
	return strings.ToLower(base)
}

func stemsOverlap(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func isE2EName(p string) bool {
	lower := strings.ToLower(p)
	return strings.Contains(lower, "e2e") ||
		strings.Contains(lower, "end_to_end") ||
		strings.Contains(lower, "endtoend")
}
