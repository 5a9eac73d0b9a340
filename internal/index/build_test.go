package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scout/internal/config"
	scouterrors "scout/internal/errors"
)

var repoFiles = map[string]string{
	"auth/login.go": `package auth

// Login validates a username and password pair.
func Login(user, password string) bool {
	if user == "" || password == "" {
		return false
	}
	return checkCredentials(user, password)
}

func checkCredentials(user, password string) bool {
	return len(password) >= 8
}
`,
	"auth/token.go": `package auth

// IssueToken mints a session token for an authenticated user.
func IssueToken(user string) string {
	return "tok-" + user
}
`,
	"auth/login_test.go": `package auth

import "testing"

func TestLogin(t *testing.T) {
	if Login("alice", "short") {
		t.Fatal("short password accepted")
	}
}
`,
	"server/server.go": `package server

import "example.com/app/auth"

// HandleLogin authenticates the request and issues a token.
func HandleLogin(user, password string) (string, bool) {
	if !auth.Login(user, password) {
		return "", false
	}
	return auth.IssueToken(user), true
}
`,
	"docs/notes.md": "Login flow overview.\n",
}

func writeTestRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for path, content := range repoFiles {
		full := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func openTestSession(t *testing.T, root string) *Session {
	t.Helper()
	s, err := Open(config.Default(), root)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBuild_IndexesRepository(t *testing.T) {
	root := writeTestRepo(t)
	s := openTestSession(t, root)
	ctx := context.Background()

	stats, err := s.Build(ctx)
	require.NoError(t, err)

	assert.Equal(t, len(repoFiles), stats.FilesIndexed)
	assert.Equal(t, 0, stats.FilesUnchanged)
	assert.Equal(t, 0, stats.FilesDeleted)
	// server/server.go imports package auth, which has two source files.
	assert.GreaterOrEqual(t, stats.EdgesAdded, 2)
	assert.Greater(t, stats.ChunksEmbedded, 0)
	assert.True(t, stats.ANNBuilt)

	// Artifacts land under the repository data directory.
	assert.FileExists(t, vectorsPath(s.DataDir))
	assert.FileExists(t, annPath(s.DataDir))

	status, err := s.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(repoFiles), status.Files)
	assert.Greater(t, status.Symbols, 0)
	assert.Greater(t, status.Edges, 0)
	assert.Greater(t, status.Vectors, 0)
}

func TestBuild_SecondRunTouchesNothing(t *testing.T) {
	root := writeTestRepo(t)
	s := openTestSession(t, root)
	ctx := context.Background()

	_, err := s.Build(ctx)
	require.NoError(t, err)

	stats, err := s.Build(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.FilesIndexed)
	assert.Equal(t, len(repoFiles), stats.FilesUnchanged)
	assert.Equal(t, 0, stats.GraphFilesUpdated)
	assert.Equal(t, 0, stats.ChunksEmbedded)
	assert.Greater(t, stats.ChunksSkipped, 0)
	assert.Equal(t, 0, stats.ChunksPruned)
	// The ANN fingerprint still matches, so nothing was rebuilt.
	assert.False(t, stats.ANNBuilt)
}

func TestBuild_TenFileRepoSkipsAllOnRerun(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 10; i++ {
		name := filepath.Join(root, fmt.Sprintf("file%d.go", i))
		content := fmt.Sprintf("package repo\n\nfunc Handler%d() int { return %d }\n", i, i)
		require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
	}
	s := openTestSession(t, root)
	ctx := context.Background()

	first, err := s.Build(ctx)
	require.NoError(t, err)
	require.Equal(t, 10, first.FilesIndexed)

	second, err := s.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.FilesIndexed)
	assert.Equal(t, 10, second.FilesUnchanged)
}

func TestBuild_TouchedButIdenticalFileIsSkipped(t *testing.T) {
	root := writeTestRepo(t)
	s := openTestSession(t, root)
	ctx := context.Background()

	_, err := s.Build(ctx)
	require.NoError(t, err)

	// Touch the mtime without changing content; the hash check catches it.
	later := time.Now().Add(2 * time.Second)
	path := filepath.Join(root, "auth", "login.go")
	require.NoError(t, os.Chtimes(path, later, later))

	stats, err := s.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FilesIndexed)
	assert.Equal(t, len(repoFiles), stats.FilesUnchanged)
}

func TestBuild_ReindexesModifiedFile(t *testing.T) {
	root := writeTestRepo(t)
	s := openTestSession(t, root)
	ctx := context.Background()

	_, err := s.Build(ctx)
	require.NoError(t, err)

	path := filepath.Join(root, "auth", "token.go")
	modified := repoFiles["auth/token.go"] + "\nfunc RevokeToken(token string) {}\n"
	require.NoError(t, os.WriteFile(path, []byte(modified), 0o644))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	stats, err := s.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)
	assert.Equal(t, len(repoFiles)-1, stats.FilesUnchanged)
	assert.Greater(t, stats.ChunksEmbedded, 0)
	// New content changed the fingerprint, forcing an ANN rebuild.
	assert.True(t, stats.ANNBuilt)

	// The new symbol is queryable after the rebuild.
	syms, err := s.Tracker.SearchSymbols(ctx, "RevokeToken", 5)
	require.NoError(t, err)
	require.NotEmpty(t, syms)
	assert.Equal(t, "auth/token.go", syms[0].Path)
}

func TestBuild_RemovesDeletedFile(t *testing.T) {
	root := writeTestRepo(t)
	s := openTestSession(t, root)
	ctx := context.Background()

	_, err := s.Build(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "docs", "notes.md")))

	stats, err := s.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesDeleted)

	rec, err := s.Tracker.GetFile(ctx, "docs/notes.md")
	require.NoError(t, err)
	assert.Nil(t, rec)
	doc, err := s.Tracker.GetDocument(ctx, "docs/notes.md")
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestBuild_ConcurrentBuildIsRejected(t *testing.T) {
	root := writeTestRepo(t)
	s := openTestSession(t, root)

	lock, err := acquireBuildLock(s.DataDir)
	require.NoError(t, err)
	defer func() { _ = lock.Unlock() }()

	_, err = s.Build(context.Background())
	require.Error(t, err)
	assert.Equal(t, scouterrors.ErrCodeBuildLocked, scouterrors.GetCode(err))
}

func TestSession_SearchAfterBuild(t *testing.T) {
	root := writeTestRepo(t)
	s := openTestSession(t, root)
	ctx := context.Background()

	_, err := s.Build(ctx)
	require.NoError(t, err)

	hits, err := s.Search(ctx, "Login", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	paths := make(map[string]bool)
	for _, h := range hits {
		paths[h.Path] = true
		assert.NotEmpty(t, h.Snippet)
	}
	assert.True(t, paths["auth/login.go"])

	// The exact symbol definition outranks files that merely mention it.
	assert.Equal(t, "auth/login.go", hits[0].Path)
}

func TestSession_ImpactedAfterBuild(t *testing.T) {
	root := writeTestRepo(t)
	s := openTestSession(t, root)
	ctx := context.Background()

	_, err := s.Build(ctx)
	require.NoError(t, err)

	impacted, err := s.Impacted(ctx, []string{"auth/login.go"}, 0)
	require.NoError(t, err)
	assert.Contains(t, impacted, "auth/login.go")
	assert.Contains(t, impacted, "server/server.go")
	assert.NotContains(t, impacted, "docs/notes.md")
}

func TestSession_SelectTestsAfterBuild(t *testing.T) {
	root := writeTestRepo(t)
	s := openTestSession(t, root)
	ctx := context.Background()

	_, err := s.Build(ctx)
	require.NoError(t, err)

	sel, err := s.SelectTests(ctx, []string{"auth/login.go"}, 5)
	require.NoError(t, err)
	assert.False(t, sel.Fallback)
	require.NotEmpty(t, sel.SelectedTests)
	assert.Equal(t, "auth/login_test.go", sel.SelectedTests[0])
	assert.Contains(t, sel.ImpactedFiles, "server/server.go")
}

func TestSession_PersistsAcrossReopen(t *testing.T) {
	root := writeTestRepo(t)
	ctx := context.Background()

	s := openTestSession(t, root)
	_, err := s.Build(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened := openTestSession(t, root)
	stats, err := reopened.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FilesIndexed)
	assert.Equal(t, len(repoFiles), stats.FilesUnchanged)

	hits, err := reopened.Search(ctx, "IssueToken", 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "auth/token.go", hits[0].Path)
}
