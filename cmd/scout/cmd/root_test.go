package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scout/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make(map[string]bool)
	for _, sc := range cmd.Commands() {
		names[sc.Name()] = true
	}
	for _, want := range []string{"init", "index", "search", "impacted", "select-tests", "status", "version"} {
		assert.True(t, names[want], "missing %s command", want)
	}
}

func TestVersionCmd_ShortOutput(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestInitCmd_WritesConfig(t *testing.T) {
	tmpDir := t.TempDir()

	out, err := execute(t, "init", "--repo", tmpDir)
	require.NoError(t, err)
	assert.Contains(t, out, config.ProjectFileName)
	assert.FileExists(t, filepath.Join(tmpDir, config.ProjectFileName))

	// A second init without --force refuses to overwrite.
	_, err = execute(t, "init", "--repo", tmpDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "init", "--repo", tmpDir, "--force")
	require.NoError(t, err)
}

func TestIndexAndSearch_EndToEnd(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "greet.go")
	content := "package greet\n\n// Greet returns a greeting for name.\nfunc Greet(name string) string {\n\treturn \"hello \" + name\n}\n"
	require.NoError(t, os.WriteFile(src, []byte(content), 0o644))

	out, err := execute(t, "index", "--repo", tmpDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 1 files")

	out, err = execute(t, "search", "Greet", "--repo", tmpDir)
	require.NoError(t, err)
	assert.Contains(t, out, "greet.go")

	out, err = execute(t, "status", "--repo", tmpDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Files:     1")
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	tmpDir := t.TempDir()
	_, err := execute(t, "search", "--repo", tmpDir)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "arg"))
}

func TestImpactedCmd_UnindexedFileIsStillListed(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "main.go")
	require.NoError(t, os.WriteFile(src, []byte("package main\n\nfunc main() {}\n"), 0o644))

	_, err := execute(t, "index", "--repo", tmpDir)
	require.NoError(t, err)

	// Changed files are always part of their own impact set.
	out, err := execute(t, "impacted", "main.go", "--repo", tmpDir)
	require.NoError(t, err)
	assert.Contains(t, out, "main.go")
}
