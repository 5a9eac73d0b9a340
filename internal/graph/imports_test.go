package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolver_GoImports(t *testing.T) {
	r := NewResolver([]string{
		"internal/store/tracker.go",
		"internal/store/tracker_test.go",
		"internal/config/config.go",
		"cmd/app/main.go",
	})

	content := `package main

import (
	"fmt"
	"scout/internal/store"

	cfg "scout/internal/config"
)
`
	got := r.Extract("cmd/app/main.go", content, "go")
	assert.ElementsMatch(t, []string{
		"internal/store/tracker.go",
		"internal/config/config.go",
	}, got, "test files and unresolvable imports are excluded")
}

func TestResolver_GoSingleImport(t *testing.T) {
	r := NewResolver([]string{"internal/util/util.go", "main.go"})

	got := r.Extract("main.go", `import "myapp/internal/util"`, "go")
	assert.Equal(t, []string{"internal/util/util.go"}, got)
}

func TestResolver_PythonImports(t *testing.T) {
	r := NewResolver([]string{
		"pkg/engine.py",
		"pkg/helpers/__init__.py",
		"pkg/client.py",
	})

	content := `import os
from pkg.helpers import run
from .engine import Engine
import pkg.client
`
	got := r.Extract("pkg/main.py", content, "python")
	assert.ElementsMatch(t, []string{
		"pkg/helpers/__init__.py",
		"pkg/engine.py",
		"pkg/client.py",
	}, got)
}

func TestResolver_JSImports(t *testing.T) {
	r := NewResolver([]string{
		"src/utils.ts",
		"src/components/index.tsx",
		"src/legacy.js",
	})

	content := `import { format } from './utils';
import Components from './components';
const legacy = require('./legacy');
import express from 'express';
`
	got := r.Extract("src/app.ts", content, "typescript")
	assert.ElementsMatch(t, []string{
		"src/utils.ts",
		"src/components/index.tsx",
		"src/legacy.js",
	}, got, "bare package specifiers never resolve to repo files")
}

func TestResolver_SelfImportDropped(t *testing.T) {
	r := NewResolver([]string{"src/a.js"})

	got := r.Extract("src/a.js", `import './a';`, "javascript")
	assert.Empty(t, got)
}

func TestResolver_UnknownLanguage(t *testing.T) {
	r := NewResolver([]string{"README.md"})

	got := r.Extract("README.md", "import something", "markdown")
	assert.Nil(t, got)
}
