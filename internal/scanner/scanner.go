// Package scanner discovers indexable files in a repository tree.
// It filters out binaries, oversized files, and build/dependency caches
// before the content tracker decides what actually changed.
package scanner

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// matcherCacheSize bounds the per-directory exclusion decision cache.
const matcherCacheSize = 1024

// Scanner discovers indexable files in a repository directory.
type Scanner struct {
	// dirCache caches per-directory exclusion decisions across scans.
	dirCache *lru.Cache[string, bool]
}

// New creates a new Scanner instance.
func New() (*Scanner, error) {
	cache, err := lru.New[string, bool](matcherCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create directory cache: %w", err)
	}
	return &Scanner{dirCache: cache}, nil
}

// Scan discovers all indexable files under the root directory.
// It returns a channel of ScanResult that streams files as they are
// discovered; the channel is closed when scanning is complete.
// Unreadable files are skipped, never fatal to the scan.
func (s *Scanner) Scan(ctx context.Context, opts *ScanOptions) (<-chan ScanResult, error) {
	if opts == nil {
		opts = &ScanOptions{}
	}

	rootDir := opts.RootDir
	if rootDir == "" {
		rootDir = "."
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path is not a directory: %s", absRoot)
	}

	maxFileSize := opts.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	results := make(chan ScanResult, 64)

	go func() {
		defer close(results)
		s.scan(ctx, absRoot, opts, maxFileSize, results)
	}()

	return results, nil
}

// scan performs the directory traversal.
func (s *Scanner) scan(ctx context.Context, absRoot string, opts *ScanOptions, maxFileSize int64, results chan<- ScanResult) {
	err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return nil // Skip files we can't access
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}

		if relPath == "." {
			return nil
		}

		if d.IsDir() {
			if s.shouldExcludeDir(relPath, opts) {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks are never followed.
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if s.shouldExcludeFile(relPath, opts) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		if info.Size() > maxFileSize {
			return nil
		}

		if isBinaryFile(path) {
			return nil
		}

		if len(opts.IncludePatterns) > 0 && !matchesAnyPattern(relPath, opts.IncludePatterns) {
			return nil
		}

		fileInfo := &FileInfo{
			Path:     filepath.ToSlash(relPath),
			AbsPath:  path,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			Language: DetectLanguage(relPath),
		}

		select {
		case results <- ScanResult{File: fileInfo}:
		case <-ctx.Done():
			return ctx.Err()
		}

		return nil
	})

	if err != nil && err != context.Canceled {
		select {
		case results <- ScanResult{Error: err}:
		default:
		}
	}
}

// shouldExcludeDir checks if a directory should be excluded.
// Decisions are cached per relative path; the cache is keyed by the
// pattern-independent default set plus the options set.
func (s *Scanner) shouldExcludeDir(relPath string, opts *ScanOptions) bool {
	if len(opts.ExcludePatterns) == 0 {
		if v, ok := s.dirCache.Get(relPath); ok {
			return v
		}
	}

	excluded := false
	base := filepath.Base(relPath)
	for _, name := range defaultExcludeDirs {
		if base == name {
			excluded = true
			break
		}
	}
	if !excluded && strings.HasPrefix(base, ".") {
		// Hidden directories are never indexed.
		excluded = true
	}
	if !excluded {
		for _, pattern := range opts.ExcludePatterns {
			if matchPattern(relPath, pattern) {
				excluded = true
				break
			}
		}
	}

	if len(opts.ExcludePatterns) == 0 {
		s.dirCache.Add(relPath, excluded)
	}
	return excluded
}

// shouldExcludeFile checks if a file should be excluded.
func (s *Scanner) shouldExcludeFile(relPath string, opts *ScanOptions) bool {
	baseName := filepath.Base(relPath)

	for _, pattern := range sensitiveFilePatterns {
		if matchPattern(baseName, pattern) {
			return true
		}
	}

	for _, pattern := range defaultExcludeFiles {
		if matchPattern(baseName, pattern) {
			return true
		}
	}

	if strings.HasPrefix(baseName, ".") {
		return true
	}

	for _, pattern := range opts.ExcludePatterns {
		if matchPattern(relPath, pattern) || matchPattern(baseName, pattern) {
			return true
		}
	}

	return false
}

// matchPattern checks a path against a glob-ish pattern.
// Supports "*suffix", "prefix*", "*mid*", and exact matches.
func matchPattern(name, pattern string) bool {
	switch {
	case strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*") && len(pattern) > 1:
		middle := strings.TrimSuffix(strings.TrimPrefix(pattern, "*"), "*")
		return strings.Contains(strings.ToLower(name), strings.ToLower(middle))
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(name, strings.TrimPrefix(pattern, "*"))
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(name, strings.TrimSuffix(pattern, "*"))
	default:
		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			return true
		}
		return name == pattern || strings.HasPrefix(name, pattern+"/")
	}
}

// matchesAnyPattern checks a path against any of the given patterns.
func matchesAnyPattern(relPath string, patterns []string) bool {
	baseName := filepath.Base(relPath)
	for _, pattern := range patterns {
		if matchPattern(relPath, pattern) || matchPattern(baseName, pattern) {
			return true
		}
	}
	return false
}

// isBinaryFile checks if a file is binary by probing for null bytes
// in the first 512 bytes.
func isBinaryFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil || n == 0 {
		return false
	}

	return bytes.Contains(buf[:n], []byte{0})
}

// DetectLanguage maps a file extension to a language identifier.
// Unknown extensions return "".
func DetectLanguage(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return "go"
	case ".py":
		return "python"
	case ".js", ".mjs", ".cjs", ".jsx":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	case ".md", ".markdown":
		return "markdown"
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	case ".sh", ".bash":
		return "shell"
	case ".rs":
		return "rust"
	case ".java":
		return "java"
	case ".rb":
		return "ruby"
	case ".c", ".h":
		return "c"
	case ".cpp", ".cc", ".hpp":
		return "cpp"
	default:
		return ""
	}
}

// Default directories to exclude.
var defaultExcludeDirs = []string{
	"node_modules",
	"vendor",
	"__pycache__",
	"dist",
	"build",
	"target",
	"venv",
}

// Default files to exclude.
var defaultExcludeFiles = []string{
	"*.min.js",
	"*.min.css",
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"go.sum",
}

// Sensitive file patterns that are never indexed.
var sensitiveFilePatterns = []string{
	".env",
	".env.*",
	"*.pem",
	"*.key",
	"*credentials*",
	"*secrets*",
	"id_rsa",
	"id_ed25519",
}
