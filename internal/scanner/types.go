package scanner

import "time"

// DefaultMaxFileSize is the default per-file size ceiling (1MB).
// Larger files are skipped; they are almost never hand-written source.
const DefaultMaxFileSize int64 = 1 * 1024 * 1024

// FileInfo describes a candidate file discovered during a scan.
type FileInfo struct {
	// Path is relative to the scan root.
	Path string
	// AbsPath is the absolute path on disk.
	AbsPath string
	// Size is the file size in bytes.
	Size int64
	// ModTime is the last modification time.
	ModTime time.Time
	// Language is the detected language ("" when unknown).
	Language string
}

// ScanResult is a single item from the scan stream: a file or an error.
type ScanResult struct {
	File  *FileInfo
	Error error
}

// ScanOptions configures a scan.
type ScanOptions struct {
	// RootDir is the directory to scan. Defaults to ".".
	RootDir string
	// MaxFileSize is the per-file size ceiling. Defaults to DefaultMaxFileSize.
	MaxFileSize int64
	// ExcludePatterns are additional exclusion globs from configuration.
	ExcludePatterns []string
	// IncludePatterns restricts the scan to matching files when non-empty.
	IncludePatterns []string
}

// ScanStats summarizes a completed scan.
type ScanStats struct {
	Discovered int
	Skipped    int
}
