// Package index coordinates the build pipeline: scanning, hashing,
// lexical and symbol indexing, chunking, dense vectors, the ANN
// cache, and the import graph, all under one build lock.
package index

import "path/filepath"

// Artifact locations under the repository's data directory.
func trackerPath(dataDir string) string { return filepath.Join(dataDir, "index.db") }
func lexicalPath(dataDir string) string { return filepath.Join(dataDir, "lexical") }
func graphPath(dataDir string) string   { return filepath.Join(dataDir, "graph", "graph.db") }
func vectorsPath(dataDir string) string { return filepath.Join(dataDir, "kb", "vectors.json") }
func annPath(dataDir string) string     { return filepath.Join(dataDir, "kb", "ann.hnsw") }
func lockPath(dataDir string) string    { return filepath.Join(dataDir, "build.lock") }
