// Package config loads and validates scout configuration.
// Precedence: defaults, then project file (.scout.yaml), then env vars.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ProjectFileName is the per-repository config file.
const ProjectFileName = ".scout.yaml"

// DataDirName is the per-repository index data directory.
const DataDirName = ".scout"

// Backend identifiers. Backends are selected by explicit configuration
// value, never by probing types at call time. An unavailable backend is
// represented as an explicit value ("none"), not a caught error.
const (
	LexicalBackendBleve = "bleve"
	LexicalBackendScan  = "scan"

	EmbedProviderStatic = "static"
	EmbedProviderOllama = "ollama"
	EmbedProviderNone   = "none"

	ANNBackendHNSW = "hnsw"
	ANNBackendNone = "none"
)

// Config is the complete scout configuration.
type Config struct {
	Version    int              `yaml:"version"`
	Paths      PathsConfig      `yaml:"paths"`
	Lexical    LexicalConfig    `yaml:"lexical"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	ANN        ANNConfig        `yaml:"ann"`
	Search     SearchConfig     `yaml:"search"`
	Graph      GraphConfig      `yaml:"graph"`
	Index      IndexConfig      `yaml:"index"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// PathsConfig configures which paths to include and exclude.
type PathsConfig struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// LexicalConfig configures the full-text index.
type LexicalConfig struct {
	// Backend selects the lexical backend: "bleve" (embedded full-text
	// engine) or "scan" (deterministic substring scan fallback).
	Backend string `yaml:"backend"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider selects the embedding adapter: "static" (deterministic
	// offline hashing), "ollama" (local model server), or "none".
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	BatchSize  int    `yaml:"batch_size"`
	OllamaHost string `yaml:"ollama_host"`
}

// ANNConfig configures the approximate-nearest-neighbor cache.
type ANNConfig struct {
	// Backend selects the ANN accelerator: "hnsw" or "none".
	// "none" always uses the brute-force cosine scan.
	Backend string `yaml:"backend"`
}

// SearchConfig configures hybrid retrieval.
type SearchConfig struct {
	// Limit is the default number of fused results returned.
	Limit int `yaml:"limit"`
	// ContextLines is the snippet half-width in lines around the first
	// matching line when grounding a file-level hit.
	ContextLines int `yaml:"context_lines"`
}

// GraphConfig configures the import graph.
type GraphConfig struct {
	// ImpactDepth is the reverse-reachability traversal depth.
	ImpactDepth int `yaml:"impact_depth"`
	// MaxTests is the default cap for test selection.
	MaxTests int `yaml:"max_tests"`
}

// IndexConfig configures the build pipeline.
type IndexConfig struct {
	// MaxFileSize is the per-file size ceiling in bytes.
	MaxFileSize int64 `yaml:"max_file_size"`
	// ChunkWindow is the chunk content window in characters.
	ChunkWindow int `yaml:"chunk_window"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			Include: []string{},
			Exclude: []string{},
		},
		Lexical: LexicalConfig{
			Backend: LexicalBackendBleve,
		},
		Embeddings: EmbeddingsConfig{
			Provider:   EmbedProviderStatic,
			BatchSize:  32,
			OllamaHost: "http://localhost:11434",
		},
		ANN: ANNConfig{
			Backend: ANNBackendHNSW,
		},
		Search: SearchConfig{
			Limit:        10,
			ContextLines: 9,
		},
		Graph: GraphConfig{
			ImpactDepth: 6,
			MaxTests:    20,
		},
		Index: IndexConfig{
			MaxFileSize: 1 * 1024 * 1024,
			ChunkWindow: 900,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration for a repository root.
// Missing project file is not an error; defaults apply.
func Load(repoRoot string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(repoRoot, ProjectFileName)
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", ProjectFileName, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", ProjectFileName, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies SCOUT_* environment variables.
// Env vars win over the project file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SCOUT_LEXICAL_BACKEND"); v != "" {
		cfg.Lexical.Backend = v
	}
	if v := os.Getenv("SCOUT_EMBED_PROVIDER"); v != "" {
		cfg.Embeddings.Provider = v
	}
	if v := os.Getenv("SCOUT_OLLAMA_HOST"); v != "" {
		cfg.Embeddings.OllamaHost = v
	}
	if v := os.Getenv("SCOUT_ANN_BACKEND"); v != "" {
		cfg.ANN.Backend = v
	}
	if v := os.Getenv("SCOUT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SCOUT_SEARCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Search.Limit = n
		}
	}
	if v := os.Getenv("SCOUT_IMPACT_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Graph.ImpactDepth = n
		}
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	switch c.Lexical.Backend {
	case LexicalBackendBleve, LexicalBackendScan:
	default:
		return fmt.Errorf("invalid lexical.backend %q (want %q or %q)",
			c.Lexical.Backend, LexicalBackendBleve, LexicalBackendScan)
	}

	switch c.Embeddings.Provider {
	case EmbedProviderStatic, EmbedProviderOllama, EmbedProviderNone:
	default:
		return fmt.Errorf("invalid embeddings.provider %q", c.Embeddings.Provider)
	}

	switch c.ANN.Backend {
	case ANNBackendHNSW, ANNBackendNone:
	default:
		return fmt.Errorf("invalid ann.backend %q", c.ANN.Backend)
	}

	if c.Search.Limit <= 0 {
		return fmt.Errorf("search.limit must be positive, got %d", c.Search.Limit)
	}
	if c.Search.ContextLines < 0 {
		return fmt.Errorf("search.context_lines must be non-negative, got %d", c.Search.ContextLines)
	}
	if c.Graph.ImpactDepth <= 0 {
		return fmt.Errorf("graph.impact_depth must be positive, got %d", c.Graph.ImpactDepth)
	}
	if c.Index.ChunkWindow <= 0 {
		return fmt.Errorf("index.chunk_window must be positive, got %d", c.Index.ChunkWindow)
	}
	if c.Index.MaxFileSize <= 0 {
		return fmt.Errorf("index.max_file_size must be positive, got %d", c.Index.MaxFileSize)
	}
	return nil
}

// DataDir returns the index data directory for a repository root.
func DataDir(repoRoot string) string {
	return filepath.Join(repoRoot, DataDirName)
}

// Save writes the configuration to the project file.
func (c *Config) Save(repoRoot string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	path := filepath.Join(repoRoot, ProjectFileName)
	return os.WriteFile(path, data, 0644)
}
