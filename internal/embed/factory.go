package embed

import (
	"fmt"

	"scout/internal/config"
)

// NewEmbedder selects the embedding provider from configuration.
// Provider "none" returns (nil, nil): the caller skips dense indexing
// and the engine serves lexical and symbol results only.
func NewEmbedder(cfg *config.Config) (Embedder, error) {
	switch cfg.Embeddings.Provider {
	case config.EmbedProviderStatic:
		return NewStaticEmbedder(), nil
	case config.EmbedProviderOllama:
		return NewOllamaEmbedder(OllamaConfig{
			Host:  cfg.Embeddings.OllamaHost,
			Model: cfg.Embeddings.Model,
		}), nil
	case config.EmbedProviderNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", cfg.Embeddings.Provider)
	}
}
