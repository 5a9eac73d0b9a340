package store

import (
	"fmt"

	"scout/internal/config"
)

// NewLexicalIndex selects the lexical backend from configuration.
// The bleve backend persists under indexPath; the scan backend reads
// straight from the tracker's document table.
func NewLexicalIndex(cfg *config.Config, indexPath string, tracker *TrackerStore) (LexicalIndex, error) {
	switch cfg.Lexical.Backend {
	case config.LexicalBackendBleve:
		return NewBleveIndex(indexPath)
	case config.LexicalBackendScan:
		return NewScanIndex(tracker), nil
	default:
		return nil, fmt.Errorf("unknown lexical backend: %q", cfg.Lexical.Backend)
	}
}
