package chunk

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"scout/internal/store"
)

// langSpec maps tree-sitter node types to symbol kinds per language.
type langSpec struct {
	language *sitter.Language
	kinds    map[string]store.SymbolKind
}

var langSpecs = map[string]langSpec{
	"go": {
		language: golang.GetLanguage(),
		kinds: map[string]store.SymbolKind{
			"function_declaration": store.SymbolKindFunction,
			"method_declaration":   store.SymbolKindMethod,
			"type_declaration":     store.SymbolKindType,
		},
	},
	"python": {
		language: python.GetLanguage(),
		kinds: map[string]store.SymbolKind{
			"function_definition": store.SymbolKindFunction,
			"class_definition":    store.SymbolKindClass,
		},
	},
	"javascript": {
		language: javascript.GetLanguage(),
		kinds: map[string]store.SymbolKind{
			"function_declaration": store.SymbolKindFunction,
			"method_definition":    store.SymbolKindMethod,
			"class_declaration":    store.SymbolKindClass,
		},
	},
	"typescript": {
		language: typescript.GetLanguage(),
		kinds: map[string]store.SymbolKind{
			"function_declaration":   store.SymbolKindFunction,
			"method_definition":      store.SymbolKindMethod,
			"class_declaration":      store.SymbolKindClass,
			"interface_declaration":  store.SymbolKindType,
			"type_alias_declaration": store.SymbolKindType,
		},
	},
}

// SymbolExtractor parses source files and extracts named declarations.
// Not safe for concurrent use: callers hold one extractor per worker.
type SymbolExtractor struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

// NewSymbolExtractor creates an extractor with a fresh parser.
func NewSymbolExtractor() *SymbolExtractor {
	return &SymbolExtractor{parser: sitter.NewParser()}
}

// Close releases parser resources.
func (e *SymbolExtractor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.parser != nil {
		e.parser.Close()
		e.parser = nil
	}
}

// SupportedLanguage reports whether symbols can be extracted for the
// scanner-detected language.
func SupportedLanguage(language string) bool {
	_, ok := langSpecs[language]
	return ok
}

// Extract parses content and returns its symbols. Unsupported
// languages return (nil, nil): extraction is best-effort and the
// remaining retrieval sources still cover the file.
func (e *SymbolExtractor) Extract(ctx context.Context, path, content, language string) ([]*store.SymbolRecord, error) {
	spec, ok := langSpecs[language]
	if !ok {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.parser == nil {
		return nil, fmt.Errorf("symbol extractor is closed")
	}

	source := []byte(content)
	e.parser.SetLanguage(spec.language)
	tree, err := e.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("parse %s: nil tree", path)
	}
	defer tree.Close()

	var symbols []*store.SymbolRecord
	collectSymbols(tree.RootNode(), source, path, language, spec, false, &symbols)
	return symbols, nil
}

// collectSymbols walks the AST collecting declarations. insideClass
// reclassifies Python functions nested in a class as methods.
func collectSymbols(node *sitter.Node, source []byte, path, language string, spec langSpec, insideClass bool, out *[]*store.SymbolRecord) {
	if node == nil {
		return
	}

	nodeType := node.Type()
	if kind, ok := spec.kinds[nodeType]; ok {
		if name := symbolName(node, source); name != "" {
			if language == "python" && kind == store.SymbolKindFunction && insideClass {
				kind = store.SymbolKindMethod
			}
			startLine := int(node.StartPoint().Row) + 1
			*out = append(*out, &store.SymbolRecord{
				ID:        store.SymbolID(path, name, startLine),
				Path:      path,
				Name:      name,
				Kind:      kind,
				StartLine: startLine,
				EndLine:   int(node.EndPoint().Row) + 1,
			})
		}
	}

	inClass := insideClass || nodeType == "class_definition" || nodeType == "class_declaration"
	for i := 0; i < int(node.ChildCount()); i++ {
		collectSymbols(node.Child(i), source, path, language, spec, inClass, out)
	}
}

// symbolName reads the declaration's name field. Go type_declaration
// wraps the name one level down in a type_spec.
func symbolName(node *sitter.Node, source []byte) string {
	if name := node.ChildByFieldName("name"); name != nil {
		return name.Content(source)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.Type() == "type_spec" {
			if name := child.ChildByFieldName("name"); name != nil {
				return name.Content(source)
			}
		}
	}
	return ""
}
