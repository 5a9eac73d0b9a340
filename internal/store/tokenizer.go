package store

import (
	"strings"
	"unicode"
)

// codeStopWords are identifiers too common in source to carry signal.
var codeStopWords = map[string]struct{}{
	"var": {}, "let": {}, "const": {}, "func": {}, "function": {},
	"def": {}, "class": {}, "return": {}, "if": {}, "else": {},
	"for": {}, "while": {}, "import": {}, "err": {}, "ctx": {},
	"self": {}, "this": {}, "nil": {}, "null": {}, "true": {}, "false": {},
}

// TokenizeCode splits text into lowercase search tokens with code-aware
// rules: identifiers are split on camelCase and snake_case boundaries,
// tokens shorter than two characters and stop words are dropped.
func TokenizeCode(text string) []string {
	var tokens []string
	for _, word := range splitIdentifiers(text) {
		for _, part := range splitCodeWord(word) {
			lower := strings.ToLower(part)
			if len(lower) < 2 {
				continue
			}
			if _, stop := codeStopWords[lower]; stop {
				continue
			}
			tokens = append(tokens, lower)
		}
	}
	return tokens
}

// splitIdentifiers extracts alphanumeric/underscore runs from text.
func splitIdentifiers(text string) []string {
	var words []string
	start := -1
	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			words = append(words, text[start:i])
			start = -1
		}
	}
	if start >= 0 {
		words = append(words, text[start:])
	}
	return words
}

// splitCodeWord splits snake_case, then camelCase and PascalCase.
// "parseHTTPRequest" -> ["parse", "HTTP", "Request"];
// "chunk_id" -> ["chunk", "id"].
func splitCodeWord(word string) []string {
	var out []string
	for _, part := range strings.Split(word, "_") {
		if part == "" {
			continue
		}
		out = append(out, splitCamel(part)...)
	}
	return out
}

// splitCamel splits on lower->Upper transitions and acronym boundaries.
func splitCamel(s string) []string {
	runes := []rune(s)
	if len(runes) == 0 {
		return nil
	}

	var parts []string
	start := 0
	for i := 1; i < len(runes); i++ {
		if !unicode.IsUpper(runes[i]) {
			continue
		}
		prevLower := unicode.IsLower(runes[i-1])
		nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
		if prevLower || nextLower {
			parts = append(parts, string(runes[start:i]))
			start = i
		}
	}
	parts = append(parts, string(runes[start:]))
	return parts
}
