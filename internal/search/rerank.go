package search

import (
	"sort"
	"strings"
)

// Rerank bonuses. Exact symbol-name matches dominate, prefix matches
// follow, bare substring matches trail; path-token hits add a nudge.
const (
	bonusExactSymbol     = 2.0
	bonusPrefixSymbol    = 1.0
	bonusSubstringSymbol = 0.5
	bonusPathToken       = 0.15
)

// rerank adds heuristic bonuses and sorts descending by final score.
// The sort is stable: ties keep the pre-rerank ordering, so repeated
// queries return identical lists.
func rerank(hits []*Hit, query string, tokens []string) {
	queryLower := strings.ToLower(strings.TrimSpace(query))

	for _, hit := range hits {
		hit.Score += symbolBonus(hit.Symbol, queryLower)
		hit.Score += pathBonus(hit.Path, tokens)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
}

func symbolBonus(symbol, queryLower string) float64 {
	if symbol == "" || queryLower == "" {
		return 0
	}
	symbolLower := strings.ToLower(symbol)
	switch {
	case symbolLower == queryLower:
		return bonusExactSymbol
	case strings.HasPrefix(symbolLower, queryLower):
		return bonusPrefixSymbol
	case strings.Contains(symbolLower, queryLower):
		return bonusSubstringSymbol
	}
	return 0
}

func pathBonus(path string, tokens []string) float64 {
	pathLower := strings.ToLower(path)
	var bonus float64
	for _, token := range tokens {
		if strings.Contains(pathLower, token) {
			bonus += bonusPathToken
		}
	}
	return bonus
}
