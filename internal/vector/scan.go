package vector

import (
	"sort"

	"scout/internal/embed"
)

// Result is a dense retrieval hit.
type Result struct {
	ChunkID string
	Score   float64 // Cosine similarity, higher is better
}

// Scan is the brute-force correctness baseline: cosine similarity
// against every stored vector, O(N·dim) per query. Both sides are
// normalized, so similarity is a plain dot product. Ties are broken
// by chunk id to keep ordering deterministic.
func Scan(idx *Index, query []float32, topk int) []Result {
	if topk <= 0 || idx.Len() == 0 {
		return nil
	}
	q := embed.Normalize(query)

	results := make([]Result, 0, idx.Len())
	for id, vec := range idx.Vectors {
		if len(vec) != len(q) {
			continue
		}
		var dot float64
		for i := range q {
			dot += float64(q[i]) * float64(vec[i])
		}
		results = append(results, Result{ChunkID: id, Score: dot})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkID < results[j].ChunkID
	})

	if len(results) > topk {
		results = results[:topk]
	}
	return results
}
