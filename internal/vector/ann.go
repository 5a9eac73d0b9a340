package vector

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/coder/hnsw"
)

// MetricCosine is the only distance metric the cache is built with.
const MetricCosine = "cos"

// CacheMeta describes the persisted ANN artifact. The artifact is
// valid iff Backend and Fingerprint match the live index; any
// mismatch means a full rebuild, never an incremental patch.
type CacheMeta struct {
	Backend     string   `json:"backend"`
	Dim         int      `json:"dim"`
	Metric      string   `json:"metric"`
	Fingerprint string   `json:"fingerprint"`
	IDMap       []string `json:"id_map"` // Ordered chunk ids, position = graph key
}

func metaPath(annPath string) string {
	return annPath + ".meta.json"
}

// BuildCache constructs an HNSW graph over the index's vectors and
// persists it at annPath with its CacheMeta sidecar. The id map is
// sorted so the artifact is reproducible for a given index state.
func BuildCache(idx *Index, annPath string) error {
	if err := os.MkdirAll(filepath.Dir(annPath), 0755); err != nil {
		return fmt.Errorf("create ann directory: %w", err)
	}

	ids := make([]string, 0, idx.Len())
	for id := range idx.Vectors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	for key, id := range ids {
		graph.Add(hnsw.MakeNode(uint64(key), idx.Vectors[id]))
	}

	tmpPath := annPath + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create ann artifact: %w", err)
	}
	if err := graph.Export(file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("export ann graph: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close ann artifact: %w", err)
	}
	if err := os.Rename(tmpPath, annPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename ann artifact: %w", err)
	}

	meta := CacheMeta{
		Backend:     idx.Backend,
		Dim:         idx.Dim,
		Metric:      MetricCosine,
		Fingerprint: idx.Fingerprint(),
		IDMap:       ids,
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal ann meta: %w", err)
	}
	if err := os.WriteFile(metaPath(annPath), data, 0644); err != nil {
		return fmt.Errorf("write ann meta: %w", err)
	}

	slog.Debug("ann_cache_built",
		slog.Int("vectors", len(ids)),
		slog.String("fingerprint", meta.Fingerprint[:12]))
	return nil
}

// CacheValid reports whether the persisted artifact matches the live
// index (backend and fingerprint). Used to skip redundant rebuilds.
func CacheValid(idx *Index, annPath string) bool {
	metaData, err := os.ReadFile(metaPath(annPath))
	if err != nil {
		return false
	}
	var meta CacheMeta
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return false
	}
	return meta.Backend == idx.Backend && meta.Fingerprint == idx.Fingerprint()
}

// TryRetrieve answers a query from the persisted ANN artifact. It
// returns (nil, false) whenever the artifact is missing, unreadable,
// or its meta does not match the live index; the caller must then
// fall back to the brute-force scan. Stale results are never served.
func TryRetrieve(idx *Index, annPath string, query []float32, topk int) ([]Result, bool) {
	metaData, err := os.ReadFile(metaPath(annPath))
	if err != nil {
		return nil, false
	}
	var meta CacheMeta
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, false
	}

	if meta.Backend != idx.Backend || meta.Fingerprint != idx.Fingerprint() {
		slog.Debug("ann_cache_stale",
			slog.String("cached_backend", meta.Backend),
			slog.String("live_backend", idx.Backend))
		return nil, false
	}

	file, err := os.Open(annPath)
	if err != nil {
		return nil, false
	}
	defer func() { _ = file.Close() }()

	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	// Import needs an io.ByteReader.
	if err := graph.Import(bufio.NewReader(file)); err != nil {
		slog.Warn("ann_artifact_unreadable",
			slog.String("path", annPath),
			slog.String("error", err.Error()))
		return nil, false
	}
	if graph.Len() == 0 {
		return []Result{}, true
	}

	nodes := graph.Search(query, topk)
	results := make([]Result, 0, len(nodes))
	for _, node := range nodes {
		if node.Key >= uint64(len(meta.IDMap)) {
			continue
		}
		distance := hnsw.CosineDistance(query, node.Value)
		results = append(results, Result{
			ChunkID: meta.IDMap[node.Key],
			Score:   1 - float64(distance),
		})
	}
	return results, true
}
