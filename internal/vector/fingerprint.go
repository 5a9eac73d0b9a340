package vector

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Fingerprint computes a stable hash over the index's (chunk_id,
// content_hash) pairs. The pairs are sorted before hashing, so the
// result is independent of map iteration order: the same logical
// index always fingerprints identically.
func Fingerprint(hashes map[string]string) string {
	ids := make([]string, 0, len(hashes))
	for id := range hashes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	h := sha256.New()
	for _, id := range ids {
		fmt.Fprintf(h, "%s\x00%s\x00", id, hashes[id])
	}
	return hex.EncodeToString(h.Sum(nil))
}
