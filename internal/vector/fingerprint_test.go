package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_OrderIndependent(t *testing.T) {
	// Maps iterate in random order; the fingerprint must not care.
	a := map[string]string{"x#0": "h1", "y#0": "h2", "z#0": "h3"}
	b := map[string]string{"z#0": "h3", "x#0": "h1", "y#0": "h2"}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_SensitiveToContent(t *testing.T) {
	base := map[string]string{"x#0": "h1", "y#0": "h2"}
	changedHash := map[string]string{"x#0": "h1", "y#0": "DIFFERENT"}
	extraChunk := map[string]string{"x#0": "h1", "y#0": "h2", "z#0": "h3"}

	assert.NotEqual(t, Fingerprint(base), Fingerprint(changedHash))
	assert.NotEqual(t, Fingerprint(base), Fingerprint(extraChunk))
}

func TestFingerprint_PairBoundariesUnambiguous(t *testing.T) {
	// "ab"+"c" must not collide with "a"+"bc".
	a := map[string]string{"ab": "c"}
	b := map[string]string{"a": "bc"}

	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_Empty(t *testing.T) {
	assert.Equal(t, Fingerprint(nil), Fingerprint(map[string]string{}))
}
