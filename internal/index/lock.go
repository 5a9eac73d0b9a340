package index

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	scouterrors "scout/internal/errors"
)

// acquireBuildLock serializes builds per repository. A second build
// against the same data directory fails fast instead of corrupting
// half-written artifacts.
func acquireBuildLock(dataDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(lockPath(dataDir)), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	lock := flock.New(lockPath(dataDir))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire build lock: %w", err)
	}
	if !locked {
		return nil, scouterrors.New(scouterrors.ErrCodeBuildLocked,
			"another build is running against this repository", nil)
	}
	return lock, nil
}
