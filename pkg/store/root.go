package store

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// rootMarkers identify a project root, probed in order. The .git entry may
// be a file rather than a directory (worktrees), so presence is enough.
var rootMarkers = []string{DirName, ".git"}

// FindProjectRoot walks upward from the current working directory and
// returns the first ancestor carrying a root marker. When no ancestor
// carries one it falls back to the working directory itself, which lets
// touch create a fresh store there. The walk never resolves symlinks, and
// discovery happens per call: the working directory may change between
// invocations in tests and long-lived embeddings.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to determine working directory")
	}

	dir := cwd
	for {
		for _, marker := range rootMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}
