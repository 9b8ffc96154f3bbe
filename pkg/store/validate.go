package store

import (
	"path/filepath"
	"strings"
)

// ValidatePath rejects resolved paths that would escape the store root. The
// analysis is lexical only: the target may not exist yet, so symlinks are
// never resolved and the filesystem is never touched. The returned
// TraversalError carries the original user-supplied key.
func ValidatePath(key, resolved string) error {
	if filepath.IsAbs(resolved) {
		return &TraversalError{Key: key}
	}

	cleaned := filepath.Clean(resolved)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return &TraversalError{Key: key}
	}

	return nil
}
