package store

import (
	"fmt"

	"github.com/pkg/errors"
)

// NotFoundError reports a missing context file, or a path that exists but is
// not a regular file. Path is the path the operation computed: relative to
// the store root for read failures, absolute for clean.
type NotFoundError struct {
	Path   string
	Reason string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Path)
}

// TraversalError reports a key whose resolved path would escape the store
// root. It retains the original user-supplied key for diagnostics.
type TraversalError struct {
	Key string
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("path traversal detected in key %q", e.Key)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsTraversal reports whether err is a TraversalError.
func IsTraversal(err error) bool {
	var te *TraversalError
	return errors.As(err, &te)
}
