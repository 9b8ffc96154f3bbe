// Package clipboard provides system clipboard access for the paste and copy
// flows. Failures are wrapped in a dedicated error type so callers can
// present clipboard problems distinctly from store errors.
package clipboard

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
)

const (
	retryAttempts = 3
	retryDelay    = 50 * time.Millisecond
)

// Error wraps a clipboard failure with the operation that caused it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("clipboard %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsClipboardError reports whether err originated from the clipboard.
func IsClipboardError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

// Clipboard is the collaborator interface consumed by the store and the
// snippet copier.
type Clipboard interface {
	// Paste returns the current clipboard content.
	Paste() (string, error)
	// Copy replaces the clipboard content with text.
	Copy(text string) error
}

// Function seams for tests.
var (
	readAll  = clipboard.ReadAll
	writeAll = clipboard.WriteAll
)

type systemClipboard struct{}

// System returns the real clipboard implementation. Both operations retry a
// few times with a short delay: clipboard managers on Linux can hold the
// selection for a moment after another process writes it.
func System() Clipboard {
	return &systemClipboard{}
}

func (c *systemClipboard) Paste() (string, error) {
	var content string
	err := retry.Do(
		func() error {
			var err error
			content, err = readAll()
			return err
		},
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", &Error{Op: "paste", Err: err}
	}
	return content, nil
}

func (c *systemClipboard) Copy(text string) error {
	err := retry.Do(
		func() error {
			return writeAll(text)
		},
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return &Error{Op: "copy", Err: err}
	}
	return nil
}
