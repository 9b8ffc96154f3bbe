// Package store implements the project-local context store: symbolic key
// resolution, traversal-safe path validation, and the storage operations
// built on them. Context files are markdown documents under a hidden .mx
// directory at the project root, addressed by short keys like tk or rq
// instead of raw paths.
package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/pkg/errors"

	"github.com/jingkaihe/mx/pkg/clipboard"
	"github.com/jingkaihe/mx/pkg/logger"
)

// DirName is the hidden directory holding all context documents, located
// directly under the project root.
const DirName = ".mx"

// Store performs context-store operations. It holds configuration only; the
// store root is discovered fresh on every call.
type Store struct {
	resolver *Resolver
	clip     clipboard.Clipboard
}

// Option configures a Store.
type Option func(*Store) error

// WithAliases merges extra alias entries over the built-in table. Targets
// must be relative .md paths.
func WithAliases(aliases map[string]string) Option {
	return func(s *Store) error {
		for key, target := range aliases {
			if filepath.IsAbs(target) || !strings.HasSuffix(target, ".md") {
				return errors.Errorf("invalid alias %q: target %q must be a relative .md path", key, target)
			}
		}
		s.resolver = NewResolver(aliases)
		return nil
	}
}

// WithClipboard injects the clipboard collaborator used by paste.
func WithClipboard(clip clipboard.Clipboard) Option {
	return func(s *Store) error {
		if clip == nil {
			return errors.New("clipboard must not be nil")
		}
		s.clip = clip
		return nil
	}
}

// New creates a Store. Without options it uses the built-in alias table and
// the system clipboard.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		resolver: NewResolver(nil),
		clip:     clipboard.System(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, errors.Wrap(err, "failed to apply store option")
		}
	}

	return s, nil
}

// Resolver exposes the alias table, shared with collaborators like the
// snippet lister.
func (s *Store) Resolver() *Resolver {
	return s.resolver
}

// Clipboard exposes the clipboard collaborator, shared with snippet copy.
func (s *Store) Clipboard() clipboard.Clipboard {
	return s.clip
}

// location is the result of the shared front half of every operation:
// locate the project root, resolve the key, validate the result.
type location struct {
	storeDir string // absolute path of the .mx directory
	rel      string // resolved path relative to storeDir
	abs      string // absolute path of the target file
}

func (s *Store) locate(key string) (location, error) {
	root, err := FindProjectRoot()
	if err != nil {
		return location{}, err
	}

	rel := s.resolver.Resolve(key)
	if err := ValidatePath(key, rel); err != nil {
		return location{}, err
	}

	storeDir := filepath.Join(root, DirName)
	return location{
		storeDir: storeDir,
		rel:      rel,
		abs:      filepath.Join(storeDir, rel),
	}, nil
}

// Cat returns the full contents of the context file for key, including the
// empty string for empty files. Missing targets and non-regular files are
// NotFoundError; binary or non-UTF-8 content is a hard read error, never
// silently replaced.
func (s *Store) Cat(ctx context.Context, key string) (string, error) {
	loc, err := s.locate(key)
	if err != nil {
		return "", err
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"key":  key,
		"path": loc.rel,
	}).Debug("Reading context file")

	info, err := os.Stat(loc.abs)
	if os.IsNotExist(err) {
		return "", &NotFoundError{Path: loc.rel, Reason: "context file not found"}
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to stat %s", loc.rel)
	}
	if !info.Mode().IsRegular() {
		return "", &NotFoundError{Path: loc.rel, Reason: "path is not a file"}
	}

	content, err := os.ReadFile(loc.abs)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", loc.rel)
	}
	if err := checkText(content); err != nil {
		return "", errors.Wrapf(err, "failed to read %s", loc.rel)
	}

	return string(content), nil
}

// TouchOptions controls touch behavior.
type TouchOptions struct {
	// Paste writes the clipboard contents into the file after it is created
	// or overwritten.
	Paste bool
	// HTML converts pasted clipboard content from HTML to Markdown.
	HTML bool
	// Force truncates an existing file instead of leaving it untouched.
	Force bool
}

// TouchOutcome reports which touch transition happened so callers can decide
// whether to inject content.
type TouchOutcome struct {
	Key         string `json:"key"`
	Path        string `json:"path"`
	Existed     bool   `json:"existed"`
	Overwritten bool   `json:"overwritten"`
	Pasted      bool   `json:"pasted,omitempty"`
}

// Touch ensures the context file for key exists, creating missing parent
// directories. An existing file is left untouched unless opts.Force
// truncates it; the no-op branch is a reported outcome, not an error.
func (s *Store) Touch(ctx context.Context, key string, opts TouchOptions) (*TouchOutcome, error) {
	loc, err := s.locate(key)
	if err != nil {
		return nil, err
	}

	outcome, err := ensureFile(key, loc)
	if err != nil {
		return nil, err
	}
	if outcome.Existed && !opts.Force {
		return outcome, nil
	}
	if outcome.Existed {
		if err := os.WriteFile(loc.abs, nil, 0o644); err != nil {
			return nil, errors.Wrapf(err, "failed to overwrite %s", loc.rel)
		}
		outcome.Overwritten = true
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"key":         key,
		"path":        loc.rel,
		"existed":     outcome.Existed,
		"overwritten": outcome.Overwritten,
	}).Debug("Touched context file")

	if opts.Paste {
		content, err := s.pasteContent(ctx, opts.HTML)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(loc.abs, []byte(content), 0o644); err != nil {
			return nil, errors.Wrapf(err, "failed to write pasted content to %s", loc.rel)
		}
		outcome.Pasted = true
	}

	return outcome, nil
}

// Write creates or overwrites the context file for key with content, for
// programmatic callers. The no-force branch mirrors Touch: an existing file
// is reported, not clobbered.
func (s *Store) Write(ctx context.Context, key, content string, force bool) (*TouchOutcome, error) {
	loc, err := s.locate(key)
	if err != nil {
		return nil, err
	}

	outcome, err := ensureFile(key, loc)
	if err != nil {
		return nil, err
	}
	if outcome.Existed && !force {
		return outcome, nil
	}
	outcome.Overwritten = outcome.Existed

	if err := os.WriteFile(loc.abs, []byte(content), 0o644); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", loc.rel)
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"key":   key,
		"path":  loc.rel,
		"bytes": len(content),
	}).Debug("Wrote context file")

	return outcome, nil
}

// ensureFile creates the file at loc when absent, reporting which state the
// touch state machine started from. Overwriting is left to the caller.
func ensureFile(key string, loc location) (*TouchOutcome, error) {
	outcome := &TouchOutcome{Key: key, Path: loc.abs}

	_, err := os.Stat(loc.abs)
	switch {
	case err == nil:
		outcome.Existed = true
	case os.IsNotExist(err):
		if err := os.MkdirAll(filepath.Dir(loc.abs), 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create parent directories for %s", loc.rel)
		}
		if err := os.WriteFile(loc.abs, nil, 0o644); err != nil {
			return nil, errors.Wrapf(err, "failed to create %s", loc.rel)
		}
	default:
		return nil, errors.Wrapf(err, "failed to stat %s", loc.rel)
	}

	return outcome, nil
}

// pasteContent reads the clipboard, optionally converting HTML to Markdown.
// Conversion failures fall back to the raw clipboard text.
func (s *Store) pasteContent(ctx context.Context, html bool) (string, error) {
	content, err := s.clip.Paste()
	if err != nil {
		return "", err
	}

	if html {
		converter := md.NewConverter("", true, nil)
		markdown, err := converter.ConvertString(content)
		if err != nil {
			logger.G(ctx).WithError(err).Warn("Failed to convert HTML to markdown, using raw clipboard content")
			return content, nil
		}
		return markdown, nil
	}

	return content, nil
}

// CleanOutcome reports what clean removed.
type CleanOutcome struct {
	Message string `json:"message"`
}

// Clean removes the context file for key, then prunes any directories the
// removal left empty, walking upward but never past the store root. With an
// empty key the whole store directory is removed; a missing store directory
// is reported, not an error.
func (s *Store) Clean(ctx context.Context, key string) (*CleanOutcome, error) {
	if key == "" {
		return s.cleanAll(ctx)
	}

	loc, err := s.locate(key)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(loc.abs); os.IsNotExist(err) {
		return nil, &NotFoundError{Path: loc.abs, Reason: "file not found"}
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", loc.rel)
	}

	if err := os.Remove(loc.abs); err != nil {
		return nil, errors.Wrapf(err, "failed to remove %s", loc.rel)
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"key":  key,
		"path": loc.rel,
	}).Debug("Removed context file")

	pruneEmptyAncestors(filepath.Dir(loc.abs), loc.storeDir)

	return &CleanOutcome{Message: fmt.Sprintf("Removed %s", loc.abs)}, nil
}

func (s *Store) cleanAll(ctx context.Context) (*CleanOutcome, error) {
	root, err := FindProjectRoot()
	if err != nil {
		return nil, err
	}
	storeDir := filepath.Join(root, DirName)

	if _, err := os.Stat(storeDir); os.IsNotExist(err) {
		return &CleanOutcome{Message: fmt.Sprintf("%s directory not found", DirName)}, nil
	}
	if err := os.RemoveAll(storeDir); err != nil {
		return nil, errors.Wrapf(err, "failed to remove %s directory", DirName)
	}

	logger.G(ctx).WithField("path", storeDir).Debug("Removed store directory")

	return &CleanOutcome{Message: fmt.Sprintf("Removed %s directory", DirName)}, nil
}

// pruneEmptyAncestors removes now-empty directories from dir upward using
// only path-derived parent pointers. It stops at the store root, which is
// never removed, or at the first directory os.Remove refuses because it is
// not empty. That refusal is the expected terminal condition, not a fault,
// and is deliberately swallowed: surfacing it would make deletion of leaf
// files impossible whenever they share a directory with siblings.
func pruneEmptyAncestors(dir, storeDir string) {
	for isInside(storeDir, dir) {
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// isInside reports whether path is strictly inside root, by lexical
// comparison.
func isInside(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// checkText rejects binary or non-UTF-8 content. A NUL byte is the binary
// heuristic; everything else must decode as UTF-8.
func checkText(content []byte) error {
	if bytes.IndexByte(content, 0) >= 0 {
		return errors.New("binary content")
	}
	if !utf8.Valid(content) {
		return errors.New("invalid UTF-8 content")
	}
	return nil
}
