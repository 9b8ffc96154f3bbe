// Package snippets lists and looks up the documents inside a context store.
// Listing walks the store for markdown files, maps each back to its shortest
// symbolic key, and extracts optional YAML front matter metadata. Lookup and
// clipboard copy build on the listing.
package snippets

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"

	"github.com/jingkaihe/mx/pkg/logger"
	"github.com/jingkaihe/mx/pkg/store"
)

// Entry describes one stored document.
type Entry struct {
	// Key is the shortest symbolic key that resolves to this document: the
	// alias when one targets it, otherwise the relative path (extension
	// trimmed when that still round-trips through the resolver).
	Key          string `json:"key"`
	RelativePath string `json:"path"`
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
}

// List returns the store's documents sorted by relative path. pattern, when
// non-empty, filters relative paths with doublestar glob syntax
// (pending/**, **/*-1.md). A missing store directory lists zero entries.
func List(ctx context.Context, resolver *store.Resolver, pattern string) ([]Entry, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, errors.Errorf("invalid pattern %q", pattern)
	}

	root, err := store.FindProjectRoot()
	if err != nil {
		return nil, err
	}
	storeDir := filepath.Join(root, store.DirName)

	if _, err := os.Stat(storeDir); os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", storeDir)
	}

	reverse := reverseAliases(resolver)

	var entries []Entry
	err = filepath.WalkDir(storeDir, func(fullPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		rel, err := filepath.Rel(storeDir, fullPath)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if pattern != "" {
			matched, err := doublestar.Match(pattern, rel)
			if err != nil {
				return err
			}
			if !matched {
				return nil
			}
		}

		entry := Entry{Key: keyFor(resolver, rel, reverse), RelativePath: rel}
		entry.Title, entry.Description = readFrontMatter(ctx, fullPath)
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to walk context store")
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RelativePath < entries[j].RelativePath
	})
	return entries, nil
}

// Find locates a single document: exact key match first, then exact relative
// path, then a unique case-insensitive substring match over keys and titles.
// No match and multiple matches are errors naming the query.
func Find(ctx context.Context, resolver *store.Resolver, query string) (*Entry, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query must not be empty")
	}

	entries, err := List(ctx, resolver, "")
	if err != nil {
		return nil, err
	}

	for i := range entries {
		if entries[i].Key == query {
			return &entries[i], nil
		}
	}
	for i := range entries {
		if entries[i].RelativePath == query {
			return &entries[i], nil
		}
	}

	needle := strings.ToLower(query)
	var matches []*Entry
	for i := range entries {
		if strings.Contains(strings.ToLower(entries[i].Key), needle) ||
			strings.Contains(strings.ToLower(entries[i].Title), needle) {
			matches = append(matches, &entries[i])
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, errors.Errorf("no snippet matches %q", query)
	default:
		keys := make([]string, len(matches))
		for i, match := range matches {
			keys[i] = match.Key
		}
		return nil, errors.Errorf("ambiguous query %q matches %s", query, strings.Join(keys, ", "))
	}
}

// CopyOutcome reports what Copy placed on the clipboard.
type CopyOutcome struct {
	Key   string `json:"key"`
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}

// Copy finds the document for query, reads it through the store, and copies
// the content to the clipboard.
func Copy(ctx context.Context, s *store.Store, query string) (*CopyOutcome, error) {
	entry, err := Find(ctx, s.Resolver(), query)
	if err != nil {
		return nil, err
	}

	content, err := s.Cat(ctx, entry.Key)
	if err != nil {
		return nil, err
	}
	if err := s.Clipboard().Copy(content); err != nil {
		return nil, err
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"key":   entry.Key,
		"path":  entry.RelativePath,
		"bytes": len(content),
	}).Debug("Copied snippet to clipboard")

	return &CopyOutcome{Key: entry.Key, Path: entry.RelativePath, Bytes: len(content)}, nil
}

// reverseAliases inverts the alias table. The lexicographically first alias
// wins when several share a target.
func reverseAliases(resolver *store.Resolver) map[string]string {
	reverse := make(map[string]string)
	for key, target := range resolver.Keys() {
		if existing, ok := reverse[target]; ok && existing <= key {
			continue
		}
		reverse[target] = key
	}
	return reverse
}

// keyFor picks the shortest key that resolves back to rel. The trimmed stem
// is only usable when it round-trips: a dotted stem resolves verbatim
// instead of regaining .md, and a stem that collides with an alias or a
// numbered family resolves to a different document entirely.
func keyFor(resolver *store.Resolver, rel string, reverse map[string]string) string {
	if alias, ok := reverse[rel]; ok {
		return alias
	}
	trimmed := strings.TrimSuffix(rel, ".md")
	if resolver.Resolve(trimmed) == rel {
		return trimmed
	}
	return rel
}

// readFrontMatter extracts title and description from YAML front matter.
// Listing is best-effort per file: unreadable or unparsable documents yield
// empty metadata, never an error.
func readFrontMatter(ctx context.Context, path string) (title, description string) {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.G(ctx).WithError(err).WithField("path", path).Debug("Failed to read document metadata")
		return "", ""
	}

	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		logger.G(ctx).WithError(err).WithField("path", path).Debug("Failed to parse document metadata")
		return "", ""
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return "", ""
	}

	title, _ = metaData["title"].(string)
	description, _ = metaData["description"].(string)
	return title, description
}
