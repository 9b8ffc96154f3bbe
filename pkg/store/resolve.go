package store

import (
	"path"
	"strconv"
	"strings"
)

// builtinAliases maps short mnemonic keys to relative paths inside the
// store. Paths use forward slashes and end in .md.
var builtinAliases = map[string]string{
	"tk":  "tasks.md",
	"rq":  "requirements.md",
	"nt":  "notes.md",
	"ds":  "design.md",
	"bg":  "bugs.md",
	"id":  "ideas.md",
	"pdt": "pending/tasks.md",
}

// pendingPrefix marks keys whose resolved path gets a pending/ segment
// inserted before the filename.
const pendingPrefix = "pd-"

// Resolver maps symbolic keys to relative paths inside the store.
// Resolution is a pure function of the key and the alias table: it is total,
// deterministic, and never touches the filesystem.
type Resolver struct {
	aliases map[string]string
}

// NewResolver returns a resolver with the built-in alias table merged with
// extra user-configured entries. Extra entries win on key collision.
func NewResolver(extra map[string]string) *Resolver {
	aliases := make(map[string]string, len(builtinAliases)+len(extra))
	for key, target := range builtinAliases {
		aliases[key] = target
	}
	for key, target := range extra {
		aliases[key] = target
	}
	return &Resolver{aliases: aliases}
}

// Resolve maps a key to its relative path. Matching is exact-case, first
// rule wins:
//
//  1. exact alias lookup
//  2. numbered family: <base><N> where <base> is an alias and N a positive
//     integer becomes the base's path with -N before the extension
//     (tk3 resolves to tasks-3.md)
//  3. pending prefix: pd-<base> where <base> resolves via rule 1 or 2
//     becomes the base's path with a pending/ segment inserted before the
//     filename (pd-tk resolves to pending/tasks.md)
//  4. the key verbatim as a relative path, with .md appended when the final
//     element has no extension
//
// The empty key falls through to rule 4 and resolves to ".md"; the
// validation step is the safety gate, not this resolver.
func (r *Resolver) Resolve(key string) string {
	if resolved, ok := r.resolveAlias(key); ok {
		return resolved
	}
	if base, found := strings.CutPrefix(key, pendingPrefix); found {
		if resolved, ok := r.resolveAlias(base); ok {
			dir, file := path.Split(resolved)
			return path.Join(dir, "pending", file)
		}
	}
	return fallbackPath(key)
}

// Keys returns a copy of the alias table, for collaborators that list or
// reverse-map entries.
func (r *Resolver) Keys() map[string]string {
	aliases := make(map[string]string, len(r.aliases))
	for key, target := range r.aliases {
		aliases[key] = target
	}
	return aliases
}

// resolveAlias applies the exact and numbered rules. The pending-prefix rule
// uses the ok result to require that its base is a real alias rather than a
// fallback path.
func (r *Resolver) resolveAlias(key string) (string, bool) {
	if resolved, ok := r.aliases[key]; ok {
		return resolved, true
	}
	return r.resolveNumbered(key)
}

// resolveNumbered matches <base><N>, splitting at the trailing digit run.
func (r *Resolver) resolveNumbered(key string) (string, bool) {
	i := len(key)
	for i > 0 && key[i-1] >= '0' && key[i-1] <= '9' {
		i--
	}
	if i == 0 || i == len(key) {
		return "", false
	}

	base, ok := r.aliases[key[:i]]
	if !ok {
		return "", false
	}
	n, err := strconv.Atoi(key[i:])
	if err != nil || n < 1 {
		return "", false
	}

	ext := path.Ext(base)
	return strings.TrimSuffix(base, ext) + "-" + strconv.Itoa(n) + ext, true
}

// fallbackPath treats the key verbatim as a relative path.
func fallbackPath(key string) string {
	if path.Ext(key) == "" {
		return key + ".md"
	}
	return key
}
