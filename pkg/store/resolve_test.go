package store

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Resolve(t *testing.T) {
	resolver := NewResolver(nil)

	tests := []struct {
		name string
		key  string
		want string
	}{
		{"exact alias", "tk", "tasks.md"},
		{"exact alias requirements", "rq", "requirements.md"},
		{"exact alias notes", "nt", "notes.md"},
		{"exact alias design", "ds", "design.md"},
		{"exact alias bugs", "bg", "bugs.md"},
		{"exact alias ideas", "id", "ideas.md"},
		{"exact alias nested", "pdt", "pending/tasks.md"},

		{"numbered alias", "tk3", "tasks-3.md"},
		{"numbered alias multi digit", "tk12", "tasks-12.md"},
		{"numbered alias leading zeros", "tk01", "tasks-1.md"},
		{"numbered alias nested", "pdt2", "pending/tasks-2.md"},
		{"numbered alias zero falls through", "tk0", "tk0.md"},
		{"numbered unknown base falls through", "xx3", "xx3.md"},
		{"digits only falls through", "3", "3.md"},

		{"pending prefix", "pd-tk", "pending/tasks.md"},
		{"pending prefix numbered", "pd-rq2", "pending/requirements-2.md"},
		{"pending prefix on nested alias", "pd-pdt", "pending/pending/tasks.md"},
		{"pending prefix non-alias base falls through", "pd-docs/spec", "pd-docs/spec.md"},
		{"pending prefix does not recurse", "pd-pd-tk", "pd-pd-tk.md"},

		{"fallback path", "docs/spec", "docs/spec.md"},
		{"fallback keeps md extension", "somedir.md", "somedir.md"},
		{"fallback keeps other extensions", "notes.txt", "notes.txt"},
		{"fallback nested", "a/b/c", "a/b/c.md"},
		{"empty key", "", ".md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolver.Resolve(tt.key))
		})
	}
}

func TestResolver_ResolveIsPureAndDeterministic(t *testing.T) {
	resolver := NewResolver(nil)

	baseline := make(map[string]string)
	for key := range resolver.Keys() {
		baseline[key] = resolver.Resolve(key)
	}

	// Resolution never consults the filesystem: resolving again from a
	// working directory that no longer exists yields identical results.
	dir := chdirTemp(t)
	require.NoError(t, os.Remove(dir))

	for key, want := range baseline {
		assert.Equal(t, want, resolver.Resolve(key), "key %q", key)
	}
}

func TestResolver_CaseSensitive(t *testing.T) {
	resolver := NewResolver(nil)

	assert.Equal(t, "TK.md", resolver.Resolve("TK"))
	assert.Equal(t, "Tk.md", resolver.Resolve("Tk"))
}

func TestResolver_ExtraAliases(t *testing.T) {
	resolver := NewResolver(map[string]string{
		"sp": "specs/spec.md",
		"tk": "custom/tasks.md",
	})

	assert.Equal(t, "specs/spec.md", resolver.Resolve("sp"))
	assert.Equal(t, "specs/spec-2.md", resolver.Resolve("sp2"))
	assert.Equal(t, "specs/pending/spec.md", resolver.Resolve("pd-sp"))

	// Extra entries win over built-ins, and the derived rules follow.
	assert.Equal(t, "custom/tasks.md", resolver.Resolve("tk"))
	assert.Equal(t, "custom/tasks-2.md", resolver.Resolve("tk2"))
}

func TestResolver_KeysReturnsCopy(t *testing.T) {
	resolver := NewResolver(nil)

	keys := resolver.Keys()
	keys["tk"] = "mutated.md"

	assert.Equal(t, "tasks.md", resolver.Resolve("tk"))
}
