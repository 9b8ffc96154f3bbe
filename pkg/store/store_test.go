package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/mx/pkg/clipboard"
)

type fakeClipboard struct {
	content  string
	pasteErr error
	copied   []string
}

func (f *fakeClipboard) Paste() (string, error) {
	if f.pasteErr != nil {
		return "", f.pasteErr
	}
	return f.content, nil
}

func (f *fakeClipboard) Copy(text string) error {
	f.copied = append(f.copied, text)
	return nil
}

// setupStore changes into a fresh project directory with an existing .mx
// store and returns a store plus the absolute store path.
func setupStore(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()

	dir := chdirTemp(t)
	storeDir := filepath.Join(dir, DirName)
	require.NoError(t, os.MkdirAll(storeDir, 0o755))

	s, err := New(opts...)
	require.NoError(t, err)
	return s, storeDir
}

func TestStore_Cat_ReadsExistingFile(t *testing.T) {
	s, storeDir := setupStore(t)
	ctx := context.Background()

	expected := "# Test Tasks\n\n- Task 1\n- Task 2\n"
	require.NoError(t, os.WriteFile(filepath.Join(storeDir, "tasks.md"), []byte(expected), 0o644))

	content, err := s.Cat(ctx, "tk")
	require.NoError(t, err)
	assert.Equal(t, expected, content)
}

func TestStore_Cat_ResolvesAliases(t *testing.T) {
	s, storeDir := setupStore(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(storeDir, "requirements.md"), []byte("requirements content"), 0o644))

	content, err := s.Cat(ctx, "rq")
	require.NoError(t, err)
	assert.Equal(t, "requirements content", content)

	require.NoError(t, os.MkdirAll(filepath.Join(storeDir, "pending"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(storeDir, "pending", "tasks.md"), []byte("pending tasks"), 0o644))

	content, err = s.Cat(ctx, "pdt")
	require.NoError(t, err)
	assert.Equal(t, "pending tasks", content)
}

func TestStore_Cat_EmptyFile(t *testing.T) {
	s, storeDir := setupStore(t)

	require.NoError(t, os.WriteFile(filepath.Join(storeDir, "empty.md"), nil, 0o644))

	content, err := s.Cat(context.Background(), "empty")
	require.NoError(t, err)
	assert.Equal(t, "", content)
}

func TestStore_Cat_MissingFile(t *testing.T) {
	s, _ := setupStore(t)

	_, err := s.Cat(context.Background(), "tk")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "context file not found")
	assert.Contains(t, err.Error(), "tasks.md")
}

func TestStore_Cat_DirectoryTarget(t *testing.T) {
	s, storeDir := setupStore(t)

	require.NoError(t, os.MkdirAll(filepath.Join(storeDir, "somedir.md"), 0o755))

	_, err := s.Cat(context.Background(), "somedir.md")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "not a file")
}

func TestStore_Cat_RejectsTraversal(t *testing.T) {
	s, _ := setupStore(t)

	_, err := s.Cat(context.Background(), "../etc/passwd")
	require.Error(t, err)
	assert.True(t, IsTraversal(err))
}

func TestStore_Cat_BinaryContent(t *testing.T) {
	s, storeDir := setupStore(t)

	require.NoError(t, os.WriteFile(filepath.Join(storeDir, "blob.md"), []byte("PK\x00\x04binary"), 0o644))

	_, err := s.Cat(context.Background(), "blob")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "binary content")
}

func TestStore_Cat_InvalidUTF8(t *testing.T) {
	s, storeDir := setupStore(t)

	require.NoError(t, os.WriteFile(filepath.Join(storeDir, "latin.md"), []byte{0xff, 0xfe, 'h', 'i'}, 0o644))

	_, err := s.Cat(context.Background(), "latin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid UTF-8")
}

func TestStore_Touch_CreatesFileAndParents(t *testing.T) {
	s, storeDir := setupStore(t)

	outcome, err := s.Touch(context.Background(), "pdt", TouchOptions{})
	require.NoError(t, err)

	assert.Equal(t, "pdt", outcome.Key)
	assert.Equal(t, filepath.Join(storeDir, "pending", "tasks.md"), outcome.Path)
	assert.False(t, outcome.Existed)
	assert.False(t, outcome.Overwritten)

	info, err := os.Stat(outcome.Path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestStore_Touch_CreatesStoreDirWhenAbsent(t *testing.T) {
	dir := chdirTemp(t)

	s, err := New()
	require.NoError(t, err)

	outcome, err := s.Touch(context.Background(), "tk", TouchOptions{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DirName, "tasks.md"), outcome.Path)

	_, err = os.Stat(outcome.Path)
	require.NoError(t, err)
}

func TestStore_Touch_Idempotent(t *testing.T) {
	s, storeDir := setupStore(t)
	ctx := context.Background()

	_, err := s.Touch(ctx, "tk", TouchOptions{})
	require.NoError(t, err)

	tasksPath := filepath.Join(storeDir, "tasks.md")
	require.NoError(t, os.WriteFile(tasksPath, []byte("existing content"), 0o644))

	outcome, err := s.Touch(ctx, "tk", TouchOptions{})
	require.NoError(t, err)
	assert.True(t, outcome.Existed)
	assert.False(t, outcome.Overwritten)

	content, err := os.ReadFile(tasksPath)
	require.NoError(t, err)
	assert.Equal(t, "existing content", string(content))
}

func TestStore_Touch_ForceOverwrites(t *testing.T) {
	s, storeDir := setupStore(t)

	tasksPath := filepath.Join(storeDir, "tasks.md")
	require.NoError(t, os.WriteFile(tasksPath, []byte("existing content"), 0o644))

	outcome, err := s.Touch(context.Background(), "tk", TouchOptions{Force: true})
	require.NoError(t, err)
	assert.True(t, outcome.Existed)
	assert.True(t, outcome.Overwritten)

	content, err := os.ReadFile(tasksPath)
	require.NoError(t, err)
	assert.Empty(t, string(content))
}

func TestStore_Touch_Paste(t *testing.T) {
	clip := &fakeClipboard{content: "clipboard note"}
	s, storeDir := setupStore(t, WithClipboard(clip))

	outcome, err := s.Touch(context.Background(), "nt", TouchOptions{Paste: true})
	require.NoError(t, err)
	assert.True(t, outcome.Pasted)

	content, err := os.ReadFile(filepath.Join(storeDir, "notes.md"))
	require.NoError(t, err)
	assert.Equal(t, "clipboard note", string(content))
}

func TestStore_Touch_PasteSkippedForExistingFile(t *testing.T) {
	clip := &fakeClipboard{content: "clipboard note"}
	s, storeDir := setupStore(t, WithClipboard(clip))

	tasksPath := filepath.Join(storeDir, "tasks.md")
	require.NoError(t, os.WriteFile(tasksPath, []byte("keep me"), 0o644))

	outcome, err := s.Touch(context.Background(), "tk", TouchOptions{Paste: true})
	require.NoError(t, err)
	assert.True(t, outcome.Existed)
	assert.False(t, outcome.Pasted)

	content, err := os.ReadFile(tasksPath)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(content))
}

func TestStore_Touch_PasteHTML(t *testing.T) {
	clip := &fakeClipboard{content: "<h1>Title</h1><p>Hello <strong>world</strong></p>"}
	s, storeDir := setupStore(t, WithClipboard(clip))

	outcome, err := s.Touch(context.Background(), "nt", TouchOptions{Paste: true, HTML: true})
	require.NoError(t, err)
	assert.True(t, outcome.Pasted)

	content, err := os.ReadFile(filepath.Join(storeDir, "notes.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "# Title")
	assert.Contains(t, string(content), "**world**")
}

func TestStore_Touch_PasteClipboardError(t *testing.T) {
	clip := &fakeClipboard{pasteErr: &clipboard.Error{Op: "paste", Err: errors.New("no clipboard")}}
	s, storeDir := setupStore(t, WithClipboard(clip))

	_, err := s.Touch(context.Background(), "tk", TouchOptions{Paste: true})
	require.Error(t, err)
	assert.True(t, clipboard.IsClipboardError(err))

	// The touch itself has already happened.
	_, statErr := os.Stat(filepath.Join(storeDir, "tasks.md"))
	require.NoError(t, statErr)
}

func TestStore_Write_RoundTrip(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	_, err := s.Write(ctx, "tk", "known content", true)
	require.NoError(t, err)

	content, err := s.Cat(ctx, "tk")
	require.NoError(t, err)
	assert.Equal(t, "known content", content)

	_, err = s.Write(ctx, "tk", "", true)
	require.NoError(t, err)

	content, err = s.Cat(ctx, "tk")
	require.NoError(t, err)
	assert.Equal(t, "", content)
}

func TestStore_Write_ExistingWithoutForce(t *testing.T) {
	s, storeDir := setupStore(t)

	tasksPath := filepath.Join(storeDir, "tasks.md")
	require.NoError(t, os.WriteFile(tasksPath, []byte("original"), 0o644))

	outcome, err := s.Write(context.Background(), "tk", "replacement", false)
	require.NoError(t, err)
	assert.True(t, outcome.Existed)
	assert.False(t, outcome.Overwritten)

	content, err := os.ReadFile(tasksPath)
	require.NoError(t, err)
	assert.Equal(t, "original", string(content))
}

func TestStore_Clean_RemovesFile(t *testing.T) {
	s, storeDir := setupStore(t)

	tasksPath := filepath.Join(storeDir, "tasks.md")
	require.NoError(t, os.WriteFile(tasksPath, []byte("tasks"), 0o644))

	outcome, err := s.Clean(context.Background(), "tk")
	require.NoError(t, err)
	assert.Contains(t, outcome.Message, "Removed")
	assert.Contains(t, outcome.Message, tasksPath)

	_, err = os.Stat(tasksPath)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_Clean_MissingFile(t *testing.T) {
	s, storeDir := setupStore(t)

	_, err := s.Clean(context.Background(), "tk")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), filepath.Join(storeDir, "tasks.md"))
}

func TestStore_Clean_RejectsTraversal(t *testing.T) {
	s, _ := setupStore(t)

	_, err := s.Clean(context.Background(), "../outside")
	require.Error(t, err)
	assert.True(t, IsTraversal(err))
}

func TestStore_Clean_PrunesEmptyAncestors(t *testing.T) {
	s, storeDir := setupStore(t)

	leaf := filepath.Join(storeDir, "a", "b", "c.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(leaf), 0o755))
	require.NoError(t, os.WriteFile(leaf, []byte("leaf"), 0o644))

	_, err := s.Clean(context.Background(), "a/b/c")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(storeDir, "a"))
	assert.True(t, os.IsNotExist(err), "empty ancestors should be pruned")

	info, err := os.Stat(storeDir)
	require.NoError(t, err, "store root itself must survive pruning")
	assert.True(t, info.IsDir())
}

func TestStore_Clean_PruningStopsAtNonEmptyDir(t *testing.T) {
	s, storeDir := setupStore(t)

	leaf := filepath.Join(storeDir, "a", "b", "c.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(leaf), 0o755))
	require.NoError(t, os.WriteFile(leaf, []byte("leaf"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(storeDir, "a", "d.md"), []byte("sibling"), 0o644))

	_, err := s.Clean(context.Background(), "a/b/c")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(storeDir, "a", "b"))
	assert.True(t, os.IsNotExist(err), "emptied directory should be pruned")

	_, err = os.Stat(filepath.Join(storeDir, "a", "d.md"))
	require.NoError(t, err, "non-empty ancestor must stop the pruning")
}

func TestStore_Clean_All(t *testing.T) {
	s, storeDir := setupStore(t)

	require.NoError(t, os.WriteFile(filepath.Join(storeDir, "tasks.md"), []byte("tasks"), 0o644))

	outcome, err := s.Clean(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Removed .mx directory", outcome.Message)

	_, err = os.Stat(storeDir)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_Clean_AllMissingStore(t *testing.T) {
	chdirTemp(t)

	s, err := New()
	require.NoError(t, err)

	outcome, err := s.Clean(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, ".mx directory not found", outcome.Message)
}

func TestStore_OperationsFromNestedWorkingDirectory(t *testing.T) {
	s, storeDir := setupStore(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(storeDir, "tasks.md"), []byte("from root"), 0o644))

	nested := filepath.Join(filepath.Dir(storeDir), "src", "deeply", "nested")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.Chdir(nested))

	content, err := s.Cat(ctx, "tk")
	require.NoError(t, err)
	assert.Equal(t, "from root", content)
}

func TestNew_RejectsInvalidAliases(t *testing.T) {
	_, err := New(WithAliases(map[string]string{"bad": "/absolute/path.md"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid alias")

	_, err = New(WithAliases(map[string]string{"bad": "notes.txt"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid alias")
}

func TestNew_RejectsNilClipboard(t *testing.T) {
	_, err := New(WithClipboard(nil))
	require.Error(t, err)
}

func TestStore_CustomAliases(t *testing.T) {
	s, storeDir := setupStore(t, WithAliases(map[string]string{"sp": "specs/spec.md"}))
	ctx := context.Background()

	outcome, err := s.Touch(ctx, "sp", TouchOptions{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(storeDir, "specs", "spec.md"), outcome.Path)
}
