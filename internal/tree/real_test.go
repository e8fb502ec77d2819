package tree

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeFS creates files (and their directories) below a fresh temp dir and
// returns its resolved path. Names ending in "/" are created as directories.
func makeFS(tb testing.TB, names ...string) string {
	tb.Helper()
	root, err := filepath.EvalSymlinks(tb.TempDir())
	require.NoError(tb, err)
	for _, name := range names {
		p := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			require.NoError(tb, os.MkdirAll(p, 0o755))
			continue
		}
		require.NoError(tb, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(tb, os.WriteFile(p, []byte(name), 0o644))
	}
	return root
}

func names(tb testing.TB, items []Item) []string {
	tb.Helper()
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name())
	}
	return out
}

func TestRealChildren(t *testing.T) {
	root := makeFS(t, "b.txt", "a/x.md", "a-b/", ".hidden", ".git/config", "node_modules/p.js", "c/")
	r := NewReal(root)

	children, err := r.Children(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a-b", "a", "b.txt", "c"}, names(t, children))

	children, err = r.Children(true)
	require.NoError(t, err)
	assert.Equal(t, ParentName, children[0].Name())
	assert.Equal(t, filepath.Dir(root), children[0].CanonicalPath())
}

func TestRealShowHiddenAndSkipDirs(t *testing.T) {
	root := makeFS(t, "b.txt", ".hidden", ".git/config", "node_modules/p.js", "Target/x")

	children, err := NewReal(root, WithShowHidden(true)).Children(false)
	require.NoError(t, err)
	assert.Equal(t, []string{".hidden", "Target", "b.txt"}, names(t, children))

	children, err = NewReal(root, WithShowHidden(true), WithSkipDirs("target")).Children(false)
	require.NoError(t, err)
	assert.Equal(t, []string{".git", ".hidden", "b.txt", "node_modules"}, names(t, children))
}

func TestRealOptionsInherited(t *testing.T) {
	root := makeFS(t, "sub/.hidden", "sub/shown")
	r := NewReal(root, WithShowHidden(true))

	children, err := r.Children(false)
	require.NoError(t, err)
	require.Len(t, children, 1)

	grand, err := children[0].Children(false)
	require.NoError(t, err)
	assert.Equal(t, []string{".hidden", "shown"}, names(t, grand))

	up, err := children[0].Parent().Children(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub"}, names(t, up))
}

func TestRealWith(t *testing.T) {
	root := makeFS(t, ".hidden", "shown", ".git/config")
	r := NewReal(root)
	assert.False(t, r.ShowsHidden())

	shown := r.With(WithShowHidden(true))
	assert.True(t, shown.ShowsHidden())
	assert.False(t, r.ShowsHidden())
	assert.Equal(t, r.CanonicalPath(), shown.CanonicalPath())

	children, err := shown.Children(false)
	require.NoError(t, err)
	assert.Equal(t, []string{".hidden", "shown"}, names(t, children))

	children, err = r.Children(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"shown"}, names(t, children))
}

func TestRealMetadata(t *testing.T) {
	root := makeFS(t, "dir/file.txt")
	file := NewReal(filepath.Join(root, "dir", "file.txt"))
	dir := NewReal(filepath.Join(root, "dir"))

	assert.Equal(t, "file.txt", file.Name())
	assert.False(t, file.IsDirectory())
	assert.Equal(t, uint64(len("dir/file.txt")), file.SizeBytes())
	assert.WithinDuration(t, time.Now(), file.ModifiedTime(), time.Hour)
	assert.Equal(t, dir.CanonicalPath(), file.RealDir())

	assert.True(t, dir.IsDirectory())
	assert.Zero(t, dir.SizeBytes())
	assert.Equal(t, dir.CanonicalPath(), dir.RealDir())
	assert.Equal(t, root, dir.Parent().CanonicalPath())

	children, err := file.Children(true)
	require.NoError(t, err)
	assert.Equal(t, []string{ParentName}, names(t, children))
}

func TestRealMissingPath(t *testing.T) {
	r := NewReal(filepath.Join(t.TempDir(), "gone"))
	_, err := r.Children(false)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, r.IsDirectory())
	assert.True(t, r.ModifiedTime().IsZero())
}

func TestRealFileSystemRoot(t *testing.T) {
	root := NewReal(string(filepath.Separator))
	if vol := filepath.VolumeName(os.TempDir()); vol != "" {
		root = NewReal(vol + string(filepath.Separator))
	}
	assert.True(t, root.IsFileSystemRoot())
	assert.Nil(t, root.Parent())
	assert.Equal(t, root.CanonicalPath(), root.Name())

	// No ".." at the top.
	items, err := List(root)
	require.NoError(t, err)
	for _, it := range items {
		assert.NotEqual(t, ParentName, it.Name())
	}
}

func TestRealRelativePath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(wd)
	require.NoError(t, err)
	assert.Equal(t, want, NewReal(".").CanonicalPath())
}
