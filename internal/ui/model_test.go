package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyaoi/arcview/internal/tree"
)

func testDir(tb testing.TB) string {
	tb.Helper()
	dir, err := filepath.EvalSymlinks(tb.TempDir())
	require.NoError(tb, err)
	require.NoError(tb, os.Mkdir(filepath.Join(dir, "a"), 0o755))
	require.NoError(tb, os.Mkdir(filepath.Join(dir, "b"), 0o755))
	require.NoError(tb, os.WriteFile(filepath.Join(dir, "b", "inner.txt"), []byte("x"), 0o644))
	require.NoError(tb, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("hello"), 0o644))
	return dir
}

func descendDirs(item tree.Item) (tree.Item, error) {
	item = tree.Resolve(item)
	if item.IsDirectory() {
		return item, nil
	}
	return nil, ErrNotBrowsable
}

func newTestModel(tb testing.TB, dir string) *Model {
	tb.Helper()
	m := NewModel(State{Current: tree.NewReal(dir), Descend: descendDirs, ShowDetails: true})
	tb.Cleanup(func() { _ = m.Close() })
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return m
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func TestModelNavigation(t *testing.T) {
	dir := testDir(t)
	m := newTestModel(t, dir)

	require.NotNil(t, m.Selected())
	assert.Equal(t, tree.ParentName, m.Selected().Name())

	press(m, "j", "j")
	assert.Equal(t, "b", m.Selected().Name())

	press(m, "enter")
	assert.Equal(t, filepath.Join(dir, "b"), m.Current().CanonicalPath())
	assert.Equal(t, tree.ParentName, m.Selected().Name())

	// Plain files do not open.
	press(m, "j", "enter")
	assert.Equal(t, filepath.Join(dir, "b"), m.Current().CanonicalPath())
	assert.NoError(t, m.Err())

	press(m, "backspace")
	assert.Equal(t, dir, m.Current().CanonicalPath())
	assert.Equal(t, "b", m.Selected().Name())

	press(m, "G")
	assert.Equal(t, "c.txt", m.Selected().Name())
	press(m, "g", "g")
	assert.Equal(t, tree.ParentName, m.Selected().Name())

	// ".." goes up as well.
	press(m, "enter")
	assert.Equal(t, filepath.Dir(dir), m.Current().CanonicalPath())
	assert.Equal(t, filepath.Base(dir), m.Selected().Name())
}

func TestModelFilter(t *testing.T) {
	m := newTestModel(t, testDir(t))

	press(m, "/", "c")
	assert.Len(t, m.visible, 2)
	view := ansi.Strip(m.View())
	assert.Contains(t, view, "c.txt")

	press(m, "enter")
	assert.False(t, m.filtering)
	assert.Contains(t, ansi.Strip(m.View()), "/c (2/4)")

	press(m, "esc")
	assert.Len(t, m.visible, 4)
}

func TestModelViewShowsDetails(t *testing.T) {
	dir := testDir(t)
	m := newTestModel(t, dir)

	press(m, "G")
	view := ansi.Strip(m.View())
	assert.Contains(t, view, dir)
	assert.Contains(t, view, "c.txt")
	assert.Contains(t, view, "5B")

	press(m, "?")
	assert.Contains(t, ansi.Strip(m.View()), "filter by name")
	press(m, "?")
	assert.False(t, m.showHelp)
}

func TestModelToggleHidden(t *testing.T) {
	dir := testDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), nil, 0o644))
	m := newTestModel(t, dir)
	require.Len(t, m.items, 4)

	press(m, "j")
	press(m, ".")
	assert.Len(t, m.items, 5)
	assert.Equal(t, ".env", m.items[1].Name())
	assert.Equal(t, "a", m.Selected().Name())

	press(m, ".")
	assert.Len(t, m.items, 4)
}

func TestModelReloadsOnDirectoryChange(t *testing.T) {
	dir := testDir(t)
	m := newTestModel(t, dir)
	m.Init()
	require.NoError(t, m.Err())
	require.Equal(t, dir, m.watchDir)

	press(m, "j")
	created := filepath.Join(dir, "d.txt")
	require.NoError(t, os.WriteFile(created, nil, 0o644))
	_, cmd := m.Update(dirEventMsg{path: created, op: fsnotify.Create})
	assert.NotNil(t, cmd, "handling an event waits for the next one")

	assert.Len(t, m.items, 5)
	assert.Equal(t, "a", m.Selected().Name())

	// Events from other directories are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b", "more.txt"), nil, 0o644))
	m.Update(dirEventMsg{path: filepath.Join(dir, "b", "more.txt"), op: fsnotify.Create})
	assert.Len(t, m.items, 5)
}

func TestModelKeepsOneDirectoryWaiter(t *testing.T) {
	dir := testDir(t)
	m := newTestModel(t, dir)
	wait := m.Init()
	require.NotNil(t, wait)

	press(m, "j")
	for range 20 {
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		assert.Nil(t, cmd)
		require.Equal(t, filepath.Join(dir, "a"), m.watchDir)

		_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
		assert.Nil(t, cmd)
		require.Equal(t, dir, m.watchDir)
	}
	assert.True(t, m.waiting)

	returned := make(chan struct{})
	go func() {
		wait()
		close(returned)
	}()
	require.NoError(t, m.Close())
	select {
	case <-returned:
	case <-time.After(5 * time.Second):
		t.Fatal("wait command still blocked after Close")
	}
}

func TestFormatRow(t *testing.T) {
	dir := testDir(t)
	c := tree.NewReal(filepath.Join(dir, "c.txt"))
	row := formatRow(c, 60)
	assert.Equal(t, 60, ansi.StringWidth(row))
	assert.True(t, strings.HasPrefix(row, "c.txt "))
	assert.Contains(t, row, "5B")
	assert.Contains(t, row, c.ModifiedTime().Local().Format(timeLayout))

	narrow := formatRow(tree.NewReal(filepath.Join(dir, "a")), 10)
	assert.Equal(t, "a/", narrow)

	link := formatRow(tree.NewParentLink(tree.NewReal(dir)), 40)
	assert.Equal(t, "..", strings.TrimSpace(link))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "-", FormatTime(time.Time{}))
	ts := time.Date(2020, 1, 2, 3, 4, 5, 0, time.Local)
	assert.Equal(t, "2020-01-02 03:04", FormatTime(ts))
}
