package archive

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kyaoi/arcview/internal/tree"
)

const (
	stateCollecting int32 = iota
	stateFinalized
)

const rootID = 0

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets the logger used while building. If nil, a discard logger
// is used.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) {
		t.logger = logger
	}
}

// WithLenient makes Build promote a file entry that has descendants to a
// directory instead of failing with a MalformedPathError.
func WithLenient(lenient bool) Option {
	return func(t *Tree) {
		t.lenient = lenient
	}
}

// WithRealOptions sets the listing options of the real directory returned
// when navigating up out of the archive.
func WithRealOptions(opts ...tree.RealOption) Option {
	return func(t *Tree) {
		t.realOpts = opts
	}
}

// Tree collects the entries of one archive and reconstructs their directory
// hierarchy. Entries are added while collecting; Build runs once and the
// result is read-only afterwards.
type Tree struct {
	name     string
	logger   *slog.Logger
	lenient  bool
	realOpts []tree.RealOption

	mu      sync.Mutex
	state   atomic.Int32
	pending []Entry

	entries []Entry
	nodes   []node
}

// node is an arena slot. Links are indices into Tree.nodes; parent is a
// back-reference only.
type node struct {
	entry    int
	parent   int
	children []int
	path     string
	name     string
	dir      bool
	modTime  time.Time
}

// New returns an empty tree for the archive located at name.
func New(name string, opts ...Option) *Tree {
	t := &Tree{name: name}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tree) log() *slog.Logger {
	if t.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return t.logger
}

// Name returns the archive location.
func (t *Tree) Name() string {
	return t.name
}

// Dir returns the real directory containing the archive.
func (t *Tree) Dir() string {
	return filepath.Dir(t.name)
}

// AddEntry queues an entry for Build. The tree keeps its own copy.
func (t *Tree) AddEntry(e Entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Load() != stateCollecting {
		return fmt.Errorf("add %q: %w", e.path, ErrInvalidState)
	}
	if e.path == "" {
		return &MalformedPathError{Path: e.path, Reason: "empty path"}
	}
	t.pending = append(t.pending, e)
	return nil
}

// Len returns the number of entries in the tree.
func (t *Tree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Load() == stateFinalized {
		return len(t.entries)
	}
	return len(t.pending)
}

// Build sorts the collected entries and partitions them into a tree. It may
// succeed only once. On a MalformedPathError the tree stays collecting.
func (t *Tree) Build() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Load() != stateCollecting {
		return ErrAlreadyFinalized
	}

	entries := slices.Clone(t.pending)
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return tree.ComparePaths(a.path, b.path)
	})
	entries = t.collapseDuplicates(entries)

	b := &builder{
		entries: entries,
		nodes:   []node{{entry: -1, parent: -1, dir: true}},
		lenient: t.lenient,
		logger:  t.log(),
	}
	if _, err := b.partition(0, 0, "", rootID); err != nil {
		return err
	}
	b.propagateTimes()

	t.entries = entries
	t.nodes = b.nodes
	t.pending = nil
	t.state.Store(stateFinalized)

	t.log().Debug("archive tree built",
		slog.String("archive", t.name),
		slog.Int("entries", len(entries)),
		slog.Int("nodes", len(b.nodes)),
		slog.Int("synthetic", b.synthetic))
	return nil
}

// collapseDuplicates keeps the last added entry of every run of equal paths.
// The sort is stable so the last of a run is the last one added.
func (t *Tree) collapseDuplicates(entries []Entry) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if n := len(out); n > 0 && out[n-1].path == e.path {
			t.log().Debug("duplicate archive entry", slog.String("path", e.path))
			out[n-1] = e
			continue
		}
		out = append(out, e)
	}
	return out
}

type builder struct {
	entries   []Entry
	nodes     []node
	lenient   bool
	logger    *slog.Logger
	synthetic int
}

// partition consumes the entries starting at cursor i whose paths begin with
// prefix and attaches them below parent. pos0 is len(prefix). It returns the
// cursor of the first entry outside prefix.
func (b *builder) partition(i, pos0 int, prefix string, parent int) (int, error) {
	last := -1
	for i < len(b.entries) {
		path := b.entries[i].path
		if !strings.HasPrefix(path, prefix) {
			break
		}
		sep := strings.IndexByte(path[pos0:], '/')
		if sep < 0 {
			last = b.appendEntry(parent, i, pos0)
			i++
			continue
		}

		dirPath := path[:pos0+sep]
		switch {
		case last < 0 || b.nodes[last].path != dirPath:
			last = b.appendDir(parent, dirPath, pos0)
		case !b.nodes[last].dir:
			if !b.lenient {
				return i, &MalformedPathError{
					Path:   path,
					Reason: fmt.Sprintf("ancestor %q is not a directory", dirPath),
				}
			}
			b.logger.Warn("promoting file entry to directory",
				slog.String("path", dirPath),
				slog.String("child", path))
			b.nodes[last].dir = true
		}

		var err error
		i, err = b.partition(i, pos0+sep+1, dirPath+"/", last)
		if err != nil {
			return i, err
		}
	}
	return i, nil
}

func (b *builder) appendEntry(parent, entry, pos0 int) int {
	e := b.entries[entry]
	return b.append(parent, node{
		entry:   entry,
		path:    e.path,
		name:    e.path[pos0:],
		dir:     e.isDir,
		modTime: e.modTime,
	})
}

func (b *builder) appendDir(parent int, path string, pos0 int) int {
	b.synthetic++
	return b.append(parent, node{
		entry: -1,
		path:  path,
		name:  path[pos0:],
		dir:   true,
	})
}

func (b *builder) append(parent int, n node) int {
	id := len(b.nodes)
	n.parent = parent
	b.nodes = append(b.nodes, n)
	b.nodes[parent].children = append(b.nodes[parent].children, id)
	return id
}

// propagateTimes gives nodes without an entry the newest modification time
// found below them. Children always have larger ids than their parents.
func (b *builder) propagateTimes() {
	for id := len(b.nodes) - 1; id > rootID; id-- {
		n := &b.nodes[id]
		p := &b.nodes[n.parent]
		if p.entry < 0 && n.modTime.After(p.modTime) {
			p.modTime = n.modTime
		}
	}
}

// Root returns the synthetic root of the built tree.
func (t *Tree) Root() (Node, error) {
	if t.state.Load() != stateFinalized {
		return Node{}, ErrNotReady
	}
	return Node{t: t, id: rootID}, nil
}

// Lookup returns the node at the given inner path. An empty path or "."
// returns the root.
func (t *Tree) Lookup(path string) (Node, error) {
	root, err := t.Root()
	if err != nil {
		return Node{}, err
	}
	if path == "" || path == "." || path == "/" {
		return root, nil
	}
	target, err := normalizePath(strings.TrimPrefix(path, "/"))
	if err != nil {
		return Node{}, err
	}

	id := rootID
	for end := 0; end < len(target); {
		next := strings.IndexByte(target[end+1:], '/')
		if next < 0 {
			end = len(target)
		} else {
			end += next + 1
		}
		want := target[:end]
		children := t.nodes[id].children
		idx, found := slices.BinarySearchFunc(children, want, func(c int, p string) int {
			return tree.ComparePaths(t.nodes[c].path, p)
		})
		if !found {
			return Node{}, fmt.Errorf("lookup %q: %w", path, fs.ErrNotExist)
		}
		id = children[idx]
	}
	return Node{t: t, id: id}, nil
}
