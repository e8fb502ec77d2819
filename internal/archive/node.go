package archive

import (
	"path/filepath"
	"time"

	"github.com/kyaoi/arcview/internal/tree"
)

// Node is a read-only view of one element of a built Tree. The zero value is
// not usable; obtain nodes from Tree.Root or Tree.Lookup.
type Node struct {
	t  *Tree
	id int
}

var _ tree.Item = Node{}

func (n Node) slot() *node {
	return &n.t.nodes[n.id]
}

// Tree returns the tree the node belongs to.
func (n Node) Tree() *Tree {
	return n.t
}

// IsRoot reports whether n is the synthetic root.
func (n Node) IsRoot() bool {
	return n.id == rootID
}

// Entry returns the backing entry. Synthetic nodes have none.
func (n Node) Entry() (Entry, bool) {
	idx := n.slot().entry
	if idx < 0 {
		return Entry{}, false
	}
	return n.t.entries[idx], true
}

// IsSynthetic reports whether the node was materialized without an entry.
func (n Node) IsSynthetic() bool {
	return n.slot().entry < 0
}

// Path returns the inner archive path. The root has an empty path.
func (n Node) Path() string {
	return n.slot().path
}

// Name returns the last path element, or the archive file name for the root.
func (n Node) Name() string {
	if n.IsRoot() {
		return filepath.Base(n.t.name)
	}
	return n.slot().name
}

// CanonicalPath returns the inner path, or the archive location for the root.
func (n Node) CanonicalPath() string {
	if n.IsRoot() {
		return n.t.name
	}
	return n.slot().path
}

// Location returns the archive location joined with the inner path.
func (n Node) Location() string {
	if n.IsRoot() {
		return n.t.name
	}
	return n.t.name + "/" + n.slot().path
}

func (n Node) RealDir() string {
	return n.t.Dir()
}

func (n Node) Children(includeParentLink bool) ([]tree.Item, error) {
	if n.t.state.Load() != stateFinalized {
		return nil, ErrNotReady
	}
	ids := n.slot().children
	items := make([]tree.Item, 0, len(ids)+1)
	if includeParentLink {
		items = append(items, tree.NewParentLink(n.Parent()))
	}
	for _, id := range ids {
		items = append(items, Node{t: n.t, id: id})
	}
	return items, nil
}

// Parent returns the enclosing node. Going up from the root leaves the
// archive and lands in the real directory that contains it.
func (n Node) Parent() tree.Item {
	if n.IsRoot() {
		return tree.NewReal(n.t.Dir(), n.t.realOpts...)
	}
	return Node{t: n.t, id: n.slot().parent}
}

func (n Node) IsDirectory() bool {
	return n.slot().dir
}

func (n Node) IsFileSystemRoot() bool {
	return false
}

func (n Node) ModifiedTime() time.Time {
	return n.slot().modTime
}

func (n Node) SizeBytes() uint64 {
	s := n.slot()
	if s.dir || s.entry < 0 {
		return 0
	}
	return n.t.entries[s.entry].size
}

func (n Node) Compare(other tree.Item) int {
	return tree.Compare(n, other)
}
