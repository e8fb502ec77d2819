package tree

import (
	"strings"
	"time"
)

// ParentName is the display name of the pseudo entry that leads upward.
const ParentName = ".."

// Item is a single entry in a browsable namespace. Real directories and
// archive contents both implement it, so callers cannot tell them apart.
type Item interface {
	// Name returns the last path element.
	Name() string
	// CanonicalPath returns the full path of the item within its namespace.
	CanonicalPath() string
	// RealDir returns the on-disk directory that holds the item.
	RealDir() string
	// Children lists direct children in sorted order. With includeParentLink
	// a ".." item resolving to Parent is prepended.
	Children(includeParentLink bool) ([]Item, error)
	// Parent returns the enclosing item, or nil at a filesystem root.
	Parent() Item
	IsDirectory() bool
	IsFileSystemRoot() bool
	ModifiedTime() time.Time
	SizeBytes() uint64
	// Compare orders items by canonical path with a directory sorting
	// before its own children.
	Compare(other Item) int
}

// ComparePaths compares two slash separated paths so that a path sorts
// immediately before everything below it.
func ComparePaths(a, b string) int {
	return strings.Compare(a+"/", b+"/")
}

// Compare orders two items by canonical path.
func Compare(a, b Item) int {
	return ComparePaths(a.CanonicalPath(), b.CanonicalPath())
}

// List returns the children of item with a ".." link whenever the item has
// a parent to go back to.
func List(item Item) ([]Item, error) {
	return item.Children(item.Parent() != nil)
}

// ParentLink is the ".." pseudo entry. Every method except Name forwards to
// the target.
type ParentLink struct {
	target Item
}

// NewParentLink wraps target as a ".." entry.
func NewParentLink(target Item) *ParentLink {
	return &ParentLink{target: target}
}

// Target returns the item the link resolves to.
func (l *ParentLink) Target() Item { return l.target }

func (l *ParentLink) Name() string          { return ParentName }
func (l *ParentLink) CanonicalPath() string { return l.target.CanonicalPath() }
func (l *ParentLink) RealDir() string       { return l.target.RealDir() }
func (l *ParentLink) Parent() Item          { return l.target.Parent() }
func (l *ParentLink) IsDirectory() bool     { return true }
func (l *ParentLink) IsFileSystemRoot() bool {
	return l.target.IsFileSystemRoot()
}
func (l *ParentLink) ModifiedTime() time.Time { return l.target.ModifiedTime() }
func (l *ParentLink) SizeBytes() uint64       { return 0 }
func (l *ParentLink) Compare(other Item) int  { return Compare(l, other) }

func (l *ParentLink) Children(includeParentLink bool) ([]Item, error) {
	return l.target.Children(includeParentLink)
}

// Resolve unwraps a ParentLink, returning any other item unchanged.
func Resolve(item Item) Item {
	if link, ok := item.(*ParentLink); ok {
		return link.target
	}
	return item
}
