package tree

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// DefaultSkipDirs are directory names hidden from listings unless the caller
// overrides them.
var DefaultSkipDirs = []string{".git", "node_modules", ".hg", ".svn", ".idea", ".vscode"}

// RealOption configures how real directories are listed.
type RealOption func(*realConfig)

type realConfig struct {
	showHidden bool
	skipDirs   map[string]bool
}

// WithShowHidden controls whether dot files are listed.
func WithShowHidden(show bool) RealOption {
	return func(c *realConfig) {
		c.showHidden = show
	}
}

// WithSkipDirs replaces the set of directory names that are never listed.
// Names are matched case-insensitively.
func WithSkipDirs(names ...string) RealOption {
	return func(c *realConfig) {
		c.skipDirs = make(map[string]bool, len(names))
		for _, name := range names {
			c.skipDirs[strings.ToLower(name)] = true
		}
	}
}

// Real is an Item backed by the on-disk filesystem.
type Real struct {
	path string
	info fs.FileInfo
	cfg  *realConfig
}

// NewReal returns the item for path. Relative paths are made absolute and
// symbolic links are resolved when possible.
func NewReal(path string, opts ...RealOption) *Real {
	cfg := &realConfig{}
	WithSkipDirs(DefaultSkipDirs...)(cfg)
	for _, opt := range opts {
		opt(cfg)
	}
	return &Real{path: canonical(path), cfg: cfg}
}

// With returns a copy of r whose listings apply opts on top of the current
// settings.
func (r *Real) With(opts ...RealOption) *Real {
	cfg := *r.cfg
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Real{path: r.path, info: r.info, cfg: &cfg}
}

// ShowsHidden reports whether dot files are listed.
func (r *Real) ShowsHidden() bool {
	return r.cfg.showHidden
}

func canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

func (r *Real) child(name string, info fs.FileInfo) *Real {
	return &Real{path: filepath.Join(r.path, name), info: info, cfg: r.cfg}
}

func (r *Real) stat() fs.FileInfo {
	if r.info == nil || r.info.Mode()&fs.ModeSymlink != 0 {
		if info, err := os.Stat(r.path); err == nil {
			r.info = info
		}
	}
	return r.info
}

// Name returns the base name, or the volume root itself at a root.
func (r *Real) Name() string {
	if r.IsFileSystemRoot() {
		return r.path
	}
	return filepath.Base(r.path)
}

func (r *Real) CanonicalPath() string {
	return r.path
}

func (r *Real) RealDir() string {
	if r.IsDirectory() {
		return r.path
	}
	return filepath.Dir(r.path)
}

func (r *Real) Children(includeParentLink bool) ([]Item, error) {
	var items []Item
	if includeParentLink {
		if parent := r.Parent(); parent != nil {
			items = append(items, NewParentLink(parent))
		}
	}
	if !r.IsDirectory() {
		if _, err := os.Stat(r.path); err != nil {
			return nil, err
		}
		return items, nil
	}

	entries, err := os.ReadDir(r.path)
	if err != nil {
		return nil, err
	}

	children := make([]Item, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if r.shouldSkip(name, entry.IsDir()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		children = append(children, r.child(name, info))
	}
	slices.SortFunc(children, Compare)
	return append(items, children...), nil
}

func (r *Real) shouldSkip(name string, isDir bool) bool {
	if !r.cfg.showHidden && strings.HasPrefix(name, ".") {
		return true
	}
	return isDir && r.cfg.skipDirs[strings.ToLower(name)]
}

func (r *Real) Parent() Item {
	if r.IsFileSystemRoot() {
		return nil
	}
	return &Real{path: filepath.Dir(r.path), cfg: r.cfg}
}

func (r *Real) IsDirectory() bool {
	info := r.stat()
	return info != nil && info.IsDir()
}

func (r *Real) IsFileSystemRoot() bool {
	return filepath.Dir(r.path) == r.path
}

func (r *Real) ModifiedTime() time.Time {
	if info := r.stat(); info != nil {
		return info.ModTime()
	}
	return time.Time{}
}

func (r *Real) SizeBytes() uint64 {
	info := r.stat()
	if info == nil || info.IsDir() || info.Size() < 0 {
		return 0
	}
	return uint64(info.Size())
}

func (r *Real) Compare(other Item) int {
	return Compare(r, other)
}
