package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kyaoi/arcview/internal/archive"
	"github.com/kyaoi/arcview/internal/config"
	"github.com/kyaoi/arcview/internal/tree"
	"github.com/kyaoi/arcview/internal/ui"
)

// Navigator resolves paths and selections to browsable items. Opened
// archives are cached; their trees are immutable once built.
type Navigator struct {
	cfg    config.Config
	logger *slog.Logger

	group singleflight.Group
	mu    sync.Mutex
	trees map[string]*archive.Tree
}

// NewNavigator returns a navigator using cfg. A nil logger discards output.
func NewNavigator(cfg config.Config, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Navigator{
		cfg:    cfg,
		logger: logger,
		trees:  make(map[string]*archive.Tree),
	}
}

// Open returns the item for path. Archive files open as their root, and a
// path continuing past an archive ("bundle.zip/docs") opens the node inside.
func (n *Navigator) Open(path string) (tree.Item, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err == nil {
		if !info.IsDir() && n.cfg.IsArchive(abs) {
			return n.archiveRoot(abs)
		}
		return tree.NewReal(abs, n.cfg.RealOptions()...), nil
	}
	if archivePath, inner, ok := n.splitArchivePath(abs); ok {
		t, err := n.OpenArchive(archivePath)
		if err != nil {
			return nil, err
		}
		return t.Lookup(inner)
	}
	return nil, err
}

// splitArchivePath finds the archive file that is a prefix of path.
func (n *Navigator) splitArchivePath(path string) (string, string, bool) {
	for dir := path; ; {
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", false
		}
		if n.cfg.IsArchive(dir) {
			if info, err := os.Stat(dir); err == nil && info.Mode().IsRegular() {
				inner := strings.TrimPrefix(path[len(dir):], string(filepath.Separator))
				return dir, filepath.ToSlash(inner), true
			}
		}
		dir = parent
	}
}

// Descend returns the item to list when item is opened: directories as they
// are, archive files as their root. Other files yield ui.ErrNotBrowsable.
func (n *Navigator) Descend(item tree.Item) (tree.Item, error) {
	item = tree.Resolve(item)
	if item.IsDirectory() {
		return item, nil
	}
	if r, ok := item.(*tree.Real); ok && n.cfg.IsArchive(r.Name()) {
		return n.archiveRoot(r.CanonicalPath())
	}
	return nil, fmt.Errorf("%s: %w", item.Name(), ui.ErrNotBrowsable)
}

func (n *Navigator) archiveRoot(path string) (tree.Item, error) {
	t, err := n.OpenArchive(path)
	if err != nil {
		return nil, err
	}
	return t.Root()
}

// OpenArchive reads and builds the archive at path, reusing an earlier
// result. Paths are compared after resolving symbolic links. Concurrent
// calls for the same archive share one read.
func (n *Navigator) OpenArchive(path string) (*archive.Tree, error) {
	path = archiveKey(path)
	n.mu.Lock()
	t, ok := n.trees[path]
	n.mu.Unlock()
	if ok {
		return t, nil
	}

	v, err, _ := n.group.Do(path, func() (any, error) {
		t, err := archive.OpenZip(path,
			archive.WithLogger(n.logger),
			archive.WithLenient(!n.cfg.Strict),
			archive.WithRealOptions(n.cfg.RealOptions()...))
		if err != nil {
			return nil, err
		}
		n.mu.Lock()
		n.trees[path] = t
		n.mu.Unlock()
		return t, nil
	})
	if err != nil {
		n.logger.Error("open archive failed", slog.String("archive", path), slog.Any("error", err))
		return nil, err
	}
	return v.(*archive.Tree), nil
}

func archiveKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
