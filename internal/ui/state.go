package ui

import (
	"log/slog"

	"github.com/kyaoi/arcview/internal/tree"
)

// DescendFunc resolves the item to show when the user opens item. It returns
// ErrNotBrowsable for plain files.
type DescendFunc func(item tree.Item) (tree.Item, error)

// State contains the data required to bootstrap the Bubble Tea model.
type State struct {
	Current       tree.Item
	SelectionName string
	PanelWidth    int
	ShowDetails   bool
	Descend       DescendFunc
	Logger        *slog.Logger
}
