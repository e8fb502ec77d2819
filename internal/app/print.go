package app

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	ltree "github.com/charmbracelet/lipgloss/tree"

	"github.com/kyaoi/arcview/internal/tree"
	"github.com/kyaoi/arcview/internal/ui"
)

// PrintTree writes item and its descendants as an indented outline. A
// negative maxDepth prints everything.
func PrintTree(w io.Writer, item tree.Item, maxDepth int) error {
	outline, err := outlineOf(item, 0, maxDepth)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, outline.String())
	return err
}

func outlineOf(item tree.Item, depth, maxDepth int) (*ltree.Tree, error) {
	node := ltree.Root(ui.DisplayName(item))
	if !item.IsDirectory() || (maxDepth >= 0 && depth >= maxDepth) {
		return node, nil
	}
	children, err := item.Children(false)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		if !child.IsDirectory() {
			node.Child(ui.DisplayName(child))
			continue
		}
		sub, err := outlineOf(child, depth+1, maxDepth)
		if err != nil {
			return nil, err
		}
		node.Child(sub)
	}
	return node, nil
}

// PrintPaths writes the canonical path of every item below item, one per
// line, in listing order.
func PrintPaths(w io.Writer, item tree.Item, maxDepth int) error {
	return tree.Walk(item, maxDepth, func(it tree.Item, depth int) error {
		if depth == 0 {
			return nil
		}
		_, err := fmt.Fprintln(w, ui.DisplayName(pathItem{it}))
		return err
	})
}

// pathItem shows the canonical path where a listing shows the name.
type pathItem struct {
	tree.Item
}

func (p pathItem) Name() string { return p.CanonicalPath() }

// PrintListing writes the children of item with size and time columns.
func PrintListing(w io.Writer, item tree.Item) error {
	children, err := item.Children(false)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(children))
	for _, child := range children {
		rows = append(rows, []string{
			ui.DisplayName(child),
			ui.FormatSize(child),
			ui.FormatTime(child.ModifiedTime()),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "SIZE", "MODIFIED").
		Rows(rows...)
	_, err = fmt.Fprintln(w, t.Render())
	return err
}
