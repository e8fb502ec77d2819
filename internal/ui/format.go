package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	units "github.com/docker/go-units"

	"github.com/kyaoi/arcview/internal/tree"
)

const (
	sizeColumnWidth = 9
	timeColumnWidth = 16
	timeLayout      = "2006-01-02 15:04"
)

// FormatSize renders a byte count for listings. Directories show "<dir>".
func FormatSize(item tree.Item) string {
	if item.IsDirectory() {
		return "<dir>"
	}
	return units.HumanSize(float64(item.SizeBytes()))
}

// FormatTime renders a modification time, or "-" when unknown.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// DisplayName returns the name with a trailing "/" for directories.
func DisplayName(item tree.Item) string {
	name := item.Name()
	if item.IsDirectory() && name != tree.ParentName && !strings.HasSuffix(name, "/") {
		name += "/"
	}
	return name
}

// formatRow lays out name, size and time columns in width cells.
func formatRow(item tree.Item, width int) string {
	nameWidth := width - sizeColumnWidth - timeColumnWidth - 2
	if nameWidth < 4 {
		return ansi.Truncate(DisplayName(item), max(width, 1), "…")
	}
	name := ansi.Truncate(DisplayName(item), nameWidth, "…")
	name += strings.Repeat(" ", nameWidth-lipgloss.Width(name))

	size, when := "", ""
	if item.Name() != tree.ParentName {
		size = FormatSize(item)
		when = FormatTime(item.ModifiedTime())
	}
	return fmt.Sprintf("%s %*s %-*s", name, sizeColumnWidth, ansi.Truncate(size, sizeColumnWidth, ""), timeColumnWidth, when)
}

// detailsMarkdown describes item as a small markdown document.
func detailsMarkdown(item tree.Item) string {
	kind := "file"
	if item.IsDirectory() {
		kind = "directory"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", item.Name())
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Path | `%s` |\n", item.CanonicalPath())
	fmt.Fprintf(&b, "| Location | `%s` |\n", item.RealDir())
	fmt.Fprintf(&b, "| Type | %s |\n", kind)
	if !item.IsDirectory() {
		fmt.Fprintf(&b, "| Size | %s (%d bytes) |\n", FormatSize(item), item.SizeBytes())
	}
	fmt.Fprintf(&b, "| Modified | %s |\n", FormatTime(item.ModifiedTime()))
	return b.String()
}
