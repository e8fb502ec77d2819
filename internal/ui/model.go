package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	styles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"github.com/kyaoi/arcview/internal/tree"
)

// ErrNotBrowsable is returned by a DescendFunc for items that cannot be
// opened as a directory.
var ErrNotBrowsable = errors.New("not a directory or archive")

const (
	headerHeight      = 1
	minListWidth      = 20
	minDetailsWidth   = 24
	defaultPanelWidth = 48
)

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7"))
	listLineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#a9b1d6"))
	listDirStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#7dcfff"))
	listSelected     = lipgloss.NewStyle().Foreground(lipgloss.Color("#1a1b26")).Background(lipgloss.Color("#7aa2f7")).Bold(true)
	listBorderColor  = lipgloss.Color("#3b4261")
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff6b6b"))
	helpBoxStyle     = lipgloss.NewStyle().Padding(1, 2).BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#7aa2f7"))
	filterBarStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#a9b1d6")).Background(lipgloss.Color("#1f2335"))
	detailsPaneStyle = lipgloss.NewStyle().Padding(0, 1)
)

const helpMarkdown = `# Keys

| key | action |
|---|---|
| j / k | move selection |
| gg / G | first / last entry |
| ctrl+d / ctrl+u | half page down / up |
| enter / l | open directory or archive |
| h / backspace | go up |
| / | filter by name |
| esc | clear filter |
| . | toggle hidden files |
| d | toggle details |
| ? | close help |
| q | quit |
`

// Model implements the Bubble Tea program for the browser.
type Model struct {
	listVP     viewport.Model
	detailsVP  viewport.Model
	renderer   *glamour.TermRenderer
	panelWidth int
	width      int
	height     int
	pendingKey string
	showHelp   bool
	details    bool
	err        error

	current   tree.Item
	items     []tree.Item
	visible   []int
	selection int
	descend   DescendFunc
	logger    *slog.Logger

	filterInput textinput.Model
	filtering   bool
	filter      string

	watcher   *fsnotify.Watcher
	watchDir  string
	watchChan chan tea.Msg
	watchDone chan struct{}
	waiting   bool
}

type dirEventMsg struct {
	path string
	op   fsnotify.Op
}

type dirWatchErrMsg struct {
	err error
}

// NewModel constructs the browser model with the provided initial state.
func NewModel(state State) *Model {
	listVP := viewport.New(0, 0)
	listVP.Style = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderRight(true).BorderForeground(listBorderColor)
	listVP.MouseWheelEnabled = false

	detailsVP := viewport.New(0, 0)
	detailsVP.Style = detailsPaneStyle

	m := &Model{
		listVP:     listVP,
		detailsVP:  detailsVP,
		panelWidth: state.PanelWidth,
		details:    state.ShowDetails,
		descend:    state.Descend,
		logger:     state.Logger,
	}
	if m.panelWidth <= 0 {
		m.panelWidth = defaultPanelWidth
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}

	filterInput := textinput.New()
	filterInput.Prompt = "/"
	filterInput.CharLimit = 256
	filterInput.Placeholder = "name"
	filterInput.Blur()
	m.filterInput = filterInput

	if state.Current != nil {
		m.load(state.Current, state.SelectionName)
	}
	return m
}

// Current returns the item whose children are listed.
func (m *Model) Current() tree.Item {
	return m.current
}

// Selected returns the highlighted item, or nil for an empty listing.
func (m *Model) Selected() tree.Item {
	if m.selection < 0 || m.selection >= len(m.visible) {
		return nil
	}
	return m.items[m.visible[m.selection]]
}

// Err returns the last error shown in the status line.
func (m *Model) Err() error {
	return m.err
}

// Close stops watching the filesystem and releases a pending wait.
func (m *Model) Close() error {
	if m.watchDone != nil {
		close(m.watchDone)
		m.watchDone = nil
	}
	m.waiting = false
	if m.watcher == nil {
		return nil
	}
	err := m.watcher.Close()
	m.watcher = nil
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.watchCurrent()
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.showHelp {
		help := m.renderMarkdown(helpMarkdown, 0)
		box := helpBoxStyle.Render(strings.TrimSpace(help))
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
		}
		return box
	}

	header := headerStyle.Render(m.headerPath())
	body := m.listVP.View()
	if m.details {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.detailsVP.View())
	}
	view := lipgloss.JoinVertical(lipgloss.Left, header, body)

	if m.err != nil {
		view = lipgloss.JoinVertical(lipgloss.Left, view, errorStyle.Render(m.err.Error()))
	}
	if m.filtering {
		view = lipgloss.JoinVertical(lipgloss.Left, view, filterBarStyle.Render(m.filterInput.View()))
	} else if m.filter != "" {
		status := fmt.Sprintf("/%s (%d/%d)", m.filter, len(m.visible), len(m.items))
		view = lipgloss.JoinVertical(lipgloss.Left, view, filterBarStyle.Render(status))
	}
	return view
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dirEventMsg:
		m.waiting = false
		return m, m.handleDirEvent(msg)
	case dirWatchErrMsg:
		m.waiting = false
		m.err = msg.err
		return m, m.waitForDirEvent()
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			switch msg.Type {
			case tea.KeyEnter:
				m.exitFilterMode()
				return m, nil
			case tea.KeyEsc, tea.KeyCtrlC:
				m.exitFilterMode()
				m.setFilter("")
				return m, nil
			}
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			m.setFilter(m.filterInput.Value())
			return m, cmd
		}

		key := msg.String()
		if key != "g" {
			m.pendingKey = ""
		}

		if m.showHelp {
			switch key {
			case "q", "?", "esc":
				m.showHelp = false
			}
			return m, nil
		}

		switch key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "?":
			m.showHelp = true
			return m, nil
		case "d":
			m.details = !m.details
			m.resize(m.width, m.height)
			m.refresh()
			return m, nil
		case "/":
			return m, m.enterFilterMode()
		case "esc":
			m.setFilter("")
			return m, nil
		case ".":
			m.toggleHidden()
			return m, nil
		case "j", "down":
			m.moveSelection(1)
		case "k", "up":
			m.moveSelection(-1)
		case "ctrl+d":
			m.moveSelection(max(1, m.listVP.Height/2))
		case "ctrl+u":
			m.moveSelection(-max(1, m.listVP.Height/2))
		case "g":
			if m.pendingKey == "g" {
				m.pendingKey = ""
				m.moveSelection(-len(m.visible))
			} else {
				m.pendingKey = "g"
			}
		case "G":
			m.moveSelection(len(m.visible))
		case "enter", "l", "right":
			return m, m.openSelected()
		case "h", "left", "backspace":
			return m, m.ascend()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.listVP, cmd = m.listVP.Update(msg)
	return m, cmd
}

func (m *Model) resize(width, height int) {
	if width <= 0 || height <= headerHeight {
		return
	}
	m.width = width
	m.height = height

	listWidth := width
	if m.details {
		listWidth = clamp(m.panelWidth, minListWidth, max(width-minDetailsWidth, minListWidth))
	}
	bodyHeight := max(height-headerHeight-1, 1)
	m.listVP.Width = listWidth
	m.listVP.Height = bodyHeight
	m.detailsVP.Width = max(width-listWidth, 0)
	m.detailsVP.Height = bodyHeight

	wrap := m.detailsVP.Width - m.detailsVP.Style.GetHorizontalFrameSize()
	renderer, err := newRenderer(max(wrap, 0))
	if err != nil {
		m.err = err
		return
	}
	m.renderer = renderer
	m.refresh()
}

// load lists item and makes it current. On failure the previous listing
// stays and the error is shown.
func (m *Model) load(item tree.Item, selectName string) bool {
	items, err := tree.List(item)
	if err != nil {
		m.err = err
		m.logger.Warn("list failed", slog.String("path", item.CanonicalPath()), slog.Any("error", err))
		return false
	}
	m.err = nil
	m.current = item
	m.items = items
	m.filter = ""
	m.filterInput.SetValue("")
	m.applyFilter()
	m.selectName(selectName)
	m.refresh()
	return true
}

func (m *Model) reload() {
	var name string
	if sel := m.Selected(); sel != nil {
		name = sel.Name()
	}
	filter := m.filter
	if !m.load(m.current, name) {
		return
	}
	if filter != "" {
		m.setFilter(filter)
		m.selectName(name)
		m.refresh()
	}
}

func (m *Model) openSelected() tea.Cmd {
	sel := m.Selected()
	if sel == nil {
		return nil
	}
	if sel.Name() == tree.ParentName {
		return m.ascend()
	}

	target := sel
	if m.descend != nil {
		var err error
		target, err = m.descend(sel)
		if errors.Is(err, ErrNotBrowsable) {
			return nil
		}
		if err != nil {
			m.err = err
			m.logger.Warn("open failed", slog.String("path", sel.CanonicalPath()), slog.Any("error", err))
			return nil
		}
	} else if !sel.IsDirectory() {
		return nil
	}
	if !m.load(target, "") {
		return nil
	}
	return m.watchCurrent()
}

func (m *Model) ascend() tea.Cmd {
	if m.current == nil {
		return nil
	}
	parent := m.current.Parent()
	if parent == nil {
		return nil
	}
	if !m.load(parent, m.current.Name()) {
		return nil
	}
	return m.watchCurrent()
}

// toggleHidden re-lists a real directory with dot files shown or hidden.
// Archive listings have no hidden entries.
func (m *Model) toggleHidden() {
	r, ok := m.current.(*tree.Real)
	if !ok {
		return
	}
	var name string
	if sel := m.Selected(); sel != nil {
		name = sel.Name()
	}
	m.load(r.With(tree.WithShowHidden(!r.ShowsHidden())), name)
}

func (m *Model) moveSelection(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.selection = clamp(m.selection+delta, 0, len(m.visible)-1)
	m.refresh()
}

func (m *Model) selectName(name string) {
	m.selection = 0
	if name == "" {
		return
	}
	for i, idx := range m.visible {
		if m.items[idx].Name() == name {
			m.selection = i
			return
		}
	}
}

func (m *Model) enterFilterMode() tea.Cmd {
	m.filtering = true
	m.filterInput.SetValue(m.filter)
	m.filterInput.CursorEnd()
	return m.filterInput.Focus()
}

func (m *Model) exitFilterMode() {
	m.filtering = false
	m.filterInput.Blur()
}

func (m *Model) setFilter(filter string) {
	var name string
	if sel := m.Selected(); sel != nil {
		name = sel.Name()
	}
	m.filter = strings.TrimSpace(filter)
	m.applyFilter()
	m.selectName(name)
	m.refresh()
}

func (m *Model) applyFilter() {
	m.visible = m.visible[:0]
	query := strings.ToLower(m.filter)
	for i, item := range m.items {
		if query == "" || item.Name() == tree.ParentName || strings.Contains(strings.ToLower(item.Name()), query) {
			m.visible = append(m.visible, i)
		}
	}
}

func (m *Model) refresh() {
	m.updateList()
	m.updateDetails()
}

func (m *Model) updateList() {
	width := m.listVP.Width - m.listVP.Style.GetHorizontalFrameSize()
	if width <= 0 {
		width = minListWidth
	}
	var b strings.Builder
	for i, idx := range m.visible {
		item := m.items[idx]
		row := formatRow(item, width)
		switch {
		case i == m.selection:
			b.WriteString(listSelected.Render(row))
		case item.IsDirectory():
			b.WriteString(listDirStyle.Render(row))
		default:
			b.WriteString(listLineStyle.Render(row))
		}
		if i < len(m.visible)-1 {
			b.WriteByte('\n')
		}
	}
	m.listVP.SetContent(b.String())
	m.ensureSelectionVisible()
}

func (m *Model) updateDetails() {
	if !m.details {
		return
	}
	sel := m.Selected()
	if sel == nil {
		m.detailsVP.SetContent("")
		return
	}
	m.detailsVP.SetContent(m.renderMarkdown(detailsMarkdown(tree.Resolve(sel)), m.detailsVP.Width))
	m.detailsVP.GotoTop()
}

func (m *Model) renderMarkdown(md string, width int) string {
	renderer := m.renderer
	if renderer == nil || width == 0 {
		r, err := newRenderer(width)
		if err != nil {
			return md
		}
		renderer = r
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

func (m *Model) ensureSelectionVisible() {
	if len(m.visible) == 0 || m.listVP.Height == 0 {
		return
	}
	if m.selection < m.listVP.YOffset {
		m.listVP.SetYOffset(m.selection)
		return
	}
	bottom := m.listVP.YOffset + m.listVP.Height - 1
	if m.selection > bottom {
		m.listVP.SetYOffset(m.selection - m.listVP.Height + 1)
	}
}

func (m *Model) headerPath() string {
	if m.current == nil {
		return ""
	}
	if loc, ok := m.current.(interface{ Location() string }); ok {
		return loc.Location()
	}
	return m.current.CanonicalPath()
}

func newRenderer(width int) (*glamour.TermRenderer, error) {
	return glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.TokyoNightStyle),
		glamour.WithWordWrap(width),
	)
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

// watchCurrent watches the listed directory when it lives on disk and stops
// watching otherwise.
func (m *Model) watchCurrent() tea.Cmd {
	r, ok := m.current.(*tree.Real)
	if !ok || !r.IsDirectory() {
		m.unwatch()
		return nil
	}
	dir := filepath.Clean(r.CanonicalPath())
	if dir == m.watchDir {
		return nil
	}
	if err := m.ensureWatcher(); err != nil {
		m.err = err
		return nil
	}
	m.unwatch()
	if err := m.watcher.Add(dir); err != nil {
		m.err = err
		return nil
	}
	m.watchDir = dir
	m.logger.Debug("watching directory", slog.String("dir", dir))
	return m.waitForDirEvent()
}

func (m *Model) unwatch() {
	if m.watcher != nil && m.watchDir != "" {
		_ = m.watcher.Remove(m.watchDir)
	}
	m.watchDir = ""
}

func (m *Model) ensureWatcher() error {
	if m.watcher != nil {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	m.watcher = watcher
	m.watchChan = make(chan tea.Msg, 10)
	m.watchDone = make(chan struct{})

	go m.watchLoop(watcher)
	return nil
}

func (m *Model) watchLoop(watcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			select {
			case m.watchChan <- dirEventMsg{path: event.Name, op: event.Op}:
			default:
				// A reload is already pending.
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			select {
			case m.watchChan <- dirWatchErrMsg{err: err}:
			default:
			}
		}
	}
}

// waitForDirEvent returns the command receiving the next watch message. Only
// one is outstanding at a time; handling its message arms the next.
func (m *Model) waitForDirEvent() tea.Cmd {
	if m.watchChan == nil || m.watchDone == nil || m.waiting {
		return nil
	}
	m.waiting = true
	ch, done := m.watchChan, m.watchDone
	return func() tea.Msg {
		select {
		case msg := <-ch:
			return msg
		case <-done:
			return nil
		}
	}
}

func (m *Model) handleDirEvent(msg dirEventMsg) tea.Cmd {
	if m.watchDir == "" || filepath.Dir(filepath.Clean(msg.path)) != m.watchDir {
		return m.waitForDirEvent()
	}
	m.logger.Debug("directory changed", slog.String("path", msg.path), slog.String("op", msg.op.String()))
	m.reload()
	return m.waitForDirEvent()
}
