// Package ui is the interactive picker: a query line, the ranked list
// with match highlighting, and multi-selection. It renders to the tty
// (stderr) so stdout stays reserved for the final selection.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/asheshgoplani/sift/internal/config"
	"github.com/asheshgoplani/sift/internal/engine"
	"github.com/asheshgoplani/sift/internal/history"
	"github.com/asheshgoplani/sift/internal/logging"
	"github.com/asheshgoplani/sift/internal/rank"
	"github.com/asheshgoplani/sift/internal/selection"
)

var uiLog = logging.ForComponent(logging.CompUI)

// refreshInterval drives progressive redraw while a scan is running.
const refreshInterval = 50 * time.Millisecond

// Result is what the picker session produced.
type Result struct {
	// Accepted is true when the user confirmed with enter, false on
	// esc/ctrl-c.
	Accepted bool

	// Lines are the selected items' texts, already ordered per the
	// configured output order. Empty when nothing matched.
	Lines []string

	// Query is the raw query at session end, recorded into history.
	Query string
}

type tickMsg time.Time

type configMsg *config.Config

// Options configures a picker session.
type Options struct {
	// InitialQuery pre-fills the query line.
	InitialQuery string

	// Multi enables tab multi-selection.
	Multi bool

	// OutputOrder is how multi-selected lines are emitted.
	OutputOrder selection.Order

	// History, when non-nil, powers the ctrl-r recall overlay.
	History *history.Store

	// Watcher, when non-nil, feeds live config reloads (theme).
	Watcher *config.Watcher
}

// Model is the bubbletea model for the picker.
type Model struct {
	eng  *engine.Engine
	sel  *selection.Set
	opts Options

	input textinput.Model
	spin  spinner.Model

	list   rank.List
	cursor int
	offset int

	overlay *historyOverlay

	width  int
	height int

	result Result
	done   bool
}

// NewModel creates the picker over a running engine.
func NewModel(eng *engine.Engine, sel *selection.Set, opts Options) *Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.SetValue(opts.InitialQuery)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	if opts.InitialQuery != "" {
		eng.SetQuery(opts.InitialQuery)
	}

	return &Model{
		eng:   eng,
		sel:   sel,
		opts:  opts,
		input: ti,
		spin:  sp,
	}
}

// Result returns the session outcome; valid after the program exits.
func (m *Model) Result() Result {
	return m.result
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spin.Tick, tick()}
	if m.opts.Watcher != nil {
		cmds = append(cmds, watchConfig(m.opts.Watcher))
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func watchConfig(w *config.Watcher) tea.Cmd {
	return func() tea.Msg {
		cfg, ok := <-w.Changes()
		if !ok {
			return nil
		}
		return configMsg(cfg)
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case configMsg:
		if msg != nil {
			InitTheme(config.ResolveTheme(msg.Theme))
			uiLog.Debug("theme reloaded", "theme", msg.Theme)
		}
		return m, watchConfig(m.opts.Watcher)

	case tea.KeyMsg:
		if m.overlay != nil {
			return m.updateOverlay(msg)
		}
		return m.updateKey(msg)
	}

	return m, nil
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.result = Result{Accepted: false, Query: m.input.Value()}
		m.done = true
		return m, tea.Quit

	case "enter":
		m.accept()
		return m, tea.Quit

	case "up", "ctrl+k":
		m.moveCursor(-1)
		return m, nil

	case "down", "ctrl+j":
		m.moveCursor(1)
		return m, nil

	case "pgup":
		m.moveCursor(-m.listHeight())
		return m, nil

	case "pgdown":
		m.moveCursor(m.listHeight())
		return m, nil

	case "tab":
		if m.opts.Multi {
			m.toggleCurrent()
			m.moveCursor(1)
		}
		return m, nil

	case "shift+tab":
		if m.opts.Multi {
			m.toggleCurrent()
			m.moveCursor(-1)
		}
		return m, nil

	case "ctrl+a":
		if m.opts.Multi {
			indices := make([]int, len(m.list.Matches))
			for i, match := range m.list.Matches {
				indices[i] = match.Item.Index
			}
			m.sel.SelectAll(indices)
		}
		return m, nil

	case "ctrl+d":
		m.sel.DeselectAll()
		return m, nil

	case "ctrl+r":
		if m.opts.History != nil {
			m.overlay = newHistoryOverlay(m.opts.History)
		}
		return m, nil

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.eng.SetQuery(m.input.Value())
		return m, cmd
	}
}

func (m *Model) updateOverlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entry, closed, cmd := m.overlay.update(msg)
	if closed {
		m.overlay = nil
		if entry != "" {
			m.input.SetValue(entry)
			m.input.CursorEnd()
			m.eng.SetQuery(entry)
		}
	}
	return m, cmd
}

func (m *Model) accept() {
	m.result = Result{Accepted: true, Query: m.input.Value()}
	m.done = true

	if m.opts.Multi && m.sel.Len() > 0 {
		store := m.eng.Store()
		snap := store.Snapshot()
		for _, index := range m.sel.Indices(m.opts.OutputOrder) {
			if index < snap.Len() {
				m.result.Lines = append(m.result.Lines, snap.At(index).Text)
			}
		}
		return
	}
	if m.cursor < len(m.list.Matches) {
		m.result.Lines = []string{m.list.Matches[m.cursor].Item.Text}
	}
}

// refresh pulls the latest ranked list; a stale-generation snapshot
// can't appear here because the merger resets before any new scan
// starts.
func (m *Model) refresh() {
	m.list = m.eng.Snapshot()
	if m.cursor >= len(m.list.Matches) {
		m.cursor = max(0, len(m.list.Matches)-1)
	}
	m.clampScroll()
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if n := len(m.list.Matches); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
	m.clampScroll()
}

func (m *Model) toggleCurrent() {
	if m.cursor < len(m.list.Matches) {
		m.sel.Toggle(m.list.Matches[m.cursor].Item.Index)
	}
}

func (m *Model) listHeight() int {
	h := m.height - 3 // query line, counter line, help line
	if h < 1 {
		h = 10
	}
	return h
}

func (m *Model) clampScroll() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.done {
		return ""
	}
	if m.overlay != nil {
		return m.overlay.view(m.width, m.height)
	}

	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")

	total := m.eng.Store().Len()
	counter := fmt.Sprintf("  %d/%d", len(m.list.Matches), total)
	if m.sel.Len() > 0 {
		counter += fmt.Sprintf(" (%d)", m.sel.Len())
	}
	b.WriteString(counterStyle.Render(counter))
	if m.eng.Running() || !m.eng.Store().Sealed() {
		b.WriteString(" " + m.spin.View())
	}
	b.WriteString("\n")

	h := m.listHeight()
	end := min(m.offset+h, len(m.list.Matches))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.list.Matches[i], i == m.cursor))
		b.WriteString("\n")
	}
	for i := end - m.offset; i < h; i++ {
		b.WriteString("\n")
	}

	help := "  [enter] accept  [esc] cancel"
	if m.opts.Multi {
		help += "  [tab] mark  [ctrl+a] all  [ctrl+d] none"
	}
	if m.opts.History != nil {
		help += "  [ctrl+r] history"
	}
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

func (m *Model) renderRow(match rank.Match, atCursor bool) string {
	marker := "  "
	if m.sel.IsSelected(match.Item.Index) {
		marker = markerStyle.Render("* ")
	}
	pointer := "  "
	if atCursor {
		pointer = promptStyle.Render("> ")
	}

	width := m.width - 4
	if width < 8 {
		width = 76
	}
	line := HighlightLine(match.Item.Runes(), match.Positions, width, atCursor)
	return pointer + marker + line
}
