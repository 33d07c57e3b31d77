package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/asheshgoplani/sift/internal/history"
)

// historyOverlay is the ctrl-r recall panel: past queries, filtered
// fuzzily as the user types, most recent first.
type historyOverlay struct {
	input   textinput.Model
	entries []string
	matches []string
	cursor  int
}

const historyOverlayRows = 15

func newHistoryOverlay(store *history.Store) *historyOverlay {
	ti := textinput.New()
	ti.Prompt = "history> "
	ti.Focus()

	entries, err := store.Recent(history.DefaultLimit)
	if err != nil {
		uiLog.Warn("history load failed", "err", err)
	}
	o := &historyOverlay{input: ti, entries: entries}
	o.filter()
	return o
}

// filter narrows entries by the overlay's own query. Recall is a
// convenience surface, so the stock sahilm/fuzzy ranking is enough
// here; the engine's matcher stays reserved for item scanning.
func (o *historyOverlay) filter() {
	needle := o.input.Value()
	if needle == "" {
		o.matches = o.entries
	} else {
		ranked := fuzzy.Find(needle, o.entries)
		o.matches = make([]string, len(ranked))
		for i, m := range ranked {
			o.matches[i] = m.Str
		}
	}
	if o.cursor >= len(o.matches) {
		o.cursor = 0
	}
}

// update handles one key. closed reports the overlay is done; entry is
// the chosen query ("" when dismissed).
func (o *historyOverlay) update(msg tea.KeyMsg) (entry string, closed bool, cmd tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c", "ctrl+r":
		return "", true, nil
	case "enter":
		if o.cursor < len(o.matches) {
			return o.matches[o.cursor], true, nil
		}
		return "", true, nil
	case "up", "ctrl+k":
		if o.cursor > 0 {
			o.cursor--
		}
		return "", false, nil
	case "down", "ctrl+j":
		if o.cursor < len(o.matches)-1 {
			o.cursor++
		}
		return "", false, nil
	default:
		o.input, cmd = o.input.Update(msg)
		o.filter()
		return "", false, cmd
	}
}

func (o *historyOverlay) view(width, height int) string {
	var b strings.Builder
	b.WriteString(promptStyle.Render("Query history"))
	b.WriteString("\n\n")
	b.WriteString(o.input.View())
	b.WriteString("\n\n")

	rows := historyOverlayRows
	if height > 0 && height-5 < rows {
		rows = height - 5
	}
	for i := 0; i < len(o.matches) && i < rows; i++ {
		if i == o.cursor {
			b.WriteString(cursorRowStyle.Render("> " + o.matches[i]))
		} else {
			b.WriteString(rowStyle.Render("  " + o.matches[i]))
		}
		b.WriteString("\n")
	}
	if len(o.matches) == 0 {
		b.WriteString(helpStyle.Render("  no matching history"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("  [enter] use  [esc] back"))
	return b.String()
}
