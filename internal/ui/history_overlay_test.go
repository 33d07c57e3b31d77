package ui

import (
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func newTestOverlay(entries []string) *historyOverlay {
	o := &historyOverlay{input: textinput.New(), entries: entries}
	o.filter()
	return o
}

func TestOverlayEmptyQueryShowsAll(t *testing.T) {
	o := newTestOverlay([]string{"foo", "bar", "baz"})
	assert.Equal(t, []string{"foo", "bar", "baz"}, o.matches)
}

func TestOverlayFilterNarrows(t *testing.T) {
	o := newTestOverlay([]string{"config watcher", "scan loop", "wal checkpoint"})
	o.input.SetValue("wa")
	o.filter()

	for _, m := range o.matches {
		assert.Contains(t, []string{"config watcher", "wal checkpoint"}, m)
	}
	assert.NotContains(t, o.matches, "scan loop")
}

func TestOverlayFilterResetsCursorWhenOutOfRange(t *testing.T) {
	o := newTestOverlay([]string{"alpha", "beta", "gamma"})
	o.cursor = 2
	o.input.SetValue("alpha")
	o.filter()
	assert.Equal(t, 0, o.cursor)
}

func TestOverlayEnterPicksEntry(t *testing.T) {
	o := newTestOverlay([]string{"first", "second"})
	o.cursor = 1

	entry, closed, _ := o.update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, closed)
	assert.Equal(t, "second", entry)
}

func TestOverlayEscDismisses(t *testing.T) {
	o := newTestOverlay([]string{"first"})

	entry, closed, _ := o.update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, closed)
	assert.Empty(t, entry)
}

func TestOverlayCursorMovement(t *testing.T) {
	o := newTestOverlay([]string{"a", "b", "c"})

	o.update(tea.KeyMsg{Type: tea.KeyDown})
	o.update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, o.cursor)

	// Clamped at the last entry.
	o.update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, o.cursor)

	o.update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, o.cursor)
}

func TestOverlayViewListsEntries(t *testing.T) {
	o := newTestOverlay([]string{"recent query"})
	out := o.view(80, 24)
	assert.Contains(t, out, "recent query")
	assert.Contains(t, out, "Query history")
}
