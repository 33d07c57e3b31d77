package ui

import (
	"os"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	// Plain output so assertions see the text, not escape codes.
	lipgloss.SetColorProfile(termenv.Ascii)
	InitTheme("dark")
	os.Exit(m.Run())
}

func TestHighlightLineFits(t *testing.T) {
	out := HighlightLine([]rune("hello world"), []int{0, 1}, 40, false)
	assert.Contains(t, out, "he")
	assert.Contains(t, out, "llo world")
	assert.NotContains(t, out, "..")
}

func TestHighlightLineTruncatesLongLine(t *testing.T) {
	text := []rune("abcdefghijklmnopqrstuvwxyz")
	out := HighlightLine(text, []int{0}, 10, false)
	assert.Contains(t, out, "..")
	assert.NotContains(t, out, "z")
}

func TestHighlightLineShiftsWindowToFirstMatch(t *testing.T) {
	// Match near the end of a long line must stay visible.
	runes := make([]rune, 0, 120)
	for i := 0; i < 100; i++ {
		runes = append(runes, 'x')
	}
	runes = append(runes, []rune("needle")...)

	out := HighlightLine(runes, []int{100, 101, 102}, 20, false)
	assert.Contains(t, out, "..")
	assert.Contains(t, out, "nee")
}

func TestHighlightLineEmpty(t *testing.T) {
	assert.Equal(t, "", HighlightLine(nil, nil, 40, false))
}

func TestCellWidth(t *testing.T) {
	assert.Equal(t, 3, cellWidth([]rune("abc")))
	assert.Equal(t, 4, cellWidth([]rune("日本"))) // double-width runes
}
