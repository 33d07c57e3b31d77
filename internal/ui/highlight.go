package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// HighlightLine renders one candidate line into at most width terminal
// cells, styling the matched rune positions. When the first match sits
// past the window, the window shifts so the match stays visible, with a
// ".." marker on the clipped side.
func HighlightLine(text []rune, positions []int, width int, atCursor bool) string {
	base := rowStyle
	if atCursor {
		base = cursorRowStyle
	}

	start := 0
	if len(positions) > 0 && cellWidth(text[:positions[0]+1]) > width-2 {
		// Center the first match in the window.
		start = positions[0] - width/2
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	budget := width
	if start > 0 {
		b.WriteString(helpStyle.Render(".."))
		budget -= 2
	}

	// Group consecutive runes by matched/unmatched to keep the number
	// of styled segments small.
	pi := 0
	for pi < len(positions) && positions[pi] < start {
		pi++
	}
	var seg strings.Builder
	segMatched := false
	flush := func() {
		if seg.Len() == 0 {
			return
		}
		if segMatched {
			b.WriteString(highlightStyle.Render(seg.String()))
		} else {
			b.WriteString(base.Render(seg.String()))
		}
		seg.Reset()
	}

	truncated := false
	for i := start; i < len(text); i++ {
		w := runewidth.RuneWidth(text[i])
		if budget-w < 2 && i < len(text)-1 {
			truncated = true
			break
		}
		if budget < w {
			truncated = true
			break
		}
		matched := pi < len(positions) && positions[pi] == i
		if matched {
			pi++
		}
		if matched != segMatched {
			flush()
			segMatched = matched
		}
		seg.WriteRune(text[i])
		budget -= w
	}
	flush()
	if truncated {
		b.WriteString(helpStyle.Render(".."))
	}
	return b.String()
}

func cellWidth(runes []rune) int {
	w := 0
	for _, r := range runes {
		w += runewidth.RuneWidth(r)
	}
	return w
}
