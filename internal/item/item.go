// Package item holds the candidate lines being filtered: an append-only
// store with stable per-item identity and cheap immutable snapshots.
package item

import (
	"strings"
	"unicode"
)

// FieldSpan is a half-open rune range [Start, End) of one field within
// an item's text.
type FieldSpan struct {
	Start int
	End   int
}

// Item is one candidate line. Items are immutable after creation; the
// Index assigned at ingestion is the item's identity for selection and
// ranking tie-breaks.
type Item struct {
	Index int
	Text  string

	runes []rune
	spans []FieldSpan
}

func newItem(index int, text string, delim string) *Item {
	it := &Item{
		Index: index,
		Text:  text,
		runes: []rune(text),
	}
	if delim != "" {
		it.spans = splitSpans(it.runes, delim)
	}
	return it
}

// Runes returns the text as runes. Callers must not mutate the slice.
func (it *Item) Runes() []rune {
	return it.runes
}

// Spans returns the field spans when the store was configured with a
// delimiter, nil otherwise.
func (it *Item) Spans() []FieldSpan {
	return it.spans
}

// Field returns the runes of the n-th field (0-based) and its starting
// rune offset in the full text. ok is false when the field does not
// exist.
func (it *Item) Field(n int) (runes []rune, start int, ok bool) {
	if n < 0 || n >= len(it.spans) {
		return nil, 0, false
	}
	sp := it.spans[n]
	return it.runes[sp.Start:sp.End], sp.Start, true
}

// splitSpans splits text into delimiter-separated fields. A delimiter of
// a single space means "any run of whitespace", matching how lines from
// column-style producers (ps, ls -l) are usually split.
func splitSpans(runes []rune, delim string) []FieldSpan {
	var spans []FieldSpan
	if delim == " " {
		inField := false
		start := 0
		for i, r := range runes {
			if unicode.IsSpace(r) {
				if inField {
					spans = append(spans, FieldSpan{Start: start, End: i})
					inField = false
				}
				continue
			}
			if !inField {
				start = i
				inField = true
			}
		}
		if inField {
			spans = append(spans, FieldSpan{Start: start, End: len(runes)})
		}
		return spans
	}

	dr := []rune(delim)
	start := 0
	for i := 0; i+len(dr) <= len(runes); i++ {
		if !runesEqual(runes[i:i+len(dr)], dr) {
			continue
		}
		spans = append(spans, FieldSpan{Start: start, End: i})
		start = i + len(dr)
		i += len(dr) - 1
	}
	spans = append(spans, FieldSpan{Start: start, End: len(runes)})
	return spans
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TrimLineEnding strips a trailing \n and \r\n from a raw producer line.
func TrimLineEnding(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
