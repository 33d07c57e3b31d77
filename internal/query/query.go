// Package query compiles a raw query string into match clauses. The
// compiler is total: any input, including the empty string and garbage
// quoting, compiles to a valid (possibly empty) query.
package query

import (
	"strings"
	"unicode"

	"github.com/asheshgoplani/sift/internal/matcher"
)

// Mode selects the matching algorithm for one clause.
type Mode int

const (
	ModeFuzzy  Mode = iota // subsequence match, the default
	ModeExact              // 'term — contiguous substring
	ModePrefix             // ^term
	ModeSuffix             // term$
	ModeEqual              // ^term$
)

// Clause is one parsed unit of the query: a term, how it matches, and
// whether the item must NOT match it.
type Clause struct {
	Term          string
	Mode          Mode
	Inverse       bool
	CaseSensitive bool

	runes []rune
}

// TermRunes returns the term as runes, lowercased when the clause is
// case-insensitive.
func (c Clause) TermRunes() []rune {
	return c.runes
}

// Match runs the clause's algorithm over text. For inverse clauses the
// caller interprets ok=true as exclusion.
func (c Clause) Match(text []rune) (matcher.Result, bool) {
	switch c.Mode {
	case ModeExact:
		return matcher.Exact(text, c.runes, c.CaseSensitive)
	case ModePrefix:
		return matcher.Prefix(text, c.runes, c.CaseSensitive)
	case ModeSuffix:
		return matcher.Suffix(text, c.runes, c.CaseSensitive)
	case ModeEqual:
		return matcher.Equal(text, c.runes, c.CaseSensitive)
	default:
		return matcher.Fuzzy(text, c.runes, c.CaseSensitive)
	}
}

// Query is an ordered conjunction of clauses: an item matches iff it
// matches every positive clause and no inverse clause.
type Query struct {
	Raw     string
	Clauses []Clause
}

// Empty reports whether the query has no clauses, in which case every
// item matches with a neutral score.
func (q Query) Empty() bool {
	return len(q.Clauses) == 0
}

// Compile parses raw into a Query. Grammar, applied per
// whitespace-separated token (backslash escapes a space inside a term):
//
//	!term   inverse (item must not match)
//	'term   exact substring instead of fuzzy
//	^term   anchored to the start
//	term$   anchored to the end
//	^term$  whole-line match
//
// Prefixes combine (!'foo, !^foo). Empty terms (a lone "!" or "'") are
// dropped; stray quotes are literal text. Case sensitivity is
// smart-case: a clause is case-sensitive iff its term contains an
// uppercase rune.
func Compile(raw string) Query {
	q := Query{Raw: raw}
	for _, token := range splitTerms(raw) {
		c, ok := parseClause(token)
		if !ok {
			continue
		}
		q.Clauses = append(q.Clauses, c)
	}
	return q
}

func parseClause(token string) (Clause, bool) {
	c := Clause{Mode: ModeFuzzy}

	if strings.HasPrefix(token, "!") {
		c.Inverse = true
		token = token[1:]
	}
	switch {
	case strings.HasPrefix(token, "'"):
		c.Mode = ModeExact
		token = token[1:]
		// A matched closing quote is part of the wrapper, an unmatched
		// one is literal.
		token = strings.TrimSuffix(token, "'")
	case strings.HasPrefix(token, "^"):
		c.Mode = ModePrefix
		token = token[1:]
		if strings.HasSuffix(token, "$") && len(token) > 1 {
			c.Mode = ModeEqual
			token = token[:len(token)-1]
		}
	case strings.HasSuffix(token, "$") && len(token) > 1:
		c.Mode = ModeSuffix
		token = token[:len(token)-1]
	}

	if token == "" {
		return Clause{}, false
	}
	c.Term = token
	c.CaseSensitive = hasUpper(token)
	c.runes = []rune(token)
	if !c.CaseSensitive {
		for i, r := range c.runes {
			c.runes[i] = unicode.ToLower(r)
		}
	}
	return c, true
}

// splitTerms splits on unescaped whitespace; "\ " keeps a literal space
// inside a term. Runs of whitespace collapse.
func splitTerms(raw string) []string {
	var terms []string
	var cur strings.Builder
	escaped := false
	for _, r := range raw {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case unicode.IsSpace(r):
			if cur.Len() > 0 {
				terms = append(terms, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		cur.WriteRune('\\')
	}
	if cur.Len() > 0 {
		terms = append(terms, cur.String())
	}
	return terms
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
