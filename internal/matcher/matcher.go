// Package matcher implements the per-clause matching algorithms: an
// optimal-alignment fuzzy subsequence scorer and the exact/anchored
// substring family. All functions are pure; positions are rune offsets
// into the candidate text and are used for highlighting only.
package matcher

import "unicode"

// Scoring weights. Tuned so that a boundary-aligned consecutive run
// dominates a scattered alignment of the same characters.
const (
	scoreMatch       = 16
	bonusBoundary    = 8
	bonusCamel       = 7
	bonusConsecutive = 8
	bonusFirstChar   = 2 // multiplier on the first matched char's bonus
	bonusHead        = 4 // decaying bonus for matching near the start
	penaltyGapStart  = 3
	penaltyGapExtend = 1
)

const invalid = -1 << 30

// Result is a successful clause match: an integer score (higher is more
// relevant) and the matched rune offsets in ascending order.
type Result struct {
	Score     int
	Positions []int
}

type charClass int

const (
	classNonWord charClass = iota
	classLower
	classUpper
	classDigit
)

func classOf(r rune) charClass {
	switch {
	case unicode.IsLower(r):
		return classLower
	case unicode.IsUpper(r):
		return classUpper
	case unicode.IsDigit(r):
		return classDigit
	default:
		return classNonWord
	}
}

// bonusAt computes the positional bonus for matching text[j]: a word
// boundary (start of text or after a non-word rune) scores highest, a
// camel-case or letter-digit transition slightly less.
func bonusAt(text []rune, j int) int {
	cur := classOf(text[j])
	if cur == classNonWord {
		return 0
	}
	if j == 0 {
		return bonusBoundary
	}
	prev := classOf(text[j-1])
	switch {
	case prev == classNonWord:
		return bonusBoundary
	case prev == classLower && cur == classUpper:
		return bonusCamel
	case prev != classDigit && cur == classDigit:
		return bonusCamel
	}
	return 0
}

func runesMatch(t, p rune, caseSensitive bool) bool {
	if caseSensitive {
		return t == p
	}
	return unicode.ToLower(t) == unicode.ToLower(p)
}

// Fuzzy reports whether term appears as an ordered subsequence of text
// and, if so, returns the highest-scoring alignment. The score is
// computed over an explicit (term × text) dynamic-programming table so
// the optimal alignment is found, not merely the leftmost subsequence:
// consecutive runs and boundary-aligned matches earn bonuses, gaps pay
// a start + per-rune extension penalty, and an early first match earns
// a small head bonus.
func Fuzzy(text, term []rune, caseSensitive bool) (Result, bool) {
	n, m := len(text), len(term)
	if m == 0 {
		return Result{}, true
	}
	if m > n {
		return Result{}, false
	}

	bonus := make([]int, n)
	for j := 0; j < n; j++ {
		bonus[j] = bonusAt(text, j)
	}

	// score[i][j]: best score aligning term[:i+1] with term[i] matched
	// at text[j]. parent[i][j]: the text position of term[i-1] in that
	// alignment, -1 for the first term rune.
	score := make([][]int, m)
	parent := make([][]int, m)
	for i := range score {
		score[i] = make([]int, n)
		parent[i] = make([]int, n)
		for j := range score[i] {
			score[i][j] = invalid
			parent[i][j] = -1
		}
	}

	for j := 0; j < n; j++ {
		if !runesMatch(text[j], term[0], caseSensitive) {
			continue
		}
		head := bonusHead - j
		if head < 0 {
			head = 0
		}
		score[0][j] = scoreMatch + bonus[j]*bonusFirstChar + head
	}

	for i := 1; i < m; i++ {
		bestGap, bestGapIdx := invalid, -1
		for j := i; j < n; j++ {
			// A candidate at j-2 enters with a gap of one rune; every
			// older candidate's gap grows by one rune per step.
			if bestGap != invalid {
				bestGap -= penaltyGapExtend
			}
			if j >= 2 && score[i-1][j-2] != invalid {
				if cand := score[i-1][j-2] - penaltyGapStart; cand > bestGap {
					bestGap, bestGapIdx = cand, j-2
				}
			}

			if !runesMatch(text[j], term[i], caseSensitive) {
				continue
			}
			base := scoreMatch + bonus[j]

			consec := invalid
			if score[i-1][j-1] != invalid {
				consec = score[i-1][j-1] + bonusConsecutive
			}
			switch {
			case consec == invalid && bestGap == invalid:
				// no way to reach this cell
			case consec >= bestGap:
				score[i][j] = consec + base
				parent[i][j] = j - 1
			default:
				score[i][j] = bestGap + base
				parent[i][j] = bestGapIdx
			}
		}
	}

	bestEnd, bestScore := -1, invalid
	for j := m - 1; j < n; j++ {
		if score[m-1][j] > bestScore {
			bestScore, bestEnd = score[m-1][j], j
		}
	}
	if bestEnd < 0 {
		return Result{}, false
	}

	positions := make([]int, m)
	for i, j := m-1, bestEnd; i >= 0; i-- {
		positions[i] = j
		j = parent[i][j]
	}
	return Result{Score: bestScore, Positions: positions}, true
}

// Exact finds the best occurrence of term as a contiguous substring of
// text. The score grows with match length, prefers boundary-aligned and
// early occurrences, and shrinks as the surrounding text gets longer so
// shorter, more precise lines rank first.
func Exact(text, term []rune, caseSensitive bool) (Result, bool) {
	n, m := len(text), len(term)
	if m == 0 {
		return Result{}, true
	}
	best, bestStart := invalid, -1
	for start := 0; start+m <= n; start++ {
		if !substringAt(text, term, start, caseSensitive) {
			continue
		}
		if s := exactScore(text, start, n, m); s > best {
			best, bestStart = s, start
		}
	}
	if bestStart < 0 {
		return Result{}, false
	}
	return Result{Score: best, Positions: contiguous(bestStart, m)}, true
}

// Prefix matches term anchored at the start of text.
func Prefix(text, term []rune, caseSensitive bool) (Result, bool) {
	n, m := len(text), len(term)
	if m == 0 {
		return Result{}, true
	}
	if m > n || !substringAt(text, term, 0, caseSensitive) {
		return Result{}, false
	}
	return Result{Score: exactScore(text, 0, n, m), Positions: contiguous(0, m)}, true
}

// Suffix matches term anchored at the end of text.
func Suffix(text, term []rune, caseSensitive bool) (Result, bool) {
	n, m := len(text), len(term)
	if m == 0 {
		return Result{}, true
	}
	start := n - m
	if start < 0 || !substringAt(text, term, start, caseSensitive) {
		return Result{}, false
	}
	return Result{Score: exactScore(text, start, n, m), Positions: contiguous(start, m)}, true
}

// Equal matches the whole text against term (a clause anchored at both
// ends).
func Equal(text, term []rune, caseSensitive bool) (Result, bool) {
	n, m := len(text), len(term)
	if m == 0 {
		return Result{}, true
	}
	if n != m || !substringAt(text, term, 0, caseSensitive) {
		return Result{}, false
	}
	return Result{Score: exactScore(text, 0, n, m), Positions: contiguous(0, m)}, true
}

func substringAt(text, term []rune, start int, caseSensitive bool) bool {
	for i, p := range term {
		if !runesMatch(text[start+i], p, caseSensitive) {
			return false
		}
	}
	return true
}

func exactScore(text []rune, start, n, m int) int {
	s := scoreMatch*m + bonusAt(text, start)*bonusFirstChar
	if head := bonusHead - start; head > 0 {
		s += head
	}
	return s - (n-m)/4
}

func contiguous(start, length int) []int {
	positions := make([]int, length)
	for i := range positions {
		positions[i] = start + i
	}
	return positions
}
