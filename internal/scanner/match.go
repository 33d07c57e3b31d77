package scanner

import (
	"sort"

	"github.com/asheshgoplani/sift/internal/item"
	"github.com/asheshgoplani/sift/internal/matcher"
	"github.com/asheshgoplani/sift/internal/query"
	"github.com/asheshgoplani/sift/internal/rank"
)

// MatchItem evaluates the full query against one item: the item matches
// iff every positive clause matches and no inverse clause does. Clause
// scores add up; positions from all clauses are merged ascending for
// highlighting. nth, when non-empty, restricts matching to those
// delimiter-split fields (a clause matches if any selected field
// matches, scored by its best field).
func MatchItem(it *item.Item, q query.Query, nth []int) (rank.Match, bool) {
	if q.Empty() {
		return rank.Match{Item: it}, true
	}

	total := 0
	var positions []int
	for _, c := range q.Clauses {
		res, ok := matchClause(it, c, nth)
		if c.Inverse {
			if ok {
				return rank.Match{}, false
			}
			continue
		}
		if !ok {
			return rank.Match{}, false
		}
		total += res.Score
		positions = append(positions, res.Positions...)
	}

	if len(positions) > 1 {
		sort.Ints(positions)
		positions = dedupe(positions)
	}
	return rank.Match{Item: it, Score: total, Positions: positions}, true
}

func matchClause(it *item.Item, c query.Clause, nth []int) (matcher.Result, bool) {
	if len(nth) == 0 || len(it.Spans()) == 0 {
		return c.Match(it.Runes())
	}

	best := matcher.Result{}
	found := false
	for _, n := range nth {
		field, start, ok := it.Field(n)
		if !ok {
			continue
		}
		res, ok := c.Match(field)
		if !ok {
			continue
		}
		for i := range res.Positions {
			res.Positions[i] += start
		}
		if !found || res.Score > best.Score {
			best = res
			found = true
		}
	}
	return best, found
}

func dedupe(sorted []int) []int {
	out := sorted[:1]
	for _, p := range sorted[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
