// Package rank merges per-worker match results into one totally ordered
// list. The Merger is the single owner of the ordering; workers reach
// it only through Submit, and every call is gated on the generation of
// the scan that produced it so superseded results are dropped, never
// merged.
package rank

import (
	"sort"
	"sync"

	"github.com/asheshgoplani/sift/internal/item"
)

// Match is one item's result for the active query.
type Match struct {
	Item  *item.Item
	Score int
	// Positions holds the matched rune offsets of every clause, merged
	// and ascending; used for highlighting only.
	Positions []int
}

// Less is the total order over matches: score descending, then item
// index ascending. It is independent of which worker produced a match
// or when it arrived.
func Less(a, b Match) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Item.Index < b.Item.Index
}

// List is an immutable snapshot of the ranked results for one
// generation.
type List struct {
	Generation uint64
	Matches    []Match
	// Complete is true once the scan that produced this generation
	// covered its whole snapshot (it was not cancelled early).
	Complete bool
}

// Merger accumulates matches for the active generation and keeps them
// ordered so Snapshot is callable at any time, including mid-scan.
type Merger struct {
	mu         sync.Mutex
	generation uint64
	ordered    []Match
	seen       map[int]struct{}
	complete   bool
}

// NewMerger returns a merger at generation zero with no results.
func NewMerger() *Merger {
	return &Merger{seen: make(map[int]struct{})}
}

// Reset advances the merger to a new generation, discarding all state
// from prior generations. Called by the driver when a new scan starts.
func (m *Merger) Reset(generation uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if generation <= m.generation && generation != 0 {
		return
	}
	m.generation = generation
	m.ordered = m.ordered[:0]
	m.seen = make(map[int]struct{})
	m.complete = false
}

// Submit inserts one match produced by a scan worker. Results for a
// superseded generation are silently dropped; resubmitting the same
// item within a generation is a no-op.
func (m *Merger) Submit(generation uint64, match Match) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if generation != m.generation {
		return
	}
	if _, dup := m.seen[match.Item.Index]; dup {
		return
	}
	m.seen[match.Item.Index] = struct{}{}

	i := sort.Search(len(m.ordered), func(i int) bool {
		return Less(match, m.ordered[i])
	})
	m.ordered = append(m.ordered, Match{})
	copy(m.ordered[i+1:], m.ordered[i:])
	m.ordered[i] = match
}

// Complete marks the active generation's scan as finished. covered is
// false when the scan was cancelled before reaching the end of its
// snapshot.
func (m *Merger) Complete(generation uint64, covered bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if generation != m.generation {
		return
	}
	m.complete = covered
}

// Snapshot returns a copy of the current ranked list. Cheap enough to
// call per rendering frame; the copy means the caller's view never
// mutates under it.
func (m *Merger) Snapshot() List {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Match, len(m.ordered))
	copy(out, m.ordered)
	return List{
		Generation: m.generation,
		Matches:    out,
		Complete:   m.complete,
	}
}

// Generation returns the active generation.
func (m *Merger) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}
