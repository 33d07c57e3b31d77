package scanner

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asheshgoplani/sift/internal/item"
	"github.com/asheshgoplani/sift/internal/query"
	"github.com/asheshgoplani/sift/internal/rank"
)

// recordingSink collects submissions; optionally blocks each Submit on
// gate to make cancellation timing deterministic.
type recordingSink struct {
	mu        sync.Mutex
	submitted []rank.Match
	gens      []uint64
	completed bool
	covered   bool
	gate      chan struct{}
}

func (s *recordingSink) Submit(gen uint64, m rank.Match) {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = append(s.submitted, m)
	s.gens = append(s.gens, gen)
}

func (s *recordingSink) Complete(gen uint64, covered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = true
	s.covered = covered
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.submitted)
}

func buildStore(lines ...string) *item.Store {
	s := item.NewStore()
	for _, l := range lines {
		s.Append(l)
	}
	return s
}

func TestScanCompletesAndStreamsMatches(t *testing.T) {
	store := buildStore("apple pie", "applesauce", "banana")
	sink := &recordingSink{}
	sched := New(sink, WithWorkers(2))

	scan := sched.Start(1, query.Compile("app"), store.Snapshot())
	<-scan.Done()

	assert.Equal(t, StatusCompleted, scan.Status())
	assert.Equal(t, 2, sink.count())
	assert.True(t, sink.covered)
	for _, g := range sink.gens {
		assert.Equal(t, uint64(1), g)
	}
}

func TestScanEmptyQueryMatchesEverything(t *testing.T) {
	store := buildStore("a", "b", "c")
	sink := &recordingSink{}
	sched := New(sink)

	scan := sched.Start(1, query.Compile(""), store.Snapshot())
	<-scan.Done()

	assert.Equal(t, 3, sink.count())
	for _, m := range sink.submitted {
		assert.Zero(t, m.Score)
	}
}

func TestScanEmptySnapshot(t *testing.T) {
	sink := &recordingSink{}
	sched := New(sink)

	scan := sched.Start(1, query.Compile("x"), item.NewStore().Snapshot())
	<-scan.Done()

	assert.Equal(t, StatusCompleted, scan.Status())
	assert.Zero(t, sink.count())
	assert.True(t, sink.completed)
}

func TestStartCancelsPreviousScan(t *testing.T) {
	lines := make([]string, 5000)
	for i := range lines {
		lines[i] = "some candidate line"
	}
	store := buildStore(lines...)

	sink := &recordingSink{gate: make(chan struct{})}
	sched := New(sink, WithWorkers(1))

	first := sched.Start(1, query.Compile("line"), store.Snapshot())
	second := sched.Start(2, query.Compile("some"), store.Snapshot())
	assert.True(t, first != second)

	close(sink.gate) // release all submits
	<-first.Done()
	<-second.Done()

	assert.Equal(t, StatusCancelled, first.Status())
	assert.Equal(t, StatusCompleted, second.Status())
}

func TestCancelledScanStopsSubmitting(t *testing.T) {
	lines := make([]string, 10000)
	for i := range lines {
		lines[i] = "x"
	}
	store := buildStore(lines...)

	sink := &recordingSink{gate: make(chan struct{})}
	sched := New(sink, WithWorkers(1))
	scan := sched.Start(1, query.Compile("x"), store.Snapshot())

	sink.gate <- struct{}{} // let exactly one submission through
	scan.Cancel()
	close(sink.gate)
	<-scan.Done()

	// The worker checks the flag between items: at most the one
	// in-flight submission plus one more can land, nowhere near the
	// full snapshot.
	assert.LessOrEqual(t, sink.count(), 2)
	assert.Equal(t, StatusCancelled, scan.Status())
	assert.False(t, sink.covered)
}

func TestNoSubmitAfterDone(t *testing.T) {
	store := buildStore("a", "b", "c", "d")
	sink := &recordingSink{}
	sched := New(sink, WithWorkers(4))

	scan := sched.Start(1, query.Compile(""), store.Snapshot())
	<-scan.Done()
	before := sink.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, before, sink.count())
}

type panickySink struct {
	recordingSink
}

func (s *panickySink) Submit(gen uint64, m rank.Match) {
	panic("sink exploded")
}

func TestWorkerPanicCancelsScan(t *testing.T) {
	store := buildStore("a", "b", "c")
	sink := &panickySink{}
	sched := New(sink, WithWorkers(1))

	scan := sched.Start(1, query.Compile(""), store.Snapshot())
	<-scan.Done()

	assert.Equal(t, StatusCancelled, scan.Status())
	assert.False(t, sink.covered)
}

func TestMatchItemConjunction(t *testing.T) {
	store := buildStore("foo.txt", "bar.txt", "foo.md")
	snap := store.Snapshot()
	q := query.Compile("'foo md$")

	_, ok := MatchItem(snap.At(0), q, nil)
	assert.False(t, ok, "foo.txt matches 'foo but not md$")
	_, ok = MatchItem(snap.At(1), q, nil)
	assert.False(t, ok)
	m, ok := MatchItem(snap.At(2), q, nil)
	require.True(t, ok)
	assert.Equal(t, []int{0, 1, 2, 4, 5}, m.Positions)
}

func TestMatchItemNegation(t *testing.T) {
	store := buildStore("apple pie", "applesauce", "banana")
	snap := store.Snapshot()
	q := query.Compile("!apple")

	_, ok := MatchItem(snap.At(0), q, nil)
	assert.False(t, ok)
	_, ok = MatchItem(snap.At(1), q, nil)
	assert.False(t, ok)
	m, ok := MatchItem(snap.At(2), q, nil)
	require.True(t, ok)
	assert.Zero(t, m.Score, "negated clauses contribute no score")
	assert.Empty(t, m.Positions)
}

func TestMatchItemFieldRestriction(t *testing.T) {
	store := item.NewStore(item.WithDelimiter(" "))
	store.Append("foo bar baz")
	it := store.Snapshot().At(0)

	q := query.Compile("bar")
	m, ok := MatchItem(it, q, []int{1})
	require.True(t, ok)
	assert.Equal(t, []int{4, 5, 6}, m.Positions, "positions map back to the full line")

	_, ok = MatchItem(it, query.Compile("foo"), []int{1})
	assert.False(t, ok, "foo lives outside the selected field")
}

func TestMatchItemOverlappingClausePositions(t *testing.T) {
	store := buildStore("abab")
	it := store.Snapshot().At(0)

	m, ok := MatchItem(it, query.Compile("ab ab"), nil)
	require.True(t, ok)
	// Identical clauses highlight the same range; merged positions
	// stay sorted and deduplicated.
	for i := 1; i < len(m.Positions); i++ {
		assert.Greater(t, m.Positions[i], m.Positions[i-1])
	}
}
