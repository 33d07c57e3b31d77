package item

import (
	"sync"
	"sync/atomic"
)

const initialCapacity = 1024

// Store is the append-only collection of items. One producer appends;
// any number of scans read through snapshots. Appends never invalidate
// a previously taken snapshot: the backing slice only grows, and a
// snapshot pins (array, length) as of the time it was taken.
type Store struct {
	mu     sync.RWMutex
	items  []*Item
	length atomic.Int64
	sealed atomic.Bool
	delim  string
}

// Option configures a Store.
type Option func(*Store)

// WithDelimiter enables field splitting on the given delimiter. A
// single space means any whitespace run.
func WithDelimiter(delim string) Option {
	return func(s *Store) { s.delim = delim }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{items: make([]*Item, 0, initialCapacity)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append adds one candidate line and returns its index. Safe to call
// concurrently with Snapshot and Len; items are never mutated or
// removed afterwards.
func (s *Store) Append(text string) int {
	s.mu.Lock()
	index := len(s.items)
	s.items = append(s.items, newItem(index, text, s.delim))
	s.mu.Unlock()
	s.length.Store(int64(index + 1))
	return index
}

// Len reports the number of items ingested so far. In-flight scans use
// this to tell whether their snapshot still covers the whole store.
func (s *Store) Len() int {
	return int(s.length.Load())
}

// Seal marks the producer as finished; no further Append calls will be
// made.
func (s *Store) Seal() {
	s.sealed.Store(true)
}

// Sealed reports whether the producer has signalled EOF.
func (s *Store) Sealed() bool {
	return s.sealed.Load()
}

// Snapshot returns an immutable view of every item ingested so far.
// O(1): it shares the backing array, which is safe because the store is
// append-only and items are immutable.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	view := s.items[:len(s.items):len(s.items)]
	s.mu.RUnlock()
	return Snapshot{items: view}
}

// Snapshot is a point-in-time view of the store. Later snapshots are
// supersets (by index) of earlier ones.
type Snapshot struct {
	items []*Item
}

// Len returns the number of items in the snapshot.
func (sn Snapshot) Len() int {
	return len(sn.items)
}

// At returns the item at position i (which equals its Index).
func (sn Snapshot) At(i int) *Item {
	return sn.items[i]
}

// Range returns the items in [lo, hi), used to hand a partition to a
// scan worker.
func (sn Snapshot) Range(lo, hi int) []*Item {
	return sn.items[lo:hi]
}
