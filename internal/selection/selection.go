// Package selection tracks which items the user has marked. Selection
// is keyed by item index and independent of the active query: marks
// survive query edits and re-ranks.
package selection

import (
	"sort"
	"sync"
)

// Order controls how Indices returns the selected items.
type Order int

const (
	// ByIndex returns items in their original ingestion order.
	ByIndex Order = iota
	// BySelection returns items in the order the user marked them.
	BySelection
)

// Set is the selection state for one session. Safe for concurrent use.
type Set struct {
	mu     sync.Mutex
	marked map[int]struct{}
	order  []int
}

// New returns an empty selection set.
func New() *Set {
	return &Set{marked: make(map[int]struct{})}
}

// Toggle flips the mark on index and reports whether it is now
// selected. Toggling twice restores the previous state.
func (s *Set) Toggle(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.marked[index]; ok {
		delete(s.marked, index)
		for i, idx := range s.order {
			if idx == index {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return false
	}
	s.marked[index] = struct{}{}
	s.order = append(s.order, index)
	return true
}

// SelectAll marks every given index (the caller passes what is
// currently visible). Already-selected indices keep their selection
// order.
func (s *Set) SelectAll(indices []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, index := range indices {
		if _, ok := s.marked[index]; ok {
			continue
		}
		s.marked[index] = struct{}{}
		s.order = append(s.order, index)
	}
}

// DeselectAll clears every mark.
func (s *Set) DeselectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = make(map[int]struct{})
	s.order = s.order[:0]
}

// IsSelected reports whether index is marked.
func (s *Set) IsSelected(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.marked[index]
	return ok
}

// Len returns the number of marked items.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.marked)
}

// Indices returns the marked indices in the requested order.
func (s *Set) Indices(order Order) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.order))
	copy(out, s.order)
	if order == ByIndex {
		sort.Ints(out)
	}
	return out
}
