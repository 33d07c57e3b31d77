// Package scanner runs the current query over a store snapshot using a
// fixed worker pool. A scan streams matches to the rank merger as it
// finds them and is cancelled cooperatively: workers check a shared
// flag between items, so starting a new scan stops a superseded one
// within one item's worth of work.
package scanner

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/asheshgoplani/sift/internal/item"
	"github.com/asheshgoplani/sift/internal/logging"
	"github.com/asheshgoplani/sift/internal/query"
	"github.com/asheshgoplani/sift/internal/rank"
)

var log = logging.ForComponent(logging.CompScan)

// Status is the lifecycle state of one scan.
type Status int32

const (
	StatusPending Status = iota
	StatusRunning
	StatusCompleted
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Sink receives streamed match results. *rank.Merger satisfies it.
type Sink interface {
	Submit(generation uint64, m rank.Match)
	Complete(generation uint64, covered bool)
}

// Scan is a handle to one in-flight or finished scan.
type Scan struct {
	generation uint64
	status     atomic.Int32
	cancelled  atomic.Bool
	done       chan struct{}
}

// Generation returns the generation tag the scan's results carry.
func (s *Scan) Generation() uint64 { return s.generation }

// Status returns the scan's current lifecycle state.
func (s *Scan) Status() Status { return Status(s.status.Load()) }

// Cancel requests cooperative cancellation. Safe to call more than
// once and after the scan finished.
func (s *Scan) Cancel() { s.cancelled.Store(true) }

// Done is closed once the scan has fully stopped: no Submit call for
// its generation happens after Done is closed.
func (s *Scan) Done() <-chan struct{} { return s.done }

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithWorkers sets the worker pool size. Values < 1 fall back to the
// available parallelism.
func WithWorkers(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithNth restricts matching to the given 0-based field numbers of
// delimiter-split items. Items without fields fall back to whole-line
// matching.
func WithNth(nth []int) Option {
	return func(s *Scheduler) { s.nth = nth }
}

// Scheduler owns scan lifecycles. Only one scan is current at a time:
// starting a new one cancels the previous one first.
type Scheduler struct {
	workers int
	nth     []int
	sink    Sink

	current atomic.Pointer[Scan]
}

// New creates a Scheduler streaming into sink.
func New(sink Sink, opts ...Option) *Scheduler {
	s := &Scheduler{
		workers: runtime.NumCPU(),
		sink:    sink,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s
}

// Start cancels any in-flight scan and launches a new one for q over
// snap, tagged with generation. The caller is expected to have Reset
// the sink to the same generation first.
func (s *Scheduler) Start(generation uint64, q query.Query, snap item.Snapshot) *Scan {
	scan := &Scan{
		generation: generation,
		done:       make(chan struct{}),
	}
	if prev := s.current.Swap(scan); prev != nil {
		prev.Cancel()
	}
	go s.run(scan, q, snap)
	return scan
}

// Current returns the most recently started scan, or nil before the
// first one.
func (s *Scheduler) Current() *Scan {
	return s.current.Load()
}

func (s *Scheduler) run(scan *Scan, q query.Query, snap item.Snapshot) {
	defer close(scan.done)
	scan.status.Store(int32(StatusRunning))

	n := snap.Len()
	workers := s.workers
	if workers > n {
		workers = n
	}

	if n > 0 {
		var g errgroup.Group
		chunk := (n + workers - 1) / workers
		for w := 0; w < workers; w++ {
			lo := w * chunk
			hi := lo + chunk
			if hi > n {
				hi = n
			}
			if lo >= hi {
				break
			}
			part := snap.Range(lo, hi)
			g.Go(func() error {
				defer func() {
					if r := recover(); r != nil {
						// A worker panic must not corrupt the ranked
						// list: kill the scan and report it cancelled.
						log.Error("scan worker panic", "generation", scan.generation, "panic", r)
						scan.Cancel()
					}
				}()
				for _, it := range part {
					if scan.cancelled.Load() {
						return nil
					}
					if m, ok := MatchItem(it, q, s.nth); ok {
						s.sink.Submit(scan.generation, m)
					}
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	covered := !scan.cancelled.Load()
	if covered {
		scan.status.Store(int32(StatusCompleted))
	} else {
		scan.status.Store(int32(StatusCancelled))
	}
	s.sink.Complete(scan.generation, covered)
}
