// Package engine is the driver that ties the store, scheduler and
// merger together. One logical loop owns every scan start/cancel
// decision: it reacts to query edits and to new item arrivals, so only
// one scan is current at a time no matter how fast either event source
// fires.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/asheshgoplani/sift/internal/item"
	"github.com/asheshgoplani/sift/internal/logging"
	"github.com/asheshgoplani/sift/internal/query"
	"github.com/asheshgoplani/sift/internal/rank"
	"github.com/asheshgoplani/sift/internal/scanner"
)

var log = logging.ForComponent(logging.CompEngine)

// rescanRate bounds how often a growing producer alone can restart the
// scan. Query edits are never throttled.
const rescanRate = 20

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the scan worker pool size.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithNth restricts matching to the given 0-based fields.
func WithNth(nth []int) Option {
	return func(e *Engine) { e.nth = nth }
}

// Engine drives the matching pipeline. It is also the producer sink:
// readers call Append/Seal, the UI calls SetQuery/Snapshot.
type Engine struct {
	store  *item.Store
	merger *rank.Merger
	sched  *scanner.Scheduler

	workers int
	nth     []int

	limiter *rate.Limiter
	kick    chan struct{}
	timer   atomic.Bool // a delayed kick is already pending

	mu          sync.Mutex
	raw         string
	dirty       bool
	lastScanned int

	generation atomic.Uint64
}

// New creates an engine over store, publishing into merger.
func New(store *item.Store, merger *rank.Merger, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		merger:  merger,
		limiter: rate.NewLimiter(rescanRate, 1),
		kick:    make(chan struct{}, 1),
		dirty:   true, // run the initial empty-query scan
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sched = scanner.New(merger,
		scanner.WithWorkers(e.workers),
		scanner.WithNth(e.nth),
	)
	return e
}

// Run processes events until ctx is cancelled. It owns all scan
// scheduling; everything else just pokes it through SetQuery, Append
// and Seal.
func (e *Engine) Run(ctx context.Context) {
	e.wake()
	for {
		select {
		case <-ctx.Done():
			if scan := e.sched.Current(); scan != nil {
				scan.Cancel()
			}
			return
		case <-e.kick:
			e.maybeScan()
		}
	}
}

// SetQuery replaces the active query. The superseded scan is cancelled
// as soon as the driver picks the event up.
func (e *Engine) SetQuery(raw string) {
	e.mu.Lock()
	if raw == e.raw {
		e.mu.Unlock()
		return
	}
	e.raw = raw
	e.dirty = true
	e.mu.Unlock()
	e.wake()
}

// Query returns the active raw query.
func (e *Engine) Query() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.raw
}

// Append ingests one candidate line and wakes the driver so growing
// input is reflected without a keystroke.
func (e *Engine) Append(text string) int {
	index := e.store.Append(text)
	e.wake()
	return index
}

// Seal marks the producer as done.
func (e *Engine) Seal() {
	e.store.Seal()
	e.wake()
}

// Snapshot returns the current ranked list.
func (e *Engine) Snapshot() rank.List {
	return e.merger.Snapshot()
}

// Running reports whether a scan is still in flight.
func (e *Engine) Running() bool {
	scan := e.sched.Current()
	if scan == nil {
		return false
	}
	switch scan.Status() {
	case scanner.StatusPending, scanner.StatusRunning:
		return true
	}
	return false
}

// Store exposes the item store for count displays.
func (e *Engine) Store() *item.Store {
	return e.store
}

// RunOnce compiles raw, scans the current snapshot to completion and
// returns the final ranked list. Used by the non-interactive filter
// mode; not meant to be mixed with Run.
func (e *Engine) RunOnce(raw string) rank.List {
	gen := e.generation.Add(1)
	e.merger.Reset(gen)
	scan := e.sched.Start(gen, query.Compile(raw), e.store.Snapshot())
	<-scan.Done()
	return e.merger.Snapshot()
}

func (e *Engine) wake() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

// maybeScan starts a new scan when the query changed or the store grew
// past what the last scan covered. Growth-only restarts go through the
// rate limiter so a fast producer coalesces into periodic rescans
// instead of cancelling every scan it triggers.
func (e *Engine) maybeScan() {
	e.mu.Lock()
	grew := e.store.Len() > e.lastScanned
	if !e.dirty && !grew {
		e.mu.Unlock()
		return
	}
	if !e.dirty && grew && !e.limiter.Allow() {
		e.mu.Unlock()
		e.wakeLater(50 * time.Millisecond)
		return
	}

	raw := e.raw
	e.dirty = false
	snap := e.store.Snapshot()
	e.lastScanned = snap.Len()
	e.mu.Unlock()

	gen := e.generation.Add(1)
	q := query.Compile(raw)
	e.merger.Reset(gen)
	scan := e.sched.Start(gen, q, snap)
	log.Debug("scan started", "generation", gen, "items", snap.Len(), "clauses", len(q.Clauses))

	// Re-check once the scan settles: items may have arrived while it
	// ran, and a stable query over a growing store must still converge
	// on full coverage.
	go func() {
		<-scan.Done()
		e.wake()
	}()
}

func (e *Engine) wakeLater(d time.Duration) {
	if !e.timer.CompareAndSwap(false, true) {
		return
	}
	time.AfterFunc(d, func() {
		e.timer.Store(false)
		e.wake()
	})
}
