// reclaim.go: epoch-based grace-period reclamation
//
// Readers announce read-side critical sections against a 64-bit epoch.
// Two reader counters are indexed by epoch parity: a grace period flips
// the epoch and waits for the counter of the previous parity to drain.
// Readers arriving after the flip count against the other parity, so a
// steady stream of new readers cannot extend a grace period.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package rcuht

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
)

// ReadToken identifies the epoch a critical section was entered under.
// It must be passed to the matching ReadUnlock.
type ReadToken uint64

type readerCounter struct {
	n atomic.Int64
	_ [56]byte
}

// ReclaimStats reports reclaimer counters.
type ReclaimStats struct {
	// GracePeriods is the number of completed Synchronize calls
	GracePeriods uint64

	// Retired is the number of callbacks handed to Retire
	Retired uint64

	// Executed is the number of retired callbacks that have run
	Executed uint64
}

// ReclaimerConfig configures a Reclaimer.
type ReclaimerConfig struct {
	// Interval is how often pending callbacks are drained.
	// Default: DefaultReclaimInterval.
	Interval time.Duration

	// Batch is the pending count that wakes the reclaimer early.
	// Default: DefaultReclaimBatch.
	Batch int

	Logger           Logger
	MetricsCollector MetricsCollector
}

// Reclaimer tracks read-side critical sections and decides when an
// unlinked entry may be freed. It offers a synchronous mode (Synchronize)
// and an asynchronous mode (Retire).
type Reclaimer struct {
	epoch   atomic.Uint64
	readers [2]readerCounter
	gpMu    sync.Mutex // serializes grace periods

	gracePeriods atomic.Uint64

	// skipWait ends grace periods without draining readers. Set only by
	// tests that check premature frees are detected.
	skipWait bool

	// deferred state, guarded by mu
	mu       sync.Mutex
	cond     *sync.Cond
	pending  *queue.Queue
	retired  uint64
	executed uint64
	closed   bool

	startOnce sync.Once
	kick      chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup

	interval time.Duration
	batch    int
	logger   Logger
	metrics  MetricsCollector
}

// NewReclaimer creates a Reclaimer. The deferred reclaim goroutine is
// started lazily by the first Retire.
func NewReclaimer(config ReclaimerConfig) *Reclaimer {
	if config.Interval <= 0 {
		config.Interval = DefaultReclaimInterval
	}
	if config.Batch <= 0 {
		config.Batch = DefaultReclaimBatch
	}
	if config.Logger == nil {
		config.Logger = NoOpLogger{}
	}
	if config.MetricsCollector == nil {
		config.MetricsCollector = NoOpMetricsCollector{}
	}

	r := &Reclaimer{
		pending:  queue.New(),
		kick:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		interval: config.Interval,
		batch:    config.Batch,
		logger:   config.Logger,
		metrics:  config.MetricsCollector,
	}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// ReadLock enters a read-side critical section. It never blocks.
func (r *Reclaimer) ReadLock() ReadToken {
	for {
		e := r.epoch.Load()
		c := &r.readers[e&1].n
		c.Add(1)
		if r.epoch.Load() == e {
			return ReadToken(e)
		}
		// A grace period started between the load and the increment.
		c.Add(-1)
	}
}

// ReadUnlock exits the critical section entered with tok.
func (r *Reclaimer) ReadUnlock(tok ReadToken) {
	r.readers[uint64(tok)&1].n.Add(-1)
}

// Synchronize blocks until every critical section entered before the
// call has exited. It must not be called from inside a critical section.
func (r *Reclaimer) Synchronize() {
	start := time.Now()

	r.gpMu.Lock()
	prev := r.epoch.Add(1) - 1
	c := &r.readers[prev&1].n
	for spins := 0; !r.skipWait && c.Load() != 0; spins++ {
		if spins < 128 {
			runtime.Gosched()
		} else {
			time.Sleep(20 * time.Microsecond)
		}
	}
	r.gpMu.Unlock()

	r.gracePeriods.Add(1)
	r.metrics.RecordGracePeriod(time.Since(start).Nanoseconds())
}

// Retire schedules fn to run once a grace period has elapsed and returns
// immediately. After Close, Retire waits for the grace period inline.
func (r *Reclaimer) Retire(fn func()) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.logger.Debug("reclaimer closed, reclaiming inline")
		r.Synchronize()
		fn()
		return
	}
	r.pending.Add(fn)
	r.retired++
	wake := r.pending.Length() >= r.batch
	r.mu.Unlock()

	r.startOnce.Do(r.start)
	if wake {
		r.wake()
	}
}

// Barrier blocks until every callback retired before the call has run.
func (r *Reclaimer) Barrier() {
	r.mu.Lock()
	target := r.retired
	for r.executed < target {
		r.wake()
		r.cond.Wait()
	}
	r.mu.Unlock()
}

// Close flushes pending callbacks and stops the reclaim goroutine.
// Close is idempotent.
func (r *Reclaimer) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	// Make sure no later Retire can start the goroutine after done closes.
	r.startOnce.Do(func() {})
	close(r.done)
	r.wg.Wait()
	r.flush()
	return nil
}

// Stats returns a snapshot of reclaimer counters.
func (r *Reclaimer) Stats() ReclaimStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ReclaimStats{
		GracePeriods: r.gracePeriods.Load(),
		Retired:      r.retired,
		Executed:     r.executed,
	}
}

func (r *Reclaimer) start() {
	r.wg.Add(1)
	go r.run()
}

func (r *Reclaimer) wake() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

func (r *Reclaimer) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			r.flush()
			return
		case <-r.kick:
		case <-ticker.C:
		}
		r.flush()
	}
}

// flush runs one grace period for everything pending at entry, then the
// callbacks in retire order.
func (r *Reclaimer) flush() {
	r.mu.Lock()
	n := r.pending.Length()
	if n == 0 {
		r.mu.Unlock()
		return
	}
	batch := make([]func(), 0, n)
	for r.pending.Length() > 0 {
		batch = append(batch, r.pending.Remove().(func()))
	}
	r.mu.Unlock()

	r.Synchronize()
	for _, fn := range batch {
		fn()
	}
	r.metrics.RecordDeferredFree(len(batch))

	r.mu.Lock()
	r.executed += uint64(len(batch))
	r.cond.Broadcast()
	r.mu.Unlock()
}
