// store.go: shared benchmark state threaded into every strategy
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
)

// Store owns the Table, its entry allocator, the writer-exclusive lock and
// the Reclaimer for the lifetime of one benchmark trial. Strategies close
// over a Store; they carry no state of their own.
type Store struct {
	table     *Table
	alloc     *allocator
	reclaimer *Reclaimer

	// writer serializes every chain mutation of the locking strategies.
	writer sync.Mutex

	kind         StrategyKind
	readDelay    time.Duration
	work         func(time.Duration) // simulateWork unless replaced in tests
	logger       Logger
	metrics      MetricsCollector
	instrumented bool

	violations atomic.Uint64
}

// NewStore creates an empty Store from a normalized configuration.
// Only Strategy, MaxEntries, ReadDelay, ReclaimInterval, Logger and
// MetricsCollector are consulted.
func NewStore(config Config) *Store {
	if config.Logger == nil {
		config.Logger = NoOpLogger{}
	}
	_, noop := config.MetricsCollector.(NoOpMetricsCollector)
	instrumented := config.MetricsCollector != nil && !noop
	if config.MetricsCollector == nil {
		config.MetricsCollector = NoOpMetricsCollector{}
	}

	return &Store{
		table: NewTable(),
		alloc: newAllocator(config.MaxEntries),
		reclaimer: NewReclaimer(ReclaimerConfig{
			Interval:         config.ReclaimInterval,
			Logger:           config.Logger,
			MetricsCollector: config.MetricsCollector,
		}),
		kind:         config.Strategy,
		readDelay:    config.ReadDelay,
		work:         simulateWork,
		logger:       config.Logger,
		metrics:      config.MetricsCollector,
		instrumented: instrumented,
	}
}

// Table returns the underlying table.
func (s *Store) Table() *Table {
	return s.table
}

// Reclaimer returns the store's reclamation engine.
func (s *Store) Reclaimer() *Reclaimer {
	return s.reclaimer
}

// Violations returns how many reads observed a reclaimed entry.
func (s *Store) Violations() uint64 {
	return s.violations.Load()
}

// AllocStats returns allocator counters.
func (s *Store) AllocStats() AllocStats {
	return s.alloc.stats()
}

// Close waits for deferred frees and stops the reclaimer.
func (s *Store) Close() error {
	s.reclaimer.Barrier()
	return s.reclaimer.Close()
}

// consume copies the payload out of e and performs the simulated work.
// gen is the generation lookup observed when e matched id. It returns
// false, and records a violation, if e has been freed or recycled when
// checked before or after the work.
func (s *Store) consume(e *entry, id uint32, gen uint64) bool {
	if !intact(e, id, gen) {
		s.violation(id)
		return false
	}
	s.work(s.readDelay)
	if !intact(e, id, gen) {
		s.violation(id)
		return false
	}
	return true
}

// intact reports whether e still holds the allocation a reader matched.
func intact(e *entry, id uint32, gen uint64) bool {
	if e.freed.Load() || e.gen.Load() != gen || e.id != id {
		return false
	}
	buf := e.payload
	return buf[PayloadSize-1] != poisonByte
}

func (s *Store) violation(id uint32) {
	s.violations.Add(1)
	s.logger.Error("read-safety violation", "error", NewErrUseAfterFree(id, s.kind))
}

// simulateWork spins for d, yielding so that spinning readers do not
// starve writers on small GOMAXPROCS.
func simulateWork(d time.Duration) {
	if d <= 0 {
		return
	}
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		runtime.Gosched()
	}
}

func (s *Store) startTimer() time.Time {
	if !s.instrumented {
		return time.Time{}
	}
	return time.Now()
}

func (s *Store) observeInsert(start time.Time, stored bool) {
	if s.instrumented {
		s.metrics.RecordInsert(time.Since(start).Nanoseconds(), stored)
	}
}

func (s *Store) observeRemove(start time.Time, found bool) {
	if s.instrumented {
		s.metrics.RecordRemove(time.Since(start).Nanoseconds(), found)
	}
}

func (s *Store) observeRead(start time.Time, found bool) {
	if s.instrumented {
		s.metrics.RecordRead(time.Since(start).Nanoseconds(), found)
	}
}
