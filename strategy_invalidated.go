// strategy_invalidated.go: grace-period reads with per-entry invalidation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package rcuht

// invalidatedRead extends gracePeriodRead with a per-entry lock and a
// validity flag. A reader takes the entry lock before leaving its critical
// section and holds it while consuming the payload; a remover clears the
// flag under the same lock before reclaiming. A reader therefore either
// consumes an entry that was valid when matched or cleanly reports
// not-found.
type invalidatedRead struct {
	s    *Store
	kind StrategyKind

	// deferred hands removed entries to Reclaimer.Retire instead of waiting
	// for the grace period inline.
	deferred bool
}

func (v *invalidatedRead) Name() StrategyKind { return v.kind }

// Insert rejects ids that are already present.
func (v *invalidatedRead) Insert(id uint32, payload []byte) (bool, error) {
	start := v.s.startTimer()
	s := v.s

	s.writer.Lock()
	if s.table.find(id) != nil {
		s.writer.Unlock()
		s.observeInsert(start, false)
		return false, nil
	}
	e, err := s.alloc.alloc(id, payload)
	if err != nil {
		s.writer.Unlock()
		s.observeInsert(start, false)
		return false, err
	}
	s.table.link(e)
	s.writer.Unlock()

	s.observeInsert(start, true)
	return true, nil
}

func (v *invalidatedRead) Remove(id uint32) bool {
	start := v.s.startTimer()
	s := v.s

	s.writer.Lock()
	e := s.table.find(id)
	if e == nil {
		s.writer.Unlock()
		s.observeRemove(start, false)
		return false
	}
	s.table.unlink(e)
	s.writer.Unlock()

	e.mu.Lock()
	e.valid = false
	e.mu.Unlock()

	if v.deferred {
		s.reclaimer.Retire(func() { s.alloc.free(e) })
	} else {
		s.reclaimer.Synchronize()
		s.alloc.free(e)
	}

	s.observeRemove(start, true)
	return true
}

func (v *invalidatedRead) Read(id uint32) bool {
	start := v.s.startTimer()
	s := v.s

	tok := s.reclaimer.ReadLock()
	e, gen := s.table.lookup(id)
	if e == nil {
		s.reclaimer.ReadUnlock(tok)
		s.observeRead(start, false)
		return false
	}

	e.mu.Lock()
	if !e.valid {
		e.mu.Unlock()
		s.reclaimer.ReadUnlock(tok)
		s.observeRead(start, false)
		return false
	}
	// The entry lock now pins e: its remover cannot invalidate, and so
	// cannot reclaim, until we release it.
	s.reclaimer.ReadUnlock(tok)
	found := s.consume(e, id, gen)
	e.mu.Unlock()

	s.observeRead(start, found)
	return found
}
