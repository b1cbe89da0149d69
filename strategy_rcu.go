// strategy_rcu.go: lock-free reads with grace-period reclamation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package rcuht

// gracePeriodRead lets readers traverse the table without locks inside a
// read-side critical section. Writers are serialized by the store's writer
// lock and free an unlinked entry only after a grace period, so a reader
// that found an entry may keep using it until it leaves its critical
// section. Readers may see just-removed data.
type gracePeriodRead struct {
	s    *Store
	kind StrategyKind

	// holdOnReplace keeps the writer lock across the grace period that
	// reclaims a replaced entry. When false the replaced entry is reclaimed
	// after the lock is released.
	holdOnReplace bool
}

func (g *gracePeriodRead) Name() StrategyKind { return g.kind }

// Insert replaces any entry already stored under id.
func (g *gracePeriodRead) Insert(id uint32, payload []byte) (bool, error) {
	start := g.s.startTimer()
	s := g.s

	e, err := s.alloc.alloc(id, payload)
	if err != nil {
		s.observeInsert(start, false)
		return false, err
	}

	s.writer.Lock()
	old := s.table.find(id)
	if old != nil && g.holdOnReplace {
		// Readers miss id until the grace period ends and e is linked.
		s.table.unlink(old)
		s.reclaimer.Synchronize()
		s.alloc.free(old)
		old = nil
	} else if old != nil {
		s.table.unlink(old)
	}
	s.table.link(e)
	s.writer.Unlock()

	if old != nil {
		s.reclaimer.Synchronize()
		s.alloc.free(old)
	}

	s.observeInsert(start, true)
	return true, nil
}

func (g *gracePeriodRead) Remove(id uint32) bool {
	start := g.s.startTimer()
	s := g.s

	s.writer.Lock()
	e := s.table.find(id)
	if e == nil {
		s.writer.Unlock()
		s.observeRemove(start, false)
		return false
	}
	s.table.unlink(e)
	s.writer.Unlock()

	s.reclaimer.Synchronize()
	s.alloc.free(e)

	s.observeRemove(start, true)
	return true
}

func (g *gracePeriodRead) Read(id uint32) bool {
	start := g.s.startTimer()
	s := g.s

	tok := s.reclaimer.ReadLock()
	found := false
	if e, gen := s.table.lookup(id); e != nil {
		found = s.consume(e, id, gen)
	}
	s.reclaimer.ReadUnlock(tok)

	s.observeRead(start, found)
	return found
}
