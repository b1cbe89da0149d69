// strategy_lock.go: unsynchronized baseline and global-lock strategies
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package rcuht

// noSync performs every operation directly on the table and frees removed
// entries immediately.
//
// Concurrent use is undefined: chain updates race with each other and a
// reader may consume an entry another worker has already freed. That is
// the point of the baseline and is not to be fixed here.
type noSync struct {
	s *Store
}

func (n *noSync) Name() StrategyKind { return StrategyNoSync }

// Insert replaces any entry already stored under id.
func (n *noSync) Insert(id uint32, payload []byte) (bool, error) {
	start := n.s.startTimer()
	stored, err := n.s.insertReplace(id, payload)
	n.s.observeInsert(start, stored)
	return stored, err
}

func (n *noSync) Remove(id uint32) bool {
	start := n.s.startTimer()
	found := n.s.removeFree(id)
	n.s.observeRemove(start, found)
	return found
}

func (n *noSync) Read(id uint32) bool {
	start := n.s.startTimer()
	found := n.s.readPlain(id)
	n.s.observeRead(start, found)
	return found
}

// globalLock wraps the baseline logic in one exclusive lock, so at most
// one operation runs at a time across all workers.
type globalLock struct {
	s *Store
}

func (g *globalLock) Name() StrategyKind { return StrategyGlobalLock }

// Insert replaces any entry already stored under id.
func (g *globalLock) Insert(id uint32, payload []byte) (bool, error) {
	start := g.s.startTimer()
	g.s.writer.Lock()
	stored, err := g.s.insertReplace(id, payload)
	g.s.writer.Unlock()
	g.s.observeInsert(start, stored)
	return stored, err
}

func (g *globalLock) Remove(id uint32) bool {
	start := g.s.startTimer()
	g.s.writer.Lock()
	found := g.s.removeFree(id)
	g.s.writer.Unlock()
	g.s.observeRemove(start, found)
	return found
}

func (g *globalLock) Read(id uint32) bool {
	start := g.s.startTimer()
	g.s.writer.Lock()
	found := g.s.readPlain(id)
	g.s.writer.Unlock()
	g.s.observeRead(start, found)
	return found
}

// insertReplace allocates first so a failed allocation leaves the table
// untouched, then frees any previous entry for id and links the new one.
func (s *Store) insertReplace(id uint32, payload []byte) (bool, error) {
	e, err := s.alloc.alloc(id, payload)
	if err != nil {
		return false, err
	}
	if old := s.table.find(id); old != nil {
		s.table.unlink(old)
		s.alloc.free(old)
	}
	s.table.link(e)
	return true, nil
}

func (s *Store) removeFree(id uint32) bool {
	e := s.table.find(id)
	if e == nil {
		return false
	}
	s.table.unlink(e)
	s.alloc.free(e)
	return true
}

func (s *Store) readPlain(id uint32) bool {
	e, gen := s.table.lookup(id)
	if e == nil {
		return false
	}
	return s.consume(e, id, gen)
}
