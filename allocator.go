// allocator.go: pooled entry allocation with poisoning on free
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package rcuht

import (
	"sync"
	"sync/atomic"
)

// poisonByte fills the payload of every freed entry. A live payload always
// ends in NUL, so a trailing poisonByte identifies reclaimed memory.
const poisonByte = 0x6b

// allocator hands out entries from a pool and recycles them on free.
// Recycling makes a premature free visible: the entry is poisoned and may
// be reused for another key while a stale reader still points at it.
type allocator struct {
	pool  sync.Pool
	limit int64 // 0 = unbounded

	live   atomic.Int64
	allocs atomic.Uint64
	frees  atomic.Uint64
}

func newAllocator(limit int) *allocator {
	return &allocator{
		pool:  sync.Pool{New: func() any { return new(entry) }},
		limit: int64(limit),
	}
}

// alloc returns an unlinked, valid entry holding id and a NUL-terminated
// copy of payload (truncated to PayloadSize-1 bytes).
func (a *allocator) alloc(id uint32, payload []byte) (*entry, error) {
	if n := a.live.Add(1); a.limit > 0 && n > a.limit {
		a.live.Add(-1)
		return nil, NewErrAllocationFailed(id, a.limit)
	}

	e := a.pool.Get().(*entry)
	fill(e, id, payload)

	a.allocs.Add(1)
	return e, nil
}

// fill reinitializes a pooled entry for id and starts a new generation.
func fill(e *entry, id uint32, payload []byte) {
	e.id = id
	e.next.Store(nil)
	n := copy(e.payload[:PayloadSize-1], payload)
	clear(e.payload[n:])
	e.valid = true
	e.freed.Store(false)
	e.gen.Add(1)
}

// free poisons e and returns it to the pool. The caller guarantees no
// reader can still reach e.
func (a *allocator) free(e *entry) {
	e.freed.Store(true)
	e.gen.Add(1)
	for i := range e.payload {
		e.payload[i] = poisonByte
	}
	e.valid = false
	e.next.Store(nil)

	a.live.Add(-1)
	a.frees.Add(1)
	a.pool.Put(e)
}

// AllocStats reports allocator counters.
type AllocStats struct {
	Live   int64
	Allocs uint64
	Frees  uint64
}

func (a *allocator) stats() AllocStats {
	return AllocStats{
		Live:   a.live.Load(),
		Allocs: a.allocs.Load(),
		Frees:  a.frees.Load(),
	}
}
