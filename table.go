// table.go: fixed-size bucketed hash table shared by every strategy
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package rcuht

import (
	"bytes"
	"sync"
	"sync/atomic"
)

// entry is one stored record.
//
// Chain links are atomic so lock-free readers always observe a fully
// initialized entry once it is published by link. id and payload are
// written only while the entry is unreachable (before link, after the
// grace period that follows unlink).
type entry struct {
	id   uint32
	next atomic.Pointer[entry]

	// gen advances on every alloc and free, so a reader can tell whether
	// the entry it matched has since been recycled.
	gen atomic.Uint64

	// mu guards valid and payload use after a reader has located the
	// entry (invalidated strategies only).
	mu    sync.Mutex
	valid bool

	// freed is set by the allocator before poisoning the payload.
	freed atomic.Bool

	payload [PayloadSize]byte
}

// bucket is a singly linked chain of entries sharing one hash slot.
type bucket struct {
	head atomic.Pointer[entry]
	_    [56]byte // keep heads on separate cache lines
}

// Table is a fixed array of BucketCount buckets. It is never resized.
//
// Table carries no synchronization policy: chain mutation (link, unlink)
// must be serialized by the caller. Lookups may run concurrently with a
// single mutator and see either the old or the new chain.
type Table struct {
	buckets [BucketCount]bucket
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

func bucketIndex(id uint32) uint32 {
	return id % BucketCount
}

// find walks the bucket chain for id and returns the first match, or nil.
func (t *Table) find(id uint32) *entry {
	for e := t.buckets[bucketIndex(id)].head.Load(); e != nil; e = e.next.Load() {
		if e.id == id {
			return e
		}
	}
	return nil
}

// lookup is find plus the generation observed at the match. Readers
// pass both to Store.consume.
func (t *Table) lookup(id uint32) (*entry, uint64) {
	for e := t.buckets[bucketIndex(id)].head.Load(); e != nil; e = e.next.Load() {
		if e.id == id {
			return e, e.gen.Load()
		}
	}
	return nil, 0
}

// link inserts e at the head of its bucket.
func (t *Table) link(e *entry) {
	b := &t.buckets[bucketIndex(e.id)]
	e.next.Store(b.head.Load())
	b.head.Store(e)
}

// unlink removes e from its bucket chain without freeing it.
// e.next is left intact so readers standing on e can keep walking.
func (t *Table) unlink(e *entry) bool {
	link := &t.buckets[bucketIndex(e.id)].head
	for cur := link.Load(); cur != nil; cur = link.Load() {
		if cur == e {
			link.Store(e.next.Load())
			return true
		}
		link = &cur.next
	}
	return false
}

// Contains reports whether id is linked in the table.
func (t *Table) Contains(id uint32) bool {
	return t.find(id) != nil
}

// Payload returns the text stored under id (up to the NUL terminator).
// Not safe for use concurrently with writers that reclaim entries.
func (t *Table) Payload(id uint32) (string, bool) {
	e := t.find(id)
	if e == nil {
		return "", false
	}
	buf := e.payload
	if i := bytes.IndexByte(buf[:], 0); i >= 0 {
		return string(buf[:i]), true
	}
	return string(buf[:]), true
}

// Keys returns every linked id, bucket by bucket.
func (t *Table) Keys() []uint32 {
	var keys []uint32
	for i := range t.buckets {
		for e := t.buckets[i].head.Load(); e != nil; e = e.next.Load() {
			keys = append(keys, e.id)
		}
	}
	return keys
}

// Len returns the number of linked entries.
func (t *Table) Len() int {
	n := 0
	for i := range t.buckets {
		for e := t.buckets[i].head.Load(); e != nil; e = e.next.Load() {
			n++
		}
	}
	return n
}
