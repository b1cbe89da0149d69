// allocator_test.go: unit tests for pooled entry allocation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package rcuht

import (
	"bytes"
	"testing"
)

func TestAllocator_AllocTerminatesPayload(t *testing.T) {
	a := newAllocator(0)

	e, err := a.alloc(3, []byte("hello"))
	if err != nil {
		t.Fatalf("alloc failed: %v", err)
	}
	if e.id != 3 {
		t.Errorf("id = %d, want 3", e.id)
	}
	if !e.valid || e.freed.Load() {
		t.Error("fresh entry should be valid and not freed")
	}
	if !bytes.HasPrefix(e.payload[:], []byte("hello\x00")) {
		t.Errorf("payload = %q", e.payload[:8])
	}
	if e.payload[PayloadSize-1] != 0 {
		t.Error("payload must end in NUL")
	}
}

func TestAllocator_AllocTruncatesLongPayload(t *testing.T) {
	a := newAllocator(0)

	long := bytes.Repeat([]byte{'z'}, PayloadSize*2)
	e, err := a.alloc(1, long)
	if err != nil {
		t.Fatalf("alloc failed: %v", err)
	}
	if !bytes.Equal(e.payload[:PayloadSize-1], long[:PayloadSize-1]) {
		t.Error("payload prefix not copied")
	}
	if e.payload[PayloadSize-1] != 0 {
		t.Error("truncated payload must still end in NUL")
	}
}

func TestAllocator_FreePoisons(t *testing.T) {
	a := newAllocator(0)

	e, err := a.alloc(9, []byte("data"))
	if err != nil {
		t.Fatalf("alloc failed: %v", err)
	}
	a.free(e)

	if !e.freed.Load() {
		t.Error("freed flag not set")
	}
	if e.valid {
		t.Error("freed entry still valid")
	}
	for i, b := range e.payload {
		if b != poisonByte {
			t.Fatalf("payload[%d] = %#x, want poison %#x", i, b, poisonByte)
		}
	}

	stats := a.stats()
	if stats.Live != 0 || stats.Allocs != 1 || stats.Frees != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestAllocator_ReusedEntryIsClean(t *testing.T) {
	a := newAllocator(0)

	for i := 0; i < 100; i++ {
		e, err := a.alloc(uint32(i), []byte("v"))
		if err != nil {
			t.Fatalf("alloc failed: %v", err)
		}
		if e.freed.Load() || e.payload[PayloadSize-1] == poisonByte {
			t.Fatalf("alloc returned a poisoned entry at iteration %d", i)
		}
		if e.next.Load() != nil {
			t.Fatalf("alloc returned a linked entry at iteration %d", i)
		}
		a.free(e)
	}
}

func TestAllocator_GenerationAdvances(t *testing.T) {
	a := newAllocator(0)

	e, err := a.alloc(2, []byte("x"))
	if err != nil {
		t.Fatalf("alloc failed: %v", err)
	}
	gen := e.gen.Load()

	a.free(e)
	if e.gen.Load() == gen {
		t.Error("free should advance the generation")
	}
	freedGen := e.gen.Load()

	fill(e, 2, []byte("x"))
	if g := e.gen.Load(); g == gen || g == freedGen {
		t.Errorf("refill generation = %d, want distinct from %d and %d", g, gen, freedGen)
	}
}

func TestAllocator_Limit(t *testing.T) {
	a := newAllocator(2)

	e1, err := a.alloc(1, nil)
	if err != nil {
		t.Fatalf("first alloc failed: %v", err)
	}
	if _, err := a.alloc(2, nil); err != nil {
		t.Fatalf("second alloc failed: %v", err)
	}

	_, err = a.alloc(3, nil)
	if err == nil {
		t.Fatal("alloc beyond the limit should fail")
	}
	if !IsAllocationFailure(err) {
		t.Errorf("expected allocation failure, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("allocation failures should be retryable")
	}
	if a.stats().Live != 2 {
		t.Errorf("failed alloc changed live count: %d", a.stats().Live)
	}

	a.free(e1)
	if _, err := a.alloc(3, nil); err != nil {
		t.Errorf("alloc after free should succeed: %v", err)
	}
}
