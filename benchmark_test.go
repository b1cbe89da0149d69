// benchmark_test.go: micro benchmarks for strategies and grace periods
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package rcuht

import (
	"context"
	"testing"
)

func benchStrategy(b *testing.B, kind StrategyKind, thresholds Thresholds) {
	cfg := DefaultConfig()
	cfg.Strategy = kind
	cfg.Thresholds = thresholds
	store := newTestStore(b, cfg)
	if err := Seed(store, uint32(cfg.KeySpace), []byte(cfg.SeedPayload)); err != nil {
		b.Fatalf("Seed failed: %v", err)
	}
	strategy, err := NewStrategy(kind, store)
	if err != nil {
		b.Fatalf("NewStrategy failed: %v", err)
	}
	payload := []byte(cfg.InsertPayload)
	keySpace := uint32(cfg.KeySpace)

	step := func(rnd RandomSource) {
		id := rnd.Uint32n(keySpace)
		switch thresholds.Classify(rnd.Byte()) {
		case OpInsert:
			_, _ = strategy.Insert(id, payload)
		case OpRemove:
			strategy.Remove(id)
		case OpRead:
			strategy.Read(id)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	if !kind.Concurrent() {
		rnd := SeededRandom(1, 0)
		for i := 0; i < b.N; i++ {
			step(rnd)
		}
		return
	}
	b.RunParallel(func(pb *testing.PB) {
		rnd := FastRandom()
		for pb.Next() {
			step(rnd)
		}
	})
}

func BenchmarkStrategy_ReadMostly(b *testing.B) {
	for _, kind := range Strategies() {
		b.Run(string(kind), func(b *testing.B) {
			benchStrategy(b, kind, DefaultThresholds)
		})
	}
}

func BenchmarkStrategy_WriteHeavy(b *testing.B) {
	mix := Thresholds{Insert: 100, Remove: 200, Read: 255, Reject: 255}
	for _, kind := range Strategies() {
		b.Run(string(kind), func(b *testing.B) {
			benchStrategy(b, kind, mix)
		})
	}
}

func BenchmarkReclaimer_ReadLock(b *testing.B) {
	r := NewReclaimer(ReclaimerConfig{})
	defer func() { _ = r.Close() }()

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			r.ReadUnlock(r.ReadLock())
		}
	})
}

func BenchmarkReclaimer_Synchronize(b *testing.B) {
	r := NewReclaimer(ReclaimerConfig{})
	defer func() { _ = r.Close() }()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		r.Synchronize()
	}
}

func BenchmarkReclaimer_Retire(b *testing.B) {
	r := NewReclaimer(ReclaimerConfig{})
	defer func() { _ = r.Close() }()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		r.Retire(func() {})
	}
	r.Barrier()
}

func BenchmarkCoordinator_Trial(b *testing.B) {
	for _, kind := range []StrategyKind{StrategyGlobalLock, StrategyInvalidated, StrategyInvalidatedDeferred} {
		b.Run(string(kind), func(b *testing.B) {
			coord, err := NewCoordinator(Config{
				Strategy:   kind,
				Workers:    4,
				Operations: 4000,
				Trials:     1,
			})
			if err != nil {
				b.Fatalf("NewCoordinator failed: %v", err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := coord.Run(context.Background()); err != nil {
					b.Fatalf("Run failed: %v", err)
				}
			}
		})
	}
}
