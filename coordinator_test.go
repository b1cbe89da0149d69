// coordinator_test.go: tests for the benchmark coordinator
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package rcuht

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// runWithTimeout fails the test if Run does not return within d.
func runWithTimeout(t *testing.T, c *Coordinator, ctx context.Context, d time.Duration) (*Report, error) {
	t.Helper()
	type result struct {
		report *Report
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		r, err := c.Run(ctx)
		ch <- result{r, err}
	}()
	select {
	case res := <-ch:
		return res.report, res.err
	case <-time.After(d):
		t.Fatal("Coordinator.Run did not return")
		return nil, nil
	}
}

// Under a reject-duplicates strategy every successful insert makes a key
// present and every successful remove makes it absent, so the operation
// log determines the final table exactly.
func TestCoordinator_FourWorkerScenario(t *testing.T) {
	const keySpace = 128

	for _, kind := range concurrentStrategies() {
		t.Run(string(kind), func(t *testing.T) {
			var inserted, removed [keySpace]atomic.Int64

			coord, err := NewCoordinator(Config{
				Strategy:    kind,
				Workers:     4,
				Operations:  4000,
				KeySpace:    keySpace,
				Trials:      1,
				Thresholds:  Thresholds{Insert: 12, Remove: 25, Read: 255, Reject: 255},
				SeedPayload: "seed",
				OnOperation: func(op OpKind, id uint32, ok bool) {
					if !ok {
						return
					}
					switch op {
					case OpInsert:
						inserted[id].Add(1)
					case OpRemove:
						removed[id].Add(1)
					}
				},
			})
			if err != nil {
				t.Fatalf("NewCoordinator failed: %v", err)
			}

			report, err := runWithTimeout(t, coord, context.Background(), 30*time.Second)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if len(report.Trials) != 1 {
				t.Fatalf("trials = %d, want 1", len(report.Trials))
			}
			trial := report.Trials[0]

			present := make(map[uint32]bool)
			for _, id := range trial.Keys {
				if present[id] {
					t.Fatalf("key %d linked twice", id)
				}
				present[id] = true
			}

			for id := uint32(0); id < keySpace; id++ {
				seeded := int64(0)
				if id%2 == 0 {
					seeded = 1
				}
				ins, rem := inserted[id].Load(), removed[id].Load()

				if present[id] && seeded+ins == 0 {
					t.Errorf("key %d present but never seeded or inserted", id)
				}
				if !present[id] && seeded+ins > 0 && rem == 0 {
					t.Errorf("key %d missing but never removed", id)
				}
				if kind.RejectsDuplicates() {
					want := seeded + ins - rem
					got := int64(0)
					if present[id] {
						got = 1
					}
					if got != want {
						t.Errorf("key %d: seeded=%d inserted=%d removed=%d but present=%v",
							id, seeded, ins, rem, present[id])
					}
				}
			}

			if trial.Violations != 0 {
				t.Errorf("violations = %d, want 0", trial.Violations)
			}
			if trial.Ops() != 4000 {
				t.Errorf("ops = %d, want 4000", trial.Ops())
			}
			for _, w := range trial.Workers {
				if w.Ops() != 1000 {
					t.Errorf("worker %d ran %d ops, want 1000", w.Worker, w.Ops())
				}
			}
			if trial.Mean < 0 || trial.Millis() < 0 {
				t.Errorf("mean = %v, want non-negative", trial.Mean)
			}
		})
	}
}

func TestCoordinator_TrialsReportDurations(t *testing.T) {
	coord, err := NewCoordinator(Config{
		Strategy:   StrategyGracePeriodRelease,
		Workers:    2,
		Operations: 500,
		KeySpace:   32,
		Trials:     3,
	})
	if err != nil {
		t.Fatalf("NewCoordinator failed: %v", err)
	}

	report, err := runWithTimeout(t, coord, context.Background(), 30*time.Second)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Trials) != 3 {
		t.Fatalf("trials = %d, want 3", len(report.Trials))
	}
	for i, trial := range report.Trials {
		if trial.Index != i {
			t.Errorf("trial %d has index %d", i, trial.Index)
		}
		if trial.Mean < 0 {
			t.Errorf("trial %d mean = %v", i, trial.Mean)
		}
		// Every trial starts from a freshly seeded table.
		if trial.Alloc.Allocs < 16 {
			t.Errorf("trial %d allocated %d entries, want at least the 16 seeds", i, trial.Alloc.Allocs)
		}
	}
	if report.Median() < 0 || report.Mean() < 0 {
		t.Error("summary durations must be non-negative")
	}
}

func TestCoordinator_ZeroOperations(t *testing.T) {
	coord, err := NewCoordinator(Config{
		Strategy:   StrategyNoSync,
		Workers:    1,
		Operations: 0,
		Trials:     1,
	})
	if err != nil {
		t.Fatalf("NewCoordinator failed: %v", err)
	}
	if coord.Config().Operations != 1 {
		t.Errorf("Operations = %d, want clamped to 1", coord.Config().Operations)
	}

	report, err := runWithTimeout(t, coord, context.Background(), 10*time.Second)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Trials) != 1 {
		t.Fatalf("trials = %d, want 1", len(report.Trials))
	}
	if got := report.Trials[0].Ops(); got != 1 {
		t.Errorf("ops = %d, want 1", got)
	}
	if report.Trials[0].Mean < 0 {
		t.Errorf("mean = %v, want non-negative", report.Trials[0].Mean)
	}
}

func TestCoordinator_PollJoin(t *testing.T) {
	coord, err := NewCoordinator(Config{
		Strategy:     StrategyInvalidatedDeferred,
		Workers:      4,
		Operations:   2000,
		Trials:       2,
		Join:         JoinPoll,
		PollInterval: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewCoordinator failed: %v", err)
	}

	report, err := runWithTimeout(t, coord, context.Background(), 30*time.Second)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Trials) != 2 {
		t.Fatalf("trials = %d, want 2", len(report.Trials))
	}
	for _, trial := range report.Trials {
		if trial.Ops() != 2000 {
			t.Errorf("ops = %d, want 2000", trial.Ops())
		}
		if trial.Reclaim.Retired != trial.Reclaim.Executed {
			t.Errorf("reclaim stats after drain = %+v", trial.Reclaim)
		}
	}
}

func TestCoordinator_StalledJoinAborts(t *testing.T) {
	release := make(chan struct{})
	var once sync.Once
	unblock := func() { once.Do(func() { close(release) }) }
	defer unblock()

	coord, err := NewCoordinator(Config{
		Strategy:     StrategyGlobalLock,
		Workers:      2,
		Operations:   10,
		Trials:       3,
		Join:         JoinPoll,
		PollInterval: time.Millisecond,
		StallPolls:   5,
		OnOperation: func(OpKind, uint32, bool) {
			<-release
		},
	})
	if err != nil {
		t.Fatalf("NewCoordinator failed: %v", err)
	}

	report, err := runWithTimeout(t, coord, context.Background(), 10*time.Second)
	unblock()

	if err == nil {
		t.Fatal("expected the stalled join to fail the run")
	}
	if !IsJoinStalled(err) {
		t.Errorf("expected a join stall, got %v", err)
	}
	if GetErrorCode(err) != ErrCodeTrialAborted {
		t.Errorf("error code = %s, want %s", GetErrorCode(err), ErrCodeTrialAborted)
	}
	if len(report.Trials) != 0 {
		t.Errorf("remaining trials should be aborted, got %d", len(report.Trials))
	}
	if coord.Phase() != PhaseIdle {
		t.Errorf("phase = %s, want idle", coord.Phase())
	}
}

func TestCoordinator_CancelledContext(t *testing.T) {
	coord, err := NewCoordinator(Config{Workers: 1, Operations: 10, Trials: 3})
	if err != nil {
		t.Fatalf("NewCoordinator failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := coord.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(report.Trials) != 0 {
		t.Errorf("trials = %d, want 0", len(report.Trials))
	}
}

func TestCoordinator_WorkerPanicIsRecovered(t *testing.T) {
	coord, err := NewCoordinator(Config{
		Strategy:   StrategyGlobalLock,
		Workers:    2,
		Operations: 10,
		Trials:     1,
		OnOperation: func(OpKind, uint32, bool) {
			panic("boom")
		},
	})
	if err != nil {
		t.Fatalf("NewCoordinator failed: %v", err)
	}

	_, err = runWithTimeout(t, coord, context.Background(), 10*time.Second)
	if err == nil {
		t.Fatal("expected an error from a panicking worker")
	}
	if !hasCodeInChain(err, ErrCodePanicRecovered) {
		t.Errorf("expected a recovered panic in the chain, got %v", err)
	}
}

func TestCoordinator_Phases(t *testing.T) {
	var coord *Coordinator
	var mu sync.Mutex
	seen := make(map[Phase]bool)

	coord, err := NewCoordinator(Config{
		Workers:    2,
		Operations: 100,
		Trials:     1,
		OnOperation: func(OpKind, uint32, bool) {
			p := coord.Phase()
			mu.Lock()
			seen[p] = true
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("NewCoordinator failed: %v", err)
	}
	if coord.Phase() != PhaseIdle {
		t.Errorf("initial phase = %s, want idle", coord.Phase())
	}

	if _, err := runWithTimeout(t, coord, context.Background(), 10*time.Second); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for p := range seen {
		if p != PhaseRunning && p != PhaseDraining {
			t.Errorf("worker observed phase %s", p)
		}
	}
	if coord.Phase() != PhaseIdle {
		t.Errorf("final phase = %s, want idle", coord.Phase())
	}
}

func TestNewCoordinator_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		code   string
	}{
		{"unknown strategy", Config{Strategy: "spin"}, string(ErrCodeInvalidStrategy)},
		{"unknown join", Config{Join: "busy"}, string(ErrCodeInvalidJoin)},
		{"unordered thresholds", Config{Thresholds: Thresholds{Insert: 90, Remove: 10, Read: 255, Reject: 255}}, string(ErrCodeInvalidThresholds)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCoordinator(tt.config)
			if err == nil {
				t.Fatal("expected an error")
			}
			if string(GetErrorCode(err)) != tt.code {
				t.Errorf("error code = %s, want %s", GetErrorCode(err), tt.code)
			}
			if !IsConfigError(err) {
				t.Error("expected a configuration error")
			}
		})
	}
}

func TestPhase_String(t *testing.T) {
	want := map[Phase]string{
		PhaseIdle:      "idle",
		PhaseSeeding:   "seeding",
		PhaseRunning:   "running",
		PhaseDraining:  "draining",
		PhaseReporting: "reporting",
		Phase(42):      "unknown",
	}
	for p, s := range want {
		if p.String() != s {
			t.Errorf("Phase(%d).String() = %q, want %q", p, p.String(), s)
		}
	}
}
