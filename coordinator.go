// coordinator.go: benchmark coordinator driving seeding, workers and joins
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package rcuht

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Phase is the coordinator state.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseSeeding
	PhaseRunning
	PhaseDraining
	PhaseReporting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSeeding:
		return "seeding"
	case PhaseRunning:
		return "running"
	case PhaseDraining:
		return "draining"
	case PhaseReporting:
		return "reporting"
	}
	return "unknown"
}

// Coordinator seeds a fresh table, drives a worker pool against one
// strategy and measures elapsed time, once per trial.
type Coordinator struct {
	config Config
	logger Logger
	phase  atomic.Int32
}

// NewCoordinator validates config and returns a Coordinator.
func NewCoordinator(config Config) (*Coordinator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Strategy == StrategyNoSync && config.Workers > 1 {
		config.Logger.Warn("no-sync strategy is unsafe with more than one worker",
			"workers", config.Workers)
	}
	return &Coordinator{config: config, logger: config.Logger}, nil
}

// Config returns the normalized configuration.
func (c *Coordinator) Config() Config {
	return c.config
}

// Phase returns the current coordinator state.
func (c *Coordinator) Phase() Phase {
	return Phase(c.phase.Load())
}

func (c *Coordinator) setPhase(p Phase) {
	c.phase.Store(int32(p))
	c.logger.Debug("phase", "phase", p.String())
}

// Run executes every configured trial. A failed trial (a stalled join,
// a seeding failure or ctx cancellation) aborts the remaining trials; the
// report returned alongside the error holds the trials that completed.
//
// Workers are never interrupted mid-operation: ctx is only checked
// between trials and while polling.
func (c *Coordinator) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		Strategy:   c.config.Strategy,
		Workers:    c.config.Workers,
		Operations: c.config.Operations,
	}
	defer c.setPhase(PhaseIdle)

	for i := 0; i < c.config.Trials; i++ {
		if err := ctx.Err(); err != nil {
			return report, NewErrTrialAborted(i, err)
		}
		res, err := c.runTrial(ctx, i)
		if err != nil {
			c.logger.Error("trial failed, aborting remaining trials",
				"trial", i, "strategy", string(c.config.Strategy), "error", err)
			return report, NewErrTrialAborted(i, err)
		}
		report.Trials = append(report.Trials, res)
	}
	return report, nil
}

func (c *Coordinator) runTrial(ctx context.Context, trial int) (TrialResult, error) {
	cfg := c.config

	store := NewStore(cfg)
	closeStore := true
	defer func() {
		if closeStore {
			_ = store.Close()
		}
	}()

	c.setPhase(PhaseSeeding)
	if err := Seed(store, uint32(cfg.KeySpace), []byte(cfg.SeedPayload)); err != nil {
		return TrialResult{}, err
	}

	strategy, err := NewStrategy(cfg.Strategy, store)
	if err != nil {
		return TrialResult{}, err
	}

	c.setPhase(PhaseRunning)
	var progress atomic.Uint64
	workers := make([]*worker, cfg.Workers)
	for i := range workers {
		workers[i] = &worker{
			id:          i,
			ops:         share(cfg.Operations, cfg.Workers, i),
			strategy:    strategy,
			rnd:         cfg.NewRandom(i),
			thresholds:  cfg.Thresholds,
			keySpace:    uint32(cfg.KeySpace),
			payload:     []byte(cfg.InsertPayload),
			progress:    &progress,
			clock:       cfg.TimeProvider,
			logger:      c.logger,
			onOperation: cfg.OnOperation,
		}
	}

	results := make([]WorkerResult, len(workers))
	var joinErr error
	switch cfg.Join {
	case JoinPoll:
		joinErr = c.joinPoll(ctx, trial, workers, results, &progress)
	default:
		joinErr = c.joinWait(workers, results)
	}
	if joinErr != nil {
		// Polling gives up on workers that may still be running.
		closeStore = cfg.Join != JoinPoll
		return TrialResult{}, joinErr
	}

	// Deferred frees still in flight belong to this trial.
	store.Reclaimer().Barrier()

	c.setPhase(PhaseReporting)
	res := TrialResult{
		Index:      trial,
		Mean:       meanElapsed(results),
		Workers:    results,
		Keys:       store.Table().Keys(),
		Violations: store.Violations(),
		Reclaim:    store.Reclaimer().Stats(),
		Alloc:      store.AllocStats(),
	}
	c.logger.Info("trial complete",
		"trial", trial,
		"strategy", string(cfg.Strategy),
		"workers", cfg.Workers,
		"mean_ms", res.Millis(),
		"entries", len(res.Keys),
		"grace_periods", res.Reclaim.GracePeriods,
		"violations", res.Violations)
	return res, nil
}

// Seed populates every even key in [0, keySpace) with payload using the
// unsynchronized insert path. Seeding runs before any worker starts and
// is not recorded by the store's metrics collector.
func Seed(store *Store, keySpace uint32, payload []byte) error {
	for id := uint32(0); id < keySpace; id += 2 {
		if _, err := store.insertReplace(id, payload); err != nil {
			return NewErrSeedingFailed(id, err)
		}
	}
	return nil
}

// runWorker executes w and converts a panic into an error.
func runWorker(w *worker, out *WorkerResult) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewErrPanicRecovered(w.id, r)
		}
	}()
	*out = w.run()
	return nil
}

// joinWait spawns every worker on an errgroup and blocks until all return.
func (c *Coordinator) joinWait(workers []*worker, results []WorkerResult) error {
	var g errgroup.Group
	for i, w := range workers {
		g.Go(func() error {
			return runWorker(w, &results[i])
		})
	}
	c.setPhase(PhaseDraining)
	return g.Wait()
}

// joinPoll spawns every worker and polls until all have completed. If
// progress (completed operations plus completed workers) does not advance
// for StallPolls consecutive polls, the trial is declared stalled.
func (c *Coordinator) joinPoll(ctx context.Context, trial int, workers []*worker,
	results []WorkerResult, progress *atomic.Uint64) error {

	var (
		completed atomic.Int64
		errMu     sync.Mutex
		firstErr  error
	)
	for i, w := range workers {
		go func() {
			if err := runWorker(w, &results[i]); err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
			}
			completed.Add(1)
			progress.Add(1)
		}()
	}
	c.setPhase(PhaseDraining)

	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()

	total := int64(len(workers))
	last := progress.Load()
	stalled := 0
	for completed.Load() < total {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		cur := progress.Load()
		if cur != last {
			last, stalled = cur, 0
			continue
		}
		if completed.Load() == total {
			break
		}
		stalled++
		if stalled >= c.config.StallPolls {
			return NewErrJoinStalled(trial, int(completed.Load()), len(workers), stalled)
		}
	}

	errMu.Lock()
	defer errMu.Unlock()
	return firstErr
}

func meanElapsed(results []WorkerResult) time.Duration {
	if len(results) == 0 {
		return 0
	}
	var sum time.Duration
	for _, r := range results {
		sum += r.Elapsed
	}
	return sum / time.Duration(len(results))
}
