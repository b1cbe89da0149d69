// config.go: configuration for rcuht benchmarks
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package rcuht

import (
	"runtime"
	"strings"
	"time"

	"github.com/agilira/go-timecache"
)

// JoinMode selects how the coordinator waits for its workers.
type JoinMode string

const (
	// JoinWait blocks on an errgroup until every worker returns.
	JoinWait JoinMode = "wait"

	// JoinPoll polls a progress counter and fails the trial if it stops
	// advancing for StallPolls consecutive polls.
	JoinPoll JoinMode = "poll"
)

// ParseJoinMode maps a join discipline name to its JoinMode.
func ParseJoinMode(name string) (JoinMode, error) {
	switch JoinMode(strings.ToLower(strings.TrimSpace(name))) {
	case JoinWait, "":
		return JoinWait, nil
	case JoinPoll:
		return JoinPoll, nil
	}
	return "", NewErrInvalidJoin(name)
}

// Thresholds is the ordered operation table a worker compares its random
// byte n against: n <= Insert inserts, n <= Remove removes, n <= Read reads,
// anything else takes the forced-failure branch.
type Thresholds struct {
	Insert uint8
	Remove uint8
	Read   uint8
	Reject uint8
}

func (t Thresholds) isZero() bool {
	return t == Thresholds{}
}

func (t Thresholds) validate() error {
	if t.Insert > t.Remove || t.Remove > t.Read || t.Read > t.Reject {
		return NewErrInvalidThresholds(t)
	}
	return nil
}

// Classify maps a random byte to the operation it selects.
func (t Thresholds) Classify(n byte) OpKind {
	switch {
	case n <= t.Insert:
		return OpInsert
	case n <= t.Remove:
		return OpRemove
	case n <= t.Read:
		return OpRead
	default:
		return OpReject
	}
}

// Config holds configuration parameters for a benchmark run.
type Config struct {
	// Strategy selects the synchronization discipline.
	// Default: StrategyGracePeriod.
	Strategy StrategyKind

	// KeySpace is the exclusive upper bound of benchmark keys.
	// Rounded up to a power of two, minimum 2. Default: DefaultKeySpace.
	KeySpace int

	// Workers is the size of the worker pool.
	// Clamped to >= 1. DefaultConfig uses runtime.GOMAXPROCS(0).
	Workers int

	// Operations is the total operation count of one trial, split evenly
	// across workers. Clamped to >= 1. DefaultConfig uses DefaultOperations.
	Operations int

	// Trials is the number of repeated Seeding-to-Reporting cycles.
	// Clamped to >= 1. DefaultConfig uses DefaultTrials.
	Trials int

	// Thresholds is the operation mix. Must be non-decreasing.
	// Default: DefaultThresholds.
	Thresholds Thresholds

	// ReadDelay is the simulated work performed on every read payload.
	// Default: 0.
	ReadDelay time.Duration

	// Join selects the join discipline. Default: JoinWait.
	Join JoinMode

	// PollInterval is the poll period of JoinPoll. Default: DefaultPollInterval.
	PollInterval time.Duration

	// StallPolls is how many consecutive polls without progress JoinPoll
	// tolerates. Default: DefaultStallPolls.
	StallPolls int

	// ReclaimInterval is the drain period of deferred reclamation.
	// Default: DefaultReclaimInterval.
	ReclaimInterval time.Duration

	// MaxEntries bounds the number of live entries; inserts beyond it fail
	// with an allocation error. 0 means unbounded.
	MaxEntries int

	// SeedPayload is stored under every even key during seeding.
	// Default: DefaultSeedPayload.
	SeedPayload string

	// InsertPayload is stored by worker inserts. Default: DefaultInsertPayload.
	InsertPayload string

	// Logger is used for progress and diagnostics.
	// If nil, NoOpLogger is used.
	Logger Logger

	// TimeProvider stamps worker start times.
	// If nil, a go-timecache backed provider is used.
	TimeProvider TimeProvider

	// MetricsCollector receives per-operation latencies and reclamation
	// events. If nil, NoOpMetricsCollector is used and nothing is timed.
	MetricsCollector MetricsCollector

	// NewRandom returns the random source of one worker.
	// If nil, every worker uses the fastrand-backed source.
	NewRandom func(worker int) RandomSource

	// OnOperation is called after every worker operation with the
	// operation, its key and whether it succeeded. It runs on worker
	// goroutines and must be fast and safe for concurrent use.
	OnOperation func(op OpKind, id uint32, ok bool)
}

// Validate normalizes the configuration in place.
//
// Counts below 1 are clamped to 1; only an unknown strategy or join name
// and unordered thresholds are rejected.
//
// Default values applied:
//   - Strategy: StrategyGracePeriod if empty
//   - KeySpace: DefaultKeySpace if <= 0, else next power of two in
//     [2, MaxKeySpace]
//   - Workers, Operations, Trials: 1 if <= 0
//   - Thresholds: DefaultThresholds if zero
//   - Join: JoinWait if empty
//   - PollInterval, StallPolls, ReclaimInterval: package defaults if <= 0
//   - SeedPayload, InsertPayload: package defaults if empty
//   - Logger, TimeProvider, MetricsCollector, NewRandom: defaults if nil
func (c *Config) Validate() error {
	if c.Strategy == "" {
		c.Strategy = StrategyGracePeriod
	}
	kind, err := ParseStrategy(string(c.Strategy))
	if err != nil {
		return err
	}
	c.Strategy = kind

	join, err := ParseJoinMode(string(c.Join))
	if err != nil {
		return err
	}
	c.Join = join

	if c.KeySpace <= 0 {
		c.KeySpace = DefaultKeySpace
	}
	c.KeySpace = nextPowerOf2(min(c.KeySpace, MaxKeySpace))
	if c.KeySpace < 2 {
		c.KeySpace = 2
	}

	c.Workers = max(c.Workers, 1)
	c.Operations = max(c.Operations, 1)
	c.Trials = max(c.Trials, 1)

	if c.Thresholds.isZero() {
		c.Thresholds = DefaultThresholds
	}
	if err := c.Thresholds.validate(); err != nil {
		return err
	}

	if c.ReadDelay < 0 {
		c.ReadDelay = 0
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.StallPolls <= 0 {
		c.StallPolls = DefaultStallPolls
	}
	if c.ReclaimInterval <= 0 {
		c.ReclaimInterval = DefaultReclaimInterval
	}
	if c.MaxEntries < 0 {
		c.MaxEntries = 0
	}

	if c.SeedPayload == "" {
		c.SeedPayload = DefaultSeedPayload
	}
	if c.InsertPayload == "" {
		c.InsertPayload = DefaultInsertPayload
	}

	if c.Logger == nil {
		c.Logger = NoOpLogger{}
	}
	if c.TimeProvider == nil {
		c.TimeProvider = &systemTimeProvider{}
	}
	if c.MetricsCollector == nil {
		c.MetricsCollector = NoOpMetricsCollector{}
	}
	if c.NewRandom == nil {
		c.NewRandom = func(int) RandomSource { return FastRandom() }
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	c := Config{
		Workers:    runtime.GOMAXPROCS(0),
		Operations: DefaultOperations,
		Trials:     DefaultTrials,
	}
	_ = c.Validate() // defaults always validate
	return c
}

// systemTimeProvider is the default time provider using go-timecache.
type systemTimeProvider struct{}

func (t *systemTimeProvider) Now() int64 {
	return timecache.CachedTimeNano()
}
