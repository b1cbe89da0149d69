// report.go: per-trial and per-run benchmark results
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package rcuht

import (
	"slices"
	"time"
)

// TrialResult is the outcome of one Seeding-to-Reporting cycle.
type TrialResult struct {
	// Index is the zero-based trial number
	Index int

	// Mean is the arithmetic mean of worker elapsed times
	Mean time.Duration

	// Workers holds one result per worker, in worker order
	Workers []WorkerResult

	// Keys lists the ids linked in the table after draining
	Keys []uint32

	// Violations counts reads that observed a reclaimed entry
	Violations uint64

	// Reclaim and Alloc are the store counters after draining
	Reclaim ReclaimStats
	Alloc   AllocStats
}

// Millis returns Mean in milliseconds, the unit trial timings are reported in.
func (t TrialResult) Millis() float64 {
	return float64(t.Mean) / float64(time.Millisecond)
}

// Ops returns the total number of operations executed in the trial.
func (t TrialResult) Ops() uint64 {
	var n uint64
	for _, w := range t.Workers {
		n += w.Ops()
	}
	return n
}

// Report collects the trials of one Coordinator.Run.
type Report struct {
	Strategy   StrategyKind
	Workers    int
	Operations int
	Trials     []TrialResult
}

// Durations returns the mean duration of every trial, in trial order.
func (r *Report) Durations() []time.Duration {
	out := make([]time.Duration, len(r.Trials))
	for i, t := range r.Trials {
		out[i] = t.Mean
	}
	return out
}

// Mean returns the average of the trial durations, or 0 without trials.
func (r *Report) Mean() time.Duration {
	if len(r.Trials) == 0 {
		return 0
	}
	var sum time.Duration
	for _, t := range r.Trials {
		sum += t.Mean
	}
	return sum / time.Duration(len(r.Trials))
}

// Median returns the median of the trial durations, or 0 without trials.
// Repeated trials are summarized by their median to damp scheduler noise.
func (r *Report) Median() time.Duration {
	d := r.Durations()
	if len(d) == 0 {
		return 0
	}
	slices.Sort(d)
	mid := len(d) / 2
	if len(d)%2 == 1 {
		return d[mid]
	}
	return (d[mid-1] + d[mid]) / 2
}

// Violations returns the read-safety violations across all trials.
func (r *Report) Violations() uint64 {
	var n uint64
	for _, t := range r.Trials {
		n += t.Violations
	}
	return n
}
