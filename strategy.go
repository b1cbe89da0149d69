// strategy.go: strategy kinds and selection
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package rcuht

import "strings"

// StrategyKind names one synchronization discipline.
type StrategyKind string

const (
	// StrategyNoSync applies no synchronization. It is the correctness and
	// performance floor and is only valid with a single worker.
	StrategyNoSync StrategyKind = "no-sync"

	// StrategyGlobalLock serializes every operation behind one mutex.
	StrategyGlobalLock StrategyKind = "global-lock"

	// StrategyGracePeriod reads without locks inside a critical section and
	// waits for a grace period before freeing. Replacing an existing key
	// holds the writer lock for the whole grace period.
	StrategyGracePeriod StrategyKind = "grace-period-read"

	// StrategyGracePeriodRelease is StrategyGracePeriod except that a
	// replaced entry is reclaimed after the writer lock is released.
	StrategyGracePeriodRelease StrategyKind = "grace-period-read-release"

	// StrategyInvalidated adds a per-entry lock and validity flag to
	// StrategyGracePeriod and rejects inserts of present keys.
	StrategyInvalidated StrategyKind = "invalidated-grace-period-read"

	// StrategyInvalidatedDeferred is StrategyInvalidated with asynchronous
	// reclamation.
	StrategyInvalidatedDeferred StrategyKind = "invalidated-grace-period-read-deferred"
)

// Strategies returns every strategy kind, from simplest to most elaborate.
func Strategies() []StrategyKind {
	return []StrategyKind{
		StrategyNoSync,
		StrategyGlobalLock,
		StrategyGracePeriod,
		StrategyGracePeriodRelease,
		StrategyInvalidated,
		StrategyInvalidatedDeferred,
	}
}

// Concurrent reports whether the strategy may be driven by more than one
// worker.
func (k StrategyKind) Concurrent() bool {
	return k != StrategyNoSync
}

// RejectsDuplicates reports whether Insert refuses keys already present
// instead of replacing them.
func (k StrategyKind) RejectsDuplicates() bool {
	return k == StrategyInvalidated || k == StrategyInvalidatedDeferred
}

// ParseStrategy maps a strategy name to its kind. Matching is case
// insensitive and accepts underscores for dashes.
func ParseStrategy(name string) (StrategyKind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for _, k := range Strategies() {
		if string(k) == norm {
			return k, nil
		}
	}
	return "", NewErrInvalidStrategy(name)
}

// NewStrategy builds the strategy of the given kind over s.
func NewStrategy(kind StrategyKind, s *Store) (Strategy, error) {
	switch kind {
	case StrategyNoSync:
		return &noSync{s: s}, nil
	case StrategyGlobalLock:
		return &globalLock{s: s}, nil
	case StrategyGracePeriod:
		return &gracePeriodRead{s: s, kind: kind, holdOnReplace: true}, nil
	case StrategyGracePeriodRelease:
		return &gracePeriodRead{s: s, kind: kind}, nil
	case StrategyInvalidated:
		return &invalidatedRead{s: s, kind: kind}, nil
	case StrategyInvalidatedDeferred:
		return &invalidatedRead{s: s, kind: kind, deferred: true}, nil
	}
	return nil, NewErrInvalidStrategy(string(kind))
}
