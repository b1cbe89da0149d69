// Package rcuht benchmarks synchronization strategies for a fixed-size
// concurrent hash table under mixed insert, remove and read traffic.
//
// # Overview
//
// The same bucketed table (BucketCount chains, PayloadSize byte payloads)
// is driven through one of six strategies:
//
//   - no-sync: no synchronization at all; the single-worker floor
//   - global-lock: one mutex around every operation
//   - grace-period-read: lock-free reads inside read-side critical
//     sections, writers serialized by a mutex, removed entries freed
//     after a grace period (the writer lock is held across the grace
//     period when an insert replaces a key)
//   - grace-period-read-release: as above, but a replaced entry is
//     reclaimed after the writer lock is released
//   - invalidated-grace-period-read: adds a per-entry lock and validity
//     flag so readers never consume an entry that is being removed;
//     inserts of present keys are rejected
//   - invalidated-grace-period-read-deferred: as above with frees deferred
//     to a background reclaimer
//
// # Quick Start
//
//	coord, err := rcuht.NewCoordinator(rcuht.Config{
//	    Strategy:   rcuht.StrategyInvalidated,
//	    Workers:    4,
//	    Operations: 4000,
//	    KeySpace:   128,
//	    Trials:     5,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := coord.Run(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("median %.3f ms\n", float64(report.Median())/1e6)
//
// # Reclamation
//
// Reclaimer implements grace periods with a 64-bit epoch and two reader
// counters selected by epoch parity. ReadLock/ReadUnlock bracket a
// critical section and never block. Synchronize flips the epoch and waits
// only for readers counted under the previous parity, so readers arriving
// during a grace period cannot prolong it. Retire defers a free until the
// next grace period completes; Barrier waits for every retired free.
//
// Freed entries are poisoned and recycled through a pool. A read that
// ever sees poisoned memory is counted in TrialResult.Violations; the
// grace-period strategies must keep it at zero.
//
// # Coordinator
//
// Each trial seeds every even key, starts Workers goroutines that each run
// their share of Operations, joins them (JoinWait, or JoinPoll with stall
// detection), and reports the mean worker duration. A stalled join aborts
// the remaining trials and is returned as an error.
//
// # Configuration
//
// Config.Validate normalizes a Config in place. LoadConfigFile overlays a
// YAML or JSON file, and HotConfig watches one with Argus.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package rcuht
