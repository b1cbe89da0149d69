// rcuht.go: package constants and defaults
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package rcuht

import "time"

const (
	// Version of the rcuht benchmark harness
	Version = "v0.1.0-dev"

	// BucketCount is the fixed number of hash slots in a Table.
	// Keys map to bucket id % BucketCount.
	BucketCount = 31

	// PayloadSize is the size of an entry payload in bytes.
	// The last byte is always a NUL terminator.
	PayloadSize = 128

	// DefaultKeySpace is the default exclusive upper bound for benchmark keys
	DefaultKeySpace = 256

	// MaxKeySpace is the largest key space Validate accepts. Keys are
	// uint32 and the bound must be a power of two that fits an int.
	MaxKeySpace = 1 << 30

	// DefaultOperations is the default total operation count per trial
	DefaultOperations = 10_000

	// DefaultTrials is the default number of repeated trials
	DefaultTrials = 5

	// DefaultPollInterval is the default poll period of the polling join
	DefaultPollInterval = 10 * time.Millisecond

	// DefaultStallPolls is the default number of consecutive polls without
	// progress after which a polling join is declared stalled
	DefaultStallPolls = 100

	// DefaultReclaimInterval is how often the deferred reclaimer drains
	// pending callbacks when no batch threshold is reached
	DefaultReclaimInterval = time.Millisecond

	// DefaultReclaimBatch is the number of pending callbacks that wakes the
	// deferred reclaimer early
	DefaultReclaimBatch = 64

	// DefaultSeedPayload is stored under every even key before a trial
	DefaultSeedPayload = "p_data_original"

	// DefaultInsertPayload is stored by worker inserts
	DefaultInsertPayload = "p_data_inserted"
)

// DefaultThresholds is the default operation mix:
// roughly 10% inserts, 10% removes and 80% reads.
var DefaultThresholds = Thresholds{Insert: 25, Remove: 50, Read: 255, Reject: 255}

// nextPowerOf2 returns the smallest power of two >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
