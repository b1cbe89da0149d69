// interfaces.go: public interfaces for rcuht
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package rcuht

// Strategy is one synchronization discipline applied to a shared Store.
// It is the only surface the Coordinator uses to drive load.
//
// Whether the methods are safe for concurrent use depends on the
// implementation: StrategyNoSync is not, every other kind is.
type Strategy interface {
	// Name returns the kind this strategy implements.
	Name() StrategyKind

	// Insert stores payload under id.
	// Returns false with a nil error when the strategy rejects duplicates
	// and id is already present. A non-nil error means the entry could
	// not be allocated and the table was left unchanged.
	Insert(id uint32, payload []byte) (stored bool, err error)

	// Remove unlinks and reclaims the entry stored under id.
	// Returns false if id was not present. Removing twice is a no-op.
	Remove(id uint32) (found bool)

	// Read locates id and consumes its payload.
	// Returns false if id was not present (or was invalidated).
	Read(id uint32) (found bool)
}

// Logger defines a minimal logging interface with zero overhead.
// Implementations should use structured logging and be allocation-free.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, keyvals ...interface{})

	// Info logs an info message with optional key-value pairs.
	Info(msg string, keyvals ...interface{})

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, keyvals ...interface{})

	// Error logs an error message with optional key-value pairs.
	Error(msg string, keyvals ...interface{})
}

// NoOpLogger is a logger that does nothing. Used as default to avoid nil checks.
type NoOpLogger struct{}

// Debug does nothing (no-op implementation).
func (NoOpLogger) Debug(msg string, keyvals ...interface{}) {}

// Info does nothing (no-op implementation).
func (NoOpLogger) Info(msg string, keyvals ...interface{}) {}

// Warn does nothing (no-op implementation).
func (NoOpLogger) Warn(msg string, keyvals ...interface{}) {}

// Error does nothing (no-op implementation).
func (NoOpLogger) Error(msg string, keyvals ...interface{}) {}

// TimeProvider provides current time with caching for performance.
// It is used for worker start stamps, not for elapsed-time measurement.
type TimeProvider interface {
	// Now returns the current time in nanoseconds since epoch.
	Now() int64
}

// RandomSource is the uniform random generator a worker draws from.
// A RandomSource returned by Config.NewRandom is owned by one worker.
type RandomSource interface {
	// Byte returns a uniformly distributed byte.
	Byte() byte

	// Uint32n returns a uniformly distributed value in [0, n).
	Uint32n(n uint32) uint32
}

// MetricsCollector defines an interface for collecting strategy operation metrics.
// Implementations can send metrics to Prometheus, DataDog, StatsD, or other monitoring systems.
//
// When Config.MetricsCollector is nil or NoOpMetricsCollector, operations
// are not timed at all.
//
// Thread-safety:
//   - All methods must be safe for concurrent use
//   - Multiple goroutines will call these methods simultaneously
type MetricsCollector interface {
	// RecordInsert records an Insert with its latency and whether it stored.
	RecordInsert(latencyNs int64, stored bool)

	// RecordRemove records a Remove with its latency and whether the key was found.
	RecordRemove(latencyNs int64, found bool)

	// RecordRead records a Read with its latency and whether the key was found.
	RecordRead(latencyNs int64, found bool)

	// RecordGracePeriod records the duration of one completed grace period.
	RecordGracePeriod(latencyNs int64)

	// RecordDeferredFree records n entries freed by the deferred reclaimer.
	RecordDeferredFree(n int)
}

// NoOpMetricsCollector is a metrics collector that does nothing.
type NoOpMetricsCollector struct{}

// RecordInsert does nothing.
func (NoOpMetricsCollector) RecordInsert(latencyNs int64, stored bool) {}

// RecordRemove does nothing.
func (NoOpMetricsCollector) RecordRemove(latencyNs int64, found bool) {}

// RecordRead does nothing.
func (NoOpMetricsCollector) RecordRead(latencyNs int64, found bool) {}

// RecordGracePeriod does nothing.
func (NoOpMetricsCollector) RecordGracePeriod(latencyNs int64) {}

// RecordDeferredFree does nothing.
func (NoOpMetricsCollector) RecordDeferredFree(n int) {}
