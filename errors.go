// errors.go: structured error handling for rcuht
//
// This file provides structured error types using the go-errors library,
// enabling rich error context, categorization, and standardized error codes
// for configuration, allocation and coordinator failures.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package rcuht

import (
	goerrors "errors"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for rcuht operations
const (
	// Configuration errors
	ErrCodeInvalidConfig     errors.ErrorCode = "RCUHT_INVALID_CONFIG"
	ErrCodeInvalidStrategy   errors.ErrorCode = "RCUHT_INVALID_STRATEGY"
	ErrCodeInvalidThresholds errors.ErrorCode = "RCUHT_INVALID_THRESHOLDS"
	ErrCodeInvalidJoin       errors.ErrorCode = "RCUHT_INVALID_JOIN"

	// Operation errors
	ErrCodeAllocationFailed errors.ErrorCode = "RCUHT_ALLOCATION_FAILED"
	ErrCodeUseAfterFree     errors.ErrorCode = "RCUHT_USE_AFTER_FREE"

	// Coordinator errors
	ErrCodeJoinStalled   errors.ErrorCode = "RCUHT_JOIN_STALLED"
	ErrCodeTrialAborted  errors.ErrorCode = "RCUHT_TRIAL_ABORTED"
	ErrCodeSeedingFailed errors.ErrorCode = "RCUHT_SEEDING_FAILED"

	// Internal errors
	ErrCodeConfigLoadFailed errors.ErrorCode = "RCUHT_CONFIG_LOAD_FAILED"
	ErrCodePanicRecovered   errors.ErrorCode = "RCUHT_PANIC_RECOVERED"
)

const (
	msgInvalidConfig     = "invalid benchmark configuration"
	msgInvalidStrategy   = "unknown synchronization strategy"
	msgInvalidThresholds = "operation thresholds must be non-decreasing"
	msgInvalidJoin       = "unknown join discipline"
	msgAllocationFailed  = "entry allocation failed"
	msgUseAfterFree      = "read observed a reclaimed entry"
	msgJoinStalled       = "worker join stalled: completed count stopped advancing"
	msgTrialAborted      = "benchmark aborted before all trials completed"
	msgSeedingFailed     = "failed to seed table"
	msgConfigLoadFailed  = "failed to load configuration file"
	msgPanicRecovered    = "panic recovered in worker"
)

// =============================================================================
// CONFIGURATION ERRORS
// =============================================================================

// NewErrInvalidConfig creates an error for a configuration field that cannot be normalized
func NewErrInvalidConfig(field string, value interface{}) error {
	return errors.NewWithContext(ErrCodeInvalidConfig, msgInvalidConfig, map[string]interface{}{
		"field": field,
		"value": value,
	})
}

// NewErrInvalidStrategy creates an error for an unrecognized strategy name
func NewErrInvalidStrategy(name string) error {
	return errors.NewWithContext(ErrCodeInvalidStrategy, msgInvalidStrategy, map[string]interface{}{
		"provided_strategy": name,
		"valid_strategies":  fmt.Sprintf("%v", Strategies()),
	})
}

// NewErrInvalidThresholds creates an error for a threshold table that is not ordered
func NewErrInvalidThresholds(t Thresholds) error {
	return errors.NewWithContext(ErrCodeInvalidThresholds, msgInvalidThresholds, map[string]interface{}{
		"insert": t.Insert,
		"remove": t.Remove,
		"read":   t.Read,
		"reject": t.Reject,
	})
}

// NewErrInvalidJoin creates an error for an unrecognized join discipline
func NewErrInvalidJoin(name string) error {
	return errors.NewWithField(ErrCodeInvalidJoin, msgInvalidJoin, "provided_join", name)
}

// =============================================================================
// OPERATION ERRORS
// =============================================================================

// NewErrAllocationFailed creates an error when the entry allocator is exhausted
func NewErrAllocationFailed(id uint32, limit int64) error {
	return errors.NewWithContext(ErrCodeAllocationFailed, msgAllocationFailed, map[string]interface{}{
		"id":          id,
		"max_entries": limit,
	}).AsRetryable() // entries are returned as grace periods complete
}

// NewErrUseAfterFree creates an error describing a read-safety violation
func NewErrUseAfterFree(id uint32, strategy StrategyKind) error {
	return errors.NewWithContext(ErrCodeUseAfterFree, msgUseAfterFree, map[string]interface{}{
		"id":       id,
		"strategy": string(strategy),
	}).WithSeverity("critical")
}

// =============================================================================
// COORDINATOR ERRORS
// =============================================================================

// NewErrJoinStalled creates an error when the polling join detects no progress
func NewErrJoinStalled(trial, completed, workers, polls int) error {
	return errors.NewWithContext(ErrCodeJoinStalled, msgJoinStalled, map[string]interface{}{
		"trial":             trial,
		"completed_workers": completed,
		"workers":           workers,
		"stalled_polls":     polls,
	}).WithSeverity("critical")
}

// NewErrTrialAborted creates an error when the remaining trials are abandoned
func NewErrTrialAborted(trial int, cause error) error {
	return errors.Wrap(cause, ErrCodeTrialAborted, msgTrialAborted).
		WithContext("trial", trial)
}

// NewErrSeedingFailed creates an error when the table cannot be seeded
func NewErrSeedingFailed(id uint32, cause error) error {
	return errors.Wrap(cause, ErrCodeSeedingFailed, msgSeedingFailed).
		WithContext("id", id)
}

// =============================================================================
// INTERNAL ERRORS
// =============================================================================

// NewErrConfigLoadFailed creates an error when a configuration file cannot be read
func NewErrConfigLoadFailed(path string, cause error) error {
	return errors.Wrap(cause, ErrCodeConfigLoadFailed, msgConfigLoadFailed).
		WithContext("filepath", path)
}

// NewErrPanicRecovered creates an error when a worker panics
func NewErrPanicRecovered(worker int, panicValue interface{}) error {
	return errors.NewWithContext(ErrCodePanicRecovered, msgPanicRecovered, map[string]interface{}{
		"worker":      worker,
		"panic_value": fmt.Sprintf("%v", panicValue),
	}).WithSeverity("critical")
}

// =============================================================================
// ERROR CHECKING HELPERS
// =============================================================================

// IsJoinStalled checks if error is (or wraps) a join stall
func IsJoinStalled(err error) bool {
	return errors.HasCode(err, ErrCodeJoinStalled) || hasCodeInChain(err, ErrCodeJoinStalled)
}

// IsAllocationFailure checks if error is an allocation failure
func IsAllocationFailure(err error) bool {
	return errors.HasCode(err, ErrCodeAllocationFailed) || hasCodeInChain(err, ErrCodeAllocationFailed)
}

// IsConfigError checks if error is a configuration error
func IsConfigError(err error) bool {
	switch GetErrorCode(err) {
	case ErrCodeInvalidConfig, ErrCodeInvalidStrategy, ErrCodeInvalidThresholds,
		ErrCodeInvalidJoin, ErrCodeConfigLoadFailed:
		return true
	}
	return false
}

// IsRetryable checks if the error can be retried
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryable errors.Retryable
	if goerrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts context from an error
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var rcuhtErr *errors.Error
	if goerrors.As(err, &rcuhtErr) {
		return rcuhtErr.Context
	}
	return nil
}

// hasCodeInChain walks wrapped causes looking for code.
// Wrap keeps the cause reachable through Unwrap.
func hasCodeInChain(err error, code errors.ErrorCode) bool {
	for err != nil {
		var coder errors.ErrorCoder
		if goerrors.As(err, &coder) && coder.ErrorCode() == code {
			return true
		}
		err = goerrors.Unwrap(err)
	}
	return false
}
