// worker.go: benchmark worker loop
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package rcuht

import (
	"sync/atomic"
	"time"
)

// OpKind is the operation a worker dispatched.
type OpKind uint8

const (
	OpInsert OpKind = iota
	OpRemove
	OpRead
	OpReject // forced-failure branch above the read threshold
)

func (o OpKind) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	case OpRead:
		return "read"
	case OpReject:
		return "reject"
	}
	return "unknown"
}

// WorkerResult is what a worker reports when it terminates.
type WorkerResult struct {
	Worker  int
	Start   time.Time
	Elapsed time.Duration

	Inserts      uint64
	Removes      uint64
	Reads        uint64
	Rejects      uint64
	Hits         uint64 // inserts stored, removes and reads found
	InsertErrors uint64
}

// Ops returns the number of operations the worker executed.
func (w WorkerResult) Ops() uint64 {
	return w.Inserts + w.Removes + w.Reads + w.Rejects
}

type worker struct {
	id         int
	ops        int
	strategy   Strategy
	rnd        RandomSource
	thresholds Thresholds
	keySpace   uint32
	payload    []byte

	progress    *atomic.Uint64
	clock       TimeProvider
	logger      Logger
	onOperation func(op OpKind, id uint32, ok bool)
}

// share returns the number of operations worker i of n runs out of total.
// The remainder goes to the lowest indices.
func share(total, n, i int) int {
	ops := total / n
	if i < total%n {
		ops++
	}
	return ops
}

func (w *worker) run() WorkerResult {
	res := WorkerResult{
		Worker: w.id,
		Start:  time.Unix(0, w.clock.Now()),
	}

	begin := time.Now()
	for i := 0; i < w.ops; i++ {
		n := w.rnd.Byte()
		id := w.rnd.Uint32n(w.keySpace)
		w.dispatch(w.thresholds.Classify(n), id, &res)
		w.progress.Add(1)
	}
	res.Elapsed = time.Since(begin)
	return res
}

func (w *worker) dispatch(op OpKind, id uint32, res *WorkerResult) {
	var ok bool
	switch op {
	case OpInsert:
		res.Inserts++
		stored, err := w.strategy.Insert(id, w.payload)
		if err != nil {
			res.InsertErrors++
			w.logger.Warn("insert failed", "worker", w.id, "id", id, "error", err)
		}
		ok = stored
	case OpRemove:
		res.Removes++
		ok = w.strategy.Remove(id)
	case OpRead:
		res.Reads++
		ok = w.strategy.Read(id)
	default:
		res.Rejects++
		w.logger.Debug("forced failure branch", "worker", w.id, "id", id)
	}
	if ok {
		res.Hits++
	}
	if w.onOperation != nil {
		w.onOperation(op, id, ok)
	}
}
