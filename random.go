// random.go: random sources for benchmark workers
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package rcuht

import (
	"math/rand/v2"

	"github.com/bytedance/gopkg/lang/fastrand"
)

// fastSource draws from the runtime-backed fastrand generator.
// It is safe for concurrent use, so one value can serve every worker.
type fastSource struct{}

// FastRandom returns the default, goroutine-safe random source.
func FastRandom() RandomSource {
	return fastSource{}
}

func (fastSource) Byte() byte {
	return byte(fastrand.Uint32())
}

func (fastSource) Uint32n(n uint32) uint32 {
	return fastrand.Uint32n(n)
}

// seededSource is a deterministic PCG source owned by one worker.
type seededSource struct {
	r *rand.Rand
}

// SeededRandom returns a deterministic source for worker, derived from
// seed. Sources for different workers produce independent streams.
// A seeded source must not be shared between goroutines.
func SeededRandom(seed uint64, worker int) RandomSource {
	return &seededSource{r: rand.New(rand.NewPCG(seed, uint64(worker)))}
}

func (s *seededSource) Byte() byte {
	return byte(s.r.Uint32())
}

func (s *seededSource) Uint32n(n uint32) uint32 {
	return s.r.Uint32N(n)
}
