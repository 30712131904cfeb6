// Package seedfabric derives reproducible, independent random sources
// for every (table, column, row) scope the executor touches, from a
// single master seed. The same scope always derives the same stream,
// regardless of run order or concurrency, the way the teacher derives
// per-field values from its single shared *rand.Rand but made scope-safe
// for parallel columns.
package seedfabric

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
)

// Derive returns a PCG-backed random source scoped to the given path.
// Scope elements are hashed in order with an 8-byte length prefix so
// that ("ordersfoo", "bar") and ("orders", "foobar") never collide.
//
// PCG64 is required by spec section 4.2 ("PCG64 or equivalent;
// explicitly not LCG/Mersenne Twister"). Go's standard math/rand/v2
// NewPCG is used directly rather than a third-party generator: no PCG
// implementation appears anywhere in the retrieval pack, and NewPCG is
// the stdlib's own non-LCG, non-Mersenne generator, so reaching for an
// external package here would add a dependency with no grounding.
func Derive(masterSeed uint64, scope ...string) *rand.Rand {
	h := sha256.New()

	var seedBuf [8]byte
	binary.BigEndian.PutUint64(seedBuf[:], masterSeed)
	h.Write(seedBuf[:])

	for _, s := range scope {
		var lenBuf [8]byte
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(s)))
		h.Write(lenBuf[:])
		h.Write([]byte(s))
	}

	sum := h.Sum(nil)
	seed1 := binary.BigEndian.Uint64(sum[0:8])
	seed2 := binary.BigEndian.Uint64(sum[8:16])

	return rand.New(rand.NewPCG(seed1, seed2))
}

// SeedErrorKind classifies why a seed derivation was rejected.
type SeedErrorKind string

const (
	// EmptyScope marks a Derive call with no scope elements, which would
	// make every caller share the master seed's raw stream.
	EmptyScope SeedErrorKind = "EmptyScope"
)

// SeedError describes a misuse of the seed fabric, e.g. an empty scope
// that would collapse distinct streams together. Derive does not return
// it: a call with no scope elements derives from the master seed alone.
type SeedError struct {
	Kind   SeedErrorKind
	Detail string
}

func (e *SeedError) Error() string {
	return "seed error [" + string(e.Kind) + "]: " + e.Detail
}
