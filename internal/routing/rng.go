package routing

import "math/rand"

// rng wraps a single math/rand source used throughout one solve. Every
// Solve invocation owns its own instance; it is never shared across
// concurrent solves so that identical inputs and seeds reproduce identical
// solutions.
type rng struct {
	source *rand.Rand
}

func newRNG(seed int64) *rng {
	return &rng{source: rand.New(rand.NewSource(seed))}
}

// Float64 returns a pseudo-random number in [0.0, 1.0), used for Metropolis
// acceptance.
func (r *rng) Float64() float64 {
	return r.source.Float64()
}

// Intn returns a pseudo-random integer in [0, n), used for move-kind,
// vehicle, and index selection.
func (r *rng) Intn(n int) int {
	return r.source.Intn(n)
}
