package noise

import "math/rand/v2"

// Source supplies the random draws the transform needs. Implementations are
// not required to be safe for concurrent use.
type Source interface {
	// Bool returns a fair coin flip.
	Bool() bool
	// Channel returns a uniform index in [0, n).
	Channel(n int) int
}

// RandSource is a Source backed by a PCG generator.
type RandSource struct {
	r *rand.Rand
}

// NewSource returns a seeded Source. A zero seed draws one from the runtime's
// generator so that unseeded runs differ.
func NewSource(seed uint64) *RandSource {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &RandSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *RandSource) Bool() bool {
	return s.r.Uint64()&1 == 1
}

func (s *RandSource) Channel(n int) int {
	return s.r.IntN(n)
}
