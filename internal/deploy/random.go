package deploy

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Source is the randomness every selection draws from.
//
// # Ordering
//
// Call sites consume the source in a fixed order so that a seed replays a
// whole session: tier 1 draw, tier 2 draw, tier 3 draw, villain coin flip
// and villain pick, fuzzy selector draws, reinforcement draw. A tier with a
// zero quota and an empty candidate list consume nothing.
type Source interface {
	// Bool returns a fair coin flip.
	Bool() bool
	// Perm returns a uniform permutation of [0,n).
	Perm(n int) []int
}

type rngSource struct {
	r *rand.Rand
}

// NewSource returns a deterministic source for seed.
func NewSource(seed int64) Source {
	return &rngSource{r: rand.New(rand.NewSource(seed))}
}

func (s *rngSource) Bool() bool {
	return s.r.Intn(2) == 0
}

func (s *rngSource) Perm(n int) []int {
	if n <= 0 {
		return nil
	}
	return s.r.Perm(n)
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
