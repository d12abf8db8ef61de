package service

import (
	"math/rand"
	"sync"
	"time"
)

// Randomizer is the source of randomness for block sampling and shuffling.
type Randomizer interface {
	// Sample returns k distinct indices drawn uniformly from [0, n).
	Sample(n, k int) []int
	// Shuffle permutes n elements through swap.
	Shuffle(n int, swap func(i, j int))
}

// MathRandomizer is a Randomizer backed by one process-wide math/rand generator.
type MathRandomizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomizer creates a time-seeded MathRandomizer.
func NewRandomizer() *MathRandomizer {
	return &MathRandomizer{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Sample returns min(k, n) distinct indices from [0, n) in random order.
func (r *MathRandomizer) Sample(n, k int) []int {
	if n <= 0 || k <= 0 {
		return nil
	}
	if k > n {
		k = n
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Perm(n)[:k]
}

// Shuffle permutes n elements in place.
func (r *MathRandomizer) Shuffle(n int, swap func(i, j int)) {
	if n < 2 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(n, swap)
}
