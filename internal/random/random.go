// Package random wraps math/rand/v2 with a goroutine-safe, seedable source
// used for interval jitter, sampling and shuffling.
package random

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source is a goroutine-safe pseudo-random source.
type Source struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a deterministic Source for the given seed.
func New(seed uint64) *Source {
	return &Source{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewSystem returns a Source seeded from the runtime's random generator.
func NewSystem() *Source {
	return New(rand.Uint64())
}

// IntN returns a uniform int in [0, n). It panics if n <= 0.
func (s *Source) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

// Duration returns a uniform duration in [min, max).
// When max <= min it returns min.
func (s *Source) Duration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return min + time.Duration(s.r.Int64N(int64(max-min)))
}

// Shuffle returns a uniformly permuted copy of items (Fisher-Yates).
func Shuffle[T any](s *Source, items []T) []T {
	shuffled := make([]T, len(items))
	copy(shuffled, items)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := s.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// Sample returns up to n distinct elements of items chosen uniformly
// without replacement.
func Sample[T any](s *Source, items []T, n int) []T {
	if n <= 0 {
		return nil
	}
	shuffled := Shuffle(s, items)
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

// Pick returns a uniformly chosen element of items, or false if items is empty.
func Pick[T any](s *Source, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[s.IntN(len(items))], true
}
