package interpreter

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
)

// Random is the source of alert rolls. Float64 returns a value in [0,1).
type Random interface {
	Float64() float64
}

// seeded is a PCG-backed Random safe for concurrent use.
type seeded struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeeded returns a deterministic Random for the given seed.
func NewSeeded(seed uint64) Random {
	return &seeded{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// NewSeed generates a seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// Sequence replays scripted rolls in order. Once exhausted it returns 0.99,
// which never triggers an alert.
type Sequence struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewSequence returns a Sequence over values.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Float64 returns the next scripted roll.
func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.values) {
		return 0.99
	}
	v := s.values[s.next]
	s.next++
	return v
}

// Remaining reports how many scripted rolls are left.
func (s *Sequence) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values) - s.next
}

// Fixed always returns the same roll.
type Fixed float64

// Float64 implements Random.
func (f Fixed) Float64() float64 { return float64(f) }
