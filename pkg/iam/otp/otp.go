package otp

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// DefaultLength is the number of decimal digits in a code.
const DefaultLength = 6

// RandSource yields uniform integers in [0, n).
type RandSource interface {
	IntN(n int) int
}

type mathRand struct{}

func (mathRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRandSource draws from math/rand/v2. Codes are short-lived, so
// statistical uniformity is enough.
func DefaultRandSource() RandSource { return mathRand{} }

// SequenceSource replays fixed digits, wrapping around. Safe for concurrent use.
type SequenceSource struct {
	mu     sync.Mutex
	digits []int
	pos    int
}

func NewSequenceSource(digits ...int) *SequenceSource {
	return &SequenceSource{digits: digits}
}

func (s *SequenceSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.digits) == 0 {
		return 0
	}
	d := s.digits[s.pos%len(s.digits)] % n
	s.pos++
	return d
}

// Generator produces numeric codes of a fixed length.
type Generator struct {
	length int
	source RandSource
}

func NewGenerator(length int, source RandSource) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	if source == nil {
		source = DefaultRandSource()
	}
	return &Generator{length: length, source: source}
}

// Generate returns a code with every digit drawn independently from 0-9.
func (g *Generator) Generate() string {
	var b strings.Builder
	b.Grow(g.length)
	for i := 0; i < g.length; i++ {
		b.WriteByte(byte('0' + g.source.IntN(10)))
	}
	return b.String()
}

// IsFresh reports whether now is within window of createdAt, inclusive.
// The window is anchored to the identity's creation, not to the latest code.
func IsFresh(createdAt, now time.Time, window time.Duration) bool {
	return now.Sub(createdAt) <= window
}
