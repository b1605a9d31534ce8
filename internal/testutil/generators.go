package testutil

import (
	"math/rand"
)

// TestDataGenerator produces deterministic pseudo-random payloads so tests
// can regenerate the exact byte ranges a chunk or part was built from.
type TestDataGenerator struct {
	rand *rand.Rand
}

// NewTestDataGenerator creates a new test data generator with a seeded random source.
func NewTestDataGenerator(seed int64) *TestDataGenerator {
	return &TestDataGenerator{
		rand: rand.New(rand.NewSource(seed)),
	}
}

// RandomBytes returns n pseudo-random bytes from the seeded source.
func (g *TestDataGenerator) RandomBytes(n int) []byte {
	b := make([]byte, n)
	g.rand.Read(b)
	return b
}

// PatternBytes returns n deterministic non-repeating bytes. Unlike
// RandomBytes the content is independent of the generator's seed and read
// position, which makes failures easier to eyeball.
func PatternBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}
