package services

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/abrezinsky/luckydraw/internal/models"
)

// NumberGenerator produces the winning numbers for a prize
type NumberGenerator interface {
	Generate(prize models.Prize) []string
}

// Generator draws zero-padded decimal numbers uniformly at random
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a generator whose output is fully determined by seed
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandomGenerator returns a generator seeded from the clock
func NewRandomGenerator() *Generator {
	return NewGenerator(uint64(time.Now().UnixNano()))
}

// Generate returns prize.Results numbers of exactly prize.Digits digits each.
// Duplicates are allowed.
func (g *Generator) Generate(prize models.Prize) []string {
	upper := int64(1)
	for i := 0; i < prize.Digits; i++ {
		upper *= 10
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	numbers := make([]string, prize.Results)
	for i := range numbers {
		numbers[i] = fmt.Sprintf("%0*d", prize.Digits, g.rng.Int64N(upper))
	}
	return numbers
}
