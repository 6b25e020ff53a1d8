package engine

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the engine's only source of nondeterminism. Float64 returns a
// value in [0, 1).
type Rand interface {
	Float64() float64
}

// lockedRand guards a *rand.Rand, which is not safe for concurrent use.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a goroutine-safe Rand seeded with seed, or with the current
// time when seed is 0.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// IDGenerator produces unique identifiers stamped with a time.
type IDGenerator interface {
	Next(t time.Time) string
}
