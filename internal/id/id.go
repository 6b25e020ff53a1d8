// Package id generates time-sortable identifiers for orders and fills.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator produces prefixed ULIDs. IDs generated within the same
// millisecond remain lexicographically increasing.
type Generator struct {
	prefix string

	mu   sync.Mutex
	mono io.Reader
}

// NewGenerator returns a Generator whose entropy is seeded from seed, or from
// crypto/rand when seed is 0.
func NewGenerator(prefix string, seed int64) *Generator {
	if seed == 0 {
		_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
	}
	return &Generator{
		prefix: prefix,
		mono:   ulid.Monotonic(rand.New(rand.NewSource(seed)), 0),
	}
}

// Next returns a new identifier stamped with t.
func (g *Generator) Next(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t.UTC()), g.mono)
	if err != nil {
		// Only reachable when more than 2^80 IDs are drawn in one millisecond.
		panic(err)
	}
	if g.prefix == "" {
		return id.String()
	}
	return g.prefix + "-" + id.String()
}
