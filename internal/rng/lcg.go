package rng

import (
	"hash/fnv"
	"time"
)

// LCG constants from Knuth's MMIX
const (
	lcgMultiplier = 6364136223846793005
	lcgIncrement  = 1442695040888963407
)

// LCG is a linear congruential generator
//
// NOT CRYPTOGRAPHICALLY SECURE. The sequence is fully determined by the seed, and the seed is
// derived from public information (the table ID and the hand start time). A player who learns
// both can reproduce the deck. Deployments that need unpredictability must use Crypto instead.
type LCG struct {
	state uint64
}

// NewLCG returns a generator seeded with seed
func NewLCG(seed uint64) *LCG {
	return &LCG{state: seed}
}

// NewLCGForTable returns a generator seeded from the table ID and start timestamp
func NewLCGForTable(tableID string, start time.Time) *LCG {
	return NewLCG(TableSeed(tableID, start))
}

// TableSeed mixes the table ID and the start timestamp into a 64-bit seed
func TableSeed(tableID string, start time.Time) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(tableID))

	return h.Sum64() ^ uint64(start.UnixNano())
}

func (l *LCG) next() uint64 {
	l.state = l.state*lcgMultiplier + lcgIncrement
	return l.state
}

// Intn returns a pseudo-random number in [0, n)
func (l *LCG) Intn(n int) int {
	if n <= 0 {
		panic("invalid argument to Intn")
	}

	// the high bits of an LCG have much longer periods than the low bits
	return int((l.next() >> 33) % uint64(n))
}
