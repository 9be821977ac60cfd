package verify

// Simple PRNG for reproducible random games
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	if seed == 0 {
		seed = 1 // xorshift never leaves the zero state
	}
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

// intn returns a value in [0, n).
func (p *prng) intn(n int) int {
	return int(p.next() % uint64(n))
}

// gameSeed derives the seed of one game so games can run in any order.
func gameSeed(seed uint64, game int) uint64 {
	return seed + uint64(game)*0x9E3779B97F4A7C15
}
