// Package prng generates deterministic bitmaps for tests and benchmarks.
package prng

import "github.com/seiflotfy/runmap/bitstream"

// SimplePRNG is a Linear Congruential Generator so generated bitmaps are the
// same on every platform.
type SimplePRNG struct {
	state uint64
}

// NewSimplePRNG creates a new PRNG with the given seed
func NewSimplePRNG(seed uint64) *SimplePRNG {
	return &SimplePRNG{state: seed}
}

// Next generates the next random number using LCG
// Uses multiplier and increment from Numerical Recipes
func (p *SimplePRNG) Next() uint64 {
	p.state = p.state*6364136223846793005 + 1442695040888963407
	return p.state
}

// Uint64N returns a random number in [0, n)
func (p *SimplePRNG) Uint64N(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	// high bits of an LCG are better distributed than the low ones
	return (p.Next() >> 32) % n
}

// Bits returns n uniformly random bits.
func (p *SimplePRNG) Bits(n int) []bitstream.Bit {
	out := make([]bitstream.Bit, n)
	for i := range out {
		out[i] = bitstream.Bit(p.Next() >> 63)
	}
	return out
}

// Runs returns a bitmap of n bits made of alternating runs whose lengths are
// drawn uniformly from [1, maxRun].
func (p *SimplePRNG) Runs(n int, maxRun uint64) []bitstream.Bit {
	out := make([]bitstream.Bit, 0, n)
	bit := bitstream.Bit(p.Next() >> 63)
	for len(out) < n {
		run := 1 + p.Uint64N(maxRun)
		for ; run > 0 && len(out) < n; run-- {
			out = append(out, bit)
		}
		bit = bit.Flip()
	}
	return out
}
