// Package entropy implements manual entropy collection with bias
// correction. A collection session accepts discrete outcomes from a single
// physical source (coinflips, dice, externally sourced bytes) and appends
// unbiased bits to an append-only pool until a target length is reached.
package entropy

import "math/bits"

// Source identifies a discrete randomness source. Each source has a fixed
// arity (number of equally likely outcomes) and declares whether Von
// Neumann bias correction is available for it. Correction is only offered
// for power-of-two arities; D6/D10/D12/D20/D100 outcomes are collected raw
// with out-of-range rejection instead.
type Source uint8

const (
	Coinflip Source = iota
	D4
	D6
	D8
	D10
	D12
	D16
	D20
	D100
	Byte
)

var sourceArities = [...]int{
	Coinflip: 2,
	D4:       4,
	D6:       6,
	D8:       8,
	D10:      10,
	D12:      12,
	D16:      16,
	D20:      20,
	D100:     100,
	Byte:     256,
}

var sourceNames = [...]string{
	Coinflip: "coinflip",
	D4:       "d4",
	D6:       "d6",
	D8:       "d8",
	D10:      "d10",
	D12:      "d12",
	D16:      "d16",
	D20:      "d20",
	D100:     "d100",
	Byte:     "byte",
}

// Arity returns the number of equally likely outcomes of the source.
func (s Source) Arity() int {
	if int(s) >= len(sourceArities) {
		return 0
	}
	return sourceArities[s]
}

// String returns the source's name.
func (s Source) String() string {
	if int(s) >= len(sourceNames) {
		return "unknown"
	}
	return sourceNames[s]
}

// PowerOfTwo reports whether the source's arity is a power of two, meaning
// every outcome contributes a whole number of bits.
func (s Source) PowerOfTwo() bool {
	a := s.Arity()
	return a > 0 && a&(a-1) == 0
}

// SupportsCorrection reports whether Von Neumann correction is available
// for this source.
func (s Source) SupportsCorrection() bool {
	return s.PowerOfTwo()
}

// BitsPerOutcome returns the number of pool bits a retained outcome
// yields: log2 of the arity for power-of-two sources, floor(log2(arity))
// for the rest.
func (s Source) BitsPerOutcome() int {
	a := s.Arity()
	if a < 2 {
		return 0
	}
	return bits.Len(uint(a)) - 1
}

// retainLimit returns the exclusive upper bound of the equiprobable
// power-of-two subset: outcomes at or above it are discarded.
func (s Source) retainLimit() int {
	return 1 << s.BitsPerOutcome()
}

// ParseSource maps a name like "d6" or "coinflip" to a Source.
func ParseSource(name string) (Source, bool) {
	for i, n := range sourceNames {
		if n == name {
			return Source(i), true
		}
	}
	return 0, false
}

// Sources returns all supported sources in declaration order.
func Sources() []Source {
	out := make([]Source, len(sourceArities))
	for i := range out {
		out[i] = Source(i)
	}
	return out
}

// Event is a single raw observation from a source, before bias
// correction. Outcome is zero-based and must be below the source's arity.
type Event struct {
	Source  Source
	Outcome int
}
