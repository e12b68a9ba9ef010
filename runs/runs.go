// Package runs splits a bit sequence into alternating run lengths and
// expands run lengths back into bits.
//
// A run is a maximal stretch of identical bits. Only lengths are stored; the
// value of each run follows from the start bit, flipping after every run.
package runs

import (
	"github.com/pkg/errors"

	"github.com/seiflotfy/runmap/bitstream"
)

// BitReader is the part of a bit source the extractor needs.
type BitReader interface {
	HasMoreBits() bool
	ReadBit() (bitstream.Bit, error)
}

// Extract consumes src and returns the value of the first bit and the length
// of every run in order. For an empty source it returns no lengths and the
// start bit is meaningless.
//
// All lengths are held in memory, so the cost is O(number of runs).
func Extract(src BitReader) (bitstream.Bit, []uint64, error) {
	if !src.HasMoreBits() {
		if err := bitstream.StreamErr(src); err != nil {
			return bitstream.Zero, nil, errors.Wrap(err, "read first bit")
		}
		return bitstream.Zero, nil, nil
	}
	start, err := src.ReadBit()
	if err != nil {
		return bitstream.Zero, nil, errors.Wrap(err, "read first bit")
	}

	var lengths []uint64
	current := start
	count := uint64(1)
	for src.HasMoreBits() {
		b, err := src.ReadBit()
		if err != nil {
			return start, lengths, errors.Wrapf(err, "read bit in run %d", len(lengths))
		}
		if b == current {
			count++
			continue
		}
		lengths = append(lengths, count)
		current = b
		count = 1
	}
	if err := bitstream.StreamErr(src); err != nil {
		return start, lengths, errors.Wrapf(err, "read bit in run %d", len(lengths))
	}
	lengths = append(lengths, count)
	return start, lengths, nil
}

// Expand writes each run to dst, starting with start and flipping the bit
// after every run.
func Expand(dst bitstream.BitWriter, start bitstream.Bit, lengths []uint64) error {
	b := start
	for i, n := range lengths {
		if err := Emit(dst, b, n); err != nil {
			return errors.Wrapf(err, "expand run %d", i)
		}
		b = b.Flip()
	}
	return nil
}

// Emit writes n copies of b to dst.
func Emit(dst bitstream.BitWriter, b bitstream.Bit, n uint64) error {
	for ; n > 0; n-- {
		if err := dst.WriteBit(b); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the total number of bits covered by lengths.
func Count(lengths []uint64) uint64 {
	var total uint64
	for _, n := range lengths {
		total += n
	}
	return total
}
