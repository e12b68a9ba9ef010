// Package dictionary builds the run-length dictionary of an adaptive
// run-length stream and computes the bit widths its header and body use.
package dictionary

import (
	"math/bits"

	"github.com/pkg/errors"
)

// ErrZeroEntry is returned when a decoded dictionary holds a zero run length.
var ErrZeroEntry = errors.New("dictionary: zero run length")

// Dictionary holds the distinct run lengths of a run sequence in order of
// first appearance. Index i of the dictionary is the body symbol for
// Values()[i].
type Dictionary struct {
	values  []uint64          // distinct run lengths, insertion order
	index   map[uint64]uint32 // run length -> position in values
	longest uint64
}

// Build collects the distinct values of lengths, keeping the order in which
// each first occurs.
//
// Example:
//
//	d := Build([]uint64{3, 4, 3})
//	d.Values()    // [3 4]
//	d.ValueBits() // 3
//	d.IndexBits() // 2
func Build(lengths []uint64) *Dictionary {
	dict := &Dictionary{
		index: make(map[uint64]uint32),
	}
	for _, n := range lengths {
		if n > dict.longest {
			dict.longest = n
		}
		if _, ok := dict.index[n]; ok {
			continue
		}
		dict.index[n] = uint32(len(dict.values))
		dict.values = append(dict.values, n)
	}
	return dict
}

// FromValues rebuilds a dictionary from entries in the order they were
// written. The reverse index is not built; decoders only look up by position.
func FromValues(values []uint64) (*Dictionary, error) {
	dict := &Dictionary{values: values}
	for i, n := range values {
		if n == 0 {
			return nil, errors.Wrapf(ErrZeroEntry, "entry %d", i)
		}
		if n > dict.longest {
			dict.longest = n
		}
	}
	return dict, nil
}

// Len returns the number of distinct run lengths.
func (dict *Dictionary) Len() int {
	return len(dict.values)
}

// Values returns the entries in insertion order. The slice aliases internal
// storage.
func (dict *Dictionary) Values() []uint64 {
	return dict.values
}

// Longest returns the largest entry, or 0 for an empty dictionary.
func (dict *Dictionary) Longest() uint64 {
	return dict.longest
}

// Index returns the position of run length n.
func (dict *Dictionary) Index(n uint64) (uint32, bool) {
	i, ok := dict.index[n]
	return i, ok
}

// Value returns the run length stored at position i.
func (dict *Dictionary) Value(i uint64) (uint64, bool) {
	if i >= uint64(len(dict.values)) {
		return 0, false
	}
	return dict.values[i], true
}

// ValueBits is the width of each stored entry: Width(Longest()).
func (dict *Dictionary) ValueBits() uint8 {
	return Width(dict.longest)
}

// IndexBits is the width of each body index: Width(Len()).
func (dict *Dictionary) IndexBits() uint8 {
	return Width(uint64(len(dict.values)))
}

// Width returns ceil(log2(n)) + 1, computed on integers with log2(1) = 0.
// The extra bit means any value up to 2n-1 fits, so n itself and every index
// below n always do. Width(0) is 0.
func Width(n uint64) uint8 {
	if n == 0 {
		return 0
	}
	return uint8(bits.Len64(n-1)) + 1
}
