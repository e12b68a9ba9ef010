package dictionary

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestWidth(t *testing.T) {
	for _, tc := range []struct {
		n    uint64
		want uint8
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 3},
		{4, 3},
		{5, 4},
		{8, 4},
		{9, 5},
		{255, 9},
		{256, 9},
		{257, 10},
		{1 << 31, 32},
		{1<<31 + 1, 33},
		{1 << 63, 64},
	} {
		if got := Width(tc.n); got != tc.want {
			t.Errorf("Width(%d): got %d want %d", tc.n, got, tc.want)
		}
	}
}

// Width must agree with the floating-point formula wherever float64 is exact,
// and must always leave room for n itself.
func TestWidthMatchesLog2(t *testing.T) {
	for n := uint64(1); n <= 1<<16; n++ {
		want := uint8(math.Ceil(math.Log2(float64(n)))) + 1
		got := Width(n)
		if got != want {
			t.Fatalf("Width(%d): got %d want %d", n, got, want)
		}
		if n>>got != 0 {
			t.Fatalf("Width(%d) = %d does not hold n", n, got)
		}
		if (n-1)>>got != 0 {
			t.Fatalf("Width(%d) = %d does not hold index %d", n, got, n-1)
		}
	}
}

func TestBuildInsertionOrder(t *testing.T) {
	dict := Build([]uint64{7, 3, 7, 1, 3, 9, 1})

	if got, want := dict.Values(), []uint64{7, 3, 1, 9}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Values: got %v want %v", got, want)
	}
	if dict.Len() != 4 {
		t.Fatalf("Len: got %d want 4", dict.Len())
	}
	if dict.Longest() != 9 {
		t.Fatalf("Longest: got %d want 9", dict.Longest())
	}
	for i, v := range dict.Values() {
		idx, ok := dict.Index(v)
		if !ok || int(idx) != i {
			t.Fatalf("Index(%d): got %d,%v want %d", v, idx, ok, i)
		}
		back, ok := dict.Value(uint64(idx))
		if !ok || back != v {
			t.Fatalf("Value(%d): got %d,%v want %d", idx, back, ok, v)
		}
	}
	if _, ok := dict.Index(2); ok {
		t.Fatalf("Index(2): found value never inserted")
	}
	if _, ok := dict.Value(4); ok {
		t.Fatalf("Value(4): found index past end")
	}
	if dict.ValueBits() != 5 {
		t.Fatalf("ValueBits: got %d want 5", dict.ValueBits())
	}
	if dict.IndexBits() != 3 {
		t.Fatalf("IndexBits: got %d want 3", dict.IndexBits())
	}
}

func TestBuildSingleValues(t *testing.T) {
	for _, tc := range []struct {
		name      string
		lengths   []uint64
		valueBits uint8
		indexBits uint8
	}{
		{name: "longest_one", lengths: []uint64{1, 1, 1, 1}, valueBits: 1, indexBits: 1},
		{name: "single_run", lengths: []uint64{1}, valueBits: 1, indexBits: 1},
		{name: "power_of_two", lengths: []uint64{8, 8}, valueBits: 4, indexBits: 1},
		{name: "two_distinct", lengths: []uint64{3, 4, 3}, valueBits: 3, indexBits: 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dict := Build(tc.lengths)
			if got := dict.ValueBits(); got != tc.valueBits {
				t.Errorf("ValueBits: got %d want %d", got, tc.valueBits)
			}
			if got := dict.IndexBits(); got != tc.indexBits {
				t.Errorf("IndexBits: got %d want %d", got, tc.indexBits)
			}
		})
	}
}

func TestBuildEmpty(t *testing.T) {
	dict := Build(nil)
	if dict.Len() != 0 || dict.Longest() != 0 {
		t.Fatalf("empty dictionary: Len %d Longest %d", dict.Len(), dict.Longest())
	}
	if dict.ValueBits() != 0 || dict.IndexBits() != 0 {
		t.Fatalf("empty dictionary widths: %d %d", dict.ValueBits(), dict.IndexBits())
	}
}

func TestFromValues(t *testing.T) {
	dict, err := FromValues([]uint64{4, 2, 11})
	if err != nil {
		t.Fatalf("FromValues: %v", err)
	}
	if dict.Longest() != 11 || dict.Len() != 3 {
		t.Fatalf("FromValues: Longest %d Len %d", dict.Longest(), dict.Len())
	}
	if v, ok := dict.Value(2); !ok || v != 11 {
		t.Fatalf("Value(2): got %d,%v", v, ok)
	}

	if _, err := FromValues([]uint64{3, 0}); !errors.Is(err, ErrZeroEntry) {
		t.Fatalf("FromValues with zero: got %v want ErrZeroEntry", err)
	}
}
