package bitstream

import (
	"io"

	"github.com/pkg/errors"
)

// SliceReader reads bits from an in-memory slice.
type SliceReader struct {
	bits []Bit
	pos  int
}

// NewSliceReader returns a SliceReader over bits.
func NewSliceReader(bits []Bit) *SliceReader {
	return &SliceReader{bits: bits}
}

func (r *SliceReader) HasMoreBits() bool {
	return r.pos < len(r.bits)
}

func (r *SliceReader) ReadBit() (Bit, error) {
	if r.pos >= len(r.bits) {
		return Zero, io.EOF
	}
	b := r.bits[r.pos]
	r.pos++
	return b, nil
}

func (r *SliceReader) ReadUnsigned(width uint8) (uint64, error) {
	if width == 0 || width > MaxWidth {
		return 0, errors.Wrapf(ErrWidth, "read %d bits", width)
	}
	if r.pos+int(width) > len(r.bits) {
		r.pos = len(r.bits)
		return 0, io.ErrUnexpectedEOF
	}
	var v uint64
	for _, b := range r.bits[r.pos : r.pos+int(width)] {
		v = v<<1 | uint64(b&1)
	}
	r.pos += int(width)
	return v, nil
}

// SliceWriter collects written bits in memory.
type SliceWriter struct {
	bits []Bit
}

func (w *SliceWriter) WriteBit(b Bit) error {
	w.bits = append(w.bits, b&1)
	return nil
}

func (w *SliceWriter) WriteUnsigned(v uint64, width uint8) error {
	if width == 0 || width > MaxWidth {
		return errors.Wrapf(ErrWidth, "write %d bits", width)
	}
	if width < MaxWidth && v>>width != 0 {
		return errors.Wrapf(ErrOverflow, "%d in %d bits", v, width)
	}
	for i := int(width) - 1; i >= 0; i-- {
		w.bits = append(w.bits, Bit(v>>uint(i)&1))
	}
	return nil
}

// Bits returns the bits written so far. The slice aliases internal storage.
func (w *SliceWriter) Bits() []Bit {
	return w.bits
}

// Len returns the number of bits written.
func (w *SliceWriter) Len() int {
	return len(w.bits)
}
