package bitstream

import (
	"io"

	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// ErrOverflow is returned when a value does not fit the requested width.
var ErrOverflow = errors.New("bitstream: value overflows width")

// Writer writes bits to an io.Writer, most significant bit of each byte
// first. Close pads the final byte with zero bits.
type Writer struct {
	w       *bitio.Writer
	written uint64
	closed  bool
}

// NewWriter returns a Writer over w. The caller must Close it to flush the
// trailing partial byte; Close does not close w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bitio.NewWriter(w)}
}

// WriteBit writes one bit.
func (w *Writer) WriteBit(b Bit) error {
	if err := w.w.WriteBool(b == One); err != nil {
		return errors.WithStack(err)
	}
	w.written++
	return nil
}

// WriteUnsigned writes the low width bits of v, MSB first. v must fit in
// width bits.
func (w *Writer) WriteUnsigned(v uint64, width uint8) error {
	if width == 0 || width > MaxWidth {
		return errors.Wrapf(ErrWidth, "write %d bits", width)
	}
	if width < MaxWidth && v>>width != 0 {
		return errors.Wrapf(ErrOverflow, "%d in %d bits", v, width)
	}
	if err := w.w.WriteBits(v, width); err != nil {
		return errors.WithStack(err)
	}
	w.written += uint64(width)
	return nil
}

// BitsWritten returns the number of bits written so far, excluding padding.
func (w *Writer) BitsWritten() uint64 {
	return w.written
}

// Close pads the output to a whole byte with zero bits and flushes it.
// Calling Close more than once is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return errors.WithStack(w.w.Close())
}
