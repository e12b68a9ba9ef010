package bitstream

import (
	"io"

	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// MaxWidth is the widest unsigned integer ReadUnsigned and WriteUnsigned accept.
const MaxWidth = 64

// ErrWidth is returned for an unsigned width outside [1, MaxWidth].
var ErrWidth = errors.New("bitstream: invalid width")

// Reader reads bits from an io.Reader, most significant bit of each byte
// first. It looks one bit ahead so HasMoreBits can report end of stream
// without consuming anything.
type Reader struct {
	r *bitio.Reader

	peeked bool
	next   bool
	err    error
	read   uint64
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bitio.NewReader(r)}
}

// HasMoreBits reports whether another bit can be read. A read error is kept,
// returned by the next read and reported by Err.
func (r *Reader) HasMoreBits() bool {
	if r.peeked {
		return true
	}
	if r.err != nil {
		return false
	}
	v, err := r.r.ReadBool()
	if err != nil {
		r.err = err
		return false
	}
	r.next = v
	r.peeked = true
	return true
}

// ReadBit reads one bit. It returns io.EOF at end of stream.
func (r *Reader) ReadBit() (Bit, error) {
	if r.peeked {
		r.peeked = false
		r.read++
		return FromBool(r.next), nil
	}
	if r.err != nil {
		return Zero, r.err
	}
	v, err := r.r.ReadBool()
	if err != nil {
		r.err = err
		return Zero, err
	}
	r.read++
	return FromBool(v), nil
}

// ReadUnsigned reads a width-bit unsigned integer, MSB first. A stream that
// ends before the value is complete yields io.EOF or io.ErrUnexpectedEOF.
func (r *Reader) ReadUnsigned(width uint8) (uint64, error) {
	if width == 0 || width > MaxWidth {
		return 0, errors.Wrapf(ErrWidth, "read %d bits", width)
	}

	var hi uint64
	rest := width
	if r.peeked {
		r.peeked = false
		r.read++
		if r.next {
			hi = 1
		}
		rest--
		if rest == 0 {
			return hi, nil
		}
	} else if r.err != nil {
		return 0, r.err
	}

	v, err := r.r.ReadBits(rest)
	if err != nil {
		if err == io.EOF && rest != width {
			err = io.ErrUnexpectedEOF
		}
		r.err = err
		return 0, err
	}
	r.read += uint64(rest)
	return hi<<rest | v, nil
}

// Err returns the read error that ended the stream, or nil when the stream
// ended cleanly.
func (r *Reader) Err() error {
	if r.err == io.EOF || r.err == io.ErrUnexpectedEOF {
		return nil
	}
	return r.err
}

// BitsRead returns the number of bits consumed so far.
func (r *Reader) BitsRead() uint64 {
	return r.read
}
