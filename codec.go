package runmap

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/seiflotfy/runmap/bitstream"
	"github.com/seiflotfy/runmap/runs"
)

// Encode reads every bit from src, then writes the header and body to dst.
func (e *Encoder) Encode(dst bitstream.Sink, src runs.BitReader) (Stats, error) {
	start, lengths, err := runs.Extract(src)
	if err != nil {
		return Stats{}, errors.Wrap(err, "extract runs")
	}
	p, err := NewPlan(start, lengths)
	if err != nil {
		return Stats{}, err
	}
	if err := p.WriteTo(dst); err != nil {
		return Stats{}, err
	}
	return p.Stats(), nil
}

// Decode reads one stream from src and writes the bitmap it describes to dst.
// Bits after the body, such as byte padding, are left unread.
func (d *Decoder) Decode(dst bitstream.BitWriter, src bitstream.Source) (Stats, error) {
	h, dict, err := readHeader(src)
	if err != nil {
		return Stats{}, err
	}
	s := statsFor(&h)
	s.InputBits = h.EncodedBits()
	s.OutputBits, err = d.readBody(dst, src, &h, dict)
	if err != nil {
		return s, err
	}
	return s, nil
}

// Compress encodes the bits of src, MSB of each byte first, and writes the
// stream to dst. The output is always padded to a whole byte and flushed,
// even when encoding fails.
func (e *Encoder) Compress(dst io.Writer, src io.Reader) (stats Stats, err error) {
	w := bitstream.NewWriter(dst)
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "flush output")
		}
	}()
	return e.Encode(w, bitstream.NewReader(src))
}

// Expand decodes the stream in src and writes the bitmap to dst, padded with
// zero bits to a whole byte. The output is flushed even when decoding fails.
func (d *Decoder) Expand(dst io.Writer, src io.Reader) (stats Stats, err error) {
	w := bitstream.NewWriter(dst)
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "flush output")
		}
	}()
	return d.Decode(w, bitstream.NewReader(src))
}

// Compress encodes src to dst with a default Encoder.
func Compress(dst io.Writer, src io.Reader, opts ...Option) (Stats, error) {
	return NewEncoder(opts...).Compress(dst, src)
}

// Expand decodes src to dst with a default Decoder.
func Expand(dst io.Writer, src io.Reader, opts ...Option) (Stats, error) {
	return NewDecoder(opts...).Expand(dst, src)
}

// EncodeBits encodes an in-memory bitmap and returns the padded stream.
func EncodeBits(bits []bitstream.Bit, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	w := bitstream.NewWriter(&buf)
	if _, err := NewEncoder(opts...).Encode(w, bitstream.NewSliceReader(bits)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBits decodes a stream into an in-memory bitmap.
func DecodeBits(data []byte, opts ...Option) ([]bitstream.Bit, error) {
	var out bitstream.SliceWriter
	if _, err := NewDecoder(opts...).Decode(&out, bitstream.NewReader(bytes.NewReader(data))); err != nil {
		return nil, err
	}
	return out.Bits(), nil
}
