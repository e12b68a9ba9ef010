package runmap

import (
	"io"

	"github.com/pkg/errors"

	"github.com/seiflotfy/runmap/bitstream"
	"github.com/seiflotfy/runmap/runs"
)

// The fixed format stores every run as an 8-bit count with no header. Runs
// alternate starting from Zero, so a bitmap starting with One begins with a
// zero count. Runs longer than 255 are split as 255, 0, remainder.
const (
	fixedWidth  = 8
	fixedMaxRun = 1<<fixedWidth - 1
)

// EncodeFixed writes the runs of src to dst in the fixed 8-bit format.
func (e *Encoder) EncodeFixed(dst bitstream.Sink, src runs.BitReader) (Stats, error) {
	start, lengths, err := runs.Extract(src)
	if err != nil {
		return Stats{}, errors.Wrap(err, "extract runs")
	}
	stats := Stats{
		InputBits: runs.Count(lengths),
		Runs:      uint64(len(lengths)),
		MinBits:   fixedWidth,
		StartBit:  start,
	}

	put := func(n uint64) error {
		if err := dst.WriteUnsigned(n, fixedWidth); err != nil {
			return errors.Wrap(err, "write run count")
		}
		stats.OutputBits += fixedWidth
		return nil
	}

	if len(lengths) > 0 && start == bitstream.One {
		if err := put(0); err != nil {
			return stats, err
		}
	}
	for _, n := range lengths {
		for n > fixedMaxRun {
			if err := put(fixedMaxRun); err != nil {
				return stats, err
			}
			if err := put(0); err != nil {
				return stats, err
			}
			n -= fixedMaxRun
		}
		if err := put(n); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// DecodeFixed reads 8-bit counts until src is exhausted and writes the runs
// they describe to dst. Fewer than 8 trailing bits are ignored.
func (d *Decoder) DecodeFixed(dst bitstream.BitWriter, src bitstream.Source) (Stats, error) {
	stats := Stats{MinBits: fixedWidth}
	limit := d.config.MaxBits
	bit := bitstream.Zero

	for src.HasMoreBits() {
		n, err := src.ReadUnsigned(fixedWidth)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return stats, errors.Wrapf(err, "read count %d", stats.Runs)
		}
		stats.InputBits += fixedWidth
		if limit > 0 && n > limit-stats.OutputBits {
			return stats, errors.Wrapf(ErrLimit, "count %d: %d bits after %d exceeds %d", stats.Runs, n, stats.OutputBits, limit)
		}
		if err := runs.Emit(dst, bit, n); err != nil {
			return stats, errors.Wrapf(err, "write count %d", stats.Runs)
		}
		stats.OutputBits += n
		stats.Runs++
		bit = bit.Flip()
	}
	if err := bitstream.StreamErr(src); err != nil {
		return stats, errors.Wrapf(err, "read count %d", stats.Runs)
	}
	return stats, nil
}

// CompressFixed encodes src to dst in the fixed 8-bit format.
func (e *Encoder) CompressFixed(dst io.Writer, src io.Reader) (stats Stats, err error) {
	w := bitstream.NewWriter(dst)
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "flush output")
		}
	}()
	return e.EncodeFixed(w, bitstream.NewReader(src))
}

// ExpandFixed decodes fixed 8-bit format src to dst, padded to a whole byte.
func (d *Decoder) ExpandFixed(dst io.Writer, src io.Reader) (stats Stats, err error) {
	w := bitstream.NewWriter(dst)
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "flush output")
		}
	}()
	return d.DecodeFixed(w, bitstream.NewReader(src))
}
