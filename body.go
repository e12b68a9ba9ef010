package runmap

import (
	"github.com/pkg/errors"

	"github.com/seiflotfy/runmap/bitstream"
	"github.com/seiflotfy/runmap/dictionary"
	"github.com/seiflotfy/runmap/runs"
)

// writeBody emits the dictionary index of every run, in run order.
func writeBody(dst bitstream.Sink, lengths []uint64, dict *dictionary.Dictionary) error {
	width := dict.IndexBits()
	for i, n := range lengths {
		idx, ok := dict.Index(n)
		if !ok {
			return errors.Errorf("run %d: length %d missing from dictionary", i, n)
		}
		if err := dst.WriteUnsigned(uint64(idx), width); err != nil {
			return errors.Wrapf(err, "write index of run %d", i)
		}
	}
	return nil
}

// readBody decodes h.Runs indices from src and writes the runs they name to
// dst. It returns the number of bits written.
func (d *Decoder) readBody(dst bitstream.BitWriter, src bitstream.Source, h *Header, dict *dictionary.Dictionary) (uint64, error) {
	width := h.MinMapBits()
	limit := d.config.MaxBits
	bit := h.StartBit

	var total uint64
	for i := uint64(0); i < h.Runs; i++ {
		idx, err := src.ReadUnsigned(width)
		if err != nil {
			return total, readErr(err, "index of run %d", i)
		}
		n, ok := dict.Value(idx)
		if !ok {
			return total, errors.Wrapf(ErrCorrupt, "run %d: index %d outside dictionary of %d", i, idx, dict.Len())
		}
		if limit > 0 && n > limit-total {
			return total, errors.Wrapf(ErrLimit, "run %d: %d bits after %d exceeds %d", i, n, total, limit)
		}
		if err := runs.Emit(dst, bit, n); err != nil {
			return total, errors.Wrapf(err, "write run %d", i)
		}
		total += n
		bit = bit.Flip()
	}
	return total, nil
}
