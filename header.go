package runmap

import (
	"io"

	"github.com/pkg/errors"

	"github.com/seiflotfy/runmap/bitstream"
	"github.com/seiflotfy/runmap/dictionary"
)

// maxPrealloc caps how many dictionary entries are allocated up front from
// an untrusted D field.
const maxPrealloc = 1 << 12

// Header describes an adaptive run-length stream.
type Header struct {
	Runs     uint64        // L: number of runs in the body
	MinBits  uint8         // width of each dictionary entry
	StartBit bitstream.Bit // value of the first run
	Entries  []uint64      // dictionary in first-seen order; D = len(Entries)
}

// MinMapBits returns the width of each body index. It is derived from D and
// never stored.
func (h *Header) MinMapBits() uint8 {
	return dictionary.Width(uint64(len(h.Entries)))
}

// HeaderBits returns the encoded size of the header alone.
func (h *Header) HeaderBits() uint64 {
	if h.Runs == 0 {
		return headerFieldWidth
	}
	return 3*headerFieldWidth + 1 + uint64(len(h.Entries))*uint64(h.MinBits)
}

// EncodedBits returns the size of the header plus body, excluding the padding
// added when the stream is closed.
func (h *Header) EncodedBits() uint64 {
	return h.HeaderBits() + h.Runs*uint64(h.MinMapBits())
}

func (h *Header) validate() error {
	if h.Runs > maxHeaderField {
		return errors.Wrapf(ErrTooManyRuns, "%d runs", h.Runs)
	}
	if h.Runs == 0 {
		return nil
	}
	if len(h.Entries) == 0 || uint64(len(h.Entries)) > h.Runs {
		return errors.Wrapf(ErrCorrupt, "%d dictionary entries for %d runs", len(h.Entries), h.Runs)
	}
	if h.MinBits == 0 {
		return errors.Wrapf(ErrCorrupt, "entry width 0 for %d runs", h.Runs)
	}
	if h.MinBits > bitstream.MaxWidth {
		return errors.Wrapf(ErrTooManyRuns, "entry width %d exceeds %d", h.MinBits, bitstream.MaxWidth)
	}
	return nil
}

// write emits the header fields in wire order. A header with no runs writes
// only the run count.
func (h *Header) write(dst bitstream.Sink) error {
	if err := h.validate(); err != nil {
		return err
	}
	if err := dst.WriteUnsigned(h.Runs, headerFieldWidth); err != nil {
		return errors.Wrap(err, "write run count")
	}
	if h.Runs == 0 {
		return nil
	}
	if err := dst.WriteUnsigned(uint64(h.MinBits), headerFieldWidth); err != nil {
		return errors.Wrap(err, "write entry width")
	}
	if err := dst.WriteUnsigned(uint64(len(h.Entries)), headerFieldWidth); err != nil {
		return errors.Wrap(err, "write dictionary size")
	}
	if err := dst.WriteBit(h.StartBit); err != nil {
		return errors.Wrap(err, "write start bit")
	}
	for i, n := range h.Entries {
		if err := dst.WriteUnsigned(n, h.MinBits); err != nil {
			return errors.Wrapf(err, "write dictionary entry %d", i)
		}
	}
	return nil
}

// readHeader parses a header and rebuilds its dictionary.
func readHeader(src bitstream.Source) (Header, *dictionary.Dictionary, error) {
	var h Header

	runCount, err := src.ReadUnsigned(headerFieldWidth)
	if err != nil {
		return h, nil, readErr(err, "run count")
	}
	h.Runs = runCount
	if h.Runs == 0 {
		dict, _ := dictionary.FromValues(nil)
		return h, dict, nil
	}

	minBits, err := src.ReadUnsigned(headerFieldWidth)
	if err != nil {
		return h, nil, readErr(err, "entry width")
	}
	if minBits == 0 || minBits > bitstream.MaxWidth {
		return h, nil, errors.Wrapf(ErrCorrupt, "entry width %d", minBits)
	}
	h.MinBits = uint8(minBits)

	size, err := src.ReadUnsigned(headerFieldWidth)
	if err != nil {
		return h, nil, readErr(err, "dictionary size")
	}
	if size == 0 || size > h.Runs {
		return h, nil, errors.Wrapf(ErrCorrupt, "%d dictionary entries for %d runs", size, h.Runs)
	}

	h.StartBit, err = src.ReadBit()
	if err != nil {
		return h, nil, readErr(err, "start bit")
	}

	h.Entries = make([]uint64, 0, min(size, maxPrealloc))
	for i := uint64(0); i < size; i++ {
		n, err := src.ReadUnsigned(h.MinBits)
		if err != nil {
			return h, nil, readErr(err, "dictionary entry %d", i)
		}
		h.Entries = append(h.Entries, n)
	}

	dict, err := dictionary.FromValues(h.Entries)
	if err != nil {
		return h, nil, errors.Wrapf(ErrCorrupt, "dictionary: %v", err)
	}
	return h, dict, nil
}

// readErr maps end of stream to ErrTruncated and annotates anything else.
func readErr(err error, format string, args ...interface{}) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errors.Wrapf(ErrTruncated, "read "+format, args...)
	}
	return errors.Wrapf(err, "read "+format, args...)
}
