package runmap

import (
	"fmt"

	"github.com/seiflotfy/runmap/bitstream"
)

// Stats summarises one encode or decode call. Sizes are in bits; OutputBits
// excludes the padding added to reach a byte boundary.
type Stats struct {
	InputBits  uint64
	OutputBits uint64

	Runs       uint64 // L
	Distinct   int    // D
	MinBits    uint8
	MinMapBits uint8
	StartBit   bitstream.Bit
}

func statsFor(h *Header) Stats {
	s := Stats{
		Runs:     h.Runs,
		Distinct: len(h.Entries),
		MinBits:  h.MinBits,
		StartBit: h.StartBit,
	}
	if h.Runs > 0 {
		s.MinMapBits = h.MinMapBits()
	}
	return s
}

// Ratio returns OutputBits / InputBits, or 0 when nothing was read.
func (s Stats) Ratio() float64 {
	if s.InputBits == 0 {
		return 0
	}
	return float64(s.OutputBits) / float64(s.InputBits)
}

func (s Stats) String() string {
	return fmt.Sprintf("%d bits -> %d bits (%.3f), runs=%d distinct=%d minBits=%d minMapBits=%d",
		s.InputBits, s.OutputBits, s.Ratio(), s.Runs, s.Distinct, s.MinBits, s.MinMapBits)
}
