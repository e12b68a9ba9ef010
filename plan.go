package runmap

import (
	"github.com/pkg/errors"

	"github.com/seiflotfy/runmap/bitstream"
	"github.com/seiflotfy/runmap/dictionary"
	"github.com/seiflotfy/runmap/runs"
)

// Plan is the first pass over a run sequence: the header it needs and the
// reverse index the body is written with. Writing the plan is the second pass.
type Plan struct {
	header  Header
	dict    *dictionary.Dictionary
	lengths []uint64
}

// NewPlan computes the header for the runs of a bitmap starting with start.
// An empty lengths slice yields a plan that writes only L = 0. Every length
// must be at least 1.
func NewPlan(start bitstream.Bit, lengths []uint64) (*Plan, error) {
	for i, n := range lengths {
		if n == 0 {
			return nil, errors.Wrapf(dictionary.ErrZeroEntry, "run %d", i)
		}
	}
	dict := dictionary.Build(lengths)
	p := &Plan{
		header: Header{
			Runs:    uint64(len(lengths)),
			Entries: dict.Values(),
		},
		dict:    dict,
		lengths: lengths,
	}
	if len(lengths) > 0 {
		p.header.MinBits = dict.ValueBits()
		p.header.StartBit = start
	}
	if err := p.header.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Header returns the header the plan will write.
func (p *Plan) Header() Header {
	return p.header
}

// Dictionary returns the run-length dictionary of the plan.
func (p *Plan) Dictionary() *dictionary.Dictionary {
	return p.dict
}

// WriteTo writes the header followed by the body.
func (p *Plan) WriteTo(dst bitstream.Sink) error {
	if err := p.header.write(dst); err != nil {
		return err
	}
	if p.header.Runs == 0 {
		return nil
	}
	return writeBody(dst, p.lengths, p.dict)
}

// Stats reports the sizes the plan produces when written.
func (p *Plan) Stats() Stats {
	s := statsFor(&p.header)
	s.InputBits = runs.Count(p.lengths)
	s.OutputBits = p.header.EncodedBits()
	return s
}
