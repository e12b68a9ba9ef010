// Package runmap is a lossless codec for bitmaps built on run-length encoding
// with an adaptive, self-describing dictionary.
//
// A bitmap is split into alternating runs. The distinct run lengths form a
// dictionary written in the header, and the body stores every run as a small
// index into that dictionary. Decoding needs nothing but the stream itself.
//
// Wire format (all fields MSB-first):
//
//	L          = 32 bits      number of runs
//	minBits    = 32 bits      width of each dictionary entry
//	D          = 32 bits      number of dictionary entries
//	startBit   = 1 bit        value of the first run
//	dictionary = D x minBits  distinct run lengths, first-seen order
//	body       = L x minMapBits  dictionary index of every run
//	padding    = 0-7 zero bits
//
// minMapBits is not stored; both sides derive it from D. A stream with L = 0
// holds only the L field.
package runmap

import (
	"github.com/pkg/errors"
)

const (
	headerFieldWidth = 32 // width of the L, minBits and D header fields
	maxHeaderField   = 1<<headerFieldWidth - 1
)

var (
	// ErrTruncated indicates the stream ended before the header or body was complete.
	ErrTruncated = errors.New("runmap: truncated stream")
	// ErrCorrupt indicates header fields or body indices that no encoder produces.
	ErrCorrupt = errors.New("runmap: corrupt stream")
	// ErrTooManyRuns indicates an input whose run count or run length does not fit the header.
	ErrTooManyRuns = errors.New("runmap: input exceeds format limits")
	// ErrLimit indicates decoded output would exceed the configured maximum.
	ErrLimit = errors.New("runmap: decoded size exceeds limit")
	// ErrChecksum indicates an archive whose payload does not match its checksum.
	ErrChecksum = errors.New("runmap: checksum mismatch")
)

// Config holds configuration for encoders and decoders.
type Config struct {
	MaxBits     uint64      // Maximum decoded bits (0 = unlimited)
	Compression Compression // Archive payload compression (0 = auto)
}

// Option is a functional option for configuring an Encoder or Decoder.
type Option func(*Config)

// WithMaxBits bounds the number of bits a Decoder will produce.
// Zero disables the limit.
func WithMaxBits(n uint64) Option {
	return func(c *Config) {
		c.MaxBits = n
	}
}

// WithCompression selects how archive payloads are compressed.
// Unknown values fall back to CompressionAuto.
func WithCompression(comp Compression) Option {
	return func(c *Config) {
		c.Compression = comp
	}
}

func newConfig(opts []Option) Config {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Encoder turns bitmaps into adaptive run-length streams.
// An Encoder holds no per-call state and may be reused.
type Encoder struct {
	config Config
}

// NewEncoder creates a new encoder with the given options.
func NewEncoder(opts ...Option) *Encoder {
	return &Encoder{config: newConfig(opts)}
}

// Decoder turns adaptive run-length streams back into bitmaps.
// A Decoder holds no per-call state and may be reused.
type Decoder struct {
	config Config
}

// NewDecoder creates a new decoder with the given options.
func NewDecoder(opts ...Option) *Decoder {
	return &Decoder{config: newConfig(opts)}
}
