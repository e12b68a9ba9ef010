// Package bitstream provides MSB-first bit-level readers and writers over byte
// streams, plus in-memory bit slices that satisfy the same interfaces.
package bitstream

// Bit is a single binary symbol.
type Bit uint8

const (
	Zero Bit = 0
	One  Bit = 1
)

// Flip returns the opposite bit.
func (b Bit) Flip() Bit {
	return b ^ 1
}

// Bool reports whether b is One.
func (b Bit) Bool() bool {
	return b == One
}

// FromBool converts v to a Bit.
func FromBool(v bool) Bit {
	if v {
		return One
	}
	return Zero
}

func (b Bit) String() string {
	if b == One {
		return "1"
	}
	return "0"
}

// Source is a sequential bit source with end-of-stream detection.
type Source interface {
	HasMoreBits() bool
	ReadBit() (Bit, error)
	ReadUnsigned(width uint8) (uint64, error)
}

// StreamErr returns the error that ended src when src keeps one, as Reader
// does, and nil otherwise. Loops that stop on HasMoreBits check it to tell a
// failed read from end of stream.
func StreamErr(src interface{}) error {
	if e, ok := src.(interface{ Err() error }); ok {
		return e.Err()
	}
	return nil
}

// BitWriter accepts single bits.
type BitWriter interface {
	WriteBit(b Bit) error
}

// Sink is a sequential bit sink that can also write fixed-width unsigned
// integers, most significant bit first.
type Sink interface {
	BitWriter
	WriteUnsigned(v uint64, width uint8) error
}

// Parse converts a string of '0' and '1' characters to bits. Any other
// character is skipped, so "0001 1110" is accepted.
func Parse(s string) []Bit {
	out := make([]Bit, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			out = append(out, Zero)
		case '1':
			out = append(out, One)
		}
	}
	return out
}

// Format renders bits as a string of '0' and '1' characters.
func Format(bits []Bit) string {
	buf := make([]byte, len(bits))
	for i, b := range bits {
		buf[i] = '0' + byte(b)
	}
	return string(buf)
}
