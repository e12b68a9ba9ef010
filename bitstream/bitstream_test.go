package bitstream

import (
	"bytes"
	"io"
	"testing"

	"github.com/pkg/errors"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.WriteUnsigned(0x08, 4); err != nil {
		t.Fatalf("WriteUnsigned: %v", err)
	}
	if err := w.WriteUnsigned(0x07, 3); err != nil {
		t.Fatalf("WriteUnsigned: %v", err)
	}
	if err := w.WriteBit(One); err != nil {
		t.Fatalf("WriteBit: %v", err)
	}
	if err := w.WriteUnsigned(0x15, 6); err != nil {
		t.Fatalf("WriteUnsigned: %v", err)
	}
	if got := w.BitsWritten(); got != 14 {
		t.Fatalf("BitsWritten: got %d want 14", got)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// 1000 111 1 010101 00 (padding)
	want := []byte{0x8f, 0x54}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("bytes: got %x want %x", buf.Bytes(), want)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	if v, err := r.ReadUnsigned(4); err != nil || v != 0x08 {
		t.Fatalf("ReadUnsigned(4): got %d, %v", v, err)
	}
	if !r.HasMoreBits() {
		t.Fatalf("HasMoreBits: got false mid-stream")
	}
	// Peeked bit must be the MSB of the next value.
	if v, err := r.ReadUnsigned(3); err != nil || v != 0x07 {
		t.Fatalf("ReadUnsigned(3): got %d, %v", v, err)
	}
	if b, err := r.ReadBit(); err != nil || b != One {
		t.Fatalf("ReadBit: got %v, %v", b, err)
	}
	if v, err := r.ReadUnsigned(6); err != nil || v != 0x15 {
		t.Fatalf("ReadUnsigned(6): got %d, %v", v, err)
	}
	if got := r.BitsRead(); got != 14 {
		t.Fatalf("BitsRead: got %d want 14", got)
	}
}

// errAfter yields data, then err on every later read.
type errAfter struct {
	data []byte
	err  error
}

func (r *errAfter) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestReaderKeepsReadError(t *testing.T) {
	errDisk := errors.New("disk failure")
	r := NewReader(&errAfter{data: []byte{0x0f}, err: errDisk})

	n := 0
	for r.HasMoreBits() {
		if _, err := r.ReadBit(); err != nil {
			t.Fatalf("ReadBit: %v", err)
		}
		n++
	}
	if n != 8 {
		t.Fatalf("bits before failure: got %d want 8", n)
	}
	if err := r.Err(); err != errDisk {
		t.Fatalf("Err: got %v want %v", err, errDisk)
	}
	if err := StreamErr(r); err != errDisk {
		t.Fatalf("StreamErr: got %v want %v", err, errDisk)
	}
	if _, err := r.ReadBit(); err != errDisk {
		t.Fatalf("ReadBit after failure: got %v want %v", err, errDisk)
	}
}

func TestReaderEndOfStream(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xA0}))
	var got []Bit
	for r.HasMoreBits() {
		b, err := r.ReadBit()
		if err != nil {
			t.Fatalf("ReadBit: %v", err)
		}
		got = append(got, b)
	}
	if s := Format(got); s != "10100000" {
		t.Fatalf("bits: got %s want 10100000", s)
	}
	if _, err := r.ReadBit(); err != io.EOF {
		t.Fatalf("ReadBit past end: got %v want io.EOF", err)
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Err at clean end: got %v want nil", err)
	}
	if _, err := r.ReadUnsigned(3); err == nil {
		t.Fatalf("ReadUnsigned past end: expected error")
	}
}

func TestReaderEmpty(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	if r.HasMoreBits() {
		t.Fatalf("HasMoreBits on empty input: got true")
	}
	if _, err := r.ReadUnsigned(32); err != io.EOF {
		t.Fatalf("ReadUnsigned on empty input: got %v want io.EOF", err)
	}
}

func TestWidthValidation(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteUnsigned(1, 0); !errors.Is(err, ErrWidth) {
		t.Errorf("width 0: got %v want ErrWidth", err)
	}
	if err := w.WriteUnsigned(1, 65); !errors.Is(err, ErrWidth) {
		t.Errorf("width 65: got %v want ErrWidth", err)
	}
	if err := w.WriteUnsigned(8, 3); !errors.Is(err, ErrOverflow) {
		t.Errorf("8 in 3 bits: got %v want ErrOverflow", err)
	}
	if err := w.WriteUnsigned(^uint64(0), 64); err != nil {
		t.Errorf("max uint64 in 64 bits: %v", err)
	}

	r := NewReader(bytes.NewReader([]byte{0xff}))
	if _, err := r.ReadUnsigned(0); !errors.Is(err, ErrWidth) {
		t.Errorf("read width 0: got %v want ErrWidth", err)
	}
}

func TestSliceReaderWriter(t *testing.T) {
	var w SliceWriter
	if err := w.WriteUnsigned(5, 4); err != nil {
		t.Fatalf("WriteUnsigned: %v", err)
	}
	if err := w.WriteBit(One); err != nil {
		t.Fatalf("WriteBit: %v", err)
	}
	if got := Format(w.Bits()); got != "01011" {
		t.Fatalf("bits: got %s want 01011", got)
	}

	r := NewSliceReader(w.Bits())
	if v, err := r.ReadUnsigned(4); err != nil || v != 5 {
		t.Fatalf("ReadUnsigned: got %d, %v", v, err)
	}
	if b, err := r.ReadBit(); err != nil || b != One {
		t.Fatalf("ReadBit: got %v, %v", b, err)
	}
	if r.HasMoreBits() {
		t.Fatalf("HasMoreBits: got true at end")
	}
	if _, err := r.ReadUnsigned(1); err != io.ErrUnexpectedEOF {
		t.Fatalf("ReadUnsigned past end: got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	bits := Parse("0001 1110_00")
	if got := Format(bits); got != "0001111000" {
		t.Fatalf("Format(Parse): got %s", got)
	}
	if One.Flip() != Zero || Zero.Flip() != One {
		t.Fatalf("Flip is not an involution")
	}
	if FromBool(true) != One || !One.Bool() || Zero.Bool() {
		t.Fatalf("bool conversion mismatch")
	}
}
