package runmap

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

const (
	archiveMagic   = "RMAP"
	archiveVersion = uint16(1)

	stageBitmap   = "bitmap"
	stageBitCount = "bit_count"
	stageChecksum = "checksum"

	maxArchiveStages     = 64
	maxStagePayloadBytes = 1 << 30 // 1 GiB
)

// Compression selects how an archive stores the adaptive stream.
type Compression uint8

const (
	CompressionAuto  Compression = iota // smallest of the candidates below
	CompressionNone                     // raw adaptive stream
	CompressionFlate                    // DEFLATE at best compression
	CompressionZstd                     // Zstandard
)

// codec bytes in the bitmap stage params
const (
	bitmapCodecRaw   = uint8(0)
	bitmapCodecFlate = uint8(1)
	bitmapCodecZstd  = uint8(2)
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionFlate:
		return "flate"
	case CompressionZstd:
		return "zstd"
	default:
		return "auto"
	}
}

// Wire format (version 1):
//
//	magic[4] = "RMAP"
//	version  = uint16 little-endian
//	stageCnt = uint16 little-endian
//	repeat stageCnt times:
//	  nameLen  = uint8
//	  paramLen = uint16 little-endian
//	  dataLen  = uint32 little-endian
//	  name     = nameLen bytes
//	  params   = paramLen bytes
//	  payload  = dataLen bytes
//
// Required stage names:
//
//	bitmap     params [codec], payload = adaptive stream (maybe compressed)
//	bit_count  payload = uvarint decoded bit count
//	checksum   payload = xxhash64 of the raw adaptive stream, little-endian
//
// Unknown stages are skipped via dataLen framing.
type wireStageHeader struct {
	name     string
	paramLen uint16
	dataLen  uint32
}

// Archive wraps an adaptive run-length stream with its decoded length and a
// checksum. The bare stream has no integrity check; the archive adds one.
type Archive struct {
	Stream []byte // adaptive stream, byte padded
	Bits   uint64 // decoded bitmap length

	requested Compression // set by SetCompression, used by WriteTo
	stored    Compression // picked by the last WriteTo or found by ReadFrom
}

// appendStage appends one framed stage to dst.
func appendStage(dst []byte, name string, params, payload []byte) ([]byte, error) {
	switch {
	case len(name) == 0 || len(name) > 0xff:
		return dst, errors.Errorf("stage %q: name length %d", name, len(name))
	case len(params) > 0xffff:
		return dst, errors.Errorf("stage %q: %d param bytes", name, len(params))
	case len(payload) > maxStagePayloadBytes:
		return dst, errors.Errorf("stage %q: %d payload bytes", name, len(payload))
	}
	dst = append(dst, uint8(len(name)))
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(params)))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(payload)))
	dst = append(dst, name...)
	dst = append(dst, params...)
	return append(dst, payload...), nil
}

func readStageHeader(r io.Reader) (wireStageHeader, int64, error) {
	var hdr [7]byte
	n, err := io.ReadFull(r, hdr[:])
	total := int64(n)
	if err != nil {
		return wireStageHeader{}, total, err
	}
	nameLen := hdr[0]
	if nameLen == 0 {
		return wireStageHeader{}, total, errors.New("stage name length must be > 0")
	}
	paramLen := binary.LittleEndian.Uint16(hdr[1:3])
	dataLen := binary.LittleEndian.Uint32(hdr[3:7])
	if dataLen > uint32(maxStagePayloadBytes) {
		return wireStageHeader{}, total, errors.Errorf("stage payload too large: %d", dataLen)
	}

	nameBytes := make([]byte, int(nameLen))
	n, err = io.ReadFull(r, nameBytes)
	total += int64(n)
	if err != nil {
		return wireStageHeader{}, total, err
	}

	return wireStageHeader{
		name:     string(nameBytes),
		paramLen: paramLen,
		dataLen:  dataLen,
	}, total, nil
}

// Compression reports how the stream was stored when the archive was last
// written or read.
func (a *Archive) Compression() Compression {
	return a.stored
}

// bitmapCodec is one way of storing the stream in the bitmap stage.
type bitmapCodec struct {
	id     uint8
	comp   Compression
	pack   func(raw []byte) ([]byte, error)
	unpack func(payload []byte) ([]byte, error)
}

var bitmapCodecs = [...]bitmapCodec{
	{id: bitmapCodecRaw, comp: CompressionNone, pack: keepRaw, unpack: copyRaw},
	{id: bitmapCodecFlate, comp: CompressionFlate, pack: deflate, unpack: inflate},
	{id: bitmapCodecZstd, comp: CompressionZstd, pack: zstdPack, unpack: zstdUnpack},
}

// encodeBitmapStage packs raw with the codec comp names. Auto, or an unknown
// value, tries every codec and keeps the smallest payload; ties go to the
// earlier codec.
func encodeBitmapStage(raw []byte, comp Compression) ([]byte, bitmapCodec, error) {
	var (
		best   []byte
		chosen bitmapCodec
		found  bool
	)
	for _, c := range bitmapCodecs {
		if comp != CompressionAuto && comp <= CompressionZstd && c.comp != comp {
			continue
		}
		payload, err := c.pack(raw)
		if err != nil {
			return nil, c, errors.Wrapf(err, "pack bitmap as %s", c.comp)
		}
		if !found || len(payload) < len(best) {
			best, chosen, found = payload, c, true
		}
	}
	return best, chosen, nil
}

func decodeBitmapStage(params []byte, payload []byte) ([]byte, Compression, error) {
	if len(params) != 1 {
		return nil, 0, errors.Wrapf(ErrCorrupt, "bitmap params length %d", len(params))
	}
	for _, c := range bitmapCodecs {
		if c.id != params[0] {
			continue
		}
		raw, err := c.unpack(payload)
		return raw, c.comp, err
	}
	return nil, 0, errors.Errorf("unsupported bitmap codec %d", params[0])
}

func keepRaw(raw []byte) ([]byte, error) { return raw, nil }

func copyRaw(payload []byte) ([]byte, error) { return append([]byte(nil), payload...), nil }

func deflate(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err == nil {
		_, err = fw.Write(raw)
		if cerr := fw.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, "deflate")
	}
	return buf.Bytes(), nil
}

func inflate(payload []byte) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(payload))
	defer fr.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(io.LimitReader(fr, maxStagePayloadBytes+1)); err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "inflate bitmap: %v", err)
	}
	if buf.Len() > maxStagePayloadBytes {
		return nil, errors.Wrapf(ErrCorrupt, "inflated bitmap exceeds %d bytes", maxStagePayloadBytes)
	}
	return buf.Bytes(), nil
}

func zstdPack(raw []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer enc.Close()
	return enc.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func zstdUnpack(payload []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
		zstd.WithDecoderMaxMemory(maxStagePayloadBytes),
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "zstd bitmap: %v", err)
	}
	return raw, nil
}

func checksum(stream []byte) []byte {
	var sum [8]byte
	binary.LittleEndian.PutUint64(sum[:], xxhash.Sum64(stream))
	return sum[:]
}

// WriteTo serializes the Archive to w with the compression chosen by
// SetCompression (auto by default). Compression then reports the codec
// that was used.
func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	if len(a.Stream) > maxStagePayloadBytes {
		return 0, errors.Errorf("invalid archive: stream too large: %d", len(a.Stream))
	}

	payload, codec, err := encodeBitmapStage(a.Stream, a.requested)
	if err != nil {
		return 0, err
	}
	stages := []struct {
		name    string
		params  []byte
		payload []byte
	}{
		{name: stageBitmap, params: []byte{codec.id}, payload: payload},
		{name: stageBitCount, payload: binary.AppendUvarint(nil, a.Bits)},
		{name: stageChecksum, payload: checksum(a.Stream)},
	}

	buf := make([]byte, 0, 64+len(payload))
	buf = append(buf, archiveMagic...)
	buf = binary.LittleEndian.AppendUint16(buf, archiveVersion)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(stages)))
	for _, st := range stages {
		if buf, err = appendStage(buf, st.name, st.params, st.payload); err != nil {
			return 0, err
		}
	}

	n, err := w.Write(buf)
	if err == nil && n < len(buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return int64(n), errors.Wrap(err, "write archive")
	}
	a.stored = codec.comp
	return int64(n), nil
}

// SetCompression selects how WriteTo stores the stream.
func (a *Archive) SetCompression(comp Compression) {
	a.requested = comp
}

// ReadFrom deserializes an Archive from r and verifies its checksum.
func (a *Archive) ReadFrom(r io.Reader) (int64, error) {
	var prefix [8]byte
	n, err := io.ReadFull(r, prefix[:])
	total := int64(n)
	if err != nil {
		return total, errors.Wrap(err, "read archive prefix at offset 0")
	}
	if string(prefix[:4]) != archiveMagic {
		return total, errors.Wrapf(ErrCorrupt, "invalid archive magic %q", string(prefix[:4]))
	}
	if version := binary.LittleEndian.Uint16(prefix[4:6]); version != archiveVersion {
		return total, errors.Errorf("unsupported archive version at offset 4: %d", version)
	}
	stageCount := binary.LittleEndian.Uint16(prefix[6:8])
	if stageCount == 0 || stageCount > maxArchiveStages {
		return total, errors.Wrapf(ErrCorrupt, "invalid stage count at offset 6: %d", stageCount)
	}

	var (
		tmp     Archive
		sum     []byte
		seen    = make(map[string]bool, stageCount)
		payload []byte
	)
	for i := 0; i < int(stageCount); i++ {
		headerOffset := total
		header, n, err := readStageHeader(r)
		total += n
		if err != nil {
			return total, errors.Wrapf(err, "read stage header at offset %d (stage index %d)", headerOffset, i)
		}
		if seen[header.name] {
			return total, errors.Wrapf(ErrCorrupt, "duplicate stage %q at stage index %d", header.name, i)
		}

		params := make([]byte, int(header.paramLen))
		nParams, err := io.ReadFull(r, params)
		total += int64(nParams)
		if err != nil {
			return total, errors.Wrapf(err, "read stage %q params (stage index %d)", header.name, i)
		}

		switch header.name {
		case stageBitmap, stageBitCount, stageChecksum:
			payload = make([]byte, int(header.dataLen))
			payloadOffset := total
			nPayload, err := io.ReadFull(r, payload)
			total += int64(nPayload)
			if err != nil {
				return total, errors.Wrapf(err, "read stage %q payload at offset %d (stage index %d)", header.name, payloadOffset, i)
			}

			switch header.name {
			case stageBitmap:
				tmp.Stream, tmp.stored, err = decodeBitmapStage(params, payload)
				if err != nil {
					return total, errors.Wrapf(err, "decode stage %q at offset %d", header.name, payloadOffset)
				}
			case stageBitCount:
				bits, k := binary.Uvarint(payload)
				if k <= 0 || k != len(payload) {
					return total, errors.Wrapf(ErrCorrupt, "decode stage %q at offset %d", header.name, payloadOffset)
				}
				tmp.Bits = bits
			case stageChecksum:
				if len(payload) != 8 {
					return total, errors.Wrapf(ErrCorrupt, "checksum length %d", len(payload))
				}
				sum = payload
			}
			seen[header.name] = true

		default:
			skipped, err := io.CopyN(io.Discard, r, int64(header.dataLen))
			total += skipped
			if err != nil {
				return total, errors.Wrapf(err, "skip unknown stage %q (stage index %d)", header.name, i)
			}
		}
	}

	for _, name := range []string{stageBitmap, stageBitCount, stageChecksum} {
		if !seen[name] {
			return total, errors.Wrapf(ErrCorrupt, "missing required stage %q", name)
		}
	}
	if !bytes.Equal(sum, checksum(tmp.Stream)) {
		return total, ErrChecksum
	}

	tmp.requested = a.requested
	*a = tmp
	return total, nil
}

// CompressArchive encodes src and writes it to dst as an Archive.
func (e *Encoder) CompressArchive(dst io.Writer, src io.Reader) (Stats, error) {
	var buf bytes.Buffer
	stats, err := e.Compress(&buf, src)
	if err != nil {
		return stats, err
	}
	a := &Archive{Stream: buf.Bytes(), Bits: stats.InputBits}
	a.SetCompression(e.config.Compression)
	if _, err := a.WriteTo(dst); err != nil {
		return stats, errors.Wrap(err, "write archive")
	}
	return stats, nil
}

// ExpandArchive reads an Archive from src, verifies it and writes the decoded
// bitmap to dst.
func (d *Decoder) ExpandArchive(dst io.Writer, src io.Reader) (Stats, error) {
	var a Archive
	if _, err := a.ReadFrom(src); err != nil {
		return Stats{}, errors.Wrap(err, "read archive")
	}
	stats, err := d.Expand(dst, bytes.NewReader(a.Stream))
	if err != nil {
		return stats, err
	}
	if stats.OutputBits != a.Bits {
		return stats, errors.Wrapf(ErrCorrupt, "decoded %d bits, archive records %d", stats.OutputBits, a.Bits)
	}
	return stats, nil
}
