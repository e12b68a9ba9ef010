package runmap_test

import (
	"bytes"
	"fmt"

	"github.com/seiflotfy/runmap"
	"github.com/seiflotfy/runmap/bitstream"
)

// ExampleEncodeBits shows the round trip of a small bitmap.
func ExampleEncodeBits() {
	bits := bitstream.Parse("0001111000")

	data, err := runmap.EncodeBits(bits)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Encoded to %d bytes\n", len(data))

	decoded, err := runmap.DecodeBits(data)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Decoded: %s\n", bitstream.Format(decoded))

	// Output:
	// Encoded to 14 bytes
	// Decoded: 0001111000
}

// ExampleNewPlan inspects the header chosen for a bitmap.
func ExampleNewPlan() {
	p, err := runmap.NewPlan(bitstream.Zero, []uint64{3, 4, 3})
	if err != nil {
		panic(err)
	}
	h := p.Header()
	fmt.Printf("runs=%d dictionary=%v minBits=%d minMapBits=%d\n", h.Runs, h.Entries, h.MinBits, h.MinMapBits())
	fmt.Printf("encoded bits=%d\n", h.EncodedBits())

	// Output:
	// runs=3 dictionary=[3 4] minBits=3 minMapBits=2
	// encoded bits=109
}

// ExampleEncoder_CompressArchive stores a bitmap in a checksummed archive.
func ExampleEncoder_CompressArchive() {
	bitmap := bytes.Repeat([]byte{0x00, 0x00, 0xff}, 100)

	var archived bytes.Buffer
	enc := runmap.NewEncoder(runmap.WithCompression(runmap.CompressionNone))
	stats, err := enc.CompressArchive(&archived, bytes.NewReader(bitmap))
	if err != nil {
		panic(err)
	}
	fmt.Printf("runs=%d distinct=%d\n", stats.Runs, stats.Distinct)

	var expanded bytes.Buffer
	if _, err := runmap.NewDecoder().ExpandArchive(&expanded, &archived); err != nil {
		panic(err)
	}
	fmt.Println(bytes.Equal(expanded.Bytes(), bitmap))

	// Output:
	// runs=200 distinct=2
	// true
}
