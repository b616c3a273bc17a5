// Package exiftest builds small images with embedded GPS metadata.
package exiftest

import (
	"bytes"
	"encoding/binary"
)

type Rational struct{ Num, Den uint32 }

// JPEGWithGPS builds a minimal JPEG whose APP1 segment carries a little
// endian TIFF block with a single GPS IFD. Positions are given as degrees,
// minutes and seconds.
func JPEGWithGPS(latRef string, lat [3]Rational, lonRef string, lon [3]Rational) []byte {
	le := binary.LittleEndian
	tiff := new(bytes.Buffer)

	// header
	tiff.WriteString("II")
	_ = binary.Write(tiff, le, uint16(42))
	_ = binary.Write(tiff, le, uint32(8))

	// IFD0: one entry pointing at the GPS IFD (offset 26)
	_ = binary.Write(tiff, le, uint16(1))
	writeEntry(tiff, 0x8825, 4, 1, 26)
	_ = binary.Write(tiff, le, uint32(0))

	// GPS IFD: four entries, rationals stored from offset 80
	_ = binary.Write(tiff, le, uint16(4))
	writeEntry(tiff, 0x0001, 2, 2, asciiInline(latRef))
	writeEntry(tiff, 0x0002, 5, 3, 80)
	writeEntry(tiff, 0x0003, 2, 2, asciiInline(lonRef))
	writeEntry(tiff, 0x0004, 5, 3, 104)
	_ = binary.Write(tiff, le, uint32(0))

	for _, r := range append(lat[:], lon[:]...) {
		_ = binary.Write(tiff, le, r.Num)
		_ = binary.Write(tiff, le, r.Den)
	}

	out := new(bytes.Buffer)
	out.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	_ = binary.Write(out, binary.BigEndian, uint16(2+6+tiff.Len()))
	out.WriteString("Exif\x00\x00")
	out.Write(tiff.Bytes())
	out.Write([]byte{0xFF, 0xD9})
	return out.Bytes()
}

// ParisJPEG is a JPEG tagged with 48.8566 N, 2.3522 E.
func ParisJPEG() []byte {
	return JPEGWithGPS(
		"N", [3]Rational{{48, 1}, {51, 1}, {2376, 100}},
		"E", [3]Rational{{2, 1}, {21, 1}, {792, 100}},
	)
}

// PlainJPEG is a JPEG without any metadata.
func PlainJPEG() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01, 0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0xFF, 0xD9}
}

func writeEntry(buf *bytes.Buffer, tag, typ uint16, count, value uint32) {
	le := binary.LittleEndian
	_ = binary.Write(buf, le, tag)
	_ = binary.Write(buf, le, typ)
	_ = binary.Write(buf, le, count)
	_ = binary.Write(buf, le, value)
}

func asciiInline(s string) uint32 {
	b := make([]byte, 4)
	copy(b, s)
	return binary.LittleEndian.Uint32(b)
}
