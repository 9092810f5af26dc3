/*
Package fontbuild assembles synthetic font binaries from table payloads.

It is used by tests to create fonts exercising specific table layouts without
shipping binary font files. Fonts built with fontbuild are well-formed as far
as the container formats are concerned, but tables carry only what a test
puts into them.
*/
package fontbuild

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"math/bits"
	"sort"

	"github.com/andybalholm/brotli"
)

// Flavors of SFNT fonts.
const (
	TrueType uint32 = 0x00010000
	CFF      uint32 = 0x4f54544f // 'OTTO'
)

// Table is a font table to be assembled into a font binary.
type Table struct {
	Tag  string // 4 characters, or fewer to be padded with spaces
	Data []byte
}

func (t Table) tag() []byte {
	tag := []byte("    ")
	copy(tag, t.Tag)
	return tag
}

func pad4(n int) int {
	return (n + 3) &^ 3
}

func padded(b []byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

// Checksum calculates an OpenType table checksum.
func Checksum(data []byte) uint32 {
	var sum uint32
	data = padded(append([]byte{}, data...))
	for i := 0; i < len(data); i += 4 {
		sum += binary.BigEndian.Uint32(data[i:])
	}
	return sum
}

func searchParams(n, unit int) (searchRange, entrySelector, rangeShift uint16) {
	if n == 0 {
		return 0, 0, 0
	}
	entrySelector = uint16(bits.Len(uint(n)) - 1)
	searchRange = uint16((1 << entrySelector) * unit)
	rangeShift = uint16(n*unit) - searchRange
	return
}

// SFNT assembles an uncompressed font file. Tables are stored in the order
// given, each aligned to 4 bytes.
func SFNT(flavor uint32, tables ...Table) []byte {
	n := len(tables)
	b := binary.BigEndian.AppendUint32(nil, flavor)
	b = binary.BigEndian.AppendUint16(b, uint16(n))
	sr, es, rs := searchParams(n, 16)
	b = binary.BigEndian.AppendUint16(b, sr)
	b = binary.BigEndian.AppendUint16(b, es)
	b = binary.BigEndian.AppendUint16(b, rs)
	offset := 12 + 16*n
	for _, t := range tables {
		b = append(b, t.tag()...)
		b = binary.BigEndian.AppendUint32(b, Checksum(t.Data))
		b = binary.BigEndian.AppendUint32(b, uint32(offset))
		b = binary.BigEndian.AppendUint32(b, uint32(len(t.Data)))
		offset += pad4(len(t.Data))
	}
	for _, t := range tables {
		b = padded(append(b, t.Data...))
	}
	return b
}

func sfntSize(tables []Table) int {
	size := 12 + 16*len(tables)
	for _, t := range tables {
		size += pad4(len(t.Data))
	}
	return size
}

// Deflate compresses data with zlib.
func Deflate(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

// WOFF assembles a WOFF 1.0 font. If compress is set, tables are compressed
// with zlib whenever this makes them smaller; otherwise all tables are stored.
func WOFF(flavor uint32, compress bool, tables ...Table) []byte {
	n := len(tables)
	payloads := make([][]byte, n)
	for i, t := range tables {
		payloads[i] = t.Data
		if compress {
			if z := Deflate(t.Data); len(z) < len(t.Data) {
				payloads[i] = z
			}
		}
	}
	offset := 44 + 20*n
	length := offset
	for _, p := range payloads {
		length += pad4(len(p))
	}
	b := binary.BigEndian.AppendUint32(nil, 0x774f4646) // 'wOFF'
	b = binary.BigEndian.AppendUint32(b, flavor)
	b = binary.BigEndian.AppendUint32(b, uint32(length))
	b = binary.BigEndian.AppendUint16(b, uint16(n))
	b = binary.BigEndian.AppendUint16(b, 0) // reserved
	b = binary.BigEndian.AppendUint32(b, uint32(sfntSize(tables)))
	b = binary.BigEndian.AppendUint16(b, 1) // major version
	b = binary.BigEndian.AppendUint16(b, 0)
	b = append(b, make([]byte, 20)...) // no metadata, no private data
	for i, t := range tables {
		b = append(b, t.tag()...)
		b = binary.BigEndian.AppendUint32(b, uint32(offset))
		b = binary.BigEndian.AppendUint32(b, uint32(len(payloads[i])))
		b = binary.BigEndian.AppendUint32(b, uint32(len(t.Data)))
		b = binary.BigEndian.AppendUint32(b, Checksum(t.Data))
		offset += pad4(len(payloads[i]))
	}
	for _, p := range payloads {
		b = padded(append(b, p...))
	}
	return b
}

// Brotli compresses data with Brotli.
func Brotli(data []byte) []byte {
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

var woff2KnownTags = map[string]uint8{
	"cmap": 0, "head": 1, "hhea": 2, "hmtx": 3, "maxp": 4, "name": 5, "OS/2": 6, "post": 7,
	"cvt ": 8, "fpgm": 9, "glyf": 10, "loca": 11, "prep": 12, "CFF ": 13, "VORG": 14,
	"GDEF": 26, "GPOS": 27, "GSUB": 28, "COLR": 34, "CPAL": 35, "fvar": 47,
}

// AppendUintBase128 appends a WOFF2 variable-length integer. Values of 2^35
// and above need more than the five bytes a WOFF2 reader accepts.
func AppendUintBase128(b []byte, v uint64) []byte {
	var tmp [10]byte
	n := 0
	for {
		tmp[len(tmp)-1-n] = byte(v & 0x7f)
		v >>= 7
		n++
		if v == 0 {
			break
		}
	}
	for i := len(tmp) - n; i < len(tmp); i++ {
		c := tmp[i]
		if i < len(tmp)-1 {
			c |= 0x80
		}
		b = append(b, c)
	}
	return b
}

// WOFF2 assembles a WOFF 2.0 font. No table transformations are applied;
// glyf and loca are flagged with the null transform.
func WOFF2(flavor uint32, tables ...Table) []byte {
	var dir []byte
	var stream []byte
	for _, t := range tables {
		tag := t.tag()
		flags, known := woff2KnownTags[string(tag)]
		if !known {
			flags = 0x3f
		}
		if string(tag) == "glyf" || string(tag) == "loca" {
			flags |= 3 << 6
		}
		dir = append(dir, flags)
		if !known {
			dir = append(dir, tag...)
		}
		dir = AppendUintBase128(dir, uint64(len(t.Data)))
		stream = append(stream, t.Data...)
	}
	compressed := Brotli(stream)
	length := 48 + len(dir) + pad4(len(compressed))
	b := binary.BigEndian.AppendUint32(nil, 0x774f4632) // 'wOF2'
	b = binary.BigEndian.AppendUint32(b, flavor)
	b = binary.BigEndian.AppendUint32(b, uint32(length))
	b = binary.BigEndian.AppendUint16(b, uint16(len(tables)))
	b = binary.BigEndian.AppendUint16(b, 0) // reserved
	b = binary.BigEndian.AppendUint32(b, uint32(sfntSize(tables)))
	b = binary.BigEndian.AppendUint32(b, uint32(len(compressed)))
	b = binary.BigEndian.AppendUint16(b, 1) // major version
	b = binary.BigEndian.AppendUint16(b, 0)
	b = append(b, make([]byte, 20)...) // no metadata, no private data
	b = append(b, dir...)
	return padded(append(b, compressed...))
}

// --- Tables ----------------------------------------------------------------

// Head creates a 'head' table.
func Head(unitsPerEm uint16, indexToLocFormat int16) []byte {
	b := binary.BigEndian.AppendUint16(nil, 1)    // major version
	b = binary.BigEndian.AppendUint16(b, 0)       // minor version
	b = binary.BigEndian.AppendUint32(b, 0x10000) // font revision 1.0
	b = binary.BigEndian.AppendUint32(b, 0)       // checksum adjustment
	b = binary.BigEndian.AppendUint32(b, 0x5f0f3cf5)
	b = binary.BigEndian.AppendUint16(b, 0x000b) // flags
	b = binary.BigEndian.AppendUint16(b, unitsPerEm)
	b = binary.BigEndian.AppendUint64(b, 3600000000) // created
	b = binary.BigEndian.AppendUint64(b, 3600000000) // modified
	b = binary.BigEndian.AppendUint16(b, 0)          // xMin
	b = binary.BigEndian.AppendUint16(b, 0)
	b = binary.BigEndian.AppendUint16(b, unitsPerEm)
	b = binary.BigEndian.AppendUint16(b, unitsPerEm)
	b = binary.BigEndian.AppendUint16(b, 0) // macStyle
	b = binary.BigEndian.AppendUint16(b, 8) // lowestRecPPEM
	b = binary.BigEndian.AppendUint16(b, 2) // fontDirectionHint
	b = binary.BigEndian.AppendUint16(b, uint16(indexToLocFormat))
	return binary.BigEndian.AppendUint16(b, 0)
}

// MaxP creates a version 0.5 'maxp' table.
func MaxP(numGlyphs uint16) []byte {
	b := binary.BigEndian.AppendUint32(nil, 0x00005000)
	return binary.BigEndian.AppendUint16(b, numGlyphs)
}

// HHea creates a 'hhea' table.
func HHea(ascender, descender int16, numberOfHMetrics uint16) []byte {
	b := binary.BigEndian.AppendUint16(nil, 1)
	b = binary.BigEndian.AppendUint16(b, 0)
	b = binary.BigEndian.AppendUint16(b, uint16(ascender))
	b = binary.BigEndian.AppendUint16(b, uint16(descender))
	b = append(b, make([]byte, 2+2+2+2+2)...) // lineGap … xMaxExtent
	b = binary.BigEndian.AppendUint16(b, 1)   // caretSlopeRise
	b = append(b, make([]byte, 2+2+8+2)...)   // caretSlopeRun … metricDataFormat
	return binary.BigEndian.AppendUint16(b, numberOfHMetrics)
}

// Metric is a long metric record of 'hmtx'.
type Metric struct {
	Advance     uint16
	SideBearing int16
}

// HMtx creates a 'hmtx' table from long metrics and trailing side bearings.
func HMtx(metrics []Metric, bearings ...int16) []byte {
	var b []byte
	for _, m := range metrics {
		b = binary.BigEndian.AppendUint16(b, m.Advance)
		b = binary.BigEndian.AppendUint16(b, uint16(m.SideBearing))
	}
	for _, sb := range bearings {
		b = binary.BigEndian.AppendUint16(b, uint16(sb))
	}
	return b
}

// --- cmap ------------------------------------------------------------------

// Subtable is a cmap subtable for an encoding.
type Subtable struct {
	PlatformID uint16
	EncodingID uint16
	Data       []byte
}

// CMap creates a 'cmap' table. Encoding records are written in the order given.
func CMap(subtables ...Subtable) []byte {
	b := binary.BigEndian.AppendUint16(nil, 0)
	b = binary.BigEndian.AppendUint16(b, uint16(len(subtables)))
	offset := 4 + 8*len(subtables)
	for _, s := range subtables {
		b = binary.BigEndian.AppendUint16(b, s.PlatformID)
		b = binary.BigEndian.AppendUint16(b, s.EncodingID)
		b = binary.BigEndian.AppendUint32(b, uint32(offset))
		offset += len(s.Data)
	}
	for _, s := range subtables {
		b = append(b, s.Data...)
	}
	return b
}

// CMapFormat0 creates a byte encoding subtable.
func CMapFormat0(glyphs [256]uint8) []byte {
	b := binary.BigEndian.AppendUint16(nil, 0)
	b = binary.BigEndian.AppendUint16(b, 262)
	b = binary.BigEndian.AppendUint16(b, 0)
	return append(b, glyphs[:]...)
}

// Segment is a segment of a format 4 subtable. If Glyphs is nil, character
// codes are mapped by adding Delta; otherwise Glyphs holds one glyph per
// character code, referenced by the segment's idRangeOffset.
type Segment struct {
	Start, End uint16
	Delta      int16
	Glyphs     []uint16
}

// CMapFormat4 creates a segment mapping subtable. The mandatory final
// segment for 0xFFFF is appended.
func CMapFormat4(segments ...Segment) []byte {
	segments = append(append([]Segment{}, segments...), Segment{Start: 0xffff, End: 0xffff, Delta: 1})
	n := len(segments)
	glyphArrayAt := 16 + 8*n
	var glyphArray []uint16
	rangeOffsets := make([]uint16, n)
	for i, s := range segments {
		if s.Glyphs == nil {
			continue
		}
		rangeOffsetAt := 16 + 6*n + 2*i
		rangeOffsets[i] = uint16(glyphArrayAt + 2*len(glyphArray) - rangeOffsetAt)
		glyphArray = append(glyphArray, s.Glyphs...)
	}
	length := glyphArrayAt + 2*len(glyphArray)
	b := binary.BigEndian.AppendUint16(nil, 4)
	b = binary.BigEndian.AppendUint16(b, uint16(length))
	b = binary.BigEndian.AppendUint16(b, 0) // language
	b = binary.BigEndian.AppendUint16(b, uint16(2*n))
	sr, es, rs := searchParams(n, 2)
	b = binary.BigEndian.AppendUint16(b, sr)
	b = binary.BigEndian.AppendUint16(b, es)
	b = binary.BigEndian.AppendUint16(b, rs)
	for _, s := range segments {
		b = binary.BigEndian.AppendUint16(b, s.End)
	}
	b = binary.BigEndian.AppendUint16(b, 0) // reservedPad
	for _, s := range segments {
		b = binary.BigEndian.AppendUint16(b, s.Start)
	}
	for _, s := range segments {
		b = binary.BigEndian.AppendUint16(b, uint16(s.Delta))
	}
	for _, ro := range rangeOffsets {
		b = binary.BigEndian.AppendUint16(b, ro)
	}
	for _, g := range glyphArray {
		b = binary.BigEndian.AppendUint16(b, g)
	}
	return b
}

// CMapFormat6 creates a trimmed table mapping subtable.
func CMapFormat6(firstCode uint16, glyphs ...uint16) []byte {
	b := binary.BigEndian.AppendUint16(nil, 6)
	b = binary.BigEndian.AppendUint16(b, uint16(10+2*len(glyphs)))
	b = binary.BigEndian.AppendUint16(b, 0)
	b = binary.BigEndian.AppendUint16(b, firstCode)
	b = binary.BigEndian.AppendUint16(b, uint16(len(glyphs)))
	for _, g := range glyphs {
		b = binary.BigEndian.AppendUint16(b, g)
	}
	return b
}

// Group is a sequential map group of a format 12 subtable, or a constant map
// group of a format 13 subtable.
type Group struct {
	StartChar, EndChar uint32
	Glyph              uint32
}

func groupSubtable(format uint16, groups []Group) []byte {
	groups = append([]Group{}, groups...)
	sort.Slice(groups, func(i, j int) bool { return groups[i].StartChar < groups[j].StartChar })
	b := binary.BigEndian.AppendUint16(nil, format)
	b = binary.BigEndian.AppendUint16(b, 0)
	b = binary.BigEndian.AppendUint32(b, uint32(16+12*len(groups)))
	b = binary.BigEndian.AppendUint32(b, 0) // language
	b = binary.BigEndian.AppendUint32(b, uint32(len(groups)))
	for _, g := range groups {
		b = binary.BigEndian.AppendUint32(b, g.StartChar)
		b = binary.BigEndian.AppendUint32(b, g.EndChar)
		b = binary.BigEndian.AppendUint32(b, g.Glyph)
	}
	return b
}

// CMapFormat12 creates a segmented coverage subtable.
func CMapFormat12(groups ...Group) []byte {
	return groupSubtable(12, groups)
}

// CMapFormat13 creates a many-to-one range mapping subtable.
func CMapFormat13(groups ...Group) []byte {
	return groupSubtable(13, groups)
}

// VarSelector is a variation selector of a format 14 subtable, together with
// ranges of base characters using their default glyph (each a start code and
// an additional count) and non-default mappings.
type VarSelector struct {
	Selector   uint32
	Defaults   [][2]uint32
	NonDefault map[uint32]uint16
}

func appendUint24(b []byte, v uint32) []byte {
	return append(b, byte(v>>16), byte(v>>8), byte(v))
}

// CMapFormat14 creates a Unicode variation sequences subtable.
func CMapFormat14(selectors ...VarSelector) []byte {
	n := len(selectors)
	var records, tail []byte
	at := 10 + 11*n
	for _, s := range selectors {
		records = appendUint24(records, s.Selector)
		if len(s.Defaults) > 0 {
			records = binary.BigEndian.AppendUint32(records, uint32(at+len(tail)))
			tail = binary.BigEndian.AppendUint32(tail, uint32(len(s.Defaults)))
			for _, r := range s.Defaults {
				tail = appendUint24(tail, r[0])
				tail = append(tail, byte(r[1]))
			}
		} else {
			records = binary.BigEndian.AppendUint32(records, 0)
		}
		if len(s.NonDefault) > 0 {
			records = binary.BigEndian.AppendUint32(records, uint32(at+len(tail)))
			codes := make([]uint32, 0, len(s.NonDefault))
			for c := range s.NonDefault {
				codes = append(codes, c)
			}
			sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
			tail = binary.BigEndian.AppendUint32(tail, uint32(len(codes)))
			for _, c := range codes {
				tail = appendUint24(tail, c)
				tail = binary.BigEndian.AppendUint16(tail, s.NonDefault[c])
			}
		} else {
			records = binary.BigEndian.AppendUint32(records, 0)
		}
	}
	b := binary.BigEndian.AppendUint16(nil, 14)
	b = binary.BigEndian.AppendUint32(b, uint32(at+len(tail)))
	b = binary.BigEndian.AppendUint32(b, uint32(n))
	b = append(b, records...)
	return append(b, tail...)
}

// Minimal returns the tables of a minimal TrueType-flavoured font with the
// given cmap table: head, hhea, hmtx, maxp and cmap. Every glyph has an advance
// of 500 units.
func Minimal(numGlyphs uint16, cmap []byte) []Table {
	metrics := []Metric{{Advance: 500, SideBearing: 0}}
	bearings := make([]int16, int(numGlyphs)-1)
	return []Table{
		{Tag: "cmap", Data: cmap},
		{Tag: "head", Data: Head(1000, 0)},
		{Tag: "hhea", Data: HHea(800, -200, 1)},
		{Tag: "hmtx", Data: HMtx(metrics, bearings...)},
		{Tag: "maxp", Data: MaxP(numGlyphs)},
	}
}
