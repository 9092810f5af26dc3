package ot

import (
	"fmt"
	"sort"
)

// CMapSubtable is a subtable of table cmap. Each subtable format is a
// different way of mapping character codes to glyph indices; there are
// concrete types CMapFormat0 … CMapFormat14 for the formats defined by
// OpenType. Subtables of other formats are represented by CMapFormatUnknown.
type CMapSubtable interface {
	Format() uint16
	PlatformID() uint16
	EncodingID() uint16
	// Supports reports whether a character code maps to a glyph other than '.notdef'.
	Supports(code rune) bool
	// Reverse finds the character code mapping to a glyph.
	Reverse(gid GlyphIndex) (CharCode, bool)
	// SupportedCharCodes returns the ranges of character codes covered by the subtable.
	SupportedCharCodes() []CharRange
}

// GlyphMapper is implemented by subtables mapping Unicode code points to glyphs:
// formats 4, 10, 12 and 13. Other formats map platform-specific (mostly
// single- or double-byte) character codes and offer `Lookup` instead.
type GlyphMapper interface {
	GlyphID(code rune) GlyphIndex
}

// CharCode is the result of a reverse lookup.
type CharCode struct {
	Code    rune
	Unicode string
}

func charCode(c rune) CharCode {
	return CharCode{Code: c, Unicode: string(c)}
}

// CharRange is a range of character codes, both ends inclusive.
type CharRange struct {
	Start, End uint32
}

type cmapSubtableBase struct {
	record
	format     uint16
	platformID uint16
	encodingID uint16
}

func (b *cmapSubtableBase) Format() uint16     { return b.format }
func (b *cmapSubtableBase) PlatformID() uint16 { return b.platformID }
func (b *cmapSubtableBase) EncodingID() uint16 { return b.encodingID }

func (b *cmapSubtableBase) unimplemented(op string) {
	b.warn(fmt.Sprintf("%s not implemented for cmap subtable format %d", op, b.format))
}

// glyphIndex narrows a 32-bit glyph ID of a group. IDs beyond 0xffff cannot
// address a glyph and map to 0.
func (b *cmapSubtableBase) glyphIndex(gid uint64) GlyphIndex {
	if gid > 0xffff {
		b.warn(fmt.Sprintf("glyph index %d out of range in cmap subtable format %d", gid, b.format))
		return 0
	}
	return GlyphIndex(gid)
}

func decodeCMapSubtable(p *Parser, platformID, encodingID uint16) (CMapSubtable, error) {
	base := cmapSubtableBase{record: newRecord(p), platformID: platformID, encodingID: encodingID}
	base.format = p.Uint16()
	if err := p.Err(); err != nil {
		return nil, err
	}
	tracer().Debugf("cmap subtable format %d for platform %d, encoding %d", base.format, platformID, encodingID)
	var sub CMapSubtable
	switch base.format {
	case 0:
		sub = decodeCMapFormat0(p, base)
	case 2:
		sub = decodeCMapFormat2(p, base)
	case 4:
		sub = decodeCMapFormat4(p, base)
	case 6:
		sub = decodeCMapFormat6(p, base)
	case 8:
		sub = decodeCMapFormat8(p, base)
	case 10:
		sub = decodeCMapFormat10(p, base)
	case 12:
		sub = decodeCMapFormat12(p, base)
	case 13:
		sub = decodeCMapFormat13(p, base)
	case 14:
		sub = decodeCMapFormat14(p, base)
	default:
		base.warn(fmt.Sprintf("unknown cmap subtable format %d", base.format))
		return &CMapFormatUnknown{cmapSubtableBase: base}, nil
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return sub, nil
}

func isSurrogate(c rune) bool {
	return 0xd800 <= c && c <= 0xdfff
}

// isNonCharacter reports U+xxFFFE and U+xxFFFF.
func isNonCharacter(c rune) bool {
	return c&0xfffe == 0xfffe
}

// --- Format 0 --------------------------------------------------------------

// CMapFormat0 is a byte encoding table, mapping character codes 0…255.
type CMapFormat0 struct {
	cmapSubtableBase
	Length       uint16
	Language     uint16
	GlyphIDArray []uint8
}

func decodeCMapFormat0(p *Parser, base cmapSubtableBase) *CMapFormat0 {
	f := &CMapFormat0{cmapSubtableBase: base}
	f.Length = p.Uint16()
	f.Language = p.Uint16()
	f.GlyphIDArray = p.Uint8s(256)
	return f
}

// Lookup returns the glyph index for a character code.
func (f *CMapFormat0) Lookup(code uint32) GlyphIndex {
	if code < uint32(len(f.GlyphIDArray)) {
		return GlyphIndex(f.GlyphIDArray[code])
	}
	return 0
}

func (f *CMapFormat0) Supports(code rune) bool {
	return code >= 0 && f.Lookup(uint32(code)) != 0
}

func (f *CMapFormat0) Reverse(gid GlyphIndex) (CharCode, bool) {
	f.unimplemented("reverse")
	return CharCode{}, false
}

func (f *CMapFormat0) SupportedCharCodes() []CharRange {
	return []CharRange{{Start: 0, End: 255}}
}

// --- Format 2 --------------------------------------------------------------

// CMapFormat2 is a high-byte mapping through table, for mixed 8/16-bit
// encodings as used for Japanese, Chinese and Korean.
type CMapFormat2 struct {
	cmapSubtableBase
	Length          uint16
	Language        uint16
	SubHeaderKeys   []uint16 // sub-header index × 8, for each high byte
	SubHeaders      *Lazy[[]CMap2SubHeader]
	GlyphIndexArray *Lazy[[]uint16]
	subHeaderCount  int
}

// CMap2SubHeader describes the range of low bytes mapped for a high byte.
type CMap2SubHeader struct {
	FirstCode     uint16
	EntryCount    uint16
	IDDelta       int16
	IDRangeOffset uint16
}

const cmap2SubHeadersOffset = 6 + 512

func decodeCMapFormat2(p *Parser, base cmapSubtableBase) *CMapFormat2 {
	f := &CMapFormat2{cmapSubtableBase: base}
	f.Length = p.Uint16()
	f.Language = p.Uint16()
	f.SubHeaderKeys = p.Uint16s(256)
	var maxKey uint16
	for _, key := range f.SubHeaderKeys {
		maxKey = max(maxKey, key)
	}
	f.subHeaderCount = int(maxKey)/8 + 1
	f.SubHeaders = NewLazy(func() ([]CMap2SubHeader, error) {
		q := f.at(cmap2SubHeadersOffset)
		headers := readArray(q, f.subHeaderCount, 8, func(q *Parser) CMap2SubHeader {
			return CMap2SubHeader{
				FirstCode:     q.Uint16(),
				EntryCount:    q.Uint16(),
				IDDelta:       q.Int16(),
				IDRangeOffset: q.Uint16(),
			}
		})
		return headers, q.Err()
	})
	f.GlyphIndexArray = NewLazy(func() ([]uint16, error) {
		offset := cmap2SubHeadersOffset + 8*f.subHeaderCount
		n := max(0, (int(f.Length)-offset)/2)
		q := f.at(offset)
		return q.Uint16s(n), q.Err()
	})
	return f
}

// subHeader selects the sub-header for a character code and returns it
// together with its index and the byte used to index into it.
func (f *CMapFormat2) subHeader(code uint32) (CMap2SubHeader, int, uint16, bool) {
	headers, err := f.SubHeaders.Get()
	if err != nil || code > 0xffff || len(f.SubHeaderKeys) < 256 {
		return CMap2SubHeader{}, 0, 0, false
	}
	var index int
	var b uint16
	if code <= 0xff {
		if f.SubHeaderKeys[code] != 0 { // first byte of a two-byte code
			return CMap2SubHeader{}, 0, 0, false
		}
		index, b = 0, uint16(code)
	} else {
		key := f.SubHeaderKeys[code>>8]
		if key == 0 {
			return CMap2SubHeader{}, 0, 0, false
		}
		index, b = int(key)/8, uint16(code&0xff)
	}
	if index >= len(headers) {
		return CMap2SubHeader{}, 0, 0, false
	}
	sh := headers[index]
	if b < sh.FirstCode || int(b) >= int(sh.FirstCode)+int(sh.EntryCount) {
		return CMap2SubHeader{}, 0, 0, false
	}
	return sh, index, b, true
}

// Lookup returns the glyph index for a one- or two-byte character code.
func (f *CMapFormat2) Lookup(code uint32) GlyphIndex {
	sh, index, b, ok := f.subHeader(code)
	if !ok {
		return 0
	}
	// idRangeOffset counts from the position of the idRangeOffset field itself
	pos := cmap2SubHeadersOffset + 8*index + 6 + int(sh.IDRangeOffset) + 2*int(b-sh.FirstCode)
	g := f.at(pos).Uint16()
	if g == 0 {
		return 0
	}
	return GlyphIndex(uint16(int(g) + int(sh.IDDelta)))
}

func (f *CMapFormat2) Supports(code rune) bool {
	return code >= 0 && f.Lookup(uint32(code)) != 0
}

func (f *CMapFormat2) Reverse(gid GlyphIndex) (CharCode, bool) {
	f.unimplemented("reverse")
	return CharCode{}, false
}

func (f *CMapFormat2) SupportedCharCodes() []CharRange {
	headers, err := f.SubHeaders.Get()
	if err != nil || len(headers) == 0 {
		return nil
	}
	var ranges []CharRange
	for hi, key := range f.SubHeaderKeys {
		index := int(key) / 8
		if (hi == 0 && key == 0) || index == 0 || index >= len(headers) {
			continue
		}
		sh := headers[index]
		if sh.EntryCount == 0 {
			continue
		}
		start := uint32(hi)<<8 | uint32(sh.FirstCode)
		ranges = append(ranges, CharRange{Start: start, End: start + uint32(sh.EntryCount) - 1})
	}
	if sh := headers[0]; sh.EntryCount > 0 {
		single := CharRange{Start: uint32(sh.FirstCode), End: uint32(sh.FirstCode) + uint32(sh.EntryCount) - 1}
		ranges = append([]CharRange{single}, ranges...)
	}
	return ranges
}

// --- Format 4 --------------------------------------------------------------

// CMapFormat4 is a segment mapping to delta values, the standard format for
// fonts covering the Basic Multilingual Plane.
type CMapFormat4 struct {
	cmapSubtableBase
	Length        uint16
	Language      uint16
	SegCountX2    uint16
	SearchRange   uint16
	EntrySelector uint16
	RangeShift    uint16
	EndCode       *Lazy[[]uint16]
	StartCode     *Lazy[[]uint16]
	IDDelta       *Lazy[[]int16]
	IDRangeOffset *Lazy[[]uint16]
	GlyphIDArray  *Lazy[[]uint16]
	Segments      *Lazy[[]CMap4Segment]
}

// CMap4Segment is a range of character codes of a format 4 subtable.
// Glyph indices are either computed from the character code and IDDelta, or,
// if IDRangeOffset is not 0, looked up in the subtable's glyph index array.
type CMap4Segment struct {
	StartCode     uint16
	EndCode       uint16
	IDDelta       int16
	IDRangeOffset uint16
	rangeOffsetAt int        // position of the segment's idRangeOffset entry
	data          binarySegm // the buffer the subtable is read from
}

// GlyphID returns the glyph index for a character code within the segment.
func (s CMap4Segment) GlyphID(code uint16) GlyphIndex {
	if code < s.StartCode || code > s.EndCode {
		return 0
	}
	if s.IDRangeOffset == 0 {
		return GlyphIndex(uint16(int(code) + int(s.IDDelta)))
	}
	pos := s.rangeOffsetAt + int(s.IDRangeOffset) + 2*int(code-s.StartCode)
	g, err := s.data.u16(pos)
	if err != nil || g == 0 {
		return 0
	}
	return GlyphIndex(uint16(int(g) + int(s.IDDelta)))
}

// GlyphIDs returns the glyph indices for all character codes of the segment.
func (s CMap4Segment) GlyphIDs() []GlyphIndex {
	if s.EndCode < s.StartCode {
		return nil
	}
	gids := make([]GlyphIndex, 0, int(s.EndCode-s.StartCode)+1)
	for c := int(s.StartCode); c <= int(s.EndCode); c++ {
		gids = append(gids, s.GlyphID(uint16(c)))
	}
	return gids
}

func decodeCMapFormat4(p *Parser, base cmapSubtableBase) *CMapFormat4 {
	f := &CMapFormat4{cmapSubtableBase: base}
	f.Length = p.Uint16()
	f.Language = p.Uint16()
	f.SegCountX2 = p.Uint16()
	f.SearchRange = p.Uint16()
	f.EntrySelector = p.Uint16()
	f.RangeShift = p.Uint16()
	segCount := int(f.SegCountX2) / 2
	endCodeAt := 14
	startCodeAt := endCodeAt + 2*segCount + 2 // skip reservedPad
	idDeltaAt := startCodeAt + 2*segCount
	idRangeOffsetAt := idDeltaAt + 2*segCount
	glyphIDArrayAt := idRangeOffsetAt + 2*segCount
	f.EndCode = NewLazy(func() ([]uint16, error) {
		q := f.at(endCodeAt)
		return q.Uint16s(segCount), q.Err()
	})
	f.StartCode = NewLazy(func() ([]uint16, error) {
		q := f.at(startCodeAt)
		return q.Uint16s(segCount), q.Err()
	})
	f.IDDelta = NewLazy(func() ([]int16, error) {
		q := f.at(idDeltaAt)
		return q.Int16s(segCount), q.Err()
	})
	f.IDRangeOffset = NewLazy(func() ([]uint16, error) {
		q := f.at(idRangeOffsetAt)
		return q.Uint16s(segCount), q.Err()
	})
	f.GlyphIDArray = NewLazy(func() ([]uint16, error) {
		n := max(0, (int(f.Length)-glyphIDArrayAt)/2)
		q := f.at(glyphIDArrayAt)
		return q.Uint16s(n), q.Err()
	})
	f.Segments = NewLazy(func() ([]CMap4Segment, error) {
		ends, err := f.EndCode.Get()
		if err != nil {
			return nil, err
		}
		starts, err := f.StartCode.Get()
		if err != nil {
			return nil, err
		}
		deltas, err := f.IDDelta.Get()
		if err != nil {
			return nil, err
		}
		rangeOffsets, err := f.IDRangeOffset.Get()
		if err != nil {
			return nil, err
		}
		segments := make([]CMap4Segment, segCount)
		for i := range segments {
			segments[i] = CMap4Segment{
				StartCode:     starts[i],
				EndCode:       ends[i],
				IDDelta:       deltas[i],
				IDRangeOffset: rangeOffsets[i],
				rangeOffsetAt: f.start + idRangeOffsetAt + 2*i,
				data:          f.p.data,
			}
		}
		return segments, nil
	})
	return f
}

// GlyphID returns the glyph index for a code point of the BMP. Surrogates and
// non-characters are never mapped.
func (f *CMapFormat4) GlyphID(code rune) GlyphIndex {
	if code < 0 || code > 0xffff || isSurrogate(code) || isNonCharacter(code) {
		return 0
	}
	segments, err := f.Segments.Get()
	if err != nil {
		return 0
	}
	c := uint16(code)
	for _, s := range segments {
		if s.StartCode <= c && c <= s.EndCode {
			return s.GlyphID(c)
		}
	}
	return 0
}

func (f *CMapFormat4) Supports(code rune) bool {
	return f.GlyphID(code) != 0
}

func (f *CMapFormat4) Reverse(gid GlyphIndex) (CharCode, bool) {
	if gid == 0 {
		return CharCode{}, false
	}
	segments, err := f.Segments.Get()
	if err != nil {
		return CharCode{}, false
	}
	for _, s := range segments {
		for c := int(s.StartCode); c <= int(s.EndCode); c++ {
			if isSurrogate(rune(c)) || isNonCharacter(rune(c)) {
				continue
			}
			if s.GlyphID(uint16(c)) == gid {
				return charCode(rune(c)), true
			}
		}
	}
	return CharCode{}, false
}

func (f *CMapFormat4) SupportedCharCodes() []CharRange {
	segments, err := f.Segments.Get()
	if err != nil {
		return nil
	}
	ranges := make([]CharRange, len(segments))
	for i, s := range segments {
		ranges[i] = CharRange{Start: uint32(s.StartCode), End: uint32(s.EndCode)}
	}
	return ranges
}

// --- Format 6 --------------------------------------------------------------

// CMapFormat6 is a trimmed table mapping, a dense array for a single range of
// character codes.
type CMapFormat6 struct {
	cmapSubtableBase
	Length       uint16
	Language     uint16
	FirstCode    uint16
	EntryCount   uint16
	LastCode     uint32
	GlyphIDArray *Lazy[[]uint16]
}

func decodeCMapFormat6(p *Parser, base cmapSubtableBase) *CMapFormat6 {
	f := &CMapFormat6{cmapSubtableBase: base}
	f.Length = p.Uint16()
	f.Language = p.Uint16()
	f.FirstCode = p.Uint16()
	f.EntryCount = p.Uint16()
	f.LastCode = uint32(f.FirstCode) + uint32(f.EntryCount) - 1
	f.GlyphIDArray = NewLazy(func() ([]uint16, error) {
		q := f.at(10)
		return q.Uint16s(int(f.EntryCount)), q.Err()
	})
	return f
}

// Lookup returns the glyph index for a character code.
func (f *CMapFormat6) Lookup(code uint32) GlyphIndex {
	glyphs, err := f.GlyphIDArray.Get()
	if err != nil || code < uint32(f.FirstCode) {
		return 0
	}
	if i := code - uint32(f.FirstCode); i < uint32(len(glyphs)) {
		return GlyphIndex(glyphs[i])
	}
	return 0
}

func (f *CMapFormat6) Supports(code rune) bool {
	return code >= 0 && f.Lookup(uint32(code)) != 0
}

func (f *CMapFormat6) Reverse(gid GlyphIndex) (CharCode, bool) {
	glyphs, err := f.GlyphIDArray.Get()
	if err != nil || gid == 0 {
		return CharCode{}, false
	}
	for i, g := range glyphs {
		if GlyphIndex(g) == gid {
			return charCode(rune(f.FirstCode) + rune(i)), true
		}
	}
	return CharCode{}, false
}

func (f *CMapFormat6) SupportedCharCodes() []CharRange {
	if f.EntryCount == 0 {
		return nil
	}
	return []CharRange{{Start: uint32(f.FirstCode), End: f.LastCode}}
}

// --- Groups ----------------------------------------------------------------

// SequentialMapGroup maps a range of character codes to a range of glyph
// indices starting at StartGlyphID. Used by formats 8 and 12.
type SequentialMapGroup struct {
	StartCharCode uint32
	EndCharCode   uint32
	StartGlyphID  uint32
}

// ConstantMapGroup maps a range of character codes to a single glyph.
// Used by format 13.
type ConstantMapGroup struct {
	StartCharCode uint32
	EndCharCode   uint32
	GlyphID       uint32
}

// readSequentialGroups reads the groups of a format 8 or 12 subtable and
// reports whether they are sorted by character code without overlaps.
func (b *cmapSubtableBase) readSequentialGroups(q *Parser, n uint32) ([]SequentialMapGroup, bool, error) {
	groups := readArray(q, int(n), 12, func(q *Parser) SequentialMapGroup {
		return SequentialMapGroup{
			StartCharCode: q.Uint32(),
			EndCharCode:   q.Uint32(),
			StartGlyphID:  q.Uint32(),
		}
	})
	if err := q.Err(); err != nil {
		return nil, false, err
	}
	ordered := true
	for i, g := range groups {
		if g.EndCharCode < g.StartCharCode || (i > 0 && g.StartCharCode <= groups[i-1].EndCharCode) {
			ordered = false
			break
		}
	}
	if !ordered {
		b.warn(fmt.Sprintf("groups of cmap subtable format %d are not sorted", b.format))
	}
	return groups, ordered, nil
}

// sequentialLookup finds the group containing code. Unordered groups are
// scanned linearly and the first match wins.
func (b *cmapSubtableBase) sequentialLookup(groups []SequentialMapGroup, ordered bool, code uint32) GlyphIndex {
	var group *SequentialMapGroup
	if ordered {
		i := sort.Search(len(groups), func(i int) bool {
			return groups[i].EndCharCode >= code
		})
		if i < len(groups) && groups[i].StartCharCode <= code {
			group = &groups[i]
		}
	} else {
		for i := range groups {
			if groups[i].StartCharCode <= code && code <= groups[i].EndCharCode {
				group = &groups[i]
				break
			}
		}
	}
	if group == nil {
		return 0
	}
	return b.glyphIndex(uint64(group.StartGlyphID) + uint64(code-group.StartCharCode))
}

func groupRanges(groups []SequentialMapGroup) []CharRange {
	ranges := make([]CharRange, len(groups))
	for i, g := range groups {
		ranges[i] = CharRange{Start: g.StartCharCode, End: g.EndCharCode}
	}
	return ranges
}

// --- Format 8 --------------------------------------------------------------

// CMapFormat8 is a mixed 16-bit and 32-bit coverage table.
type CMapFormat8 struct {
	cmapSubtableBase
	Length    uint32
	Language  uint32
	Is32      []uint8 // bit set for each 16-bit value that is the high half of a 32-bit code
	NumGroups uint32
	Groups    *Lazy[[]SequentialMapGroup]
	ordered   bool
}

func decodeCMapFormat8(p *Parser, base cmapSubtableBase) *CMapFormat8 {
	f := &CMapFormat8{cmapSubtableBase: base}
	p.Uint16() // reserved
	f.Length = p.Uint32()
	f.Language = p.Uint32()
	f.Is32 = p.Uint8s(8192)
	f.NumGroups = p.Uint32()
	f.Groups = NewLazy(func() (groups []SequentialMapGroup, err error) {
		groups, f.ordered, err = f.readSequentialGroups(f.at(12+8192+4), f.NumGroups)
		return
	})
	return f
}

// Lookup returns the glyph index for a character code.
func (f *CMapFormat8) Lookup(code uint32) GlyphIndex {
	groups, err := f.Groups.Get()
	if err != nil {
		return 0
	}
	return f.sequentialLookup(groups, f.ordered, code)
}

func (f *CMapFormat8) Supports(code rune) bool {
	return code >= 0 && f.Lookup(uint32(code)) != 0
}

func (f *CMapFormat8) Reverse(gid GlyphIndex) (CharCode, bool) {
	f.unimplemented("reverse")
	return CharCode{}, false
}

func (f *CMapFormat8) SupportedCharCodes() []CharRange {
	groups, err := f.Groups.Get()
	if err != nil {
		return nil
	}
	return groupRanges(groups)
}

// --- Format 10 -------------------------------------------------------------

// CMapFormat10 is a trimmed array for 32-bit character codes.
type CMapFormat10 struct {
	cmapSubtableBase
	Length        uint32
	Language      uint32
	StartCharCode uint32
	NumChars      uint32
	Glyphs        *Lazy[[]uint16]
}

func decodeCMapFormat10(p *Parser, base cmapSubtableBase) *CMapFormat10 {
	f := &CMapFormat10{cmapSubtableBase: base}
	p.Uint16() // reserved
	f.Length = p.Uint32()
	f.Language = p.Uint32()
	f.StartCharCode = p.Uint32()
	f.NumChars = p.Uint32()
	f.Glyphs = NewLazy(func() ([]uint16, error) {
		q := f.at(20)
		return q.Uint16s(int(f.NumChars)), q.Err()
	})
	return f
}

// GlyphID returns the glyph index for a code point.
func (f *CMapFormat10) GlyphID(code rune) GlyphIndex {
	glyphs, err := f.Glyphs.Get()
	if err != nil || code < 0 || uint32(code) < f.StartCharCode {
		return 0
	}
	if i := uint32(code) - f.StartCharCode; i < uint32(len(glyphs)) {
		return GlyphIndex(glyphs[i])
	}
	return 0
}

func (f *CMapFormat10) Supports(code rune) bool {
	return f.GlyphID(code) != 0
}

func (f *CMapFormat10) Reverse(gid GlyphIndex) (CharCode, bool) {
	glyphs, err := f.Glyphs.Get()
	if err != nil || gid == 0 {
		return CharCode{}, false
	}
	for i, g := range glyphs {
		if GlyphIndex(g) == gid {
			return charCode(rune(f.StartCharCode + uint32(i))), true
		}
	}
	return CharCode{}, false
}

func (f *CMapFormat10) SupportedCharCodes() []CharRange {
	if f.NumChars == 0 {
		return nil
	}
	return []CharRange{{Start: f.StartCharCode, End: f.StartCharCode + f.NumChars - 1}}
}

// --- Format 12 -------------------------------------------------------------

// CMapFormat12 is a segmented coverage table, the standard format for fonts
// covering code points beyond the BMP.
type CMapFormat12 struct {
	cmapSubtableBase
	Length    uint32
	Language  uint32
	NumGroups uint32
	Groups    *Lazy[[]SequentialMapGroup]
	ordered   bool
}

func decodeCMapFormat12(p *Parser, base cmapSubtableBase) *CMapFormat12 {
	f := &CMapFormat12{cmapSubtableBase: base}
	p.Uint16() // reserved
	f.Length = p.Uint32()
	f.Language = p.Uint32()
	f.NumGroups = p.Uint32()
	f.Groups = NewLazy(func() (groups []SequentialMapGroup, err error) {
		groups, f.ordered, err = f.readSequentialGroups(f.at(16), f.NumGroups)
		return
	})
	return f
}

// GlyphID returns the glyph index for a code point. Surrogates and
// non-characters are never mapped.
func (f *CMapFormat12) GlyphID(code rune) GlyphIndex {
	if code < 0 || isSurrogate(code) || isNonCharacter(code) {
		return 0
	}
	groups, err := f.Groups.Get()
	if err != nil {
		return 0
	}
	return f.sequentialLookup(groups, f.ordered, uint32(code))
}

func (f *CMapFormat12) Supports(code rune) bool {
	return f.GlyphID(code) != 0
}

// Reverse walks the groups and returns the character code of the first group
// whose glyph range contains gid.
func (f *CMapFormat12) Reverse(gid GlyphIndex) (CharCode, bool) {
	groups, err := f.Groups.Get()
	if err != nil {
		return CharCode{}, false
	}
	g := uint32(gid)
	for _, group := range groups {
		if group.StartGlyphID > g || group.EndCharCode < group.StartCharCode {
			continue
		}
		if g-group.StartGlyphID <= group.EndCharCode-group.StartCharCode {
			return charCode(rune(group.StartCharCode + g - group.StartGlyphID)), true
		}
	}
	return CharCode{}, false
}

func (f *CMapFormat12) SupportedCharCodes() []CharRange {
	groups, err := f.Groups.Get()
	if err != nil {
		return nil
	}
	return groupRanges(groups)
}

// --- Format 13 -------------------------------------------------------------

// CMapFormat13 is a many-to-one range mapping, as used by last-resort fonts.
type CMapFormat13 struct {
	cmapSubtableBase
	Length    uint32
	Language  uint32
	NumGroups uint32
	Groups    *Lazy[[]ConstantMapGroup]
}

func decodeCMapFormat13(p *Parser, base cmapSubtableBase) *CMapFormat13 {
	f := &CMapFormat13{cmapSubtableBase: base}
	p.Uint16() // reserved
	f.Length = p.Uint32()
	f.Language = p.Uint32()
	f.NumGroups = p.Uint32()
	f.Groups = NewLazy(func() ([]ConstantMapGroup, error) {
		q := f.at(16)
		groups := readArray(q, int(f.NumGroups), 12, func(q *Parser) ConstantMapGroup {
			return ConstantMapGroup{
				StartCharCode: q.Uint32(),
				EndCharCode:   q.Uint32(),
				GlyphID:       q.Uint32(),
			}
		})
		return groups, q.Err()
	})
	return f
}

// GlyphID returns the glyph index for a code point.
func (f *CMapFormat13) GlyphID(code rune) GlyphIndex {
	groups, err := f.Groups.Get()
	if err != nil || code < 0 {
		return 0
	}
	c := uint32(code)
	for _, g := range groups {
		if g.StartCharCode <= c && c <= g.EndCharCode {
			return f.glyphIndex(uint64(g.GlyphID))
		}
	}
	return 0
}

func (f *CMapFormat13) Supports(code rune) bool {
	return f.GlyphID(code) != 0
}

func (f *CMapFormat13) Reverse(gid GlyphIndex) (CharCode, bool) {
	f.unimplemented("reverse")
	return CharCode{}, false
}

func (f *CMapFormat13) SupportedCharCodes() []CharRange {
	groups, err := f.Groups.Get()
	if err != nil {
		return nil
	}
	ranges := make([]CharRange, len(groups))
	for i, g := range groups {
		ranges[i] = CharRange{Start: g.StartCharCode, End: g.EndCharCode}
	}
	return ranges
}

// --- Format 14 -------------------------------------------------------------

// CMapFormat14 maps Unicode variation sequences, i.e. pairs of a base
// character and a variation selector.
type CMapFormat14 struct {
	cmapSubtableBase
	Length                uint32
	NumVarSelectorRecords uint32
	VarSelectors          *Lazy[[]VariationSelector]
}

// VariationSelector is a variation selector record of a format 14 subtable.
// Offsets are relative to the start of the subtable; 0 means absent.
type VariationSelector struct {
	VarSelector         rune
	DefaultUVSOffset    uint32
	NonDefaultUVSOffset uint32
}

// UnicodeRange is a range of base characters for which the default glyph is used
// in combination with a variation selector.
type UnicodeRange struct {
	StartUnicodeValue rune
	AdditionalCount   uint8
}

// UVSMapping maps a base character, in combination with a variation selector,
// to a glyph.
type UVSMapping struct {
	UnicodeValue rune
	GlyphID      GlyphIndex
}

func decodeCMapFormat14(p *Parser, base cmapSubtableBase) *CMapFormat14 {
	f := &CMapFormat14{cmapSubtableBase: base}
	f.Length = p.Uint32()
	f.NumVarSelectorRecords = p.Uint32()
	f.VarSelectors = NewLazy(func() ([]VariationSelector, error) {
		q := f.at(10)
		records := readArray(q, int(f.NumVarSelectorRecords), 11, func(q *Parser) VariationSelector {
			return VariationSelector{
				VarSelector:         rune(q.Uint24()),
				DefaultUVSOffset:    q.Offset32(),
				NonDefaultUVSOffset: q.Offset32(),
			}
		})
		return records, q.Err()
	})
	return f
}

func (f *CMapFormat14) Supports(code rune) bool {
	f.unimplemented("supports")
	return false
}

func (f *CMapFormat14) Reverse(gid GlyphIndex) (CharCode, bool) {
	f.unimplemented("reverse")
	return CharCode{}, false
}

func (f *CMapFormat14) SupportedCharCodes() []CharRange {
	f.unimplemented("getSupportedCharCodes")
	return nil
}

// SupportsVariation returns the record for a variation selector, if present.
func (f *CMapFormat14) SupportsVariation(selector rune) (VariationSelector, bool) {
	records, err := f.VarSelectors.Get()
	if err != nil {
		return VariationSelector{}, false
	}
	for _, rec := range records {
		if rec.VarSelector == selector {
			return rec, true
		}
	}
	return VariationSelector{}, false
}

// SupportedVariations returns all variation selectors of the subtable.
func (f *CMapFormat14) SupportedVariations() []rune {
	records, err := f.VarSelectors.Get()
	if err != nil {
		return nil
	}
	selectors := make([]rune, len(records))
	for i, rec := range records {
		selectors[i] = rec.VarSelector
	}
	return selectors
}

// DefaultUVS returns the ranges of base characters which, combined with the
// selector, are displayed with their default glyph.
func (f *CMapFormat14) DefaultUVS(selector rune) ([]UnicodeRange, error) {
	rec, ok := f.SupportsVariation(selector)
	if !ok || rec.DefaultUVSOffset == 0 {
		return nil, nil
	}
	q := f.at(int(rec.DefaultUVSOffset))
	n := q.Uint32()
	ranges := readArray(q, int(n), 4, func(q *Parser) UnicodeRange {
		return UnicodeRange{StartUnicodeValue: rune(q.Uint24()), AdditionalCount: q.Uint8()}
	})
	return ranges, q.Err()
}

// NonDefaultUVS returns the base characters which, combined with the selector,
// are displayed with a glyph of their own.
func (f *CMapFormat14) NonDefaultUVS(selector rune) ([]UVSMapping, error) {
	rec, ok := f.SupportsVariation(selector)
	if !ok || rec.NonDefaultUVSOffset == 0 {
		return nil, nil
	}
	q := f.at(int(rec.NonDefaultUVSOffset))
	n := q.Uint32()
	mappings := readArray(q, int(n), 5, func(q *Parser) UVSMapping {
		return UVSMapping{UnicodeValue: rune(q.Uint24()), GlyphID: GlyphIndex(q.Uint16())}
	})
	return mappings, q.Err()
}

// VariationGlyph resolves a variation sequence. If the sequence maps to a
// glyph of its own, it is returned. If the base character's default glyph is to
// be used, useDefault is true. If the subtable does not know the sequence,
// ok is false.
func (f *CMapFormat14) VariationGlyph(base, selector rune) (gid GlyphIndex, useDefault bool, ok bool) {
	mappings, err := f.NonDefaultUVS(selector)
	if err == nil {
		for _, m := range mappings {
			if m.UnicodeValue == base {
				return m.GlyphID, false, true
			}
		}
	}
	ranges, err := f.DefaultUVS(selector)
	if err == nil {
		for _, r := range ranges {
			if r.StartUnicodeValue <= base && base <= r.StartUnicodeValue+rune(r.AdditionalCount) {
				return 0, true, true
			}
		}
	}
	return 0, false, false
}

// --- Unknown formats -------------------------------------------------------

// CMapFormatUnknown stands in for subtables of formats not defined by
// OpenType. It does not map any characters.
type CMapFormatUnknown struct {
	cmapSubtableBase
}

func (f *CMapFormatUnknown) Supports(code rune) bool                  { return false }
func (f *CMapFormatUnknown) Reverse(gid GlyphIndex) (CharCode, bool) { return CharCode{}, false }
func (f *CMapFormatUnknown) SupportedCharCodes() []CharRange          { return nil }
