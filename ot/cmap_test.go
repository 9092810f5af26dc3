package ot

import (
	"encoding/binary"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/webfont/internal/fontbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeTestCMap(t *testing.T, data []byte) (*CMapTable, *diagnostics) {
	t.Helper()
	diag := &diagnostics{}
	ctx := &tableContext{
		tables: &TableSet{entries: make(map[string]*Lazy[Table])},
		diag:   diag,
		opts:   &Options{},
	}
	table, err := createTable(TableDict{Tag: T("cmap"), Length: uint32(len(data))}, data, ctx)
	require.NoError(t, err)
	cmap, ok := table.(*CMapTable)
	require.True(t, ok, "expected table to be a CMapTable, is %T", table)
	return cmap, diag
}

func unicodeBMP(data []byte) fontbuild.Subtable {
	return fontbuild.Subtable{PlatformID: 3, EncodingID: 1, Data: data}
}

func unicodeFull(data []byte) fontbuild.Subtable {
	return fontbuild.Subtable{PlatformID: 3, EncodingID: 10, Data: data}
}

func TestCMapFormat4(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cmap, _ := decodeTestCMap(t, fontbuild.CMap(unicodeBMP(fontbuild.CMapFormat4(
		fontbuild.Segment{Start: 0x41, End: 0x5a, Delta: 0},
		fontbuild.Segment{Start: 0x61, End: 0x7a, Delta: 0},
	))))
	assert.Equal(t, GlyphIndex(0x42), cmap.GlyphID(0x42), "direct mapping of 'B'")
	assert.Equal(t, GlyphIndex(0), cmap.GlyphID(0x24), "'$' is outside both segments")
	assert.True(t, cmap.Supports('z'))
	assert.False(t, cmap.Supports('$'))
	code, ok := cmap.Reverse(0x62)
	require.True(t, ok)
	assert.Equal(t, 'b', code.Code)
	assert.Equal(t, "b", code.Unicode)
	ranges, ok := cmap.SupportedCharCodes(3, 1)
	require.True(t, ok)
	assert.Equal(t, []CharRange{{0x41, 0x5a}, {0x61, 0x7a}, {0xffff, 0xffff}}, ranges)
	_, ok = cmap.SupportedCharCodes(1, 0)
	assert.False(t, ok)
}

func TestCMapFormat4Delta(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cmap, _ := decodeTestCMap(t, fontbuild.CMap(unicodeBMP(fontbuild.CMapFormat4(
		fontbuild.Segment{Start: 'A', End: 'Z', Delta: 1 - 'A'},
		fontbuild.Segment{Start: 0xf000, End: 0xf001, Delta: 0x1000}, // wraps around 0xffff
	))))
	assert.Equal(t, GlyphIndex(1), cmap.GlyphID('A'))
	assert.Equal(t, GlyphIndex(26), cmap.GlyphID('Z'))
	assert.Equal(t, GlyphIndex(1), cmap.GlyphID(0xf001))
	code, ok := cmap.Reverse(26)
	require.True(t, ok)
	assert.Equal(t, 'Z', code.Code)
}

func TestCMapFormat4GlyphArray(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cmap, _ := decodeTestCMap(t, fontbuild.CMap(unicodeBMP(fontbuild.CMapFormat4(
		fontbuild.Segment{Start: '0', End: '2', Glyphs: []uint16{10, 0, 12}},
		fontbuild.Segment{Start: 'x', End: 'y', Delta: 5, Glyphs: []uint16{20, 21}},
	))))
	assert.Equal(t, GlyphIndex(10), cmap.GlyphID('0'))
	assert.Equal(t, GlyphIndex(0), cmap.GlyphID('1'), "glyph array entry 0 is not mapped")
	assert.Equal(t, GlyphIndex(12), cmap.GlyphID('2'))
	assert.Equal(t, GlyphIndex(25), cmap.GlyphID('x'), "idDelta applies to glyph array entries")
	assert.Equal(t, GlyphIndex(26), cmap.GlyphID('y'))
	sub, err := cmap.SubTable(0)
	require.NoError(t, err)
	f4, ok := sub.(*CMapFormat4)
	require.True(t, ok)
	segments := f4.Segments.Value()
	require.Len(t, segments, 3)
	assert.Equal(t, []GlyphIndex{10, 0, 12}, segments[0].GlyphIDs())
}

func TestCMapSurrogatesAreNotMapped(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cmap, _ := decodeTestCMap(t, fontbuild.CMap(
		unicodeBMP(fontbuild.CMapFormat4(fontbuild.Segment{Start: 0xd000, End: 0xdfff, Delta: 1})),
		unicodeFull(fontbuild.CMapFormat12(fontbuild.Group{StartChar: 0xd700, EndChar: 0xe0ff, Glyph: 1})),
	))
	assert.NotEqual(t, GlyphIndex(0), cmap.GlyphID(0xd7ff))
	assert.Equal(t, GlyphIndex(0), cmap.GlyphID(0xd800))
	assert.Equal(t, GlyphIndex(0), cmap.GlyphID(0xdfff))
	assert.NotEqual(t, GlyphIndex(0), cmap.GlyphID(0xe000))
	assert.False(t, cmap.Supports(0xdc00))
}

func TestCMapFormat12(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cmap, _ := decodeTestCMap(t, fontbuild.CMap(unicodeFull(fontbuild.CMapFormat12(
		fontbuild.Group{StartChar: 0x1f600, EndChar: 0x1f64f, Glyph: 100},
		fontbuild.Group{StartChar: 'A', EndChar: 'Z', Glyph: 1},
	))))
	assert.Equal(t, GlyphIndex(101), cmap.GlyphID(0x1f601))
	assert.Equal(t, GlyphIndex(3), cmap.GlyphID('C'))
	assert.Equal(t, GlyphIndex(0), cmap.GlyphID(0x1f650))
	code, ok := cmap.Reverse(101)
	require.True(t, ok)
	assert.Equal(t, rune(0x1f601), code.Code)
	code, ok = cmap.Reverse(26)
	require.True(t, ok)
	assert.Equal(t, 'Z', code.Code)
	_, ok = cmap.Reverse(50)
	assert.False(t, ok)
	ranges, ok := cmap.SupportedCharCodes(3, 10)
	require.True(t, ok)
	assert.Equal(t, []CharRange{{'A', 'Z'}, {0x1f600, 0x1f64f}}, ranges)
}

func TestCMapFirstMatchWins(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	bmp := unicodeBMP(fontbuild.CMapFormat4(fontbuild.Segment{Start: 'A', End: 'Z', Delta: 1 - 'A'}))
	full := unicodeFull(fontbuild.CMapFormat12(
		fontbuild.Group{StartChar: 'A', EndChar: 'Z', Glyph: 100},
		fontbuild.Group{StartChar: 'a', EndChar: 'z', Glyph: 200},
	))
	cmap, _ := decodeTestCMap(t, fontbuild.CMap(bmp, full))
	assert.Equal(t, GlyphIndex(1), cmap.GlyphID('A'))
	assert.Equal(t, GlyphIndex(200), cmap.GlyphID('a'), "falls through to the second subtable")
	assert.Equal(t, []Encoding{{3, 1}, {3, 10}}, cmap.SupportedEncodings())
	//
	cmap, _ = decodeTestCMap(t, fontbuild.CMap(full, bmp))
	assert.Equal(t, GlyphIndex(100), cmap.GlyphID('A'))
}

func TestCMapBrokenSubtableIsSkipped(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	data := fontbuild.CMap(
		unicodeBMP(fontbuild.CMapFormat4(fontbuild.Segment{Start: 'A', End: 'Z', Delta: 1 - 'A'})),
		unicodeFull(fontbuild.CMapFormat12(fontbuild.Group{StartChar: 'A', EndChar: 'Z', Glyph: 100})),
	)
	binary.BigEndian.PutUint32(data[8:], 0xfff0) // first subtable offset beyond end of data
	cmap, diag := decodeTestCMap(t, data)
	assert.Equal(t, GlyphIndex(100), cmap.GlyphID('A'))
	_, err := cmap.SubTable(0)
	assert.ErrorIs(t, err, ErrBufferBounds)
	errs := diag.allErrors()
	require.Len(t, errs, 1, "subtable error is recorded once")
	assert.Equal(t, "EncodingRecord", errs[0].Section)
}

func TestCMapFormat0(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	var glyphs [256]uint8
	glyphs['A'] = 5
	cmap, diag := decodeTestCMap(t, fontbuild.CMap(fontbuild.Subtable{PlatformID: 1, EncodingID: 0,
		Data: fontbuild.CMapFormat0(glyphs)}))
	sub, err := cmap.SubTable(0)
	require.NoError(t, err)
	f0, ok := sub.(*CMapFormat0)
	require.True(t, ok)
	assert.Equal(t, GlyphIndex(5), f0.Lookup('A'))
	assert.True(t, cmap.Supports('A'))
	assert.False(t, cmap.Supports('B'))
	assert.Equal(t, GlyphIndex(0), cmap.GlyphID('A'), "format 0 does not map Unicode")
	_, ok = cmap.Reverse(5)
	assert.False(t, ok)
	require.Len(t, diag.allWarnings(), 1)
	assert.Contains(t, diag.allWarnings()[0].Issue, "reverse not implemented")
}

func TestCMapFormat6(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cmap, _ := decodeTestCMap(t, fontbuild.CMap(fontbuild.Subtable{PlatformID: 1, EncodingID: 0,
		Data: fontbuild.CMapFormat6(0x20, 3, 4, 5)}))
	sub, err := cmap.SubTable(0)
	require.NoError(t, err)
	f6 := sub.(*CMapFormat6)
	assert.Equal(t, GlyphIndex(4), f6.Lookup(0x21))
	assert.Equal(t, GlyphIndex(0), f6.Lookup(0x23))
	code, ok := cmap.Reverse(5)
	require.True(t, ok)
	assert.Equal(t, rune(0x22), code.Code)
	assert.Equal(t, []CharRange{{0x20, 0x22}}, f6.SupportedCharCodes())
}

func TestCMapFormat13(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cmap, _ := decodeTestCMap(t, fontbuild.CMap(unicodeFull(fontbuild.CMapFormat13(
		fontbuild.Group{StartChar: 0x4e00, EndChar: 0x9fff, Glyph: 7},
	))))
	assert.Equal(t, GlyphIndex(7), cmap.GlyphID(0x4e00))
	assert.Equal(t, GlyphIndex(7), cmap.GlyphID(0x6c34))
	assert.Equal(t, GlyphIndex(0), cmap.GlyphID('A'))
}

func TestCMapFormat14(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	uvs := fontbuild.CMapFormat14(fontbuild.VarSelector{
		Selector:   0xfe0f,
		Defaults:   [][2]uint32{{0x2764, 0}},
		NonDefault: map[uint32]uint16{0x263a: 42},
	})
	cmap, _ := decodeTestCMap(t, fontbuild.CMap(
		unicodeBMP(fontbuild.CMapFormat4(fontbuild.Segment{Start: 0x2600, End: 0x27ff, Delta: 1})),
		fontbuild.Subtable{PlatformID: 0, EncodingID: 5, Data: uvs},
	))
	assert.True(t, cmap.SupportsVariation(0xfe0f))
	assert.False(t, cmap.SupportsVariation(0xfe0e))
	sub, err := cmap.SubTable(1)
	require.NoError(t, err)
	f14, ok := sub.(*CMapFormat14)
	require.True(t, ok)
	assert.Equal(t, []rune{0xfe0f}, f14.SupportedVariations())
	gid, useDefault, ok := f14.VariationGlyph(0x263a, 0xfe0f)
	assert.True(t, ok)
	assert.False(t, useDefault)
	assert.Equal(t, GlyphIndex(42), gid)
	_, useDefault, ok = f14.VariationGlyph(0x2764, 0xfe0f)
	assert.True(t, ok)
	assert.True(t, useDefault)
	_, _, ok = f14.VariationGlyph(0x2765, 0xfe0f)
	assert.False(t, ok)
}

func TestCMapUnknownFormat(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cmap, diag := decodeTestCMap(t, fontbuild.CMap(fontbuild.Subtable{PlatformID: 3, EncodingID: 1,
		Data: []byte{0x00, 0x63, 0x00, 0x00}}))
	sub, err := cmap.SubTable(0)
	require.NoError(t, err)
	assert.Equal(t, uint16(99), sub.Format())
	assert.False(t, cmap.Supports('A'))
	assert.Len(t, diag.allWarnings(), 1)
}

func u32s(values ...uint32) []byte {
	var b []byte
	for _, v := range values {
		b = binary.BigEndian.AppendUint32(b, v)
	}
	return b
}

func TestCMapFormat2(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	keys := make([]uint16, 256)
	keys[0x81] = 8 // high byte 0x81 uses sub-header 1
	data := concat(
		u16s(2, 542, 0),
		u16s(keys...),
		u16s(0x20, 2, 0, 10), // sub-header 0: single bytes 0x20–0x21
		u16s(0x40, 2, 5, 6),  // sub-header 1: low bytes 0x40–0x41, delta 5
		u16s(10, 11, 20, 21), // glyph index array
	)
	cmap, diag := decodeTestCMap(t, fontbuild.CMap(fontbuild.Subtable{PlatformID: 3, EncodingID: 3, Data: data}))
	sub, err := cmap.SubTable(0)
	require.NoError(t, err)
	f2, ok := sub.(*CMapFormat2)
	require.True(t, ok, "expected format 2 subtable, is %T", sub)
	assert.Equal(t, GlyphIndex(10), f2.Lookup(0x20))
	assert.Equal(t, GlyphIndex(11), f2.Lookup(0x21))
	assert.Equal(t, GlyphIndex(26), f2.Lookup(0x8141))
	assert.Equal(t, GlyphIndex(0), f2.Lookup(0x81), "0x81 is the first byte of a two-byte code")
	assert.Equal(t, GlyphIndex(0), f2.Lookup(0x8240))
	assert.Equal(t, GlyphIndex(0), f2.Lookup(0x22))
	assert.True(t, cmap.Supports(0x8140))
	assert.Equal(t, []CharRange{{0x20, 0x21}, {0x8140, 0x8141}}, f2.SupportedCharCodes())
	_, ok = cmap.Reverse(10)
	assert.False(t, ok)
	require.Len(t, diag.allWarnings(), 1)
	assert.Contains(t, diag.allWarnings()[0].Issue, "reverse not implemented")
}

func TestCMapFormat8(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	data := concat(
		u16s(8, 0),
		u32s(8220, 0),
		make([]byte, 8192), // is32
		u32s(1),
		u32s(0x10000, 0x10002, 7),
	)
	cmap, diag := decodeTestCMap(t, fontbuild.CMap(fontbuild.Subtable{PlatformID: 3, EncodingID: 10, Data: data}))
	sub, err := cmap.SubTable(0)
	require.NoError(t, err)
	f8, ok := sub.(*CMapFormat8)
	require.True(t, ok, "expected format 8 subtable, is %T", sub)
	assert.Equal(t, GlyphIndex(8), f8.Lookup(0x10001))
	assert.Equal(t, GlyphIndex(0), f8.Lookup(0x41))
	assert.True(t, cmap.Supports(0x10002))
	assert.False(t, cmap.Supports(0x10003))
	assert.Equal(t, []CharRange{{0x10000, 0x10002}}, f8.SupportedCharCodes())
	_, ok = f8.Reverse(8)
	assert.False(t, ok)
	assert.Len(t, diag.allWarnings(), 1)
}

func TestCMapFormat10(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	data := concat(
		u16s(10, 0),
		u32s(26, 0, 0x1F600, 3),
		u16s(4, 0, 6),
	)
	cmap, diag := decodeTestCMap(t, fontbuild.CMap(unicodeFull(data)))
	assert.Equal(t, GlyphIndex(4), cmap.GlyphID(0x1F600))
	assert.Equal(t, GlyphIndex(0), cmap.GlyphID(0x1F601))
	assert.Equal(t, GlyphIndex(6), cmap.GlyphID(0x1F602))
	assert.Equal(t, GlyphIndex(0), cmap.GlyphID(0x1F603))
	assert.Equal(t, GlyphIndex(0), cmap.GlyphID(0x41))
	code, ok := cmap.Reverse(6)
	require.True(t, ok)
	assert.Equal(t, rune(0x1F602), code.Code)
	assert.Empty(t, diag.allWarnings())
}

func TestCMapUnsortedGroups(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	data := concat(
		u16s(12, 0),
		u32s(40, 0, 2),
		u32s(0x1f600, 0x1f64f, 100),
		u32s('A', 'Z', 1),
	)
	cmap, diag := decodeTestCMap(t, fontbuild.CMap(unicodeFull(data)))
	assert.Equal(t, GlyphIndex(3), cmap.GlyphID('C'))
	assert.True(t, cmap.Supports('C'))
	assert.Equal(t, GlyphIndex(101), cmap.GlyphID(0x1f601))
	assert.Equal(t, GlyphIndex(0), cmap.GlyphID(0x1f650))
	require.Len(t, diag.allWarnings(), 1)
	assert.Contains(t, diag.allWarnings()[0].Issue, "not sorted")
	//
	data = concat(
		u16s(8, 0),
		u32s(8232, 0),
		make([]byte, 8192),
		u32s(2),
		u32s(0x20000, 0x20001, 9),
		u32s(0x10000, 0x10002, 7),
	)
	cmap, _ = decodeTestCMap(t, fontbuild.CMap(fontbuild.Subtable{PlatformID: 3, EncodingID: 10, Data: data}))
	sub, err := cmap.SubTable(0)
	require.NoError(t, err)
	f8 := sub.(*CMapFormat8)
	assert.Equal(t, GlyphIndex(8), f8.Lookup(0x10001))
	assert.Equal(t, GlyphIndex(10), f8.Lookup(0x20001))
}

func TestCMapGlyphIDOutOfRange(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cmap, diag := decodeTestCMap(t, fontbuild.CMap(unicodeFull(fontbuild.CMapFormat12(
		fontbuild.Group{StartChar: 'A', EndChar: 'B', Glyph: 0xffff},
	))))
	assert.Equal(t, GlyphIndex(0xffff), cmap.GlyphID('A'))
	assert.Equal(t, GlyphIndex(0), cmap.GlyphID('B'))
	assert.Len(t, diag.allWarnings(), 1)
	//
	cmap, diag = decodeTestCMap(t, fontbuild.CMap(unicodeFull(fontbuild.CMapFormat13(
		fontbuild.Group{StartChar: 'A', EndChar: 'Z', Glyph: 0x10001},
	))))
	assert.Equal(t, GlyphIndex(0), cmap.GlyphID('K'))
	assert.False(t, cmap.Supports('K'))
	assert.NotEmpty(t, diag.allWarnings())
}

func TestCMapFormat4ReverseSkipsSurrogates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cmap, _ := decodeTestCMap(t, fontbuild.CMap(unicodeBMP(fontbuild.CMapFormat4(
		fontbuild.Segment{Start: 0xd7ff, End: 0xd800, Glyphs: []uint16{1, 2}},
	))))
	assert.Equal(t, GlyphIndex(0), cmap.GlyphID(0xd800))
	code, ok := cmap.Reverse(1)
	require.True(t, ok)
	assert.Equal(t, rune(0xd7ff), code.Code)
	_, ok = cmap.Reverse(2)
	assert.False(t, ok)
}
