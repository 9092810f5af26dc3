package ot

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/webfont/internal/fontbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeTestTableDiag(t *testing.T, tag string, data []byte) (Table, *diagnostics) {
	t.Helper()
	diag := &diagnostics{}
	ctx := &tableContext{
		tables: &TableSet{entries: make(map[string]*Lazy[Table])},
		diag:   diag,
		opts:   &Options{},
	}
	table, err := createTable(TableDict{Tag: T(tag), Length: uint32(len(data))}, data, ctx)
	require.NoError(t, err)
	return table, diag
}

func postHeader(version uint32) []byte {
	return concat(u32s(version, 0), u16s(0xff9c, 50), u32s(0, 0, 0, 0, 0))
}

func TestMaxPLegacyVersion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	table, diag := decodeTestTableDiag(t, "maxp", fontbuild.MaxP(12))
	maxp, ok := table.(*MaxPTable)
	require.True(t, ok, "expected table to be a MaxPTable, is %T", table)
	assert.Equal(t, 0.5, maxp.Version)
	assert.Equal(t, 12, maxp.NumGlyphs)
	assert.Empty(t, diag.allWarnings())
}

func TestPostVersion2(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	data := concat(postHeader(0x00020000), u16s(3, 0, 36, 258), []byte{3, 'f', 'o', 'o'})
	table, _ := decodeTestTableDiag(t, "post", data)
	post, ok := table.(*PostTable)
	require.True(t, ok, "expected table to be a PostTable, is %T", table)
	assert.Equal(t, 2.0, post.Version)
	assert.Equal(t, int16(-100), post.UnderlinePosition)
	for gid, want := range []string{".notdef", "A", "foo"} {
		name, err := post.GlyphName(GlyphIndex(gid))
		require.NoError(t, err)
		assert.Equal(t, want, name)
	}
	_, err := post.GlyphName(3)
	assert.Error(t, err)
}

func TestPostVersion25(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	data := concat(postHeader(0x00025000), u16s(2), []byte{0, 35})
	table, _ := decodeTestTableDiag(t, "post", data)
	post := table.(*PostTable)
	assert.Equal(t, 2.5, post.Version)
	name, err := post.GlyphName(1)
	require.NoError(t, err)
	assert.Equal(t, "A", name)
}

func TestPostVersion3HasNoNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	table, diag := decodeTestTableDiag(t, "post", postHeader(0x00030000))
	post := table.(*PostTable)
	name, err := post.GlyphName(5)
	assert.NoError(t, err)
	assert.Empty(t, name)
	assert.Len(t, diag.allWarnings(), 1)
}

func TestNameTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	data := concat(
		u16s(0, 2, 30),
		u16s(3, 1, 0x409, 1, 4, 0),
		u16s(1, 0, 0, 2, 7, 4),
		[]byte{0, 'G', 0, 'o'},
		[]byte("Regular"),
	)
	table, _ := decodeTestTableDiag(t, "name", data)
	names, ok := table.(*NameTable)
	require.True(t, ok, "expected table to be a NameTable, is %T", table)
	family, ok := names.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "Go", family)
	subfamily, ok := names.Lookup(2, 1)
	assert.True(t, ok)
	assert.Equal(t, "Regular", subfamily)
	_, ok = names.Get(5)
	assert.False(t, ok)
}

func TestHMtxTrailingBearings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cmap := fontbuild.CMap(unicodeBMP(fontbuild.CMapFormat4()))
	metrics := []fontbuild.Metric{{Advance: 600, SideBearing: 10}, {Advance: 400, SideBearing: 20}}
	tables := []fontbuild.Table{
		{Tag: "cmap", Data: cmap},
		{Tag: "head", Data: fontbuild.Head(1000, 0)},
		{Tag: "hhea", Data: fontbuild.HHea(800, -200, 2)},
		{Tag: "hmtx", Data: fontbuild.HMtx(metrics, 30, 40)},
		{Tag: "maxp", Data: fontbuild.MaxP(4)},
	}
	c, err := Open(fontbuild.SFNT(fontbuild.TrueType, tables...), Options{})
	require.NoError(t, err)
	hmtx, err := c.Tables().HMtx()
	require.NoError(t, err)
	for gid, want := range []LongMetric{{600, 10}, {400, 20}, {400, 30}, {400, 40}} {
		advance, lsb, ok := hmtx.Metrics(GlyphIndex(gid))
		require.True(t, ok, "glyph %d", gid)
		assert.Equal(t, want, LongMetric{Advance: advance, SideBearing: lsb}, "glyph %d", gid)
	}
	_, _, ok := hmtx.Metrics(4)
	assert.False(t, ok)
}

func TestWOFF2TableOffsets(t *testing.T) {
	entries := []WOFF2TableEntry{
		{Tag: T("cmap"), OrigLength: 10},
		{Tag: T("head"), OrigLength: 20},
		{Tag: T("hhea"), OrigLength: 30},
	}
	accumulateWOFF2Offsets(entries)
	for i, want := range []uint32{0, 10, 30} {
		assert.Equal(t, want, entries[i].Offset, "entry %d", i)
	}
	entries = []WOFF2TableEntry{
		{Tag: T("glyf"), OrigLength: 100, TransformLength: Some[uint32](60)},
		{Tag: T("loca"), OrigLength: 20, TransformLength: Some[uint32](0)},
		{Tag: T("maxp"), OrigLength: 6},
	}
	accumulateWOFF2Offsets(entries)
	assert.Equal(t, uint32(60), entries[1].Offset)
	assert.Equal(t, uint32(60), entries[2].Offset)
}

func TestWOFF2LengthOverflow(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	entry, err := readWOFF2TableEntry(parserFor([]byte{0x00, 0x8f, 0xff, 0xff, 0xff, 0x7f}))
	require.NoError(t, err)
	assert.Equal(t, T("cmap"), entry.Tag)
	assert.Equal(t, uint32(0xffffffff), entry.OrigLength)
	_, err = readWOFF2TableEntry(parserFor([]byte{0x00, 0x90, 0x80, 0x80, 0x80, 0x00}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 32 bits")
}
