package ot

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/webfont/internal/decompress"
	"github.com/npillmayer/webfont/internal/fontbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDecoders = Decoders{
	GzipDecode:   decompress.Zlib,
	BrotliDecode: decompress.Brotli,
}

// alphabetTables returns the tables of a font mapping A–Z to glyphs 1–26 and
// a–z to glyphs 27–52.
func alphabetTables() []fontbuild.Table {
	cmap := fontbuild.CMap(fontbuild.Subtable{PlatformID: 3, EncodingID: 1, Data: fontbuild.CMapFormat4(
		fontbuild.Segment{Start: 'A', End: 'Z', Delta: 1 - 'A'},
		fontbuild.Segment{Start: 'a', End: 'z', Delta: 27 - 'a'},
	)})
	return fontbuild.Minimal(53, cmap)
}

func TestOpenSFNT(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	font := fontbuild.SFNT(fontbuild.TrueType, alphabetTables()...)
	c, err := Open(font, Options{})
	require.NoError(t, err)
	assert.Equal(t, FormatSFNT, c.Format())
	assert.Equal(t, "TrueType", Flavor(c.Flavor()))
	assert.Equal(t, []string{"cmap", "head", "hhea", "hmtx", "maxp"}, c.Tables().Tags())
	assert.Len(t, c.Directory(), 5)
	assert.False(t, c.Tables().Decoded("cmap"))
	cmap, err := c.Tables().CMap()
	require.NoError(t, err)
	assert.True(t, c.Tables().Decoded("cmap"))
	assert.Equal(t, GlyphIndex(2), cmap.GlyphID('B'))
	assert.Equal(t, GlyphIndex(28), cmap.GlyphID('b'))
	head, err := c.Tables().Head()
	require.NoError(t, err)
	assert.Equal(t, uint16(1000), head.UnitsPerEm)
	assert.Empty(t, c.Warnings())
}

func TestOpenUnknownFormat(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	var observed error
	_, err := Open([]byte("%PDF-1.7"), Options{OnError: func(err error) { observed = err }})
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.ErrorIs(t, observed, ErrUnknownFormat)
}

func TestTruncatedDirectory(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	font := fontbuild.SFNT(fontbuild.TrueType, alphabetTables()...)
	_, err := Open(font[:40], Options{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.ErrorIs(t, err, ErrBufferBounds)
}

func TestMissingTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	c, err := Open(fontbuild.SFNT(fontbuild.TrueType, alphabetTables()...), Options{})
	require.NoError(t, err)
	_, err = c.Tables().Table("GSUB")
	assert.ErrorIs(t, err, ErrNoSuchTable)
	assert.False(t, c.Tables().Has("GSUB"))
}

func TestWOFFMatchesSFNT(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	tables := alphabetTables()
	sfnt, err := Open(fontbuild.SFNT(fontbuild.TrueType, tables...), Options{})
	require.NoError(t, err)
	c, err := Open(fontbuild.WOFF(fontbuild.TrueType, true, tables...), Options{Decoders: testDecoders})
	require.NoError(t, err)
	require.Equal(t, FormatWOFF, c.Format())
	woff := c.(*WOFF)
	var compressed, stored int
	for _, e := range woff.Entries {
		if e.Compressed() {
			compressed++
		} else {
			stored++
		}
	}
	require.NotZero(t, compressed, "expected at least one compressed table")
	require.NotZero(t, stored, "expected at least one stored table")
	for _, tag := range sfnt.Tables().Tags() {
		want, err := sfnt.Tables().Table(tag)
		require.NoError(t, err)
		got, err := c.Tables().Table(tag)
		require.NoError(t, err, tag)
		assert.Equal(t, want.Binary(), got.Binary(), tag)
	}
	cmap, err := c.Tables().CMap()
	require.NoError(t, err)
	assert.Equal(t, GlyphIndex(26), cmap.GlyphID('Z'))
	hmtx, err := c.Tables().HMtx()
	require.NoError(t, err)
	advance, _, ok := hmtx.Metrics(40)
	assert.True(t, ok)
	assert.Equal(t, uint16(500), advance)
}

func TestWOFFWithoutDecompressor(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	var observed error
	opts := Options{OnError: func(err error) { observed = err }}
	c, err := Open(fontbuild.WOFF(fontbuild.TrueType, true, alphabetTables()...), opts)
	require.NoError(t, err, "opening a WOFF font needs no decompressor")
	_, err = c.Tables().MaxP() // stored
	assert.NoError(t, err)
	assert.Nil(t, observed)
	_, err = c.Tables().Table("hmtx") // compressed
	assert.ErrorIs(t, err, ErrNoDecompressor)
	assert.ErrorIs(t, observed, ErrNoDecompressor)
}

func TestWOFF2(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	tables := alphabetTables()
	c, err := Open(fontbuild.WOFF2(fontbuild.TrueType, tables...), Options{Decoders: testDecoders})
	require.NoError(t, err)
	require.Equal(t, FormatWOFF2, c.Format())
	dir := c.Directory()
	require.Len(t, dir, len(tables))
	var offset uint32
	for i, entry := range dir {
		assert.Equal(t, T(tables[i].Tag), entry.Tag)
		assert.Equal(t, offset, entry.Offset, "tables are stored back to back")
		assert.Equal(t, uint32(len(tables[i].Data)), entry.Length)
		offset += entry.Length
	}
	cmap, err := c.Tables().CMap()
	require.NoError(t, err)
	assert.Equal(t, GlyphIndex(27), cmap.GlyphID('a'))
	maxp, err := c.Tables().MaxP()
	require.NoError(t, err)
	assert.Equal(t, 53, maxp.NumGlyphs)
	assert.Equal(t, 0.5, maxp.Version)
}

func TestWOFF2WithoutDecompressor(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	var observed error
	_, err := Open(fontbuild.WOFF2(fontbuild.TrueType, alphabetTables()...),
		Options{OnError: func(err error) { observed = err }})
	assert.ErrorIs(t, err, ErrNoDecompressor)
	assert.ErrorIs(t, observed, ErrNoDecompressor)
}

func TestRegistrySanitizesTags(t *testing.T) {
	assert.True(t, HasDecoder("OS/2"))
	assert.True(t, HasDecoder("OS2"))
	assert.True(t, HasDecoder("cvt "))
	assert.True(t, HasDecoder("CFF "))
	assert.False(t, HasDecoder("zzzz"))
	registered := RegisteredTables()
	assert.Contains(t, registered, "OS2")
	assert.Contains(t, registered, "cvt")
	assert.Contains(t, registered, "SVG")
	assert.NotContains(t, registered, "OS/2")
}

func TestUnregisteredTableIsGeneric(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	tables := append(alphabetTables(), fontbuild.Table{Tag: "zzzz", Data: []byte{1, 2, 3, 4}})
	c, err := Open(fontbuild.SFNT(fontbuild.TrueType, tables...), Options{})
	require.NoError(t, err)
	table, err := c.Tables().Table("zzzz")
	require.NoError(t, err)
	assert.True(t, table.Self().IsGeneric())
	assert.Equal(t, []byte{1, 2, 3, 4}, table.Binary())
	warnings := c.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, T("zzzz"), warnings[0].Table)
	assert.True(t, strings.Contains(warnings[0].Issue, "has no definition for zzzz"))
}

func TestSanitizedTagsAreDecoded(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	tables := append(alphabetTables(), fontbuild.Table{Tag: "cvt", Data: []byte{0, 1, 0xff, 0xfe}})
	c, err := Open(fontbuild.SFNT(fontbuild.TrueType, tables...), Options{})
	require.NoError(t, err)
	table, err := c.Tables().Table("cvt ")
	require.NoError(t, err)
	cvt, ok := table.(*CvtTable)
	require.True(t, ok, "expected cvt table to be decoded by its decoder")
	assert.Equal(t, []int16{1, -2}, cvt.Values.Value())
}

func TestStrictAndLenientMode(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	tables := alphabetTables()
	for i := range tables {
		if tables[i].Tag == "maxp" {
			tables[i].Data = append(tables[i].Data, 0, 0) // 2 bytes more than version 0.5 defines
		}
	}
	font := fontbuild.SFNT(fontbuild.TrueType, tables...)
	//
	lenient, err := Open(font, Options{})
	require.NoError(t, err)
	_, err = lenient.Tables().MaxP()
	assert.NoError(t, err)
	warnings := lenient.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, T("maxp"), warnings[0].Table)
	//
	strict, err := Open(font, Options{Strict: true})
	require.NoError(t, err)
	_, err = strict.Tables().MaxP()
	assert.ErrorIs(t, err, ErrLengthMismatch)
	assert.Len(t, strict.Errors(), 1)
	// other tables are not affected
	_, err = strict.Tables().CMap()
	assert.NoError(t, err)
}
