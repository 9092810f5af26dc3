package otquery

import (
	"encoding/binary"
	"testing"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/webfont/internal/fontbuild"
	"github.com/npillmayer/webfont/ot"
	"github.com/stretchr/testify/suite"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// --- Test Suite Preparation ------------------------------------------------

type InfoTestEnviron struct {
	suite.Suite
	otf ot.Container
	ref *sfnt.Font
}

// listen for 'go test' command --> run test methods
func TestInfoFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	suite.Run(t, new(InfoTestEnviron))
}

// run once, before test suite methods
func (env *InfoTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	tracing.Select("font.opentype").SetTraceLevel(tracing.LevelError)
	var err error
	env.otf, err = ot.Open(goregular.TTF, ot.Options{})
	env.Require().NoError(err)
	env.ref, err = sfnt.Parse(goregular.TTF)
	env.Require().NoError(err)
	tracing.Select("font.opentype").SetTraceLevel(tracing.LevelInfo)
}

// run once, after test suite methods
func (env *InfoTestEnviron) TearDownSuite() {
	env.T().Log("Tearing down test suite")
}

// --- Tests -----------------------------------------------------------------

func (env *InfoTestEnviron) TestFontTypeInfo() {
	fti := FontType(env.otf)
	env.Equal("TrueType", fti, "expected font type of test font to be TrueType")
}

func (env *InfoTestEnviron) TestGeneralInfo() {
	info := NameInfo(env.otf)
	env.T().Logf("info = %v", info)
	fam, ok := info["family"]
	env.Require().True(ok, "font family identifier not found in font info")
	var buf sfnt.Buffer
	want, err := env.ref.Name(&buf, sfnt.NameIDFamily)
	env.Require().NoError(err)
	env.Equal(want, fam, "expected font family name %q", want)
	family, subfamily := FamilyName(env.otf)
	env.Equal("Go", family)
	env.Equal("Regular", subfamily)
}

func (env *InfoTestEnviron) TestFontMetrics() {
	metrics := FontMetrics(env.otf)
	env.Equal(sfnt.Units(2048), metrics.UnitsPerEm)
	hhea, err := env.otf.Tables().HHea()
	env.Require().NoError(err)
	env.Equal(sfnt.Units(hhea.Ascender), metrics.Ascent)
	env.Greater(int(metrics.Ascent), 0)
	env.Less(int(metrics.Descent), 0, "expected descent to be below baseline")
}

func (env *InfoTestEnviron) TestGlyphMetrics() {
	var buf sfnt.Buffer
	ppem := fixed.Int26_6(2048)
	for _, r := range "Hamburgefonts" {
		gid := GlyphIndex(env.otf, r)
		env.Require().NotZero(gid, "expected glyph for %q", r)
		metrics := GlyphMetrics(env.otf, gid)
		advance, err := env.ref.GlyphAdvance(&buf, sfnt.GlyphIndex(gid), ppem, font.HintingNone)
		env.Require().NoError(err)
		env.Equal(int(advance), int(metrics.Advance), "advance of %q", r)
		env.False(metrics.BBox.IsEmpty(), "expected %q to have a bounding box", r)
		env.Greater(int(metrics.BBox.MaxY), 0)
	}
	space := GlyphMetrics(env.otf, GlyphIndex(env.otf, ' '))
	env.True(space.BBox.IsEmpty(), "space has no outline")
	env.NotZero(space.Advance)
}

func (env *InfoTestEnviron) TestLayoutInfo() {
	layouts := LayoutTables(env.otf)
	env.T().Logf("test font layout tables: %v", layouts)
	for _, tag := range layouts {
		env.True(env.otf.Tables().Has(tag))
	}
}

func (env *InfoTestEnviron) TestReverseLookup() {
	gid := GlyphIndex(env.otf, 'A')
	r := CodePointForGlyph(env.otf, gid)
	env.Equal('A', r, "expected code-point to be %#U, is %#U", 'A', r)
	env.Equal(rune(0), CodePointForGlyph(env.otf, 0))
}

// --- Layout queries on a synthetic font ------------------------------------

func u16s(values ...uint16) []byte {
	var b []byte
	for _, v := range values {
		b = binary.BigEndian.AppendUint16(b, v)
	}
	return b
}

// layoutFont returns a font with a GSUB table for script 'latn' with the
// default language system and 'DEU ', and a GDEF table classifying glyph 1
// as a base glyph and glyph 2 as a mark.
func layoutFont(t *testing.T) ot.Container {
	var gsub []byte
	for _, part := range [][]byte{
		u16s(1, 0, 10, 40, 42),                // header
		u16s(1), []byte("latn"), u16s(8),      // script list
		u16s(10, 1), []byte("DEU "), u16s(16), // script
		u16s(0, 0xffff, 0),                    // default language system
		u16s(0, 0xffff, 0),                    // DEU
		u16s(0),                               // feature list
		u16s(0),                               // lookup list
	} {
		gsub = append(gsub, part...)
	}
	gdef := append(u16s(1, 0, 12, 0, 0, 0), u16s(1, 1, 2, 1, 3)...)
	cmap := fontbuild.CMap(fontbuild.Subtable{PlatformID: 3, EncodingID: 1, Data: fontbuild.CMapFormat4(
		fontbuild.Segment{Start: 'a', End: 'b', Delta: 1 - 'a'},
	)})
	tables := append(fontbuild.Minimal(3, cmap),
		fontbuild.Table{Tag: "GDEF", Data: gdef},
		fontbuild.Table{Tag: "GSUB", Data: gsub},
	)
	otf, err := ot.Open(fontbuild.SFNT(fontbuild.TrueType, tables...), ot.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return otf
}

func TestFontSupportsScript(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := layoutFont(t)
	latn, deu := ot.T("latn"), ot.T("DEU ")
	if scr, lang := FontSupportsScript(otf, latn, deu); scr != latn || lang != deu {
		t.Errorf("expected latn/DEU to be supported, have %s/%s", scr, lang)
	}
	if scr, lang := FontSupportsScript(otf, latn, ot.T("TRK ")); scr != latn || lang != ot.DFLT {
		t.Errorf("expected latn/DFLT for unsupported language, have %s/%s", scr, lang)
	}
	if scr, lang := FontSupportsScript(otf, ot.T("arab"), ot.T("ARA ")); scr != ot.DFLT || lang != ot.DFLT {
		t.Errorf("expected DFLT/DFLT for unsupported script, have %s/%s", scr, lang)
	}
	if layouts := LayoutTables(otf); len(layouts) != 2 {
		t.Errorf("expected GDEF and GSUB, have %v", layouts)
	}
}

func TestGlyphClass(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := layoutFont(t)
	if clz := GlyphClass(otf, GlyphIndex(otf, 'a')); clz != ot.BaseGlyph {
		t.Errorf("expected 'a' to be a base glyph, is %d", clz)
	}
	if clz := GlyphClass(otf, GlyphIndex(otf, 'b')); clz != ot.MarkGlyph {
		t.Errorf("expected 'b' to be a mark glyph, is %d", clz)
	}
	if clz := GlyphClass(otf, 0); clz != 0 {
		t.Errorf("expected .notdef to be unclassified, is %d", clz)
	}
}

func TestLineHeight(t *testing.T) {
	metrics := FontMetricsInfo{Ascent: 800, Descent: -200, LineGap: 90}
	if h := metrics.LineHeight(); h != 1090 {
		t.Errorf("expected line height of 1090, have %d", h)
	}
}
