package ot

import (
	"encoding/binary"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u16s(values ...uint16) []byte {
	var b []byte
	for _, v := range values {
		b = binary.BigEndian.AppendUint16(b, v)
	}
	return b
}

func concat(parts ...[]byte) []byte {
	var b []byte
	for _, part := range parts {
		b = append(b, part...)
	}
	return b
}

func decodeTestTable(t *testing.T, tag string, data []byte) Table {
	t.Helper()
	ctx := &tableContext{
		tables: &TableSet{entries: make(map[string]*Lazy[Table])},
		diag:   &diagnostics{},
		opts:   &Options{},
	}
	table, err := createTable(TableDict{Tag: T(tag), Length: uint32(len(data))}, data, ctx)
	require.NoError(t, err)
	return table
}

func TestLookupTypeString(t *testing.T) {
	if s := GSubLookupTypeChainingContext.GSubString(); s != "Chaining" {
		t.Errorf("expected GSUB lookup type 6 to be Chaining, is %q", s)
	}
	if s := GSubLookupTypeReverseChaining.GSubString(); s != "Reverse" {
		t.Errorf("expected GSUB lookup type 8 to be Reverse, is %q", s)
	}
	if s := GPosLookupTypeMarkToLigature.GPosString(); s != "MarkToLigature" {
		t.Errorf("expected GPOS lookup type 5 to be MarkToLigature, is %q", s)
	}
	if s := GPosLookupTypeExtensionPos.GPosString(); s != "Ext" {
		t.Errorf("expected GPOS lookup type 9 to be Ext, is %q", s)
	}
	if s := LayoutTableLookupType(12).GSubString(); s != "12" {
		t.Errorf("expected unknown lookup type to print as number, is %q", s)
	}
}

// testGSub has a default script with a default language system, selecting
// feature 'liga', which consists of a single substitution adding 10 to glyphs
// 5 and 7.
var testGSub = concat(
	u16s(1, 0, 10, 30, 44),           // header
	u16s(1), []byte("DFLT"), u16s(8), // script list
	u16s(4, 0),                       // script, default LangSys at +4
	u16s(0, 0xffff, 1, 0),            // default LangSys
	u16s(1), []byte("liga"), u16s(8), // feature list
	u16s(0, 1, 0),                    // feature
	u16s(1, 4),                       // lookup list
	u16s(1, 0, 1, 8),                 // lookup
	u16s(1, 6, 10),                   // single substitution, format 1
	u16s(1, 2, 5, 7),                 // coverage
)

func TestGSubNavigation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	gsub, ok := decodeTestTable(t, "GSUB", testGSub).(*GSubTable)
	require.True(t, ok)
	major, minor := gsub.Header.Version()
	assert.Equal(t, 1, major)
	assert.Equal(t, 0, minor)
	assert.Nil(t, gsub.FeatureVariations)
	scripts, err := gsub.SupportedScripts()
	require.NoError(t, err)
	assert.Equal(t, []Tag{DFLT}, scripts)
	script, err := gsub.Script(DFLT)
	require.NoError(t, err)
	assert.Equal(t, []Tag{DFLT}, gsub.SupportedLangSys(script))
	langSys, err := gsub.LangSys(script, dflt)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xffff), langSys.RequiredFeatureIndex)
	features, err := gsub.Features(langSys)
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, T("liga"), features[0].Tag)
	lookups, err := gsub.Lookups(features[0])
	require.NoError(t, err)
	require.Len(t, lookups, 1)
	assert.Equal(t, GSubLookupTypeSingle, lookups[0].Type)
	assert.True(t, lookups[0].MarkFilteringSet.IsNone())
	sub, err := lookups[0].SubTable(0)
	require.NoError(t, err)
	single, ok := sub.(*SingleSubst)
	require.True(t, ok, "expected single substitution, is %T", sub)
	g, ok := single.Substitute(5)
	assert.True(t, ok)
	assert.Equal(t, GlyphIndex(15), g)
	g, ok = single.Substitute(7)
	assert.True(t, ok)
	assert.Equal(t, GlyphIndex(17), g)
	_, ok = single.Substitute(6)
	assert.False(t, ok)
	_, err = lookups[0].SubTable(1)
	assert.Error(t, err)
}

func TestGSubMissingScript(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	gsub := decodeTestTable(t, "GSUB", testGSub).(*GSubTable)
	_, err := gsub.Script(T("latn"))
	assert.Error(t, err)
	_, err = gsub.FeatureByTag(T("kern"))
	assert.Error(t, err)
}

func TestCoverageAndClassDefs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cov, err := decodeCoverage(parserFor(u16s(2, 2, 10, 14, 0, 20, 20, 5)))
	require.NoError(t, err)
	inx, ok := cov.Match(12)
	assert.True(t, ok)
	assert.Equal(t, 2, inx)
	inx, ok = cov.Match(20)
	assert.True(t, ok)
	assert.Equal(t, 5, inx)
	assert.False(t, cov.Contains(15))
	//
	cdef, err := decodeClassDefinitions(parserFor(u16s(1, 3, 3, 1, 2, 1)))
	require.NoError(t, err)
	assert.Equal(t, 0, cdef.Lookup(2))
	assert.Equal(t, 2, cdef.Lookup(4))
	assert.Equal(t, 1, cdef.Lookup(5))
	assert.Equal(t, 0, cdef.Lookup(6))
	//
	_, err = decodeCoverage(parserFor(u16s(3, 0)))
	assert.Error(t, err)
}

func TestGDefGlyphClasses(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	data := concat(
		u16s(1, 0, 12, 0, 0, 0),        // header, version 1.0
		u16s(2, 2, 1, 9, 1, 10, 20, 3), // glyph class definitions
	)
	gdef, ok := decodeTestTable(t, "GDEF", data).(*GDefTable)
	require.True(t, ok)
	assert.Equal(t, BaseGlyph, gdef.GlyphClass(4))
	assert.Equal(t, MarkGlyph, gdef.GlyphClass(15))
	assert.Equal(t, GlyphClassDefEnum(0), gdef.GlyphClass(30))
	attach, err := gdef.AttachList.Get()
	assert.NoError(t, err)
	assert.Nil(t, attach)
}
