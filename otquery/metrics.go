package otquery

import (
	"github.com/npillmayer/webfont/ot"
	"golang.org/x/image/font/sfnt"
)

// --- Font Information -------------------------------------------------

// FontType returns "TrueType" for fonts with glyf outlines and "OpenType"
// for fonts with CFF outlines.
func FontType(otf ot.Container) string {
	if otf == nil {
		return ""
	}
	return ot.Flavor(otf.Flavor())
}

// LayoutTables returns the tags of the OpenType layout tables contained in
// a font.
func LayoutTables(otf ot.Container) []string {
	var tags []string
	if otf == nil {
		return tags
	}
	for _, tag := range []string{"GDEF", "GSUB", "GPOS", "BASE", "JSTF"} {
		if otf.Tables().Has(tag) {
			tags = append(tags, tag)
		}
	}
	return tags
}

func tableOf[T ot.Table](otf ot.Container, tag string) (T, bool) {
	var zero T
	table, err := otf.Tables().Table(tag)
	if err != nil {
		return zero, false
	}
	t, ok := table.(T)
	return t, ok
}

// FontSupportsScript returns a tuple (script-tag, language-tag) for a given input
// of a script tag and a language tag. If the language has no special support in the
// font, DFLT will be returned. If the script has no support in the font,
// DFLT will be returned for the script.
func FontSupportsScript(otf ot.Container, scr ot.Tag, lang ot.Tag) (ot.Tag, ot.Tag) {
	if otf == nil {
		return 0, 0
	}
	gsub, ok := tableOf[*ot.GSubTable](otf, "GSUB")
	if !ok {
		return ot.DFLT, ot.DFLT
	}
	script, err := gsub.Script(scr)
	if err != nil {
		tracer().Infof("cannot find script %s in font", scr.String())
		return ot.DFLT, ot.DFLT
	}
	tracer().Debugf("script %s is contained in GSUB", scr.String())
	if _, err := gsub.LangSys(script, lang); err == nil {
		return scr, lang
	}
	return scr, ot.DFLT
}

// FontMetrics retrieves selected metrics of a font.
func FontMetrics(otf ot.Container) FontMetricsInfo {
	metrics := FontMetricsInfo{}
	if otf == nil {
		return metrics
	}
	if hhea, err := otf.Tables().HHea(); err == nil {
		metrics.Ascent = sfnt.Units(hhea.Ascender)
		metrics.Descent = sfnt.Units(hhea.Descender)
		metrics.LineGap = sfnt.Units(hhea.LineGap)
		metrics.MaxAdvance = sfnt.Units(hhea.AdvanceWidthMax)
	}
	if metrics.Ascent == 0 && metrics.Descent == 0 {
		if os2, err := otf.Tables().OS2(); err == nil {
			tracer().Debugf("OS/2")
			a := sfnt.Units(os2.TypoAscender)
			if a > metrics.Ascent {
				tracer().Debugf("override of ascent: %d -> %d", metrics.Ascent, a)
				metrics.Ascent = a
			}
			d := sfnt.Units(os2.TypoDescender)
			if d < metrics.Descent {
				tracer().Debugf("override of descent: %d -> %d", metrics.Descent, d)
				metrics.Descent = d
			}
			if metrics.LineGap == 0 {
				metrics.LineGap = sfnt.Units(os2.TypoLineGap)
			}
		}
	}
	if head, err := otf.Tables().Head(); err == nil { // head is a required table
		metrics.UnitsPerEm = sfnt.Units(head.UnitsPerEm)
	}
	return metrics
}

// --- Glyph Routines --------------------------------------------------------

// GlyphIndex returns the glyph index for a give code-point.
// If the code-point cannot be found, 0 is returned.
//
// From the OpenType specification: character codes that do not correspond to any glyph in
// the font should be mapped to glyph index 0. The glyph at this location must be a special
// glyph representing a missing character, commonly known as '.notdef'.
func GlyphIndex(otf ot.Container, codepoint rune) ot.GlyphIndex {
	if otf == nil {
		return 0
	}
	cmap, err := otf.Tables().CMap()
	if err != nil {
		return 0
	}
	return cmap.GlyphID(codepoint)
}

// CodePointForGlyph returns the code-point for a given glyph index.
//
// This is an inefficient operation: All code-points contained in the font's CMap
// are checked sequentially if they produce the given glyph.
// If the glyph index does not correspond to a code-point, 0 is returned.
func CodePointForGlyph(otf ot.Container, gid ot.GlyphIndex) rune {
	if otf == nil || gid == 0 {
		return 0
	}
	cmap, err := otf.Tables().CMap()
	if err != nil {
		return 0
	}
	code, _ := cmap.Reverse(gid)
	return code.Code
}

// GlyphClass returns the class of a glyph as defined in table GDEF, or 0 if
// the font does not classify glyphs.
func GlyphClass(otf ot.Container, gid ot.GlyphIndex) ot.GlyphClassDefEnum {
	if otf == nil {
		return 0
	}
	gdef, ok := tableOf[*ot.GDefTable](otf, "GDEF")
	if !ok {
		return 0
	}
	return gdef.GlyphClass(gid)
}

// GlyphMetrics retrieves metrics for a given glyph.
func GlyphMetrics(otf ot.Container, gid ot.GlyphIndex) GlyphMetricsInfo {
	metrics := GlyphMetricsInfo{}
	if otf == nil {
		return metrics
	}
	//
	// table HMtx: advance width and left side bearing
	if hmtx, err := otf.Tables().HMtx(); err == nil { // required table in OpenType
		if aw, lsb, ok := hmtx.Metrics(gid); ok {
			metrics.Advance = sfnt.Units(aw)
			metrics.LSB = sfnt.Units(lsb)
		}
	}
	//
	// table glyf: bounding box
	metrics.BBox = glyphBBox(otf, gid)
	// RSB calculation: rsb = aw - (lsb + xMax - xMin)
	// From the OpenType specification:
	// If a glyph has no contours, xMax/xMin are not defined. The left side bearing indicated
	// in the 'hmtx' table for such glyphs should be zero.
	if !metrics.BBox.IsEmpty() { // leave RSB for empty bboxes
		metrics.RSB = metrics.Advance - (metrics.LSB + metrics.BBox.Dx())
	}
	return metrics
}

func glyphBBox(otf ot.Container, gid ot.GlyphIndex) BoundingBox {
	glyf, ok := tableOf[*ot.GlyfTable](otf, "glyf")
	if !ok {
		return BoundingBox{}
	}
	loca, err := otf.Tables().Loca()
	if err != nil {
		return BoundingBox{}
	}
	data, err := glyf.GlyphData(loca, gid)
	if err != nil || len(data) < 10 {
		return BoundingBox{}
	}
	p := ot.NewParser(ot.TableDict{Tag: ot.T("glyf"), Length: uint32(len(data))}, data, "glyph")
	p.Int16() // number of contours
	return BoundingBox{
		MinX: sfnt.Units(p.Int16()),
		MinY: sfnt.Units(p.Int16()),
		MaxX: sfnt.Units(p.Int16()),
		MaxY: sfnt.Units(p.Int16()),
	}
}
