package ot

import (
	"fmt"
)

// PostTable contains information needed to use a TrueType or OpenType font on
// a PostScript printer, most notably the PostScript names of glyphs.
//
// Version 1 fonts use the standard Macintosh glyph order, version 2 fonts carry
// a glyph name index and Pascal strings for names not in the standard set,
// version 2.5 (deprecated) stores offsets into the standard order, and
// version 3 fonts do not provide glyph names.
type PostTable struct {
	tableBase
	Version            float64
	ItalicAngle        float64
	UnderlinePosition  int16
	UnderlineThickness int16
	IsFixedPitch       uint32
	MinMemType42       uint32
	MaxMemType42       uint32
	MinMemType1        uint32
	MaxMemType1        uint32
	NumGlyphs          uint16
	GlyphNameIndex     []uint16 // version 2
	Offsets            []int8   // version 2.5
	names              *Lazy[[]string]
	namesAt            int
}

func decodePost(p *Parser, ctx *tableContext) (Table, error) {
	t := &PostTable{}
	t.tableBase = newTableBase(p, t)
	t.Version = p.LegacyFixed()
	t.ItalicAngle = p.Fixed()
	t.UnderlinePosition = p.FWord()
	t.UnderlineThickness = p.FWord()
	t.IsFixedPitch = p.Uint32()
	t.MinMemType42 = p.Uint32()
	t.MaxMemType42 = p.Uint32()
	t.MinMemType1 = p.Uint32()
	t.MaxMemType1 = p.Uint32()
	if t.Version == 1 || t.Version == 3 {
		if err := p.Err(); err != nil {
			return nil, err
		}
		return t, p.VerifyLength()
	}
	t.NumGlyphs = p.Uint16()
	switch t.Version {
	case 2:
		t.GlyphNameIndex = p.Uint16s(int(t.NumGlyphs))
		t.namesAt = p.CurrentPosition() - t.Start()
		t.names = NewLazy(t.scanNames)
	case 2.5:
		t.Offsets = readArray(p, int(t.NumGlyphs), 1, (*Parser).Int8)
	default:
		t.warn(fmt.Sprintf("unknown post table version %g", t.Version))
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// scanNames reads the Pascal strings following the glyph name index. Glyph
// name index i ≥ 258 refers to string i-258.
func (t *PostTable) scanNames() ([]string, error) {
	count := 0
	for _, index := range t.GlyphNameIndex {
		count = max(count, int(index)-len(macGlyphNames)+1)
	}
	q := t.at(t.namesAt)
	names := make([]string, 0, min(count, t.p.Length()))
	for range count {
		n := int(q.Uint8())
		names = append(names, string(q.ReadBytes(n)))
		if q.Err() != nil {
			return names, q.Err()
		}
	}
	return names, nil
}

// GlyphName returns the PostScript name of a glyph.
func (t *PostTable) GlyphName(gid GlyphIndex) (string, error) {
	switch t.Version {
	case 1:
		if int(gid) < len(macGlyphNames) {
			return macGlyphNames[gid], nil
		}
	case 2:
		return t.glyphNameV2(gid)
	case 2.5:
		if int(gid) < len(t.Offsets) {
			if i := int(gid) + int(t.Offsets[gid]); i >= 0 && i < len(macGlyphNames) {
				return macGlyphNames[i], nil
			}
		}
	default:
		t.warn(fmt.Sprintf("post table version %g does not support glyph name lookups", t.Version))
		return "", nil
	}
	return "", fmt.Errorf("post: no name for glyph %d", gid)
}

func (t *PostTable) glyphNameV2(gid GlyphIndex) (string, error) {
	if int(gid) >= len(t.GlyphNameIndex) {
		return "", fmt.Errorf("post: no name for glyph %d", gid)
	}
	index := int(t.GlyphNameIndex[gid])
	if index < len(macGlyphNames) {
		return macGlyphNames[index], nil
	}
	names, err := t.names.Get()
	if err != nil {
		return "", err
	}
	return names[index-len(macGlyphNames)], nil
}

// macGlyphNames is the standard Macintosh ordering of 258 glyph names.
var macGlyphNames = [258]string{
	".notdef", ".null", "nonmarkingreturn", "space", "exclam", "quotedbl",
	"numbersign", "dollar", "percent", "ampersand", "quotesingle", "parenleft",
	"parenright", "asterisk", "plus", "comma", "hyphen", "period", "slash",
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight",
	"nine", "colon", "semicolon", "less", "equal", "greater", "question", "at",
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M", "N", "O",
	"P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z", "bracketleft",
	"backslash", "bracketright", "asciicircum", "underscore", "grave", "a", "b",
	"c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o", "p", "q",
	"r", "s", "t", "u", "v", "w", "x", "y", "z", "braceleft", "bar",
	"braceright", "asciitilde", "Adieresis", "Aring", "Ccedilla", "Eacute",
	"Ntilde", "Odieresis", "Udieresis", "aacute", "agrave", "acircumflex",
	"adieresis", "atilde", "aring", "ccedilla", "eacute", "egrave",
	"ecircumflex", "edieresis", "iacute", "igrave", "icircumflex", "idieresis",
	"ntilde", "oacute", "ograve", "ocircumflex", "odieresis", "otilde",
	"uacute", "ugrave", "ucircumflex", "udieresis", "dagger", "degree", "cent",
	"sterling", "section", "bullet", "paragraph", "germandbls", "registered",
	"copyright", "trademark", "acute", "dieresis", "notequal", "AE", "Oslash",
	"infinity", "plusminus", "lessequal", "greaterequal", "yen", "mu",
	"partialdiff", "summation", "product", "pi", "integral", "ordfeminine",
	"ordmasculine", "Omega", "ae", "oslash", "questiondown", "exclamdown",
	"logicalnot", "radical", "florin", "approxequal", "Delta", "guillemotleft",
	"guillemotright", "ellipsis", "nonbreakingspace", "Agrave", "Atilde",
	"Otilde", "OE", "oe", "endash", "emdash", "quotedblleft", "quotedblright",
	"quoteleft", "quoteright", "divide", "lozenge", "ydieresis", "Ydieresis",
	"fraction", "currency", "guilsinglleft", "guilsinglright", "fi", "fl",
	"daggerdbl", "periodcentered", "quotesinglbase", "quotedblbase",
	"perthousand", "Acircumflex", "Ecircumflex", "Aacute", "Edieresis",
	"Egrave", "Iacute", "Icircumflex", "Idieresis", "Igrave", "Oacute",
	"Ocircumflex", "apple", "Ograve", "Uacute", "Ucircumflex", "Ugrave",
	"dotlessi", "circumflex", "tilde", "macron", "breve", "dotaccent", "ring",
	"cedilla", "hungarumlaut", "ogonek", "caron", "Lslash", "lslash", "Scaron",
	"scaron", "Zcaron", "zcaron", "brokenbar", "Eth", "eth", "Yacute", "yacute",
	"Thorn", "thorn", "minus", "multiply", "onesuperior", "twosuperior",
	"threesuperior", "onehalf", "onequarter", "threequarters", "franc",
	"Gbreve", "gbreve", "Idotaccent", "Scedilla", "scedilla", "Cacute",
	"cacute", "Ccaron", "ccaron", "dcroat",
}
