package ot

import (
	"fmt"
)

// CMapTable is the character to glyph index mapping table.
//
// A cmap table holds a list of encoding records, each pointing to a subtable
// which maps character codes of an encoding to glyph indices. Subtables come in
// different formats (see `CMapSubtable`); they are decoded on first access.
//
// Lookups which consult more than one subtable (GlyphID, Reverse, Supports,
// SupportsVariation) visit the encoding records in the order they appear in the
// font, and the first subtable giving a non-trivial answer wins.
type CMapTable struct {
	tableBase
	Version         uint16
	NumTables       uint16
	EncodingRecords []*EncodingRecord
}

// EncodingRecord identifies a cmap subtable by platform and encoding.
type EncodingRecord struct {
	PlatformID uint16
	EncodingID uint16
	Offset     uint32 // from start of cmap table
	subtable   *Lazy[CMapSubtable]
}

// Subtable returns the subtable of this record, decoding it on first access.
func (rec *EncodingRecord) Subtable() (CMapSubtable, error) {
	return rec.subtable.Get()
}

// Encoding is a (platform, encoding) pair.
type Encoding struct {
	PlatformID uint16
	EncodingID uint16
}

func decodeCMap(p *Parser, ctx *tableContext) (Table, error) {
	t := &CMapTable{}
	t.tableBase = newTableBase(p, t)
	t.Version = p.Uint16()
	t.NumTables = p.Uint16()
	t.EncodingRecords = readArray(p, int(t.NumTables), 8, func(p *Parser) *EncodingRecord {
		return &EncodingRecord{
			PlatformID: p.Uint16(),
			EncodingID: p.Uint16(),
			Offset:     p.Offset32(),
		}
	})
	if err := p.Err(); err != nil {
		return nil, err
	}
	for _, rec := range t.EncodingRecords {
		rec.subtable = NewLazy(func() (CMapSubtable, error) {
			sub, err := decodeCMapSubtable(t.at(int(rec.Offset)), rec.PlatformID, rec.EncodingID)
			if err != nil {
				ctx.diag.addError(t.tag, "EncodingRecord",
					fmt.Sprintf("subtable for platform %d encoding %d: %v", rec.PlatformID, rec.EncodingID, err),
					SeverityMajor, t.offset+rec.Offset)
			}
			return sub, err
		})
	}
	tracer().Debugf("cmap table with %d encoding records", t.NumTables)
	return t, nil
}

// SubTable returns the subtable of the i-th encoding record.
func (t *CMapTable) SubTable(i int) (CMapSubtable, error) {
	if i < 0 || i >= len(t.EncodingRecords) {
		return nil, fmt.Errorf("cmap: no encoding record %d", i)
	}
	return t.EncodingRecords[i].Subtable()
}

// subtables iterates over all subtables which decode without error, in
// encoding record order.
func (t *CMapTable) subtables(yield func(CMapSubtable) bool) {
	for _, rec := range t.EncodingRecords {
		sub, err := rec.Subtable()
		if err != nil {
			continue
		}
		if !yield(sub) {
			return
		}
	}
}

// SupportedEncodings returns the (platform, encoding) pairs of all encoding
// records, in order.
func (t *CMapTable) SupportedEncodings() []Encoding {
	encodings := make([]Encoding, len(t.EncodingRecords))
	for i, rec := range t.EncodingRecords {
		encodings[i] = Encoding{PlatformID: rec.PlatformID, EncodingID: rec.EncodingID}
	}
	return encodings
}

// SupportedCharCodes returns the character code ranges covered by the subtable
// for a platform and encoding. If the table has no such subtable, false is returned.
func (t *CMapTable) SupportedCharCodes(platformID, encodingID uint16) ([]CharRange, bool) {
	for _, rec := range t.EncodingRecords {
		if rec.PlatformID == platformID && rec.EncodingID == encodingID {
			sub, err := rec.Subtable()
			if err != nil {
				return nil, false
			}
			return sub.SupportedCharCodes(), true
		}
	}
	return nil, false
}

// GlyphID returns the glyph index for a character. Subtables able to map
// Unicode characters (see `GlyphMapper`) are consulted in encoding record
// order, and the first non-zero glyph index is returned.
// If no subtable maps the character, 0 ('.notdef') is returned.
func (t *CMapTable) GlyphID(r rune) GlyphIndex {
	var gid GlyphIndex
	t.subtables(func(sub CMapSubtable) bool {
		if mapper, ok := sub.(GlyphMapper); ok {
			gid = mapper.GlyphID(r)
		}
		return gid == 0
	})
	return gid
}

// Reverse returns the character for a glyph index from the first subtable
// which knows one.
func (t *CMapTable) Reverse(gid GlyphIndex) (CharCode, bool) {
	var code CharCode
	var found bool
	t.subtables(func(sub CMapSubtable) bool {
		code, found = sub.Reverse(gid)
		return !found
	})
	return code, found
}

// Supports reports whether any subtable supports a character.
func (t *CMapTable) Supports(r rune) bool {
	supported := false
	t.subtables(func(sub CMapSubtable) bool {
		supported = sub.Supports(r)
		return !supported
	})
	return supported
}

// SupportsVariation reports whether any subtable knows a variation selector.
func (t *CMapTable) SupportsVariation(selector rune) bool {
	supported := false
	t.subtables(func(sub CMapSubtable) bool {
		if uvs, ok := sub.(*CMapFormat14); ok {
			_, supported = uvs.SupportsVariation(selector)
		}
		return !supported
	})
	return supported
}
