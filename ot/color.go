package ot

import (
	"fmt"
	"image/color"
	"sort"
)

// --- COLR ------------------------------------------------------------------

// COLRTable defines color glyphs as layers of other glyphs, each painted with
// a palette color from table 'CPAL'. Only version 0 records are decoded.
type COLRTable struct {
	tableBase
	Version                uint16
	NumBaseGlyphRecords    uint16
	BaseGlyphRecordsOffset uint32
	LayerRecordsOffset     uint32
	NumLayerRecords        uint16
}

// BaseGlyphRecord refers to the layers of a color glyph.
type BaseGlyphRecord struct {
	Glyph           GlyphIndex
	FirstLayerIndex uint16
	NumLayers       uint16
}

// LayerRecord is a layer of a color glyph.
type LayerRecord struct {
	Glyph        GlyphIndex
	PaletteIndex uint16 // 0xffff for the text foreground color
}

func decodeCOLR(p *Parser, ctx *tableContext) (Table, error) {
	t := &COLRTable{}
	t.tableBase = newTableBase(p, t)
	t.Version = p.Uint16()
	t.NumBaseGlyphRecords = p.Uint16()
	t.BaseGlyphRecordsOffset = p.Offset32()
	t.LayerRecordsOffset = p.Offset32()
	t.NumLayerRecords = p.Uint16()
	return t, p.Err()
}

func (t *COLRTable) baseGlyphRecord(i int) BaseGlyphRecord {
	q := t.at(int(t.BaseGlyphRecordsOffset) + 6*i)
	return BaseGlyphRecord{Glyph: GlyphIndex(q.Uint16()), FirstLayerIndex: q.Uint16(), NumLayers: q.Uint16()}
}

// BaseGlyphRecord finds the record of a color glyph by binary search over the
// base glyph records, which are sorted by glyph index.
func (t *COLRTable) BaseGlyphRecord(g GlyphIndex) (BaseGlyphRecord, bool) {
	n := int(t.NumBaseGlyphRecords)
	i := sort.Search(n, func(i int) bool {
		return t.baseGlyphRecord(i).Glyph >= g
	})
	if i < n {
		if rec := t.baseGlyphRecord(i); rec.Glyph == g {
			return rec, true
		}
	}
	return BaseGlyphRecord{}, false
}

// Layers returns the layers of a color glyph, bottom layer first, or nil if g
// is not a color glyph.
func (t *COLRTable) Layers(g GlyphIndex) ([]LayerRecord, error) {
	rec, ok := t.BaseGlyphRecord(g)
	if !ok {
		return nil, nil
	}
	if int(rec.FirstLayerIndex)+int(rec.NumLayers) > int(t.NumLayerRecords) {
		return nil, fmt.Errorf("layers of glyph %d exceed layer records", g)
	}
	q := t.at(int(t.LayerRecordsOffset) + 4*int(rec.FirstLayerIndex))
	layers := readArray(q, int(rec.NumLayers), 4, func(q *Parser) LayerRecord {
		return LayerRecord{Glyph: GlyphIndex(q.Uint16()), PaletteIndex: q.Uint16()}
	})
	return layers, q.Err()
}

// --- CPAL ------------------------------------------------------------------

// CPALTable defines color palettes. Version 1 adds palette types and labels.
type CPALTable struct {
	tableBase
	Version                  uint16
	NumPaletteEntries        uint16
	NumPalettes              uint16
	NumColorRecords          uint16
	ColorRecordsArrayOffset  uint32
	ColorRecordIndices       []uint16 // index of each palette's first color record
	PaletteTypesArrayOffset  uint32   // version 1
	PaletteLabelsArrayOffset uint32
	EntryLabelsArrayOffset   uint32
	ColorRecords             *Lazy[[]color.NRGBA]
}

func decodeCPAL(p *Parser, ctx *tableContext) (Table, error) {
	t := &CPALTable{}
	t.tableBase = newTableBase(p, t)
	t.Version = p.Uint16()
	t.NumPaletteEntries = p.Uint16()
	t.NumPalettes = p.Uint16()
	t.NumColorRecords = p.Uint16()
	t.ColorRecordsArrayOffset = p.Offset32()
	t.ColorRecordIndices = p.Uint16s(int(t.NumPalettes))
	if t.Version >= 1 {
		t.PaletteTypesArrayOffset = p.Offset32()
		t.PaletteLabelsArrayOffset = p.Offset32()
		t.EntryLabelsArrayOffset = p.Offset32()
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	t.ColorRecords = NewLazy(func() ([]color.NRGBA, error) {
		q := t.at(int(t.ColorRecordsArrayOffset))
		colors := readArray(q, int(t.NumColorRecords), 4, func(q *Parser) color.NRGBA {
			b, g, r, a := q.Uint8(), q.Uint8(), q.Uint8(), q.Uint8()
			return color.NRGBA{R: r, G: g, B: b, A: a}
		})
		return colors, q.Err()
	})
	return t, nil
}

// Palette returns the colors of palette i.
func (t *CPALTable) Palette(i int) ([]color.NRGBA, error) {
	if i < 0 || i >= len(t.ColorRecordIndices) {
		return nil, fmt.Errorf("no palette %d", i)
	}
	colors, err := t.ColorRecords.Get()
	if err != nil {
		return nil, err
	}
	first := int(t.ColorRecordIndices[i])
	if first+int(t.NumPaletteEntries) > len(colors) {
		return nil, fmt.Errorf("palette %d exceeds color records", i)
	}
	return colors[first : first+int(t.NumPaletteEntries)], nil
}

// PaletteTypes returns the type flags of each palette (version 1), or nil.
func (t *CPALTable) PaletteTypes() ([]uint32, error) {
	if t.PaletteTypesArrayOffset == 0 {
		return nil, nil
	}
	q := t.at(int(t.PaletteTypesArrayOffset))
	return q.Uint32s(int(t.NumPalettes)), q.Err()
}

// PaletteLabels returns the name IDs of each palette's label (version 1), or nil.
func (t *CPALTable) PaletteLabels() ([]uint16, error) {
	if t.PaletteLabelsArrayOffset == 0 {
		return nil, nil
	}
	q := t.at(int(t.PaletteLabelsArrayOffset))
	return q.Uint16s(int(t.NumPalettes)), q.Err()
}

// EntryLabels returns the name IDs of each palette entry's label (version 1), or nil.
func (t *CPALTable) EntryLabels() ([]uint16, error) {
	if t.EntryLabelsArrayOffset == 0 {
		return nil, nil
	}
	q := t.at(int(t.EntryLabelsArrayOffset))
	return q.Uint16s(int(t.NumPaletteEntries)), q.Err()
}

// --- SVG -------------------------------------------------------------------

// SVGTable contains SVG documents for glyphs.
type SVGTable struct {
	tableBase
	Version            uint16
	DocumentListOffset uint32
	Documents          []SVGDocumentRecord
}

// SVGDocumentRecord locates the SVG document for a range of glyphs.
type SVGDocumentRecord struct {
	StartGlyphID GlyphIndex
	EndGlyphID   GlyphIndex
	Offset       uint32 // from the start of the document list
	Length       uint32
}

func decodeSVG(p *Parser, ctx *tableContext) (Table, error) {
	t := &SVGTable{}
	t.tableBase = newTableBase(p, t)
	t.Version = p.Uint16()
	t.DocumentListOffset = p.Offset32()
	if err := p.Err(); err != nil {
		return nil, err
	}
	q := t.at(int(t.DocumentListOffset))
	t.Documents = readArray(q, int(q.Uint16()), 12, func(q *Parser) SVGDocumentRecord {
		return SVGDocumentRecord{
			StartGlyphID: GlyphIndex(q.Uint16()),
			EndGlyphID:   GlyphIndex(q.Uint16()),
			Offset:       q.Offset32(),
			Length:       q.Uint32(),
		}
	})
	return t, q.Err()
}

// Document returns the bytes of SVG document i. Documents may be gzip-compressed.
func (t *SVGTable) Document(i int) ([]byte, error) {
	if i < 0 || i >= len(t.Documents) {
		return nil, fmt.Errorf("no SVG document %d", i)
	}
	rec := t.Documents[i]
	q := t.at(int(t.DocumentListOffset) + int(rec.Offset))
	doc := q.ReadBytes(int(rec.Length))
	return doc, q.Err()
}

// DocumentForGlyph returns the SVG document containing a glyph, or nil.
func (t *SVGTable) DocumentForGlyph(g GlyphIndex) ([]byte, error) {
	for i, rec := range t.Documents {
		if rec.StartGlyphID <= g && g <= rec.EndGlyphID {
			return t.Document(i)
		}
	}
	return nil, nil
}
