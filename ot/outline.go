package ot

import (
	"fmt"
)

// --- TrueType outlines -----------------------------------------------------

// CvtTable is the Control Value Table, a list of values referenced by
// TrueType instructions.
type CvtTable struct {
	tableBase
	Values *Lazy[[]int16]
}

func decodeCvt(p *Parser, ctx *tableContext) (Table, error) {
	t := &CvtTable{}
	t.tableBase = newTableBase(p, t)
	n := p.Length() / 2
	t.Values = NewLazy(func() ([]int16, error) {
		q := t.at(0)
		return q.Int16s(n), q.Err()
	})
	return t, nil
}

// InstructionsTable holds TrueType instructions, as for tables 'fpgm' (font
// program) and 'prep' (control value program).
type InstructionsTable struct {
	tableBase
}

// Instructions returns the instruction bytes.
func (t *InstructionsTable) Instructions() []byte {
	return t.Binary()
}

func decodeFpgm(p *Parser, ctx *tableContext) (Table, error) {
	t := &InstructionsTable{}
	t.tableBase = newTableBase(p, t)
	return t, nil
}

func decodePrep(p *Parser, ctx *tableContext) (Table, error) {
	t := &InstructionsTable{}
	t.tableBase = newTableBase(p, t)
	return t, nil
}

// GaspTable controls grid-fitting and scan-conversion per size range.
type GaspTable struct {
	tableBase
	Version uint16
	Ranges  []GaspRange
}

// GaspRange sets the rasterization behaviour for sizes up to MaxPPEM.
type GaspRange struct {
	MaxPPEM  uint16
	Behavior uint16
}

func decodeGasp(p *Parser, ctx *tableContext) (Table, error) {
	t := &GaspTable{}
	t.tableBase = newTableBase(p, t)
	t.Version = p.Uint16()
	t.Ranges = readArray(p, int(p.Uint16()), 4, func(p *Parser) GaspRange {
		return GaspRange{MaxPPEM: p.Uint16(), Behavior: p.Uint16()}
	})
	if err := p.Err(); err != nil {
		return nil, err
	}
	return t, p.VerifyLength()
}

// LocaTable stores the offsets to the locations of the glyphs in the font,
// relative to the beginning of the glyph data table.
// By definition, index zero points to the “missing character”, which is the character
// that appears if a character is not found in the font. The missing character is
// commonly represented by a blank box or a space.
//
// The size of entries depends on the indexToLocFormat field of table 'head',
// the number of entries on the numGlyphs field of table 'maxp'.
type LocaTable struct {
	tableBase
	inx2loc func(t *LocaTable, gid GlyphIndex) uint32 // returns glyph location for glyph gid
	locCnt  int                                       // number of locations
}

func decodeLoca(p *Parser, ctx *tableContext) (Table, error) {
	head, err := ctx.tables.Head()
	if err != nil {
		return nil, fmt.Errorf("loca requires head: %w", err)
	}
	maxp, err := ctx.tables.MaxP()
	if err != nil {
		return nil, fmt.Errorf("loca requires maxp: %w", err)
	}
	t := &LocaTable{locCnt: maxp.NumGlyphs + 1}
	t.tableBase = newTableBase(p, t)
	size := 2
	t.inx2loc = shortLocaVersion
	if head.IndexToLocFormat != 0 {
		size = 4
		t.inx2loc = longLocaVersion
	}
	if t.locCnt*size > len(t.data) {
		t.warn(fmt.Sprintf("loca table too small for %d glyphs", maxp.NumGlyphs))
	}
	return t, nil
}

// IndexToLocation returns the offset of a glyph's data block within
// the 'glyf' table.
func (t *LocaTable) IndexToLocation(gid GlyphIndex) uint32 {
	return t.inx2loc(t, gid)
}

// GlyphDataOffsetAndLength returns offset and length of a glyph's data within
// table 'glyf'. Glyphs without outline have length 0.
func (t *LocaTable) GlyphDataOffsetAndLength(gid GlyphIndex) (uint32, uint32, bool) {
	if int(gid)+1 >= t.locCnt {
		return 0, 0, false
	}
	offset, next := t.IndexToLocation(gid), t.IndexToLocation(gid+1)
	if next < offset {
		return 0, 0, false
	}
	return offset, next - offset, true
}

func shortLocaVersion(t *LocaTable, gid GlyphIndex) uint32 {
	// in case of error link to 'missing character' at location 0
	if int(gid) >= t.locCnt {
		return 0
	}
	loc, err := t.data.u16(int(gid) * 2)
	if err != nil {
		return 0
	}
	return uint32(loc) * 2
}

func longLocaVersion(t *LocaTable, gid GlyphIndex) uint32 {
	if int(gid) >= t.locCnt {
		return 0
	}
	loc, err := t.data.u32(int(gid) * 4)
	if err != nil {
		return 0
	}
	return loc
}

// GlyfTable holds TrueType glyph outlines. Glyphs are located with table 'loca'.
type GlyfTable struct {
	tableBase
}

func decodeGlyf(p *Parser, ctx *tableContext) (Table, error) {
	t := &GlyfTable{}
	t.tableBase = newTableBase(p, t)
	return t, nil
}

// GlyphData returns the raw data of a glyph, located with table 'loca'.
func (t *GlyfTable) GlyphData(loca *LocaTable, gid GlyphIndex) ([]byte, error) {
	offset, length, ok := loca.GlyphDataOffsetAndLength(gid)
	if !ok {
		return nil, fmt.Errorf("no location for glyph %d", gid)
	}
	q := t.at(int(offset))
	b := q.ReadBytes(int(length))
	return b, q.Err()
}

// --- CFF outlines ----------------------------------------------------------

// CFFTable holds Compact Font Format outlines, for tables 'CFF ' and 'CFF2'.
// The CFF data is not interpreted.
type CFFTable struct {
	tableBase
	Major uint8
	Minor uint8
}

func decodeCFF(p *Parser, ctx *tableContext) (Table, error) {
	t := &CFFTable{}
	t.tableBase = newTableBase(p, t)
	t.Major = p.Uint8()
	t.Minor = p.Uint8()
	return t, p.Err()
}

func decodeCFF2(p *Parser, ctx *tableContext) (Table, error) {
	return decodeCFF(p, ctx)
}

// VOrgTable holds the y coordinates of glyphs' vertical origins, for CFF
// fonts.
type VOrgTable struct {
	tableBase
	MajorVersion       uint16
	MinorVersion       uint16
	DefaultVertOriginY int16
	Metrics            []VertOriginYMetric // ordered by glyph index
}

// VertOriginYMetric is the vertical origin of a glyph.
type VertOriginYMetric struct {
	Glyph       GlyphIndex
	VertOriginY int16
}

func decodeVOrg(p *Parser, ctx *tableContext) (Table, error) {
	t := &VOrgTable{}
	t.tableBase = newTableBase(p, t)
	t.MajorVersion = p.Uint16()
	t.MinorVersion = p.Uint16()
	t.DefaultVertOriginY = p.Int16()
	t.Metrics = readArray(p, int(p.Uint16()), 4, func(p *Parser) VertOriginYMetric {
		return VertOriginYMetric{Glyph: GlyphIndex(p.Uint16()), VertOriginY: p.Int16()}
	})
	if err := p.Err(); err != nil {
		return nil, err
	}
	return t, p.VerifyLength()
}

// VertOriginY returns the vertical origin of a glyph.
func (t *VOrgTable) VertOriginY(g GlyphIndex) int16 {
	lo, hi := 0, len(t.Metrics)
	for lo < hi {
		mid := (lo + hi) / 2
		switch m := t.Metrics[mid]; {
		case m.Glyph == g:
			return m.VertOriginY
		case m.Glyph < g:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return t.DefaultVertOriginY
}
