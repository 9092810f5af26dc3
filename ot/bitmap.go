package ot

// --- Embedded bitmaps ------------------------------------------------------

// BitmapLocationTable locates embedded bitmaps, for tables 'EBLC' and 'CBLC'
// (the latter for color bitmaps).
type BitmapLocationTable struct {
	tableBase
	MajorVersion uint16
	MinorVersion uint16
	NumSizes     uint32
	Sizes        *Lazy[[]BitmapSize]
}

// BitmapSize describes the bitmap strike of one size.
type BitmapSize struct {
	IndexSubTableArrayOffset uint32
	IndexTablesSize          uint32
	NumberOfIndexSubTables   uint32
	ColorRef                 uint32
	Hori                     SbitLineMetrics
	Vert                     SbitLineMetrics
	StartGlyphIndex          GlyphIndex
	EndGlyphIndex            GlyphIndex
	PPEMX                    uint8
	PPEMY                    uint8
	BitDepth                 uint8
	Flags                    int8
}

// SbitLineMetrics holds line metrics of a bitmap strike.
type SbitLineMetrics struct {
	Ascender              int8
	Descender             int8
	WidthMax              uint8
	CaretSlopeNumerator   int8
	CaretSlopeDenominator int8
	CaretOffset           int8
	MinOriginSB           int8
	MinAdvanceSB          int8
	MaxBeforeBL           int8
	MinAfterBL            int8
}

func readSbitLineMetrics(p *Parser) SbitLineMetrics {
	m := SbitLineMetrics{
		Ascender:              p.Int8(),
		Descender:             p.Int8(),
		WidthMax:              p.Uint8(),
		CaretSlopeNumerator:   p.Int8(),
		CaretSlopeDenominator: p.Int8(),
		CaretOffset:           p.Int8(),
		MinOriginSB:           p.Int8(),
		MinAdvanceSB:          p.Int8(),
		MaxBeforeBL:           p.Int8(),
		MinAfterBL:            p.Int8(),
	}
	p.Skip(2, 8) // padding
	return m
}

func decodeBitmapLocation(p *Parser) (*BitmapLocationTable, error) {
	t := &BitmapLocationTable{}
	t.tableBase = newTableBase(p, t)
	t.MajorVersion = p.Uint16()
	t.MinorVersion = p.Uint16()
	t.NumSizes = p.Uint32()
	if err := p.Err(); err != nil {
		return nil, err
	}
	n := int(t.NumSizes)
	t.Sizes = NewLazy(func() ([]BitmapSize, error) {
		q := t.at(8)
		sizes := readArray(q, n, 48, func(q *Parser) BitmapSize {
			return BitmapSize{
				IndexSubTableArrayOffset: q.Offset32(),
				IndexTablesSize:          q.Uint32(),
				NumberOfIndexSubTables:   q.Uint32(),
				ColorRef:                 q.Uint32(),
				Hori:                     readSbitLineMetrics(q),
				Vert:                     readSbitLineMetrics(q),
				StartGlyphIndex:          GlyphIndex(q.Uint16()),
				EndGlyphIndex:            GlyphIndex(q.Uint16()),
				PPEMX:                    q.Uint8(),
				PPEMY:                    q.Uint8(),
				BitDepth:                 q.Uint8(),
				Flags:                    q.Int8(),
			}
		})
		return sizes, q.Err()
	})
	return t, nil
}

func decodeEBLC(p *Parser, ctx *tableContext) (Table, error) {
	return decodeBitmapLocation(p)
}

func decodeCBLC(p *Parser, ctx *tableContext) (Table, error) {
	return decodeBitmapLocation(p)
}

// BitmapDataTable holds embedded bitmap data, for tables 'EBDT' and 'CBDT'.
// The data is located with the corresponding location table.
type BitmapDataTable struct {
	tableBase
	MajorVersion uint16
	MinorVersion uint16
}

func decodeBitmapData(p *Parser) (*BitmapDataTable, error) {
	t := &BitmapDataTable{}
	t.tableBase = newTableBase(p, t)
	t.MajorVersion = p.Uint16()
	t.MinorVersion = p.Uint16()
	return t, p.Err()
}

func decodeEBDT(p *Parser, ctx *tableContext) (Table, error) {
	return decodeBitmapData(p)
}

func decodeCBDT(p *Parser, ctx *tableContext) (Table, error) {
	return decodeBitmapData(p)
}

// EBScTable defines bitmap strikes which are scaled from other strikes.
type EBScTable struct {
	tableBase
	MajorVersion uint16
	MinorVersion uint16
	Scales       []BitmapScale
}

// BitmapScale maps a size without strike to a substitute strike.
type BitmapScale struct {
	Hori            SbitLineMetrics
	Vert            SbitLineMetrics
	PPEMX           uint8
	PPEMY           uint8
	SubstitutePPEMX uint8
	SubstitutePPEMY uint8
}

func decodeEBSC(p *Parser, ctx *tableContext) (Table, error) {
	t := &EBScTable{}
	t.tableBase = newTableBase(p, t)
	t.MajorVersion = p.Uint16()
	t.MinorVersion = p.Uint16()
	t.Scales = readArray(p, int(p.Uint32()), 28, func(p *Parser) BitmapScale {
		return BitmapScale{
			Hori:            readSbitLineMetrics(p),
			Vert:            readSbitLineMetrics(p),
			PPEMX:           p.Uint8(),
			PPEMY:           p.Uint8(),
			SubstitutePPEMX: p.Uint8(),
			SubstitutePPEMY: p.Uint8(),
		}
	})
	if err := p.Err(); err != nil {
		return nil, err
	}
	return t, p.VerifyLength()
}

// SbixTable holds bitmap graphics (e.g. PNG) per glyph and strike.
type SbixTable struct {
	tableBase
	Version       uint16
	Flags         []bool
	StrikeOffsets []uint32
}

// SbixStrike is the set of glyph images of one pixel size.
type SbixStrike struct {
	PPEM              uint16
	PPI               uint16
	GlyphDataOffsets  []uint32
	strikeStartInSbix int
}

// SbixGlyph is the image of a glyph in a strike.
type SbixGlyph struct {
	OriginOffsetX int16
	OriginOffsetY int16
	GraphicType   Tag
	Data          []byte
}

func decodeSbix(p *Parser, ctx *tableContext) (Table, error) {
	t := &SbixTable{}
	t.tableBase = newTableBase(p, t)
	t.Version = p.Uint16()
	t.Flags = p.Flags(16)
	t.StrikeOffsets = p.Uint32s(int(p.Uint32()))
	return t, p.Err()
}

// Strike returns strike i, with one glyph data offset per glyph plus one.
// The number of glyphs is taken from table 'maxp'.
func (t *SbixTable) Strike(i int, numGlyphs int) (*SbixStrike, error) {
	if i < 0 || i >= len(t.StrikeOffsets) {
		return nil, errFontFormat("sbix strike index out of range")
	}
	q := t.at(int(t.StrikeOffsets[i]))
	s := &SbixStrike{strikeStartInSbix: int(t.StrikeOffsets[i])}
	s.PPEM = q.Uint16()
	s.PPI = q.Uint16()
	s.GlyphDataOffsets = q.Uint32s(numGlyphs + 1)
	return s, q.Err()
}

// Glyph returns the image of a glyph in a strike, or nil if the glyph has
// no image in this strike.
func (t *SbixTable) Glyph(s *SbixStrike, g GlyphIndex) (*SbixGlyph, error) {
	if int(g)+1 >= len(s.GlyphDataOffsets) {
		return nil, errFontFormat("sbix glyph index out of range")
	}
	start, end := s.GlyphDataOffsets[g], s.GlyphDataOffsets[g+1]
	if end <= start+8 {
		return nil, nil
	}
	q := t.at(s.strikeStartInSbix + int(start))
	glyph := &SbixGlyph{OriginOffsetX: q.Int16(), OriginOffsetY: q.Int16(), GraphicType: q.Tag()}
	glyph.Data = q.ReadBytes(int(end - start - 8))
	return glyph, q.Err()
}
