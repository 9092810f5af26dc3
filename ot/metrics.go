package ot

import (
	"fmt"
	"time"
)

// HeadTable gives global information about the font.
type HeadTable struct {
	tableBase
	MajorVersion       uint16
	MinorVersion       uint16
	FontRevision       float64
	CheckSumAdjustment uint32
	MagicNumber        uint32
	Flags              []bool // 16 flags, most significant bit first
	UnitsPerEm         uint16 // values 16 … 16384 are valid
	Created            time.Time
	Modified           time.Time
	XMin, YMin         int16
	XMax, YMax         int16
	MacStyle           []bool
	LowestRecPPEM      uint16
	FontDirectionHint  int16
	IndexToLocFormat   int16 // needed to interpret loca table
	GlyphDataFormat    int16
}

const headMagicNumber = 0x5f0f3cf5

func decodeHead(p *Parser, ctx *tableContext) (Table, error) {
	t := &HeadTable{}
	t.tableBase = newTableBase(p, t)
	t.MajorVersion = p.Uint16()
	t.MinorVersion = p.Uint16()
	t.FontRevision = p.Fixed()
	t.CheckSumAdjustment = p.Uint32()
	t.MagicNumber = p.Uint32()
	t.Flags = p.Flags(16)
	t.UnitsPerEm = p.Uint16()
	t.Created = p.LongDateTime()
	t.Modified = p.LongDateTime()
	t.XMin = p.Int16()
	t.YMin = p.Int16()
	t.XMax = p.Int16()
	t.YMax = p.Int16()
	t.MacStyle = p.Flags(16)
	t.LowestRecPPEM = p.Uint16()
	t.FontDirectionHint = p.Int16()
	t.IndexToLocFormat = p.Int16()
	t.GlyphDataFormat = p.Int16()
	if err := p.Err(); err != nil {
		return nil, err
	}
	if t.MagicNumber != headMagicNumber {
		t.warn(fmt.Sprintf("unexpected magic number 0x%08x", t.MagicNumber))
	}
	if t.UnitsPerEm < 16 || t.UnitsPerEm > 16384 {
		t.warn(fmt.Sprintf("unitsPerEm %d out of range", t.UnitsPerEm))
	}
	return t, p.VerifyLength()
}

// HHeaTable contains information for horizontal layout.
type HHeaTable struct {
	tableBase
	MajorVersion        uint16
	MinorVersion        uint16
	Ascender            int16
	Descender           int16
	LineGap             int16
	AdvanceWidthMax     uint16
	MinLeftSideBearing  int16
	MinRightSideBearing int16
	XMaxExtent          int16
	CaretSlopeRise      int16
	CaretSlopeRun       int16
	CaretOffset         int16
	MetricDataFormat    int16
	NumberOfHMetrics    int
}

func decodeHHea(p *Parser, ctx *tableContext) (Table, error) {
	t := &HHeaTable{}
	t.tableBase = newTableBase(p, t)
	t.MajorVersion = p.Uint16()
	t.MinorVersion = p.Uint16()
	t.Ascender = p.FWord()
	t.Descender = p.FWord()
	t.LineGap = p.FWord()
	t.AdvanceWidthMax = p.UFWord()
	t.MinLeftSideBearing = p.FWord()
	t.MinRightSideBearing = p.FWord()
	t.XMaxExtent = p.FWord()
	t.CaretSlopeRise = p.Int16()
	t.CaretSlopeRun = p.Int16()
	t.CaretOffset = p.Int16()
	p.Skip(4, 16) // reserved
	t.MetricDataFormat = p.Int16()
	t.NumberOfHMetrics = int(p.Uint16())
	if err := p.Err(); err != nil {
		return nil, err
	}
	return t, p.VerifyLength()
}

// MaxPTable establishes the memory requirements for this font.
// The 'maxp' table contains a count for the number of glyphs in the font.
// Version 0.5 is used by fonts with CFF outlines and contains nothing but the
// glyph count; version 1.0 adds the TrueType limits.
type MaxPTable struct {
	tableBase
	Version               float64
	NumGlyphs             int
	MaxPoints             uint16
	MaxContours           uint16
	MaxCompositePoints    uint16
	MaxCompositeContours  uint16
	MaxZones              uint16
	MaxTwilightPoints     uint16
	MaxStorage            uint16
	MaxFunctionDefs       uint16
	MaxInstructionDefs    uint16
	MaxStackElements      uint16
	MaxSizeOfInstructions uint16
	MaxComponentElements  uint16
	MaxComponentDepth     uint16
}

func decodeMaxP(p *Parser, ctx *tableContext) (Table, error) {
	t := &MaxPTable{}
	t.tableBase = newTableBase(p, t)
	t.Version = p.LegacyFixed()
	t.NumGlyphs = int(p.Uint16())
	if t.Version == 1 {
		t.MaxPoints = p.Uint16()
		t.MaxContours = p.Uint16()
		t.MaxCompositePoints = p.Uint16()
		t.MaxCompositeContours = p.Uint16()
		t.MaxZones = p.Uint16()
		t.MaxTwilightPoints = p.Uint16()
		t.MaxStorage = p.Uint16()
		t.MaxFunctionDefs = p.Uint16()
		t.MaxInstructionDefs = p.Uint16()
		t.MaxStackElements = p.Uint16()
		t.MaxSizeOfInstructions = p.Uint16()
		t.MaxComponentElements = p.Uint16()
		t.MaxComponentDepth = p.Uint16()
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return t, p.VerifyLength()
}

// HMtxTable contains metric information for the horizontal layout each of the glyphs in
// the font. Each element in the contained hMetrics-array has two parts: the advance width
// and left side bearing. The value NumberOfHMetrics is taken from the `hhea` table. In
// a monospaced font, only one entry is required but that entry may not be omitted.
// Optionally, an array of left side bearings follows.
// The corresponding glyphs are assumed to have the same
// advance width as that found in the last entry in the hMetrics array. Since there
// must be a left side bearing and an advance width associated with each glyph in the font,
// the number of entries in this array is derived from the total number of glyphs in the
// font minus the value `HHea.NumberOfHMetrics`, which is copied into the
// HMtxTable for easier access.
type HMtxTable struct {
	tableBase
	NumberOfHMetrics int
	NumGlyphs        int
	HMetrics         *Lazy[[]LongMetric]
	LeftSideBearings *Lazy[[]int16]
}

// LongMetric is one long metric record of table hmtx or vmtx: an advance
// and a side bearing.
type LongMetric struct {
	Advance     uint16
	SideBearing int16
}

func decodeHMtx(p *Parser, ctx *tableContext) (Table, error) {
	hhea, err := ctx.tables.HHea()
	if err != nil {
		return nil, fmt.Errorf("hmtx requires hhea: %w", err)
	}
	maxp, err := ctx.tables.MaxP()
	if err != nil {
		return nil, fmt.Errorf("hmtx requires maxp: %w", err)
	}
	t := &HMtxTable{NumberOfHMetrics: hhea.NumberOfHMetrics, NumGlyphs: maxp.NumGlyphs}
	t.tableBase = newTableBase(p, t)
	t.HMetrics, t.LeftSideBearings, err = decodeLongMetrics(&t.record, t.NumberOfHMetrics, t.NumGlyphs)
	return t, err
}

// decodeLongMetrics sets up lazy access to the metrics arrays shared by hmtx
// and vmtx.
func decodeLongMetrics(r *record, numberOfMetrics, numGlyphs int) (*Lazy[[]LongMetric], *Lazy[[]int16], error) {
	if numberOfMetrics < 0 || numberOfMetrics > numGlyphs {
		return nil, nil, fmt.Errorf("invalid number of long metrics %d (numGlyphs=%d)", numberOfMetrics, numGlyphs)
	}
	metrics := NewLazy(func() ([]LongMetric, error) {
		q := r.at(0)
		m := readArray(q, numberOfMetrics, 4, func(q *Parser) LongMetric {
			return LongMetric{Advance: q.Uint16(), SideBearing: q.Int16()}
		})
		return m, q.Err()
	})
	bearings := NewLazy(func() ([]int16, error) {
		q := r.at(4 * numberOfMetrics)
		return q.Int16s(numGlyphs - numberOfMetrics), q.Err()
	})
	return metrics, bearings, nil
}

func longMetricFor(g GlyphIndex, numGlyphs int, metrics []LongMetric, bearings []int16) (LongMetric, bool) {
	if int(g) >= numGlyphs || len(metrics) == 0 {
		return LongMetric{}, false
	}
	if int(g) < len(metrics) {
		return metrics[g], true
	}
	i := int(g) - len(metrics)
	if i >= len(bearings) {
		return LongMetric{}, false
	}
	return LongMetric{Advance: metrics[len(metrics)-1].Advance, SideBearing: bearings[i]}, true
}

// Metrics returns the advance width and left side bearing for a glyph.
func (t *HMtxTable) Metrics(g GlyphIndex) (uint16, int16, bool) {
	metrics, err := t.HMetrics.Get()
	if err != nil {
		return 0, 0, false
	}
	bearings, err := t.LeftSideBearings.Get()
	if err != nil {
		return 0, 0, false
	}
	m, ok := longMetricFor(g, t.NumGlyphs, metrics, bearings)
	return m.Advance, m.SideBearing, ok
}
