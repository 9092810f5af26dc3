package ot

import (
	"fmt"
	"sort"
)

// --- kern ------------------------------------------------------------------

// KernTable holds kerning pairs. Both the OpenType (Microsoft) and the Apple
// flavours of the table header are understood; only format 0 sub-tables are
// decoded, others are skipped with a warning.
type KernTable struct {
	tableBase
	Version   uint32
	SubTables []KernSubTable
}

// KernSubTable is a format 0 kern sub-table: an ordered list of glyph pairs.
type KernSubTable struct {
	Version  uint16
	Coverage uint16
	Pairs    []KernPair // ordered by left and right glyph
}

// KernPair is the kerning value for a pair of glyphs, in design units.
type KernPair struct {
	Left  GlyphIndex
	Right GlyphIndex
	Value int16
}

// Horizontal reports whether the sub-table has horizontal kerning data.
func (st KernSubTable) Horizontal() bool { return st.Coverage&0x0001 != 0 }

// Minimum reports whether the sub-table has minimum values.
func (st KernSubTable) Minimum() bool { return st.Coverage&0x0002 != 0 }

// CrossStream reports whether kerning is perpendicular to the flow of text.
func (st KernSubTable) CrossStream() bool { return st.Coverage&0x0004 != 0 }

// Override reports whether values replace the accumulated value.
func (st KernSubTable) Override() bool { return st.Coverage&0x0008 != 0 }

func decodeKern(p *Parser, ctx *tableContext) (Table, error) {
	t := &KernTable{}
	t.tableBase = newTableBase(p, t)
	var n, subheaderlen int
	if version := p.Uint32(); version == 0x00010000 {
		tracer().Debugf("font has Apple TTF kern table format")
		t.Version = version
		n, subheaderlen = int(p.Uint32()), 8
	} else {
		tracer().Debugf("font has OTF (MS) kern table format")
		t.Version = version >> 16
		n, subheaderlen = int(version&0xffff), 6
	}
	tracer().Debugf("kern table has %d sub-tables", n)
	for i := 0; i < n; i++ {
		start := p.CurrentPosition()
		st := KernSubTable{}
		var length int
		if subheaderlen == 6 {
			st.Version = p.Uint16()
			length = int(p.Uint16())
			st.Coverage = p.Uint16()
		} else {
			length = int(p.Uint32())
			st.Coverage = appleKernCoverage(p.Uint16())
			p.Skip(1, 16) // tuple index
		}
		if err := p.Err(); err != nil {
			return nil, err
		}
		if format := st.Coverage >> 8; format != 0 {
			t.warn(fmt.Sprintf("kern sub-table format %d not supported, ignoring sub-table", format))
			p.SetPosition(start + length)
			continue
		}
		nPairs := int(p.Uint16())
		p.Skip(3, 16) // binary search header
		st.Pairs = readArray(p, nPairs, 6, func(p *Parser) KernPair {
			return KernPair{Left: GlyphIndex(p.Uint16()), Right: GlyphIndex(p.Uint16()), Value: p.FWord()}
		})
		if err := p.Err(); err != nil {
			return nil, err
		}
		// For some fonts, size calculation of kern sub-tables is off; see
		// https://github.com/fonttools/fonttools/issues/314#issuecomment-118116527
		if sz := subheaderlen + 8 + 6*nPairs; sz != length {
			t.warn(fmt.Sprintf("kern sub-table size mismatch: expected 0x%x, got 0x%x", sz, length))
		}
		t.SubTables = append(t.SubTables, st)
		p.SetPosition(start + subheaderlen + 8 + 6*nPairs)
	}
	tracer().Debugf("table kern has %d sub-table(s)", len(t.SubTables))
	return t, nil
}

// appleKernCoverage converts Apple coverage bits (format in the low byte,
// vertical and cross-stream flags in the high byte) to the OpenType layout.
func appleKernCoverage(cov uint16) uint16 {
	c := (cov & 0x00ff) << 8
	if cov&0x8000 == 0 {
		c |= 0x0001
	}
	if cov&0x4000 != 0 {
		c |= 0x0004
	}
	return c
}

// Kerning returns the kerning value for a glyph pair from the first
// horizontal sub-table containing the pair.
func (t *KernTable) Kerning(left, right GlyphIndex) (int16, bool) {
	key := uint32(left)<<16 | uint32(right)
	for _, st := range t.SubTables {
		if !st.Horizontal() {
			continue
		}
		i := sort.Search(len(st.Pairs), func(i int) bool {
			return uint32(st.Pairs[i].Left)<<16|uint32(st.Pairs[i].Right) >= key
		})
		if i < len(st.Pairs) && st.Pairs[i].Left == left && st.Pairs[i].Right == right {
			return st.Pairs[i].Value, true
		}
	}
	return 0, false
}

// --- hdmx ------------------------------------------------------------------

// HdmxTable holds pre-computed advance widths per pixel size.
type HdmxTable struct {
	tableBase
	Version          uint16
	NumRecords       int16
	SizeDeviceRecord int32
	Records          []DeviceRecord
}

// DeviceRecord holds the widths of all glyphs for one pixel size.
type DeviceRecord struct {
	PixelSize uint8
	MaxWidth  uint8
	Widths    []uint8 // one per glyph
}

func decodeHdmx(p *Parser, ctx *tableContext) (Table, error) {
	maxp, err := ctx.tables.MaxP()
	if err != nil {
		return nil, fmt.Errorf("hdmx requires maxp: %w", err)
	}
	t := &HdmxTable{}
	t.tableBase = newTableBase(p, t)
	t.Version = p.Uint16()
	t.NumRecords = p.Int16()
	t.SizeDeviceRecord = p.Int32()
	if err := p.Err(); err != nil {
		return nil, err
	}
	if int(t.SizeDeviceRecord) < 2+maxp.NumGlyphs {
		return nil, fmt.Errorf("hdmx device record size %d too small for %d glyphs", t.SizeDeviceRecord, maxp.NumGlyphs)
	}
	t.Records = make([]DeviceRecord, max(0, int(t.NumRecords)))
	for i := range t.Records {
		q := t.at(8 + i*int(t.SizeDeviceRecord))
		t.Records[i] = DeviceRecord{PixelSize: q.Uint8(), MaxWidth: q.Uint8(), Widths: q.Uint8s(maxp.NumGlyphs)}
		if err := q.Err(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// --- LTSH ------------------------------------------------------------------

// LTSHTable (linear threshold) holds, per glyph, the pixel size from which
// on the glyph's advance scales linearly.
type LTSHTable struct {
	tableBase
	Version uint16
	YPels   []uint8
}

func decodeLTSH(p *Parser, ctx *tableContext) (Table, error) {
	t := &LTSHTable{}
	t.tableBase = newTableBase(p, t)
	t.Version = p.Uint16()
	t.YPels = p.Uint8s(int(p.Uint16()))
	if err := p.Err(); err != nil {
		return nil, err
	}
	return t, p.VerifyLength()
}

// --- DSIG ------------------------------------------------------------------

// DSigTable holds digital signatures of the font.
type DSigTable struct {
	tableBase
	Version    uint32
	Flags      uint16
	Signatures []SignatureRecord
}

// SignatureRecord locates a signature block.
type SignatureRecord struct {
	Format uint32
	Length uint32
	Offset uint32
}

func decodeDSig(p *Parser, ctx *tableContext) (Table, error) {
	t := &DSigTable{}
	t.tableBase = newTableBase(p, t)
	t.Version = p.Uint32()
	n := int(p.Uint16())
	t.Flags = p.Uint16()
	t.Signatures = readArray(p, n, 12, func(p *Parser) SignatureRecord {
		return SignatureRecord{Format: p.Uint32(), Length: p.Uint32(), Offset: p.Offset32()}
	})
	return t, p.Err()
}

// Signature returns the PKCS#7 signature bytes of a format 1 signature block.
func (t *DSigTable) Signature(i int) ([]byte, error) {
	if i < 0 || i >= len(t.Signatures) {
		return nil, fmt.Errorf("no signature %d", i)
	}
	q := t.at(int(t.Signatures[i].Offset))
	q.Skip(2, 16) // reserved
	sig := q.ReadBytes(int(q.Uint32()))
	return sig, q.Err()
}

// --- MERG ------------------------------------------------------------------

// MergTable controls merging of glyphs for rendering. Only the header and
// the merge entry matrix are decoded.
type MergTable struct {
	tableBase
	Version                 uint16
	MergeClassCount         uint16
	MergeDataOffset         uint16
	ClassDefCount           uint16
	OffsetToClassDefOffsets uint16
}

func decodeMerg(p *Parser, ctx *tableContext) (Table, error) {
	t := &MergTable{}
	t.tableBase = newTableBase(p, t)
	t.Version = p.Uint16()
	t.MergeClassCount = p.Uint16()
	t.MergeDataOffset = p.Offset16()
	t.ClassDefCount = p.Uint16()
	t.OffsetToClassDefOffsets = p.Offset16()
	if err := p.Err(); err != nil {
		return nil, err
	}
	t.warn("MERG table is decoded partially")
	return t, nil
}

// MergeEntries returns the merge entry matrix, one row per merge class.
func (t *MergTable) MergeEntries() ([][]uint8, error) {
	q := t.at(int(t.MergeDataOffset))
	n := int(t.MergeClassCount)
	rows := readArray(q, n, n, func(q *Parser) []uint8 { return q.Uint8s(n) })
	return rows, q.Err()
}

// --- meta ------------------------------------------------------------------

// MetaTable holds metadata about the font, tagged by data type, e.g. 'dlng'
// (design languages) or 'slng' (supported languages).
type MetaTable struct {
	tableBase
	Version  uint32
	Flags    uint32
	DataMaps []MetaDataMap
}

// MetaDataMap locates metadata of one tag.
type MetaDataMap struct {
	Tag    Tag
	Offset uint32 // from start of table
	Length uint32
}

func decodeMeta(p *Parser, ctx *tableContext) (Table, error) {
	t := &MetaTable{}
	t.tableBase = newTableBase(p, t)
	t.Version = p.Uint32()
	t.Flags = p.Uint32()
	p.Skip(1, 32) // reserved
	t.DataMaps = readArray(p, int(p.Uint32()), 12, func(p *Parser) MetaDataMap {
		return MetaDataMap{Tag: p.Tag(), Offset: p.Offset32(), Length: p.Uint32()}
	})
	return t, p.Err()
}

// Data returns the metadata for a tag.
func (t *MetaTable) Data(tag Tag) ([]byte, bool) {
	for _, m := range t.DataMaps {
		if m.Tag == tag {
			q := t.at(int(m.Offset))
			b := q.ReadBytes(int(m.Length))
			return b, q.Err() == nil
		}
	}
	return nil, false
}

// --- PCLT ------------------------------------------------------------------

// PCLTTable holds information for PCL 5 printers.
type PCLTTable struct {
	tableBase
	Version             float64
	FontNumber          uint32
	Pitch               uint16
	XHeight             uint16
	Style               uint16
	TypeFamily          uint16
	CapHeight           uint16
	SymbolSet           uint16
	Typeface            string
	CharacterComplement []uint8
	FileName            string
	StrokeWeight        int8
	WidthType           int8
	SerifStyle          uint8
}

func decodePCLT(p *Parser, ctx *tableContext) (Table, error) {
	t := &PCLTTable{}
	t.tableBase = newTableBase(p, t)
	t.Version = p.LegacyFixed()
	t.FontNumber = p.Uint32()
	t.Pitch = p.Uint16()
	t.XHeight = p.Uint16()
	t.Style = p.Uint16()
	t.TypeFamily = p.Uint16()
	t.CapHeight = p.Uint16()
	t.SymbolSet = p.Uint16()
	t.Typeface = string(p.ReadBytes(16))
	t.CharacterComplement = p.Uint8s(8)
	t.FileName = string(p.ReadBytes(6))
	t.StrokeWeight = p.Int8()
	t.WidthType = p.Int8()
	t.SerifStyle = p.Uint8()
	p.Skip(1, 8) // reserved
	if err := p.Err(); err != nil {
		return nil, err
	}
	return t, p.VerifyLength()
}

// --- VDMX ------------------------------------------------------------------

// VDMXTable holds vertical device metrics per pixel size and aspect ratio.
type VDMXTable struct {
	tableBase
	Version   uint16
	NumRecs   uint16
	RatRanges []RatioRange
	Offsets   []uint16 // one group offset per ratio range
}

// RatioRange is an aspect ratio range, referring to a VDMX group.
type RatioRange struct {
	CharSet     uint8
	XRatio      uint8
	YStartRatio uint8
	YEndRatio   uint8
}

// VDMXGroup holds the y extents for a range of pixel heights.
type VDMXGroup struct {
	StartSize uint8
	EndSize   uint8
	Records   []VDMXRecord
}

// VDMXRecord holds the y extents for one pixel height.
type VDMXRecord struct {
	YPelHeight uint16
	YMax       int16
	YMin       int16
}

func decodeVDMX(p *Parser, ctx *tableContext) (Table, error) {
	t := &VDMXTable{}
	t.tableBase = newTableBase(p, t)
	t.Version = p.Uint16()
	t.NumRecs = p.Uint16()
	numRatios := int(p.Uint16())
	t.RatRanges = readArray(p, numRatios, 4, func(p *Parser) RatioRange {
		return RatioRange{CharSet: p.Uint8(), XRatio: p.Uint8(), YStartRatio: p.Uint8(), YEndRatio: p.Uint8()}
	})
	t.Offsets = p.Uint16s(numRatios)
	return t, p.Err()
}

// Group returns the VDMX group for ratio range i.
func (t *VDMXTable) Group(i int) (*VDMXGroup, error) {
	if i < 0 || i >= len(t.Offsets) {
		return nil, fmt.Errorf("no VDMX ratio range %d", i)
	}
	q := t.at(int(t.Offsets[i]))
	n := int(q.Uint16())
	g := &VDMXGroup{StartSize: q.Uint8(), EndSize: q.Uint8()}
	g.Records = readArray(q, n, 6, func(q *Parser) VDMXRecord {
		return VDMXRecord{YPelHeight: q.Uint16(), YMax: q.Int16(), YMin: q.Int16()}
	})
	return g, q.Err()
}

// --- vhea / vmtx -----------------------------------------------------------

// VHeaTable contains information for vertical layout.
type VHeaTable struct {
	tableBase
	Version              float64
	VertTypoAscender     int16
	VertTypoDescender    int16
	VertTypoLineGap      int16
	AdvanceHeightMax     int16
	MinTopSideBearing    int16
	MinBottomSideBearing int16
	YMaxExtent           int16
	CaretSlopeRise       int16
	CaretSlopeRun        int16
	CaretOffset          int16
	MetricDataFormat     int16
	NumOfLongVerMetrics  int
}

func decodeVHea(p *Parser, ctx *tableContext) (Table, error) {
	t := &VHeaTable{}
	t.tableBase = newTableBase(p, t)
	t.Version = p.LegacyFixed()
	t.VertTypoAscender = p.Int16()
	t.VertTypoDescender = p.Int16()
	t.VertTypoLineGap = p.Int16()
	t.AdvanceHeightMax = p.Int16()
	t.MinTopSideBearing = p.Int16()
	t.MinBottomSideBearing = p.Int16()
	t.YMaxExtent = p.Int16()
	t.CaretSlopeRise = p.Int16()
	t.CaretSlopeRun = p.Int16()
	t.CaretOffset = p.Int16()
	p.Skip(4, 16) // reserved
	t.MetricDataFormat = p.Int16()
	t.NumOfLongVerMetrics = int(p.Uint16())
	if err := p.Err(); err != nil {
		return nil, err
	}
	return t, p.VerifyLength()
}

// VMtxTable contains metric information for the vertical layout of each of
// the glyphs: advance height and top side bearing. Glyphs beyond the long
// metrics share the advance height of the last long metric.
type VMtxTable struct {
	tableBase
	NumOfLongVerMetrics int
	NumGlyphs           int
	VMetrics            *Lazy[[]LongMetric]
	TopSideBearings     *Lazy[[]int16]
}

func decodeVMtx(p *Parser, ctx *tableContext) (Table, error) {
	vhea, err := tableAs[*VHeaTable](ctx.tables, "vhea")
	if err != nil {
		return nil, fmt.Errorf("vmtx requires vhea: %w", err)
	}
	maxp, err := ctx.tables.MaxP()
	if err != nil {
		return nil, fmt.Errorf("vmtx requires maxp: %w", err)
	}
	t := &VMtxTable{NumOfLongVerMetrics: vhea.NumOfLongVerMetrics, NumGlyphs: maxp.NumGlyphs}
	t.tableBase = newTableBase(p, t)
	t.VMetrics, t.TopSideBearings, err = decodeLongMetrics(&t.record, t.NumOfLongVerMetrics, t.NumGlyphs)
	return t, err
}

// Metrics returns the advance height and top side bearing for a glyph.
func (t *VMtxTable) Metrics(g GlyphIndex) (uint16, int16, bool) {
	metrics, err := t.VMetrics.Get()
	if err != nil {
		return 0, 0, false
	}
	bearings, err := t.TopSideBearings.Get()
	if err != nil {
		return 0, 0, false
	}
	m, ok := longMetricFor(g, t.NumGlyphs, metrics, bearings)
	return m.Advance, m.SideBearing, ok
}
