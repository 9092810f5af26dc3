package ot

import (
	"fmt"
)

// --- GDEF table ------------------------------------------------------------

// GDefTable is the Glyph Definition (GDEF) table. It provides various glyph
// properties used in OpenType Layout processing.
//
// Three versions are defined. Version 1.0 contains offsets to a Glyph Class
// Definition table, an Attachment List table, a Ligature Caret List table and
// a Mark Attachment Class Definition table. Version 1.2 adds an offset to a Mark
// Glyph Sets Definition table, version 1.3 an offset to an Item Variation Store.
// All sub-tables are decoded on first access; NULL offsets yield nil.
type GDefTable struct {
	tableBase
	Header             GDefHeader
	GlyphClassDef      *Lazy[*ClassDefinitions]
	AttachList         *Lazy[*AttachList]
	LigCaretList       *Lazy[*LigCaretList]
	MarkAttachClassDef *Lazy[*ClassDefinitions]
	MarkGlyphSets      *Lazy[*MarkGlyphSets]
	ItemVarStore       *Lazy[*ItemVariationStore]
}

// GDefHeader contains the version and sub-table offsets of a GDEF table.
type GDefHeader struct {
	Major                    uint16
	Minor                    uint16
	GlyphClassDefOffset      uint16
	AttachListOffset         uint16
	LigCaretListOffset       uint16
	MarkAttachClassDefOffset uint16
	MarkGlyphSetsDefOffset   uint16 // version ≥ 1.2
	ItemVarStoreOffset       uint32 // version 1.3
}

// Version returns major and minor version numbers of the GDEF table.
func (h GDefHeader) Version() (int, int) {
	return int(h.Major), int(h.Minor)
}

func decodeGDef(p *Parser, ctx *tableContext) (Table, error) {
	t := &GDefTable{}
	t.tableBase = newTableBase(p, t)
	h := &t.Header
	h.Major = p.Uint16()
	h.Minor = p.Uint16()
	h.GlyphClassDefOffset = p.Offset16()
	h.AttachListOffset = p.Offset16()
	h.LigCaretListOffset = p.Offset16()
	h.MarkAttachClassDefOffset = p.Offset16()
	if h.Minor >= 2 {
		h.MarkGlyphSetsDefOffset = p.Offset16()
	}
	if h.Minor >= 3 {
		h.ItemVarStoreOffset = p.Offset32()
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	if h.Major != 1 || h.Minor > 3 {
		t.warn(fmt.Sprintf("unsupported GDEF version %d.%d", h.Major, h.Minor))
	}
	r := t.record
	t.GlyphClassDef = NewLazy(func() (*ClassDefinitions, error) {
		return optionalAt(r, int(h.GlyphClassDefOffset), decodeClassDefinitions)
	})
	t.AttachList = NewLazy(func() (*AttachList, error) {
		return optionalAt(r, int(h.AttachListOffset), decodeAttachList)
	})
	t.LigCaretList = NewLazy(func() (*LigCaretList, error) {
		return optionalAt(r, int(h.LigCaretListOffset), decodeLigCaretList)
	})
	t.MarkAttachClassDef = NewLazy(func() (*ClassDefinitions, error) {
		return optionalAt(r, int(h.MarkAttachClassDefOffset), decodeClassDefinitions)
	})
	t.MarkGlyphSets = NewLazy(func() (*MarkGlyphSets, error) {
		return optionalAt(r, int(h.MarkGlyphSetsDefOffset), decodeMarkGlyphSets)
	})
	t.ItemVarStore = NewLazy(func() (*ItemVariationStore, error) {
		return optionalAt(r, int(h.ItemVarStoreOffset), decodeItemVariationStore)
	})
	tracer().Debugf("GDEF table has version %d.%d", h.Major, h.Minor)
	return t, nil
}

// GlyphClass returns the glyph class of a glyph, or 0 if the font does not
// classify glyphs or the glyph is unclassified.
func (t *GDefTable) GlyphClass(g GlyphIndex) GlyphClassDefEnum {
	cdef, err := t.GlyphClassDef.Get()
	if err != nil || cdef == nil {
		return 0
	}
	return GlyphClassDefEnum(cdef.Lookup(g))
}

// AttachList lists attachment points of glyphs, as contour point indices.
type AttachList struct {
	record
	CoverageOffset     uint16
	AttachPointOffsets []uint16
}

func decodeAttachList(p *Parser) (*AttachList, error) {
	l := &AttachList{record: newRecord(p)}
	l.CoverageOffset = p.Offset16()
	l.AttachPointOffsets = p.Uint16s(int(p.Uint16()))
	return l, p.Err()
}

// Coverage returns the glyphs which have attachment points.
func (l *AttachList) Coverage() (*Coverage, error) {
	return decodeCoverage(l.at(int(l.CoverageOffset)))
}

// Points returns the contour point indices for coverage index i.
func (l *AttachList) Points(i int) ([]uint16, error) {
	if i < 0 || i >= len(l.AttachPointOffsets) {
		return nil, fmt.Errorf("attach list has no entry %d", i)
	}
	q := l.at(int(l.AttachPointOffsets[i]))
	points := q.Uint16s(int(q.Uint16()))
	return points, q.Err()
}

// LigCaretList defines caret positions for ligatures.
type LigCaretList struct {
	record
	CoverageOffset  uint16
	LigGlyphOffsets []uint16
}

// CaretValue is a caret position within a ligature. Format 1 has a design
// unit coordinate, format 2 a contour point, format 3 a coordinate with a
// device table.
type CaretValue struct {
	Format       uint16
	Coordinate   int16
	PointIndex   uint16
	DeviceOffset uint16
}

func decodeLigCaretList(p *Parser) (*LigCaretList, error) {
	l := &LigCaretList{record: newRecord(p)}
	l.CoverageOffset = p.Offset16()
	l.LigGlyphOffsets = p.Uint16s(int(p.Uint16()))
	return l, p.Err()
}

// Coverage returns the ligature glyphs which have carets defined.
func (l *LigCaretList) Coverage() (*Coverage, error) {
	return decodeCoverage(l.at(int(l.CoverageOffset)))
}

// Carets returns the caret values of the ligature with coverage index i.
func (l *LigCaretList) Carets(i int) ([]CaretValue, error) {
	if i < 0 || i >= len(l.LigGlyphOffsets) {
		return nil, fmt.Errorf("ligature caret list has no entry %d", i)
	}
	q := l.at(int(l.LigGlyphOffsets[i]))
	lig := newRecord(q)
	offsets := q.Uint16s(int(q.Uint16()))
	if err := q.Err(); err != nil {
		return nil, err
	}
	carets := make([]CaretValue, len(offsets))
	for j, offset := range offsets {
		c := lig.at(int(offset))
		carets[j].Format = c.Uint16()
		switch carets[j].Format {
		case 1:
			carets[j].Coordinate = c.Int16()
		case 2:
			carets[j].PointIndex = c.Uint16()
		case 3:
			carets[j].Coordinate = c.Int16()
			carets[j].DeviceOffset = c.Offset16()
		}
		if err := c.Err(); err != nil {
			return nil, err
		}
	}
	return carets, nil
}

// MarkGlyphSets holds the coverage tables of mark glyph sets, referenced by
// lookups with flag LOOKUP_FLAG_USE_MARK_FILTERING_SET.
type MarkGlyphSets struct {
	record
	Format          uint16
	CoverageOffsets []uint32
}

func decodeMarkGlyphSets(p *Parser) (*MarkGlyphSets, error) {
	s := &MarkGlyphSets{record: newRecord(p)}
	s.Format = p.Uint16()
	s.CoverageOffsets = p.Uint32s(int(p.Uint16()))
	return s, p.Err()
}

// Set returns the coverage of mark glyph set i.
func (s *MarkGlyphSets) Set(i int) (*Coverage, error) {
	if i < 0 || i >= len(s.CoverageOffsets) {
		return nil, fmt.Errorf("no mark glyph set %d", i)
	}
	return decodeCoverage(s.at(int(s.CoverageOffsets[i])))
}

// ItemVariationStore is the header of an item variation store, as used by
// variable fonts. Variation data is not decoded.
type ItemVariationStore struct {
	record
	Format                    uint16
	VariationRegionListOffset uint32
	ItemVariationDataOffsets  []uint32
}

func decodeItemVariationStore(p *Parser) (*ItemVariationStore, error) {
	s := &ItemVariationStore{record: newRecord(p)}
	s.Format = p.Uint16()
	s.VariationRegionListOffset = p.Offset32()
	s.ItemVariationDataOffsets = p.Uint32s(int(p.Uint16()))
	return s, p.Err()
}

// --- BASE table ------------------------------------------------------------

// BaseTable is the Baseline table (BASE). It provides information used to align
// glyphs of different scripts and sizes in a line of text, whether the glyphs
// are in the same font or in different fonts.
//
// The BASE table begins with offsets to Axis tables that describe layout data for
// the horizontal and vertical layout directions of text. A font can provide layout
// data for both text directions or for only one text direction.
type BaseTable struct {
	tableBase
	MajorVersion       uint16
	MinorVersion       uint16
	HorizAxisOffset    uint16
	VertAxisOffset     uint16
	ItemVarStoreOffset uint32 // version 1.1
	HorizAxis          *Lazy[*AxisTable]
	VertAxis           *Lazy[*AxisTable]
	ItemVarStore       *Lazy[*ItemVariationStore]
}

func decodeBase(p *Parser, ctx *tableContext) (Table, error) {
	t := &BaseTable{}
	t.tableBase = newTableBase(p, t)
	t.MajorVersion = p.Uint16()
	t.MinorVersion = p.Uint16()
	t.HorizAxisOffset = p.Offset16()
	t.VertAxisOffset = p.Offset16()
	if t.MajorVersion == 1 && t.MinorVersion >= 1 {
		t.ItemVarStoreOffset = p.Offset32()
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	r := t.record
	t.HorizAxis = NewLazy(func() (*AxisTable, error) {
		return optionalAt(r, int(t.HorizAxisOffset), decodeAxisTable)
	})
	t.VertAxis = NewLazy(func() (*AxisTable, error) {
		return optionalAt(r, int(t.VertAxisOffset), decodeAxisTable)
	})
	t.ItemVarStore = NewLazy(func() (*ItemVariationStore, error) {
		return optionalAt(r, int(t.ItemVarStoreOffset), decodeItemVariationStore)
	})
	return t, nil
}

// AxisTable holds the baseline data for one layout direction.
type AxisTable struct {
	// The BaseTagList enumerates all baselines used to render the scripts in
	// the text layout direction. May be empty.
	BaselineTags []Tag
	// For each script a BaseScriptRecord identifies the script and references
	// its layout data, ordered alphabetically by script tag.
	BaseScripts []BaseScriptRecord
}

// BaseScriptRecord refers to the baseline data of a script.
type BaseScriptRecord struct {
	Tag    Tag
	Script *Lazy[*BaseScript]
}

func decodeAxisTable(p *Parser) (*AxisTable, error) {
	axis := newRecord(p)
	tagListOffset := p.Offset16()
	scriptListOffset := p.Offset16()
	if err := p.Err(); err != nil {
		return nil, err
	}
	a := &AxisTable{}
	if tagListOffset != 0 {
		q := axis.at(int(tagListOffset))
		a.BaselineTags = readArray(q, int(q.Uint16()), 4, (*Parser).Tag)
		if err := q.Err(); err != nil {
			return nil, err
		}
	}
	if scriptListOffset != 0 {
		q := axis.at(int(scriptListOffset))
		list := newRecord(q)
		records := readTagRecords(q)
		if err := q.Err(); err != nil {
			return nil, err
		}
		a.BaseScripts = make([]BaseScriptRecord, len(records))
		for i, rec := range records {
			offset := int(rec.Offset)
			a.BaseScripts[i] = BaseScriptRecord{
				Tag: rec.Tag,
				Script: NewLazy(func() (*BaseScript, error) {
					return decodeBaseScript(list.at(offset))
				}),
			}
		}
	}
	return a, nil
}

// Script returns the baseline data for a script, or nil.
func (a *AxisTable) Script(tag Tag) (*BaseScript, error) {
	for _, rec := range a.BaseScripts {
		if rec.Tag == tag {
			return rec.Script.Get()
		}
	}
	return nil, nil
}

// BaseScript holds the baseline values and extents of a script.
type BaseScript struct {
	record
	BaseValuesOffset    uint16
	DefaultMinMaxOffset uint16
	LangSysRecords      []TagRecord // offsets to MinMax tables
}

func decodeBaseScript(p *Parser) (*BaseScript, error) {
	s := &BaseScript{record: newRecord(p)}
	s.BaseValuesOffset = p.Offset16()
	s.DefaultMinMaxOffset = p.Offset16()
	s.LangSysRecords = readTagRecords(p)
	return s, p.Err()
}

// BaseValues returns the baseline coordinates of the script, or nil.
func (s *BaseScript) BaseValues() (*BaseValues, error) {
	return optionalAt(s.record, int(s.BaseValuesOffset), decodeBaseValues)
}

// DefaultMinMax returns the default extents of the script, or nil.
func (s *BaseScript) DefaultMinMax() (*MinMax, error) {
	return optionalAt(s.record, int(s.DefaultMinMaxOffset), decodeMinMax)
}

// MinMax returns the extents for a language system of the script, falling back
// to the default extents.
func (s *BaseScript) MinMax(langSys Tag) (*MinMax, error) {
	for _, rec := range s.LangSysRecords {
		if rec.Tag == langSys {
			return decodeMinMax(s.at(int(rec.Offset)))
		}
	}
	return s.DefaultMinMax()
}

// BaseValues lists a coordinate per baseline tag of the axis.
type BaseValues struct {
	record
	DefaultBaselineIndex uint16
	BaseCoordOffsets     []uint16
}

func decodeBaseValues(p *Parser) (*BaseValues, error) {
	v := &BaseValues{record: newRecord(p)}
	v.DefaultBaselineIndex = p.Uint16()
	v.BaseCoordOffsets = p.Uint16s(int(p.Uint16()))
	return v, p.Err()
}

// Coord returns the i-th baseline coordinate, i being an index into the
// baseline tags of the axis.
func (v *BaseValues) Coord(i int) (*BaseCoord, error) {
	if i < 0 || i >= len(v.BaseCoordOffsets) {
		return nil, fmt.Errorf("base values have no coordinate %d", i)
	}
	return decodeBaseCoord(v.at(int(v.BaseCoordOffsets[i])))
}

// MinMax holds the minimum and maximum extents of a script or language system.
type MinMax struct {
	record
	MinCoordOffset uint16
	MaxCoordOffset uint16
	FeatMinMax     []FeatMinMaxRecord
}

// FeatMinMaxRecord holds extents which apply if a feature is active.
type FeatMinMaxRecord struct {
	FeatureTag     Tag
	MinCoordOffset uint16
	MaxCoordOffset uint16
}

func decodeMinMax(p *Parser) (*MinMax, error) {
	m := &MinMax{record: newRecord(p)}
	m.MinCoordOffset = p.Offset16()
	m.MaxCoordOffset = p.Offset16()
	m.FeatMinMax = readArray(p, int(p.Uint16()), 8, func(p *Parser) FeatMinMaxRecord {
		return FeatMinMaxRecord{FeatureTag: p.Tag(), MinCoordOffset: p.Offset16(), MaxCoordOffset: p.Offset16()}
	})
	return m, p.Err()
}

// Min returns the minimum extent, or nil.
func (m *MinMax) Min() (*BaseCoord, error) {
	return optionalAt(m.record, int(m.MinCoordOffset), decodeBaseCoord)
}

// Max returns the maximum extent, or nil.
func (m *MinMax) Max() (*BaseCoord, error) {
	return optionalAt(m.record, int(m.MaxCoordOffset), decodeBaseCoord)
}

// BaseCoord is a baseline coordinate in design units. Format 2 adds a glyph
// contour point, format 3 a device table.
type BaseCoord struct {
	Format         uint16
	Coordinate     int16
	ReferenceGlyph GlyphIndex
	BaseCoordPoint uint16
	DeviceOffset   uint16
}

func decodeBaseCoord(p *Parser) (*BaseCoord, error) {
	c := &BaseCoord{Format: p.Uint16(), Coordinate: p.Int16()}
	switch c.Format {
	case 2:
		c.ReferenceGlyph = GlyphIndex(p.Uint16())
		c.BaseCoordPoint = p.Uint16()
	case 3:
		c.DeviceOffset = p.Offset16()
	}
	return c, p.Err()
}
