package ot

import (
	"fmt"
	"math/bits"
	"strconv"
)

// GPosTable is a type representing an OpenType GPOS table
// (see https://docs.microsoft.com/en-us/typography/opentype/spec/gpos).
type GPosTable struct {
	LayoutTable
}

func decodeGPos(p *Parser, ctx *tableContext) (Table, error) {
	t := &GPosTable{}
	lyt, err := decodeLayoutTable(p, t)
	if err != nil {
		return nil, err
	}
	t.LayoutTable = lyt
	t.buildSubtable = decodeGPosSubtable
	tracer().Debugf("GPOS table version %d.%d", lyt.Header.Major, lyt.Header.Minor)
	return t, nil
}

// GPOS Table
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#table-organization

// GPOS Lookup Type Enumeration
const (
	GPosLookupTypeSingle            LayoutTableLookupType = 1 // Adjust position of a single glyph
	GPosLookupTypePair              LayoutTableLookupType = 2 // Adjust position of a pair of glyphs
	GPosLookupTypeCursive           LayoutTableLookupType = 3 // Attach cursive glyphs
	GPosLookupTypeMarkToBase        LayoutTableLookupType = 4 // Attach a combining mark to a base glyph
	GPosLookupTypeMarkToLigature    LayoutTableLookupType = 5 // Attach a combining mark to a ligature
	GPosLookupTypeMarkToMark        LayoutTableLookupType = 6 // Attach a combining mark to another mark
	GPosLookupTypeContextPos        LayoutTableLookupType = 7 // Position one or more glyphs in context
	GPosLookupTypeChainedContextPos LayoutTableLookupType = 8 // Position one or more glyphs in chained context
	GPosLookupTypeExtensionPos      LayoutTableLookupType = 9 // Extension mechanism for other positionings
)

const gposLookupTypeNames = "Single|Pair|Cursive|MarkToBase|MarkToLigature|MarkToMark|ContextPos|Chained|Ext"

var gposLookupTypeInx = [...]int{0, 7, 12, 20, 31, 46, 57, 68, 76, 80}

// GPosString interprets a layout table lookup type as a GPOS table type.
func (lt LayoutTableLookupType) GPosString() string {
	if lt >= GPosLookupTypeSingle && lt <= GPosLookupTypeExtensionPos {
		i := lt - 1
		return gposLookupTypeNames[gposLookupTypeInx[i] : gposLookupTypeInx[i+1]-1]
	}
	return strconv.Itoa(int(lt))
}

// ValueFormat is a bitmask that describes which fields are present in a ValueRecord.
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#value-record
type ValueFormat uint16

const (
	ValueFormatXPlacement ValueFormat = 0x0001 // Includes horizontal adjustment for placement
	ValueFormatYPlacement ValueFormat = 0x0002 // Includes vertical adjustment for placement
	ValueFormatXAdvance   ValueFormat = 0x0004 // Includes horizontal adjustment for advance
	ValueFormatYAdvance   ValueFormat = 0x0008 // Includes vertical adjustment for advance
	ValueFormatXPlaDevice ValueFormat = 0x0010 // Includes Device table for horizontal placement
	ValueFormatYPlaDevice ValueFormat = 0x0020 // Includes Device table for vertical placement
	ValueFormatXAdvDevice ValueFormat = 0x0040 // Includes Device table for horizontal advance
	ValueFormatYAdvDevice ValueFormat = 0x0080 // Includes Device table for vertical advance
	// Bits 0x0F00 are reserved for future use
)

// Size returns the byte size of a value record of this format.
func (vf ValueFormat) Size() int {
	return 2 * bits.OnesCount16(uint16(vf&0x00ff))
}

// ValueRecord represents a positioning adjustment for a glyph.
// The actual fields present depend on the ValueFormat bitmask.
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#value-record
type ValueRecord struct {
	XPlacement int16  // Horizontal adjustment for placement, in design units
	YPlacement int16  // Vertical adjustment for placement, in design units
	XAdvance   int16  // Horizontal adjustment for advance, in design units
	YAdvance   int16  // Vertical adjustment for advance, in design units
	XPlaDevice uint16 // Offset to Device table for horizontal placement (may be NULL)
	YPlaDevice uint16 // Offset to Device table for vertical placement (may be NULL)
	XAdvDevice uint16 // Offset to Device table for horizontal advance (may be NULL)
	YAdvDevice uint16 // Offset to Device table for vertical advance (may be NULL)
}

func readValueRecord(p *Parser, vf ValueFormat) ValueRecord {
	var v ValueRecord
	if vf&ValueFormatXPlacement != 0 {
		v.XPlacement = p.Int16()
	}
	if vf&ValueFormatYPlacement != 0 {
		v.YPlacement = p.Int16()
	}
	if vf&ValueFormatXAdvance != 0 {
		v.XAdvance = p.Int16()
	}
	if vf&ValueFormatYAdvance != 0 {
		v.YAdvance = p.Int16()
	}
	if vf&ValueFormatXPlaDevice != 0 {
		v.XPlaDevice = p.Offset16()
	}
	if vf&ValueFormatYPlaDevice != 0 {
		v.YPlaDevice = p.Offset16()
	}
	if vf&ValueFormatXAdvDevice != 0 {
		v.XAdvDevice = p.Offset16()
	}
	if vf&ValueFormatYAdvDevice != 0 {
		v.YAdvDevice = p.Offset16()
	}
	return v
}

// AnchorFormat represents the format of an Anchor table.
type AnchorFormat uint16

const (
	AnchorFormat1 AnchorFormat = 1 // Design units only
	AnchorFormat2 AnchorFormat = 2 // Design units plus contour point
	AnchorFormat3 AnchorFormat = 3 // Design units plus Device tables
)

// Anchor represents an attachment point on a glyph.
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#anchor-tables
type Anchor struct {
	Format        AnchorFormat // Format identifier
	XCoordinate   int16        // Horizontal value, in design units
	YCoordinate   int16        // Vertical value, in design units
	AnchorPoint   uint16       // Index to glyph contour point (Format 2 only)
	XDeviceOffset uint16       // Offset to Device table for X coordinate (Format 3 only)
	YDeviceOffset uint16       // Offset to Device table for Y coordinate (Format 3 only)
}

func decodeAnchor(p *Parser) (*Anchor, error) {
	a := &Anchor{Format: AnchorFormat(p.Uint16())}
	a.XCoordinate = p.Int16()
	a.YCoordinate = p.Int16()
	switch a.Format {
	case AnchorFormat1:
	case AnchorFormat2:
		a.AnchorPoint = p.Uint16()
	case AnchorFormat3:
		a.XDeviceOffset = p.Offset16()
		a.YDeviceOffset = p.Offset16()
	default:
		return nil, fmt.Errorf("unknown anchor format %d", a.Format)
	}
	return a, p.Err()
}

// MarkRecord associates a mark glyph with a class and anchor point.
// Used in GPOS Lookup Types 4, 5, and 6 (Mark attachment).
type MarkRecord struct {
	Class      uint16 // Class value for this mark
	MarkAnchor uint16 // Offset to Anchor table for this mark, from the mark array
}

// --- Positioning subtables -------------------------------------------------

func decodeGPosSubtable(p *Parser, lookupType LayoutTableLookupType) (LookupSubtable, error) {
	b := newLookupSubtableBase(p, lookupType)
	tracer().Debugf("GPOS subtable type %s, format %d", lookupType.GPosString(), b.format)
	var sub LookupSubtable
	switch lookupType {
	case GPosLookupTypeSingle:
		sub = decodeSinglePos(p, b)
	case GPosLookupTypePair:
		sub = decodePairPos(p, b)
	case GPosLookupTypeCursive:
		sub = decodeCursivePos(p, b)
	case GPosLookupTypeMarkToBase, GPosLookupTypeMarkToLigature, GPosLookupTypeMarkToMark:
		sub = decodeMarkAttachPos(p, b)
	case GPosLookupTypeContextPos:
		sub = decodeSequenceContext(p, b)
	case GPosLookupTypeChainedContextPos:
		sub = decodeChainedSequenceContext(p, b)
	case GPosLookupTypeExtensionPos:
		sub = decodeExtensionSubtable(p, b, decodeGPosSubtable)
	default:
		return nil, fmt.Errorf("unknown GPOS lookup type %d", lookupType)
	}
	return sub, p.Err()
}

// SinglePos adjusts the position of single glyphs. Format 1 applies one value
// record to all covered glyphs, format 2 has a value record per glyph.
type SinglePos struct {
	lookupSubtableBase
	ValueFormat ValueFormat
	Values      []ValueRecord
}

func decodeSinglePos(p *Parser, b lookupSubtableBase) *SinglePos {
	s := &SinglePos{lookupSubtableBase: b}
	s.CoverageOffset = p.Offset16()
	s.ValueFormat = ValueFormat(p.Uint16())
	n := 1
	if s.format == 2 {
		n = int(p.Uint16())
	}
	s.Values = readArray(p, n, s.ValueFormat.Size(), func(p *Parser) ValueRecord {
		return readValueRecord(p, s.ValueFormat)
	})
	return s
}

// PairPos adjusts the positions of glyph pairs. Format 1 lists pair sets per
// first glyph, format 2 uses class definitions for both glyphs.
type PairPos struct {
	lookupSubtableBase
	ValueFormat1     ValueFormat
	ValueFormat2     ValueFormat
	PairSetOffsets   []uint16 // format 1
	ClassDef1Offset  uint16   // format 2
	ClassDef2Offset  uint16
	Class1Count      uint16
	Class2Count      uint16
	class1RecordsPos int
}

// PairValueRecord represents a kerning pair with positioning adjustments.
// Used in GPOS Lookup Type 2 (Pair Adjustment).
type PairValueRecord struct {
	SecondGlyph GlyphIndex  // Glyph ID of second glyph in pair
	Value1      ValueRecord // Positioning for first glyph
	Value2      ValueRecord // Positioning for second glyph
}

func decodePairPos(p *Parser, b lookupSubtableBase) *PairPos {
	s := &PairPos{lookupSubtableBase: b}
	s.CoverageOffset = p.Offset16()
	s.ValueFormat1 = ValueFormat(p.Uint16())
	s.ValueFormat2 = ValueFormat(p.Uint16())
	switch s.format {
	case 1:
		s.PairSetOffsets = p.Uint16s(int(p.Uint16()))
	case 2:
		s.ClassDef1Offset = p.Offset16()
		s.ClassDef2Offset = p.Offset16()
		s.Class1Count = p.Uint16()
		s.Class2Count = p.Uint16()
		s.class1RecordsPos = p.CurrentPosition() - s.start
	default:
		s.warn(fmt.Sprintf("unknown pair positioning format %d", s.format))
	}
	return s
}

// PairSet returns the pair value records for the first glyph with coverage
// index i (format 1).
func (s *PairPos) PairSet(i int) ([]PairValueRecord, error) {
	if i < 0 || i >= len(s.PairSetOffsets) {
		return nil, fmt.Errorf("pair positioning has no pair set %d", i)
	}
	q := s.at(int(s.PairSetOffsets[i]))
	n := int(q.Uint16())
	size := 2 + s.ValueFormat1.Size() + s.ValueFormat2.Size()
	pairs := readArray(q, n, size, func(q *Parser) PairValueRecord {
		return PairValueRecord{
			SecondGlyph: GlyphIndex(q.Uint16()),
			Value1:      readValueRecord(q, s.ValueFormat1),
			Value2:      readValueRecord(q, s.ValueFormat2),
		}
	})
	return pairs, q.Err()
}

// ClassValues returns the value records for a pair of classes (format 2).
func (s *PairPos) ClassValues(class1, class2 uint16) (ValueRecord, ValueRecord, error) {
	if s.format != 2 || class1 >= s.Class1Count || class2 >= s.Class2Count {
		return ValueRecord{}, ValueRecord{}, fmt.Errorf("no class pair (%d,%d) in pair positioning", class1, class2)
	}
	size := s.ValueFormat1.Size() + s.ValueFormat2.Size()
	q := s.at(s.class1RecordsPos + (int(class1)*int(s.Class2Count)+int(class2))*size)
	v1 := readValueRecord(q, s.ValueFormat1)
	v2 := readValueRecord(q, s.ValueFormat2)
	return v1, v2, q.Err()
}

// ClassDefs returns the class definitions for first and second glyphs (format 2).
func (s *PairPos) ClassDefs() (*ClassDefinitions, *ClassDefinitions, error) {
	cd1, err := optionalAt(s.record, int(s.ClassDef1Offset), decodeClassDefinitions)
	if err != nil {
		return nil, nil, err
	}
	cd2, err := optionalAt(s.record, int(s.ClassDef2Offset), decodeClassDefinitions)
	return cd1, cd2, err
}

// EntryExitRecord holds the offsets of entry and exit anchors of a glyph.
type EntryExitRecord struct {
	EntryAnchor uint16
	ExitAnchor  uint16
}

// CursivePos attaches cursive glyphs.
type CursivePos struct {
	lookupSubtableBase
	EntryExits []EntryExitRecord
}

func decodeCursivePos(p *Parser, b lookupSubtableBase) *CursivePos {
	s := &CursivePos{lookupSubtableBase: b}
	s.CoverageOffset = p.Offset16()
	s.EntryExits = readArray(p, int(p.Uint16()), 4, func(p *Parser) EntryExitRecord {
		return EntryExitRecord{EntryAnchor: p.Offset16(), ExitAnchor: p.Offset16()}
	})
	return s
}

// Anchors returns entry and exit anchor for coverage index i. Either may be nil.
func (s *CursivePos) Anchors(i int) (entry, exit *Anchor, err error) {
	if i < 0 || i >= len(s.EntryExits) {
		return nil, nil, fmt.Errorf("cursive positioning has no entry/exit record %d", i)
	}
	if entry, err = optionalAt(s.record, int(s.EntryExits[i].EntryAnchor), decodeAnchor); err != nil {
		return
	}
	exit, err = optionalAt(s.record, int(s.EntryExits[i].ExitAnchor), decodeAnchor)
	return
}

// MarkAttachPos attaches marks to base glyphs, ligatures or other marks
// (GPOS lookup types 4, 5 and 6, which share their layout). The coverage
// table of the subtable covers the marks; the base coverage covers base glyphs,
// ligatures or the marks to attach to, respectively.
type MarkAttachPos struct {
	lookupSubtableBase
	BaseCoverageOffset uint16
	MarkClassCount     uint16
	MarkArrayOffset    uint16
	BaseArrayOffset    uint16
}

func decodeMarkAttachPos(p *Parser, b lookupSubtableBase) *MarkAttachPos {
	s := &MarkAttachPos{lookupSubtableBase: b}
	s.CoverageOffset = p.Offset16()
	s.BaseCoverageOffset = p.Offset16()
	s.MarkClassCount = p.Uint16()
	s.MarkArrayOffset = p.Offset16()
	s.BaseArrayOffset = p.Offset16()
	return s
}

// BaseCoverage returns the coverage of the glyphs marks are attached to.
func (s *MarkAttachPos) BaseCoverage() (*Coverage, error) {
	return optionalAt(s.record, int(s.BaseCoverageOffset), decodeCoverage)
}

// MarkRecords returns the mark records, one per covered mark.
func (s *MarkAttachPos) MarkRecords() ([]MarkRecord, error) {
	q := s.at(int(s.MarkArrayOffset))
	marks := readArray(q, int(q.Uint16()), 4, func(q *Parser) MarkRecord {
		return MarkRecord{Class: q.Uint16(), MarkAnchor: q.Offset16()}
	})
	return marks, q.Err()
}

// MarkAnchor returns the anchor of a mark record.
func (s *MarkAttachPos) MarkAnchor(m MarkRecord) (*Anchor, error) {
	return decodeAnchor(s.at(int(s.MarkArrayOffset) + int(m.MarkAnchor)))
}

// BaseAnchorOffsets returns, for each covered base glyph or mark, the anchor
// offsets per mark class, relative to the base array (types 4 and 6).
func (s *MarkAttachPos) BaseAnchorOffsets() ([][]uint16, error) {
	if s.lookupType == GPosLookupTypeMarkToLigature {
		return nil, fmt.Errorf("mark-to-ligature subtables have ligature arrays")
	}
	q := s.at(int(s.BaseArrayOffset))
	n := int(q.Uint16())
	classes := int(s.MarkClassCount)
	rows := readArray(q, n, 2*classes, func(q *Parser) []uint16 {
		return q.Uint16s(classes)
	})
	return rows, q.Err()
}

// LigatureAnchorOffsets returns the anchor offsets of ligature i as a matrix
// [component][mark class], relative to the ligature attach table (type 5).
func (s *MarkAttachPos) LigatureAnchorOffsets(i int) ([][]uint16, error) {
	if s.lookupType != GPosLookupTypeMarkToLigature {
		return nil, fmt.Errorf("subtable is not a mark-to-ligature subtable")
	}
	q := s.at(int(s.BaseArrayOffset))
	offsets := q.Uint16s(int(q.Uint16()))
	if err := q.Err(); err != nil {
		return nil, err
	}
	if i < 0 || i >= len(offsets) {
		return nil, fmt.Errorf("ligature array has no ligature %d", i)
	}
	l := s.at(int(s.BaseArrayOffset) + int(offsets[i]))
	classes := int(s.MarkClassCount)
	components := readArray(l, int(l.Uint16()), 2*classes, func(l *Parser) []uint16 {
		return l.Uint16s(classes)
	})
	return components, l.Err()
}
