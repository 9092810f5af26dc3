package ot

/*
From https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2:

OpenType Layout consists of five tables: the Glyph Substitution table (GSUB),
the Glyph Positioning table (GPOS), the Baseline table (BASE),
the Justification table (JSTF), and the Glyph Definition table (GDEF).
These tables use some of the same data formats.
*/

import (
	"fmt"
	"sort"
	"strings"
)

// --- Layout tables ---------------------------------------------------------

// LayoutTable is a base type for layout tables.
// OpenType specifies two such tables–GPOS and GSUB–which share some of their
// structure: a script list, a feature list, a lookup list and, from version
// 1.1 on, feature variations. Each of them is decoded on first access.
type LayoutTable struct {
	tableBase
	Header            LayoutHeader
	ScriptList        *Lazy[*ScriptList]
	FeatureList       *Lazy[*FeatureList]
	LookupList        *Lazy[*LookupList]
	FeatureVariations *Lazy[*FeatureVariations] // nil for version 1.0
	buildSubtable     func(p *Parser, lookupType LayoutTableLookupType) (LookupSubtable, error)
}

// LayoutHeader represents header information common to the layout tables.
type LayoutHeader struct {
	Major                   uint16
	Minor                   uint16
	ScriptListOffset        uint16 // from beginning of GPOS/GSUB table
	FeatureListOffset       uint16
	LookupListOffset        uint16
	FeatureVariationsOffset uint32 // version 1.1 only, may be NULL
}

// Version returns major and minor version numbers for this layout table.
func (h LayoutHeader) Version() (int, int) {
	return int(h.Major), int(h.Minor)
}

func decodeLayoutTable(p *Parser, self any) (LayoutTable, error) {
	lyt := LayoutTable{tableBase: newTableBase(p, self)}
	h := &lyt.Header
	h.Major = p.Uint16()
	h.Minor = p.Uint16()
	h.ScriptListOffset = p.Offset16()
	h.FeatureListOffset = p.Offset16()
	h.LookupListOffset = p.Offset16()
	if h.Major == 1 && h.Minor == 1 {
		h.FeatureVariationsOffset = p.Offset32()
	}
	if err := p.Err(); err != nil {
		return lyt, err
	}
	empty := h.ScriptListOffset == 0 && h.FeatureListOffset == 0 && h.LookupListOffset == 0
	lyt.ScriptList = NewLazy(func() (*ScriptList, error) {
		if empty {
			return &ScriptList{}, nil
		}
		q := lyt.at(int(h.ScriptListOffset))
		return &ScriptList{record: newRecord(q), Records: readTagRecords(q)}, q.Err()
	})
	lyt.FeatureList = NewLazy(func() (*FeatureList, error) {
		if empty {
			return &FeatureList{}, nil
		}
		q := lyt.at(int(h.FeatureListOffset))
		return &FeatureList{record: newRecord(q), Records: readTagRecords(q)}, q.Err()
	})
	lyt.LookupList = NewLazy(func() (*LookupList, error) {
		if empty {
			return &LookupList{}, nil
		}
		q := lyt.at(int(h.LookupListOffset))
		ll := &LookupList{record: newRecord(q)}
		ll.Offsets = q.Uint16s(int(q.Uint16()))
		return ll, q.Err()
	})
	if h.FeatureVariationsOffset != 0 {
		lyt.FeatureVariations = NewLazy(func() (*FeatureVariations, error) {
			return decodeFeatureVariations(lyt.at(int(h.FeatureVariationsOffset)))
		})
	}
	return lyt, nil
}

// TagRecord is a tag together with an offset, as used by script, language
// system and feature records.
type TagRecord struct {
	Tag    Tag
	Offset uint16
}

func readTagRecords(p *Parser) []TagRecord {
	n := int(p.Uint16())
	return readArray(p, n, 6, func(p *Parser) TagRecord {
		return TagRecord{Tag: p.Tag(), Offset: p.Offset16()}
	})
}

// ScriptList lists the scripts a layout table supports.
type ScriptList struct {
	record
	Records []TagRecord
}

// ScriptTable lists the language systems of a script.
type ScriptTable struct {
	record
	Tag            Tag
	DefaultLangSys uint16 // offset, may be NULL
	LangSysRecords []TagRecord
}

// LangSys is a language system table, selecting features for a script and language.
type LangSys struct {
	Tag                  Tag // DFLT for the default language system of a script
	LookupOrder          uint16
	RequiredFeatureIndex uint16 // 0xFFFF if no feature is required
	FeatureIndices       []uint16
}

// FeatureList lists the features of a layout table.
type FeatureList struct {
	record
	Records []TagRecord
}

// Feature is a feature table, listing the lookups which implement a feature.
type Feature struct {
	record
	Tag               Tag
	FeatureParams     uint16 // offset, may be NULL
	LookupListIndices []uint16
}

// LookupList lists the offsets of lookups, relative to the start of the list.
type LookupList struct {
	record
	Offsets []uint16
}

// LayoutTableLookupFlag is a flag type for layout tables (GPOS and GSUB).
type LayoutTableLookupFlag uint16

// Lookup flags of layout tables (GPOS and GSUB)
const ( // LookupFlag bit enumeration
	// Note that the RIGHT_TO_LEFT flag is used only for GPOS type 3 lookups and is ignored
	// otherwise. It is not used by client software in determining text direction.
	LOOKUP_FLAG_RIGHT_TO_LEFT             LayoutTableLookupFlag = 0x0001
	LOOKUP_FLAG_IGNORE_BASE_GLYPHS        LayoutTableLookupFlag = 0x0002 // If set, skips over base glyphs
	LOOKUP_FLAG_IGNORE_LIGATURES          LayoutTableLookupFlag = 0x0004 // If set, skips over ligatures
	LOOKUP_FLAG_IGNORE_MARKS              LayoutTableLookupFlag = 0x0008 // If set, skips over all combining marks
	LOOKUP_FLAG_USE_MARK_FILTERING_SET    LayoutTableLookupFlag = 0x0010 // If set, indicates that the lookup table structure is followed by a MarkFilteringSet field.
	LOOKUP_FLAG_reserved                  LayoutTableLookupFlag = 0x00E0 // For future use (Set to zero)
	LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK LayoutTableLookupFlag = 0xFF00 // If not zero, skips over all marks of attachment type different from specified.
)

// MarkAttachmentType returns the mark attachment class encoded in the flag's high byte.
func (f LayoutTableLookupFlag) MarkAttachmentType() uint16 {
	return uint16(f&LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK) >> 8
}

// LayoutTableLookupType is a type identifier for layout lookup records (GPOS and GSUB).
// Enum values are different for GPOS and GSUB.
type LayoutTableLookupType uint16

// Lookup is a lookup table: a list of subtables of a common type.
type Lookup struct {
	record
	Type             LayoutTableLookupType
	Flag             LayoutTableLookupFlag
	SubTableOffsets  []uint16
	MarkFilteringSet Option[uint16]
	build            func(p *Parser, lookupType LayoutTableLookupType) (LookupSubtable, error)
}

// SubTableCount returns the number of subtables of the lookup.
func (l *Lookup) SubTableCount() int {
	return len(l.SubTableOffsets)
}

// SubTable decodes the i-th subtable of the lookup.
func (l *Lookup) SubTable(i int) (LookupSubtable, error) {
	if i < 0 || i >= len(l.SubTableOffsets) {
		return nil, fmt.Errorf("lookup has no subtable %d", i)
	}
	return l.build(l.at(int(l.SubTableOffsets[i])), l.Type)
}

// SequenceLookupRecord identifies a nested lookup to apply at a position
// within a matched input sequence.
type SequenceLookupRecord struct {
	SequenceIndex   uint16
	LookupListIndex uint16
}

func readSequenceLookupRecords(p *Parser, n int) []SequenceLookupRecord {
	return readArray(p, n, 4, func(p *Parser) SequenceLookupRecord {
		return SequenceLookupRecord{SequenceIndex: p.Uint16(), LookupListIndex: p.Uint16()}
	})
}

// --- Navigation ------------------------------------------------------------

// SupportedScripts returns the tags of all scripts of the layout table.
func (t *LayoutTable) SupportedScripts() ([]Tag, error) {
	sl, err := t.ScriptList.Get()
	if err != nil {
		return nil, err
	}
	tags := make([]Tag, len(sl.Records))
	for i, rec := range sl.Records {
		tags[i] = rec.Tag
	}
	return tags, nil
}

// Script returns the script table for a script tag.
func (t *LayoutTable) Script(tag Tag) (*ScriptTable, error) {
	sl, err := t.ScriptList.Get()
	if err != nil {
		return nil, err
	}
	for _, rec := range sl.Records {
		if rec.Tag != tag {
			continue
		}
		q := sl.at(int(rec.Offset))
		st := &ScriptTable{record: newRecord(q), Tag: tag}
		st.DefaultLangSys = q.Offset16()
		st.LangSysRecords = readTagRecords(q)
		return st, q.Err()
	}
	return nil, fmt.Errorf("%s: no script %s", t.tag, tag)
}

// SupportedLangSys returns the tags of the language systems of a script.
// If the script has a default language system, it is listed first, as DFLT.
func (t *LayoutTable) SupportedLangSys(script *ScriptTable) []Tag {
	tags := make([]Tag, 0, len(script.LangSysRecords)+1)
	if script.DefaultLangSys != 0 {
		tags = append(tags, DFLT)
	}
	for _, rec := range script.LangSysRecords {
		tags = append(tags, rec.Tag)
	}
	return tags
}

// LangSys returns the language system of a script for a tag. DFLT (or dflt)
// selects the script's default language system.
func (t *LayoutTable) LangSys(script *ScriptTable, tag Tag) (*LangSys, error) {
	offset := 0
	if tag == DFLT || tag == dflt {
		offset = int(script.DefaultLangSys)
		tag = DFLT
	} else {
		for _, rec := range script.LangSysRecords {
			if rec.Tag == tag {
				offset = int(rec.Offset)
				break
			}
		}
	}
	if offset == 0 {
		return nil, fmt.Errorf("%s: script %s has no language system %s", t.tag, script.Tag, tag)
	}
	q := script.at(offset)
	ls := &LangSys{Tag: tag}
	ls.LookupOrder = q.Offset16()
	ls.RequiredFeatureIndex = q.Uint16()
	ls.FeatureIndices = q.Uint16s(int(q.Uint16()))
	return ls, q.Err()
}

// Feature returns the i-th feature of the feature list.
func (t *LayoutTable) Feature(i int) (*Feature, error) {
	fl, err := t.FeatureList.Get()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(fl.Records) {
		return nil, fmt.Errorf("%s: no feature %d", t.tag, i)
	}
	return decodeFeature(fl, fl.Records[i])
}

// FeatureByTag returns the first feature with the given tag.
func (t *LayoutTable) FeatureByTag(tag Tag) (*Feature, error) {
	fl, err := t.FeatureList.Get()
	if err != nil {
		return nil, err
	}
	for _, rec := range fl.Records {
		if rec.Tag == tag {
			return decodeFeature(fl, rec)
		}
	}
	return nil, fmt.Errorf("%s: no feature %s", t.tag, tag)
}

func decodeFeature(fl *FeatureList, rec TagRecord) (*Feature, error) {
	q := fl.at(int(rec.Offset))
	f := &Feature{record: newRecord(q), Tag: rec.Tag}
	f.FeatureParams = q.Offset16()
	f.LookupListIndices = q.Uint16s(int(q.Uint16()))
	return f, q.Err()
}

// Features returns the features of a language system.
func (t *LayoutTable) Features(ls *LangSys) ([]*Feature, error) {
	features := make([]*Feature, 0, len(ls.FeatureIndices))
	for _, i := range ls.FeatureIndices {
		f, err := t.Feature(int(i))
		if err != nil {
			return features, err
		}
		features = append(features, f)
	}
	return features, nil
}

// Lookup returns the i-th lookup of the lookup list.
func (t *LayoutTable) Lookup(i int) (*Lookup, error) {
	ll, err := t.LookupList.Get()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(ll.Offsets) {
		return nil, fmt.Errorf("%s: no lookup %d", t.tag, i)
	}
	q := ll.at(int(ll.Offsets[i]))
	l := &Lookup{record: newRecord(q), build: t.buildSubtable}
	l.Type = LayoutTableLookupType(q.Uint16())
	l.Flag = LayoutTableLookupFlag(q.Uint16())
	l.SubTableOffsets = q.Uint16s(int(q.Uint16()))
	if l.Flag&LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
		l.MarkFilteringSet = Some(q.Uint16())
	}
	return l, q.Err()
}

// Lookups returns the lookups of a feature.
func (t *LayoutTable) Lookups(f *Feature) ([]*Lookup, error) {
	lookups := make([]*Lookup, 0, len(f.LookupListIndices))
	for _, i := range f.LookupListIndices {
		l, err := t.Lookup(int(i))
		if err != nil {
			return lookups, err
		}
		lookups = append(lookups, l)
	}
	return lookups, nil
}

// --- Feature parameters ----------------------------------------------------

// FeatureParams is implemented by SizeParams, StylisticSetParams and
// CharacterVariantParams.
type FeatureParams interface {
	featureParams()
}

// SizeParams are the parameters of feature 'size'.
type SizeParams struct {
	DesignSize          uint16 // in decipoints
	SubfamilyIdentifier uint16
	SubfamilyNameID     uint16
	SmallEnd            uint16
	LargeEnd            uint16
}

// StylisticSetParams are the parameters of features 'ss01' … 'ss20'.
type StylisticSetParams struct {
	Version  uint16
	UINameID uint16
}

// CharacterVariantParams are the parameters of features 'cv01' … 'cv99'.
type CharacterVariantParams struct {
	Format                  uint16
	FeatUILabelNameID       uint16
	FeatUITooltipTextNameID uint16
	SampleTextNameID        uint16
	NumNamedParameters      uint16
	FirstParamUILabelNameID uint16
	Characters              []rune
}

func (SizeParams) featureParams()             {}
func (StylisticSetParams) featureParams()     {}
func (CharacterVariantParams) featureParams() {}

// Params decodes the feature's parameters. Features without parameters, and
// features whose parameters are not known, return nil.
func (f *Feature) Params() (FeatureParams, error) {
	if f.FeatureParams == 0 {
		return nil, nil
	}
	q := f.at(int(f.FeatureParams))
	name := f.Tag.String()
	switch {
	case name == "size":
		sp := SizeParams{
			DesignSize:          q.Uint16(),
			SubfamilyIdentifier: q.Uint16(),
			SubfamilyNameID:     q.Uint16(),
			SmallEnd:            q.Uint16(),
			LargeEnd:            q.Uint16(),
		}
		return sp, q.Err()
	case strings.HasPrefix(name, "ss"):
		return StylisticSetParams{Version: q.Uint16(), UINameID: q.Uint16()}, q.Err()
	case strings.HasPrefix(name, "cv"):
		cv := CharacterVariantParams{
			Format:                  q.Uint16(),
			FeatUILabelNameID:       q.Uint16(),
			FeatUITooltipTextNameID: q.Uint16(),
			SampleTextNameID:        q.Uint16(),
			NumNamedParameters:      q.Uint16(),
			FirstParamUILabelNameID: q.Uint16(),
		}
		n := int(q.Uint16())
		cv.Characters = readArray(q, n, 3, func(q *Parser) rune { return rune(q.Uint24()) })
		return cv, q.Err()
	}
	return nil, nil
}

// --- Feature variations ----------------------------------------------------

// FeatureVariations lists condition sets under which feature tables are
// substituted, for variable fonts.
type FeatureVariations struct {
	record
	Major   uint16
	Minor   uint16
	Records []FeatureVariationRecord
}

// FeatureVariationRecord pairs a condition set with a feature table substitution.
// Offsets are relative to the start of the FeatureVariations table.
type FeatureVariationRecord struct {
	ConditionSetOffset             uint32
	FeatureTableSubstitutionOffset uint32
}

func decodeFeatureVariations(p *Parser) (*FeatureVariations, error) {
	fv := &FeatureVariations{record: newRecord(p)}
	fv.Major = p.Uint16()
	fv.Minor = p.Uint16()
	n := int(p.Uint32())
	fv.Records = readArray(p, n, 8, func(p *Parser) FeatureVariationRecord {
		return FeatureVariationRecord{ConditionSetOffset: p.Offset32(), FeatureTableSubstitutionOffset: p.Offset32()}
	})
	return fv, p.Err()
}

// --- Coverage table module -------------------------------------------------

// Coverage denotes an indexed set of glyphs.
// Each LookupSubtable (except an Extension LookupType subtable) in a lookup references
// a Coverage table (Coverage), which specifies all the glyphs affected by a
// substitution or positioning operation described in the subtable.
// The GSUB, GPOS, and GDEF tables rely on this notion of coverage. If a glyph does
// not appear in a Coverage table, the client can skip that subtable and move
// immediately to the next subtable.
type Coverage struct {
	Format uint16
	Glyphs []GlyphIndex          // format 1
	Ranges []CoverageRangeRecord // format 2
}

// CoverageRangeRecord maps a range of glyphs to consecutive coverage indices.
type CoverageRangeRecord struct {
	StartGlyphID       GlyphIndex
	EndGlyphID         GlyphIndex
	StartCoverageIndex uint16
}

func decodeCoverage(p *Parser) (*Coverage, error) {
	c := &Coverage{Format: p.Uint16()}
	switch c.Format {
	case 1:
		c.Glyphs = p.Glyphs(int(p.Uint16()))
	case 2:
		n := int(p.Uint16())
		c.Ranges = readArray(p, n, 6, func(p *Parser) CoverageRangeRecord {
			return CoverageRangeRecord{
				StartGlyphID:       GlyphIndex(p.Uint16()),
				EndGlyphID:         GlyphIndex(p.Uint16()),
				StartCoverageIndex: p.Uint16(),
			}
		})
	default:
		if p.Err() == nil {
			return nil, fmt.Errorf("illegal coverage format %d", c.Format)
		}
	}
	return c, p.Err()
}

// Match returns the Coverage Index for a glyph, and true if present.
func (c *Coverage) Match(g GlyphIndex) (int, bool) {
	switch c.Format {
	case 1:
		i := sort.Search(len(c.Glyphs), func(i int) bool { return c.Glyphs[i] >= g })
		if i < len(c.Glyphs) && c.Glyphs[i] == g {
			return i, true
		}
	case 2:
		i := sort.Search(len(c.Ranges), func(i int) bool { return c.Ranges[i].EndGlyphID >= g })
		if i < len(c.Ranges) && c.Ranges[i].StartGlyphID <= g {
			r := c.Ranges[i]
			return int(r.StartCoverageIndex) + int(g-r.StartGlyphID), true
		}
	}
	return 0, false
}

// Contains reports whether a glyph is present in the coverage.
func (c *Coverage) Contains(g GlyphIndex) bool {
	_, ok := c.Match(g)
	return ok
}

// --- Class definition tables -----------------------------------------------

// GlyphClassDefEnum lists the glyph classes for ClassDefinitions
// ('GlyphClassDef'-table).
type GlyphClassDefEnum uint16

const (
	BaseGlyph      GlyphClassDefEnum = iota + 1 //single character, spacing glyph
	LigatureGlyph                               //multiple character, spacing glyph
	MarkGlyph                                   //non-spacing combining glyph
	ComponentGlyph                              //part of single character, spacing glyph
)

// ClassDefinitions groups glyphs into classes, denoted as integer values.
//
// From the OpenType specification:
// For efficiency and ease of representation, a font developer can group glyph indices
// to form glyph classes. Class assignments vary in meaning from one lookup subtable
// to another. For example, in the GSUB and GPOS tables, classes are used to describe
// glyph contexts. GDEF tables also use the idea of glyph classes.
// (see https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#class-definition-table)
type ClassDefinitions struct {
	Format       uint16
	StartGlyphID GlyphIndex         // format 1
	ClassValues  []uint16           // format 1, one per glyph starting at StartGlyphID
	ClassRanges  []ClassRangeRecord // format 2, ordered by StartGlyphID
}

// ClassRangeRecord assigns a class to a range of glyphs.
type ClassRangeRecord struct {
	StartGlyphID GlyphIndex
	EndGlyphID   GlyphIndex
	Class        uint16
}

func decodeClassDefinitions(p *Parser) (*ClassDefinitions, error) {
	cdef := &ClassDefinitions{Format: p.Uint16()}
	switch cdef.Format {
	case 1:
		cdef.StartGlyphID = GlyphIndex(p.Uint16())
		cdef.ClassValues = p.Uint16s(int(p.Uint16()))
	case 2:
		n := int(p.Uint16())
		cdef.ClassRanges = readArray(p, n, 6, func(p *Parser) ClassRangeRecord {
			return ClassRangeRecord{
				StartGlyphID: GlyphIndex(p.Uint16()),
				EndGlyphID:   GlyphIndex(p.Uint16()),
				Class:        p.Uint16(),
			}
		})
	default:
		if p.Err() == nil {
			return nil, fmt.Errorf("illegal format %d of class definition table", cdef.Format)
		}
	}
	return cdef, p.Err()
}

// Lookup returns the class defined for a glyph, or 0 (= default class).
func (cdef *ClassDefinitions) Lookup(glyph GlyphIndex) int {
	switch cdef.Format {
	case 1:
		if glyph >= cdef.StartGlyphID && int(glyph-cdef.StartGlyphID) < len(cdef.ClassValues) {
			return int(cdef.ClassValues[glyph-cdef.StartGlyphID])
		}
	case 2:
		i := sort.Search(len(cdef.ClassRanges), func(i int) bool {
			return cdef.ClassRanges[i].EndGlyphID >= glyph
		})
		if i < len(cdef.ClassRanges) && cdef.ClassRanges[i].StartGlyphID <= glyph {
			return int(cdef.ClassRanges[i].Class)
		}
	}
	return 0
}

// Class returns the class defined for a glyph, or 0 (= default class).
func (cdef *ClassDefinitions) Class(glyph GlyphIndex) int {
	return cdef.Lookup(glyph)
}

// optionalAt decodes a structure at an offset relative to a record, if the
// offset is not NULL.
func optionalAt[T any](r record, offset int, decode func(*Parser) (*T, error)) (*T, error) {
	if offset == 0 {
		return nil, nil
	}
	return decode(r.at(offset))
}
