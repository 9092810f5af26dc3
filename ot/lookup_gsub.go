package ot

import (
	"fmt"
	"strconv"
)

// GSubTable is a type representing an OpenType GSUB table
// (see https://docs.microsoft.com/en-us/typography/opentype/spec/gsub).
type GSubTable struct {
	LayoutTable
}

func decodeGSub(p *Parser, ctx *tableContext) (Table, error) {
	t := &GSubTable{}
	lyt, err := decodeLayoutTable(p, t)
	if err != nil {
		return nil, err
	}
	t.LayoutTable = lyt
	t.buildSubtable = decodeGSubSubtable
	tracer().Debugf("GSUB table version %d.%d", lyt.Header.Major, lyt.Header.Minor)
	return t, nil
}

// GSUB Lookup Type Enumeration
const (
	GSubLookupTypeSingle          LayoutTableLookupType = 1 // Replace one glyph with one glyph
	GSubLookupTypeMultiple        LayoutTableLookupType = 2 // Replace one glyph with more than one glyph
	GSubLookupTypeAlternate       LayoutTableLookupType = 3 // Replace one glyph with one of many glyphs
	GSubLookupTypeLigature        LayoutTableLookupType = 4 // Replace multiple glyphs with one glyph
	GSubLookupTypeContext         LayoutTableLookupType = 5 // Replace one or more glyphs in context
	GSubLookupTypeChainingContext LayoutTableLookupType = 6 // Replace one or more glyphs in chained context
	GSubLookupTypeExtensionSubs   LayoutTableLookupType = 7 // Extension mechanism for other substitutions
	GSubLookupTypeReverseChaining LayoutTableLookupType = 8 // Applied in reverse order, replace single glyph in chaining context
)

const gsubLookupTypeNames = "Single|Multiple|Alternate|Ligature|Context|Chaining|Ext|Reverse"

var gsubLookupTypeInx = [...]int{0, 7, 16, 26, 35, 43, 52, 56, 64}

// GSubString interprets a layout table lookup type as a GSUB table type.
func (lt LayoutTableLookupType) GSubString() string {
	if lt >= GSubLookupTypeSingle && lt <= GSubLookupTypeReverseChaining {
		i := lt - 1
		return gsubLookupTypeNames[gsubLookupTypeInx[i] : gsubLookupTypeInx[i+1]-1]
	}
	return strconv.Itoa(int(lt))
}

// --- Lookup subtables ------------------------------------------------------

// LookupSubtable is a subtable of a GSUB or GPOS lookup. All subtables of a
// lookup share the lookup's type; the format tells which variant of the type's
// structure is used.
type LookupSubtable interface {
	LookupType() LayoutTableLookupType
	Format() uint16
	// Coverage returns the coverage table of the subtable, or nil for subtables
	// without a single coverage table.
	Coverage() (*Coverage, error)
}

type lookupSubtableBase struct {
	record
	lookupType     LayoutTableLookupType
	format         uint16
	CoverageOffset uint16
}

func (b *lookupSubtableBase) LookupType() LayoutTableLookupType { return b.lookupType }
func (b *lookupSubtableBase) Format() uint16                    { return b.format }

func (b *lookupSubtableBase) Coverage() (*Coverage, error) {
	return optionalAt(b.record, int(b.CoverageOffset), decodeCoverage)
}

func (b *lookupSubtableBase) coverages(offsets []uint16) ([]*Coverage, error) {
	coverages := make([]*Coverage, len(offsets))
	for i, offset := range offsets {
		c, err := decodeCoverage(b.at(int(offset)))
		if err != nil {
			return nil, err
		}
		coverages[i] = c
	}
	return coverages, nil
}

// glyphsAt reads a glyph count followed by glyph indices at an offset
// relative to the subtable.
func (b *lookupSubtableBase) glyphsAt(offsets []uint16, i int) ([]GlyphIndex, error) {
	if i < 0 || i >= len(offsets) {
		return nil, fmt.Errorf("lookup subtable has no entry %d", i)
	}
	q := b.at(int(offsets[i]))
	glyphs := q.Glyphs(int(q.Uint16()))
	return glyphs, q.Err()
}

func newLookupSubtableBase(p *Parser, lookupType LayoutTableLookupType) lookupSubtableBase {
	b := lookupSubtableBase{record: newRecord(p), lookupType: lookupType}
	b.format = p.Uint16()
	return b
}

func decodeGSubSubtable(p *Parser, lookupType LayoutTableLookupType) (LookupSubtable, error) {
	b := newLookupSubtableBase(p, lookupType)
	tracer().Debugf("GSUB subtable type %s, format %d", lookupType.GSubString(), b.format)
	var sub LookupSubtable
	switch lookupType {
	case GSubLookupTypeSingle:
		sub = decodeSingleSubst(p, b)
	case GSubLookupTypeMultiple:
		sub = decodeMultipleSubst(p, b)
	case GSubLookupTypeAlternate:
		sub = decodeAlternateSubst(p, b)
	case GSubLookupTypeLigature:
		sub = decodeLigatureSubst(p, b)
	case GSubLookupTypeContext:
		sub = decodeSequenceContext(p, b)
	case GSubLookupTypeChainingContext:
		sub = decodeChainedSequenceContext(p, b)
	case GSubLookupTypeExtensionSubs:
		sub = decodeExtensionSubtable(p, b, decodeGSubSubtable)
	case GSubLookupTypeReverseChaining:
		sub = decodeReverseChainSingleSubst(p, b)
	default:
		return nil, fmt.Errorf("unknown GSUB lookup type %d", lookupType)
	}
	return sub, p.Err()
}

// SingleSubst replaces a single glyph. Format 1 adds a delta to the glyph index,
// format 2 lists a substitute for each covered glyph.
type SingleSubst struct {
	lookupSubtableBase
	DeltaGlyphID       int16
	SubstituteGlyphIDs []GlyphIndex
}

func decodeSingleSubst(p *Parser, b lookupSubtableBase) *SingleSubst {
	s := &SingleSubst{lookupSubtableBase: b}
	s.CoverageOffset = p.Offset16()
	switch s.format {
	case 1:
		s.DeltaGlyphID = p.Int16()
	case 2:
		s.SubstituteGlyphIDs = p.Glyphs(int(p.Uint16()))
	}
	return s
}

// Substitute returns the substitute for a glyph, if the glyph is covered.
func (s *SingleSubst) Substitute(g GlyphIndex) (GlyphIndex, bool) {
	cov, err := s.Coverage()
	if err != nil || cov == nil {
		return g, false
	}
	inx, ok := cov.Match(g)
	if !ok {
		return g, false
	}
	if s.format == 1 {
		return GlyphIndex(uint16(int(g) + int(s.DeltaGlyphID))), true
	}
	if inx < len(s.SubstituteGlyphIDs) {
		return s.SubstituteGlyphIDs[inx], true
	}
	return g, false
}

// MultipleSubst replaces a single glyph with a sequence of glyphs.
type MultipleSubst struct {
	lookupSubtableBase
	SequenceOffsets []uint16
}

func decodeMultipleSubst(p *Parser, b lookupSubtableBase) *MultipleSubst {
	s := &MultipleSubst{lookupSubtableBase: b}
	s.CoverageOffset = p.Offset16()
	s.SequenceOffsets = p.Uint16s(int(p.Uint16()))
	return s
}

// Sequence returns the substitute sequence for coverage index i.
func (s *MultipleSubst) Sequence(i int) ([]GlyphIndex, error) {
	return s.glyphsAt(s.SequenceOffsets, i)
}

// AlternateSubst offers alternates for a glyph.
type AlternateSubst struct {
	lookupSubtableBase
	AlternateSetOffsets []uint16
}

func decodeAlternateSubst(p *Parser, b lookupSubtableBase) *AlternateSubst {
	s := &AlternateSubst{lookupSubtableBase: b}
	s.CoverageOffset = p.Offset16()
	s.AlternateSetOffsets = p.Uint16s(int(p.Uint16()))
	return s
}

// AlternateSet returns the alternates for coverage index i.
func (s *AlternateSubst) AlternateSet(i int) ([]GlyphIndex, error) {
	return s.glyphsAt(s.AlternateSetOffsets, i)
}

// LigatureSubst replaces sequences of glyphs by ligatures.
type LigatureSubst struct {
	lookupSubtableBase
	LigatureSetOffsets []uint16
}

// GSubLigatureRule is a ligature: the ligature glyph replaces the covered
// glyph followed by the components.
type GSubLigatureRule struct {
	Components []GlyphIndex // excluding the first, covered glyph
	Ligature   GlyphIndex
}

func decodeLigatureSubst(p *Parser, b lookupSubtableBase) *LigatureSubst {
	s := &LigatureSubst{lookupSubtableBase: b}
	s.CoverageOffset = p.Offset16()
	s.LigatureSetOffsets = p.Uint16s(int(p.Uint16()))
	return s
}

// LigatureSet returns the ligatures starting with the glyph of coverage index i.
func (s *LigatureSubst) LigatureSet(i int) ([]GSubLigatureRule, error) {
	if i < 0 || i >= len(s.LigatureSetOffsets) {
		return nil, fmt.Errorf("ligature subtable has no ligature set %d", i)
	}
	q := s.at(int(s.LigatureSetOffsets[i]))
	set := newRecord(q)
	offsets := q.Uint16s(int(q.Uint16()))
	if err := q.Err(); err != nil {
		return nil, err
	}
	rules := make([]GSubLigatureRule, len(offsets))
	for j, offset := range offsets {
		l := set.at(int(offset))
		rules[j].Ligature = GlyphIndex(l.Uint16())
		rules[j].Components = l.Glyphs(max(0, int(l.Uint16())-1))
		if err := l.Err(); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

// ReverseChainSingleSubst substitutes single glyphs in chained context,
// processing glyphs from the end of the input.
type ReverseChainSingleSubst struct {
	lookupSubtableBase
	BacktrackCoverageOffsets []uint16
	LookaheadCoverageOffsets []uint16
	SubstituteGlyphIDs       []GlyphIndex
}

func decodeReverseChainSingleSubst(p *Parser, b lookupSubtableBase) *ReverseChainSingleSubst {
	s := &ReverseChainSingleSubst{lookupSubtableBase: b}
	s.CoverageOffset = p.Offset16()
	s.BacktrackCoverageOffsets = p.Uint16s(int(p.Uint16()))
	s.LookaheadCoverageOffsets = p.Uint16s(int(p.Uint16()))
	s.SubstituteGlyphIDs = p.Glyphs(int(p.Uint16()))
	return s
}

// --- Contextual lookups (GSUB 5/6, GPOS 7/8) ------------------------------

// SequenceRule is a rule of a contextual lookup. For format 1 subtables the
// input holds glyph indices, for format 2 subtables it holds classes. The
// first input item is implied by the coverage or class set and is not listed.
type SequenceRule struct {
	Input   []uint16
	Records []SequenceLookupRecord
}

// ChainedSequenceRule is a rule of a chained contextual lookup.
type ChainedSequenceRule struct {
	Backtrack []uint16
	Input     []uint16 // without the first item
	Lookahead []uint16
	Records   []SequenceLookupRecord
}

// SequenceContext is a contextual lookup subtable. Format 1 matches glyph
// sequences, format 2 class sequences and format 3 coverage sequences.
type SequenceContext struct {
	lookupSubtableBase
	ClassDefOffset  uint16                 // format 2
	RuleSetOffsets  []uint16               // formats 1 and 2
	CoverageOffsets []uint16               // format 3
	LookupRecords   []SequenceLookupRecord // format 3
}

func decodeSequenceContext(p *Parser, b lookupSubtableBase) *SequenceContext {
	s := &SequenceContext{lookupSubtableBase: b}
	switch s.format {
	case 1:
		s.CoverageOffset = p.Offset16()
		s.RuleSetOffsets = p.Uint16s(int(p.Uint16()))
	case 2:
		s.CoverageOffset = p.Offset16()
		s.ClassDefOffset = p.Offset16()
		s.RuleSetOffsets = p.Uint16s(int(p.Uint16()))
	case 3:
		glyphCount := int(p.Uint16())
		lookupCount := int(p.Uint16())
		s.CoverageOffsets = p.Uint16s(glyphCount)
		s.LookupRecords = readSequenceLookupRecords(p, lookupCount)
	default:
		s.warn(fmt.Sprintf("unknown sequence context format %d", s.format))
	}
	return s
}

// ClassDef returns the class definitions of a format 2 subtable.
func (s *SequenceContext) ClassDef() (*ClassDefinitions, error) {
	return optionalAt(s.record, int(s.ClassDefOffset), decodeClassDefinitions)
}

// InputCoverages returns the coverage tables of a format 3 subtable.
func (s *SequenceContext) InputCoverages() ([]*Coverage, error) {
	return s.coverages(s.CoverageOffsets)
}

// RuleSet returns the i-th rule set of a format 1 or 2 subtable. A NULL offset
// yields an empty rule set.
func (s *SequenceContext) RuleSet(i int) ([]SequenceRule, error) {
	if i < 0 || i >= len(s.RuleSetOffsets) {
		return nil, fmt.Errorf("sequence context has no rule set %d", i)
	}
	if s.RuleSetOffsets[i] == 0 {
		return nil, nil
	}
	q := s.at(int(s.RuleSetOffsets[i]))
	set := newRecord(q)
	offsets := q.Uint16s(int(q.Uint16()))
	if err := q.Err(); err != nil {
		return nil, err
	}
	rules := make([]SequenceRule, len(offsets))
	for j, offset := range offsets {
		r := set.at(int(offset))
		glyphCount := int(r.Uint16())
		lookupCount := int(r.Uint16())
		rules[j].Input = r.Uint16s(max(0, glyphCount-1))
		rules[j].Records = readSequenceLookupRecords(r, lookupCount)
		if err := r.Err(); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

// ChainedSequenceContext is a chained contextual lookup subtable, matching
// backtrack, input and lookahead sequences.
type ChainedSequenceContext struct {
	lookupSubtableBase
	BacktrackClassDefOffset  uint16 // format 2
	InputClassDefOffset      uint16
	LookaheadClassDefOffset  uint16
	RuleSetOffsets           []uint16 // formats 1 and 2
	BacktrackCoverageOffsets []uint16 // format 3
	InputCoverageOffsets     []uint16
	LookaheadCoverageOffsets []uint16
	LookupRecords            []SequenceLookupRecord
}

func decodeChainedSequenceContext(p *Parser, b lookupSubtableBase) *ChainedSequenceContext {
	s := &ChainedSequenceContext{lookupSubtableBase: b}
	switch s.format {
	case 1:
		s.CoverageOffset = p.Offset16()
		s.RuleSetOffsets = p.Uint16s(int(p.Uint16()))
	case 2:
		s.CoverageOffset = p.Offset16()
		s.BacktrackClassDefOffset = p.Offset16()
		s.InputClassDefOffset = p.Offset16()
		s.LookaheadClassDefOffset = p.Offset16()
		s.RuleSetOffsets = p.Uint16s(int(p.Uint16()))
	case 3:
		s.BacktrackCoverageOffsets = p.Uint16s(int(p.Uint16()))
		s.InputCoverageOffsets = p.Uint16s(int(p.Uint16()))
		s.LookaheadCoverageOffsets = p.Uint16s(int(p.Uint16()))
		s.LookupRecords = readSequenceLookupRecords(p, int(p.Uint16()))
	default:
		s.warn(fmt.Sprintf("unknown chained sequence context format %d", s.format))
	}
	return s
}

// ClassDefs returns backtrack, input and lookahead class definitions of a
// format 2 subtable.
func (s *ChainedSequenceContext) ClassDefs() (backtrack, input, lookahead *ClassDefinitions, err error) {
	if backtrack, err = optionalAt(s.record, int(s.BacktrackClassDefOffset), decodeClassDefinitions); err != nil {
		return
	}
	if input, err = optionalAt(s.record, int(s.InputClassDefOffset), decodeClassDefinitions); err != nil {
		return
	}
	lookahead, err = optionalAt(s.record, int(s.LookaheadClassDefOffset), decodeClassDefinitions)
	return
}

// InputCoverages returns the input coverage tables of a format 3 subtable.
func (s *ChainedSequenceContext) InputCoverages() ([]*Coverage, error) {
	return s.coverages(s.InputCoverageOffsets)
}

// RuleSet returns the i-th chained rule set of a format 1 or 2 subtable.
func (s *ChainedSequenceContext) RuleSet(i int) ([]ChainedSequenceRule, error) {
	if i < 0 || i >= len(s.RuleSetOffsets) {
		return nil, fmt.Errorf("chained sequence context has no rule set %d", i)
	}
	if s.RuleSetOffsets[i] == 0 {
		return nil, nil
	}
	q := s.at(int(s.RuleSetOffsets[i]))
	set := newRecord(q)
	offsets := q.Uint16s(int(q.Uint16()))
	if err := q.Err(); err != nil {
		return nil, err
	}
	rules := make([]ChainedSequenceRule, len(offsets))
	for j, offset := range offsets {
		r := set.at(int(offset))
		rules[j].Backtrack = r.Uint16s(int(r.Uint16()))
		rules[j].Input = r.Uint16s(max(0, int(r.Uint16())-1))
		rules[j].Lookahead = r.Uint16s(int(r.Uint16()))
		rules[j].Records = readSequenceLookupRecords(r, int(r.Uint16()))
		if err := r.Err(); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

// --- Extension subtables (GSUB 7, GPOS 9) ----------------------------------

// ExtensionSubtable points to a subtable with a 32-bit offset.
type ExtensionSubtable struct {
	lookupSubtableBase
	ExtensionLookupType LayoutTableLookupType
	ExtensionOffset     uint32
	decode              func(*Parser, LayoutTableLookupType) (LookupSubtable, error)
}

func decodeExtensionSubtable(p *Parser, b lookupSubtableBase,
	decode func(*Parser, LayoutTableLookupType) (LookupSubtable, error)) *ExtensionSubtable {
	s := &ExtensionSubtable{lookupSubtableBase: b, decode: decode}
	s.ExtensionLookupType = LayoutTableLookupType(p.Uint16())
	s.ExtensionOffset = p.Offset32()
	return s
}

// Resolve decodes the subtable the extension points to.
func (s *ExtensionSubtable) Resolve() (LookupSubtable, error) {
	if s.ExtensionLookupType == s.lookupType {
		return nil, fmt.Errorf("extension subtable refers to another extension")
	}
	return s.decode(s.at(int(s.ExtensionOffset)), s.ExtensionLookupType)
}
