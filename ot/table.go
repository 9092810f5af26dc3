package ot

// Table represents one of the various OpenType font tables.
//
// Required Tables, according to the OpenType specification:
// 'cmap' (Character to glyph mapping), 'head' (Font header), 'hhea' (Horizontal header),
// 'hmtx' (Horizontal metrics), 'maxp' (Maximum profile), 'name' (Naming table),
// 'OS/2' (OS/2 and Windows specific metrics), 'post' (PostScript information).
//
// Advanced Typographic Tables: 'BASE' (Baseline data), 'GDEF' (Glyph definition data),
// 'GPOS' (Glyph positioning data), 'GSUB' (Glyph substitution data).
//
// For TrueType outline fonts: 'cvt ' (Control Value Table, optional),
// 'fpgm' (Font program, optional), 'glyf' (Glyph data), 'loca' (Index to location),
// 'prep' (CVT Program, optional), 'gasp' (Grid-fitting/Scan-conversion, optional).
//
// For OpenType fonts based on CFF outlines: 'CFF ' (Compact Font Format 1.0),
// 'CFF2' (Compact Font Format 2.0), 'VORG' (Vertical Origin, optional).
//
// Bitmap, color and other tables are listed by `RegisteredTables`.
// Tables without a registered decoder are represented by a generic table
// giving access to the table's bytes only.
type Table interface {
	Tag() Tag                 // table tag
	Extent() (uint32, uint32) // offset and byte size within the data the table was decoded from
	Binary() []byte           // the bytes of this table; should be treated as read-only by clients
	Self() TableSelf          // reference to itself
}

// tableBase is a common parent for all kinds of OpenType tables.
type tableBase struct {
	record
	tag    Tag
	offset uint32
	length uint32
	data   binarySegm // the table's bytes
	self   any
}

func newTableBase(p *Parser, self any) tableBase {
	return tableBase{
		record: newRecord(p),
		tag:    p.tag,
		offset: uint32(p.start),
		length: uint32(p.length),
		data:   p.data.clamp(p.start, p.length),
		self:   self,
	}
}

// Tag returns the table's tag.
func (tb *tableBase) Tag() Tag {
	return tb.tag
}

// Extent returns offset and byte size of this table.
func (tb *tableBase) Extent() (uint32, uint32) {
	return tb.offset, tb.length
}

// Binary returns the bytes of this table. Should be treated as read-only by
// clients, as it is a view into the font's data.
func (tb *tableBase) Binary() []byte {
	return tb.data
}

func (tb *tableBase) Self() TableSelf {
	return TableSelf{tableBase: tb}
}

// genericTable is used for tables without a registered decoder.
type genericTable struct {
	tableBase
}

func newGenericTable(p *Parser) *genericTable {
	t := &genericTable{}
	t.tableBase = newTableBase(p, t)
	return t
}

// TableSelf is a reference to a table. Its primary use is for converting
// a generic table to a concrete table flavour, and for reproducing the
// name tag of a table.
type TableSelf struct {
	tableBase *tableBase
}

// NameTag returns the 4-letter name of a table.
func (tself TableSelf) NameTag() Tag {
	if tself.tableBase == nil {
		return 0
	}
	return tself.tableBase.tag
}

// IsGeneric reports whether the table has been decoded by a generic decoder only.
func (tself TableSelf) IsGeneric() bool {
	_, ok := safeSelf(tself).(*genericTable)
	return ok
}

func safeSelf(tself TableSelf) any {
	if tself.tableBase == nil || tself.tableBase.self == nil {
		return nil
	}
	return tself.tableBase.self
}

func as[T any](tself TableSelf) T {
	t, _ := safeSelf(tself).(T)
	return t
}

// AsCMap returns this table as a cmap table, or nil.
func (tself TableSelf) AsCMap() *CMapTable { return as[*CMapTable](tself) }

// AsHead returns this table as a head table, or nil.
func (tself TableSelf) AsHead() *HeadTable { return as[*HeadTable](tself) }

// AsHHea returns this table as a hhea table, or nil.
func (tself TableSelf) AsHHea() *HHeaTable { return as[*HHeaTable](tself) }

// AsHMtx returns this table as a hmtx table, or nil.
func (tself TableSelf) AsHMtx() *HMtxTable { return as[*HMtxTable](tself) }

// AsMaxP returns this table as a maxp table, or nil.
func (tself TableSelf) AsMaxP() *MaxPTable { return as[*MaxPTable](tself) }

// AsName returns this table as a name table, or nil.
func (tself TableSelf) AsName() *NameTable { return as[*NameTable](tself) }

// AsOS2 returns this table as an OS/2 table, or nil.
func (tself TableSelf) AsOS2() *OS2Table { return as[*OS2Table](tself) }

// AsPost returns this table as a post table, or nil.
func (tself TableSelf) AsPost() *PostTable { return as[*PostTable](tself) }

// AsLoca returns this table as a loca table, or nil.
func (tself TableSelf) AsLoca() *LocaTable { return as[*LocaTable](tself) }

// AsGlyf returns this table as a glyf table, or nil.
func (tself TableSelf) AsGlyf() *GlyfTable { return as[*GlyfTable](tself) }

// AsGSub returns this table as a GSUB table, or nil.
func (tself TableSelf) AsGSub() *GSubTable { return as[*GSubTable](tself) }

// AsGPos returns this table as a GPOS table, or nil.
func (tself TableSelf) AsGPos() *GPosTable { return as[*GPosTable](tself) }

// AsGDef returns this table as a GDEF table, or nil.
func (tself TableSelf) AsGDef() *GDefTable { return as[*GDefTable](tself) }

// AsBase returns this table as a BASE table, or nil.
func (tself TableSelf) AsBase() *BaseTable { return as[*BaseTable](tself) }

// AsKern returns this table as a kern table, or nil.
func (tself TableSelf) AsKern() *KernTable { return as[*KernTable](tself) }

// AsFVar returns this table as an fvar table, or nil.
func (tself TableSelf) AsFVar() *FVarTable { return as[*FVarTable](tself) }

// AsCOLR returns this table as a COLR table, or nil.
func (tself TableSelf) AsCOLR() *COLRTable { return as[*COLRTable](tself) }

// AsCPAL returns this table as a CPAL table, or nil.
func (tself TableSelf) AsCPAL() *CPALTable { return as[*CPALTable](tself) }

// --- Glyphs ----------------------------------------------------------------

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16
