package ot

import "fmt"

const sfntHeaderSize = 12
const sfntRecordSize = 16

// SFNT is a TrueType or OpenType font file. Its tables are stored
// uncompressed, located by a table directory at the start of the file.
type SFNT struct {
	fontFile
	Version       uint32 // 0x00010000 for TrueType outlines, 'OTTO' for CFF
	NumTables     uint16
	SearchRange   uint16
	EntrySelector uint16
	RangeShift    uint16
	Records       []TableRecord
}

// TableRecord is an entry of an SFNT table directory.
type TableRecord struct {
	Tag      Tag
	Checksum uint32
	Offset   uint32
	Length   uint32
}

// NewSFNT reads the header and table directory of an SFNT font.
func NewSFNT(data []byte, opts Options) (*SFNT, error) {
	f := &SFNT{fontFile: newFontFile(data, opts)}
	p := f.parser(TableDict{Tag: T("sfnt"), Length: sfntHeaderSize}, "sfnt header")
	f.Version = p.Uint32()
	f.NumTables = p.Uint16()
	f.SearchRange = p.Uint16()
	f.EntrySelector = p.Uint16()
	f.RangeShift = p.Uint16()
	f.Records = readArray(p, int(f.NumTables), sfntRecordSize, func(p *Parser) TableRecord {
		return TableRecord{
			Tag:      p.Tag(),
			Checksum: p.Uint32(),
			Offset:   p.Offset32(),
			Length:   p.Uint32(),
		}
	})
	if err := p.Err(); err != nil {
		return nil, f.opts.fail(fmt.Errorf("%w: cannot read table directory: %w", ErrUnknownFormat, err))
	}
	if Flavor(f.Version) == "" {
		f.diag.addWarning(T("sfnt"), fmt.Sprintf("unknown SFNT version 0x%08x", f.Version), 0)
	}
	for _, rec := range f.Records {
		dict := TableDict{Tag: rec.Tag, Offset: rec.Offset, Length: rec.Length}
		if uint64(rec.Offset)+uint64(rec.Length) > uint64(len(data)) {
			f.diag.addWarning(rec.Tag, "table extends beyond end of font data", rec.Offset)
		}
		if !f.tables.add(rec.Tag, func() (Table, error) {
			return createTable(dict, f.data, f.ctx)
		}) {
			f.diag.addWarning(rec.Tag, "duplicate table directory entry ignored", rec.Offset)
		}
	}
	tracer().Debugf("SFNT font with %d tables: %v", f.NumTables, f.tables.Tags())
	return f, nil
}

// Format returns FormatSFNT.
func (f *SFNT) Format() Format {
	return FormatSFNT
}

// Flavor returns the SFNT version.
func (f *SFNT) Flavor() uint32 {
	return f.Version
}

// Directory returns the table directory.
func (f *SFNT) Directory() []TableDict {
	dir := make([]TableDict, len(f.Records))
	for i, rec := range f.Records {
		dir[i] = TableDict{Tag: rec.Tag, Offset: rec.Offset, Length: rec.Length}
	}
	return dir
}
