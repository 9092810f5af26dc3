package ot

import (
	"fmt"
)

const woffHeaderSize = 44
const woffEntrySize = 20

// WOFF is a font in Web Open Font Format 1.0. Every table may be compressed
// individually with zlib; a table is stored uncompressed if its compressed
// length equals its original length.
type WOFF struct {
	fontFile
	Signature      uint32
	FlavorTag      uint32 // SFNT version of the wrapped font
	Length         uint32
	NumTables      uint16
	Reserved       uint16
	TotalSfntSize  uint32
	MajorVersion   uint16
	MinorVersion   uint16
	MetaOffset     uint32
	MetaLength     uint32
	MetaOrigLength uint32
	PrivOffset     uint32
	PrivLength     uint32
	Entries        []WOFFTableEntry
}

// WOFFTableEntry is an entry of a WOFF table directory.
type WOFFTableEntry struct {
	Tag          Tag
	Offset       uint32
	CompLength   uint32
	OrigLength   uint32
	OrigChecksum uint32
}

// Compressed reports whether the table payload is stored compressed.
func (e WOFFTableEntry) Compressed() bool {
	return e.CompLength != e.OrigLength
}

// NewWOFF reads the header and table directory of a WOFF font.
// Compressed tables are decompressed on first access.
func NewWOFF(data []byte, opts Options) (*WOFF, error) {
	f := &WOFF{fontFile: newFontFile(data, opts)}
	p := f.parser(TableDict{Tag: T("wOFF"), Length: woffHeaderSize}, "woff header")
	f.Signature = p.Uint32()
	f.FlavorTag = p.Uint32()
	f.Length = p.Uint32()
	f.NumTables = p.Uint16()
	f.Reserved = p.Uint16()
	f.TotalSfntSize = p.Uint32()
	f.MajorVersion = p.Uint16()
	f.MinorVersion = p.Uint16()
	f.MetaOffset = p.Offset32()
	f.MetaLength = p.Uint32()
	f.MetaOrigLength = p.Uint32()
	f.PrivOffset = p.Offset32()
	f.PrivLength = p.Uint32()
	f.Entries = readArray(p, int(f.NumTables), woffEntrySize, func(p *Parser) WOFFTableEntry {
		return WOFFTableEntry{
			Tag:          p.Tag(),
			Offset:       p.Offset32(),
			CompLength:   p.Uint32(),
			OrigLength:   p.Uint32(),
			OrigChecksum: p.Uint32(),
		}
	})
	if err := p.Err(); err != nil {
		return nil, f.opts.fail(fmt.Errorf("%w: cannot read WOFF table directory: %w", ErrUnknownFormat, err))
	}
	if f.Reserved != 0 {
		f.diag.addWarning(T("wOFF"), "reserved header field is not zero", 0)
	}
	for _, entry := range f.Entries {
		entry := entry
		if !f.tables.add(entry.Tag, func() (Table, error) {
			return f.decodeTable(entry)
		}) {
			f.diag.addWarning(entry.Tag, "duplicate table directory entry ignored", entry.Offset)
		}
	}
	tracer().Debugf("WOFF font with %d tables: %v", f.NumTables, f.tables.Tags())
	return f, nil
}

func (f *WOFF) decodeTable(entry WOFFTableEntry) (Table, error) {
	if !entry.Compressed() {
		dict := TableDict{Tag: entry.Tag, Offset: entry.Offset, Length: entry.OrigLength}
		return createTable(dict, f.data, f.ctx)
	}
	if f.opts.Decoders.GzipDecode == nil {
		return nil, f.opts.fail(fmt.Errorf("%w: no gzip decoder available to decode WOFF font", ErrNoDecompressor))
	}
	compressed, err := f.data.view(int(entry.Offset), int(entry.CompLength))
	if err != nil {
		return nil, f.opts.fail(fmt.Errorf("table %s: %w", entry.Tag.Trimmed(), err))
	}
	data, err := f.opts.Decoders.GzipDecode(compressed)
	if err != nil {
		return nil, f.opts.fail(fmt.Errorf("table %s: decompressing: %w", entry.Tag.Trimmed(), err))
	}
	if len(data) != int(entry.OrigLength) {
		f.diag.addWarning(entry.Tag, fmt.Sprintf("decompressed size %d differs from declared size %d",
			len(data), entry.OrigLength), entry.Offset)
	}
	dict := TableDict{Tag: entry.Tag, Offset: 0, Length: entry.OrigLength}
	return createTable(dict, data, f.ctx)
}

// Metadata returns the extended metadata block of the font, an XML document,
// or an empty string if there is none.
func (f *WOFF) Metadata() (string, error) {
	if f.MetaLength == 0 {
		return "", nil
	}
	if f.opts.Decoders.GzipDecode == nil {
		return "", f.opts.fail(fmt.Errorf("%w: no gzip decoder available to decode WOFF metadata", ErrNoDecompressor))
	}
	compressed, err := f.data.view(int(f.MetaOffset), int(f.MetaLength))
	if err != nil {
		return "", err
	}
	meta, err := f.opts.Decoders.GzipDecode(compressed)
	if err != nil {
		return "", err
	}
	return string(meta), nil
}

// Format returns FormatWOFF.
func (f *WOFF) Format() Format {
	return FormatWOFF
}

// Flavor returns the SFNT version of the wrapped font.
func (f *WOFF) Flavor() uint32 {
	return f.FlavorTag
}

// Directory returns the table directory. Lengths are uncompressed lengths.
func (f *WOFF) Directory() []TableDict {
	dir := make([]TableDict, len(f.Entries))
	for i, e := range f.Entries {
		dir[i] = TableDict{Tag: e.Tag, Offset: e.Offset, Length: e.OrigLength}
	}
	return dir
}
