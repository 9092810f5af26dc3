package ot

import (
	"fmt"
	"math"
)

const woff2HeaderSize = 48

// woff2KnownTags are the tags which a WOFF2 table directory entry may reference
// by index instead of spelling them out.
var woff2KnownTags = [63]string{
	"cmap", "head", "hhea", "hmtx", "maxp", "name", "OS/2", "post",
	"cvt ", "fpgm", "glyf", "loca", "prep", "CFF ", "VORG", "EBDT",
	"EBLC", "gasp", "hdmx", "kern", "LTSH", "PCLT", "VDMX", "vhea",
	"vmtx", "BASE", "GDEF", "GPOS", "GSUB", "EBSC", "JSTF", "MATH",
	"CBDT", "CBLC", "COLR", "CPAL", "SVG ", "sbix", "acnt", "avar",
	"bdat", "bloc", "bsln", "cvar", "fdsc", "feat", "fmtx", "fvar",
	"gvar", "hsty", "just", "lcar", "mort", "morx", "opbd", "prop",
	"trak", "Zapf", "Silf", "Glat", "Gloc", "Feat", "Sill",
}

// WOFF2 is a font in Web Open Font Format 2.0. All tables are compressed
// together into a single Brotli stream following the table directory. The
// stream is decompressed once, when the container is opened; tables are
// sliced out of the decompressed data on first access.
//
// Tables with a transformation applied (usually glyf and loca) are located,
// but not reconstructed.
type WOFF2 struct {
	fontFile
	Signature           uint32
	FlavorTag           uint32 // SFNT version of the wrapped font
	Length              uint32
	NumTables           uint16
	Reserved            uint16
	TotalSfntSize       uint32
	TotalCompressedSize uint32
	MajorVersion        uint16
	MinorVersion        uint16
	MetaOffset          uint32
	MetaLength          uint32
	MetaOrigLength      uint32
	PrivOffset          uint32
	PrivLength          uint32
	Entries             []WOFF2TableEntry
	decoded             binarySegm // decompressed table data
}

// WOFF2TableEntry is an entry of a WOFF2 table directory.
type WOFF2TableEntry struct {
	Flags            uint8
	TagNumber        uint8 // index into the known-tags table, 63 for an explicit tag
	Tag              Tag
	TransformVersion uint8
	OrigLength       uint32
	TransformLength  Option[uint32]
	Offset           uint32 // offset within the decompressed data
}

// HasTransform reports whether a transformation has been applied to the table.
// For glyf and loca, transform version 3 denotes the null transform; for all other
// tables it is version 0.
func (e WOFF2TableEntry) HasTransform() bool {
	if e.Tag == T("glyf") || e.Tag == T("loca") {
		return e.TransformVersion != 3
	}
	return e.TransformVersion != 0
}

// span is the number of bytes the table occupies in the decompressed data.
func (e WOFF2TableEntry) span() uint32 {
	return e.TransformLength.Or(e.OrigLength)
}

// NewWOFF2 reads the header and table directory of a WOFF2 font and
// decompresses its table data.
func NewWOFF2(data []byte, opts Options) (*WOFF2, error) {
	f := &WOFF2{fontFile: newFontFile(data, opts)}
	p := f.parser(TableDict{Tag: T("wOF2"), Length: woff2HeaderSize}, "woff2 header")
	f.Signature = p.Uint32()
	f.FlavorTag = p.Uint32()
	f.Length = p.Uint32()
	f.NumTables = p.Uint16()
	f.Reserved = p.Uint16()
	f.TotalSfntSize = p.Uint32()
	f.TotalCompressedSize = p.Uint32()
	f.MajorVersion = p.Uint16()
	f.MinorVersion = p.Uint16()
	f.MetaOffset = p.Offset32()
	f.MetaLength = p.Uint32()
	f.MetaOrigLength = p.Uint32()
	f.PrivOffset = p.Offset32()
	f.PrivLength = p.Uint32()
	f.Entries = make([]WOFF2TableEntry, 0, min(int(f.NumTables), len(data)))
	err := p.Err()
	for i := 0; i < int(f.NumTables) && err == nil; i++ {
		var entry WOFF2TableEntry
		if entry, err = readWOFF2TableEntry(p); err == nil {
			f.Entries = append(f.Entries, entry)
		}
	}
	if err != nil {
		return nil, f.opts.fail(fmt.Errorf("%w: cannot read WOFF2 table directory: %w", ErrUnknownFormat, err))
	}
	accumulateWOFF2Offsets(f.Entries)
	if f.opts.Decoders.BrotliDecode == nil {
		return nil, f.opts.fail(fmt.Errorf("%w: no brotli decoder available to decode WOFF2 font", ErrNoDecompressor))
	}
	compressed := f.data.clamp(p.CurrentPosition(), int(f.TotalCompressedSize))
	decoded, err := f.opts.Decoders.BrotliDecode(compressed)
	if err != nil {
		return nil, f.opts.fail(fmt.Errorf("decompressing WOFF2 table data: %w", err))
	}
	f.decoded = decoded
	for _, entry := range f.Entries {
		entry := entry
		if !f.tables.add(entry.Tag, func() (Table, error) {
			return f.decodeTable(entry)
		}) {
			f.diag.addWarning(entry.Tag, "duplicate table directory entry ignored", entry.Offset)
		}
	}
	tracer().Debugf("WOFF2 font with %d tables: %v", f.NumTables, f.tables.Tags())
	return f, nil
}

func readWOFF2TableEntry(p *Parser) (WOFF2TableEntry, error) {
	var e WOFF2TableEntry
	e.Flags = p.Uint8()
	e.TagNumber = e.Flags & 0x3f
	if e.TagNumber == 0x3f {
		e.Tag = p.Tag()
	} else {
		e.Tag = T(woff2KnownTags[e.TagNumber])
	}
	e.TransformVersion = (e.Flags & 0xc0) >> 6
	var err error
	if e.OrigLength, err = readWOFF2Length(p, e.Tag); err != nil {
		return e, err
	}
	if e.HasTransform() {
		var n uint32
		if n, err = readWOFF2Length(p, e.Tag); err != nil {
			return e, err
		}
		e.TransformLength = Some(n)
	}
	return e, p.Err()
}

// readWOFF2Length reads a table length. Five-byte varints may exceed 32 bits,
// which no WOFF2 table length can.
func readWOFF2Length(p *Parser, tag Tag) (uint32, error) {
	n := p.Uint128()
	if n > math.MaxUint32 {
		return 0, fmt.Errorf("length %d of table %s exceeds 32 bits", n, tag.Trimmed())
	}
	return uint32(n), nil
}

// accumulateWOFF2Offsets sets the offsets of tables within the decompressed
// data. Tables are stored back to back, in directory order.
func accumulateWOFF2Offsets(entries []WOFF2TableEntry) {
	var offset uint32
	for i := range entries {
		entries[i].Offset = offset
		offset += entries[i].span()
	}
}

func (f *WOFF2) decodeTable(entry WOFF2TableEntry) (Table, error) {
	data, err := f.decoded.view(int(entry.Offset), int(entry.span()))
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", entry.Tag.Trimmed(), err)
	}
	if entry.HasTransform() {
		f.diag.addWarning(entry.Tag, fmt.Sprintf("transform version %d is not reconstructed",
			entry.TransformVersion), entry.Offset)
	}
	dict := TableDict{Tag: entry.Tag, Offset: 0, Length: entry.OrigLength}
	return createTable(dict, data, f.ctx)
}

// Metadata returns the extended metadata block of the font, an XML document,
// or an empty string if there is none.
func (f *WOFF2) Metadata() (string, error) {
	if f.MetaLength == 0 {
		return "", nil
	}
	compressed, err := f.data.view(int(f.MetaOffset), int(f.MetaLength))
	if err != nil {
		return "", err
	}
	meta, err := f.opts.Decoders.BrotliDecode(compressed)
	if err != nil {
		return "", err
	}
	return string(meta), nil
}

// Format returns FormatWOFF2.
func (f *WOFF2) Format() Format {
	return FormatWOFF2
}

// Flavor returns the SFNT version of the wrapped font.
func (f *WOFF2) Flavor() uint32 {
	return f.FlavorTag
}

// Directory returns the table directory. Offsets are relative to the
// decompressed table data, lengths are original lengths.
func (f *WOFF2) Directory() []TableDict {
	dir := make([]TableDict, len(f.Entries))
	for i, e := range f.Entries {
		dir[i] = TableDict{Tag: e.Tag, Offset: e.Offset, Length: e.OrigLength}
	}
	return dir
}
