package ot

import (
	"fmt"
)

// DecodeFunc decompresses a block of data.
type DecodeFunc func([]byte) ([]byte, error)

// Decoders holds the decompression functions a container may need.
// WOFF tables are compressed with zlib, WOFF2 uses Brotli.
type Decoders struct {
	GzipDecode   DecodeFunc
	BrotliDecode DecodeFunc
}

// Options guide the decoding of a font.
type Options struct {
	Decoders Decoders
	// Strict turns length mismatches of decoded tables into errors.
	// Otherwise they are recorded as warnings only.
	Strict bool
	// LegacyFixed makes Fixed values be divided by 65356 instead of 65536,
	// reproducing the values of some older font libraries.
	LegacyFixed bool
	// OnError is called with every fatal error before it is returned.
	OnError func(error)
}

// Container is a font file's table directory, plus access to its tables.
// Implemented by SFNT, WOFF and WOFF2.
type Container interface {
	Format() Format
	Flavor() uint32          // SFNT version, 0x00010000 or 'OTTO'
	Directory() []TableDict  // tags, offsets and uncompressed lengths, in directory order
	Tables() *TableSet       // tables, decoded on first access
	Warnings() []FontWarning // issues recorded so far
	Errors() []FontError     // errors recorded so far
}

// Open sniffs the container format of data and reads its table directory.
func Open(data []byte, opts Options) (Container, error) {
	format, ok := ValidFontFormat(data)
	if !ok {
		return nil, opts.fail(ErrUnknownFormat)
	}
	tracer().Debugf("opening %s font of %d bytes", format, len(data))
	var c Container
	var err error
	switch format {
	case FormatWOFF:
		c, err = asContainer(NewWOFF(data, opts))
	case FormatWOFF2:
		c, err = asContainer(NewWOFF2(data, opts))
	default:
		c, err = asContainer(NewSFNT(data, opts))
	}
	return c, err
}

// asContainer avoids wrapping a nil pointer into a non-nil interface.
func asContainer[C Container](c C, err error) (Container, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (opts *Options) fail(err error) error {
	if opts.OnError != nil {
		opts.OnError(err)
	}
	return err
}

// fontFile is the common part of all containers.
type fontFile struct {
	data   binarySegm
	opts   *Options
	diag   *diagnostics
	tables *TableSet
	ctx    *tableContext
}

func newFontFile(data []byte, opts Options) fontFile {
	f := fontFile{
		data: data,
		opts: &opts,
		diag: &diagnostics{},
	}
	f.tables = &TableSet{entries: make(map[string]*Lazy[Table])}
	f.ctx = &tableContext{tables: f.tables, diag: f.diag, opts: f.opts}
	return f
}

// Tables returns the tables of the font.
func (f *fontFile) Tables() *TableSet {
	return f.tables
}

// Warnings returns all warnings recorded while decoding.
func (f *fontFile) Warnings() []FontWarning {
	return f.diag.allWarnings()
}

// Errors returns all errors recorded while decoding.
func (f *fontFile) Errors() []FontError {
	return f.diag.allErrors()
}

func (f *fontFile) parser(dict TableDict, name string) *Parser {
	return newParser(dict, f.data, name, f.diag, f.opts)
}

// --- Table set -------------------------------------------------------------

// TableSet maps table tags to tables. Tables are decoded on first access;
// the set is filled once, when a container reads its table directory.
type TableSet struct {
	order   []string
	entries map[string]*Lazy[Table]
}

func (ts *TableSet) add(tag Tag, decode func() (Table, error)) bool {
	key := tag.Trimmed()
	if _, exists := ts.entries[key]; exists {
		return false
	}
	ts.order = append(ts.order, key)
	ts.entries[key] = NewLazy(decode)
	return true
}

// Table returns the table for a tag, decoding it if necessary. Trailing spaces
// in tag are insignificant, i.e. "cvt " and "cvt" denote the same table.
// If the font does not contain the table, ErrNoSuchTable is returned.
func (ts *TableSet) Table(tag string) (Table, error) {
	entry, ok := ts.entries[T(tag).Trimmed()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchTable, tag)
	}
	return entry.Get()
}

// Has reports whether the font contains a table for tag.
func (ts *TableSet) Has(tag string) bool {
	_, ok := ts.entries[T(tag).Trimmed()]
	return ok
}

// Decoded reports whether the table for tag has already been decoded.
func (ts *TableSet) Decoded(tag string) bool {
	entry, ok := ts.entries[T(tag).Trimmed()]
	return ok && entry.Evaluated()
}

// Tags returns the tags of all tables, in directory order.
func (ts *TableSet) Tags() []string {
	return append([]string{}, ts.order...)
}

// Len returns the number of tables.
func (ts *TableSet) Len() int {
	return len(ts.order)
}

// tableAs returns a table of a concrete type.
func tableAs[T Table](ts *TableSet, tag string) (T, error) {
	var zero T
	t, err := ts.Table(tag)
	if err != nil {
		return zero, err
	}
	typed, ok := t.(T)
	if !ok {
		return zero, fmt.Errorf("table %q has unexpected type %T", tag, t)
	}
	return typed, nil
}

// CMap returns the decoded 'cmap' table.
func (ts *TableSet) CMap() (*CMapTable, error) { return tableAs[*CMapTable](ts, "cmap") }

// Head returns the decoded 'head' table.
func (ts *TableSet) Head() (*HeadTable, error) { return tableAs[*HeadTable](ts, "head") }

// HHea returns the decoded 'hhea' table.
func (ts *TableSet) HHea() (*HHeaTable, error) { return tableAs[*HHeaTable](ts, "hhea") }

// HMtx returns the decoded 'hmtx' table.
func (ts *TableSet) HMtx() (*HMtxTable, error) { return tableAs[*HMtxTable](ts, "hmtx") }

// MaxP returns the decoded 'maxp' table.
func (ts *TableSet) MaxP() (*MaxPTable, error) { return tableAs[*MaxPTable](ts, "maxp") }

// Name returns the decoded 'name' table.
func (ts *TableSet) Name() (*NameTable, error) { return tableAs[*NameTable](ts, "name") }

// OS2 returns the decoded 'OS/2' table.
func (ts *TableSet) OS2() (*OS2Table, error) { return tableAs[*OS2Table](ts, "OS/2") }

// Post returns the decoded 'post' table.
func (ts *TableSet) Post() (*PostTable, error) { return tableAs[*PostTable](ts, "post") }

// Loca returns the decoded 'loca' table.
func (ts *TableSet) Loca() (*LocaTable, error) { return tableAs[*LocaTable](ts, "loca") }

// --- Table creation --------------------------------------------------------

// tableContext is handed to table decoders. Decoders of tables depending
// on other tables (e.g. 'hmtx', which needs 'hhea' and 'maxp') get them from
// the table set.
type tableContext struct {
	tables *TableSet
	diag   *diagnostics
	opts   *Options
}

// createTable decodes the table located by dict within data. If no decoder is
// registered for the table's tag, a generic table is returned and a warning
// is recorded.
func createTable(dict TableDict, data binarySegm, ctx *tableContext) (Table, error) {
	name := dict.Tag.sanitized()
	p := newParser(dict, data, dict.Tag.Trimmed(), ctx.diag, ctx.opts)
	decode, ok := lookupDecoder(name)
	if !ok {
		ctx.diag.addWarning(dict.Tag, fmt.Sprintf("has no definition for %s. The table was skipped.", name), dict.Offset)
		return newGenericTable(p), nil
	}
	tracer().Debugf("decoding table %s at offset %d, length %d", dict.Tag, dict.Offset, dict.Length)
	t, err := decode(p, ctx)
	if err != nil {
		ctx.diag.addError(dict.Tag, "table", err.Error(), SeverityMajor, dict.Offset)
		return nil, fmt.Errorf("table %s: %w", dict.Tag.Trimmed(), err)
	}
	return t, nil
}
