package ot

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TableDict locates a structure within a byte buffer: a table tag, the offset
// of the table within the buffer, and its declared length.
type TableDict struct {
	Tag    Tag
	Offset uint32
	Length uint32
}

// Parser is a cursor over a font's binary data.
//
// Every read starts at the current position and advances it by the number of
// bytes consumed. The current position is the sum of a base offset and the
// number of bytes read since the base was set. Reading past the end of the
// buffer does not panic: the parser records an error, returns zero values from
// then on, and reports the error through `Err`.
//
// Parsers are not safe for concurrent use. Decoders needing to read a
// sub-structure at some offset create a new parser with `At`, which leaves
// the receiver untouched.
type Parser struct {
	name   string
	tag    Tag
	data   binarySegm
	start  int // base offset, set by SetPosition
	offset int // bytes read since base offset
	length int // declared length of the structure read
	err    error
	diag   *diagnostics
	opts   *Options
}

// NewParser creates a parser positioned at the offset given by dict,
// reading from data. If name is empty, the table tag is used as name.
func NewParser(dict TableDict, data []byte, name string) *Parser {
	return newParser(dict, data, name, nil, nil)
}

func newParser(dict TableDict, data []byte, name string, diag *diagnostics, opts *Options) *Parser {
	if name == "" {
		name = dict.Tag.Trimmed()
	}
	if diag == nil {
		diag = &diagnostics{}
	}
	if opts == nil {
		opts = &Options{}
	}
	return &Parser{
		name:   name,
		tag:    dict.Tag,
		data:   data,
		start:  int(dict.Offset),
		length: int(dict.Length),
		diag:   diag,
		opts:   opts,
	}
}

// Name returns the name of the structure this parser reads.
func (p *Parser) Name() string {
	return p.name
}

// Length returns the declared length of the structure this parser reads.
func (p *Parser) Length() int {
	return p.length
}

// Err returns the first error encountered while reading, if any.
func (p *Parser) Err() error {
	return p.err
}

// CurrentPosition returns the absolute position of the next read.
func (p *Parser) CurrentPosition() int {
	return p.start + p.offset
}

// SetPosition moves the parser to an absolute position. The count of bytes read,
// which is checked by VerifyLength, restarts at zero.
func (p *Parser) SetPosition(pos int) {
	p.start = pos
	p.offset = 0
}

// At returns a new parser positioned at pos, sharing the receiver's buffer,
// name and diagnostics. The receiver's position is not changed.
func (p *Parser) At(pos int) *Parser {
	q := *p
	q.start = pos
	q.offset = 0
	q.err = nil
	return &q
}

// Skip advances the parser by n values of the given bit width (8 if bits is 0).
func (p *Parser) Skip(n int, bits int) {
	if bits == 0 {
		bits = 8
	}
	p.read(n * bits / 8)
}

func (p *Parser) available(size int) bool {
	if p.err != nil {
		return false
	}
	pos := p.CurrentPosition()
	if size < 0 || pos < 0 || pos > len(p.data) || size > len(p.data)-pos {
		p.err = fmt.Errorf("%w: cannot read %d bytes at offset %d of %q (size %d)",
			ErrBufferBounds, size, pos, p.name, len(p.data))
		return false
	}
	return true
}

func (p *Parser) read(n int) []byte {
	if !p.available(n) {
		return nil
	}
	pos := p.CurrentPosition()
	p.offset += n
	return p.data[pos : pos+n]
}

// Uint8 reads an unsigned byte.
func (p *Parser) Uint8() uint8 {
	if b := p.read(1); b != nil {
		return b[0]
	}
	return 0
}

// Int8 reads a signed byte.
func (p *Parser) Int8() int8 {
	return int8(p.Uint8())
}

// Uint16 reads a big-endian uint16.
func (p *Parser) Uint16() uint16 {
	if b := p.read(2); b != nil {
		return u16(b)
	}
	return 0
}

// Int16 reads a big-endian int16.
func (p *Parser) Int16() int16 {
	return int16(p.Uint16())
}

// Uint24 reads a 24-bit big-endian unsigned integer.
func (p *Parser) Uint24() uint32 {
	if b := p.read(3); b != nil {
		return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	}
	return 0
}

// Uint32 reads a big-endian uint32.
func (p *Parser) Uint32() uint32 {
	if b := p.read(4); b != nil {
		return u32(b)
	}
	return 0
}

// Int32 reads a big-endian int32.
func (p *Parser) Int32() int32 {
	return int32(p.Uint32())
}

// Uint64 reads a big-endian uint64.
func (p *Parser) Uint64() uint64 {
	if b := p.read(8); b != nil {
		return uint64(u32(b))<<32 | uint64(u32(b[4:]))
	}
	return 0
}

// Int64 reads a big-endian int64.
func (p *Parser) Int64() int64 {
	return int64(p.Uint64())
}

// FWord reads a signed quantity in font design units.
func (p *Parser) FWord() int16 {
	return p.Int16()
}

// UFWord reads an unsigned quantity in font design units.
func (p *Parser) UFWord() uint16 {
	return p.Uint16()
}

// Offset16 reads a 16-bit offset.
func (p *Parser) Offset16() uint16 {
	return p.Uint16()
}

// Offset32 reads a 32-bit offset.
func (p *Parser) Offset32() uint32 {
	return p.Uint32()
}

// Uint128 reads a variable-length UIntBase128 as used by WOFF2. Each byte
// contributes 7 bits, most significant first; the high bit of a byte is set if
// more bytes follow. At most 5 bytes are consumed.
func (p *Parser) Uint128() uint64 {
	var value uint64
	for i := 0; i < 5; i++ {
		b := p.Uint8()
		value = value*128 + uint64(b&0x7f)
		if b < 0x80 {
			break
		}
	}
	return value
}

// Tag reads a 4-byte tag.
func (p *Parser) Tag() Tag {
	if b := p.read(4); b != nil {
		return MakeTag(b)
	}
	return 0
}

// Fixed reads a signed 16.16 fixed-point number, rounded to 3 decimals.
func (p *Parser) Fixed() float64 {
	major := p.Int16()
	minor := p.Uint16()
	divisor := 65536.0
	if p.opts.LegacyFixed {
		divisor = 65356.0
	}
	return float64(major) + math.Round(1000*float64(minor)/divisor)/1000
}

// LegacyFixed reads a 16.16 version number the way older table versions are
// written, where the fractional part is given as hex digits:
// 0x00005000 is version 0.5, 0x00025000 is version 2.5.
func (p *Parser) LegacyFixed() float64 {
	major := p.Uint16()
	minor := p.Uint16()
	frac := fmt.Sprintf("%04x", minor)
	if i := strings.IndexFunc(frac, func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
		frac = frac[:i]
	}
	v, err := strconv.ParseFloat(fmt.Sprintf("%d.%s", major, frac), 64)
	if err != nil {
		return float64(major)
	}
	return v
}

// secondsFrom1904To1970 is the offset between LONGDATETIME's epoch and the Unix epoch.
const secondsFrom1904To1970 = 2082844800

// LongDateTime reads a LONGDATETIME, i.e. seconds since 1904-01-01T00:00:00Z.
func (p *Parser) LongDateTime() time.Time {
	secs := p.Int64()
	return time.Unix(secs-secondsFrom1904To1970, 0).UTC()
}

// F2Dot14 reads a signed 2.14 fixed-point number.
func (p *Parser) F2Dot14() float64 {
	bits := p.Uint16()
	integer := [4]float64{0, 1, -2, -1}[bits>>14]
	fraction := float64(bits&0x3fff) / 16384
	return integer + fraction
}

// Flags reads an n-bit unsigned integer (n ∈ {8,16,32,64}) and returns its bits,
// most significant bit first.
func (p *Parser) Flags(n int) []bool {
	var v uint64
	switch n {
	case 8:
		v = uint64(p.Uint8())
	case 16:
		v = uint64(p.Uint16())
	case 32:
		v = uint64(p.Uint32())
	case 64:
		v = p.Uint64()
	default:
		p.warn(fmt.Sprintf("cannot read flags of %d bits", n))
		return nil
	}
	flags := make([]bool, n)
	for i := range flags {
		flags[i] = v&(uint64(1)<<uint(n-1-i)) != 0
	}
	return flags
}

// ReadBytes returns the next n bytes. The result is a view of the parser's
// buffer and must not be modified.
func (p *Parser) ReadBytes(n int) []byte {
	return p.read(n)
}

// Values reads n integers of the given bit width (8, 16, 32 or 64), signed or
// unsigned, and returns them in order.
func (p *Parser) Values(n int, bits int, signed bool) []int64 {
	if bits == 0 {
		bits = 8
	}
	if !p.available(n * bits / 8) {
		return nil
	}
	values := make([]int64, n)
	for i := range values {
		switch {
		case bits == 8 && signed:
			values[i] = int64(p.Int8())
		case bits == 8:
			values[i] = int64(p.Uint8())
		case bits == 16 && signed:
			values[i] = int64(p.Int16())
		case bits == 16:
			values[i] = int64(p.Uint16())
		case bits == 32 && signed:
			values[i] = int64(p.Int32())
		case bits == 32:
			values[i] = int64(p.Uint32())
		default:
			values[i] = p.Int64()
		}
	}
	return values
}

// Uint8s reads n bytes into a new slice.
func (p *Parser) Uint8s(n int) []uint8 {
	b := p.read(n)
	if b == nil {
		return nil
	}
	return append([]uint8{}, b...)
}

// Uint16s reads n uint16 values.
func (p *Parser) Uint16s(n int) []uint16 {
	return readArray(p, n, 2, (*Parser).Uint16)
}

// Int16s reads n int16 values.
func (p *Parser) Int16s(n int) []int16 {
	return readArray(p, n, 2, (*Parser).Int16)
}

// Uint32s reads n uint32 values.
func (p *Parser) Uint32s(n int) []uint32 {
	return readArray(p, n, 4, (*Parser).Uint32)
}

// Glyphs reads n glyph indices.
func (p *Parser) Glyphs(n int) []GlyphIndex {
	return readArray(p, n, 2, func(p *Parser) GlyphIndex {
		return GlyphIndex(p.Uint16())
	})
}

// readArray reads n items of a fixed byte size. The size is checked against
// the remaining buffer before anything is allocated, as counts are taken from
// untrusted font data.
func readArray[T any](p *Parser, n int, size int, item func(*Parser) T) []T {
	if n < 0 || !p.available(n*size) {
		return nil
	}
	items := make([]T, n)
	for i := range items {
		items[i] = item(p)
	}
	return items
}

// VerifyLength checks if the number of bytes read since the last positioning
// matches the declared length. A mismatch is recorded as a warning; in strict
// mode, an error is returned as well.
func (p *Parser) VerifyLength() error {
	if p.offset == p.length {
		return nil
	}
	issue := fmt.Sprintf("unexpected parsed table size (%d) for %q (expected %d)", p.offset, p.name, p.length)
	p.diag.addWarning(p.tag, issue, uint32(p.start))
	if p.opts.Strict {
		return fmt.Errorf("%w: %s", ErrLengthMismatch, issue)
	}
	return nil
}

func (p *Parser) warn(issue string) {
	p.diag.addWarning(p.tag, issue, uint32(p.CurrentPosition()))
}

// --- Records ---------------------------------------------------------------

// record is the common base of decoded structures. It remembers the parser it
// was decoded from and its own start position, so that sub-structures located
// at offsets relative to the record may be read later.
type record struct {
	p     *Parser
	start int
}

func newRecord(p *Parser) record {
	return record{p: p, start: p.CurrentPosition()}
}

// Start returns the absolute position of this record within its buffer.
func (r record) Start() int {
	return r.start
}

// at returns a parser positioned at an offset relative to the record start.
func (r record) at(offset int) *Parser {
	return r.p.At(r.start + offset)
}

func (r record) warn(issue string) {
	r.p.diag.addWarning(r.p.tag, issue, uint32(r.start))
}
