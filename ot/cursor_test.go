package ot

import (
	"errors"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/webfont/internal/fontbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parserFor(data []byte) *Parser {
	return NewParser(TableDict{Tag: T("test"), Length: uint32(len(data))}, data, "")
}

func TestParserScalars(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	p := parserFor([]byte{
		0xff,                   // uint8
		0xff,                   // int8
		0x12, 0x34,             // uint16
		0xff, 0xfe,             // int16
		0x01, 0x02, 0x03,       // uint24
		0xde, 0xad, 0xbe, 0xef, // uint32
		'c', 'm', 'a', 'p',     // tag
	})
	assert.Equal(t, uint8(255), p.Uint8())
	assert.Equal(t, int8(-1), p.Int8())
	assert.Equal(t, uint16(0x1234), p.Uint16())
	assert.Equal(t, int16(-2), p.Int16())
	assert.Equal(t, uint32(0x010203), p.Uint24())
	assert.Equal(t, uint32(0xdeadbeef), p.Uint32())
	assert.Equal(t, T("cmap"), p.Tag())
	assert.Equal(t, 17, p.CurrentPosition())
	require.NoError(t, p.Err())
	require.NoError(t, p.VerifyLength())
}

func TestParserUint128(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	p := parserFor([]byte{0x3f, 0x81, 0x00, 0x8f, 0xff, 0xff, 0xff, 0x7f})
	assert.Equal(t, uint64(63), p.Uint128())
	assert.Equal(t, uint64(128), p.Uint128())
	assert.Equal(t, uint64(0xffffffff), p.Uint128())
	assert.NoError(t, p.Err())
}

func TestParserUint128RoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	values := []uint64{0, 1, 127, 128, 1 << 14, 1<<14 - 1, 1 << 21, 1 << 28, 1<<32 - 1, 1 << 32, 1<<35 - 1}
	for v := uint64(3); v < 1<<35; v = v*7 + 5 {
		values = append(values, v)
	}
	for _, v := range values {
		data := fontbuild.AppendUintBase128(nil, v)
		require.LessOrEqual(t, len(data), 5, "encoding of %d", v)
		p := parserFor(data)
		assert.Equal(t, v, p.Uint128(), "round trip of %d", v)
		assert.Equal(t, len(data), p.CurrentPosition(), "bytes consumed for %d", v)
		assert.NoError(t, p.Err())
	}
}

func TestParserFixed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	data := []byte{0x00, 0x01, 0x80, 0x00}
	assert.Equal(t, 1.5, parserFor(data).Fixed())
	legacy := newParser(TableDict{Length: 4}, data, "fixed", nil, &Options{LegacyFixed: true})
	assert.InDelta(t, 1.501, legacy.Fixed(), 1e-9)
	negative := parserFor([]byte{0xff, 0xff, 0x40, 0x00})
	assert.Equal(t, -0.75, negative.Fixed())
}

func TestParserLegacyFixed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	assert.Equal(t, 0.5, parserFor([]byte{0x00, 0x00, 0x50, 0x00}).LegacyFixed())
	assert.Equal(t, 2.5, parserFor([]byte{0x00, 0x02, 0x50, 0x00}).LegacyFixed())
	assert.Equal(t, 1.0, parserFor([]byte{0x00, 0x01, 0x00, 0x00}).LegacyFixed())
	assert.Equal(t, 3.0, parserFor([]byte{0x00, 0x03, 0x00, 0x00}).LegacyFixed())
}

func TestParserF2Dot14(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	p := parserFor([]byte{0x40, 0x00, 0xc0, 0x00, 0x70, 0x00})
	assert.Equal(t, 1.0, p.F2Dot14())
	assert.Equal(t, -1.0, p.F2Dot14())
	assert.Equal(t, 1.75, p.F2Dot14())
}

func TestParserLongDateTime(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	// 1970-01-01 is 2082844800 seconds after the 1904 epoch
	p := parserFor([]byte{0, 0, 0, 0, 0x7c, 0x25, 0xb0, 0x80})
	assert.Equal(t, time.Unix(0, 0).UTC(), p.LongDateTime())
}

func TestParserFlags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	p := parserFor([]byte{0x81, 0x00, 0x01})
	flags := p.Flags(8)
	require.Len(t, flags, 8)
	assert.Equal(t, []bool{true, false, false, false, false, false, false, true}, flags)
	flags = p.Flags(16)
	require.Len(t, flags, 16)
	assert.True(t, flags[15])
	assert.False(t, flags[0])
	assert.Nil(t, p.Flags(12))
}

func TestParserValues(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	p := parserFor([]byte{0xff, 0xff, 0x00, 0x02})
	assert.Equal(t, []int64{-1, 2}, p.Values(2, 16, true))
	p = parserFor([]byte{0xff, 0xff, 0x00, 0x02})
	assert.Equal(t, []int64{65535, 2}, p.Values(2, 16, false))
	p = parserFor([]byte{0x00, 0x05, 0x00, 0x07})
	assert.Equal(t, []uint16{5, 7}, p.Uint16s(2))
}

func TestParserBoundsAreSticky(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	p := parserFor([]byte{0x00, 0x01, 0x02})
	assert.Equal(t, uint16(1), p.Uint16())
	assert.Equal(t, uint32(0), p.Uint32())
	require.Error(t, p.Err())
	assert.True(t, errors.Is(p.Err(), ErrBufferBounds))
	// once failed, every read returns zero
	assert.Equal(t, uint8(0), p.Uint8())
	assert.Nil(t, p.Uint16s(1))
	assert.True(t, errors.Is(p.Err(), ErrBufferBounds))
}

func TestParserArrayCountIsChecked(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	p := parserFor([]byte{0x00, 0x01})
	assert.Nil(t, p.Uint32s(1<<30))
	assert.ErrorIs(t, p.Err(), ErrBufferBounds)
}

func TestParserAt(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	p := parserFor([]byte{0x00, 0x01, 0x00, 0x02, 0x00, 0x03})
	p.Uint16()
	q := p.At(4)
	assert.Equal(t, uint16(3), q.Uint16())
	assert.Equal(t, 2, p.CurrentPosition())
	assert.Equal(t, uint16(2), p.Uint16())
	p.SetPosition(0)
	p.Skip(1, 16)
	assert.Equal(t, uint16(2), p.Uint16())
}

func TestVerifyLength(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	data := []byte{0x00, 0x01, 0x00, 0x02}
	diag := &diagnostics{}
	lenient := newParser(TableDict{Tag: T("test"), Length: 4}, data, "", diag, &Options{})
	lenient.Uint16()
	assert.NoError(t, lenient.VerifyLength())
	assert.Len(t, diag.allWarnings(), 1)
	//
	diag = &diagnostics{}
	strict := newParser(TableDict{Tag: T("test"), Length: 4}, data, "", diag, &Options{Strict: true})
	strict.Uint16()
	assert.ErrorIs(t, strict.VerifyLength(), ErrLengthMismatch)
	assert.Len(t, diag.allWarnings(), 1)
}
