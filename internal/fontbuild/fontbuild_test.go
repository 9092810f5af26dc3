package fontbuild

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUintBase128(t *testing.T) {
	assert.Equal(t, []byte{0x3f}, AppendUintBase128(nil, 63))
	assert.Equal(t, []byte{0x81, 0x00}, AppendUintBase128(nil, 128))
	assert.Equal(t, []byte{0x8f, 0xff, 0xff, 0xff, 0x7f}, AppendUintBase128(nil, 0xffffffff))
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0x7f}, AppendUintBase128(nil, 1<<35-1))
}

func TestSFNTLayout(t *testing.T) {
	font := SFNT(TrueType,
		Table{Tag: "head", Data: Head(1000, 0)},
		Table{Tag: "cvt", Data: []byte{0, 1, 0}},
	)
	require.Equal(t, uint32(TrueType), binary.BigEndian.Uint32(font))
	require.Equal(t, uint16(2), binary.BigEndian.Uint16(font[4:]))
	assert.Equal(t, "cvt ", string(font[12+16:12+16+4]))
	// head starts right after the directory, cvt after padded head
	assert.Equal(t, uint32(12+32), binary.BigEndian.Uint32(font[12+8:]))
	assert.Equal(t, uint32(12+32+56), binary.BigEndian.Uint32(font[12+16+8:]))
	assert.Equal(t, 12+32+56+4, len(font))
}

func TestCMapFormat4Layout(t *testing.T) {
	sub := CMapFormat4(Segment{Start: 0x41, End: 0x5a, Delta: -29})
	require.Equal(t, uint16(4), binary.BigEndian.Uint16(sub))
	assert.Equal(t, uint16(len(sub)), binary.BigEndian.Uint16(sub[2:]))
	assert.Equal(t, uint16(4), binary.BigEndian.Uint16(sub[6:]), "segCountX2")
}

func TestWOFFCompressesOnlyIfSmaller(t *testing.T) {
	big := make([]byte, 400)
	font := WOFF(TrueType, true,
		Table{Tag: "glyf", Data: big},
		Table{Tag: "cvt", Data: []byte{0, 1}},
	)
	entry := func(i int) (compLength, origLength uint32) {
		at := 44 + 20*i
		return binary.BigEndian.Uint32(font[at+8:]), binary.BigEndian.Uint32(font[at+12:])
	}
	comp, orig := entry(0)
	assert.Less(t, comp, orig)
	comp, orig = entry(1)
	assert.Equal(t, comp, orig)
	assert.Equal(t, uint32(len(font)), binary.BigEndian.Uint32(font[8:]))
}
