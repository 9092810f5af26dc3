package ot

import (
	"fmt"
)

// Reading bytes from a font's binary representation

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// binarySegm is a segment of byte data. Containers hand out binarySegms
// for table payloads; they are never written to.
type binarySegm []byte

// view returns n bytes at the given offset.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n < 0 || offset > len(b) || n > len(b)-offset {
		return nil, fmt.Errorf("%w: view of %d bytes at %d exceeds segment of size %d",
			ErrBufferBounds, n, offset, len(b))
	}
	return b[offset : offset+n], nil
}

func (b binarySegm) u16(i int) (uint16, error) {
	if i < 0 || i+2 > len(b) {
		return 0, ErrBufferBounds
	}
	return u16(b[i:]), nil
}

func (b binarySegm) u32(i int) (uint32, error) {
	if i < 0 || i+4 > len(b) {
		return 0, ErrBufferBounds
	}
	return u32(b[i:]), nil
}

// clamp returns the bytes from offset up to offset+n, or fewer if the segment
// ends before that.
func (b binarySegm) clamp(offset, n int) binarySegm {
	if offset < 0 || offset >= len(b) {
		return binarySegm{}
	}
	if n < 0 || n > len(b)-offset {
		n = len(b) - offset
	}
	return b[offset : offset+n]
}
