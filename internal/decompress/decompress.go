/*
Package decompress provides the default decompression functions for web fonts:
zlib for WOFF tables and Brotli for WOFF2 table data.

Both functions have the signature of `ot.DecodeFunc`.
*/
package decompress

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

// MaxDecompressedSize limits the output of a single decompression.
// Font tables are size-restricted to 32-bit offsets, but a web font of
// more than 256 MB is certainly broken or hostile.
const MaxDecompressedSize = 256 << 20

// Zlib inflates a zlib stream, as used for WOFF 1.0 tables.
func Zlib(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	out, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	if err = r.Close(); err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	return out, nil
}

// Brotli decompresses a Brotli stream, as used for WOFF 2.0 table data.
func Brotli(data []byte) ([]byte, error) {
	r := brotli.NewReader(bytes.NewReader(data)) // err is always nil
	out, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("brotli: %w", err)
	}
	return out, nil
}

func readAll(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, MaxDecompressedSize+1))
	if err != nil {
		return nil, err
	}
	if n > MaxDecompressedSize {
		return nil, fmt.Errorf("decompressed data exceeds %d bytes", MaxDecompressedSize)
	}
	return buf.Bytes(), nil
}
