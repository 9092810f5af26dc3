package decompress

import (
	"bytes"
	"compress/zlib"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = bytes.Repeat([]byte("The quick brown fox jumps over the lazy dog. "), 40)

func TestZlib(t *testing.T) {
	var b bytes.Buffer
	w := zlib.NewWriter(&b)
	_, err := w.Write(sample)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	//
	out, err := Zlib(b.Bytes())
	require.NoError(t, err)
	assert.Equal(t, sample, out)
}

func TestZlibCorrupt(t *testing.T) {
	_, err := Zlib([]byte{1, 2, 3, 4})
	assert.Error(t, err)
}

func TestBrotli(t *testing.T) {
	var b bytes.Buffer
	w := brotli.NewWriter(&b)
	_, err := w.Write(sample)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	//
	out, err := Brotli(b.Bytes())
	require.NoError(t, err)
	assert.Equal(t, sample, out)
}
