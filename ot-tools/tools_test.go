package main

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/webfont"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestParseCodepoints(t *testing.T) {
	runes, err := parseCodepoints("U+0627, 0x644 41")
	require.NoError(t, err)
	assert.Equal(t, []rune{0x0627, 0x0644, 0x41}, runes)
	_, err = parseCodepoints("U+110000")
	assert.Error(t, err)
	_, err = parseCodepoints("xyz")
	assert.Error(t, err)
}

func TestMapCharacters(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webfont.cli")
	defer teardown()
	//
	f, err := webfont.FromBinary("Go-Regular.ttf", goregular.TTF)
	require.NoError(t, err)
	lines := mapCharacters(f, "A\U0001F600")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "U+0041  glyph")
	assert.Contains(t, lines[0], "LATIN CAPITAL LETTER A")
	assert.Contains(t, lines[1], ".notdef")
}
