package webfont

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSSFormat(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webfont")
	defer teardown()
	//
	for path, want := range map[string]string{
		"fonts/Go-Regular.ttf":                       "truetype",
		"Inter.OTF":                                  "opentype",
		"/static/Inter.woff":                         "woff",
		"https://example.com/f/Inter.woff2?v=3#main": "woff2",
	} {
		format, err := CSSFormat(path, true)
		require.NoError(t, err, path)
		assert.Equal(t, want, format, path)
	}
}

func TestUnsupportedCSSFormat(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webfont")
	defer teardown()
	//
	_, err := CSSFormat("legacy.eot", true)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "The .eot format is not supported")
	_, err = CSSFormat("Helvetica.ttc", true)
	assert.Contains(t, err.Error(), "font collections are not (yet?) supported")
	_, err = CSSFormat("notes.txt", true)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "notes.txt is not a known webfont format.")
	// without errorOnStyle there is no error, and no format
	format, err := CSSFormat("legacy.svg", false)
	assert.NoError(t, err)
	assert.Empty(t, format)
}

func TestFontFace(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webfont")
	defer teardown()
	//
	rule, err := FontFace("Inter", "/fonts/Inter.woff2", map[string]string{
		"font-weight": "400",
		"font-style":  "normal",
	}, true)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rule, "@font-face {\n"))
	assert.Contains(t, rule, `font-family: "Inter";`)
	assert.Contains(t, rule, `src: url("/fonts/Inter.woff2") format("woff2");`)
	assert.Less(t, strings.Index(rule, "font-style"), strings.Index(rule, "font-weight"))
	//
	rule, err = FontFace("Old", "/fonts/old.fon", nil, false)
	assert.NoError(t, err)
	assert.Empty(t, rule)
}
