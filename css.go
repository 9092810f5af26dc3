package webfont

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
)

// ErrUnsupportedFormat is returned for font files in formats which are not
// usable as web fonts.
var ErrUnsupportedFormat = errors.New("unsupported font format")

var cssFormats = map[string]string{
	"ttf":   "truetype",
	"otf":   "opentype",
	"woff":  "woff",
	"woff2": "woff2",
}

var unsupportedFormats = map[string]string{
	"eot": "The .eot format is not supported: it died in January 12, 2016, when Microsoft retired all versions of IE that didn't already support WOFF.",
	"svg": "The .svg format is not supported: SVG fonts (not to be confused with OpenType with embedded SVG) were so bad we took the entire fonts chapter out of the SVG specification again.",
	"fon": "The .fon format is not supported: this is an ancient Windows bitmap font format.",
	"ttc": "Based on the current CSS specification, font collections are not (yet?) supported.",
}

// CSSFormat returns the value of the CSS 'format()' hint for a font file,
// derived from the extension of a file path or URL.
//
// For extensions not denoting a web font format, an error wrapping
// ErrUnsupportedFormat is returned if errorOnStyle is set. Otherwise a warning
// is traced and the empty string is returned.
func CSSFormat(fontpath string, errorOnStyle bool) (string, error) {
	if u, err := url.Parse(fontpath); err == nil && u.Scheme != "" {
		fontpath = u.Path
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(fontpath), "."))
	if format, ok := cssFormats[ext]; ok {
		return format, nil
	}
	msg, ok := unsupportedFormats[ext]
	if !ok {
		msg = fmt.Sprintf("%s is not a known webfont format.", fontpath)
	}
	if errorOnStyle {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, msg)
	}
	tracer().Infof("Could not load font: %s", msg)
	return "", nil
}

// FontFace returns a CSS @font-face rule for a font family served from url.
// Additional descriptors (e.g., "font-weight") are given in rules and are
// written in alphabetical order.
func FontFace(family, url string, rules map[string]string, errorOnStyle bool) (string, error) {
	format, err := CSSFormat(url, errorOnStyle)
	if err != nil || format == "" {
		return "", err
	}
	keys := make([]string, 0, len(rules))
	for key := range rules {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var b strings.Builder
	fmt.Fprintf(&b, "@font-face {\n    font-family: %q;\n", family)
	for _, key := range keys {
		fmt.Fprintf(&b, "    %s: %s;\n", key, rules[key])
	}
	fmt.Fprintf(&b, "    src: url(%q) format(%q);\n}", url, format)
	return b.String(), nil
}
