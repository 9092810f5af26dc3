/*
Package webfont loads web fonts and answers questions about their characters
and glyphs.

Fonts are delivered in one of the containers used on the web: plain TrueType
(*.ttf) or OpenType (*.otf) files, WOFF or WOFF2. A `Font` may be created from
bytes in memory, from a file or from a URL:

	f, err := webfont.Load("fonts/Inter-Regular.woff2")
	if f.Supports('ß') {
		gid := f.GlyphID('ß')
		…
	}

Decoding of the font binary is done by package `ot`, which is available to
clients through `Font.Tables`. Package webfont configures package `ot` with
default decompressors for WOFF (zlib) and WOFF2 (Brotli).

There is a certain confusion with the nomenclature of typesetting. We will
stick to the following definitions:

▪︎ A "typeface" is a family of fonts. An example is "Helvetica".
This corresponds to a TrueType "collection" (*.ttc).

▪︎ A "font" is a variant of a typeface with a certain weight, slant, etc.
An example is "Helvetica regular".

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

# Status

Font collections (*.ttc) are not supported, neither are the obsolete web font
formats EOT and SVG.

# Links

OpenType explained:
https://docs.microsoft.com/en-us/typography/opentype/

WOFF 2.0:
https://www.w3.org/TR/WOFF2/

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package webfont

import (
	"context"
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/webfont/internal/fontload"
	"github.com/npillmayer/webfont/ot"
)

// tracer writes to trace with key 'webfont'
func tracer() tracing.Trace {
	return tracing.Select("webfont")
}

// Font is a decoded web font.
//
// Tables of the font are decoded on first access, and a Font may be used from
// multiple goroutines.
type Font struct {
	Name      string // file name or name given by the client
	Source    string // file path or URL, if loaded from there
	container ot.Container
}

// FromBinary decodes a font from bytes in memory. name is used in messages
// only. data must not be modified as long as the font is in use.
func FromBinary(name string, data []byte, options ...Option) (*Font, error) {
	conf := configure(options)
	return fromBinary(name, data, conf)
}

// Load reads and decodes a font file.
func Load(path string, options ...Option) (*Font, error) {
	conf := configure(options)
	if err := conf.checkStyle(path); err != nil {
		return nil, err
	}
	bin, err := fontload.ReadFile(path)
	if err != nil {
		return nil, conf.fail(fmt.Errorf("failed to load font at %s: %w", path, err))
	}
	f, err := fromBinary(bin.Name, bin.Data, conf)
	if err != nil {
		return nil, err
	}
	f.Source = bin.Source
	return f, nil
}

// Fetch downloads and decodes a font. The download is canceled if ctx is
// canceled. Use `WithHTTPClient` to configure a client other than
// http.DefaultClient.
func Fetch(ctx context.Context, url string, options ...Option) (*Font, error) {
	conf := configure(options)
	if err := conf.checkStyle(url); err != nil {
		return nil, err
	}
	bin, err := fontload.Fetch(ctx, conf.client, url)
	if err != nil {
		return nil, conf.fail(fmt.Errorf("failed to load font at %s: %w", url, err))
	}
	f, err := fromBinary(bin.Name, bin.Data, conf)
	if err != nil {
		return nil, err
	}
	f.Source = bin.Source
	return f, nil
}

func fromBinary(name string, data []byte, conf *config) (*Font, error) {
	c, err := ot.Open(data, conf.opts)
	if errors.Is(err, ot.ErrUnknownFormat) {
		return nil, &FormatError{Name: name, Err: err}
	} else if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	tracer().Debugf("loaded %s font %s with %d tables", c.Format(), name, c.Tables().Len())
	return &Font{Name: name, container: c}, nil
}

// FormatError is returned for data which is not recognised as a font.
type FormatError struct {
	Name string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s is either an unsupported font format, or not a font at all.", e.Name)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Container returns the font's container, i.e. its table directory.
func (f *Font) Container() ot.Container {
	return f.container
}

// Format returns the container format of the font.
func (f *Font) Format() ot.Format {
	return f.container.Format()
}

// Tables returns the tables of the font.
func (f *Font) Tables() *ot.TableSet {
	return f.container.Tables()
}

// Warnings returns the issues recorded while decoding the font so far.
func (f *Font) Warnings() []ot.FontWarning {
	return f.container.Warnings()
}

// Errors returns the errors recorded while decoding the font so far.
func (f *Font) Errors() []ot.FontError {
	return f.container.Errors()
}

func (f *Font) cmap() *ot.CMapTable {
	cmap, err := f.container.Tables().CMap()
	if err != nil {
		tracer().Errorf("font %s: %v", f.Name, err)
		return nil
	}
	return cmap
}

// GlyphID returns the glyph index for a character, or 0 ('.notdef') if
// the font does not map the character.
func (f *Font) GlyphID(r rune) ot.GlyphIndex {
	if cmap := f.cmap(); cmap != nil {
		return cmap.GlyphID(r)
	}
	return 0
}

// Reverse returns the character a glyph index is mapped from.
func (f *Font) Reverse(gid ot.GlyphIndex) (ot.CharCode, bool) {
	if cmap := f.cmap(); cmap != nil {
		return cmap.Reverse(gid)
	}
	return ot.CharCode{}, false
}

// Supports reports whether the font maps a character to a glyph other
// than '.notdef'.
func (f *Font) Supports(r rune) bool {
	return f.GlyphID(r) != 0
}

// SupportsVariation reports whether the font knows a Unicode variation selector.
func (f *Font) SupportsVariation(selector rune) bool {
	if cmap := f.cmap(); cmap != nil {
		return cmap.SupportsVariation(selector)
	}
	return false
}
