/*
Package ot decodes the binary structure of OpenType fonts, as delivered
in one of three containers:

▪︎ SFNT, i.e. plain TrueType (*.ttf) or CFF-flavoured OpenType (*.otf) files

▪︎ WOFF, where every table may be individually zlib-compressed

▪︎ WOFF2, where all tables are compressed together as a single Brotli stream

Clients hand a byte slice to `Open`, which sniffs the container format from the
magic bytes, reads the table directory, and returns a `Container`. The container
exposes a `TableSet`, from which tables are retrieved by tag:

	c, err := ot.Open(data, opts)
	cmap, err := c.Tables().CMap()
	gid := cmap.GlyphID('A')

Tables are decoded lazily: nothing but the table directory is read when a
container is opened. A table is decoded on first access and cached from then
on. Many tables defer decoding of their larger sub-structures (arrays,
sub-tables, lists of records) in the same way, see type `Lazy`.

Package `ot` does not decompress data by itself. WOFF and WOFF2 containers
require decompression functions to be set in `Options.Decoders`; package
`webfont` at the root of this module wires in default implementations.

Decoding is lenient. Fonts in the wild often contain tables which do not
conform exactly to the OpenType specification, and an application using such
a font should not fail because of it. Structural anomalies are recorded as
warnings (see `FontWarning`) and decoding continues. Clients wanting to be
notified about malformed tables set `Options.Strict`.

Decoding a table never modifies the font's bytes. Containers may be used from
multiple goroutines.

# Status

All tables of the OpenType core set are recognised. Shaping-related tables
(GSUB, GPOS, GDEF, BASE) are decoded structurally only; applying lookups is out
of scope. WOFF2 transformed glyf/loca tables are located but not reconstructed.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.opentype'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype")
}
