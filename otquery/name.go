/*
Package otquery answers typical questions about a font: its names, its
metrics, and which glyphs it uses for which characters.

All functions accept a container as returned by `ot.Open`, and return zero
values if the font lacks the tables necessary to answer a query.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otquery

import (
	"iter"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/webfont/ot"
	"golang.org/x/image/font/sfnt"
)

// tracer writes to trace with key 'font.opentype'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype")
}

// PlatformID identifies the platform of a name record.
type PlatformID uint16

const (
	PlatformIDUnicode   PlatformID = 0
	PlatformIDMacintosh PlatformID = 1
	PlatformIDWindows   PlatformID = 3
)

// EncodingID identifies the encoding of a name record, relative to its platform.
type EncodingID uint16

const (
	EncodingIDWindowsSymbol EncodingID = 0 // for now we will not support symbol fonts
	EncodingIDWindowsBMP    EncodingID = 1
	EncodingIDUnicodeBMP    EncodingID = 3
	EncodingIDMacRoman      EncodingID = 0
)

// NamesRange yields decoded `(nameID, value)` pairs from a font's OpenType
// `name` table.
//
// Only currently supported encodings are yielded (Unicode BMP, Windows BMP
// and Mac Roman), and empty strings are skipped.
func NamesRange(otf ot.Container) iter.Seq2[sfnt.NameID, string] {
	var names *ot.NameTable
	if otf != nil {
		var err error
		if names, err = otf.Tables().Name(); err != nil {
			tracer().Debugf("no usable name table in font: %v", err)
		}
	}
	return func(yield func(sfnt.NameID, string) bool) {
		if names == nil {
			return
		}
		for _, rec := range names.NameRecords {
			if !isSupportedNameEncoding(PlatformID(rec.PlatformID), EncodingID(rec.EncodingID)) {
				continue
			}
			value := rec.String()
			if value == "" {
				continue
			}
			if !yield(sfnt.NameID(rec.NameID), value) {
				return
			}
		}
	}
}

func isSupportedNameEncoding(platform PlatformID, encoding EncodingID) bool {
	return (platform == PlatformIDUnicode && encoding == EncodingIDUnicodeBMP) ||
		(platform == PlatformIDWindows && encoding == EncodingIDWindowsBMP) ||
		(platform == PlatformIDMacintosh && encoding == EncodingIDMacRoman)
}

var nameKeys = map[sfnt.NameID]string{
	sfnt.NameIDCopyright:            "copyright",
	sfnt.NameIDFamily:               "family",
	sfnt.NameIDSubfamily:            "subfamily",
	sfnt.NameIDUniqueIdentifier:     "id",
	sfnt.NameIDFull:                 "fullname",
	sfnt.NameIDVersion:              "version",
	sfnt.NameIDPostScript:           "postscript",
	sfnt.NameIDTrademark:            "trademark",
	sfnt.NameIDManufacturer:         "manufacturer",
	sfnt.NameIDDesigner:             "designer",
	sfnt.NameIDDescription:          "description",
	sfnt.NameIDLicense:              "license",
	sfnt.NameIDTypographicFamily:    "typo-family",
	sfnt.NameIDTypographicSubfamily: "typo-subfamily",
}

// NameInfo returns the well-known names of a font, keyed by "family",
// "subfamily", "fullname", "version" etc. For every name the first
// record with a supported encoding wins.
func NameInfo(otf ot.Container) map[string]string {
	info := make(map[string]string)
	for nameID, value := range NamesRange(otf) {
		key, ok := nameKeys[nameID]
		if !ok {
			continue
		}
		if _, exists := info[key]; !exists {
			info[key] = value
		}
	}
	return info
}

// FamilyName extracts family and subfamily names from a font's `name` table.
func FamilyName(otf ot.Container) (family, subfamily string) {
	info := NameInfo(otf)
	return info["family"], info["subfamily"]
}
