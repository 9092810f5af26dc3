package ot

import "strings"

// Tag is defined by the OpenType specification as:
// Array of four uint8s (length = 32 bits) used to identify a table, design-variation axis,
// script, language system, feature, or baseline
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
// If b is shorter or longer, it will be silently extended or cut as appropriate
//
//	MakeTag([]byte("cmap"))
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append(b[:len(b):len(b)], []byte("    ")[:4-len(b)]...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended (with spaces) or cut as appropriate.
//
//	T("cvt") == T("cvt ")
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// Trimmed returns the tag as a string without trailing spaces. This is the key
// under which a table is found in a TableSet.
func (t Tag) Trimmed() string {
	return strings.TrimRight(t.String(), " ")
}

// sanitized returns the tag with every character removed that is not a letter,
// digit or underscore. This is the key for the table decoder registry,
// e.g. "OS/2" → "OS2".
func (t Tag) sanitized() string {
	return sanitizeTableName(t.String())
}

func sanitizeTableName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return -1
	}, name)
}

// DFLT is the default script tag of OpenType layout tables.
var DFLT = T("DFLT")

// dflt is the tag which identifies the default language system of a script.
var dflt = T("dflt")
