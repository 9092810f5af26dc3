package ot

import "bytes"

// Format is the container format of a font binary.
type Format int

const (
	FormatUnknown Format = iota
	FormatSFNT           // TrueType or OpenType, uncompressed
	FormatWOFF           // Web Open Font Format 1.0
	FormatWOFF2          // Web Open Font Format 2.0
)

func (f Format) String() string {
	switch f {
	case FormatSFNT:
		return "SFNT"
	case FormatWOFF:
		return "WOFF"
	case FormatWOFF2:
		return "WOFF2"
	}
	return "unknown"
}

var (
	magicTTF   = []byte{0x00, 0x01, 0x00, 0x00}
	magicOTF   = []byte("OTTO")
	magicWOFF  = []byte("wOFF")
	magicWOFF2 = []byte("wOF2")
)

// ValidFontFormat inspects the first 4 bytes of data and returns the
// container format they announce. TrueType and CFF-flavoured fonts both
// are reported as FormatSFNT. For any other signature, ValidFontFormat
// returns (FormatUnknown, false).
func ValidFontFormat(data []byte) (Format, bool) {
	if len(data) < 4 {
		return FormatUnknown, false
	}
	sig := data[:4]
	switch {
	case bytes.Equal(sig, magicTTF), bytes.Equal(sig, magicOTF):
		return FormatSFNT, true
	case bytes.Equal(sig, magicWOFF):
		return FormatWOFF, true
	case bytes.Equal(sig, magicWOFF2):
		return FormatWOFF2, true
	}
	return FormatUnknown, false
}

// Flavor returns "TrueType" or "OpenType" for an SFNT version tag or a
// WOFF flavor, or "" if the tag is not known.
func Flavor(version uint32) string {
	switch version {
	case 0x00010000, uint32(T("true")):
		return "TrueType"
	case uint32(T("OTTO")):
		return "OpenType"
	}
	return ""
}
