package ot

import (
	"sort"
)

// tableDecoder decodes a table. The parser is positioned at the start of the
// table, with the table's declared length set.
type tableDecoder func(p *Parser, ctx *tableContext) (Table, error)

// tableDecoders maps sanitized table tags (see Tag.sanitized) to decoders.
var tableDecoders map[string]tableDecoder

func init() {
	tableDecoders = map[string]tableDecoder{
		// required tables
		"cmap": decodeCMap,
		"head": decodeHead,
		"hhea": decodeHHea,
		"hmtx": decodeHMtx,
		"maxp": decodeMaxP,
		"name": decodeName,
		"OS2":  decodeOS2,
		"post": decodePost,
		// advanced typographic tables
		"BASE": decodeBase,
		"GDEF": decodeGDef,
		"GSUB": decodeGSub,
		"GPOS": decodeGPos,
		// SVG and variation tables
		"SVG":  decodeSVG,
		"fvar": decodeFVar,
		// TrueType outlines
		"cvt":  decodeCvt,
		"fpgm": decodeFpgm,
		"gasp": decodeGasp,
		"glyf": decodeGlyf,
		"loca": decodeLoca,
		"prep": decodePrep,
		// CFF outlines
		"CFF":  decodeCFF,
		"CFF2": decodeCFF2,
		"VORG": decodeVOrg,
		// bitmap glyphs
		"EBLC": decodeEBLC,
		"EBDT": decodeEBDT,
		"EBSC": decodeEBSC,
		"CBLC": decodeCBLC,
		"CBDT": decodeCBDT,
		"sbix": decodeSbix,
		// color fonts
		"COLR": decodeCOLR,
		"CPAL": decodeCPAL,
		// other tables
		"DSIG": decodeDSig,
		"hdmx": decodeHdmx,
		"kern": decodeKern,
		"LTSH": decodeLTSH,
		"MERG": decodeMerg,
		"meta": decodeMeta,
		"PCLT": decodePCLT,
		"VDMX": decodeVDMX,
		"vhea": decodeVHea,
		"vmtx": decodeVMtx,
	}
}

func lookupDecoder(name string) (tableDecoder, bool) {
	decode, ok := tableDecoders[name]
	return decode, ok
}

// HasDecoder reports whether a decoder for a table tag is available.
// Tags are compared after removing non-alphanumeric characters, so "OS/2"
// and "OS2" are equivalent.
func HasDecoder(tag string) bool {
	_, ok := tableDecoders[sanitizeTableName(tag)]
	return ok
}

// RegisteredTables returns the sanitized tags of all tables which have a
// decoder, sorted alphabetically.
func RegisteredTables() []string {
	names := make([]string, 0, len(tableDecoders))
	for name := range tableDecoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
