package ot

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// NameTable holds the human-readable names of a font, such as family name,
// copyright notice or designer. Strings are decoded on first access.
//
// Format 1 name tables add language-tag records, which name records with
// language IDs ≥ 0x8000 refer to.
type NameTable struct {
	tableBase
	Format         uint16
	Count          uint16
	StringOffset   uint16
	NameRecords    []*NameRecord
	LangTagCount   uint16
	LangTagRecords []LangTagRecord
}

// NameRecord is an entry of the name table, identifying one string by
// platform, encoding, language and name ID.
type NameRecord struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     uint16
	Length     uint16
	Offset     uint16 // from start of string storage
	str        *Lazy[string]
}

// LangTagRecord locates a BCP 47 language tag in the string storage.
type LangTagRecord struct {
	Length uint16
	Offset uint16
	tag    *Lazy[string]
}

// String returns the decoded string of the name record. Strings of platforms
// Unicode (0) and Windows (3) are UTF-16BE, strings of platform Macintosh (1)
// are Mac Roman; for all others each byte is taken as a Latin-1 character.
func (rec *NameRecord) String() string {
	s, _ := rec.str.Get()
	return s
}

// Tag returns the language tag, e.g. "en-US".
func (rec LangTagRecord) Tag() string {
	s, _ := rec.tag.Get()
	return s
}

func decodeName(p *Parser, ctx *tableContext) (Table, error) {
	t := &NameTable{}
	t.tableBase = newTableBase(p, t)
	t.Format = p.Uint16()
	t.Count = p.Uint16()
	t.StringOffset = p.Offset16()
	t.NameRecords = readArray(p, int(t.Count), 12, func(p *Parser) *NameRecord {
		return &NameRecord{
			PlatformID: p.Uint16(),
			EncodingID: p.Uint16(),
			LanguageID: p.Uint16(),
			NameID:     p.Uint16(),
			Length:     p.Uint16(),
			Offset:     p.Offset16(),
		}
	})
	if t.Format == 1 {
		t.LangTagCount = p.Uint16()
		t.LangTagRecords = readArray(p, int(t.LangTagCount), 4, func(p *Parser) LangTagRecord {
			return LangTagRecord{Length: p.Uint16(), Offset: p.Offset16()}
		})
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	for _, rec := range t.NameRecords {
		rec.str = NewLazy(func() (string, error) {
			return t.decodeString(rec.Offset, rec.Length, nameDecoder(rec.PlatformID, rec.EncodingID))
		})
	}
	utf16 := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	for i := range t.LangTagRecords {
		rec := &t.LangTagRecords[i]
		rec.tag = NewLazy(func() (string, error) {
			return t.decodeString(rec.Offset, rec.Length, utf16)
		})
	}
	return t, nil
}

func nameDecoder(platformID, encodingID uint16) encoding.Encoding {
	switch {
	case platformID == 0 || platformID == 3:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case platformID == 1 && encodingID == 0:
		return charmap.Macintosh
	}
	return charmap.ISO8859_1
}

func (t *NameTable) decodeString(offset, length uint16, enc encoding.Encoding) (string, error) {
	if length == 0 {
		return "", nil
	}
	q := t.at(int(t.StringOffset) + int(offset))
	raw := q.ReadBytes(int(length))
	if err := q.Err(); err != nil {
		return "", err
	}
	b, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Get returns the string of the first name record with the given name ID, and
// false if there is none.
func (t *NameTable) Get(nameID uint16) (string, bool) {
	for _, rec := range t.NameRecords {
		if rec.NameID == nameID {
			return rec.String(), true
		}
	}
	return "", false
}

// Lookup returns the string for a name ID, preferring the given platform
// and falling back to the first record with that name ID.
func (t *NameTable) Lookup(nameID, platformID uint16) (string, bool) {
	for _, rec := range t.NameRecords {
		if rec.NameID == nameID && rec.PlatformID == platformID {
			return rec.String(), true
		}
	}
	return t.Get(nameID)
}
