package ot

import (
	"testing"
)

func TestValidFontFormat(t *testing.T) {
	tests := []struct {
		data   []byte
		format Format
		ok     bool
	}{
		{[]byte{0x00, 0x01, 0x00, 0x00, 0xff}, FormatSFNT, true},
		{[]byte("OTTO"), FormatSFNT, true},
		{[]byte("wOFF...."), FormatWOFF, true},
		{[]byte("wOF2...."), FormatWOFF2, true},
		{[]byte("true"), FormatUnknown, false},
		{[]byte("%PDF-1.7"), FormatUnknown, false},
		{[]byte{0x00, 0x01}, FormatUnknown, false},
		{nil, FormatUnknown, false},
	}
	for _, tt := range tests {
		format, ok := ValidFontFormat(tt.data)
		if format != tt.format || ok != tt.ok {
			t.Errorf("ValidFontFormat(%q) = (%s, %v); want (%s, %v)", tt.data, format, ok, tt.format, tt.ok)
		}
	}
}

func TestFlavor(t *testing.T) {
	if f := Flavor(0x00010000); f != "TrueType" {
		t.Errorf("expected 0x00010000 to be TrueType, is %q", f)
	}
	if f := Flavor(uint32(T("OTTO"))); f != "OpenType" {
		t.Errorf("expected 'OTTO' to be OpenType, is %q", f)
	}
	if f := Flavor(0x12345678); f != "" {
		t.Errorf("expected unknown flavor to be empty, is %q", f)
	}
}
