package main

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/webfont"
	"github.com/npillmayer/webfont/ot"
	"golang.org/x/image/font/gofont/goregular"
)

func TestParseCommand(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webfont.cli")
	defer teardown()
	//
	intp := &Intp{}
	cmd, err := intp.parseCommand("table:GSUB  scripts:latn features:liga:tag bogus")
	if err != nil {
		t.Fatal(err)
	}
	if cmd.count != 4 {
		t.Fatalf("expected 4 steps, have %d", cmd.count)
	}
	want := []Op{
		{code: TABLE, arg: "GSUB"},
		{code: SCRIPTS, arg: "latn"},
		{code: FEATURES, arg: "liga", format: "tag"},
		{code: HELP},
		{code: NOOP},
	}
	for i, op := range want {
		if cmd.op[i] != op {
			t.Errorf("step %d: expected %v, have %v", i, op, cmd.op[i])
		}
	}
}

func TestParseCodePoint(t *testing.T) {
	for arg, want := range map[string]rune{
		"A":      'A',
		"ä":      'ä',
		"U+00E4": 'ä',
		"0x20AC": '€',
		"41":     'A',
	} {
		r, err := parseCodePoint(arg)
		if err != nil || r != want {
			t.Errorf("expected %q to be %#U, have %#U (%v)", arg, want, r, err)
		}
	}
	if _, err := parseCodePoint("U+zz"); err == nil {
		t.Errorf("expected U+zz to be rejected")
	}
}

func TestSessionState(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webfont.cli")
	defer teardown()
	//
	f, err := webfont.FromBinary("Go-Regular.ttf", goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	intp := &Intp{font: f}
	if _, err := intp.layoutTable(); err != ErrNoTable {
		t.Errorf("expected error %v, have %v", ErrNoTable, err)
	}
	cmd, _ := intp.parseCommand("table:head")
	if err, _ := intp.execute(cmd); err != nil {
		t.Fatal(err)
	}
	if _, ok := intp.table.(*ot.HeadTable); !ok {
		t.Errorf("expected current table to be head, is %T", intp.table)
	}
	if _, err := intp.layoutTable(); err != ErrNotLayout {
		t.Errorf("expected error %v, have %v", ErrNotLayout, err)
	}
	if s := intp.String(); s != "( table=head )" {
		t.Errorf("unexpected state %q", s)
	}
}
