package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/webfont"
	"github.com/thatisuday/commando"
)

// tracer traces with key 'webfont.cli'
func tracer() tracing.Trace {
	return tracing.Select("webfont.cli")
}

func main() {
	commando.
		SetExecutableName("ot-tools").
		SetVersion("v0.0.1").
		SetDescription("CLI for font diagnostics: containers, tables and character mapping.")

	commando.
		Register(nil).
		AddFlag("verbose,V", "display additional output", commando.Bool, nil)

	commando.
		Register("font").
		SetDescription("Print diagnostics and table information for a font (TTF, OTF, WOFF or WOFF2).").
		SetShortDescription("font diagnostics").
		AddArgument("font", "font file path", "").
		AddArgument("tables...", "optional list of table tags (e.g. GSUB,GPOS,head)", "").
		AddFlag("strict,s", "check table lengths strictly", commando.Bool, nil).
		AddFlag("errors,e", "print decoding errors and warnings", commando.Bool, nil).
		SetAction(runFontCommand)

	commando.
		Register("cmap").
		SetDescription("Map characters to glyphs using the font's cmap table.").
		SetShortDescription("character mapping").
		AddArgument("font", "font file path", "").
		AddArgument("text...", "text to map", "").
		AddFlag("codepoints,c", "codepoints instead of text (comma/space separated, e.g. U+0627,U+0644)", commando.String, "-").
		AddFlag("encodings,E", "list the encoding records and their character ranges", commando.Bool, nil).
		SetAction(runCMapCommand)

	commando.
		Register("table").
		SetDescription("Decode tables of a font and print their type and extent.").
		SetShortDescription("table decoding").
		AddArgument("font", "font file path", "").
		AddArgument("tables...", "optional list of table tags; all tables if empty", "").
		AddFlag("bytes,b", "dump the first n bytes of each table", commando.Int, 0).
		SetAction(runTableCommand)

	commando.Parse(nil)
}

func parseInput(textArg commando.ArgValue, cpFlag commando.FlagValue) (string, error) {
	cp, err := cpFlag.GetString()
	if err != nil {
		return "", fmt.Errorf("invalid --codepoints flag: %w", err)
	}
	cp = strings.TrimSpace(cp)
	if cp == "-" {
		cp = ""
	}
	if cp != "" {
		runes, err := parseCodepoints(cp)
		if err != nil {
			return "", err
		}
		return string(runes), nil
	}
	return textArg.Value, nil
}

func parseCodepoints(s string) ([]rune, error) {
	parts := splitCSVSpace(s)
	out := make([]rune, 0, len(parts))
	for _, p := range parts {
		r, err := parseCodepointToken(p)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func parseCodepointToken(token string) (rune, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, errors.New("empty codepoint token")
	}
	hex := token
	switch {
	case strings.HasPrefix(hex, "U+"), strings.HasPrefix(hex, "u+"):
		hex = hex[2:]
	case strings.HasPrefix(hex, "0x"), strings.HasPrefix(hex, "0X"):
		hex = hex[2:]
	}
	u, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid codepoint %q: %w", token, err)
	}
	if u > 0x10FFFF {
		return 0, fmt.Errorf("codepoint %q out of range", token)
	}
	return rune(u), nil
}

func splitCSVSpace(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

func mustLoadFont(path string, opts ...webfont.Option) *webfont.Font {
	path = strings.TrimSpace(path)
	if path == "" {
		fatalf("font path is required")
	}
	f, err := webfont.Load(path, opts...)
	if err != nil {
		fatalf("cannot load font: %v", err)
	}
	tracer().Debugf("loaded %s font %s", f.Format(), f.Name)
	return f
}

func mustFlagInt(flag commando.FlagValue, name string) int {
	n, err := flag.GetInt()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return n
}

func mustFlagBool(flag commando.FlagValue, name string) bool {
	b, err := flag.GetBool()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return b
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "ot-tools: "+format+"\n", args...)
	os.Exit(1)
}
