package main

import (
	"fmt"

	"github.com/npillmayer/webfont"
	"github.com/thatisuday/commando"
	"golang.org/x/text/unicode/runenames"
)

func runCMapCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	f := mustLoadFont(args["font"].Value)
	if mustFlagBool(flags["encodings"], "encodings") {
		printEncodings(f)
	}
	input, err := parseInput(args["text"], flags["codepoints"])
	if err != nil {
		fatalf("%v", err)
	}
	for _, line := range mapCharacters(f, input) {
		fmt.Println(line)
	}
}

// mapCharacters returns one line per character of input, giving its glyph.
// Variation selectors are reported as such.
func mapCharacters(f *webfont.Font, input string) []string {
	lines := make([]string, 0, len(input))
	for _, r := range input {
		name := runenames.Name(r)
		switch {
		case f.SupportsVariation(r):
			lines = append(lines, fmt.Sprintf("%U  variation selector  %s", r, name))
		case f.Supports(r):
			lines = append(lines, fmt.Sprintf("%U  glyph %-5d  %s", r, f.GlyphID(r), name))
		default:
			lines = append(lines, fmt.Sprintf("%U  .notdef      %s", r, name))
		}
	}
	return lines
}

func printEncodings(f *webfont.Font) {
	cmap, err := f.Tables().CMap()
	if err != nil {
		fatalf("%v", err)
	}
	for _, enc := range cmap.SupportedEncodings() {
		ranges, ok := cmap.SupportedCharCodes(enc.PlatformID, enc.EncodingID)
		if !ok {
			fmt.Printf("encoding %d/%d: unreadable subtable\n", enc.PlatformID, enc.EncodingID)
			continue
		}
		count := 0
		for _, rng := range ranges {
			count += int(rng.End-rng.Start) + 1
		}
		fmt.Printf("encoding %d/%d: %d ranges, %d character codes\n",
			enc.PlatformID, enc.EncodingID, len(ranges), count)
	}
}
