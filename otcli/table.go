package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/webfont/ot"
	"github.com/npillmayer/webfont/otquery"
	"github.com/pterm/pterm"
)

func fontOp(intp *Intp, op *Op) (error, bool) {
	otf := intp.font.Container()
	family, subfamily := otquery.FamilyName(otf)
	metrics := otquery.FontMetrics(otf)
	pterm.Printf("%s %s (%s, %s in %s container)\n", family, subfamily,
		intp.font.Name, otquery.FontType(otf), intp.font.Format())
	pterm.Printf("units per em = %d, ascent = %d, descent = %d, line gap = %d\n",
		metrics.UnitsPerEm, metrics.Ascent, metrics.Descent, metrics.LineGap)
	if layouts := otquery.LayoutTables(otf); len(layouts) > 0 {
		pterm.Printf("layout tables: %v\n", layouts)
	}
	if _, ok := op.hasArg(); ok { // font:names
		data := [][]string{{"Key", "Value"}}
		for key, value := range otquery.NameInfo(otf) {
			data = append(data, []string{key, value})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}
	return nil, false
}

func tableOp(intp *Intp, op *Op) (error, bool) {
	tag, ok := op.hasArg()
	if !ok {
		return errors.New("table needs a tag, e.g. table:GSUB"), false
	}
	table, err := intp.font.Tables().Table(tag)
	if err != nil {
		return err, false
	}
	intp.table, intp.script, intp.langSys = table, nil, nil
	offset, size := table.Extent()
	tracer().Infof("setting table: %v", tag)
	pterm.Printf("table %s: %T at offset %d, %d bytes\n", table.Self().NameTag(), table, offset, size)
	return nil, false
}

func listOp(intp *Intp, op *Op) (err error, stop bool) {
	tables := intp.font.Tables()
	data := [][]string{
		{"Tag", "Offset", "Length", "Decoded"},
	}
	for _, entry := range intp.font.Container().Directory() {
		decoded := "-"
		if tables.Decoded(entry.Tag.Trimmed()) {
			decoded = "yes"
		}
		data = append(data, []string{
			entry.Tag.String(),
			strconv.FormatUint(uint64(entry.Offset), 10),
			strconv.FormatUint(uint64(entry.Length), 10),
			decoded,
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return
}

// mapOp maps a character to a glyph: "map:A", "map:U+00E4" or "map:0x20AC".
// Without an argument it lists the encodings of the cmap table.
func mapOp(intp *Intp, op *Op) (err error, stop bool) {
	cmap, err := intp.font.Tables().CMap()
	if err != nil {
		return err, false
	}
	arg, ok := op.hasArg()
	if !ok {
		data := [][]string{{"Platform", "Encoding", "Format", "Ranges"}}
		for i, rec := range cmap.EncodingRecords {
			format, ranges := "?", "?"
			if sub, err := cmap.SubTable(i); err == nil {
				format = strconv.Itoa(int(sub.Format()))
				ranges = strconv.Itoa(len(sub.SupportedCharCodes()))
			}
			data = append(data, []string{
				strconv.Itoa(int(rec.PlatformID)),
				strconv.Itoa(int(rec.EncodingID)),
				format,
				ranges,
			})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		return nil, false
	}
	r, err := parseCodePoint(arg)
	if err != nil {
		return err, false
	}
	gid := cmap.GlyphID(r)
	pterm.Printf("cmap maps %#U => glyph %d\n", r, gid)
	if cmap.SupportsVariation(r) {
		pterm.Printf("%#U is a supported variation selector\n", r)
	}
	return nil, false
}

func glyphOp(intp *Intp, op *Op) (err error, stop bool) {
	arg, ok := op.hasArg()
	if !ok {
		return errors.New("glyph needs a glyph index, e.g. glyph:36"), false
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 || n > 0xffff {
		return fmt.Errorf("invalid glyph index: %v", arg), false
	}
	gid := ot.GlyphIndex(n)
	code, ok := intp.font.Reverse(gid)
	if !ok {
		pterm.Printf("glyph %d is not mapped from any character\n", gid)
	} else {
		pterm.Printf("glyph %d <= %#U\n", gid, code.Code)
	}
	m := otquery.GlyphMetrics(intp.font.Container(), gid)
	pterm.Printf("advance = %d, lsb = %d, rsb = %d, bbox = %v\n", m.Advance, m.LSB, m.RSB, m.BBox)
	if clz := otquery.GlyphClass(intp.font.Container(), gid); clz != 0 {
		pterm.Printf("GDEF glyph class = %d\n", clz)
	}
	return nil, false
}

// parseCodePoint accepts a single character, or a hexadecimal code point
// prefixed with "U+" or "0x".
func parseCodePoint(arg string) (rune, error) {
	if r, size := utf8.DecodeRuneInString(arg); size == len(arg) && r != utf8.RuneError {
		return r, nil
	}
	hex := arg
	for _, prefix := range []string{"U+", "u+", "0x", "0X"} {
		hex = strings.TrimPrefix(hex, prefix)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || n > utf8.MaxRune {
		return 0, fmt.Errorf("not a character: %v", arg)
	}
	return rune(n), nil
}

// scriptsOp lists the scripts of a layout table, or selects one with "scripts:latn".
func scriptsOp(intp *Intp, op *Op) (err error, stop bool) {
	var lyt *ot.LayoutTable
	if lyt, err = intp.layoutTable(); err != nil {
		return
	}
	intp.script, intp.langSys = nil, nil
	var scripts []ot.Tag
	if scripts, err = lyt.SupportedScripts(); err != nil {
		return
	}
	pterm.Printf("ScriptList keys: %v\n", scripts)
	tag, ok := op.hasArg()
	if !ok {
		return
	}
	if intp.script, err = lyt.Script(ot.T(tag)); err != nil {
		return
	}
	pterm.Printf("Script %s has language systems %v\n", intp.script.Tag, lyt.SupportedLangSys(intp.script))
	return
}

// langOp selects a language system of the current script, DFLT by default.
func langOp(intp *Intp, op *Op) (err error, stop bool) {
	var lyt *ot.LayoutTable
	if lyt, err = intp.layoutTable(); err != nil {
		return
	}
	if intp.script == nil {
		return ErrNoScript, false
	}
	tag := ot.DFLT
	if arg, ok := op.hasArg(); ok {
		tag = ot.T(arg)
	}
	if intp.langSys, err = lyt.LangSys(intp.script, tag); err != nil {
		return
	}
	ls := intp.langSys
	if ls.RequiredFeatureIndex != 0xffff {
		pterm.Printf("required feature index = %d\n", ls.RequiredFeatureIndex)
	}
	pterm.Printf("LangSys %s has feature indices %v\n", ls.Tag, ls.FeatureIndices)
	return
}

// featuresOp lists features, either of the selected language system or of
// the complete feature list. "features:3" prints the lookups of feature 3,
// "features:liga:tag" those of the first feature tagged 'liga'.
func featuresOp(intp *Intp, op *Op) (err error, stop bool) {
	var lyt *ot.LayoutTable
	if lyt, err = intp.layoutTable(); err != nil {
		return
	}
	if op.noArg() {
		var features []*ot.Feature
		if intp.langSys != nil {
			features, err = lyt.Features(intp.langSys)
		} else {
			features, err = allFeatures(lyt)
		}
		if err != nil {
			return
		}
		printFeatures(features)
		return
	}
	var feature *ot.Feature
	if op.format == "tag" {
		feature, err = lyt.FeatureByTag(ot.T(op.arg))
	} else if i, e := strconv.Atoi(op.arg); e == nil {
		feature, err = lyt.Feature(i)
	} else {
		err = fmt.Errorf("feature index not numeric: %v", op.arg)
	}
	if err != nil {
		return
	}
	pterm.Printf("Feature %s uses lookups %v\n", feature.Tag, feature.LookupListIndices)
	lookups, err := lyt.Lookups(feature)
	if err != nil {
		return
	}
	for i, lookup := range lookups {
		printLookup(intp, int(feature.LookupListIndices[i]), lookup)
	}
	return
}

func allFeatures(lyt *ot.LayoutTable) ([]*ot.Feature, error) {
	fl, err := lyt.FeatureList.Get()
	if err != nil {
		return nil, err
	}
	features := make([]*ot.Feature, 0, len(fl.Records))
	for i := range fl.Records {
		f, err := lyt.Feature(i)
		if err != nil {
			return features, err
		}
		features = append(features, f)
	}
	return features, nil
}

func lookupsOp(intp *Intp, op *Op) (err error, stop bool) {
	var lyt *ot.LayoutTable
	if lyt, err = intp.layoutTable(); err != nil {
		return
	}
	if op.noArg() {
		return printLookupList(intp, lyt), false
	}
	i, e := strconv.Atoi(op.arg)
	if e != nil {
		tracer().Errorf("Lookup index not numeric: %v\n", op.arg)
		return errors.New("invalid lookup index"), false
	}
	lookup, err := lyt.Lookup(i)
	if err != nil {
		return err, false
	}
	printLookup(intp, i, lookup)
	printSubtables(intp, lookup)
	return
}

func warningsOp(intp *Intp, op *Op) (err error, stop bool) {
	warnings, errs := intp.font.Warnings(), intp.font.Errors()
	if len(warnings) == 0 && len(errs) == 0 {
		pterm.Println("no issues recorded")
		return
	}
	for _, w := range warnings {
		pterm.Warning.Println(w.String())
	}
	for _, e := range errs {
		pterm.Error.Println(e.Error())
	}
	return
}
