package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/npillmayer/webfont"
	"github.com/npillmayer/webfont/ot"
	"github.com/npillmayer/webfont/otquery"
	"github.com/thatisuday/commando"
)

func runFontCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	var opts []webfont.Option
	if mustFlagBool(flags["strict"], "strict") {
		opts = append(opts, webfont.WithStrict())
	}
	f := mustLoadFont(args["font"].Value, opts...)
	otf := f.Container()

	fmt.Printf("Path: %s\n", f.Source)
	fmt.Printf("Container: %s\n", f.Format())
	fmt.Printf("Type: %s\n", otquery.FontType(otf))
	if format, err := webfont.CSSFormat(f.Source, true); err == nil {
		fmt.Printf("CSS format: %s\n", format)
	}
	names := otquery.NameInfo(otf)
	if family := names["family"]; family != "" {
		fmt.Printf("Family: %s\n", family)
	}
	if sub := names["subfamily"]; sub != "" {
		fmt.Printf("Subfamily: %s\n", sub)
	}
	if version := names["version"]; version != "" {
		fmt.Printf("Version: %s\n", version)
	}
	metrics := otquery.FontMetrics(otf)
	fmt.Printf("Metrics: upem=%d ascent=%d descent=%d linegap=%d\n",
		metrics.UnitsPerEm, metrics.Ascent, metrics.Descent, metrics.LineGap)

	tags := f.Tables().Tags()
	sort.Strings(tags)
	fmt.Printf("Tables (%d): %s\n", len(tags), strings.Join(tags, " "))

	layoutTables := otquery.LayoutTables(otf)
	fmt.Printf("Layout: %s\n", strings.Join(layoutTables, ","))

	if len(args["tables"].Value) > 0 {
		printSelectedTables(f.Tables(), args["tables"].Value)
	}
	errs := f.Errors()
	warns := f.Warnings()
	fmt.Printf("Issues: errors=%d warnings=%d\n", len(errs), len(warns))
	if mustFlagBool(flags["errors"], "errors") {
		for _, e := range errs {
			fmt.Printf("error: %s\n", e.Error())
		}
		for _, w := range warns {
			fmt.Printf("warning: %s\n", w.String())
		}
	}
}

func printSelectedTables(tables *ot.TableSet, raw string) {
	for _, t := range splitCSVSpace(raw) {
		tagName := strings.TrimSpace(t)
		if tagName == "" {
			continue
		}
		table, err := tables.Table(tagName)
		if err != nil {
			fmt.Printf("table %s: %v\n", tagName, err)
			continue
		}
		off, size := table.Extent()
		fmt.Printf("table %s: offset=%d size=%d\n", tagName, off, size)
	}
}

func runTableCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	f := mustLoadFont(args["font"].Value)
	dump := mustFlagInt(flags["bytes"], "bytes")
	tables := f.Tables()
	tags := tables.Tags()
	if raw := args["tables"].Value; raw != "" {
		tags = splitCSVSpace(raw)
	}
	for _, tag := range tags {
		table, err := tables.Table(tag)
		if err != nil {
			fmt.Printf("%-4s  error: %v\n", tag, err)
			continue
		}
		off, size := table.Extent()
		kind := fmt.Sprintf("%T", table)
		if table.Self().IsGeneric() {
			kind = "(no decoder)"
		}
		fmt.Printf("%-4s  offset=%-8d size=%-8d %s\n", tag, off, size, kind)
		if summary := summarizeTable(table); summary != "" {
			fmt.Printf("      %s\n", summary)
		}
		if data := table.Binary(); dump > 0 && len(data) > 0 {
			fmt.Printf("      % x\n", data[:min(dump, len(data))])
		}
	}
	for _, e := range f.Errors() {
		fmt.Printf("error: %s\n", e.Error())
	}
}

// summarizeTable returns a one-line description of well-known tables.
func summarizeTable(table ot.Table) string {
	switch t := table.(type) {
	case *ot.HeadTable:
		return fmt.Sprintf("units per em = %d", t.UnitsPerEm)
	case *ot.MaxPTable:
		return fmt.Sprintf("version = %g, glyphs = %d", t.Version, t.NumGlyphs)
	case *ot.HHeaTable:
		return fmt.Sprintf("ascender = %d, descender = %d, h-metrics = %d",
			t.Ascender, t.Descender, t.NumberOfHMetrics)
	case *ot.NameTable:
		return fmt.Sprintf("%d name records", len(t.NameRecords))
	case *ot.CMapTable:
		encodings := make([]string, 0, len(t.EncodingRecords))
		for _, enc := range t.SupportedEncodings() {
			encodings = append(encodings, fmt.Sprintf("%d/%d", enc.PlatformID, enc.EncodingID))
		}
		return "encodings " + strings.Join(encodings, " ")
	case *ot.GSubTable:
		return layoutSummary(&t.LayoutTable)
	case *ot.GPosTable:
		return layoutSummary(&t.LayoutTable)
	}
	return ""
}

func layoutSummary(lyt *ot.LayoutTable) string {
	scripts, err := lyt.SupportedScripts()
	if err != nil {
		return err.Error()
	}
	major, minor := lyt.Header.Version()
	return fmt.Sprintf("version %d.%d, scripts %v", major, minor, scripts)
}
