package main

import (
	"fmt"
	"strings"

	"github.com/npillmayer/webfont/ot"
	"github.com/pterm/pterm"
)

func printOp(intp *Intp, op *Op) (err error, stop bool) {
	pterm.Printf("Font: %s (%s)\n", intp.font.Name, intp.font.Format())
	if err = intp.checkTable(); err != nil {
		return
	}
	offset, size := intp.table.Extent()
	pterm.Printf("Current table: %s, %d bytes at offset %d\n", intp.table.Self().NameTag(), size, offset)
	if intp.script != nil {
		pterm.Printf("Current script: %s\n", intp.script.Tag)
	}
	if intp.langSys != nil {
		pterm.Printf("Current language system: %s with %d features\n",
			intp.langSys.Tag, len(intp.langSys.FeatureIndices))
	}
	return nil, false
}

func printFeatures(features []*ot.Feature) {
	pterm.Printf("%d features\n", len(features))
	if len(features) == 0 {
		return
	}
	data := [][]string{
		{"Tag", "Lookups", "Params"},
	}
	for _, f := range features {
		params := "-"
		if p, err := f.Params(); err != nil {
			params = err.Error()
		} else if p != nil {
			params = fmt.Sprintf("%T", p)
		}
		data = append(data, []string{
			f.Tag.String(),
			fmt.Sprintf("%v", f.LookupListIndices),
			params,
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printLookupList(intp *Intp, lyt *ot.LayoutTable) error {
	ll, err := lyt.LookupList.Get()
	if err != nil {
		return err
	}
	name := intp.table.Self().NameTag()
	count := len(ll.Offsets)
	pterm.Printf("%s LookupList has %d entries\n", name, count)
	if count == 0 {
		return nil
	}
	data := [][]string{
		{"Index", "Type", "Subtables", "Flags"},
	}
	for i := range count {
		lookup, err := lyt.Lookup(i)
		if err != nil {
			data = append(data, []string{fmt.Sprintf("%d", i), err.Error(), "-", "-"})
			continue
		}
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			formatLookupType(intp, lookup.Type),
			fmt.Sprintf("%d", lookup.SubTableCount()),
			formatLookupFlags(lookup),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil
}

func printLookup(intp *Intp, index int, lookup *ot.Lookup) {
	pterm.Printf("Lookup %d: type=%s flags=%s subtables=%d\n",
		index,
		formatLookupType(intp, lookup.Type),
		formatLookupFlags(lookup),
		lookup.SubTableCount(),
	)
}

func printSubtables(intp *Intp, lookup *ot.Lookup) {
	data := [][]string{
		{"Sub", "Type", "Format", "Coverage"},
	}
	for i := 0; i < lookup.SubTableCount(); i++ {
		sub, err := lookup.SubTable(i)
		if err != nil {
			data = append(data, []string{fmt.Sprintf("%d", i), err.Error(), "-", "-"})
			continue
		}
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			formatLookupType(intp, sub.LookupType()),
			fmt.Sprintf("%d", sub.Format()),
			formatCoverageSummary(sub),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func formatLookupType(intp *Intp, ltype ot.LayoutTableLookupType) string {
	if ltype == 0 {
		return "Unknown(0)"
	}
	if intp.isGPos() {
		return ltype.GPosString()
	}
	return ltype.GSubString()
}

func formatLookupFlags(lookup *ot.Lookup) string {
	flag := lookup.Flag
	if flag == 0 {
		return "-"
	}
	parts := make([]string, 0, 6)
	if flag&ot.LOOKUP_FLAG_RIGHT_TO_LEFT != 0 {
		parts = append(parts, "RightToLeft")
	}
	if flag&ot.LOOKUP_FLAG_IGNORE_BASE_GLYPHS != 0 {
		parts = append(parts, "IgnoreBase")
	}
	if flag&ot.LOOKUP_FLAG_IGNORE_LIGATURES != 0 {
		parts = append(parts, "IgnoreLigatures")
	}
	if flag&ot.LOOKUP_FLAG_IGNORE_MARKS != 0 {
		parts = append(parts, "IgnoreMarks")
	}
	if flag&ot.LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
		set := lookup.MarkFilteringSet.Or(0)
		parts = append(parts, fmt.Sprintf("UseMarkFilteringSet=%d", set))
	}
	if flag&ot.LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK != 0 {
		parts = append(parts, fmt.Sprintf("MarkAttachType=%d", flag.MarkAttachmentType()))
	}
	return strings.Join(parts, "|")
}

func formatCoverageSummary(sub ot.LookupSubtable) string {
	cov, err := sub.Coverage()
	if err != nil {
		return err.Error()
	}
	if cov == nil {
		return "-"
	}
	return fmt.Sprintf("fmt=%d glyphs=%d ranges=%d", cov.Format, len(cov.Glyphs), len(cov.Ranges))
}
