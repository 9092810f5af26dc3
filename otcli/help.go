package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(op.arg)
	return nil, false
}

func help(topic string) {
	tracer().Debugf("help %v", topic)
	t := strings.ToLower(topic)
	switch t {
	case "script", "scripts", "scriptlist":
		pterm.Info.Println("ScriptList / Script")
		pterm.Println(`
	ScriptList is a property of GSUB and GPOS.
	It consists of ScriptRecords:
	+------------+----------------+
	| Script Tag | Link to Script |
	+------------+----------------+

	A Script table links to a default LangSys entry, and contains a list of LangSys records:
	+--------------------------------+
	| Link to LangSys record         |
	+--------------+-----------------+
	| Language Tag | Link to LangSys |
	+--------------+-----------------+

	'scripts' lists the scripts of the current table, 'scripts:latn' selects one.
	`)
	case "lang", "langsys", "langs", "language":
		pterm.Info.Println("LangSys")
		pterm.Println(`
	LangSys is pointed to from a Script Record.
	It links a language with features to activate. It does so using an index into the feature table.
	+-----------------------------------+
	| Index of required feature or null |
	+-----------------------------------+
	| Index of feature 1                |
	+-----------------------------------+
	| Index of feature 2                |
	+-----------------------------------+
	| ...                               |
	+-----------------------------------+

	'lang' selects the default language system of the current script, 'lang:DEU' a specific one.
	`)
	case "feature", "features":
		pterm.Info.Println("FeatureList / Feature")
		pterm.Println(`
	'features' lists the features of the selected language system, or all features of the table.
	'features:3' shows the lookups of feature 3, 'features:liga:tag' those of the first 'liga' feature.
	`)
	case "lookup", "lookups":
		pterm.Info.Println("LookupList / Lookup")
		pterm.Println(`
	'lookups' lists the lookups of the current table, 'lookups:5' shows the subtables of lookup 5.
	`)
	case "cmap", "map", "glyph":
		pterm.Info.Println("Character mapping")
		pterm.Println(`
	'map' lists the encoding records of table cmap.
	'map:A', 'map:U+00E4' or 'map:0x20AC' map a character to its glyph.
	'glyph:36' finds the character for glyph 36 and prints the glyph's metrics.
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	font[:names]       font summary, optionally with all well-known names
	list               table directory
	table:TAG          select a table, e.g. table:GSUB
	map[:char]         character mapping (see help:cmap)
	glyph:N            glyph information
	scripts[:tag]      scripts of GSUB/GPOS (see help:scripts)
	lang[:tag]         language systems (see help:lang)
	features[:n]       features (see help:features)
	lookups[:n]        lookups (see help:lookups)
	warnings           decoding issues recorded so far
	print              current state
	quit               leave

	Commands may be chained, e.g. 'table:GSUB scripts:latn lang features'.
	`)
	}
}
