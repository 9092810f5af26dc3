package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/npillmayer/webfont"
	"github.com/npillmayer/webfont/ot"
	"github.com/pterm/pterm"
)

// tracer traces with key 'webfont.cli'
func tracer() tracing.Trace {
	return tracing.Select("webfont.cli")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":     "go",
		"trace.webfont.cli":   "Info",
		"trace.webfont":       "Error",
		"trace.font.opentype": "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font to load (TTF, OTF, WOFF or WOFF2)")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError) // will set the correct level later
	pterm.Info.Println("Welcome to the webfont CLI")
	//
	// set up REPL
	repl, err := readline.New("ot > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{repl: repl}
	//
	// load font to use
	if err := intp.loadFont(*fontname); err != nil { // font name provided by flag
		tracer().Errorf(err.Error())
		os.Exit(4)
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL() // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	font    *webfont.Font
	repl    *readline.Instance
	table   ot.Table
	script  *ot.ScriptTable // selected script of a layout table
	langSys *ot.LangSys     // selected language system of script
}

func (intp *Intp) String() string {
	if intp == nil || intp.table == nil {
		return "()"
	}
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("( table=%s", intp.table.Self().NameTag()))
	if intp.script != nil {
		sb.WriteString(fmt.Sprintf(" script=%s", intp.script.Tag))
	}
	if intp.langSys != nil {
		sb.WriteString(fmt.Sprintf(" lang=%s", intp.langSys.Tag))
	}
	sb.WriteString(" )")
	return sb.String()
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := intp.parseCommand(line)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		err, quit := intp.execute(cmd)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

type Op struct {
	code   int
	arg    string
	format string
}

type Command struct {
	count int
	op    [32]Op
}

const NOOP = -1
const (
	// op-code QUIT will not have arguments
	QUIT int = iota
	// op-codes below may have arguments
	HELP
	FONT
	TABLE
	LIST
	MAP
	GLYPH
	SCRIPTS
	LANG
	FEATURES
	LOOKUPS
	WARNINGS
	PRINT
)

var opMap = map[string]int{
	"quit":     QUIT,
	"help":     HELP,
	"font":     FONT,
	"table":    TABLE,
	"list":     LIST,
	"map":      MAP,
	"glyph":    GLYPH,
	"scripts":  SCRIPTS,
	"lang":     LANG,
	"features": FEATURES,
	"lookups":  LOOKUPS,
	"warnings": WARNINGS,
	"print":    PRINT,
}

var opNames = []string{
	"quit",
	"help",
	"font",
	"table",
	"list",
	"map",
	"glyph",
	"scripts",
	"lang",
	"features",
	"lookups",
	"warnings",
	"print",
}

var command = Command{}

func resetCommand() {
	command.count = 0
	for i := range command.op {
		command.op[i].code = NOOP
		command.op[i].arg = ""
		command.op[i].format = ""
	}
}

// parseCommand splits a line into steps, e.g. "table:GSUB scripts:latn lang:DEU".
// Arguments are separated by colons, e.g. "map:U+00E4" or "help:lookups".
func (intp *Intp) parseCommand(line string) (*Command, error) {
	resetCommand()
	steps := strings.Fields(line)
	if len(steps) > len(command.op) {
		return nil, fmt.Errorf("too many steps in command: %d", len(steps))
	}
	command.count = len(steps)
	for i, step := range steps {
		c := strings.SplitN(step, ":", 3)
		code, ok := opMap[strings.ToLower(c[0])]
		if !ok {
			code = HELP
		}
		command.op[i].code = code
		if code == QUIT {
			return &command, nil
		}
		command.op[i].arg = getOptArg(c, 1)
		command.op[i].format = getOptArg(c, 2)
		if command.op[i].arg == "" {
			tracer().Debugf("%s", opNames[code])
		} else {
			tracer().Debugf("%s: looking for '%s'", opNames[code], command.op[i].arg)
		}
	}
	return &command, nil
}

var commandFn = map[int]func(*Intp, *Op) (error, bool){
	QUIT:     quitOp,
	HELP:     helpOp,
	FONT:     fontOp,
	TABLE:    tableOp,
	LIST:     listOp,
	MAP:      mapOp,
	GLYPH:    glyphOp,
	SCRIPTS:  scriptsOp,
	LANG:     langOp,
	FEATURES: featuresOp,
	LOOKUPS:  lookupsOp,
	WARNINGS: warningsOp,
	PRINT:    printOp,
}

func (intp *Intp) execute(cmd *Command) (err error, stop bool) {
	tracer().Debugf("cmd = %v", cmd.op[:cmd.count])
	for _, c := range cmd.op {
		if c.code == NOOP {
			break
		}
		f, ok := commandFn[c.code]
		if !ok {
			pterm.Error.Printf("unknown command code: %d\n", c.code)
			return nil, false
		}
		err, stop = f(intp, &c)
		if err != nil {
			pterm.Error.Println(err)
			return
		}
		if stop {
			return
		}
	}
	return
}

func quitOp(intp *Intp, op *Op) (error, bool) {
	return nil, true
}

// --- Font Loading -----------------------------------------------------

func (intp *Intp) loadFont(fontpath string) (err error) {
	if fontpath == "" {
		return errors.New("no font given; use flag -font")
	}
	if intp.font, err = webfont.Load(fontpath); err != nil {
		return
	}
	tracer().Infof("loaded %s font %s", intp.font.Format(), intp.font.Name)
	pterm.Printf("font tables: %v\n", intp.font.Tables().Tags())
	return
}

// ----------------------------------------------------------------------

var ErrNoTable = errors.New("no table set")
var ErrNoScript = errors.New("no script selected")
var ErrNotLayout = errors.New("table is neither GSUB nor GPOS")

func (intp *Intp) checkTable() error {
	if intp.table == nil {
		return ErrNoTable
	}
	return nil
}

// layoutTable returns the current table if it is a GSUB or GPOS table.
func (intp *Intp) layoutTable() (*ot.LayoutTable, error) {
	if err := intp.checkTable(); err != nil {
		return nil, err
	}
	switch t := intp.table.(type) {
	case *ot.GSubTable:
		return &t.LayoutTable, nil
	case *ot.GPosTable:
		return &t.LayoutTable, nil
	}
	return nil, ErrNotLayout
}

func (intp *Intp) isGPos() bool {
	_, ok := intp.table.(*ot.GPosTable)
	return ok
}

func getOptArg(s []string, inx int) string {
	if len(s) > inx {
		return s[inx]
	}
	return ""
}

func (op *Op) noArg() bool {
	return op.arg == ""
}

func (op *Op) hasArg() (string, bool) {
	if op.arg == "" {
		return "", false
	}
	return op.arg, true
}
