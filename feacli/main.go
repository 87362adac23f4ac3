package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/joho/godotenv"
	"github.com/npillmayer/feamerge/backend"
	"github.com/npillmayer/feamerge/merge"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'feamerge.cli'
func tracer() tracing.Trace {
	return tracing.Select("feamerge.cli")
}

func main() {
	initDisplay()
	_ = godotenv.Load()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":    "go",
		"trace.feamerge.cli": "Info",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	dsname := flag.String("designspace", "", "Design space to load")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError) // will set the correct level later
	pterm.Info.Println("Welcome to the feature merge CLI")
	//
	// set up REPL
	repl, err := readline.New("fea > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{repl: repl, settings: backend.SettingsFromEnv()}
	//
	// load design space to use
	if *dsname != "" {
		if err := intp.load(*dsname); err != nil {
			tracer().Errorf(err.Error())
			os.Exit(4)
		}
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D")
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
	repl     *readline.Instance
	settings backend.Settings
	backend  *backend.Backend
	facts    *merge.FactTable // combined facts, dropped whenever masters may change
	diags    merge.Diagnostics
}

func (intp *Intp) String() string {
	if intp == nil || intp.backend == nil {
		return "()"
	}
	doc := intp.backend.Document()
	s := fmt.Sprintf("( %s: %d axes, %d sources )", doc.Path, len(doc.Axes), len(doc.Sources))
	if intp.facts != nil {
		s += fmt.Sprintf(" -> facts of %d masters", len(intp.facts.Masters))
	}
	return s
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
	code int
	arg  string
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
	LOAD
	AXES
	MASTERS
	CLASSES
	KERNING
	ANCHORS
	STATS
	SET
	MERGE
	KERN
	MARK
	ALL
)

var opMap = map[string]int{
	"quit":    QUIT,
	"help":    HELP,
	"load":    LOAD,
	"axes":    AXES,
	"masters": MASTERS,
	"classes": CLASSES,
	"kerning": KERNING,
	"anchors": ANCHORS,
	"stats":   STATS,
	"set":     SET,
	"merge":   MERGE,
	"kern":    KERN,
	"mark":    MARK,
	"all":     ALL,
}

var opNames = []string{
	"quit",
	"help",
	"load",
	"axes",
	"masters",
	"classes",
	"kerning",
	"anchors",
	"stats",
	"set",
	"merge",
	"kern",
	"mark",
	"all",
}

var command = Command{}

func resetCommand() {
	command.count = 0
	for i := range command.op {
		command.op[i].code = NOOP
		command.op[i].arg = ""
	}
}

// parseCommand splits a line into steps, e.g. "load:Test.designspace stats".
// Every step is an op-code with an optional argument after a colon.
func (intp *Intp) parseCommand(line string) (*Command, error) {
	resetCommand()
	steps := strings.Fields(line)
	if len(steps) > len(command.op) {
		return nil, fmt.Errorf("too many steps: %d", len(steps))
	}
	command.count = len(steps)
	for i, step := range steps {
		c := strings.SplitN(step, ":", 2) // e.g.  "kerning:A" or "set:expand=true" or "help:kerning"
		code, ok := opMap[strings.ToLower(c[0])]
		if !ok {
			code = HELP
		}
		command.op[i].code = code
		if code == QUIT {
			return &command, nil
		}
		if len(c) > 1 {
			command.op[i].arg = c[1]
			tracer().Debugf("%s: argument '%s'", opNames[code], c[1])
		}
	}
	return &command, nil
}

var commandFn = map[int]func(*Intp, *Op) (error, bool){
	QUIT:    quitOp,
	HELP:    helpOp,
	LOAD:    loadOp,
	AXES:    axesOp,
	MASTERS: mastersOp,
	CLASSES: classesOp,
	KERNING: kerningOp,
	ANCHORS: anchorsOp,
	STATS:   statsOp,
	SET:     setOp,
	MERGE:   mergeOp,
	KERN:    kernOp,
	MARK:    markOp,
	ALL:     allOp,
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
	pterm.Println("Goodbye!")
	return nil, true
}

// --- Design Space Loading ---------------------------------------------

var ErrNoDesignspace = errors.New("no design space loaded")

func loadOp(intp *Intp, op *Op) (error, bool) {
	if op.arg == "" {
		return errors.New("usage: load:<path.designspace>"), false
	}
	return intp.load(op.arg), false
}

func (intp *Intp) load(path string) error {
	b, err := backend.FromPath(path, intp.settings)
	if err != nil {
		return err
	}
	intp.backend = b
	intp.facts, intp.diags = nil, nil
	doc := b.Document()
	pterm.Printf("design space %s: %d axes, %d sources\n", doc.Path, len(doc.Axes), len(doc.Sources))
	return nil
}

func (intp *Intp) checkDesignspace() error {
	if intp.backend == nil {
		return ErrNoDesignspace
	}
	return nil
}

// combined returns the combined facts of all masters, combining them if
// necessary.
func (intp *Intp) combined() (*merge.FactTable, error) {
	if err := intp.checkDesignspace(); err != nil {
		return nil, err
	}
	if intp.facts != nil {
		return intp.facts, nil
	}
	ft, ds, err := intp.backend.Facts(context.Background(), nil)
	intp.diags = ds
	if err != nil {
		return nil, err
	}
	intp.facts = ft
	tracer().Infof("combined facts of %d masters", len(ft.Masters))
	return ft, nil
}
