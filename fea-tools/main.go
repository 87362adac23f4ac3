package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/npillmayer/feamerge/backend"
	"github.com/npillmayer/feamerge/fea"
	"github.com/npillmayer/feamerge/ufo"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/thatisuday/commando"
)

// tracer traces with key 'feamerge.cli'
func tracer() tracing.Trace {
	return tracing.Select("feamerge.cli")
}

// EnvTrace selects the trace level if no --trace flag is given.
const EnvTrace = "FEAMERGE_TRACE"

func main() {
	_ = godotenv.Load() // optional .env in the working directory

	commando.
		SetExecutableName("fea-tools").
		SetVersion("v0.1.0").
		SetDescription("CLI for merging the feature sources of design-space masters.")

	commando.
		Register("merge").
		SetDescription("Merge the features.fea of every master into one variable feature file.").
		SetShortDescription("merge masters").
		AddArgument("designspace", "design-space document", "").
		AddFlag("output,o", "output file name, relative to the design space", commando.String, "-").
		AddFlag("expand-groups,g", "expand kerning groups before merging", commando.Bool, nil).
		AddFlag("trace,T", "trace level [Debug|Info|Error]", commando.String, "-").
		AddFlag("verbose,V", "display progress", commando.Bool, nil).
		SetAction(runMergeCommand)

	commando.
		Register("kern").
		SetDescription("Expand the kerning groups of every master into " + ufo.KerningExpandedFile + ".").
		SetShortDescription("expand kerning groups").
		AddArgument("designspace", "design-space document", "").
		AddFlag("strip-comments,s", "drop comment lines from the output", commando.Bool, nil).
		AddFlag("trace,T", "trace level [Debug|Info|Error]", commando.String, "-").
		AddFlag("verbose,V", "display progress", commando.Bool, nil).
		SetAction(runKernCommand)

	commando.
		Register("mark").
		SetDescription("Expand the groups of mark positioning statements of every master into " +
			ufo.MarkExpandedFile + ".").
		SetShortDescription("expand mark groups").
		AddArgument("designspace", "design-space document", "").
		AddFlag("strip-comments,s", "drop comment lines from the output", commando.Bool, nil).
		AddFlag("trace,T", "trace level [Debug|Info|Error]", commando.String, "-").
		AddFlag("verbose,V", "display progress", commando.Bool, nil).
		SetAction(runMarkCommand)

	commando.
		Register("all").
		SetDescription("Expand kerning and mark groups of every master, then merge the masters.").
		SetShortDescription("run all operations").
		AddArgument("designspace", "design-space document", "").
		AddFlag("output,o", "output file name, relative to the design space", commando.String, "-").
		AddFlag("expand-groups,g", "expand kerning groups before merging", commando.Bool, nil).
		AddFlag("strip-comments,s", "drop comment lines from the expanded files", commando.Bool, nil).
		AddFlag("trace,T", "trace level [Debug|Info|Error]", commando.String, "-").
		AddFlag("verbose,V", "display progress", commando.Bool, nil).
		SetAction(runAllCommand)

	commando.
		Register("expand").
		SetDescription("Expand the groups of a single feature file and print the result.").
		SetShortDescription("expand one feature file").
		AddArgument("file", "feature file", "").
		AddFlag("marks,m", "expand mark positioning statements instead of kerning", commando.Bool, nil).
		AddFlag("escape,e", "escape the glyph names of expanded kerning pairs", commando.Bool, nil).
		AddFlag("strip-comments,s", "drop comment lines from the output", commando.Bool, nil).
		SetAction(runExpandCommand)

	commando.Parse(nil)
}

func runMergeCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	b := mustBackend(args, flags)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	printResult(b.MergeFeatures(ctx, outputFlag(flags), progressFor(flags)))
}

func runKernCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	b := mustBackend(args, flags)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	printResult(b.BreakKerningGroups(ctx, progressFor(flags)))
}

func runMarkCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	b := mustBackend(args, flags)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	printResult(b.BreakMarkGroups(ctx, progressFor(flags)))
}

func runAllCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	b := mustBackend(args, flags)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	printResult(b.ProcessAll(ctx, outputFlag(flags), progressFor(flags)))
}

func runExpandCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	path := strings.TrimSpace(args["file"].Value)
	if path == "" {
		fatalf("feature file path is required")
	}
	text, err := ufo.ReadFile(path)
	if err != nil {
		fatalf("%v", err)
	}
	var opts []fea.ExpandOption
	if flagIsSet(flags, "strip-comments") {
		opts = append(opts, fea.StripComments)
	}
	if flagIsSet(flags, "escape") {
		opts = append(opts, fea.EscapeGlyphs)
	}
	if flagIsSet(flags, "marks") {
		fmt.Println(fea.ExpandMarks(text, opts...))
		return
	}
	fmt.Println(fea.ExpandKerning(text, opts...))
}

// mustBackend configures tracing and settings, then loads the design space.
func mustBackend(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) *backend.Backend {
	setupTracing(traceFlag(flags))
	path := strings.TrimSpace(args["designspace"].Value)
	if path == "" {
		fatalf("design-space path is required")
	}
	settings := backend.SettingsFromEnv()
	if flagIsSet(flags, "expand-groups") {
		settings.ExpandGroups = true
	}
	if flagIsSet(flags, "strip-comments") {
		settings.PreserveComments = false
	}
	b, err := backend.FromPath(path, settings)
	if err != nil {
		fatalf("%v", err)
	}
	tracer().Infof("design space %s with %d sources", path, len(b.Document().Sources))
	return b
}

func setupTracing(level string) {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":    "go",
		"trace.feamerge.cli": "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fatalf("error configuring tracing: %v", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	if level == "" {
		level = os.Getenv(EnvTrace)
	}
	if level == "" {
		level = "Error"
	}
	for _, key := range traceKeys {
		t := tracing.Select(key)
		switch strings.ToLower(level) {
		case "debug":
			t.SetTraceLevel(tracing.LevelDebug)
		case "info":
			t.SetTraceLevel(tracing.LevelInfo)
		case "error":
			t.SetTraceLevel(tracing.LevelError)
		default:
			fatalf("invalid trace level: %s", level)
		}
	}
}

var traceKeys = []string{
	"feamerge",
	"feamerge.cli",
	"feamerge.backend",
	"feamerge.merge",
	"feamerge.fea",
	"feamerge.ufo",
	"feamerge.designspace",
}

func outputFlag(flags map[string]commando.FlagValue) string {
	out, err := flags["output"].GetString()
	if err != nil {
		fatalf("invalid --output flag: %v", err)
	}
	if out = strings.TrimSpace(out); out == "-" {
		return ""
	}
	return out
}

func traceFlag(flags map[string]commando.FlagValue) string {
	level, err := flags["trace"].GetString()
	if err != nil {
		fatalf("invalid --trace flag: %v", err)
	}
	if level = strings.TrimSpace(level); level == "-" {
		return ""
	}
	return level
}

func progressFor(flags map[string]commando.FlagValue) backend.Progress {
	if !flagIsSet(flags, "verbose") {
		return nil
	}
	return func(fraction float64, message string) {
		fmt.Printf("[%3.0f%%] %s\n", fraction*100, message)
	}
}

func flagIsSet(flags map[string]commando.FlagValue, name string) bool {
	flag, ok := flags[name]
	if !ok {
		return false
	}
	return mustFlagBool(flag, name)
}

func mustFlagBool(flag commando.FlagValue, name string) bool {
	b, err := flag.GetBool()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return b
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "fea-tools: "+format+"\n", args...)
	os.Exit(1)
}
