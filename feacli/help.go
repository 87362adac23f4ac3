package main

import (
	"strings"

	"github.com/npillmayer/feamerge/merge"
	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(op.arg)
	return nil, false
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	t := strings.ToLower(topic)
	switch t {
	case "kerning", "kern":
		pterm.Info.Println("Kerning")
		pterm.Println(`
	Kerning facts are collected from statements of the form
	    pos \A \V -40;
	in every master. Each pair is merged into one variable statement
	    pos \A \V (wght=100:-65 wght=900:-40);
	listing the value of every master which defines the pair.

	Kerning statements using groups (pos @L V -40;) are recognized only after
	expansion: use "set:expand=true" before merging, or run "kern" to write the
	expanded pairs to features_expanded.fea of every master.
	`)
	case "anchors", "mark", "marks":
		pterm.Info.Println("Mark positioning")
		pterm.Printf(`
	markClass and pos base statements inside lookup blocks are collected per
	glyph list and mark class. The merged output holds one lookup with all of
	them, named after the first lookup found (or %s),
	and a mark feature referencing it for every language system.
	`, merge.FallbackLookupName)
		pterm.Println()
	case "set", "settings":
		pterm.Info.Println("Settings")
		pterm.Println(`
	set                    print the current settings
	set:output=<name>      file name of the merged features
	set:comments=<bool>    keep comment lines in expanded files
	set:expand=<bool>      expand kerning groups before merging
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	load:<path>     load a design space
	axes            list the axes
	masters         list the sources and their feature files
	classes[:name]  combined glyph classes
	kerning[:left]  merged kerning pairs
	anchors         merged mark classes and mark bases
	stats           statistics and diagnostics of the merge
	set[:k=v]       show or change settings
	merge[:output]  write the merged feature file
	kern            expand kerning groups of every master
	mark            expand mark groups of every master
	all[:output]    kern, mark and merge
	help[:topic]    topics: kerning, anchors, settings
	quit            leave

	Several commands may be given on one line, separated by blanks.
	`)
	}
}
