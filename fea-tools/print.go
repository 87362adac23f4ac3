package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/feamerge/backend"
	"github.com/pterm/pterm"
)

// printResult reports the result of an operation and exits with status 1
// if the operation failed.
func printResult(r *backend.Result) {
	data := [][]string{
		{"Operation", "Status", "Message"},
	}
	for _, step := range r.Steps {
		data = append(data, []string{step.Operation, string(step.Status), step.Message})
	}
	data = append(data, []string{r.Operation, string(r.Status), r.Message})
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	if len(r.Processed) > 0 {
		pterm.Printf("Masters: %s\n", strings.Join(r.Processed, ", "))
	}
	if r.Stats != nil {
		printStats(r)
	}
	for _, d := range r.Diagnostics {
		pterm.Warning.Println(d.Error())
	}
	if !r.OK() {
		pterm.Error.Println(r.Message)
		os.Exit(1)
	}
	if r.OutputPath != "" {
		pterm.Success.Printf("written %s\n", r.OutputPath)
	}
}

func printStats(r *backend.Result) {
	s := r.Stats
	data := [][]string{
		{"Masters", "Kerning pairs", "Mark classes", "Mark bases", "Classes"},
		{
			fmt.Sprintf("%d", s.Masters),
			fmt.Sprintf("%d", s.KernPairs),
			fmt.Sprintf("%d", s.MarkClasses),
			fmt.Sprintf("%d", s.MarkBases),
			fmt.Sprintf("%d", s.Classes),
		},
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
