package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/feamerge/backend"
	"github.com/npillmayer/feamerge/fea"
	"github.com/npillmayer/feamerge/ufo"
	"github.com/pterm/pterm"
)

func axesOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkDesignspace(); err != nil {
		return err, false
	}
	data := [][]string{
		{"Tag", "Name", "Minimum", "Default", "Maximum"},
	}
	for _, a := range intp.backend.Document().Axes {
		data = append(data, []string{
			a.Tag.String(),
			a.Name,
			strconv.FormatFloat(a.Minimum, 'f', -1, 64),
			strconv.FormatFloat(a.Default, 'f', -1, 64),
			strconv.FormatFloat(a.Maximum, 'f', -1, 64),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func mastersOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkDesignspace(); err != nil {
		return err, false
	}
	data := [][]string{
		{"Source", "Location", "Feature file"},
	}
	for _, src := range intp.backend.Document().Sources {
		loc := src.Location.String()
		if loc == "" {
			loc = "<default>"
		}
		data = append(data, []string{src.Key(), loc, featureFileState(src.Path)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func featureFileState(ufoPath string) string {
	if err := ufo.CheckUFO(ufoPath); err != nil {
		return "missing UFO"
	}
	path := ufo.FeaturePath(ufoPath, ufo.FeatureFile)
	info, err := os.Stat(path)
	if err != nil {
		return "none"
	}
	return fmt.Sprintf("%s (%d bytes)", path, info.Size())
}

func classesOp(intp *Intp, op *Op) (error, bool) {
	ft, err := intp.combined()
	if err != nil {
		return err, false
	}
	data := [][]string{
		{"Class", "Glyphs"},
	}
	for _, c := range ft.Classes() {
		if op.arg != "" && c.Name != op.arg {
			continue
		}
		data = append(data, []string{fea.GroupMarker + c.Name, strings.Join(c.Glyphs, " ")})
	}
	if len(data) == 1 {
		return fmt.Errorf("no class %q", op.arg), false
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

// kerningOp lists kerning facts, optionally restricted to a left glyph.
func kerningOp(intp *Intp, op *Op) (error, bool) {
	ft, err := intp.combined()
	if err != nil {
		return err, false
	}
	data := [][]string{
		{"Left", "Right", "Values"},
	}
	for _, k := range ft.Kerning {
		if op.arg != "" && k.Key.Left != op.arg {
			continue
		}
		data = append(data, []string{k.Key.Left, k.Key.Right, fea.FormatValue(&k.Values)})
	}
	pterm.Printf("%d of %d kerning pairs\n", len(data)-1, len(ft.Kerning))
	if len(data) > 1 {
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}
	return nil, false
}

func anchorsOp(intp *Intp, op *Op) (error, bool) {
	ft, err := intp.combined()
	if err != nil {
		return err, false
	}
	pterm.Printf("mark lookup: %s\n", ft.LookupName())
	data := [][]string{
		{"Kind", "Glyphs", "Mark class", "Lookup", "Anchor"},
	}
	for _, f := range ft.MarkClasses {
		data = append(data, []string{"markClass", f.Key.Glyphs, f.Key.MarkClass, f.Lookup,
			fea.FormatAnchor(&f.Anchors)})
	}
	for _, f := range ft.MarkBases {
		data = append(data, []string{"pos base", f.Key.Glyphs, f.Key.MarkClass, f.Lookup,
			fea.FormatAnchor(&f.Anchors)})
	}
	if len(data) > 1 {
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}
	return nil, false
}

func statsOp(intp *Intp, op *Op) (error, bool) {
	ft, err := intp.combined()
	if err != nil {
		return err, false
	}
	s := ft.Stats()
	data := [][]string{
		{"Masters", "Kerning pairs", "Mark classes", "Mark bases", "Classes"},
		{strconv.Itoa(s.Masters), strconv.Itoa(s.KernPairs), strconv.Itoa(s.MarkClasses),
			strconv.Itoa(s.MarkBases), strconv.Itoa(s.Classes)},
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	for _, d := range intp.diags {
		pterm.Warning.Println(d.Error())
	}
	return nil, false
}

// setOp changes a setting, e.g. "set:expand=true". Without argument, the
// current settings are printed.
func setOp(intp *Intp, op *Op) (error, bool) {
	if op.arg == "" {
		s := intp.settings
		pterm.Printf("output=%s comments=%v expand=%v\n", s.OutputName, s.PreserveComments, s.ExpandGroups)
		return nil, false
	}
	key, value, ok := strings.Cut(op.arg, "=")
	if !ok {
		return errors.New("usage: set:<key>=<value>"), false
	}
	key = strings.ToLower(key)
	switch key {
	case "output":
		intp.settings.OutputName = value
	case "comments", "expand":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("setting %s: %w", key, err), false
		}
		if key == "comments" {
			intp.settings.PreserveComments = b
		} else {
			intp.settings.ExpandGroups = b
		}
	default:
		return fmt.Errorf("unknown setting %q", key), false
	}
	if intp.backend != nil {
		intp.backend.Configure(intp.settings)
		intp.facts = nil
	}
	tracer().Infof("setting %s = %s", key, value)
	return nil, false
}

func mergeOp(intp *Intp, op *Op) (error, bool) {
	return intp.run(func(b *backend.Backend, p backend.Progress) *backend.Result {
		return b.MergeFeatures(context.Background(), op.arg, p)
	}), false
}

func kernOp(intp *Intp, op *Op) (error, bool) {
	return intp.run(func(b *backend.Backend, p backend.Progress) *backend.Result {
		return b.BreakKerningGroups(context.Background(), p)
	}), false
}

func markOp(intp *Intp, op *Op) (error, bool) {
	return intp.run(func(b *backend.Backend, p backend.Progress) *backend.Result {
		return b.BreakMarkGroups(context.Background(), p)
	}), false
}

func allOp(intp *Intp, op *Op) (error, bool) {
	return intp.run(func(b *backend.Backend, p backend.Progress) *backend.Result {
		return b.ProcessAll(context.Background(), op.arg, p)
	}), false
}

// run executes an operation and prints its result.
func (intp *Intp) run(operation func(*backend.Backend, backend.Progress) *backend.Result) error {
	if err := intp.checkDesignspace(); err != nil {
		return err
	}
	progress := func(fraction float64, message string) {
		tracer().Infof("[%3.0f%%] %s", fraction*100, message)
	}
	r := operation(intp.backend, progress)
	intp.facts = nil
	for _, d := range r.Diagnostics {
		pterm.Warning.Println(d.Error())
	}
	if !r.OK() {
		return errors.New(r.Message)
	}
	pterm.Info.Println(r.Message)
	return nil
}
