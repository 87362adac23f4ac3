/*
Package backend runs the operations of feamerge on a design space.

Every operation works on the masters declared by a `.designspace` document and
reports to the caller with a Result. Failures are never raised: they are
caught at the operation boundary and turned into a Result with StatusError and
a message. Issues concerning single masters (a missing UFO, undecodable feature
text) are collected as diagnostics; the master is skipped and the operation
continues.

Operations check their context before each master and before writing. Work on
a single master is never interrupted.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/feamerge/designspace"
	"github.com/npillmayer/feamerge/fea"
	"github.com/npillmayer/feamerge/merge"
	"github.com/npillmayer/feamerge/ufo"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'feamerge.backend'
func tracer() tracing.Trace {
	return tracing.Select("feamerge.backend")
}

// Status is the outcome of an operation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Progress receives the progress of an operation as a fraction in [0,1] and
// a short message. A nil Progress is valid and ignored.
type Progress func(fraction float64, message string)

func (p Progress) report(fraction float64, format string, args ...any) {
	if p != nil {
		p(fraction, fmt.Sprintf(format, args...))
	}
}

// within maps the full range of fractions to [from,to].
func (p Progress) within(from, to float64) Progress {
	if p == nil {
		return nil
	}
	return func(fraction float64, message string) {
		p(from+fraction*(to-from), message)
	}
}

// Result is the structured outcome of an operation.
type Result struct {
	Operation   string
	Status      Status
	Message     string
	OutputPath  string            // merged feature file, if one has been written
	Processed   []string          // names of the masters which have been processed
	Diagnostics merge.Diagnostics // non-fatal issues
	Stats       *merge.Stats      // statistics of a merge, nil for other operations
	Steps       []*Result         // results of the single steps of ProcessAll
}

// OK reports whether an operation has been successful.
func (r *Result) OK() bool {
	return r != nil && r.Status == StatusSuccess
}

func (r *Result) succeed(format string, args ...any) *Result {
	r.Status = StatusSuccess
	r.Message = fmt.Sprintf(format, args...)
	tracer().Infof("%s: %s", r.Operation, r.Message)
	return r
}

func (r *Result) fail(err error) *Result {
	r.Status = StatusError
	r.Message = err.Error()
	tracer().Errorf("%s: %s", r.Operation, r.Message)
	return r
}

// Backend operates on the masters of a design-space document.
type Backend struct {
	doc      *designspace.Document
	settings Settings
	reader   *ufo.Reader
}

// FromPath loads a design-space document and creates a backend for it.
func FromPath(path string, settings Settings) (*Backend, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("backend: design space %s: %w", path, err)
	}
	doc, err := designspace.Load(path)
	if err != nil {
		return nil, err
	}
	return New(doc, settings)
}

// New creates a backend for a design-space document.
func New(doc *designspace.Document, settings Settings) (*Backend, error) {
	if doc == nil {
		return nil, errors.New("backend: no design space")
	}
	reader, err := ufo.NewReader(ufo.DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	if settings.OutputName == "" {
		settings.OutputName = DefaultOutputName
	}
	return &Backend{doc: doc, settings: settings, reader: reader}, nil
}

// Document returns the design-space document of the backend.
func (b *Backend) Document() *designspace.Document {
	return b.doc
}

// Settings returns the settings of the backend.
func (b *Backend) Settings() Settings {
	return b.settings
}

// Configure replaces the settings of the backend.
func (b *Backend) Configure(settings Settings) {
	if settings.OutputName == "" {
		settings.OutputName = DefaultOutputName
	}
	b.settings = settings
}

// guard runs an operation and turns a panic into a failed result.
func guard(name string, op func(*Result) *Result) (r *Result) {
	r = &Result{Operation: name}
	defer func() {
		if p := recover(); p != nil {
			r.fail(fmt.Errorf("%s: internal error: %v", name, p))
		}
	}()
	return op(r)
}

func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("operation cancelled: %w", err)
	}
	return nil
}

// masterName names a source for diagnostics and results.
func masterName(src designspace.Source) string {
	if src.Name != "" {
		return src.Name
	}
	return src.Key()
}

// readMaster reads the feature text of a source. If the source cannot be
// used, a diagnostic is recorded and ok is false.
func (b *Backend) readMaster(src designspace.Source, ds *merge.Diagnostics) (text string, ok bool) {
	name := masterName(src)
	text, err := b.reader.Features(src.Path)
	switch {
	case errors.Is(err, ufo.ErrNotFound):
		ds.Add(merge.MissingFile, name, "source %s does not exist, skipped", src.Path)
		return "", false
	case err != nil:
		ds.Add(merge.UnreadableText, name, "%v, skipped", err)
		return "", false
	case strings.TrimSpace(text) == "":
		ds.Add(merge.NoFeatures, name, "no feature text")
	}
	return text, true
}

// LoadMasters reads the feature text of every source of the design space.
// Sources which cannot be read are reported as diagnostics and skipped.
func (b *Backend) LoadMasters(ctx context.Context, progress Progress) ([]merge.Master, merge.Diagnostics, error) {
	var masters []merge.Master
	var ds merge.Diagnostics
	n := len(b.doc.Sources)
	for i, src := range b.doc.Sources {
		if err := cancelled(ctx); err != nil {
			return nil, ds, err
		}
		progress.report(float64(i)/float64(n), "reading %s", masterName(src))
		text, ok := b.readMaster(src, &ds)
		if !ok {
			continue
		}
		masters = append(masters, merge.Master{
			Name:     masterName(src),
			Location: src.Location,
			Text:     text,
		})
	}
	progress.report(1, "read %d of %d masters", len(masters), n)
	return masters, ds, nil
}

// OutputPath returns the path of the merged feature file. An empty name
// selects the name of the settings.
func (b *Backend) OutputPath(outputName string) string {
	if outputName == "" {
		outputName = b.settings.OutputName
	}
	if filepath.IsAbs(outputName) {
		return outputName
	}
	return filepath.Join(b.doc.Dir(), outputName)
}

// Facts reads the feature texts of all masters and combines their facts.
// Nothing is written. The diagnostics include those of reading the masters
// and those of the combined fact table.
func (b *Backend) Facts(ctx context.Context, progress Progress) (*merge.FactTable, merge.Diagnostics, error) {
	masters, ds, err := b.LoadMasters(ctx, progress)
	if err != nil {
		return nil, ds, err
	}
	ft, err := merge.Combine(masters, b.settings.mergeOptions()...)
	if err != nil {
		return nil, ds, err
	}
	return ft, append(ds, ft.Diagnostics()...), nil
}

// MergeFeatures combines the feature texts of all masters into one variable
// feature file, written beside the design-space document.
func (b *Backend) MergeFeatures(ctx context.Context, outputName string, progress Progress) *Result {
	return guard("merge", func(r *Result) *Result {
		ft, ds, err := b.Facts(ctx, progress.within(0, 0.8))
		r.Diagnostics = ds
		if err != nil {
			return r.fail(err)
		}
		r.Processed = append(r.Processed, ft.Masters...)
		stats := ft.Stats()
		r.Stats = &stats
		text := ft.Render()
		if err := cancelled(ctx); err != nil {
			return r.fail(err)
		}
		path := b.OutputPath(outputName)
		progress.report(0.9, "writing %s", filepath.Base(path))
		if err := b.reader.Write(path, text); err != nil {
			return r.fail(err)
		}
		r.OutputPath = path
		progress.report(1, "done")
		return r.succeed("merged %d masters into %s", len(ft.Masters), path)
	})
}

// BreakKerningGroups expands the kerning groups of every master and writes
// the result to the master's expanded kerning file.
func (b *Backend) BreakKerningGroups(ctx context.Context, progress Progress) *Result {
	return guard("kern", func(r *Result) *Result {
		return b.breakGroups(ctx, r, progress, ufo.KerningExpandedFile, fea.ExpandKerning)
	})
}

// BreakMarkGroups expands the groups of mark positioning statements of every
// master and writes the result to the master's expanded mark file.
func (b *Backend) BreakMarkGroups(ctx context.Context, progress Progress) *Result {
	return guard("mark", func(r *Result) *Result {
		return b.breakGroups(ctx, r, progress, ufo.MarkExpandedFile, fea.ExpandMarks)
	})
}

func (b *Backend) breakGroups(ctx context.Context, r *Result, progress Progress,
	outputFile string, expand func(string, ...fea.ExpandOption) string) *Result {
	//
	n := len(b.doc.Sources)
	if n == 0 {
		return r.fail(merge.ErrNoMasters)
	}
	for i, src := range b.doc.Sources {
		if err := cancelled(ctx); err != nil {
			return r.fail(err)
		}
		name := masterName(src)
		progress.report(float64(i)/float64(n), "expanding %s", name)
		text, ok := b.readMaster(src, &r.Diagnostics)
		if !ok {
			continue
		}
		expanded := expand(text, b.settings.expandOptions()...)
		if err := cancelled(ctx); err != nil {
			return r.fail(err)
		}
		if err := b.reader.Write(ufo.FeaturePath(src.Path, outputFile), expanded); err != nil {
			r.Diagnostics.Add(merge.UnreadableText, name, "cannot write %s: %v", outputFile, err)
			continue
		}
		r.Processed = append(r.Processed, name)
	}
	progress.report(1, "done")
	if len(r.Processed) == 0 {
		return r.fail(fmt.Errorf("no master could be expanded, %d skipped", n))
	}
	return r.succeed("expanded %d of %d masters into %s", len(r.Processed), n, outputFile)
}

// ProcessAll expands kerning groups and mark groups of every master, then
// merges the masters. It stops at the first failing step.
func (b *Backend) ProcessAll(ctx context.Context, outputName string, progress Progress) *Result {
	return guard("all", func(r *Result) *Result {
		steps := []func(Progress) *Result{
			func(p Progress) *Result { return b.BreakKerningGroups(ctx, p) },
			func(p Progress) *Result { return b.BreakMarkGroups(ctx, p) },
			func(p Progress) *Result { return b.MergeFeatures(ctx, outputName, p) },
		}
		n := float64(len(steps))
		for i, step := range steps {
			res := step(progress.within(float64(i)/n, float64(i+1)/n))
			r.Steps = append(r.Steps, res)
			r.Diagnostics = append(r.Diagnostics, res.Diagnostics...)
			if !res.OK() {
				return r.fail(fmt.Errorf("step %s failed: %s", res.Operation, res.Message))
			}
		}
		last := r.Steps[len(r.Steps)-1]
		r.OutputPath, r.Processed, r.Stats = last.OutputPath, last.Processed, last.Stats
		return r.succeed("processed %d masters into %s", len(r.Processed), r.OutputPath)
	})
}
