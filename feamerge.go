/*
Package feamerge merges the OpenType feature sources of the masters of a
design space into a single variable feature source.

We will stick to the following definitions:

▪︎ A "master" is a source of a design space, i.e. a UFO at a certain location
in the design space. An example is "Light" at wght=100.

▪︎ A "location" is a set of axis coordinates, e.g. wght=100,wdth=75.
The default location has no coordinates at all.

▪︎ A "variable value" lists one value per master location,
e.g. (wght=100:-65 wght=900:-40).

Every master carries a `features.fea`. Kerning pairs and mark anchors found
in these texts are merged into statements with variable values; glyph classes
are merged into their union.

The packages of this module are:

▪︎ fea: scanning feature text, glyph classes and group expansion

▪︎ merge: collecting facts from masters and rendering the merged source

▪︎ designspace and ufo: reading the inputs

▪︎ backend: the operations as used by the command line tools

# Links

OpenType feature file specification:
https://adobe-type-tools.github.io/afdko/OpenTypeFeatureFileSpecification.html

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package feamerge

import (
	"context"

	"github.com/npillmayer/feamerge/backend"
	"github.com/npillmayer/feamerge/fea"
	"github.com/npillmayer/feamerge/merge"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'feamerge'
func tracer() tracing.Trace {
	return tracing.Select("feamerge")
}

// ExpandKerning replaces every kerning statement using glyph groups by one
// statement per pair of glyphs.
func ExpandKerning(text string) string {
	return fea.ExpandKerning(text)
}

// ExpandMarks replaces every mark positioning statement using glyph groups by
// one statement per pair of glyphs.
func ExpandMarks(text string) string {
	return fea.ExpandMarks(text)
}

// Merge combines the feature texts of masters into a variable feature source.
// Kerning groups are expanded before merging.
func Merge(masters ...merge.Master) (string, error) {
	ft, err := merge.Combine(masters, merge.ExpandGroups)
	if err != nil {
		return "", err
	}
	for _, d := range ft.Diagnostics() {
		tracer().Infof("%s", d.Error())
	}
	return ft.Render(), nil
}

// MergeDesignspace merges the masters of a design-space document and writes
// the result beside the document, using default settings. outputName may be
// empty.
func MergeDesignspace(ctx context.Context, path, outputName string) *backend.Result {
	b, err := backend.FromPath(path, backend.DefaultSettings())
	if err != nil {
		return &backend.Result{Operation: "merge", Status: backend.StatusError, Message: err.Error()}
	}
	return b.MergeFeatures(ctx, outputName, nil)
}
