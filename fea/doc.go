/*
Package fea recognizes a small set of statement shapes inside OpenType feature
source (Adobe feature file syntax) and rewrites them.

Package fea is not a parser for the feature language. It scans feature text once
and tags every line it understands:

▪︎ glyph class definitions, e.g. `@Vowels = [a e i o u];`

▪︎ kerning statements, e.g. `pos @L [x y] -10;`

▪︎ mark positioning statements, e.g. `pos mark @Marks @Bases <anchor 0 500>;`

Everything else is kept as opaque text. On top of the scan, the package offers two
rewrites which expand group references into the cross product of their member
glyphs ([ExpandKerning] and [ExpandMarks]), as well as access to `lookup` blocks
and verbatim `table` blocks, which the sister package merge needs for combining
the feature sources of several masters of a design space.

Variable values, i.e. location-tagged samples of one positioning value, are
formatted with [FormatValue] and [FormatAnchor]:

	pos \A \V (wght=400:-10 wght=700:-20);

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fea

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'feamerge.fea'
func tracer() tracing.Trace {
	return tracing.Select("feamerge.fea")
}

// GroupMarker starts every reference to a glyph class.
const GroupMarker = "@"
