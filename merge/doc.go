/*
Package merge combines the feature sources of the masters of a design space
into one variable feature source.

Every master contributes facts: kerning pairs, mark classes and mark bases,
each identified by the glyph and class names as spelled in the source text.
Facts are extracted per master ([Extract]) and then folded, in master order,
into a single [FactTable] ([Combine]). A fact present in several masters ends
up with one sample per master location; [FactTable.Render] emits each of them
as a variable value:

	feature kern {
	    pos \A \V (wght=100:-60 wght=900:-40);
	} kern;

Identity keys are plain source text. `@Round` and `[o c e]` are different keys
even if they denote the same glyphs.

Ordering rules are part of the semantics: within one master, a later statement
for the same key overwrites an earlier one; across masters, the lookup name of
a mark fact is taken from the first master contributing it.
*/
package merge

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'feamerge.merge'
func tracer() tracing.Trace {
	return tracing.Select("feamerge.merge")
}
