package fea

import (
	"fmt"
	"strings"
)

// ExpandOption influences the group expansion rewrites.
type ExpandOption int

const (
	StripComments ExpandOption = iota // drop full-line comments from the output
	EscapeGlyphs                      // backslash-escape the glyphs of expanded statements
)

type expandConfig struct {
	stripComments bool
	escape        bool
}

func configure(opts []ExpandOption) expandConfig {
	var conf expandConfig
	for _, opt := range opts {
		switch opt {
		case StripComments:
			conf.stripComments = true
		case EscapeGlyphs:
			conf.escape = true
		}
	}
	return conf
}

// ExpandKerning rewrites a feature text, replacing every kerning statement
// `pos <side> <side> <value>;` by one statement per glyph pair of the cross
// product of both sides. Group references are resolved against the classes
// defined in the text itself. Pairs are emitted left-major.
//
// All other lines, including `pos` lines of any other shape, are copied
// verbatim and stay in place.
func ExpandKerning(text string, opts ...ExpandOption) string {
	return Parse(text).ExpandKerning(opts...)
}

// ExpandMarks rewrites a feature text, replacing every mark positioning
// statement `pos mark <side> <side> <rest>;` by one statement per glyph pair
// of the cross product of both sides. The rest of the statement (usually the
// anchor clause) is repeated unchanged. All other lines are copied verbatim.
func ExpandMarks(text string, opts ...ExpandOption) string {
	return Parse(text).ExpandMarks(opts...)
}

// ExpandKerning is the Document variant of function ExpandKerning.
func (doc *Document) ExpandKerning(opts ...ExpandOption) string {
	conf := configure(opts)
	return doc.rewrite(conf, KernStatement, func(st Statement, l, r string) string {
		return fmt.Sprintf("pos %s %s %s;", l, r, st.Amount)
	})
}

// ExpandMarks is the Document variant of function ExpandMarks.
func (doc *Document) ExpandMarks(opts ...ExpandOption) string {
	conf := configure(opts)
	return doc.rewrite(conf, MarkPosStatement, func(st Statement, l, r string) string {
		return fmt.Sprintf("pos mark %s %s %s;", l, r, st.Rest)
	})
}

func (doc *Document) rewrite(conf expandConfig, kind Kind, format func(Statement, string, string) string) string {
	out := make([]string, 0, len(doc.Statements))
	expanded := 0
	for _, st := range doc.Statements {
		if st.Kind == Comment && conf.stripComments {
			continue
		}
		if st.Kind != kind {
			out = append(out, st.Raw)
			continue
		}
		left := ExpandSide(st.Left, doc.Classes)
		right := ExpandSide(st.Right, doc.Classes)
		if len(left) == 0 || len(right) == 0 { // empty group or `[]`
			out = append(out, st.Raw)
			continue
		}
		for _, l := range left {
			for _, r := range right {
				lg, rg := l, r
				if conf.escape {
					lg, rg = Escape(l), Escape(r)
				}
				out = append(out, format(st, lg, rg))
			}
		}
		expanded++
	}
	tracer().Debugf("expanded %d %s statements", expanded, kind)
	return strings.Join(out, "\n")
}

// GroupExpanded is feature text in which every kerning statement refers to
// backslash-escaped single glyphs, i.e. the input form expected by the
// fact extraction of package merge.
type GroupExpanded string

// EscapedKerning expands kerning groups and escapes the glyph names of
// every expanded pair.
func EscapedKerning(text string) GroupExpanded {
	return GroupExpanded(ExpandKerning(text, EscapeGlyphs))
}
