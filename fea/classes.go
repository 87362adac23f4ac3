package fea

import (
	"regexp"
	"sort"
	"strings"
)

// ClassTable maps glyph class names (without the leading '@') to their glyphs,
// in the order they appear in the class body.
type ClassTable map[string][]string

// A class body may span several lines. Class names may contain dots,
// e.g. `@public.kern1.O`.
var classPattern = regexp.MustCompile(`@([A-Za-z0-9_.]+)\s*=\s*\[([^\]]*)\]\s*;`)

// ParseClasses extracts every glyph class definition from a feature text.
// If a class is defined more than once, the last definition wins.
// Glyph names are not checked against any font.
func ParseClasses(text string) ClassTable {
	classes := make(ClassTable)
	for _, m := range classPattern.FindAllStringSubmatch(text, -1) {
		classes[m[1]] = strings.Fields(m[2])
	}
	return classes
}

// Names returns the class names in alphabetical order.
func (ct ClassTable) Names() []string {
	names := make([]string, 0, len(ct))
	for name := range ct {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the glyphs of a class. name may be given with or without
// the group marker.
func (ct ClassTable) Lookup(name string) ([]string, bool) {
	glyphs, ok := ct[strings.TrimPrefix(name, GroupMarker)]
	return glyphs, ok
}

// FormatClass formats a class definition in canonical single-line form.
func FormatClass(name string, glyphs []string) string {
	return "@" + name + " = [" + strings.Join(glyphs, " ") + "];"
}

// ExpandSide returns the glyph names a side of a positioning statement
// denotes. A side is a single glyph name, a group reference `@Name`, or a
// bracketed list mixing both, e.g. `[a @Round o]`.
//
// Group references are replaced by the glyphs of the group, keeping the
// group's order. A reference to an unknown group is kept literally, marker
// included, i.e. it is treated like a glyph name.
func ExpandSide(side string, classes ClassTable) []string {
	side = strings.TrimSpace(side)
	if strings.HasPrefix(side, "[") && strings.HasSuffix(side, "]") {
		var expanded []string
		for _, token := range strings.Fields(side[1 : len(side)-1]) {
			expanded = append(expanded, expandToken(token, classes)...)
		}
		return expanded
	}
	return expandToken(side, classes)
}

func expandToken(token string, classes ClassTable) []string {
	if !strings.HasPrefix(token, GroupMarker) {
		return []string{token}
	}
	if glyphs, ok := classes[token[len(GroupMarker):]]; ok {
		return append([]string(nil), glyphs...)
	}
	tracer().Debugf("unknown glyph class %s, keeping it as a glyph name", token)
	return []string{token}
}

// Escape prefixes a glyph name with a backslash, if it does not have one yet.
func Escape(glyph string) string {
	if strings.HasPrefix(glyph, `\`) {
		return glyph
	}
	return `\` + glyph
}

// EscapeAll escapes every glyph name of a whitespace separated list.
func EscapeAll(glyphs string) string {
	fields := strings.Fields(glyphs)
	for i, g := range fields {
		fields[i] = Escape(g)
	}
	return strings.Join(fields, " ")
}
