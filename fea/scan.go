package fea

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind tags the statement shapes the scanner recognizes.
type Kind int

const (
	Opaque          Kind = iota // anything not recognized, kept verbatim
	Blank                       // empty or whitespace-only line
	Comment                     // full-line comment
	ClassDefinition             // single-line `@Name = [...];`
	KernStatement               // `pos <side> <side> <int>;`
	MarkPosStatement            // `pos mark <side> <side> <rest>;`
)

func (k Kind) String() string {
	switch k {
	case Opaque:
		return "opaque"
	case Blank:
		return "blank"
	case Comment:
		return "comment"
	case ClassDefinition:
		return "class"
	case KernStatement:
		return "kern"
	case MarkPosStatement:
		return "markpos"
	}
	return "unknown"
}

// Statement is one line of feature text, tagged with the shape it matched.
// Only the fields of the matching shape are set.
type Statement struct {
	Kind   Kind
	Line   int    // 1-based line number
	Raw    string // the line as found in the input, without line ending
	Left   string // left side of a kerning or mark positioning statement
	Right  string // right side of a kerning or mark positioning statement
	Value  int    // kerning value, zero if Amount exceeds the int range
	Amount string // kerning value as written, e.g. "-010"
	Rest   string // anchor clause of a mark positioning statement
	Class  string // class name of a class definition
	Glyphs []string
}

// Anchor is an anchor point in font units.
type Anchor struct {
	X, Y int
}

// MarkStatement is a `markClass` or `pos base` statement found inside a
// lookup block.
type MarkStatement struct {
	Glyphs    string // glyph list text between the brackets, trimmed
	Anchor    Anchor
	MarkClass string // mark class name without '@'
}

// Lookup is a named `lookup Name { ... } Name;` block.
type Lookup struct {
	Name        string
	Body        string
	MarkClasses []MarkStatement
	MarkBases   []MarkStatement
}

// KernPair is a kerning statement between two literal, backslash-escaped glyphs,
// e.g. `pos \A \V -40;`. Glyph names are stored without the backslash.
type KernPair struct {
	Left, Right string
	Value       int
}

// Document is the result of scanning one feature text.
type Document struct {
	Statements []Statement // one per input line
	Classes    ClassTable  // class definitions, multi-line bodies included
	Lookups    []Lookup    // lookup blocks in source order
	Kerning    []KernPair  // escaped-glyph kerning statements in source order
	text       string
}

// A side is a bracketed list (which may contain blanks) or a single token.
const sidePattern = `(\[[^\]]*\]|\S+)`

var (
	kernLinePattern    = regexp.MustCompile(`^pos\s+` + sidePattern + `\s+` + sidePattern + `\s+(-?\d+);`)
	markPosLinePattern = regexp.MustCompile(`^pos\s+mark\s+` + sidePattern + `\s+` + sidePattern + `\s+(.*);`)
	classLinePattern   = regexp.MustCompile(`^@([A-Za-z0-9_.]+)\s*=\s*\[([^\]]*)\]\s*;`)
	escapedKernPattern = regexp.MustCompile(`pos\s+\\([A-Za-z0-9_.\-]+)\s+\\([A-Za-z0-9_.\-]+)\s+(-?\d+);`)
	lookupOpenPattern  = regexp.MustCompile(`lookup\s+([A-Za-z0-9_.]+)\s*\{`)
	markClassPattern   = regexp.MustCompile(`markClass\s+\[([^\]\n]*)\]\s+<anchor\s+(-?\d+)\s+(-?\d+)\s*>\s+@([A-Za-z0-9_.]+)\s*;`)
	markBasePattern    = regexp.MustCompile(`pos\s+base\s+\[([^\]\n]*)\]\s+<anchor\s+(-?\d+)\s+(-?\d+)\s*>\s+mark\s+@([A-Za-z0-9_.]+)\s*;`)
)

// Parse scans a feature text. It never fails: lines which do not match one
// of the recognized shapes exactly are tagged as Opaque.
func Parse(text string) *Document {
	doc := &Document{
		Classes: ParseClasses(text),
		text:    text,
	}
	lines := splitLines(text)
	doc.Statements = make([]Statement, len(lines))
	for i, line := range lines {
		doc.Statements[i] = scanLine(line, i+1)
	}
	doc.Kerning = scanEscapedKerning(text)
	doc.Lookups = scanLookups(text)
	tracer().Debugf("scanned %d lines, %d classes, %d kerning pairs, %d lookups",
		len(lines), len(doc.Classes), len(doc.Kerning), len(doc.Lookups))
	return doc
}

// Text returns the text the document has been scanned from.
func (doc *Document) Text() string {
	return doc.text
}

// Count returns the number of statements of a given kind.
func (doc *Document) Count(kind Kind) int {
	n := 0
	for _, st := range doc.Statements {
		if st.Kind == kind {
			n++
		}
	}
	return n
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func scanLine(line string, lineno int) Statement {
	st := Statement{Kind: Opaque, Line: lineno, Raw: line}
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		st.Kind = Blank
	case strings.HasPrefix(trimmed, "#"):
		st.Kind = Comment
	case strings.HasPrefix(trimmed, "pos "):
		if strings.HasPrefix(trimmed, "pos mark ") {
			if m := markPosLinePattern.FindStringSubmatch(trimmed); m != nil {
				st.Kind = MarkPosStatement
				st.Left, st.Right, st.Rest = m[1], m[2], m[3]
				break
			}
		}
		// a glyph may be named 'mark', e.g. `pos mark @R -10;`
		if m := kernLinePattern.FindStringSubmatch(trimmed); m != nil {
			st.Kind = KernStatement
			st.Left, st.Right, st.Amount = m[1], m[2], m[3]
			st.Value, _ = strconv.Atoi(m[3])
		}
	case strings.HasPrefix(trimmed, GroupMarker):
		if m := classLinePattern.FindStringSubmatch(trimmed); m != nil {
			st.Kind = ClassDefinition
			st.Class, st.Glyphs = m[1], strings.Fields(m[2])
		}
	}
	return st
}

func scanEscapedKerning(text string) []KernPair {
	var pairs []KernPair
	for _, m := range escapedKernPattern.FindAllStringSubmatch(text, -1) {
		value, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		pairs = append(pairs, KernPair{Left: m[1], Right: m[2], Value: value})
	}
	return pairs
}

// scanLookups finds `lookup Name { ... } Name;` blocks. The body extends to the
// first closing `} Name;`; an opening without a matching close is not a block.
func scanLookups(text string) []Lookup {
	var lookups []Lookup
	pos := 0
	for pos < len(text) {
		open := lookupOpenPattern.FindStringSubmatchIndex(text[pos:])
		if open == nil {
			break
		}
		name := text[pos+open[2] : pos+open[3]]
		bodyStart := pos + open[1]
		closing := regexp.MustCompile(`\}\s*` + regexp.QuoteMeta(name) + `\s*;`)
		end := closing.FindStringIndex(text[bodyStart:])
		if end == nil {
			tracer().Debugf("lookup %s is not closed", name)
			pos = bodyStart
			continue
		}
		body := text[bodyStart : bodyStart+end[0]]
		lookups = append(lookups, Lookup{
			Name:        name,
			Body:        body,
			MarkClasses: scanMarkStatements(markClassPattern, body),
			MarkBases:   scanMarkStatements(markBasePattern, body),
		})
		pos = bodyStart + end[1]
	}
	return lookups
}

func scanMarkStatements(pattern *regexp.Regexp, body string) []MarkStatement {
	var stmts []MarkStatement
	for _, m := range pattern.FindAllStringSubmatch(body, -1) {
		x, errx := strconv.Atoi(m[2])
		y, erry := strconv.Atoi(m[3])
		if errx != nil || erry != nil {
			continue
		}
		stmts = append(stmts, MarkStatement{
			Glyphs:    strings.TrimSpace(m[1]),
			Anchor:    Anchor{X: x, Y: y},
			MarkClass: m[4],
		})
	}
	return stmts
}

// Table returns a verbatim `table <tag> { ... } <tag>;` block, if the text
// contains one.
func (doc *Document) Table(tag string) (string, bool) {
	quoted := regexp.QuoteMeta(tag)
	pattern := regexp.MustCompile(`(?s)table ` + quoted + ` \{.*?\} ` + quoted + `;`)
	block := pattern.FindString(doc.text)
	return block, block != ""
}
