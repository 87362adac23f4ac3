package merge

import (
	"fmt"
	"strings"

	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/npillmayer/feamerge/fea"
)

// LanguageSystem is a script/language pair of a `languagesystem` declaration.
type LanguageSystem struct {
	Script   ot.Tag
	Language ot.Tag
}

// LanguageSystems are declared at the top of every merged feature source,
// and the synthetic mark lookup is registered for each of them.
var LanguageSystems = []LanguageSystem{
	{Script: ot.NewTag('D', 'F', 'L', 'T'), Language: ot.NewTag('d', 'f', 'l', 't')},
	{Script: ot.NewTag('l', 'a', 't', 'n'), Language: ot.NewTag('d', 'f', 'l', 't')},
}

// Header is the comment line following the language system declarations.
const Header = "# Variable features.fea generated from designspace masters"

// Render assembles the merged feature source. Blocks are emitted in fixed
// order: language systems, combined classes, feature kern, the mark lookup
// with its feature mark, and the GDEF table. A block without facts is left out.
func (ft *FactTable) Render() string {
	var lines []string
	for _, ls := range LanguageSystems {
		lines = append(lines, fmt.Sprintf("languagesystem %s %s;", ls.Script, ls.Language))
	}
	lines = append(lines, "", Header, "")
	lines = ft.renderClasses(lines)
	lines = ft.renderKerning(lines)
	lines = ft.renderMarks(lines)
	if ft.GDEF != "" {
		lines = append(lines, ft.GDEF, "")
	}
	return strings.Join(lines, "\n")
}

func (ft *FactTable) renderClasses(lines []string) []string {
	n := 0
	for _, class := range ft.Classes() {
		if len(class.Glyphs) == 0 {
			continue
		}
		escaped := make([]string, len(class.Glyphs))
		for i, g := range class.Glyphs {
			escaped[i] = fea.Escape(g)
		}
		lines = append(lines, fea.FormatClass(class.Name, escaped))
		n++
	}
	if n > 0 {
		lines = append(lines, "")
	}
	return lines
}

func (ft *FactTable) renderKerning(lines []string) []string {
	if len(ft.Kerning) == 0 {
		return lines
	}
	lines = append(lines, "feature kern {")
	for _, fact := range ft.Kerning {
		value := fea.FormatValue(&fact.Values)
		if value == "0" { // no samples
			continue
		}
		lines = append(lines, fmt.Sprintf("    pos %s %s (%s);",
			fea.Escape(fact.Key.Left), fea.Escape(fact.Key.Right), value))
	}
	return append(lines, "} kern;", "")
}

func (ft *FactTable) renderMarks(lines []string) []string {
	if len(ft.MarkClasses) == 0 && len(ft.MarkBases) == 0 {
		return lines
	}
	name := ft.LookupName()
	lines = append(lines, fmt.Sprintf("lookup %s {", name), "  lookupflag 0;")
	for _, fact := range ft.MarkClasses {
		if fact.Anchors.Len() == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("  markClass [%s] %s @%s;",
			fea.EscapeAll(fact.Key.Glyphs), fea.FormatAnchor(&fact.Anchors), fact.Key.MarkClass))
	}
	for _, fact := range ft.MarkBases {
		if fact.Anchors.Len() == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("  pos base [%s] %s mark @%s;",
			fea.EscapeAll(fact.Key.Glyphs), fea.FormatAnchor(&fact.Anchors), fact.Key.MarkClass))
	}
	lines = append(lines, fmt.Sprintf("} %s;", name), "", "feature mark {")
	for _, ls := range LanguageSystems {
		lines = append(lines,
			fmt.Sprintf("    script %s;", ls.Script),
			fmt.Sprintf("    language %s ;", ls.Language),
			fmt.Sprintf("    lookup %s;", name))
	}
	return append(lines, "} mark;", "")
}
