package merge

import (
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/feamerge/fea"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

const lightText = `@Upper = [A V];
feature kern {
  pos \A \V -60;
  pos \A \V -65;
} kern;
lookup mark_top {
  markClass [acutecomb] <anchor 0 500> @top;
  pos base [a] <anchor 250 480> mark @top;
} mark_top;
table GDEF {
  GlyphClassDef [A], , [acutecomb], ;
} GDEF;
`

const boldText = `@Upper = [A T];
feature kern { pos \A \V -40; pos \T \o -20; } kern;
lookup other {
  markClass [acutecomb] <anchor 10 520> @top;
  pos base [a] <anchor 270 500> mark @top;
} other;
`

var expectedTwoMasters = strings.Join([]string{
	"languagesystem DFLT dflt;",
	"languagesystem latn dflt;",
	"",
	Header,
	"",
	`@Upper = [\A \T \V];`,
	"",
	"feature kern {",
	`    pos \A \V (wght=100:-65 wght=900:-40);`,
	`    pos \T \o (wght=900:-20);`,
	"} kern;",
	"",
	"lookup mark_top {",
	"  lookupflag 0;",
	`  markClass [\acutecomb] <anchor wght=100:0 wght=900:10 wght=100:500 wght=900:520> @top;`,
	`  pos base [\a] <anchor wght=100:250 wght=900:270 wght=100:480 wght=900:500> mark @top;`,
	"} mark_top;",
	"",
	"feature mark {",
	"    script DFLT;",
	"    language dflt ;",
	"    lookup mark_top;",
	"    script latn;",
	"    language dflt ;",
	"    lookup mark_top;",
	"} mark;",
	"",
	"table GDEF {",
	"  GlyphClassDef [A], , [acutecomb], ;",
	"} GDEF;",
	"",
}, "\n")

func twoMasters() []Master {
	return []Master{
		{Name: "Light.ufo", Location: fea.Loc(fea.At("wght", 100)), Text: lightText},
		{Name: "Bold.ufo", Location: fea.Loc(fea.At("wght", 900)), Text: boldText},
	}
}

func TestCombineTwoMasters(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "feamerge.merge")
	defer teardown()
	//
	ft, err := Combine(twoMasters())
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}
	if got := ft.Render(); got != expectedTwoMasters {
		t.Errorf("unexpected merged features:\n%s\nwant:\n%s", got, expectedTwoMasters)
	}
	stats := ft.Stats()
	if stats != (Stats{Masters: 2, KernPairs: 2, MarkClasses: 1, MarkBases: 1, Classes: 1}) {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestCombineIsDeterministic(t *testing.T) {
	parallel, err := Combine(twoMasters())
	if err != nil {
		t.Fatal(err)
	}
	sequential, err := Combine(twoMasters(), Sequential)
	if err != nil {
		t.Fatal(err)
	}
	if parallel.Render() != sequential.Render() {
		t.Errorf("parallel and sequential extraction differ")
	}
}

func TestCombineDefaultMaster(t *testing.T) {
	ft, err := Combine([]Master{{Name: "Regular", Text: `pos \a \b -12;`}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(ft.Render(), `    pos \a \b (:-12);`) {
		t.Errorf("expected default master value with empty location prefix, got\n%s", ft.Render())
	}
}

func TestCombineOmitsMarkBlock(t *testing.T) {
	ft, err := Combine([]Master{
		{Name: "A", Location: fea.Loc(fea.At("wght", 400)), Text: `pos \a \b -10;`},
		{Name: "B", Location: fea.Loc(fea.At("wght", 700)), Text: `pos \a \b -20;`},
	})
	if err != nil {
		t.Fatal(err)
	}
	out := ft.Render()
	if !strings.Contains(out, `    pos \a \b (wght=400:-10 wght=700:-20);`) {
		t.Errorf("expected kern block, got\n%s", out)
	}
	if strings.Contains(out, "lookup ") || strings.Contains(out, "feature mark") {
		t.Errorf("expected mark lookup to be omitted, got\n%s", out)
	}
	ds := ft.Diagnostics()
	if len(ds) != 1 || ds[0].Kind != EmptyFactSet {
		t.Errorf("expected one empty-fact-set diagnostic, got %v", ds)
	}
}

func TestCombineOmitsKernBlock(t *testing.T) {
	ft, err := Combine([]Master{{Name: "A", Text: "lookup l { pos base [a] <anchor 1 2> mark @top; } l;"}})
	if err != nil {
		t.Fatal(err)
	}
	out := ft.Render()
	if strings.Contains(out, "feature kern") {
		t.Errorf("did not expect a kern feature, got\n%s", out)
	}
	if !strings.Contains(out, "lookup l {") || !strings.Contains(out, "  pos base [\\a] <anchor :1 :2> mark @top;") {
		t.Errorf("expected mark lookup named after the mark base, got\n%s", out)
	}
}

func TestCombineRejectsDuplicateLocation(t *testing.T) {
	_, err := Combine([]Master{
		{Name: "A", Location: fea.Loc(fea.At("wght", 400))},
		{Name: "B", Location: fea.Loc(fea.At("wght", 400))},
	})
	if !errors.Is(err, ErrDuplicateLocation) {
		t.Fatalf("expected duplicate location error, got %v", err)
	}
	if !strings.Contains(err.Error(), "A and B") {
		t.Errorf("expected error to name both masters, got %q", err.Error())
	}
}

func TestCombineWithoutMasters(t *testing.T) {
	if _, err := Combine(nil); !errors.Is(err, ErrNoMasters) {
		t.Errorf("expected ErrNoMasters, got %v", err)
	}
}

func TestCombineEmptyMasterText(t *testing.T) {
	ft, err := Combine([]Master{
		{Name: "Empty", Location: fea.Loc(fea.At("wght", 100))},
		{Name: "Full", Location: fea.Loc(fea.At("wght", 900)), Text: `pos \a \b 5;`},
	})
	if err != nil {
		t.Fatal(err)
	}
	if ft.Stats().Masters != 2 {
		t.Errorf("expected empty master to take part")
	}
	if !strings.Contains(ft.Render(), `(wght=900:5)`) {
		t.Errorf("expected only the full master to contribute, got\n%s", ft.Render())
	}
}

func TestCombineExpandGroups(t *testing.T) {
	text := "@L = [a b];\nfeature kern {\npos @L x -10;\n} kern;"
	ft, err := Combine([]Master{{Name: "A", Text: text}}, ExpandGroups)
	if err != nil {
		t.Fatal(err)
	}
	if len(ft.Kerning) != 2 {
		t.Fatalf("expected group to be expanded into 2 pairs, got %d", len(ft.Kerning))
	}
	ft, err = Combine([]Master{{Name: "A", Text: text}})
	if err != nil {
		t.Fatal(err)
	}
	if len(ft.Kerning) != 0 {
		t.Errorf("expected group kerning to be ignored without expansion, got %d pairs", len(ft.Kerning))
	}
}

func TestFirstLookupNameWins(t *testing.T) {
	ft, err := Combine(twoMasters())
	if err != nil {
		t.Fatal(err)
	}
	if ft.LookupName() != "mark_top" {
		t.Errorf("expected lookup name of first master, got %q", ft.LookupName())
	}
	empty := NewFactTable()
	if empty.LookupName() != FallbackLookupName {
		t.Errorf("expected fallback lookup name, got %q", empty.LookupName())
	}
}

func TestClassUnionIsSuperset(t *testing.T) {
	ft, err := Combine([]Master{
		{Name: "A", Location: fea.Loc(fea.At("wght", 1)), Text: "@C = [z a];\n@Empty = [];"},
		{Name: "B", Location: fea.Loc(fea.At("wght", 2)), Text: "@C = [b a];"},
	})
	if err != nil {
		t.Fatal(err)
	}
	classes := ft.Classes()
	if len(classes) != 2 {
		t.Fatalf("expected 2 classes, got %v", classes)
	}
	if classes[0].Name != "C" || strings.Join(classes[0].Glyphs, " ") != "a b z" {
		t.Errorf("unexpected union %v", classes[0])
	}
	if strings.Contains(ft.Render(), "@Empty") {
		t.Errorf("expected empty class to be skipped")
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Kind: MissingFile, Source: "Bold.ufo", Issue: "not found"}
	if d.Error() != "[MISSING-FILE] Bold.ufo: not found" {
		t.Errorf("unexpected diagnostic %q", d.Error())
	}
	var ds Diagnostics
	ds.Add(UnreadableText, "", "bad %s", "bytes")
	if !ds.Has(UnreadableText) || ds.Has(MissingFile) || len(ds.Of(UnreadableText)) != 1 {
		t.Errorf("unexpected diagnostics %v", ds)
	}
	if DiagnosticKind(42).String() != "UNKNOWN" {
		t.Errorf("expected unknown kind")
	}
}
