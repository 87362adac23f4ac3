package merge

import (
	"sort"

	"github.com/npillmayer/feamerge/fea"
)

// Master is the feature source of one master at its design-space location.
//
// Text is expected to spell kerning pairs with literal, backslash-escaped
// glyph names (`pos \A \V -40;`). Kerning statements using groups are not
// recognized; see [fea.EscapedKerning] and option [ExpandGroups].
type Master struct {
	Name     string
	Location fea.Location
	Text     string
}

// PairKey identifies a kerning fact.
type PairKey struct {
	Left, Right string
}

// AnchorKey identifies a mark class or mark base fact.
type AnchorKey struct {
	Glyphs    string // glyph list text as found between the brackets
	MarkClass string
}

// KernFact holds the kerning value of a pair for every master location.
type KernFact struct {
	Key    PairKey
	Values fea.Samples[int]
}

// AnchorFact holds the anchor of a mark class or mark base for every master
// location, together with the name of the lookup it was found in.
type AnchorFact struct {
	Key     AnchorKey
	Lookup  string
	Anchors fea.Samples[fea.Anchor]
}

// FactTable collects the facts of one or more masters. Facts are kept in the
// order their keys have first been seen.
type FactTable struct {
	Masters     []string // names of contributing masters, in fold order
	Kerning     []*KernFact
	MarkClasses []*AnchorFact
	MarkBases   []*AnchorFact
	GDEF        string // verbatim GDEF block of the first master having one

	classes     map[string]map[string]struct{}
	classOrder  []string
	kernIndex   map[PairKey]*KernFact
	classIndex  map[AnchorKey]*AnchorFact
	baseIndex   map[AnchorKey]*AnchorFact
	locationsOf map[string]string // location key -> master name
}

// NewFactTable creates an empty fact table.
func NewFactTable() *FactTable {
	return &FactTable{
		classes:     make(map[string]map[string]struct{}),
		kernIndex:   make(map[PairKey]*KernFact),
		classIndex:  make(map[AnchorKey]*AnchorFact),
		baseIndex:   make(map[AnchorKey]*AnchorFact),
		locationsOf: make(map[string]string),
	}
}

// Extract scans the feature text of one master and returns its facts.
// An empty text yields an empty table.
func Extract(m Master) *FactTable {
	ft := NewFactTable()
	ft.Masters = append(ft.Masters, m.Name)
	ft.locationsOf[m.Location.String()] = m.Name
	if m.Text == "" {
		return ft
	}
	doc := fea.Parse(m.Text)
	for _, name := range doc.Classes.Names() {
		ft.addClass(name, doc.Classes[name])
	}
	for _, pair := range doc.Kerning {
		ft.kern(PairKey{pair.Left, pair.Right}).Values.Set(m.Location, pair.Value)
	}
	for _, lookup := range doc.Lookups {
		for _, st := range lookup.MarkClasses {
			fact := anchorFact(ft.classIndex, &ft.MarkClasses, AnchorKey{st.Glyphs, st.MarkClass})
			fact.Lookup = lookup.Name // later statements overwrite within a master
			fact.Anchors.Set(m.Location, st.Anchor)
		}
		for _, st := range lookup.MarkBases {
			fact := anchorFact(ft.baseIndex, &ft.MarkBases, AnchorKey{st.Glyphs, st.MarkClass})
			fact.Lookup = lookup.Name
			fact.Anchors.Set(m.Location, st.Anchor)
		}
	}
	if gdef, ok := doc.Table("GDEF"); ok {
		ft.GDEF = gdef
	}
	tracer().Debugf("master %s: %d classes, %d kerning pairs, %d mark classes, %d mark bases",
		m.Name, len(ft.classOrder), len(ft.Kerning), len(ft.MarkClasses), len(ft.MarkBases))
	return ft
}

// Absorb folds the facts of other into ft. Samples of other are appended
// after those already present; a location present in both is an error.
// Lookup names and the GDEF block already present in ft are kept.
func (ft *FactTable) Absorb(other *FactTable) error {
	for key, name := range other.locationsOf {
		if prev, ok := ft.locationsOf[key]; ok {
			return &duplicateLocationError{location: key, first: prev, second: name}
		}
	}
	for key, name := range other.locationsOf {
		ft.locationsOf[key] = name
	}
	ft.Masters = append(ft.Masters, other.Masters...)
	for _, name := range other.classOrder {
		glyphs := make([]string, 0, len(other.classes[name]))
		for g := range other.classes[name] {
			glyphs = append(glyphs, g)
		}
		ft.addClass(name, glyphs)
	}
	for _, fact := range other.Kerning {
		kf := ft.kern(fact.Key)
		for _, s := range fact.Values.All() {
			kf.Values.Set(s.Location, s.Value)
		}
	}
	absorbAnchors(ft.classIndex, &ft.MarkClasses, other.MarkClasses)
	absorbAnchors(ft.baseIndex, &ft.MarkBases, other.MarkBases)
	if ft.GDEF == "" {
		ft.GDEF = other.GDEF
	}
	return nil
}

func absorbAnchors(index map[AnchorKey]*AnchorFact, facts *[]*AnchorFact, others []*AnchorFact) {
	for _, fact := range others {
		af := anchorFact(index, facts, fact.Key)
		if af.Lookup == "" {
			af.Lookup = fact.Lookup
		}
		for _, s := range fact.Anchors.All() {
			af.Anchors.Set(s.Location, s.Value)
		}
	}
}

func (ft *FactTable) addClass(name string, glyphs []string) {
	set, ok := ft.classes[name]
	if !ok {
		set = make(map[string]struct{})
		ft.classes[name] = set
		ft.classOrder = append(ft.classOrder, name)
	}
	for _, g := range glyphs {
		set[g] = struct{}{}
	}
}

func (ft *FactTable) kern(key PairKey) *KernFact {
	if kf, ok := ft.kernIndex[key]; ok {
		return kf
	}
	kf := &KernFact{Key: key}
	ft.kernIndex[key] = kf
	ft.Kerning = append(ft.Kerning, kf)
	return kf
}

func anchorFact(index map[AnchorKey]*AnchorFact, facts *[]*AnchorFact, key AnchorKey) *AnchorFact {
	if af, ok := index[key]; ok {
		return af
	}
	af := &AnchorFact{Key: key}
	index[key] = af
	*facts = append(*facts, af)
	return af
}

// CombinedClass is the union of a glyph class over all masters.
type CombinedClass struct {
	Name   string
	Glyphs []string // sorted
}

// Classes returns the combined glyph classes, ordered by the first master
// defining them (alphabetically within a master), each with its glyphs sorted
// alphabetically.
func (ft *FactTable) Classes() []CombinedClass {
	classes := make([]CombinedClass, 0, len(ft.classOrder))
	for _, name := range ft.classOrder {
		glyphs := make([]string, 0, len(ft.classes[name]))
		for g := range ft.classes[name] {
			glyphs = append(glyphs, g)
		}
		sort.Strings(glyphs)
		classes = append(classes, CombinedClass{Name: name, Glyphs: glyphs})
	}
	return classes
}

// LookupName returns the name for the synthetic mark lookup: the lookup name
// of the first mark class fact, or else of the first mark base fact, or else
// the fallback name.
func (ft *FactTable) LookupName() string {
	if len(ft.MarkClasses) > 0 {
		if name := ft.MarkClasses[0].Lookup; name != "" {
			return name
		}
	} else if len(ft.MarkBases) > 0 {
		if name := ft.MarkBases[0].Lookup; name != "" {
			return name
		}
	}
	return FallbackLookupName
}

// FallbackLookupName names the synthetic mark lookup if no fact carries a
// lookup name.
const FallbackLookupName = "markMarkPositioninginLatinlookup2"

// Stats summarizes a fact table.
type Stats struct {
	Masters     int
	KernPairs   int
	MarkClasses int
	MarkBases   int
	Classes     int
}

// Stats counts the facts of a table.
func (ft *FactTable) Stats() Stats {
	return Stats{
		Masters:     len(ft.Masters),
		KernPairs:   len(ft.Kerning),
		MarkClasses: len(ft.MarkClasses),
		MarkBases:   len(ft.MarkBases),
		Classes:     len(ft.classOrder),
	}
}
