package merge

import (
	"fmt"
	"runtime"

	"github.com/npillmayer/feamerge/fea"
	"golang.org/x/sync/errgroup"
)

// Option influences how masters are combined.
type Option int

const (
	// ExpandGroups expands the kerning groups of every master into pairs of
	// escaped glyphs before facts are extracted.
	ExpandGroups Option = iota
	// Sequential extracts the masters one after the other instead of in parallel.
	Sequential
)

type duplicateLocationError struct {
	location      string
	first, second string
}

func (e *duplicateLocationError) Error() string {
	loc := e.location
	if loc == "" {
		loc = "<default>"
	}
	return fmt.Sprintf("%s: %s and %s at %s", ErrDuplicateLocation.Error(), e.first, e.second, loc)
}

func (e *duplicateLocationError) Unwrap() error {
	return ErrDuplicateLocation
}

// Combine extracts the facts of every master and folds them, in the order of
// masters, into one fact table. Extraction runs in parallel; the fold does
// not, which keeps the ordering rules independent of scheduling.
//
// Two masters at the same location are rejected with ErrDuplicateLocation.
// Masters with empty text take part without contributing facts.
func Combine(masters []Master, opts ...Option) (*FactTable, error) {
	if len(masters) == 0 {
		return nil, ErrNoMasters
	}
	expand, sequential := false, false
	for _, opt := range opts {
		switch opt {
		case ExpandGroups:
			expand = true
		case Sequential:
			sequential = true
		}
	}
	tables := make([]*FactTable, len(masters))
	var g errgroup.Group
	if sequential {
		g.SetLimit(1)
	} else {
		g.SetLimit(runtime.GOMAXPROCS(0))
	}
	for i, m := range masters {
		g.Go(func() error {
			if expand {
				m.Text = string(fea.EscapedKerning(m.Text))
			}
			tables[i] = Extract(m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	combined := NewFactTable()
	for _, ft := range tables {
		if err := combined.Absorb(ft); err != nil {
			return nil, err
		}
	}
	tracer().Infof("combined %d masters: %d kerning pairs, %d mark classes, %d mark bases",
		len(masters), len(combined.Kerning), len(combined.MarkClasses), len(combined.MarkBases))
	return combined, nil
}

// Diagnostics reports fact kinds missing from all masters. Missing kinds are
// not errors; the corresponding blocks are omitted from the rendered output.
func (ft *FactTable) Diagnostics() Diagnostics {
	var ds Diagnostics
	if len(ft.Kerning) == 0 {
		ds.Add(EmptyFactSet, "", "no kerning pairs found, omitting feature kern")
	}
	if len(ft.MarkClasses) == 0 && len(ft.MarkBases) == 0 {
		ds.Add(EmptyFactSet, "", "no mark classes or mark bases found, omitting feature mark")
	}
	return ds
}
