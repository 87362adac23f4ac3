package merge

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMasters is returned when there is nothing to combine.
	ErrNoMasters = errors.New("merge: no masters to combine")
	// ErrDuplicateLocation is returned when two masters share a design-space location.
	ErrDuplicateLocation = errors.New("merge: masters share a location")
)

// DiagnosticKind classifies issues found while collecting and combining masters.
type DiagnosticKind int

const (
	// MissingFile: a declared source does not resolve on disk; the master is skipped.
	MissingFile DiagnosticKind = iota
	// UnreadableText: a master's feature text could not be read or decoded; the master is skipped.
	UnreadableText
	// NoFeatures: a master has no feature text; it takes part but contributes no facts.
	NoFeatures
	// EmptyFactSet: no facts of a kind were found in any master; the block is omitted.
	EmptyFactSet
)

// String returns a human-readable representation of the diagnostic kind.
func (k DiagnosticKind) String() string {
	switch k {
	case MissingFile:
		return "MISSING-FILE"
	case UnreadableText:
		return "UNREADABLE"
	case NoFeatures:
		return "NO-FEATURES"
	case EmptyFactSet:
		return "EMPTY"
	default:
		return "UNKNOWN"
	}
}

// Diagnostic is a non-fatal issue. Diagnostics are collected, never raised.
type Diagnostic struct {
	Kind   DiagnosticKind
	Source string // master or file the issue relates to, may be empty
	Issue  string
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	if d.Source != "" {
		return fmt.Sprintf("[%s] %s: %s", d.Kind, d.Source, d.Issue)
	}
	return fmt.Sprintf("[%s] %s", d.Kind, d.Issue)
}

// Diagnostics accumulates diagnostics in the order they are reported.
type Diagnostics []Diagnostic

// Add records a diagnostic.
func (ds *Diagnostics) Add(kind DiagnosticKind, source string, format string, args ...any) {
	d := Diagnostic{Kind: kind, Source: source, Issue: fmt.Sprintf(format, args...)}
	tracer().Infof("%s", d.Error())
	*ds = append(*ds, d)
}

// Has reports whether a diagnostic of the given kind has been recorded.
func (ds Diagnostics) Has(kind DiagnosticKind) bool {
	for _, d := range ds {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// Of returns all diagnostics of a given kind.
func (ds Diagnostics) Of(kind DiagnosticKind) Diagnostics {
	var sel Diagnostics
	for _, d := range ds {
		if d.Kind == kind {
			sel = append(sel, d)
		}
	}
	return sel
}
