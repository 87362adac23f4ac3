/*
Package designspace reads the parts of a `.designspace` document needed for
merging feature sources: the axes and the sources with their locations.

Dimensions of a source location are given by axis name in the document; they
are mapped to axis tags here, and ordered like the axes are declared.
*/
package designspace

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/npillmayer/feamerge/fea"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'feamerge.designspace'
func tracer() tracing.Trace {
	return tracing.Select("feamerge.designspace")
}

// Suffix is the file suffix of design-space documents.
const Suffix = ".designspace"

// ErrDuplicateLocation is returned for documents declaring two sources at the
// same location.
var ErrDuplicateLocation = errors.New("designspace: sources share a location")

// Axis is a variation axis.
type Axis struct {
	Tag     ot.Tag
	Name    string
	Minimum float64
	Default float64
	Maximum float64
}

// Source is a master of the design space.
type Source struct {
	Name     string // display name, may be empty
	Filename string // as given in the document
	Path     string // Filename resolved against the document's directory
	Location fea.Location
}

// Key returns a name for the source: its filename, or the base name of its path.
func (src Source) Key() string {
	if src.Filename != "" {
		return src.Filename
	}
	return filepath.Base(src.Path)
}

// Document is a design-space document.
type Document struct {
	Path    string
	Axes    []Axis
	Sources []Source
}

// Dir returns the directory the document lives in.
func (doc *Document) Dir() string {
	return filepath.Dir(doc.Path)
}

// Axis returns the axis with a given tag.
func (doc *Document) Axis(tag ot.Tag) (Axis, bool) {
	for _, a := range doc.Axes {
		if a.Tag == tag {
			return a, true
		}
	}
	return Axis{}, false
}

// --- XML model ---------------------------------------------------------

type xmlDesignspace struct {
	XMLName xml.Name    `xml:"designspace"`
	Format  string      `xml:"format,attr"`
	Axes    []xmlAxis   `xml:"axes>axis"`
	Sources []xmlSource `xml:"sources>source"`
}

type xmlAxis struct {
	Tag     string `xml:"tag,attr"`
	Name    string `xml:"name,attr"`
	Minimum string `xml:"minimum,attr"`
	Default string `xml:"default,attr"`
	Maximum string `xml:"maximum,attr"`
}

type xmlSource struct {
	Filename   string         `xml:"filename,attr"`
	Name       string         `xml:"name,attr"`
	Dimensions []xmlDimension `xml:"location>dimension"`
}

type xmlDimension struct {
	Name   string `xml:"name,attr"`
	XValue string `xml:"xvalue,attr"`
}

// --- Loading -----------------------------------------------------------

// Load reads a design-space document from a file.
func Load(path string) (*Document, error) {
	if !strings.EqualFold(filepath.Ext(path), Suffix) {
		return nil, fmt.Errorf("designspace: expected %s file, got %q", Suffix, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return Parse(data, abs)
}

// Parse decodes a design-space document. path is used to resolve the
// filenames of sources and need not exist.
func Parse(data []byte, path string) (*Document, error) {
	var raw xmlDesignspace
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("designspace: %w", err)
	}
	doc := &Document{Path: path}
	for _, xa := range raw.Axes {
		axis, err := normalizeAxis(xa)
		if err != nil {
			return nil, err
		}
		doc.Axes = append(doc.Axes, axis)
	}
	seen := make(map[string]string)
	for _, xs := range raw.Sources {
		if xs.Filename == "" {
			tracer().Infof("skipping source %q without filename", xs.Name)
			continue
		}
		src, err := doc.normalizeSource(xs)
		if err != nil {
			return nil, err
		}
		key := src.Location.String()
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("%w: %s and %s at %q", ErrDuplicateLocation, prev, src.Key(), key)
		}
		seen[key] = src.Key()
		doc.Sources = append(doc.Sources, src)
	}
	tracer().Debugf("design space %s: %d axes, %d sources", path, len(doc.Axes), len(doc.Sources))
	return doc, nil
}

func normalizeAxis(xa xmlAxis) (Axis, error) {
	tag, err := fea.ParseTag(xa.Tag)
	if err != nil {
		return Axis{}, fmt.Errorf("designspace: axis %q: %w", xa.Name, err)
	}
	axis := Axis{Tag: tag, Name: xa.Name}
	for _, f := range []struct {
		attr  string
		value string
		dest  *float64
	}{
		{"minimum", xa.Minimum, &axis.Minimum},
		{"default", xa.Default, &axis.Default},
		{"maximum", xa.Maximum, &axis.Maximum},
	} {
		if f.value == "" { // discrete axes carry values instead of a range
			continue
		}
		if *f.dest, err = strconv.ParseFloat(f.value, 64); err != nil {
			return Axis{}, fmt.Errorf("designspace: axis %q: invalid %s: %w", xa.Name, f.attr, err)
		}
	}
	return axis, nil
}

func (doc *Document) normalizeSource(xs xmlSource) (Source, error) {
	src := Source{Name: xs.Name, Filename: xs.Filename}
	src.Path = xs.Filename
	if !filepath.IsAbs(src.Path) {
		src.Path = filepath.Join(doc.Dir(), filepath.FromSlash(xs.Filename))
	}
	values := make(map[ot.Tag]float64, len(xs.Dimensions))
	for _, dim := range xs.Dimensions {
		tag, ok := doc.tagFor(dim.Name)
		if !ok {
			return Source{}, fmt.Errorf("designspace: source %s: unknown axis %q", src.Key(), dim.Name)
		}
		v, err := strconv.ParseFloat(dim.XValue, 64)
		if err != nil {
			return Source{}, fmt.Errorf("designspace: source %s: axis %q: %w", src.Key(), dim.Name, err)
		}
		values[tag] = v
	}
	for _, axis := range doc.Axes {
		if v, ok := values[axis.Tag]; ok {
			src.Location = append(src.Location, fea.Coordinate{Axis: axis.Tag, Value: v})
		}
	}
	return src, nil
}

// tagFor maps a dimension name to an axis tag. Dimensions usually refer to
// the axis name, but some tools write the tag.
func (doc *Document) tagFor(name string) (ot.Tag, bool) {
	for _, a := range doc.Axes {
		if a.Name == name {
			return a.Tag, true
		}
	}
	for _, a := range doc.Axes {
		if a.Tag.String() == name {
			return a.Tag, true
		}
	}
	return 0, false
}
