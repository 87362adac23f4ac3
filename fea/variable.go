package fea

import (
	"fmt"
	"strconv"
	"strings"

	ot "github.com/go-text/typesetting/font/opentype"
)

// Coordinate is the position on one axis of a design space.
type Coordinate struct {
	Axis  ot.Tag
	Value float64
}

// Location is a design-space location. Coordinates keep the order of the
// axes they have been read from. The empty location denotes the default master.
type Location []Coordinate

// ParseTag checks that s is a valid 4-character OpenType tag.
func ParseTag(s string) (ot.Tag, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("invalid OpenType tag %q: need 4 characters", s)
	}
	for i := 0; i < 4; i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return 0, fmt.Errorf("invalid OpenType tag %q: non-printable character", s)
		}
	}
	return ot.NewTag(s[0], s[1], s[2], s[3]), nil
}

// At creates a coordinate. It panics if axis is not a valid tag and is meant
// for tests and literals.
func At(axis string, value float64) Coordinate {
	return Coordinate{Axis: ot.MustNewTag(axis), Value: value}
}

// Loc creates a location from coordinates.
func Loc(coords ...Coordinate) Location {
	return Location(coords)
}

// String renders a location as `tag=coord,tag=coord`. Coordinates are written
// in their shortest decimal form, e.g. `wght=400` or `wdth=87.5`.
// The default location renders as the empty string.
func (loc Location) String() string {
	parts := make([]string, len(loc))
	for i, c := range loc {
		parts[i] = c.Axis.String() + "=" + strconv.FormatFloat(c.Value, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// IsDefault reports whether loc carries no coordinates at all.
func (loc Location) IsDefault() bool {
	return len(loc) == 0
}

// Sample is one value of a variable quantity at a location.
type Sample[T any] struct {
	Location Location
	Value    T
}

// Samples holds at most one value per location, in order of first insertion.
// The zero value is ready to use.
type Samples[T any] struct {
	entries []Sample[T]
	index   map[string]int
}

// Set stores a value for a location. Setting a location twice overwrites the
// first value but keeps its position.
func (s *Samples[T]) Set(loc Location, value T) {
	key := loc.String()
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[key]; ok {
		s.entries[i].Value = value
		return
	}
	s.index[key] = len(s.entries)
	s.entries = append(s.entries, Sample[T]{Location: loc, Value: value})
}

// Get returns the value stored for a location.
func (s *Samples[T]) Get(loc Location) (T, bool) {
	if i, ok := s.index[loc.String()]; ok {
		return s.entries[i].Value, true
	}
	var zero T
	return zero, false
}

// Len returns the number of locations holding a value.
func (s *Samples[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// All returns the samples in insertion order.
func (s *Samples[T]) All() []Sample[T] {
	if s == nil {
		return nil
	}
	return s.entries
}

// FormatValue renders a variable value as a space separated list of
// `location:value` tokens, e.g. `wght=400:-10 wght=700:-20`. A sample at the
// default location renders as `:value`. Without any samples the result is `0`.
func FormatValue(s *Samples[int]) string {
	if s.Len() == 0 {
		return "0"
	}
	return formatSamples(s.All(), func(v int) int { return v })
}

// FormatAnchor renders a variable anchor as `<anchor X Y>`, where X and Y are
// formatted independently in the same way as [FormatValue].
func FormatAnchor(s *Samples[Anchor]) string {
	if s.Len() == 0 {
		return "<anchor 0 0>"
	}
	x := formatSamples(s.All(), func(a Anchor) int { return a.X })
	y := formatSamples(s.All(), func(a Anchor) int { return a.Y })
	return "<anchor " + x + " " + y + ">"
}

func formatSamples[T any](samples []Sample[T], value func(T) int) string {
	tokens := make([]string, len(samples))
	for i, sample := range samples {
		tokens[i] = sample.Location.String() + ":" + strconv.Itoa(value(sample.Value))
	}
	return strings.Join(tokens, " ")
}
