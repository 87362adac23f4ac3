// Package fixture writes design spaces and UFO masters into temporary
// directories for tests.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Axis describes an `<axis>` element.
type Axis struct {
	Tag     string
	Name    string
	Minimum float64
	Default float64
	Maximum float64
}

// Dimension describes a `<dimension>` element of a source location.
type Dimension struct {
	Name  string
	Value float64
}

// Source describes a `<source>` element.
type Source struct {
	Filename string
	Name     string
	Location []Dimension
}

// Weight is a weight axis from 100 to 900.
var Weight = Axis{Tag: "wght", Name: "Weight", Minimum: 100, Default: 400, Maximum: 900}

// Width is a width axis from 75 to 125.
var Width = Axis{Tag: "wdth", Name: "Width", Minimum: 75, Default: 100, Maximum: 125}

// Designspace renders a design-space document.
func Designspace(axes []Axis, sources []Source) string {
	var b strings.Builder
	b.WriteString(`<?xml version='1.0' encoding='UTF-8'?>` + "\n")
	b.WriteString(`<designspace format="5.0">` + "\n  <axes>\n")
	for _, a := range axes {
		fmt.Fprintf(&b, `    <axis tag="%s" name="%s" minimum="%s" default="%s" maximum="%s"/>`+"\n",
			a.Tag, a.Name, num(a.Minimum), num(a.Default), num(a.Maximum))
	}
	b.WriteString("  </axes>\n  <sources>\n")
	for _, s := range sources {
		fmt.Fprintf(&b, `    <source filename="%s" name="%s">`+"\n", s.Filename, s.Name)
		if len(s.Location) > 0 {
			b.WriteString("      <location>\n")
			for _, d := range s.Location {
				fmt.Fprintf(&b, `        <dimension name="%s" xvalue="%s"/>`+"\n", d.Name, num(d.Value))
			}
			b.WriteString("      </location>\n")
		}
		b.WriteString("    </source>\n")
	}
	b.WriteString("  </sources>\n</designspace>\n")
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteDesignspace writes a design-space document to dir and returns its path.
func WriteDesignspace(t testing.TB, dir, name string, axes []Axis, sources []Source) string {
	t.Helper()
	path := filepath.Join(dir, name)
	WriteFile(t, path, Designspace(axes, sources))
	return path
}

// WriteUFO creates a UFO directory in dir. If features is not empty, it is
// written to features.fea, inside a `features` subdirectory if subdir is set.
// Returns the path of the UFO.
func WriteUFO(t testing.TB, dir, name, features string, subdir bool) string {
	t.Helper()
	ufo := filepath.Join(dir, name)
	feaDir := ufo
	if subdir {
		feaDir = filepath.Join(ufo, "features")
	}
	if err := os.MkdirAll(feaDir, 0o755); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	WriteFile(t, filepath.Join(ufo, "metainfo.plist"), metainfo)
	if features != "" {
		WriteFile(t, filepath.Join(feaDir, "features.fea"), features)
	}
	return ufo
}

// WriteFile writes a file, creating parent directories as needed.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("fixture: %v", err)
	}
}

// ReadFile reads a file written by the code under test.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return string(data)
}

const metainfo = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
  <key>creator</key>
  <string>feamerge.fixture</string>
  <key>formatVersion</key>
  <integer>3</integer>
</dict>
</plist>
`
