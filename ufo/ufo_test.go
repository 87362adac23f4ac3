package ufo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/npillmayer/feamerge/internal/fixture"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestFeaturePathPlacement(t *testing.T) {
	dir := t.TempDir()
	flat := fixture.WriteUFO(t, dir, "Flat.ufo", "pos a b 1;", false)
	nested := fixture.WriteUFO(t, dir, "Nested.ufo", "pos a b 2;", true)
	if got := FeaturePath(flat, KerningExpandedFile); got != filepath.Join(flat, KerningExpandedFile) {
		t.Errorf("unexpected flat feature path %s", got)
	}
	if got := FeaturePath(nested, MarkExpandedFile); got != filepath.Join(nested, "features", MarkExpandedFile) {
		t.Errorf("unexpected nested feature path %s", got)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"plain", []byte("pos a b 1;"), "pos a b 1;"},
		{"utf-8 bom", append([]byte{0xef, 0xbb, 0xbf}, "pos a b 1;"...), "pos a b 1;"},
		{"utf-16le bom", []byte{0xff, 0xfe, 'p', 0, 'o', 0, 's', 0}, "pos"},
		{"utf-16be bom", []byte{0xfe, 0xff, 0, 'p', 0, 'o', 0, 's'}, "pos"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Decode = %q; want %q", got, tt.expected)
			}
		})
	}
	if _, err := Decode([]byte{'p', 0xc3, 0x28}); !errors.Is(err, ErrUnreadable) {
		t.Errorf("expected ErrUnreadable for invalid UTF-8, got %v", err)
	}
}

func TestReaderFeatures(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "feamerge.ufo")
	defer teardown()
	//
	dir := t.TempDir()
	r, err := NewReader(0)
	if err != nil {
		t.Fatal(err)
	}
	full := fixture.WriteUFO(t, dir, "Full.ufo", "pos \\a \\b 1;", true)
	text, err := r.Features(full)
	if err != nil || text != "pos \\a \\b 1;" {
		t.Fatalf("unexpected features %q (%v)", text, err)
	}
	empty := fixture.WriteUFO(t, dir, "Empty.ufo", "", false)
	if text, err = r.Features(empty); err != nil || text != "" {
		t.Errorf("expected UFO without feature file to yield empty text, got %q (%v)", text, err)
	}
	if _, err = r.Features(filepath.Join(dir, "Missing.ufo")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing UFO, got %v", err)
	}
	bad := fixture.WriteUFO(t, dir, "Bad.ufo", "", false)
	fixture.WriteFile(t, filepath.Join(bad, FeatureFile), "\xff\xfd\xfc")
	if _, err = r.Features(bad); !errors.Is(err, ErrUnreadable) {
		t.Errorf("expected ErrUnreadable, got %v", err)
	}
}

func TestReaderCache(t *testing.T) {
	dir := t.TempDir()
	r, err := NewReader(2)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, FeatureFile)
	fixture.WriteFile(t, path, "one")
	if text, _ := r.Read(path); text != "one" {
		t.Fatalf("unexpected text %q", text)
	}
	if r.Cached() != 1 {
		t.Errorf("expected 1 cached text, got %d", r.Cached())
	}
	fixture.WriteFile(t, path, "second")
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	if text, _ := r.Read(path); text != "second" {
		t.Errorf("expected changed file to be re-read, got %q", text)
	}
	if err := r.Write(path, "third"); err != nil {
		t.Fatal(err)
	}
	if text, _ := r.Read(path); text != "third" {
		t.Errorf("expected written text, got %q", text)
	}
	r.Purge()
	if r.Cached() != 0 {
		t.Errorf("expected empty cache after purge")
	}
}
