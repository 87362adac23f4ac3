/*
Package ufo locates, reads and writes the feature files of UFO font sources.

A UFO keeps its feature source in `features.fea` at the top level of the UFO
directory. Some workflows move it into a `features` subdirectory; if such a
directory exists, it is used for reading and writing feature files instead.
*/
package ufo

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// tracer traces with key 'feamerge.ufo'
func tracer() tracing.Trace {
	return tracing.Select("feamerge.ufo")
}

// Names of feature files.
const (
	FeatureFile         = "features.fea"
	KerningExpandedFile = "features_expanded.fea"
	MarkExpandedFile    = "features_expanded_mark.fea"
)

var (
	// ErrNotFound is returned if a UFO or feature file does not exist.
	ErrNotFound = errors.New("ufo: not found")
	// ErrUnreadable is returned if feature text cannot be decoded.
	ErrUnreadable = errors.New("ufo: unreadable feature text")
)

// FeatureDir returns the directory holding the feature files of a UFO.
func FeatureDir(ufoPath string) string {
	sub := filepath.Join(ufoPath, "features")
	if info, err := os.Stat(sub); err == nil && info.IsDir() {
		return sub
	}
	return ufoPath
}

// FeaturePath returns the path of a feature file of a UFO.
func FeaturePath(ufoPath, name string) string {
	return filepath.Join(FeatureDir(ufoPath), name)
}

// CheckUFO returns ErrNotFound if ufoPath is not an existing directory.
func CheckUFO(ufoPath string) error {
	info, err := os.Stat(ufoPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: UFO %s", ErrNotFound, ufoPath)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: UFO %s is not a directory", ErrNotFound, ufoPath)
	}
	return nil
}

var (
	bomUTF16BE = []byte{0xfe, 0xff}
	bomUTF16LE = []byte{0xff, 0xfe}
)

// Decode converts feature file content to a string. UTF-8 is expected; a byte
// order mark is removed, and UTF-16 content is accepted if it starts with a
// byte order mark. Invalid UTF-8 yields ErrUnreadable.
func Decode(data []byte) (string, error) {
	utf16 := bytes.HasPrefix(data, bomUTF16BE) || bytes.HasPrefix(data, bomUTF16LE)
	if !utf16 && !utf8.Valid(data) {
		return "", fmt.Errorf("%w: invalid UTF-8", ErrUnreadable)
	}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	text, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return string(text), nil
}

// ReadFile reads and decodes a feature file.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return Decode(data)
}

// WriteFile writes feature text as UTF-8.
func WriteFile(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return err
	}
	tracer().Infof("feature file written to %s", path)
	return nil
}
