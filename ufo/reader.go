package ufo

import (
	"errors"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of feature texts a Reader keeps.
const DefaultCacheSize = 64

type cached struct {
	modTime time.Time
	size    int64
	text    string
}

// Reader reads the feature texts of UFOs, caching decoded texts. A cached
// text is reused as long as size and modification time of its file are
// unchanged. Reader is safe for concurrent use.
type Reader struct {
	cache *lru.Cache[string, cached]
}

// NewReader creates a reader caching up to size texts.
func NewReader(size int) (*Reader, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, cached](size)
	if err != nil {
		return nil, err
	}
	return &Reader{cache: cache}, nil
}

// Features returns the text of a UFO's `features.fea`.
// If the UFO exists but has no feature file, the text is empty.
// If the UFO does not exist, ErrNotFound is returned.
func (r *Reader) Features(ufoPath string) (string, error) {
	if err := CheckUFO(ufoPath); err != nil {
		return "", err
	}
	text, err := r.Read(FeaturePath(ufoPath, FeatureFile))
	if errors.Is(err, ErrNotFound) {
		tracer().Infof("UFO %s has no feature file", ufoPath)
		return "", nil
	}
	return text, err
}

// Read reads and decodes a feature file.
func (r *Reader) Read(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ReadFile(path) // produces the error
	}
	if c, ok := r.cache.Get(path); ok && c.size == info.Size() && c.modTime.Equal(info.ModTime()) {
		tracer().Debugf("feature text of %s from cache", path)
		return c.text, nil
	}
	text, err := ReadFile(path)
	if err != nil {
		r.cache.Remove(path)
		return "", err
	}
	r.cache.Add(path, cached{modTime: info.ModTime(), size: info.Size(), text: text})
	return text, nil
}

// Write writes feature text and drops a cached text for the same path.
func (r *Reader) Write(path, text string) error {
	r.cache.Remove(path)
	return WriteFile(path, text)
}

// Cached returns the number of cached texts.
func (r *Reader) Cached() int {
	return r.cache.Len()
}

// Purge drops all cached texts.
func (r *Reader) Purge() {
	r.cache.Purge()
}
