// SPDX-License-Identifier: MPL-2.0

package boundary

import (
	"errors"
	"path"
	"strings"
	"sync"

	"golang.org/x/exp/slices"
)

// Root is the ModulePath of the repository root module.
const Root ModulePath = ""

// ErrFrozen is returned when a boundary is recorded after Freeze.
var ErrFrozen = errors.New("boundary catalogue is frozen")

type (
	// ModulePath identifies a module: Root, or the slash-separated
	// repository-relative directory holding its descriptor.
	ModulePath string

	// Catalogue accumulates module boundaries during the scan. Recording is
	// idempotent and safe for concurrent callers; the order of Record calls
	// does not affect the frozen result.
	Catalogue struct {
		mu       sync.Mutex
		dirs     map[ModulePath]struct{}
		snapshot *Boundaries
	}
)

// NewCatalogue returns an empty Catalogue.
func NewCatalogue() *Catalogue {
	return &Catalogue{dirs: make(map[ModulePath]struct{})}
}

// Normalize converts p to the canonical repository-relative form: forward
// slashes, cleaned, no leading "./" or "/". The root is "".
func Normalize(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	p = path.Clean(p)
	p = strings.TrimLeft(p, "/")
	if p == "." || p == "" {
		return ""
	}
	return p
}

// String returns the path form of m.
func (m ModulePath) String() string { return string(m) }

// IsRoot reports whether m is the root module.
func (m ModulePath) IsRoot() bool { return m == Root }

// Label returns m for display, with the root rendered as ".".
func (m ModulePath) Label() string {
	if m == Root {
		return "."
	}
	return string(m)
}

// Record adds dir as a module boundary. Recording the same directory twice is
// a no-op.
func (c *Catalogue) Record(dir string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot != nil {
		return ErrFrozen
	}
	c.dirs[ModulePath(Normalize(dir))] = struct{}{}
	return nil
}

// RecordMarker adds the directory containing the marker file at file.
func (c *Catalogue) RecordMarker(file string) error {
	return c.Record(path.Dir(Normalize(file)))
}

// Freeze ends the recording phase and returns the immutable snapshot. Calling
// Freeze again returns the same snapshot.
func (c *Catalogue) Freeze() *Boundaries {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot != nil {
		return c.snapshot
	}

	b := &Boundaries{set: make(map[ModulePath]struct{}, len(c.dirs))}
	for dir := range c.dirs {
		b.set[dir] = struct{}{}
		if dir == Root {
			b.hasRoot = true
			continue
		}
		b.sorted = append(b.sorted, dir)
	}
	slices.Sort(b.sorted)
	c.snapshot = b
	return b
}
