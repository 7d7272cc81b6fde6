// SPDX-License-Identifier: MPL-2.0

// Package descriptor locates and removes dependency entries in build
// descriptors. It edits in place and leaves every other byte untouched.
package descriptor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/depshed/depshed/pkg/signature"
)

const (
	// KindMaven is a Maven pom.xml.
	KindMaven Kind = "maven"
	// KindGradle is a Groovy build.gradle script.
	KindGradle Kind = "gradle"
	// KindGradleKotlin is a Kotlin build.gradle.kts script.
	KindGradleKotlin Kind = "gradle-kotlin"
)

var (
	// ErrUnknownKind is returned for descriptor kinds this package cannot edit.
	ErrUnknownKind = errors.New("unknown descriptor kind")
	// ErrUnsafeEdit is returned when a matching declaration cannot be cut out
	// without leaving the descriptor unparseable. The descriptor is not edited.
	ErrUnsafeEdit = errors.New("declaration cannot be removed safely")
)

type (
	// Kind is the format of a build descriptor.
	Kind string

	// Removal is one dependency entry removed from a descriptor.
	Removal struct {
		Coordinate signature.Coordinate `json:"coordinate" toml:"coordinate"`
		// Line is the 1-based line where the entry started.
		Line int `json:"line" toml:"line"`
	}

	// Result is the outcome of Remove.
	Result struct {
		// Content is the edited descriptor; identical to the input when
		// nothing matched.
		Content []byte
		Removed []Removal
	}

	// entry is a located dependency declaration, as a byte span.
	entry struct {
		coord      signature.Coordinate
		start, end int
		line       int
		// err is set when the entry was found but its span is unsafe to cut.
		err error
	}
)

// KindOf returns the descriptor kind for a file name. Marker files that carry
// no dependencies (settings.gradle) are not descriptors.
func KindOf(path string) (Kind, bool) {
	switch filepath.Base(path) {
	case "pom.xml":
		return KindMaven, true
	case "build.gradle":
		return KindGradle, true
	case "build.gradle.kts":
		return KindGradleKotlin, true
	default:
		return "", false
	}
}

// String returns the kind name.
func (k Kind) String() string { return string(k) }

// Changed reports whether any entry was removed.
func (r Result) Changed() bool { return len(r.Removed) > 0 }

// Contains reports whether content declares a dependency on any of coords. A
// declaration that Remove would refuse to cut still counts.
func Contains(kind Kind, content []byte, coords []signature.Coordinate) (bool, error) {
	entries, err := locate(kind, content, coords)
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}

// Remove deletes every dependency entry of content matching one of coords. If
// any matching entry cannot be cut safely nothing is removed and the error
// wraps ErrUnsafeEdit.
// Removing from a descriptor without such entries is a no-op, so applying
// Remove to its own output yields identical bytes.
func Remove(kind Kind, content []byte, coords []signature.Coordinate) (Result, error) {
	entries, err := locate(kind, content, coords)
	if err != nil {
		return Result{}, err
	}
	if len(entries) == 0 {
		return Result{Content: content}, nil
	}
	for _, e := range entries {
		if e.err != nil {
			return Result{}, e.err
		}
	}

	out := make([]byte, 0, len(content))
	prev := 0
	removed := make([]Removal, 0, len(entries))
	for _, e := range entries {
		out = append(out, content[prev:e.start]...)
		prev = e.end
		removed = append(removed, Removal{Coordinate: e.coord, Line: e.line})
	}
	out = append(out, content[prev:]...)
	return Result{Content: out, Removed: removed}, nil
}

// RemoveFile applies Remove to the descriptor at path and writes the result
// atomically when something changed.
func RemoveFile(path string, coords []signature.Coordinate) (Result, error) {
	kind, ok := KindOf(path)
	if !ok {
		return Result{}, fmt.Errorf("%s: %w", path, ErrUnknownKind)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	res, err := Remove(kind, data, coords)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	if !res.Changed() {
		return res, nil
	}
	if err := atomicWriteFile(path, res.Content); err != nil {
		return Result{}, err
	}
	return res, nil
}

// locate returns the matching entries in ascending, non-overlapping order.
func locate(kind Kind, content []byte, coords []signature.Coordinate) ([]entry, error) {
	switch kind {
	case KindMaven:
		return locateMaven(content, coords)
	case KindGradle, KindGradleKotlin:
		return locateGradle(content, coords), nil
	default:
		return nil, fmt.Errorf("%q: %w", kind, ErrUnknownKind)
	}
}

func matchAny(coords []signature.Coordinate, group, artifact string) (signature.Coordinate, bool) {
	for _, c := range coords {
		if c.Matches(group, artifact) {
			return c, true
		}
	}
	return signature.Coordinate{}, false
}

// atomicWriteFile writes data to a temporary file and renames it over path,
// keeping the original permissions.
func atomicWriteFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, mode); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Best-effort cleanup
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// lineSpan widens [start, end) to whole lines when the span is the only
// non-blank content on them, so removal does not leave an empty line behind.
func lineSpan(content []byte, start, end int) (int, int) {
	ls := start
	for ls > 0 && (content[ls-1] == ' ' || content[ls-1] == '\t') {
		ls--
	}
	if ls > 0 && content[ls-1] != '\n' {
		return start, end
	}
	le := end
	for le < len(content) && (content[le] == ' ' || content[le] == '\t' || content[le] == '\r') {
		le++
	}
	switch {
	case le == len(content):
		return ls, le
	case content[le] == '\n':
		return ls, le + 1
	default:
		return start, end
	}
}

func lineAt(content []byte, offset int) int {
	line := 1
	for i := 0; i < offset && i < len(content); i++ {
		if content[i] == '\n' {
			line++
		}
	}
	return line
}
