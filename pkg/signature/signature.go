// SPDX-License-Identifier: MPL-2.0

package signature

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// KindUnknown is returned for names outside every set.
	KindUnknown Kind = iota
	// KindType is a blocking type.
	KindType
	// KindAnnotation is a blocking annotation.
	KindAnnotation
	// KindWildcard is a wildcard import rooted at a blocking package.
	KindWildcard
	// KindShim is a neutral shim.
	KindShim

	// wildcardSuffix marks a package-wide wildcard signature.
	wildcardSuffix = ".*"
)

var (
	// ErrInvalidSignature is the sentinel error wrapped by InvalidSignatureError.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrInvalidCoordinate is the sentinel error wrapped by InvalidCoordinateError.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	qualifiedNamePattern = regexp.MustCompile(`^[A-Za-z_$][\w$]*(\.[A-Za-z_$][\w$]*)*$`)
	coordinatePartRegex  = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)
)

type (
	// Kind classifies a Signature against a Catalog.
	Kind int

	// Signature is a fully-qualified type or annotation name, or a wildcard
	// package signature of the form "pkg.*".
	Signature string

	// InvalidSignatureError is returned when a Signature is not a dotted
	// qualified name. It wraps ErrInvalidSignature for errors.Is() compatibility.
	InvalidSignatureError struct {
		Value Signature
	}

	// Coordinate identifies a dependency by group and artifact, as in
	// "javax.annotation:javax.annotation-api".
	Coordinate struct {
		Group    string `json:"group" toml:"group"`
		Artifact string `json:"artifact" toml:"artifact"`
	}

	// InvalidCoordinateError is returned when a coordinate string cannot be parsed.
	// It wraps ErrInvalidCoordinate for errors.Is() compatibility.
	InvalidCoordinateError struct {
		Value string
	}
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindAnnotation:
		return "annotation"
	case KindWildcard:
		return "wildcard"
	case KindShim:
		return "shim"
	default:
		return "unknown"
	}
}

// String returns the string representation of the Signature.
func (s Signature) String() string { return string(s) }

// IsWildcard reports whether s is a package wildcard ("pkg.*").
func (s Signature) IsWildcard() bool {
	return strings.HasSuffix(string(s), wildcardSuffix)
}

// SimpleName returns the last segment of the name. Wildcards return "*".
func (s Signature) SimpleName() string {
	if s.IsWildcard() {
		return "*"
	}
	name := string(s)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Package returns the package part of the name. For wildcards it is the
// wildcard's root; otherwise see PackageOf.
func (s Signature) Package() string {
	if s.IsWildcard() {
		return strings.TrimSuffix(string(s), wildcardSuffix)
	}
	return PackageOf(string(s))
}

// IsValid returns whether the Signature is a dotted qualified name,
// optionally ending in ".*".
func (s Signature) IsValid() (bool, []error) {
	name := strings.TrimSuffix(string(s), wildcardSuffix)
	if !qualifiedNamePattern.MatchString(name) {
		return false, []error{&InvalidSignatureError{Value: s}}
	}
	return true, nil
}

// Error implements the error interface for InvalidSignatureError.
func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("invalid signature %q: must be a dotted qualified name", e.Value)
}

// Unwrap returns ErrInvalidSignature for errors.Is() compatibility.
func (e *InvalidSignatureError) Unwrap() error { return ErrInvalidSignature }

// Wildcard returns the wildcard signature rooted at pkg.
func Wildcard(pkg string) Signature {
	return Signature(pkg + wildcardSuffix)
}

// PackageOf returns the package portion of a qualified name using the JVM
// naming convention: segments up to the first one starting with an upper-case
// letter. A name with no upper-case segment is treated as "pkg.Member" and
// loses only its last segment.
func PackageOf(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		if part != "" && isUpper(part[0]) {
			return strings.Join(parts[:i], ".")
		}
	}
	if len(parts) <= 1 {
		return ""
	}
	return strings.Join(parts[:len(parts)-1], ".")
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

// ParseCoordinate parses a "group:artifact" string. A trailing version
// ("group:artifact:version") is accepted and dropped.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Coordinate{}, &InvalidCoordinateError{Value: s}
	}
	c := Coordinate{Group: parts[0], Artifact: parts[1]}
	if valid, _ := c.IsValid(); !valid {
		return Coordinate{}, &InvalidCoordinateError{Value: s}
	}
	return c, nil
}

// String returns "group:artifact".
func (c Coordinate) String() string {
	return c.Group + ":" + c.Artifact
}

// IsValid returns whether both parts are non-empty Maven identifiers.
func (c Coordinate) IsValid() (bool, []error) {
	if !coordinatePartRegex.MatchString(c.Group) || !coordinatePartRegex.MatchString(c.Artifact) {
		return false, []error{&InvalidCoordinateError{Value: c.String()}}
	}
	return true, nil
}

// Matches reports whether group and artifact equal the coordinate's parts.
func (c Coordinate) Matches(group, artifact string) bool {
	return c.Group == strings.TrimSpace(group) && c.Artifact == strings.TrimSpace(artifact)
}

// Error implements the error interface for InvalidCoordinateError.
func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate %q (expected group:artifact)", e.Value)
}

// Unwrap returns ErrInvalidCoordinate for errors.Is() compatibility.
func (e *InvalidCoordinateError) Unwrap() error { return ErrInvalidCoordinate }
