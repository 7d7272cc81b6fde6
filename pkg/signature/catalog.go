// SPDX-License-Identifier: MPL-2.0

package signature

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

var (
	// ErrInvalidRule is the sentinel error wrapped by InvalidRuleError.
	ErrInvalidRule = errors.New("invalid rule")
)

type (
	// Catalog is the immutable classification table built from a Rule.
	// It is safe for concurrent use.
	Catalog struct {
		name        string
		coordinates []Coordinate
		kinds       map[Signature]Kind
		packages    map[string]struct{}
		// blocking is ordered longest-first so textual search prefers the
		// most specific name.
		blocking []Signature
	}

	// InvalidRuleError is returned when a Rule has invalid or conflicting
	// entries. It wraps ErrInvalidRule for errors.Is() compatibility and
	// collects the individual problems.
	InvalidRuleError struct {
		Rule        string
		FieldErrors []error
	}
)

// NewCatalog validates r and builds its Catalog.
func NewCatalog(r Rule) (*Catalog, error) {
	c := &Catalog{
		name:        r.Name,
		coordinates: slices.Clone(r.Coordinates),
		kinds:       make(map[Signature]Kind),
		packages:    make(map[string]struct{}),
	}

	var errs []error
	add := func(names []string, kind Kind) {
		for _, name := range names {
			sig := Signature(strings.TrimSpace(name))
			if valid, fieldErrs := sig.IsValid(); !valid || sig.IsWildcard() {
				if len(fieldErrs) == 0 {
					fieldErrs = []error{&InvalidSignatureError{Value: sig}}
				}
				errs = append(errs, fieldErrs...)
				continue
			}
			if prev, ok := c.kinds[sig]; ok && prev != kind {
				errs = append(errs, fmt.Errorf("%s is listed as both %s and %s", sig, prev, kind))
				continue
			}
			c.kinds[sig] = kind
		}
	}
	add(r.BlockingTypes, KindType)
	add(r.BlockingAnnotations, KindAnnotation)
	add(r.NeutralShims, KindShim)

	if len(r.Coordinates) == 0 {
		errs = append(errs, errors.New("rule has no dependency coordinates"))
	}
	for _, coord := range r.Coordinates {
		if valid, fieldErrs := coord.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}

	for sig, kind := range c.kinds {
		if kind == KindShim {
			continue
		}
		c.blocking = append(c.blocking, sig)
		if pkg := sig.Package(); pkg != "" {
			c.packages[pkg] = struct{}{}
		}
	}
	for _, pkg := range r.BlockingPackages {
		pkg = strings.TrimSpace(pkg)
		if valid, fieldErrs := Signature(pkg).IsValid(); !valid {
			errs = append(errs, fieldErrs...)
			continue
		}
		c.packages[pkg] = struct{}{}
	}

	if len(errs) > 0 {
		return nil, &InvalidRuleError{Rule: r.Name, FieldErrors: errs}
	}

	slices.SortFunc(c.blocking, func(a, b Signature) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(string(a), string(b))
	})
	return c, nil
}

// Error implements the error interface for InvalidRuleError.
func (e *InvalidRuleError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid rule %q: %s", e.Rule, strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidRule for errors.Is() compatibility.
func (e *InvalidRuleError) Unwrap() error { return ErrInvalidRule }

// Name returns the rule name the catalog was built from.
func (c *Catalog) Name() string { return c.name }

// Coordinates returns the dependency coordinates guarded by the catalog.
func (c *Catalog) Coordinates() []Coordinate {
	return slices.Clone(c.coordinates)
}

// Blocking returns every blocking type and annotation, sorted by name.
func (c *Catalog) Blocking() []Signature {
	out := slices.Clone(c.blocking)
	slices.Sort(out)
	return out
}

// KindOf classifies sig. A wildcard is KindWildcard only when its root is a
// blocking package.
func (c *Catalog) KindOf(sig Signature) Kind {
	if sig.IsWildcard() {
		if c.IsBlockingPackage(sig.Package()) {
			return KindWildcard
		}
		return KindUnknown
	}
	return c.kinds[sig]
}

// IsBlocking reports whether sig is a blocking type, annotation or wildcard.
func (c *Catalog) IsBlocking(sig Signature) bool {
	switch c.KindOf(sig) {
	case KindType, KindAnnotation, KindWildcard:
		return true
	default:
		return false
	}
}

// IsShim reports whether name is exactly a neutral shim.
func (c *Catalog) IsShim(name string) bool {
	return c.kinds[Signature(name)] == KindShim
}

// IsBlockingPackage reports whether pkg hosts blocking signatures.
func (c *Catalog) IsBlockingPackage(pkg string) bool {
	_, ok := c.packages[pkg]
	return ok
}

// Classify returns the longest segment-aligned prefix of name that is listed
// in the catalog, and its kind. "javax.annotation.Resource.AuthenticationType.APPLICATION"
// classifies as the blocking type "javax.annotation.Resource.AuthenticationType".
// Shims are returned with KindShim so callers can apply the exemption.
func (c *Catalog) Classify(name string) (Signature, Kind) {
	name = strings.TrimSpace(name)
	for name != "" {
		if kind, ok := c.kinds[Signature(name)]; ok {
			return Signature(name), kind
		}
		i := strings.LastIndexByte(name, '.')
		if i < 0 {
			break
		}
		name = name[:i]
	}
	return "", KindUnknown
}

// WildcardImport classifies the target of a wildcard import ("target.*").
// A blocking package yields its wildcard signature; a blocking type yields the
// type itself, since the import exposes its nested members.
func (c *Catalog) WildcardImport(target string) (Signature, bool) {
	if c.IsBlockingPackage(target) {
		return Wildcard(target), true
	}
	sig, kind := c.Classify(target)
	if kind == KindType || kind == KindAnnotation {
		return sig, true
	}
	return "", false
}

// FindInText searches text for a segment-aligned occurrence of any blocking
// name. The text is expected to be normalized (no whitespace inside names).
func (c *Catalog) FindInText(text string) (Signature, bool) {
	for _, sig := range c.blocking {
		if containsQualified(text, string(sig)) {
			return sig, true
		}
	}
	return "", false
}

func containsQualified(text, name string) bool {
	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], name)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(name)
		leftOK := start == 0 || !isNameByte(text[start-1]) && text[start-1] != '.'
		rightOK := end == len(text) || !isNameByte(text[end])
		if leftOK && rightOK {
			return true
		}
		offset = start + 1
	}
	return false
}

func isNameByte(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
