// SPDX-License-Identifier: MPL-2.0

// Package artifact models one source unit as seen by the usage classifier and
// reads such units from JVM-language source text.
package artifact

import "strings"

const (
	// RefAnnotation is an annotation usage ("@Name" or "@pkg.Name").
	RefAnnotation RefKind = iota + 1
	// RefIdentifier is a bare identifier.
	RefIdentifier
	// RefFieldAccess is a dotted identifier chain ("a.b.C.D").
	RefFieldAccess
)

type (
	// RefKind distinguishes the syntactic shape of a Reference.
	RefKind int

	// Import is one import declaration.
	Import struct {
		// Name is the imported qualified name without the trailing ".*".
		Name string
		// Wildcard is set for on-demand imports ("import a.b.*").
		Wildcard bool
		// Static is set for Java static imports.
		Static bool
		// Alias is the Kotlin "as" alias, if any.
		Alias string
	}

	// Reference is one annotation, identifier, or field-access expression.
	Reference struct {
		Kind RefKind
		// Name is the dotted name as written, whitespace removed
		// (e.g. "Resource.AuthenticationType.CONTAINER").
		Name string
		// Raw is the original source rendering of the expression.
		Raw string
		// ResolvedType is the fully-qualified type attributed by a compiler
		// front-end. Empty when type information is unavailable.
		ResolvedType string
		// Line is the 1-based line of the expression, 0 when unknown.
		Line int
	}

	// SourceArtifact is one source file reduced to the facts the classifier
	// needs. It is produced once per file and discarded after extraction.
	SourceArtifact struct {
		// Path is the repository-relative path with forward slashes.
		Path string
		// Package is the declared package, empty for the default package.
		Package string
		// Imports lists every import declaration in source order.
		Imports []Import
		// Annotations lists annotation usages.
		Annotations []Reference
		// Expressions lists identifier and field-access usages.
		Expressions []Reference
	}
)

// String returns a human-readable kind name.
func (k RefKind) String() string {
	switch k {
	case RefAnnotation:
		return "annotation"
	case RefIdentifier:
		return "identifier"
	case RefFieldAccess:
		return "field-access"
	default:
		return "unknown"
	}
}

// SimpleName returns the name under which the import is visible in the file:
// the alias if set, otherwise the last segment. Wildcard imports have none.
func (i Import) SimpleName() string {
	if i.Wildcard {
		return ""
	}
	if i.Alias != "" {
		return i.Alias
	}
	if idx := strings.LastIndexByte(i.Name, '.'); idx >= 0 {
		return i.Name[idx+1:]
	}
	return i.Name
}

// Segments splits the reference name at dots.
func (r Reference) Segments() []string {
	if r.Name == "" {
		return nil
	}
	return strings.Split(r.Name, ".")
}

// References returns annotations followed by expressions.
func (a *SourceArtifact) References() []Reference {
	refs := make([]Reference, 0, len(a.Annotations)+len(a.Expressions))
	refs = append(refs, a.Annotations...)
	refs = append(refs, a.Expressions...)
	return refs
}
