// SPDX-License-Identifier: MPL-2.0

package extract

import (
	"regexp"
	"strings"

	"github.com/depshed/depshed/pkg/artifact"
	"github.com/depshed/depshed/pkg/signature"
)

const (
	verdictUndecided verdict = iota
	verdictBlocking
	verdictClear
)

var (
	dottedSpace = regexp.MustCompile(`\s*\.\s*`)
	spaceRun    = regexp.MustCompile(`\s+`)
	classLit    = regexp.MustCompile(`\.class\b`)
	emptyPairs  = strings.NewReplacer("[]", "", "()", "", "@", "")
)

type (
	verdict int

	match struct {
		verdict verdict
		sig     signature.Signature
		layer   Layer
	}

	importStrategy    func(fc *fileContext, imp artifact.Import) match
	referenceStrategy func(fc *fileContext, ref artifact.Reference) match
)

var (
	importChain = []importStrategy{
		wildcardImport,
		singleImport,
	}

	referenceChain = []referenceStrategy{
		resolvedType,
		qualifiedName,
		rawText,
	}
)

func undecided() match { return match{} }

func cleared() match { return match{verdict: verdictClear} }

func blocking(sig signature.Signature, layer Layer) match {
	return match{verdict: verdictBlocking, sig: sig, layer: layer}
}

func runImportChain(fc *fileContext, imp artifact.Import) match {
	for _, s := range importChain {
		if m := s(fc, imp); m.verdict != verdictUndecided {
			return m
		}
	}
	return cleared()
}

func runReferenceChain(fc *fileContext, ref artifact.Reference) match {
	for _, s := range referenceChain {
		if m := s(fc, ref); m.verdict != verdictUndecided {
			return m
		}
	}
	return cleared()
}

// wildcardImport records "import pkg.*" as the wildcard signature when pkg is a
// blocking package, without naming a member.
func wildcardImport(fc *fileContext, imp artifact.Import) match {
	if !imp.Wildcard {
		return undecided()
	}
	if sig, ok := fc.catalog.WildcardImport(imp.Name); ok {
		return blocking(sig, LayerWildcard)
	}
	return cleared()
}

// singleImport matches a single-type or static import on its longest listed
// prefix, so members and nested types of a blocking type count.
func singleImport(fc *fileContext, imp artifact.Import) match {
	sig, kind := fc.classify(imp.Name)
	switch kind {
	case signature.KindType, signature.KindAnnotation:
		return blocking(sig, LayerImport)
	default:
		return cleared()
	}
}

// resolvedType trusts compiler type attribution when present. It ends the
// chain either way.
func resolvedType(fc *fileContext, ref artifact.Reference) match {
	if ref.ResolvedType == "" {
		return undecided()
	}
	sig, kind := fc.classify(ref.ResolvedType)
	switch kind {
	case signature.KindType, signature.KindAnnotation:
		return blocking(sig, LayerResolved)
	default:
		return cleared()
	}
}

// qualifiedName rebuilds a fully-qualified name from the reference shape. The
// leading segment is expanded through single-type imports and aliases; a name
// with no import is tried as written, then in the file's own package, then in
// every wildcard-imported package. Shims resolved this way are exempt.
func qualifiedName(fc *fileContext, ref artifact.Reference) match {
	name := strings.TrimPrefix(ref.Name, "@")
	if name == "" {
		return undecided()
	}

	head, rest := firstSegment(name)
	if fqn, ok := fc.visible[head]; ok {
		sig, kind := fc.classify(fqn + rest)
		switch kind {
		case signature.KindType, signature.KindAnnotation:
			return blocking(sig, LayerQualified)
		default:
			// The import says exactly what the name is.
			return cleared()
		}
	}

	candidates := make([]string, 0, 2+len(fc.onDemand))
	if strings.Contains(name, ".") {
		candidates = append(candidates, name)
	}
	if fc.pkg != "" {
		candidates = append(candidates, fc.pkg+"."+name)
	}
	for _, pkg := range fc.onDemand {
		candidates = append(candidates, pkg+"."+name)
	}

	shim := false
	for _, fqn := range candidates {
		sig, kind := fc.classify(fqn)
		switch kind {
		case signature.KindType, signature.KindAnnotation:
			return blocking(sig, LayerQualified)
		case signature.KindShim:
			shim = true
		}
	}
	if shim {
		return cleared()
	}
	return undecided()
}

// rawText searches the normalized source rendering for a segment-aligned
// blocking name. It never matches shims, and it never grants the shim
// exemption.
func rawText(fc *fileContext, ref artifact.Reference) match {
	text := normalize(ref.Raw)
	if text == "" {
		text = ref.Name
	}
	if sig, ok := fc.catalog.FindInText(text); ok {
		return blocking(sig, LayerText)
	}
	return cleared()
}

// normalize collapses whitespace around dots and drops annotation markers,
// empty call and array brackets, and class literals. Generic brackets are left
// in place as separators.
func normalize(raw string) string {
	s := dottedSpace.ReplaceAllString(raw, ".")
	s = spaceRun.ReplaceAllString(s, " ")
	s = classLit.ReplaceAllString(s, "")
	s = emptyPairs.Replace(s)
	return strings.TrimSpace(s)
}
