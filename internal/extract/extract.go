// SPDX-License-Identifier: MPL-2.0

// Package extract finds blocking signatures in a single source artifact.
//
// Detection runs as an ordered chain of pure strategies. Each strategy looks at
// one import or reference and either decides (blocking or clear) or passes it
// on. Import declarations and references have separate chains; a file may
// produce facts from several layers at once.
package extract

import (
	"strings"

	"github.com/depshed/depshed/pkg/artifact"
	"github.com/depshed/depshed/pkg/signature"

	"golang.org/x/exp/slices"
)

const (
	// LayerImport is an exact or member-of-type import match.
	LayerImport Layer = "import"
	// LayerWildcard is a wildcard import rooted at a blocking package.
	LayerWildcard Layer = "wildcard-import"
	// LayerResolved is a match on compiler-attributed type information.
	LayerResolved Layer = "resolved-type"
	// LayerQualified is a match on a name reconstructed from the file's imports
	// and package.
	LayerQualified Layer = "qualified-name"
	// LayerText is a match found by searching the raw expression text.
	LayerText Layer = "text"
)

type (
	// Layer names the detection strategy that produced a Finding.
	Layer string

	// Finding is one blocking reference found in an artifact.
	Finding struct {
		Signature signature.Signature
		Layer     Layer
		Line      int
	}

	// Extractor applies the detection chains for one Catalog. It holds no
	// mutable state and is safe for concurrent use.
	Extractor struct {
		catalog *signature.Catalog
	}
)

// New returns an Extractor for catalog.
func New(catalog *signature.Catalog) *Extractor {
	return &Extractor{catalog: catalog}
}

// Extract returns the set of blocking signatures referenced by a, sorted.
func (e *Extractor) Extract(a *artifact.SourceArtifact) []signature.Signature {
	findings := e.Findings(a)
	out := make([]signature.Signature, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Signature)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Findings returns every blocking reference in a with the layer that matched
// it, in source order. A signature may appear more than once.
func (e *Extractor) Findings(a *artifact.SourceArtifact) []Finding {
	if a == nil {
		return nil
	}
	fc := newFileContext(e.catalog, a)

	var findings []Finding
	for _, imp := range a.Imports {
		if m := runImportChain(fc, imp); m.verdict == verdictBlocking {
			findings = append(findings, Finding{Signature: m.sig, Layer: m.layer})
		}
	}
	for _, ref := range a.References() {
		if m := runReferenceChain(fc, ref); m.verdict == verdictBlocking {
			findings = append(findings, Finding{Signature: m.sig, Layer: m.layer, Line: ref.Line})
		}
	}
	return findings
}

// fileContext is the per-file lookup state shared by the strategies.
type fileContext struct {
	catalog *signature.Catalog
	pkg     string
	// visible maps a simple name (or Kotlin alias) to the qualified name
	// brought in by a single-type or static import.
	visible map[string]string
	// onDemand lists the targets of wildcard imports.
	onDemand []string
}

func newFileContext(catalog *signature.Catalog, a *artifact.SourceArtifact) *fileContext {
	fc := &fileContext{
		catalog: catalog,
		pkg:     a.Package,
		visible: make(map[string]string, len(a.Imports)),
	}
	for _, imp := range a.Imports {
		if imp.Wildcard {
			fc.onDemand = append(fc.onDemand, imp.Name)
			continue
		}
		if name := imp.SimpleName(); name != "" {
			fc.visible[name] = imp.Name
		}
	}
	return fc
}

func (fc *fileContext) classify(name string) (signature.Signature, signature.Kind) {
	return fc.catalog.Classify(strings.TrimPrefix(name, "@"))
}

func firstSegment(name string) (head, rest string) {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i], name[i:]
	}
	return name, ""
}
