// SPDX-License-Identifier: MPL-2.0

// Package facts buffers (artifact, signature) facts during a scan and groups
// them by owning module once module boundaries are known.
package facts

import (
	"errors"
	"strings"
	"sync"

	"github.com/depshed/depshed/internal/boundary"
	"github.com/depshed/depshed/pkg/signature"

	"golang.org/x/exp/slices"
)

// ErrMaterialized is returned when a fact is recorded after Materialize.
var ErrMaterialized = errors.New("fact index already materialized")

type (
	// Fact is one observed pairing of an artifact with a blocking signature.
	Fact struct {
		Path      string              `json:"path"`
		Signature signature.Signature `json:"signature"`
	}

	// Resolver maps an artifact path to its owning module.
	Resolver interface {
		Resolve(path string) boundary.ModulePath
	}

	// Aggregator collects raw facts keyed by artifact path. Module resolution
	// is deferred to Materialize, which runs exactly once.
	Aggregator struct {
		mu    sync.Mutex
		raw   map[string]map[signature.Signature]struct{}
		count int
		index *Index
	}

	// ModuleFacts is the fact set of one module.
	ModuleFacts struct {
		Module boundary.ModulePath
		// Facts is sorted by path, then signature.
		Facts []Fact
	}

	// Index is the per-module fact index built by Materialize. It is
	// read-only.
	Index struct {
		modules map[boundary.ModulePath][]Fact
		total   int
	}
)

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{raw: make(map[string]map[signature.Signature]struct{})}
}

// Record stores the fact (path, sig). Duplicates collapse. It is safe for
// concurrent callers and fails with ErrMaterialized once the index is built.
func (a *Aggregator) Record(path string, sig signature.Signature) error {
	path = boundary.Normalize(path)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.index != nil {
		return ErrMaterialized
	}
	sigs, ok := a.raw[path]
	if !ok {
		sigs = make(map[signature.Signature]struct{})
		a.raw[path] = sigs
	}
	if _, dup := sigs[sig]; !dup {
		sigs[sig] = struct{}{}
		a.count++
	}
	return nil
}

// Len returns the number of distinct facts recorded so far.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

// Materialize resolves the owning module of every recorded fact and builds the
// index. Only the first call does any work; later calls return the same index
// and ignore r.
func (a *Aggregator) Materialize(r Resolver) *Index {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.index != nil {
		return a.index
	}

	ix := &Index{modules: make(map[boundary.ModulePath][]Fact), total: a.count}
	for path, sigs := range a.raw {
		module := r.Resolve(path)
		for sig := range sigs {
			ix.modules[module] = append(ix.modules[module], Fact{Path: path, Signature: sig})
		}
	}
	for _, fs := range ix.modules {
		slices.SortFunc(fs, compareFacts)
	}
	a.index = ix
	a.raw = nil
	return ix
}

// Module returns the facts owned by m. A module without facts yields an empty
// ModuleFacts.
func (ix *Index) Module(m boundary.ModulePath) ModuleFacts {
	return ModuleFacts{Module: m, Facts: slices.Clone(ix.modules[m])}
}

// Modules returns every module holding at least one fact, sorted.
func (ix *Index) Modules() []boundary.ModulePath {
	out := make([]boundary.ModulePath, 0, len(ix.modules))
	for m := range ix.modules {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

// Len returns the total number of facts in the index.
func (ix *Index) Len() int { return ix.total }

// IsEmpty reports whether the module has no facts.
func (mf ModuleFacts) IsEmpty() bool { return len(mf.Facts) == 0 }

// Signatures returns the distinct signatures of the module, sorted.
func (mf ModuleFacts) Signatures() []signature.Signature {
	out := make([]signature.Signature, 0, len(mf.Facts))
	for _, f := range mf.Facts {
		out = append(out, f.Signature)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Artifacts returns the distinct contributing artifact paths, sorted.
func (mf ModuleFacts) Artifacts() []string {
	out := make([]string, 0, len(mf.Facts))
	for _, f := range mf.Facts {
		out = append(out, f.Path)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func compareFacts(a, b Fact) int {
	if c := strings.Compare(a.Path, b.Path); c != 0 {
		return c
	}
	return strings.Compare(string(a.Signature), string(b.Signature))
}
