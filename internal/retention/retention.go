// SPDX-License-Identifier: MPL-2.0

// Package retention decides, per module, whether the guarded dependency must
// stay.
package retention

import (
	"github.com/depshed/depshed/internal/boundary"
	"github.com/depshed/depshed/internal/facts"
	"github.com/depshed/depshed/pkg/signature"

	"golang.org/x/exp/slices"
)

const (
	// ActionRetain keeps the dependency.
	ActionRetain Action = "retain"
	// ActionRemove drops the dependency.
	ActionRemove Action = "remove"
)

type (
	// Action is the outcome of a Decision.
	Action string

	// Decision is the retain/remove verdict for one module. It is computed on
	// demand and never stored between runs.
	Decision struct {
		Module boundary.ModulePath `json:"module"`
		Action Action              `json:"action"`
		// Signatures are the blocking signatures forcing retention, sorted.
		Signatures []signature.Signature `json:"signatures,omitempty"`
		// Artifacts are the paths contributing those signatures, sorted.
		Artifacts []string `json:"artifacts,omitempty"`
	}

	// Engine derives decisions from a materialized fact index.
	Engine struct {
		index   *facts.Index
		catalog *signature.Catalog
	}
)

// NewEngine returns an Engine over index. Facts naming a shim of catalog are
// ignored.
func NewEngine(index *facts.Index, catalog *signature.Catalog) *Engine {
	return &Engine{index: index, catalog: catalog}
}

// Decide returns the decision for module m: retain when at least one non-shim
// fact is owned by m, remove otherwise.
func (e *Engine) Decide(m boundary.ModulePath) Decision {
	d := Decision{Module: m, Action: ActionRemove}

	for _, f := range e.index.Module(m).Facts {
		if e.catalog.IsShim(string(f.Signature)) {
			continue
		}
		d.Signatures = append(d.Signatures, f.Signature)
		d.Artifacts = append(d.Artifacts, f.Path)
	}
	if len(d.Signatures) == 0 {
		d.Signatures, d.Artifacts = nil, nil
		return d
	}

	d.Action = ActionRetain
	slices.Sort(d.Signatures)
	d.Signatures = slices.Compact(d.Signatures)
	slices.Sort(d.Artifacts)
	d.Artifacts = slices.Compact(d.Artifacts)
	return d
}

// Retain reports whether the dependency must stay.
func (d Decision) Retain() bool { return d.Action == ActionRetain }
