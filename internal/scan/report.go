// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"github.com/depshed/depshed/internal/boundary"
	"github.com/depshed/depshed/internal/descriptor"
	"github.com/depshed/depshed/pkg/signature"
)

const (
	// StatusRetained means the module still references blocking signatures.
	StatusRetained Status = "retained"
	// StatusRemoved means matching entries were deleted from the descriptor.
	StatusRemoved Status = "removed"
	// StatusRemovable means entries would be deleted, but the run was dry.
	StatusRemovable Status = "removable"
	// StatusAbsent means the descriptor does not declare the dependency.
	StatusAbsent Status = "absent"
	// StatusFailed means the descriptor could not be read, parsed or written.
	StatusFailed Status = "failed"
)

type (
	// Status is the outcome of one descriptor.
	Status string

	// Outcome is the result for one descriptor artifact.
	Outcome struct {
		Descriptor string              `json:"descriptor" toml:"descriptor"`
		Kind       descriptor.Kind     `json:"kind" toml:"kind"`
		Module     boundary.ModulePath `json:"module" toml:"module"`
		// Via names the resolver rule that assigned Module.
		Via    boundary.Via `json:"resolved_via" toml:"resolved_via"`
		Status Status       `json:"status" toml:"status"`
		// Signatures and Artifacts explain a retained module.
		Signatures []signature.Signature `json:"signatures,omitempty" toml:"signatures,omitempty"`
		Artifacts  []string              `json:"artifacts,omitempty" toml:"artifacts,omitempty"`
		// Removed lists deleted (or, in a dry run, deletable) entries.
		Removed []descriptor.Removal `json:"removed,omitempty" toml:"removed,omitempty"`
	}

	// Stats summarizes a run.
	Stats struct {
		Sources     int `json:"sources" toml:"sources"`
		Markers     int `json:"markers" toml:"markers"`
		Boundaries  int `json:"boundaries" toml:"boundaries"`
		Descriptors int `json:"descriptors" toml:"descriptors"`
		Facts       int `json:"facts" toml:"facts"`
	}

	// Report is the result of Scanner.Run.
	Report struct {
		Root        string       `json:"root" toml:"root"`
		Rule        string       `json:"rule" toml:"rule"`
		Coordinates []string     `json:"coordinates" toml:"coordinates"`
		DryRun      bool         `json:"dry_run" toml:"dry_run"`
		Outcomes    []Outcome    `json:"outcomes" toml:"outcomes"`
		Diagnostics []Diagnostic `json:"diagnostics,omitempty" toml:"diagnostics,omitempty"`
		Stats       Stats        `json:"stats" toml:"stats"`
	}
)

// Count returns how many outcomes have status st.
func (r *Report) Count(st Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == st {
			n++
		}
	}
	return n
}

// HasRetained reports whether any module had to keep the dependency.
func (r *Report) HasRetained() bool { return r.Count(StatusRetained) > 0 }

// HasFailures reports whether any descriptor could not be processed.
func (r *Report) HasFailures() bool { return r.Count(StatusFailed) > 0 }

// Outcome returns the outcome for the descriptor at path.
func (r *Report) Outcome(path string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Descriptor == path {
			return o, true
		}
	}
	return Outcome{}, false
}
