// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"io"
	"strings"
	"sync"

	"github.com/depshed/depshed/internal/boundary"
	"github.com/depshed/depshed/internal/descriptor"
	"github.com/depshed/depshed/internal/extract"
	"github.com/depshed/depshed/internal/facts"
	"github.com/depshed/depshed/internal/retention"
	"github.com/depshed/depshed/pkg/artifact"
	"github.com/depshed/depshed/pkg/signature"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/slices"
)

type (
	// Session is the accumulator for one run. Observe* methods may be called
	// from several goroutines in any order; Finish ends the scan phase.
	Session struct {
		catalog    *signature.Catalog
		extractor  *extract.Extractor
		boundaries *boundary.Catalogue
		facts      *facts.Aggregator
		logger     *log.Logger

		mu          sync.Mutex
		descriptors map[string]descriptor.Kind
		sources     int
		markers     int
		analysis    *Analysis
	}

	// DescriptorRef is a descriptor artifact seen during the scan.
	DescriptorRef struct {
		Path string
		Kind descriptor.Kind
	}

	// Analysis is the resolution-phase view of a finished Session.
	Analysis struct {
		Boundaries *boundary.Boundaries
		Resolver   *boundary.Resolver
		Index      *facts.Index

		engine      *retention.Engine
		descriptors []DescriptorRef
		sources     int
		markers     int
	}
)

// NewSession returns an empty Session classifying against catalog. A nil
// logger discards output.
func NewSession(catalog *signature.Catalog, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{
		catalog:     catalog,
		extractor:   extract.New(catalog),
		boundaries:  boundary.NewCatalogue(),
		facts:       facts.NewAggregator(),
		logger:      logger,
		descriptors: make(map[string]descriptor.Kind),
	}
}

// ObserveSource extracts the blocking references of a and records them as
// facts under a.Path.
func (s *Session) ObserveSource(a *artifact.SourceArtifact) error {
	for _, f := range s.extractor.Findings(a) {
		s.logger.Debug("blocking reference", "path", a.Path, "line", f.Line, "signature", f.Signature, "layer", f.Layer)
		if err := s.facts.Record(a.Path, f.Signature); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.sources++
	s.mu.Unlock()
	return nil
}

// ObserveMarker records the directory of the marker file at path as a module
// boundary. Markers that are editable descriptors are remembered for the
// decision phase.
func (s *Session) ObserveMarker(path string) error {
	if err := s.boundaries.RecordMarker(path); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers++
	if kind, ok := descriptor.KindOf(path); ok {
		s.descriptors[boundary.Normalize(path)] = kind
	}
	return nil
}

// Finish freezes the boundary catalogue and materializes the fact index. It
// runs once; later calls return the same Analysis.
func (s *Session) Finish(sourceRoots []string) (*Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.analysis != nil {
		return s.analysis, nil
	}

	frozen := s.boundaries.Freeze()
	resolver, err := boundary.NewResolver(frozen, sourceRoots)
	if err != nil {
		return nil, err
	}
	index := s.facts.Materialize(resolver)

	refs := make([]DescriptorRef, 0, len(s.descriptors))
	for p, kind := range s.descriptors {
		refs = append(refs, DescriptorRef{Path: p, Kind: kind})
	}
	slices.SortFunc(refs, func(a, b DescriptorRef) int { return strings.Compare(a.Path, b.Path) })

	s.analysis = &Analysis{
		Boundaries:  frozen,
		Resolver:    resolver,
		Index:       index,
		engine:      retention.NewEngine(index, s.catalog),
		descriptors: refs,
		sources:     s.sources,
		markers:     s.markers,
	}
	return s.analysis, nil
}

// Descriptors returns the descriptor artifacts seen during the scan, sorted
// by path.
func (a *Analysis) Descriptors() []DescriptorRef {
	return slices.Clone(a.descriptors)
}

// Decide returns the decision for the module owning the descriptor at path.
func (a *Analysis) Decide(path string) retention.Decision {
	return a.engine.Decide(a.Resolver.Resolve(path))
}
