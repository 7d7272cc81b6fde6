// SPDX-License-Identifier: MPL-2.0

package config

import (
	"github.com/depshed/depshed/internal/scan"
	"github.com/depshed/depshed/pkg/signature"

	"github.com/charmbracelet/log"
)

func defaultRuleConfig() RuleConfig {
	r := signature.DefaultRule()
	rc := RuleConfig{
		Name:                r.Name,
		BlockingTypes:       r.BlockingTypes,
		BlockingAnnotations: r.BlockingAnnotations,
		BlockingPackages:    []string{},
		NeutralShims:        r.NeutralShims,
	}
	if r.BlockingPackages != nil {
		rc.BlockingPackages = r.BlockingPackages
	}
	for _, c := range r.Coordinates {
		rc.Coordinates = append(rc.Coordinates, c.String())
	}
	return rc
}

// Rule converts the section into a signature.Rule. Only coordinate syntax is
// checked here; signature.NewCatalog validates the rest.
func (r RuleConfig) Rule() (signature.Rule, error) {
	rule := signature.Rule{
		Name:                r.Name,
		BlockingTypes:       r.BlockingTypes,
		BlockingAnnotations: r.BlockingAnnotations,
		BlockingPackages:    r.BlockingPackages,
		NeutralShims:        r.NeutralShims,
	}
	var errs []error
	for _, s := range r.Coordinates {
		c, err := signature.ParseCoordinate(s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rule.Coordinates = append(rule.Coordinates, c)
	}
	if len(errs) > 0 {
		return signature.Rule{}, &signature.InvalidRuleError{Rule: r.Name, FieldErrors: errs}
	}
	return rule, nil
}

// Catalog builds the classification catalog for the configured rule.
func (c *Config) Catalog() (*signature.Catalog, error) {
	rule, err := c.Rule.Rule()
	if err != nil {
		return nil, err
	}
	return signature.NewCatalog(rule)
}

// ScanOptions maps the configuration onto scanner options. apply selects a
// writing run.
func (c *Config) ScanOptions(logger *log.Logger, apply bool) scan.Options {
	roots := c.SourceRoots.All()
	sourceRoots := make([]string, 0, len(roots))
	for _, r := range roots {
		sourceRoots = append(sourceRoots, r.String())
	}
	return scan.Options{
		SourceRoots:  sourceRoots,
		Markers:      c.Markers,
		Extensions:   c.Extensions,
		Exclude:      c.Exclude,
		UseGitignore: c.UseGitignore,
		Workers:      c.Workers,
		Apply:        apply,
		Logger:       logger,
	}
}
