// SPDX-License-Identifier: MPL-2.0

package signature

// Rule describes one legacy dependency and the names that keep it alive.
type Rule struct {
	// Name identifies the rule in reports.
	Name string
	// Coordinates are the historical and modern identities of the dependency.
	Coordinates []Coordinate
	// BlockingTypes are types whose use requires the dependency.
	BlockingTypes []string
	// BlockingAnnotations are annotations whose use requires the dependency.
	BlockingAnnotations []string
	// BlockingPackages extends the packages derived from the blocking sets.
	BlockingPackages []string
	// NeutralShims share simple names with blocking signatures but never block.
	NeutralShims []string
}

// DefaultRule returns the JSR-250 common-annotations rule: the dependency is
// published as javax.annotation:javax.annotation-api and, after the namespace
// move, as jakarta.annotation:jakarta.annotation-api.
func DefaultRule() Rule {
	var annotations []string
	for _, ns := range []string{"javax", "jakarta"} {
		annotations = append(annotations,
			ns+".annotation.Generated",
			ns+".annotation.ManagedBean",
			ns+".annotation.PostConstruct",
			ns+".annotation.PreDestroy",
			ns+".annotation.Priority",
			ns+".annotation.Resource",
			ns+".annotation.Resources",
			ns+".annotation.security.DeclareRoles",
			ns+".annotation.security.DenyAll",
			ns+".annotation.security.PermitAll",
			ns+".annotation.security.RolesAllowed",
			ns+".annotation.security.RunAs",
			ns+".annotation.sql.DataSourceDefinition",
			ns+".annotation.sql.DataSourceDefinitions",
		)
	}
	annotations = append(annotations,
		"jakarta.annotation.Nonnull",
		"jakarta.annotation.Nullable",
	)

	return Rule{
		Name: "jsr250-common-annotations",
		Coordinates: []Coordinate{
			{Group: "javax.annotation", Artifact: "javax.annotation-api"},
			{Group: "jakarta.annotation", Artifact: "jakarta.annotation-api"},
		},
		BlockingTypes: []string{
			"javax.annotation.Resource.AuthenticationType",
			"jakarta.annotation.Resource.AuthenticationType",
		},
		BlockingAnnotations: annotations,
		NeutralShims: []string{
			// JSR-305 ships in another jar but shares the javax.annotation package.
			"javax.annotation.CheckForNull",
			"javax.annotation.Nonnull",
			"javax.annotation.Nullable",
			"javax.annotation.concurrent.ThreadSafe",
			// Lifecycle replacements introduced by the migration.
			"io.depshed.compat.lifecycle.PostConstruct",
			"io.depshed.compat.lifecycle.PreDestroy",
			"io.depshed.compat.inject.Resource",
			"io.depshed.compat.Generated",
		},
	}
}
