// SPDX-License-Identifier: MPL-2.0

package retention_test

import (
	"testing"

	"github.com/depshed/depshed/internal/boundary"
	"github.com/depshed/depshed/internal/facts"
	"github.com/depshed/depshed/internal/retention"
	"github.com/depshed/depshed/pkg/signature"

	"github.com/google/go-cmp/cmp"
)

func TestEngine_Decide(t *testing.T) {
	t.Parallel()

	catalog, err := signature.NewCatalog(signature.DefaultRule())
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	c := boundary.NewCatalogue()
	for _, d := range []string{"a", "b", "shimmed"} {
		_ = c.Record(d)
	}
	resolver, err := boundary.NewResolver(c.Freeze(), []string{"src/main/java"})
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	agg := facts.NewAggregator()
	_ = agg.Record("a/src/main/java/Two.java", "javax.annotation.Resource")
	_ = agg.Record("a/src/main/java/One.java", "javax.annotation.Resource")
	_ = agg.Record("a/src/main/java/One.java", "javax.annotation.PostConstruct")
	// Shim facts are never produced by extraction, but the engine must not
	// count them if a caller records one.
	_ = agg.Record("shimmed/src/main/java/S.java", "io.depshed.compat.lifecycle.PostConstruct")

	engine := retention.NewEngine(agg.Materialize(resolver), catalog)

	tests := []struct {
		module boundary.ModulePath
		want   retention.Decision
	}{
		{
			module: "a",
			want: retention.Decision{
				Module:     "a",
				Action:     retention.ActionRetain,
				Signatures: []signature.Signature{"javax.annotation.PostConstruct", "javax.annotation.Resource"},
				Artifacts:  []string{"a/src/main/java/One.java", "a/src/main/java/Two.java"},
			},
		},
		{module: "b", want: retention.Decision{Module: "b", Action: retention.ActionRemove}},
		{module: "shimmed", want: retention.Decision{Module: "shimmed", Action: retention.ActionRemove}},
		{module: boundary.Root, want: retention.Decision{Module: boundary.Root, Action: retention.ActionRemove}},
	}

	for _, tt := range tests {
		t.Run(tt.module.Label(), func(t *testing.T) {
			t.Parallel()
			got := engine.Decide(tt.module)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decide(%q) mismatch (-want +got):\n%s", tt.module, diff)
			}
			if got.Retain() != (tt.want.Action == retention.ActionRetain) {
				t.Errorf("Retain() = %v", got.Retain())
			}
		})
	}
}
