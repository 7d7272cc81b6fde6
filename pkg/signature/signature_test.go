// SPDX-License-Identifier: MPL-2.0

package signature_test

import (
	"errors"
	"testing"

	"github.com/depshed/depshed/pkg/signature"
)

func mustDefaultCatalog(t *testing.T) *signature.Catalog {
	t.Helper()
	c, err := signature.NewCatalog(signature.DefaultRule())
	if err != nil {
		t.Fatalf("NewCatalog(DefaultRule()) error = %v", err)
	}
	return c
}

func TestPackageOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"javax.annotation.PostConstruct", "javax.annotation"},
		{"javax.annotation.Resource.AuthenticationType", "javax.annotation"},
		{"javax.annotation.security.RolesAllowed", "javax.annotation.security"},
		{"com.example.util", "com.example"},
		{"Resource", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := signature.PackageOf(tt.name); got != tt.want {
				t.Errorf("PackageOf(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestSignature_Accessors(t *testing.T) {
	t.Parallel()

	sig := signature.Signature("javax.annotation.security.RolesAllowed")
	if got := sig.SimpleName(); got != "RolesAllowed" {
		t.Errorf("SimpleName() = %q, want RolesAllowed", got)
	}
	if got := sig.Package(); got != "javax.annotation.security" {
		t.Errorf("Package() = %q", got)
	}

	wc := signature.Wildcard("javax.annotation")
	if !wc.IsWildcard() {
		t.Fatalf("Wildcard(...).IsWildcard() = false")
	}
	if got := wc.Package(); got != "javax.annotation" {
		t.Errorf("wildcard Package() = %q", got)
	}
	if got := wc.SimpleName(); got != "*" {
		t.Errorf("wildcard SimpleName() = %q", got)
	}
}

func TestSignature_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sig   signature.Signature
		valid bool
	}{
		{"javax.annotation.PostConstruct", true},
		{"javax.annotation.*", true},
		{"Outer$Inner", true},
		{"", false},
		{"javax..annotation", false},
		{"javax.annotation.", false},
		{"1javax.annotation", false},
	}

	for _, tt := range tests {
		valid, errs := tt.sig.IsValid()
		if valid != tt.valid {
			t.Errorf("Signature(%q).IsValid() = %v, want %v", tt.sig, valid, tt.valid)
		}
		if !valid && (len(errs) == 0 || !errors.Is(errs[0], signature.ErrInvalidSignature)) {
			t.Errorf("Signature(%q).IsValid() errors do not wrap ErrInvalidSignature", tt.sig)
		}
	}
}

func TestParseCoordinate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    signature.Coordinate
		wantErr bool
	}{
		{in: "javax.annotation:javax.annotation-api", want: signature.Coordinate{Group: "javax.annotation", Artifact: "javax.annotation-api"}},
		{in: " jakarta.annotation:jakarta.annotation-api:2.1.1 ", want: signature.Coordinate{Group: "jakarta.annotation", Artifact: "jakarta.annotation-api"}},
		{in: "no-colon", wantErr: true},
		{in: ":artifact", wantErr: true},
		{in: "a:b:c:d", wantErr: true},
		{in: "a b:c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := signature.ParseCoordinate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCoordinate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, signature.ErrInvalidCoordinate) {
					t.Errorf("error does not wrap ErrInvalidCoordinate: %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseCoordinate(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if got.String() != tt.want.Group+":"+tt.want.Artifact {
				t.Errorf("String() = %q", got.String())
			}
		})
	}
}

func TestNewCatalog_RejectsConflicts(t *testing.T) {
	t.Parallel()

	rule := signature.Rule{
		Name:                "conflict",
		Coordinates:         []signature.Coordinate{{Group: "g", Artifact: "a"}},
		BlockingAnnotations: []string{"com.example.Keep"},
		NeutralShims:        []string{"com.example.Keep"},
	}
	_, err := signature.NewCatalog(rule)
	if !errors.Is(err, signature.ErrInvalidRule) {
		t.Fatalf("NewCatalog() error = %v, want ErrInvalidRule", err)
	}

	var ruleErr *signature.InvalidRuleError
	if !errors.As(err, &ruleErr) || len(ruleErr.FieldErrors) != 1 {
		t.Errorf("expected one field error, got %v", err)
	}
}

func TestNewCatalog_RejectsInvalidEntries(t *testing.T) {
	t.Parallel()

	rule := signature.Rule{
		Name:          "broken",
		BlockingTypes: []string{"com.example.*", "not valid"},
	}
	_, err := signature.NewCatalog(rule)
	var ruleErr *signature.InvalidRuleError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("NewCatalog() error = %v, want InvalidRuleError", err)
	}
	// two bad names plus the missing coordinates
	if len(ruleErr.FieldErrors) != 3 {
		t.Errorf("len(FieldErrors) = %d, want 3: %v", len(ruleErr.FieldErrors), ruleErr.FieldErrors)
	}
}

func TestCatalog_Classify(t *testing.T) {
	t.Parallel()
	c := mustDefaultCatalog(t)

	tests := []struct {
		name     string
		wantSig  signature.Signature
		wantKind signature.Kind
	}{
		{"javax.annotation.PostConstruct", "javax.annotation.PostConstruct", signature.KindAnnotation},
		{"javax.annotation.Resource.AuthenticationType", "javax.annotation.Resource.AuthenticationType", signature.KindType},
		{"javax.annotation.Resource.AuthenticationType.CONTAINER", "javax.annotation.Resource.AuthenticationType", signature.KindType},
		{"javax.annotation.Resource.name", "javax.annotation.Resource", signature.KindAnnotation},
		{"javax.annotation.Nonnull", "javax.annotation.Nonnull", signature.KindShim},
		{"io.depshed.compat.lifecycle.PostConstruct", "io.depshed.compat.lifecycle.PostConstruct", signature.KindShim},
		{"javax.annotation", "", signature.KindUnknown},
		{"javax.annotation.PostConstructX", "", signature.KindUnknown},
		{"com.example.PostConstruct", "", signature.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sig, kind := c.Classify(tt.name)
			if sig != tt.wantSig || kind != tt.wantKind {
				t.Errorf("Classify(%q) = (%q, %s), want (%q, %s)", tt.name, sig, kind, tt.wantSig, tt.wantKind)
			}
		})
	}
}

func TestCatalog_WildcardImport(t *testing.T) {
	t.Parallel()
	c := mustDefaultCatalog(t)

	tests := []struct {
		target string
		want   signature.Signature
		ok     bool
	}{
		{"javax.annotation", "javax.annotation.*", true},
		{"jakarta.annotation.security", "jakarta.annotation.security.*", true},
		{"javax.annotation.Resource", "javax.annotation.Resource", true},
		{"javax.annotation.processing", "", false},
		{"io.depshed.compat.lifecycle", "", false},
		{"java.util", "", false},
	}

	for _, tt := range tests {
		got, ok := c.WildcardImport(tt.target)
		if got != tt.want || ok != tt.ok {
			t.Errorf("WildcardImport(%q) = (%q, %v), want (%q, %v)", tt.target, got, ok, tt.want, tt.ok)
		}
	}

	if !c.IsBlocking(signature.Wildcard("javax.annotation")) {
		t.Error("IsBlocking(javax.annotation.*) = false")
	}
	if c.IsBlocking(signature.Wildcard("java.util")) {
		t.Error("IsBlocking(java.util.*) = true")
	}
}

func TestCatalog_FindInText(t *testing.T) {
	t.Parallel()
	c := mustDefaultCatalog(t)

	tests := []struct {
		text string
		want signature.Signature
		ok   bool
	}{
		{"javax.annotation.Resource.AuthenticationType.CONTAINER", "javax.annotation.Resource.AuthenticationType", true},
		{"List<javax.annotation.security.RolesAllowed>", "javax.annotation.security.RolesAllowed", true},
		{"x=jakarta.annotation.PostConstruct", "jakarta.annotation.PostConstruct", true},
		{"com.javax.annotation.PostConstruct", "", false},
		{"javax.annotation.PostConstructor", "", false},
		{"javax.annotation.Nonnull", "", false},
		{"io.depshed.compat.lifecycle.PostConstruct", "", false},
	}

	for _, tt := range tests {
		got, ok := c.FindInText(tt.text)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FindInText(%q) = (%q, %v), want (%q, %v)", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCatalog_ShimsNeverBlock(t *testing.T) {
	t.Parallel()
	c := mustDefaultCatalog(t)

	for _, shim := range signature.DefaultRule().NeutralShims {
		if !c.IsShim(shim) {
			t.Errorf("IsShim(%q) = false", shim)
		}
		if c.IsBlocking(signature.Signature(shim)) {
			t.Errorf("IsBlocking(%q) = true for a shim", shim)
		}
	}
	for _, sig := range c.Blocking() {
		if c.IsShim(string(sig)) {
			t.Errorf("Blocking() contains shim %q", sig)
		}
	}
}

func TestCatalog_Coordinates(t *testing.T) {
	t.Parallel()
	c := mustDefaultCatalog(t)

	coords := c.Coordinates()
	if len(coords) != 2 {
		t.Fatalf("len(Coordinates()) = %d, want 2", len(coords))
	}
	coords[0].Group = "mutated"
	if c.Coordinates()[0].Group == "mutated" {
		t.Error("Coordinates() exposes internal slice")
	}
}
