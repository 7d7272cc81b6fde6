// SPDX-License-Identifier: MPL-2.0

package extract

import (
	"testing"

	"github.com/depshed/depshed/pkg/artifact"
	"github.com/depshed/depshed/pkg/signature"
)

func testContext(t *testing.T, a *artifact.SourceArtifact) *fileContext {
	t.Helper()
	c, err := signature.NewCatalog(signature.DefaultRule())
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	if a == nil {
		a = &artifact.SourceArtifact{}
	}
	return newFileContext(c, a)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{"javax . annotation\n\t.Resource", "javax.annotation.Resource"},
		{"@ javax.annotation.PostConstruct()", "javax.annotation.PostConstruct"},
		{"javax.annotation.Resource.class", "javax.annotation.Resource"},
		{"List<javax.annotation.Resource>[]", "List<javax.annotation.Resource>"},
		{"return   value", "return value"},
	}

	for _, tt := range tests {
		if got := normalize(tt.raw); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestRawText(t *testing.T) {
	t.Parallel()
	fc := testContext(t, nil)

	tests := []struct {
		name    string
		ref     artifact.Reference
		verdict verdict
		sig     signature.Signature
	}{
		{
			name:    "generic argument",
			ref:     artifact.Reference{Name: "List", Raw: "List < javax.annotation.security.RolesAllowed >"},
			verdict: verdictBlocking,
			sig:     "javax.annotation.security.RolesAllowed",
		},
		{
			name:    "class literal",
			ref:     artifact.Reference{Name: "x", Raw: "jakarta.annotation.Priority.class"},
			verdict: verdictBlocking,
			sig:     "jakarta.annotation.Priority",
		},
		{
			name:    "shim text never matches",
			ref:     artifact.Reference{Name: "x", Raw: "io.depshed.compat.lifecycle.PostConstruct"},
			verdict: verdictClear,
		},
		{
			name:    "name fallback when raw is empty",
			ref:     artifact.Reference{Name: "javax.annotation.Generated"},
			verdict: verdictBlocking,
			sig:     "javax.annotation.Generated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := rawText(fc, tt.ref)
			if m.verdict != tt.verdict || m.sig != tt.sig {
				t.Errorf("rawText() = (%d, %q), want (%d, %q)", m.verdict, m.sig, tt.verdict, tt.sig)
			}
			if m.verdict == verdictBlocking && m.layer != LayerText {
				t.Errorf("layer = %q, want %q", m.layer, LayerText)
			}
		})
	}
}

func TestQualifiedName_Undecided(t *testing.T) {
	t.Parallel()
	fc := testContext(t, &artifact.SourceArtifact{Package: "com.example"})

	if m := qualifiedName(fc, artifact.Reference{Name: "Widget"}); m.verdict != verdictUndecided {
		t.Errorf("qualifiedName(Widget) verdict = %d, want undecided", m.verdict)
	}
	if m := qualifiedName(fc, artifact.Reference{}); m.verdict != verdictUndecided {
		t.Errorf("qualifiedName(empty) verdict = %d, want undecided", m.verdict)
	}
}

func TestResolvedType_EndsChain(t *testing.T) {
	t.Parallel()
	fc := testContext(t, nil)

	m := resolvedType(fc, artifact.Reference{Name: "javax.annotation.Resource", ResolvedType: "com.example.Resource"})
	if m.verdict != verdictClear {
		t.Errorf("verdict = %d, want clear", m.verdict)
	}
	if m := resolvedType(fc, artifact.Reference{Name: "x"}); m.verdict != verdictUndecided {
		t.Errorf("verdict without type = %d, want undecided", m.verdict)
	}
}

func TestImportChain(t *testing.T) {
	t.Parallel()
	fc := testContext(t, nil)

	tests := []struct {
		imp   artifact.Import
		sig   signature.Signature
		layer Layer
	}{
		{artifact.Import{Name: "javax.annotation.security", Wildcard: true}, "javax.annotation.security.*", LayerWildcard},
		{artifact.Import{Name: "javax.annotation.Resource", Wildcard: true}, "javax.annotation.Resource", LayerWildcard},
		{artifact.Import{Name: "jakarta.annotation.ManagedBean"}, "jakarta.annotation.ManagedBean", LayerImport},
		{artifact.Import{Name: "javax.annotation.concurrent.ThreadSafe"}, "", ""},
		{artifact.Import{Name: "java.util", Wildcard: true}, "", ""},
	}

	for _, tt := range tests {
		m := runImportChain(fc, tt.imp)
		if m.sig != tt.sig || m.layer != tt.layer {
			t.Errorf("runImportChain(%+v) = (%q, %q), want (%q, %q)", tt.imp, m.sig, m.layer, tt.sig, tt.layer)
		}
	}
}
