// SPDX-License-Identifier: MPL-2.0

package boundary

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var defaultSourceRoots = []string{"src/main/java", "src/main/kotlin", "src/test/java", "src/test/kotlin"}

func freezeWith(t *testing.T, dirs ...string) *Boundaries {
	t.Helper()
	c := NewCatalogue()
	for _, d := range dirs {
		if err := c.Record(d); err != nil {
			t.Fatalf("Record(%q) error = %v", d, err)
		}
	}
	return c.Freeze()
}

func mustResolver(t *testing.T, b *Boundaries) *Resolver {
	t.Helper()
	r, err := NewResolver(b, defaultSourceRoots)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	return r
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{`apps\app1\pom.xml`, "apps/app1/pom.xml"},
		{"./apps/app1/", "apps/app1"},
		{"/apps//app1", "apps/app1"},
		{".", ""},
		{"", ""},
		{"apps/./app1/../app2", "apps/app2"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCatalogue_FreezeRejectsRecord(t *testing.T) {
	t.Parallel()

	c := NewCatalogue()
	if err := c.RecordMarker("apps/app1/pom.xml"); err != nil {
		t.Fatalf("RecordMarker() error = %v", err)
	}
	if err := c.RecordMarker("pom.xml"); err != nil {
		t.Fatalf("RecordMarker() error = %v", err)
	}
	b := c.Freeze()
	if !b.HasRoot() || !b.Contains("apps/app1") || b.Len() != 2 {
		t.Errorf("snapshot = %v, want root and apps/app1", b.Modules())
	}

	if err := c.Record("apps/app2"); !errors.Is(err, ErrFrozen) {
		t.Errorf("Record() after Freeze error = %v, want ErrFrozen", err)
	}
	if c.Freeze() != b {
		t.Error("second Freeze() returned a different snapshot")
	}
	if b.Contains("apps/app2") {
		t.Error("snapshot changed after Freeze()")
	}
}

func TestResolver_LongestPrefixWins(t *testing.T) {
	t.Parallel()
	r := mustResolver(t, freezeWith(t, "apps", "apps/app1", "", "module-a", "module-ab"))

	tests := []struct {
		path string
		want Resolution
	}{
		{"apps/app1/src/main/java/com/x/A.java", Resolution{"apps/app1", ViaBoundary}},
		{"apps/app2/src/main/java/com/x/A.java", Resolution{"apps", ViaBoundary}},
		{"apps/app1/pom.xml", Resolution{"apps/app1", ViaBoundary}},
		{"module-ab/src/main/java/B.java", Resolution{"module-ab", ViaBoundary}},
		{"module-a/src/main/java/A.java", Resolution{"module-a", ViaBoundary}},
		{"src/main/java/Root.java", Resolution{Root, ViaRootSource}},
		{"pom.xml", Resolution{Root, ViaFallback}},
		{"scripts/tool.groovy", Resolution{Root, ViaFallback}},
		{"other/lib/src/test/kotlin/T.kt", Resolution{"other/lib", ViaSourceRoot}},
		{`apps\app1\src\main\java\A.java`, Resolution{"apps/app1", ViaBoundary}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			if got := r.Explain(tt.path); got != tt.want {
				t.Errorf("Explain(%q) = %+v, want %+v", tt.path, got, tt.want)
			}
		})
	}
}

func TestResolver_SourceRootWithoutRootBoundary(t *testing.T) {
	t.Parallel()
	r := mustResolver(t, freezeWith(t, "lib"))

	if got := r.Explain("src/main/java/A.java"); got != (Resolution{Root, ViaSourceRoot}) {
		t.Errorf("Explain() = %+v", got)
	}
	// A bare source root directory with nothing below it is not a match.
	if got := r.Explain("svc/src/main/java"); got != (Resolution{Root, ViaFallback}) {
		t.Errorf("Explain() = %+v", got)
	}
}

func TestResolver_OrderIndependent(t *testing.T) {
	t.Parallel()

	dirs := []string{"", "apps", "apps/app1", "apps/app1/sub", "libs/core", "libs/core-ext"}
	paths := []string{
		"apps/app1/sub/src/main/java/A.java",
		"apps/app1/src/main/java/B.java",
		"apps/other/src/main/java/C.java",
		"libs/core-ext/src/main/kotlin/D.kt",
		"libs/core/src/test/java/E.java",
		"libs/unknown/src/main/java/F.java",
		"src/main/java/G.java",
	}

	reference := mustResolver(t, freezeWith(t, dirs...))
	var want []ModulePath
	for _, p := range paths {
		want = append(want, reference.Resolve(p))
	}

	rng := rand.New(rand.NewSource(7))
	for i := range 20 {
		shuffled := append([]string(nil), dirs...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		c := NewCatalogue()
		var wg sync.WaitGroup
		for _, d := range shuffled {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = c.Record(d)
				_ = c.Record(d)
			}()
		}
		wg.Wait()

		r := mustResolver(t, c.Freeze())
		var got []ModulePath
		for _, p := range paths {
			got = append(got, r.Resolve(p))
			// memoized answer is identical
			if again := r.Resolve(p); again != got[len(got)-1] {
				t.Fatalf("Resolve(%q) not idempotent", p)
			}
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("round %d: resolution depends on record order (-want +got):\n%s", i, diff)
		}
	}

	wantModules := []ModulePath{"apps/app1/sub", "apps/app1", "apps", "libs/core-ext", "libs/core", "libs/unknown", Root}
	for i, m := range wantModules {
		if want[i] != m {
			t.Errorf("Resolve(%q) = %q, want %q", paths[i], want[i], m)
		}
	}
}

func TestNewResolver_RequiresSnapshot(t *testing.T) {
	t.Parallel()
	if _, err := NewResolver(nil, defaultSourceRoots); !errors.Is(err, ErrNotFrozen) {
		t.Errorf("NewResolver(nil) error = %v, want ErrNotFrozen", err)
	}
}

func TestModulePath_Label(t *testing.T) {
	t.Parallel()
	for _, tt := range []struct {
		m    ModulePath
		want string
	}{{Root, "."}, {"apps/app1", "apps/app1"}} {
		if got := tt.m.Label(); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", string(tt.m), got, tt.want)
		}
	}
}
