// SPDX-License-Identifier: MPL-2.0

package boundary

import (
	"errors"
	"path"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// ViaBoundary means the longest recorded boundary prefixing the path won.
	ViaBoundary Via = "boundary"
	// ViaRootSource means the path lies directly under a source root of the
	// recorded root module.
	ViaRootSource Via = "root-source-root"
	// ViaSourceRoot means no boundary matched and the module was derived by
	// cutting the path at a source root.
	ViaSourceRoot Via = "source-root-heuristic"
	// ViaFallback means nothing matched and the root module was assumed.
	ViaFallback Via = "root-fallback"

	// DefaultCacheSize is the number of memoized resolutions kept by a Resolver.
	DefaultCacheSize = 4096
)

// ErrNotFrozen is returned when a Resolver is built without a snapshot.
var ErrNotFrozen = errors.New("resolver requires frozen boundaries")

type (
	// Via names the rule that produced a Resolution.
	Via string

	// Resolution is the owning module of a path and how it was found.
	Resolution struct {
		Module ModulePath
		Via    Via
	}

	// Resolver maps artifact paths to module paths against a frozen set of
	// boundaries. Results are memoized; it is safe for concurrent use.
	Resolver struct {
		boundaries  *Boundaries
		sourceRoots [][]string
		cache       *lru.Cache[string, Resolution]
	}
)

// NewResolver returns a Resolver for b. sourceRoots are the configured main and
// test source roots ("src/main/java"); empty entries are ignored.
func NewResolver(b *Boundaries, sourceRoots []string) (*Resolver, error) {
	if b == nil {
		return nil, ErrNotFrozen
	}
	cache, err := lru.New[string, Resolution](DefaultCacheSize)
	if err != nil {
		return nil, err
	}

	r := &Resolver{boundaries: b, cache: cache}
	for _, root := range sourceRoots {
		if n := Normalize(root); n != "" {
			r.sourceRoots = append(r.sourceRoots, strings.Split(n, "/"))
		}
	}
	return r, nil
}

// Resolve returns the module owning p.
func (r *Resolver) Resolve(p string) ModulePath {
	return r.Explain(p).Module
}

// Explain resolves p and reports which rule decided it.
func (r *Resolver) Explain(p string) Resolution {
	p = Normalize(p)
	if res, ok := r.cache.Get(p); ok {
		return res
	}
	res := r.resolve(p)
	r.cache.Add(p, res)
	return res
}

func (r *Resolver) resolve(p string) Resolution {
	// Walking parents from the deepest one yields the longest segment-aligned
	// boundary first; "module-a" is never a parent of "module-ab/...".
	for dir := parent(p); dir != ""; dir = parent(dir) {
		if r.boundaries.Contains(ModulePath(dir)) {
			return Resolution{Module: ModulePath(dir), Via: ViaBoundary}
		}
	}

	segments := strings.Split(p, "/")
	for i := range segments {
		if !r.underSourceRootAt(segments, i) {
			continue
		}
		if i == 0 && r.boundaries.HasRoot() {
			return Resolution{Module: Root, Via: ViaRootSource}
		}
		return Resolution{Module: ModulePath(strings.Join(segments[:i], "/")), Via: ViaSourceRoot}
	}
	return Resolution{Module: Root, Via: ViaFallback}
}

// underSourceRootAt reports whether a configured source root starts at
// segments[i] and the path continues below it.
func (r *Resolver) underSourceRootAt(segments []string, i int) bool {
	for _, root := range r.sourceRoots {
		if i+len(root) >= len(segments) {
			continue
		}
		matched := true
		for j, seg := range root {
			if segments[i+j] != seg {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

func parent(p string) string {
	if p == "" {
		return ""
	}
	d := path.Dir(p)
	if d == "." || d == "/" {
		return ""
	}
	return d
}
