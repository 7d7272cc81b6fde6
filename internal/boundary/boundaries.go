// SPDX-License-Identifier: MPL-2.0

package boundary

import "golang.org/x/exp/slices"

// Boundaries is the frozen set of module roots. It is only produced by
// Catalogue.Freeze and never changes afterwards.
type Boundaries struct {
	set     map[ModulePath]struct{}
	sorted  []ModulePath
	hasRoot bool
}

// Contains reports whether m was recorded as a boundary.
func (b *Boundaries) Contains(m ModulePath) bool {
	_, ok := b.set[m]
	return ok
}

// HasRoot reports whether a descriptor was found at the repository root.
func (b *Boundaries) HasRoot() bool { return b.hasRoot }

// Modules returns every recorded boundary, root first, then sorted by path.
func (b *Boundaries) Modules() []ModulePath {
	out := make([]ModulePath, 0, len(b.sorted)+1)
	if b.hasRoot {
		out = append(out, Root)
	}
	return append(out, slices.Clone(b.sorted)...)
}

// Len returns the number of recorded boundaries, root included.
func (b *Boundaries) Len() int { return len(b.set) }
