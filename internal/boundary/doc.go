// SPDX-License-Identifier: MPL-2.0

// Package boundary tracks module roots discovered during a scan and maps
// artifact paths to the module that owns them.
//
// The package enforces phase separation through its types:
//   - catalogue.go: Catalogue, the append-only set written while scanning
//   - boundaries.go: Boundaries, the frozen snapshot produced by Catalogue.Freeze
//   - resolver.go: Resolver, which only accepts a frozen snapshot
//
// A Resolver can therefore never observe a partially populated catalogue.
package boundary
