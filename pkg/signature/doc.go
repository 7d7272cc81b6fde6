// SPDX-License-Identifier: MPL-2.0

// Package signature defines the closed sets of fully-qualified names that
// block removal of a legacy dependency.
//
// A Catalog is built once from a Rule and is immutable afterwards. It holds
// three disjoint sets: blocking types, blocking annotations, and neutral shims.
// Neutral shims are migration-introduced replacements that reuse the simple
// names of blocking signatures; they never count as blocking. Blocking
// packages are derived from the blocking sets (plus any configured extras)
// and are used to classify wildcard imports.
package signature
