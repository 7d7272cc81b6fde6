// SPDX-License-Identifier: MPL-2.0

// Package scan drives a whole-tree analysis run.
//
// A run has two phases. While the tree is walked, every source file is read
// and reduced to facts, and every marker file records a module boundary; both
// go into a Session, the per-run accumulator. When the walk has finished the
// Session is frozen, facts are grouped by module exactly once, and each
// descriptor that still declares the guarded dependency receives a decision.
//
// File organization:
//   - session.go: Session and Analysis, usable without touching the file system
//   - scanner.go: Scanner, which walks a directory and feeds a Session
//   - report.go: Report, Outcome and Stats
//   - diagnostic.go: non-fatal diagnostics collected during a run
package scan
