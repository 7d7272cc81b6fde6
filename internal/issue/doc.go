// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation steps. The issue catalog holds Markdown pages, rendered with
// glamour, that `depshed explain <name>` prints and that the CLI appends to
// configuration and scan-root failures.
package issue
