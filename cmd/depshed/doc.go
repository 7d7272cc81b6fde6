// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for depshed.
//
// This package implements the Cobra command hierarchy for the depshed CLI:
// the root command, analyze and prune (the two scan modes), configuration
// management and the issue catalog browser. Commands delegate to services
// wired by App so they can be exercised in tests with in-memory writers.
package cmd
