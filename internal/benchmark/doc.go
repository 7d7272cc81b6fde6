// SPDX-License-Identifier: MPL-2.0

// Package benchmark provides benchmarks for PGO profile generation.
// They cover the hot paths of a depshed run:
//   - CUE configuration loading and schema validation
//   - Java/Kotlin source reading and fact extraction
//   - Module resolution over a large boundary catalogue
//   - The end-to-end scan of a generated multi-module repository
//
// To generate a profile, run:
//
//	go test -run '^$' -bench . -cpuprofile default.pgo ./internal/benchmark
package benchmark
