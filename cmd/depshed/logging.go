// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger returns the run logger. Retention warnings are always shown;
// per-reference findings only in verbose mode.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "depshed",
		Level:  level,
	})
}
