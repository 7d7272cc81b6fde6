// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

// Operation names the step depshed was performing when it failed. It reads as
// the end of "failed to ...".
type Operation string

const (
	OpLoadConfig     Operation = "load configuration"
	OpValidateConfig Operation = "validate configuration"
	OpScanRepository Operation = "scan repository"
)

// ActionableError is a failure reported to the user with the catalog page that
// explains it and the steps most likely to fix it.
//
//	return issue.New(issue.OpLoadConfig, path, err).
//		About(issue.ConfigLoadFailedId).
//		Hint("Check that the file contains valid CUE syntax")
type ActionableError struct {
	Op Operation
	// Path is the file or directory involved; empty when none applies.
	Path string
	// Issue is the catalog entry `depshed explain` shows for this failure.
	Issue Id
	Hints []string
	Cause error
}

// New returns an ActionableError for op on path caused by cause.
func New(op Operation, path string, cause error) *ActionableError {
	return &ActionableError{Op: op, Path: path, Cause: cause}
}

// About attaches the catalog entry for the failure.
func (e *ActionableError) About(id Id) *ActionableError {
	e.Issue = id
	return e
}

// Hint appends fix suggestions, shown in order.
func (e *ActionableError) Hint(hints ...string) *ActionableError {
	e.Hints = append(e.Hints, hints...)
	return e
}

// Error returns "failed to <op>[: <path>][: <cause>]".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + string(e.Op)}
	if e.Path != "" {
		parts = append(parts, e.Path)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error { return e.Cause }

// Format renders the message followed by one bulleted line per hint. Verbose
// output also numbers every error in the cause chain.
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())
	if len(e.Hints) > 0 {
		b.WriteString("\n")
		for _, h := range e.Hints {
			b.WriteString("\n  • " + h)
		}
	}
	if verbose && e.Cause != nil {
		b.WriteString("\n\nError chain:")
		for depth, err := 1, e.Cause; err != nil; depth, err = depth+1, errors.Unwrap(err) {
			fmt.Fprintf(&b, "\n  %d. %s", depth, err)
		}
	}
	return b.String()
}

// IssueOf returns the first catalog entry attached to an ActionableError in
// err's chain, or 0.
func IssueOf(err error) Id {
	var ae *ActionableError
	for errors.As(err, &ae) {
		if ae.Issue != 0 {
			return ae.Issue
		}
		err = ae.Cause
	}
	return 0
}
