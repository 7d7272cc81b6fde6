// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/depshed/depshed/internal/issue"
	"github.com/depshed/depshed/pkg/signature"
)

// writeFailure prints err and, when its chain names a catalog entry, the
// entry's page. An entry that fails to render is logged and skipped.
func writeFailure(w io.Writer, err error, verbose bool) {
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))

	entry := issue.Get(issue.IssueOf(err))
	if entry == nil {
		return
	}
	page, renderErr := entry.Render("dark")
	if renderErr != nil {
		newLogger(w, false).Warn("failed to render issue catalog entry", "issue", entry.Name(), "error", renderErr)
		return
	}
	fmt.Fprint(w, page)
}

// configError attaches a catalog entry to a configuration failure that lacks
// one. Cancellation passes through unchanged.
func configError(err error) error {
	if issue.IssueOf(err) != 0 || errors.Is(err, context.Canceled) {
		return err
	}
	id := issue.ConfigLoadFailedId
	if errors.Is(err, signature.ErrInvalidRule) {
		id = issue.RuleInvalidId
	}
	return issue.New(issue.OpLoadConfig, "", err).About(id)
}

// scanRootError classifies a failure to use root as a permission problem or
// an unusable path.
func scanRootError(root string, err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return issue.New(issue.OpScanRepository, root, err).
			About(issue.PermissionDeniedId).
			Hint("Check that the current user can read the repository")
	}
	return issue.New(issue.OpScanRepository, root, err).
		About(issue.ScanRootInvalidId).
		Hint("Pass an existing directory, e.g. 'depshed analyze /path/to/repository'")
}
