// SPDX-License-Identifier: MPL-2.0

package issue_test

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/depshed/depshed/internal/issue"
	"github.com/depshed/depshed/pkg/signature"
)

// Causes as the config loader and scanner produce them.
var (
	missingConfig = fmt.Errorf("config file not found: %s", "ci/depshed.cue")
	invalidRule   = fmt.Errorf("rule %q: coordinate %q: %w", "custom", "javax.annotation", signature.ErrInvalidRule)
	unreadable    = &fs.PathError{Op: "open", Path: "/srv/repo/services", Err: fs.ErrPermission}
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *issue.ActionableError
		want string
	}{
		{
			name: "explicit config file missing",
			err:  issue.New(issue.OpLoadConfig, "ci/depshed.cue", missingConfig),
			want: "failed to load configuration: ci/depshed.cue: config file not found: ci/depshed.cue",
		},
		{
			name: "rule without a path",
			err:  issue.New(issue.OpValidateConfig, "", invalidRule),
			want: `failed to validate configuration: rule "custom": coordinate "javax.annotation": invalid rule`,
		},
		{
			name: "scan root without cause",
			err:  issue.New(issue.OpScanRepository, "/srv/repo", nil),
			want: "failed to scan repository: /srv/repo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_Chain(t *testing.T) {
	t.Parallel()

	err := error(issue.New(issue.OpScanRepository, "/srv/repo", unreadable).About(issue.PermissionDeniedId))
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("errors.Is(err, fs.ErrPermission) = false")
	}
	var pathErr *fs.PathError
	if !errors.As(err, &pathErr) || pathErr.Path != "/srv/repo/services" {
		t.Errorf("errors.As(*fs.PathError) = %v", pathErr)
	}

	wrapped := fmt.Errorf("analyze: %w", issue.New(issue.OpValidateConfig, ".depshed.cue", invalidRule))
	if !errors.Is(wrapped, signature.ErrInvalidRule) {
		t.Error("wrapped rule failure should match signature.ErrInvalidRule")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	err := issue.New(issue.OpLoadConfig, ".depshed.cue", fmt.Errorf("decode: %w", invalidRule)).
		About(issue.RuleInvalidId).
		Hint("Check the rule coordinates", "Run 'depshed explain rule-invalid' for the expected rule shape")

	short := err.Format(false)
	wantShort := "failed to load configuration: .depshed.cue: decode: " + invalidRule.Error() + "\n" +
		"\n  • Check the rule coordinates" +
		"\n  • Run 'depshed explain rule-invalid' for the expected rule shape"
	if short != wantShort {
		t.Errorf("Format(false) =\n%s\nwant\n%s", short, wantShort)
	}

	verbose := err.Format(true)
	if !strings.HasPrefix(verbose, wantShort) {
		t.Errorf("Format(true) should start with the short form:\n%s", verbose)
	}
	for _, want := range []string{
		"\n\nError chain:",
		"\n  1. decode: " + invalidRule.Error(),
		"\n  2. " + invalidRule.Error(),
		"\n  3. invalid rule",
	} {
		if !strings.Contains(verbose, want) {
			t.Errorf("Format(true) missing %q:\n%s", want, verbose)
		}
	}

	plain := issue.New(issue.OpScanRepository, "/srv/repo", nil)
	if got := plain.Format(true); got != "failed to scan repository: /srv/repo" {
		t.Errorf("Format(true) without hints or cause = %q", got)
	}
}

func TestIssueOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{"nil", nil, 0},
		{"plain error", missingConfig, 0},
		{"no catalog entry", issue.New(issue.OpLoadConfig, "", missingConfig), 0},
		{
			name: "direct",
			err:  issue.New(issue.OpScanRepository, "/srv/repo", unreadable).About(issue.PermissionDeniedId),
			want: issue.PermissionDeniedId,
		},
		{
			name: "behind fmt wrapping",
			err:  fmt.Errorf("scan: %w", issue.New(issue.OpLoadConfig, "", missingConfig).About(issue.ConfigLoadFailedId)),
			want: issue.ConfigLoadFailedId,
		},
		{
			name: "outer error without entry",
			err: issue.New(issue.OpLoadConfig, "", issue.New(issue.OpValidateConfig, ".depshed.cue", invalidRule).
				About(issue.RuleInvalidId)),
			want: issue.RuleInvalidId,
		},
		{
			name: "outermost entry wins",
			err: issue.New(issue.OpLoadConfig, "", issue.New(issue.OpValidateConfig, "", invalidRule).
				About(issue.RuleInvalidId)).About(issue.ConfigLoadFailedId),
			want: issue.ConfigLoadFailedId,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := issue.IssueOf(tt.err); got != tt.want {
				t.Errorf("IssueOf() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIssueOf_EveryEntryIsInCatalog(t *testing.T) {
	t.Parallel()

	for _, id := range []issue.Id{issue.ConfigLoadFailedId, issue.RuleInvalidId, issue.ScanRootInvalidId, issue.PermissionDeniedId} {
		if issue.Get(id) == nil {
			t.Errorf("issue %d has no catalog entry", id)
		}
	}
}
