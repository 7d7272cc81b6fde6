// SPDX-License-Identifier: MPL-2.0

package scan

const (
	// SeverityWarning indicates a recoverable problem or a retained module.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal failure affecting one file.
	SeverityError Severity = "error"

	// CodeSourceUnreadable is reported when a source file cannot be read.
	CodeSourceUnreadable = "source_unreadable"
	// CodeDescriptorUnreadable is reported when a descriptor cannot be read.
	CodeDescriptorUnreadable = "descriptor_unreadable"
	// CodeDescriptorMalformed is reported when a descriptor cannot be parsed.
	CodeDescriptorMalformed = "descriptor_malformed"
	// CodeDescriptorWriteFailed is reported when an edited descriptor cannot
	// be written back.
	CodeDescriptorWriteFailed = "descriptor_write_failed"
	// CodeDependencyRetained is reported for each module that must keep the
	// dependency.
	CodeDependencyRetained = "dependency_retained"
	// CodeGitignoreUnreadable is reported when the root .gitignore exists but
	// cannot be read.
	CodeGitignoreUnreadable = "gitignore_unreadable"
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// Diagnostic is a structured, non-fatal problem found during a run. It is
	// returned to callers rather than printed, so the CLI decides how to
	// render it.
	Diagnostic struct {
		// Severity is the diagnostic level.
		Severity Severity `json:"severity" toml:"severity"`
		// Code is a machine-readable identifier (e.g., "source_unreadable").
		Code string `json:"code" toml:"code"`
		// Message is the human-readable description.
		Message string `json:"message" toml:"message"`
		// Path is the repository-relative file path, if any.
		Path string `json:"path,omitempty" toml:"path,omitempty"`
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error `json:"-" toml:"-"`
	}
)
