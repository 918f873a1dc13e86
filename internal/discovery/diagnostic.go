// SPDX-License-Identifier: MPL-2.0

package discovery

import "fmt"

const (
	// SeverityWarning indicates a recoverable discovery warning.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal error diagnostic.
	SeverityError Severity = "error"
)

// Diagnostic codes produced by this module.
const (
	CodeDirectoryUnreadable  = "directory_unreadable"
	CodeTargetDuplicate      = "target_duplicate"
	CodeInitializerInvalid   = "initializer_invalid"
	CodeIgnoreEntryUnmatched = "ignore_entry_unmatched"
	CodeModuleNotLinked      = "module_not_linked"
	CodeModuleInitFailed     = "module_init_failed"
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// Diagnostic represents a structured, non-fatal problem that is returned
	// to callers (rather than written to stderr) for consistent rendering.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity
		// Code is a machine-readable identifier (e.g., "module_not_linked").
		Code string
		// Message is the human-readable description.
		Message string
		// Path is the file path or module path associated with this
		// diagnostic (optional).
		Path string
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error
	}
)

// String renders the diagnostic on one line.
func (d Diagnostic) String() string {
	if d.Path == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", d.Severity, d.Message, d.Path)
}

func warning(code, path, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Path:     path,
	}
}

// HasErrors reports whether any diagnostic has SeverityError.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
