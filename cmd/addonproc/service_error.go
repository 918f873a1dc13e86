// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/addonproc/addonproc/internal/discovery"
	"github.com/addonproc/addonproc/internal/issue"
	"github.com/addonproc/addonproc/pkg/addon"
	"github.com/addonproc/addonproc/pkg/addonmgr"
	"github.com/addonproc/addonproc/pkg/modpath"
)

// ServiceError is an error that carries an issue catalog entry for the CLI
// to render next to it. Always create via newServiceError.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID selects the remediation text, zero for none.
	IssueID issue.Id
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{Err: err, IssueID: issueID}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyError maps a failure from the addon pipeline to its issue entry.
// Errors that match nothing are returned unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var id issue.Id
	switch {
	case errors.Is(err, modpath.ErrInvalidRoot):
		id = issue.InvalidRootId
	case errors.Is(err, discovery.ErrNotADirectory):
		id = issue.TargetNotADirectoryId
	case errors.Is(err, discovery.ErrInvalidInitializer):
		id = issue.InitializerParseErrorId
	case errors.Is(err, addon.ErrModuleNotLinked):
		id = issue.ModuleNotLinkedId
	case errors.Is(err, addon.ErrDuplicateMarker):
		id = issue.DuplicateMarkerId
	case errors.Is(err, addonmgr.ErrNoHost):
		id = issue.HostRegistryMissingId
	default:
		var me *addon.ModuleError
		if !errors.As(err, &me) {
			return err
		}
		id = issue.ModuleInitFailedId
	}
	return newServiceError(err, id)
}

// renderServiceError prints the issue help for err, if it carries one.
func renderServiceError(stderr io.Writer, err error) {
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) || svcErr.IssueID == 0 {
		return
	}

	entry := issue.Get(svcErr.IssueID)
	if entry == nil {
		return
	}
	rendered, renderErr := entry.Render(glamourStyle(stderr))
	if renderErr != nil {
		slog.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		return
	}
	fmt.Fprint(stderr, rendered)
}

// glamourStyle picks the "dark" style for terminals and "notty" otherwise,
// so redirected output stays free of escape sequences.
func glamourStyle(w io.Writer) string {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return "dark"
	}
	return "notty"
}
