// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/addonproc/addonproc/internal/discovery"
	"github.com/addonproc/addonproc/pkg/addon"
)

type (
	// LoadedModule is a module that resolved successfully.
	LoadedModule struct {
		// Path is the dotted module path.
		Path string
		// Module is the linked module.
		Module addon.Module
	}

	// Loader resolves module paths against a catalog.
	Loader struct {
		catalog *addon.Catalog
		strict  bool
		logger  *log.Logger
	}

	// Option configures a Loader.
	Option func(*Loader)
)

// WithCatalog resolves modules against c instead of addon.Default.
func WithCatalog(c *addon.Catalog) Option {
	return func(l *Loader) {
		if c != nil {
			l.catalog = c
		}
	}
}

// WithStrict makes the first module that cannot be loaded fail the whole load
// instead of being reported and skipped.
func WithStrict(strict bool) Option {
	return func(l *Loader) {
		l.strict = strict
	}
}

// WithLogger sets the logger used for load warnings.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		catalog: addon.Default,
		logger:  log.Default().WithPrefix("loader"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Catalog returns the catalog modules are resolved against.
func (l *Loader) Catalog() *addon.Catalog {
	return l.catalog
}

// Load resolves every path in order. Modules that are not linked or whose
// Init fails are reported as warnings and skipped; in strict mode the first
// such failure is returned instead. The resolution result of every module is
// cached by the catalog, so loading the same path again never re-runs Init.
func (l *Loader) Load(ctx context.Context, paths []string) ([]LoadedModule, []discovery.Diagnostic, error) {
	loaded := make([]LoadedModule, 0, len(paths))
	var diags []discovery.Diagnostic

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		mod, err := l.catalog.Resolve(path)
		if err != nil {
			if l.strict {
				return nil, nil, fmt.Errorf("load module: %w", err)
			}
			diag := loadDiagnostic(path, err)
			l.logger.Warn(diag.Message, "module", path, "error", err)
			diags = append(diags, diag)
			continue
		}

		loaded = append(loaded, LoadedModule{Path: path, Module: mod})
	}

	return loaded, diags, nil
}

func loadDiagnostic(path string, err error) discovery.Diagnostic {
	diag := discovery.Diagnostic{
		Severity: discovery.SeverityWarning,
		Path:     path,
		Cause:    err,
	}
	if errors.Is(err, addon.ErrModuleNotLinked) {
		diag.Code = discovery.CodeModuleNotLinked
		diag.Message = fmt.Sprintf("failed to load %q: no package provides this module", path)
	} else {
		diag.Code = discovery.CodeModuleInitFailed
		diag.Message = fmt.Sprintf("failed to load %q: %v", path, errors.Unwrap(err))
	}
	return diag
}
