// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

var (
	// ErrDuplicateModule is returned when a module path is provided twice.
	ErrDuplicateModule = errors.New("duplicate module path")
	// ErrModuleNotLinked is returned when a module path has no catalog entry.
	ErrModuleNotLinked = errors.New("module not linked")
	// ErrInvalidModule is returned when a module path or value is unusable.
	ErrInvalidModule = errors.New("invalid module")

	// Default is the catalog that Provide, Disable and SetPriority write to.
	Default = NewCatalog()
)

type (
	// Catalog maps dotted module paths to linked modules and owns the marker
	// side table for their classes. Resolving a module path through a catalog
	// is the equivalent of importing it: Init runs at most once per entry and
	// its result is cached.
	Catalog struct {
		mu      sync.RWMutex
		entries map[string]*entry
		order   []string
		markers *Markers
	}

	entry struct {
		module  Module
		once    sync.Once
		initErr error
	}

	// ModuleError describes a failure tied to one module path.
	ModuleError struct {
		Path  string
		Cause error
	}
)

// Error implements the error interface.
func (e *ModuleError) Error() string {
	return fmt.Sprintf("module %q: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ModuleError) Unwrap() error { return e.Cause }

// NewCatalog creates an empty catalog with its own marker table.
func NewCatalog() *Catalog {
	return &Catalog{
		entries: make(map[string]*entry),
		markers: NewMarkers(),
	}
}

// Markers returns the catalog's marker side table.
func (c *Catalog) Markers() *Markers {
	return c.markers
}

// Add links module under path.
func (c *Catalog) Add(path string, module Module) error {
	path = strings.TrimSpace(path)
	if path == "" || strings.HasPrefix(path, ".") || strings.HasSuffix(path, ".") {
		return &ModuleError{Path: path, Cause: fmt.Errorf("%w: malformed module path", ErrInvalidModule)}
	}
	if module == nil {
		return &ModuleError{Path: path, Cause: fmt.Errorf("%w: nil module", ErrInvalidModule)}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[path]; exists {
		return &ModuleError{Path: path, Cause: ErrDuplicateModule}
	}
	c.entries[path] = &entry{module: module}
	c.order = append(c.order, path)
	return nil
}

// Resolve returns the module linked under path, running its Init on first
// use. Later calls return the cached result, including a cached Init failure.
func (c *Catalog) Resolve(path string) (Module, error) {
	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if !ok {
		return nil, &ModuleError{Path: path, Cause: ErrModuleNotLinked}
	}

	e.once.Do(func() {
		if initializer, ok := e.module.(Initializer); ok {
			if err := initializer.Init(); err != nil {
				e.initErr = &ModuleError{Path: path, Cause: err}
			}
		}
	})
	if e.initErr != nil {
		return nil, e.initErr
	}
	return e.module, nil
}

// Has reports whether path is linked, without running Init.
func (c *Catalog) Has(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[path]
	return ok
}

// Paths returns the linked module paths in link order.
func (c *Catalog) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order)
}

// Provide links module under path in the Default catalog. It is meant to be
// called from init functions and panics on a malformed or duplicate path.
func Provide(path string, module Module) {
	if err := Default.Add(path, module); err != nil {
		panic(fmt.Sprintf("addon: Provide: %v", err))
	}
}
