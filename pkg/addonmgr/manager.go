// SPDX-License-Identifier: MPL-2.0

package addonmgr

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/addonproc/addonproc/internal/discovery"
	"github.com/addonproc/addonproc/internal/loader"
	"github.com/addonproc/addonproc/pkg/addon"
	"github.com/addonproc/addonproc/pkg/modpath"
)

// ErrNoHost is returned by operations that need a host registry when none
// was configured.
var ErrNoHost = errors.New("no host registry configured")

type (
	// Manager owns the discovered modules and ordered classes of one addon.
	Manager struct {
		opts    Options
		root    modpath.Root
		modules []LoadedModule
		classes []ClassEntry
		diags   []Diagnostic

		logger  *log.Logger
		tracer  trace.Tracer
		metrics instruments
	}

	instruments struct {
		registered   metric.Int64Counter
		unregistered metric.Int64Counter
	}

	// HookError reports a failing module lifecycle hook.
	HookError struct {
		Module string
		Hook   string
		Cause  error
	}
)

// Error implements the error interface.
func (e *HookError) Error() string {
	return fmt.Sprintf("module %q: %s hook: %v", e.Module, e.Hook, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *HookError) Unwrap() error { return e.Cause }

// New resolves the addon root, adds it to the module search path, discovers
// and loads the addon's modules and orders their classes. The addon name is
// handed to the properties manager. In debug mode with a host registry the
// modules are reloaded once.
func New(ctx context.Context, opts Options) (*Manager, error) {
	opts = opts.withDefaults()

	m := &Manager{
		opts:   opts,
		logger: opts.Logger,
		tracer: opts.TracerProvider.Tracer(instrumentationName),
	}
	if err := m.initInstruments(); err != nil {
		return nil, err
	}

	ctx, span := m.tracer.Start(ctx, "addonmgr.discover",
		trace.WithAttributes(attribute.StringSlice("addon.targets", opts.Targets)))
	defer span.End()

	root, err := modpath.NewRoot(opts.Root)
	if err != nil {
		return nil, spanError(span, err)
	}
	m.root = root
	if modpath.Search.Add(root.Path) {
		m.logger.Debug("added addon parent to search path", "path", root.Path)
	}

	d := discovery.New(root, discovery.WithLayout(opts.Layout), discovery.WithLogger(m.logger))
	found, err := d.Discover(ctx, opts.Targets)
	if err != nil {
		return nil, spanError(span, err)
	}
	m.diags = append(m.diags, found.Diagnostics...)

	l := loader.New(
		loader.WithCatalog(opts.Catalog),
		loader.WithStrict(opts.Strict),
		loader.WithLogger(m.logger),
	)
	mods, loadDiags, err := l.Load(ctx, found.Modules)
	if err != nil {
		return nil, spanError(span, err)
	}
	m.modules = mods
	m.diags = append(m.diags, loadDiags...)

	m.classes = loader.Collect(mods, opts.Catalog.Markers())
	if n := loader.ApplyCategory(m.classes, opts.Category); n > 0 {
		m.logger.Debug("applied category", "category", opts.Category, "panels", n)
	}

	span.SetAttributes(
		attribute.Int("addon.modules", len(m.modules)),
		attribute.Int("addon.classes", len(m.classes)),
		attribute.Int("addon.diagnostics", len(m.diags)),
	)
	m.logger.Debug("discovered addon",
		"addon", root.DirName, "modules", len(m.modules), "classes", len(m.classes))

	m.opts.Properties.SetName(opts.AddonName)

	if opts.Debug && opts.Registry != nil {
		if err := m.Reload(ctx); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Manager) initInstruments() error {
	meter := m.opts.MeterProvider.Meter(instrumentationName)
	var err error
	m.metrics.registered, err = meter.Int64Counter("addonproc.classes.registered",
		metric.WithDescription("Classes registered with the host"))
	if err != nil {
		return fmt.Errorf("create registered counter: %w", err)
	}
	m.metrics.unregistered, err = meter.Int64Counter("addonproc.classes.unregistered",
		metric.WithDescription("Classes unregistered from the host"))
	if err != nil {
		return fmt.Errorf("create unregistered counter: %w", err)
	}
	return nil
}

// Root returns the resolved addon root.
func (m *Manager) Root() modpath.Root { return m.root }

// Modules returns the loaded modules in discovery order.
func (m *Manager) Modules() []LoadedModule {
	return slices.Clone(m.modules)
}

// ModulePaths returns the paths of the loaded modules in discovery order.
func (m *Manager) ModulePaths() []string {
	out := make([]string, len(m.modules))
	for i, mod := range m.modules {
		out[i] = mod.Path
	}
	return out
}

// Classes returns the collected classes in registration order.
func (m *Manager) Classes() []ClassEntry {
	return slices.Clone(m.classes)
}

// Diagnostics returns the non-fatal problems found during construction.
func (m *Manager) Diagnostics() []Diagnostic {
	return slices.Clone(m.diags)
}

// Register registers every class with the host in priority order, then runs
// the Register hook of every module that has one, in discovery order, then
// registers the translation table when both a table and an addon name are
// set. The first failure is returned.
func (m *Manager) Register(ctx context.Context) error {
	ctx, span := m.tracer.Start(ctx, "addonmgr.register")
	defer span.End()

	if m.opts.Registry == nil {
		return spanError(span, ErrNoHost)
	}

	for _, c := range m.classes {
		if err := m.opts.Registry.RegisterClass(c.Class); err != nil {
			return spanError(span, fmt.Errorf("register class %s: %w", c.Name, err))
		}
		m.metrics.registered.Add(ctx, 1, metric.WithAttributes(attribute.String("capability", c.Capability.String())))
		m.logger.Debug("registered class", "class", c.Name, "priority", c.Priority)
	}

	for _, mod := range m.modules {
		if hook, ok := mod.Module.(addon.Registerer); ok {
			if err := hook.Register(); err != nil {
				return spanError(span, &HookError{Module: mod.Path, Hook: "register", Cause: err})
			}
		}
	}

	if m.hasTranslations() {
		if err := m.opts.TranslationService.Register(m.opts.AddonName, m.opts.Translations); err != nil {
			return spanError(span, fmt.Errorf("register translations: %w", err))
		}
	}

	span.SetAttributes(attribute.Int("addon.classes", len(m.classes)))
	return nil
}

// Unregister unregisters every class from the host, runs the Unregister hook
// of every module that has one, tears down the keymap and properties
// managers and unregisters the translation table. Classes are visited in
// registration order unless ReverseTeardown is set. Teardown continues past
// failures; all of them are returned joined.
func (m *Manager) Unregister(ctx context.Context) error {
	ctx, span := m.tracer.Start(ctx, "addonmgr.unregister")
	defer span.End()

	if m.opts.Registry == nil {
		return spanError(span, ErrNoHost)
	}

	classes := m.classes
	if m.opts.ReverseTeardown {
		classes = slices.Clone(classes)
		slices.Reverse(classes)
	}

	var errs []error
	for _, c := range classes {
		if err := m.opts.Registry.UnregisterClass(c.Class); err != nil {
			errs = append(errs, fmt.Errorf("unregister class %s: %w", c.Name, err))
			continue
		}
		m.metrics.unregistered.Add(ctx, 1, metric.WithAttributes(attribute.String("capability", c.Capability.String())))
	}

	for _, mod := range m.modules {
		if hook, ok := mod.Module.(addon.Unregisterer); ok {
			if err := hook.Unregister(); err != nil {
				errs = append(errs, &HookError{Module: mod.Path, Hook: "unregister", Cause: err})
			}
		}
	}

	if err := m.opts.Keymaps.Unregister(); err != nil {
		errs = append(errs, fmt.Errorf("unregister keymaps: %w", err))
	}
	if err := m.opts.Properties.Unregister(); err != nil {
		errs = append(errs, fmt.Errorf("unregister properties: %w", err))
	}
	if m.hasTranslations() {
		if err := m.opts.TranslationService.Unregister(m.opts.AddonName); err != nil {
			errs = append(errs, fmt.Errorf("unregister translations: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return spanError(span, err)
	}
	return nil
}

// Reload runs the Reload hook of every module that has one, in discovery
// order. It requires a host registry.
func (m *Manager) Reload(ctx context.Context) error {
	_, span := m.tracer.Start(ctx, "addonmgr.reload")
	defer span.End()

	if m.opts.Registry == nil {
		return spanError(span, ErrNoHost)
	}

	reloaded := 0
	for _, mod := range m.modules {
		hook, ok := mod.Module.(addon.Reloader)
		if !ok {
			continue
		}
		if err := hook.Reload(); err != nil {
			return spanError(span, &HookError{Module: mod.Path, Hook: "reload", Cause: err})
		}
		reloaded++
	}

	span.SetAttributes(attribute.Int("addon.reloaded", reloaded))
	m.logger.Debug("reloaded modules", "count", reloaded)
	return nil
}

func (m *Manager) hasTranslations() bool {
	return m.opts.AddonName != "" && m.opts.Translations.Len() > 0
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
