// SPDX-License-Identifier: MPL-2.0

package addonmgr

import (
	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/addonproc/addonproc/internal/discovery"
	"github.com/addonproc/addonproc/internal/loader"
	"github.com/addonproc/addonproc/pkg/addon"
	"github.com/addonproc/addonproc/pkg/host"
)

const instrumentationName = "github.com/addonproc/addonproc/pkg/addonmgr"

type (
	// Layout describes which files and folders of an addon tree take part in
	// discovery. Empty fields fall back to the defaults.
	Layout = discovery.Layout

	// Diagnostic is a non-fatal problem found while building the manager.
	Diagnostic = discovery.Diagnostic

	// LoadedModule is a module that was discovered and resolved.
	LoadedModule = loader.LoadedModule

	// ClassEntry is a collected class with its registration metadata.
	ClassEntry = loader.ClassEntry

	// Options configures a Manager.
	Options struct {
		// Root is the addon folder, or a file inside it.
		Root string
		// Targets are the subfolders of the addon folder to discover, in
		// registration order.
		Targets []string
		// AddonName is the display name passed to the properties manager
		// and used to register translations.
		AddonName string
		// Translations is registered under AddonName when both are set.
		Translations host.TranslationTable
		// Category is passed to panel classes implementing
		// addon.CategorySetter.
		Category string
		// Debug reloads every module after construction when a host
		// registry is present.
		Debug bool
		// Strict fails construction on the first module that cannot be
		// loaded instead of reporting it as a diagnostic.
		Strict bool
		// ReverseTeardown unregisters classes in reverse registration order.
		ReverseTeardown bool
		// Layout overrides the default discovery layout.
		Layout Layout

		// Catalog resolves module paths. Defaults to addon.Default.
		Catalog *addon.Catalog
		// Registry is the host class registry. Register, Unregister and
		// Reload fail with ErrNoHost when it is nil.
		Registry host.Registry
		// TranslationService receives the translation table.
		TranslationService host.Translations
		// Keymaps is torn down by Unregister.
		Keymaps host.KeymapManager
		// Properties receives the addon name and is torn down by Unregister.
		Properties host.PropertiesManager

		// Logger defaults to the charm default logger prefixed "addonproc".
		Logger *log.Logger
		// TracerProvider defaults to the global provider.
		TracerProvider trace.TracerProvider
		// MeterProvider defaults to the global provider.
		MeterProvider metric.MeterProvider
	}
)

func (o Options) withDefaults() Options {
	if o.Catalog == nil {
		o.Catalog = addon.Default
	}
	if o.TranslationService == nil {
		o.TranslationService = host.NopTranslations()
	}
	if o.Keymaps == nil {
		o.Keymaps = host.NopKeymaps()
	}
	if o.Properties == nil {
		o.Properties = host.NopProperties()
	}
	if o.Logger == nil {
		o.Logger = log.Default().WithPrefix("addonproc")
	}
	if o.TracerProvider == nil {
		o.TracerProvider = otel.GetTracerProvider()
	}
	if o.MeterProvider == nil {
		o.MeterProvider = otel.GetMeterProvider()
	}
	return o
}
