// SPDX-License-Identifier: MPL-2.0

package addon

type (
	// Module is a unit of addon code linked under a dotted module path.
	Module interface {
		// Exports lists the module's top-level types. Values that do not embed
		// a capability base are ignored by class collection.
		Exports() []any
	}

	// Initializer is implemented by modules that need one-time setup before
	// their exports are read. A failing Init marks the module as broken; it is
	// reported and skipped.
	Initializer interface {
		Init() error
	}

	// Registerer is implemented by modules that run code after all classes
	// have been registered with the host.
	Registerer interface {
		Register() error
	}

	// Unregisterer is implemented by modules that run code after all classes
	// have been unregistered from the host.
	Unregisterer interface {
		Unregister() error
	}

	// Reloader is implemented by modules that can refresh their state in
	// debug mode.
	Reloader interface {
		Reload() error
	}

	// classList is the Module returned by Classes.
	classList []any
)

// Classes returns a Module without lifecycle hooks exporting the given values.
func Classes(classes ...any) Module {
	return classList(classes)
}

// Exports implements Module.
func (l classList) Exports() []any {
	out := make([]any, len(l))
	copy(out, l)
	return out
}
