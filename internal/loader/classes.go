// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"cmp"
	"reflect"
	"slices"

	"github.com/addonproc/addonproc/pkg/addon"
)

// ClassEntry is a collected class together with its registration metadata.
type ClassEntry struct {
	// Class is the exported value, as given by the module.
	Class any
	// Name is the class identifier (see addon.NameOf).
	Name string
	// Capability is the target capability the class implements.
	Capability addon.Capability
	// Priority is the explicit priority or addon.PriorityUnset.
	Priority int
	// Module is the path of the module the class was first found in.
	Module string
}

// Collect returns the registrable classes exported by mods, ordered for
// registration.
//
// Values that are not derived from a capability base are dropped, as are
// classes carrying the disable marker. A class exported by several modules is
// kept once, at the position it was first seen. Positive priorities sort
// ascending; unset and non-positive priorities come last. The sort is stable,
// so ties keep discovery order.
func Collect(mods []LoadedModule, markers *addon.Markers) []ClassEntry {
	if markers == nil {
		markers = addon.NewMarkers()
	}

	var entries []ClassEntry
	seen := make(map[reflect.Type]bool)

	for _, m := range mods {
		for _, cls := range m.Module.Exports() {
			capability, ok := addon.CapabilityOf(cls)
			if !ok || markers.Disabled(cls) {
				continue
			}
			t := addon.TypeOf(cls)
			if seen[t] {
				continue
			}
			seen[t] = true

			priority, _ := markers.Priority(cls)
			entries = append(entries, ClassEntry{
				Class:      cls,
				Name:       addon.NameOf(cls),
				Capability: capability,
				Priority:   priority,
				Module:     m.Path,
			})
		}
	}

	slices.SortStableFunc(entries, func(a, b ClassEntry) int {
		return comparePriority(a.Priority, b.Priority)
	})
	return entries
}

func comparePriority(a, b int) int {
	switch {
	case a > 0 && b > 0:
		return cmp.Compare(a, b)
	case a > 0:
		return -1
	case b > 0:
		return 1
	}
	return 0
}

// ApplyCategory sets category on every panel class that implements
// addon.CategorySetter and returns the number of classes updated. Classes
// exported by value cannot be updated; export a pointer to opt in.
func ApplyCategory(entries []ClassEntry, category string) int {
	if category == "" {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.Capability != addon.CapabilityPanel {
			continue
		}
		if setter, ok := e.Class.(addon.CategorySetter); ok {
			setter.SetCategory(category)
			n++
		}
	}
	return n
}

// ClassValues returns the Class field of every entry, in order.
func ClassValues(entries []ClassEntry) []any {
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = e.Class
	}
	return out
}
