// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"fmt"
	"reflect"
)

const (
	// CapabilityOperator marks classes that perform actions.
	CapabilityOperator Capability = iota + 1
	// CapabilityPanel marks classes that draw UI panels.
	CapabilityPanel
	// CapabilityMenu marks classes that draw menus.
	CapabilityMenu
	// CapabilityPreferences marks the addon preferences class.
	CapabilityPreferences
	// CapabilityPropertyGroup marks property container classes.
	CapabilityPropertyGroup
)

// targetCapabilities is the fixed set of capabilities that qualify a class for
// registration, in declaration order.
var targetCapabilities = [...]Capability{
	CapabilityOperator,
	CapabilityPanel,
	CapabilityMenu,
	CapabilityPreferences,
	CapabilityPropertyGroup,
}

type (
	// Capability is one of the base behaviors a class can implement.
	Capability int

	// The class interfaces are satisfied by every type embedding the
	// matching base. They are checked without calling the marker method, so
	// embedding a nil base pointer is safe.
	operatorClass      interface{ isOperator() }
	panelClass         interface{ isPanel() }
	menuClass          interface{ isMenu() }
	preferencesClass   interface{ isPreferences() }
	propertyGroupClass interface{ isPropertyGroup() }

	// Operator is the base for action classes. Embed it in class types.
	Operator struct{}

	// Panel is the base for panel classes. Embed it in class types.
	Panel struct{}

	// Menu is the base for menu classes. Embed it in class types.
	Menu struct{}

	// Preferences is the base for addon preference classes. Embed it in class types.
	Preferences struct{}

	// PropertyGroup is the base for property group classes. Embed it in class types.
	PropertyGroup struct{}

	// Named lets a class choose the identifier shown in logs and passed to the
	// host. Classes without it are named after their Go type.
	Named interface {
		IDName() string
	}

	// CategorySetter is implemented by panel classes that accept the addon
	// category configured on the manager.
	CategorySetter interface {
		SetCategory(category string)
	}
)

func (Operator) isOperator()           {}
func (Panel) isPanel()                 {}
func (Menu) isMenu()                   {}
func (Preferences) isPreferences()     {}
func (PropertyGroup) isPropertyGroup() {}

// String returns the capability name.
func (c Capability) String() string {
	switch c {
	case CapabilityOperator:
		return "operator"
	case CapabilityPanel:
		return "panel"
	case CapabilityMenu:
		return "menu"
	case CapabilityPreferences:
		return "preferences"
	case CapabilityPropertyGroup:
		return "property-group"
	default:
		return fmt.Sprintf("capability(%d)", int(c))
	}
}

// TargetCapabilities returns the capabilities that qualify a class for
// registration.
func TargetCapabilities() []Capability {
	out := make([]Capability, len(targetCapabilities))
	copy(out, targetCapabilities[:])
	return out
}

// CapabilityOf reports the capability of cls. The second result is false when
// cls embeds no base, or when cls is itself one of the bases rather than a
// type derived from it. A type embedding several bases reports the first one
// in TargetCapabilities order.
func CapabilityOf(cls any) (Capability, bool) {
	switch cls.(type) {
	case nil,
		Operator, *Operator,
		Panel, *Panel,
		Menu, *Menu,
		Preferences, *Preferences,
		PropertyGroup, *PropertyGroup:
		return 0, false
	}

	for _, target := range targetCapabilities {
		if implements(cls, target) {
			return target, true
		}
	}
	return 0, false
}

func implements(cls any, c Capability) bool {
	var ok bool
	switch c {
	case CapabilityOperator:
		_, ok = cls.(operatorClass)
	case CapabilityPanel:
		_, ok = cls.(panelClass)
	case CapabilityMenu:
		_, ok = cls.(menuClass)
	case CapabilityPreferences:
		_, ok = cls.(preferencesClass)
	case CapabilityPropertyGroup:
		_, ok = cls.(propertyGroupClass)
	}
	return ok
}

// TypeOf returns the identity used for cls in marker tables and registries.
// A pointer and the value it points to share one identity.
func TypeOf(cls any) reflect.Type {
	t := reflect.TypeOf(cls)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// NameOf returns the identifier of cls.
func NameOf(cls any) string {
	if n, ok := cls.(Named); ok {
		if name := n.IDName(); name != "" {
			return name
		}
	}
	if t := TypeOf(cls); t != nil {
		return t.String()
	}
	return "<nil>"
}
