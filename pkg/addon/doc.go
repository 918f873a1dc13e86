// SPDX-License-Identifier: MPL-2.0

// Package addon is the authoring API for addon modules.
//
// An addon is a directory tree of Go packages. Every source file in the tree
// is a module identified by its dotted path ("hello.operators.greet") and
// links itself into the process by calling Provide from an init function:
//
//	func init() {
//		addon.Provide("hello.operators.greet", addon.Classes(Greet{}, GreetAll{}))
//	}
//
// Classes are ordinary Go types that embed exactly one of the target
// capability bases: Operator, Panel, Menu, Preferences or PropertyGroup.
// Registration order and opt-outs are declared through the marker side table:
//
//	addon.MustSetPriority(Greet{}, 1)
//	addon.MustDisable(Experimental{})
//
// Modules can take part in the addon lifecycle by implementing Initializer,
// Registerer, Unregisterer or Reloader.
package addon
