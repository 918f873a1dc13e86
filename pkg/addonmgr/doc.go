// SPDX-License-Identifier: MPL-2.0

// Package addonmgr coordinates the lifecycle of one addon: it discovers the
// addon's modules once at construction, orders their classes, and registers
// or unregisters them with the host on request.
//
//	mgr, err := addonmgr.New(ctx, addonmgr.Options{
//		Root:      "/path/to/hello",
//		Targets:   []string{"operators", "panels"},
//		AddonName: "hello",
//		Registry:  hostRegistry,
//	})
//	if err != nil {
//		return err
//	}
//	if err := mgr.Register(ctx); err != nil {
//		return err
//	}
//	defer mgr.Unregister(ctx)
//
// The class list computed at construction is reused by Register and
// Unregister, so both act on exactly the same classes.
package addonmgr
