// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for addonproc.
//
// The root command is built by NewRootCommand from an App, which bundles the
// configuration provider, the module catalog and the output writers. Command
// handlers never call os.Exit; non-zero exits are signalled with ExitError.
package cmd
