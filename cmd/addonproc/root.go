// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the addonproc command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "addonproc",
		Short: "Discover and register addon modules",
		Long: TitleStyle.Render("addonproc") + SubtitleStyle.Render(" - addon module discovery and lifecycle registration") + `

addonproc walks the target folders of an addon, resolves every module
source it finds against the linked module catalog and orders the exported
classes for registration with a host.

` + SubtitleStyle.Render("Examples:") + `
  addonproc scan                     Discover the configured targets
  addonproc scan operators           Discover a single target
  addonproc check                    Validate every addon.cue initializer
  addonproc plan                     Dry-run register and unregister
  addonproc watch                    Re-scan whenever the addon changes
  addonproc config show              Show the effective configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is the user config plus ./addonproc.cue)")
	rootCmd.PersistentFlags().StringVar(&flags.root, "root", "", "addon folder, or a file inside it (overrides the config)")

	rootCmd.AddCommand(
		newScanCommand(app, flags),
		newCheckCommand(app, flags),
		newPlanCommand(app, flags),
		newWatchCommand(app, flags),
		newConfigCommand(app, flags),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command and exits with the command's exit code.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// fail classifies err, prints the matching issue help and returns err for
// cobra to report.
func (a *App) fail(err error) error {
	err = classifyError(err)
	renderServiceError(a.stderr, err)
	return err
}
