// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/addonproc/addonproc/internal/discovery"
	"github.com/addonproc/addonproc/pkg/modpath"
)

func newCheckCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "check [target...]",
		Short: "Validate the initializer files of the targets",
		Long: `Parse every initializer file below the targets and report all problems
instead of stopping at the first one. Ignore entries that match no folder
or module source are reported as warnings.

Exits with status 1 when any initializer is malformed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), app, rootFlags, args)
		},
	}
}

func runCheck(ctx context.Context, app *App, rootFlags *rootFlagValues, args []string) error {
	s, err := app.newSession(ctx, rootFlags)
	if err != nil {
		return app.fail(err)
	}

	root, err := modpath.NewRoot(s.cfg.Root)
	if err != nil {
		return app.fail(err)
	}

	d := discovery.New(root,
		discovery.WithLayout(s.cfg.Layout.DiscoveryLayout()),
		discovery.WithLogger(s.logger))
	diags, err := d.CheckInitializers(ctx, s.targets(args))
	if err != nil {
		return app.fail(err)
	}

	diags = append(s.diags, diags...)
	app.Diagnostics.Render(ctx, diags, app.stderr)

	if discovery.HasErrors(diags) {
		return &ExitError{Code: 1, Err: fmt.Errorf("initializer check failed")}
	}
	fmt.Fprintf(app.stdout, "%s initializers of %s are valid\n", SuccessStyle.Render("✓"), root.DirName)
	return nil
}
