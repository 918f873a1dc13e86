// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/addonproc/addonproc/pkg/addonmgr"
	"github.com/addonproc/addonproc/pkg/host"
)

type planFlagValues struct {
	reverse bool
	debug   bool
}

func newPlanCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &planFlagValues{}

	cmd := &cobra.Command{
		Use:   "plan [target...]",
		Short: "Dry-run registration against an in-memory host",
		Long: `Register the addon with an in-memory host, then unregister it, and print
every host call in order. Nothing outside this process is touched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.Context(), app, rootFlags, flags, args)
		},
	}

	cmd.Flags().BoolVar(&flags.reverse, "reverse", false, "unregister classes in reverse order")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "reload modules after discovery")

	return cmd
}

func runPlan(ctx context.Context, app *App, rootFlags *rootFlagValues, flags *planFlagValues, args []string) error {
	s, err := app.newSession(ctx, rootFlags)
	if err != nil {
		return app.fail(err)
	}
	if flags.reverse {
		s.cfg.ReverseTeardown = true
	}
	if flags.debug {
		s.cfg.Debug = true
	}

	opts, err := app.managerOptions(s, s.targets(args))
	if err != nil {
		return app.fail(err)
	}
	mem := host.NewMemory()
	mgr, err := addonmgr.New(ctx, withHost(opts, mem))
	if err != nil {
		return app.fail(err)
	}
	app.Diagnostics.Render(ctx, append(s.diags, mgr.Diagnostics()...), app.stderr)

	regErr := mgr.Register(ctx)
	writeCalls(app.stdout, "register", mem.Calls())
	if regErr != nil {
		return app.fail(regErr)
	}

	before := len(mem.Calls())
	unregErr := mgr.Unregister(ctx)
	writeCalls(app.stdout, "unregister", mem.Calls()[before:])

	if unregErr != nil {
		return app.fail(errors.Join(fmt.Errorf("teardown incomplete"), unregErr))
	}
	return nil
}

func writeCalls(w io.Writer, title string, calls []host.Call) {
	fmt.Fprintf(w, "%s\n", TitleStyle.Render(title))
	for i, c := range calls {
		if c.Arg == "" {
			fmt.Fprintf(w, "  %2d. %s\n", i+1, c.Op)
			continue
		}
		fmt.Fprintf(w, "  %2d. %s %s\n", i+1, c.Op, ModuleStyle.Render(c.Arg))
	}
}
