// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/addonproc/addonproc/pkg/addon"
	"github.com/addonproc/addonproc/pkg/addonmgr"
)

type (
	scanFlagValues struct {
		strict   bool
		category string
		jsonOut  bool
	}

	// scanReport is the JSON form of a scan.
	scanReport struct {
		Addon       string        `json:"addon"`
		Modules     []string      `json:"modules"`
		Classes     []classReport `json:"classes"`
		Diagnostics []string      `json:"diagnostics,omitempty"`
	}

	classReport struct {
		Name       string `json:"name"`
		Capability string `json:"capability"`
		Priority   *int   `json:"priority,omitempty"`
		Module     string `json:"module"`
	}
)

func newScanCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &scanFlagValues{}

	cmd := &cobra.Command{
		Use:   "scan [target...]",
		Short: "Discover modules and list classes in registration order",
		Long: `Discover the modules of the given targets (or the configured ones) and
list the classes they export, in the order they would be registered.

Modules that are not linked into this binary, or whose initialization
fails, are reported as warnings unless --strict is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), app, rootFlags, flags, args)
		},
	}

	cmd.Flags().BoolVar(&flags.strict, "strict", false, "fail on the first module that cannot be loaded")
	cmd.Flags().StringVar(&flags.category, "category", "", "category passed to panels (overrides the config)")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "print the result as JSON")

	return cmd
}

func runScan(ctx context.Context, app *App, rootFlags *rootFlagValues, flags *scanFlagValues, args []string) error {
	s, err := app.newSession(ctx, rootFlags)
	if err != nil {
		return app.fail(err)
	}
	if flags.strict {
		s.cfg.Strict = true
	}
	if flags.category != "" {
		s.cfg.Category = flags.category
	}

	mgr, err := app.scan(ctx, s, s.targets(args))
	if err != nil {
		return app.fail(err)
	}

	app.Diagnostics.Render(ctx, append(s.diags, mgr.Diagnostics()...), app.stderr)
	if flags.jsonOut {
		return writeScanJSON(app.stdout, mgr)
	}
	writeScan(app.stdout, mgr)
	return nil
}

// scan builds a manager without a host, which discovers and orders classes
// but cannot register them.
func (a *App) scan(ctx context.Context, s *session, targets []string) (*addonmgr.Manager, error) {
	opts, err := a.managerOptions(s, targets)
	if err != nil {
		return nil, err
	}
	return addonmgr.New(ctx, opts)
}

func writeScan(w io.Writer, mgr *addonmgr.Manager) {
	paths := mgr.ModulePaths()
	classes := mgr.Classes()

	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("addon"), mgr.Root().DirName)

	fmt.Fprintf(w, "\n%s\n", TitleStyle.Render(fmt.Sprintf("modules (%d)", len(paths))))
	for _, p := range paths {
		fmt.Fprintf(w, "  %s\n", ModuleStyle.Render(p))
	}

	fmt.Fprintf(w, "\n%s\n", TitleStyle.Render(fmt.Sprintf("classes (%d)", len(classes))))
	nameWidth := 0
	for _, c := range classes {
		nameWidth = max(nameWidth, len(c.Name))
	}
	for i, c := range classes {
		fmt.Fprintf(w, "  %2d. %s  %s  %s  %s\n",
			i+1,
			ModuleStyle.Render(fmt.Sprintf("%-*s", nameWidth, c.Name)),
			capabilityStyle.Render(fmt.Sprintf("%-14s", c.Capability)),
			fmt.Sprintf("%-12s", priorityLabel(c.Priority)),
			SubtitleStyle.Render(c.Module))
	}
}

func writeScanJSON(w io.Writer, mgr *addonmgr.Manager) error {
	report := scanReport{
		Addon:   mgr.Root().DirName,
		Modules: mgr.ModulePaths(),
		Classes: []classReport{},
	}
	for _, c := range mgr.Classes() {
		cr := classReport{Name: c.Name, Capability: c.Capability.String(), Module: c.Module}
		if c.Priority != addon.PriorityUnset {
			p := c.Priority
			cr.Priority = &p
		}
		report.Classes = append(report.Classes, cr)
	}
	for _, d := range mgr.Diagnostics() {
		report.Diagnostics = append(report.Diagnostics, d.String())
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func priorityLabel(p int) string {
	if p == addon.PriorityUnset {
		return "priority=-"
	}
	return "priority=" + strconv.Itoa(p)
}
