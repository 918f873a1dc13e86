// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/addonproc/addonproc/internal/watch"
	"github.com/addonproc/addonproc/pkg/modpath"
)

type watchFlagValues struct {
	debounce time.Duration
}

func newWatchCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &watchFlagValues{}

	cmd := &cobra.Command{
		Use:   "watch [target...]",
		Short: "Re-scan the addon whenever its modules change",
		Long: `Scan once, then watch the addon folder and scan again after module
sources, initializer files or the translation table change. Stop with
Ctrl+C.

Modules are linked at build time, so a new source file is reported as not
linked until the binary is rebuilt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), app, rootFlags, flags, args)
		},
	}

	cmd.Flags().DurationVar(&flags.debounce, "debounce", watch.DefaultDebounce, "quiet period before re-scanning")

	return cmd
}

func runWatch(ctx context.Context, app *App, rootFlags *rootFlagValues, flags *watchFlagValues, args []string) error {
	s, err := app.newSession(ctx, rootFlags)
	if err != nil {
		return app.fail(err)
	}
	targets := s.targets(args)

	root, err := modpath.NewRoot(s.cfg.Root)
	if err != nil {
		return app.fail(err)
	}

	rescan := func(ctx context.Context, changed []string) error {
		if len(changed) > 0 {
			fmt.Fprintf(app.stderr, "%s %s\n", SubtitleStyle.Render("changed:"), strings.Join(changed, ", "))
		}
		mgr, err := app.scan(ctx, s, targets)
		if err != nil {
			renderServiceError(app.stderr, classifyError(err))
			return err
		}
		app.Diagnostics.Render(ctx, mgr.Diagnostics(), app.stderr)
		writeScan(app.stdout, mgr)
		return nil
	}

	// A failing first scan is reported but does not stop watching; the
	// next change may fix it.
	_ = rescan(ctx, nil)

	var extra []string
	if s.cfg.Translations != "" {
		if abs, err := filepath.Abs(s.cfg.Translations); err == nil {
			if rel, err := filepath.Rel(root.AddonPath(), abs); err == nil && !strings.HasPrefix(rel, "..") {
				extra = append(extra, filepath.ToSlash(rel))
			}
		}
	}

	w, err := watch.New(watch.Options{
		Root:     root.AddonPath(),
		Layout:   s.cfg.Layout.DiscoveryLayout(),
		Extra:    extra,
		Debounce: flags.debounce,
		OnChange: rescan,
		Logger:   s.logger,
	})
	if err != nil {
		return app.fail(err)
	}

	fmt.Fprintf(app.stderr, "%s %s\n", SubtitleStyle.Render("watching"), root.AddonPath())
	return w.Run(ctx)
}
