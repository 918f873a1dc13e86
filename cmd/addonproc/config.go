// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/addonproc/addonproc/internal/config"
	"github.com/addonproc/addonproc/internal/issue"
)

// newConfigCommand creates the `addonproc config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage addonproc configuration",
		Long: `Manage addonproc configuration.

The user configuration is stored in:
  - Linux: ~/.config/addonproc/config.cue
  - macOS: ~/Library/Application Support/addonproc/config.cue
  - Windows: %APPDATA%\addonproc\config.cue

A project file named addonproc.cue in the working directory is applied on
top of it, and ADDONPROC_* environment variables on top of both.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, rootFlags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default user configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app.stdout)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app.stdout)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: rootFlags.configPath})
			if err != nil {
				return app.fail(newServiceError(err, issue.ConfigLoadFailedId))
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, rootFlags *rootFlagValues) error {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: rootFlags.configPath})
	if err != nil {
		return app.fail(newServiceError(err, issue.ConfigLoadFailedId))
	}

	w := app.stdout
	keyStyle := ModuleStyle
	valueStyle := SuccessStyle
	none := SubtitleStyle.Render("(not set)")

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	kv := func(key, value string) {
		if value == "" {
			value = none
		} else {
			value = valueStyle.Render(value)
		}
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render(key), value)
	}

	kv("root", cfg.Root)
	kv("targets", strings.Join(cfg.TargetNames(), ", "))
	kv("addon_name", cfg.AddonName)
	kv("category", cfg.Category)
	kv("translations", cfg.Translations)
	kv("debug", fmt.Sprint(cfg.Debug))
	kv("strict", fmt.Sprint(cfg.Strict))
	kv("reverse_teardown", fmt.Sprint(cfg.ReverseTeardown))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("layout"))
	fmt.Fprintf(w, "  source_ext: %s\n", valueStyle.Render(cfg.Layout.SourceExt))
	fmt.Fprintf(w, "  init_file: %s\n", valueStyle.Render(cfg.Layout.InitFile))
	fmt.Fprintf(w, "  skip_dirs: %s\n", valueStyle.Render(strings.Join(cfg.Layout.SkipDirs, ", ")))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprint(cfg.UI.Verbose)))

	return nil
}

func initConfig(w io.Writer) error {
	path, err := config.UserConfigPath()
	if err != nil {
		return err
	}

	created, err := config.CreateDefaultConfig(path)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		fmt.Fprintf(w, "%s configuration already exists at %s\n", SubtitleStyle.Render("•"), path)
		return nil
	}
	fmt.Fprintf(w, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func showConfigPath(w io.Writer) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	userPath, err := config.UserConfigPath()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(w, "Config file: %s%s\n", userPath, existsSuffix(userPath))
	fmt.Fprintf(w, "Project file: %s%s\n", config.LocalConfigFileName, existsSuffix(config.LocalConfigFileName))
	return nil
}

func existsSuffix(path string) string {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return " " + SubtitleStyle.Render("(missing)")
	}
	return ""
}
