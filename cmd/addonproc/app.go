// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/addonproc/addonproc/internal/config"
	"github.com/addonproc/addonproc/internal/discovery"
	"github.com/addonproc/addonproc/internal/i18n"
	"github.com/addonproc/addonproc/internal/issue"
	"github.com/addonproc/addonproc/pkg/addon"
	"github.com/addonproc/addonproc/pkg/addonmgr"
	"github.com/addonproc/addonproc/pkg/host"
)

// codeConfigLoadFailed is the diagnostic code for an unreadable default
// configuration file.
const codeConfigLoadFailed = "config_load_failed"

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives an App and reads configuration and modules through it.
	App struct {
		Config      ConfigProvider
		Catalog     *addon.Catalog
		Diagnostics DiagnosticRenderer
		stdout      io.Writer
		stderr      io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      ConfigProvider
		Catalog     *addon.Catalog
		Diagnostics DiagnosticRenderer
		Stdout      io.Writer
		Stderr      io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// DiagnosticRenderer renders structured diagnostics.
	DiagnosticRenderer interface {
		Render(ctx context.Context, diags []discovery.Diagnostic, w io.Writer)
	}

	// rootFlagValues holds the persistent flags of the root command.
	rootFlagValues struct {
		verbose    bool
		configPath string
		root       string
	}

	// session is the resolved state of one command invocation.
	session struct {
		cfg    *config.Config
		diags  []discovery.Diagnostic
		logger *log.Logger
	}

	defaultDiagnosticRenderer struct{}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Catalog == nil {
		deps.Catalog = addon.Default
	}
	if deps.Diagnostics == nil {
		deps.Diagnostics = &defaultDiagnosticRenderer{}
	}

	return &App{
		Config:      deps.Config,
		Catalog:     deps.Catalog,
		Diagnostics: deps.Diagnostics,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}
}

// newSession loads configuration, applies the root flags and installs the
// logger. A broken explicit --config file is an error; a broken default file
// falls back to defaults with a warning diagnostic.
func (a *App) newSession(ctx context.Context, flags *rootFlagValues) (*session, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	var diags []discovery.Diagnostic
	if err != nil {
		if flags.configPath != "" {
			return nil, newServiceError(err, issue.ConfigLoadFailedId)
		}
		cfg = config.DefaultConfig()
		diags = append(diags, discovery.Diagnostic{
			Severity: discovery.SeverityWarning,
			Code:     codeConfigLoadFailed,
			Message:  fmt.Sprintf("failed to load config, using defaults: %v", err),
			Cause:    err,
		})
	}

	if flags.root != "" {
		cfg.Root = flags.root
	}
	verbose := flags.verbose || cfg.UI.Verbose

	return &session{
		cfg:    cfg,
		diags:  diags,
		logger: newLogger(a.stderr, verbose),
	}, nil
}

// newLogger returns the charm logger used by the pipeline and installs it as
// the slog default. Pipeline warnings are also returned as diagnostics, so
// only errors are logged unless verbose.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.ErrorLevel
	if verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "addonproc",
		Level:  level,
	})
	slog.SetDefault(slog.New(logger))
	return logger
}

// targets returns args when given, else the configured targets.
func (s *session) targets(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return s.cfg.TargetNames()
}

// managerOptions builds addonmgr options from the session. The translation
// table is loaded here so its failures carry their own issue entry.
func (a *App) managerOptions(s *session, targets []string) (addonmgr.Options, error) {
	opts := addonmgr.Options{
		Root:            s.cfg.Root,
		Targets:         targets,
		AddonName:       s.cfg.AddonName,
		Category:        s.cfg.Category,
		Debug:           s.cfg.Debug,
		Strict:          s.cfg.Strict,
		ReverseTeardown: s.cfg.ReverseTeardown,
		Layout:          s.cfg.Layout.DiscoveryLayout(),
		Catalog:         a.Catalog,
		Logger:          s.logger,
	}

	if s.cfg.Translations != "" {
		table, err := i18n.Load(filepath.Clean(s.cfg.Translations))
		if err != nil {
			return opts, newServiceError(err, issue.TranslationsLoadFailedId)
		}
		opts.Translations = table
	}
	return opts, nil
}

// withHost attaches mem as every host collaborator.
func withHost(opts addonmgr.Options, mem *host.Memory) addonmgr.Options {
	opts.Registry = mem
	opts.TranslationService = mem
	opts.Keymaps = mem.Keymaps()
	opts.Properties = mem.Properties()
	return opts
}

// Render writes diagnostics with lipgloss styling, one per line.
func (r *defaultDiagnosticRenderer) Render(_ context.Context, diags []discovery.Diagnostic, w io.Writer) {
	for _, diag := range diags {
		prefix := WarningStyle.Render("warning[" + diag.Code + "]")
		if diag.Severity == discovery.SeverityError {
			prefix = ErrorStyle.Render("error[" + diag.Code + "]")
		}

		if diag.Path != "" {
			_, _ = fmt.Fprintf(w, "%s: %s (%s)\n", prefix, diag.Message, diag.Path)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s: %s\n", prefix, diag.Message)
	}
}
