// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/addonproc/addonproc/internal/issue"
	"github.com/addonproc/addonproc/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "addonproc"
	// ConfigFileName is the name of the user config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigFileName is the project config file looked up in the base
	// directory.
	LocalConfigFileName = AppName + "." + ConfigFileExt
	// EnvPrefix prefixes environment variable overrides, e.g.
	// ADDONPROC_ADDON_NAME or ADDONPROC_LAYOUT_INIT_FILE.
	EnvPrefix = "ADDONPROC"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the addonproc configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// newViper returns a viper instance with every key defaulted, so that
// environment overrides apply to all of them.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("root", defaults.Root)
	v.SetDefault("targets", defaults.TargetNames())
	v.SetDefault("addon_name", defaults.AddonName)
	v.SetDefault("category", defaults.Category)
	v.SetDefault("translations", defaults.Translations)
	v.SetDefault("debug", defaults.Debug)
	v.SetDefault("strict", defaults.Strict)
	v.SetDefault("reverse_teardown", defaults.ReverseTeardown)
	v.SetDefault("layout.source_ext", defaults.Layout.SourceExt)
	v.SetDefault("layout.init_file", defaults.Layout.InitFile)
	v.SetDefault("layout.skip_dirs", defaults.Layout.SkipDirs)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state. It returns the config and the files it was read from,
// in the order they were applied.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, []string, error) {
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()
	var sources []string

	if opts.ConfigFilePath != "" {
		// An explicit file is used exclusively.
		if !fileExists(opts.ConfigFilePath) {
			return nil, nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'addonproc config init' to create one").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		if err := loadCUEIntoViper(v, opts.ConfigFilePath); err != nil {
			return nil, nil, loadError(opts.ConfigFilePath, err)
		}
		sources = append(sources, opts.ConfigFilePath)
	} else {
		// User config first, then the project file on top of it.
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, nil, err
		}
		candidates := []string{
			filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
			filepath.Join(opts.BaseDir, LocalConfigFileName),
		}
		for _, path := range candidates {
			if !fileExists(path) {
				continue
			}
			if err := loadCUEIntoViper(v, path); err != nil {
				return nil, nil, loadError(path, err)
			}
			sources = append(sources, path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithSuggestion("Targets must be folders inside the addon folder").
			WithSuggestion("Layout names must be plain file or folder names").
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, sources, nil
}

func loadError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestion("Check that the file contains valid CUE syntax").
		WithSuggestion("Verify the configuration values match the expected schema").
		WithSuggestion("Run 'addonproc config dump' to see a complete example").
		Wrap(err).
		BuildError()
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into
// viper. Fields are optional, so the file is decoded into a map rather than
// the Config struct, which keeps viper defaults and env overrides intact.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.DecodeMap(configSchema, data, "#Config", path)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes a default config file to path unless one
// already exists. It reports whether a file was written.
func CreateDefaultConfig(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}

// UserConfigPath returns the path of the user config file.
func UserConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// GenerateCUE generates a CUE representation of the configuration.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// addonproc configuration file\n\n")

	fmt.Fprintf(&sb, "root: %q\n", cfg.Root)
	sb.WriteString("targets: [")
	for i, t := range cfg.Targets {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", string(t))
	}
	sb.WriteString("]\n")

	if cfg.AddonName != "" {
		fmt.Fprintf(&sb, "addon_name: %q\n", cfg.AddonName)
	}
	if cfg.Category != "" {
		fmt.Fprintf(&sb, "category: %q\n", cfg.Category)
	}
	if cfg.Translations != "" {
		fmt.Fprintf(&sb, "translations: %q\n", cfg.Translations)
	}

	sb.WriteString("\n")
	fmt.Fprintf(&sb, "debug: %v\n", cfg.Debug)
	fmt.Fprintf(&sb, "strict: %v\n", cfg.Strict)
	fmt.Fprintf(&sb, "reverse_teardown: %v\n", cfg.ReverseTeardown)

	sb.WriteString("\nlayout: {\n")
	fmt.Fprintf(&sb, "\tsource_ext: %q\n", cfg.Layout.SourceExt)
	fmt.Fprintf(&sb, "\tinit_file: %q\n", cfg.Layout.InitFile)
	sb.WriteString("\tskip_dirs: [")
	for i, d := range cfg.Layout.SkipDirs {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", d)
	}
	sb.WriteString("]\n")
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}
