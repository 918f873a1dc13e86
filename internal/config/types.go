// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/addonproc/addonproc/internal/discovery"
)

var (
	// ErrInvalidTarget is the sentinel error wrapped by InvalidTargetError.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrInvalidLayout is the sentinel error wrapped by InvalidLayoutError.
	ErrInvalidLayout = errors.New("invalid layout")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// Target is a subfolder of the addon folder that takes part in discovery.
	Target string

	// InvalidTargetError is returned when a Target is empty, absolute or
	// escapes the addon folder.
	InvalidTargetError struct {
		Value  Target
		Reason string
	}

	// LayoutConfig configures which files and folders are discovered.
	LayoutConfig struct {
		// SourceExt is the extension of module source files.
		SourceExt string `json:"source_ext" mapstructure:"source_ext"`
		// InitFile is the per-directory initializer file name.
		InitFile string `json:"init_file" mapstructure:"init_file"`
		// SkipDirs are cache folder names that are never visited.
		SkipDirs []string `json:"skip_dirs" mapstructure:"skip_dirs"`
	}

	// InvalidLayoutError is returned when a LayoutConfig field is unusable.
	InvalidLayoutError struct {
		Field  string
		Value  string
		Reason string
	}

	// UIConfig configures CLI output.
	UIConfig struct {
		// Verbose enables debug logging and full error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// Config is the addonproc configuration.
	Config struct {
		// Root is the addon folder, or a file inside it.
		Root string `json:"root" mapstructure:"root"`
		// Targets are the subfolders to discover, in registration order.
		Targets []Target `json:"targets" mapstructure:"targets"`
		// AddonName is the addon display name.
		AddonName string `json:"addon_name" mapstructure:"addon_name"`
		// Category is passed to panels that accept one.
		Category string `json:"category" mapstructure:"category"`
		// Translations is the path of a translation table file.
		Translations string `json:"translations" mapstructure:"translations"`
		// Debug reloads modules after discovery when a host is present.
		Debug bool `json:"debug" mapstructure:"debug"`
		// Strict turns module load warnings into errors.
		Strict bool `json:"strict" mapstructure:"strict"`
		// ReverseTeardown unregisters classes in reverse order.
		ReverseTeardown bool `json:"reverse_teardown" mapstructure:"reverse_teardown"`
		// Layout configures discovery.
		Layout LayoutConfig `json:"layout" mapstructure:"layout"`
		// UI configures CLI output.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// InvalidConfigError aggregates the field errors of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	layout := discovery.DefaultLayout()
	return &Config{
		Root:    ".",
		Targets: []Target{"operators", "panels"},
		Layout: LayoutConfig{
			SourceExt: layout.SourceExt,
			InitFile:  layout.InitFile,
			SkipDirs:  layout.SkipDirs,
		},
	}
}

// String returns the target name.
func (t Target) String() string { return string(t) }

// IsValid returns whether the Target names a relative folder inside the
// addon folder.
func (t Target) IsValid() (bool, []error) {
	s := string(t)
	switch {
	case strings.TrimSpace(s) == "":
		return false, []error{&InvalidTargetError{Value: t, Reason: "must not be empty"}}
	case filepath.IsAbs(s) || strings.HasPrefix(s, "/"):
		return false, []error{&InvalidTargetError{Value: t, Reason: "must be relative to the addon folder"}}
	case s == ".." || strings.HasPrefix(filepath.ToSlash(filepath.Clean(s)), "../"):
		return false, []error{&InvalidTargetError{Value: t, Reason: "must not leave the addon folder"}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid target %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidTarget for errors.Is() compatibility.
func (e *InvalidTargetError) Unwrap() error { return ErrInvalidTarget }

// IsValid returns whether the layout can be used for discovery.
func (l LayoutConfig) IsValid() (bool, []error) {
	var errs []error
	if strings.ContainsAny(l.SourceExt, `/\ `) {
		errs = append(errs, &InvalidLayoutError{Field: "source_ext", Value: l.SourceExt, Reason: "must be a bare file extension"})
	}
	if strings.ContainsAny(l.InitFile, `/\`) {
		errs = append(errs, &InvalidLayoutError{Field: "init_file", Value: l.InitFile, Reason: "must be a file name, not a path"})
	}
	for _, d := range l.SkipDirs {
		if strings.TrimSpace(d) == "" || strings.ContainsAny(d, `/\`) {
			errs = append(errs, &InvalidLayoutError{Field: "skip_dirs", Value: d, Reason: "must be a folder name"})
		}
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidLayoutError) Error() string {
	return fmt.Sprintf("invalid layout.%s %q: %s", e.Field, e.Value, e.Reason)
}

// Unwrap returns ErrInvalidLayout for errors.Is() compatibility.
func (e *InvalidLayoutError) Unwrap() error { return ErrInvalidLayout }

// DiscoveryLayout converts the layout for the discovery package. Empty fields
// fall back to the discovery defaults.
func (l LayoutConfig) DiscoveryLayout() discovery.Layout {
	return discovery.Layout{
		SourceExt: l.SourceExt,
		InitFile:  l.InitFile,
		SkipDirs:  l.SkipDirs,
	}
}

// TargetNames returns the targets as plain strings.
func (c Config) TargetNames() []string {
	out := make([]string, len(c.Targets))
	for i, t := range c.Targets {
		out[i] = string(t)
	}
	return out
}

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for _, t := range c.Targets {
		if valid, fieldErrs := t.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := c.Layout.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
