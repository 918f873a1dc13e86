// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLoadOptions is the sentinel error wrapped by InvalidLoadOptionsError.
var ErrInvalidLoadOptions = errors.New("invalid load options")

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath string
		// ConfigDirPath overrides the config directory lookup when set.
		ConfigDirPath string
		// BaseDir is searched for the project config file. Defaults to the
		// working directory.
		BaseDir string
	}

	// InvalidLoadOptionsError is returned when LoadOptions fields are
	// whitespace-only.
	InvalidLoadOptionsError struct {
		FieldErrors []error
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	// Loaded is a configuration together with the files it was read from.
	Loaded struct {
		Config  *Config
		Sources []string
	}

	fileProvider struct{}
)

// Validate checks that set fields are not whitespace-only.
func (o LoadOptions) Validate() error {
	var errs []error
	for name, value := range map[string]string{
		"ConfigFilePath": o.ConfigFilePath,
		"ConfigDirPath":  o.ConfigDirPath,
		"BaseDir":        o.BaseDir,
	} {
		if value != "" && strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("%s must not be whitespace-only", name))
		}
	}
	if len(errs) > 0 {
		return &InvalidLoadOptionsError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidLoadOptionsError) Error() string {
	return fmt.Sprintf("invalid load options: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidLoadOptions for errors.Is() compatibility.
func (e *InvalidLoadOptionsError) Unwrap() error { return ErrInvalidLoadOptions }

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	loaded, err := LoadWithSources(ctx, opts)
	if err != nil {
		return nil, err
	}
	return loaded.Config, nil
}

// LoadWithSources loads configuration and reports which files were applied.
func LoadWithSources(ctx context.Context, opts LoadOptions) (*Loaded, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.BaseDir == "" {
		opts.BaseDir = "."
	}
	cfg, sources, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Loaded{Config: cfg, Sources: sources}, nil
}
