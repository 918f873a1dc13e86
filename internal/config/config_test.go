// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/addonproc/addonproc/internal/issue"
	"github.com/addonproc/addonproc/internal/testutil"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	loaded, err := LoadWithSources(context.Background(), LoadOptions{
		ConfigDirPath: t.TempDir(),
		BaseDir:       t.TempDir(),
	})
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	if len(loaded.Sources) != 0 {
		t.Errorf("Sources = %v, want none", loaded.Sources)
	}

	cfg := loaded.Config
	want := DefaultConfig()
	if cfg.Root != want.Root {
		t.Errorf("Root = %q, want %q", cfg.Root, want.Root)
	}
	if !slices.Equal(cfg.TargetNames(), want.TargetNames()) {
		t.Errorf("Targets = %v, want %v", cfg.TargetNames(), want.TargetNames())
	}
	if cfg.Layout.InitFile != want.Layout.InitFile {
		t.Errorf("Layout.InitFile = %q, want %q", cfg.Layout.InitFile, want.Layout.InitFile)
	}
}

func TestLoadLayering(t *testing.T) {
	t.Parallel()

	cfgDir := t.TempDir()
	baseDir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.cue"), `
addon_name: "Global"
strict: true
layout: skip_dirs: ["testdata", "vendor"]
`)
	testutil.MustWriteFile(t, filepath.Join(baseDir, LocalConfigFileName), `
addon_name: "Project"
targets: ["panels"]
`)

	loaded, err := LoadWithSources(context.Background(), LoadOptions{ConfigDirPath: cfgDir, BaseDir: baseDir})
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}

	cfg := loaded.Config
	if cfg.AddonName != "Project" {
		t.Errorf("AddonName = %q, want project file to win", cfg.AddonName)
	}
	if !cfg.Strict {
		t.Error("Strict = false, want value from user file")
	}
	if !slices.Equal(cfg.TargetNames(), []string{"panels"}) {
		t.Errorf("Targets = %v, want [panels]", cfg.TargetNames())
	}
	if !slices.Equal(cfg.Layout.SkipDirs, []string{"testdata", "vendor"}) {
		t.Errorf("SkipDirs = %v", cfg.Layout.SkipDirs)
	}
	if cfg.Layout.InitFile != "addon.cue" {
		t.Errorf("InitFile = %q, want default kept", cfg.Layout.InitFile)
	}
	if len(loaded.Sources) != 2 {
		t.Errorf("Sources = %v, want both files", loaded.Sources)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	explicit := filepath.Join(dir, "custom.cue")
	testutil.MustWriteFile(t, explicit, `category: "Tools"`)
	// The project file is ignored when an explicit file is given.
	testutil.MustWriteFile(t, filepath.Join(dir, LocalConfigFileName), `category: "Other"`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: explicit, BaseDir: dir})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Category != "Tools" {
		t.Errorf("Category = %q, want Tools", cfg.Category)
	}
}

func TestLoadExplicitFileMissing(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "missing.cue"),
	})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error type = %T, want *issue.ActionableError", err)
	}
	if !ae.HasSuggestions() {
		t.Error("expected suggestions on missing config error")
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", `unknown_field: 1`},
		{"wrong type", `debug: "yes"`},
		{"bad translations extension", `translations: "strings.txt"`},
		{"empty target", `targets: [""]`},
		{"syntax error", `root: [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := filepath.Join(dir, "bad.cue")
			testutil.MustWriteFile(t, path, tt.content)

			if _, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path}); err == nil {
				t.Fatalf("expected error for %s", tt.content)
			}
		})
	}
}

func TestLoadRejectsInvalidTargets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.cue")
	testutil.MustWriteFile(t, path, `targets: ["../outside"]`)

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("error = %v, want ErrInvalidTarget", err)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ADDONPROC_ADDON_NAME", "FromEnv")
	t.Setenv("ADDONPROC_LAYOUT_INIT_FILE", "init.cue")

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, LocalConfigFileName), `addon_name: "FromFile"`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir(), BaseDir: dir})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AddonName != "FromEnv" {
		t.Errorf("AddonName = %q, want env override", cfg.AddonName)
	}
	if cfg.Layout.InitFile != "init.cue" {
		t.Errorf("InitFile = %q, want env override", cfg.Layout.InitFile)
	}
}

func TestLoadCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestLoadOptionsValidate(t *testing.T) {
	t.Parallel()

	err := LoadOptions{BaseDir: "   "}.Validate()
	if !errors.Is(err, ErrInvalidLoadOptions) {
		t.Fatalf("error = %v, want ErrInvalidLoadOptions", err)
	}
	if err := (LoadOptions{}).Validate(); err != nil {
		t.Fatalf("empty options: %v", err)
	}
}

func TestGenerateCUERoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.AddonName = "Hello"
	cfg.Translations = "i18n/strings.yaml"
	cfg.ReverseTeardown = true

	dir := t.TempDir()
	path := filepath.Join(dir, "generated.cue")
	testutil.MustWriteFile(t, path, GenerateCUE(cfg))

	got, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load generated config: %v\n%s", err, GenerateCUE(cfg))
	}
	if got.AddonName != "Hello" || got.Translations != "i18n/strings.yaml" || !got.ReverseTeardown {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if !slices.Equal(got.Layout.SkipDirs, cfg.Layout.SkipDirs) {
		t.Errorf("SkipDirs = %v, want %v", got.Layout.SkipDirs, cfg.Layout.SkipDirs)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.cue")

	created, err := CreateDefaultConfig(path)
	if err != nil {
		t.Fatalf("CreateDefaultConfig: %v", err)
	}
	if !created {
		t.Fatal("expected file to be created")
	}

	testutil.MustWriteFile(t, path, "// edited\n")
	created, err = CreateDefaultConfig(path)
	if err != nil {
		t.Fatalf("second CreateDefaultConfig: %v", err)
	}
	if created {
		t.Error("existing file must not be overwritten")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "edited") {
		t.Error("existing file content changed")
	}
}

func TestConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir = %q, want %q", got, dir)
	}

	path, err := UserConfigPath()
	if err != nil {
		t.Fatalf("UserConfigPath: %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("UserConfigPath = %q", path)
	}
}
