// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestTargetIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target Target
		want   bool
	}{
		{"operators", true},
		{"panels/extra", true},
		{"", false},
		{"  ", false},
		{"/abs", false},
		{"..", false},
		{"../sibling", false},
		{"a/../../b", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.target), func(t *testing.T) {
			t.Parallel()

			got, errs := tt.target.IsValid()
			if got != tt.want {
				t.Fatalf("IsValid(%q) = %v, want %v", tt.target, got, tt.want)
			}
			if !got && !errors.Is(errs[0], ErrInvalidTarget) {
				t.Errorf("error %v does not wrap ErrInvalidTarget", errs[0])
			}
		})
	}
}

func TestLayoutConfigIsValid(t *testing.T) {
	t.Parallel()

	if ok, errs := DefaultConfig().Layout.IsValid(); !ok {
		t.Fatalf("default layout invalid: %v", errs)
	}

	bad := LayoutConfig{SourceExt: "a/b", InitFile: "dir/addon.cue", SkipDirs: []string{""}}
	ok, errs := bad.IsValid()
	if ok {
		t.Fatal("expected invalid layout")
	}
	if len(errs) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(errs), errs)
	}
	for _, err := range errs {
		if !errors.Is(err, ErrInvalidLayout) {
			t.Errorf("error %v does not wrap ErrInvalidLayout", err)
		}
	}
}

func TestConfigIsValidAggregates(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Targets = append(cfg.Targets, "", "/abs")
	cfg.Layout.InitFile = "x/y"

	ok, errs := cfg.IsValid()
	if ok {
		t.Fatal("expected invalid config")
	}
	var ice *InvalidConfigError
	if !errors.As(errs[0], &ice) {
		t.Fatalf("error type = %T", errs[0])
	}
	if len(ice.FieldErrors) != 3 {
		t.Errorf("FieldErrors = %d, want 3", len(ice.FieldErrors))
	}
	if !errors.Is(errs[0], ErrInvalidConfig) {
		t.Error("expected ErrInvalidConfig")
	}
}

func TestDiscoveryLayout(t *testing.T) {
	t.Parallel()

	l := LayoutConfig{SourceExt: ".star", InitFile: "init.cue", SkipDirs: []string{"cache"}}.DiscoveryLayout()
	if l.SourceExt != ".star" || l.InitFile != "init.cue" || len(l.SkipDirs) != 1 {
		t.Errorf("DiscoveryLayout = %+v", l)
	}
}
