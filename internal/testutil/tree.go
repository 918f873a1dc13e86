// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/addonproc/addonproc/pkg/addon"
)

// WriteTree creates files under dir. Keys are slash-separated relative paths;
// a key ending in "/" creates an empty directory.
func WriteTree(t testing.TB, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			MustMkdirAll(t, path)
			continue
		}
		MustWriteFile(t, path, content)
	}
}

// NewAddon creates an addon folder called name in a fresh temp dir, populates
// it with files and returns its path.
func NewAddon(t testing.TB, name string, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	MustMkdirAll(t, dir)
	WriteTree(t, dir, files)
	return dir
}

// NewCatalog returns a catalog linking every module in mods.
func NewCatalog(t testing.TB, mods map[string]addon.Module) *addon.Catalog {
	t.Helper()
	c := addon.NewCatalog()
	for path, mod := range mods {
		if err := c.Add(path, mod); err != nil {
			t.Fatalf("Add(%q) returned error: %v", path, err)
		}
	}
	return c
}
