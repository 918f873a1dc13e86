// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"testing"

	"github.com/addonproc/addonproc/internal/testutil"
	"github.com/addonproc/addonproc/pkg/modpath"
)

// writeTree creates files under dir; see testutil.WriteTree.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	testutil.WriteTree(t, dir, files)
}

// newTestDiscovery creates an addon folder named "hello" in a temp dir,
// populates it, and returns a Discovery rooted at it.
func newTestDiscovery(t *testing.T, files map[string]string, opts ...Option) *Discovery {
	t.Helper()
	root, err := modpath.NewRoot(testutil.NewAddon(t, "hello", files))
	if err != nil {
		t.Fatalf("NewRoot() returned error: %v", err)
	}
	return New(root, opts...)
}
