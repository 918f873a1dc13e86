// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include addon tree fixtures (WriteTree, NewAddon), catalog
// construction (NewCatalog), file operations (MustMkdirAll, MustWriteFile)
// and resource cleanup (MustClose).
package testutil
