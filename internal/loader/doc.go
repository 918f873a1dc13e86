// SPDX-License-Identifier: MPL-2.0

// Package loader resolves discovered module paths against the addon catalog
// and collects the classes they export, ordered for registration.
package loader
