// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs addon discovery when files in an addon folder change.
//
// Events are filtered by the discovery layout (module sources and initializer
// files) and coalesced over a debounce window so one editor save produces one
// callback.
package watch
