// SPDX-License-Identifier: MPL-2.0

// Package discovery walks an addon tree and produces the dotted module paths
// of every source file that is eligible for loading.
//
// Each target subfolder (for example "operators" or "panels") is visited
// depth-first. Directories may carry an initializer file (addon.cue by
// default) that declares an ignore list of module paths relative to that
// directory:
//
//	ignore: ["legacy", "draft.experimental"]
//
// Ignore lists of a directory's immediate children are merged into the set
// used while walking the rest of the target, so a nested package can exclude
// siblings elsewhere in the same target. Matching is exact string equality on
// dotted paths relative to the target; there are no wildcards.
//
// File organization:
//   - diagnostic.go: Diagnostic values returned to callers
//   - ignore.go: IgnoreSet and the initializer file Reader
//   - walk.go: Layout, Discovery and the directory walk
package discovery
