// SPDX-License-Identifier: MPL-2.0

package modpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Separator joins the segments of a module path.
const Separator = "."

// ErrInvalidRoot is the sentinel error wrapped by InvalidRootError.
var ErrInvalidRoot = errors.New("invalid addon root")

type (
	// Root identifies an addon package on disk.
	Root struct {
		// Path is the absolute directory that contains the addon folder.
		Path string
		// DirName is the addon folder name; it is the first segment of every
		// module path produced from this root.
		DirName string
	}

	// InvalidRootError is returned by NewRoot when the given path cannot serve
	// as an addon root.
	InvalidRootError struct {
		Path  string
		Cause error
	}
)

// Error implements the error interface.
func (e *InvalidRootError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid addon root %q: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("invalid addon root %q", e.Path)
}

// Unwrap returns ErrInvalidRoot so callers can use errors.Is.
func (e *InvalidRootError) Unwrap() error { return ErrInvalidRoot }

// NewRoot resolves path into a Root. When path names a file, the directory
// containing it is treated as the addon folder.
func NewRoot(path string) (Root, error) {
	if strings.TrimSpace(path) == "" {
		return Root{}, &InvalidRootError{Path: path, Cause: errors.New("path is empty")}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return Root{}, &InvalidRootError{Path: path, Cause: err}
	}

	info, err := os.Stat(abs)
	if err != nil {
		return Root{}, &InvalidRootError{Path: path, Cause: err}
	}

	dir := abs
	if !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	parent := filepath.Dir(dir)
	if parent == dir {
		return Root{}, &InvalidRootError{Path: path, Cause: errors.New("filesystem root cannot be an addon folder")}
	}

	return Root{Path: parent, DirName: filepath.Base(dir)}, nil
}

// AddonPath returns the absolute path of the addon folder.
func (r Root) AddonPath() string {
	return filepath.Join(r.Path, r.DirName)
}

// Rel returns abs relative to the root path, without a leading separator.
// abs is expected to live under r.Path.
func (r Root) Rel(abs string) string {
	rel := strings.TrimPrefix(abs, r.Path)
	return strings.TrimLeft(rel, `/\`)
}

// ModulePath converts an absolute file path into its dotted module path.
func (r Root) ModulePath(abs string) string {
	return ToModule(r.Rel(abs))
}

// ToModule converts a relative file path into a dotted module path by dropping
// the file extension and replacing separators with periods.
func ToModule(rel string) string {
	return SepToDot(strings.TrimSuffix(rel, filepath.Ext(rel)))
}

// SepToDot replaces path separators with periods. Extensions are kept.
func SepToDot(rel string) string {
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", Separator)
}

// DotToSep converts a dotted module path into a relative filesystem path.
func DotToSep(module string) string {
	return filepath.FromSlash(strings.ReplaceAll(module, Separator, "/"))
}

// TrimModuleRoot strips root from the front of modulePath. root may be given
// either as a relative filesystem path ("hello/operators") or as a dotted
// module path ("hello.operators"). Callers guarantee that root is a prefix of
// modulePath; otherwise only leading periods are removed.
func TrimModuleRoot(root, modulePath string) string {
	prefix := SepToDot(root)
	if prefix != "" && (modulePath == prefix || strings.HasPrefix(modulePath, prefix+Separator)) {
		modulePath = modulePath[len(prefix):]
	}
	return strings.TrimLeft(modulePath, Separator)
}

// Join concatenates module path segments, ignoring empty ones.
func Join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, Separator)
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, Separator)
}

// Base returns the last segment of a dotted module path.
func Base(module string) string {
	if i := strings.LastIndex(module, Separator); i >= 0 {
		return module[i+1:]
	}
	return module
}
