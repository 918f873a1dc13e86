// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/addonproc/addonproc/pkg/cueutil"
)

// ErrInvalidInitializer is the sentinel error wrapped by InitializerError.
var ErrInvalidInitializer = errors.New("invalid initializer file")

//go:embed initializer_schema.cue
var initializerSchema []byte

type (
	// IgnoreSet is a set of dotted module paths excluded from discovery. The
	// zero value is an empty set. Sets are never modified in place: Add and
	// Union return new sets.
	IgnoreSet struct {
		entries map[string]struct{}
	}

	// Reader reads ignore lists from initializer files.
	Reader struct {
		initFile string
	}

	// InitializerError is returned when an initializer file exists but cannot
	// be read or does not match the initializer schema.
	InitializerError struct {
		Path  string
		Cause error
	}

	initializer struct {
		Ignore []string `json:"ignore,omitempty"`
	}
)

// NewIgnoreSet returns a set holding entries.
func NewIgnoreSet(entries ...string) IgnoreSet {
	return IgnoreSet{}.Add(entries...)
}

// Has reports whether module is in the set.
func (s IgnoreSet) Has(module string) bool {
	_, ok := s.entries[module]
	return ok
}

// Len returns the number of entries.
func (s IgnoreSet) Len() int {
	return len(s.entries)
}

// Add returns a new set holding the entries of s plus entries.
func (s IgnoreSet) Add(entries ...string) IgnoreSet {
	if len(entries) == 0 {
		return s
	}
	out := make(map[string]struct{}, len(s.entries)+len(entries))
	for e := range s.entries {
		out[e] = struct{}{}
	}
	for _, e := range entries {
		out[e] = struct{}{}
	}
	return IgnoreSet{entries: out}
}

// Union returns a new set holding the entries of both sets.
func (s IgnoreSet) Union(other IgnoreSet) IgnoreSet {
	if other.Len() == 0 {
		return s
	}
	return s.Add(other.Sorted()...)
}

// Sorted returns the entries in lexical order.
func (s IgnoreSet) Sorted() []string {
	out := make([]string, 0, len(s.entries))
	for e := range s.entries {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}

// Error implements the error interface.
func (e *InitializerError) Error() string {
	return fmt.Sprintf("invalid initializer file %s: %v", e.Path, e.Cause)
}

// Unwrap returns both ErrInvalidInitializer and the underlying cause.
func (e *InitializerError) Unwrap() []error {
	return []error{ErrInvalidInitializer, e.Cause}
}

// NewReader creates a Reader for initializer files named initFile.
func NewReader(initFile string) *Reader {
	return &Reader{initFile: initFile}
}

// Read returns the ignore set declared by the initializer file in dir.
// A missing initializer file, or one without an ignore field, yields an empty
// set. A present but malformed file is an error.
func (r *Reader) Read(dir string) (IgnoreSet, error) {
	path := filepath.Join(dir, r.initFile)

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return IgnoreSet{}, nil
	}
	if err != nil {
		return IgnoreSet{}, &InitializerError{Path: path, Cause: err}
	}
	if info.IsDir() {
		return IgnoreSet{}, &InitializerError{Path: path, Cause: errors.New("is a directory")}
	}

	res, err := cueutil.ParseFile[initializer](initializerSchema, path, "#Initializer")
	if err != nil {
		return IgnoreSet{}, &InitializerError{Path: path, Cause: err}
	}
	return NewIgnoreSet(res.Value.Ignore...), nil
}
