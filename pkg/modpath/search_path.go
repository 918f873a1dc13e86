// SPDX-License-Identifier: MPL-2.0

package modpath

import (
	"path/filepath"
	"slices"
	"sync"
)

// Search is the process-wide search path shared by every addon manager.
var Search = &SearchPath{}

// SearchPath is an ordered, duplicate-free list of directories that contain
// addon packages. It is safe for concurrent use.
type SearchPath struct {
	mu    sync.RWMutex
	paths []string
}

// Add appends dir unless an equivalent path is already present. It reports
// whether the path was added.
func (s *SearchPath) Add(dir string) bool {
	clean := filepath.Clean(dir)

	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.paths, clean) {
		return false
	}
	s.paths = append(s.paths, clean)
	return true
}

// Contains reports whether dir is on the search path.
func (s *SearchPath) Contains(dir string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.paths, filepath.Clean(dir))
}

// Paths returns a copy of the search path in insertion order.
func (s *SearchPath) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.paths)
}
