// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/addonproc/addonproc/internal/discovery"
)

// noiseIgnores are never interesting for addon discovery.
var noiseIgnores = []string{
	"**/.git",
	"**/.git/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

// matcher decides which paths, relative to the watched root, are relevant.
type matcher struct {
	include []string
	exclude []string
}

// newMatcher derives include and exclude globs from a discovery layout.
// Skip dirs are excluded with everything below them. extra adds include
// globs, e.g. a translation table path.
func newMatcher(layout discovery.Layout, extra, ignore []string) (*matcher, error) {
	m := &matcher{
		include: []string{"**/*" + layout.SourceExt, "**/" + layout.InitFile},
		exclude: append([]string(nil), noiseIgnores...),
	}
	if layout.SourceExt == discovery.DefaultSourceExt {
		m.exclude = append(m.exclude, "**/*_test.go")
	}
	for _, d := range layout.SkipDirs {
		m.exclude = append(m.exclude, "**/"+d, "**/"+d+"/**")
	}
	m.include = append(m.include, extra...)
	m.exclude = append(m.exclude, ignore...)

	for _, pat := range m.include {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid pattern %q", pat)
		}
	}
	for _, pat := range m.exclude {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid ignore pattern %q", pat)
		}
	}
	return m, nil
}

func (m *matcher) ignored(rel string) bool {
	return matchAny(m.exclude, filepath.ToSlash(rel))
}

func (m *matcher) relevant(rel string) bool {
	rel = filepath.ToSlash(rel)
	return !matchAny(m.exclude, rel) && matchAny(m.include, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}
