// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/addonproc/addonproc/pkg/modpath"
)

const (
	// DefaultSourceExt is the extension of loadable source files.
	DefaultSourceExt = ".go"
	// DefaultInitFile is the per-directory initializer file name.
	DefaultInitFile = "addon.cue"
)

// ErrNotADirectory is the sentinel error wrapped by NotADirectoryError.
var ErrNotADirectory = errors.New("not a directory")

type (
	// Layout describes which files and folders of an addon tree take part in
	// discovery.
	Layout struct {
		// SourceExt is the extension of module source files.
		SourceExt string
		// InitFile is the initializer file consulted for ignore lists.
		InitFile string
		// SkipDirs are cache folder names that are never visited.
		SkipDirs []string
	}

	// NotADirectoryError is returned when a target does not exist or is not
	// a directory.
	NotADirectoryError struct {
		Target string
		Path   string
	}

	// Result is the outcome of a discovery pass.
	Result struct {
		// Modules holds fully qualified module paths in discovery order.
		Modules []string
		// Diagnostics holds non-fatal problems found during the pass.
		Diagnostics []Diagnostic
	}

	// Discovery walks the target subfolders of one addon root.
	Discovery struct {
		root   modpath.Root
		layout Layout
		reader *Reader
		logger *log.Logger
	}

	// Option configures a Discovery.
	Option func(*Discovery)

	// targetWalk is the state carried through the visit of one target.
	targetWalk struct {
		target    string
		targetDir string
		mdlRoot   string
		ignore    IgnoreSet
		result    *Result
	}
)

// DefaultLayout returns the layout used when none is configured.
func DefaultLayout() Layout {
	return Layout{
		SourceExt: DefaultSourceExt,
		InitFile:  DefaultInitFile,
		SkipDirs:  []string{"testdata", "__pycache__"},
	}
}

// IsSource reports whether name is a loadable module source file. For Go
// sources, test files are excluded.
func (l Layout) IsSource(name string) bool {
	if name == l.InitFile || !strings.HasSuffix(name, l.SourceExt) {
		return false
	}
	if l.SourceExt == ".go" && strings.HasSuffix(name, "_test.go") {
		return false
	}
	return true
}

// IsSkipDir reports whether a directory called name is never visited.
func (l Layout) IsSkipDir(name string) bool {
	return slices.Contains(l.SkipDirs, name)
}

func (l Layout) withDefaults() Layout {
	def := DefaultLayout()
	if l.SourceExt == "" {
		l.SourceExt = def.SourceExt
	}
	if !strings.HasPrefix(l.SourceExt, ".") {
		l.SourceExt = "." + l.SourceExt
	}
	if l.InitFile == "" {
		l.InitFile = def.InitFile
	}
	if l.SkipDirs == nil {
		l.SkipDirs = def.SkipDirs
	}
	return l
}

// Error implements the error interface.
func (e *NotADirectoryError) Error() string {
	return fmt.Sprintf("%q is not a folder or does not exist", e.Path)
}

// Unwrap returns ErrNotADirectory so callers can use errors.Is.
func (e *NotADirectoryError) Unwrap() error { return ErrNotADirectory }

// WithLayout overrides the default layout. Empty fields keep their defaults.
func WithLayout(layout Layout) Option {
	return func(d *Discovery) {
		d.layout = layout.withDefaults()
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *log.Logger) Option {
	return func(d *Discovery) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New creates a Discovery for root.
func New(root modpath.Root, opts ...Option) *Discovery {
	d := &Discovery{
		root:   root,
		layout: DefaultLayout(),
		logger: log.Default().WithPrefix("discovery"),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.reader = NewReader(d.layout.InitFile)
	return d
}

// Layout returns the effective layout.
func (d *Discovery) Layout() Layout {
	return d.layout
}

// Discover walks every target subfolder and returns the module paths of all
// eligible source files, targets concatenated in the order given. A missing
// target or a malformed initializer file fails the whole pass.
func (d *Discovery) Discover(ctx context.Context, targets []string) (*Result, error) {
	result := &Result{}
	seen := make(map[string]bool, len(targets))

	for _, target := range targets {
		if seen[target] {
			result.Diagnostics = append(result.Diagnostics,
				warning(CodeTargetDuplicate, target, "target %q listed more than once; later occurrences skipped", target))
			continue
		}
		seen[target] = true

		if err := d.discoverTarget(ctx, target, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (d *Discovery) targetDir(target string) (string, error) {
	dir := filepath.Join(d.root.AddonPath(), target)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", &NotADirectoryError{Target: target, Path: dir}
	}
	return dir, nil
}

func (d *Discovery) discoverTarget(ctx context.Context, target string, result *Result) error {
	dir, err := d.targetDir(target)
	if err != nil {
		return err
	}

	own, err := d.reader.Read(dir)
	if err != nil {
		return err
	}

	w := &targetWalk{
		target:    target,
		targetDir: dir,
		mdlRoot:   modpath.Join(d.root.DirName, modpath.SepToDot(target)),
		ignore:    own,
		result:    result,
	}
	d.logger.Debug("walking target", "target", target, "ignore", own.Sorted())
	return d.visit(ctx, w, dir)
}

// visit handles one directory: prune check, child ignore merge, file
// collection, then recursion into subdirectories in lexical order.
func (d *Discovery) visit(ctx context.Context, w *targetWalk, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if dir != w.targetDir {
		if rel := w.relModule(dir); rel != "" && w.ignore.Has(rel) {
			d.logger.Debug("skipping ignored directory", "dir", dir, "module", rel)
			return nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if dir == w.targetDir {
			return fmt.Errorf("read target %q: %w", w.target, err)
		}
		w.result.Diagnostics = append(w.result.Diagnostics, Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeDirectoryUnreadable,
			Message:  "directory could not be read; its modules were skipped",
			Path:     dir,
			Cause:    err,
		})
		return nil
	}

	var subdirs, files []string
	for _, entry := range entries {
		if entry.IsDir() {
			if !d.layout.IsSkipDir(entry.Name()) {
				subdirs = append(subdirs, filepath.Join(dir, entry.Name()))
			}
			continue
		}
		if isRegularFile(dir, entry) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	if err := d.mergeChildIgnores(w, subdirs); err != nil {
		return err
	}

	for _, path := range files {
		if !d.layout.IsSource(filepath.Base(path)) {
			continue
		}
		mod := d.root.ModulePath(path)
		rel := modpath.TrimModuleRoot(w.mdlRoot, mod)
		if w.ignore.Has(rel) {
			d.logger.Debug("skipping ignored module", "module", mod)
			continue
		}
		w.result.Modules = append(w.result.Modules, mod)
	}

	for _, sub := range subdirs {
		if err := d.visit(ctx, w, sub); err != nil {
			return err
		}
	}
	return nil
}

// mergeChildIgnores unions the ignore lists of the immediate children into
// the walk's ignore set, re-expressed relative to the target.
func (d *Discovery) mergeChildIgnores(w *targetWalk, subdirs []string) error {
	for _, sub := range subdirs {
		childSet, err := d.reader.Read(sub)
		if err != nil {
			return err
		}
		if childSet.Len() == 0 {
			continue
		}

		childRel := w.relModule(sub)
		merged := make([]string, 0, childSet.Len())
		for _, entry := range childSet.Sorted() {
			if d.layout.IsSkipDir(modpath.Base(entry)) {
				continue
			}
			merged = append(merged, modpath.Join(childRel, entry))
		}
		w.ignore = w.ignore.Add(merged...)
	}
	return nil
}

// relModule returns dir as a dotted path relative to the target folder.
func (w *targetWalk) relModule(dir string) string {
	rel, err := filepath.Rel(w.targetDir, dir)
	if err != nil || rel == "." {
		return ""
	}
	return modpath.SepToDot(rel)
}

// isRegularFile reports whether entry is a regular file, following symlinks.
func isRegularFile(dir string, entry fs.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}
