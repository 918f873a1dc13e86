// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/addonproc/addonproc/internal/discovery"
)

// DefaultDebounce is the quiet period after the last event before the
// callback fires.
const DefaultDebounce = 300 * time.Millisecond

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: already running")

type (
	// Options configures a Watcher.
	Options struct {
		// Root is the addon folder to watch recursively.
		Root string
		// Layout selects module sources, initializer files and skipped
		// folders. Zero fields use the discovery defaults.
		Layout discovery.Layout
		// Extra are additional doublestar globs, relative to Root, that
		// trigger the callback.
		Extra []string
		// Ignore are additional doublestar globs that never trigger it.
		Ignore []string
		// Debounce defaults to DefaultDebounce when not positive.
		Debounce time.Duration
		// OnChange receives the sorted set of changed paths relative to Root.
		OnChange func(ctx context.Context, changed []string) error
		// Logger receives non-fatal watcher problems.
		Logger *log.Logger
	}

	// Watcher fires a debounced callback when relevant files below an addon
	// folder are created, written, renamed or removed.
	Watcher struct {
		opts    Options
		root    string
		fsw     *fsnotify.Watcher
		match   *matcher
		logger  *log.Logger
		started atomic.Bool

		dirsMu sync.Mutex
		dirs   map[string]struct{}
	}
)

// New validates opts and registers every non-ignored folder below Root.
func New(opts Options) (*Watcher, error) {
	if opts.Root == "" {
		return nil, errors.New("watch: root is required")
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}
	if info, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("watch: %s is not a directory", root)
	}

	layout := opts.Layout
	def := discovery.DefaultLayout()
	if layout.SourceExt == "" {
		layout.SourceExt = def.SourceExt
	}
	if layout.InitFile == "" {
		layout.InitFile = def.InitFile
	}
	if layout.SkipDirs == nil {
		layout.SkipDirs = def.SkipDirs
	}

	m, err := newMatcher(layout, opts.Extra, opts.Ignore)
	if err != nil {
		return nil, err
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("watch")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}

	w := &Watcher{
		opts:   opts,
		root:   root,
		fsw:    fsw,
		match:  m,
		logger: logger,
		dirs:   make(map[string]struct{}),
	}
	if err := w.addTree(root); err != nil {
		if cerr := fsw.Close(); cerr != nil {
			logger.Warn("close after init failure", "err", cerr)
		}
		return nil, err
	}
	return w, nil
}

// Root returns the absolute watched folder.
func (w *Watcher) Root() string { return w.root }

// Dirs returns the watched folders relative to Root, sorted.
func (w *Watcher) Dirs() []string {
	w.dirsMu.Lock()
	defer w.dirsMu.Unlock()
	out := make([]string, 0, len(w.dirs))
	for abs := range w.dirs {
		rel, err := filepath.Rel(w.root, abs)
		if err != nil {
			continue
		}
		out = append(out, filepath.ToSlash(rel))
	}
	slices.Sort(out)
	return out
}

// Run processes events until ctx is done. It returns nil on cancellation and
// an error when the underlying watcher breaks. Callbacks never overlap; events
// arriving while one runs are delivered by the next.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		busy    atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !busy.CompareAndSwap(false, true) {
			mu.Lock()
			timer.Reset(w.opts.Debounce)
			mu.Unlock()
			return
		}
		defer busy.Store(false)

		mu.Lock()
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()
		if len(changed) == 0 || w.opts.OnChange == nil {
			return
		}
		if err := w.opts.OnChange(ctx, changed); err != nil {
			w.logger.Error("change handler failed", "err", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close watcher", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			rel, ok := w.handle(evt)
			if !ok {
				continue
			}
			mu.Lock()
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.opts.Debounce, fire)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if isFatal(err) {
				return fmt.Errorf("watch: %w", err)
			}
			w.logger.Warn("watcher error", "err", err)
		}
	}
}

// handle classifies one event and returns the path to report, if any. New
// folders are watched and reported; removed folders are forgotten and
// reported, since both change the set of discoverable modules.
func (w *Watcher) handle(evt fsnotify.Event) (string, bool) {
	if evt.Op == fsnotify.Chmod {
		return "", false
	}
	rel, err := filepath.Rel(w.root, evt.Name)
	if err != nil {
		return "", false
	}
	if w.match.ignored(rel) {
		return "", false
	}

	if evt.Has(fsnotify.Create) {
		if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
			if err := w.addTree(evt.Name); err != nil {
				w.logger.Warn("watch new folder", "path", evt.Name, "err", err)
			}
			return filepath.ToSlash(rel), true
		}
	}
	if evt.Has(fsnotify.Remove) || evt.Has(fsnotify.Rename) {
		if w.forget(evt.Name) {
			return filepath.ToSlash(rel), true
		}
	}

	if !w.match.relevant(rel) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// addTree watches dir and every non-ignored folder below it. Unreadable
// folders are logged and skipped.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("skipping unreadable path", "path", path, "err", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil //nolint:nilerr // not below root
		}
		if rel != "." && w.match.ignored(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		w.dirsMu.Lock()
		w.dirs[path] = struct{}{}
		w.dirsMu.Unlock()
		return nil
	})
}

// forget drops path and any watched folder below it, reporting whether path
// was a watched folder.
func (w *Watcher) forget(path string) bool {
	w.dirsMu.Lock()
	defer w.dirsMu.Unlock()
	if _, ok := w.dirs[path]; !ok {
		return false
	}
	prefix := path + string(filepath.Separator)
	for d := range w.dirs {
		if d == path || strings.HasPrefix(d, prefix) {
			delete(w.dirs, d)
		}
	}
	return true
}
