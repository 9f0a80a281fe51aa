// Package preview restarts the preview server when its content changes.
//
// The index is built once per process, so a change is picked up by
// re-executing the binary rather than patching state in place.
package preview

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/blogfreeze/internal/foundation/errors"
	"git.home.luguber.info/inful/blogfreeze/internal/logfields"
)

// DefaultDebounce collapses bursts of editor writes into one restart.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Root is the content root; new content files below it trigger a restart.
	Root string
	// Extension of content files, including the dot.
	Extension string
	// Files are the known source files (post files, the config file).
	Files []string
	// Debounce delays the restart until changes settle.
	Debounce time.Duration
	// Restart replaces the running process. Defaults to Exec.
	Restart func() error
}

// Watcher watches the content root and known files and calls Restart once
// changes settle.
type Watcher struct {
	opts    Options
	root    string
	files   map[string]bool
	watcher *fsnotify.Watcher
	restart chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a watcher. Nothing is reported until Run is called.
func New(opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Restart == nil {
		opts.Restart = Exec
	}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, errors.FileSystemError("failed to resolve content root").WithCause(err).
			WithContext("root", opts.Root).
			Build()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.RuntimeError("failed to create file watcher").WithCause(err).Build()
	}

	w := &Watcher{
		opts:    opts,
		root:    root,
		files:   make(map[string]bool, len(opts.Files)),
		watcher: fw,
		restart: make(chan struct{}, 1),
	}

	if err := addDirsRecursive(fw, root); err != nil {
		_ = fw.Close()
		return nil, errors.FileSystemError("failed to watch content root").WithCause(err).
			WithContext("root", root).
			Build()
	}
	// Files outside the root (the config file) are watched through their
	// directory so editors that replace files on save are still seen.
	for _, f := range opts.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			continue
		}
		w.files[abs] = true
		if !w.underRoot(abs) {
			if err := fw.Add(filepath.Dir(abs)); err != nil {
				slog.Warn("Failed to watch directory", logfields.Path(filepath.Dir(abs)), logfields.Error(err))
			}
		}
	}
	return w, nil
}

// Run processes file events until ctx is done or a restart fails.
func (w *Watcher) Run(ctx context.Context) error {
	slog.Info("Watching for content changes", logfields.Root(w.root), logfields.Count(len(w.files)))
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(ev) {
				w.trigger()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		case <-w.restart:
			slog.Info("Content changed; restarting")
			if err := w.opts.Restart(); err != nil {
				return errors.RuntimeError("failed to restart").WithCause(err).Build()
			}
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.stopTimer()
	return w.watcher.Close()
}

// handleEvent reports whether ev should cause a restart. New directories
// under the root are added to the watch list.
func (w *Watcher) handleEvent(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod || shouldIgnoreEvent(ev.Name) {
		return false
	}
	name, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	if w.files[name] {
		slog.Debug("Watched file changed", logfields.File(name), slog.String("op", ev.Op.String()))
		return true
	}
	if !w.underRoot(name) {
		return false
	}

	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(w.watcher, name)
			return w.hasContent(name)
		}
	}
	if strings.EqualFold(filepath.Ext(name), w.opts.Extension) {
		slog.Debug("Content file changed", logfields.File(name), slog.String("op", ev.Op.String()))
		return true
	}
	return false
}

func (w *Watcher) underRoot(name string) bool {
	rel, err := filepath.Rel(w.root, name)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// hasContent reports whether a directory moved into the root brought content
// files with it.
func (w *Watcher) hasContent(dir string) bool {
	found := false
	_ = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), w.opts.Extension) && !shouldIgnoreEvent(p) {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, func() {
		select {
		case w.restart <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.Add(p); err != nil {
			slog.Warn("Failed to watch directory", logfields.Path(p), logfields.Error(err))
		}
		return nil
	})
}

// shouldIgnoreEvent reports whether a path is an editor or OS artifact.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	// vim tests a directory by creating and deleting "4913".
	return base == "Thumbs.db" || base == "4913"
}

// Exec replaces the current process with a fresh copy of itself, keeping its
// arguments and environment.
func Exec() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	return syscall.Exec(exe, os.Args, os.Environ())
}
