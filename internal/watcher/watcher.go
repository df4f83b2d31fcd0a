package watcher

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"archmap/internal/config"
	"archmap/internal/shared/observability"
	"archmap/internal/shared/util"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// Watcher observes one scan root and reports batches of changed source
// files. Events are debounced so editor save storms collapse into one
// batch, and batches are rate limited because every batch costs the
// caller a full rescan.
type Watcher struct {
	root       string
	fsWatcher  *fsnotify.Watcher
	debounce   time.Duration
	exclude    []glob.Glob
	limiter    *util.Limiter
	onChange   func([]string)
	callbackMu sync.Mutex

	pending   map[string]time.Time
	pendingMu sync.Mutex
	timer     *time.Timer
	closed    bool
}

func New(root string, cfg *config.Config, onChange func([]string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:      root,
		fsWatcher: fsw,
		debounce:  cfg.Watch.Debounce,
		limiter:   util.NewLimiter(cfg.Watch.RescanRate, cfg.Watch.RescanBurst),
		onChange:  onChange,
		pending:   make(map[string]time.Time),
	}

	for _, pattern := range cfg.Scanning.ExcludePatterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		w.exclude = append(w.exclude, g)
		// Patterns anchored with "**/" also need to match entries with
		// no leading directory, e.g. "**/.git/**" against ".git/HEAD".
		if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
			g, err := glob.Compile(rest)
			if err != nil {
				return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
			}
			w.exclude = append(w.exclude, g)
		}
	}

	return w, nil
}

// Watch registers the root tree and starts the event loop.
func (w *Watcher) Watch() error {
	if err := w.watchRecursive(w.root); err != nil {
		return err
	}

	go w.run()
	return nil
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if p != w.root && w.dirExcluded(p) {
				return filepath.SkipDir
			}
			return w.fsWatcher.Add(p)
		}

		return nil
	})
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				info, err := os.Stat(event.Name)
				if err == nil && info.IsDir() {
					if !w.dirExcluded(event.Name) {
						if err := w.watchRecursive(event.Name); err != nil {
							slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
						} else {
							w.enqueueExistingFiles(event.Name)
						}
					}
					continue
				}
			}

			if !w.interesting(event.Name) {
				continue
			}

			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Remove == fsnotify.Remove {
				observability.WatcherEventsTotal.Inc()
				w.scheduleChange(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	if w.closed {
		return
	}

	w.pending[path] = time.Now()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, w.flushChanges)
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	if w.closed || len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	if !w.limiter.Allow(1) {
		// Over the rescan budget. Hold the batch and retry after
		// another debounce interval.
		if w.timer != nil {
			w.timer.Stop()
		}
		w.timer = time.AfterFunc(w.debounce, w.flushChanges)
		w.pendingMu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]time.Time)
	w.pendingMu.Unlock()

	observability.WatcherRescansTotal.Inc()

	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(paths)
}

// interesting reports whether a change to path can affect the scan.
func (w *Watcher) interesting(p string) bool {
	base := path.Base(filepath.ToSlash(p))
	if !strings.HasSuffix(base, ".rs") || base == ".rs" {
		return false
	}
	return !w.excluded(p)
}

// excluded matches the path, relative to the watched root, against the
// configured exclude patterns.
func (w *Watcher) excluded(p string) bool {
	rel, ok := w.relPath(p)
	if !ok {
		return false
	}
	for _, g := range w.exclude {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// dirExcluded additionally probes with a trailing slash, so directory
// patterns like "target/**" prune the directory itself.
func (w *Watcher) dirExcluded(p string) bool {
	if w.excluded(p) {
		return true
	}
	rel, ok := w.relPath(p)
	if !ok {
		return false
	}
	rel += "/"
	for _, g := range w.exclude {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

func (w *Watcher) relPath(p string) (string, bool) {
	rel, err := filepath.Rel(w.root, p)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return "", false
	}
	return rel, true
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}

func (w *Watcher) enqueueExistingFiles(root string) {
	_ = filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		if !w.interesting(p) {
			return nil
		}
		observability.WatcherEventsTotal.Inc()
		w.scheduleChange(p)
		return nil
	})
}
