package api

// Watch mode uses fsnotify. The directories containing the files of the last
// build are watched instead of the files themselves because many editors save
// by writing a new file and renaming it over the old one, which would drop a
// watch on the file. Events are collected for a short time before rebuilding
// so that saving several files at once causes a single rebuild.

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/webpack/webpack-sources/internal/cache"
	"github.com/webpack/webpack-sources/internal/logger"
)

// The time to wait for more changes before starting a rebuild
const watchDebounce = 50 * time.Millisecond

type watcher struct {
	fsWatcher *fsnotify.Watcher
	caches    *cache.CacheSet
	rebuild   func() []string

	mutex       sync.Mutex
	paths       map[string]bool
	dirs        map[string]bool
	dirtyPaths  map[string]bool
	debounceEnd time.Time

	shouldLog     bool
	useColor      logger.StderrColor
	stop          chan struct{}
	stopWaitGroup sync.WaitGroup
}

func (w *watcher) setWatchPaths(paths []string) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	// Print something for the end of the first build
	if w.shouldLog && w.paths == nil {
		logger.PrintTextWithColor(os.Stderr, w.useColor, func(colors logger.Colors) string {
			return fmt.Sprintf("%s[watch] build finished, watching for changes...%s\n", colors.Dim, colors.Reset)
		})
	}

	w.paths = make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, path := range paths {
		w.paths[path] = true
		dirs[filepath.Dir(path)] = true
	}

	// Only touch the directories that changed between builds
	for dir := range w.dirs {
		if !dirs[dir] {
			w.fsWatcher.Remove(dir)
		}
	}
	for dir := range dirs {
		if !w.dirs[dir] {
			if err := w.fsWatcher.Add(dir); err != nil && w.shouldLog {
				logger.PrintTextWithColor(os.Stderr, w.useColor, func(colors logger.Colors) string {
					return fmt.Sprintf("%s[watch] cannot watch %q: %s%s\n", colors.Dim, dir, err.Error(), colors.Reset)
				})
			}
		}
	}
	w.dirs = dirs
}

func (w *watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()
	path := filepath.Clean(event.Name)
	if !w.paths[path] {
		return
	}
	w.caches.Invalidate(path)
	w.dirtyPaths[path] = true
	w.debounceEnd = time.Now().Add(watchDebounce)
}

// Returns the dirty paths once no more changes came in for a while
func (w *watcher) takeDirtyPaths() []string {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if len(w.dirtyPaths) == 0 || time.Now().Before(w.debounceEnd) {
		return nil
	}
	paths := make([]string, 0, len(w.dirtyPaths))
	for path := range w.dirtyPaths {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	w.dirtyPaths = make(map[string]bool)
	return paths
}

func (w *watcher) start() {
	w.stopWaitGroup.Add(1)

	go func() {
		defer w.stopWaitGroup.Done()
		ticker := time.NewTicker(watchDebounce / 2)
		defer ticker.Stop()

		for {
			select {
			case <-w.stop:
				return

			case event, ok := <-w.fsWatcher.Events:
				if !ok {
					return
				}
				w.handleEvent(event)

			case err, ok := <-w.fsWatcher.Errors:
				if !ok {
					return
				}
				if w.shouldLog {
					logger.PrintTextWithColor(os.Stderr, w.useColor, func(colors logger.Colors) string {
						return fmt.Sprintf("%s[watch] error: %s%s\n", colors.Dim, err.Error(), colors.Reset)
					})
				}

			case <-ticker.C:
				// Rebuild if we're dirty
				if dirtyPaths := w.takeDirtyPaths(); len(dirtyPaths) > 0 {
					if w.shouldLog {
						logger.PrintTextWithColor(os.Stderr, w.useColor, func(colors logger.Colors) string {
							return fmt.Sprintf("%s[watch] build started (change: %q)%s\n", colors.Dim, dirtyPaths[0], colors.Reset)
						})
					}

					// Run the build
					w.setWatchPaths(w.rebuild())

					if w.shouldLog {
						logger.PrintTextWithColor(os.Stderr, w.useColor, func(colors logger.Colors) string {
							return fmt.Sprintf("%s[watch] build finished%s\n", colors.Dim, colors.Reset)
						})
					}
				}
			}
		}
	}()
}

func (w *watcher) stopWatching() {
	close(w.stop)
	w.stopWaitGroup.Wait()
	w.fsWatcher.Close()
}

func watchImpl(ctx context.Context, options BuildOptions, onRebuild func(BuildResult)) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watching: %w", err)
	}

	caches := cache.MakeCacheSet()
	w := &watcher{
		fsWatcher:  fsWatcher,
		caches:     caches,
		dirtyPaths: make(map[string]bool),
		shouldLog:  options.LogLevel == LogLevelInfo || options.LogLevel == LogLevelVerbose,
		useColor:   validateColor(options.Color),
		stop:       make(chan struct{}),
	}
	w.rebuild = func() []string {
		result, paths := buildImpl(options, caches)
		if onRebuild != nil {
			onRebuild(result)
		}
		return paths
	}

	w.setWatchPaths(w.rebuild())
	w.start()
	<-ctx.Done()
	w.stopWatching()
	return nil
}
