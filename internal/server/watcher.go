package server

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchedExts are the files whose changes trigger a reload.
var watchedExts = map[string]bool{".md": true, ".html": true, ".htm": true, ".yaml": true}

// Watcher watches for file changes and triggers reload.
type Watcher struct {
	watcher  *fsnotify.Watcher
	rootDir  string
	onReload func(filePath string) error
	logger   *zap.Logger
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewWatcher creates a new file watcher for the given directory.
func NewWatcher(rootDir string, onReload func(string) error, logger *zap.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &Watcher{
		watcher:  fsWatcher,
		rootDir:  rootDir,
		onReload: onReload,
		logger:   logger.Named("watch"),
		done:     make(chan struct{}),
	}

	if err := w.addDirectoryRecursive(rootDir); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// addDirectoryRecursive adds a directory and all its subdirectories to the
// watcher. Hidden directories are skipped.
func (w *Watcher) addDirectoryRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return err
		}
		w.logger.Debug("watching directory", zap.String("dir", path))
		return nil
	})
}

// Start begins watching for file changes.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				w.handle(event)

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watch error", zap.Error(err))

			case <-w.done:
				return
			}
		}
	}()
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addDirectoryRecursive(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", zap.String("dir", event.Name), zap.Error(err))
			}
			return
		}
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if !watchedExts[strings.ToLower(filepath.Ext(event.Name))] {
		return
	}

	relPath, err := filepath.Rel(w.rootDir, event.Name)
	if err != nil {
		relPath = event.Name
	}
	w.logger.Debug("file changed", zap.String("file", relPath), zap.Stringer("op", event.Op))

	if err := w.onReload(filepath.ToSlash(relPath)); err != nil {
		w.logger.Warn("reload failed", zap.String("file", relPath), zap.Error(err))
	}
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
