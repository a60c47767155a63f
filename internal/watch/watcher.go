// Package watch monitors the meta-model source and triggers a regeneration
// once the changes settle.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher monitors the meta-model file and invokes a callback after each
// burst of changes. It watches the enclosing directory rather than the file
// itself: most editors save by writing a temporary file and renaming it over
// the original, which would silently drop a watch on the file.
type Watcher struct {
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	path      string
	base      string
	logger    *zap.Logger
	onChange  func() error
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// New creates a watcher over the meta-model at the given path.
// The callback runs on the watcher's goroutine after the changes settle.
func New(path string, logger *zap.Logger, onChange func() error) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve the path %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create the file watcher: %w", err)
	}

	w := &Watcher{
		watcher:   watcher,
		debouncer: newDebouncer(100 * time.Millisecond),
		path:      absPath,
		base:      filepath.Base(absPath),
		logger:    logger,
		onChange:  onChange,
		stopChan:  make(chan struct{}),
	}

	w.debouncer.setCallback(func() {
		if err := w.onChange(); err != nil {
			w.logger.Error("regeneration failed", zap.Error(err))
		}
	})

	return w, nil
}

// Start begins watching. It returns immediately; the event loop runs in the
// background until Stop is called.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch the directory %s: %w", dir, err)
	}
	w.logger.Info("watching the meta-model",
		zap.String("path", w.path))

	w.wg.Add(1)
	go w.watch()

	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	select {
	case <-w.stopChan:
		return nil
	default:
		close(w.stopChan)
	}

	w.wg.Wait()
	w.debouncer.stop()
	return w.watcher.Close()
}

func (w *Watcher) watch() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.concernsModel(event) {
				continue
			}
			w.logger.Debug("meta-model changed",
				zap.String("op", event.Op.String()))
			w.debouncer.add()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-w.stopChan:
			return
		}
	}
}

// concernsModel filters the directory events down to the meta-model file.
// Create and Rename cover the atomic-save strategies of common editors.
func (w *Watcher) concernsModel(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != w.base {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// debouncer coalesces a burst of events into a single callback after a
// quiet period
type debouncer struct {
	duration time.Duration
	timer    *time.Timer
	pending  bool
	mutex    sync.Mutex
	callback func()
}

func newDebouncer(duration time.Duration) *debouncer {
	return &debouncer{duration: duration}
}

func (d *debouncer) setCallback(callback func()) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = callback
}

func (d *debouncer) add() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.flush)
}

func (d *debouncer) flush() {
	d.mutex.Lock()
	if !d.pending {
		d.mutex.Unlock()
		return
	}
	d.pending = false
	callback := d.callback
	d.mutex.Unlock()

	if callback != nil {
		callback()
	}
}

func (d *debouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
}
