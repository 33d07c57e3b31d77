package config

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the config file and signals the UI when it changes,
// so theme edits apply to a running session without a restart.
// Pattern: goroutine + buffered channel + idempotent Close.
type Watcher struct {
	changeCh  chan *Config
	closeCh   chan struct{}
	closeOnce sync.Once
	fsw       *fsnotify.Watcher
}

// NewWatcher starts watching the config file at path. Returns nil when
// watching cannot be set up; callers fall back to the loaded config.
func NewWatcher(path string) *Watcher {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn("config watcher init failed", "err", err)
		return nil
	}
	// Watch the directory: editors replace the file on save, which
	// drops a watch registered on the file itself.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		log.Warn("config watcher add failed", "path", path, "err", err)
		_ = fsw.Close()
		return nil
	}

	w := &Watcher{
		changeCh: make(chan *Config, 1),
		closeCh:  make(chan struct{}),
		fsw:      fsw,
	}
	go w.loop(path)
	return w
}

func (w *Watcher) loop(path string) {
	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			cfg, err := LoadFrom(path)
			if err != nil {
				log.Warn("config reload failed", "err", err)
				continue
			}
			// Non-blocking send; drop if the consumer is behind.
			select {
			case w.changeCh <- cfg:
			default:
			}
		case err, ok := <-w.fsw.Errors:
			if ok && err != nil {
				log.Warn("config watcher error", "err", err)
			}
		}
	}
}

// Changes returns the channel receiving reloaded configs.
func (w *Watcher) Changes() <-chan *Config {
	return w.changeCh
}

// Close stops the watcher. Safe to call multiple times.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		close(w.closeCh)
		_ = w.fsw.Close()
	})
}
