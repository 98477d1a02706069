package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hearth-ai/hearth/pkg/async"
)

const watchDebounce = 500 * time.Millisecond

// Watcher triggers re-discovery when plugin directories change. Filesystem
// events are debounced so an unpacking plugin does not cause a scan per
// file.
type Watcher struct {
	manager *Manager
	fs      *fsnotify.Watcher
	done    chan struct{}
}

func newWatcher(m *Manager) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	watched := 0
	for _, dir := range []string{m.cfg.UserPluginsDir, m.cfg.ProjectPluginsDir} {
		if dir == "" {
			continue
		}
		if err := fs.Add(dir); err != nil {
			m.log.Debugf("not watching %s: %v", dir, err)
			continue
		}
		watched++
	}
	if watched == 0 {
		fs.Close()
		return nil, errors.New("no watchable plugin directories")
	}

	return &Watcher{manager: m, fs: fs, done: make(chan struct{})}, nil
}

// Start begins processing filesystem events
func (w *Watcher) Start() {
	go w.loop()
}

// Stop ends event processing
func (w *Watcher) Stop() {
	close(w.done)
	w.fs.Close()
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				fire = timer.C
			} else {
				timer.Reset(watchDebounce)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.manager.log.Warnf("plugin watcher: %v", err)
		case <-fire:
			timer = nil
			fire = nil
			w.manager.log.Debug("plugin directories changed, rediscovering")
			async.SafeGo(context.Background(), time.Minute, "plugin rediscovery", w.manager.log, func(ctx context.Context) error {
				w.manager.Discover()
				return nil
			})
		}
	}
}
