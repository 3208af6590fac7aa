package main

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/dirname/HistoryOfEverything/config"
)

const watchDebounce = 200 * time.Millisecond

// dataWatcher reports edits to the data files so a running game can pick
// them up. Editors tend to replace files wholesale, so the parent
// directories are watched rather than the files themselves.
type dataWatcher struct {
	watcher    *fsnotify.Watcher
	files      map[string]bool
	sink       chan<- string
	lastChange map[string]time.Time
	log        *logrus.Entry
}

// watchData follows the timeline and menu files named in cfg and posts
// their paths to sink when they change.
func watchData(cfg config.Config, sink chan<- string) (*dataWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &dataWatcher{
		watcher:    watcher,
		files:      make(map[string]bool),
		sink:       sink,
		lastChange: make(map[string]time.Time),
		log:        logrus.WithField("component", "data-watcher"),
	}

	dirs := make(map[string]bool)
	for _, path := range []string{cfg.Data.Timeline, cfg.Data.Menu} {
		w.files[filepath.Clean(path)] = true
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	go w.run()
	return w, nil
}

func (w *dataWatcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			path := filepath.Clean(event.Name)
			if !w.files[path] {
				continue
			}
			// Atomic saves fire Create and Write back to back.
			if time.Since(w.lastChange[path]) < watchDebounce {
				continue
			}
			w.lastChange[path] = time.Now()

			select {
			case w.sink <- path:
			default:
				w.log.WithField("path", path).Debug("reload queue full, dropping event")
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("watch error")
		}
	}
}

// Close stops the watcher and its goroutine.
func (w *dataWatcher) Close() error {
	return w.watcher.Close()
}
