package config

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	logx "vidforge/pkg/logx"
)

// Watch observes the config file and logs a warning when it changes on
// disk. There is deliberately no hot reload: settings are immutable for the
// process lifetime, so the only useful reaction is telling the operator a
// restart is needed. Blocks until ctx is cancelled.
//
// Watching the directory (not the file) survives editors that replace the
// file via rename. A broken watcher is recreated with a small backoff.
func Watch(ctx context.Context, path string, log logx.Logger) {
	dir := filepath.Dir(path)
	file := filepath.Base(path)

	const (
		restartBackoff = time.Second
		debounceDelay  = 250 * time.Millisecond
	)

	// debounce collapses the event bursts editors produce on save.
	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	notify := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceDelay, func() {
			log.Warn("configuration file changed on disk; restart to apply",
				logx.String("path", path))
		})
	}

	for {
		if ctx.Err() != nil {
			return
		}

		w, err := fsnotify.NewWatcher()
		if err == nil {
			err = w.Add(dir)
			if err != nil {
				_ = w.Close()
			}
		}
		if err != nil {
			log.Warn("config watch unavailable", logx.Err(err), logx.String("dir", dir))
			select {
			case <-ctx.Done():
				return
			case <-time.After(restartBackoff):
				continue
			}
		}

		broken := false
		for !broken {
			select {
			case <-ctx.Done():
				_ = w.Close()
				return
			case ev, ok := <-w.Events:
				if !ok {
					broken = true
					break
				}
				if strings.EqualFold(filepath.Base(ev.Name), file) {
					notify()
				}
			case werr, ok := <-w.Errors:
				if !ok {
					broken = true
					break
				}
				if werr != nil {
					log.Warn("config watch error", logx.Err(werr), logx.String("dir", dir))
				}
			}
		}

		_ = w.Close()
		select {
		case <-ctx.Done():
			return
		case <-time.After(restartBackoff):
		}
	}
}
