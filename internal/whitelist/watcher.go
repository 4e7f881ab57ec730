package whitelist

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	logx "birdsweep/pkg/logx"
)

// Watcher reloads the whitelist when its file changes on disk. Deletions can
// run for hours, so new entries take effect mid-run via the scheduler's
// protected hook instead of requiring a restart.
type Watcher struct {
	path string
	set  *Set
	log  logx.Logger
}

func NewWatcher(path string, set *Set, log logx.Logger) *Watcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Watcher{path: path, set: set, log: log}
}

// Watch blocks until ctx is done. Watcher breakage is self-healed by
// recreating it with a small backoff (editors and some platforms drop
// watches); a failed reload keeps the previous set.
func (w *Watcher) Watch(ctx context.Context) {
	dir := filepath.Dir(w.path)
	file := filepath.Base(w.path)

	const (
		restartBackoffBase = 250 * time.Millisecond
		restartBackoffMax  = 5 * time.Second
	)
	backoff := restartBackoffBase

	// debounce to avoid reloading on partial writes
	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(250*time.Millisecond, func() {
			ids, err := readIDs(w.path)
			if err != nil {
				w.log.Warn("whitelist reload failed", logx.String("path", w.path), logx.Err(err))
				return
			}
			w.set.replace(ids)
			w.log.Info("whitelist reloaded", logx.String("path", w.path), logx.Int("entries", len(ids)))
		})
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		fw, err := fsnotify.NewWatcher()
		if err == nil {
			err = fw.Add(dir)
			if err != nil {
				_ = fw.Close()
			}
		}
		if err != nil {
			w.log.Warn("whitelist watch init failed", logx.Err(err), logx.String("dir", dir))
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < restartBackoffMax {
				backoff *= 2
			}
			continue
		}
		backoff = restartBackoffBase
		w.log.Debug("whitelist watcher started", logx.String("dir", dir), logx.String("file", file))

		broken := false
		for !broken {
			select {
			case <-ctx.Done():
				_ = fw.Close()
				return
			case ev, ok := <-fw.Events:
				if !ok {
					broken = true
					break
				}
				if strings.EqualFold(filepath.Base(ev.Name), file) {
					if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove|fsnotify.Chmod) != 0 {
						debounce()
					}
				}
			case err, ok := <-fw.Errors:
				if !ok {
					broken = true
					break
				}
				if err != nil {
					w.log.Warn("whitelist watch error", logx.Err(err))
					if strings.Contains(strings.ToLower(err.Error()), "closed") {
						broken = true
					}
				}
			}
		}

		_ = fw.Close()
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < restartBackoffMax {
			backoff *= 2
		}
	}
}
