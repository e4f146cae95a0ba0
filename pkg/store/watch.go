package store

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Debounce windows for Watch.
const (
	watchTick   = 100 * time.Millisecond
	watchSettle = 150 * time.Millisecond
)

// Watch calls onChange with the base name of each state file in dir that
// was written or replaced, once the file has been quiet for a short while.
// It blocks until ctx ends.
func Watch(ctx context.Context, dir string, onChange func(name string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return eris.Wrap(err, "store: new watcher")
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return eris.Wrapf(err, "store: watch %s", dir)
	}
	zap.L().Debug("store: watching", zap.String("dir", dir))

	pending := map[string]time.Time{}
	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if !isStateFile(name) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				pending[name] = time.Now()
			}
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) >= watchSettle {
					delete(pending, name)
					onChange(name)
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			zap.L().Warn("store: watch error", zap.Error(err))
		}
	}
}

func isStateFile(name string) bool {
	return name == LastCheckedFile || name == ValuesFile
}

// WatchLast re-reads the last-checked record from s after each change on
// disk and hands it to fn. Useful for readers in another process.
func WatchLast(ctx context.Context, s *FileStore, fn func(LastChecked)) error {
	return Watch(ctx, s.Dir(), func(name string) {
		if name != LastCheckedFile {
			return
		}
		last, ok, err := s.Last(ctx)
		if err != nil {
			zap.L().Warn("store: reload last checked", zap.Error(err))
			return
		}
		if ok {
			fn(last)
		}
	})
}
