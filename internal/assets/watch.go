package assets

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/terrapaint/internal/logger"
	"github.com/Faultbox/terrapaint/internal/texture"
)

// settleDelay is how long a stamp file must stay quiet before it is reloaded.
const settleDelay = 100 * time.Millisecond

// Watcher reports stamp files that changed on disk. Bursts of events for
// the same file collapse into one notification once the file settles.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
	done    chan struct{}
}

// NewWatcher starts watching dirs.
func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher. Events and Errors are closed once the
// background goroutine exits.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer func() {
		close(w.Events)
		close(w.Errors)
		close(w.done)
	}()

	pending := make(map[string]time.Time)
	tick := time.NewTicker(settleDelay / 2)
	defer tick.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !texture.SupportedExt(filepath.Ext(event.Name)) {
				continue
			}
			pending[event.Name] = time.Now()
		case <-tick.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) < settleDelay {
					continue
				}
				delete(pending, name)
				select {
				case w.Events <- name:
				case <-w.closeCh:
					return
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// Watch reloads stamps from the library directory as files change until
// ctx is cancelled. onChange, if non-nil, is called after each reload.
func (l *Library) Watch(ctx context.Context, onChange func(name string)) error {
	dir := l.Dir()
	w, err := NewWatcher(dir)
	if err != nil {
		return err
	}
	defer w.Close()

	logger.Info("watching stamp directory", zap.String("dir", dir))
	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			if err := l.Reload(path); err != nil {
				logger.Warn("stamp reload failed", zap.String("path", path), zap.Error(err))
				continue
			}
			logger.Debug("stamp reloaded", zap.String("path", path))
			if onChange != nil {
				onChange(stampName(path))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("stamp watcher error", zap.Error(err))
		}
	}
}
