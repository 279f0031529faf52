package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// configWatcher monitors the state directory's config.yaml and triggers a
// reload after changes settle.
type configWatcher struct {
	configPath   string
	watcher      *fsnotify.Watcher
	onChange     func()
	stopChan     chan struct{}
	debounceTime time.Duration
}

func newConfigWatcher(configPath string, onChange func()) (*configWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	// Watch the directory, not the file: editors replace files on save.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch config directory: %w", err)
	}

	return &configWatcher{
		configPath:   absPath,
		watcher:      watcher,
		onChange:     onChange,
		stopChan:     make(chan struct{}),
		debounceTime: 2 * time.Second,
	}, nil
}

func (cw *configWatcher) start(ctx context.Context) {
	slog.Info("Watching configuration file", "path", cw.configPath)
	go cw.watchLoop(ctx)
}

func (cw *configWatcher) watchLoop(ctx context.Context) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
		_ = cw.watcher.Close()
	}()

	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.configPath {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			// Debounce rapid successive writes.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(cw.debounceTime, cw.onChange)
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Configuration watcher error", "error", err)
		case <-cw.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (cw *configWatcher) stop() {
	close(cw.stopChan)
}
