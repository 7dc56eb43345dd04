package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 250 * time.Millisecond

// Watcher reloads the configuration file when it changes and hands the new
// configuration to the registered callbacks. Callbacks run on the watcher
// goroutine.
type Watcher struct {
	path      string
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	mu        sync.Mutex
	current   *Config
	callbacks []func(*Config)
	stopCh    chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
	reload    func(string) (*Config, error)
}

// NewWatcher starts watching path. The parent directory is watched so that
// editors replacing the file by rename are noticed too.
func NewWatcher(path string, initial *Config, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:    abs,
		logger:  logger,
		watcher: fsw,
		current: initial,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
		reload:  Load,
	}
	go w.watchLoop()

	logger.Info("Configuration hot reloading enabled", zap.String("path", abs))
	return w, nil
}

// OnChange registers a callback invoked after every successful reload.
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Stop ends the watch loop and waits for it to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.done
	})
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	defer w.watcher.Close()

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debug("Configuration file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, w.reloadConfig)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			w.logger.Info("Stopping configuration watcher")
			return
		}
	}
}

func (w *Watcher) reloadConfig() {
	cfg, err := w.reload(w.path)
	if err != nil {
		w.logger.Error("Configuration reload failed, keeping previous values", zap.Error(err))
		return
	}

	w.mu.Lock()
	old := w.current
	w.current = cfg
	callbacks := append([]func(*Config){}, w.callbacks...)
	w.mu.Unlock()

	if old != nil && old.Field.Particles != cfg.Field.Particles {
		w.logger.Warn("Particle count cannot change while running",
			zap.Int("running", old.Field.Particles),
			zap.Int("requested", cfg.Field.Particles),
		)
	}

	for _, fn := range callbacks {
		fn(cfg)
	}
	w.logger.Info("Configuration reloaded",
		zap.Float64("cursor_radius", cfg.Field.CursorRadius),
		zap.Float64("connection_threshold", cfg.Field.ConnectionThreshold),
	)
}
