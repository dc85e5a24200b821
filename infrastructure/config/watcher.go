package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Watcher watches the configuration file and hot-reloads the inference
// thresholds on change. Only the Inference section is dynamic; server
// and upstream settings require a restart.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	mu       sync.RWMutex
	current  InferenceConfig
	onChange []func(InferenceConfig)
	logger   *zap.Logger
	stopCh   chan struct{}
}

// NewWatcher creates a watcher for the given config file
func NewWatcher(path string, initial InferenceConfig, logger *zap.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory: editors replace files on save, which drops
	// a watch registered on the file itself
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	w := &Watcher{
		path:    path,
		watcher: fsWatcher,
		current: initial,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}

	go w.watch()

	return w, nil
}

// OnChange registers a callback invoked with the new inference config
// after each successful reload
func (w *Watcher) OnChange(fn func(InferenceConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Current returns the last successfully loaded inference config
func (w *Watcher) Current() InferenceConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Stop shuts the watcher down
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
}

func (w *Watcher) watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.logger.Warn("config reload failed", zap.String("path", w.path), zap.Error(err))
		return
	}

	// Unmarshal over the current values so a partial file only changes
	// the thresholds it names
	cfg := Config{Inference: w.Current()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		w.logger.Warn("config reload failed: invalid yaml", zap.String("path", w.path), zap.Error(err))
		return
	}

	inf := cfg.Inference
	if inf.SemanticThreshold < 0 || inf.SemanticThreshold > 1 ||
		inf.MentionStrength < 0 || inf.MentionStrength > 1 ||
		inf.TemporalWindowHours <= 0 {
		w.logger.Warn("config reload rejected: thresholds out of range")
		return
	}

	w.mu.Lock()
	w.current = cfg.Inference
	callbacks := make([]func(InferenceConfig), len(w.onChange))
	copy(callbacks, w.onChange)
	w.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg.Inference)
	}

	w.logger.Info("inference config reloaded",
		zap.Float64("semantic_threshold", cfg.Inference.SemanticThreshold),
		zap.Float64("mention_strength", cfg.Inference.MentionStrength),
		zap.Float64("temporal_window_hours", cfg.Inference.TemporalWindowHours),
	)
}
