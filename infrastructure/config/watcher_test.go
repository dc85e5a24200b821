package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestWatcher(t *testing.T) (*Watcher, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("inference:\n  semantic_threshold: 0.1\n"), 0o600))

	initial := InferenceConfig{
		SemanticThreshold:   0.1,
		MentionStrength:     0.5,
		TemporalWindowHours: 24,
	}
	w, err := NewWatcher(path, initial, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(w.Stop)

	return w, path
}

func TestWatcher_ReloadAppliesNewThresholds(t *testing.T) {
	w, path := newTestWatcher(t)

	content := `
inference:
  semantic_threshold: 0.35
  mention_strength: 0.6
  temporal_window_hours: 48
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	w.reload()

	current := w.Current()
	assert.Equal(t, 0.35, current.SemanticThreshold)
	assert.Equal(t, 0.6, current.MentionStrength)
	assert.Equal(t, 48.0, current.TemporalWindowHours)
}

func TestWatcher_PartialFileKeepsUnnamedValues(t *testing.T) {
	w, path := newTestWatcher(t)

	require.NoError(t, os.WriteFile(path, []byte("inference:\n  semantic_threshold: 0.4\n"), 0o600))
	w.reload()

	current := w.Current()
	assert.Equal(t, 0.4, current.SemanticThreshold)
	assert.Equal(t, 0.5, current.MentionStrength)
	assert.Equal(t, 24.0, current.TemporalWindowHours)
}

func TestWatcher_RejectsOutOfRangeReload(t *testing.T) {
	w, path := newTestWatcher(t)

	require.NoError(t, os.WriteFile(path, []byte("inference:\n  semantic_threshold: 7\n"), 0o600))
	w.reload()

	assert.Equal(t, 0.1, w.Current().SemanticThreshold)
}

func TestWatcher_RejectsInvalidYaml(t *testing.T) {
	w, path := newTestWatcher(t)

	require.NoError(t, os.WriteFile(path, []byte("inference: [not a map"), 0o600))
	w.reload()

	assert.Equal(t, 0.1, w.Current().SemanticThreshold)
}

func TestWatcher_NotifiesCallbacks(t *testing.T) {
	w, path := newTestWatcher(t)

	var (
		mu  sync.Mutex
		got InferenceConfig
	)
	w.OnChange(func(cfg InferenceConfig) {
		mu.Lock()
		defer mu.Unlock()
		got = cfg
	})

	require.NoError(t, os.WriteFile(path, []byte("inference:\n  semantic_threshold: 0.2\n"), 0o600))
	w.reload()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0.2, got.SemanticThreshold)
}
