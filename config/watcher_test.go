package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWatchedConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0644))
	return path
}

func TestWatcherReloadNotifiesCallbacks(t *testing.T) {
	path := writeWatchedConfig(t)
	w, err := NewWatcher(path, NewLoader())
	require.NoError(t, err)
	defer w.Stop()

	got := make(chan *Config, 1)
	w.OnChange(func(cfg *Config) { got <- cfg })

	w.reloadConfig()

	select {
	case cfg := <-got:
		assert.Equal(t, "debug", cfg.Log.Level)
	case <-time.After(2 * time.Second):
		t.Fatal("callback was not invoked")
	}
}

func TestWatcherSurvivesPanickingCallback(t *testing.T) {
	path := writeWatchedConfig(t)
	w, err := NewWatcher(path, NewLoader())
	require.NoError(t, err)
	defer w.Stop()

	done := make(chan struct{}, 1)
	w.OnChange(func(cfg *Config) { panic("callback blew up") })
	w.OnChange(func(cfg *Config) { done <- struct{}{} })

	// A panicking callback must be contained so the remaining callbacks
	// (and the process) keep running.
	w.reloadConfig()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second callback was not invoked")
	}
}
