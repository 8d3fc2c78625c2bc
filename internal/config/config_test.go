package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, int64(20), cfg.Engine.FactorialLimit)
	assert.Equal(t, 10, cfg.Session.HistorySize)
	assert.Equal(t, int64(1000), cfg.Monitor.Threshold)
	assert.Equal(t, 5*time.Second, cfg.MonitorInterval())
	assert.True(t, cfg.Store.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DirName, "config.yaml")

	cfg := DefaultConfig()
	cfg.Engine.FactorialLimit = 30
	cfg.Monitor.Interval = "250ms"
	cfg.Logging.Categories = map[string]bool{"bench": false}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(30), loaded.Engine.FactorialLimit)
	assert.Equal(t, 250*time.Millisecond, loaded.MonitorInterval())
	assert.False(t, loaded.Logging.IsCategoryEnabled("bench"))
	assert.Equal(t, 30, int(loaded.EngineLimits().FactorialLimit))
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  history_size: 3\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Session.HistorySize)
	assert.Equal(t, 50, cfg.Session.MaxScriptCommands)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: [unclosed"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TRITCALC_FACTORIAL_LIMIT", "25")
	t.Setenv("TRITCALC_HISTORY_SIZE", "4")
	t.Setenv("TRITCALC_MONITOR_INTERVAL", "1s")
	t.Setenv("TRITCALC_DB", ":memory:")
	t.Setenv("TRITCALC_DEBUG", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, int64(25), cfg.Engine.FactorialLimit)
	assert.Equal(t, 4, cfg.Session.HistorySize)
	assert.Equal(t, time.Second, cfg.MonitorInterval())
	assert.Equal(t, ":memory:", cfg.DatabasePath("/ws"))
	assert.True(t, cfg.LoggingOptions().DebugMode)
}

func TestConfig_EnvOverrideInvalid(t *testing.T) {
	t.Setenv("TRITCALC_HISTORY_SIZE", "many")
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative factorial limit", func(c *Config) { c.Engine.FactorialLimit = -1 }},
		{"zero history", func(c *Config) { c.Session.HistorySize = 0 }},
		{"negative loop guard", func(c *Config) { c.Session.MaxLoopIterations = -5 }},
		{"bad interval", func(c *Config) { c.Monitor.Interval = "soon" }},
		{"zero interval", func(c *Config) { c.Monitor.Interval = "0s" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_Passphrase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Vault.Passphrase = "from-file"
	t.Setenv("TRITCALC_PASSPHRASE", "")
	assert.Equal(t, "from-file", cfg.Passphrase())

	t.Setenv("TRITCALC_PASSPHRASE", "from-env")
	assert.Equal(t, "from-env", cfg.Passphrase())
}

func TestConfig_DatabasePath(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join("/ws", DirName, "journal.db"), cfg.DatabasePath("/ws"))

	cfg.Store.DatabasePath = "/abs/j.db"
	assert.Equal(t, "/abs/j.db", cfg.DatabasePath("/ws"))
}

func TestWatcher_FlushDebounces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Engine.FactorialLimit = 7
	require.NoError(t, cfg.Save(path))

	var got *Config
	w := NewWatcher(path, func(c *Config) { got = c })

	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()

	w.flush(time.Now())
	assert.Nil(t, got, "reload must wait for the debounce window")

	w.flush(time.Now().Add(time.Second))
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.Engine.FactorialLimit)
	assert.Equal(t, 1, w.Stats().Reloads)

	// nothing pending, nothing to do
	got = nil
	w.flush(time.Now().Add(time.Hour))
	assert.Nil(t, got)
}

func TestWatcher_InvalidConfigKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  history_size: 0\n"), 0644))

	called := false
	w := NewWatcher(path, func(*Config) { called = true })
	w.reload()

	assert.False(t, called)
	stats := w.Stats()
	assert.Equal(t, 1, stats.Failures)
	assert.Error(t, stats.LastErr)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), DirName, "config.yaml")
	require.NoError(t, DefaultConfig().Save(path))

	reloaded := make(chan *Config, 4)
	w := NewWatcher(path, func(c *Config) {
		select {
		case reloaded <- c:
		default:
		}
	})
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Writes keep landing until the watcher picks one up.
	cfg := DefaultConfig()
	cfg.Monitor.Threshold = 42
	var got *Config
	require.Eventually(t, func() bool {
		select {
		case got = <-reloaded:
			return true
		default:
			_ = cfg.Save(path)
			return false
		}
	}, 5*time.Second, 100*time.Millisecond)
	assert.Equal(t, int64(42), got.Monitor.Threshold)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_EmptyFileKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Engine.FactorialLimit = 5
	require.NoError(t, cfg.Save(path))

	var got *Config
	w := NewWatcher(path, func(c *Config) { got = c })
	w.reload()
	require.NotNil(t, got)
	assert.Equal(t, int64(5), got.Engine.FactorialLimit)

	// a truncating writer leaves the file empty for a moment
	got = nil
	require.NoError(t, os.WriteFile(path, nil, 0644))
	w.reload()
	assert.Nil(t, got)

	require.NoError(t, os.Remove(path))
	w.reload()
	assert.Nil(t, got)

	stats := w.Stats()
	assert.Equal(t, 1, stats.Reloads)
	assert.Equal(t, 2, stats.Skipped)
	assert.Zero(t, stats.Failures)
}

func TestConfig_SaveReplacesWholeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stale: true\n"), 0600))

	cfg := DefaultConfig()
	cfg.Monitor.Threshold = 77
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(77), loaded.Monitor.Threshold)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file left behind")
	assert.Equal(t, "config.yaml", entries[0].Name())
}
