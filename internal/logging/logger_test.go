package logging

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetLogging(t *testing.T) {
	t.Helper()
	CloseAll()
	CloseAudit()
	logsDir = ""
	workspace = ""
	auditLogger = nil
	Configure(Options{})
	t.Cleanup(func() {
		CloseAll()
		CloseAudit()
		logsDir = ""
		Configure(Options{})
	})
}

func todayFile(dir string, cat string) string {
	return filepath.Join(dir, time.Now().Format("2006-01-02")+"_"+cat+".log")
}

func TestProductionModeWritesNothing(t *testing.T) {
	resetLogging(t)
	ws := t.TempDir()

	require.NoError(t, Initialize(ws, Options{DebugMode: false}))
	Session("should not appear")
	require.NoError(t, InitAudit())
	Audit().SessionStart("s1")

	_, err := os.Stat(filepath.Join(ws, ".tritcalc", "logs"))
	assert.True(t, os.IsNotExist(err), "logs dir must not be created in production mode")
	assert.False(t, Get(CategorySession).Enabled())
}

func TestAllCategoriesLog(t *testing.T) {
	resetLogging(t)
	ws := t.TempDir()
	require.NoError(t, Initialize(ws, Options{DebugMode: true, Level: "debug"}))

	for _, cat := range AllCategories {
		Get(cat).Info("hello from %s", cat)
	}
	CloseAll()

	for _, cat := range AllCategories {
		data, err := os.ReadFile(todayFile(LogsDir(), string(cat)))
		require.NoError(t, err, "category %s", cat)
		assert.Contains(t, string(data), "hello from "+string(cat))
	}
}

func TestCategoryFilter(t *testing.T) {
	resetLogging(t)
	ws := t.TempDir()
	require.NoError(t, Initialize(ws, Options{
		DebugMode:  true,
		Categories: map[string]bool{"bench": false},
	}))

	assert.False(t, IsCategoryEnabled(CategoryBench))
	assert.True(t, IsCategoryEnabled(CategoryVault))

	Bench("dropped")
	CloseAll()
	_, err := os.Stat(todayFile(LogsDir(), "bench"))
	assert.True(t, os.IsNotExist(err))
}

func TestLevelFiltering(t *testing.T) {
	resetLogging(t)
	ws := t.TempDir()
	require.NoError(t, Initialize(ws, Options{DebugMode: true, Level: "warn"}))

	Get(CategoryStore).Info("quiet")
	Get(CategoryStore).Warn("loud")
	CloseAll()

	data, err := os.ReadFile(todayFile(LogsDir(), "store"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "quiet")
	assert.Contains(t, string(data), "loud")
}

func TestJSONFormat(t *testing.T) {
	resetLogging(t)
	ws := t.TempDir()
	require.NoError(t, Initialize(ws, Options{DebugMode: true, JSONFormat: true}))

	Get(CategoryConfig).With("path", "x.yaml").Info("reloaded %d keys", 3)
	CloseAll()

	f, err := os.Open(todayFile(LogsDir(), "config"))
	require.NoError(t, err)
	defer f.Close()

	sc := bufio.NewScanner(f)
	require.True(t, sc.Scan())
	var entry map[string]any
	require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
	assert.Equal(t, "reloaded 3 keys", entry["msg"])
	assert.Equal(t, "config", entry["cat"])
	assert.Equal(t, "x.yaml", entry["path"])
}

func TestAuditEvents(t *testing.T) {
	resetLogging(t)
	ws := t.TempDir()
	require.NoError(t, Initialize(ws, Options{DebugMode: true}))
	require.NoError(t, InitAudit())

	a := AuditWithSession("sess-1")
	a.SessionStart("sess-1")
	a.CommandExec("add", "add 1 1", 0)
	a.CommandError("div", "div 1 0", 3, errors.New("div: division by zero"))
	a.StateSave("state.bin", 120, nil)
	a.Intrusion(true, 1001, 1000)
	CloseAudit()

	data, err := os.ReadFile(todayFile(LogsDir(), "audit"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)

	var events []map[string]any
	for _, line := range lines {
		var e map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		events = append(events, e)
	}

	assert.Equal(t, "session_start", events[0]["event"])
	assert.Equal(t, "sess-1", events[1]["session"])
	assert.Equal(t, "command_error", events[2]["event"])
	assert.Equal(t, float64(3), events[2]["code"])
	assert.Equal(t, false, events[2]["success"])
	assert.Equal(t, "state.bin", events[3]["target"])
	assert.Equal(t, "intrusion_alert", events[4]["event"])
	assert.NotZero(t, events[4]["ts"])
}

func TestTimer(t *testing.T) {
	resetLogging(t)
	timer := StartTimer(CategoryBench, "noop")
	assert.GreaterOrEqual(t, timer.StopWithThreshold(time.Hour), time.Duration(0))
}

func TestConfigureEnablesDebugModeLater(t *testing.T) {
	resetLogging(t)
	ws := t.TempDir()
	require.NoError(t, Initialize(ws, Options{}))
	assert.False(t, IsDebugMode())

	Configure(Options{DebugMode: true, Level: "info"})
	Session("after reload")
	CloseAll()

	data, err := os.ReadFile(todayFile(LogsDir(), string(CategorySession)))
	require.NoError(t, err)
	assert.Contains(t, string(data), "after reload")
}

func TestInitializeWhileLogging(t *testing.T) {
	resetLogging(t)
	ws := t.TempDir()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					Monitor("sample")
					_ = LogsDir()
				}
			}
		}()
	}

	require.NoError(t, Initialize(ws, Options{DebugMode: true}))
	close(stop)
	wg.Wait()

	assert.Equal(t, filepath.Join(ws, ".tritcalc", "logs"), LogsDir())
}
