// Package logging provides config-driven categorized file logging for tritcalc.
// Logs are written to .tritcalc/logs/ with one file per category per day.
// Nothing is written unless debug mode is enabled; every logger is then a no-op.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup and shutdown
	CategorySession Category = "session" // Interpreter commands, variables, macros
	CategoryEngine  Category = "engine"  // Operation dispatch
	CategoryVault   Category = "vault"   // State encryption
	CategoryMonitor Category = "monitor" // Intrusion monitor samples and alerts
	CategoryStore   Category = "store"   // Command journal
	CategoryConfig  Category = "config"  // Config load and hot reload
	CategoryShell   Category = "shell"   // Interactive TUI
	CategoryBench   Category = "bench"   // Benchmarks
)

// AllCategories lists every category in declaration order.
var AllCategories = []Category{
	CategoryBoot, CategorySession, CategoryEngine, CategoryVault, CategoryMonitor,
	CategoryStore, CategoryConfig, CategoryShell, CategoryBench,
}

// Options mirrors config.LoggingConfig to avoid an import cycle.
type Options struct {
	DebugMode  bool
	Level      string
	JSONFormat bool

	// Categories disables individual categories when set to false.
	// Missing entries are enabled.
	Categories map[string]bool
}

// Logger is a category-scoped printf-style logger backed by zap.
// The zero value discards everything.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex

	// optsMu guards opts, logsDir and workspace.
	opts      Options
	logsDir   string
	workspace string
	optsMu    sync.RWMutex

	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Initialize sets up the logs directory under ws and applies o.
// Should be called once at startup.
func Initialize(ws string, o Options) error {
	if ws == "" {
		return fmt.Errorf("workspace path required")
	}

	dir := filepath.Join(ws, ".tritcalc", "logs")
	optsMu.Lock()
	workspace = ws
	logsDir = dir
	optsMu.Unlock()
	Configure(o)

	if !o.DebugMode {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== tritcalc logging initialized ===")
	boot.Info("Workspace: %s", ws)
	boot.Info("Logs directory: %s", dir)
	boot.Info("Log level: %s", level.Level())
	if len(o.Categories) > 0 {
		enabled := 0
		for cat, on := range o.Categories {
			if on {
				enabled++
			}
			boot.Debug("Category '%s': %v", cat, on)
		}
		boot.Info("Enabled categories: %d/%d", enabled, len(o.Categories))
	}
	return nil
}

// Configure swaps the active options. Open files stay open; a change of
// level takes effect immediately for every logger.
func Configure(o Options) {
	optsMu.Lock()
	opts = o
	dir := logsDir
	optsMu.Unlock()

	lvl, err := zapcore.ParseLevel(o.Level)
	if err != nil || o.Level == "" {
		lvl = zapcore.InfoLevel
	}
	level.SetLevel(lvl)

	// Debug mode switched on by a reload needs the directory too.
	if o.DebugMode && dir != "" {
		_ = os.MkdirAll(dir, 0755)
	}
}

// LogsDir returns the directory log files are written to.
func LogsDir() string {
	optsMu.RLock()
	defer optsMu.RUnlock()
	return logsDir
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	optsMu.RLock()
	defer optsMu.RUnlock()
	return opts.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	optsMu.RLock()
	defer optsMu.RUnlock()

	if !opts.DebugMode {
		return false
	}
	enabled, exists := opts.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

func isJSONFormat() bool {
	optsMu.RLock()
	defer optsMu.RUnlock()
	return opts.JSONFormat
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode or the category is disabled.
func Get(category Category) *Logger {
	dir := LogsDir()
	if !IsCategoryEnabled(category) || dir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	logPath := filepath.Join(dir, fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02"), category))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	core := zapcore.NewCore(newEncoder(isJSONFormat()), zapcore.AddSync(file), level)
	l := &Logger{
		category: category,
		file:     file,
		sugar:    zap.New(core).With(zap.String("cat", string(category))).Sugar(),
	}
	loggers[category] = l
	return l
}

func newEncoder(json bool) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if json {
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Errorf(format, args...)
}

// With returns a logger that attaches key-value pairs to every entry.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	if l.sugar == nil {
		return l
	}
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// Enabled reports whether l writes anywhere.
func (l *Logger) Enabled() bool { return l.sugar != nil }

// CloseAll syncs and closes all open log files (call at shutdown)
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		if l.sugar != nil {
			_ = l.sugar.Sync()
		}
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// BootError logs an error to the boot category
func BootError(format string, args ...interface{}) {
	Get(CategoryBoot).Error(format, args...)
}

// Session logs to the session category
func Session(format string, args ...interface{}) {
	Get(CategorySession).Info(format, args...)
}

// SessionDebug logs debug to the session category
func SessionDebug(format string, args ...interface{}) {
	Get(CategorySession).Debug(format, args...)
}

// SessionWarn logs a warning to the session category
func SessionWarn(format string, args ...interface{}) {
	Get(CategorySession).Warn(format, args...)
}

// EngineDebug logs debug to the engine category
func EngineDebug(format string, args ...interface{}) {
	Get(CategoryEngine).Debug(format, args...)
}

// Vault logs to the vault category
func Vault(format string, args ...interface{}) {
	Get(CategoryVault).Info(format, args...)
}

// VaultWarn logs a warning to the vault category
func VaultWarn(format string, args ...interface{}) {
	Get(CategoryVault).Warn(format, args...)
}

// Monitor logs to the monitor category
func Monitor(format string, args ...interface{}) {
	Get(CategoryMonitor).Info(format, args...)
}

// MonitorDebug logs debug to the monitor category
func MonitorDebug(format string, args ...interface{}) {
	Get(CategoryMonitor).Debug(format, args...)
}

// MonitorWarn logs a warning to the monitor category
func MonitorWarn(format string, args ...interface{}) {
	Get(CategoryMonitor).Warn(format, args...)
}

// Store logs to the store category
func Store(format string, args ...interface{}) {
	Get(CategoryStore).Info(format, args...)
}

// StoreError logs an error to the store category
func StoreError(format string, args ...interface{}) {
	Get(CategoryStore).Error(format, args...)
}

// Config logs to the config category
func Config(format string, args ...interface{}) {
	Get(CategoryConfig).Info(format, args...)
}

// ConfigWarn logs a warning to the config category
func ConfigWarn(format string, args ...interface{}) {
	Get(CategoryConfig).Warn(format, args...)
}

// Shell logs to the shell category
func Shell(format string, args ...interface{}) {
	Get(CategoryShell).Info(format, args...)
}

// ShellDebug logs debug to the shell category
func ShellDebug(format string, args ...interface{}) {
	Get(CategoryShell).Debug(format, args...)
}

// Bench logs to the bench category
func Bench(format string, args ...interface{}) {
	Get(CategoryBench).Info(format, args...)
}

// =============================================================================
// TIMING HELPERS
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
