// Package config loads tritcalc's YAML configuration, applies TRITCALC_*
// environment overrides and watches the file for hot reload.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"tritcalc/internal/engine"
	"tritcalc/internal/trit"
)

// DirName is the per-workspace state directory.
const DirName = ".tritcalc"

// Config holds all tritcalc configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Session SessionConfig `yaml:"session"`
	Monitor MonitorConfig `yaml:"monitor"`
	Vault   VaultConfig   `yaml:"vault"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig configures operation limits.
type EngineConfig struct {
	FactorialLimit int64 `yaml:"factorial_limit" env:"TRITCALC_FACTORIAL_LIMIT"`
}

// SessionConfig bounds the interpreter.
type SessionConfig struct {
	HistorySize       int `yaml:"history_size" env:"TRITCALC_HISTORY_SIZE"`
	MaxScripts        int `yaml:"max_scripts" env:"TRITCALC_MAX_SCRIPTS"`
	MaxScriptCommands int `yaml:"max_script_commands" env:"TRITCALC_MAX_SCRIPT_COMMANDS"`
	MaxLoopIterations int `yaml:"max_loop_iterations" env:"TRITCALC_MAX_LOOP_ITERATIONS"`
	MaxCallDepth      int `yaml:"max_call_depth" env:"TRITCALC_MAX_CALL_DEPTH"`
}

// MonitorConfig configures the intrusion monitor.
type MonitorConfig struct {
	Threshold int64  `yaml:"threshold" env:"TRITCALC_MONITOR_THRESHOLD"`
	Interval  string `yaml:"interval" env:"TRITCALC_MONITOR_INTERVAL"`
}

// VaultConfig locates the state encryption passphrase.
type VaultConfig struct {
	// PassphraseEnv names the environment variable checked first.
	PassphraseEnv string `yaml:"passphrase_env"`
	Passphrase    string `yaml:"passphrase,omitempty"`
}

// StoreConfig configures the command journal.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path" env:"TRITCALC_DB"`
	Enabled      bool   `yaml:"enabled" env:"TRITCALC_STORE_ENABLED"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			FactorialLimit: trit.DefaultFactorialLimit,
		},
		Session: SessionConfig{
			HistorySize:       10,
			MaxScripts:        10,
			MaxScriptCommands: 50,
			MaxLoopIterations: 10000,
			MaxCallDepth:      8,
		},
		Monitor: MonitorConfig{
			Threshold: 1000,
			Interval:  "5s",
		},
		Vault: VaultConfig{
			PassphraseEnv: "TRITCALC_PASSPHRASE",
		},
		Store: StoreConfig{
			DatabasePath: filepath.Join(DirName, "journal.db"),
			Enabled:      true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns <workspace>/.tritcalc/config.yaml.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, DirName, "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save atomically writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data, 0644)
}

// writeFileAtomic replaces path via a temp file in the same directory so a
// concurrent reader sees either the old or the new contents, never a
// truncated file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// applyEnvOverrides overwrites fields whose TRITCALC_* variable is set.
func (c *Config) applyEnvOverrides() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Engine.FactorialLimit < 0 {
		return fmt.Errorf("engine.factorial_limit must be >= 0, got %d", c.Engine.FactorialLimit)
	}
	if c.Session.HistorySize < 1 {
		return fmt.Errorf("session.history_size must be >= 1, got %d", c.Session.HistorySize)
	}
	for name, v := range map[string]int{
		"session.max_scripts":         c.Session.MaxScripts,
		"session.max_script_commands": c.Session.MaxScriptCommands,
		"session.max_loop_iterations": c.Session.MaxLoopIterations,
		"session.max_call_depth":      c.Session.MaxCallDepth,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be >= 0, got %d", name, v)
		}
	}
	if c.Monitor.Threshold < 0 {
		return fmt.Errorf("monitor.threshold must be >= 0, got %d", c.Monitor.Threshold)
	}
	d, err := time.ParseDuration(c.Monitor.Interval)
	if err != nil {
		return fmt.Errorf("monitor.interval: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("monitor.interval must be positive, got %s", c.Monitor.Interval)
	}
	return nil
}

// MonitorInterval returns the monitor sampling interval as a duration.
func (c *Config) MonitorInterval() time.Duration {
	d, err := time.ParseDuration(c.Monitor.Interval)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// EngineLimits converts the engine section for engine.New.
func (c *Config) EngineLimits() engine.Limits {
	return engine.Limits{FactorialLimit: c.Engine.FactorialLimit}
}

// Passphrase returns the vault passphrase, preferring the environment.
func (c *Config) Passphrase() string {
	if c.Vault.PassphraseEnv != "" {
		if p := os.Getenv(c.Vault.PassphraseEnv); p != "" {
			return p
		}
	}
	return c.Vault.Passphrase
}

// DatabasePath resolves the journal path against workspace. ":memory:" and
// absolute paths are returned unchanged.
func (c *Config) DatabasePath(workspace string) string {
	p := c.Store.DatabasePath
	if p == ":memory:" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(workspace, p)
}

// FindWorkspaceRoot walks up from the working directory looking for a
// .tritcalc directory. If none is found, the working directory is returned.
func FindWorkspaceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	originalDir := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, DirName)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return originalDir, nil
}
