package config

import "tritcalc/internal/logging"

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" env:"TRITCALC_LOG_LEVEL"`

	// DebugMode is the master toggle; false means no log files at all.
	DebugMode bool `yaml:"debug_mode" env:"TRITCALC_DEBUG"`

	JSONFormat bool            `yaml:"json_format" env:"TRITCALC_LOG_JSON"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Returns false if debug_mode is false (production mode).
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}

// LoggingOptions converts the logging section for logging.Initialize.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		DebugMode:  c.Logging.DebugMode,
		Level:      c.Logging.Level,
		JSONFormat: c.Logging.JSONFormat,
		Categories: c.Logging.Categories,
	}
}
