package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Fixed values every reconstructed project document carries. Consumers
// needing different defaults override here, not at the call sites.
const (
	// TimeFormat is the time display format recorded in the document
	TimeFormat = "hh:mm:ss"

	// FormatVersion is the project format version the output declares
	FormatVersion = "7.0"

	// ProjectDateLayout formats the generation timestamp
	ProjectDateLayout = "2006-01-02T15:04:05"

	// ObservationType marks reconstructed observations as media based
	ObservationType = "MEDIA"

	// OutputExtension replaces the input extension on the output path
	OutputExtension = ".boris"

	// DefaultFPS is the frame rate assumed when the export carries none
	DefaultFPS = 30.0

	// DefaultBehaviorColor is the display color assigned to every
	// reconstructed behavior; exports never carry color information
	DefaultBehaviorColor = "#aaaaaa"

	// DefaultProjectDescription is written into every reconstructed
	// document so restored projects are recognizable as such
	DefaultProjectDescription = "Restored from CSV export"

	// MediaPlayerSlots is the number of player slots an observation's
	// file table must list, populated or not
	MediaPlayerSlots = 8
)

// HistoryConfig represents restore history configuration
type HistoryConfig struct {
	// Enabled records each successful restore in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database
	DBPath string `yaml:"db_path"`
}

// Config represents borisrec configuration options
type Config struct {
	// DefaultFPS is the frame rate used when an export carries none
	DefaultFPS float64 `yaml:"default_fps"`

	// BehaviorColor is the display color assigned to behaviors
	BehaviorColor string `yaml:"behavior_color"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// History contains restore history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		DefaultFPS:    DefaultFPS,
		BehaviorColor: DefaultBehaviorColor,
		LogLevel:      "info",
		History: HistoryConfig{
			Enabled: true,
			DBPath:  "", // resolved against HomeDir when empty
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if fileCfg.DefaultFPS != 0 {
		cfg.DefaultFPS = fileCfg.DefaultFPS
	}
	if fileCfg.BehaviorColor != "" {
		cfg.BehaviorColor = fileCfg.BehaviorColor
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}

	// The history section needs presence detection: disabling history is
	// expressed with an explicit enabled: false, which a plain non-zero
	// merge would ignore.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if historySection, exists := rawMap["history"]; exists && historySection != nil {
			historyMap, _ := historySection.(map[string]interface{})
			if _, exists := historyMap["enabled"]; exists {
				cfg.History.Enabled = fileCfg.History.Enabled
			}
			if _, exists := historyMap["db_path"]; exists {
				cfg.History.DBPath = fileCfg.History.DBPath
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .borisrec/config.yaml in the
// specified directory. If the directory or file doesn't exist, returns
// default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ".borisrec", "config.yaml")
	return LoadConfig(configPath)
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file settings
func (c *Config) MergeWithFlags(fps *float64, logLevel *string, dbPath *string) {
	if fps != nil {
		c.DefaultFPS = *fps
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if dbPath != nil {
		c.History.DBPath = *dbPath
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.DefaultFPS <= 0 {
		return fmt.Errorf("default_fps must be > 0, got %v", c.DefaultFPS)
	}

	if len(c.BehaviorColor) == 0 || c.BehaviorColor[0] != '#' {
		return fmt.Errorf("behavior_color must be a #-prefixed hex color, got %q", c.BehaviorColor)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	return nil
}

// HomeDir returns the directory borisrec keeps its own files in: the
// BORISREC_HOME environment variable when set, otherwise .borisrec under
// the user's home directory.
func HomeDir() string {
	if dir := os.Getenv("BORISREC_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".borisrec"
	}
	return filepath.Join(home, ".borisrec")
}

// ResolveDBPath returns the history database location, preferring the
// configured path over the default under HomeDir.
func (c *Config) ResolveDBPath() string {
	if c.History.DBPath != "" {
		return c.History.DBPath
	}
	return filepath.Join(HomeDir(), "history.db")
}
