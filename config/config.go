// Package config provides configuration management for gterm.
// It handles loading, saving, and validating application settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yllada/gterm/common"
	"github.com/yllada/gterm/preferences"
)

// Config represents the application configuration.
// User preferences live in their own store; this file only holds settings
// that decide how the application is assembled.
type Config struct {
	// Storage selects the preference backend: "yaml", "sqlite" or "memory".
	Storage string `yaml:"storage"`
	// StoragePath overrides the default location of the preference file
	// or database. Empty means the default for the chosen backend.
	StoragePath string `yaml:"storage_path,omitempty"`
	// LogLevel is one of "debug", "info", "warn" or "error".
	LogLevel string `yaml:"log_level"`
	// LogToFile enables the rotating log file under the config directory.
	LogToFile bool `yaml:"log_to_file"`
	// FollowSystem enables the desktop settings portal. When false, or
	// when the portal is unreachable, the system is treated as light with
	// locales taken from the environment.
	FollowSystem bool `yaml:"follow_system"`
	// ConnectTimeout is how long a session may stay connecting before it
	// is marked failed. Zero disables the timeout.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	// Languages is the table of supported UI languages.
	Languages preferences.LanguageTable `yaml:"languages"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage:        common.StorageYAML,
		LogLevel:       "info",
		LogToFile:      false,
		FollowSystem:   true,
		ConnectTimeout: 30 * time.Second,
		Languages:      preferences.DefaultLanguageTable(),
	}
}

// Load loads the configuration from the default config file.
// If the file doesn't exist, it creates one with default values.
func Load() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from path, creating the file with
// defaults if it is missing.
func LoadFrom(configPath string) (*Config, error) {
	if !common.FileExists(configPath) {
		cfg := DefaultConfig()
		if err := cfg.SaveTo(configPath); err != nil {
			return cfg, err
		}
		common.LogInfo("Created default configuration at %s", configPath)
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrConfigLoad, err)
	}
	return Parse(data)
}

// Parse decodes a YAML configuration. Unknown fields are rejected; fields
// that are absent keep their default values.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict validation: reject unknown fields

	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parsing: %w", common.ErrConfigLoad, err)
	}

	cfg.validate()
	return cfg, nil
}

// validate replaces invalid values with their defaults.
func (c *Config) validate() {
	defaults := DefaultConfig()

	validStorage := []string{common.StorageYAML, common.StorageSQLite, common.StorageMemory}
	if !slices.Contains(validStorage, c.Storage) {
		common.LogWarn("Unknown storage backend %q, using %s", c.Storage, defaults.Storage)
		c.Storage = defaults.Storage
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, c.LogLevel) {
		common.LogWarn("Unknown log level %q, using %s", c.LogLevel, defaults.LogLevel)
		c.LogLevel = defaults.LogLevel
	}

	if c.ConnectTimeout < 0 {
		common.LogWarn("Negative connect timeout %v, using %v", c.ConnectTimeout, defaults.ConnectTimeout)
		c.ConnectTimeout = defaults.ConnectTimeout
	}

	c.Languages = validLanguages(c.Languages)
}

// validLanguages drops options without a code and duplicate codes, and
// aliases that point nowhere. An empty table becomes the default one.
func validLanguages(t preferences.LanguageTable) preferences.LanguageTable {
	seen := make(map[string]bool, len(t.Options))
	options := make([]preferences.LanguageOption, 0, len(t.Options))
	for _, o := range t.Options {
		code := preferences.NormalizeTag(o.Code)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		if o.Label == "" {
			o.Label = code
		}
		o.Code = code
		options = append(options, o)
	}
	if len(options) == 0 {
		return preferences.DefaultLanguageTable()
	}

	aliases := make(map[string]string, len(t.Aliases))
	for from, to := range t.Aliases {
		from = preferences.NormalizeTag(from)
		to = preferences.NormalizeTag(to)
		if from == "" || !seen[to] {
			continue
		}
		aliases[from] = to
	}
	if len(aliases) == 0 {
		aliases = nil
	}

	def := preferences.NormalizeTag(t.Default)
	if !seen[def] {
		def = options[0].Code
	}

	return preferences.LanguageTable{Default: def, Options: options, Aliases: aliases}
}

// Save saves the configuration to the default config file.
func (c *Config) Save() error {
	configPath, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to path.
func (c *Config) SaveTo(configPath string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("%w: creating config directory: %w", common.ErrConfigSave, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: serializing: %w", common.ErrConfigSave, err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("%w: %w", common.ErrConfigSave, err)
	}

	return nil
}

// Path returns the default configuration file location.
func Path() (string, error) {
	dir, err := common.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, common.ConfigFileName), nil
}
