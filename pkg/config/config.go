/*
Package config manages TOML config for mathserve.

The config file holds the start key, server and CLI limits and the custom
abbreviation table. Mappings are stored as an array of tables so their order
survives a load/save round trip:

	[trigger]
	start_key = "^"

	[[custom_mappings]]
	abbr = "fraction"
	expansion = '\frac{numerator}{denominator}'
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/mathserve/internal/utils"
	"github.com/bastiangx/mathserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
)

// Config holds the entire config structure
type Config struct {
	Trigger  TriggerConfig   `toml:"trigger"`
	Server   ServerConfig    `toml:"server"`
	CLI      CliConfig       `toml:"cli"`
	Mappings []suggest.Entry `toml:"custom_mappings"`
}

// TriggerConfig controls when a lookup opens.
type TriggerConfig struct {
	StartKey string `toml:"start_key"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit     int `toml:"max_limit"`
	DefaultLimit int `toml:"default_limit"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int `toml:"default_limit"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", errors.Wrap(execErr, "resolving config dir")
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "mathserve")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "mathserve")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", errors.Wrap(err, "resolving config dir")
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from -config flag or MATHSERVE_CONFIG
// 2. Default path: [UserConfigDir]/mathserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			config, err := InitConfig(customConfigPath)
			if err == nil {
				log.Debugf("Created config at custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
			log.Warnf("Custom config file not usable at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Trigger: TriggerConfig{
			StartKey: suggest.DefaultStartMarker,
		},
		Server: ServerConfig{
			MaxLimit:     64,
			DefaultLimit: 20,
		},
		CLI: CliConfig{
			DefaultLimit: 10,
		},
		Mappings: DefaultMappings(),
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		return nil, errors.WithHintf(errors.Wrapf(err, "creating config dir %s", configDir),
			"pass -config with a writable location")
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. Fields missing from the file keep their
// defaults, and a file that does not decode is recovered section by section.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	// decoding into a non-empty slice would merge rows into the defaults
	config.Mappings = nil

	md, err := utils.LoadTOMLFile(configPath, config)
	if err != nil {
		config = tryPartialParse(configPath)
	} else if !md.IsDefined("custom_mappings") {
		config.Mappings = DefaultMappings()
	}
	config.Validate()
	return config, nil
}

// tryPartialParse keeps every section that still parses
func tryPartialParse(configPath string) *Config {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config
	}

	if triggerSection, ok := utils.ExtractSection(tempConfig, "trigger"); ok {
		extractTriggerConfig(triggerSection, &config.Trigger)
	}
	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if cliSection, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(cliSection, &config.CLI)
	}
	if rows, ok := utils.ExtractTableArray(tempConfig, "custom_mappings"); ok {
		config.Mappings = extractMappings(rows)
	}
	return config
}

func extractTriggerConfig(data map[string]any, trigger *TriggerConfig) {
	if val, ok := utils.ExtractString(data, "start_key"); ok {
		trigger.StartKey = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		server.DefaultLimit = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
}

// extractMappings keeps the rows that have both an abbr and an expansion
func extractMappings(rows []map[string]any) []suggest.Entry {
	entries := make([]suggest.Entry, 0, len(rows))
	for i, row := range rows {
		abbr, okA := utils.ExtractString(row, "abbr")
		expansion, okE := utils.ExtractString(row, "expansion")
		if !okA || !okE {
			log.Warnf("Skipping custom_mappings entry %d: abbr and expansion must be strings", i+1)
			continue
		}
		entries = append(entries, suggest.Entry{Abbr: abbr, Expansion: expansion})
	}
	return entries
}

// Validate replaces unusable values with defaults.
func (c *Config) Validate() {
	defaults := DefaultConfig()
	if c.Trigger.StartKey == "" {
		log.Warnf("Empty start_key, using %q", defaults.Trigger.StartKey)
		c.Trigger.StartKey = defaults.Trigger.StartKey
	}
	if c.Server.MaxLimit < 1 {
		c.Server.MaxLimit = defaults.Server.MaxLimit
	}
	if c.Server.DefaultLimit < 1 || c.Server.DefaultLimit > c.Server.MaxLimit {
		c.Server.DefaultLimit = min(defaults.Server.DefaultLimit, c.Server.MaxLimit)
	}
	if c.CLI.DefaultLimit < 1 {
		c.CLI.DefaultLimit = defaults.CLI.DefaultLimit
	}

	kept := c.Mappings[:0]
	for _, e := range c.Mappings {
		if e.Abbr == "" || e.Expansion == "" {
			log.Warnf("Skipping incomplete mapping: abbr=%q expansion=%q", e.Abbr, e.Expansion)
			continue
		}
		kept = append(kept, e)
	}
	c.Mappings = kept
}

// Table builds the abbreviation table from the configured mappings.
func (c *Config) Table() *suggest.Table {
	return suggest.NewTable(c.Mappings...)
}

// Snapshot returns the marker and table as one immutable value.
func (c *Config) Snapshot() suggest.Snapshot {
	return suggest.Snapshot{StartMarker: c.Trigger.StartKey, Table: c.Table()}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(defaultPath)
	if err := utils.EnsureDir(configDir); err != nil {
		return errors.Wrapf(err, "creating config dir %s", configDir)
	}
	return SaveConfig(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "builtin"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	if err := utils.SaveTOMLFile(config, configPath); err != nil {
		return errors.Wrapf(err, "saving config to %s", configPath)
	}
	return nil
}
