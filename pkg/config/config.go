/*
Package config manages TOML config for WordLens services.

Values come from built-in defaults, then the config file, then WORDLENS_*
environment variables.
*/
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/bastiangx/wordlens/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the entire config structure
type Config struct {
	Dict   DictConfig   `toml:"dict"`
	Server ServerConfig `toml:"server"`
	CLI    CliConfig    `toml:"cli"`
	Log    LogConfig    `toml:"log"`
}

// DictConfig holds dictionary options.
type DictConfig struct {
	Paths        []string `toml:"paths" env:"WORDLENS_DICT_PATHS" env-separator:","`
	PhraseMarker string   `toml:"phrase_marker" env:"WORDLENS_PHRASE_MARKER"`
	Workers      int      `toml:"workers" env:"WORDLENS_WORKERS"`
	Watch        bool     `toml:"watch" env:"WORDLENS_WATCH"`
	DebounceMs   int      `toml:"debounce_ms" env:"WORDLENS_DEBOUNCE_MS"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	Codec         string `toml:"codec" env:"WORDLENS_CODEC"`
	MaxTextLength int    `toml:"max_text_length" env:"WORDLENS_MAX_TEXT_LENGTH"`
	CacheSize     int    `toml:"cache_size" env:"WORDLENS_CACHE_SIZE"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	ShowRelated bool `toml:"show_related" env:"WORDLENS_SHOW_RELATED"`
	Color       bool `toml:"color" env:"WORDLENS_COLOR"`
}

// LogConfig holds logger options.
type LogConfig struct {
	Level     string `toml:"level" env:"WORDLENS_LOG_LEVEL"`
	Format    string `toml:"format" env:"WORDLENS_LOG_FORMAT"`
	Timestamp bool   `toml:"timestamp" env:"WORDLENS_LOG_TIMESTAMP"`
}

// Debounce returns the watcher debounce as a duration.
func (d DictConfig) Debounce() time.Duration {
	return time.Duration(d.DebounceMs) * time.Millisecond
}

// GetConfigDir returns the config directory with fallback priority:
// 1. platform config dir (~/.config/wordlens, $XDG_CONFIG_HOME, %APPDATA%)
// 2. Current executable dir
func GetConfigDir() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		log.Errorf("Failed to resolve paths: %v", err)
		return "", err
	}
	primaryPath := pr.ConfigDir()
	if result := utils.CheckDirStatus(primaryPath); result.Writable || !result.Exists {
		return primaryPath, nil
	}
	return pr.ExecutableDir(), nil
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
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/wordlens/config.toml
// 3. Builtin defaults
//
// Environment overrides are applied on top in every case.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	config, path := loadFile(customConfigPath)
	if err := ApplyEnv(config); err != nil {
		return config, path, err
	}
	return config, path, nil
}

func loadFile(customConfigPath string) (*Config, string) {
	if customConfigPath != "" {
		if utils.FileExists(customConfigPath) {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath
			}
		} else {
			log.Warnf("Custom config file not found at %s. Trying default path...", customConfigPath)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), ""
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), ""
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath
}

// ApplyEnv overrides config values from WORDLENS_* environment variables.
// Unset variables keep the current value.
func ApplyEnv(config *Config) error {
	if err := cleanenv.ReadEnv(config); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}
	config.normalize()
	return nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Dict: DictConfig{
			Paths:        []string{"data"},
			PhraseMarker: "phrases",
			Workers:      0,
			Watch:        false,
			DebounceMs:   250,
		},
		Server: ServerConfig{
			Codec:         "msgpack",
			MaxTextLength: 100000,
			CacheSize:     256,
		},
		CLI: CliConfig{
			ShowRelated: true,
			Color:       true,
		},
		Log: LogConfig{
			Level:     "info",
			Format:    "text",
			Timestamp: false,
		},
	}
}

// normalize replaces invalid values with defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if len(c.Dict.Paths) == 0 {
		c.Dict.Paths = def.Dict.Paths
	}
	if c.Dict.PhraseMarker == "" {
		c.Dict.PhraseMarker = def.Dict.PhraseMarker
	}
	if c.Dict.Workers < 0 {
		c.Dict.Workers = def.Dict.Workers
	}
	if c.Dict.DebounceMs <= 0 {
		c.Dict.DebounceMs = def.Dict.DebounceMs
	}
	if c.Server.Codec != "msgpack" && c.Server.Codec != "json" {
		log.Warnf("Unknown codec %q, using %s", c.Server.Codec, def.Server.Codec)
		c.Server.Codec = def.Server.Codec
	}
	if c.Server.MaxTextLength <= 0 {
		c.Server.MaxTextLength = def.Server.MaxTextLength
	}
	if c.Server.CacheSize < 0 {
		c.Server.CacheSize = 0
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
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

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.normalize()
	return config, nil
}

// tryPartialParse keeps every section that still parses
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(section, &config.Dict)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	if section, ok := utils.ExtractSection(tempConfig, "log"); ok {
		extractLogConfig(section, &config.Log)
	}
	config.normalize()
	return config, nil
}

func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractStringSlice(data, "paths"); ok {
		dict.Paths = val
	}
	if val, ok := utils.ExtractString(data, "phrase_marker"); ok {
		dict.PhraseMarker = val
	}
	if val, ok := utils.ExtractInt64(data, "workers"); ok {
		dict.Workers = val
	}
	if val, ok := utils.ExtractBool(data, "watch"); ok {
		dict.Watch = val
	}
	if val, ok := utils.ExtractInt64(data, "debounce_ms"); ok {
		dict.DebounceMs = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractString(data, "codec"); ok {
		server.Codec = val
	}
	if val, ok := utils.ExtractInt64(data, "max_text_length"); ok {
		server.MaxTextLength = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		server.CacheSize = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractBool(data, "show_related"); ok {
		cli.ShowRelated = val
	}
	if val, ok := utils.ExtractBool(data, "color"); ok {
		cli.Color = val
	}
}

func extractLogConfig(data map[string]any, l *LogConfig) {
	if val, ok := utils.ExtractString(data, "level"); ok {
		l.Level = val
	}
	if val, ok := utils.ExtractString(data, "format"); ok {
		l.Format = val
	}
	if val, ok := utils.ExtractBool(data, "timestamp"); ok {
		l.Timestamp = val
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() (string, error) {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return "", err
	}
	return defaultPath, SaveConfig(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes server values at runtime and saves to file when a path is
// known.
func (c *Config) Update(configPath string, maxTextLength, cacheSize *int, showRelated *bool) error {
	if maxTextLength != nil {
		c.Server.MaxTextLength = *maxTextLength
	}
	if cacheSize != nil {
		c.Server.CacheSize = *cacheSize
	}
	if showRelated != nil {
		c.CLI.ShowRelated = *showRelated
	}
	c.normalize()
	if configPath == "" {
		return nil
	}
	return SaveConfig(c, configPath)
}
