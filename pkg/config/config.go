/*
Package config manages TOML config for strokecheck.

Values are resolved from built-in defaults, then the config file, then STROKECHECK_*
environment variables. Command line flags are applied last by the caller.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bastiangx/strokecheck/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the entire config structure
type Config struct {
	Report ReportConfig `toml:"report"`
	Output OutputConfig `toml:"output"`
	Log    LogConfig    `toml:"log"`
}

// ReportConfig has report generation options.
type ReportConfig struct {
	HideTrivial     bool `toml:"hide_trivial"     env:"STROKECHECK_HIDE_TRIVIAL"`
	AddTranslations bool `toml:"add_translations" env:"STROKECHECK_ADD_TRANSLATIONS"`
	Progress        bool `toml:"progress"         env:"STROKECHECK_PROGRESS"`
	Workers         int  `toml:"workers"          env:"STROKECHECK_WORKERS"`
}

// OutputConfig controls how the report is written.
type OutputConfig struct {
	Format string `toml:"format" env:"STROKECHECK_FORMAT"`
	Indent int    `toml:"indent" env:"STROKECHECK_INDENT"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Level string `toml:"level" env:"STROKECHECK_LOG_LEVEL"`
}

var (
	formats   = []string{"json", "msgpack"}
	logLevels = []string{"debug", "info", "warn", "error"}
)

// GetConfigDir returns the config directory with fallback priority:
// 1. $XDG_CONFIG_HOME or ~/.config/ (%APPDATA% on windows)
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := utils.UserConfigDir(homeDir, "strokecheck")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "strokecheck")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
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
// 1. Custom path from -config flag
// 2. Default path: [UserConfigDir]/strokecheck/config.toml
// 3. Builtin defaults
//
// Environment overrides are applied on top of whichever source was used.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	config, path := loadFile(customConfigPath)
	if err := ApplyEnv(config); err != nil {
		return nil, path, err
	}
	return config, path, nil
}

func loadFile(customConfigPath string) (*Config, string) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
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

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Report: ReportConfig{
			HideTrivial:     false,
			AddTranslations: false,
			Progress:        false,
			Workers:         1,
		},
		Output: OutputConfig{
			Format: "json",
			Indent: 2,
		},
		Log: LogConfig{
			Level: "warn",
		},
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
	return config, nil
}

// tryPartialParse keeps every value that parses with the right type and defaults the rest.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "report"); ok {
		extractReportConfig(section, &config.Report)
	}
	if section, ok := utils.ExtractSection(tempConfig, "output"); ok {
		extractOutputConfig(section, &config.Output)
	}
	if section, ok := utils.ExtractSection(tempConfig, "log"); ok {
		if val, ok := utils.ExtractString(section, "level"); ok {
			config.Log.Level = val
		}
	}
	return config, nil
}

func extractReportConfig(data map[string]any, report *ReportConfig) {
	if val, ok := utils.ExtractBool(data, "hide_trivial"); ok {
		report.HideTrivial = val
	}
	if val, ok := utils.ExtractBool(data, "add_translations"); ok {
		report.AddTranslations = val
	}
	if val, ok := utils.ExtractBool(data, "progress"); ok {
		report.Progress = val
	}
	if val, ok := utils.ExtractInt64(data, "workers"); ok {
		report.Workers = val
	}
}

func extractOutputConfig(data map[string]any, output *OutputConfig) {
	if val, ok := utils.ExtractString(data, "format"); ok {
		output.Format = val
	}
	if val, ok := utils.ExtractInt64(data, "indent"); ok {
		output.Indent = val
	}
}

// ApplyEnv overrides config values with any STROKECHECK_* variables that are set.
func ApplyEnv(config *Config) error {
	if err := cleanenv.ReadEnv(config); err != nil {
		return fmt.Errorf("config: read env: %w", err)
	}
	return nil
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if c.Report.Workers < 1 {
		return fmt.Errorf("config: report.workers must be at least 1, got %d", c.Report.Workers)
	}
	if !slices.Contains(formats, c.Output.Format) {
		return fmt.Errorf("config: output.format must be one of %v, got %q", formats, c.Output.Format)
	}
	if c.Output.Indent < 0 {
		return fmt.Errorf("config: output.indent must not be negative, got %d", c.Output.Indent)
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("config: log.level must be one of %v, got %q", logLevels, c.Log.Level)
	}
	return nil
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "built-in defaults"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
