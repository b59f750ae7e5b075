package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Tools    ToolsConfig    `mapstructure:"tools"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ToolsConfig contains toolchain discovery configuration
type ToolsConfig struct {
	// Cabal and GhcPkg pin the executables to explicit paths. When set,
	// discovery is skipped entirely for that tool.
	Cabal  string `mapstructure:"cabal"`
	GhcPkg string `mapstructure:"ghc_pkg"`

	// SearchDirs are extra directories consulted before the conventional
	// install locations when locating executables.
	SearchDirs []string `mapstructure:"search_dirs"`
}

// DefaultsConfig contains default reconciliation behavior
type DefaultsConfig struct {
	Global        bool `mapstructure:"global"`
	Documentation bool `mapstructure:"documentation"`
}

// PathsConfig contains path-related configuration
type PathsConfig struct {
	DataDir     string `mapstructure:"data_dir"`
	JournalFile string `mapstructure:"journal_file"`
	LogFile     string `mapstructure:"log_file"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Color string `mapstructure:"color"`
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	// Set config name and paths
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	// Add config paths
	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".config", "cabalctl"))
	}
	viper.AddConfigPath(".")

	// Set defaults
	setDefaults()

	// Environment variable overrides
	viper.SetEnvPrefix("CABALCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found - use defaults
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Expand paths
	cfg.Tools.Cabal = expandPath(cfg.Tools.Cabal)
	cfg.Tools.GhcPkg = expandPath(cfg.Tools.GhcPkg)
	for i, dir := range cfg.Tools.SearchDirs {
		cfg.Tools.SearchDirs[i] = expandPath(dir)
	}
	cfg.Paths.DataDir = expandPath(cfg.Paths.DataDir)
	cfg.Paths.JournalFile = expandPath(cfg.Paths.JournalFile)
	cfg.Paths.LogFile = expandPath(cfg.Paths.LogFile)

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		homeDir = os.Getenv("HOME")
	}
	if homeDir == "" {
		homeDir = "."
	}

	viper.SetDefault("tools.cabal", "")
	viper.SetDefault("tools.ghc_pkg", "")
	viper.SetDefault("tools.search_dirs", []string{})

	viper.SetDefault("defaults.global", false)
	viper.SetDefault("defaults.documentation", false)

	viper.SetDefault("paths.data_dir", filepath.Join(homeDir, ".local", "share", "cabalctl"))
	viper.SetDefault("paths.journal_file", filepath.Join(homeDir, ".local", "share", "cabalctl", "journal.db"))
	viper.SetDefault("paths.log_file", filepath.Join(homeDir, ".local", "share", "cabalctl", "cabalctl.log"))

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.color", "auto")
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	// Expand ~
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[1:])
		}
	}

	// Expand environment variables
	path = os.ExpandEnv(path)

	return path
}
