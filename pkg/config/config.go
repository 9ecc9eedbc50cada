package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configName = ".grove-ledger"
	envPrefix  = "GROVE_LEDGER"
)

// Config holds tool-wide settings. File names are project conventions; teams
// that keep their ledger under a different name override them here.
type Config struct {
	LedgerFile   string `mapstructure:"ledger_file" yaml:"ledger_file"`
	ManifestFile string `mapstructure:"manifest_file" yaml:"manifest_file"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
	Color        bool   `mapstructure:"color" yaml:"color"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LedgerFile:   "progress.yaml",
		ManifestFile: "manifest.yaml",
		LogLevel:     "warn",
		Color:        true,
	}
}

// Load reads configuration from the first .grove-ledger.yml found walking up
// from the working directory, then the home directory, with GROVE_LEDGER_*
// environment variables layered on top.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")

	defaults := Defaults()
	v.SetDefault("ledger_file", defaults.LedgerFile)
	v.SetDefault("manifest_file", defaults.ManifestFile)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("color", defaults.Color)

	if cwd, err := os.Getwd(); err == nil {
		dir := cwd
		for {
			v.AddConfigPath(dir)
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
