package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the NodeForge configuration.
type Config struct {
	Session   SessionConfig   `mapstructure:"session"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Log       LogConfig       `mapstructure:"log"`
}

// SessionConfig describes the editing session served over RPC.
type SessionConfig struct {
	Document string `mapstructure:"document"`
	OwnClass string `mapstructure:"own_class"`
}

// DiscoveryConfig bounds catalog discovery.
type DiscoveryConfig struct {
	MaxResults int `mapstructure:"max_results"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load loads the configuration from nodeforge.yml or nodeforge.yaml,
// falling back to defaults when no file exists. Environment variables
// with the NODEFORGE prefix override file values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("session.document", "Untitled")
	v.SetDefault("session.own_class", "Actor")
	v.SetDefault("discovery.max_results", 100)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetConfigName("nodeforge")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("NODEFORGE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// validateConfig validates the configuration.
func validateConfig(cfg *Config) error {
	if cfg.Discovery.MaxResults < 0 {
		return fmt.Errorf("discovery.max_results must not be negative, got: %d", cfg.Discovery.MaxResults)
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got: %s", cfg.Log.Level)
	}
	return nil
}
