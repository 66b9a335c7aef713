// Package config loads the formwizard CLI configuration.
//
// Configuration is loaded with Viper from a YAML file and FORMWIZARD_
// environment variables, on top of the defaults returned by [DefaultConfig].
//
// Priority (highest to lowest):
//  1. Flags bound through [Loader.BindFlag]
//  2. Environment variables (FORMWIZARD_ prefix, "." replaced by "_")
//  3. The file passed to [Loader.Load], or FORMWIZARD_CONFIG_PATH
//  4. The user config directory: formwizard/config.yaml
//  5. ./formwizard.yaml
//  6. [DefaultConfig]
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FORMWIZARD"

// ErrInvalidTimeout is returned for negative request timeouts.
var ErrInvalidTimeout = errors.New("config: timeout must not be negative")

// Config is the root configuration of the CLI.
type Config struct {
	// BaseURL resolves the relative form endpoints. Defaults to the page URL
	// when empty.
	BaseURL string `mapstructure:"base_url"`

	// Timeout bounds each request to the server.
	Timeout time.Duration `mapstructure:"timeout"`

	// AnswersFile is a YAML file of field values keyed by control name.
	AnswersFile string `mapstructure:"answers_file"`

	// Interactive prompts for fields the answers file does not cover.
	Interactive bool `mapstructure:"interactive"`

	// Headers are sent with every request.
	Headers map[string]string `mapstructure:"headers"`

	Log LogConfig `mapstructure:"log"`
}

// LogConfig controls the CLI logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// SlogLevel parses Level, falling back to info.
func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Level))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		Interactive: true,
		Headers:     map[string]string{},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Loader reads configuration through a private Viper instance.
type Loader struct {
	v *viper.Viper
}

// NewLoader returns a loader seeded with the defaults.
func NewLoader() *Loader {
	v := viper.New()
	defaults := DefaultConfig()
	v.SetDefault("base_url", defaults.BaseURL)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("answers_file", defaults.AnswersFile)
	v.SetDefault("interactive", defaults.Interactive)
	v.SetDefault("headers", defaults.Headers)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.json", defaults.Log.JSON)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// BindFlag makes flag override key when it was set on the command line.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("config: no flag for %q", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads path, or the first config file found in the search locations
// when path is empty, and returns the merged configuration. A missing file is
// only an error when path was given explicitly.
func (l *Loader) Load(path string) (*Config, error) {
	l.v.SetConfigType("yaml")
	explicit := strings.TrimSpace(path)
	if explicit == "" {
		explicit = strings.TrimSpace(os.Getenv(EnvPrefix + "_CONFIG_PATH"))
	}

	if explicit != "" {
		l.v.SetConfigFile(explicit)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", explicit, err)
		}
	} else {
		l.v.SetConfigName("config")
		if dir, err := os.UserConfigDir(); err == nil {
			l.v.AddConfigPath(filepath.Join(dir, "formwizard"))
		}
		if err := l.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read: %w", err)
			}
			if err := l.readLocal(); err != nil {
				return nil, err
			}
		}
	}

	cfg := DefaultConfig()
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if cfg.Timeout < 0 {
		return nil, ErrInvalidTimeout
	}
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}
	return cfg, nil
}

// ConfigFile returns the file the configuration was read from, if any.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) readLocal() error {
	const local = "formwizard.yaml"
	if _, err := os.Stat(local); err != nil {
		return nil
	}
	l.v.SetConfigFile(local)
	if err := l.v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: read %s: %w", local, err)
	}
	return nil
}
