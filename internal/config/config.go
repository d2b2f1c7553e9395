// Package config loads settings from the config file, .env and TASKMGR_* variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "taskmgr"

	// ConfigFile is the config filename inside Dir.
	ConfigFile = "config.yaml"

	// LogFile is the default log filename inside Dir.
	LogFile = "taskmgr.log"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TASKMGR"

	// DefaultAPIURL is used when nothing else is configured.
	DefaultAPIURL = "http://localhost:5000"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `mapstructure:"-"`

	// APIURL is the server root; /api/v1 is appended by the client.
	APIURL string `mapstructure:"api_url"`

	// Token, when set, overrides the stored credential.
	Token string `mapstructure:"token"`

	// Timeout bounds each API call. Zero means no bound.
	Timeout time.Duration `mapstructure:"timeout"`

	// Theme is classic, neon or mono.
	Theme string `mapstructure:"theme"`

	// LogFile receives diagnostics while the TUI owns the terminal.
	LogFile string `mapstructure:"log_file"`
}

// fileConfig is what `config init` writes.
type fileConfig struct {
	APIURL  string `yaml:"api_url"`
	Timeout string `yaml:"timeout"`
	Theme   string `yaml:"theme"`
	LogFile string `yaml:"log_file,omitempty"`
}

// Load reads configuration. Precedence, highest first: TASKMGR_* environment
// (including values from envFile), the YAML file in dir, defaults.
// An empty dir means DefaultConfigDir(); a missing envFile or config file is fine.
func Load(dir, envFile string) (*Config, error) {
	if dir == "" {
		dir = DefaultConfigDir()
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("token", "")
	v.SetDefault("timeout", "0s")
	v.SetDefault("theme", "classic")
	v.SetDefault("log_file", filepath.Join(dir, LogFile))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	path := filepath.Join(dir, ConfigFile)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Dir = dir
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative, got %s", cfg.Timeout)
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Path returns the config file path.
func (c *Config) Path() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// EnsureDir creates the config directory with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0o700)
}

// WriteFile writes the current settings (without the token) as YAML.
// It refuses to overwrite an existing file unless force is set.
func (c *Config) WriteFile(force bool) error {
	if !force {
		if _, err := os.Stat(c.Path()); err == nil {
			return fmt.Errorf("%s already exists", c.Path())
		}
	}
	if err := c.EnsureDir(); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	fc := fileConfig{
		APIURL:  c.APIURL,
		Timeout: c.Timeout.String(),
		Theme:   c.Theme,
	}
	if c.LogFile != filepath.Join(c.Dir, LogFile) {
		fc.LogFile = c.LogFile
	}
	b, err := yaml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return os.WriteFile(c.Path(), b, 0o600)
}
