// Package config loads canopy process configuration.
//
// Configuration sources, highest precedence first:
//
//  1. Environment variables (CANOPY_*)
//  2. Configuration file (YAML)
//  3. Default values
//
// Example: CANOPY_AUTH_TYPE=jwt overrides the auth.type key.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the canopy process configuration.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Auth selects and configures the authentication provider.
	Auth AuthConfig `mapstructure:"auth" yaml:"auth"`

	// Metrics controls the Prometheus metrics registry.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR" yaml:"level"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// AuthConfig selects the authentication provider for this process.
// Type must name a registered provider; it is fixed for the process
// lifetime.
type AuthConfig struct {
	// Type is the provider name ("none", "jwt").
	Type string `mapstructure:"type" validate:"required" yaml:"type"`

	// Info is the default auth_info string forwarded to provider
	// operations. Most providers ignore it.
	Info string `mapstructure:"info" yaml:"info,omitempty"`

	// Settings holds provider-specific keys (jwt: key_file, ttl,
	// issuer).
	Settings map[string]string `mapstructure:"settings" yaml:"settings,omitempty"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Default returns the built-in configuration: INFO text logging,
// the null auth provider, metrics off.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "INFO", Format: "text", Output: "stderr"},
		Auth:    AuthConfig{Type: "none"},
	}
}

// Load reads configuration from the given file path, falling back to
// the default search location when path is empty, then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setupViper(v, path)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		cfg := Default()
		applyEnvOnly(v, cfg)
		if err := Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg := Default()
	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHooks())); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

/// DefaultPath returns the default config file location:
// $XDG_CONFIG_HOME/canopy/config.yaml, falling back to
// ~/.config/canopy/config.yaml.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "canopy", "config.yaml")
}

// WriteSample writes a starter configuration file to path. It refuses
// to overwrite an existing file unless force is set.
func WriteSample(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal sample config: %w", err)
	}

	// 0600: the settings section may carry key material.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, path string) {
	v.SetEnvPrefix("CANOPY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read config file: %w", err)
	}
	return true, nil
}

// applyEnvOnly pulls the env-overridable scalars into cfg when no
// config file exists. AutomaticEnv only surfaces keys viper knows
// about, so every scalar is probed explicitly. The auth.settings map
// has no fixed keys and can only come from a config file.
func applyEnvOnly(v *viper.Viper, cfg *Config) {
	if s := v.GetString("auth.type"); s != "" {
		cfg.Auth.Type = s
	}
	if s := v.GetString("auth.info"); s != "" {
		cfg.Auth.Info = s
	}
	if s := v.GetString("logging.level"); s != "" {
		cfg.Logging.Level = s
	}
	if s := v.GetString("logging.format"); s != "" {
		cfg.Logging.Format = s
	}
	if s := v.GetString("logging.output"); s != "" {
		cfg.Logging.Output = s
	}
	if v.GetBool("metrics.enabled") {
		cfg.Metrics.Enabled = true
	}
}

// decodeHooks handles custom scalar types in the config file.
func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// durationDecodeHook parses Go duration strings ("10m", "1h30m") into
// time.Duration fields.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		return time.ParseDuration(data.(string))
	}
}
