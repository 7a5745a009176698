// Package config provides YAML-based configuration loading for the bridge
// binaries. The core session takes only a host and port; everything else
// here configures the surrounding tooling.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root application configuration.
type Config struct {
	// Receiver is the VMC endpoint frames are sent to.
	Receiver ReceiverConfig `mapstructure:"receiver"`

	// Send controls the sender binary's frame pacing and replay input.
	Send SendConfig `mapstructure:"send"`

	// Log holds logging configuration.
	Log LogConfig `mapstructure:"log"`
}

// ReceiverConfig identifies the destination VMC application.
type ReceiverConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// SendConfig drives the test-signal and replay sender.
type SendConfig struct {
	// FPS is the frame pacing for synthetic and replay output.
	FPS int `mapstructure:"fps"`
	// Format selects the snapshot record codec: json or cbor.
	Format string `mapstructure:"format"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
	// Outputs: stdout, stderr, or file paths
	Outputs []string `mapstructure:"outputs"`

	// Rotation controls file rotation when writing to files
	Rotation RotationConfig `mapstructure:"rotation"`
	// Development toggles development-friendly logging options
	Development bool `mapstructure:"development"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Default returns a Config populated with sensible defaults: the standard
// Warudo port on localhost, 24 fps pacing.
func Default() *Config {
	return &Config{
		Receiver: ReceiverConfig{Host: "127.0.0.1", Port: 39539},
		Send:     SendConfig{FPS: 24, Format: "json"},
		Log: LogConfig{
			Level:       "info",
			Format:      "console",
			Outputs:     []string{"stdout"},
			Development: true,
			Rotation: RotationConfig{
				Enable:     false,
				Filename:   "logs/vmcbridge.log",
				MaxSizeMB:  20,
				MaxBackups: 3,
				MaxAgeDays: 14,
				Compress:   true,
			},
		},
	}
}

// Load reads configuration from the provided path (if non-empty),
// otherwise it searches common locations and supports environment
// overrides. Environment variables use the prefix VMCBRIDGE and `.`/`-`
// are replaced with `_`. Example: VMCBRIDGE_RECEIVER_PORT=39540
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("VMCBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// seed defaults for viper so env-only configs work
	v.SetDefault("receiver.host", cfg.Receiver.Host)
	v.SetDefault("receiver.port", cfg.Receiver.Port)
	v.SetDefault("send.fps", cfg.Send.FPS)
	v.SetDefault("send.format", cfg.Send.Format)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.filename", cfg.Log.Rotation.Filename)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)

	if path == "" {
		if envPath := os.Getenv("VMCBRIDGE_CONFIG"); envPath != "" {
			path = envPath
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("vmcbridge")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".vmcbridge"))
		}
	}

	// Read config file if present; if not found, continue with defaults/env
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Receiver.Port <= 0 || c.Receiver.Port > 65535 {
		return fmt.Errorf("invalid receiver.port: %d", c.Receiver.Port)
	}
	if strings.TrimSpace(c.Receiver.Host) == "" {
		return errors.New("receiver.host must not be empty")
	}
	if c.Send.FPS <= 0 || c.Send.FPS > 240 {
		return fmt.Errorf("invalid send.fps: %d", c.Send.FPS)
	}
	switch strings.ToLower(strings.TrimSpace(c.Send.Format)) {
	case "json", "cbor":
	default:
		return fmt.Errorf("invalid send.format: %q", c.Send.Format)
	}

	lvl := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch lvl {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stdout"}
	}
	return nil
}

// MustLoad is a convenience that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}
