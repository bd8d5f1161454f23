// Package config reads and writes the global ~/.evowpp/config.toml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"
)

// DefaultProbeTimeout bounds a connection check when the file does not say.
const DefaultProbeTimeout = 10 * time.Second

// Config is the global configuration shared by every session.
type Config struct {
	DefaultSession string   `toml:"default_session"`
	ProbeTimeout   Duration `toml:"probe_timeout"`
	LogLevel       string   `toml:"log_level"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		ProbeTimeout: Duration(DefaultProbeTimeout),
		LogLevel:     "info",
	}
}

// Load reads config from path. Unset keys keep their defaults. A missing file
// is an error; use LoadOrDefault to treat it as empty.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default().
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate rejects values the client cannot run with.
func (c *Config) Validate() error {
	if c.ProbeTimeout < 0 {
		return fmt.Errorf("probe_timeout must not be negative, got %s", c.ProbeTimeout)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel. Empty means info.
func (c *Config) Level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

// Timeout returns the probe deadline, falling back to the default for zero.
func (c *Config) Timeout() time.Duration {
	if c.ProbeTimeout <= 0 {
		return DefaultProbeTimeout
	}
	return time.Duration(c.ProbeTimeout)
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// Duration is a time.Duration written as a string such as "10s".
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}
