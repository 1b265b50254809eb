// Package config loads the runtime configuration of the brain CLI and
// servers: an optional YAML file, then BRAIN_* environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BRAIN_"

// Log formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config is the runtime configuration.
type Config struct {
	VaultPath         string   `yaml:"vault_path"`
	Extension         string   `yaml:"extension"`
	HiddenPrefix      string   `yaml:"hidden_prefix"`
	LogLevel          string   `yaml:"log_level"`
	LogFormat         string   `yaml:"log_format"`
	Host              string   `yaml:"host"`
	Port              int      `yaml:"port"`
	DefaultMaxResults int      `yaml:"default_max_results"`
	Cache             bool     `yaml:"cache"`
	CORSOrigins       []string `yaml:"cors_origins"`
}

// Default returns a fresh copy of the default configuration.
func Default() Config {
	vault := filepath.Join("~", "Documents", "Obsidian")
	return Config{
		VaultPath:         vault,
		Extension:         ".md",
		HiddenPrefix:      ".",
		LogLevel:          "info",
		LogFormat:         FormatConsole,
		Host:              "0.0.0.0",
		Port:              8000,
		DefaultMaxResults: 10,
		CORSOrigins:       []string{"*"},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "my-second-brain", "config.yaml"), nil
}

// Load builds a Config from defaults, the YAML file at path and the process
// environment. An empty path means DefaultPath; a missing default file is
// not an error, a missing explicit one is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := cfg.decode(data); err != nil {
				return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from BRAIN_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		return lookup(EnvPrefix + name)
	}

	if v, ok := get("VAULT_PATH"); ok {
		c.VaultPath = v
	}
	if v, ok := get("EXTENSION"); ok {
		c.Extension = v
	}
	if v, ok := get("HIDDEN_PREFIX"); ok {
		c.HiddenPrefix = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := get("LOG_FORMAT"); ok {
		c.LogFormat = v
	}
	if v, ok := get("HOST"); ok {
		c.Host = v
	}
	if v, ok := get("CORS_ORIGINS"); ok {
		c.CORSOrigins = splitList(v)
	}

	var errs error
	if v, ok := get("PORT"); ok {
		port, err := cast.ToIntE(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%sPORT: %w", EnvPrefix, err))
		} else {
			c.Port = port
		}
	}
	if v, ok := get("DEFAULT_MAX_RESULTS"); ok {
		n, err := cast.ToIntE(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%sDEFAULT_MAX_RESULTS: %w", EnvPrefix, err))
		} else {
			c.DefaultMaxResults = n
		}
	}
	if v, ok := get("CACHE"); ok {
		b, err := cast.ToBoolE(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%sCACHE: %w", EnvPrefix, err))
		} else {
			c.Cache = b
		}
	}
	return errs
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs error
	if strings.TrimSpace(c.VaultPath) == "" {
		errs = multierr.Append(errs, errors.New("vault_path must not be empty"))
	}
	if !strings.HasPrefix(c.Extension, ".") || len(c.Extension) < 2 {
		errs = multierr.Append(errs, fmt.Errorf("extension %q must start with a dot", c.Extension))
	}
	if c.HiddenPrefix == "" {
		errs = multierr.Append(errs, errors.New("hidden_prefix must not be empty"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.LogFormat != FormatJSON && c.LogFormat != FormatConsole {
		errs = multierr.Append(errs, fmt.Errorf("log_format %q must be %q or %q", c.LogFormat, FormatJSON, FormatConsole))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = multierr.Append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.DefaultMaxResults < 0 {
		errs = multierr.Append(errs, fmt.Errorf("default_max_results %d must not be negative", c.DefaultMaxResults))
	}
	return errs
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ParseLevel maps a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", name)
	}
	return level, nil
}

// NewLogger builds the logger described by the config, writing to w.
func (c Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
