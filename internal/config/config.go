package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvLogLevel = "LABCHECK_LOG_LEVEL"
	EnvSeqURL   = "LABCHECK_SEQ_URL"
	EnvMaxCells = "LABCHECK_MAX_CELLS"
	EnvTCPPort  = "LABCHECK_TCP_PORT"
	EnvHTTPAddr = "LABCHECK_HTTP_ADDR"
	EnvSetsDir  = "LABCHECK_SETS_DIR"
)

// Config represents labcheck.yaml.
type Config struct {
	Log    LogConfig    `json:"log" yaml:"log"`
	Engine EngineConfig `json:"engine" yaml:"engine"`
	Server ServerConfig `json:"server" yaml:"server"`
}

// LogConfig configures the console and Seq log sinks.
type LogConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	SeqURL string `json:"seq_url,omitempty" yaml:"seq_url,omitempty"`
}

// EngineConfig tunes formula evaluation.
type EngineConfig struct {
	MaxCells int `json:"max_cells,omitempty" yaml:"max_cells,omitempty"`
}

// ServerConfig configures the TCP and HTTP listeners.
type ServerConfig struct {
	TCPPort        int      `json:"tcp_port,omitempty" yaml:"tcp_port,omitempty"`
	HTTPAddr       string   `json:"http_addr,omitempty" yaml:"http_addr,omitempty"`
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`
	SetsDir        string   `json:"sets_dir,omitempty" yaml:"sets_dir,omitempty"` // empty disables named formula sets
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:    LogConfig{Level: "info"},
		Engine: EngineConfig{MaxCells: 1_000_000},
		Server: ServerConfig{
			TCPPort:        4444,
			HTTPAddr:       ":8080",
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load reads the YAML file at path over the defaults and then applies
// environment overrides. An empty path or a missing file yields defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvSeqURL); ok {
		c.Log.SeqURL = v
	}
	if v, ok := lookup(EnvMaxCells); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxCells, err)
		}
		c.Engine.MaxCells = n
	}
	if v, ok := lookup(EnvTCPPort); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTCPPort, err)
		}
		c.Server.TCPPort = n
	}
	if v, ok := lookup(EnvHTTPAddr); ok && v != "" {
		c.Server.HTTPAddr = v
	}
	if v, ok := lookup(EnvSetsDir); ok {
		c.Server.SetsDir = v
	}
	return nil
}

// Validate checks values that cannot be repaired by falling back to defaults.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Engine.MaxCells < 0 {
		return fmt.Errorf("engine.max_cells must not be negative, got %d", c.Engine.MaxCells)
	}
	if c.Server.TCPPort < 0 || c.Server.TCPPort > 65535 {
		return fmt.Errorf("server.tcp_port out of range: %d", c.Server.TCPPort)
	}
	return nil
}

// ParseLevel maps debug, info, warn and error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// Save writes cfg as YAML. An existing file is only replaced when overwrite is set.
func Save(path string, cfg Config, overwrite bool) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write config: %w", err)
	}
	return f.Close()
}
