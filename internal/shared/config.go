package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"
)

//go:embed config.example.toml
var exampleConf []byte

// Serving modes for the HTTP index route.
const (
	ModeSync  = "sync"
	ModeAsync = "async"
)

// Config represents the application configuration loaded from a TOML (or YAML) file.
type Config struct {
	Database DatabaseConfig `toml:"database" yaml:"database"`
	Server   ServerConfig   `toml:"server" yaml:"server"`
	Queue    QueueConfig    `toml:"queue" yaml:"queue"`
	Fetch    FetchConfig    `toml:"fetch" yaml:"fetch"`
	Limits   LimitsConfig   `toml:"limits" yaml:"limits"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" yaml:"path"`
	MaxOpenConns int    `toml:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns" yaml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host" yaml:"host"`
	Port int    `toml:"port" yaml:"port"`
	Mode string `toml:"mode" yaml:"mode"`
}

// Addr returns the host:port pair the server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// QueueConfig contains Redis connection and job retention settings.
type QueueConfig struct {
	Addr         string        `toml:"addr" yaml:"addr"`
	Password     string        `toml:"password" yaml:"password"`
	DB           int           `toml:"db" yaml:"db"`
	Name         string        `toml:"name" yaml:"name"`
	Prefix       string        `toml:"prefix" yaml:"prefix"`
	ResultTTL    time.Duration `toml:"result_ttl" yaml:"result_ttl"`
	BlockTimeout time.Duration `toml:"block_timeout" yaml:"block_timeout"`
	Concurrency  int           `toml:"concurrency" yaml:"concurrency"`
}

// FetchConfig controls outbound page fetches.
type FetchConfig struct {
	Timeout           time.Duration `toml:"timeout" yaml:"timeout"`
	UserAgent         string        `toml:"user_agent" yaml:"user_agent"`
	RequestsPerSecond float64       `toml:"requests_per_second" yaml:"requests_per_second"`
	Burst             int           `toml:"burst" yaml:"burst"`
}

// LimitsConfig controls inbound request rate limiting. Zero disables the limiter.
type LimitsConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `toml:"burst" yaml:"burst"`
}

// LoadConfig reads and parses a configuration file from the specified path.
//
// Files ending in .yaml or .yml are decoded as YAML, everything else as TOML.
// Unset values fall back to the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = toml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if c.Server.Mode != ModeSync && c.Server.Mode != ModeAsync {
		return fmt.Errorf("%w: server.mode must be %q or %q, got %q", ErrInvalidConfig, ModeSync, ModeAsync, c.Server.Mode)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("%w: server.port must be positive", ErrInvalidConfig)
	}
	if c.Queue.Name == "" {
		return fmt.Errorf("%w: queue.name is required", ErrInvalidConfig)
	}
	if c.Queue.ResultTTL <= 0 {
		return fmt.Errorf("%w: queue.result_ttl must be positive", ErrInvalidConfig)
	}
	if c.Queue.Concurrency <= 0 {
		return fmt.Errorf("%w: queue.concurrency must be positive", ErrInvalidConfig)
	}
	if c.Queue.BlockTimeout < time.Second {
		return fmt.Errorf("%w: queue.block_timeout must be at least 1s, got %s", ErrInvalidConfig, c.Queue.BlockTimeout)
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("%w: fetch.timeout cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// ApplyProfile overrides the database location with the profile's connection string.
func (c *Config) ApplyProfile(p *Profile) error {
	switch {
	case p.Testing:
		c.Database.Path = ":memory:"
	case p.DatabaseURL != "":
		dsn, err := DatabaseDSN(p.DatabaseURL)
		if err != nil {
			return err
		}
		c.Database.Path = dsn
	}
	return nil
}
