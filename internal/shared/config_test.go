package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./wordcount.db" {
			t.Errorf("expected database path ./wordcount.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 5000 {
			t.Errorf("expected server port 5000, got %d", config.Server.Port)
		}

		if config.Server.Mode != ModeSync {
			t.Errorf("expected server mode %s, got %s", ModeSync, config.Server.Mode)
		}

		if config.Queue.ResultTTL != 5000*time.Second {
			t.Errorf("expected result ttl 5000s, got %v", config.Queue.ResultTTL)
		}

		if config.Fetch.Timeout != 30*time.Second {
			t.Errorf("expected fetch timeout 30s, got %v", config.Fetch.Timeout)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig TOML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080
mode = "async"

[queue]
addr = "redis:6379"
result_ttl = "10m"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}

		if config.Queue.ResultTTL != 10*time.Minute {
			t.Errorf("expected result ttl 10m, got %v", config.Queue.ResultTTL)
		}

		if config.Queue.Name != "default" {
			t.Errorf("unset queue name should keep default, got %q", config.Queue.Name)
		}
	})

	t.Run("LoadConfig YAML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")

		testConfig := `server:
  port: 9000
  mode: async
fetch:
  timeout: 5s
  user_agent: test-agent
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.Port != 9000 || config.Server.Mode != ModeAsync {
			t.Errorf("unexpected server config: %+v", config.Server)
		}

		if config.Fetch.Timeout != 5*time.Second {
			t.Errorf("expected fetch timeout 5s, got %v", config.Fetch.Timeout)
		}

		if config.Fetch.UserAgent != "test-agent" {
			t.Errorf("expected user agent test-agent, got %s", config.Fetch.UserAgent)
		}
	})

	t.Run("Validate rejects bad values", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(*Config)
		}{
			{name: "unknown mode", mutate: func(c *Config) { c.Server.Mode = "batch" }},
			{name: "zero port", mutate: func(c *Config) { c.Server.Port = 0 }},
			{name: "empty queue name", mutate: func(c *Config) { c.Queue.Name = "" }},
			{name: "zero ttl", mutate: func(c *Config) { c.Queue.ResultTTL = 0 }},
			{name: "zero concurrency", mutate: func(c *Config) { c.Queue.Concurrency = 0 }},
			{name: "sub-second block timeout", mutate: func(c *Config) { c.Queue.BlockTimeout = 100 * time.Millisecond }},
			{name: "negative timeout", mutate: func(c *Config) { c.Fetch.Timeout = -time.Second }},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)
				if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("ApplyProfile", func(t *testing.T) {
		config := DefaultConfig()
		if err := config.ApplyProfile(&Profile{Name: ProfileTesting, Testing: true}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.Database.Path != ":memory:" {
			t.Errorf("testing profile should use in-memory database, got %s", config.Database.Path)
		}

		config = DefaultConfig()
		if err := config.ApplyProfile(&Profile{Name: ProfileProduction, DatabaseURL: "sqlite:///var/lib/wordcount.db"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.Database.Path != "/var/lib/wordcount.db" {
			t.Errorf("expected DATABASE_URL path, got %s", config.Database.Path)
		}

		config = DefaultConfig()
		err := config.ApplyProfile(&Profile{Name: ProfileProduction, DatabaseURL: "postgres://u:p@db/wordcount"})
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for postgres url, got %v", err)
		}
		if config.Database.Path != "./wordcount.db" {
			t.Errorf("rejected url should leave database path alone, got %s", config.Database.Path)
		}
	})
}
