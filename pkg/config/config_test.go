package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Index.Backend != "redis" {
		t.Errorf("Index.Backend = %q, want redis", cfg.Index.Backend)
	}
	if cfg.Index.KeyPrefix != "trie:index:" {
		t.Errorf("Index.KeyPrefix = %q", cfg.Index.KeyPrefix)
	}
	if cfg.Index.MetadataKey != "trie:metadata" {
		t.Errorf("Index.MetadataKey = %q", cfg.Index.MetadataKey)
	}
	if cfg.Suggest.DefaultLimit != 20 {
		t.Errorf("Suggest.DefaultLimit = %d, want 20", cfg.Suggest.DefaultLimit)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
server:
  port: 9999
index:
  backend: memory
  keyPrefix: "custom:"
suggest:
  defaultLimit: 5
  maxLimit: 50
  cacheTTL: 10s
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Index.Backend != "memory" {
		t.Errorf("Index.Backend = %q, want memory", cfg.Index.Backend)
	}
	if cfg.Index.KeyPrefix != "custom:" {
		t.Errorf("Index.KeyPrefix = %q, want custom:", cfg.Index.KeyPrefix)
	}
	if cfg.Suggest.CacheTTL != 10*time.Second {
		t.Errorf("Suggest.CacheTTL = %v, want 10s", cfg.Suggest.CacheTTL)
	}
	// Unset fields keep their defaults.
	if cfg.Index.MetadataKey != "trie:metadata" {
		t.Errorf("Index.MetadataKey = %q, want default", cfg.Index.MetadataKey)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TA_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("TA_INDEX_BACKEND", "memory")
	t.Setenv("TA_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Redis.Addr != "redis.internal:6380" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
	if cfg.Index.Backend != "memory" {
		t.Errorf("Index.Backend = %q, want memory", cfg.Index.Backend)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad backend", func(c *Config) { c.Index.Backend = "dynamo" }},
		{"zero default limit", func(c *Config) { c.Suggest.DefaultLimit = 0 }},
		{"max below default", func(c *Config) { c.Suggest.MaxLimit = 5; c.Suggest.DefaultLimit = 10 }},
		{"kafka enabled without brokers", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := validate(cfg); err == nil {
				t.Error("validate accepted invalid config")
			}
		})
	}
}
