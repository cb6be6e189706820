package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LLM_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("LLM.Model = %q, want gpt-4o-mini", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout != 120*time.Second {
		t.Errorf("LLM.Timeout = %v, want 120s", cfg.LLM.Timeout)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
	}
	if cfg.Database.Enabled() {
		t.Error("Database.Enabled() = true with no DSN")
	}
	if cfg.Redis.Enabled() {
		t.Error("Redis.Enabled() = true with no address")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LLM_MODEL", "gpt-4o")
	t.Setenv("DATABASE_DSN", "postgres://localhost/ideas")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("LLM.Model = %q, want gpt-4o", cfg.LLM.Model)
	}
	if !cfg.Database.Enabled() {
		t.Error("Database.Enabled() = false with DSN set")
	}
	if !cfg.Redis.Enabled() {
		t.Error("Redis.Enabled() = false with address set")
	}
	if cfg.Cache.TTL != 30*time.Minute {
		t.Errorf("Cache.TTL = %v, want 30m", cfg.Cache.TTL)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded without LLM_API_KEY")
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("SERVER_PORT", "99999")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted an out-of-range port")
	}
}
