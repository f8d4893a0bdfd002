package common

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/solobooks")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := LoadConfig()
	if cfg.Database.MaxConns != 20 {
		t.Errorf("MaxConns = %d, want 20", cfg.Database.MaxConns)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v", cfg.LLM.Timeout)
	}
	if cfg.Staging.RedisAddr != "" {
		t.Errorf("RedisAddr = %q, want empty", cfg.Staging.RedisAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/solobooks")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DB_MAX_CONNS", "50")
	t.Setenv("OPENAI_TIMEOUT", "90s")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg := LoadConfig()
	if cfg.Database.MaxConns != 50 {
		t.Errorf("MaxConns = %d, want 50", cfg.Database.MaxConns)
	}
	if cfg.LLM.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", cfg.LLM.Timeout)
	}
	if cfg.Staging.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.Staging.RedisAddr)
	}
}

func TestValidateMissingDSN(t *testing.T) {
	t.Setenv("DB_URL", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	if err := LoadConfig().Validate(); err == nil {
		t.Fatal("expected error for missing DB_URL")
	}
}
