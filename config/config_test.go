package config

import (
	"strings"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/promptforge?sslmode=disable")
	t.Setenv("SESSION_SECRET", "super-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("OpenAI.Model = %s, want gpt-4o", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.Temperature != 0.7 {
		t.Errorf("OpenAI.Temperature = %v, want 0.7", cfg.OpenAI.Temperature)
	}
	if cfg.OpenAI.MaxTokens != 1000 {
		t.Errorf("OpenAI.MaxTokens = %d, want 1000", cfg.OpenAI.MaxTokens)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %s, want :8080", cfg.HTTP.Addr)
	}
	if cfg.Production {
		t.Error("Production should default to false")
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SESSION_SECRET", "super-secret")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestLoad_MissingSessionSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/promptforge?sslmode=disable")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when SESSION_SECRET is missing")
	}
	if !strings.Contains(err.Error(), "SESSION_SECRET") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("OPENAI_MAX_TOKENS", "2000")
	t.Setenv("OPENAI_TEMPERATURE", "0.2")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("PRODUCTION", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("OpenAI.Model = %s, want gpt-4o-mini", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.MaxTokens != 2000 {
		t.Errorf("OpenAI.MaxTokens = %d, want 2000", cfg.OpenAI.MaxTokens)
	}
	if cfg.OpenAI.Temperature != 0.2 {
		t.Errorf("OpenAI.Temperature = %v, want 0.2", cfg.OpenAI.Temperature)
	}
	if cfg.HTTP.Addr != ":9000" {
		t.Errorf("HTTP.Addr = %s, want :9000", cfg.HTTP.Addr)
	}
	if !cfg.Production {
		t.Error("Production should be true")
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPENAI_MAX_TOKENS", "not-a-number")
	t.Setenv("OPENAI_TEMPERATURE", "9.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.OpenAI.MaxTokens != 1000 {
		t.Errorf("MaxTokens = %d, want default 1000", cfg.OpenAI.MaxTokens)
	}
	if cfg.OpenAI.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want default 0.7", cfg.OpenAI.Temperature)
	}
}
