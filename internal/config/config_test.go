package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "LOG_FORMAT", "LLM_PROVIDER", "LLM_RATE_LIMIT_REQUESTS",
		"LLM_RATE_LIMIT_WINDOW", "LLM_CALL_TIMEOUT", "MAX_SCREENING_TURNS",
		"MAX_CRITERIA_SEARCHES", "SESSION_STORE", "CORS_ALLOWED_ORIGINS", "LLM_TEMPERATURE",
	} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("expected json log format, got %s", cfg.LogFormat)
	}
	if cfg.LLMProvider != "stub" {
		t.Fatalf("expected stub provider by default, got %s", cfg.LLMProvider)
	}
	if cfg.LLMRateLimitRequests != 10 || cfg.LLMRateLimitWindow != 10*time.Second {
		t.Fatalf("expected 10 calls per 10s, got %d per %s", cfg.LLMRateLimitRequests, cfg.LLMRateLimitWindow)
	}
	if cfg.LLMCallTimeout != 30*time.Second {
		t.Fatalf("expected 30s call timeout, got %s", cfg.LLMCallTimeout)
	}
	if cfg.MaxScreeningTurns != 8 || cfg.MaxCriteriaSearches != 3 {
		t.Fatalf("unexpected screening limits: turns=%d searches=%d", cfg.MaxScreeningTurns, cfg.MaxCriteriaSearches)
	}
	if cfg.SessionStore != "memory" {
		t.Fatalf("expected memory session store, got %s", cfg.SessionStore)
	}
	if cfg.LLMTemperature != 0.7 {
		t.Fatalf("expected temperature 0.7, got %v", cfg.LLMTemperature)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LLM_PROVIDER", " OpenAI ")
	t.Setenv("LLM_FALLBACK_PROVIDER", "gemini")
	t.Setenv("LLM_RATE_LIMIT_REQUESTS", "4")
	t.Setenv("LLM_RATE_LIMIT_WINDOW", "2s")
	t.Setenv("LLM_CALL_TIMEOUT", "45s")
	t.Setenv("MAX_SCREENING_TURNS", "12")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("LLM_TEMPERATURE", "0.2")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.LLMProvider != "openai" || cfg.LLMFallbackProvider != "gemini" {
		t.Fatalf("expected normalized providers, got %q/%q", cfg.LLMProvider, cfg.LLMFallbackProvider)
	}
	if cfg.LLMRateLimitRequests != 4 || cfg.LLMRateLimitWindow != 2*time.Second {
		t.Fatalf("expected gate override, got %d per %s", cfg.LLMRateLimitRequests, cfg.LLMRateLimitWindow)
	}
	if cfg.LLMCallTimeout != 45*time.Second {
		t.Fatalf("expected timeout override, got %s", cfg.LLMCallTimeout)
	}
	if cfg.MaxScreeningTurns != 12 {
		t.Fatalf("expected screening turns override, got %d", cfg.MaxScreeningTurns)
	}
	if cfg.SessionStore != "redis" {
		t.Fatalf("expected redis store, got %s", cfg.SessionStore)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("expected two CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.LLMTemperature != 0.2 {
		t.Fatalf("expected temperature override, got %v", cfg.LLMTemperature)
	}
}

func TestGetEnvAsDurationInvalidFallsBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "not-a-duration")
	if got := Load().SessionTTL; got != 24*time.Hour {
		t.Fatalf("expected default TTL on parse failure, got %s", got)
	}
}
