package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("INTENT_PROVIDER", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.IntentProvider != "gemini" {
		t.Fatalf("IntentProvider = %q, want gemini", cfg.IntentProvider)
	}
	if cfg.SearchBaseURL != "https://google.serper.dev" {
		t.Fatalf("SearchBaseURL = %q", cfg.SearchBaseURL)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("SessionTTL = %v, want 30m", cfg.SessionTTL)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("AllowedOrigins = %#v, want two localhost defaults", cfg.AllowedOrigins)
	}
}

func TestLoadConfigParsesOriginList(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", " https://app.example.com ,https://studio.example.com, ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := []string{"https://app.example.com", "https://studio.example.com"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %#v, want %#v", cfg.AllowedOrigins, want)
	}
	for i, origin := range want {
		if cfg.AllowedOrigins[i] != origin {
			t.Fatalf("AllowedOrigins[%d] = %q, want %q", i, cfg.AllowedOrigins[i], origin)
		}
	}
}

func TestLoadConfigRejectsUnknownIntentProvider(t *testing.T) {
	t.Setenv("INTENT_PROVIDER", "oracle")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported INTENT_PROVIDER")
	}
}

func TestLoadConfigIgnoresMalformedInt(t *testing.T) {
	t.Setenv("SESSION_TTL_MINUTES", "soon")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("SessionTTL = %v, want default on malformed input", cfg.SessionTTL)
	}
}
