package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("INTERVIEW_MAX_QUESTIONS", "")

	cfg, err := LoadConfig("8000")
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Provider != ProviderGemini {
		t.Fatalf("expected default provider gemini, got %s", cfg.Provider)
	}
	if cfg.Port != "8000" {
		t.Fatalf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.MaxQuestions != 5 {
		t.Fatalf("expected 5 questions by default, got %d", cfg.MaxQuestions)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("unexpected session ttl %v", cfg.SessionTTL)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("AI_PROVIDER", "offline")
	t.Setenv("FRONTEND_ORIGIN", "http://a.test, http://b.test")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("INTERVIEW_MAX_QUESTIONS", "3")

	cfg, err := LoadConfig("3001")
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.LLMTimeout != 5*time.Second || cfg.MaxQuestions != 3 {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
}

func TestValidateConfig(t *testing.T) {
	cases := map[string]*Config{
		"provider":      {Provider: "openai", Database: DatabaseConfig{Driver: "sqlite"}, MaxQuestions: 1},
		"driver":        {Provider: ProviderOffline, Database: DatabaseConfig{Driver: "mysql"}, MaxQuestions: 1},
		"max questions": {Provider: ProviderOffline, Database: DatabaseConfig{Driver: "sqlite"}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if err := validateConfig(cfg); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", User: "u", Password: "p", Name: "n", Port: "1", SSLMode: "disable"}
	want := "host=h user=u password=p dbname=n port=1 sslmode=disable"
	if got := d.PostgresDSN(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
